package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-api-service/internal/domain"
)

// InfoLoader reads the leaderboard projection straight from the pool.
type InfoLoader struct {
	pool *pgxpool.Pool
}

func NewInfoLoader(pool *pgxpool.Pool) *InfoLoader {
	return &InfoLoader{pool: pool}
}

// Info returns participations (best score first) and the question count read
// from the same repeatable-read snapshot.
func (l *InfoLoader) Info(ctx context.Context) (domain.QuizInfo, error) {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return domain.QuizInfo{}, fmt.Errorf("begin info tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `SELECT id, player_name, score, date FROM participations ORDER BY score DESC, id ASC`)
	if err != nil {
		return domain.QuizInfo{}, fmt.Errorf("load participations: %w", err)
	}
	scores := []domain.Participation{}
	for rows.Next() {
		var p domain.Participation
		if err := rows.Scan(&p.ID, &p.PlayerName, &p.Score, &p.Date); err != nil {
			rows.Close()
			return domain.QuizInfo{}, fmt.Errorf("scan participation: %w", err)
		}
		p.Date = p.Date.UTC()
		scores = append(scores, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.QuizInfo{}, fmt.Errorf("load participations: %w", err)
	}

	var size int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&size); err != nil {
		return domain.QuizInfo{}, fmt.Errorf("count questions: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.QuizInfo{}, fmt.Errorf("commit info tx: %w", err)
	}
	return domain.QuizInfo{Scores: scores, Size: size}, nil
}
