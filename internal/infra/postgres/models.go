package postgres

import (
	"time"

	"github.com/uptrace/bun"
	"quiz-api-service/internal/domain"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Title    string `bun:"title,notnull"`
	Position int    `bun:"position,notnull"`
	Text     string `bun:"text,notnull"`
	Image    []byte `bun:"image,notnull"`
}

type answerRow struct {
	bun.BaseModel `bun:"table:answers,alias:a"`

	ID         int64    `bun:"id,pk,autoincrement"`
	QuestionID int64    `bun:"question_id,notnull"`
	Ordinal    int      `bun:"ordinal,notnull"`
	Text       string   `bun:"text,notnull"`
	IsCorrect  bool     `bun:"is_correct,notnull"`
	Latitude   *float64 `bun:"latitude"`
	Longitude  *float64 `bun:"longitude"`
}

type participationRow struct {
	bun.BaseModel `bun:"table:participations,alias:p"`

	ID         int64     `bun:"id,pk,autoincrement"`
	PlayerName string    `bun:"player_name,notnull"`
	Score      int       `bun:"score,notnull"`
	Date       time.Time `bun:"date,notnull"`
}

func (r questionRow) toDomain(answers []answerRow) domain.Question {
	q := domain.Question{
		ID:       r.ID,
		Position: r.Position,
		Title:    r.Title,
		Text:     r.Text,
		Image:    r.Image,
		Answers:  make([]domain.Answer, 0, len(answers)),
	}
	for _, a := range answers {
		q.Answers = append(q.Answers, a.toDomain())
	}
	return q
}

func (r answerRow) toDomain() domain.Answer {
	return domain.Answer{
		Text:      r.Text,
		IsCorrect: r.IsCorrect,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

func (r participationRow) toDomain() domain.Participation {
	return domain.Participation{
		ID:         r.ID,
		PlayerName: r.PlayerName,
		Score:      r.Score,
		Date:       r.Date.UTC(),
	}
}
