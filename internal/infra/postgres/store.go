package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"quiz-api-service/internal/app"
	"quiz-api-service/internal/domain"
)

// serialization_failure; the transaction can be retried from scratch.
const sqlStateSerializationFailure = "40001"

const maxTxAttempts = 3

var (
	writeTx = &sql.TxOptions{Isolation: sql.LevelSerializable}
	readTx  = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
)

// Open returns a bun handle for dsn using the pg driver.
func Open(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Store implements app.Store on Postgres. Writes run serializable so scoring
// and renumbering always see one consistent snapshot.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx app.Tx) error) error {
	return s.run(ctx, writeTx, fn)
}

func (s *Store) WithinReadTx(ctx context.Context, fn func(ctx context.Context, tx app.Tx) error) error {
	return s.run(ctx, readTx, fn)
}

func (s *Store) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx app.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = s.db.RunInTx(ctx, opts, func(ctx context.Context, btx bun.Tx) error {
			return fn(ctx, &tx{tx: btx})
		})
		if !isSerializationFailure(err) {
			return err
		}
	}
	return err
}

// sqlStateError is satisfied by pgdriver.Error.
type sqlStateError interface {
	Field(k byte) string
}

func isSerializationFailure(err error) bool {
	var pgErr sqlStateError
	return errors.As(err, &pgErr) && pgErr.Field('C') == sqlStateSerializationFailure
}

type tx struct {
	tx bun.Tx
}

func (t *tx) CountQuestions(ctx context.Context) (int, error) {
	return t.tx.NewSelect().Model((*questionRow)(nil)).Count(ctx)
}

func (t *tx) PositionOf(ctx context.Context, id int64) (int, bool, error) {
	var position int
	err := t.tx.NewSelect().
		Model((*questionRow)(nil)).
		Column("position").
		Where("id = ?", id).
		Scan(ctx, &position)
	return position, found(err), ignoreNoRows(err)
}

func (t *tx) QuestionIDAt(ctx context.Context, position int) (int64, bool, error) {
	var id int64
	err := t.tx.NewSelect().
		Model((*questionRow)(nil)).
		Column("id").
		Where("position = ?", position).
		Scan(ctx, &id)
	return id, found(err), ignoreNoRows(err)
}

func (t *tx) Slots(ctx context.Context, from, to int, desc bool) ([]domain.Slot, error) {
	order := "position ASC"
	if desc {
		order = "position DESC"
	}
	var rows []questionRow
	err := t.tx.NewSelect().
		Model(&rows).
		Column("id", "position").
		Where("position BETWEEN ? AND ?", from, to).
		Order(order).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	slots := make([]domain.Slot, 0, len(rows))
	for _, r := range rows {
		slots = append(slots, domain.Slot{ID: r.ID, Position: r.Position})
	}
	return slots, nil
}

func (t *tx) SetPosition(ctx context.Context, id int64, position int) error {
	_, err := t.tx.NewUpdate().
		Model((*questionRow)(nil)).
		Set("position = ?", position).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (t *tx) InsertQuestion(ctx context.Context, q domain.Question) (int64, error) {
	row := &questionRow{
		Title:    q.Title,
		Position: q.Position,
		Text:     q.Text,
		Image:    nonNil(q.Image),
	}
	if _, err := t.tx.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (t *tx) UpdateQuestion(ctx context.Context, id int64, q domain.Question) error {
	_, err := t.tx.NewUpdate().
		Model((*questionRow)(nil)).
		Set("title = ?", q.Title).
		Set("position = ?", q.Position).
		Set("text = ?", q.Text).
		Set("image = ?", nonNil(q.Image)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (t *tx) DeleteQuestion(ctx context.Context, id int64) error {
	_, err := t.tx.NewDelete().Model((*questionRow)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

func (t *tx) DeleteAllQuestions(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM answers`); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, `DELETE FROM questions`)
	return err
}

func (t *tx) InsertAnswers(ctx context.Context, questionID int64, answers []domain.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	rows := make([]answerRow, 0, len(answers))
	for i, a := range answers {
		rows = append(rows, answerRow{
			QuestionID: questionID,
			Ordinal:    i,
			Text:       a.Text,
			IsCorrect:  a.IsCorrect,
			Latitude:   a.Latitude,
			Longitude:  a.Longitude,
		})
	}
	_, err := t.tx.NewInsert().Model(&rows).Returning("NULL").Exec(ctx)
	return err
}

func (t *tx) DeleteAnswers(ctx context.Context, questionID int64) error {
	_, err := t.tx.NewDelete().Model((*answerRow)(nil)).Where("question_id = ?", questionID).Exec(ctx)
	return err
}

func (t *tx) GetQuestion(ctx context.Context, id int64) (domain.Question, bool, error) {
	return t.getQuestion(ctx, "id = ?", id)
}

func (t *tx) GetQuestionAt(ctx context.Context, position int) (domain.Question, bool, error) {
	return t.getQuestion(ctx, "position = ?", position)
}

func (t *tx) getQuestion(ctx context.Context, where string, arg any) (domain.Question, bool, error) {
	row := new(questionRow)
	err := t.tx.NewSelect().Model(row).Where(where, arg).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, false, nil
	}
	if err != nil {
		return domain.Question{}, false, err
	}

	var answers []answerRow
	err = t.tx.NewSelect().
		Model(&answers).
		Where("question_id = ?", row.ID).
		Order("ordinal ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return domain.Question{}, false, err
	}
	return row.toDomain(answers), true, nil
}

func (t *tx) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	var rows []questionRow
	if err := t.tx.NewSelect().Model(&rows).Order("position ASC").Scan(ctx); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []domain.Question{}, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	var answers []answerRow
	err := t.tx.NewSelect().
		Model(&answers).
		Where("question_id IN (?)", bun.In(ids)).
		Order("question_id ASC", "ordinal ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[int64][]answerRow, len(rows))
	for _, a := range answers {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}
	out := make([]domain.Question, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain(byQuestion[r.ID]))
	}
	return out, nil
}

func (t *tx) AnswersAt(ctx context.Context, position int) ([]domain.Answer, error) {
	var rows []answerRow
	err := t.tx.NewSelect().
		Model(&rows).
		Join("JOIN questions AS q ON q.id = a.question_id").
		Where("q.position = ?", position).
		Order("a.ordinal ASC", "a.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Answer, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (t *tx) InsertParticipation(ctx context.Context, p domain.Participation) (int64, error) {
	row := &participationRow{
		PlayerName: p.PlayerName,
		Score:      p.Score,
		Date:       p.Date,
	}
	if _, err := t.tx.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (t *tx) ListParticipations(ctx context.Context) ([]domain.Participation, error) {
	var rows []participationRow
	if err := t.tx.NewSelect().Model(&rows).Order("score DESC", "id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Participation, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (t *tx) DeleteAllParticipations(ctx context.Context) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM participations`)
	return err
}

func found(err error) bool {
	return err == nil
}

func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
