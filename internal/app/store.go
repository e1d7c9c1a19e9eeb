package app

import (
	"context"

	"quiz-api-service/internal/domain"
)

// Store is the transactional storage gateway (Postgres, in-memory, ...).
// fn's error is returned untouched after the transaction is rolled back.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	WithinReadTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes the row-level operations available inside one transaction.
// Lookups report absence through the bool result, never through an error.
type Tx interface {
	CountQuestions(ctx context.Context) (int, error)
	PositionOf(ctx context.Context, id int64) (int, bool, error)
	QuestionIDAt(ctx context.Context, position int) (int64, bool, error)
	// Slots returns questions with from <= position <= to, ordered by position.
	Slots(ctx context.Context, from, to int, desc bool) ([]domain.Slot, error)
	SetPosition(ctx context.Context, id int64, position int) error

	InsertQuestion(ctx context.Context, q domain.Question) (int64, error)
	UpdateQuestion(ctx context.Context, id int64, q domain.Question) error
	DeleteQuestion(ctx context.Context, id int64) error
	DeleteAllQuestions(ctx context.Context) error
	InsertAnswers(ctx context.Context, questionID int64, answers []domain.Answer) error
	DeleteAnswers(ctx context.Context, questionID int64) error

	GetQuestion(ctx context.Context, id int64) (domain.Question, bool, error)
	GetQuestionAt(ctx context.Context, position int) (domain.Question, bool, error)
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	// AnswersAt returns the answers of the question at position in authoring order.
	AnswersAt(ctx context.Context, position int) ([]domain.Answer, error)

	InsertParticipation(ctx context.Context, p domain.Participation) (int64, error)
	// ListParticipations orders by score descending, then id.
	ListParticipations(ctx context.Context) ([]domain.Participation, error)
	DeleteAllParticipations(ctx context.Context) error
}

// InfoSource produces the quiz info projection.
type InfoSource interface {
	Info(ctx context.Context) (domain.QuizInfo, error)
}

// ChangeListener is told after a committed change to questions or participations.
type ChangeListener interface {
	QuizChanged(ctx context.Context)
}

type listeners []ChangeListener

func (ls listeners) notify(ctx context.Context) {
	for _, l := range ls {
		l.QuizChanged(ctx)
	}
}
