package app

import (
	"context"
	"math"

	"quiz-api-service/internal/domain"
)

// openEnd bounds shifts that run to the end of the quiz.
const openEnd = math.MaxInt32

// QuestionService owns the position-ordered question collection. After every
// successful mutation positions are exactly 1..N.
type QuestionService struct {
	store     Store
	listeners listeners
}

func NewQuestionService(store Store, ls ...ChangeListener) *QuestionService {
	return &QuestionService{store: store, listeners: ls}
}

// Create inserts q at q.Position, moving the questions at or after that slot
// one step back. Positions past the end are clamped to N+1.
func (s *QuestionService) Create(ctx context.Context, q domain.Question) (int64, error) {
	if q.Position < 1 {
		return 0, domain.InvalidInput("position must be a positive integer")
	}

	var id int64
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		n, err := tx.CountQuestions(ctx)
		if err != nil {
			return err
		}
		row := q
		if row.Position > n+1 {
			row.Position = n + 1
		}

		if _, taken, err := tx.QuestionIDAt(ctx, row.Position); err != nil {
			return err
		} else if taken {
			// descending so a unique position is never held twice
			if err := shift(ctx, tx, row.Position, openEnd, true, +1); err != nil {
				return err
			}
		}

		id, err = tx.InsertQuestion(ctx, row)
		if err != nil {
			return err
		}
		return tx.InsertAnswers(ctx, id, row.Answers)
	})
	if err != nil {
		return 0, err
	}
	s.listeners.notify(ctx)
	return id, nil
}

// Update replaces question id with q, answers included. It reports false when
// id does not exist.
func (s *QuestionService) Update(ctx context.Context, id int64, q domain.Question) (bool, error) {
	if q.Position < 1 {
		return false, domain.InvalidInput("position must be a positive integer")
	}

	found := false
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		old, ok, err := tx.PositionOf(ctx, id)
		found = ok
		if err != nil || !ok {
			return err
		}

		n, err := tx.CountQuestions(ctx)
		if err != nil {
			return err
		}
		row := q
		if row.Position > n {
			row.Position = n
		}

		switch {
		case row.Position < old:
			err = shift(ctx, tx, row.Position, old-1, true, +1)
		case row.Position > old:
			err = shift(ctx, tx, old+1, row.Position, false, -1)
		}
		if err != nil {
			return err
		}

		if err := tx.UpdateQuestion(ctx, id, row); err != nil {
			return err
		}
		if err := tx.DeleteAnswers(ctx, id); err != nil {
			return err
		}
		return tx.InsertAnswers(ctx, id, row.Answers)
	})
	if err != nil || !found {
		return false, err
	}
	s.listeners.notify(ctx)
	return true, nil
}

func (s *QuestionService) Get(ctx context.Context, id int64) (domain.Question, bool, error) {
	var (
		q  domain.Question
		ok bool
	)
	err := s.store.WithinReadTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		q, ok, err = tx.GetQuestion(ctx, id)
		return err
	})
	return q, ok, err
}

func (s *QuestionService) GetByPosition(ctx context.Context, position int) (domain.Question, bool, error) {
	var (
		q  domain.Question
		ok bool
	)
	err := s.store.WithinReadTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		q, ok, err = tx.GetQuestionAt(ctx, position)
		return err
	})
	return q, ok, err
}

// List returns every question ordered by position.
func (s *QuestionService) List(ctx context.Context) ([]domain.Question, error) {
	var out []domain.Question
	err := s.store.WithinReadTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		out, err = tx.ListQuestions(ctx)
		return err
	})
	return out, err
}

func (s *QuestionService) DeleteByID(ctx context.Context, id int64) (bool, error) {
	return s.delete(ctx, func(ctx context.Context, tx Tx) (int64, int, bool, error) {
		pos, ok, err := tx.PositionOf(ctx, id)
		return id, pos, ok, err
	})
}

func (s *QuestionService) DeleteByPosition(ctx context.Context, position int) (bool, error) {
	return s.delete(ctx, func(ctx context.Context, tx Tx) (int64, int, bool, error) {
		id, ok, err := tx.QuestionIDAt(ctx, position)
		return id, position, ok, err
	})
}

// DeleteAll clears every question and answer.
func (s *QuestionService) DeleteAll(ctx context.Context) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.DeleteAllQuestions(ctx)
	})
	if err != nil {
		return err
	}
	s.listeners.notify(ctx)
	return nil
}

type locateFunc func(ctx context.Context, tx Tx) (id int64, position int, ok bool, err error)

// delete removes the located question and closes the gap it leaves.
func (s *QuestionService) delete(ctx context.Context, locate locateFunc) (bool, error) {
	found := false
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		id, position, ok, err := locate(ctx, tx)
		found = ok
		if err != nil || !ok {
			return err
		}

		if err := tx.DeleteAnswers(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteQuestion(ctx, id); err != nil {
			return err
		}
		return shift(ctx, tx, position+1, openEnd, false, -1)
	})
	if err != nil || !found {
		return false, err
	}
	s.listeners.notify(ctx)
	return true, nil
}

// shift moves every question with from <= position <= to by delta, visiting
// them in the given order.
func shift(ctx context.Context, tx Tx, from, to int, desc bool, delta int) error {
	if from > to {
		return nil
	}
	slots, err := tx.Slots(ctx, from, to, desc)
	if err != nil {
		return err
	}
	for _, slot := range slots {
		if err := tx.SetPosition(ctx, slot.ID, slot.Position+delta); err != nil {
			return err
		}
	}
	return nil
}
