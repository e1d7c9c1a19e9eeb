package app

import (
	"context"
	"time"

	"quiz-api-service/internal/domain"
)

// ParticipationService scores submitted answer sets and records participations.
type ParticipationService struct {
	store     Store
	now       func() time.Time
	listeners listeners
}

func NewParticipationService(store Store, ls ...ChangeListener) *ParticipationService {
	return NewParticipationServiceWithClock(store, time.Now, ls...)
}

// NewParticipationServiceWithClock is used by tests for deterministic dates.
func NewParticipationServiceWithClock(store Store, now func() time.Time, ls ...ChangeListener) *ParticipationService {
	return &ParticipationService{store: store, now: now, listeners: ls}
}

// Submit scores answers (1-based answer indices, one per question in position
// order) and stores the participation. The count check, the scoring reads and
// the insert share one transaction.
func (s *ParticipationService) Submit(ctx context.Context, playerName string, answers []int) (domain.Participation, error) {
	var p domain.Participation
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		size, err := tx.CountQuestions(ctx)
		if err != nil {
			return err
		}
		if len(answers) != size {
			return domain.InvalidInput("wrong answer count: got %d, quiz has %d questions", len(answers), size)
		}

		score, err := scoreAnswers(ctx, tx, answers)
		if err != nil {
			return err
		}

		p = domain.Participation{
			PlayerName: playerName,
			Score:      score,
			Date:       s.now().UTC(),
		}
		p.ID, err = tx.InsertParticipation(ctx, p)
		return err
	})
	if err != nil {
		return domain.Participation{}, err
	}
	s.listeners.notify(ctx)
	return p, nil
}

// DeleteAll removes every participation.
func (s *ParticipationService) DeleteAll(ctx context.Context) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.DeleteAllParticipations(ctx)
	})
	if err != nil {
		return err
	}
	s.listeners.notify(ctx)
	return nil
}

func scoreAnswers(ctx context.Context, tx Tx, submitted []int) (int, error) {
	score := 0
	for i, choice := range submitted {
		position := i + 1
		answers, err := tx.AnswersAt(ctx, position)
		if err != nil {
			return 0, err
		}
		if choice < 1 || choice > len(answers) {
			return 0, domain.InvalidInput("invalid answer index for question at position %d", position)
		}
		if answers[choice-1].IsCorrect {
			score++
		}
	}
	return score, nil
}
