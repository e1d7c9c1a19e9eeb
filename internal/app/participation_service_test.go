package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"quiz-api-service/internal/app"
	"quiz-api-service/internal/domain"
	"quiz-api-service/internal/infra/memory"
)

var fixedNow = time.Date(2024, 11, 22, 10, 30, 0, 0, time.FixedZone("CET", 3600))

// threeQuestionQuiz stores three questions whose correct answers sit at
// indices 2, 1 and 3.
func threeQuestionQuiz(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	questions := app.NewQuestionService(store)
	for i, correct := range []int{2, 1, 3} {
		q := domain.Question{Title: "q", Position: i + 1, Text: "?"}
		for a := 1; a <= 3; a++ {
			q.Answers = append(q.Answers, domain.Answer{Text: "a", IsCorrect: a == correct})
		}
		_, err := questions.Create(context.Background(), q)
		require.NoError(t, err)
	}
	return store
}

func TestSubmitScoresAgainstAnswerKey(t *testing.T) {
	ctx := context.Background()
	svc := app.NewParticipationServiceWithClock(threeQuestionQuiz(t), func() time.Time { return fixedNow })

	p, err := svc.Submit(ctx, "Alice", []int{2, 1, 1})
	require.NoError(t, err)
	require.Equal(t, 2, p.Score)
	require.Equal(t, "Alice", p.PlayerName)
	require.NotZero(t, p.ID)
	require.Equal(t, time.UTC, p.Date.Location())
	require.True(t, p.Date.Equal(fixedNow))
}

func TestSubmitRejectsWrongAnswerCount(t *testing.T) {
	svc := app.NewParticipationService(threeQuestionQuiz(t))

	_, err := svc.Submit(context.Background(), "Bob", []int{1, 1, 1, 1})
	require.True(t, errors.Is(err, domain.ErrInvalidInput))
	require.Contains(t, err.Error(), "wrong answer count")
}

func TestSubmitRejectsOutOfRangeIndex(t *testing.T) {
	store := threeQuestionQuiz(t)
	svc := app.NewParticipationService(store)

	for _, answers := range [][]int{{1, 0, 1}, {1, 4, 1}} {
		_, err := svc.Submit(context.Background(), "Carol", answers)
		require.True(t, errors.Is(err, domain.ErrInvalidInput))
		require.Contains(t, err.Error(), "position 2")
	}

	info, err := app.NewStoreInfoSource(store).Info(context.Background())
	require.NoError(t, err)
	require.Empty(t, info.Scores)
}

func TestSubmitOnEmptyQuiz(t *testing.T) {
	svc := app.NewParticipationService(memory.NewStore())

	p, err := svc.Submit(context.Background(), "Dave", nil)
	require.NoError(t, err)
	require.Zero(t, p.Score)
}

func TestDeleteAllParticipations(t *testing.T) {
	ctx := context.Background()
	store := threeQuestionQuiz(t)
	l := &countingListener{}
	svc := app.NewParticipationService(store, l)

	_, err := svc.Submit(ctx, "Eve", []int{2, 1, 3})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteAll(ctx))
	require.Equal(t, 2, l.calls)

	info, err := app.NewStoreInfoSource(store).Info(ctx)
	require.NoError(t, err)
	require.Empty(t, info.Scores)
	require.Equal(t, 3, info.Size)
}
