package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"quiz-api-service/internal/app"
	"quiz-api-service/internal/domain"
	"quiz-api-service/internal/infra/memory"
)

func TestCreateShiftsOccupiedPositions(t *testing.T) {
	ctx := context.Background()
	svc := app.NewQuestionService(memory.NewStore())

	ids := seedQuestions(t, svc, "a", "b", "c")
	newID, err := svc.Create(ctx, question("new", 2))
	require.NoError(t, err)

	requirePositions(t, svc, map[int64]int{ids[0]: 1, newID: 2, ids[1]: 3, ids[2]: 4})
}

func TestCreateClampsPastTheEnd(t *testing.T) {
	ctx := context.Background()
	svc := app.NewQuestionService(memory.NewStore())
	seedQuestions(t, svc, "a", "b")

	id, err := svc.Create(ctx, question("far", 10))
	require.NoError(t, err)

	q, ok, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3, q.Position)
	requireDense(t, svc)
}

func TestCreateRejectsNonPositivePosition(t *testing.T) {
	svc := app.NewQuestionService(memory.NewStore())
	_, err := svc.Create(context.Background(), question("zero", 0))
	require.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := app.NewQuestionService(memory.NewStore())
	lat, lon := 48.85, 2.35

	in := domain.Question{
		Title:    "Where",
		Position: 1,
		Text:     "Pick the capital",
		Image:    []byte{0x89, 'P', 'N', 'G'},
		Answers: []domain.Answer{
			{Text: "Paris", IsCorrect: true, Latitude: &lat, Longitude: &lon},
			{Text: "Berlin"},
		},
	}
	id, err := svc.Create(ctx, in)
	require.NoError(t, err)

	got, ok, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	in.ID = id
	require.Equal(t, in, got)

	byPos, ok, err := svc.GetByPosition(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, got, byPos)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := app.NewQuestionService(memory.NewStore())

	_, ok, err := svc.Get(ctx, 42)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = svc.GetByPosition(ctx, 1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUpdateMovesQuestionUpAndDown(t *testing.T) {
	ctx := context.Background()
	svc := app.NewQuestionService(memory.NewStore())
	ids := seedQuestions(t, svc, "a", "b", "c", "d")

	// d: 4 -> 2
	ok, err := svc.Update(ctx, ids[3], question("d2", 2))
	require.NoError(t, err)
	require.True(t, ok)
	requirePositions(t, svc, map[int64]int{ids[0]: 1, ids[3]: 2, ids[1]: 3, ids[2]: 4})

	// a: 1 -> 3
	ok, err = svc.Update(ctx, ids[0], question("a2", 3))
	require.NoError(t, err)
	require.True(t, ok)
	requirePositions(t, svc, map[int64]int{ids[3]: 1, ids[1]: 2, ids[0]: 3, ids[2]: 4})

	q, _, err := svc.Get(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, "a2", q.Title)
}

func TestUpdateReplacesAnswers(t *testing.T) {
	ctx := context.Background()
	svc := app.NewQuestionService(memory.NewStore())
	ids := seedQuestions(t, svc, "a")

	repl := question("a", 1)
	repl.Answers = []domain.Answer{{Text: "only", IsCorrect: true}}
	ok, err := svc.Update(ctx, ids[0], repl)
	require.NoError(t, err)
	require.True(t, ok)

	q, _, err := svc.Get(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, repl.Answers, q.Answers)
}

func TestUpdateClampsAndReportsMissing(t *testing.T) {
	ctx := context.Background()
	svc := app.NewQuestionService(memory.NewStore())
	ids := seedQuestions(t, svc, "a", "b", "c")

	ok, err := svc.Update(ctx, ids[0], question("a", 99))
	require.NoError(t, err)
	require.True(t, ok)
	requirePositions(t, svc, map[int64]int{ids[1]: 1, ids[2]: 2, ids[0]: 3})

	ok, err = svc.Update(ctx, 999, question("x", 1))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteByPositionClosesGap(t *testing.T) {
	ctx := context.Background()
	svc := app.NewQuestionService(memory.NewStore())
	ids := seedQuestions(t, svc, "a", "b", "c", "d")

	before, _, err := svc.Get(ctx, ids[3])
	require.NoError(t, err)

	ok, err := svc.DeleteByPosition(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)
	requirePositions(t, svc, map[int64]int{ids[0]: 1, ids[2]: 2, ids[3]: 3})

	after, _, err := svc.Get(ctx, ids[3])
	require.NoError(t, err)
	before.Position = 3
	require.Equal(t, before, after)

	ok, err = svc.DeleteByPosition(ctx, 7)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteByIDAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	svc := app.NewQuestionService(memory.NewStore())
	ids := seedQuestions(t, svc, "a", "b", "c")

	ok, err := svc.DeleteByID(ctx, ids[0])
	require.NoError(t, err)
	require.True(t, ok)
	requirePositions(t, svc, map[int64]int{ids[1]: 1, ids[2]: 2})

	ok, err = svc.DeleteByID(ctx, ids[0])
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, svc.DeleteAll(ctx))
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestMutationSequenceKeepsPositionsDense(t *testing.T) {
	ctx := context.Background()
	svc := app.NewQuestionService(memory.NewStore())
	ids := seedQuestions(t, svc, "a", "b", "c", "d", "e")

	_, err := svc.Create(ctx, question("f", 1))
	require.NoError(t, err)
	_, err = svc.Update(ctx, ids[2], question("c", 6))
	require.NoError(t, err)
	_, err = svc.DeleteByPosition(ctx, 3)
	require.NoError(t, err)
	_, err = svc.Create(ctx, question("g", 4))
	require.NoError(t, err)
	_, err = svc.DeleteByID(ctx, ids[4])
	require.NoError(t, err)

	requireDense(t, svc)
}

func TestListIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := app.NewQuestionService(memory.NewStore())
	seedQuestions(t, svc, "a", "b")

	first, err := svc.List(ctx)
	require.NoError(t, err)
	second, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestFailedMutationLeavesNoPartialState(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStore()
	seedQuestions(t, app.NewQuestionService(base), "a", "b")

	boom := errors.New("insert answers failed")
	svc := app.NewQuestionService(failingStore{Store: base, err: boom})

	_, err := svc.Create(ctx, question("new", 1))
	require.ErrorIs(t, err, boom)

	list, err := app.NewQuestionService(base).List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "a", list[0].Title)
	require.Equal(t, 1, list[0].Position)
}

func TestCreateRetryRecomputesClampedPosition(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStore()
	direct := app.NewQuestionService(base)
	seedQuestions(t, direct, "a", "b")

	var lateID int64
	svc := app.NewQuestionService(&retryingStore{Store: base, between: func() {
		var err error
		lateID, err = direct.Create(ctx, question("late", 3))
		require.NoError(t, err)
	}})

	id, err := svc.Create(ctx, question("far", 10))
	require.NoError(t, err)

	q, ok, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4, q.Position)

	late, _, err := svc.Get(ctx, lateID)
	require.NoError(t, err)
	require.Equal(t, 3, late.Position)
	requireDense(t, svc)
}

func TestUpdateRetryRecomputesClampedPosition(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStore()
	direct := app.NewQuestionService(base)
	ids := seedQuestions(t, direct, "a", "b")

	svc := app.NewQuestionService(&retryingStore{Store: base, between: func() {
		_, err := direct.Create(ctx, question("late", 3))
		require.NoError(t, err)
	}})

	found, err := svc.Update(ctx, ids[0], question("a", 10))
	require.NoError(t, err)
	require.True(t, found)

	q, _, err := svc.Get(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, 3, q.Position)
	requireDense(t, svc)
}

func TestListenersNotifiedOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	l := &countingListener{}
	svc := app.NewQuestionService(memory.NewStore(), l)

	_, err := svc.Create(ctx, question("a", 1))
	require.NoError(t, err)
	_, err = svc.DeleteByID(ctx, 99)
	require.NoError(t, err)
	require.Equal(t, 1, l.calls)
}

var errRetry = errors.New("could not serialize access")

// retryingStore rolls back the first write attempt, runs between, then
// replays the same callback the way the postgres store does on 40001.
type retryingStore struct {
	app.Store
	between func()
	retried bool
}

func (s *retryingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx app.Tx) error) error {
	if !s.retried {
		s.retried = true
		err := s.Store.WithinTx(ctx, func(ctx context.Context, tx app.Tx) error {
			if err := fn(ctx, tx); err != nil {
				return err
			}
			return errRetry
		})
		if !errors.Is(err, errRetry) {
			return err
		}
		s.between()
	}
	return s.Store.WithinTx(ctx, fn)
}

// failingStore makes InsertAnswers fail inside write transactions.
type failingStore struct {
	app.Store
	err error
}

func (s failingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx app.Tx) error) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, tx app.Tx) error {
		return fn(ctx, failingTx{Tx: tx, err: s.err})
	})
}

type failingTx struct {
	app.Tx
	err error
}

func (t failingTx) InsertAnswers(context.Context, int64, []domain.Answer) error {
	return t.err
}

type countingListener struct {
	calls int
}

func (l *countingListener) QuizChanged(context.Context) {
	l.calls++
}

func question(title string, position int) domain.Question {
	return domain.Question{
		Title:    title,
		Position: position,
		Text:     title + "?",
		Answers: []domain.Answer{
			{Text: "wrong"},
			{Text: "right", IsCorrect: true},
		},
	}
}

func seedQuestions(t *testing.T, svc *app.QuestionService, titles ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(titles))
	for i, title := range titles {
		id, err := svc.Create(context.Background(), question(title, i+1))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func requirePositions(t *testing.T, svc *app.QuestionService, want map[int64]int) {
	t.Helper()
	list, err := svc.List(context.Background())
	require.NoError(t, err)
	got := make(map[int64]int, len(list))
	for _, q := range list {
		got[q.ID] = q.Position
	}
	require.Equal(t, want, got)
}

func requireDense(t *testing.T, svc *app.QuestionService) {
	t.Helper()
	list, err := svc.List(context.Background())
	require.NoError(t, err)
	for i, q := range list {
		require.Equal(t, i+1, q.Position, "question %d", q.ID)
	}
}
