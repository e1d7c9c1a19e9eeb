package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"quiz-api-service/internal/app"
	"quiz-api-service/internal/domain"
)

var errReadOnly = errors.New("memory: write in read-only transaction")

// Store is an in-memory implementation of app.Store. Writers are serialized
// and work on a private copy that replaces the live state only on commit.
type Store struct {
	mu    sync.RWMutex
	state *state
}

type state struct {
	questions      map[int64]domain.Question
	participations []domain.Participation
	lastQuestionID int64
	lastPartID     int64
}

func NewStore() *Store {
	return &Store{state: &state{questions: make(map[int64]domain.Question)}}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx app.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{st: s.state.clone()}
	if err := fn(ctx, t); err != nil {
		return err
	}
	s.state = t.st
	return nil
}

func (s *Store) WithinReadTx(ctx context.Context, fn func(ctx context.Context, tx app.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, &tx{st: s.state, readOnly: true})
}

func (st *state) clone() *state {
	out := &state{
		questions:      make(map[int64]domain.Question, len(st.questions)),
		participations: append([]domain.Participation(nil), st.participations...),
		lastQuestionID: st.lastQuestionID,
		lastPartID:     st.lastPartID,
	}
	for id, q := range st.questions {
		out.questions[id] = copyQuestion(q)
	}
	return out
}

func copyQuestion(q domain.Question) domain.Question {
	q.Image = append([]byte(nil), q.Image...)
	q.Answers = append([]domain.Answer(nil), q.Answers...)
	return q
}

type tx struct {
	st       *state
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

func (t *tx) CountQuestions(_ context.Context) (int, error) {
	return len(t.st.questions), nil
}

func (t *tx) PositionOf(_ context.Context, id int64) (int, bool, error) {
	q, ok := t.st.questions[id]
	return q.Position, ok, nil
}

func (t *tx) QuestionIDAt(_ context.Context, position int) (int64, bool, error) {
	q, ok := t.at(position)
	return q.ID, ok, nil
}

func (t *tx) Slots(_ context.Context, from, to int, desc bool) ([]domain.Slot, error) {
	var slots []domain.Slot
	for _, q := range t.st.questions {
		if q.Position >= from && q.Position <= to {
			slots = append(slots, domain.Slot{ID: q.ID, Position: q.Position})
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if desc {
			return slots[i].Position > slots[j].Position
		}
		return slots[i].Position < slots[j].Position
	})
	return slots, nil
}

func (t *tx) SetPosition(_ context.Context, id int64, position int) error {
	if err := t.writable(); err != nil {
		return err
	}
	q, ok := t.st.questions[id]
	if !ok {
		return nil
	}
	q.Position = position
	t.st.questions[id] = q
	return nil
}

func (t *tx) InsertQuestion(_ context.Context, q domain.Question) (int64, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	t.st.lastQuestionID++
	q = copyQuestion(q)
	q.ID = t.st.lastQuestionID
	q.Answers = nil
	t.st.questions[q.ID] = q
	return q.ID, nil
}

func (t *tx) UpdateQuestion(_ context.Context, id int64, q domain.Question) error {
	if err := t.writable(); err != nil {
		return err
	}
	cur, ok := t.st.questions[id]
	if !ok {
		return nil
	}
	cur.Title = q.Title
	cur.Position = q.Position
	cur.Text = q.Text
	cur.Image = append([]byte(nil), q.Image...)
	t.st.questions[id] = cur
	return nil
}

func (t *tx) DeleteQuestion(_ context.Context, id int64) error {
	if err := t.writable(); err != nil {
		return err
	}
	delete(t.st.questions, id)
	return nil
}

func (t *tx) DeleteAllQuestions(_ context.Context) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.st.questions = make(map[int64]domain.Question)
	return nil
}

func (t *tx) InsertAnswers(_ context.Context, questionID int64, answers []domain.Answer) error {
	if err := t.writable(); err != nil {
		return err
	}
	q, ok := t.st.questions[questionID]
	if !ok {
		return nil
	}
	q.Answers = append(q.Answers, answers...)
	t.st.questions[questionID] = q
	return nil
}

func (t *tx) DeleteAnswers(_ context.Context, questionID int64) error {
	if err := t.writable(); err != nil {
		return err
	}
	q, ok := t.st.questions[questionID]
	if !ok {
		return nil
	}
	q.Answers = nil
	t.st.questions[questionID] = q
	return nil
}

func (t *tx) GetQuestion(_ context.Context, id int64) (domain.Question, bool, error) {
	q, ok := t.st.questions[id]
	if !ok {
		return domain.Question{}, false, nil
	}
	return copyQuestion(q), true, nil
}

func (t *tx) GetQuestionAt(_ context.Context, position int) (domain.Question, bool, error) {
	q, ok := t.at(position)
	if !ok {
		return domain.Question{}, false, nil
	}
	return copyQuestion(q), true, nil
}

func (t *tx) ListQuestions(_ context.Context) ([]domain.Question, error) {
	out := make([]domain.Question, 0, len(t.st.questions))
	for _, q := range t.st.questions {
		out = append(out, copyQuestion(q))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (t *tx) AnswersAt(_ context.Context, position int) ([]domain.Answer, error) {
	q, ok := t.at(position)
	if !ok {
		return nil, nil
	}
	return append([]domain.Answer(nil), q.Answers...), nil
}

func (t *tx) InsertParticipation(_ context.Context, p domain.Participation) (int64, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	t.st.lastPartID++
	p.ID = t.st.lastPartID
	t.st.participations = append(t.st.participations, p)
	return p.ID, nil
}

func (t *tx) ListParticipations(_ context.Context) ([]domain.Participation, error) {
	out := append([]domain.Participation(nil), t.st.participations...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *tx) DeleteAllParticipations(_ context.Context) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.st.participations = nil
	return nil
}

func (t *tx) at(position int) (domain.Question, bool) {
	for _, q := range t.st.questions {
		if q.Position == position {
			return q, true
		}
	}
	return domain.Question{}, false
}
