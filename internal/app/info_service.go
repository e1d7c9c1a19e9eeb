package app

import (
	"context"
	"sync"

	"quiz-api-service/internal/domain"
)

// StoreInfoSource builds quiz info from a Store in one read transaction.
type StoreInfoSource struct {
	store Store
}

func NewStoreInfoSource(store Store) *StoreInfoSource {
	return &StoreInfoSource{store: store}
}

func (s *StoreInfoSource) Info(ctx context.Context) (domain.QuizInfo, error) {
	var info domain.QuizInfo
	err := s.store.WithinReadTx(ctx, func(ctx context.Context, tx Tx) error {
		scores, err := tx.ListParticipations(ctx)
		if err != nil {
			return err
		}
		size, err := tx.CountQuestions(ctx)
		if err != nil {
			return err
		}
		info = domain.QuizInfo{Scores: scores, Size: size}
		return nil
	})
	return info, err
}

// InfoService serves the leaderboard and fans out fresh snapshots to
// subscribers whenever the quiz changes.
type InfoService struct {
	source InfoSource
	onErr  func(error)

	mu          sync.Mutex
	subscribers map[chan domain.QuizInfo]struct{}
}

func NewInfoService(source InfoSource) *InfoService {
	return &InfoService{
		source:      source,
		onErr:       func(error) {},
		subscribers: make(map[chan domain.QuizInfo]struct{}),
	}
}

// OnError registers a hook for reload failures during QuizChanged.
func (s *InfoService) OnError(fn func(error)) {
	s.onErr = fn
}

// Info returns participations ordered by score (highest first) and the number
// of questions.
func (s *InfoService) Info(ctx context.Context) (domain.QuizInfo, error) {
	info, err := s.source.Info(ctx)
	if err != nil {
		return domain.QuizInfo{}, err
	}
	if info.Scores == nil {
		info.Scores = []domain.Participation{}
	}
	return info, nil
}

// Subscribe returns a channel that first receives the current info and then
// every later snapshot. The caller must invoke the returned cancel function.
func (s *InfoService) Subscribe(ctx context.Context) (<-chan domain.QuizInfo, func(), error) {
	initial, err := s.Info(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.QuizInfo, 8)
	ch <- initial

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

// QuizChanged reloads the info and pushes it to every subscriber.
func (s *InfoService) QuizChanged(ctx context.Context) {
	s.mu.Lock()
	empty := len(s.subscribers) == 0
	s.mu.Unlock()
	if empty {
		return
	}

	info, err := s.Info(ctx)
	if err != nil {
		s.onErr(err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- info:
		default:
			// full buffer: replace the oldest snapshot
			select {
			case <-ch:
			default:
			}
			ch <- info
		}
	}
}
