package inmemory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

// Store holds session history in process memory. The registry lock guards
// the session map, each session carries its own lock so appends to different
// sessions never contend.
type Store struct {
	maxHistory int

	mu       sync.RWMutex
	sessions map[string]*sessionState
}

type sessionState struct {
	mu        sync.Mutex
	exchanges []entity.Exchange
}

func New(maxHistory int) *Store {
	return &Store{
		maxHistory: maxHistory,
		sessions:   make(map[string]*sessionState),
	}
}

func (s *Store) Create(_ context.Context) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &sessionState{}
	s.mu.Unlock()

	return id, nil
}

func (s *Store) History(_ context.Context, id string) ([]entity.Exchange, error) {
	s.mu.RLock()
	state := s.sessions[id]
	s.mu.RUnlock()
	if state == nil {
		return nil, nil
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	history := make([]entity.Exchange, len(state.exchanges))
	copy(history, state.exchanges)
	return history, nil
}

func (s *Store) Append(_ context.Context, id, query, answer string) error {
	if s.maxHistory <= 0 {
		return nil
	}

	state := s.ensure(id)

	state.mu.Lock()
	defer state.mu.Unlock()

	state.exchanges = append(state.exchanges, entity.Exchange{Query: query, Answer: answer})
	if len(state.exchanges) > s.maxHistory {
		state.exchanges = state.exchanges[len(state.exchanges)-s.maxHistory:]
	}
	return nil
}

func (s *Store) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *Store) ensure(id string) *sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		state = &sessionState{}
		s.sessions[id] = state
	}
	return state
}
