package state

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"linkbio/pkg/dto"
)

// Persister keeps the auth slice across runs. Load returns nil when nothing
// usable is stored.
type Persister interface {
	Load(ctx context.Context) (*dto.AuthResponse, error)
	Save(ctx context.Context, a dto.AuthResponse) error
	Clear(ctx context.Context) error
}

// Store serializes dispatches and notifies subscribers in dispatch order.
// Subscribers must not dispatch.
type Store struct {
	dispatchMu sync.Mutex

	mu    sync.RWMutex
	state State
	subs  map[int]func(State)
	next  int

	persist Persister
	log     *zap.Logger
}

// NewStore hydrates the auth slice from p. A nil p keeps state in memory only.
func NewStore(ctx context.Context, p Persister, l *zap.Logger) *Store {
	if l == nil {
		l = zap.NewNop()
	}
	s := &Store{subs: map[int]func(State){}, persist: p, log: l}
	if p == nil {
		return s
	}
	saved, err := p.Load(ctx)
	if err != nil {
		l.Warn("auth hydrate failed", zap.Error(err))
		return s
	}
	if saved != nil && saved.Token != "" {
		s.state = Reduce(s.state, CredentialsSet{Auth: *saved})
	}
	return s
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token implements the API client's token source.
func (s *Store) Token() string { return s.State().Auth.Token }

func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) Dispatch(ctx context.Context, a Action) State {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	next := Reduce(s.state, a)
	s.state = next
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	s.persistAuth(ctx, a, next.Auth)
	for _, fn := range subs {
		fn(next)
	}
	return next
}

func (s *Store) persistAuth(ctx context.Context, a Action, auth AuthState) {
	if s.persist == nil {
		return
	}
	var err error
	switch a.(type) {
	case CredentialsSet, ThemeChanged:
		if !auth.IsAuthenticated || auth.User == nil {
			return
		}
		err = s.persist.Save(ctx, dto.AuthResponse{Token: auth.Token, User: *auth.User})
	case LoggedOut:
		err = s.persist.Clear(ctx)
	default:
		return
	}
	if err != nil {
		s.log.Warn("auth persist failed", zap.Error(err))
	}
}
