package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"healthdash/internal/modules/session/domain"
	sessionout "healthdash/internal/modules/session/port/out"
	"healthdash/internal/platform/clock"
	apperrors "healthdash/internal/platform/errors"
)

type Listener func(state domain.State, session domain.Session)

// Store owns the single signed-in session and its durable copy.
// All methods are safe for concurrent use.
type Store struct {
	kv     sessionout.KeyValueStore
	clock  clock.Clock
	logger *zap.Logger

	mu        sync.Mutex
	notifyMu  sync.Mutex
	current   domain.Session
	state     domain.State
	listeners map[int]Listener
	nextID    int
}

func NewStore(kv sessionout.KeyValueStore, clk clock.Clock, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, clock: clk, logger: logger, listeners: map[int]Listener{}}
}

// Rehydrate restores the persisted session. Unreadable, incomplete or
// expired records leave the store unauthenticated; it never fails.
func (s *Store) Rehydrate(ctx context.Context) domain.State {
	s.mu.Lock()
	next, ok := s.load(ctx)
	if ok {
		s.current, s.state = next, domain.Authenticated
	} else {
		s.current, s.state = domain.Session{}, domain.Unauthenticated
	}
	state := s.state
	s.unlockAndNotify(state, s.current)
	return state
}

func (s *Store) load(ctx context.Context) (domain.Session, bool) {
	payload, found, err := s.kv.Get(ctx, domain.StorageKey)
	if err != nil {
		s.logger.Warn("read persisted session", zap.Error(err))
		return domain.Session{}, false
	}
	if !found {
		return domain.Session{}, false
	}
	session, err := domain.Decode(payload)
	if err != nil {
		s.logger.Warn("ignoring persisted session", zap.String("key", domain.StorageKey), zap.Error(err))
		return domain.Session{}, false
	}
	if session.Expired(s.clock.Now()) {
		exp, _ := session.ExpiresAt()
		s.logger.Warn("persisted session expired",
			zap.String("username", session.Username),
			zap.Time("expired_at", exp),
		)
		if err := s.kv.Delete(ctx, domain.StorageKey); err != nil {
			s.logger.Warn("remove expired session", zap.Error(err))
		}
		return domain.Session{}, false
	}
	return session, true
}

// Login persists the session first; memory is only replaced once the
// durable copy is written.
func (s *Store) Login(ctx context.Context, username, token string) error {
	next := domain.Session{Username: username, Token: token}
	if !next.Valid() {
		return fmt.Errorf("%w: username and token are required", apperrors.ErrInvalidInput)
	}
	payload, err := next.Encode()
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	if err := s.kv.Set(ctx, domain.StorageKey, payload); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist session: %w", err)
	}
	s.current, s.state = next, domain.Authenticated
	s.logger.Info("session started", zap.String("username", username))
	s.unlockAndNotify(domain.Authenticated, next)
	return nil
}

// Logout always clears memory. A failed delete is returned so callers can
// report it, but the process is signed out either way.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	was := s.current.Username
	s.current, s.state = domain.Session{}, domain.Unauthenticated
	err := s.kv.Delete(ctx, domain.StorageKey)
	if was != "" {
		s.logger.Info("session ended", zap.String("username", was))
	}
	s.unlockAndNotify(domain.Unauthenticated, domain.Session{})
	if err != nil {
		return fmt.Errorf("remove persisted session: %w", err)
	}
	return nil
}

func (s *Store) Current() (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.state == domain.Authenticated
}

func (s *Store) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for every state change and returns its cancel func.
// Listeners run on the goroutine that made the change, in the order the
// changes happened. They may read the store but must not mutate it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// unlockAndNotify must be called with mu held. notifyMu is taken before mu
// is released so deliveries keep the order of the state changes.
func (s *Store) unlockAndNotify(state domain.State, session domain.Session) {
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	for _, fn := range listeners {
		fn(state, session)
	}
}

// Expired reports whether the held token carries an exp claim that has passed.
func (s *Store) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == domain.Authenticated && s.current.Expired(s.clock.Now())
}
