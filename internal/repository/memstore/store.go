// Package memstore is an in-process repository.Store used when no Postgres DSN is
// configured and by tests. Transactions are serialized by a single mutex and
// rolled back by restoring a snapshot taken at begin.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/repository"
)

type dataset struct {
	users         map[string]domain.User
	events        map[string]domain.Event
	sessions      map[string]domain.Session
	registrations map[string]domain.Registration
}

func newDataset() *dataset {
	return &dataset{
		users:         make(map[string]domain.User),
		events:        make(map[string]domain.Event),
		sessions:      make(map[string]domain.Session),
		registrations: make(map[string]domain.Registration),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.events {
		c.events[k] = v
	}
	for k, v := range d.sessions {
		c.sessions[k] = v
	}
	for k, v := range d.registrations {
		c.registrations[k] = v
	}
	return c
}

type state struct {
	mu   sync.Mutex
	data *dataset
	now  func() time.Time
}

// Store implements repository.Store in memory.
type Store struct {
	state *state
	inTx  bool
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{state: &state{data: newDataset(), now: time.Now}}
}

// SetClock overrides the time source, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.now = now
}

func (s *Store) Users() repository.UserRepository { return userRepo{s} }

func (s *Store) Events() repository.EventRepository { return eventRepo{s} }

func (s *Store) Sessions() repository.SessionRepository { return sessionRepo{s} }

func (s *Store) Registrations() repository.RegistrationRepository { return registrationRepo{s} }

func (s *Store) Ping(context.Context) error { return nil }

// WithTx runs fn while holding the store lock. Writes are discarded when fn
// fails or ctx ends before fn returns.
func (s *Store) WithTx(ctx context.Context, fn func(context.Context, repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.state.data.clone()
	err := fn(ctx, &Store{state: s.state, inTx: true})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.state.data = snapshot
		return err
	}
	return nil
}

func (s *Store) run(fn func(d *dataset, now time.Time) error) error {
	if !s.inTx {
		s.state.mu.Lock()
		defer s.state.mu.Unlock()
	}
	return fn(s.state.data, s.state.now().UTC())
}

func newID() string {
	return uuid.NewString()
}
