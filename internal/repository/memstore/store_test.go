package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/repository"
)

func seedUser(t *testing.T, s *Store, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: "u", Email: email, PasswordHash: "x", Role: domain.RoleAttendee, Active: true}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func seedEvent(t *testing.T, s *Store, creatorID string, capacity int) *domain.Event {
	t.Helper()
	start := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	e := &domain.Event{
		Title:     "GopherCon",
		StartsAt:  start,
		EndsAt:    start.Add(8 * time.Hour),
		Capacity:  capacity,
		Status:    domain.EventStatusPending,
		CreatorID: creatorID,
	}
	require.NoError(t, s.Events().Create(context.Background(), e))
	return e
}

func TestUsers_EmailUniqueIgnoresCase(t *testing.T) {
	s := New()
	seedUser(t, s, "ana@example.com")

	err := s.Users().Create(context.Background(), &domain.User{Email: "ANA@example.com", Role: domain.RoleAttendee})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	found, err := s.Users().GetByEmail(context.Background(), "Ana@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", found.Email)
}

func TestUsers_RejectsUnknownRole(t *testing.T) {
	s := New()
	err := s.Users().Create(context.Background(), &domain.User{Email: "a@b.c", Role: "ROOT"})
	assert.ErrorIs(t, err, repository.ErrInvalid)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := New()
	u := seedUser(t, s, "a@example.com")
	e := seedEvent(t, s, u.ID, 5)

	boom := errors.New("boom")
	err := s.WithTx(context.Background(), func(ctx context.Context, tx repository.Store) error {
		require.NoError(t, tx.Registrations().Create(ctx, &domain.Registration{UserID: u.ID, EventID: e.ID, Confirmed: true}))
		_, err := tx.Events().IncrementRegistered(ctx, e.ID)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Events().GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Registered)
	exists, err := s.Registrations().Exists(context.Background(), u.ID, e.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWithTx_RollsBackWhenContextEnds(t *testing.T) {
	s := New()
	u := seedUser(t, s, "a@example.com")
	e := seedEvent(t, s, u.ID, 5)

	ctx, cancel := context.WithCancel(context.Background())
	err := s.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		_, err := tx.Events().IncrementRegistered(ctx, e.ID)
		cancel()
		return err
	})
	require.ErrorIs(t, err, context.Canceled)

	got, err := s.Events().GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Registered)
}

func TestIncrementRegistered_StopsAtCapacity(t *testing.T) {
	s := New()
	u := seedUser(t, s, "a@example.com")
	e := seedEvent(t, s, u.ID, 2)

	const workers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithTx(context.Background(), func(ctx context.Context, tx repository.Store) error {
				_, err := tx.Events().IncrementRegistered(ctx, e.ID)
				return err
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, repository.ErrCapacityReached)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, success)
	got, err := s.Events().GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Registered)
}

func TestEvents_UpdateKeepsCounterAndCreator(t *testing.T) {
	s := New()
	owner := seedUser(t, s, "owner@example.com")
	e := seedEvent(t, s, owner.ID, 3)
	_, err := s.Events().IncrementRegistered(context.Background(), e.ID)
	require.NoError(t, err)

	s.SetClock(func() time.Time { return time.Now().Add(time.Hour) })
	changed := *e
	changed.Title = "renamed"
	changed.Registered = 0
	changed.CreatorID = "someone-else"
	require.NoError(t, s.Events().Update(context.Background(), &changed))

	assert.Equal(t, 1, changed.Registered)
	assert.Equal(t, owner.ID, changed.CreatorID)
	assert.True(t, changed.UpdatedAt.After(e.UpdatedAt))

	changed.Capacity = 0
	assert.ErrorIs(t, s.Events().Update(context.Background(), &changed), repository.ErrInvalid)
}

func TestEvents_DeleteCascades(t *testing.T) {
	s := New()
	u := seedUser(t, s, "a@example.com")
	e := seedEvent(t, s, u.ID, 3)
	require.NoError(t, s.Sessions().Create(context.Background(), &domain.Session{
		EventID: e.ID, Title: "talk", StartsAt: e.StartsAt, EndsAt: e.StartsAt.Add(time.Hour), SpeakerName: "rob", Capacity: 10,
	}))
	require.NoError(t, s.Registrations().Create(context.Background(), &domain.Registration{UserID: u.ID, EventID: e.ID, Confirmed: true}))

	require.NoError(t, s.Events().Delete(context.Background(), e.ID))

	sessions, err := s.Sessions().ListByEvent(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
	regs, err := s.Registrations().ListByUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, regs)
	assert.ErrorIs(t, s.Events().Delete(context.Background(), e.ID), repository.ErrNotFound)
}

func TestEvents_ListSearchAndPaging(t *testing.T) {
	s := New()
	u := seedUser(t, s, "a@example.com")
	for i := 0; i < 12; i++ {
		seedEvent(t, s, u.ID, 1)
	}
	other := seedEvent(t, s, u.ID, 1)
	other.Title = "Rust meetup"
	other.Description = "Borrow checker deep DIVE"
	require.NoError(t, s.Events().Update(context.Background(), other))

	first, err := s.Events().List(context.Background(), repository.EventFilter{})
	require.NoError(t, err)
	assert.Len(t, first, 10)

	rest, err := s.Events().List(context.Background(), repository.EventFilter{Offset: 10})
	require.NoError(t, err)
	assert.Len(t, rest, 3)

	term := "dive"
	found, err := s.Events().List(context.Background(), repository.EventFilter{SearchTerm: &term})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, other.ID, found[0].ID)
}

func TestRegistrations_UniquePerUserAndEvent(t *testing.T) {
	s := New()
	u := seedUser(t, s, "a@example.com")
	e := seedEvent(t, s, u.ID, 3)

	require.NoError(t, s.Registrations().Create(context.Background(), &domain.Registration{UserID: u.ID, EventID: e.ID, Confirmed: true}))
	err := s.Registrations().Create(context.Background(), &domain.Registration{UserID: u.ID, EventID: e.ID, Confirmed: true})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	regs, err := s.Registrations().ListByEvent(context.Background(), e.ID)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	require.NotNil(t, regs[0].User)
	assert.Equal(t, u.Email, regs[0].User.Email)
}
