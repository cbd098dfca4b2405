//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/persistence"
	"github.com/spec-kit/event-service/internal/repository"
	"github.com/spec-kit/event-service/internal/service"
	"github.com/spec-kit/event-service/pkg/util/errorutil"
)

var (
	sharedOnce    sync.Once
	sharedInitErr error
	sharedPool    *pgxpool.Pool
)

func TestMain(m *testing.M) {
	code := m.Run()
	if sharedPool != nil {
		sharedPool.Close()
	}
	os.Exit(code)
}

func setupStore(t *testing.T) *repository.PostgresStore {
	t.Helper()
	sharedOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("events"),
			postgres.WithUsername("events"),
			postgres.WithPassword("events"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(time.Minute),
			),
		)
		if err != nil {
			sharedInitErr = err
			return
		}
		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedInitErr = err
			return
		}
		if err := persistence.MigrateUp(dsn, zap.NewNop()); err != nil {
			sharedInitErr = err
			return
		}
		sharedPool, sharedInitErr = pgxpool.New(ctx, dsn)
	})
	require.NoError(t, sharedInitErr)

	_, err := sharedPool.Exec(context.Background(), `TRUNCATE registrations, sessions, events, users CASCADE`)
	require.NoError(t, err)

	store, err := repository.NewPostgresStore(sharedPool)
	require.NoError(t, err)
	return store
}

func seedUser(t *testing.T, store repository.Store, email string) *domain.User {
	t.Helper()
	user := &domain.User{Name: email, Email: email, PasswordHash: "x", Role: domain.RoleAttendee, Active: true}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func seedEvent(t *testing.T, store repository.Store, creatorID string, capacity int) *domain.Event {
	t.Helper()
	start := time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)
	event := &domain.Event{
		Title:     "Gophercon",
		StartsAt:  start,
		EndsAt:    start.Add(8 * time.Hour),
		Capacity:  capacity,
		Status:    domain.EventStatusPending,
		CreatorID: creatorID,
	}
	require.NoError(t, store.Events().Create(context.Background(), event))
	return event
}

func TestPostgresStore_UserEmailUnique(t *testing.T) {
	store := setupStore(t)
	seedUser(t, store, "ada@example.com")

	dup := &domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x", Role: domain.RoleAttendee, Active: true}
	err := store.Users().Create(context.Background(), dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestPostgresStore_IncrementStopsAtCapacity(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner@example.com")
	event := seedEvent(t, store, owner.ID, 1)

	registered, err := store.Events().IncrementRegistered(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, registered)

	_, err = store.Events().IncrementRegistered(ctx, event.ID)
	assert.ErrorIs(t, err, repository.ErrCapacityReached)
}

func TestPostgresStore_WithTxRollsBack(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner@example.com")
	event := seedEvent(t, store, owner.ID, 5)

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Events().IncrementRegistered(ctx, event.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	reloaded, err := store.Events().GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Registered)
}

func TestPostgresStore_DeleteEventCascades(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner@example.com")
	event := seedEvent(t, store, owner.ID, 5)
	require.NoError(t, store.Registrations().Create(ctx, &domain.Registration{UserID: owner.ID, EventID: event.ID, Confirmed: true}))

	require.NoError(t, store.Events().Delete(ctx, event.ID))

	regs, err := store.Registrations().ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, regs)
	assert.ErrorIs(t, store.Events().Delete(ctx, event.ID), repository.ErrNotFound)
}

func TestRegistrationService_ConcurrentOnPostgres(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner@example.com")
	event := seedEvent(t, store, owner.ID, 5)

	const attempts = 20
	users := make([]*domain.User, attempts)
	for i := range users {
		users[i] = seedUser(t, store, fmt.Sprintf("attendee%02d@example.com", i))
	}

	svc := service.NewRegistrationService(service.RegistrationDependencies{Store: store})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		full      int
	)
	for _, user := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := svc.Register(ctx, event.ID, userID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, errorutil.ErrCapacityExceeded):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(user.ID)
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, attempts-5, full)

	reloaded, err := store.Events().GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.Registered)

	regs, err := store.Registrations().ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, regs, 5)
}

func TestRegistrationService_ConcurrentDuplicateOnPostgres(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner@example.com")
	attendee := seedUser(t, store, "attendee@example.com")
	event := seedEvent(t, store, owner.ID, 10)

	svc := service.NewRegistrationService(service.RegistrationDependencies{Store: store})

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, event.ID, attendee.ID)
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, errorutil.ErrConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, conflicts)

	reloaded, err := store.Events().GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Registered)
}
