package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Storage level errors shared by every Store implementation.
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicate       = errors.New("duplicate record")
	ErrCapacityReached = errors.New("capacity reached")
	ErrInvalid         = errors.New("invalid record")
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store groups the repositories and runs units of work atomically.
type Store interface {
	Users() UserRepository
	Events() EventRepository
	Sessions() SessionRepository
	Registrations() RegistrationRepository

	// WithTx runs fn inside a single transaction. fn must use the Store it
	// receives; any returned error rolls back every write made through it.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	Ping(ctx context.Context) error
}
