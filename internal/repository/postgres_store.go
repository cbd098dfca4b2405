package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
	db   DBTX
}

// NewPostgresStore creates a Store backed by pool.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("pool cannot be nil")
	}
	return &PostgresStore{pool: pool, db: pool}, nil
}

func (s *PostgresStore) Users() UserRepository { return NewUserRepository(s.db) }

func (s *PostgresStore) Events() EventRepository { return NewEventRepository(s.db) }

func (s *PostgresStore) Sessions() SessionRepository { return NewSessionRepository(s.db) }

func (s *PostgresStore) Registrations() RegistrationRepository {
	return NewRegistrationRepository(s.db)
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// WithTx executes fn within a READ COMMITTED transaction. Row locks taken through
// GetForUpdate are held until commit or rollback. Nested calls join the outer transaction.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(context.Context, Store) error) error {
	if s.tx != nil {
		return fn(ctx, s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txStore := &PostgresStore{pool: s.pool, tx: tx, db: tx}
	if err := fn(ctx, txStore); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("rollback after error %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
