package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingDB fails every statement with err.
type failingDB struct{ err error }

func (f failingDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, f.err
}

func (f failingDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, f.err
}

func (f failingDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return errRow{f.err}
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}), ErrDuplicate)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23514"}), ErrInvalid)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23503"}), ErrNotFound)

	plain := errors.New("connection reset")
	assert.Equal(t, plain, translate(plain))
}

func TestListQueries_TranslateDriverErrors(t *testing.T) {
	db := failingDB{err: &pgconn.PgError{Code: "23514", ConstraintName: "events_status_check"}}
	ctx := context.Background()

	_, err := NewEventRepository(db).List(ctx, EventFilter{})
	require.ErrorIs(t, err, ErrInvalid)

	_, err = NewUserRepository(db).List(ctx, 10, 0)
	require.ErrorIs(t, err, ErrInvalid)

	_, err = NewSessionRepository(db).ListByEvent(ctx, "event-id")
	require.ErrorIs(t, err, ErrInvalid)

	_, err = NewRegistrationRepository(db).ListByEvent(ctx, "event-id")
	require.ErrorIs(t, err, ErrInvalid)

	_, err = NewRegistrationRepository(db).ListByUser(ctx, "user-id")
	require.ErrorIs(t, err, ErrInvalid)
}
