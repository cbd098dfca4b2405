package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/event-service/internal/domain"
)

// EventFilter captures listing parameters.
type EventFilter struct {
	SearchTerm *string
	CreatorID  *string
	Limit      int
	Offset     int
}

// EventRepository encapsulates event persistence.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	// Update writes owner-editable fields only; creator and registered are never touched.
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	// GetForUpdate reads the event and locks its row until the enclosing transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter EventFilter) ([]domain.Event, error)
	// IncrementRegistered adds one to registered only while registered < capacity and
	// returns the new count. ErrCapacityReached means no slot was taken.
	IncrementRegistered(ctx context.Context, id string) (int, error)
}

type eventRepository struct {
	db DBTX
}

// NewEventRepository instantiates repository.
func NewEventRepository(db DBTX) EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, title, description, starts_at, ends_at, location, capacity, registered,
               status, creator_id, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	if err := checkEvent(event); err != nil {
		return err
	}
	const query = `
        INSERT INTO events (title, description, starts_at, ends_at, location, capacity, status, creator_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, registered, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.StartsAt,
		event.EndsAt,
		event.Location,
		event.Capacity,
		event.Status,
		event.CreatorID,
	).Scan(&event.ID, &event.Registered, &event.CreatedAt, &event.UpdatedAt)
	return translate(err)
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	if err := checkEvent(event); err != nil {
		return err
	}
	const query = `
        UPDATE events SET title=$1, description=$2, starts_at=$3, ends_at=$4, location=$5,
            capacity=$6, status=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING registered, creator_id, updated_at`
	err := r.db.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.StartsAt,
		event.EndsAt,
		event.Location,
		event.Capacity,
		event.Status,
		event.ID,
	).Scan(&event.Registered, &event.CreatorID, &event.UpdatedAt)
	return translate(err)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *eventRepository) GetForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

func (r *eventRepository) IncrementRegistered(ctx context.Context, id string) (int, error) {
	const query = `
        UPDATE events SET registered = registered + 1
        WHERE id=$1 AND registered < capacity
        RETURNING registered`
	var registered int
	err := r.db.QueryRow(ctx, query, id).Scan(&registered)
	if err != nil {
		err = translate(err)
		if errors.Is(err, ErrNotFound) {
			return 0, ErrCapacityReached
		}
		return 0, err
	}
	return registered, nil
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]domain.Event, error) {
	base := `SELECT ` + eventColumns + ` FROM events`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		clauses = append(clauses, fmt.Sprintf("creator_id=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + escapeLike(strings.ToLower(strings.TrimSpace(*filter.SearchTerm))) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY starts_at ASC, id ASC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, translate(err)
		}
		result = append(result, *event)
	}
	return result, translate(rows.Err())
}

func (r *eventRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Event, error) {
	event, err := scanEvent(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, translate(err)
	}
	return event, nil
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var event domain.Event
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.StartsAt,
		&event.EndsAt,
		&event.Location,
		&event.Capacity,
		&event.Registered,
		&event.Status,
		&event.CreatorID,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &event, nil
}

func checkEvent(event *domain.Event) error {
	if !event.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalid, event.Status)
	}
	if !event.StartsAt.Before(event.EndsAt) {
		return fmt.Errorf("%w: event must start before it ends", ErrInvalid)
	}
	if event.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrInvalid)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
