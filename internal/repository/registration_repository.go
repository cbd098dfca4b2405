package repository

import (
	"context"

	"github.com/spec-kit/event-service/internal/domain"
)

// RegistrationRepository persists attendance records.
type RegistrationRepository interface {
	// Create inserts the row; a second row for the same (user, event) fails with ErrDuplicate.
	Create(ctx context.Context, registration *domain.Registration) error
	Exists(ctx context.Context, userID, eventID string) (bool, error)
	// ListByEvent returns the event's registrations with User populated.
	ListByEvent(ctx context.Context, eventID string) ([]domain.Registration, error)
	// ListByUser returns the user's registrations with Event populated.
	ListByUser(ctx context.Context, userID string) ([]domain.Registration, error)
}

type registrationRepository struct {
	db DBTX
}

// NewRegistrationRepository constructs repository.
func NewRegistrationRepository(db DBTX) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) Create(ctx context.Context, registration *domain.Registration) error {
	const query = `
        INSERT INTO registrations (user_id, event_id, confirmed)
        VALUES ($1,$2,$3)
        RETURNING id, registered_at`
	err := r.db.QueryRow(ctx, query,
		registration.UserID,
		registration.EventID,
		registration.Confirmed,
	).Scan(&registration.ID, &registration.RegisteredAt)
	return translate(err)
}

func (r *registrationRepository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM registrations WHERE user_id=$1 AND event_id=$2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, eventID).Scan(&exists); err != nil {
		return false, translate(err)
	}
	return exists, nil
}

func (r *registrationRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.Registration, error) {
	const query = `
        SELECT r.id, r.user_id, r.event_id, r.registered_at, r.confirmed,
               u.id, u.name, u.email, u.password_hash, u.role, u.is_active, u.created_at, u.updated_at
        FROM registrations r
        JOIN users u ON u.id = r.user_id
        WHERE r.event_id=$1
        ORDER BY r.registered_at ASC, r.id ASC`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Registration
	for rows.Next() {
		var reg domain.Registration
		var user domain.User
		if err := rows.Scan(
			&reg.ID, &reg.UserID, &reg.EventID, &reg.RegisteredAt, &reg.Confirmed,
			&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.Active,
			&user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, translate(err)
		}
		reg.User = &user
		result = append(result, reg)
	}
	return result, translate(rows.Err())
}

func (r *registrationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Registration, error) {
	const query = `
        SELECT r.id, r.user_id, r.event_id, r.registered_at, r.confirmed,
               e.id, e.title, e.description, e.starts_at, e.ends_at, e.location, e.capacity,
               e.registered, e.status, e.creator_id, e.created_at, e.updated_at
        FROM registrations r
        JOIN events e ON e.id = r.event_id
        WHERE r.user_id=$1
        ORDER BY e.starts_at ASC, r.id ASC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Registration
	for rows.Next() {
		var reg domain.Registration
		var event domain.Event
		if err := rows.Scan(
			&reg.ID, &reg.UserID, &reg.EventID, &reg.RegisteredAt, &reg.Confirmed,
			&event.ID, &event.Title, &event.Description, &event.StartsAt, &event.EndsAt,
			&event.Location, &event.Capacity, &event.Registered, &event.Status, &event.CreatorID,
			&event.CreatedAt, &event.UpdatedAt,
		); err != nil {
			return nil, translate(err)
		}
		reg.Event = &event
		result = append(result, reg)
	}
	return result, translate(rows.Err())
}
