package repository

import (
	"context"

	"github.com/spec-kit/event-service/internal/domain"
)

// SessionRepository manages persistence for event sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	ListByEvent(ctx context.Context, eventID string) ([]domain.Session, error)
}

type sessionRepository struct {
	db DBTX
}

// NewSessionRepository constructs repository.
func NewSessionRepository(db DBTX) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	const query = `
        INSERT INTO sessions (event_id, title, description, starts_at, ends_at, speaker_name, speaker_bio, capacity)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		session.EventID,
		session.Title,
		session.Description,
		session.StartsAt,
		session.EndsAt,
		session.SpeakerName,
		session.SpeakerBio,
		session.Capacity,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	return translate(err)
}

func (r *sessionRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.Session, error) {
	const query = `
        SELECT id, event_id, title, description, starts_at, ends_at, speaker_name, speaker_bio,
               capacity, created_at, updated_at
        FROM sessions WHERE event_id=$1 ORDER BY starts_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.EventID, &s.Title, &s.Description, &s.StartsAt, &s.EndsAt,
			&s.SpeakerName, &s.SpeakerBio, &s.Capacity, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, translate(err)
		}
		result = append(result, s)
	}
	return result, translate(rows.Err())
}
