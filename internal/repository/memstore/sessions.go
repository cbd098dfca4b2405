package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/repository"
)

type sessionRepo struct{ s *Store }

func (r sessionRepo) Create(_ context.Context, session *domain.Session) error {
	if !session.StartsAt.Before(session.EndsAt) || session.Capacity <= 0 {
		return fmt.Errorf("%w: sessions_check", repository.ErrInvalid)
	}
	return r.s.run(func(d *dataset, now time.Time) error {
		if _, ok := d.events[session.EventID]; !ok {
			return fmt.Errorf("%w: sessions_event_id_fkey", repository.ErrNotFound)
		}
		session.ID = newID()
		session.CreatedAt = now
		session.UpdatedAt = now
		d.sessions[session.ID] = *session
		return nil
	})
}

func (r sessionRepo) ListByEvent(_ context.Context, eventID string) ([]domain.Session, error) {
	var out []domain.Session
	err := r.s.run(func(d *dataset, _ time.Time) error {
		for _, session := range d.sessions {
			if session.EventID == eventID {
				out = append(out, session)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out, err
}
