package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/repository"
)

type registrationRepo struct{ s *Store }

func (r registrationRepo) Create(_ context.Context, registration *domain.Registration) error {
	return r.s.run(func(d *dataset, now time.Time) error {
		if _, ok := d.users[registration.UserID]; !ok {
			return fmt.Errorf("%w: registrations_user_id_fkey", repository.ErrNotFound)
		}
		if _, ok := d.events[registration.EventID]; !ok {
			return fmt.Errorf("%w: registrations_event_id_fkey", repository.ErrNotFound)
		}
		if findRegistration(d, registration.UserID, registration.EventID) {
			return fmt.Errorf("%w: registrations_user_event_key", repository.ErrDuplicate)
		}
		registration.ID = newID()
		registration.RegisteredAt = now
		stored := *registration
		stored.User, stored.Event = nil, nil
		d.registrations[stored.ID] = stored
		return nil
	})
}

func (r registrationRepo) Exists(_ context.Context, userID, eventID string) (bool, error) {
	var exists bool
	err := r.s.run(func(d *dataset, _ time.Time) error {
		exists = findRegistration(d, userID, eventID)
		return nil
	})
	return exists, err
}

func (r registrationRepo) ListByEvent(_ context.Context, eventID string) ([]domain.Registration, error) {
	var out []domain.Registration
	err := r.s.run(func(d *dataset, _ time.Time) error {
		for _, reg := range d.registrations {
			if reg.EventID != eventID {
				continue
			}
			user := d.users[reg.UserID]
			reg.User = &user
			out = append(out, reg)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
	return out, err
}

func (r registrationRepo) ListByUser(_ context.Context, userID string) ([]domain.Registration, error) {
	var out []domain.Registration
	err := r.s.run(func(d *dataset, _ time.Time) error {
		for _, reg := range d.registrations {
			if reg.UserID != userID {
				continue
			}
			event := d.events[reg.EventID]
			reg.Event = &event
			out = append(out, reg)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Event, out[j].Event
		if a.StartsAt.Equal(b.StartsAt) {
			return out[i].ID < out[j].ID
		}
		return a.StartsAt.Before(b.StartsAt)
	})
	return out, err
}

func findRegistration(d *dataset, userID, eventID string) bool {
	for _, reg := range d.registrations {
		if reg.UserID == userID && reg.EventID == eventID {
			return true
		}
	}
	return false
}
