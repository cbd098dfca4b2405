package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/repository"
)

type eventRepo struct{ s *Store }

func (r eventRepo) Create(_ context.Context, event *domain.Event) error {
	if err := checkEvent(event); err != nil {
		return err
	}
	return r.s.run(func(d *dataset, now time.Time) error {
		if _, ok := d.users[event.CreatorID]; !ok {
			return fmt.Errorf("%w: events_creator_id_fkey", repository.ErrNotFound)
		}
		event.ID = newID()
		event.Registered = 0
		event.CreatedAt = now
		event.UpdatedAt = now
		d.events[event.ID] = *event
		return nil
	})
}

func (r eventRepo) Update(_ context.Context, event *domain.Event) error {
	if err := checkEvent(event); err != nil {
		return err
	}
	return r.s.run(func(d *dataset, now time.Time) error {
		current, ok := d.events[event.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if event.Capacity < current.Registered {
			return fmt.Errorf("%w: events_registered_check", repository.ErrInvalid)
		}
		event.Registered = current.Registered
		event.CreatorID = current.CreatorID
		event.CreatedAt = current.CreatedAt
		event.UpdatedAt = now
		d.events[event.ID] = *event
		return nil
	})
}

func (r eventRepo) Delete(_ context.Context, id string) error {
	return r.s.run(func(d *dataset, _ time.Time) error {
		if _, ok := d.events[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.events, id)
		for sid, session := range d.sessions {
			if session.EventID == id {
				delete(d.sessions, sid)
			}
		}
		for rid, reg := range d.registrations {
			if reg.EventID == id {
				delete(d.registrations, rid)
			}
		}
		return nil
	})
}

func (r eventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	var out *domain.Event
	err := r.s.run(func(d *dataset, _ time.Time) error {
		event, ok := d.events[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &event
		return nil
	})
	return out, err
}

// GetForUpdate needs no row lock here: transactions already hold the store mutex.
func (r eventRepo) GetForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return r.GetByID(ctx, id)
}

func (r eventRepo) IncrementRegistered(_ context.Context, id string) (int, error) {
	var registered int
	err := r.s.run(func(d *dataset, _ time.Time) error {
		event, ok := d.events[id]
		if !ok || event.Registered >= event.Capacity {
			return repository.ErrCapacityReached
		}
		event.Registered++
		d.events[id] = event
		registered = event.Registered
		return nil
	})
	return registered, err
}

func (r eventRepo) List(_ context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	var search string
	if filter.SearchTerm != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
	}
	var out []domain.Event
	err := r.s.run(func(d *dataset, _ time.Time) error {
		for _, event := range d.events {
			if filter.CreatorID != nil && event.CreatorID != *filter.CreatorID {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(event.Title), search) &&
				!strings.Contains(strings.ToLower(event.Description), search) {
				continue
			}
			out = append(out, event)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return page(out, filter.Limit, filter.Offset), err
}

func checkEvent(event *domain.Event) error {
	if !event.Status.Valid() {
		return fmt.Errorf("%w: status %q", repository.ErrInvalid, event.Status)
	}
	if !event.StartsAt.Before(event.EndsAt) {
		return fmt.Errorf("%w: event must start before it ends", repository.ErrInvalid)
	}
	if event.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", repository.ErrInvalid)
	}
	return nil
}
