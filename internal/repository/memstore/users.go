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

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	if !user.Role.Valid() {
		return fmt.Errorf("%w: role %q", repository.ErrInvalid, user.Role)
	}
	return r.s.run(func(d *dataset, now time.Time) error {
		if emailTaken(d, user.Email, "") {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
		user.ID = newID()
		user.CreatedAt = now
		user.UpdatedAt = now
		d.users[user.ID] = *user
		return nil
	})
}

func (r userRepo) Update(_ context.Context, user *domain.User) error {
	if !user.Role.Valid() {
		return fmt.Errorf("%w: role %q", repository.ErrInvalid, user.Role)
	}
	return r.s.run(func(d *dataset, now time.Time) error {
		current, ok := d.users[user.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if emailTaken(d, user.Email, user.ID) {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
		user.CreatedAt = current.CreatedAt
		user.UpdatedAt = now
		d.users[user.ID] = *user
		return nil
	})
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	var out *domain.User
	err := r.s.run(func(d *dataset, _ time.Time) error {
		user, ok := d.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &user
		return nil
	})
	return out, err
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	var out *domain.User
	err := r.s.run(func(d *dataset, _ time.Time) error {
		for _, user := range d.users {
			if strings.EqualFold(user.Email, email) {
				u := user
				out = &u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r userRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	var out []domain.User
	err := r.s.run(func(d *dataset, _ time.Time) error {
		for _, user := range d.users {
			out = append(out, user)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return page(out, limit, offset), err
}

func emailTaken(d *dataset, email, exceptID string) bool {
	for id, user := range d.users {
		if id != exceptID && strings.EqualFold(user.Email, email) {
			return true
		}
	}
	return false
}

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
