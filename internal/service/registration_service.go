package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/events"
	"github.com/spec-kit/event-service/internal/observability"
	"github.com/spec-kit/event-service/internal/repository"
	apperrors "github.com/spec-kit/event-service/pkg/util/errorutil"
)

// RegistrationService enforces the attendance invariants: one registration per
// user and event, and registered never above capacity.
type RegistrationService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// RegistrationDependencies bundles collaborators for the registration service.
type RegistrationDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewRegistrationService constructs the service.
func NewRegistrationService(deps RegistrationDependencies) *RegistrationService {
	return &RegistrationService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     loggerOrNop(deps.Logger),
	}
}

// Register records userID's attendance at eventID.
//
// The event row is locked for the whole unit of work; the insert leans on the
// (user, event) unique constraint and the increment only applies while a slot
// is free. Any failure rolls back both writes. Callers should not retry
// NotFound, Conflict or CapacityExceeded.
func (s *RegistrationService) Register(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	var result *domain.Registration
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		event, err := tx.Events().GetForUpdate(ctx, eventID)
		if err != nil {
			return storeError(err, "event")
		}

		exists, err := tx.Registrations().Exists(ctx, userID, eventID)
		if err != nil {
			return storeError(err, "registration")
		}
		if exists {
			return alreadyRegistered(eventID)
		}
		if event.IsFull() {
			return capacityExceeded(event)
		}

		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return storeError(err, "user")
		}

		registration := &domain.Registration{UserID: userID, EventID: eventID, Confirmed: true}
		if err := tx.Registrations().Create(ctx, registration); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return alreadyRegistered(eventID)
			}
			return storeError(err, "registration")
		}

		registered, err := tx.Events().IncrementRegistered(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrCapacityReached) {
				return capacityExceeded(event)
			}
			return storeError(err, "event")
		}

		event.Registered = registered
		registration.User = user
		registration.Event = event
		result = registration
		return nil
	})

	s.metrics.RecordRegistration(registrationOutcome(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info("registration created",
		zap.String("registration_id", result.ID),
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
		zap.Int("registered", result.Event.Registered),
		zap.Int("capacity", result.Event.Capacity))

	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventRegistrationCreated, eventID, userID,
		events.RegistrationCreatedPayload{
			RegistrationID: result.ID,
			UserID:         userID,
			Registered:     result.Event.Registered,
			Capacity:       result.Event.Capacity,
		}))
	return result, nil
}

func alreadyRegistered(eventID string) error {
	return apperrors.NewConflict("user already registered for this event", map[string]any{"event_id": eventID})
}

func capacityExceeded(event *domain.Event) error {
	return apperrors.NewCapacityExceeded(map[string]any{
		"event_id": event.ID,
		"capacity": event.Capacity,
	})
}

func registrationOutcome(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeRegistered
	case errors.Is(err, apperrors.ErrNotFound):
		return observability.OutcomeNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return observability.OutcomeDuplicate
	case errors.Is(err, apperrors.ErrCapacityExceeded):
		return observability.OutcomeCapacityExceeded
	}
	return observability.OutcomeError
}
