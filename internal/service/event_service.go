package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/events"
	"github.com/spec-kit/event-service/internal/repository"
	apperrors "github.com/spec-kit/event-service/pkg/util/errorutil"
)

// EventService coordinates event and session administration.
type EventService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// EventDependencies bundles collaborators for the event service.
type EventDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// EventCreateInput describes event creation payload.
type EventCreateInput struct {
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	Location    *string
	Capacity    *int
	Status      *domain.EventStatus
}

// EventUpdateInput carries the fields an owner wants to change; nil means keep.
type EventUpdateInput struct {
	Title       *string
	Description *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	Location    *string
	Capacity    *int
	Status      *domain.EventStatus
}

// EventListFilter describes listing parameters.
type EventListFilter struct {
	Search string
	Limit  int
	Offset int
}

// SessionCreateInput describes session creation payload.
type SessionCreateInput struct {
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	SpeakerName string
	SpeakerBio  string
	Capacity    *int
}

// EventDetails is an event with its sessions.
type EventDetails struct {
	Event    *domain.Event
	Sessions []domain.Session
}

// NewEventService constructs the service.
func NewEventService(deps EventDependencies) *EventService {
	return &EventService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
	}
}

// CreateEvent stores a new event owned by creatorID.
func (s *EventService) CreateEvent(ctx context.Context, creatorID string, input EventCreateInput) (*domain.Event, error) {
	event := &domain.Event{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		Location:    input.Location,
		Capacity:    domain.DefaultEventCapacity,
		Status:      domain.EventStatusPending,
		CreatorID:   creatorID,
	}
	if input.Capacity != nil {
		event.Capacity = *input.Capacity
	}
	if input.Status != nil {
		event.Status = *input.Status
	}
	if err := validateEvent(event); err != nil {
		return nil, err
	}

	if err := s.store.Events().Create(ctx, event); err != nil {
		return nil, storeError(err, "event")
	}

	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("creator_id", creatorID))
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventEventCreated, event.ID, creatorID, changedPayload(event)))
	return event, nil
}

// UpdateEvent merges input into the event. Only the creator may update it;
// registered and creator are never changed here.
func (s *EventService) UpdateEvent(ctx context.Context, actorID, eventID string, input EventUpdateInput) (*domain.Event, error) {
	var updated *domain.Event
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		event, err := tx.Events().GetForUpdate(ctx, eventID)
		if err != nil {
			return storeError(err, "event")
		}
		if !event.OwnedBy(actorID) {
			return apperrors.NewForbidden("only the event creator can modify it")
		}

		applyEventUpdate(event, input)
		if err := validateEvent(event); err != nil {
			return err
		}
		if event.Capacity < event.Registered {
			return apperrors.NewValidationError("capacity cannot be lower than current registrations",
				map[string]any{"registered": event.Registered})
		}

		sessions, err := tx.Sessions().ListByEvent(ctx, eventID)
		if err != nil {
			return storeError(err, "session")
		}
		for _, session := range sessions {
			if !event.Contains(session.StartsAt, session.EndsAt) {
				return apperrors.NewValidationError("existing sessions fall outside the new event window",
					map[string]any{"session_id": session.ID})
			}
		}

		if err := tx.Events().Update(ctx, event); err != nil {
			return storeError(err, "event")
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("event updated", zap.String("event_id", eventID), zap.String("actor_id", actorID))
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventEventUpdated, eventID, actorID, changedPayload(updated)))
	return updated, nil
}

// DeleteEvent removes the event together with its sessions and registrations.
func (s *EventService) DeleteEvent(ctx context.Context, actorID, eventID string) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		event, err := tx.Events().GetForUpdate(ctx, eventID)
		if err != nil {
			return storeError(err, "event")
		}
		if !event.OwnedBy(actorID) {
			return apperrors.NewForbidden("only the event creator can delete it")
		}
		return storeError(tx.Events().Delete(ctx, eventID), "event")
	})
	if err != nil {
		return err
	}

	s.logger.Info("event deleted", zap.String("event_id", eventID), zap.String("actor_id", actorID))
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventEventDeleted, eventID, actorID, nil))
	return nil
}

// GetEvent returns the event and its sessions.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*EventDetails, error) {
	event, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, storeError(err, "event")
	}
	sessions, err := s.store.Sessions().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, storeError(err, "session")
	}
	return &EventDetails{Event: event, Sessions: sessions}, nil
}

// ListEvents pages through events, optionally matching title or description.
func (s *EventService) ListEvents(ctx context.Context, filter EventListFilter) ([]domain.Event, error) {
	repoFilter := repository.EventFilter{Limit: filter.Limit, Offset: filter.Offset}
	if term := strings.TrimSpace(filter.Search); term != "" {
		repoFilter.SearchTerm = &term
	}
	list, err := s.store.Events().List(ctx, repoFilter)
	if err != nil {
		return nil, storeError(err, "event")
	}
	return list, nil
}

// CreateSession adds a session inside the event window. Only the event creator may add sessions.
func (s *EventService) CreateSession(ctx context.Context, actorID, eventID string, input SessionCreateInput) (*domain.Session, error) {
	session := &domain.Session{
		EventID:     eventID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		SpeakerName: strings.TrimSpace(input.SpeakerName),
		SpeakerBio:  strings.TrimSpace(input.SpeakerBio),
		Capacity:    domain.DefaultSessionCapacity,
	}
	if input.Capacity != nil {
		session.Capacity = *input.Capacity
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		event, err := tx.Events().GetForUpdate(ctx, eventID)
		if err != nil {
			return storeError(err, "event")
		}
		if !event.OwnedBy(actorID) {
			return apperrors.NewForbidden("only the event creator can add sessions")
		}
		if err := validateSession(session, event); err != nil {
			return err
		}
		return storeError(tx.Sessions().Create(ctx, session), "session")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("session created", zap.String("event_id", eventID), zap.String("session_id", session.ID))
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventSessionCreated, eventID, actorID,
		events.SessionCreatedPayload{
			SessionID:   session.ID,
			Title:       session.Title,
			SpeakerName: session.SpeakerName,
			StartsAt:    session.StartsAt,
			EndsAt:      session.EndsAt,
		}))
	return session, nil
}

// ListSessions returns the sessions of an existing event.
func (s *EventService) ListSessions(ctx context.Context, eventID string) ([]domain.Session, error) {
	if _, err := s.store.Events().GetByID(ctx, eventID); err != nil {
		return nil, storeError(err, "event")
	}
	sessions, err := s.store.Sessions().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, storeError(err, "session")
	}
	return sessions, nil
}

// ListEventRegistrations returns attendees of an event to its creator.
func (s *EventService) ListEventRegistrations(ctx context.Context, actorID, eventID string) ([]domain.Registration, error) {
	event, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, storeError(err, "event")
	}
	if !event.OwnedBy(actorID) {
		return nil, apperrors.NewForbidden("only the event creator can list registrations")
	}
	list, err := s.store.Registrations().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, storeError(err, "registration")
	}
	return list, nil
}

// ListMyRegistrations returns the events userID registered for.
func (s *EventService) ListMyRegistrations(ctx context.Context, userID string) ([]domain.Registration, error) {
	list, err := s.store.Registrations().ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "registration")
	}
	return list, nil
}

func applyEventUpdate(event *domain.Event, input EventUpdateInput) {
	if input.Title != nil {
		event.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		event.Description = strings.TrimSpace(*input.Description)
	}
	if input.StartsAt != nil {
		event.StartsAt = *input.StartsAt
	}
	if input.EndsAt != nil {
		event.EndsAt = *input.EndsAt
	}
	if input.Location != nil {
		event.Location = input.Location
	}
	if input.Capacity != nil {
		event.Capacity = *input.Capacity
	}
	if input.Status != nil {
		event.Status = *input.Status
	}
}

func validateEvent(event *domain.Event) error {
	if event.Title == "" {
		return apperrors.NewValidationError("title is required", nil)
	}
	if !event.StartsAt.Before(event.EndsAt) {
		return apperrors.NewValidationError("event start must be before its end", map[string]any{
			"starts_at": event.StartsAt,
			"ends_at":   event.EndsAt,
		})
	}
	if event.Capacity <= 0 {
		return apperrors.NewValidationError("capacity must be positive", nil)
	}
	if !event.Status.Valid() {
		return apperrors.NewValidationError("unknown event status", map[string]any{"status": event.Status})
	}
	return nil
}

func validateSession(session *domain.Session, event *domain.Event) error {
	if session.Title == "" || session.SpeakerName == "" {
		return apperrors.NewValidationError("title and speaker name are required", nil)
	}
	if !session.StartsAt.Before(session.EndsAt) {
		return apperrors.NewValidationError("session start must be before its end", nil)
	}
	if !event.Contains(session.StartsAt, session.EndsAt) {
		return apperrors.NewValidationError("session must take place within the event window", map[string]any{
			"event_starts_at": event.StartsAt,
			"event_ends_at":   event.EndsAt,
		})
	}
	if session.Capacity <= 0 {
		return apperrors.NewValidationError("capacity must be positive", nil)
	}
	return nil
}

func changedPayload(event *domain.Event) events.EventChangedPayload {
	return events.EventChangedPayload{
		Title:    event.Title,
		StartsAt: event.StartsAt,
		EndsAt:   event.EndsAt,
		Capacity: event.Capacity,
		Status:   string(event.Status),
	}
}
