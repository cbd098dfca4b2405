package dto

import (
	"time"

	"github.com/spec-kit/event-service/internal/domain"
)

// EventCreateRequest payload for new events.
type EventCreateRequest struct {
	Title       string              `json:"title" validate:"required,max=200"`
	Description string              `json:"description" validate:"max=5000"`
	StartsAt    time.Time           `json:"start_date" validate:"required"`
	EndsAt      time.Time           `json:"end_date" validate:"required"`
	Location    *string             `json:"location" validate:"omitempty,max=255"`
	Capacity    *int                `json:"capacity" validate:"omitempty,gt=0"`
	Status      *domain.EventStatus `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS FINISHED CANCELED"`
}

// EventUpdateRequest payload for partial event updates.
type EventUpdateRequest struct {
	Title       *string             `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string             `json:"description" validate:"omitempty,max=5000"`
	StartsAt    *time.Time          `json:"start_date"`
	EndsAt      *time.Time          `json:"end_date"`
	Location    *string             `json:"location" validate:"omitempty,max=255"`
	Capacity    *int                `json:"capacity" validate:"omitempty,gt=0"`
	Status      *domain.EventStatus `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS FINISHED CANCELED"`
}

// SessionCreateRequest payload for new sessions.
type SessionCreateRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	StartsAt    time.Time `json:"start_date" validate:"required"`
	EndsAt      time.Time `json:"end_date" validate:"required"`
	SpeakerName string    `json:"speaker_name" validate:"required,max=100"`
	SpeakerBio  string    `json:"speaker_bio" validate:"max=2000"`
	Capacity    *int      `json:"capacity" validate:"omitempty,gt=0"`
}

// ListQuery carries search and paging parameters.
type ListQuery struct {
	Search string `query:"search" validate:"max=200"`
	Skip   int    `query:"skip" validate:"gte=0"`
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
}

// EventResponse is the public view of an event.
type EventResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	StartsAt    time.Time          `json:"start_date"`
	EndsAt      time.Time          `json:"end_date"`
	Location    *string            `json:"location"`
	Capacity    int                `json:"capacity"`
	Registered  int                `json:"registered"`
	Status      domain.EventStatus `json:"status"`
	CreatorID   string             `json:"creator_id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// EventDetailResponse is an event with its sessions; sessions is always present.
type EventDetailResponse struct {
	EventResponse
	Sessions []SessionResponse `json:"sessions"`
}

// SessionResponse is the public view of a session.
type SessionResponse struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"start_date"`
	EndsAt      time.Time `json:"end_date"`
	SpeakerName string    `json:"speaker_name"`
	SpeakerBio  string    `json:"speaker_bio"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEventResponse renders an event.
func NewEventResponse(event *domain.Event) EventResponse {
	return EventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		StartsAt:    event.StartsAt,
		EndsAt:      event.EndsAt,
		Location:    event.Location,
		Capacity:    event.Capacity,
		Registered:  event.Registered,
		Status:      event.Status,
		CreatorID:   event.CreatorID,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

// NewEventDetailResponse renders an event with its sessions, always including the list.
func NewEventDetailResponse(event *domain.Event, sessions []domain.Session) EventDetailResponse {
	return EventDetailResponse{
		EventResponse: NewEventResponse(event),
		Sessions:      NewSessionResponses(sessions),
	}
}

// NewEventResponses renders a list of events.
func NewEventResponses(events []domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, NewEventResponse(&events[i]))
	}
	return out
}

// NewSessionResponse renders a session.
func NewSessionResponse(session *domain.Session) SessionResponse {
	return SessionResponse{
		ID:          session.ID,
		EventID:     session.EventID,
		Title:       session.Title,
		Description: session.Description,
		StartsAt:    session.StartsAt,
		EndsAt:      session.EndsAt,
		SpeakerName: session.SpeakerName,
		SpeakerBio:  session.SpeakerBio,
		Capacity:    session.Capacity,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}
}

// NewSessionResponses renders a list of sessions.
func NewSessionResponses(sessions []domain.Session) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, NewSessionResponse(&sessions[i]))
	}
	return out
}
