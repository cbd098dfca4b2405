package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers. Values double as broker routing keys.
type EventType string

const (
	EventRegistrationCreated EventType = "registration.created"
	EventEventCreated        EventType = "event.created"
	EventEventUpdated        EventType = "event.updated"
	EventEventDeleted        EventType = "event.deleted"
	EventSessionCreated      EventType = "session.created"
)

// AllTypes lists every event type services emit.
var AllTypes = []EventType{
	EventRegistrationCreated,
	EventEventCreated,
	EventEventUpdated,
	EventEventDeleted,
	EventSessionCreated,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EventID   string      `json:"event_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, eventID, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EventID:   eventID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// RegistrationCreatedPayload payload.
type RegistrationCreatedPayload struct {
	RegistrationID string `json:"registration_id"`
	UserID         string `json:"user_id"`
	Registered     int    `json:"registered"`
	Capacity       int    `json:"capacity"`
}

// EventChangedPayload is shared by event.created and event.updated.
type EventChangedPayload struct {
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Capacity int       `json:"capacity"`
	Status   string    `json:"status"`
}

// SessionCreatedPayload payload.
type SessionCreatedPayload struct {
	SessionID   string    `json:"session_id"`
	Title       string    `json:"title"`
	SpeakerName string    `json:"speaker_name"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}
