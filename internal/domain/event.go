package domain

import "time"

// EventStatus enumerates lifecycle states for events.
type EventStatus string

const (
	EventStatusPending    EventStatus = "PENDING"
	EventStatusInProgress EventStatus = "IN_PROGRESS"
	EventStatusFinished   EventStatus = "FINISHED"
	EventStatusCanceled   EventStatus = "CANCELED"
)

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPending, EventStatusInProgress, EventStatusFinished, EventStatusCanceled:
		return true
	}
	return false
}

// DefaultEventCapacity applies when a create request omits capacity.
const DefaultEventCapacity = 100

// Event is the aggregate attendees register for.
// Registered is only ever changed by the registration engine.
type Event struct {
	ID          string
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	Location    *string
	Capacity    int
	Registered  int
	Status      EventStatus
	CreatorID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Remaining returns the number of free slots.
func (e *Event) Remaining() int {
	return e.Capacity - e.Registered
}

// IsFull returns true when no slots remain.
func (e *Event) IsFull() bool {
	return e.Registered >= e.Capacity
}

// Contains reports whether [start, end] lies within the event window.
func (e *Event) Contains(start, end time.Time) bool {
	return !start.Before(e.StartsAt) && !end.After(e.EndsAt)
}

// OwnedBy reports whether userID created the event.
func (e *Event) OwnedBy(userID string) bool {
	return e.CreatorID == userID
}
