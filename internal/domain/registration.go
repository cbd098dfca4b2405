package domain

import "time"

// Registration records a user's attendance at an event.
// (UserID, EventID) is unique.
type Registration struct {
	ID           string
	UserID       string
	EventID      string
	RegisteredAt time.Time
	Confirmed    bool

	User  *User
	Event *Event
}
