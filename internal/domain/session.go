package domain

import "time"

// DefaultSessionCapacity applies when a create request omits capacity.
const DefaultSessionCapacity = 50

// Session is a talk or slot scheduled inside an event window.
type Session struct {
	ID          string
	EventID     string
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	SpeakerName string
	SpeakerBio  string
	Capacity    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
