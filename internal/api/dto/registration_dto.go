package dto

import (
	"time"

	"github.com/spec-kit/event-service/internal/domain"
)

// EventSummary is the nested event view inside a registration.
type EventSummary struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	StartsAt   time.Time          `json:"start_date"`
	EndsAt     time.Time          `json:"end_date"`
	Location   *string            `json:"location"`
	Capacity   int                `json:"capacity"`
	Registered int                `json:"registered"`
	Status     domain.EventStatus `json:"status"`
}

// RegistrationResponse is the public view of a registration.
type RegistrationResponse struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	EventID      string        `json:"event_id"`
	RegisteredAt time.Time     `json:"registered_at"`
	Confirmed    bool          `json:"confirmed"`
	User         *UserSummary  `json:"user,omitempty"`
	Event        *EventSummary `json:"event,omitempty"`
}

// NewRegistrationResponse renders a registration with whichever summaries are loaded.
func NewRegistrationResponse(reg *domain.Registration) RegistrationResponse {
	resp := RegistrationResponse{
		ID:           reg.ID,
		UserID:       reg.UserID,
		EventID:      reg.EventID,
		RegisteredAt: reg.RegisteredAt,
		Confirmed:    reg.Confirmed,
	}
	if reg.User != nil {
		resp.User = &UserSummary{ID: reg.User.ID, Name: reg.User.Name, Email: reg.User.Email}
	}
	if reg.Event != nil {
		resp.Event = &EventSummary{
			ID:         reg.Event.ID,
			Title:      reg.Event.Title,
			StartsAt:   reg.Event.StartsAt,
			EndsAt:     reg.Event.EndsAt,
			Location:   reg.Event.Location,
			Capacity:   reg.Event.Capacity,
			Registered: reg.Event.Registered,
			Status:     reg.Event.Status,
		}
	}
	return resp
}

// NewRegistrationResponses renders a list of registrations.
func NewRegistrationResponses(regs []domain.Registration) []RegistrationResponse {
	out := make([]RegistrationResponse, 0, len(regs))
	for i := range regs {
		out = append(out, NewRegistrationResponse(&regs[i]))
	}
	return out
}
