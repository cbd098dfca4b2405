package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-service/internal/api/dto"
	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/service"
)

// EventsHandler exposes event and session administration.
type EventsHandler struct {
	events *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(events *service.EventService) *EventsHandler {
	return &EventsHandler{events: events}
}

// List handles GET /events.
func (h *EventsHandler) List(c *fiber.Ctx) error {
	q, err := parseQuery(c)
	if err != nil {
		return err
	}
	list, err := h.events.ListEvents(c.UserContext(), service.EventListFilter{
		Search: q.Search,
		Limit:  q.Limit,
		Offset: q.Skip,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewEventResponses(list))
}

// Get handles GET /events/:id.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	details, err := h.events.GetEvent(c.UserContext(), id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewEventDetailResponse(details.Event, details.Sessions))
}

// Create handles POST /events.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.EventCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	event, err := h.events.CreateEvent(c.UserContext(), principal.UserID(), service.EventCreateInput{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewEventResponse(event))
}

// Update handles PUT /events/:id.
func (h *EventsHandler) Update(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	var req dto.EventUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	event, err := h.events.UpdateEvent(c.UserContext(), principal.UserID(), id, service.EventUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewEventResponse(event))
}

// Delete handles DELETE /events/:id.
func (h *EventsHandler) Delete(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	if err := h.events.DeleteEvent(c.UserContext(), principal.UserID(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListSessions handles GET /events/:id/sessions.
func (h *EventsHandler) ListSessions(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	sessions, err := h.events.ListSessions(c.UserContext(), id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewSessionResponses(sessions))
}

// CreateSession handles POST /events/:id/sessions.
func (h *EventsHandler) CreateSession(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	var req dto.SessionCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	session, err := h.events.CreateSession(c.UserContext(), principal.UserID(), id, service.SessionCreateInput{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		SpeakerName: req.SpeakerName,
		SpeakerBio:  req.SpeakerBio,
		Capacity:    req.Capacity,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewSessionResponse(session))
}

// ListRegistrations handles GET /events/:id/registrations.
func (h *EventsHandler) ListRegistrations(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	regs, err := h.events.ListEventRegistrations(c.UserContext(), principal.UserID(), id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewRegistrationResponses(regs))
}

// MyRegistrations handles GET /me/registrations.
func (h *EventsHandler) MyRegistrations(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	regs, err := h.events.ListMyRegistrations(c.UserContext(), principal.UserID())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewRegistrationResponses(regs))
}
