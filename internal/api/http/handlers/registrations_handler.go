package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-service/internal/api/dto"
	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/service"
)

// RegistrationsHandler exposes event attendance.
type RegistrationsHandler struct {
	registrations *service.RegistrationService
}

// NewRegistrationsHandler constructs handler.
func NewRegistrationsHandler(registrations *service.RegistrationService) *RegistrationsHandler {
	return &RegistrationsHandler{registrations: registrations}
}

// Register handles POST /events/:id/register.
func (h *RegistrationsHandler) Register(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	reg, err := h.registrations.Register(c.UserContext(), id, principal.UserID())
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewRegistrationResponse(reg))
}
