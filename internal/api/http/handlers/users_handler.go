package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-service/internal/api/dto"
	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/service"
)

// UsersHandler exposes account administration.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(principal.User))
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	q, err := parseQuery(c)
	if err != nil {
		return err
	}
	users, err := h.users.ListUsers(c.UserContext(), q.Limit, q.Skip)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponses(users))
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "user")
	if err != nil {
		return err
	}
	var req dto.UserUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateUser(c.UserContext(), principal.User, id, service.UserUpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(user))
}

// Deactivate handles DELETE /users/:id.
func (h *UsersHandler) Deactivate(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "user")
	if err != nil {
		return err
	}
	if err := h.users.DeactivateUser(c.UserContext(), principal.User, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
