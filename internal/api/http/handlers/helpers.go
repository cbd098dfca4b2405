package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/event-service/internal/api/dto"
	apperrors "github.com/spec-kit/event-service/pkg/util/errorutil"
)

// pathID reads a uuid route parameter. Malformed ids cannot exist, so they are reported as missing.
func pathID(c *fiber.Ctx, name, resource string) (string, error) {
	raw := c.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.NewNotFound(resource, map[string]any{"id": raw})
	}
	return id.String(), nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	return dto.Validate(out)
}

func parseQuery(c *fiber.Ctx) (dto.ListQuery, error) {
	var q dto.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return q, fiber.NewError(http.StatusBadRequest, "invalid query parameters")
	}
	return q, dto.Validate(q)
}

func data(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{"data": payload})
}
