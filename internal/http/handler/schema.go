package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"goout/internal/schema"
)

// SchemaIndex godoc
// @Summary Every kind descriptor plus the shared enumerations
// @Tags schema
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/schema [get]
func SchemaIndex(reg *schema.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(reg)
	}
}

// SchemaKind godoc
// @Summary One kind descriptor, looked up by name or path
// @Tags schema
// @Produce json
// @Param kind path string true "Kind name or path"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorPayload
// @Router /api/schema/{kind} [get]
func SchemaKind(reg *schema.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		k, err := reg.Lookup(c.Params("kind"))
		if err != nil {
			if errors.Is(err, schema.ErrUnknownKind) {
				return writeError(c, fiber.StatusNotFound, "UNKNOWN_KIND", "unknown resource kind")
			}
			return err
		}
		return c.JSON(k)
	}
}
