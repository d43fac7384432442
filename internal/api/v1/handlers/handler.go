package handlers

import (
	"task-manager/internal/api/response"
	"task-manager/internal/config"

	"github.com/gofiber/fiber/v2"
)

// Handler memegang dependency yang dibutuhkan semua handler.
type Handler struct {
	deps *config.Dependencies
}

func New(deps *config.Dependencies) *Handler {
	return &Handler{deps: deps}
}

// bind mem-parse lalu memvalidasi body. Bila ok=false, response error
// sudah ditulis dan err harus langsung dikembalikan.
func (h *Handler) bind(c *fiber.Ctx, dst interface{}) (ok bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		return false, response.BadRequest(c, "Invalid request body")
	}
	if err := h.deps.Validate.Struct(dst); err != nil {
		return false, response.Validation(c, err)
	}
	return true, nil
}
