package handlers

import "github.com/gofiber/fiber/v2"

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"version":  h.deps.Config.AppVersion,
		"app_name": h.deps.Config.AppName,
	})
}

func (h *Handler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to " + h.deps.Config.AppName,
		"version": h.deps.Config.AppVersion,
	})
}
