package v1

import (
	"strings"
	"time"

	"task-manager/internal/api/response"
	"task-manager/internal/api/v1/handlers"
	"task-manager/internal/config"
	"task-manager/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// NewApp membuat aplikasi Fiber lengkap dengan middleware dan semua route.
func NewApp(deps *config.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               deps.Config.AppName,
		ErrorHandler:          response.FiberErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(deps.Config.CORSOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        deps.Config.RateLimitMax,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Fail(c, fiber.StatusTooManyRequests, response.CodeRateLimited, "Too many requests")
		},
	}))

	RegisterRoutes(app, deps)
	return app
}

func RegisterRoutes(app *fiber.App, deps *config.Dependencies) {
	h := handlers.New(deps)
	requireToken := middleware.UseToken(deps.Auth)

	app.Get("/", h.Root)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	// Auth
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", h.Register)
	authRoutes.Post("/login", h.Login)
	authRoutes.Post("/refresh", h.Refresh)
	authRoutes.Get("/me", requireToken, h.Me)
	authRoutes.Post("/logout", requireToken, h.Logout)

	// Task
	taskRoutes := api.Group("/tasks", requireToken)
	taskRoutes.Post("/", h.CreateTask)
	taskRoutes.Get("/", h.ListTasks)
	taskRoutes.Get("/:id", h.GetTask)
	taskRoutes.Put("/:id", h.UpdateTask)
	taskRoutes.Delete("/:id", h.DeleteTask)

	// Event task realtime
	app.Get("/ws/tasks", h.UpgradeTaskFeed, h.TaskFeed())
}
