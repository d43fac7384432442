package handlers

import (
	"strconv"
	"strings"

	"task-manager/internal/api/response"
	"task-manager/internal/middleware"
	"task-manager/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

type createTaskRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=5000"`
}

// updateTaskRequest: field yang tidak dikirim tidak diubah.
type updateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

type taskListResponse struct {
	Tasks []models.Task `json:"tasks"`
	Total int64         `json:"total"`
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	if strings.TrimSpace(req.Title) == "" {
		return response.FieldError(c, "title", "must not be blank")
	}

	task, err := h.deps.Tasks.Create(c.UserContext(), middleware.CurrentUser(c), req.Title, req.Description)
	if err != nil {
		return response.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// ListTasks: admin melihat semua task, user hanya miliknya.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	skip, err := queryInt(c, "skip", 0)
	if err != nil || skip < 0 {
		return response.FieldError(c, "skip", "must be a non-negative integer")
	}
	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil || limit < 1 || limit > maxLimit {
		return response.FieldError(c, "limit", "must be an integer between 1 and 1000")
	}

	tasks, total, err := h.deps.Tasks.List(c.UserContext(), middleware.CurrentUser(c), skip, limit)
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(taskListResponse{Tasks: tasks, Total: total})
}

func (h *Handler) GetTask(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid task ID")
	}

	task, err := h.deps.Tasks.Get(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(task)
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid task ID")
	}

	var req updateTaskRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return response.FieldError(c, "title", "must not be blank")
	}

	task, err := h.deps.Tasks.Update(c.UserContext(), middleware.CurrentUser(c), id, models.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(task)
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid task ID")
	}

	if err := h.deps.Tasks.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return response.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
