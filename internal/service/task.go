package service

import (
	"context"
	"errors"

	"task-manager/internal/access"
	"task-manager/internal/models"
	"task-manager/internal/repository"
	"task-manager/pkg/logger"

	"go.uber.org/zap"
)

var (
	ErrNotFound         = errors.New("task not found")
	ErrPermissionDenied = errors.New("not allowed to access this task")
)

const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskDeleted = "task.deleted"
)

// EventPublisher menerima notifikasi setelah mutasi task berhasil.
type EventPublisher interface {
	Publish(eventType string, task models.Task)
}

// TaskService menjalankan urutan: cek task ada (404), lalu cek hak akses
// (403), baru menyentuh store.
type TaskService struct {
	store  repository.TaskStore
	events EventPublisher
}

func NewTaskService(store repository.TaskStore, events EventPublisher) *TaskService {
	return &TaskService{store: store, events: events}
}

func (s *TaskService) publish(eventType string, task *models.Task) {
	if s.events != nil {
		s.events.Publish(eventType, *task)
	}
}

func (s *TaskService) Create(ctx context.Context, identity *models.User, title, description string) (*models.Task, error) {
	task := &models.Task{Title: title, Description: description, OwnerID: identity.ID}
	if err := s.store.Create(ctx, task); err != nil {
		return nil, err
	}
	logger.AuditLogger.Info("Task created", zap.Int("task_id", task.ID), zap.Int("user_id", identity.ID))
	s.publish(EventTaskCreated, task)
	return task, nil
}

func (s *TaskService) List(ctx context.Context, identity *models.User, skip, limit int) ([]models.Task, int64, error) {
	return s.store.List(ctx, access.ListScope(identity), skip, limit)
}

func (s *TaskService) Get(ctx context.Context, identity *models.User, id int) (*models.Task, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanRead(identity, task) {
		s.denied("read", identity, task)
		return nil, ErrPermissionDenied
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, identity *models.User, id int, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanWrite(identity, task) {
		s.denied("update", identity, task)
		return nil, ErrPermissionDenied
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, translate(err)
	}
	logger.AuditLogger.Info("Task updated", zap.Int("task_id", id), zap.Int("user_id", identity.ID))
	s.publish(EventTaskUpdated, updated)
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, identity *models.User, id int) error {
	task, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanWrite(identity, task) {
		s.denied("delete", identity, task)
		return ErrPermissionDenied
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return translate(err)
	}
	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", id), zap.Int("user_id", identity.ID))
	s.publish(EventTaskDeleted, task)
	return nil
}

func (s *TaskService) load(ctx context.Context, id int) (*models.Task, error) {
	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return task, nil
}

func (s *TaskService) denied(action string, identity *models.User, task *models.Task) {
	logger.SecurityLogger.Warn("Task access denied",
		zap.String("action", action),
		zap.Int("task_id", task.ID),
		zap.Int("user_id", identity.ID),
	)
}

func translate(err error) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return ErrNotFound
	}
	return err
}
