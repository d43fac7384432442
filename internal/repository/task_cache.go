package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"task-manager/internal/access"
	"task-manager/internal/models"
	"task-manager/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// TaskStore adalah kontrak task store yang dipakai service.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int) (*models.Task, error)
	List(ctx context.Context, scope access.Scope, skip, limit int) ([]models.Task, int64, error)
	Update(ctx context.Context, id int, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id int) error
}

var (
	_ TaskStore = (*TaskRepository)(nil)
	_ TaskStore = (*CachedTaskRepository)(nil)
)

// CachedTaskRepository menyimpan hasil FindByID di Redis (cache-aside).
// List tidak pernah di-cache karena scope harus dievaluasi oleh database.
// Kegagalan Redis hanya di-log; data tetap diambil dari store.
type CachedTaskRepository struct {
	next   TaskStore
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCachedTaskRepository(next TaskStore, client *redis.Client, ttl time.Duration) *CachedTaskRepository {
	return &CachedTaskRepository{next: next, client: client, prefix: "task:", ttl: ttl}
}

// WithPrefix mengganti prefix key, dipakai test agar key tidak bentrok.
func (r *CachedTaskRepository) WithPrefix(prefix string) *CachedTaskRepository {
	r.prefix = prefix
	return r
}

func (r *CachedTaskRepository) key(id int) string {
	return fmt.Sprintf("%s%d", r.prefix, id)
}

func (r *CachedTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.next.Create(ctx, task)
}

func (r *CachedTaskRepository) FindByID(ctx context.Context, id int) (*models.Task, error) {
	cached, err := r.client.Get(ctx, r.key(id)).Bytes()
	switch {
	case err == nil:
		var task models.Task
		if err := json.Unmarshal(cached, &task); err == nil {
			return &task, nil
		}
		logger.ErrorLogger.Error("Error decoding cached task", zap.Int("task_id", id), zap.Error(err))
	case !errors.Is(err, redis.Nil):
		logger.ErrorLogger.Error("Error reading task cache", zap.Int("task_id", id), zap.Error(err))
	}

	task, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, task)
	return task, nil
}

func (r *CachedTaskRepository) List(ctx context.Context, scope access.Scope, skip, limit int) ([]models.Task, int64, error) {
	return r.next.List(ctx, scope, skip, limit)
}

func (r *CachedTaskRepository) Update(ctx context.Context, id int, patch models.TaskPatch) (*models.Task, error) {
	task, err := r.next.Update(ctx, id, patch)
	r.invalidate(ctx, id)
	return task, err
}

func (r *CachedTaskRepository) Delete(ctx context.Context, id int) error {
	err := r.next.Delete(ctx, id)
	r.invalidate(ctx, id)
	return err
}

func (r *CachedTaskRepository) store(ctx context.Context, task *models.Task) {
	data, err := json.Marshal(task)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding task to JSON", zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, r.key(task.ID), data, r.ttl).Err(); err != nil {
		logger.ErrorLogger.Error("Error caching task", zap.Int("task_id", task.ID), zap.Error(err))
	}
}

func (r *CachedTaskRepository) invalidate(ctx context.Context, id int) {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		logger.ErrorLogger.Error("Error invalidating task cache", zap.Int("task_id", id), zap.Error(err))
	}
}
