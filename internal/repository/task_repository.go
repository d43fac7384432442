package repository

import (
	"context"
	"errors"
	"fmt"

	"task-manager/internal/access"
	"task-manager/internal/models"

	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id int) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	return &task, nil
}

// List mengembalikan satu halaman task dalam scope beserta total seluruh
// task dalam scope tersebut. Scope diterapkan sebagai WHERE.
func (r *TaskRepository) List(ctx context.Context, scope access.Scope, skip, limit int) ([]models.Task, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Task{})
		if !scope.All {
			q = q.Where("owner_id = ?", scope.OwnerID)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	tasks := make([]models.Task, 0)
	if err := scoped().Order("id").Offset(skip).Limit(limit).Find(&tasks).Error; err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, total, nil
}

// Update hanya mengubah field yang ada di patch. Last write wins.
func (r *TaskRepository) Update(ctx context.Context, id int, patch models.TaskPatch) (*models.Task, error) {
	task, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Title == nil && patch.Description == nil {
		return task, nil
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	return task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Delete(&models.Task{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete task %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
