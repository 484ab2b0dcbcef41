package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"care-tasks.com/care-tasks/internal/constants"
	apperrors "care-tasks.com/care-tasks/internal/errors"
	model "care-tasks.com/care-tasks/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateWithExecutions writes the task and its fan-out rows in one transaction.
func (r *TaskRepository) CreateWithExecutions(ctx context.Context, task *model.Task, executions []model.Execution) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Executions").Create(task).Error; err != nil {
			return err
		}
		return upsertPending(tx, executions)
	})
	if err != nil {
		return apperrors.Persistence(err, "create task")
	}
	return nil
}

// Create writes a bare task row. Destinations recorded this way are picked up by
// the reconciliation job.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Omit("Executions").Create(task).Error; err != nil {
		return apperrors.Persistence(err, "create task")
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, apperrors.Persistence(err, "find task")
	}
	return &task, nil
}

// List returns the newest tasks first, optionally restricted to a target role.
func (r *TaskRepository) List(ctx context.Context, role constants.Role, limit int) ([]model.Task, error) {
	var tasks []model.Task
	query := r.db.WithContext(ctx).Order("created_at desc").Limit(limit)
	if role != "" {
		query = query.Where("target_role = ?", role)
	}

	if err := query.Find(&tasks).Error; err != nil {
		return nil, apperrors.Persistence(err, "list tasks")
	}
	return tasks, nil
}

// ListUnresolved returns individual tasks that recorded a destination but have no
// execution rows.
func (r *TaskRepository) ListUnresolved(ctx context.Context, limit int) ([]model.Task, error) {
	if limit <= 0 {
		return nil, apperrors.Validation("limit must be positive")
	}

	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("destination_mode = ?", constants.DestinationIndividual).
		Where("primary_assignee_id IS NOT NULL OR (primary_assignee_name IS NOT NULL AND primary_assignee_name <> '')").
		Where("NOT EXISTS (SELECT 1 FROM task_executions te WHERE te.task_id = tasks.id)").
		Order("created_at asc").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, apperrors.Persistence(err, "list unresolved tasks")
	}
	return tasks, nil
}

// SetPrimaryAssignee overwrites the denormalized assignee of an individual task.
func (r *TaskRepository) SetPrimaryAssignee(ctx context.Context, taskID string, memberID, name *string) error {
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND destination_mode = ?", taskID, constants.DestinationIndividual).
		Updates(map[string]interface{}{
			"primary_assignee_id":   memberID,
			"primary_assignee_name": name,
		}).Error
	if err != nil {
		return apperrors.Persistence(err, "set primary assignee")
	}
	return nil
}

// BackfillPrimaryAssignee fills the denormalized assignee of an individual task only
// where it is still null.
func (r *TaskRepository) BackfillPrimaryAssignee(ctx context.Context, taskID, memberID, name string) error {
	var namePtr *string
	if name != "" {
		namePtr = &name
	}

	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND destination_mode = ?", taskID, constants.DestinationIndividual).
		Updates(map[string]interface{}{
			"primary_assignee_id":   gorm.Expr("COALESCE(primary_assignee_id, ?)", memberID),
			"primary_assignee_name": gorm.Expr("COALESCE(primary_assignee_name, ?)", namePtr),
		}).Error
	if err != nil {
		return apperrors.Persistence(err, "backfill primary assignee")
	}
	return nil
}

// Delete removes the task together with its executions.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&model.Execution{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Task{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return apperrors.Persistence(err, "delete task")
	}
	if affected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}
