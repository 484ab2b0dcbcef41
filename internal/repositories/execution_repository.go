package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"care-tasks.com/care-tasks/internal/constants"
	apperrors "care-tasks.com/care-tasks/internal/errors"
	model "care-tasks.com/care-tasks/internal/models"
)

type ExecutionRepository struct {
	db *gorm.DB
}

func NewExecutionRepository(db *gorm.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

var taskMemberConflict = []clause.Column{{Name: "task_id"}, {Name: "member_id"}}

// upsertPending writes pending rows for a fan-out. An existing (task, member) row only
// gets its name snapshot and update time refreshed; its status is left alone.
func upsertPending(db *gorm.DB, executions []model.Execution) error {
	if len(executions) == 0 {
		return nil
	}

	return db.Clauses(clause.OnConflict{
		Columns:   taskMemberConflict,
		DoUpdates: clause.AssignmentColumns([]string{"member_name", "updated_at"}),
	}).Create(&executions).Error
}

func (r *ExecutionRepository) UpsertPending(ctx context.Context, executions []model.Execution) error {
	if err := upsertPending(r.db.WithContext(ctx), executions); err != nil {
		return apperrors.Persistence(err, "upsert pending executions")
	}
	return nil
}

// UpsertStatus inserts the execution or overwrites status, note, attachment and
// completion time of the existing (task, member) row in one statement. The name
// snapshot is overwritten only when refreshName is set.
func (r *ExecutionRepository) UpsertStatus(ctx context.Context, execution *model.Execution, refreshName bool) (*model.Execution, error) {
	columns := []string{"status", "note", "attachment_ref", "completed_at", "updated_at"}
	if refreshName {
		columns = append(columns, "member_name")
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   taskMemberConflict,
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(execution).Error
	if err != nil {
		return nil, apperrors.Persistence(err, "upsert execution status")
	}

	if execution.MemberID == nil {
		return execution, nil
	}
	return r.FindByTaskAndMember(ctx, execution.TaskID, *execution.MemberID)
}

func (r *ExecutionRepository) FindByTaskAndMember(ctx context.Context, taskID, memberID string) (*model.Execution, error) {
	var execution model.Execution
	err := r.db.WithContext(ctx).First(&execution, "task_id = ? AND member_id = ?", taskID, memberID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("execution not found")
		}
		return nil, apperrors.Persistence(err, "find execution")
	}
	return &execution, nil
}

func (r *ExecutionRepository) ListByTaskIDs(ctx context.Context, taskIDs []string) ([]model.Execution, error) {
	var executions []model.Execution
	if len(taskIDs) == 0 {
		return executions, nil
	}

	err := r.db.WithContext(ctx).
		Where("task_id IN ?", taskIDs).
		Order("member_name asc").
		Find(&executions).Error
	if err != nil {
		return nil, apperrors.Persistence(err, "list executions")
	}
	return executions, nil
}

func (r *ExecutionRepository) CountByTask(ctx context.Context, taskID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Execution{}).Where("task_id = ?", taskID).Count(&count).Error
	if err != nil {
		return 0, apperrors.Persistence(err, "count executions")
	}
	return count, nil
}

// NewPendingExecution builds the fan-out row of member for taskID.
func NewPendingExecution(taskID string, member model.Member, now time.Time) model.Execution {
	memberID := member.ID
	return model.Execution{
		ID:         uuid.NewString(),
		TaskID:     taskID,
		MemberID:   &memberID,
		MemberName: member.Name,
		Status:     constants.StatusPending,
		UpdatedAt:  now,
	}
}
