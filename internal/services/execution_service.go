package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"care-tasks.com/care-tasks/internal/constants"
	dto "care-tasks.com/care-tasks/internal/data_models"
	apperrors "care-tasks.com/care-tasks/internal/errors"
	"care-tasks.com/care-tasks/internal/identity"
	model "care-tasks.com/care-tasks/internal/models"
	repository "care-tasks.com/care-tasks/internal/repositories"
	"care-tasks.com/care-tasks/internal/schema"
)

const taskListLimit = 200

// ExecutionService tracks per-member progress and serves task listings.
type ExecutionService struct {
	guard      *schema.Guard
	roster     *RosterService
	tasks      *repository.TaskRepository
	executions *repository.ExecutionRepository
	reconciler *ReconcileService
	logger     *zap.Logger
}

func NewExecutionService(
	guard *schema.Guard,
	roster *RosterService,
	tasks *repository.TaskRepository,
	executions *repository.ExecutionRepository,
	reconciler *ReconcileService,
	logger *zap.Logger,
) *ExecutionService {
	return &ExecutionService{
		guard:      guard,
		roster:     roster,
		tasks:      tasks,
		executions: executions,
		reconciler: reconciler,
		logger:     logger,
	}
}

// SetExecutionStatus records the status of one (task, member) execution. Repeating
// the call overwrites the same row. Non-privileged callers may only report for
// members of their own account.
func (s *ExecutionService) SetExecutionStatus(
	ctx context.Context,
	caller identity.Caller,
	in dto.SetExecutionStatusInput,
) (*model.Execution, error) {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return nil, err
	}

	status, ok := constants.ParseExecutionStatus(in.Status)
	if !ok {
		return nil, apperrors.ErrInvalidStatus
	}
	memberID := strings.TrimSpace(in.MemberID)
	if memberID == "" {
		return nil, apperrors.Validation("member id is required")
	}

	task, err := s.tasks.FindByID(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}

	if !caller.Privileged() {
		belongs, err := s.roster.BelongsToAccount(ctx, memberID, caller.ID)
		if err != nil {
			return nil, err
		}
		if !belongs {
			return nil, apperrors.ErrMemberNotInTeam
		}
	}

	name, err := s.snapshotName(ctx, memberID, in.MemberNameHint)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var completedAt *time.Time
	if status != constants.StatusPending {
		completedAt = &now
	}

	execution, err := s.executions.UpsertStatus(ctx, &model.Execution{
		ID:            uuid.NewString(),
		TaskID:        task.ID,
		MemberID:      &memberID,
		MemberName:    name,
		Status:        status,
		Note:          strings.TrimSpace(in.Note),
		AttachmentRef: optional(in.AttachmentRef),
		CompletedAt:   completedAt,
		UpdatedAt:     now,
	}, name != "")
	if err != nil {
		return nil, err
	}

	if err := s.tasks.BackfillPrimaryAssignee(ctx, task.ID, memberID, execution.MemberName); err != nil {
		return nil, err
	}

	s.logger.Info("execution status recorded",
		zap.String("task_id", task.ID),
		zap.String("member_id", memberID),
		zap.String("status", string(status)),
		zap.String("caller_id", caller.ID),
	)
	return execution, nil
}

// snapshotName prefers the explicit hint, then the member's current name. An empty
// result keeps whatever snapshot is already stored.
func (s *ExecutionService) snapshotName(ctx context.Context, memberID, hint string) (string, error) {
	if hint = strings.TrimSpace(hint); hint != "" {
		return hint, nil
	}

	member, err := s.roster.ResolveMember(ctx, memberID)
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return member.Name, nil
}

// ListTasks reconciles pending destinations, then returns the newest tasks with their
// destinataries and aggregate counts. With a MemberID, individual tasks not addressed
// to that member are dropped; team tasks are always kept.
func (s *ExecutionService) ListTasks(ctx context.Context, filter dto.TaskFilter) ([]dto.TaskView, error) {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return nil, err
	}

	s.reconciler.ReconcilePendingExecutions(ctx)

	tasks, err := s.tasks.List(ctx, filter.Role, taskListLimit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	executions, err := s.executions.ListByTaskIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byTask := make(map[string][]model.Execution, len(tasks))
	for _, e := range executions {
		byTask[e.TaskID] = append(byTask[e.TaskID], e)
	}

	views := make([]dto.TaskView, 0, len(tasks))
	for _, t := range tasks {
		view := buildTaskView(t, byTask[t.ID], filter)
		if filter.MemberID != "" &&
			t.DestinationMode == constants.DestinationIndividual &&
			view.CurrentExecution == nil {
			continue
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *ExecutionService) GetTask(ctx context.Context, id string) (*dto.TaskView, error) {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return nil, err
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	executions, err := s.executions.ListByTaskIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}

	view := buildTaskView(*task, executions, dto.TaskFilter{IncludeValidations: true})
	return &view, nil
}

func buildTaskView(t model.Task, executions []model.Execution, filter dto.TaskFilter) dto.TaskView {
	view := dto.TaskView{
		ID:                  t.ID,
		Title:               t.Title,
		Description:         t.Description,
		TargetRole:          t.TargetRole,
		Recurrence:          t.Recurrence,
		DestinationMode:     t.DestinationMode,
		PrimaryAssigneeID:   t.PrimaryAssigneeID,
		PrimaryAssigneeName: t.PrimaryAssigneeName,
		CreatedBy:           t.CreatedBy,
		DueDate:             t.DueDate,
		DocumentRef:         t.DocumentRef,
		CreatedAt:           t.CreatedAt,
		ExecutionCount:      len(executions),
		Destinataries:       make([]dto.DestinataryView, 0, len(executions)),
	}

	for _, e := range executions {
		d := destinataryView(e)
		view.Destinataries = append(view.Destinataries, d)

		if e.Status == constants.StatusCompleted {
			view.CompletedCount++
		}
		if filter.IncludeValidations && e.Status != constants.StatusPending {
			view.Validations = append(view.Validations, d)
		}
		if filter.MemberID != "" && e.MemberID != nil && *e.MemberID == filter.MemberID {
			current := d
			view.CurrentExecution = &current
		}
	}

	sort.SliceStable(view.Validations, func(i, j int) bool {
		a, b := view.Validations[i].CompletedAt, view.Validations[j].CompletedAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})

	return view
}

func destinataryView(e model.Execution) dto.DestinataryView {
	return dto.DestinataryView{
		ExecutionID:   e.ID,
		MemberID:      e.MemberID,
		MemberName:    e.MemberName,
		Status:        e.Status,
		Note:          e.Note,
		AttachmentRef: e.AttachmentRef,
		CompletedAt:   e.CompletedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
