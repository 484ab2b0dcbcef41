package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"care-tasks.com/care-tasks/internal/constants"
	dto "care-tasks.com/care-tasks/internal/data_models"
	apperrors "care-tasks.com/care-tasks/internal/errors"
	model "care-tasks.com/care-tasks/internal/models"
	repository "care-tasks.com/care-tasks/internal/repositories"
	"care-tasks.com/care-tasks/internal/schema"
)

type TaskService struct {
	guard  *schema.Guard
	roster *RosterService
	tasks  *repository.TaskRepository
	logger *zap.Logger
}

func NewTaskService(
	guard *schema.Guard,
	roster *RosterService,
	tasks *repository.TaskRepository,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		guard:  guard,
		roster: roster,
		tasks:  tasks,
		logger: logger,
	}
}

// CreateTask stores a task and fans it out to its resolved assignees, returning the
// new task id. Individual tasks without a resolvable assignee and team tasks without
// an active team are rejected before anything is written.
func (s *TaskService) CreateTask(ctx context.Context, in dto.CreateTaskInput) (string, error) {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return "", err
	}

	task, err := s.buildTask(in)
	if err != nil {
		return "", err
	}

	assignees, err := s.resolveAssignees(ctx, task, in.AssigneeIDs)
	if err != nil {
		return "", err
	}

	now := task.CreatedAt
	executions := make([]model.Execution, 0, len(assignees))
	for _, m := range assignees {
		executions = append(executions, repository.NewPendingExecution(task.ID, m, now))
	}

	if task.DestinationMode == constants.DestinationIndividual && len(assignees) == 1 {
		id, name := assignees[0].ID, assignees[0].Name
		task.PrimaryAssigneeID = &id
		task.PrimaryAssigneeName = &name
	}

	if err := s.tasks.CreateWithExecutions(ctx, task, executions); err != nil {
		return "", err
	}

	s.logger.Info("task created",
		zap.String("task_id", task.ID),
		zap.String("target_role", string(task.TargetRole)),
		zap.String("destination_mode", string(task.DestinationMode)),
		zap.Int("executions", len(executions)),
	)

	return task.ID, nil
}

// resolveAssignees picks the assignee set: the whole active role roster for team
// tasks, the explicit ids filtered to active members of the role, or the single
// active member of the role when nothing was named.
func (s *TaskService) resolveAssignees(ctx context.Context, task *model.Task, explicitIDs []string) ([]model.Member, error) {
	if task.DestinationMode == constants.DestinationTeam {
		team, err := s.roster.ListByRole(ctx, task.TargetRole)
		if err != nil {
			return nil, err
		}
		if len(team) == 0 {
			return nil, apperrors.ErrNoActiveTeam
		}
		return team, nil
	}

	var assignees []model.Member
	if len(uniqueStrings(explicitIDs)) > 0 {
		members, err := s.roster.ActiveMembersWithRole(ctx, explicitIDs, task.TargetRole)
		if err != nil {
			return nil, err
		}
		assignees = members
	} else {
		roster, err := s.roster.ListByRole(ctx, task.TargetRole)
		if err != nil {
			return nil, err
		}
		if len(roster) == 1 {
			assignees = roster
		}
	}

	if len(assignees) == 0 {
		return nil, apperrors.ErrNoValidAssignee
	}
	return assignees, nil
}

func (s *TaskService) buildTask(in dto.CreateTaskInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.Validation("title is required")
	}

	role, ok := constants.ParseRole(in.TargetRole)
	if !ok || !role.Assignable() {
		return nil, apperrors.ErrInvalidRole
	}
	recurrence, ok := constants.ParseRecurrence(in.Recurrence)
	if !ok {
		return nil, apperrors.Validation("invalid recurrence")
	}
	mode, ok := constants.ParseDestinationMode(in.DestinationMode)
	if !ok {
		return nil, apperrors.Validation("invalid destination mode")
	}

	return &model.Task{
		ID:              uuid.NewString(),
		Title:           title,
		Description:     strings.TrimSpace(in.Description),
		TargetRole:      role,
		Recurrence:      recurrence,
		DestinationMode: mode,
		CreatedBy:       optional(in.CreatorID),
		DueDate:         in.DueDate,
		DocumentRef:     optional(in.DocumentRef),
		CreatedAt:       time.Now().UTC(),
	}, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if err := s.guard.EnsureReady(ctx); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("task deleted", zap.String("task_id", id))
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
