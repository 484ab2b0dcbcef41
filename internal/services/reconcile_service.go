package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"care-tasks.com/care-tasks/internal/constants"
	model "care-tasks.com/care-tasks/internal/models"
	"care-tasks.com/care-tasks/internal/names"
	repository "care-tasks.com/care-tasks/internal/repositories"
	"care-tasks.com/care-tasks/internal/schema"
)

const DefaultReconcileBatchSize = 200

// ReconcileService materializes executions for individual tasks whose destination
// was recorded before it could be resolved to a member.
type ReconcileService struct {
	guard      *schema.Guard
	members    *repository.MemberRepository
	tasks      *repository.TaskRepository
	executions *repository.ExecutionRepository
	logger     *zap.Logger
	batchSize  int
}

func NewReconcileService(
	guard *schema.Guard,
	members *repository.MemberRepository,
	tasks *repository.TaskRepository,
	executions *repository.ExecutionRepository,
	logger *zap.Logger,
	batchSize int,
) *ReconcileService {
	if batchSize <= 0 {
		batchSize = DefaultReconcileBatchSize
	}
	return &ReconcileService{
		guard:      guard,
		members:    members,
		tasks:      tasks,
		executions: executions,
		logger:     logger,
		batchSize:  batchSize,
	}
}

// reconcileRun caches lookups for the duration of one job run.
type reconcileRun struct {
	rosters map[constants.Role]*names.Index[model.Member]
	matches map[string]*model.Member
}

// ReconcilePendingExecutions never fails; it returns how many tasks were resolved.
// Tasks that still cannot be matched are left for the next run.
func (s *ReconcileService) ReconcilePendingExecutions(ctx context.Context) int {
	if err := s.guard.EnsureReady(ctx); err != nil {
		s.logger.Warn("reconcile: schema not ready", zap.Error(err))
		return 0
	}

	tasks, err := s.tasks.ListUnresolved(ctx, s.batchSize)
	if err != nil {
		s.logger.Warn("reconcile: failed to list unresolved tasks", zap.Error(err))
		return 0
	}

	run := &reconcileRun{
		rosters: make(map[constants.Role]*names.Index[model.Member]),
		matches: make(map[string]*model.Member),
	}

	resolved := 0
	for i := range tasks {
		task := &tasks[i]

		member := s.match(ctx, run, task)
		if member == nil {
			continue
		}

		if err := s.materialize(ctx, task, member); err != nil {
			s.logger.Warn("reconcile: failed to materialize execution",
				zap.String("task_id", task.ID),
				zap.String("member_id", member.ID),
				zap.Error(err),
			)
			continue
		}
		resolved++
	}

	if resolved > 0 {
		s.logger.Info("reconcile: executions materialized",
			zap.Int("resolved", resolved),
			zap.Int("candidates", len(tasks)),
		)
	}
	return resolved
}

func (s *ReconcileService) match(ctx context.Context, run *reconcileRun, task *model.Task) *model.Member {
	if task.PrimaryAssigneeID != nil && *task.PrimaryAssigneeID != "" {
		member, err := s.members.FindByID(ctx, *task.PrimaryAssigneeID)
		if err == nil && member.Active {
			return member
		}
		if err != nil && !isNotFound(err) {
			s.logger.Warn("reconcile: member lookup failed",
				zap.String("task_id", task.ID),
				zap.Error(err),
			)
		}
	}

	if task.PrimaryAssigneeName == nil || names.Key(*task.PrimaryAssigneeName) == "" {
		return nil
	}

	cacheKey := string(task.TargetRole) + "|" + names.Key(*task.PrimaryAssigneeName)
	if member, ok := run.matches[cacheKey]; ok {
		return member
	}

	idx, err := s.roleIndex(ctx, run, task.TargetRole)
	if err != nil {
		s.logger.Warn("reconcile: roster lookup failed",
			zap.String("role", string(task.TargetRole)),
			zap.Error(err),
		)
		return nil
	}

	var member *model.Member
	if m, n := idx.Unique(*task.PrimaryAssigneeName); n == 1 {
		member = &m
	}
	run.matches[cacheKey] = member
	return member
}

func (s *ReconcileService) roleIndex(ctx context.Context, run *reconcileRun, role constants.Role) (*names.Index[model.Member], error) {
	if idx, ok := run.rosters[role]; ok {
		return idx, nil
	}

	members, err := s.members.ListActiveByRole(ctx, role)
	if err != nil {
		return nil, err
	}

	idx := names.NewIndex[model.Member]()
	for _, m := range members {
		idx.Add(m.Name, m)
	}
	run.rosters[role] = idx
	return idx, nil
}

func (s *ReconcileService) materialize(ctx context.Context, task *model.Task, member *model.Member) error {
	execution := repository.NewPendingExecution(task.ID, *member, time.Now().UTC())
	if err := s.executions.UpsertPending(ctx, []model.Execution{execution}); err != nil {
		return err
	}

	id, name := member.ID, member.Name
	return s.tasks.SetPrimaryAssignee(ctx, task.ID, &id, &name)
}
