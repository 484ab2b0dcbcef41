package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"care-tasks.com/care-tasks/internal/constants"
	"care-tasks.com/care-tasks/internal/identity"
	model "care-tasks.com/care-tasks/internal/models"
	repository "care-tasks.com/care-tasks/internal/repositories"
	"care-tasks.com/care-tasks/internal/schema"
)

type testEnv struct {
	db         *gorm.DB
	roster     *RosterService
	tasks      *TaskService
	executions *ExecutionService
	reconciler *ReconcileService
	attendance *AttendanceService
	taskRepo   *repository.TaskRepository
	memberRepo *repository.MemberRepository
}

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func setupServices(t *testing.T) *testEnv {
	db := setupTestDB(t)
	log := zap.NewNop()
	guard := schema.NewGuard(db, log)

	accounts := repository.NewAccountRepository(db)
	members := repository.NewMemberRepository(db)
	tasks := repository.NewTaskRepository(db)
	executions := repository.NewExecutionRepository(db)
	records := repository.NewAttendanceRepository(db)

	roster := NewRosterService(guard, accounts, members, log)
	reconciler := NewReconcileService(guard, members, tasks, executions, log, 0)

	return &testEnv{
		db:         db,
		roster:     roster,
		tasks:      NewTaskService(guard, roster, tasks, log),
		executions: NewExecutionService(guard, roster, tasks, executions, reconciler, log),
		reconciler: reconciler,
		attendance: NewAttendanceService(guard, roster, records, log),
		taskRepo:   tasks,
		memberRepo: members,
	}
}

func (e *testEnv) account(t *testing.T, role constants.Role) identity.Caller {
	caller := identity.Caller{ID: uuid.NewString(), Role: role, Name: "Conta " + string(role)}
	_, err := e.roster.EnsureAccount(context.Background(), caller)
	require.NoError(t, err)
	return caller
}

func (e *testEnv) enroll(t *testing.T, accountID, name string, role constants.Role) model.Member {
	m, err := e.roster.EnrollMember(context.Background(), accountID, name, string(role))
	require.NoError(t, err)
	return *m
}

func (e *testEnv) countExecutions(t *testing.T, taskID string) int64 {
	var count int64
	require.NoError(t, e.db.Model(&model.Execution{}).Where("task_id = ?", taskID).Count(&count).Error)
	return count
}
