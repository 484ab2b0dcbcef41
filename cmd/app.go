package cmd

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	config "care-tasks.com/care-tasks/internal/configs"
	repository "care-tasks.com/care-tasks/internal/repositories"
	"care-tasks.com/care-tasks/internal/schema"
	"care-tasks.com/care-tasks/internal/services"
)

// app holds the wiring shared by every command.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *gorm.DB
	guard  *schema.Guard

	roster     *services.RosterService
	tasks      *services.TaskService
	executions *services.ExecutionService
	reconciler *services.ReconcileService
	attendance *services.AttendanceService
}

func bootstrap() (*app, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat, "care-tasks")
	if err != nil {
		return nil, err
	}
	if envErr != nil {
		logger.Debug(".env file not found, using environment variables")
	}

	db, err := config.NewDatabaseClient(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	guard := schema.NewGuard(db, logger)

	accounts := repository.NewAccountRepository(db)
	members := repository.NewMemberRepository(db)
	tasks := repository.NewTaskRepository(db)
	executions := repository.NewExecutionRepository(db)
	records := repository.NewAttendanceRepository(db)

	roster := services.NewRosterService(guard, accounts, members, logger)
	reconciler := services.NewReconcileService(guard, members, tasks, executions, logger, cfg.ReconcileBatchSize)

	return &app{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		guard:      guard,
		roster:     roster,
		tasks:      services.NewTaskService(guard, roster, tasks, logger),
		executions: services.NewExecutionService(guard, roster, tasks, executions, reconciler, logger),
		reconciler: reconciler,
		attendance: services.NewAttendanceService(guard, roster, records, logger),
	}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}
