// Package schema owns the store layout. A Guard is built once per process and shared
// by every service; EnsureReady applies pending migrations on first use.
package schema

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "care-tasks.com/care-tasks/internal/errors"
	model "care-tasks.com/care-tasks/internal/models"
)

type Guard struct {
	db         *gorm.DB
	logger     *zap.Logger
	migrations []Migration

	mu    sync.Mutex
	ready bool
}

func NewGuard(db *gorm.DB, logger *zap.Logger) *Guard {
	return &Guard{
		db:         db,
		logger:     logger,
		migrations: Migrations,
	}
}

// EnsureReady migrates the schema once. A failed attempt is retried by the next call.
func (g *Guard) EnsureReady(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ready {
		return nil
	}

	if _, err := g.Migrate(ctx); err != nil {
		return err
	}

	g.ready = true
	return nil
}

// Migrate applies every migration not yet recorded and returns the versions it applied.
// Concurrent runners are serialized by the schema_migrations primary key: only the
// runner whose insert lands executes the step.
func (g *Guard) Migrate(ctx context.Context) ([]int, error) {
	db := g.db.WithContext(ctx)

	if err := db.AutoMigrate(&model.SchemaMigration{}); err != nil {
		if !db.Migrator().HasTable(&model.SchemaMigration{}) {
			return nil, apperrors.Persistence(err, "create schema_migrations")
		}
	}

	var applied []int
	for _, m := range g.migrations {
		ok, err := g.apply(db, m)
		if err != nil {
			return applied, apperrors.Persistence(err, "apply migration "+m.Name)
		}
		if ok {
			g.logger.Info("schema migration applied",
				zap.Int("version", m.Version),
				zap.String("name", m.Name),
			)
			applied = append(applied, m.Version)
		}
	}

	return applied, nil
}

func (g *Guard) apply(db *gorm.DB, m Migration) (bool, error) {
	applied := false

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.SchemaMigration{
			Version:   m.Version,
			Name:      m.Name,
			AppliedAt: time.Now().UTC(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		applied = true
		return m.Up(tx)
	})
	if err != nil {
		return false, err
	}

	return applied, nil
}
