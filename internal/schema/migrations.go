package schema

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "care-tasks.com/care-tasks/internal/models"
)

type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

// Migrations are applied in order and recorded in schema_migrations. Versions are
// never reused.
var Migrations = []Migration{
	{Version: 1, Name: "rename_legacy_destination_columns", Up: renameLegacyDestinationColumns},
	{Version: 2, Name: "create_core_tables", Up: createCoreTables},
}

// legacyTaskColumns maps destination columns of older deployments to their current names.
var legacyTaskColumns = [][2]string{
	{"assigned_member_id", "primary_assignee_id"},
	{"assigned_member_name", "primary_assignee_name"},
}

func renameLegacyDestinationColumns(tx *gorm.DB) error {
	m := tx.Migrator()
	if !m.HasTable(&model.Task{}) {
		return nil
	}

	for _, pair := range legacyTaskColumns {
		legacy, current := pair[0], pair[1]
		if !m.HasColumn(&model.Task{}, legacy) {
			continue
		}

		if !m.HasColumn(&model.Task{}, current) {
			if err := m.RenameColumn(&model.Task{}, legacy, current); err != nil {
				return err
			}
			continue
		}

		err := tx.Exec(
			"UPDATE ? SET ? = COALESCE(?, ?)",
			clause.Table{Name: model.Task{}.TableName()},
			clause.Column{Name: current},
			clause.Column{Name: current},
			clause.Column{Name: legacy},
		).Error
		if err != nil {
			return err
		}
		if err := m.DropColumn(&model.Task{}, legacy); err != nil {
			return err
		}
	}

	return nil
}

func createCoreTables(tx *gorm.DB) error {
	return tx.AutoMigrate(
		&model.Account{},
		&model.Member{},
		&model.Task{},
		&model.Execution{},
		&model.AttendanceRecord{},
	)
}
