package db

import (
	"fmt"

	"github.com/zulandar/taskflow/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Workspace{},
		&models.Board{},
		&models.BoardColumn{},
		&models.Task{},
		&models.Subtask{},
		&models.Comment{},
		&models.TaskDependency{},
		&models.TaskActivity{},
		&models.Notification{},
		&models.WorkspaceMember{},
		&models.Label{},
		&models.TaskLabel{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// OpenMemory opens a migrated in-memory SQLite database.
func OpenMemory() (*gorm.DB, error) {
	gormDB, err := OpenSQLite(":memory:")
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(gormDB); err != nil {
		return nil, err
	}
	return gormDB, nil
}
