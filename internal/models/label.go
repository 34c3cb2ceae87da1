package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultLabelColor is used when a label is created without a color.
const DefaultLabelColor = "#165DFF"

// Label is a workspace-scoped tag. Deleting a label soft-deletes it and drops
// its task associations.
type Label struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkspaceID uint           `gorm:"not null;index" json:"workspaceId"`
	Name        string         `gorm:"size:64;not null" json:"name"`
	Color       string         `gorm:"size:16" json:"color"`
	CreatedBy   uint           `json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TaskLabel attaches a label to a task. At most one row exists per pair.
type TaskLabel struct {
	TaskID  uint `gorm:"primaryKey;autoIncrement:false" json:"taskId"`
	LabelID uint `gorm:"primaryKey;autoIncrement:false;index" json:"labelId"`

	Task  Task  `gorm:"foreignKey:TaskID" json:"-"`
	Label Label `gorm:"foreignKey:LabelID" json:"-"`
}
