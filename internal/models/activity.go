package models

import "time"

// TaskActivity is one immutable audit entry for a task mutation. OldValue and
// NewValue are nil when not applicable.
type TaskActivity struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID    uint      `gorm:"not null;index:idx_activity_task_created" json:"taskId"`
	UserID    uint      `gorm:"not null" json:"userId"`
	Action    string    `gorm:"size:16;not null" json:"action"`
	FieldName string    `gorm:"size:64" json:"fieldName,omitempty"`
	OldValue  *string   `gorm:"type:text" json:"oldValue"`
	NewValue  *string   `gorm:"type:text" json:"newValue"`
	CreatedAt time.Time `gorm:"index:idx_activity_task_created" json:"createdAt"`
}
