package models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses. Workspaces may define additional statuses; these are the
// built-in ones.
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusInReview   = "IN_REVIEW"
	StatusDone       = "DONE"
	StatusCancelled  = "CANCELLED"
)

// Task priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Task is the core work item. Soft-deleted tasks are hidden from queries but
// their audit history is kept.
type Task struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkspaceID   uint           `gorm:"not null;index" json:"workspaceId"`
	BoardColumnID *uint          `gorm:"index:idx_task_column_position" json:"boardColumnId,omitempty"`
	ParentTaskID  *uint          `gorm:"index" json:"parentTaskId,omitempty"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description,omitempty"`
	Status        string         `gorm:"size:32;default:TODO;index" json:"status"`
	Priority      string         `gorm:"size:16;default:MEDIUM" json:"priority"`
	StartDate     *time.Time     `json:"startDate,omitempty"`
	DueDate       *time.Time     `gorm:"index" json:"dueDate,omitempty"`
	Progress      int            `gorm:"default:0" json:"progress"`
	AssigneeID    *uint          `gorm:"index" json:"assigneeId,omitempty"`
	CreatorID     uint           `json:"creatorId"`
	Position      int            `gorm:"not null;default:0;index:idx_task_column_position" json:"position"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Parent   *Task     `gorm:"foreignKey:ParentTaskID" json:"-"`
	Children []Task    `gorm:"foreignKey:ParentTaskID" json:"-"`
	Subtasks []Subtask `gorm:"foreignKey:TaskID" json:"-"`
}

// Subtask is an ordered checklist entry of a task. Subtasks are hard-deleted.
type Subtask struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID    uint      `gorm:"not null;index:idx_subtask_task_position" json:"taskId"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Completed bool      `gorm:"default:false" json:"completed"`
	Position  int       `gorm:"not null;default:0;index:idx_subtask_task_position" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is a discussion entry on a task.
type Comment struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID    uint           `gorm:"not null;index" json:"taskId"`
	UserID    uint           `gorm:"not null" json:"userId"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
