package models

import "time"

// Notification types.
const (
	NotifyTaskAssigned    = "TASK_ASSIGNED"
	NotifyTaskUpdated     = "TASK_UPDATED"
	NotifyCommentAdded    = "COMMENT_ADDED"
	NotifyDueDateReminder = "DUE_DATE_REMINDER"
	NotifyMemberInvited   = "MEMBER_INVITED"
)

// Notification is a per-user message created as a side effect of a mutation.
type Notification struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_notification_user_read" json:"userId"`
	Type        string    `gorm:"size:32;not null" json:"type"`
	Title       string    `gorm:"size:255" json:"title"`
	Content     string    `gorm:"type:text" json:"content,omitempty"`
	ReferenceID *uint     `gorm:"index" json:"referenceId,omitempty"`
	Read        bool      `gorm:"default:false;index:idx_notification_user_read" json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}
