package models

import (
	"time"

	"gorm.io/gorm"
)

// Member roles, highest first. Each workspace has exactly one OWNER.
const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
	RoleViewer = "VIEWER"
)

// Workspace is the top-level tenant that owns boards and tasks.
type Workspace struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"size:128;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	OwnerID     uint           `gorm:"index" json:"ownerId"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// WorkspaceMember grants a user a role in a workspace. Memberships are
// hard-deleted.
type WorkspaceMember struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkspaceID uint      `gorm:"not null;uniqueIndex:idx_member_workspace_user" json:"workspaceId"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_member_workspace_user;index" json:"userId"`
	Role        string    `gorm:"size:16;not null;default:MEMBER" json:"role"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joinedAt"`
}

// Board groups an ordered set of columns inside a workspace.
type Board struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkspaceID uint           `gorm:"not null;index" json:"workspaceId"`
	Name        string         `gorm:"size:128;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	CreatedBy   uint           `json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Columns []BoardColumn `gorm:"foreignKey:BoardID" json:"columns,omitempty"`
}

// BoardColumn is one ordered lane of a board. Columns are hard-deleted.
type BoardColumn struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BoardID   uint      `gorm:"not null;index:idx_column_board_position" json:"boardId"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Color     string    `gorm:"size:16" json:"color,omitempty"`
	WIPLimit  *int      `json:"wipLimit,omitempty"`
	Position  int       `gorm:"not null;default:0;index:idx_column_board_position" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
