package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zulandar/taskflow/internal/apperr"
	"github.com/zulandar/taskflow/internal/broadcast"
	"github.com/zulandar/taskflow/internal/db"
	"github.com/zulandar/taskflow/internal/models"
	"github.com/zulandar/taskflow/internal/notify"
	"gorm.io/gorm"
)

// WorkspaceView is a workspace with its member count.
type WorkspaceView struct {
	models.Workspace
	MemberCount int64 `json:"memberCount"`
}

// ValidMemberRole reports whether r can be granted by invite or role change.
// OWNER is assigned only when the workspace is created.
func ValidMemberRole(r string) bool {
	switch r {
	case models.RoleAdmin, models.RoleMember, models.RoleViewer:
		return true
	}
	return false
}

// CreateWorkspace creates an empty workspace and makes ownerID its OWNER
// member.
func (s *Service) CreateWorkspace(name string, ownerID uint) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidArgumentf("task: workspace name is required")
	}
	ws := &models.Workspace{Name: name, OwnerID: ownerID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ws).Error; err != nil {
			return fmt.Errorf("task: create workspace: %w", err)
		}
		owner := models.WorkspaceMember{WorkspaceID: ws.ID, UserID: ownerID, Role: models.RoleOwner}
		if err := tx.Create(&owner).Error; err != nil {
			return fmt.Errorf("task: add owner to workspace %d: %w", ws.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ws, nil
}

// GetWorkspace returns the workspace with its member count.
func (s *Service) GetWorkspace(id uint) (*WorkspaceView, error) {
	ws, err := s.loadWorkspace(id)
	if err != nil {
		return nil, err
	}
	counts, err := s.memberCounts([]uint{id})
	if err != nil {
		return nil, err
	}
	return &WorkspaceView{Workspace: *ws, MemberCount: counts[id]}, nil
}

// ListWorkspaces returns the workspaces userID belongs to, newest first.
func (s *Service) ListWorkspaces(userID uint) ([]WorkspaceView, error) {
	var list []models.Workspace
	if err := s.db.
		Joins("JOIN workspace_members m ON m.workspace_id = workspaces.id").
		Where("m.user_id = ?", userID).
		Order("workspaces.created_at DESC, workspaces.id DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("task: list workspaces of user %d: %w", userID, err)
	}
	ids := make([]uint, len(list))
	for i, ws := range list {
		ids[i] = ws.ID
	}
	counts, err := s.memberCounts(ids)
	if err != nil {
		return nil, err
	}
	out := make([]WorkspaceView, len(list))
	for i, ws := range list {
		out[i] = WorkspaceView{Workspace: ws, MemberCount: counts[ws.ID]}
	}
	return out, nil
}

// UpdateWorkspace changes the name or description. Nil leaves a field
// unchanged; a blank name is rejected.
func (s *Service) UpdateWorkspace(id uint, name, description *string) (*WorkspaceView, error) {
	ws, err := s.loadWorkspace(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, apperr.InvalidArgumentf("task: workspace name cannot be empty")
		}
		updates["name"] = n
	}
	if description != nil {
		updates["description"] = *description
	}
	if len(updates) > 0 {
		if err := s.db.Model(ws).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("task: update workspace %d: %w", id, err)
		}
		s.bus.PublishTaskUpdate(id, broadcast.WorkspaceUpdated, map[string]uint{"workspaceId": id})
	}
	return s.GetWorkspace(id)
}

// DeleteWorkspace soft-deletes the workspace. Its boards, tasks and
// memberships are left in place.
func (s *Service) DeleteWorkspace(id uint) error {
	ws, err := s.loadWorkspace(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(ws).Error; err != nil {
		return fmt.Errorf("task: delete workspace %d: %w", id, err)
	}
	s.log.WithField("workspace_id", id).Info("task: workspace deleted")
	s.bus.PublishTaskUpdate(id, broadcast.WorkspaceUpdated, map[string]interface{}{"workspaceId": id, "deleted": true})
	return nil
}

// InviteMember adds userID to the workspace with role (MEMBER when empty)
// and sends the user a MEMBER_INVITED notification.
func (s *Service) InviteMember(workspaceID, actorID, userID uint, role string) (*models.WorkspaceMember, error) {
	if userID == 0 {
		return nil, apperr.InvalidArgumentf("task: user is required")
	}
	if role == "" {
		role = models.RoleMember
	}
	if !ValidMemberRole(role) {
		return nil, apperr.InvalidArgumentf("task: cannot invite with role %q", role)
	}
	ws, err := s.loadWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("task: check membership of user %d: %w", userID, err)
	}
	if count > 0 {
		return nil, apperr.Conflictf("task: user %d is already a member of workspace %d", userID, workspaceID)
	}
	m := &models.WorkspaceMember{WorkspaceID: workspaceID, UserID: userID, Role: role}
	if err := s.db.Create(m).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return nil, apperr.Conflictf("task: user %d is already a member of workspace %d", userID, workspaceID)
		}
		return nil, fmt.Errorf("task: invite user %d: %w", userID, err)
	}

	s.bus.PublishTaskUpdate(workspaceID, broadcast.WorkspaceUpdated, m)
	if userID != actorID {
		s.notify(notify.Input{
			UserID:      userID,
			Type:        models.NotifyMemberInvited,
			Title:       "Invited to " + ws.Name,
			Content:     "Role: " + role,
			ReferenceID: &ws.ID,
		})
	}
	return m, nil
}

// Members returns the workspace's memberships in join order.
func (s *Service) Members(workspaceID uint) ([]models.WorkspaceMember, error) {
	if err := s.requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	var out []models.WorkspaceMember
	if err := s.db.Where("workspace_id = ?", workspaceID).
		Order("joined_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("task: members of workspace %d: %w", workspaceID, err)
	}
	return out, nil
}

// UpdateMemberRole changes a member's role. The owner's role is fixed.
func (s *Service) UpdateMemberRole(workspaceID, userID uint, role string) (*models.WorkspaceMember, error) {
	if !ValidMemberRole(role) {
		return nil, apperr.InvalidArgumentf("task: cannot assign role %q", role)
	}
	m, err := s.loadMember(workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if m.Role == models.RoleOwner {
		return nil, apperr.InvalidArgumentf("task: cannot change the owner's role")
	}
	if m.Role != role {
		if err := s.db.Model(m).Update("role", role).Error; err != nil {
			return nil, fmt.Errorf("task: update role of user %d: %w", userID, err)
		}
		m.Role = role
		s.bus.PublishTaskUpdate(workspaceID, broadcast.WorkspaceUpdated, m)
	}
	return m, nil
}

// RemoveMember deletes a membership. The owner cannot be removed.
func (s *Service) RemoveMember(workspaceID, userID uint) error {
	m, err := s.loadMember(workspaceID, userID)
	if err != nil {
		return err
	}
	if m.Role == models.RoleOwner {
		return apperr.InvalidArgumentf("task: cannot remove the workspace owner")
	}
	if err := s.db.Delete(m).Error; err != nil {
		return fmt.Errorf("task: remove user %d: %w", userID, err)
	}
	s.bus.PublishTaskUpdate(workspaceID, broadcast.WorkspaceUpdated, map[string]uint{"workspaceId": workspaceID, "removedUserId": userID})
	return nil
}

func (s *Service) loadWorkspace(id uint) (*models.Workspace, error) {
	var ws models.Workspace
	if err := s.db.Where("id = ?", id).First(&ws).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("task: workspace not found: %d", id)
		}
		return nil, fmt.Errorf("task: get workspace %d: %w", id, err)
	}
	return &ws, nil
}

func (s *Service) loadMember(workspaceID, userID uint) (*models.WorkspaceMember, error) {
	if err := s.requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	var m models.WorkspaceMember
	if err := s.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("task: user %d is not a member of workspace %d", userID, workspaceID)
		}
		return nil, fmt.Errorf("task: get member %d: %w", userID, err)
	}
	return &m, nil
}

func (s *Service) memberCounts(ids []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		WorkspaceID uint
		N           int64
	}
	if err := s.db.Model(&models.WorkspaceMember{}).
		Select("workspace_id, COUNT(*) AS n").
		Where("workspace_id IN ?", ids).
		Group("workspace_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("task: count members: %w", err)
	}
	for _, r := range rows {
		out[r.WorkspaceID] = r.N
	}
	return out, nil
}
