package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zulandar/taskflow/internal/apperr"
	"github.com/zulandar/taskflow/internal/broadcast"
	"github.com/zulandar/taskflow/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateLabel adds a label to the workspace. An empty color gets
// models.DefaultLabelColor.
func (s *Service) CreateLabel(workspaceID, actorID uint, name, color string) (*models.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidArgumentf("task: label name is required")
	}
	if color == "" {
		color = models.DefaultLabelColor
	}
	if err := s.requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	l := &models.Label{WorkspaceID: workspaceID, Name: name, Color: color, CreatedBy: actorID}
	if err := s.db.Create(l).Error; err != nil {
		return nil, fmt.Errorf("task: create label: %w", err)
	}
	s.bus.PublishTaskUpdate(workspaceID, broadcast.WorkspaceUpdated, l)
	return l, nil
}

// UpdateLabel changes name or color. Nil or blank values leave a field
// unchanged.
func (s *Service) UpdateLabel(id uint, name, color *string) (*models.Label, error) {
	l, err := s.loadLabel(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if name != nil && strings.TrimSpace(*name) != "" {
		updates["name"] = strings.TrimSpace(*name)
	}
	if color != nil && *color != "" {
		updates["color"] = *color
	}
	if len(updates) == 0 {
		return l, nil
	}
	if err := s.db.Model(l).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("task: update label %d: %w", id, err)
	}
	s.bus.PublishTaskUpdate(l.WorkspaceID, broadcast.WorkspaceUpdated, l)
	return l, nil
}

// DeleteLabel soft-deletes the label and detaches it from every task in one
// transaction.
func (s *Service) DeleteLabel(id uint) error {
	l, err := s.loadLabel(id)
	if err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("label_id = ?", id).Delete(&models.TaskLabel{}).Error; err != nil {
			return fmt.Errorf("task: detach label %d: %w", id, err)
		}
		if err := tx.Delete(l).Error; err != nil {
			return fmt.Errorf("task: delete label %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.bus.PublishTaskUpdate(l.WorkspaceID, broadcast.WorkspaceUpdated, map[string]interface{}{"labelId": id, "deleted": true})
	return nil
}

// ListLabels returns the workspace's labels ordered by name.
func (s *Service) ListLabels(workspaceID uint) ([]models.Label, error) {
	if err := s.requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	var out []models.Label
	if err := s.db.Where("workspace_id = ?", workspaceID).
		Order("name ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("task: labels of workspace %d: %w", workspaceID, err)
	}
	return out, nil
}

// AddLabelToTask attaches the label. Attaching it twice is a no-op.
func (s *Service) AddLabelToTask(taskID, labelID uint) error {
	t, err := s.loadTask(taskID)
	if err != nil {
		return err
	}
	l, err := s.loadLabel(labelID)
	if err != nil {
		return err
	}
	if l.WorkspaceID != t.WorkspaceID {
		return apperr.InvalidArgumentf("task: label %d is in another workspace", labelID)
	}
	if err := s.db.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.TaskLabel{TaskID: taskID, LabelID: labelID}).Error; err != nil {
		return fmt.Errorf("task: label task %d: %w", taskID, err)
	}
	s.publishTask(t)
	return nil
}

// RemoveLabelFromTask detaches the label. Removing an absent label is a
// no-op.
func (s *Service) RemoveLabelFromTask(taskID, labelID uint) error {
	t, err := s.loadTask(taskID)
	if err != nil {
		return err
	}
	result := s.db.Where("task_id = ? AND label_id = ?", taskID, labelID).Delete(&models.TaskLabel{})
	if result.Error != nil {
		return fmt.Errorf("task: unlabel task %d: %w", taskID, result.Error)
	}
	if result.RowsAffected > 0 {
		s.publishTask(t)
	}
	return nil
}

// TaskLabels returns the task's live labels ordered by name.
func (s *Service) TaskLabels(taskID uint) ([]models.Label, error) {
	if _, err := s.loadTask(taskID); err != nil {
		return nil, err
	}
	var out []models.Label
	if err := s.db.
		Joins("JOIN task_labels tl ON tl.label_id = labels.id").
		Where("tl.task_id = ?", taskID).
		Order("labels.name ASC, labels.id ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("task: labels of task %d: %w", taskID, err)
	}
	return out, nil
}

func (s *Service) loadLabel(id uint) (*models.Label, error) {
	var l models.Label
	if err := s.db.Where("id = ?", id).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("task: label not found: %d", id)
		}
		return nil, fmt.Errorf("task: get label %d: %w", id, err)
	}
	return &l, nil
}
