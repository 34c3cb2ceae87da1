package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zulandar/taskflow/internal/apperr"
	"github.com/zulandar/taskflow/internal/broadcast"
	"github.com/zulandar/taskflow/internal/models"
	"github.com/zulandar/taskflow/internal/position"
	"gorm.io/gorm"
)

// AddSubtask appends a checklist entry to the task.
func (s *Service) AddSubtask(taskID uint, title string) (*models.Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.InvalidArgumentf("task: subtask title is required")
	}
	t, err := s.loadTask(taskID)
	if err != nil {
		return nil, err
	}
	var sub models.Subtask
	err = s.pos.AppendWith(position.Subtasks(taskID), func(tx *gorm.DB, pos int) error {
		sub = models.Subtask{TaskID: taskID, Title: title, Position: pos}
		if err := tx.Create(&sub).Error; err != nil {
			return fmt.Errorf("task: create subtask: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishTask(t)
	return &sub, nil
}

// ToggleSubtask flips the completed flag.
func (s *Service) ToggleSubtask(id uint) (*models.Subtask, error) {
	sub, t, err := s.loadSubtask(id)
	if err != nil {
		return nil, err
	}
	sub.Completed = !sub.Completed
	if err := s.db.Model(sub).Update("completed", sub.Completed).Error; err != nil {
		return nil, fmt.Errorf("task: toggle subtask %d: %w", id, err)
	}
	s.publishTask(t)
	return sub, nil
}

// RenameSubtask changes the subtask title.
func (s *Service) RenameSubtask(id uint, title string) (*models.Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.InvalidArgumentf("task: subtask title is required")
	}
	sub, t, err := s.loadSubtask(id)
	if err != nil {
		return nil, err
	}
	sub.Title = title
	if err := s.db.Model(sub).Update("title", title).Error; err != nil {
		return nil, fmt.Errorf("task: rename subtask %d: %w", id, err)
	}
	s.publishTask(t)
	return sub, nil
}

// DeleteSubtask hard-deletes the subtask. Remaining siblings keep their
// positions.
func (s *Service) DeleteSubtask(id uint) error {
	sub, t, err := s.loadSubtask(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(sub).Error; err != nil {
		return fmt.Errorf("task: delete subtask %d: %w", id, err)
	}
	s.publishTask(t)
	return nil
}

// ReorderSubtasks applies a best-effort position batch to the task's
// checklist.
func (s *Service) ReorderSubtasks(taskID uint, items []position.Item) ([]position.ItemResult, error) {
	t, err := s.loadTask(taskID)
	if err != nil {
		return nil, err
	}
	results, err := s.pos.Reorder(position.Subtasks(taskID), items)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		if r.Err != nil {
			s.log.WithError(r.Err).WithField("subtask_id", r.ID).Warn("task: subtask reorder item failed")
		}
	}
	s.publishTask(t)
	return results, nil
}

func (s *Service) loadSubtask(id uint) (*models.Subtask, *models.Task, error) {
	var sub models.Subtask
	if err := s.db.Where("id = ?", id).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFoundf("task: subtask not found: %d", id)
		}
		return nil, nil, fmt.Errorf("task: get subtask %d: %w", id, err)
	}
	t, err := s.loadTask(sub.TaskID)
	if err != nil {
		return nil, nil, err
	}
	return &sub, t, nil
}

// publishTask sends the refreshed view of t as a TaskUpdated event.
func (s *Service) publishTask(t *models.Task) {
	view, err := s.Get(t.ID)
	if err != nil {
		s.log.WithError(err).WithField("task_id", t.ID).Warn("task: reload for publish failed")
		return
	}
	s.bus.PublishTaskUpdate(t.WorkspaceID, broadcast.TaskUpdated, view)
}
