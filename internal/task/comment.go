package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zulandar/taskflow/internal/apperr"
	"github.com/zulandar/taskflow/internal/models"
	"github.com/zulandar/taskflow/internal/notify"
	"gorm.io/gorm"
)

// AddComment stores a comment and notifies the task's assignee unless the
// assignee wrote it.
func (s *Service) AddComment(taskID, authorID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.InvalidArgumentf("task: comment content is required")
	}
	if authorID == 0 {
		return nil, apperr.InvalidArgumentf("task: comment author is required")
	}
	t, err := s.loadTask(taskID)
	if err != nil {
		return nil, err
	}
	c := &models.Comment{TaskID: taskID, UserID: authorID, Content: content}
	if err := s.db.Create(c).Error; err != nil {
		return nil, fmt.Errorf("task: create comment on %d: %w", taskID, err)
	}
	if t.AssigneeID != nil && *t.AssigneeID != authorID {
		s.notify(notify.Input{
			UserID:      *t.AssigneeID,
			Type:        models.NotifyCommentAdded,
			Title:       "New comment on " + t.Title,
			Content:     content,
			ReferenceID: &t.ID,
		})
	}
	s.publishTask(t)
	return c, nil
}

// ListComments returns the task's comments, oldest first.
func (s *Service) ListComments(taskID uint) ([]models.Comment, error) {
	if _, err := s.loadTask(taskID); err != nil {
		return nil, err
	}
	var out []models.Comment
	if err := s.db.Where("task_id = ?", taskID).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("task: list comments of %d: %w", taskID, err)
	}
	return out, nil
}

// DeleteComment soft-deletes a comment. Only its author may delete it.
func (s *Service) DeleteComment(id, actorID uint) error {
	var c models.Comment
	if err := s.db.Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("task: comment not found: %d", id)
		}
		return fmt.Errorf("task: get comment %d: %w", id, err)
	}
	if c.UserID != actorID {
		return apperr.InvalidArgumentf("task: comment %d belongs to another user", id)
	}
	if err := s.db.Delete(&c).Error; err != nil {
		return fmt.Errorf("task: delete comment %d: %w", id, err)
	}
	if t, err := s.loadTask(c.TaskID); err == nil {
		s.publishTask(t)
	}
	return nil
}
