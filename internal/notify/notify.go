// Package notify persists per-user notifications and pushes each new one to
// the user's notification topic.
package notify

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zulandar/taskflow/internal/apperr"
	"github.com/zulandar/taskflow/internal/broadcast"
	"github.com/zulandar/taskflow/internal/models"
	"gorm.io/gorm"
)

// ListLimit caps List results.
const ListLimit = 100

type Service struct {
	db  *gorm.DB
	bus broadcast.Publisher
	log logrus.FieldLogger
}

// New returns a notification service. bus may be nil.
func New(db *gorm.DB, bus broadcast.Publisher, log logrus.FieldLogger) *Service {
	return &Service{db: db, bus: bus, log: log}
}

// Input describes a notification to create.
type Input struct {
	UserID      uint
	Type        string
	Title       string
	Content     string
	ReferenceID *uint
}

// Create stores the notification, then publishes it.
func (s *Service) Create(in Input) (*models.Notification, error) {
	if in.UserID == 0 {
		return nil, apperr.InvalidArgumentf("notify: user is required")
	}
	if in.Type == "" {
		return nil, apperr.InvalidArgumentf("notify: type is required")
	}
	n := &models.Notification{
		UserID:      in.UserID,
		Type:        in.Type,
		Title:       in.Title,
		Content:     in.Content,
		ReferenceID: in.ReferenceID,
	}
	if err := s.db.Create(n).Error; err != nil {
		return nil, fmt.Errorf("notify: create for user %d: %w", in.UserID, err)
	}
	if s.bus != nil {
		s.bus.PublishNotification(n.UserID, n)
	}
	s.log.WithField("user_id", n.UserID).WithField("type", n.Type).Debug("notify: created")
	return n, nil
}

// List returns the user's notifications, newest first.
func (s *Service) List(userID uint, unreadOnly bool) ([]models.Notification, error) {
	q := s.db.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("`read` = ?", false)
	}
	var out []models.Notification
	if err := q.Order("created_at DESC, id DESC").Limit(ListLimit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("notify: list for user %d: %w", userID, err)
	}
	return out, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *Service) MarkRead(userID, id uint) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("notify: mark %d read: %w", id, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	// MySQL reports zero affected rows when the flag was already set.
	var count int64
	if err := s.db.Model(&models.Notification{}).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
		return fmt.Errorf("notify: check %d: %w", id, err)
	}
	if count == 0 {
		return apperr.NotFoundf("notify: notification not found: %d", id)
	}
	return nil
}

// MarkAllRead flags every unread notification of the user and returns how
// many changed.
func (s *Service) MarkAllRead(userID uint) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("notify: mark all read for user %d: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}

// UnreadCount returns the number of unread notifications of the user.
func (s *Service) UnreadCount(userID uint) (int64, error) {
	var n int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("notify: unread count for user %d: %w", userID, err)
	}
	return n, nil
}
