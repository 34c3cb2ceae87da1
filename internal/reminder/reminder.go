// Package reminder notifies assignees of tasks coming due.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zulandar/taskflow/internal/config"
	"github.com/zulandar/taskflow/internal/models"
	"github.com/zulandar/taskflow/internal/notify"
	"gorm.io/gorm"
)

// Sweeper finds open, assigned tasks due within the window and creates one
// DUE_DATE_REMINDER per task per UTC day.
type Sweeper struct {
	db     *gorm.DB
	notes  *notify.Service
	window time.Duration
	log    logrus.FieldLogger

	now func() time.Time
}

func New(db *gorm.DB, notes *notify.Service, window time.Duration, log logrus.FieldLogger) *Sweeper {
	return &Sweeper{
		db:     db,
		notes:  notes,
		window: window,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Sweep runs one pass and returns the number of reminders created. A task
// that cannot be notified is logged and skipped; the rest of the pass still
// runs.
func (s *Sweeper) Sweep() (int, error) {
	now := s.now().UTC()
	var tasks []models.Task
	if err := s.db.
		Where("assignee_id IS NOT NULL AND assignee_id <> 0 AND due_date IS NOT NULL").
		Where("due_date >= ? AND due_date <= ?", now, now.Add(s.window)).
		Where("status NOT IN ?", []string{models.StatusDone, models.StatusCancelled}).
		Order("due_date ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return 0, fmt.Errorf("reminder: find due tasks: %w", err)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	created := 0
	for _, t := range tasks {
		var count int64
		if err := s.db.Model(&models.Notification{}).
			Where("type = ? AND reference_id = ? AND user_id = ? AND created_at >= ?",
				models.NotifyDueDateReminder, t.ID, *t.AssigneeID, today).
			Count(&count).Error; err != nil {
			s.log.WithError(err).WithField("task_id", t.ID).Warn("reminder: check existing reminder")
			continue
		}
		if count > 0 {
			continue
		}
		id := t.ID
		if _, err := s.notes.Create(notify.Input{
			UserID:      *t.AssigneeID,
			Type:        models.NotifyDueDateReminder,
			Title:       "Due soon: " + t.Title,
			Content:     "Due " + t.DueDate.UTC().Format(time.RFC1123),
			ReferenceID: &id,
		}); err != nil {
			s.log.WithError(err).WithField("task_id", t.ID).Warn("reminder: notify assignee")
			continue
		}
		created++
	}
	return created, nil
}

// NextDuration returns the time from now until expr next fires, or 0 when
// expr does not parse.
func NextDuration(expr string, now time.Time) time.Duration {
	sched, err := config.CronParser.Parse(expr)
	if err != nil {
		return 0
	}
	d := sched.Next(now).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Run sweeps every time schedule fires until ctx is cancelled. It returns
// immediately if the schedule does not parse.
func (s *Sweeper) Run(ctx context.Context, schedule string) {
	d := NextDuration(schedule, time.Now())
	if d <= 0 {
		s.log.WithField("schedule", schedule).Warn("reminder: invalid schedule, sweeper not started")
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			n, err := s.Sweep()
			if err != nil {
				s.log.WithError(err).Warn("reminder: sweep failed")
			} else if n > 0 {
				s.log.WithField("count", n).Info("reminder: due-date reminders sent")
			}
			if d := NextDuration(schedule, time.Now()); d > 0 {
				timer.Reset(d)
			}
		}
	}
}
