// Package task orchestrates mutations over workspaces, boards, tasks,
// subtasks and comments. Each mutation validates, writes through the
// position index or dependency graph, then records audit entries and
// publishes events. Audit and publish failures are logged, never returned.
package task

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zulandar/taskflow/internal/apperr"
	"github.com/zulandar/taskflow/internal/audit"
	"github.com/zulandar/taskflow/internal/broadcast"
	"github.com/zulandar/taskflow/internal/dependency"
	"github.com/zulandar/taskflow/internal/hierarchy"
	"github.com/zulandar/taskflow/internal/models"
	"github.com/zulandar/taskflow/internal/notify"
	"github.com/zulandar/taskflow/internal/position"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	pos   *position.Index
	graph *dependency.Graph
	tree  *hierarchy.Reader
	audit *audit.Log
	notes *notify.Service
	bus   broadcast.Publisher
	log   logrus.FieldLogger
}

// New wires a Service over db. A nil bus gets a private hub with no
// subscribers.
func New(db *gorm.DB, bus broadcast.Publisher, log logrus.FieldLogger) *Service {
	if bus == nil {
		bus = broadcast.NewHub(log)
	}
	return &Service{
		db:    db,
		pos:   position.New(db),
		graph: dependency.New(db),
		tree:  hierarchy.New(db),
		audit: audit.New(db),
		notes: notify.New(db, bus, log),
		bus:   bus,
		log:   log,
	}
}

func (s *Service) Graph() *dependency.Graph { return s.graph }
func (s *Service) Hierarchy() *hierarchy.Reader { return s.tree }
func (s *Service) Audit() *audit.Log { return s.audit }
func (s *Service) Notifications() *notify.Service { return s.notes }
func (s *Service) Positions() *position.Index { return s.pos }

// record appends an audit entry, logging instead of failing.
func (s *Service) record(e audit.Entry) {
	if _, err := s.audit.Record(e); err != nil {
		s.log.WithError(err).WithField("task_id", e.TaskID).Warn("task: audit record failed")
	}
}

func (s *Service) recordChanges(taskID, actorID uint, action string, cs audit.ChangeSet) {
	if _, err := s.audit.RecordChanges(taskID, actorID, action, cs); err != nil {
		s.log.WithError(err).WithField("task_id", taskID).Warn("task: audit record failed")
	}
}

func (s *Service) notify(in notify.Input) {
	if _, err := s.notes.Create(in); err != nil {
		s.log.WithError(err).WithField("user_id", in.UserID).Warn("task: notification failed")
	}
}

func (s *Service) loadTask(id uint) (*models.Task, error) {
	var t models.Task
	if err := s.db.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("task: not found: %d", id)
		}
		return nil, fmt.Errorf("task: get %d: %w", id, err)
	}
	return &t, nil
}

func (s *Service) loadColumn(id uint) (*models.BoardColumn, *models.Board, error) {
	var col models.BoardColumn
	if err := s.db.Where("id = ?", id).First(&col).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFoundf("task: column not found: %d", id)
		}
		return nil, nil, fmt.Errorf("task: get column %d: %w", id, err)
	}
	board, err := s.loadBoard(col.BoardID)
	if err != nil {
		return nil, nil, err
	}
	return &col, board, nil
}

func (s *Service) loadBoard(id uint) (*models.Board, error) {
	var b models.Board
	if err := s.db.Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("task: board not found: %d", id)
		}
		return nil, fmt.Errorf("task: get board %d: %w", id, err)
	}
	return &b, nil
}

func (s *Service) requireWorkspace(id uint) error {
	var count int64
	if err := s.db.Model(&models.Workspace{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("task: check workspace %d: %w", id, err)
	}
	if count == 0 {
		return apperr.NotFoundf("task: workspace not found: %d", id)
	}
	return nil
}

// Helpers that render field values for audit entries.

func strVal(v string) *string { return &v }

func uintVal(v *uint) *string {
	if v == nil {
		return nil
	}
	return strVal(strconv.FormatUint(uint64(*v), 10))
}

func intVal(v int) *string { return strVal(strconv.Itoa(v)) }

func dateVal(v *time.Time) *string {
	if v == nil {
		return nil
	}
	return strVal(v.UTC().Format(time.RFC3339))
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func sameUint(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
