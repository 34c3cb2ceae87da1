// Package audit appends and reads the per-task activity history.
package audit

import (
	"fmt"
	"sort"

	"github.com/zulandar/taskflow/internal/apperr"
	"github.com/zulandar/taskflow/internal/models"
	"gorm.io/gorm"
)

// Actions recorded against a task.
const (
	ActionCreate       = "CREATE"
	ActionUpdate       = "UPDATE"
	ActionDelete       = "DELETE"
	ActionStatusChange = "STATUS_CHANGE"
	ActionMove         = "MOVE"
)

// HistoryLimit caps the number of entries History returns.
const HistoryLimit = 50

// Change is the before/after value of one field. A nil side means the field
// had no value.
type Change struct {
	Old *string
	New *string
}

// ChangeSet collects field changes of one mutation, keyed by field name.
type ChangeSet map[string]Change

// Add records field unless before and after are equal.
func (cs ChangeSet) Add(field string, before, after *string) {
	if sameValue(before, after) {
		return
	}
	cs[field] = Change{Old: before, New: after}
}

// Fields returns the changed field names in sorted order.
func (cs ChangeSet) Fields() []string {
	fields := make([]string, 0, len(cs))
	for f := range cs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func sameValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Str returns a pointer to s, for building Change values inline.
func Str(s string) *string { return &s }

// Log writes and reads TaskActivity rows.
type Log struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Log {
	return &Log{db: db}
}

// Entry is one Record call.
type Entry struct {
	TaskID  uint
	ActorID uint
	Action  string
	Field   string
	Old     *string
	New     *string
}

// Record appends one entry. Entries are never updated or deleted.
func (l *Log) Record(e Entry) (*models.TaskActivity, error) {
	return record(l.db, e)
}

// RecordChanges appends one entry per changed field, in field-name order,
// all in one transaction. An empty set records nothing.
func (l *Log) RecordChanges(taskID, actorID uint, action string, cs ChangeSet) ([]models.TaskActivity, error) {
	if len(cs) == 0 {
		return nil, nil
	}
	var out []models.TaskActivity
	err := l.db.Transaction(func(tx *gorm.DB) error {
		for _, field := range cs.Fields() {
			ch := cs[field]
			row, err := record(tx, Entry{TaskID: taskID, ActorID: actorID, Action: action, Field: field, Old: ch.Old, New: ch.New})
			if err != nil {
				return err
			}
			out = append(out, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// History returns the most recent HistoryLimit entries for taskID, newest
// first. The task may be soft-deleted.
func (l *Log) History(taskID uint) ([]models.TaskActivity, error) {
	var rows []models.TaskActivity
	if err := l.db.Where("task_id = ?", taskID).
		Order("created_at DESC, id DESC").
		Limit(HistoryLimit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("audit: history of task %d: %w", taskID, err)
	}
	return rows, nil
}

func record(tx *gorm.DB, e Entry) (*models.TaskActivity, error) {
	if e.TaskID == 0 || e.ActorID == 0 {
		return nil, apperr.InvalidArgumentf("audit: task and actor are required (task=%d actor=%d)", e.TaskID, e.ActorID)
	}
	if e.Action == "" {
		return nil, apperr.InvalidArgumentf("audit: action is required")
	}
	row := &models.TaskActivity{
		TaskID:    e.TaskID,
		UserID:    e.ActorID,
		Action:    e.Action,
		FieldName: e.Field,
		OldValue:  e.Old,
		NewValue:  e.New,
	}
	if err := tx.Create(row).Error; err != nil {
		return nil, fmt.Errorf("audit: record %s on task %d: %w", e.Action, e.TaskID, err)
	}
	return row, nil
}
