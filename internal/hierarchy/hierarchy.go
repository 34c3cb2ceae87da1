// Package hierarchy derives read-only views over tasks: parent/child trees,
// subtask rollups, calendar ranges and Gantt ordering. Nothing is cached;
// every view is recomputed from the store.
package hierarchy

import (
	"fmt"
	"time"

	"github.com/zulandar/taskflow/internal/apperr"
	"github.com/zulandar/taskflow/internal/models"
	"github.com/zulandar/taskflow/internal/position"
	"gorm.io/gorm"
)

// Rollup summarizes a task's subtasks and comments.
type Rollup struct {
	SubtaskTotal     int     `json:"subtaskTotal"`
	SubtaskCompleted int     `json:"subtaskCompleted"`
	CompletionRatio  float64 `json:"completionRatio"`
	CommentCount     int     `json:"commentCount"`
}

type Reader struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Reader {
	return &Reader{db: db}
}

// ChildrenOf returns the direct child tasks of taskID.
func (r *Reader) ChildrenOf(taskID uint) ([]models.Task, error) {
	if err := r.requireTask(taskID); err != nil {
		return nil, err
	}
	var tasks []models.Task
	if err := r.db.Where("parent_task_id = ?", taskID).Order(position.ReadOrder).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("hierarchy: children of %d: %w", taskID, err)
	}
	return tasks, nil
}

// StatusCount is the number of child tasks in one status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ChildStatusSummary counts the direct children of taskID per status.
func (r *Reader) ChildStatusSummary(taskID uint) ([]StatusCount, error) {
	if err := r.requireTask(taskID); err != nil {
		return nil, err
	}
	var out []StatusCount
	if err := r.db.Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Where("parent_task_id = ?", taskID).
		Group("status").
		Order("status ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("hierarchy: child summary of %d: %w", taskID, err)
	}
	return out, nil
}

// SubtasksOf returns the checklist of taskID in display order.
func (r *Reader) SubtasksOf(taskID uint) ([]models.Subtask, error) {
	if err := r.requireTask(taskID); err != nil {
		return nil, err
	}
	var subs []models.Subtask
	if err := r.db.Where("task_id = ?", taskID).Order(position.ReadOrder).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("hierarchy: subtasks of %d: %w", taskID, err)
	}
	return subs, nil
}

// Rollup counts subtasks and comments of taskID. CompletionRatio is 0 when
// the task has no subtasks.
func (r *Reader) Rollup(taskID uint) (*Rollup, error) {
	if err := r.requireTask(taskID); err != nil {
		return nil, err
	}
	var agg struct {
		Total     int64
		Completed int64
	}
	if err := r.db.Model(&models.Subtask{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed").
		Where("task_id = ?", taskID).
		Scan(&agg).Error; err != nil {
		return nil, fmt.Errorf("hierarchy: rollup subtasks of %d: %w", taskID, err)
	}
	var comments int64
	if err := r.db.Model(&models.Comment{}).Where("task_id = ?", taskID).Count(&comments).Error; err != nil {
		return nil, fmt.Errorf("hierarchy: rollup comments of %d: %w", taskID, err)
	}

	out := &Rollup{
		SubtaskTotal:     int(agg.Total),
		SubtaskCompleted: int(agg.Completed),
		CommentCount:     int(comments),
	}
	if out.SubtaskTotal > 0 {
		out.CompletionRatio = float64(out.SubtaskCompleted) / float64(out.SubtaskTotal)
	}
	return out, nil
}

// TasksInRange returns the workspace's tasks due within [start, end]. Bounds
// are calendar days in UTC and inclusive; a nil bound is open. Tasks without
// a due date are never included.
func (r *Reader) TasksInRange(workspaceID uint, start, end *time.Time) ([]models.Task, error) {
	if start != nil && end != nil && dayStart(*end).Before(dayStart(*start)) {
		return nil, apperr.InvalidArgumentf("hierarchy: range end %s is before start %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	q := r.db.Where("workspace_id = ? AND due_date IS NOT NULL", workspaceID)
	if start != nil {
		q = q.Where("due_date >= ?", dayStart(*start))
	}
	if end != nil {
		q = q.Where("due_date < ?", dayStart(*end).AddDate(0, 0, 1))
	}
	var tasks []models.Task
	if err := q.Order("due_date ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("hierarchy: tasks in range for workspace %d: %w", workspaceID, err)
	}
	return tasks, nil
}

// GanttOrder returns the workspace's tasks by start date ascending, tasks
// without a start date last, ties by id.
func (r *Reader) GanttOrder(workspaceID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("workspace_id = ?", workspaceID).
		Order("CASE WHEN start_date IS NULL THEN 1 ELSE 0 END, start_date ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("hierarchy: gantt for workspace %d: %w", workspaceID, err)
	}
	return tasks, nil
}

func (r *Reader) requireTask(id uint) error {
	var count int64
	if err := r.db.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("hierarchy: check task %d: %w", id, err)
	}
	if count == 0 {
		return apperr.NotFoundf("hierarchy: task not found: %d", id)
	}
	return nil
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
