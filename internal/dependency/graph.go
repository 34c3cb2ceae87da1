// Package dependency maintains the directed predecessor→successor edges
// between tasks. The edge set is kept free of duplicates, self-loops and
// cycles.
package dependency

import (
	"fmt"

	"github.com/zulandar/taskflow/internal/apperr"
	"github.com/zulandar/taskflow/internal/db"
	"github.com/zulandar/taskflow/internal/lock"
	"github.com/zulandar/taskflow/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Graph reads and mutates the task dependency edge set.
type Graph struct {
	db    *gorm.DB
	locks *lock.Keyed
}

func New(db *gorm.DB) *Graph {
	return &Graph{db: db, locks: lock.NewKeyed()}
}

// AddOpts describes a new edge. A zero SuccessorID means the task the edge is
// being added from; an empty Type means FINISH_TO_START.
type AddOpts struct {
	PredecessorID uint
	SuccessorID   uint
	Type          string
}

// ValidType reports whether t is a known dependency type.
func ValidType(t string) bool {
	switch t {
	case models.DepFinishToStart, models.DepStartToStart, models.DepFinishToFinish, models.DepStartToFinish:
		return true
	}
	return false
}

// AddEdge inserts predecessor→successor. Validation, the cycle check and the
// insert run under the workspace lock in one transaction, so two concurrent
// inserts cannot each pass a stale check and close a cycle together.
func (g *Graph) AddEdge(selfID uint, opts AddOpts) (*models.TaskDependency, error) {
	succID := opts.SuccessorID
	if succID == 0 {
		succID = selfID
	}
	predID := opts.PredecessorID
	depType := opts.Type
	if depType == "" {
		depType = models.DepFinishToStart
	}

	if predID == 0 || succID == 0 {
		return nil, apperr.InvalidArgumentf("dep: predecessor and successor are required")
	}
	if predID == succID {
		return nil, apperr.InvalidArgumentf("dep: task %d cannot depend on itself", predID)
	}
	if !ValidType(depType) {
		return nil, apperr.InvalidArgumentf("dep: unknown dependency type %q", depType)
	}

	pred, err := loadTask(g.db, predID)
	if err != nil {
		return nil, err
	}
	succ, err := loadTask(g.db, succID)
	if err != nil {
		return nil, err
	}
	if pred.WorkspaceID != succ.WorkspaceID {
		return nil, apperr.InvalidArgumentf("dep: tasks %d and %d are in different workspaces", predID, succID)
	}

	unlock := g.locks.Lock(workspaceKey(succ.WorkspaceID))
	defer unlock()

	edge := &models.TaskDependency{
		PredecessorTaskID: predID,
		SuccessorTaskID:   succID,
		DependencyType:    depType,
	}
	err = g.db.Transaction(func(tx *gorm.DB) error {
		// Re-check under the lock; either task may have been deleted meanwhile.
		for _, id := range []uint{predID, succID} {
			if _, err := loadTask(tx, id); err != nil {
				return err
			}
		}

		var count int64
		if err := tx.Model(&models.TaskDependency{}).
			Where("predecessor_task_id = ? AND successor_task_id = ?", predID, succID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("dep: check %d → %d: %w", predID, succID, err)
		}
		if count > 0 {
			return apperr.Conflictf("dep: dependency %d → %d already exists", predID, succID)
		}

		reach, err := reachableFrom(tx, succID)
		if err != nil {
			return err
		}
		if reach[predID] {
			return apperr.CycleDetectedf("dep: adding %d → %d would create a cycle", predID, succID)
		}

		if err := tx.Omit(clause.Associations).Create(edge).Error; err != nil {
			if db.IsDuplicateKey(err) {
				return apperr.Conflictf("dep: dependency %d → %d already exists", predID, succID)
			}
			return fmt.Errorf("dep: create %d → %d: %w", predID, succID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edge, nil
}

// RemoveEdge deletes the exact predecessor→successor edge.
func (g *Graph) RemoveEdge(predecessorID, successorID uint) error {
	result := g.db.Where("predecessor_task_id = ? AND successor_task_id = ?", predecessorID, successorID).
		Delete(&models.TaskDependency{})
	if result.Error != nil {
		return fmt.Errorf("dep: remove %d → %d: %w", predecessorID, successorID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFoundf("dep: dependency %d → %d not found", predecessorID, successorID)
	}
	return nil
}

// PredecessorsOf returns the tasks that must complete before taskID, ordered
// by id. Soft-deleted predecessors are omitted.
func (g *Graph) PredecessorsOf(taskID uint) ([]models.Task, error) {
	if _, err := loadTask(g.db, taskID); err != nil {
		return nil, err
	}
	var tasks []models.Task
	if err := g.db.
		Joins("JOIN task_dependencies d ON d.predecessor_task_id = tasks.id").
		Where("d.successor_task_id = ?", taskID).
		Order("tasks.id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("dep: predecessors of %d: %w", taskID, err)
	}
	return tasks, nil
}

// SuccessorsOf returns the tasks that taskID blocks, ordered by id.
func (g *Graph) SuccessorsOf(taskID uint) ([]models.Task, error) {
	if _, err := loadTask(g.db, taskID); err != nil {
		return nil, err
	}
	var tasks []models.Task
	if err := g.db.
		Joins("JOIN task_dependencies d ON d.successor_task_id = tasks.id").
		Where("d.predecessor_task_id = ?", taskID).
		Order("tasks.id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("dep: successors of %d: %w", taskID, err)
	}
	return tasks, nil
}

// Edges returns the raw edges ending at taskID (incoming) and starting at it
// (outgoing).
func (g *Graph) Edges(taskID uint) (incoming, outgoing []models.TaskDependency, err error) {
	if err := g.db.Where("successor_task_id = ?", taskID).
		Order("predecessor_task_id ASC").Find(&incoming).Error; err != nil {
		return nil, nil, fmt.Errorf("dep: list incoming for %d: %w", taskID, err)
	}
	if err := g.db.Where("predecessor_task_id = ?", taskID).
		Order("successor_task_id ASC").Find(&outgoing).Error; err != nil {
		return nil, nil, fmt.Errorf("dep: list outgoing for %d: %w", taskID, err)
	}
	return incoming, outgoing, nil
}

// ReachableSuccessors returns every task id reachable from taskID along
// outgoing edges, excluding taskID itself unless it lies on a cycle.
func (g *Graph) ReachableSuccessors(taskID uint) (map[uint]bool, error) {
	return reachableFrom(g.db, taskID)
}

// ReadyTasks returns the workspace's open tasks whose predecessors are all
// DONE or CANCELLED, ordered by due date (nulls last) then id.
func (g *Graph) ReadyTasks(workspaceID uint) ([]models.Task, error) {
	closed := []string{models.StatusDone, models.StatusCancelled}
	blocked := g.db.Table("task_dependencies").
		Select("task_dependencies.successor_task_id").
		Joins("JOIN tasks blocker ON task_dependencies.predecessor_task_id = blocker.id").
		Where("blocker.deleted_at IS NULL AND blocker.status NOT IN ?", closed)

	var tasks []models.Task
	if err := g.db.
		Where("workspace_id = ? AND status NOT IN ?", workspaceID, closed).
		Where("id NOT IN (?)", blocked).
		Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("dep: ready tasks in workspace %d: %w", workspaceID, err)
	}
	return tasks, nil
}

// reachableFrom walks outgoing edges breadth-first, one query per frontier.
// Soft-deleted tasks end the walk, matching what the read paths expose. The
// visited set bounds the walk even if the stored edges contain a cycle.
func reachableFrom(tx *gorm.DB, start uint) (map[uint]bool, error) {
	visited := make(map[uint]bool)
	frontier := []uint{start}
	for len(frontier) > 0 {
		var next []uint
		if err := tx.Model(&models.TaskDependency{}).
			Joins("JOIN tasks succ ON succ.id = task_dependencies.successor_task_id AND succ.deleted_at IS NULL").
			Where("task_dependencies.predecessor_task_id IN ?", frontier).
			Distinct().
			Pluck("task_dependencies.successor_task_id", &next).Error; err != nil {
			return nil, fmt.Errorf("dep: walk from %d: %w", start, err)
		}
		frontier = frontier[:0]
		for _, id := range next {
			if visited[id] {
				continue
			}
			visited[id] = true
			frontier = append(frontier, id)
		}
	}
	return visited, nil
}

func loadTask(tx *gorm.DB, id uint) (*models.Task, error) {
	var tasks []models.Task
	if err := tx.Select("id, workspace_id").Where("id = ?", id).Limit(1).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("dep: load task %d: %w", id, err)
	}
	if len(tasks) == 0 {
		return nil, apperr.NotFoundf("dep: task not found: %d", id)
	}
	return &tasks[0], nil
}

func workspaceKey(id uint) string {
	return fmt.Sprintf("workspace:%d", id)
}
