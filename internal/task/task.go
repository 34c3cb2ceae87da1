package task

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/zulandar/taskflow/internal/apperr"
	"github.com/zulandar/taskflow/internal/audit"
	"github.com/zulandar/taskflow/internal/broadcast"
	"github.com/zulandar/taskflow/internal/models"
	"github.com/zulandar/taskflow/internal/notify"
	"github.com/zulandar/taskflow/internal/position"
	"gorm.io/gorm"
)

// View is a task with its ordered subtasks and rollup counts.
type View struct {
	models.Task
	Subtasks        []models.Subtask `json:"subtasks"`
	CommentCount    int              `json:"commentCount"`
	CompletionRatio float64          `json:"completionRatio"`
}

// CreateOpts holds parameters for creating a task.
type CreateOpts struct {
	Title         string
	Description   string
	Status        string // default TODO
	Priority      string // default MEDIUM
	StartDate     *time.Time
	DueDate       *time.Time
	AssigneeID    *uint // 0 means unassigned
	ParentTaskID  *uint
	BoardColumnID *uint
}

// UpdateOpts holds the fields to change. Nil leaves a field unchanged.
type UpdateOpts struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	StartDate    *time.Time
	DueDate      *time.Time
	Progress     *int
	AssigneeID   *uint // 0 clears the assignee
	ParentTaskID *uint
}

// ListFilters selects, sorts and pages List results.
type ListFilters struct {
	Status     string
	Priority   string
	AssigneeID *uint
	Keyword    string
	Page       int    // 1-based, default 1
	Size       int    // default 20, max 100
	SortBy     string // title, priority, status, dueDate, updatedAt; default createdAt
	SortDir    string // asc or desc, default desc
}

// ListResult is one page of tasks.
type ListResult struct {
	Records []models.Task `json:"records"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	Size    int           `json:"size"`
	Pages   int           `json:"pages"`
}

var sortColumns = map[string]string{
	"title":     "title",
	"priority":  "priority",
	"status":    "status",
	"dueDate":   "due_date",
	"updatedAt": "updated_at",
	"createdAt": "created_at",
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return true
	}
	return false
}

// Create inserts a task. With a column it is appended to that column;
// without one it sits at position 0 outside any board.
func (s *Service) Create(workspaceID, actorID uint, opts CreateOpts) (*View, error) {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		return nil, apperr.InvalidArgumentf("task: title is required")
	}
	if opts.Priority == "" {
		opts.Priority = models.PriorityMedium
	}
	if !ValidPriority(opts.Priority) {
		return nil, apperr.InvalidArgumentf("task: unknown priority %q", opts.Priority)
	}
	if opts.Status == "" {
		opts.Status = models.StatusTodo
	}
	if err := s.requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	if opts.ParentTaskID != nil {
		parent, err := s.loadTask(*opts.ParentTaskID)
		if err != nil {
			return nil, err
		}
		if parent.WorkspaceID != workspaceID {
			return nil, apperr.InvalidArgumentf("task: parent %d is in another workspace", parent.ID)
		}
	}

	t := models.Task{
		WorkspaceID:  workspaceID,
		ParentTaskID: opts.ParentTaskID,
		Title:        title,
		Description:  opts.Description,
		Status:       opts.Status,
		Priority:     opts.Priority,
		StartDate:    utc(opts.StartDate),
		DueDate:      utc(opts.DueDate),
		AssigneeID:   assignee(opts.AssigneeID),
		CreatorID:    actorID,
	}

	if opts.BoardColumnID != nil && *opts.BoardColumnID != 0 {
		_, board, err := s.loadColumn(*opts.BoardColumnID)
		if err != nil {
			return nil, err
		}
		if board.WorkspaceID != workspaceID {
			return nil, apperr.InvalidArgumentf("task: column %d is in another workspace", *opts.BoardColumnID)
		}
		t.BoardColumnID = opts.BoardColumnID
		err = s.pos.AppendWith(position.Tasks(*opts.BoardColumnID), func(tx *gorm.DB, pos int) error {
			t.Position = pos
			return tx.Create(&t).Error
		})
		if err != nil {
			return nil, fmt.Errorf("task: create: %w", err)
		}
	} else if err := s.db.Create(&t).Error; err != nil {
		return nil, fmt.Errorf("task: create: %w", err)
	}

	s.record(audit.Entry{TaskID: t.ID, ActorID: actorID, Action: audit.ActionCreate, New: strVal(t.Title)})
	view, err := s.Get(t.ID)
	if err != nil {
		return nil, err
	}
	s.bus.PublishTaskUpdate(workspaceID, broadcast.TaskCreated, view)
	if t.AssigneeID != nil && *t.AssigneeID != actorID {
		s.notifyAssigned(&t)
	}
	return view, nil
}

// Get returns the task with subtasks and rollup.
func (s *Service) Get(id uint) (*View, error) {
	t, err := s.loadTask(id)
	if err != nil {
		return nil, err
	}
	subs, err := s.tree.SubtasksOf(id)
	if err != nil {
		return nil, err
	}
	roll, err := s.tree.Rollup(id)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []models.Subtask{}
	}
	return &View{
		Task:            *t,
		Subtasks:        subs,
		CommentCount:    roll.CommentCount,
		CompletionRatio: roll.CompletionRatio,
	}, nil
}

// List returns one page of the workspace's tasks.
func (s *Service) List(workspaceID uint, f ListFilters) (*ListResult, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Size < 1 {
		f.Size = 20
	}
	if f.Size > 100 {
		f.Size = 100
	}
	col, ok := sortColumns[f.SortBy]
	if f.SortBy == "" {
		col, ok = "created_at", true
	}
	if !ok {
		return nil, apperr.InvalidArgumentf("task: cannot sort by %q", f.SortBy)
	}
	dir := "DESC"
	if strings.EqualFold(f.SortDir, "asc") {
		dir = "ASC"
	}

	q := s.db.Model(&models.Task{}).Where("workspace_id = ?", workspaceID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.AssigneeID != nil {
		q = q.Where("assignee_id = ?", *f.AssigneeID)
	}
	if f.Keyword != "" {
		q = q.Where("title LIKE ?", "%"+f.Keyword+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("task: count workspace %d: %w", workspaceID, err)
	}
	var records []models.Task
	if err := q.Order(col + " " + dir + ", id " + dir).
		Offset((f.Page - 1) * f.Size).
		Limit(f.Size).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("task: list workspace %d: %w", workspaceID, err)
	}
	return &ListResult{
		Records: records,
		Total:   total,
		Page:    f.Page,
		Size:    f.Size,
		Pages:   int(math.Ceil(float64(total) / float64(f.Size))),
	}, nil
}

// Update applies opts and records one UPDATE audit entry per changed field.
func (s *Service) Update(id, actorID uint, opts UpdateOpts) (*View, error) {
	t, err := s.loadTask(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	cs := audit.ChangeSet{}

	if opts.Title != nil {
		title := strings.TrimSpace(*opts.Title)
		if title == "" {
			return nil, apperr.InvalidArgumentf("task: title cannot be empty")
		}
		cs.Add("title", strVal(t.Title), strVal(title))
		updates["title"] = title
	}
	if opts.Description != nil {
		cs.Add("description", strVal(t.Description), opts.Description)
		updates["description"] = *opts.Description
	}
	if opts.Status != nil {
		if *opts.Status == "" {
			return nil, apperr.InvalidArgumentf("task: status cannot be empty")
		}
		cs.Add("status", strVal(t.Status), opts.Status)
		updates["status"] = *opts.Status
	}
	if opts.Priority != nil {
		if !ValidPriority(*opts.Priority) {
			return nil, apperr.InvalidArgumentf("task: unknown priority %q", *opts.Priority)
		}
		cs.Add("priority", strVal(t.Priority), opts.Priority)
		updates["priority"] = *opts.Priority
	}
	if opts.StartDate != nil {
		cs.Add("startDate", dateVal(t.StartDate), dateVal(opts.StartDate))
		updates["start_date"] = utc(opts.StartDate)
	}
	if opts.DueDate != nil {
		cs.Add("dueDate", dateVal(t.DueDate), dateVal(opts.DueDate))
		updates["due_date"] = utc(opts.DueDate)
	}
	if opts.Progress != nil {
		if *opts.Progress < 0 || *opts.Progress > 100 {
			return nil, apperr.InvalidArgumentf("task: progress %d out of range 0-100", *opts.Progress)
		}
		cs.Add("progress", intVal(t.Progress), intVal(*opts.Progress))
		updates["progress"] = *opts.Progress
	}
	if opts.AssigneeID != nil {
		next := assignee(opts.AssigneeID)
		cs.Add("assigneeId", uintVal(t.AssigneeID), uintVal(next))
		if next == nil {
			updates["assignee_id"] = nil
		} else {
			updates["assignee_id"] = *next
		}
	}
	if opts.ParentTaskID != nil {
		if err := s.checkParent(t, *opts.ParentTaskID); err != nil {
			return nil, err
		}
		cs.Add("parentTaskId", uintVal(t.ParentTaskID), uintVal(opts.ParentTaskID))
		updates["parent_task_id"] = *opts.ParentTaskID
	}

	if len(cs) == 0 {
		return s.Get(id)
	}
	if err := s.db.Model(t).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("task: update %d: %w", id, err)
	}
	s.recordChanges(id, actorID, audit.ActionUpdate, cs)

	view, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.bus.PublishTaskUpdate(t.WorkspaceID, broadcast.TaskUpdated, view)
	if _, changed := cs["assigneeId"]; changed && view.AssigneeID != nil && *view.AssigneeID != actorID {
		s.notifyAssigned(&view.Task)
	}
	if t.AssigneeID != nil && *t.AssigneeID != actorID && sameUint(t.AssigneeID, view.AssigneeID) {
		s.notify(notify.Input{
			UserID:      *t.AssigneeID,
			Type:        models.NotifyTaskUpdated,
			Title:       "Task updated: " + view.Title,
			Content:     "Changed: " + strings.Join(cs.Fields(), ", "),
			ReferenceID: &view.ID,
		})
	}
	return view, nil
}

// checkParent rejects a parent that is the task itself, lives in another
// workspace or descends from the task.
func (s *Service) checkParent(t *models.Task, parentID uint) error {
	if parentID == t.ID {
		return apperr.InvalidArgumentf("task: task %d cannot be its own parent", t.ID)
	}
	parent, err := s.loadTask(parentID)
	if err != nil {
		return err
	}
	if parent.WorkspaceID != t.WorkspaceID {
		return apperr.InvalidArgumentf("task: parent %d is in another workspace", parentID)
	}
	seen := map[uint]bool{}
	for cur := parent; cur.ParentTaskID != nil; {
		if *cur.ParentTaskID == t.ID {
			return apperr.CycleDetectedf("task: %d is an ancestor of %d", t.ID, parentID)
		}
		if seen[cur.ID] {
			break
		}
		seen[cur.ID] = true
		next, err := s.loadTask(*cur.ParentTaskID)
		if err != nil {
			break
		}
		cur = next
	}
	return nil
}

// UpdateStatus sets the status and records a STATUS_CHANGE entry when it
// differs from the current one.
func (s *Service) UpdateStatus(id, actorID uint, status string) (*View, error) {
	if status == "" {
		return nil, apperr.InvalidArgumentf("task: status is required")
	}
	t, err := s.loadTask(id)
	if err != nil {
		return nil, err
	}
	if t.Status == status {
		return s.Get(id)
	}
	if err := s.db.Model(t).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("task: update status of %d: %w", id, err)
	}
	s.record(audit.Entry{
		TaskID:  id,
		ActorID: actorID,
		Action:  audit.ActionStatusChange,
		Field:   "status",
		Old:     strVal(t.Status),
		New:     strVal(status),
	})
	view, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.bus.PublishTaskUpdate(t.WorkspaceID, broadcast.TaskUpdated, view)
	return view, nil
}

// MoveOpts names the destination. A nil ColumnID keeps the current column and
// a zero one takes the task off its board. A nil Position keeps the task's
// current position value.
type MoveOpts struct {
	ColumnID *uint
	Position *int
}

// Move reassigns the task's column through the position index and records
// MOVE entries for the column and position.
func (s *Service) Move(id, actorID uint, opts MoveOpts) (*View, error) {
	t, err := s.loadTask(id)
	if err != nil {
		return nil, err
	}
	var fromID, toID uint
	if t.BoardColumnID != nil {
		fromID = *t.BoardColumnID
	}
	toID = fromID
	if opts.ColumnID != nil {
		toID = *opts.ColumnID
	}
	if toID != 0 && toID != fromID {
		_, board, err := s.loadColumn(toID)
		if err != nil {
			return nil, err
		}
		if board.WorkspaceID != t.WorkspaceID {
			return nil, apperr.InvalidArgumentf("task: column %d is in another workspace", toID)
		}
	}

	res, err := s.pos.Move(id, position.Tasks(fromID), position.Tasks(toID), opts.Position)
	if err != nil {
		return nil, err
	}

	cs := audit.ChangeSet{}
	cs.Add("boardColumnId", columnVal(fromID), columnVal(toID))
	cs.Add("position", intVal(res.OldPosition), intVal(res.Position))
	s.recordChanges(id, actorID, audit.ActionMove, cs)

	view, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.bus.PublishTaskUpdate(t.WorkspaceID, broadcast.TaskMoved, view)
	return view, nil
}

func columnVal(id uint) *string {
	if id == 0 {
		return nil
	}
	return uintVal(&id)
}

// ReorderTasks applies a best-effort position batch to one column and
// records a MOVE entry for every applied item whose position changed.
func (s *Service) ReorderTasks(columnID, actorID uint, items []position.Item) ([]position.ItemResult, error) {
	_, board, err := s.loadColumn(columnID)
	if err != nil {
		return nil, err
	}
	results, err := s.pos.Reorder(position.Tasks(columnID), items)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		if r.Err != nil {
			s.log.WithError(r.Err).WithField("task_id", r.ID).Warn("task: reorder item failed")
			continue
		}
		if !r.Applied || r.Previous == r.Position {
			continue
		}
		s.record(audit.Entry{
			TaskID:  r.ID,
			ActorID: actorID,
			Action:  audit.ActionMove,
			Field:   "position",
			Old:     intVal(r.Previous),
			New:     intVal(r.Position),
		})
	}
	s.bus.PublishTaskUpdate(board.WorkspaceID, broadcast.TaskMoved, map[string]interface{}{
		"columnId": columnID,
		"items":    results,
	})
	return results, nil
}

// Delete soft-deletes the task. Its audit history, subtasks and edges are
// kept.
func (s *Service) Delete(id, actorID uint) error {
	t, err := s.loadTask(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(t).Error; err != nil {
		return fmt.Errorf("task: delete %d: %w", id, err)
	}
	s.record(audit.Entry{TaskID: id, ActorID: actorID, Action: audit.ActionDelete, Old: strVal(t.Title)})
	s.bus.PublishTaskUpdate(t.WorkspaceID, broadcast.TaskDeleted, map[string]uint{"id": id})
	return nil
}

// assignee normalizes an assignee id; 0 stands for nobody.
func assignee(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}

func (s *Service) notifyAssigned(t *models.Task) {
	s.notify(notify.Input{
		UserID:      *t.AssigneeID,
		Type:        models.NotifyTaskAssigned,
		Title:       "Task assigned: " + t.Title,
		ReferenceID: &t.ID,
	})
}
