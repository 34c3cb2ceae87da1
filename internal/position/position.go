// Package position maintains the ordering of sibling records: columns within
// a board, tasks within a column and subtasks within a task.
//
// Positions are zero-based integers. Appends keep them dense; reorders and
// moves write caller-supplied values without renumbering, so readers always
// sort by ReadOrder (position, then id) to resolve duplicates and gaps.
package position

import (
	"database/sql"
	"fmt"

	"github.com/zulandar/taskflow/internal/apperr"
	"github.com/zulandar/taskflow/internal/lock"
	"github.com/zulandar/taskflow/internal/models"
	"gorm.io/gorm"
)

// ReadOrder is the ordering every container read uses.
const ReadOrder = "position ASC, id ASC"

// Kind names the parent/child pair of a container.
type Kind string

const (
	BoardColumns Kind = "board_columns"
	ColumnTasks  Kind = "column_tasks"
	TaskSubtasks Kind = "task_subtasks"
)

// Container identifies one ordered sibling set. A ParentID of 0 on a
// ColumnTasks container stands for tasks that sit in no column.
type Container struct {
	Kind     Kind
	ParentID uint
}

func Columns(boardID uint) Container { return Container{Kind: BoardColumns, ParentID: boardID} }
func Tasks(columnID uint) Container { return Container{Kind: ColumnTasks, ParentID: columnID} }
func Subtasks(taskID uint) Container { return Container{Kind: TaskSubtasks, ParentID: taskID} }

func (c Container) String() string {
	return fmt.Sprintf("%s:%d", c.Kind, c.ParentID)
}

type layout struct {
	child       func() interface{}
	parent      func() interface{}
	parentCol   string
	childName   string
	parentName  string
	allowOrphan bool
}

var layouts = map[Kind]layout{
	BoardColumns: {
		child:      func() interface{} { return &models.BoardColumn{} },
		parent:     func() interface{} { return &models.Board{} },
		parentCol:  "board_id",
		childName:  "column",
		parentName: "board",
	},
	ColumnTasks: {
		child:       func() interface{} { return &models.Task{} },
		parent:      func() interface{} { return &models.BoardColumn{} },
		parentCol:   "board_column_id",
		childName:   "task",
		parentName:  "column",
		allowOrphan: true,
	},
	TaskSubtasks: {
		child:      func() interface{} { return &models.Subtask{} },
		parent:     func() interface{} { return &models.Task{} },
		parentCol:  "task_id",
		childName:  "subtask",
		parentName: "task",
	},
}

func (c Container) layout() (layout, error) {
	s, ok := layouts[c.Kind]
	if !ok {
		return layout{}, apperr.InvalidArgumentf("position: unknown container kind %q", c.Kind)
	}
	return s, nil
}

// Item is one (id, position) pair of a container.
type Item struct {
	ID       uint `json:"id"`
	Position int  `json:"position"`
}

// ItemResult reports how one reorder item was applied. Applied is false when
// the id does not belong to the container or the write failed (Err set).
// Previous is the position read under the container lock before the write.
type ItemResult struct {
	ID       uint  `json:"id"`
	Position int   `json:"position"`
	Previous int   `json:"-"`
	Applied  bool  `json:"applied"`
	Err      error `json:"-"`
}

// MoveResult describes a completed move.
type MoveResult struct {
	ItemID      uint
	From        Container
	To          Container
	OldPosition int
	Position    int
}

// Index assigns and maintains positions. Mutations on one container are
// serialized in-process and run inside a store transaction.
type Index struct {
	db    *gorm.DB
	locks *lock.Keyed
}

func New(db *gorm.DB) *Index {
	return &Index{db: db, locks: lock.NewKeyed()}
}

// Append returns the position a new sibling would get: one past the current
// maximum, or 0 for an empty container.
func (x *Index) Append(c Container) (int, error) {
	var pos int
	err := x.AppendWith(c, func(tx *gorm.DB, p int) error {
		pos = p
		return nil
	})
	if err != nil {
		return 0, err
	}
	return pos, nil
}

// AppendWith computes the next position and calls insert with it inside the
// same lock and transaction, so concurrent appends never share a position.
func (x *Index) AppendWith(c Container, insert func(tx *gorm.DB, position int) error) error {
	return x.AppendIn(x.db, c, insert)
}

// AppendIn is AppendWith run inside db, which may be an open transaction
// that also created the container's parent.
func (x *Index) AppendIn(db *gorm.DB, c Container, insert func(tx *gorm.DB, position int) error) error {
	s, err := c.layout()
	if err != nil {
		return err
	}

	unlock := x.locks.Lock(c.String())
	defer unlock()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := requireParent(tx, s, c); err != nil {
			return err
		}
		pos, err := nextPosition(tx, s, c)
		if err != nil {
			return err
		}
		return insert(tx, pos)
	})
}

// Reorder writes each item's position unconditionally. Items whose id is not
// in the container are skipped. Each write is independent: a failure on one
// item is reported on its result and does not undo the others.
func (x *Index) Reorder(c Container, items []Item) ([]ItemResult, error) {
	s, err := c.layout()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.InvalidArgumentf("position: reorder %s: no items", c)
	}
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		if it.ID == 0 || it.Position < 0 {
			return nil, apperr.InvalidArgumentf("position: reorder %s: malformed item {id:%d position:%d}", c, it.ID, it.Position)
		}
		ids = append(ids, it.ID)
	}

	unlock := x.locks.Lock(c.String())
	defer unlock()

	if err := requireParent(x.db, s, c); err != nil {
		return nil, err
	}

	var members []Item
	if err := s.scope(x.db.Model(s.child()), c).
		Select("id, position").
		Where("id IN ?", ids).
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("position: reorder %s: load members: %w", c, err)
	}
	current := make(map[uint]int, len(members))
	for _, m := range members {
		current[m.ID] = m.Position
	}

	results := make([]ItemResult, len(items))
	for i, it := range items {
		results[i] = ItemResult{ID: it.ID, Position: it.Position}
		prev, ok := current[it.ID]
		if !ok {
			continue
		}
		results[i].Previous = prev
		err := s.scope(x.db.Model(s.child()), c).
			Where("id = ?", it.ID).
			Update("position", it.Position).Error
		if err != nil {
			results[i].Err = fmt.Errorf("position: reorder %s %d: %w", s.childName, it.ID, err)
			continue
		}
		results[i].Applied = true
		current[it.ID] = it.Position
	}
	return results, nil
}

type member struct {
	ID       uint
	ParentID *uint
	Position int
}

// Move reassigns itemID from one container to another of the same kind. A
// nil newPosition keeps the item's current numeric position, which may tie
// with a sibling in the destination; readers break the tie by id.
func (x *Index) Move(itemID uint, from, to Container, newPosition *int) (*MoveResult, error) {
	if from.Kind != to.Kind {
		return nil, apperr.InvalidArgumentf("position: cannot move between %s and %s", from.Kind, to.Kind)
	}
	s, err := to.layout()
	if err != nil {
		return nil, err
	}
	if newPosition != nil && *newPosition < 0 {
		return nil, apperr.InvalidArgumentf("position: negative position %d", *newPosition)
	}
	if to.ParentID == 0 && !s.allowOrphan {
		return nil, apperr.InvalidArgumentf("position: %s requires a %s", s.childName, s.parentName)
	}

	unlock := x.locks.Lock(from.String(), to.String())
	defer unlock()

	var res *MoveResult
	err = x.db.Transaction(func(tx *gorm.DB) error {
		var rows []member
		if err := tx.Model(s.child()).
			Select("id, "+s.parentCol+" AS parent_id, position").
			Where("id = ?", itemID).
			Limit(1).
			Find(&rows).Error; err != nil {
			return fmt.Errorf("position: load %s %d: %w", s.childName, itemID, err)
		}
		if len(rows) == 0 {
			return apperr.NotFoundf("position: %s not found: %d", s.childName, itemID)
		}
		cur := rows[0]
		var curParent uint
		if cur.ParentID != nil {
			curParent = *cur.ParentID
		}
		if curParent != from.ParentID {
			return apperr.InvalidArgumentf("position: %s %d is not in %s %d", s.childName, itemID, s.parentName, from.ParentID)
		}
		if err := requireParent(tx, s, to); err != nil {
			return err
		}

		pos := cur.Position
		if newPosition != nil {
			pos = *newPosition
		}
		var parent interface{} = to.ParentID
		if to.ParentID == 0 {
			parent = nil
		}
		if err := tx.Model(s.child()).Where("id = ?", itemID).
			Updates(map[string]interface{}{s.parentCol: parent, "position": pos}).Error; err != nil {
			return fmt.Errorf("position: move %s %d: %w", s.childName, itemID, err)
		}
		res = &MoveResult{
			ItemID:      itemID,
			From:        from,
			To:          to,
			OldPosition: cur.Position,
			Position:    pos,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Ordered returns the container's members sorted by ReadOrder.
func (x *Index) Ordered(c Container) ([]Item, error) {
	s, err := c.layout()
	if err != nil {
		return nil, err
	}
	if err := requireParent(x.db, s, c); err != nil {
		return nil, err
	}
	var items []Item
	if err := s.scope(x.db.Model(s.child()), c).
		Select("id, position").
		Order(ReadOrder).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("position: read %s: %w", c, err)
	}
	return items, nil
}

// scope restricts q to the container's members. The orphan container of
// tasks matches a NULL column.
func (s layout) scope(q *gorm.DB, c Container) *gorm.DB {
	if c.ParentID == 0 && s.allowOrphan {
		return q.Where(s.parentCol + " IS NULL")
	}
	return q.Where(s.parentCol+" = ?", c.ParentID)
}

func requireParent(tx *gorm.DB, s layout, c Container) error {
	if c.ParentID == 0 && s.allowOrphan {
		return nil
	}
	var count int64
	if err := tx.Model(s.parent()).Where("id = ?", c.ParentID).Count(&count).Error; err != nil {
		return fmt.Errorf("position: check %s %d: %w", s.parentName, c.ParentID, err)
	}
	if count == 0 {
		return apperr.NotFoundf("position: %s not found: %d", s.parentName, c.ParentID)
	}
	return nil
}

func nextPosition(tx *gorm.DB, s layout, c Container) (int, error) {
	var agg struct {
		Max sql.NullInt64
	}
	if err := s.scope(tx.Model(s.child()), c).
		Select("MAX(position) AS max").
		Scan(&agg).Error; err != nil {
		return 0, fmt.Errorf("position: max position in %s: %w", c, err)
	}
	if !agg.Max.Valid {
		return 0, nil
	}
	return int(agg.Max.Int64) + 1, nil
}
