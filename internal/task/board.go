package task

import (
	"fmt"
	"strings"

	"github.com/zulandar/taskflow/internal/apperr"
	"github.com/zulandar/taskflow/internal/broadcast"
	"github.com/zulandar/taskflow/internal/db"
	"github.com/zulandar/taskflow/internal/models"
	"github.com/zulandar/taskflow/internal/position"
	"gorm.io/gorm"
)

// ColumnView is a column with its tasks in display order.
type ColumnView struct {
	models.BoardColumn
	Tasks []models.Task `json:"tasks"`
}

// BoardView is a board with its ordered columns.
type BoardView struct {
	models.Board
	Columns []ColumnView `json:"columns"`
}

// CreateBoard creates a board seeded with db.DefaultColumns, appended in
// order through the position index.
func (s *Service) CreateBoard(workspaceID, actorID uint, name, description string) (*BoardView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidArgumentf("task: board name is required")
	}
	if err := s.requireWorkspace(workspaceID); err != nil {
		return nil, err
	}

	board := &models.Board{WorkspaceID: workspaceID, Name: name, Description: description, CreatedBy: actorID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(board).Error; err != nil {
			return fmt.Errorf("task: create board: %w", err)
		}
		for _, dc := range db.DefaultColumns {
			err := s.pos.AppendIn(tx, position.Columns(board.ID), func(tx *gorm.DB, pos int) error {
				col := models.BoardColumn{BoardID: board.ID, Name: dc.Name, Color: dc.Color, Position: pos}
				if err := tx.Create(&col).Error; err != nil {
					return fmt.Errorf("task: create column %q: %w", dc.Name, err)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("board_id", board.ID).WithField("workspace_id", workspaceID).Info("task: board created")
	return s.GetBoard(board.ID)
}

// GetBoard returns the board with every column and its tasks ordered by
// position, ties by id.
func (s *Service) GetBoard(id uint) (*BoardView, error) {
	board, err := s.loadBoard(id)
	if err != nil {
		return nil, err
	}
	var cols []models.BoardColumn
	if err := s.db.Where("board_id = ?", id).Order(position.ReadOrder).Find(&cols).Error; err != nil {
		return nil, fmt.Errorf("task: columns of board %d: %w", id, err)
	}
	colIDs := make([]uint, len(cols))
	for i, c := range cols {
		colIDs[i] = c.ID
	}
	var tasks []models.Task
	if len(colIDs) > 0 {
		if err := s.db.Where("board_column_id IN ?", colIDs).Order(position.ReadOrder).Find(&tasks).Error; err != nil {
			return nil, fmt.Errorf("task: tasks of board %d: %w", id, err)
		}
	}
	byColumn := make(map[uint][]models.Task, len(cols))
	for _, t := range tasks {
		byColumn[*t.BoardColumnID] = append(byColumn[*t.BoardColumnID], t)
	}

	view := &BoardView{Board: *board, Columns: make([]ColumnView, len(cols))}
	for i, c := range cols {
		ts := byColumn[c.ID]
		if ts == nil {
			ts = []models.Task{}
		}
		view.Columns[i] = ColumnView{BoardColumn: c, Tasks: ts}
	}
	return view, nil
}

// ListBoards returns the workspace's boards, newest first, with columns but
// without tasks.
func (s *Service) ListBoards(workspaceID uint) ([]models.Board, error) {
	var boards []models.Board
	if err := s.db.Where("workspace_id = ?", workspaceID).
		Preload("Columns", func(q *gorm.DB) *gorm.DB { return q.Order(position.ReadOrder) }).
		Order("created_at DESC, id DESC").
		Find(&boards).Error; err != nil {
		return nil, fmt.Errorf("task: list boards of workspace %d: %w", workspaceID, err)
	}
	return boards, nil
}

// UpdateBoard renames a board or changes its description. Nil leaves a field
// unchanged.
func (s *Service) UpdateBoard(id uint, name, description *string) (*BoardView, error) {
	board, err := s.loadBoard(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, apperr.InvalidArgumentf("task: board name cannot be empty")
		}
		updates["name"] = n
	}
	if description != nil {
		updates["description"] = *description
	}
	if len(updates) > 0 {
		if err := s.db.Model(board).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("task: update board %d: %w", id, err)
		}
		s.bus.PublishTaskUpdate(board.WorkspaceID, broadcast.BoardUpdated, map[string]uint{"boardId": id})
	}
	return s.GetBoard(id)
}

// DeleteBoard soft-deletes a board. Its columns and tasks stay in place.
func (s *Service) DeleteBoard(id, actorID uint) error {
	board, err := s.loadBoard(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(board).Error; err != nil {
		return fmt.Errorf("task: delete board %d: %w", id, err)
	}
	s.log.WithField("board_id", id).WithField("actor_id", actorID).Info("task: board deleted")
	s.bus.PublishTaskUpdate(board.WorkspaceID, broadcast.BoardUpdated, map[string]uint{"boardId": id})
	return nil
}

// ColumnInput describes a new column.
type ColumnInput struct {
	Name     string
	Color    string
	WIPLimit *int
}

// AddColumn appends a column at the end of the board.
func (s *Service) AddColumn(boardID uint, in ColumnInput) (*models.BoardColumn, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.InvalidArgumentf("task: column name is required")
	}
	if in.WIPLimit != nil && *in.WIPLimit < 0 {
		return nil, apperr.InvalidArgumentf("task: negative WIP limit %d", *in.WIPLimit)
	}
	board, err := s.loadBoard(boardID)
	if err != nil {
		return nil, err
	}

	var col models.BoardColumn
	err = s.pos.AppendWith(position.Columns(boardID), func(tx *gorm.DB, pos int) error {
		col = models.BoardColumn{BoardID: boardID, Name: name, Color: in.Color, WIPLimit: in.WIPLimit, Position: pos}
		if err := tx.Create(&col).Error; err != nil {
			return fmt.Errorf("task: create column: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.bus.PublishTaskUpdate(board.WorkspaceID, broadcast.BoardUpdated, map[string]uint{"boardId": boardID})
	return &col, nil
}

// UpdateColumn edits name, color or WIP limit. Nil leaves a field unchanged.
func (s *Service) UpdateColumn(id uint, name, color *string, wipLimit *int) (*models.BoardColumn, error) {
	col, board, err := s.loadColumn(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, apperr.InvalidArgumentf("task: column name cannot be empty")
		}
		updates["name"] = n
	}
	if color != nil {
		updates["color"] = *color
	}
	if wipLimit != nil {
		if *wipLimit < 0 {
			return nil, apperr.InvalidArgumentf("task: negative WIP limit %d", *wipLimit)
		}
		updates["wip_limit"] = *wipLimit
	}
	if len(updates) > 0 {
		if err := s.db.Model(col).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("task: update column %d: %w", id, err)
		}
		s.bus.PublishTaskUpdate(board.WorkspaceID, broadcast.BoardUpdated, map[string]uint{"boardId": board.ID})
	}
	var out models.BoardColumn
	if err := s.db.First(&out, id).Error; err != nil {
		return nil, fmt.Errorf("task: reload column %d: %w", id, err)
	}
	return &out, nil
}

// ReorderColumns applies a best-effort position batch to the board's columns.
func (s *Service) ReorderColumns(boardID uint, items []position.Item) ([]position.ItemResult, error) {
	board, err := s.loadBoard(boardID)
	if err != nil {
		return nil, err
	}
	results, err := s.pos.Reorder(position.Columns(boardID), items)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		if r.Err != nil {
			s.log.WithError(r.Err).WithField("column_id", r.ID).Warn("task: column reorder item failed")
		}
	}
	s.bus.PublishTaskUpdate(board.WorkspaceID, broadcast.BoardUpdated, map[string]uint{"boardId": boardID})
	return results, nil
}

// DeleteColumn removes a column. Its tasks are kept and leave the board
// (their column becomes empty) in the same transaction.
func (s *Service) DeleteColumn(id uint) error {
	col, board, err := s.loadColumn(id)
	if err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Model(&models.Task{}).Where("board_column_id = ?", id).
			Update("board_column_id", nil).Error; err != nil {
			return fmt.Errorf("task: detach tasks from column %d: %w", id, err)
		}
		if err := tx.Delete(col).Error; err != nil {
			return fmt.Errorf("task: delete column %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.bus.PublishTaskUpdate(board.WorkspaceID, broadcast.BoardUpdated, map[string]uint{"boardId": board.ID})
	return nil
}
