package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/taskflow/internal/position"
	"github.com/zulandar/taskflow/internal/task"
)

type nameRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *handlers) createBoard(c *gin.Context) {
	wsID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req nameRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	board, err := h.tasks.CreateBoard(wsID, userID(c), req.Name, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, board)
}

func (h *handlers) listBoards(c *gin.Context) {
	wsID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	boards, err := h.tasks.ListBoards(wsID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, boards)
}

func (h *handlers) getBoard(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	board, err := h.tasks.GetBoard(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *handlers) updateBoard(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	board, err := h.tasks.UpdateBoard(id, req.Name, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *handlers) deleteBoard(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.tasks.DeleteBoard(id, userID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type columnRequest struct {
	Name     *string `json:"name"`
	Color    *string `json:"color"`
	WIPLimit *int    `json:"wipLimit"`
}

func (h *handlers) addColumn(c *gin.Context) {
	boardID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req columnRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	in := task.ColumnInput{WIPLimit: req.WIPLimit}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Color != nil {
		in.Color = *req.Color
	}
	col, err := h.tasks.AddColumn(boardID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, col)
}

func (h *handlers) updateColumn(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req columnRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	col, err := h.tasks.UpdateColumn(id, req.Name, req.Color, req.WIPLimit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, col)
}

func (h *handlers) deleteColumn(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.tasks.DeleteColumn(id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// reorderRequest is the body of every reorder endpoint.
type reorderRequest struct {
	Items []position.Item `json:"items"`
}

func (h *handlers) reorderColumns(c *gin.Context) {
	boardID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req reorderRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	results, err := h.tasks.ReorderColumns(boardID, req.Items)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *handlers) reorderTasks(c *gin.Context) {
	columnID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req reorderRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	results, err := h.tasks.ReorderTasks(columnID, userID(c), req.Items)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
