package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/taskflow/internal/apperr"
	"github.com/zulandar/taskflow/internal/task"
)

type createTaskRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	StartDate     *time.Time `json:"startDate"`
	DueDate       *time.Time `json:"dueDate"`
	AssigneeID    *uint      `json:"assigneeId"`
	ParentTaskID  *uint      `json:"parentTaskId"`
	BoardColumnID *uint      `json:"boardColumnId"`
}

func (h *handlers) createTask(c *gin.Context) {
	wsID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req createTaskRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	view, err := h.tasks.Create(wsID, userID(c), task.CreateOpts(req))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

type listQuery struct {
	Status     string `form:"status"`
	Priority   string `form:"priority"`
	AssigneeID *uint  `form:"assigneeId"`
	Keyword    string `form:"keyword"`
	Page       int    `form:"page"`
	Size       int    `form:"size"`
	SortBy     string `form:"sortBy"`
	SortDir    string `form:"sortDir"`
}

func (h *handlers) listTasks(c *gin.Context) {
	wsID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, apperr.InvalidArgumentf("invalid query: %v", err))
		return
	}
	res, err := h.tasks.List(wsID, task.ListFilters(q))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) readyTasks(c *gin.Context) {
	wsID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	tasks, err := h.tasks.Graph().ReadyTasks(wsID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// dateQuery parses an optional date query parameter given as YYYY-MM-DD or
// RFC 3339.
func dateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperr.InvalidArgumentf("invalid %s %q", name, raw)
	}
	return &t, nil
}

func (h *handlers) calendar(c *gin.Context) {
	wsID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	start, err := dateQuery(c, "start")
	if err != nil {
		h.fail(c, err)
		return
	}
	end, err := dateQuery(c, "end")
	if err != nil {
		h.fail(c, err)
		return
	}
	tasks, err := h.tasks.Hierarchy().TasksInRange(wsID, start, end)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *handlers) gantt(c *gin.Context) {
	wsID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	tasks, err := h.tasks.Hierarchy().GanttOrder(wsID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *handlers) getTask(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	view, err := h.tasks.Get(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type updateTaskRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Status       *string    `json:"status"`
	Priority     *string    `json:"priority"`
	StartDate    *time.Time `json:"startDate"`
	DueDate      *time.Time `json:"dueDate"`
	Progress     *int       `json:"progress"`
	AssigneeID   *uint      `json:"assigneeId"`
	ParentTaskID *uint      `json:"parentTaskId"`
}

func (h *handlers) updateTask(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req updateTaskRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	view, err := h.tasks.Update(id, userID(c), task.UpdateOpts(req))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) updateStatus(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	view, err := h.tasks.UpdateStatus(id, userID(c), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) moveTask(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req struct {
		ColumnID *uint `json:"columnId"`
		Position *int  `json:"position"`
	}
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	view, err := h.tasks.Move(id, userID(c), task.MoveOpts{ColumnID: req.ColumnID, Position: req.Position})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) deleteTask(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.tasks.Delete(id, userID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) children(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	tasks, err := h.tasks.Hierarchy().ChildrenOf(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *handlers) childSummary(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	summary, err := h.tasks.Hierarchy().ChildStatusSummary(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *handlers) rollup(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	r, err := h.tasks.Hierarchy().Rollup(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *handlers) history(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	rows, err := h.tasks.Audit().History(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
