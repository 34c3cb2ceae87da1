package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/taskflow/internal/dependency"
)

type titleRequest struct {
	Title string `json:"title"`
}

func (h *handlers) addSubtask(c *gin.Context) {
	taskID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req titleRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	sub, err := h.tasks.AddSubtask(taskID, req.Title)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *handlers) reorderSubtasks(c *gin.Context) {
	taskID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req reorderRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	results, err := h.tasks.ReorderSubtasks(taskID, req.Items)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *handlers) renameSubtask(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req titleRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	sub, err := h.tasks.RenameSubtask(id, req.Title)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *handlers) toggleSubtask(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	sub, err := h.tasks.ToggleSubtask(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *handlers) deleteSubtask(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.tasks.DeleteSubtask(id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) addComment(c *gin.Context) {
	taskID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	cm, err := h.tasks.AddComment(taskID, userID(c), req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cm)
}

func (h *handlers) listComments(c *gin.Context) {
	taskID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	comments, err := h.tasks.ListComments(taskID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *handlers) deleteComment(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.tasks.DeleteComment(id, userID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// predecessors lists the tasks that block :id.
func (h *handlers) predecessors(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	tasks, err := h.tasks.Graph().PredecessorsOf(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// dependents lists the tasks :id blocks.
func (h *handlers) dependents(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	tasks, err := h.tasks.Graph().SuccessorsOf(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *handlers) addDependency(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req struct {
		PredecessorTaskID uint   `json:"predecessorTaskId"`
		SuccessorTaskID   uint   `json:"successorTaskId"`
		DependencyType    string `json:"dependencyType"`
	}
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	edge, err := h.tasks.AddDependency(id, userID(c), dependency.AddOpts{
		PredecessorID: req.PredecessorTaskID,
		SuccessorID:   req.SuccessorTaskID,
		Type:          req.DependencyType,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, edge)
}

func (h *handlers) removeDependency(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	predID, err := idParam(c, "predecessorId")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.tasks.RemoveDependency(predID, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listNotifications(c *gin.Context) {
	list, err := h.tasks.Notifications().List(userID(c), c.Query("unread") == "true")
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handlers) unreadCount(c *gin.Context) {
	n, err := h.tasks.Notifications().UnreadCount(userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *handlers) markRead(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.tasks.Notifications().MarkRead(userID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) markAllRead(c *gin.Context) {
	n, err := h.tasks.Notifications().MarkAllRead(userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}
