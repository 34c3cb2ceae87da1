package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) createWorkspace(c *gin.Context) {
	var req nameRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	ws, err := h.tasks.CreateWorkspace(req.Name, userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	var desc *string
	if req.Description != "" {
		desc = &req.Description
	}
	view, err := h.tasks.UpdateWorkspace(ws.ID, nil, desc)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *handlers) listWorkspaces(c *gin.Context) {
	list, err := h.tasks.ListWorkspaces(userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handlers) getWorkspace(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	ws, err := h.tasks.GetWorkspace(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (h *handlers) updateWorkspace(c *gin.Context) {
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
	ws, err := h.tasks.UpdateWorkspace(id, req.Name, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (h *handlers) deleteWorkspace(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.tasks.DeleteWorkspace(id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) inviteMember(c *gin.Context) {
	wsID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req struct {
		UserID uint   `json:"userId"`
		Role   string `json:"role"`
	}
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	m, err := h.tasks.InviteMember(wsID, userID(c), req.UserID, req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *handlers) listMembers(c *gin.Context) {
	wsID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	members, err := h.tasks.Members(wsID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *handlers) updateMemberRole(c *gin.Context) {
	wsID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	uid, err := idParam(c, "userId")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	m, err := h.tasks.UpdateMemberRole(wsID, uid, req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *handlers) removeMember(c *gin.Context) {
	wsID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	uid, err := idParam(c, "userId")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.tasks.RemoveMember(wsID, uid); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) createLabel(c *gin.Context) {
	wsID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	l, err := h.tasks.CreateLabel(wsID, userID(c), req.Name, req.Color)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *handlers) listLabels(c *gin.Context) {
	wsID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	labels, err := h.tasks.ListLabels(wsID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, labels)
}

func (h *handlers) updateLabel(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
	}
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	l, err := h.tasks.UpdateLabel(id, req.Name, req.Color)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *handlers) deleteLabel(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.tasks.DeleteLabel(id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) taskLabels(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	labels, err := h.tasks.TaskLabels(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, labels)
}

func (h *handlers) addTaskLabel(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	labelID, err := idParam(c, "labelId")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.tasks.AddLabelToTask(id, labelID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) removeTaskLabel(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	labelID, err := idParam(c, "labelId")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.tasks.RemoveLabelFromTask(id, labelID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
