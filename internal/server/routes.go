package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/zulandar/taskflow/internal/broadcast"
	"github.com/zulandar/taskflow/internal/task"
)

type handlers struct {
	tasks     *task.Service
	hub       *broadcast.Hub
	log       logrus.FieldLogger
	heartbeat time.Duration
}

// registerRoutes sets up every /api route on the gin router.
func registerRoutes(router *gin.Engine, h *handlers) {
	api := router.Group("/api", requireUser())

	// Workspaces and members.
	api.POST("/workspaces", h.createWorkspace)
	api.GET("/workspaces", h.listWorkspaces)
	api.GET("/workspaces/:id", h.getWorkspace)
	api.PUT("/workspaces/:id", h.updateWorkspace)
	api.DELETE("/workspaces/:id", h.deleteWorkspace)
	api.POST("/workspaces/:id/members", h.inviteMember)
	api.GET("/workspaces/:id/members", h.listMembers)
	api.PUT("/workspaces/:id/members/:userId/role", h.updateMemberRole)
	api.DELETE("/workspaces/:id/members/:userId", h.removeMember)

	// Boards.
	api.POST("/workspaces/:id/boards", h.createBoard)
	api.GET("/workspaces/:id/boards", h.listBoards)
	api.GET("/boards/:id", h.getBoard)
	api.PUT("/boards/:id", h.updateBoard)
	api.DELETE("/boards/:id", h.deleteBoard)

	// Columns.
	api.POST("/boards/:id/columns", h.addColumn)
	api.PUT("/boards/:id/columns/reorder", h.reorderColumns)
	api.PUT("/columns/:id", h.updateColumn)
	api.DELETE("/columns/:id", h.deleteColumn)
	api.PUT("/columns/:id/tasks/reorder", h.reorderTasks)

	// Tasks.
	api.POST("/workspaces/:id/tasks", h.createTask)
	api.GET("/workspaces/:id/tasks", h.listTasks)
	api.GET("/workspaces/:id/tasks/ready", h.readyTasks)
	api.GET("/workspaces/:id/calendar", h.calendar)
	api.GET("/workspaces/:id/gantt", h.gantt)
	api.GET("/tasks/:id", h.getTask)
	api.PUT("/tasks/:id", h.updateTask)
	api.PATCH("/tasks/:id/status", h.updateStatus)
	api.PUT("/tasks/:id/move", h.moveTask)
	api.DELETE("/tasks/:id", h.deleteTask)
	api.GET("/tasks/:id/children", h.children)
	api.GET("/tasks/:id/children/summary", h.childSummary)
	api.GET("/tasks/:id/rollup", h.rollup)
	api.GET("/tasks/:id/history", h.history)

	// Subtasks.
	api.POST("/tasks/:id/subtasks", h.addSubtask)
	api.PUT("/tasks/:id/subtasks/reorder", h.reorderSubtasks)
	api.PUT("/subtasks/:id", h.renameSubtask)
	api.PATCH("/subtasks/:id/toggle", h.toggleSubtask)
	api.DELETE("/subtasks/:id", h.deleteSubtask)

	// Comments.
	api.POST("/tasks/:id/comments", h.addComment)
	api.GET("/tasks/:id/comments", h.listComments)
	api.DELETE("/comments/:id", h.deleteComment)

	// Labels.
	api.POST("/workspaces/:id/labels", h.createLabel)
	api.GET("/workspaces/:id/labels", h.listLabels)
	api.PUT("/labels/:id", h.updateLabel)
	api.DELETE("/labels/:id", h.deleteLabel)
	api.GET("/tasks/:id/labels", h.taskLabels)
	api.POST("/tasks/:id/labels/:labelId", h.addTaskLabel)
	api.DELETE("/tasks/:id/labels/:labelId", h.removeTaskLabel)

	// Dependencies.
	api.GET("/tasks/:id/dependencies", h.predecessors)
	api.GET("/tasks/:id/dependents", h.dependents)
	api.POST("/tasks/:id/dependencies", h.addDependency)
	api.DELETE("/tasks/:id/dependencies/:predecessorId", h.removeDependency)

	// Notifications.
	api.GET("/users/me/notifications", h.listNotifications)
	api.GET("/users/me/notifications/unread-count", h.unreadCount)
	api.PATCH("/users/me/notifications/read-all", h.markAllRead)
	api.PATCH("/notifications/:id/read", h.markRead)

	// Streams.
	api.GET("/workspaces/:id/stream", h.streamWorkspace)
	api.GET("/users/me/notifications/stream", h.streamNotifications)
}
