package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/taskflow/internal/broadcast"
)

func (h *handlers) streamWorkspace(c *gin.Context) {
	wsID, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	h.stream(c, broadcast.TaskTopic(wsID))
}

func (h *handlers) streamNotifications(c *gin.Context) {
	h.stream(c, broadcast.NotificationTopic(userID(c)))
}

// stream relays every event on topic to the client until it disconnects,
// with a heartbeat so idle proxies keep the connection open.
func (h *handlers) stream(c *gin.Context, topic string) {
	sub := h.hub.Subscribe(topic)
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	writeSSE(c.Writer, "connected", map[string]string{"topic": topic})
	c.Writer.Flush()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			writeSSE(c.Writer, "heartbeat", map[string]string{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			c.Writer.Flush()
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			writeSSE(c.Writer, ev.Type, ev)
			c.Writer.Flush()
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData)
}
