// Package server exposes the task service over HTTP with gin and streams
// broadcast events to subscribers as server-sent events.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/zulandar/taskflow/internal/broadcast"
	"github.com/zulandar/taskflow/internal/logging"
	"github.com/zulandar/taskflow/internal/task"
)

// StartOpts holds configuration for the HTTP server.
type StartOpts struct {
	Tasks *task.Service
	Hub   *broadcast.Hub
	Port  int
	Out   io.Writer
	Log   logrus.FieldLogger

	// Heartbeat is the SSE keep-alive interval; zero means 15s.
	Heartbeat time.Duration
}

// NewRouter builds the gin engine with every API route registered.
func NewRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.Tasks == nil {
		return nil, fmt.Errorf("server: task service is required")
	}
	if opts.Hub == nil {
		return nil, fmt.Errorf("server: hub is required")
	}
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 15 * time.Second
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestID())

	h := &handlers{tasks: opts.Tasks, hub: opts.Hub, log: opts.Log, heartbeat: opts.Heartbeat}
	registerRoutes(router, h)
	return router, nil
}

// Start launches the HTTP server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Port <= 0 {
		opts.Port = 8080
	}
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "taskflow API listening on http://localhost:%d/api\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
