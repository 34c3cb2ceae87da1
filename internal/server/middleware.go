package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zulandar/taskflow/internal/apperr"
)

const (
	userKey      = "taskflow.user"
	requestIDKey = "taskflow.request_id"
)

// requestID tags each request with X-Request-ID, generating one when the
// caller did not send it.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requireUser reads the caller's id from X-User-ID. Authentication happens
// upstream; this only rejects a missing or malformed header.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		id, err := strconv.ParseUint(raw, 10, 64)
		if raw == "" || err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid X-User-ID"})
			return
		}
		c.Set(userKey, uint(id))
		c.Next()
	}
}

func userID(c *gin.Context) uint {
	return c.GetUint(userKey)
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindCycleDetected:
		return http.StatusUnprocessableEntity
	case apperr.KindInvalidArgument:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).
			WithField("path", c.FullPath()).
			WithField("request_id", c.GetString(requestIDKey)).
			Error("server: request failed")
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "kind": apperr.KindOf(err).String()})
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, apperr.InvalidArgumentf("invalid %s %q", name, c.Param(name))
	}
	return uint(v), nil
}

// bind decodes the JSON body, reporting decode failures as bad requests.
func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.InvalidArgumentf("invalid request body: %v", err)
	}
	return nil
}
