package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

// Backlog counts the events still waiting for replication.
type Backlog func(ctx context.Context) (int64, error)

type HealthHandler struct {
	checks  map[string]Pinger
	backlog Backlog
}

func NewHealthHandler(checks map[string]Pinger, backlog Backlog) *HealthHandler {
	return &HealthHandler{checks: checks, backlog: backlog}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Ready pings every dependency and reports the ones that failed.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": failed})
		return
	}
	body := gin.H{"status": "ready"}
	if h.backlog != nil {
		if n, err := h.backlog(ctx); err == nil {
			body["backlog"] = n
		}
	}
	c.JSON(http.StatusOK, body)
}
