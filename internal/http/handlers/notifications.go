package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trackdechets/bsd-events/internal/http/response"
	"github.com/trackdechets/bsd-events/internal/platform/logger"
	"github.com/trackdechets/bsd-events/internal/realtime/bus"
)

type NotificationHandler struct {
	log *logger.Logger
	bus bus.Bus
}

func NewNotificationHandler(log *logger.Logger, b bus.Bus) *NotificationHandler {
	return &NotificationHandler{log: log.With("handler", "NotificationHandler"), bus: b}
}

// GET /notifications?streamId= streams replication notifications as server-sent events.
func (h *NotificationHandler) Stream(c *gin.Context) {
	filter := strings.TrimSpace(c.Query("streamId"))
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	ch := make(chan bus.Notification, 16)
	err := h.bus.StartForwarder(ctx, func(n bus.Notification) {
		if filter != "" && n.StreamID != filter {
			return
		}
		select {
		case ch <- n:
		default:
			h.log.Warn("dropping notification for slow client", "stream_id", n.StreamID)
		}
	})
	if err != nil {
		h.log.Error("subscribe to notifications failed", "error", err)
		response.RespondError(c, http.StatusServiceUnavailable, "notifications_unavailable", err)
		return
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case n := <-ch:
			c.SSEvent("stream", n)
			return true
		}
	})
}
