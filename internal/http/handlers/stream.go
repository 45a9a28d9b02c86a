package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trackdechets/bsd-events/internal/domain/events"
	"github.com/trackdechets/bsd-events/internal/http/response"
	"github.com/trackdechets/bsd-events/internal/platform/logger"
	"github.com/trackdechets/bsd-events/internal/services/streams"
)

type StreamHandler struct {
	log    *logger.Logger
	reader streams.Reader
}

func NewStreamHandler(log *logger.Logger, reader streams.Reader) *StreamHandler {
	return &StreamHandler{log: log.With("handler", "StreamHandler"), reader: reader}
}

// GET /stream/:streamId
func (h *StreamHandler) GetStream(c *gin.Context) {
	streamID := strings.TrimSpace(c.Param("streamId"))
	if streamID == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_stream_id", errors.New("stream id is required"))
		return
	}
	evts, err := h.reader.Read(c.Request.Context(), streamID, time.Time{})
	if errors.Is(err, streams.ErrStreamNotFound) {
		response.RespondOK(c, []events.Event{})
		return
	}
	if err != nil {
		h.log.Error("read stream failed", "stream_id", streamID, "error", err)
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, "stream_read_failed", errors.New("failed to read stream"))
		return
	}
	response.RespondOK(c, evts)
}
