package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trackdechets/bsd-events/internal/domain/bsd"
	"github.com/trackdechets/bsd-events/internal/domain/errs"
	"github.com/trackdechets/bsd-events/internal/domain/events"
	"github.com/trackdechets/bsd-events/internal/http/middleware"
	"github.com/trackdechets/bsd-events/internal/http/response"
	"github.com/trackdechets/bsd-events/internal/platform/apierr"
	"github.com/trackdechets/bsd-events/internal/platform/logger"
	"github.com/trackdechets/bsd-events/internal/services/edits"
	"github.com/trackdechets/bsd-events/internal/services/guard"
	"github.com/trackdechets/bsd-events/internal/services/snapshots"
)

type BsdHandler struct {
	log       *logger.Logger
	snapshots *snapshots.Service
	edits     *edits.Service
}

func NewBsdHandler(log *logger.Logger, snaps *snapshots.Service, ed *edits.Service) *BsdHandler {
	return &BsdHandler{log: log.With("handler", "BsdHandler"), snapshots: snaps, edits: ed}
}

type snapshotResponse struct {
	Data   any      `json:"data"`
	Sealed []string `json:"sealed,omitempty"`
}

type editResponse struct {
	Data   any           `json:"data"`
	Event  *events.Event `json:"event,omitempty"`
	Sealed []string      `json:"sealed,omitempty"`
}

// sealed lists the signed checkpoints of snap. Without edits there is no guard to ask.
func (h *BsdHandler) sealed(snap any) []string {
	if h.edits == nil {
		return nil
	}
	return h.edits.Sealed(snap)
}

// GET /bsds/:docType/:id?at=
func (h *BsdHandler) GetSnapshot(c *gin.Context) {
	docType, err := bsd.ParseDocumentType(c.Param("docType"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unknown_document_type", err)
		return
	}
	at, err := parseAt(c.Query("at"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_at", err)
		return
	}
	sess := h.snapshots.NewSession()
	snap, err := sess.Snapshot(c.Request.Context(), docType, strings.TrimSpace(c.Param("id")), at)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, snapshotResponse{Data: snap, Sealed: h.sealed(snap)})
}

// GET /bsds/:docType?ids=a,b&at=
func (h *BsdHandler) GetSnapshots(c *gin.Context) {
	docType, err := bsd.ParseDocumentType(c.Param("docType"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unknown_document_type", err)
		return
	}
	at, err := parseAt(c.Query("at"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_at", err)
		return
	}
	var ids []string
	for _, id := range strings.Split(c.Query("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		response.RespondError(c, http.StatusBadRequest, "missing_ids", errors.New("ids is required"))
		return
	}
	sess := h.snapshots.NewSession()
	snaps, err := sess.Snapshots(c.Request.Context(), docType, ids, at)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"data": snaps})
}

// PATCH /bsds/:docType/:id
func (h *BsdHandler) PatchDocument(c *gin.Context) {
	if h.edits == nil {
		response.RespondError(c, http.StatusNotImplemented, "edits_disabled", errors.New("edits are disabled"))
		return
	}
	docType, err := bsd.ParseDocumentType(c.Param("docType"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unknown_document_type", err)
		return
	}
	actor := strings.TrimSpace(c.GetHeader(middleware.HeaderActor))
	id := strings.TrimSpace(c.Param("id"))
	sess := h.snapshots.NewSession()
	ctx := c.Request.Context()

	switch docType {
	case bsd.TypeForm:
		var update bsd.Form
		if err := c.ShouldBindJSON(&update); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
		res, err := h.edits.UpdateForm(ctx, sess, id, update, actor)
		if err != nil {
			h.fail(c, err)
			return
		}
		response.RespondOK(c, editResponse{Data: res.State, Event: res.Event, Sealed: res.Sealed})
	case bsd.TypeBsda:
		var update bsd.Bsda
		if err := c.ShouldBindJSON(&update); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
		res, err := h.edits.UpdateBsda(ctx, sess, id, update, actor)
		if err != nil {
			h.fail(c, err)
			return
		}
		response.RespondOK(c, editResponse{Data: res.State, Event: res.Event, Sealed: res.Sealed})
	}
}

func (h *BsdHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if apierr.FromError(err).Status >= http.StatusInternalServerError {
		h.log.Error("bsd request failed", "path", c.FullPath(), "code", errs.CodeOf(err), "error", err)
	}
	var sealed *guard.SealedFieldsError
	if errors.As(err, &sealed) {
		paths := make([]string, 0, len(sealed.Violations))
		for _, p := range sealed.Paths() {
			paths = append(paths, string(p))
		}
		response.RespondAPIError(c, err, paths...)
		return
	}
	response.RespondAPIError(c, err)
}

// parseAt accepts RFC 3339 instants and plain dates. Empty means latest.
func parseAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := bsd.ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}
