package streams

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/trackdechets/bsd-events/internal/data/streamstore"
	"github.com/trackdechets/bsd-events/internal/domain/errs"
	"github.com/trackdechets/bsd-events/internal/domain/events"
	"github.com/trackdechets/bsd-events/internal/platform/logger"
)

// ErrStreamNotFound means nothing was replicated for the stream yet. Callers treat it as an
// absent result, not a failure.
var ErrStreamNotFound = errs.New(errs.CodeNotFound, "streams.read", "stream not found", nil)

type Reader interface {
	// Read returns the replicated events of streamID in log order. A zero until means no cutoff.
	Read(ctx context.Context, streamID string, until time.Time) ([]events.Event, error)
}

type reader struct {
	store streamstore.Store
	log   *logger.Logger
}

func NewReader(store streamstore.Store, baseLog *logger.Logger) Reader {
	return &reader{
		store: store,
		log:   baseLog.With("service", "StreamReader"),
	}
}

func (r *reader) Read(ctx context.Context, streamID string, until time.Time) ([]events.Event, error) {
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return nil, errs.New(errs.CodeValidation, "streams.read", "stream id is required", nil)
	}
	doc, err := r.store.Get(ctx, streamID)
	if errors.Is(err, streamstore.ErrNotFound) {
		return nil, ErrStreamNotFound
	}
	if err != nil {
		r.log.Warn("stream read failed", "stream_id", streamID, "error", err)
		return nil, err
	}
	return events.Until(doc.Events, until), nil
}
