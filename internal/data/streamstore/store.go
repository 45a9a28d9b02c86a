// Package streamstore is the fast per-stream read store the replicator fills.
//
// Append is idempotent per event id: replaying a batch that was already written leaves every
// stream document unchanged. Events of one stream keep the order they were appended in.
package streamstore

import (
	"context"
	"strings"

	"github.com/trackdechets/bsd-events/internal/domain/errs"
	"github.com/trackdechets/bsd-events/internal/domain/events"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

var ErrNotFound = errs.New(errs.CodeNotFound, "streamstore.get", "stream not found", nil)

type Store interface {
	// Append adds evts to their streams in slice order and reports how many were new.
	Append(ctx context.Context, evts []events.Event) (int, error)
	// Get returns the stream document or ErrNotFound.
	Get(ctx context.Context, streamID string) (*events.StreamDocument, error)
}

func normalizeID(streamID string) string {
	return strings.TrimSpace(streamID)
}
