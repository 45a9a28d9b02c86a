package replicator

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/trackdechets/bsd-events/internal/data/dberr"
	"github.com/trackdechets/bsd-events/internal/data/repos/eventlog"
	"github.com/trackdechets/bsd-events/internal/data/streamstore"
	"github.com/trackdechets/bsd-events/internal/domain/events"
	"github.com/trackdechets/bsd-events/internal/platform/dbctx"
	"github.com/trackdechets/bsd-events/internal/platform/logger"
	"github.com/trackdechets/bsd-events/internal/realtime/bus"
)

const (
	DefaultInterval  = 5 * time.Second
	DefaultBatchSize = 100
)

type Config struct {
	Interval  time.Duration
	BatchSize int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	return c
}

// Replicator moves events from the durable log to the fast store. A batch is deleted from
// the log only after the store accepted all of it, so delivery is at least once.
type Replicator struct {
	cfg      Config
	eventLog eventlog.EventLogRepo
	store    streamstore.Store
	notify   bus.Bus
	log      *logger.Logger
	tracer   trace.Tracer

	wg sync.WaitGroup
}

// New builds a replicator. notify may be nil.
func New(cfg Config, eventLog eventlog.EventLogRepo, store streamstore.Store, notify bus.Bus, baseLog *logger.Logger) *Replicator {
	return &Replicator{
		cfg:      cfg.withDefaults(),
		eventLog: eventLog,
		store:    store,
		notify:   notify,
		log:      baseLog.With("component", "Replicator"),
		tracer:   otel.Tracer("github.com/trackdechets/bsd-events/internal/jobs/replicator"),
	}
}

func (r *Replicator) Config() Config { return r.cfg }

// RunOnce replicates at most one batch and returns its size.
func (r *Replicator) RunOnce(ctx context.Context) (int, error) {
	ctx, span := r.tracer.Start(ctx, "replicator.pass",
		trace.WithAttributes(attribute.Int("replicator.batch_size", r.cfg.BatchSize)))
	defer span.End()

	n, err := r.pass(ctx)
	span.SetAttributes(attribute.Int("replicator.replicated", n))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replication pass failed")
	}
	return n, err
}

func (r *Replicator) pass(ctx context.Context) (int, error) {
	dbc := dbctx.With(ctx)
	batch, err := r.eventLog.FetchOldest(dbc, r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, nil
	}

	inserted, err := r.store.Append(ctx, batch)
	if err != nil {
		return 0, err
	}

	ids := make([]string, 0, len(batch))
	for _, e := range batch {
		ids = append(ids, e.ID)
	}
	deleted, err := r.eventLog.DeleteByIDs(dbc, ids)
	if err != nil {
		return 0, err
	}
	if deleted != int64(len(ids)) {
		// Another process drained some of them first; the store ignored the duplicates.
		r.log.Warn("deleted fewer events than replicated", "batch", len(ids), "deleted", deleted)
	}

	r.publish(ctx, batch)
	r.log.Debug("replication pass", "batch", len(batch), "inserted", inserted)
	return len(batch), nil
}

// publish is best effort: a lost notification never un-replicates a batch.
func (r *Replicator) publish(ctx context.Context, batch []events.Event) {
	if r.notify == nil {
		return
	}
	byStream := map[string]*bus.Notification{}
	for _, e := range batch {
		n, ok := byStream[e.StreamID]
		if !ok {
			n = &bus.Notification{StreamID: e.StreamID}
			byStream[e.StreamID] = n
		}
		n.EventIDs = append(n.EventIDs, e.ID)
		if e.CreatedAt.After(n.LatestEvent) {
			n.LatestEvent = e.CreatedAt
		}
	}
	streamIDs := make([]string, 0, len(byStream))
	for id := range byStream {
		streamIDs = append(streamIDs, id)
	}
	sort.Strings(streamIDs)
	for _, id := range streamIDs {
		if err := r.notify.Publish(ctx, *byStream[id]); err != nil {
			r.log.Warn("stream notification failed", "stream_id", id, "error", err)
		}
	}
}

// Drain runs passes until one comes back short of a full batch.
func (r *Replicator) Drain(ctx context.Context) (passes int, total int, err error) {
	for {
		if err := ctx.Err(); err != nil {
			return passes, total, err
		}
		n, err := r.RunOnce(ctx)
		if err != nil {
			return passes, total, err
		}
		passes++
		total += n
		if n < r.cfg.BatchSize {
			return passes, total, nil
		}
	}
}

// Run replicates until ctx is cancelled. Full batches are followed immediately by another
// pass; short batches and failures wait one interval.
func (r *Replicator) Run(ctx context.Context) {
	r.log.Info("Starting replicator", "interval", r.cfg.Interval.String(), "batch_size", r.cfg.BatchSize)

	for {
		if ctx.Err() != nil {
			r.log.Info("Replicator stopped")
			return
		}
		n, err := r.RunOnce(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			r.log.Info("Replicator stopped")
			return
		case err != nil && dberr.Retryable(err):
			r.log.Warn("replication pass failed, retrying", "error", err)
		case err != nil:
			r.log.Error("replication pass failed", "error", err)
		case n == r.cfg.BatchSize:
			continue
		}

		if !r.sleep(ctx) {
			r.log.Info("Replicator stopped")
			return
		}
	}
}

func (r *Replicator) sleep(ctx context.Context) bool {
	timer := time.NewTimer(r.cfg.Interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Start launches Run in the background. Wait blocks until it returns.
func (r *Replicator) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.Run(ctx)
	}()
}

func (r *Replicator) Wait() {
	r.wg.Wait()
}
