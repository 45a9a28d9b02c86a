package streams

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/trackdechets/bsd-events/internal/domain/events"
)

// Key identifies one load. The same stream read at two cutoffs is two keys.
type Key struct {
	StreamID string
	Until    time.Time
}

func (k Key) String() string {
	if k.Until.IsZero() {
		return k.StreamID + "@latest"
	}
	return fmt.Sprintf("%s@%d", k.StreamID, k.Until.UTC().UnixNano())
}

type LoadFunc[V any] func(ctx context.Context, key Key) (V, error)

// Loader coalesces concurrent loads of the same key and caches successful results. It is
// scoped to one request; never share a Loader across requests.
type Loader[V any] struct {
	fetch LoadFunc[V]
	group singleflight.Group

	mu    sync.Mutex
	cache map[string]V
}

func NewLoader[V any](fetch LoadFunc[V]) *Loader[V] {
	return &Loader[V]{fetch: fetch, cache: map[string]V{}}
}

func (l *Loader[V]) cached(k string) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.cache[k]
	return v, ok
}

// Load returns the value for key. The shared fetch runs detached from any one caller's
// cancellation; a caller that gives up returns its own ctx error and leaves the rest waiting.
func (l *Loader[V]) Load(ctx context.Context, key Key) (V, error) {
	var zero V
	k := key.String()
	if v, ok := l.cached(k); ok {
		return v, nil
	}
	flightCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(k, func() (any, error) {
		if v, ok := l.cached(k); ok {
			return v, nil
		}
		v, err := l.fetch(flightCtx, key)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[k] = v
		l.mu.Unlock()
		return v, nil
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// LoadMany loads keys concurrently and returns results in key order. The first error wins.
func (l *Loader[V]) LoadMany(ctx context.Context, keys []Key) ([]V, error) {
	out := make([]V, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			v, err := l.Load(gctx, key)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Clear drops every cached result.
func (l *Loader[V]) Clear() {
	l.mu.Lock()
	l.cache = map[string]V{}
	l.mu.Unlock()
}

// NewEventLoader loads raw streams through r.
func NewEventLoader(r Reader) *Loader[[]events.Event] {
	return NewLoader(func(ctx context.Context, key Key) ([]events.Event, error) {
		return r.Read(ctx, key.StreamID, key.Until)
	})
}
