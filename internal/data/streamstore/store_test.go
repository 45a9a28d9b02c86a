package streamstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/trackdechets/bsd-events/internal/data/repos/testutil"
	"github.com/trackdechets/bsd-events/internal/domain/events"
)

func runStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("missing stream", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		require.ErrorIs(t, err, ErrNotFound)
	})

	batch := []events.Event{
		testutil.Event("e1", "F1", "BsddCreated", 0, map[string]any{"emitterCompanyName": "Acme"}),
		testutil.Event("e2", "F2", "BsddCreated", time.Second, map[string]any{}),
		testutil.Event("e3", "F1", "BsddSigned", 2*time.Second, map[string]any{"status": "SENT"}),
	}

	t.Run("append keeps per-stream order", func(t *testing.T) {
		n, err := store.Append(ctx, batch)
		require.NoError(t, err)
		require.Equal(t, 3, n)

		doc, err := store.Get(ctx, "F1")
		require.NoError(t, err)
		require.Equal(t, "F1", doc.StreamID)
		require.Len(t, doc.Events, 2)
		require.Equal(t, "e1", doc.Events[0].ID)
		require.Equal(t, "e3", doc.Events[1].ID)
		require.True(t, doc.LatestEvent.Equal(batch[2].CreatedAt), "latestEvent=%v", doc.LatestEvent)
		require.JSONEq(t, `{"status":"SENT"}`, string(doc.Events[1].Data))
	})

	t.Run("replaying a batch changes nothing", func(t *testing.T) {
		before, err := store.Get(ctx, "F1")
		require.NoError(t, err)

		n, err := store.Append(ctx, batch)
		require.NoError(t, err)
		require.Equal(t, 0, n)

		after, err := store.Get(ctx, "F1")
		require.NoError(t, err)
		require.Equal(t, len(before.Events), len(after.Events))
		require.True(t, before.LatestEvent.Equal(after.LatestEvent))
	})

	t.Run("partially replicated batch only adds the rest", func(t *testing.T) {
		next := testutil.Event("e4", "F2", "BsddUpdated", 3*time.Second, map[string]any{"status": "DRAFT"})
		n, err := store.Append(ctx, []events.Event{batch[1], next})
		require.NoError(t, err)
		require.Equal(t, 1, n)

		doc, err := store.Get(ctx, "F2")
		require.NoError(t, err)
		require.Len(t, doc.Events, 2)
		require.True(t, doc.LatestEvent.Equal(next.CreatedAt))
	})
}

func TestGormStore(t *testing.T) {
	db := testutil.DB(t)
	runStoreContract(t, NewGormStore(db, testutil.Logger(t)))
}

func TestGormStoreAppendFailureIsReported(t *testing.T) {
	db := testutil.DB(t)
	store := NewGormStore(db, testutil.Logger(t))
	require.NoError(t, db.Migrator().DropTable(&events.StreamEventRecord{}))

	_, err := store.Append(context.Background(), []events.Event{
		testutil.Event("e1", "F1", "BsddCreated", 0, map[string]any{}),
	})
	require.Error(t, err)
	var docs int64
	require.NoError(t, db.Model(&events.StreamDocumentRecord{}).Count(&docs).Error)
	require.Zero(t, docs)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis store tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	prefix := fmt.Sprintf("test:%d", time.Now().UnixNano())
	t.Cleanup(func() {
		ctx := context.Background()
		iter := rdb.Scan(ctx, 0, prefix+":*", 100).Iterator()
		for iter.Next(ctx) {
			_ = rdb.Del(ctx, iter.Val()).Err()
		}
	})
	runStoreContract(t, NewRedisStore(rdb, prefix, testutil.Logger(t)))
}

func TestRedisStoreUnavailable(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewRedisStore(rdb, "", testutil.Logger(t))

	_, err := store.Append(context.Background(), []events.Event{
		testutil.Event("e1", "F1", "BsddCreated", 0, map[string]any{}),
	})
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
}
