package streamstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/trackdechets/bsd-events/internal/data/dberr"
	"github.com/trackdechets/bsd-events/internal/domain/events"
	"github.com/trackdechets/bsd-events/internal/platform/logger"
)

// appendEventScript pushes one event onto a stream unless its id was already seen.
// KEYS[1] = event list, KEYS[2] = id set, KEYS[3] = latest event timestamp
// ARGV[1] = event id, ARGV[2] = event JSON, ARGV[3] = createdAt (RFC 3339)
var appendEventScript = goredis.NewScript(`
if redis.call("SADD", KEYS[2], ARGV[1]) == 0 then
    return 0
end
redis.call("RPUSH", KEYS[1], ARGV[2])
redis.call("SET", KEYS[3], ARGV[3])
return 1
`)

type redisStore struct {
	rdb    goredis.UniversalClient
	prefix string
	log    *logger.Logger
}

// NewRedisStore keeps each stream as a list of JSON events. Keys share a {streamId} hash
// tag so the append script stays on one cluster slot.
func NewRedisStore(rdb goredis.UniversalClient, prefix string, baseLog *logger.Logger) Store {
	if prefix == "" {
		prefix = "bsd:stream"
	}
	return &redisStore{
		rdb:    rdb,
		prefix: prefix,
		log:    baseLog.With("store", "RedisStreamStore"),
	}
}

func (s *redisStore) keys(streamID string) []string {
	base := fmt.Sprintf("%s:{%s}", s.prefix, streamID)
	return []string{base + ":events", base + ":ids", base + ":latest"}
}

func (s *redisStore) Append(ctx context.Context, evts []events.Event) (int, error) {
	inserted := 0
	for _, e := range evts {
		raw, err := json.Marshal(e)
		if err != nil {
			return inserted, dberr.MapError("streamstore.append", err)
		}
		n, err := appendEventScript.Run(ctx, s.rdb, s.keys(e.StreamID),
			e.ID, raw, e.CreatedAt.UTC().Format(time.RFC3339Nano)).Int()
		if err != nil {
			return inserted, dberr.MapError("streamstore.append", err)
		}
		inserted += n
	}
	return inserted, nil
}

func (s *redisStore) Get(ctx context.Context, streamID string) (*events.StreamDocument, error) {
	streamID = normalizeID(streamID)
	keys := s.keys(streamID)

	latestRaw, err := s.rdb.Get(ctx, keys[2]).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dberr.MapError("streamstore.get", err)
	}
	latest, err := time.Parse(time.RFC3339Nano, latestRaw)
	if err != nil {
		return nil, dberr.MapError("streamstore.get", fmt.Errorf("parse latest event of %s: %w", streamID, err))
	}

	items, err := s.rdb.LRange(ctx, keys[0], 0, -1).Result()
	if err != nil {
		return nil, dberr.MapError("streamstore.get_events", err)
	}
	doc := &events.StreamDocument{
		StreamID:    streamID,
		LatestEvent: latest,
		Events:      make([]events.Event, 0, len(items)),
	}
	for _, item := range items {
		var e events.Event
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, dberr.MapError("streamstore.get_events", fmt.Errorf("decode event of %s: %w", streamID, err))
		}
		doc.Events = append(doc.Events, e)
	}
	return doc, nil
}
