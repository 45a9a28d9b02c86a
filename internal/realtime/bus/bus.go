package bus

import (
	"context"
	"time"
)

const DefaultChannel = "bsd-streams"

// Notification tells subscribers that new events reached a stream document.
type Notification struct {
	StreamID    string    `json:"streamId"`
	EventIDs    []string  `json:"eventIds"`
	LatestEvent time.Time `json:"latestEvent"`
}

type Bus interface {
	Publish(ctx context.Context, n Notification) error
	StartForwarder(ctx context.Context, onMsg func(n Notification)) error
	Close() error
}
