package events

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// LogRecord is a row of the durable transactional log. Seq is the insertion order the
// replicator drains by.
type LogRecord struct {
	Seq       int64          `gorm:"column:seq;primaryKey;autoIncrement" json:"seq"`
	EventID   string         `gorm:"column:event_id;not null;uniqueIndex" json:"event_id"`
	StreamID  string         `gorm:"column:stream_id;not null;index" json:"stream_id"`
	Type      string         `gorm:"column:type;not null" json:"type"`
	Data      datatypes.JSON `gorm:"column:data" json:"data"`
	Metadata  datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	Actor     string         `gorm:"column:actor;not null" json:"actor"`
	CreatedAt time.Time      `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (LogRecord) TableName() string { return "event_log" }

// StreamEventRecord is one replicated event inside the fast store. Seq keeps log order.
type StreamEventRecord struct {
	Seq       int64          `gorm:"column:seq;primaryKey;autoIncrement" json:"seq"`
	EventID   string         `gorm:"column:event_id;not null;uniqueIndex" json:"event_id"`
	StreamID  string         `gorm:"column:stream_id;not null;index" json:"stream_id"`
	Type      string         `gorm:"column:type;not null" json:"type"`
	Data      datatypes.JSON `gorm:"column:data" json:"data"`
	Metadata  datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	Actor     string         `gorm:"column:actor;not null" json:"actor"`
	CreatedAt time.Time      `gorm:"column:created_at;not null" json:"created_at"`
}

func (StreamEventRecord) TableName() string { return "stream_events" }

// StreamDocumentRecord is the per-stream header of the fast store.
type StreamDocumentRecord struct {
	StreamID    string    `gorm:"column:stream_id;primaryKey" json:"stream_id"`
	LatestEvent time.Time `gorm:"column:latest_event;not null" json:"latest_event"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (StreamDocumentRecord) TableName() string { return "stream_documents" }

func NewLogRecord(e Event) LogRecord {
	return LogRecord{
		EventID:   e.ID,
		StreamID:  e.StreamID,
		Type:      e.Type,
		Data:      rawOrEmpty(e.Data),
		Metadata:  rawOrNil(e.Metadata),
		Actor:     e.Actor,
		CreatedAt: e.CreatedAt.UTC(),
	}
}

func (r LogRecord) Event() Event {
	return Event{
		ID:        r.EventID,
		StreamID:  r.StreamID,
		Type:      r.Type,
		Data:      json.RawMessage(r.Data),
		Metadata:  metadataOrNil(r.Metadata),
		Actor:     r.Actor,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func NewStreamEventRecord(e Event) StreamEventRecord {
	return StreamEventRecord{
		EventID:   e.ID,
		StreamID:  e.StreamID,
		Type:      e.Type,
		Data:      rawOrEmpty(e.Data),
		Metadata:  rawOrNil(e.Metadata),
		Actor:     e.Actor,
		CreatedAt: e.CreatedAt.UTC(),
	}
}

func (r StreamEventRecord) Event() Event {
	return Event{
		ID:        r.EventID,
		StreamID:  r.StreamID,
		Type:      r.Type,
		Data:      json.RawMessage(r.Data),
		Metadata:  metadataOrNil(r.Metadata),
		Actor:     r.Actor,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func rawOrEmpty(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}

func rawOrNil(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return datatypes.JSON(raw)
}

func metadataOrNil(raw datatypes.JSON) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.RawMessage(raw)
}
