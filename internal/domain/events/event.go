package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Event is an immutable fact appended to a stream. Data and Metadata stay raw so each
// document reducer decodes them into its own typed payload.
type Event struct {
	ID        string          `json:"id"`
	StreamID  string          `json:"streamId"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Actor     string          `json:"actor"`
	CreatedAt time.Time       `json:"createdAt"`
}

// StreamDocument is the fast-store materialization of one stream.
type StreamDocument struct {
	StreamID    string    `json:"streamId"`
	LatestEvent time.Time `json:"latestEvent"`
	Events      []Event   `json:"events"`
}

// Validate checks the structural invariants the engine relies on. Payload business rules
// belong to writers.
func (e Event) Validate() error {
	switch {
	case strings.TrimSpace(e.ID) == "":
		return fmt.Errorf("event id is required")
	case strings.TrimSpace(e.StreamID) == "":
		return fmt.Errorf("event %s: stream id is required", e.ID)
	case strings.TrimSpace(e.Type) == "":
		return fmt.Errorf("event %s: type is required", e.ID)
	case e.CreatedAt.IsZero():
		return fmt.Errorf("event %s: createdAt is required", e.ID)
	}
	if len(e.Data) > 0 && !json.Valid(e.Data) {
		return fmt.Errorf("event %s: data is not valid JSON", e.ID)
	}
	return nil
}

// DecodeData unmarshals the event payload into T. An empty payload yields the zero value.
func DecodeData[T any](e Event) (T, error) {
	var out T
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(e.Data, &out); err != nil {
		return out, fmt.Errorf("decode %s payload of event %s: %w", e.Type, e.ID, err)
	}
	return out, nil
}

// Until returns the events created at or before cutoff. A zero cutoff returns evts unchanged.
func Until(evts []Event, cutoff time.Time) []Event {
	if cutoff.IsZero() {
		return evts
	}
	out := make([]Event, 0, len(evts))
	for _, e := range evts {
		if !e.CreatedAt.After(cutoff) {
			out = append(out, e)
		}
	}
	return out
}
