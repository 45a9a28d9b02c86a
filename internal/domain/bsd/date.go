package bsd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Date is a timestamp decoded from the loose date strings writers send.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func NewDate(t time.Time) *Date {
	return &Date{Time: t.UTC()}
}

func ParseDate(raw string) (Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Date{Time: t.UTC()}, nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", raw)
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] != '"' {
		var ms int64
		if err := json.Unmarshal(b, &ms); err != nil {
			return fmt.Errorf("date: %w", err)
		}
		d.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	// Writers clear dates with "". Like null, it leaves the value undefined.
	if raw == "" {
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Undefined reports a date that was never set, e.g. decoded from "".
func (d Date) Undefined() bool { return d.Time.IsZero() }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.UTC().Format(time.RFC3339Nano))
}

// Equal compares instants regardless of location.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}
