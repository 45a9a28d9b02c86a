package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/trackdechets/bsd-events/internal/domain/events"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Durable transactional log
		&events.LogRecord{},

		// Fast store (gorm backend)
		&events.StreamDocumentRecord{},
		&events.StreamEventRecord{},
	)
}

// EnsureIndexes adds the composite indexes AutoMigrate cannot express from tags alone.
func EnsureIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_event_log_stream_seq
		ON event_log (stream_id, seq);
	`).Error; err != nil {
		return fmt.Errorf("create idx_event_log_stream_seq: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_stream_events_stream_seq
		ON stream_events (stream_id, seq);
	`).Error; err != nil {
		return fmt.Errorf("create idx_stream_events_stream_seq: %w", err)
	}
	return nil
}
