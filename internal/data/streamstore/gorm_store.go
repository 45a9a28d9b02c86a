package streamstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trackdechets/bsd-events/internal/data/dberr"
	"github.com/trackdechets/bsd-events/internal/domain/events"
	"github.com/trackdechets/bsd-events/internal/platform/logger"
)

type gormStore struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

// NewGormStore keeps stream documents in the stream_documents and stream_events tables.
func NewGormStore(db *gorm.DB, baseLog *logger.Logger) Store {
	return &gormStore{
		db:  db,
		log: baseLog.With("store", "GormStreamStore"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *gormStore) Append(ctx context.Context, evts []events.Event) (int, error) {
	if len(evts) == 0 {
		return 0, nil
	}
	inserted := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range evts {
			rec := events.NewStreamEventRecord(e)
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "event_id"}},
				DoNothing: true,
			}).Create(&rec)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			inserted++
			doc := events.StreamDocumentRecord{
				StreamID:    e.StreamID,
				LatestEvent: e.CreatedAt.UTC(),
				UpdatedAt:   s.now(),
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "stream_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"latest_event", "updated_at"}),
			}).Create(&doc).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, dberr.MapError("streamstore.append", err)
	}
	if inserted < len(evts) {
		s.log.Debug("skipped already replicated events", "batch", len(evts), "inserted", inserted)
	}
	return inserted, nil
}

func (s *gormStore) Get(ctx context.Context, streamID string) (*events.StreamDocument, error) {
	streamID = normalizeID(streamID)
	var doc events.StreamDocumentRecord
	err := s.db.WithContext(ctx).
		Where("stream_id = ?", streamID).
		Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dberr.MapError("streamstore.get", err)
	}

	var rows []events.StreamEventRecord
	if err := s.db.WithContext(ctx).
		Where("stream_id = ?", streamID).
		Order("seq ASC").
		Find(&rows).Error; err != nil {
		return nil, dberr.MapError("streamstore.get_events", err)
	}
	out := &events.StreamDocument{
		StreamID:    doc.StreamID,
		LatestEvent: doc.LatestEvent.UTC(),
		Events:      make([]events.Event, 0, len(rows)),
	}
	for _, row := range rows {
		out.Events = append(out.Events, row.Event())
	}
	return out, nil
}
