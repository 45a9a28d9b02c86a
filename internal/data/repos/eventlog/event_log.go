package eventlog

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trackdechets/bsd-events/internal/data/dberr"
	"github.com/trackdechets/bsd-events/internal/domain/errs"
	"github.com/trackdechets/bsd-events/internal/domain/events"
	"github.com/trackdechets/bsd-events/internal/platform/dbctx"
	"github.com/trackdechets/bsd-events/internal/platform/logger"
)

// EventLogRepo is the durable transactional log writers append to and the replicator drains.
type EventLogRepo interface {
	Append(dbc dbctx.Context, evts []events.Event) error
	FetchOldest(dbc dbctx.Context, limit int) ([]events.Event, error)
	DeleteByIDs(dbc dbctx.Context, ids []string) (int64, error)
	ListByStream(dbc dbctx.Context, streamID string) ([]events.Event, error)
	Count(dbc dbctx.Context) (int64, error)
}

type eventLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventLogRepo(db *gorm.DB, baseLog *logger.Logger) EventLogRepo {
	return &eventLogRepo{
		db:  db,
		log: baseLog.With("repo", "EventLogRepo"),
	}
}

func (r *eventLogRepo) Append(dbc dbctx.Context, evts []events.Event) error {
	if len(evts) == 0 {
		return nil
	}
	rows := make([]events.LogRecord, 0, len(evts))
	for _, e := range evts {
		if err := e.Validate(); err != nil {
			return errs.New(errs.CodeValidation, "event_log.append", err.Error(), err)
		}
		rows = append(rows, events.NewLogRecord(e))
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return dberr.MapError("event_log.append", err)
	}
	return nil
}

// FetchOldest returns up to limit events in insertion order.
func (r *eventLogRepo) FetchOldest(dbc dbctx.Context, limit int) ([]events.Event, error) {
	if limit <= 0 {
		return []events.Event{}, nil
	}
	var rows []events.LogRecord
	if err := dbc.DB(r.db).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "seq"}}).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, dberr.MapError("event_log.fetch_oldest", err)
	}
	return toEvents(rows), nil
}

// DeleteByIDs removes exactly the given event ids and reports how many rows went away.
func (r *eventLogRepo) DeleteByIDs(dbc dbctx.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Where("event_id IN ?", ids).
		Delete(&events.LogRecord{})
	if res.Error != nil {
		return 0, dberr.MapError("event_log.delete", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *eventLogRepo) ListByStream(dbc dbctx.Context, streamID string) ([]events.Event, error) {
	var rows []events.LogRecord
	if err := dbc.DB(r.db).
		Where("stream_id = ?", streamID).
		Order("seq ASC").
		Find(&rows).Error; err != nil {
		return nil, dberr.MapError("event_log.list_by_stream", err)
	}
	return toEvents(rows), nil
}

func (r *eventLogRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&events.LogRecord{}).Count(&n).Error; err != nil {
		return 0, dberr.MapError("event_log.count", err)
	}
	return n, nil
}

func toEvents(rows []events.LogRecord) []events.Event {
	out := make([]events.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Event())
	}
	return out
}
