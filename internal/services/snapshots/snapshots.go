package snapshots

import (
	"context"
	"fmt"
	"time"

	"github.com/trackdechets/bsd-events/internal/domain/bsd"
	"github.com/trackdechets/bsd-events/internal/domain/errs"
	"github.com/trackdechets/bsd-events/internal/domain/events"
	"github.com/trackdechets/bsd-events/internal/eventsource"
	"github.com/trackdechets/bsd-events/internal/platform/logger"
	"github.com/trackdechets/bsd-events/internal/services/streams"
)

type Service struct {
	reader streams.Reader
	log    *logger.Logger
}

func NewService(reader streams.Reader, baseLog *logger.Logger) *Service {
	return &Service{
		reader: reader,
		log:    baseLog.With("service", "SnapshotService"),
	}
}

// Session holds the loaders of one request. A stream is read at most once per session,
// whatever cutoffs it is aggregated at.
type Session struct {
	log    *logger.Logger
	stream *streams.Loader[[]events.Event]
	forms  *streams.Loader[bsd.Form]
	bsdas  *streams.Loader[bsd.Bsda]
}

func (s *Service) NewSession() *Session {
	sess := &Session{
		log:    s.log,
		stream: streams.NewEventLoader(s.reader),
	}
	sess.forms = streams.NewLoader(aggregateWith(sess.stream, eventsource.Reducer[bsd.Form](bsd.FormReducer{}), s.log))
	sess.bsdas = streams.NewLoader(aggregateWith(sess.stream, eventsource.Reducer[bsd.Bsda](bsd.BsdaReducer{}), s.log))
	return sess
}

func aggregateWith[S any](stream *streams.Loader[[]events.Event], r eventsource.Reducer[S], log *logger.Logger) streams.LoadFunc[S] {
	return func(ctx context.Context, key streams.Key) (S, error) {
		evts, err := stream.Load(ctx, streams.Key{StreamID: key.StreamID})
		if err != nil {
			var zero S
			return zero, err
		}
		state, err := eventsource.AggregateUntil(evts, r, key.Until)
		if errs.IsCode(err, errs.CodeSchemaDrift) {
			log.Error("schema drift while aggregating", "stream_id", key.StreamID, "error", err)
		}
		return state, err
	}
}

// Form returns the form snapshot as of at (zero: latest).
func (s *Session) Form(ctx context.Context, id string, at time.Time) (bsd.Form, error) {
	return s.forms.Load(ctx, streams.Key{StreamID: id, Until: at})
}

func (s *Session) Bsda(ctx context.Context, id string, at time.Time) (bsd.Bsda, error) {
	return s.bsdas.Load(ctx, streams.Key{StreamID: id, Until: at})
}

func (s *Session) Forms(ctx context.Context, keys []streams.Key) ([]bsd.Form, error) {
	return s.forms.LoadMany(ctx, keys)
}

func (s *Session) Bsdas(ctx context.Context, keys []streams.Key) ([]bsd.Bsda, error) {
	return s.bsdas.LoadMany(ctx, keys)
}

// Snapshot dispatches on the document type.
func (s *Session) Snapshot(ctx context.Context, docType bsd.DocumentType, id string, at time.Time) (any, error) {
	switch docType {
	case bsd.TypeForm:
		return s.Form(ctx, id, at)
	case bsd.TypeBsda:
		return s.Bsda(ctx, id, at)
	}
	return nil, errs.New(errs.CodeValidation, "snapshots.snapshot", fmt.Sprintf("unknown document type %q", docType), nil)
}

// Snapshots loads many documents of one type at the same cutoff, in ids order.
func (s *Session) Snapshots(ctx context.Context, docType bsd.DocumentType, ids []string, at time.Time) (any, error) {
	keys := make([]streams.Key, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, streams.Key{StreamID: id, Until: at})
	}
	switch docType {
	case bsd.TypeForm:
		return s.Forms(ctx, keys)
	case bsd.TypeBsda:
		return s.Bsdas(ctx, keys)
	}
	return nil, errs.New(errs.CodeValidation, "snapshots.snapshots", fmt.Sprintf("unknown document type %q", docType), nil)
}

// Events returns the replicated events of id, read through the session cache.
func (s *Session) Events(ctx context.Context, id string) ([]events.Event, error) {
	return s.stream.Load(ctx, streams.Key{StreamID: id})
}

// Invalidate forgets everything this session loaded, e.g. after it appended an event.
func (s *Session) Invalidate() {
	s.stream.Clear()
	s.forms.Clear()
	s.bsdas.Clear()
}
