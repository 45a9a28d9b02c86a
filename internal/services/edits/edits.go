package edits

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trackdechets/bsd-events/internal/data/repos/eventlog"
	"github.com/trackdechets/bsd-events/internal/domain/bsd"
	"github.com/trackdechets/bsd-events/internal/domain/errs"
	"github.com/trackdechets/bsd-events/internal/domain/events"
	"github.com/trackdechets/bsd-events/internal/domain/fields"
	"github.com/trackdechets/bsd-events/internal/eventsource"
	"github.com/trackdechets/bsd-events/internal/platform/ctxutil"
	"github.com/trackdechets/bsd-events/internal/platform/dbctx"
	"github.com/trackdechets/bsd-events/internal/platform/logger"
	"github.com/trackdechets/bsd-events/internal/services/guard"
	"github.com/trackdechets/bsd-events/internal/services/snapshots"
	"github.com/trackdechets/bsd-events/internal/services/streams"
)

// Result is the outcome of an accepted edit. Event is nil when the update changed nothing.
// Sealed names the checkpoints signed on State.
type Result[T any] struct {
	State  T
	Event  *events.Event
	Sealed []string
}

type Service struct {
	eventLog  eventlog.EventLogRepo
	formGuard *guard.Guard[bsd.Form]
	bsdaGuard *guard.Guard[bsd.Bsda]
	log       *logger.Logger
	now       func() time.Time
}

func NewService(eventLog eventlog.EventLogRepo, rules guard.Rules, baseLog *logger.Logger) (*Service, error) {
	fg, err := guard.New[bsd.Form](rules.Form)
	if err != nil {
		return nil, err
	}
	bg, err := guard.New[bsd.Bsda](rules.Bsda)
	if err != nil {
		return nil, err
	}
	return &Service{
		eventLog:  eventLog,
		formGuard: fg,
		bsdaGuard: bg,
		log:       baseLog.With("service", "EditService"),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// UpdateForm applies update to form id. The id and the tombstone cannot be edited; they are
// dropped from update.
func (s *Service) UpdateForm(ctx context.Context, sess *snapshots.Session, id string, update bsd.Form, actor string) (Result[bsd.Form], error) {
	update.ID = nil
	update.IsDeleted = nil
	return apply(ctx, s, sess, edit[bsd.Form]{
		op:      "edits.update_form",
		id:      id,
		actor:   actor,
		reducer: bsd.FormReducer{},
		guard:   s.formGuard,
		update:  update,
		deleted: func(f bsd.Form) bool { return f.IsDeleted != nil && *f.IsDeleted },
	})
}

func (s *Service) UpdateBsda(ctx context.Context, sess *snapshots.Session, id string, update bsd.Bsda, actor string) (Result[bsd.Bsda], error) {
	update.ID = nil
	update.IsDeleted = nil
	return apply(ctx, s, sess, edit[bsd.Bsda]{
		op:      "edits.update_bsda",
		id:      id,
		actor:   actor,
		reducer: bsd.BsdaReducer{},
		guard:   s.bsdaGuard,
		update:  update,
		deleted: func(b bsd.Bsda) bool { return b.IsDeleted != nil && *b.IsDeleted },
	})
}

// Sealed names the checkpoints signed on a snapshot, or nil for unknown snapshot types.
func (s *Service) Sealed(snapshot any) []string {
	switch v := snapshot.(type) {
	case bsd.Form:
		return s.formGuard.Sealed(v)
	case bsd.Bsda:
		return s.bsdaGuard.Sealed(v)
	}
	return nil
}

type edit[T any] struct {
	op      string
	id      string
	actor   string
	reducer eventsource.Reducer[T]
	guard   *guard.Guard[T]
	update  T
	deleted func(T) bool
}

// stream returns the replicated events of id followed by those still waiting in the durable
// log, each event once.
func (s *Service) stream(ctx context.Context, sess *snapshots.Session, id string) ([]events.Event, error) {
	replicated, err := sess.Events(ctx, id)
	if err != nil && !errors.Is(err, streams.ErrStreamNotFound) {
		return nil, err
	}
	pending, err := s.eventLog.ListByStream(dbctx.With(ctx), id)
	if err != nil {
		return nil, err
	}
	if len(replicated) == 0 && len(pending) == 0 {
		return nil, streams.ErrStreamNotFound
	}
	seen := make(map[string]struct{}, len(replicated))
	out := make([]events.Event, 0, len(replicated)+len(pending))
	for _, e := range replicated {
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	for _, e := range pending {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}

func apply[T any](ctx context.Context, s *Service, sess *snapshots.Session, e edit[T]) (Result[T], error) {
	var res Result[T]
	id := strings.TrimSpace(e.id)
	if id == "" {
		return res, errs.New(errs.CodeValidation, e.op, "document id is required", nil)
	}
	if strings.TrimSpace(e.actor) == "" {
		return res, errs.New(errs.CodeValidation, e.op, "actor is required", nil)
	}

	evts, err := s.stream(ctx, sess, id)
	if err != nil {
		return res, err
	}
	current, err := eventsource.Aggregate(evts, e.reducer)
	if err != nil {
		if errs.IsCode(err, errs.CodeSchemaDrift) {
			s.log.Error("schema drift while aggregating", "stream_id", id, "error", err)
		}
		return res, err
	}
	if e.deleted(current) {
		return res, errs.New(errs.CodeValidation, e.op, "document "+id+" is deleted", nil)
	}
	if err := e.guard.CheckEditable(e.update, current); err != nil {
		var sealed *guard.SealedFieldsError
		if errors.As(err, &sealed) {
			kv := append([]interface{}{"stream_id", id, "actor", e.actor, "paths", sealed.Paths()},
				ctxutil.GetTraceData(ctx).LogFields()...)
			s.log.Info("edit rejected on sealed fields", kv...)
		}
		return res, errs.New(errs.CodeSealedFields, e.op, err.Error(), err)
	}

	res.State = current
	res.Sealed = e.guard.Sealed(current)
	if len(fields.Diff(current, e.update)) == 0 {
		return res, nil
	}

	data, err := json.Marshal(e.update)
	if err != nil {
		return res, errs.New(errs.CodeInternal, e.op, "encode update", err)
	}
	evt := events.Event{
		ID:        uuid.NewString(),
		StreamID:  id,
		Type:      e.reducer.Vocabulary().Type(events.KindUpdated),
		Data:      data,
		Actor:     e.actor,
		CreatedAt: s.now(),
	}
	if err := s.eventLog.Append(dbctx.With(ctx), []events.Event{evt}); err != nil {
		return res, err
	}
	sess.Invalidate()
	s.log.Debug("edit appended", append([]interface{}{"stream_id", id, "event_id", evt.ID, "type", evt.Type},
		ctxutil.GetTraceData(ctx).LogFields()...)...)

	res.State = fields.MergeDefined(current, e.update)
	res.Event = &evt
	return res, nil
}
