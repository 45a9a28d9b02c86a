// Package eventsource folds event streams into document snapshots.
package eventsource

import (
	"fmt"
	"time"

	"github.com/trackdechets/bsd-events/internal/domain/errs"
	"github.com/trackdechets/bsd-events/internal/domain/events"
)

// Reducer folds one document type. There is one method per event kind, so adding a kind
// breaks every reducer that does not handle it at compile time.
//
// Methods must be pure and applying the same event twice in a row must equal applying it once:
// the replicator delivers at least once.
type Reducer[S any] interface {
	Vocabulary() events.Vocabulary
	Empty() S
	Created(state S, e events.Event) (S, error)
	Updated(state S, e events.Event) (S, error)
	Signed(state S, e events.Event) (S, error)
	Deleted(state S, e events.Event) (S, error)
	RevisionApplied(state S, e events.Event) (S, error)
}

// Aggregate folds evts, already in log order, from the reducer's empty state.
func Aggregate[S any](evts []events.Event, r Reducer[S]) (S, error) {
	return AggregateUntil(evts, r, time.Time{})
}

// AggregateUntil folds only events created at or before cutoff. A zero cutoff folds
// everything.
func AggregateUntil[S any](evts []events.Event, r Reducer[S], cutoff time.Time) (S, error) {
	state := r.Empty()
	vocab := r.Vocabulary()
	for _, e := range evts {
		if !cutoff.IsZero() && e.CreatedAt.After(cutoff) {
			continue
		}
		next, err := apply(r, vocab, state, e)
		if err != nil {
			var zero S
			return zero, err
		}
		state = next
	}
	return state, nil
}

func apply[S any](r Reducer[S], vocab events.Vocabulary, state S, e events.Event) (S, error) {
	kind, ok := vocab.Kind(e.Type)
	if !ok {
		return state, errs.New(errs.CodeSchemaDrift, "eventsource.aggregate",
			fmt.Sprintf("stream %s: event %s has type %q outside the %s vocabulary", e.StreamID, e.ID, e.Type, vocab.Prefix()), nil)
	}
	var (
		next S
		err  error
	)
	switch kind {
	case events.KindCreated:
		next, err = r.Created(state, e)
	case events.KindUpdated:
		next, err = r.Updated(state, e)
	case events.KindSigned:
		next, err = r.Signed(state, e)
	case events.KindDeleted:
		next, err = r.Deleted(state, e)
	case events.KindRevisionApplied:
		next, err = r.RevisionApplied(state, e)
	default:
		return state, errs.New(errs.CodeSchemaDrift, "eventsource.aggregate", fmt.Sprintf("unhandled kind %v", kind), nil)
	}
	if err != nil {
		return state, errs.Wrap(errs.CodeSchemaDrift, "eventsource.aggregate", err)
	}
	return next, nil
}
