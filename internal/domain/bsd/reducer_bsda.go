package bsd

import (
	"encoding/json"

	"github.com/trackdechets/bsd-events/internal/domain/events"
	"github.com/trackdechets/bsd-events/internal/domain/fields"
	"github.com/trackdechets/bsd-events/internal/eventsource"
)

var BsdaEvents = events.NewVocabulary("Bsda")

var _ eventsource.Reducer[Bsda] = BsdaReducer{}

type BsdaReducer struct{}

type bsdaCreated struct {
	Bsda
	Grouping       json.RawMessage `json:"grouping,omitempty"`
	Forwarding     json.RawMessage `json:"forwarding,omitempty"`
	Intermediaries json.RawMessage `json:"intermediaries,omitempty"`
	Transporters   json.RawMessage `json:"transporters,omitempty"`
	CreatedAt      json.RawMessage `json:"createdAt,omitempty"`
	UpdatedAt      json.RawMessage `json:"updatedAt,omitempty"`
}

type bsdaRevision struct {
	RevisionRequestID string `json:"revisionRequestId,omitempty"`
	Content           Bsda   `json:"content"`
}

func (BsdaReducer) Vocabulary() events.Vocabulary { return BsdaEvents }

func (BsdaReducer) Empty() Bsda { return Bsda{} }

func (BsdaReducer) Created(state Bsda, e events.Event) (Bsda, error) {
	payload, err := events.DecodeData[bsdaCreated](e)
	if err != nil {
		return state, err
	}
	next := fields.MergeDefined(state, payload.Bsda)
	next.ID = ptr(e.StreamID)
	return next, nil
}

func (BsdaReducer) Updated(state Bsda, e events.Event) (Bsda, error) {
	payload, err := events.DecodeData[Bsda](e)
	if err != nil {
		return state, err
	}
	payload.ID = nil
	return fields.MergeDefined(state, payload), nil
}

func (BsdaReducer) Signed(state Bsda, e events.Event) (Bsda, error) {
	payload, err := events.DecodeData[BsdaSignature](e)
	if err != nil {
		return state, err
	}
	return fields.MergeDefined(state, payload), nil
}

func (BsdaReducer) Deleted(state Bsda, _ events.Event) (Bsda, error) {
	state.IsDeleted = ptr(true)
	return state, nil
}

func (BsdaReducer) RevisionApplied(state Bsda, e events.Event) (Bsda, error) {
	payload, err := events.DecodeData[bsdaRevision](e)
	if err != nil {
		return state, err
	}
	payload.Content.ID = nil
	return fields.MergeDefined(state, payload.Content), nil
}
