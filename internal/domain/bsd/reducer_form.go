package bsd

import (
	"encoding/json"

	"github.com/trackdechets/bsd-events/internal/domain/events"
	"github.com/trackdechets/bsd-events/internal/domain/fields"
	"github.com/trackdechets/bsd-events/internal/eventsource"
)

var FormEvents = events.NewVocabulary("Bsdd")

var _ eventsource.Reducer[Form] = FormReducer{}

type FormReducer struct{}

// formCreated names the payload keys a creation carries that never belong on the snapshot:
// nested create-only relations and server-managed timestamps.
type formCreated struct {
	Form
	Grouping       json.RawMessage `json:"grouping,omitempty"`
	Intermediaries json.RawMessage `json:"intermediaries,omitempty"`
	Transporters   json.RawMessage `json:"transporters,omitempty"`
	CreatedAt      json.RawMessage `json:"createdAt,omitempty"`
	UpdatedAt      json.RawMessage `json:"updatedAt,omitempty"`
}

type formRevision struct {
	RevisionRequestID string `json:"revisionRequestId,omitempty"`
	Content           Form   `json:"content"`
}

func (FormReducer) Vocabulary() events.Vocabulary { return FormEvents }

func (FormReducer) Empty() Form { return Form{} }

func (FormReducer) Created(state Form, e events.Event) (Form, error) {
	payload, err := events.DecodeData[formCreated](e)
	if err != nil {
		return state, err
	}
	next := fields.MergeDefined(state, payload.Form)
	next.ID = ptr(e.StreamID)
	return next, nil
}

func (FormReducer) Updated(state Form, e events.Event) (Form, error) {
	payload, err := events.DecodeData[Form](e)
	if err != nil {
		return state, err
	}
	payload.ID = nil
	return fields.MergeDefined(state, payload), nil
}

func (FormReducer) Signed(state Form, e events.Event) (Form, error) {
	payload, err := events.DecodeData[FormSignature](e)
	if err != nil {
		return state, err
	}
	return fields.MergeDefined(state, payload), nil
}

func (FormReducer) Deleted(state Form, _ events.Event) (Form, error) {
	state.IsDeleted = ptr(true)
	return state, nil
}

func (FormReducer) RevisionApplied(state Form, e events.Event) (Form, error) {
	payload, err := events.DecodeData[formRevision](e)
	if err != nil {
		return state, err
	}
	payload.Content.ID = nil
	return fields.MergeDefined(state, payload.Content), nil
}
