package bsd_test

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/trackdechets/bsd-events/internal/domain/bsd"
	"github.com/trackdechets/bsd-events/internal/domain/events"
	"github.com/trackdechets/bsd-events/internal/eventsource"
)

var t0 = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

func ev(streamID string, vocab events.Vocabulary, kind events.Kind, offset time.Duration, data string) events.Event {
	return events.Event{
		ID:        streamID + "-" + kind.String() + "-" + offset.String(),
		StreamID:  streamID,
		Type:      vocab.Type(kind),
		Data:      json.RawMessage(data),
		Actor:     "user-1",
		CreatedAt: t0.Add(offset),
	}
}

func s(v string) *string { return &v }

func TestFormScenarioA(t *testing.T) {
	stream := []events.Event{
		ev("X", bsd.FormEvents, events.KindCreated, 0, `{"id":"X","emitterCompanyName":"Test"}`),
		ev("X", bsd.FormEvents, events.KindUpdated, time.Minute, `{"emitterCompanySiret":"000"}`),
		ev("X", bsd.FormEvents, events.KindSigned, 2*time.Minute, `{"status":"PROCESSED"}`),
	}
	got, err := eventsource.Aggregate[bsd.Form](stream, bsd.FormReducer{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	want := bsd.Form{
		ID:                  s("X"),
		EmitterCompanyName:  s("Test"),
		EmitterCompanySiret: s("000"),
		Status:              s("PROCESSED"),
	}
	if !reflect.DeepEqual(got, want) {
		gotJSON, _ := json.Marshal(got)
		t.Fatalf("scenario A: got=%s", gotJSON)
	}
}

func TestFormCreatedDropsRelationsAndServerTimestamps(t *testing.T) {
	stream := []events.Event{
		ev("F1", bsd.FormEvents, events.KindCreated, 0,
			`{"id":"ignored","emitterCompanyName":"Acme","grouping":[{"id":"F0"}],"createdAt":"2020-01-01T00:00:00Z","updatedAt":"2020-01-01T00:00:00Z","emittedAt":"2024-01-31"}`),
	}
	got, err := eventsource.Aggregate[bsd.Form](stream, bsd.FormReducer{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if *got.ID != "F1" {
		t.Fatalf("id should come from the stream: got=%s", *got.ID)
	}
	raw, _ := json.Marshal(got)
	var m map[string]any
	_ = json.Unmarshal(raw, &m)
	for _, k := range []string{"grouping", "createdAt", "updatedAt"} {
		if _, ok := m[k]; ok {
			t.Fatalf("%s should have been discarded: %s", k, raw)
		}
	}
	if got.EmittedAt == nil || !got.EmittedAt.Equal(bsd.Date{Time: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)}) {
		t.Fatalf("date-only string should be coerced: got=%v", got.EmittedAt)
	}
}

func TestFormUpdatedIsDefinedOnly(t *testing.T) {
	stream := []events.Event{
		ev("F1", bsd.FormEvents, events.KindCreated, 0, `{"emitterCompanyName":"Acme","wasteDetailsCode":"01 01 01*"}`),
		ev("F1", bsd.FormEvents, events.KindUpdated, time.Minute, `{"emitterCompanyName":null,"wasteDetailsQuantity":1.5}`),
	}
	got, err := eventsource.Aggregate[bsd.Form](stream, bsd.FormReducer{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if got.EmitterCompanyName == nil || *got.EmitterCompanyName != "Acme" {
		t.Fatalf("null must not overwrite: got=%v", got.EmitterCompanyName)
	}
	if got.WasteDetailsQuantity == nil || *got.WasteDetailsQuantity != 1.5 {
		t.Fatalf("quantity: got=%v", got.WasteDetailsQuantity)
	}
}

func TestFormSignedOnlyTouchesSignatureFields(t *testing.T) {
	stream := []events.Event{
		ev("F1", bsd.FormEvents, events.KindCreated, 0, `{"emitterCompanyName":"Acme"}`),
		ev("F1", bsd.FormEvents, events.KindSigned, time.Minute, `{"status":"SIGNED_BY_PRODUCER","emittedAt":"2024-02-01T09:01:00Z","emittedBy":"Jo","emitterCompanyName":"Hijack"}`),
	}
	got, err := eventsource.Aggregate[bsd.Form](stream, bsd.FormReducer{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if *got.EmitterCompanyName != "Acme" {
		t.Fatalf("signature event overwrote a non-signature field: %s", *got.EmitterCompanyName)
	}
	if *got.Status != "SIGNED_BY_PRODUCER" || *got.EmittedBy != "Jo" || got.EmittedAt == nil {
		t.Fatalf("signature fields missing: %+v", got)
	}
}

func TestScenarioBDeletedKeepsFields(t *testing.T) {
	stream := []events.Event{
		ev("F1", bsd.FormEvents, events.KindCreated, 0, `{"emitterCompanyName":"Acme","status":"DRAFT"}`),
		ev("F1", bsd.FormEvents, events.KindDeleted, time.Minute, `{}`),
	}
	got, err := eventsource.Aggregate[bsd.Form](stream, bsd.FormReducer{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if got.IsDeleted == nil || !*got.IsDeleted {
		t.Fatalf("expected tombstone")
	}
	if *got.EmitterCompanyName != "Acme" || *got.Status != "DRAFT" {
		t.Fatalf("deleted stream lost history: %+v", got)
	}
}

func TestFormRevisionApplied(t *testing.T) {
	stream := []events.Event{
		ev("F1", bsd.FormEvents, events.KindCreated, 0, `{"wasteDetailsCode":"01 01 01*","recipientCap":"CAP-1"}`),
		ev("F1", bsd.FormEvents, events.KindRevisionApplied, time.Hour, `{"revisionRequestId":"R1","content":{"wasteDetailsCode":"02 02 02","recipientCap":null}}`),
	}
	got, err := eventsource.Aggregate[bsd.Form](stream, bsd.FormReducer{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if *got.WasteDetailsCode != "02 02 02" || *got.RecipientCap != "CAP-1" {
		t.Fatalf("revision merge: code=%s cap=%s", *got.WasteDetailsCode, *got.RecipientCap)
	}
}

func TestBsdaNestedFold(t *testing.T) {
	stream := []events.Event{
		ev("BSDA-1", bsd.BsdaEvents, events.KindCreated, 0,
			`{"type":"OTHER_COLLECTIONS","emitter":{"company":{"name":"Acme","siret":"111"}},"forwarding":{"id":"BSDA-0"},"waste":{"code":"06 07 01*"}}`),
		ev("BSDA-1", bsd.BsdaEvents, events.KindUpdated, time.Minute,
			`{"emitter":{"company":{"contact":"Jo"}},"transporter":{"transport":{"plates":["AB-123-CD"]}}}`),
		ev("BSDA-1", bsd.BsdaEvents, events.KindSigned, 2*time.Minute,
			`{"status":"SIGNED_BY_PRODUCER","emitter":{"emission":{"signature":{"author":"Jo","date":"2024-02-01T09:02:00Z"}}}}`),
	}
	got, err := eventsource.Aggregate[bsd.Bsda](stream, bsd.BsdaReducer{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if *got.ID != "BSDA-1" || *got.Type != "OTHER_COLLECTIONS" {
		t.Fatalf("header: %+v", got)
	}
	c := got.Emitter.Company
	if *c.Name != "Acme" || *c.Siret != "111" || *c.Contact != "Jo" {
		t.Fatalf("nested defined-only merge: %+v", c)
	}
	if got.Emitter.Emission == nil || *got.Emitter.Emission.Signature.Author != "Jo" {
		t.Fatalf("emission signature missing")
	}
	if got.Transporter.Transport.Plates[0] != "AB-123-CD" {
		t.Fatalf("plates: %v", got.Transporter.Transport.Plates)
	}
}

func TestRedeliveredEventIsNoop(t *testing.T) {
	created := ev("F1", bsd.FormEvents, events.KindCreated, 0, `{"emitterCompanyName":"Acme"}`)
	updated := ev("F1", bsd.FormEvents, events.KindUpdated, time.Minute, `{"wasteDetailsQuantity":2}`)
	signed := ev("F1", bsd.FormEvents, events.KindSigned, 2*time.Minute, `{"status":"SENT","takenOverAt":"2024-02-01T09:02:00Z"}`)
	revised := ev("F1", bsd.FormEvents, events.KindRevisionApplied, 3*time.Minute, `{"content":{"wasteDetailsQuantity":3}}`)
	deleted := ev("F1", bsd.FormEvents, events.KindDeleted, 4*time.Minute, `{}`)

	once := []events.Event{created, updated, signed, revised, deleted}
	for i := range once {
		twice := append(append([]events.Event{}, once[:i+1]...), once[i:]...)
		a, err := eventsource.Aggregate[bsd.Form](once, bsd.FormReducer{})
		if err != nil {
			t.Fatalf("aggregate once: %v", err)
		}
		b, err := eventsource.Aggregate[bsd.Form](twice, bsd.FormReducer{})
		if err != nil {
			t.Fatalf("aggregate twice: %v", err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("redelivering %s changed the snapshot", once[i].Type)
		}
	}
}

func TestFormEmptyDateDoesNotOverwrite(t *testing.T) {
	stream := []events.Event{
		ev("F1", bsd.FormEvents, events.KindCreated, 0, `{"takenOverAt":"2024-02-01T10:00:00Z"}`),
		ev("F1", bsd.FormEvents, events.KindUpdated, time.Minute, `{"emitterCompanySiret":"000","takenOverAt":""}`),
		ev("F1", bsd.FormEvents, events.KindUpdated, 2*time.Minute, `{"emittedAt":""}`),
	}
	got, err := eventsource.Aggregate[bsd.Form](stream, bsd.FormReducer{})
	if err != nil {
		t.Fatalf("empty date should not break the stream: %v", err)
	}
	if *got.EmitterCompanySiret != "000" {
		t.Fatalf("siret: got=%s", *got.EmitterCompanySiret)
	}
	want := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	if got.TakenOverAt == nil || !got.TakenOverAt.Time.Equal(want) {
		t.Fatalf("takenOverAt: want=%v got=%v", want, got.TakenOverAt)
	}
	if got.EmittedAt != nil {
		t.Fatalf("empty date should stay undefined: got=%v", got.EmittedAt)
	}
}
