package fields

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

type stamp struct{ time.Time }

func (s *stamp) UnmarshalJSON(b []byte) error { return s.Time.UnmarshalJSON(b) }
func (s stamp) MarshalJSON() ([]byte, error)  { return s.Time.UTC().MarshalJSON() }

type company struct {
	Name  *string `json:"name,omitempty"`
	Siret *string `json:"siret,omitempty"`
}

type signature struct {
	Author *string `json:"author,omitempty"`
	Date   *stamp  `json:"date,omitempty"`
}

type party struct {
	Company   *company   `json:"company,omitempty"`
	Signature *signature `json:"signature,omitempty"`
}

type doc struct {
	ID       *string  `json:"id,omitempty"`
	Status   *string  `json:"status,omitempty"`
	Emitter  *party   `json:"emitter,omitempty"`
	Plates   []string `json:"plates,omitempty"`
	internal string
}

func str(s string) *string { return &s }

func TestSchemaListsLeaves(t *testing.T) {
	got := Schema(reflect.TypeOf(doc{}))
	want := []Path{
		"emitter.company.name",
		"emitter.company.siret",
		"emitter.signature.author",
		"emitter.signature.date",
		"id",
		"plates",
		"status",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("schema: want=%v got=%v", want, got)
	}
	if !Known(got, "emitter.company") || Known(got, "emitter.pickup") {
		t.Fatalf("known: branch should resolve, unknown path should not")
	}
}

func TestMergeDefinedSkipsNilAndClonesBranches(t *testing.T) {
	base := doc{ID: str("X"), Emitter: &party{Company: &company{Name: str("Acme")}}}
	patch := doc{Status: str("SEALED"), Emitter: &party{Company: &company{Siret: str("123")}}}

	merged := MergeDefined(base, patch)

	if *merged.ID != "X" || *merged.Status != "SEALED" {
		t.Fatalf("scalars: got=%+v", merged)
	}
	if *merged.Emitter.Company.Name != "Acme" || *merged.Emitter.Company.Siret != "123" {
		t.Fatalf("nested merge lost fields: %+v", merged.Emitter.Company)
	}
	if base.Emitter.Company.Siret != nil {
		t.Fatalf("base was mutated through a shared pointer")
	}
}

func TestMergeDefinedAcrossTypes(t *testing.T) {
	type sigPatch struct {
		Status  *string `json:"status,omitempty"`
		Emitter *struct {
			Signature *signature `json:"signature,omitempty"`
		} `json:"emitter,omitempty"`
	}
	var p sigPatch
	if err := json.Unmarshal([]byte(`{"status":"SIGNED","emitter":{"signature":{"author":"Jo"}}}`), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	merged := MergeDefined(doc{Emitter: &party{Company: &company{Name: str("Acme")}}}, p)
	if *merged.Status != "SIGNED" || *merged.Emitter.Signature.Author != "Jo" {
		t.Fatalf("signature merge: got=%+v", merged.Emitter)
	}
	if *merged.Emitter.Company.Name != "Acme" {
		t.Fatalf("sibling branch lost")
	}
}

func TestDiffReportsOnlyChangedLeaves(t *testing.T) {
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	paris, _ := time.LoadLocation("Europe/Paris")
	current := doc{
		ID:      str("X"),
		Status:  str("SIGNED"),
		Emitter: &party{Company: &company{Name: str("Acme"), Siret: str("1")}, Signature: &signature{Date: &stamp{at}}},
		Plates:  []string{"AB-123"},
	}
	update := doc{
		Status:  str("SIGNED"),
		Emitter: &party{Company: &company{Name: str("Acme"), Siret: str("2")}, Signature: &signature{Date: &stamp{at.In(paris)}}},
		Plates:  []string{"AB-123", "CD-456"},
	}
	got := Diff(current, update)
	want := []Path{"emitter.company.siret", "plates"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("diff: want=%v got=%v", want, got)
	}
	if len(Diff(current, current)) != 0 {
		t.Fatalf("identical documents must not diff")
	}
}

func TestDiffAgainstMissingBranch(t *testing.T) {
	got := Diff(doc{}, doc{Emitter: &party{Company: &company{Name: str("New")}}})
	if !reflect.DeepEqual(got, []Path{"emitter.company.name"}) {
		t.Fatalf("diff: got=%v", got)
	}
}

func TestLookup(t *testing.T) {
	d := doc{Emitter: &party{Signature: &signature{Author: str("Jo")}}}
	v, ok := Lookup(d, "emitter.signature.author")
	if !ok || v.String() != "Jo" {
		t.Fatalf("lookup author: ok=%v v=%v", ok, v)
	}
	if _, ok := Lookup(d, "emitter.signature.date"); ok {
		t.Fatalf("nil date should not resolve")
	}
	if _, ok := Lookup(d, "emitter.company.name"); ok {
		t.Fatalf("nil branch should not resolve")
	}
	if _, ok := Lookup(d, "plates"); ok {
		t.Fatalf("nil slice should not resolve")
	}
}

func TestPathCovers(t *testing.T) {
	if !Path("emitter").Covers("emitter.company.name") {
		t.Fatalf("ancestor should cover descendant")
	}
	if Path("emitter").Covers("emitterCompanyName") {
		t.Fatalf("prefix without separator must not cover")
	}
}

type optStamp struct{ time.Time }

func (s *optStamp) UnmarshalJSON(b []byte) error {
	if string(b) == `""` {
		return nil
	}
	return s.Time.UnmarshalJSON(b)
}
func (s optStamp) Undefined() bool { return s.Time.IsZero() }

type dated struct {
	Name *string   `json:"name,omitempty"`
	At   *optStamp `json:"at,omitempty"`
}

func TestUndefinedLeafIsNotSubmitted(t *testing.T) {
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	current := dated{Name: str("Acme"), At: &optStamp{at}}

	var update dated
	if err := json.Unmarshal([]byte(`{"name":"Other","at":""}`), &update); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if update.At == nil {
		t.Fatalf("expected an allocated but undefined date")
	}

	merged := MergeDefined(current, update)
	if merged.At == nil || !merged.At.Equal(at) {
		t.Fatalf("undefined date overwrote the current one: got=%v", merged.At)
	}
	if got := Diff(current, update); !reflect.DeepEqual(got, []Path{"name"}) {
		t.Fatalf("diff: want=[name] got=%v", got)
	}
	if _, ok := Lookup(dated{At: &optStamp{}}, "at"); ok {
		t.Fatalf("undefined date should not be found")
	}
}
