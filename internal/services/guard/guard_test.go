package guard

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trackdechets/bsd-events/internal/domain/bsd"
	"github.com/trackdechets/bsd-events/internal/domain/fields"
)

func s(v string) *string { return &v }

func formGuard(t *testing.T) *Guard[bsd.Form] {
	t.Helper()
	rules, err := DefaultRules()
	require.NoError(t, err)
	g, err := New[bsd.Form](rules.Form)
	require.NoError(t, err)
	return g
}

func bsdaGuard(t *testing.T) *Guard[bsd.Bsda] {
	t.Helper()
	rules, err := DefaultRules()
	require.NoError(t, err)
	g, err := New[bsd.Bsda](rules.Bsda)
	require.NoError(t, err)
	return g
}

var signedAt = time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

func transportedForm() bsd.Form {
	return bsd.Form{
		ID:                     s("F1"),
		EmitterCompanyName:     s("Acme"),
		TransporterCompanyName: s("Trucks"),
		TransporterNumberPlate: s("AB-123-CD"),
		TransporterCustomInfo:  s("gate 4"),
		EmittedAt:              bsd.NewDate(signedAt),
		TakenOverAt:            bsd.NewDate(signedAt.Add(time.Hour)),
	}
}

func TestScenarioC(t *testing.T) {
	g := formGuard(t)
	current := transportedForm()

	update := current
	update.TransporterNumberPlate = s("ZZ-999-ZZ")
	err := g.CheckEditable(update, current)
	var sealed *SealedFieldsError
	require.ErrorAs(t, err, &sealed)
	require.Equal(t, []fields.Path{"transporterNumberPlate"}, sealed.Paths())
	require.Equal(t, "transport", sealed.Violations[0].Checkpoint)

	update.TransporterNumberPlate = s("AB-123-CD")
	require.NoError(t, g.CheckEditable(update, current))
}

func TestUnsealedFieldsStayEditable(t *testing.T) {
	g := formGuard(t)
	current := transportedForm()

	update := bsd.Form{TransporterCustomInfo: s("gate 5"), ProcessingOperationDone: s("R 1")}
	require.NoError(t, g.CheckEditable(update, current))
}

func TestReportsEveryViolation(t *testing.T) {
	g := formGuard(t)
	current := transportedForm()

	update := bsd.Form{
		WasteDetailsCode:       s("01 01 01*"),
		EmitterCompanyName:     s("Other"),
		TransporterCompanyName: s("Other trucks"),
		ReceivedBy:             s("not sealed yet"),
	}
	err := g.CheckEditable(update, current)
	var sealed *SealedFieldsError
	require.True(t, errors.As(err, &sealed))
	require.Equal(t, []fields.Path{"emitterCompanyName", "transporterCompanyName", "wasteDetailsCode"}, sealed.Paths())
	require.Contains(t, err.Error(), "emitterCompanyName, transporterCompanyName, wasteDetailsCode")
}

func TestLaterSignatureSealsEarlierCheckpoints(t *testing.T) {
	g := formGuard(t)
	// Paper emission: the transporter signed without an emitter signature on record.
	current := bsd.Form{EmitterCompanyName: s("Acme"), TakenOverAt: bsd.NewDate(signedAt)}

	err := g.CheckEditable(bsd.Form{EmitterCompanyName: s("Other")}, current)
	var sealed *SealedFieldsError
	require.ErrorAs(t, err, &sealed)
	require.Equal(t, "emission", sealed.Violations[0].Checkpoint)
	require.Equal(t, []string{"transport"}, g.Sealed(current))
}

func TestNothingSealedAcceptsAnything(t *testing.T) {
	g := formGuard(t)
	current := bsd.Form{EmitterCompanyName: s("Acme")}
	require.NoError(t, g.CheckEditable(bsd.Form{EmitterCompanyName: s("Other"), EmittedAt: bsd.NewDate(signedAt)}, current))
}

func TestEqualDatesInOtherZonesAreNotChanges(t *testing.T) {
	g := formGuard(t)
	current := transportedForm()
	paris := time.FixedZone("CEST", 2*3600)

	update := bsd.Form{TakenOverAt: bsd.NewDate(signedAt.Add(time.Hour).In(paris))}
	require.NoError(t, g.CheckEditable(update, current))
}

func TestBsdaSubtreeLocks(t *testing.T) {
	g := bsdaGuard(t)
	current := bsd.Bsda{
		Emitter: &bsd.BsdaEmitter{
			Company:    &bsd.Company{Name: s("Acme"), Siret: s("111")},
			CustomInfo: s("free text"),
			Emission: &bsd.BsdaEmission{Signature: &bsd.Signature{
				Author: s("Jo"), Date: bsd.NewDate(signedAt),
			}},
		},
		Waste: &bsd.BsdaWaste{Code: s("06 07 01*")},
	}

	resubmitted := bsd.Bsda{
		Emitter: &bsd.BsdaEmitter{
			Company:    &bsd.Company{Name: s("Acme"), Siret: s("111")},
			CustomInfo: s("edited free text"),
		},
	}
	require.NoError(t, g.CheckEditable(resubmitted, current))

	changed := bsd.Bsda{
		Emitter: &bsd.BsdaEmitter{Company: &bsd.Company{Phone: s("0102030405")}},
		Waste:   &bsd.BsdaWaste{Code: s("17 06 05*")},
	}
	err := g.CheckEditable(changed, current)
	var sealed *SealedFieldsError
	require.ErrorAs(t, err, &sealed)
	require.Equal(t, []fields.Path{"emitter.company.phone", "waste.code"}, sealed.Paths())
}

func TestNewRejectsUnknownPaths(t *testing.T) {
	_, err := New[bsd.Form]([]Checkpoint{{Name: "emission", SealedBy: "emittedAt", Locks: []fields.Path{"emitterCompanyNme"}}})
	require.ErrorContains(t, err, "emitterCompanyNme")

	_, err = New[bsd.Bsda]([]Checkpoint{{Name: "emission", SealedBy: "emitter.emission", Locks: nil}})
	require.ErrorContains(t, err, "sealedBy")

	_, err = New[bsd.Form]([]Checkpoint{
		{Name: "a", SealedBy: "emittedAt"},
		{Name: "a", SealedBy: "takenOverAt"},
	})
	require.ErrorContains(t, err, "duplicate")
}

func TestLoadRulesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
form:
  - name: emission
    sealedBy: emittedAt
    locks: [wasteDetailsCode]
`), 0o600))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules.Form, 1)
	require.Empty(t, rules.Bsda)

	g, err := New[bsd.Form](rules.Form)
	require.NoError(t, err)
	current := bsd.Form{EmittedAt: bsd.NewDate(signedAt), EmitterCompanyName: s("Acme")}
	require.NoError(t, g.CheckEditable(bsd.Form{EmitterCompanyName: s("Other")}, current))

	_, err = LoadRules(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	embedded, err := LoadRules("")
	require.NoError(t, err)
	require.Len(t, embedded.Form, 4)
	require.Len(t, embedded.Bsda, 4)
}
