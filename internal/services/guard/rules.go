package guard

import (
	_ "embed"
	"fmt"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/trackdechets/bsd-events/internal/domain/fields"
)

//go:embed rules.yaml
var defaultRules []byte

// Checkpoint is one lifecycle stage: it is sealed once SealedBy is set on the document.
type Checkpoint struct {
	Name     string        `yaml:"name"`
	SealedBy fields.Path   `yaml:"sealedBy"`
	Locks    []fields.Path `yaml:"locks"`
}

// Rules holds the ordered checkpoints of each document type.
type Rules struct {
	Form []Checkpoint `yaml:"form"`
	Bsda []Checkpoint `yaml:"bsda"`
}

// DefaultRules returns the rules compiled into the binary.
func DefaultRules() (Rules, error) {
	return ParseRules(defaultRules)
}

// LoadRules reads rules from path, or the compiled-in rules when path is empty.
func LoadRules(path string) (Rules, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultRules()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read checkpoint rules: %w", err)
	}
	return ParseRules(raw)
}

func ParseRules(raw []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return Rules{}, fmt.Errorf("parse checkpoint rules: %w", err)
	}
	return r, nil
}

// validate checks every path against the leaves of t.
func validate(t reflect.Type, cps []Checkpoint) error {
	schema := fields.Schema(t)
	leaves := make(map[fields.Path]bool, len(schema))
	for _, p := range schema {
		leaves[p] = true
	}
	seen := map[string]bool{}
	for i, cp := range cps {
		name := strings.TrimSpace(cp.Name)
		if name == "" {
			return fmt.Errorf("%s checkpoint #%d: name is required", t.Name(), i)
		}
		if seen[name] {
			return fmt.Errorf("%s checkpoint %q: duplicate name", t.Name(), name)
		}
		seen[name] = true
		if !leaves[cp.SealedBy] {
			return fmt.Errorf("%s checkpoint %q: sealedBy %q is not a field", t.Name(), name, cp.SealedBy)
		}
		for _, lock := range cp.Locks {
			if !fields.Known(schema, lock) {
				return fmt.Errorf("%s checkpoint %q: lock %q is not a field", t.Name(), name, lock)
			}
		}
	}
	return nil
}
