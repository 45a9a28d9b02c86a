// Package guard decides whether an update may be applied to a document given the lifecycle
// signatures already on it.
package guard

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/trackdechets/bsd-events/internal/domain/fields"
)

// Violation is a changed field frozen by a signed checkpoint.
type Violation struct {
	Path       fields.Path `json:"path"`
	Checkpoint string      `json:"checkpoint"`
}

// SealedFieldsError lists every sealed field an update tried to change, sorted by path.
type SealedFieldsError struct {
	Violations []Violation
}

func (e *SealedFieldsError) Paths() []fields.Path {
	out := make([]fields.Path, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Path)
	}
	return out
}

func (e *SealedFieldsError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, string(v.Path))
	}
	return fmt.Sprintf("fields sealed by a signature cannot be changed: %s",
		strings.Join(parts, ", "))
}

// Guard checks updates of document type T.
type Guard[T any] struct {
	checkpoints []Checkpoint
}

// New validates cps against T's fields. Checkpoints must be ordered earliest first.
func New[T any](cps []Checkpoint) (*Guard[T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if err := validate(t, cps); err != nil {
		return nil, err
	}
	return &Guard[T]{checkpoints: append([]Checkpoint(nil), cps...)}, nil
}

// claim returns the index of the earliest checkpoint locking p, or -1.
func (g *Guard[T]) claim(p fields.Path) int {
	for i, cp := range g.checkpoints {
		for _, lock := range cp.Locks {
			if lock.Covers(p) {
				return i
			}
		}
	}
	return -1
}

// lastSealed returns the index of the latest checkpoint signed on current, or -1.
func (g *Guard[T]) lastSealed(current T) int {
	for i := len(g.checkpoints) - 1; i >= 0; i-- {
		if _, ok := fields.Lookup(current, g.checkpoints[i].SealedBy); ok {
			return i
		}
	}
	return -1
}

// Sealed lists the names of the checkpoints signed on current.
func (g *Guard[T]) Sealed(current T) []string {
	var out []string
	for _, cp := range g.checkpoints {
		if _, ok := fields.Lookup(current, cp.SealedBy); ok {
			out = append(out, cp.Name)
		}
	}
	return out
}

// CheckEditable returns nil when update only changes fields that are still open on current,
// or a *SealedFieldsError with every violation. Fields resubmitted unchanged are ignored.
func (g *Guard[T]) CheckEditable(update T, current T) error {
	last := g.lastSealed(current)
	if last < 0 {
		return nil
	}
	var violations []Violation
	for _, p := range fields.Diff(current, update) {
		i := g.claim(p)
		if i < 0 || i > last {
			continue
		}
		violations = append(violations, Violation{Path: p, Checkpoint: g.checkpoints[i].Name})
	}
	if len(violations) == 0 {
		return nil
	}
	sort.Slice(violations, func(i, j int) bool { return violations[i].Path < violations[j].Path })
	return &SealedFieldsError{Violations: violations}
}
