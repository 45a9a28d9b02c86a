package bsd

import (
	"fmt"
	"strings"
)

// DocumentType names a kind of tracking document. Each has its own event vocabulary,
// reducer and lifecycle checkpoints.
type DocumentType string

const (
	TypeForm DocumentType = "form"
	TypeBsda DocumentType = "bsda"
)

func ParseDocumentType(raw string) (DocumentType, error) {
	switch DocumentType(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeForm, "bsdd":
		return TypeForm, nil
	case TypeBsda:
		return TypeBsda, nil
	}
	return "", fmt.Errorf("unknown document type %q", raw)
}

func ptr[T any](v T) *T { return &v }
