package apierr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/trackdechets/bsd-events/internal/domain/errs"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{errs.New(errs.CodeValidation, "op", "bad at", nil), http.StatusBadRequest, "bad at"},
		{errs.New(errs.CodeNotFound, "op", "stream not found", nil), http.StatusNotFound, "stream not found"},
		{errs.New(errs.CodeSealedFields, "op", "fields sealed", nil), http.StatusUnprocessableEntity, "fields sealed"},
		{errs.New(errs.CodeRetryable, "op", "dial tcp: refused", nil), http.StatusServiceUnavailable, "service temporarily unavailable"},
		{errs.New(errs.CodeSchemaDrift, "op", "unknown type", nil), http.StatusInternalServerError, "internal server error"},
		{errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		got := FromError(tc.err)
		if got.Status != tc.status {
			t.Fatalf("%v: want=%d got=%d", tc.err, tc.status, got.Status)
		}
		if got.PublicMessage() != tc.msg {
			t.Fatalf("%v: want=%q got=%q", tc.err, tc.msg, got.PublicMessage())
		}
	}
	if FromError(nil) != nil {
		t.Fatalf("nil should map to nil")
	}
}
