package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/trackdechets/bsd-events/internal/domain/errs"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

var statusByCode = map[errs.Code]int{
	errs.CodeValidation:   http.StatusBadRequest,
	errs.CodeNotFound:     http.StatusNotFound,
	errs.CodeSealedFields: http.StatusUnprocessableEntity,
	errs.CodeRetryable:    http.StatusServiceUnavailable,
	errs.CodeSchemaDrift:  http.StatusInternalServerError,
	errs.CodeInternal:     http.StatusInternalServerError,
}

// FromError maps a coded error to its HTTP status. Server-side failures get a generic
// message; the cause stays on Err for logging.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var api *Error
	if errors.As(err, &api) {
		return api
	}
	code := errs.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
		code = errs.CodeInternal
	}
	return &Error{Status: status, Code: string(code), Err: err}
}

// PublicMessage is what a client may see for e.
func (e *Error) PublicMessage() string {
	if e.Status >= http.StatusInternalServerError {
		switch e.Status {
		case http.StatusServiceUnavailable:
			return "service temporarily unavailable"
		default:
			return "internal server error"
		}
	}
	var coded *errs.Error
	if errors.As(e.Err, &coded) && coded.Message != "" {
		return coded.Message
	}
	return e.Error()
}
