// Package errs defines the error taxonomy shared by the event engine.
//
// Codes describe how a caller should react: schema drift is a programmer error, retryable
// errors come from infrastructure, sealed_fields carries user-facing validation detail.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

type Code string

const (
	CodeValidation   Code = "validation"
	CodeNotFound     Code = "not_found"
	CodeSchemaDrift  Code = "schema_drift"
	CodeSealedFields Code = "sealed_fields"
	CodeRetryable    Code = "retryable"
	CodeInternal     Code = "internal"
)

// Error is the canonical coded error wrapper.
type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates err with code semantics. An err that already carries a code keeps it.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) {
		return err
	}
	return New(code, op, err.Error(), err)
}

func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

func CodeOf(err error) Code {
	var coded *Error
	if !errors.As(err, &coded) {
		return ""
	}
	return coded.Code
}
