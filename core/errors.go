package core

import "github.com/pkg/errors"

// FieldError pins a validation message to one request field; the HTTP
// error handler renders these as a field->message JSON object.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a client error. Err alone renders as a bare
// {"error": ...} envelope; Fields render as per-field messages.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown marks an error as unrecoverable; the server drains and stops
// when it catches one.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
