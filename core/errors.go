package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// retryable marks failures of the external stores: nothing was persisted and the
// operation can be attempted again as is.
type retryable struct {
	err error
}

func NewRetryableError(err error) error {
	if err == nil {
		return nil
	}
	return &retryable{err: err}
}

func (r retryable) Error() string { return r.err.Error() }
func (r retryable) Cause() error  { return r.err }

// IsRetryable reports whether a retryable error is found anywhere in err's chain of causes.
func IsRetryable(err error) bool {
	for err != nil {
		if _, ok := err.(*retryable); ok {
			return true
		}
		cause, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		err = cause.Cause()
	}
	return false
}

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
