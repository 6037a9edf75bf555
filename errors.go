package tempo

import (
	"errors"
	"fmt"

	"github.com/xraph/tempo/tempomap"
	"github.com/xraph/tempo/wire"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("tempo: not found")
	ErrAlreadyExists = errors.New("tempo: already exists")
	ErrInvalidInput  = errors.New("tempo: invalid input")

	// Tempo map errors
	ErrTempoMapNotFound = errors.New("tempo: tempo map not found")
	ErrInvalidTempoMap  = tempomap.ErrInvalidMap

	// Store errors
	ErrStoreNotReady   = errors.New("tempo: store not ready")
	ErrStoreClosed     = errors.New("tempo: store is closed")
	ErrMigrationFailed = errors.New("tempo: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("tempo: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying cause.
func (e ValidationError) Unwrap() error { return e.Err }

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "tempo: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("tempo: %d errors occurred", len(e.Errors))
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTempoMapNotFound)
}

// IsInvalid returns true if the error reports rejected input.
func IsInvalid(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidTempoMap)
}

// IsDecodeError returns true if the error came from decoding a byte stream.
func IsDecodeError(err error) bool {
	return errors.Is(err, wire.ErrInsufficientData) ||
		errors.Is(err, wire.ErrTrailingData)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady)
}
