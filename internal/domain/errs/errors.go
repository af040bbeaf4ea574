// Package errs defines the error kinds shared across the ETL and prediction paths.
// Callers wrap a kind with %w and test it with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks network or non-2xx failures talking to the data provider.
	ErrTransport = errors.New("transport error")
	// ErrParse marks a malformed provider payload.
	ErrParse = errors.New("parse error")
	// ErrPersistence marks a database failure.
	ErrPersistence = errors.New("persistence error")
	// ErrNotFound marks an empty store or a missing row.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks malformed caller input.
	ErrValidation = errors.New("validation error")
	// ErrModelLoad marks an unreadable or corrupt model artifact.
	ErrModelLoad = errors.New("model load error")
)

// Wrap tags err with kind, keeping both reachable through errors.Is.
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Wrapf tags a formatted message with kind.
func Wrapf(kind error, format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, a...))
}
