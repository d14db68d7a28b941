package models

import (
	"errors"
	"fmt"
)

// Error constants for candidate operations
var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrMissingContact    = errors.New("candidate record is missing a contact email")
	ErrInvalidStatus     = errors.New("invalid candidate status")
	ErrInvalidKind       = errors.New("invalid communication kind")
	ErrWrongStage        = errors.New("operation not allowed in current lifecycle stage")
)

// TransientError marks a failure of an external surface (folder listing,
// record store, mail gateway) that will clear on its own; a candidate hit
// by one is skipped for the current tick and retried on the next.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure in %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError, preserving nil.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Op: op, Err: err}
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
