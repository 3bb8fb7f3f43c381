package model

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed user input: a bad name, a non-numeric
// amount, a negative quantity. Recovered locally, no state change.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PreconditionError reports a well-formed request that the character's
// current state cannot satisfy: insufficient funds, materials, action
// points or ability rank, an incomplete project, an unknown recipe.
// Recovered locally, no partial mutation.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// Preconditionf builds a PreconditionError from a format string.
func Preconditionf(format string, args ...any) error {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}

// IsPrecondition reports whether err is (or wraps) a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// IntegrityFault reports corrupted game data: a negative computed cost,
// a recipe or material that vanished from the catalog mid-operation.
// Not user-recoverable; the operation aborts and staff must be alerted.
type IntegrityFault struct {
	Msg string
}

func (e *IntegrityFault) Error() string { return e.Msg }

// Integrityf builds an IntegrityFault from a format string.
func Integrityf(format string, args ...any) error {
	return &IntegrityFault{Msg: fmt.Sprintf(format, args...)}
}

// IsIntegrity reports whether err is (or wraps) an IntegrityFault.
func IsIntegrity(err error) bool {
	var fe *IntegrityFault
	return errors.As(err, &fe)
}
