package orcrow

import (
	"errors"

	goerrors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrIncompatibleKind carries a CheckKind diagnostic verbatim.
	ErrIncompatibleKind = goerrors.NewKind("%s")

	ErrUnexpectedNull = goerrors.NewKind("%s column contains nulls")

	ErrLengthMismatch = goerrors.NewKind("%s: destination has %d slots, batch has %d elements")

	ErrMissingField = goerrors.NewKind("%s has %d fields, but the batch has only %d columns")

	ErrFieldCountMismatch = goerrors.NewKind("%s has %d fields, but the batch has %d columns")

	// ErrMismatchedColumnKind means the batch is not the vector type the shape reads.
	ErrMismatchedColumnKind = goerrors.NewKind("%s cannot be read from a %T")

	ErrInvalidUTF8 = goerrors.NewKind("%s: element %d is not valid UTF-8: %q")
)

// FieldError locates a decode failure inside a record.
type FieldError struct {
	Record string
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	return e.Record + "." + e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error { return e.Err }

// Is reports whether err, or any error it wraps, is of kind k.
func Is(err error, k *goerrors.Kind) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if k.Is(err) {
			return true
		}
	}
	return false
}
