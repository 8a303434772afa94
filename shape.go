// Package orcrow decodes column-major batches into typed Go rows.
//
// A Shape describes how one Go type is read from one column kind. Shapes
// compose: List, Map and Nullable wrap other shapes, and Struct builds a
// record shape from a table of fields. Decoding writes straight into the
// caller's storage through Target, so nested records are filled in one
// pass without per-column intermediate arrays.
package orcrow

import (
	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

// Target is fixed-length addressable storage that can be walked any
// number of times.
type Target[T any] interface {
	Len() int
	At(i int) *T
}

// Slice adapts a slice to Target.
type Slice[T any] []T

func (s Slice[T]) Len() int    { return len(s) }
func (s Slice[T]) At(i int) *T { return &s[i] }

type projection[T, F any] struct {
	dst Target[T]
	get func(*T) *F
}

func (p projection[T, F]) Len() int    { return p.dst.Len() }
func (p projection[T, F]) At(i int) *F { return p.get(p.dst.At(i)) }

// Project views one field of every element of dst. Nothing is copied.
func Project[T, F any](dst Target[T], get func(*T) *F) Target[F] {
	return projection[T, F]{dst: dst, get: get}
}

// Shape reads values of type T from batches.
type Shape[T any] interface {
	// Name is used in diagnostics.
	Name() string
	// CheckKind returns an ErrIncompatibleKind error describing every
	// reason k cannot be decoded as T.
	CheckKind(k kind.Kind) error
	// Decode fills dst with the batch, failing on any null.
	Decode(src vector.Batch, dst Target[T]) error
	// DecodeNullable fills dst with the batch, nulls becoming None.
	DecodeNullable(src vector.Batch, dst Target[Option[T]]) error
}

// columnar is implemented by record shapes.
type columnar interface {
	Columns() []string
}

// prepare asserts the batch type and that dst can hold it.
func prepare[B vector.Batch](name string, src vector.Batch, slots int) (B, int, error) {
	b, ok := src.(B)
	if !ok {
		var zero B
		return zero, 0, ErrMismatchedColumnKind.New(name, src)
	}
	n := src.NumElements()
	if slots < n {
		var zero B
		return zero, 0, ErrLengthMismatch.New(name, slots, n)
	}
	return b, n, nil
}
