package orcrow

import (
	"bytes"
	"fmt"
	"time"
	"unicode/utf8"
	"unsafe"

	"github.com/shopspring/decimal"

	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

// leaf reads one Go type from one vector type. get receives the data
// index d of a present element and its row i.
type leaf[T any, B vector.Batch] struct {
	name     string
	expected string
	accepts  func(kind.Kind) bool
	get      func(b B, d, i int) (T, error)
}

func exactly(want kind.Kind) func(kind.Kind) bool {
	return want.Equal
}

func (s *leaf[T, B]) Name() string { return s.name }

func (s *leaf[T, B]) CheckKind(k kind.Kind) error {
	if s.accepts(k) {
		return nil
	}
	return ErrIncompatibleKind.New(fmt.Sprintf("%s must be decoded from ORC %s, not ORC %s", s.name, s.expected, k))
}

func (s *leaf[T, B]) Decode(src vector.Batch, dst Target[T]) error {
	b, n, err := prepare[B](s.name, src, dst.Len())
	if err != nil {
		return err
	}
	if b.NotNull() != nil {
		return ErrUnexpectedNull.New(s.name)
	}
	for i := 0; i < n; i++ {
		v, err := s.get(b, i, i)
		if err != nil {
			return err
		}
		*dst.At(i) = v
	}
	return nil
}

func (s *leaf[T, B]) DecodeNullable(src vector.Batch, dst Target[Option[T]]) error {
	b, n, err := prepare[B](s.name, src, dst.Len())
	if err != nil {
		return err
	}
	bits := b.NotNull()
	d := 0
	for i := 0; i < n; i++ {
		if bits != nil && bits[i] == 0 {
			*dst.At(i) = Option[T]{}
			continue
		}
		v, err := s.get(b, d, i)
		if err != nil {
			return err
		}
		*dst.At(i) = Some(v)
		d++
	}
	return nil
}

func integer[T int8 | int16 | int32 | int64](name string, tag kind.Tag) Shape[T] {
	k := kind.Of(tag)
	return &leaf[T, *vector.LongBatch]{
		name:     name,
		expected: k.String(),
		accepts:  exactly(k),
		get:      func(b *vector.LongBatch, d, _ int) (T, error) { return T(b.Data[d]), nil },
	}
}

// Bool reads Boolean columns.
func Bool() Shape[bool] {
	k := kind.Of(kind.Boolean)
	return &leaf[bool, *vector.LongBatch]{
		name:     "bool",
		expected: k.String(),
		accepts:  exactly(k),
		get:      func(b *vector.LongBatch, d, _ int) (bool, error) { return b.Data[d] != 0, nil },
	}
}

// Int8 reads Byte columns.
func Int8() Shape[int8] { return integer[int8]("int8", kind.Byte) }

// Int16 reads Short columns.
func Int16() Shape[int16] { return integer[int16]("int16", kind.Short) }

// Int32 reads Int columns.
func Int32() Shape[int32] { return integer[int32]("int32", kind.Int) }

// Int64 reads Long columns.
func Int64() Shape[int64] { return integer[int64]("int64", kind.Long) }

func Float32() Shape[float32] {
	k := kind.Of(kind.Float)
	return &leaf[float32, *vector.DoubleBatch]{
		name:     "float32",
		expected: k.String(),
		accepts:  exactly(k),
		get:      func(b *vector.DoubleBatch, d, _ int) (float32, error) { return float32(b.Data[d]), nil },
	}
}

func Float64() Shape[float64] {
	k := kind.Of(kind.Double)
	return &leaf[float64, *vector.DoubleBatch]{
		name:     "float64",
		expected: k.String(),
		accepts:  exactly(k),
		get:      func(b *vector.DoubleBatch, d, _ int) (float64, error) { return b.Data[d], nil },
	}
}

func text(k kind.Kind, view bool) Shape[string] {
	name := "string"
	return &leaf[string, *vector.StringBatch]{
		name:     name,
		expected: k.String(),
		accepts:  exactly(k),
		get: func(b *vector.StringBatch, d, i int) (string, error) {
			v := b.Bytes(d)
			if !utf8.Valid(v) {
				return "", ErrInvalidUTF8.New(name, i, v)
			}
			if view {
				return unsafe.String(unsafe.SliceData(v), len(v)), nil
			}
			return string(v), nil
		},
	}
}

// String reads String columns into freshly allocated strings.
func String() Shape[string] { return text(kind.Of(kind.String), false) }

// StringView reads String columns without copying. The strings alias the
// batch and must not be used after the next fill.
func StringView() Shape[string] { return text(kind.Of(kind.String), true) }

// Varchar reads Varchar(n) columns.
func Varchar(n uint64) Shape[string] { return text(kind.VarcharOf(n), false) }

// Char reads Char(n) columns. Padding is kept as stored.
func Char(n uint64) Shape[string] { return text(kind.CharOf(n), false) }

func binary(view bool) Shape[[]byte] {
	k := kind.Of(kind.Binary)
	return &leaf[[]byte, *vector.StringBatch]{
		name:     "[]byte",
		expected: k.String(),
		accepts:  exactly(k),
		get: func(b *vector.StringBatch, d, _ int) ([]byte, error) {
			if view {
				return b.Bytes(d), nil
			}
			return bytes.Clone(b.Bytes(d)), nil
		},
	}
}

// Bytes reads Binary columns into copies.
func Bytes() Shape[[]byte] { return binary(false) }

// BytesView reads Binary columns as sub-slices of the batch, valid until
// the next fill. Each view is capacity-capped.
func BytesView() Shape[[]byte] { return binary(true) }

func instant(tag kind.Tag) Shape[time.Time] {
	k := kind.Of(tag)
	return &leaf[time.Time, *vector.TimestampBatch]{
		name:     "time.Time",
		expected: k.String(),
		accepts:  exactly(k),
		get: func(b *vector.TimestampBatch, d, _ int) (time.Time, error) {
			return vector.Timestamp{Seconds: b.Seconds[d], Nanos: b.Nanos[d]}.Time(), nil
		},
	}
}

// Timestamp reads Timestamp columns as UTC times.
func Timestamp() Shape[time.Time] { return instant(kind.Timestamp) }

// Instant reads TimestampInstant columns as UTC times.
func Instant() Shape[time.Time] { return instant(kind.TimestampInstant) }

func Date() Shape[vector.Date] {
	k := kind.Of(kind.Date)
	return &leaf[vector.Date, *vector.LongBatch]{
		name:     "vector.Date",
		expected: k.String(),
		accepts:  exactly(k),
		get:      func(b *vector.LongBatch, d, _ int) (vector.Date, error) { return vector.Date(b.Data[d]), nil },
	}
}

// Decimal reads Decimal columns of any precision and scale.
func Decimal() Shape[decimal.Decimal] {
	return &leaf[decimal.Decimal, vector.DecimalBatch]{
		name:     "decimal.Decimal",
		expected: "Decimal",
		accepts:  func(k kind.Kind) bool { return k.Tag() == kind.Decimal },
		get: func(b vector.DecimalBatch, d, _ int) (decimal.Decimal, error) {
			return b.Decimal(d), nil
		},
	}
}
