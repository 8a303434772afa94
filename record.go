package orcrow

import (
	"fmt"
	"strings"

	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

// FieldSpec binds one column of a record to one field of T. Build it with Field.
type FieldSpec[T any] struct {
	name      string
	check     func(kind.Kind) error
	decode    func(src vector.Batch, dst Target[T]) error
	decodeOpt func(src vector.Batch, parent []byte, dst Target[Option[T]]) error
}

// Field declares that column name is decoded by shape into the field get
// points at.
func Field[T, F any](name string, shape Shape[F], get func(*T) *F) FieldSpec[T] {
	return FieldSpec[T]{
		name:  name,
		check: shape.CheckKind,
		decode: func(src vector.Batch, dst Target[T]) error {
			return shape.Decode(src, Project(dst, get))
		},
		decodeOpt: func(src vector.Batch, parent []byte, dst Target[Option[T]]) error {
			proj := Project(dst, func(o *Option[T]) *F { return get(&o.Value) })
			if _, ok := shape.(nullable); ok || parent == nil || src.NotNull() == nil {
				return shape.Decode(src, proj)
			}
			// The field may be null wherever its parent row is.
			tmp := make([]Option[F], src.NumElements())
			if err := shape.DecodeNullable(src, Slice[Option[F]](tmp)); err != nil {
				return err
			}
			for i, v := range tmp {
				if !v.Valid && parent[i] != 0 {
					return ErrUnexpectedNull.New(shape.Name())
				}
			}
			for i, v := range tmp {
				if v.Valid {
					*proj.At(i) = v.Value
				}
			}
			return nil
		},
	}
}

// Record is the shape of a Go struct decoded from a Struct column, field
// by field in column order.
type Record[T any] struct {
	name   string
	fields []FieldSpec[T]
}

// Struct declares a record shape. Fields must be listed in the column
// order of the file.
func Struct[T any](name string, fields ...FieldSpec[T]) *Record[T] {
	return &Record[T]{name: name, fields: fields}
}

func (r *Record[T]) Name() string { return r.name }

// Columns returns the field names, for use as reader include names.
func (r *Record[T]) Columns() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.name
	}
	return names
}

// CheckKind reports every field that is misnamed, missing or of the wrong
// kind. Columns after the last declared field are ignored.
func (r *Record[T]) CheckKind(k kind.Kind) error {
	if k.Tag() != kind.Struct {
		return ErrIncompatibleKind.New(fmt.Sprintf("%s must be decoded from ORC Struct, not ORC %s", r.name, k))
	}
	got := k.Fields()
	var msgs []string
	for i, f := range r.fields {
		switch {
		case i >= len(got):
			msgs = append(msgs, fmt.Sprintf("Field %s is missing", f.name))
		case got[i].Name != f.name:
			msgs = append(msgs, fmt.Sprintf("Field #%d must be called %s, not %s", i, f.name, got[i].Name))
		default:
			if err := f.check(got[i].Kind); err != nil {
				msgs = append(msgs, fmt.Sprintf("Field %s cannot be decoded: %s", f.name, err))
			}
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return ErrIncompatibleKind.New(r.name + " cannot be decoded:\n\t" + strings.ReplaceAll(strings.Join(msgs, "\n"), "\n", "\n\t"))
}

func (r *Record[T]) columns(src vector.Batch, slots int) (*vector.StructBatch, int, error) {
	b, n, err := prepare[*vector.StructBatch](r.name, src, slots)
	if err != nil {
		return nil, 0, err
	}
	switch {
	case len(b.Fields) < len(r.fields):
		return nil, 0, ErrMissingField.New(r.name, len(r.fields), len(b.Fields))
	case len(b.Fields) > len(r.fields):
		return nil, 0, ErrFieldCountMismatch.New(r.name, len(r.fields), len(b.Fields))
	}
	return b, n, nil
}

func (r *Record[T]) Decode(src vector.Batch, dst Target[T]) error {
	b, n, err := r.columns(src, dst.Len())
	if err != nil {
		return err
	}
	if b.NotNull() != nil {
		return ErrUnexpectedNull.New(r.name)
	}
	var zero T
	for i := 0; i < n; i++ {
		*dst.At(i) = zero
	}
	for j, f := range r.fields {
		if err := f.decode(b.Fields[j], dst); err != nil {
			return &FieldError{Record: r.name, Field: f.name, Err: err}
		}
	}
	return nil
}

func (r *Record[T]) DecodeNullable(src vector.Batch, dst Target[Option[T]]) error {
	b, n, err := r.columns(src, dst.Len())
	if err != nil {
		return err
	}
	bits := b.NotNull()
	for i := 0; i < n; i++ {
		*dst.At(i) = Option[T]{Valid: bits == nil || bits[i] != 0}
	}
	for j, f := range r.fields {
		if err := f.decodeOpt(b.Fields[j], bits, dst); err != nil {
			return &FieldError{Record: r.name, Field: f.name, Err: err}
		}
	}
	if bits != nil {
		var zero T
		for i := 0; i < n; i++ {
			if bits[i] == 0 {
				dst.At(i).Value = zero
			}
		}
	}
	return nil
}
