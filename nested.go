package orcrow

import (
	"fmt"
	"iter"

	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

type listShape[T any] struct {
	elem Shape[T]
}

// List reads List columns. Every row's slice shares one backing array per
// batch and is capacity-capped, so appending to it never clobbers the next row.
func List[T any](elem Shape[T]) Shape[[]T] {
	return listShape[T]{elem: elem}
}

func (s listShape[T]) Name() string { return "[]" + s.elem.Name() }

func (s listShape[T]) CheckKind(k kind.Kind) error {
	if k.Tag() != kind.List {
		return ErrIncompatibleKind.New("Must be a List, not " + k.String())
	}
	return s.elem.CheckKind(k.Elem())
}

func (s listShape[T]) elements(src vector.Batch, slots int) (*vector.ListBatch, []T, error) {
	b, _, err := prepare[*vector.ListBatch](s.Name(), src, slots)
	if err != nil {
		return nil, nil, err
	}
	elems := make([]T, b.Elements.NumElements())
	if err := s.elem.Decode(b.Elements, Slice[T](elems)); err != nil {
		return nil, nil, err
	}
	return b, elems, nil
}

func (s listShape[T]) Decode(src vector.Batch, dst Target[[]T]) error {
	if src.NotNull() != nil {
		if _, _, err := prepare[*vector.ListBatch](s.Name(), src, dst.Len()); err != nil {
			return err
		}
		return ErrUnexpectedNull.New(s.Name())
	}
	b, elems, err := s.elements(src, dst.Len())
	if err != nil {
		return err
	}
	split(b.Ranges(), elems, func(i int, row []T, _ bool) { *dst.At(i) = row })
	return nil
}

func (s listShape[T]) DecodeNullable(src vector.Batch, dst Target[Option[[]T]]) error {
	b, elems, err := s.elements(src, dst.Len())
	if err != nil {
		return err
	}
	split(b.Ranges(), elems, func(i int, row []T, ok bool) { *dst.At(i) = Option[[]T]{Value: row, Valid: ok} })
	return nil
}

// split hands each row its run of elems. Runs must tile elems exactly.
func split[T any](ranges iter.Seq2[vector.Range, bool], elems []T, put func(i int, row []T, ok bool)) {
	i, last := 0, 0
	for r, ok := range ranges {
		if !ok {
			put(i, nil, false)
			i++
			continue
		}
		if r.Start != last {
			panic(fmt.Sprintf("non-continuous list (jumped from offset %d to %d)", last, r.Start))
		}
		if r.End > len(elems) {
			panic("list too short")
		}
		put(i, elems[r.Start:r.End:r.End], true)
		last = r.End
		i++
	}
	if last != len(elems) {
		panic("list too long")
	}
}

// Entry is one key/value pair of a map row.
type Entry[K, V any] struct {
	Key   K
	Value V
}

type mapShape[K, V any] struct {
	key   Shape[K]
	value Shape[V]
}

// Map reads Map columns into entry slices that keep the stored order.
func Map[K, V any](key Shape[K], value Shape[V]) Shape[[]Entry[K, V]] {
	return mapShape[K, V]{key: key, value: value}
}

func (s mapShape[K, V]) Name() string {
	return "[]Entry[" + s.key.Name() + ", " + s.value.Name() + "]"
}

func (s mapShape[K, V]) CheckKind(k kind.Kind) error {
	if k.Tag() != kind.Map {
		return ErrIncompatibleKind.New("Must be a Map, not " + k.String())
	}
	if err := s.key.CheckKind(k.Key()); err != nil {
		return err
	}
	return s.value.CheckKind(k.Value())
}

func (s mapShape[K, V]) entries(src vector.Batch, slots int) (*vector.MapBatch, []Entry[K, V], error) {
	b, _, err := prepare[*vector.MapBatch](s.Name(), src, slots)
	if err != nil {
		return nil, nil, err
	}
	n := b.Keys.NumElements()
	if b.Values.NumElements() != n {
		panic(fmt.Sprintf("map has %d keys but %d values", n, b.Values.NumElements()))
	}
	entries := make([]Entry[K, V], n)
	if err := s.key.Decode(b.Keys, Project(Slice[Entry[K, V]](entries), func(e *Entry[K, V]) *K { return &e.Key })); err != nil {
		return nil, nil, err
	}
	if err := s.value.Decode(b.Values, Project(Slice[Entry[K, V]](entries), func(e *Entry[K, V]) *V { return &e.Value })); err != nil {
		return nil, nil, err
	}
	return b, entries, nil
}

func (s mapShape[K, V]) Decode(src vector.Batch, dst Target[[]Entry[K, V]]) error {
	if src.NotNull() != nil {
		if _, _, err := prepare[*vector.MapBatch](s.Name(), src, dst.Len()); err != nil {
			return err
		}
		return ErrUnexpectedNull.New(s.Name())
	}
	b, entries, err := s.entries(src, dst.Len())
	if err != nil {
		return err
	}
	split(b.Ranges(), entries, func(i int, row []Entry[K, V], _ bool) { *dst.At(i) = row })
	return nil
}

func (s mapShape[K, V]) DecodeNullable(src vector.Batch, dst Target[Option[[]Entry[K, V]]]) error {
	b, entries, err := s.entries(src, dst.Len())
	if err != nil {
		return err
	}
	split(b.Ranges(), entries, func(i int, row []Entry[K, V], ok bool) {
		*dst.At(i) = Option[[]Entry[K, V]]{Value: row, Valid: ok}
	})
	return nil
}

type nullableShape[T any] struct {
	inner Shape[T]
}

// nullable is implemented by shapes whose Decode accepts nulls.
type nullable interface {
	acceptsNulls()
}

func (nullableShape[T]) acceptsNulls() {}

// Nullable makes nulls decode as None instead of failing.
func Nullable[T any](inner Shape[T]) Shape[Option[T]] {
	return nullableShape[T]{inner: inner}
}

func (s nullableShape[T]) Name() string { return "Option[" + s.inner.Name() + "]" }

func (s nullableShape[T]) CheckKind(k kind.Kind) error { return s.inner.CheckKind(k) }

// Columns passes through the inner record's columns, if any.
func (s nullableShape[T]) Columns() []string {
	if c, ok := s.inner.(columnar); ok {
		return c.Columns()
	}
	return nil
}

func (s nullableShape[T]) Decode(src vector.Batch, dst Target[Option[T]]) error {
	return s.inner.DecodeNullable(src, dst)
}

// DecodeNullable on an already nullable shape cannot tell the two null
// levels apart, so both are set from the one bitmap.
func (s nullableShape[T]) DecodeNullable(src vector.Batch, dst Target[Option[Option[T]]]) error {
	if err := s.inner.DecodeNullable(src, Project(dst, func(o *Option[Option[T]]) *Option[T] { return &o.Value })); err != nil {
		return err
	}
	for i := range src.NumElements() {
		o := dst.At(i)
		o.Valid = o.Value.Valid
	}
	return nil
}
