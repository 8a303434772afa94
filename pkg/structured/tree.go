// Package structured turns a filled batch into a typed tree that mirrors
// its kind. Every node borrows the batch it wraps and is valid only until
// that batch is filled again.
package structured

import (
	"fmt"

	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

type ColumnTree interface {
	Kind() kind.Kind
	NumElements() int
}

// LongColumn covers Boolean, Byte, Short, Int, Long and Date.
type LongColumn struct {
	*vector.LongBatch
	kind kind.Kind
}

func (c LongColumn) Kind() kind.Kind { return c.kind }

type DoubleColumn struct {
	*vector.DoubleBatch
	kind kind.Kind
}

func (c DoubleColumn) Kind() kind.Kind { return c.kind }

// StringColumn covers String, Varchar, Char and Binary.
type StringColumn struct {
	*vector.StringBatch
	kind kind.Kind
}

func (c StringColumn) Kind() kind.Kind { return c.kind }

type TimestampColumn struct {
	*vector.TimestampBatch
	kind kind.Kind
}

func (c TimestampColumn) Kind() kind.Kind { return c.kind }

// DecimalColumn wraps whichever decimal representation the reader produced.
type DecimalColumn struct {
	vector.DecimalBatch
	kind kind.Kind
}

func (c DecimalColumn) Kind() kind.Kind { return c.kind }

type ListColumn struct {
	*vector.ListBatch
	kind     kind.Kind
	Elements ColumnTree
}

func (c ListColumn) Kind() kind.Kind { return c.kind }

type MapColumn struct {
	*vector.MapBatch
	kind   kind.Kind
	Keys   ColumnTree
	Values ColumnTree
}

func (c MapColumn) Kind() kind.Kind { return c.kind }

type NamedColumn struct {
	Name   string
	Column ColumnTree
}

// StructColumn holds one child per field, each as long as the struct itself.
type StructColumn struct {
	*vector.StructBatch
	kind    kind.Kind
	Columns []NamedColumn
}

func (c StructColumn) Kind() kind.Kind { return c.kind }

// Column returns the child called name.
func (c StructColumn) Column(name string) (ColumnTree, bool) {
	for _, nc := range c.Columns {
		if nc.Name == name {
			return nc.Column, true
		}
	}
	return nil, false
}

type UnionColumn struct {
	*vector.UnionBatch
	kind     kind.Kind
	Variants []ColumnTree
}

func (c UnionColumn) Kind() kind.Kind { return c.kind }

// Build views b as kind k. A batch that does not match k is a reader bug
// and panics.
func Build(b vector.Batch, k kind.Kind) ColumnTree {
	switch k.Tag() {
	case kind.Boolean, kind.Byte, kind.Short, kind.Int, kind.Long, kind.Date:
		return LongColumn{must[*vector.LongBatch](b, k), k}
	case kind.Float, kind.Double:
		return DoubleColumn{must[*vector.DoubleBatch](b, k), k}
	case kind.String, kind.Varchar, kind.Char, kind.Binary:
		return StringColumn{must[*vector.StringBatch](b, k), k}
	case kind.Timestamp, kind.TimestampInstant:
		return TimestampColumn{must[*vector.TimestampBatch](b, k), k}
	case kind.Decimal:
		d, ok := b.(vector.DecimalBatch)
		if !ok {
			panic(fmt.Sprintf("structured: %s column holds a %T", k, b))
		}
		return DecimalColumn{d, k}
	case kind.List:
		l := must[*vector.ListBatch](b, k)
		return ListColumn{ListBatch: l, kind: k, Elements: Build(l.Elements, k.Elem())}
	case kind.Map:
		m := must[*vector.MapBatch](b, k)
		return MapColumn{MapBatch: m, kind: k, Keys: Build(m.Keys, k.Key()), Values: Build(m.Values, k.Value())}
	case kind.Struct:
		s := must[*vector.StructBatch](b, k)
		if len(s.Fields) != len(k.Fields()) {
			panic(fmt.Sprintf("structured: %s column has %d children", k, len(s.Fields)))
		}
		cols := make([]NamedColumn, len(s.Fields))
		for i, f := range k.Fields() {
			cols[i] = NamedColumn{Name: f.Name, Column: Build(s.Fields[i], f.Kind)}
		}
		return StructColumn{StructBatch: s, kind: k, Columns: cols}
	case kind.Union:
		u := must[*vector.UnionBatch](b, k)
		if len(u.Children) != len(k.Variants()) {
			panic(fmt.Sprintf("structured: %s column has %d children", k, len(u.Children)))
		}
		variants := make([]ColumnTree, len(u.Children))
		for i, v := range k.Variants() {
			variants[i] = Build(u.Children[i], v)
		}
		return UnionColumn{UnionBatch: u, kind: k, Variants: variants}
	}
	panic("structured: unknown kind " + k.String())
}

func must[B vector.Batch](b vector.Batch, k kind.Kind) B {
	typed, err := vector.As[B](b)
	if err != nil {
		panic(fmt.Sprintf("structured: %s column: %v", k, err))
	}
	return typed
}
