package memfile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rawbytedev/orcrow/internal/common"
	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

// Entry is one map entry passed to Append.
type Entry struct {
	Key   any
	Value any
}

// Variant picks the union child Tag for Value.
type Variant struct {
	Tag   int
	Value any
}

// FromRows builds a file whose rows are given as one []any per row, nil
// standing for a null row.
func FromRows(k kind.Kind, rows []any, stripeRows int) (*File, error) {
	root, ok := vector.New(k, len(rows)).(*vector.StructBatch)
	if !ok {
		return nil, fmt.Errorf("root kind must be a Struct, not %s", k)
	}
	for i, row := range rows {
		if err := Append(root, k, row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return New(k, root, stripeRows)
}

// Append adds the Go value v to b, a batch tree of kind k. Nil appends a null.
//
// Lists take []any, maps []Entry, structs []any in field order and unions
// a Variant. Decimals take decimal.Decimal or a decimal string.
func Append(b vector.Batch, k kind.Kind, v any) error {
	if v == nil {
		appendNull(b, k)
		return nil
	}
	switch k.Tag() {
	case kind.Boolean, kind.Byte, kind.Short, kind.Int, kind.Long, kind.Date:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		return with(b, func(lb *vector.LongBatch) { lb.Append(n, true) })
	case kind.Float, kind.Double:
		var f float64
		switch x := v.(type) {
		case float64:
			f = x
		case float32:
			f = float64(x)
		default:
			return fmt.Errorf("cannot append %T to %s", v, k)
		}
		return with(b, func(db *vector.DoubleBatch) { db.Append(f, true) })
	case kind.String, kind.Varchar, kind.Char, kind.Binary:
		switch x := v.(type) {
		case string:
			return with(b, func(sb *vector.StringBatch) { sb.AppendString(x, true) })
		case []byte:
			return with(b, func(sb *vector.StringBatch) { sb.Append(x, true) })
		}
		return fmt.Errorf("cannot append %T to %s", v, k)
	case kind.Timestamp, kind.TimestampInstant:
		var ts vector.Timestamp
		switch x := v.(type) {
		case vector.Timestamp:
			ts = x
		case time.Time:
			ts = vector.TimestampOf(x)
		default:
			return fmt.Errorf("cannot append %T to %s", v, k)
		}
		return with(b, func(tb *vector.TimestampBatch) { tb.Append(ts, true) })
	case kind.Decimal:
		return appendDecimal(b, k, v)
	case kind.List:
		elems, ok := v.([]any)
		if !ok {
			return fmt.Errorf("cannot append %T to %s", v, k)
		}
		lb, err := vector.As[*vector.ListBatch](b)
		if err != nil {
			return err
		}
		lb.Append(len(elems), true)
		for _, e := range elems {
			if err := Append(lb.Elements, k.Elem(), e); err != nil {
				return err
			}
		}
		return nil
	case kind.Map:
		entries, ok := v.([]Entry)
		if !ok {
			return fmt.Errorf("cannot append %T to %s", v, k)
		}
		mb, err := vector.As[*vector.MapBatch](b)
		if err != nil {
			return err
		}
		mb.Append(len(entries), true)
		for _, e := range entries {
			if err := Append(mb.Keys, k.Key(), e.Key); err != nil {
				return err
			}
			if err := Append(mb.Values, k.Value(), e.Value); err != nil {
				return err
			}
		}
		return nil
	case kind.Struct:
		values, ok := v.([]any)
		if !ok || len(values) != len(k.Fields()) {
			return fmt.Errorf("%s needs %d field values, got %v", k, len(k.Fields()), v)
		}
		sb, err := vector.As[*vector.StructBatch](b)
		if err != nil {
			return err
		}
		sb.Append(true)
		for i, f := range k.Fields() {
			if err := Append(sb.Fields[i], f.Kind, values[i]); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
		return nil
	case kind.Union:
		variant, ok := v.(Variant)
		if !ok || variant.Tag < 0 || variant.Tag >= len(k.Variants()) {
			return fmt.Errorf("cannot append %v to %s", v, k)
		}
		ub, err := vector.As[*vector.UnionBatch](b)
		if err != nil {
			return err
		}
		child := ub.Children[variant.Tag]
		ub.Append(byte(variant.Tag), int64(child.NumElements()), true)
		return Append(child, k.Variants()[variant.Tag], variant.Value)
	}
	return fmt.Errorf("cannot append to %s", k)
}

func with[B vector.Batch](b vector.Batch, fn func(B)) error {
	typed, err := vector.As[B](b)
	if err != nil {
		return err
	}
	fn(typed)
	return nil
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case vector.Date:
		return int64(x), nil
	}
	return 0, fmt.Errorf("cannot append %T to an integer column", v)
}

func appendDecimal(b vector.Batch, k kind.Kind, v any) error {
	var d decimal.Decimal
	switch x := v.(type) {
	case decimal.Decimal:
		d = x
	case string:
		var err error
		if d, err = decimal.NewFromString(x); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot append %T to %s", v, k)
	}
	unscaled := d.Shift(int32(k.Scale())).BigInt()
	switch db := b.(type) {
	case *vector.Decimal64Batch:
		if !unscaled.IsInt64() {
			return fmt.Errorf("%s does not fit %s", d, k)
		}
		db.Append(unscaled.Int64(), true)
	case *vector.Decimal128Batch:
		hi, lo := common.SplitInt128(unscaled)
		db.Append(hi, lo, true)
	default:
		return fmt.Errorf("expected a decimal batch, got %T", b)
	}
	return nil
}

// appendNull adds a null to b. Struct children get a null each so they
// keep the parent's length.
func appendNull(b vector.Batch, k kind.Kind) {
	switch b := b.(type) {
	case *vector.StructBatch:
		b.Append(false)
		for i, f := range k.Fields() {
			appendNull(b.Fields[i], f.Kind)
		}
	case *vector.UnionBatch:
		b.Append(0, 0, false)
	case interface{ AppendNull() }:
		b.AppendNull()
	}
}
