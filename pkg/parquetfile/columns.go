package parquetfile

import (
	"fmt"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"

	"github.com/rawbytedev/orcrow/internal/common"
	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

// column is the kind of one leaf and how its values land in a batch.
type column struct {
	kind   kind.Kind
	append func(b vector.Batch, v parquet.Value) error
}

func columnOf(f parquet.Field) (column, error) {
	if !f.Leaf() || f.Repeated() {
		return column{}, fmt.Errorf("%w: %s is nested or repeated", ErrUnsupportedColumn, f.Name())
	}
	t := f.Type()
	lt := t.LogicalType()
	if lt == nil {
		lt = &format.LogicalType{}
	}
	switch t.Kind() {
	case parquet.Boolean:
		return longColumn(kind.Boolean, func(v parquet.Value) int64 {
			if v.Boolean() {
				return 1
			}
			return 0
		}), nil
	case parquet.Int32:
		switch {
		case lt.Decimal != nil:
			return decimalColumn(lt.Decimal, func(v parquet.Value) (int64, uint64, bool) { return split64(int64(v.Int32())) }), nil
		case lt.Date != nil:
			return longColumn(kind.Date, int32Of), nil
		case lt.Integer != nil && !lt.Integer.IsSigned:
			return longColumn(unsignedKind(lt.Integer.BitWidth), func(v parquet.Value) int64 { return int64(v.Uint32()) }), nil
		case lt.Integer != nil && lt.Integer.BitWidth == 8:
			return longColumn(kind.Byte, int32Of), nil
		case lt.Integer != nil && lt.Integer.BitWidth == 16:
			return longColumn(kind.Short, int32Of), nil
		}
		return longColumn(kind.Int, int32Of), nil
	case parquet.Int64:
		switch {
		case lt.Decimal != nil:
			return decimalColumn(lt.Decimal, func(v parquet.Value) (int64, uint64, bool) { return split64(v.Int64()) }), nil
		case lt.Timestamp != nil:
			return timestampColumn(lt.Timestamp.Unit), nil
		case lt.Integer != nil && !lt.Integer.IsSigned:
			return column{}, fmt.Errorf("%w: %s is an unsigned 64-bit integer", ErrUnsupportedColumn, f.Name())
		}
		return longColumn(kind.Long, func(v parquet.Value) int64 { return v.Int64() }), nil
	case parquet.Float:
		return doubleColumn(kind.Float, func(v parquet.Value) float64 { return float64(v.Float()) }), nil
	case parquet.Double:
		return doubleColumn(kind.Double, func(v parquet.Value) float64 { return v.Double() }), nil
	case parquet.ByteArray, parquet.FixedLenByteArray:
		switch {
		case lt.Decimal != nil:
			return decimalColumn(lt.Decimal, func(v parquet.Value) (int64, uint64, bool) {
				return common.Int128FromBytes(v.ByteArray())
			}), nil
		case t.Kind() == parquet.ByteArray && (lt.UTF8 != nil || lt.Enum != nil || lt.Json != nil):
			return stringColumn(kind.String), nil
		case t.Kind() == parquet.ByteArray:
			return stringColumn(kind.Binary), nil
		}
	}
	return column{}, fmt.Errorf("%w: %s has type %s", ErrUnsupportedColumn, f.Name(), t)
}

func int32Of(v parquet.Value) int64 { return int64(v.Int32()) }

// unsignedKind widens an unsigned integer to a signed kind that holds it.
func unsignedKind(bits int8) kind.Tag {
	switch bits {
	case 8:
		return kind.Short
	case 16:
		return kind.Int
	}
	return kind.Long
}

func split64(v int64) (int64, uint64, bool) { return v >> 63, uint64(v), true }

func appendNull(b vector.Batch) {
	b.(interface{ AppendNull() }).AppendNull()
}

func longColumn(tag kind.Tag, get func(parquet.Value) int64) column {
	return column{kind: kind.Of(tag), append: func(b vector.Batch, v parquet.Value) error {
		if v.IsNull() {
			appendNull(b)
			return nil
		}
		b.(*vector.LongBatch).Append(get(v), true)
		return nil
	}}
}

func doubleColumn(tag kind.Tag, get func(parquet.Value) float64) column {
	return column{kind: kind.Of(tag), append: func(b vector.Batch, v parquet.Value) error {
		if v.IsNull() {
			appendNull(b)
			return nil
		}
		b.(*vector.DoubleBatch).Append(get(v), true)
		return nil
	}}
}

func stringColumn(tag kind.Tag) column {
	return column{kind: kind.Of(tag), append: func(b vector.Batch, v parquet.Value) error {
		if v.IsNull() {
			appendNull(b)
			return nil
		}
		b.(*vector.StringBatch).Append(v.ByteArray(), true)
		return nil
	}}
}

func timestampColumn(unit format.TimeUnit) column {
	perSecond := int64(1e9)
	switch {
	case unit.Millis != nil:
		perSecond = 1e3
	case unit.Micros != nil:
		perSecond = 1e6
	}
	return column{kind: kind.Of(kind.Timestamp), append: func(b vector.Batch, v parquet.Value) error {
		if v.IsNull() {
			appendNull(b)
			return nil
		}
		ticks := v.Int64()
		sec := ticks / perSecond
		rem := ticks % perSecond
		if rem < 0 {
			sec--
			rem += perSecond
		}
		b.(*vector.TimestampBatch).Append(vector.Timestamp{Seconds: sec, Nanos: rem * (1e9 / perSecond)}, true)
		return nil
	}}
}

// decimalColumn stores unscaled values in the representation the
// precision calls for.
func decimalColumn(d *format.DecimalType, get func(parquet.Value) (hi int64, lo uint64, ok bool)) column {
	k := kind.DecimalOf(uint64(d.Precision), uint64(d.Scale))
	return column{kind: k, append: func(b vector.Batch, v parquet.Value) error {
		if v.IsNull() {
			appendNull(b)
			return nil
		}
		hi, lo, ok := get(v)
		switch b := b.(type) {
		case *vector.Decimal64Batch:
			if !ok || hi != int64(lo)>>63 {
				return fmt.Errorf("unscaled value does not fit %s", k)
			}
			b.Append(int64(lo), true)
		case *vector.Decimal128Batch:
			if !ok {
				return fmt.Errorf("unscaled value does not fit %s", k)
			}
			b.Append(hi, lo, true)
		}
		return nil
	}}
}
