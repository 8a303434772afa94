package vector

import (
	"fmt"

	"github.com/rawbytedev/orcrow/internal/common"
	"github.com/rawbytedev/orcrow/pkg/kind"
)

// New returns an empty batch tree able to hold columns of kind k.
// Decimals of more than 18 digits get the 128-bit representation.
func New(k kind.Kind, capacity int) Batch {
	switch k.Tag() {
	case kind.Boolean, kind.Byte, kind.Short, kind.Int, kind.Long, kind.Date:
		return &LongBatch{Data: make([]int64, 0, capacity)}
	case kind.Float, kind.Double:
		return &DoubleBatch{Data: make([]float64, 0, capacity)}
	case kind.String, kind.Binary, kind.Varchar, kind.Char:
		return &StringBatch{Start: make([]int64, 0, capacity), Length: make([]int64, 0, capacity)}
	case kind.Timestamp, kind.TimestampInstant:
		return &TimestampBatch{Seconds: make([]int64, 0, capacity), Nanos: make([]int64, 0, capacity)}
	case kind.Decimal:
		if k.Precision() <= 18 {
			return &Decimal64Batch{Precision: int32(k.Precision()), Scale: int32(k.Scale()), Data: make([]int64, 0, capacity)}
		}
		return &Decimal128Batch{Precision: int32(k.Precision()), Scale: int32(k.Scale())}
	case kind.List:
		return &ListBatch{Elements: New(k.Elem(), capacity)}
	case kind.Map:
		return &MapBatch{Keys: New(k.Key(), capacity), Values: New(k.Value(), capacity)}
	case kind.Struct:
		fields := make([]Batch, len(k.Fields()))
		for i, f := range k.Fields() {
			fields[i] = New(f.Kind, capacity)
		}
		return &StructBatch{Fields: fields}
	case kind.Union:
		children := make([]Batch, len(k.Variants()))
		for i, v := range k.Variants() {
			children[i] = New(v, capacity)
		}
		return &UnionBatch{Children: children}
	}
	panic("vector: no batch for " + k.String())
}

// CopyRows appends rows [from, to) of src to dst, which must have the same
// shape. List and map offsets are rebased onto dst's children.
func CopyRows(dst, src Batch, from, to int) error {
	if from < 0 || to > src.NumElements() || from > to {
		return fmt.Errorf("row range %d..%d out of %d elements", from, to, src.NumElements())
	}
	switch s := src.(type) {
	case *LongBatch:
		d, err := As[*LongBatch](dst)
		if err != nil {
			return err
		}
		copyScalar(&s.Validity, from, to, func(i int, ok bool) {
			if ok {
				d.Append(s.Data[i], true)
			} else {
				d.AppendNull()
			}
		})
	case *DoubleBatch:
		d, err := As[*DoubleBatch](dst)
		if err != nil {
			return err
		}
		copyScalar(&s.Validity, from, to, func(i int, ok bool) {
			if ok {
				d.Append(s.Data[i], true)
			} else {
				d.AppendNull()
			}
		})
	case *StringBatch:
		d, err := As[*StringBatch](dst)
		if err != nil {
			return err
		}
		copyScalar(&s.Validity, from, to, func(i int, ok bool) {
			if ok {
				d.Append(s.Bytes(i), true)
			} else {
				d.AppendNull()
			}
		})
	case *TimestampBatch:
		d, err := As[*TimestampBatch](dst)
		if err != nil {
			return err
		}
		copyScalar(&s.Validity, from, to, func(i int, ok bool) {
			if ok {
				d.Append(s.at(i), true)
			} else {
				d.AppendNull()
			}
		})
	case *Decimal64Batch:
		d, err := As[*Decimal64Batch](dst)
		if err != nil {
			return err
		}
		d.Precision, d.Scale = s.Precision, s.Scale
		copyScalar(&s.Validity, from, to, func(i int, ok bool) {
			if ok {
				d.Append(s.Data[i], true)
			} else {
				d.AppendNull()
			}
		})
	case *Decimal128Batch:
		d, err := As[*Decimal128Batch](dst)
		if err != nil {
			return err
		}
		d.Precision, d.Scale = s.Precision, s.Scale
		copyScalar(&s.Validity, from, to, func(i int, ok bool) {
			if ok {
				d.Append(s.High[i], s.Low[i], true)
			} else {
				d.AppendNull()
			}
		})
	case *ListBatch:
		d, err := As[*ListBatch](dst)
		if err != nil {
			return err
		}
		lo, hi := copyOffsets(&s.Validity, s.Offsets, from, to, d.Append)
		return CopyRows(d.Elements, s.Elements, lo, hi)
	case *MapBatch:
		d, err := As[*MapBatch](dst)
		if err != nil {
			return err
		}
		lo, hi := copyOffsets(&s.Validity, s.Offsets, from, to, d.Append)
		if err := CopyRows(d.Keys, s.Keys, lo, hi); err != nil {
			return err
		}
		return CopyRows(d.Values, s.Values, lo, hi)
	case *StructBatch:
		d, err := As[*StructBatch](dst)
		if err != nil {
			return err
		}
		if len(d.Fields) != len(s.Fields) {
			return fmt.Errorf("struct has %d fields, destination has %d", len(s.Fields), len(d.Fields))
		}
		for i := from; i < to; i++ {
			d.Append(s.Present(i))
		}
		for j := range s.Fields {
			if err := CopyRows(d.Fields[j], s.Fields[j], from, to); err != nil {
				return err
			}
		}
	case *UnionBatch:
		d, err := As[*UnionBatch](dst)
		if err != nil {
			return err
		}
		var failed error
		copyScalar(&s.Validity, from, to, func(i int, ok bool) {
			if failed != nil {
				return
			}
			if !ok {
				d.Append(0, 0, false)
				return
			}
			tag, off := int(s.Tags[i]), int(s.Offsets[i])
			child := d.Children[tag]
			d.Append(byte(tag), int64(child.NumElements()), true)
			failed = CopyRows(child, s.Children[tag], off, off+1)
		})
		return failed
	default:
		return fmt.Errorf("cannot copy rows of %T", src)
	}
	return nil
}

// copyScalar calls fn for rows [from, to) with the data index of present rows.
func copyScalar(v *Validity, from, to int, fn func(d int, ok bool)) {
	d := common.CountNotNull(v.Bits, 0, from)
	for i := from; i < to; i++ {
		if !v.Present(i) {
			fn(-1, false)
			continue
		}
		fn(d, true)
		d++
	}
}

// copyOffsets re-appends rows [from, to) through add and returns the child
// element span they cover.
func copyOffsets(v *Validity, offsets []int64, from, to int, add func(length int, valid bool)) (lo, hi int) {
	first := common.CountNotNull(v.Bits, 0, from)
	d := first
	for i := from; i < to; i++ {
		if !v.Present(i) {
			add(0, false)
			continue
		}
		add(int(offsets[d+1]-offsets[d]), true)
		d++
	}
	if d == first {
		return 0, 0
	}
	return int(offsets[first]), int(offsets[d])
}
