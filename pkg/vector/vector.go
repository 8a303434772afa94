// Package vector holds the column-major buffers a row reader fills.
//
// Every payload array is densely packed: it has one slot per present
// element, so a consumer advances its data index only on non-null positions.
// The validity bitmap has one byte per element (0 = null) and is nil when
// the batch has no nulls.
package vector

import (
	"fmt"
	"time"
)

// Batch is one column of one decoded batch.
type Batch interface {
	NumElements() int
	// NotNull returns the validity bitmap, or nil when every element is present.
	NotNull() []byte
}

// As asserts that b is a B, reporting the actual type otherwise.
func As[B Batch](b Batch) (B, error) {
	v, ok := b.(B)
	if !ok {
		var zero B
		return zero, fmt.Errorf("expected %T, got %T", zero, b)
	}
	return v, nil
}

// Validity is embedded by every batch type.
type Validity struct {
	Count int
	Bits  []byte
}

func (v *Validity) NumElements() int { return v.Count }
func (v *Validity) NotNull() []byte  { return v.Bits }
func (v *Validity) HasNulls() bool   { return v.Bits != nil }

// Present reports whether element i is not null.
func (v *Validity) Present(i int) bool { return v.Bits == nil || v.Bits[i] != 0 }

func (v *Validity) reset() {
	v.Count = 0
	v.Bits = nil
}

// push records one more element. The bitmap is only materialized once
// the first null shows up.
func (v *Validity) push(valid bool) {
	if !valid && v.Bits == nil {
		v.Bits = make([]byte, v.Count, v.Count+16)
		for i := range v.Bits {
			v.Bits[i] = 1
		}
	}
	if v.Bits != nil {
		b := byte(0)
		if valid {
			b = 1
		}
		v.Bits = append(v.Bits, b)
	}
	v.Count++
}

// LongBatch backs Boolean, Byte, Short, Int, Long and Date columns.
type LongBatch struct {
	Validity
	Data []int64
}

func (b *LongBatch) Reset() {
	b.reset()
	b.Data = b.Data[:0]
}

func (b *LongBatch) Append(v int64, valid bool) {
	b.push(valid)
	if valid {
		b.Data = append(b.Data, v)
	}
}

func (b *LongBatch) AppendNull() { b.Append(0, false) }

// DoubleBatch backs Float and Double columns.
type DoubleBatch struct {
	Validity
	Data []float64
}

func (b *DoubleBatch) Reset() {
	b.reset()
	b.Data = b.Data[:0]
}

func (b *DoubleBatch) Append(v float64, valid bool) {
	b.push(valid)
	if valid {
		b.Data = append(b.Data, v)
	}
}

func (b *DoubleBatch) AppendNull() { b.Append(0, false) }

// StringBatch backs String, Varchar, Char and Binary columns. Start and
// Length address Blob.
type StringBatch struct {
	Validity
	Blob   []byte
	Start  []int64
	Length []int64
}

func (b *StringBatch) Reset() {
	b.reset()
	b.Blob = b.Blob[:0]
	b.Start = b.Start[:0]
	b.Length = b.Length[:0]
}

// Append copies v into the blob.
func (b *StringBatch) Append(v []byte, valid bool) {
	b.push(valid)
	if valid {
		b.Start = append(b.Start, int64(len(b.Blob)))
		b.Length = append(b.Length, int64(len(v)))
		b.Blob = append(b.Blob, v...)
	}
}

func (b *StringBatch) AppendString(v string, valid bool) {
	b.push(valid)
	if valid {
		b.Start = append(b.Start, int64(len(b.Blob)))
		b.Length = append(b.Length, int64(len(v)))
		b.Blob = append(b.Blob, v...)
	}
}

func (b *StringBatch) AppendNull() { b.Append(nil, false) }

// Bytes returns the d-th present value without copying. It is never nil.
func (b *StringBatch) Bytes(d int) []byte {
	if b.Blob == nil {
		return []byte{}
	}
	start := b.Start[d]
	end := start + b.Length[d]
	return b.Blob[start:end:end]
}

// Timestamp is a point in time as seconds and nanoseconds since 1970-01-01 UTC.
type Timestamp struct {
	Seconds int64
	Nanos   int64
}

func (t Timestamp) Time() time.Time { return time.Unix(t.Seconds, t.Nanos).UTC() }

func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int64(t.Nanosecond())}
}

// Date counts days since 1970-01-01.
type Date int64

func (d Date) Time() time.Time { return time.Unix(0, 0).UTC().AddDate(0, 0, int(d)) }

func (d Date) String() string { return d.Time().Format(time.DateOnly) }

type TimestampBatch struct {
	Validity
	Seconds []int64
	Nanos   []int64
}

func (b *TimestampBatch) Reset() {
	b.reset()
	b.Seconds = b.Seconds[:0]
	b.Nanos = b.Nanos[:0]
}

func (b *TimestampBatch) Append(v Timestamp, valid bool) {
	b.push(valid)
	if valid {
		b.Seconds = append(b.Seconds, v.Seconds)
		b.Nanos = append(b.Nanos, v.Nanos)
	}
}

func (b *TimestampBatch) AppendNull() { b.Append(Timestamp{}, false) }

// Decimal64Batch holds unscaled values of at most 18 digits.
type Decimal64Batch struct {
	Validity
	Precision int32
	Scale     int32
	Data      []int64
}

func (b *Decimal64Batch) Reset() {
	b.reset()
	b.Data = b.Data[:0]
}

func (b *Decimal64Batch) Append(unscaled int64, valid bool) {
	b.push(valid)
	if valid {
		b.Data = append(b.Data, unscaled)
	}
}

func (b *Decimal64Batch) AppendNull() { b.Append(0, false) }

// Decimal128Batch holds unscaled values split into a signed high half
// and an unsigned low half.
type Decimal128Batch struct {
	Validity
	Precision int32
	Scale     int32
	High      []int64
	Low       []uint64
}

func (b *Decimal128Batch) Reset() {
	b.reset()
	b.High = b.High[:0]
	b.Low = b.Low[:0]
}

func (b *Decimal128Batch) Append(hi int64, lo uint64, valid bool) {
	b.push(valid)
	if valid {
		b.High = append(b.High, hi)
		b.Low = append(b.Low, lo)
	}
}

func (b *Decimal128Batch) AppendNull() { b.Append(0, 0, false) }

// ListBatch has one offset per present row plus one; the d-th present row
// spans Elements[Offsets[d]:Offsets[d+1]].
type ListBatch struct {
	Validity
	Offsets  []int64
	Elements Batch
}

func (b *ListBatch) Reset() {
	b.reset()
	b.Offsets = b.Offsets[:0]
}

// Append records a row of length elements. The caller appends the
// elements themselves to b.Elements.
func (b *ListBatch) Append(length int, valid bool) {
	b.push(valid)
	if valid {
		b.Offsets = appendOffset(b.Offsets, length)
	}
}

func (b *ListBatch) AppendNull() { b.Append(0, false) }

// MapBatch shares the ListBatch offset layout over parallel key and value batches.
type MapBatch struct {
	Validity
	Offsets []int64
	Keys    Batch
	Values  Batch
}

func (b *MapBatch) Reset() {
	b.reset()
	b.Offsets = b.Offsets[:0]
}

func (b *MapBatch) Append(length int, valid bool) {
	b.push(valid)
	if valid {
		b.Offsets = appendOffset(b.Offsets, length)
	}
}

func (b *MapBatch) AppendNull() { b.Append(0, false) }

func appendOffset(offsets []int64, length int) []int64 {
	if len(offsets) == 0 {
		offsets = append(offsets, 0)
	}
	return append(offsets, offsets[len(offsets)-1]+int64(length))
}

// StructBatch has one child per field, each with the parent's element count.
type StructBatch struct {
	Validity
	Fields []Batch
}

func (b *StructBatch) Reset() { b.reset() }

// Append records a row. The caller appends one element to every field,
// a null one when the row itself is null.
func (b *StructBatch) Append(valid bool) { b.push(valid) }

// UnionBatch stores, per present row, the variant tag and the index of the
// value inside that variant's child.
type UnionBatch struct {
	Validity
	Tags     []byte
	Offsets  []int64
	Children []Batch
}

func (b *UnionBatch) Reset() {
	b.reset()
	b.Tags = b.Tags[:0]
	b.Offsets = b.Offsets[:0]
}

func (b *UnionBatch) Append(tag byte, offset int64, valid bool) {
	b.push(valid)
	if valid {
		b.Tags = append(b.Tags, tag)
		b.Offsets = append(b.Offsets, offset)
	}
}

// Resetter is implemented by every batch type of this package.
type Resetter interface {
	Batch
	Reset()
}

// ResetTree empties b and all its descendants, keeping their capacity.
func ResetTree(b Batch) {
	if r, ok := b.(Resetter); ok {
		r.Reset()
	}
	switch b := b.(type) {
	case *ListBatch:
		ResetTree(b.Elements)
	case *MapBatch:
		ResetTree(b.Keys)
		ResetTree(b.Values)
	case *StructBatch:
		for _, f := range b.Fields {
			ResetTree(f)
		}
	case *UnionBatch:
		for _, c := range b.Children {
			ResetTree(c)
		}
	}
}
