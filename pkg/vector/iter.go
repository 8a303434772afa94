package vector

import (
	"fmt"
	"iter"

	"github.com/shopspring/decimal"

	"github.com/rawbytedev/orcrow/internal/common"
)

// dense walks n positions, yielding the data index of each present one
// and -1 for nulls.
func dense(n int, bits []byte) iter.Seq2[int, bool] {
	return func(yield func(int, bool) bool) {
		d := 0
		for i := 0; i < n; i++ {
			if bits != nil && bits[i] == 0 {
				if !yield(-1, false) {
					return
				}
				continue
			}
			if !yield(d, true) {
				return
			}
			d++
		}
	}
}

func nullable[V any](v *Validity, at func(d int) V) iter.Seq2[V, bool] {
	return func(yield func(V, bool) bool) {
		var zero V
		for d, ok := range dense(v.Count, v.Bits) {
			if !ok {
				if !yield(zero, false) {
					return
				}
				continue
			}
			if !yield(at(d), true) {
				return
			}
		}
	}
}

func notNull[V any](v *Validity, at func(d int) V) (iter.Seq[V], bool) {
	if v.Bits != nil {
		return nil, false
	}
	return func(yield func(V) bool) {
		for d := 0; d < v.Count; d++ {
			if !yield(at(d)) {
				return
			}
		}
	}, true
}

// Iter yields every element, with false for nulls.
func (b *LongBatch) Iter() iter.Seq2[int64, bool] {
	return nullable(&b.Validity, b.at)
}

// TryIterNotNull yields every element when the batch has no nulls, and
// returns false otherwise.
func (b *LongBatch) TryIterNotNull() (iter.Seq[int64], bool) {
	return notNull(&b.Validity, b.at)
}

func (b *LongBatch) at(d int) int64 { return b.Data[d] }

func (b *DoubleBatch) Iter() iter.Seq2[float64, bool] {
	return nullable(&b.Validity, b.at)
}

func (b *DoubleBatch) TryIterNotNull() (iter.Seq[float64], bool) {
	return notNull(&b.Validity, b.at)
}

func (b *DoubleBatch) at(d int) float64 { return b.Data[d] }

// Iter yields views into the blob. They stay valid until the batch is refilled.
func (b *StringBatch) Iter() iter.Seq2[[]byte, bool] {
	return nullable(&b.Validity, b.Bytes)
}

func (b *StringBatch) TryIterNotNull() (iter.Seq[[]byte], bool) {
	return notNull(&b.Validity, b.Bytes)
}

func (b *TimestampBatch) Iter() iter.Seq2[Timestamp, bool] {
	return nullable(&b.Validity, b.at)
}

func (b *TimestampBatch) TryIterNotNull() (iter.Seq[Timestamp], bool) {
	return notNull(&b.Validity, b.at)
}

func (b *TimestampBatch) at(d int) Timestamp {
	return Timestamp{Seconds: b.Seconds[d], Nanos: b.Nanos[d]}
}

// DecimalBatch is implemented by both decimal representations.
type DecimalBatch interface {
	Batch
	DecimalScale() int32
	// Decimal returns the d-th present value.
	Decimal(d int) decimal.Decimal
	Iter() iter.Seq2[decimal.Decimal, bool]
	TryIterNotNull() (iter.Seq[decimal.Decimal], bool)
}

func (b *Decimal64Batch) DecimalScale() int32 { return b.Scale }

func (b *Decimal64Batch) Iter() iter.Seq2[decimal.Decimal, bool] {
	return nullable(&b.Validity, b.Decimal)
}

func (b *Decimal64Batch) TryIterNotNull() (iter.Seq[decimal.Decimal], bool) {
	return notNull(&b.Validity, b.Decimal)
}

// Raw yields the unscaled values.
func (b *Decimal64Batch) Raw() iter.Seq2[int64, bool] {
	return nullable(&b.Validity, func(d int) int64 { return b.Data[d] })
}

func (b *Decimal64Batch) Decimal(d int) decimal.Decimal {
	return decimal.New(b.Data[d], -b.Scale)
}

func (b *Decimal128Batch) DecimalScale() int32 { return b.Scale }

func (b *Decimal128Batch) Iter() iter.Seq2[decimal.Decimal, bool] {
	return nullable(&b.Validity, b.Decimal)
}

func (b *Decimal128Batch) TryIterNotNull() (iter.Seq[decimal.Decimal], bool) {
	return notNull(&b.Validity, b.Decimal)
}

// Int128 is an unscaled 128-bit decimal value.
type Int128 struct {
	High int64
	Low  uint64
}

func (b *Decimal128Batch) Raw() iter.Seq2[Int128, bool] {
	return nullable(&b.Validity, func(d int) Int128 { return Int128{b.High[d], b.Low[d]} })
}

func (b *Decimal128Batch) Decimal(d int) decimal.Decimal {
	return decimal.NewFromBigInt(common.Int128(b.High[d], b.Low[d]), -b.Scale)
}

// Range is the half-open span [Start, End) of child elements owned by one row.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

func ranges(v *Validity, offsets []int64) iter.Seq2[Range, bool] {
	return func(yield func(Range, bool) bool) {
		for d, ok := range dense(v.Count, v.Bits) {
			if !ok {
				if !yield(Range{}, false) {
					return
				}
				continue
			}
			if d+1 >= len(offsets) {
				panic(fmt.Sprintf("vector: %d offsets cannot describe present row %d", len(offsets), d))
			}
			r := Range{Start: int(offsets[d]), End: int(offsets[d+1])}
			if r.Start > r.End {
				panic(fmt.Sprintf("vector: decreasing offsets %d..%d", r.Start, r.End))
			}
			if !yield(r, true) {
				return
			}
		}
	}
}

// Ranges yields the element span of every row, with false for null rows.
// Spans are not checked against the element count.
func (b *ListBatch) Ranges() iter.Seq2[Range, bool] {
	return ranges(&b.Validity, b.Offsets)
}

func (b *MapBatch) Ranges() iter.Seq2[Range, bool] {
	return ranges(&b.Validity, b.Offsets)
}

// Variant is the position of one union value.
type Variant struct {
	Tag    int
	Offset int
}

func (b *UnionBatch) Iter() iter.Seq2[Variant, bool] {
	return nullable(&b.Validity, func(d int) Variant {
		return Variant{Tag: int(b.Tags[d]), Offset: int(b.Offsets[d])}
	})
}
