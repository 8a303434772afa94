package vector

import (
	"iter"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/orcrow/internal/common"
	"github.com/rawbytedev/orcrow/pkg/kind"
)

type opt[V any] struct {
	v  V
	ok bool
}

func collect[V any](seq iter.Seq2[V, bool]) []opt[V] {
	var out []opt[V]
	for v, ok := range seq {
		out = append(out, opt[V]{v, ok})
	}
	return out
}

func TestLongsWithNulls(t *testing.T) {
	b := &LongBatch{Validity: Validity{Count: 4, Bits: []byte{1, 1, 1, 0}}, Data: []int64{10, 20, 30}}
	require.Equal(t, []opt[int64]{{10, true}, {20, true}, {30, true}, {0, false}}, collect(b.Iter()))
	_, ok := b.TryIterNotNull()
	require.False(t, ok)
}

func TestLongsDensePacking(t *testing.T) {
	b := &LongBatch{Validity: Validity{Count: 5, Bits: []byte{0, 1, 0, 1, 1}}, Data: []int64{7, 8, 9}}
	require.Equal(t, []opt[int64]{{0, false}, {7, true}, {0, false}, {8, true}, {9, true}}, collect(b.Iter()))
}

func TestTryIterNotNull(t *testing.T) {
	b := &DoubleBatch{Validity: Validity{Count: 3}, Data: []float64{1, 2.5, -3}}
	values, ok := b.TryIterNotNull()
	require.True(t, ok)
	var got []float64
	for v := range values {
		got = append(got, v)
	}
	require.Equal(t, []float64{1, 2.5, -3}, got)
}

func TestEmptyBatch(t *testing.T) {
	b := &LongBatch{}
	values, ok := b.TryIterNotNull()
	require.True(t, ok)
	for range values {
		t.Fatal("empty batch yielded a value")
	}
	require.Empty(t, collect(b.Iter()))
}

func TestStringsWithoutNulls(t *testing.T) {
	a := &StringBatch{Validity: Validity{Count: 2}, Blob: []byte{0, 1, 2, 3, 4}, Start: []int64{0, 5}, Length: []int64{5, 0}}
	b := &StringBatch{Validity: Validity{Count: 2}, Blob: []byte("hibye"), Start: []int64{0, 2}, Length: []int64{2, 3}}
	require.Equal(t, []opt[[]byte]{{[]byte{0, 1, 2, 3, 4}, true}, {[]byte{}, true}}, collect(a.Iter()))
	require.Equal(t, []opt[[]byte]{{[]byte("hi"), true}, {[]byte("bye"), true}}, collect(b.Iter()))
}

func TestStringsWithNulls(t *testing.T) {
	var a, b StringBatch
	a.Append([]byte{0, 1, 2, 3, 4}, true)
	a.Append([]byte{0, 1, 2, 3}, true)
	a.Append([]byte{0, 1, 2, 3, 4, 5}, true)
	a.AppendNull()
	b.AppendString("foo", true)
	b.AppendString("bar", true)
	b.AppendNull()
	b.AppendString("hi", true)

	require.Equal(t, []byte{1, 1, 1, 0}, a.NotNull())
	require.Equal(t, []byte("foobarhi"), b.Blob)
	got := collect(b.Iter())
	require.Equal(t, "bar", string(got[1].v))
	require.False(t, got[2].ok)
	require.Equal(t, "hi", string(got[3].v))
	require.Len(t, collect(a.Iter())[2].v, 6)
}

func TestStringViewsAreCapped(t *testing.T) {
	var b StringBatch
	b.AppendString("ab", true)
	b.AppendString("cd", true)
	v := b.Bytes(0)
	v = append(v, 'x')
	require.Equal(t, "cd", string(b.Bytes(1)))
	require.Equal(t, "abx", string(v))
}

func TestBitmapMaterializesOnFirstNull(t *testing.T) {
	var b LongBatch
	b.Append(1, true)
	b.Append(2, true)
	require.Nil(t, b.NotNull())
	b.AppendNull()
	require.Equal(t, []byte{1, 1, 0}, b.NotNull())
	b.Reset()
	require.Nil(t, b.NotNull())
	require.Zero(t, b.NumElements())
}

func TestTimestamps(t *testing.T) {
	var b TimestampBatch
	b.Append(Timestamp{Seconds: 2114380800, Nanos: 999000}, true)
	b.AppendNull()
	got := collect(b.Iter())
	require.True(t, time.Date(2037, 1, 1, 0, 0, 0, 999000, time.UTC).Equal(got[0].v.Time()))
	require.False(t, got[1].ok)
	require.Equal(t, Timestamp{Seconds: 1041379200, Nanos: 222}, TimestampOf(time.Unix(1041379200, 222)))
}

func TestDate(t *testing.T) {
	require.Equal(t, "1970-01-01", Date(0).String())
	require.Equal(t, "1969-12-31", Date(-1).String())
	require.Equal(t, "2000-03-01", Date(11017).String())
}

func TestDecimals(t *testing.T) {
	b := &Decimal64Batch{Validity: Validity{Count: 3, Bits: []byte{1, 0, 1}}, Precision: 10, Scale: 4, Data: []int64{-10005000, 17391740}}
	got := collect(b.Iter())
	assert.True(t, decimal.RequireFromString("-1000.5").Equal(got[0].v))
	assert.False(t, got[1].ok)
	assert.True(t, decimal.RequireFromString("1739.174").Equal(got[2].v))

	hi, lo := common.SplitInt128(decimal.RequireFromString("-123456789012345678901234567").Coefficient())
	w := &Decimal128Batch{Precision: 38, Scale: 5}
	w.Append(hi, lo, true)
	values, ok := w.TryIterNotNull()
	require.True(t, ok)
	for v := range values {
		assert.Equal(t, "-1234567890123456789012.34567", v.String())
	}
}

func TestListRanges(t *testing.T) {
	elems := &LongBatch{}
	l := &ListBatch{Elements: elems}
	for _, row := range [][]int64{{1, 2}, nil, {}, {3}} {
		l.Append(len(row), row != nil)
		for _, v := range row {
			elems.Append(v, true)
		}
	}
	require.Equal(t, []int64{0, 2, 2, 3}, l.Offsets)
	require.Equal(t, []opt[Range]{{Range{0, 2}, true}, {Range{}, false}, {Range{2, 2}, true}, {Range{2, 3}, true}}, collect(l.Ranges()))
}

func TestListRangesPanicOnShortOffsets(t *testing.T) {
	l := &ListBatch{Validity: Validity{Count: 2}, Offsets: []int64{0, 1}, Elements: &LongBatch{Validity: Validity{Count: 1}, Data: []int64{1}}}
	require.Panics(t, func() { collect(l.Ranges()) })
}

func TestAs(t *testing.T) {
	var b Batch = &LongBatch{}
	_, err := As[*LongBatch](b)
	require.NoError(t, err)
	_, err = As[*StringBatch](b)
	require.ErrorContains(t, err, "expected *vector.StringBatch, got *vector.LongBatch")
}

func TestNewFollowsKind(t *testing.T) {
	k := kind.MustParse("struct<a:int,b:array<string>,c:map<string,double>,d:decimal(10,2),e:decimal(30,2),f:uniontype<int,string>>")
	s := New(k, 4).(*StructBatch)
	require.IsType(t, &LongBatch{}, s.Fields[0])
	require.IsType(t, &StringBatch{}, s.Fields[1].(*ListBatch).Elements)
	require.IsType(t, &DoubleBatch{}, s.Fields[2].(*MapBatch).Values)
	require.IsType(t, &Decimal64Batch{}, s.Fields[3])
	require.IsType(t, &Decimal128Batch{}, s.Fields[4])
	require.Len(t, s.Fields[5].(*UnionBatch).Children, 2)
}

func TestCopyRows(t *testing.T) {
	k := kind.MustParse("struct<id:bigint,tags:array<string>>")
	src := New(k, 0).(*StructBatch)
	ids := src.Fields[0].(*LongBatch)
	tags := src.Fields[1].(*ListBatch)
	words := tags.Elements.(*StringBatch)
	rows := [][]string{{"a", "b"}, nil, {"c"}, {}, {"d", "e", "f"}}
	for i, row := range rows {
		src.Append(true)
		ids.Append(int64(i), i != 1)
		tags.Append(len(row), row != nil)
		for _, w := range row {
			words.AppendString(w, true)
		}
	}

	dst := New(k, 0).(*StructBatch)
	require.NoError(t, CopyRows(dst, src, 1, 5))
	require.Equal(t, 4, dst.NumElements())
	require.Equal(t, []byte{0, 1, 1, 1}, dst.Fields[0].NotNull())
	require.Equal(t, []int64{2, 3, 4}, dst.Fields[0].(*LongBatch).Data)
	dl := dst.Fields[1].(*ListBatch)
	require.Equal(t, []int64{0, 1, 1, 4}, dl.Offsets)
	require.Equal(t, []byte("cdef"), dl.Elements.(*StringBatch).Blob)

	ResetTree(dst)
	require.Zero(t, dst.NumElements())
	require.Zero(t, dl.Elements.NumElements())
	require.NoError(t, CopyRows(dst, src, 0, 1))
	require.Equal(t, []int64{0, 2}, dl.Offsets)

	require.Error(t, CopyRows(dst, src, 3, 9))
	require.Error(t, CopyRows(&LongBatch{}, src, 0, 1))
}

func TestCopyUnionRows(t *testing.T) {
	u := New(kind.MustParse("uniontype<int,string>"), 0).(*UnionBatch)
	ints := u.Children[0].(*LongBatch)
	strs := u.Children[1].(*StringBatch)
	u.Append(0, 0, true)
	ints.Append(5, true)
	u.Append(1, 0, true)
	strs.AppendString("x", true)
	u.Append(0, 0, false)
	u.Append(0, 1, true)
	ints.Append(6, true)

	dst := New(kind.MustParse("uniontype<int,string>"), 0).(*UnionBatch)
	require.NoError(t, CopyRows(dst, u, 1, 4))
	require.Equal(t, []byte{1, 0}, dst.Tags)
	require.Equal(t, []int64{0, 0}, dst.Offsets)
	require.Equal(t, []int64{6}, dst.Children[0].(*LongBatch).Data)
	require.Equal(t, "x", string(dst.Children[1].(*StringBatch).Bytes(0)))
}
