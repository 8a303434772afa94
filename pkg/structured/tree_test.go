package structured

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/memfile"
	"github.com/rawbytedev/orcrow/pkg/reader"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

func listFile(t *testing.T) *memfile.File {
	t.Helper()
	k := kind.MustParse("struct<int1:int,list:array<struct<int1:int,string1:string>>,amount:decimal(38,2)>")
	f, err := memfile.FromRows(k, []any{
		[]any{int32(65536), []any{[]any{int32(3), "good"}, []any{int32(4), "bad"}}, "1.50"},
		[]any{int32(65536), []any{
			[]any{int32(100000000), "cat"},
			[]any{int32(-100000), "in"},
			[]any{int32(1234), "hat"},
		}, nil},
	}, 10)
	require.NoError(t, err)
	return f
}

func TestBuild(t *testing.T) {
	rr, err := listFile(t).RowReader(reader.Options{})
	require.NoError(t, err)
	rows := NewRowReader(rr, 10)
	snap, ok, err := rows.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, snap.NumRows())
	require.Zero(t, snap.FirstRow)

	root := snap.Tree().(StructColumn)
	require.Len(t, root.Columns, 3)
	require.Equal(t, "list", root.Columns[1].Name)

	list, ok := root.Column("list")
	require.True(t, ok)
	lc := list.(ListColumn)
	var lengths []int
	for r, present := range lc.Ranges() {
		require.True(t, present)
		lengths = append(lengths, r.Len())
	}
	require.Equal(t, []int{2, 3}, lengths)

	elems := lc.Elements.(StructColumn)
	names := elems.Columns[1].Column.(StringColumn)
	var words []string
	for v, ok := range names.Iter() {
		require.True(t, ok)
		words = append(words, string(v))
	}
	require.Equal(t, []string{"good", "bad", "cat", "in", "hat"}, words)

	amount, ok := root.Column("amount")
	require.True(t, ok)
	dc := amount.(DecimalColumn)
	require.IsType(t, &vector.Decimal128Batch{}, dc.DecimalBatch)
	require.Equal(t, kind.Decimal, dc.Kind().Tag())

	_, ok = root.Column("missing")
	require.False(t, ok)

	_, ok, err = rows.Next()
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, rows.Close())
}

func TestStaleSnapshotPanics(t *testing.T) {
	rr, err := listFile(t).RowReader(reader.Options{})
	require.NoError(t, err)
	rows := NewRowReader(rr, 1)
	first, ok, err := rows.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.NotPanics(t, func() { first.Tree() })

	second, ok, err := rows.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(1), second.FirstRow)
	require.Panics(t, func() { first.Tree() })
	require.Panics(t, func() { Snapshot{}.Tree() })
}

func TestBuildPanicsOnMismatch(t *testing.T) {
	require.Panics(t, func() { Build(&vector.LongBatch{}, kind.Of(kind.String)) })
	require.Panics(t, func() { Build(&vector.StructBatch{}, kind.MustParse("struct<a:int>")) })
	require.Panics(t, func() { Build(&vector.LongBatch{}, kind.DecimalOf(10, 2)) })
}

func TestBuildUnionAndMap(t *testing.T) {
	k := kind.MustParse("struct<u:uniontype<int,string>,m:map<string,double>>")
	f, err := memfile.FromRows(k, []any{
		[]any{memfile.Variant{Tag: 1, Value: "s"}, []memfile.Entry{{Key: "k", Value: 1.5}}},
	}, 4)
	require.NoError(t, err)
	rr, err := f.RowReader(reader.Options{})
	require.NoError(t, err)
	snap, ok, err := NewRowReader(rr, 4).Next()
	require.NoError(t, err)
	require.True(t, ok)

	root := snap.Tree().(StructColumn)
	u := root.Columns[0].Column.(UnionColumn)
	require.Len(t, u.Variants, 2)
	for v, ok := range u.Iter() {
		require.True(t, ok)
		require.Equal(t, vector.Variant{Tag: 1, Offset: 0}, v)
	}
	m := root.Columns[1].Column.(MapColumn)
	require.IsType(t, StringColumn{}, m.Keys)
	require.IsType(t, DoubleColumn{}, m.Values)
}
