package orcrow

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/memfile"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

type test1 struct {
	Boolean1 bool
	Byte1    int8
	Short1   int16
	Int1     int32
	Long1    int64
	Float1   float32
	Double1  float64
	Bytes1   []byte
	String1  string
}

var test1Kind = kind.MustParse("struct<boolean1:boolean,byte1:tinyint,short1:smallint,int1:int,long1:bigint," +
	"float1:float,double1:double,bytes1:binary,string1:string>")

var test1Shape = Struct("Test1",
	Field("boolean1", Bool(), func(t *test1) *bool { return &t.Boolean1 }),
	Field("byte1", Int8(), func(t *test1) *int8 { return &t.Byte1 }),
	Field("short1", Int16(), func(t *test1) *int16 { return &t.Short1 }),
	Field("int1", Int32(), func(t *test1) *int32 { return &t.Int1 }),
	Field("long1", Int64(), func(t *test1) *int64 { return &t.Long1 }),
	Field("float1", Float32(), func(t *test1) *float32 { return &t.Float1 }),
	Field("double1", Float64(), func(t *test1) *float64 { return &t.Double1 }),
	Field("bytes1", Bytes(), func(t *test1) *[]byte { return &t.Bytes1 }),
	Field("string1", String(), func(t *test1) *string { return &t.String1 }),
)

var test1Rows = []test1{
	{false, 1, 1024, 65536, 9223372036854775807, 1.0, -15.0, []byte{0, 1, 2, 3, 4}, "hi"},
	{true, 100, 2048, 65536, 9223372036854775807, 2.0, -5.0, []byte{}, "bye"},
}

func test1File(t testing.TB, stripe int) *memfile.File {
	t.Helper()
	rows := make([]any, len(test1Rows))
	for i, r := range test1Rows {
		rows[i] = []any{r.Boolean1, r.Byte1, r.Short1, r.Int1, r.Long1, float64(r.Float1), r.Double1, r.Bytes1, r.String1}
	}
	f, err := memfile.FromRows(test1Kind, rows, stripe)
	require.NoError(t, err)
	return f
}

type inner struct {
	Int1    int32
	String1 string
}

type listRow struct {
	Int1 int32
	List []inner
}

var innerShape = Struct("Inner",
	Field("int1", Int32(), func(v *inner) *int32 { return &v.Int1 }),
	Field("string1", String(), func(v *inner) *string { return &v.String1 }),
)

var listRowShape = Struct("ListRow",
	Field("int1", Int32(), func(v *listRow) *int32 { return &v.Int1 }),
	Field("list", List[inner](innerShape), func(v *listRow) *[]inner { return &v.List }),
)

var listRows = []listRow{
	{65536, []inner{{3, "good"}, {4, "bad"}}},
	{65536, []inner{{100000000, "cat"}, {-100000, "in"}, {1234, "hat"}}},
	{7, []inner{}},
}

func listFile(t testing.TB, stripe int) *memfile.File {
	t.Helper()
	k := kind.MustParse("struct<int1:int,list:array<struct<int1:int,string1:string>>>")
	rows := make([]any, len(listRows))
	for i, r := range listRows {
		elems := make([]any, len(r.List))
		for j, e := range r.List {
			elems[j] = []any{e.Int1, e.String1}
		}
		rows[i] = []any{r.Int1, elems}
	}
	f, err := memfile.FromRows(k, rows, stripe)
	require.NoError(t, err)
	return f
}

type nullsRow struct {
	Bytes1  Option[[]byte]
	String1 Option[string]
}

var nullsShape = Struct("Nulls",
	Field("bytes1", Nullable(Bytes()), func(v *nullsRow) *Option[[]byte] { return &v.Bytes1 }),
	Field("string1", Nullable(String()), func(v *nullsRow) *Option[string] { return &v.String1 }),
)

func nullsFile(t testing.TB) *memfile.File {
	t.Helper()
	k := kind.MustParse("struct<bytes1:binary,string1:string>")
	f, err := memfile.FromRows(k, []any{
		[]any{[]byte{0, 1, 2, 3, 4}, "foo"},
		[]any{[]byte{0, 1, 2, 3}, "bar"},
		[]any{[]byte{0, 1, 2, 3, 4, 5}, nil},
		[]any{nil, "hi"},
	}, 10)
	require.NoError(t, err)
	return f
}

// numbersFile has one bigint column "n" holding 0..n-1, with every
// nullEvery-th row null when nullEvery > 0.
func numbersFile(t testing.TB, n, stripe, nullEvery int) *memfile.File {
	t.Helper()
	rows := make([]any, n)
	for i := range rows {
		if nullEvery > 0 && i%nullEvery == 0 {
			rows[i] = []any{nil}
			continue
		}
		rows[i] = []any{int64(i)}
	}
	f, err := memfile.FromRows(kind.MustParse("struct<n:bigint>"), rows, stripe)
	require.NoError(t, err)
	return f
}

type numberRow struct {
	N int64
}

var numberShape = Struct("Number", Field("n", Int64(), func(v *numberRow) *int64 { return &v.N }))

type optNumberRow struct {
	N Option[int64]
}

var optNumberShape = Struct("OptNumber", Field("n", Nullable(Int64()), func(v *optNumberRow) *Option[int64] { return &v.N }))

func longs(bits []byte, data ...int64) *vector.LongBatch {
	return &vector.LongBatch{Validity: vector.Validity{Count: max(len(bits), len(data)), Bits: bits}, Data: data}
}

var (
	ts0 = time.Unix(2114380800, 999000).UTC()
	ts1 = time.Unix(1041379200, 222).UTC()
	ts2 = time.Unix(915148800, 999999999).UTC()
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
