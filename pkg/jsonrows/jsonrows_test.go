package jsonrows

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/memfile"
	"github.com/rawbytedev/orcrow/pkg/reader"
	"github.com/rawbytedev/orcrow/pkg/structured"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

var allKinds = kind.MustParse("struct<b:boolean,i:int,d:double,s:string,bin:binary,ts:timestamp,dt:date," +
	"dec:decimal(10,2),l:array<int>,m:map<string,int>,st:struct<x:int>,u:uniontype<int,string>>")

func tree(t *testing.T, k kind.Kind, rows ...any) structured.ColumnTree {
	t.Helper()
	f, err := memfile.FromRows(k, rows, 100)
	require.NoError(t, err)
	rr, err := f.RowReader(reader.Options{})
	require.NoError(t, err)
	r := structured.NewRowReader(rr, 100)
	t.Cleanup(func() { r.Close() })
	snap, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	return snap.Tree()
}

func TestValues(t *testing.T) {
	ts := time.Date(2020, 1, 2, 3, 4, 5, 500000000, time.UTC)
	c := tree(t, allKinds,
		[]any{true, int32(1), 1.5, "hi", []byte{1, 2}, ts, vector.Date(1), "12.34",
			[]any{int32(1), int32(2)}, []memfile.Entry{{Key: "a", Value: int32(1)}}, []any{int32(7)},
			memfile.Variant{Tag: 1, Value: "x"}},
		[]any{nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil},
		nil,
		[]any{false, int32(-3), -0.25, "", []byte{}, ts, vector.Date(-1), "-0.5",
			[]any{}, []memfile.Entry{}, []any{nil}, memfile.Variant{Tag: 0, Value: int32(9)}},
	)

	var lines []string
	for _, v := range Values(c) {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		lines = append(lines, string(b))
	}
	require.Equal(t, []string{
		`{"b":true,"i":1,"d":1.5,"s":"hi","bin":[1,2],"ts":"2020-01-02 03:04:05.5","dt":"1970-01-02",` +
			`"dec":12.34,"l":[1,2],"m":[{"key":"a","value":1}],"st":{"x":7},"u":"x"}`,
		`{"b":null,"i":null,"d":null,"s":null,"bin":null,"ts":null,"dt":null,` +
			`"dec":null,"l":null,"m":null,"st":null,"u":null}`,
		`null`,
		`{"b":false,"i":-3,"d":-0.25,"s":"","bin":[],"ts":"2020-01-02 03:04:05.5","dt":"1969-12-31",` +
			`"dec":-0.5,"l":[],"m":[],"st":{"x":null},"u":9}`,
	}, lines)
}

func TestValuesInvalidUTF8(t *testing.T) {
	c := tree(t, kind.MustParse("struct<s:string>"), []any{[]byte("a\xffb")})
	row := Values(c)[0].(Object)
	s, ok := row.Get("s")
	require.True(t, ok)
	require.Equal(t, "a\uFFFDb", s)
	_, ok = row.Get("missing")
	require.False(t, ok)
}

func TestValuesNonFiniteFloats(t *testing.T) {
	c := tree(t, kind.MustParse("struct<d:double>"), []any{1.0 / zero()}, []any{2.0})
	b, err := json.Marshal(Values(c))
	require.NoError(t, err)
	require.Equal(t, `[{"d":null},{"d":2}]`, string(b))
}

func zero() float64 { return 0 }

func TestFormatTimestamp(t *testing.T) {
	for _, tc := range []struct {
		ts    vector.Timestamp
		wants string
	}{
		{vector.Timestamp{}, "1970-01-01 00:00:00.0"},
		{vector.Timestamp{Seconds: 1, Nanos: 123456789}, "1970-01-01 00:00:01.123456789"},
		{vector.Timestamp{Seconds: 2114380800, Nanos: 999000}, "2037-01-01 00:00:00.000999"},
		{vector.Timestamp{Seconds: -1, Nanos: 100}, "1969-12-31 23:59:59.0000001"},
	} {
		require.Equal(t, tc.wants, FormatTimestamp(tc.ts))
	}
}

func TestWriter(t *testing.T) {
	c := tree(t, kind.MustParse("struct<n:bigint,s:string>"), []any{int64(1), "a"}, []any{int64(2), nil})

	var out bytes.Buffer
	w, err := NewWriter(&out, Options{})
	require.NoError(t, err)
	n, err := w.WriteTree(c)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, w.Close())
	require.Equal(t, "{\"n\":1,\"s\":\"a\"}\n{\"n\":2,\"s\":null}\n", out.String())
	require.Equal(t, 2, w.Rows())
}

func TestWriterPretty(t *testing.T) {
	c := tree(t, kind.MustParse("struct<n:bigint>"), []any{int64(1)})
	var out bytes.Buffer
	w, err := NewWriter(&out, Options{Pretty: true})
	require.NoError(t, err)
	_, err = w.WriteTree(c)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.True(t, strings.HasPrefix(out.String(), "{"))
	require.True(t, strings.HasSuffix(out.String(), "}\n"))
	var got map[string]int
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Equal(t, map[string]int{"n": 1}, got)
}

func TestWriterZstd(t *testing.T) {
	c := tree(t, kind.MustParse("struct<n:bigint>"), []any{int64(1)}, []any{int64(2)})
	var out bytes.Buffer
	w, err := NewWriter(&out, Options{Compression: CompressionZstd})
	require.NoError(t, err)
	_, err = w.WriteTree(c)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	dec, err := zstd.NewReader(&out)
	require.NoError(t, err)
	defer dec.Close()
	plain, err := io.ReadAll(dec)
	require.NoError(t, err)
	require.Equal(t, "{\"n\":1}\n{\"n\":2}\n", string(plain))
}

func TestWriterUnknownCompression(t *testing.T) {
	_, err := NewWriter(io.Discard, Options{Compression: "lz4"})
	require.Error(t, err)
}
