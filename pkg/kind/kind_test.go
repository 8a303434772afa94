package kind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireKind(t *testing.T, want Kind, typeString string) {
	t.Helper()
	got, err := Parse(typeString)
	require.NoError(t, err)
	require.True(t, want.Equal(got), "%s: want %s, got %s", typeString, want, got)
}

func TestParseErrors(t *testing.T) {
	for _, s := range []string{
		"", "notatype", "not a type",
		"char", "char(", "varchar", "varchar(",
		"decimal()", "decimal(1)", "decimal(1,)",
		"struct<boolean>", "struct<a:boolean", "struct<a:boolean,>",
		"array<>", "array<a:boolean>",
		"map<>", "map<boolean>", "map<a:boolean>",
		"uniontype<a:boolean>",
		"int ", "bigint>",
	} {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrSyntax, "%q", s)
	}
}

func TestParseIntegers(t *testing.T) {
	requireKind(t, Of(Boolean), "boolean")
	requireKind(t, Of(Byte), "tinyint")
	requireKind(t, Of(Short), "smallint")
	requireKind(t, Of(Int), "int")
	requireKind(t, Of(Long), "bigint")
}

func TestParseFloats(t *testing.T) {
	requireKind(t, Of(Float), "float")
	requireKind(t, Of(Double), "double")
}

func TestParseStrings(t *testing.T) {
	requireKind(t, Of(String), "string")
	requireKind(t, CharOf(10), "char(10)")
	requireKind(t, CharOf(0), "char()")
	requireKind(t, CharOf(0), "char(0)")
	requireKind(t, CharOf(276447232), "char(276447232)")
	requireKind(t, VarcharOf(10), "varchar(10)")
	requireKind(t, VarcharOf(0), "varchar()")
	requireKind(t, VarcharOf(276447232), "varchar(276447232)")
	requireKind(t, Of(Binary), "binary")
}

func TestParseDecimal(t *testing.T) {
	requireKind(t, DecimalOf(1, 1), "decimal(1, 1)")
	requireKind(t, DecimalOf(1000, 1), "decimal(1000, 1)")
	requireKind(t, DecimalOf(1, 1000), "decimal(1,1000)")
	requireKind(t, DecimalOf(276447232, 276447232), "decimal(276447232, 276447232)")
}

func TestParseDatetime(t *testing.T) {
	requireKind(t, Of(Timestamp), "timestamp")
	requireKind(t, Of(Date), "date")
	requireKind(t, Of(TimestampInstant), "timestamp with local time zone")
}

func TestParseStruct(t *testing.T) {
	requireKind(t, StructOf(), "struct<>")
	requireKind(t, StructOf(Field{"a", Of(Boolean)}), "struct<a:boolean>")
	requireKind(t, StructOf(
		Field{"a", Of(Boolean)},
		Field{"b", Of(Short)},
		Field{"c", Of(Int)},
		Field{"d", Of(Long)},
	), "struct<a:boolean,b:smallint,c:int,d:bigint>")
	requireKind(t, StructOf(
		Field{"a", Of(Boolean)},
		Field{"b", StructOf(Field{"b1", Of(Short)}, Field{"b2", Of(Int)})},
		Field{"c", Of(Long)},
	), "struct<a:boolean,b:struct<b1:smallint,b2:int>,c:bigint>")
}

func TestParseListMapUnion(t *testing.T) {
	requireKind(t, ListOf(Of(Boolean)), "array<boolean>")
	requireKind(t, ListOf(StructOf(Field{"a", Of(Boolean)}, Field{"b", Of(Short)})), "array<struct<a:boolean,b:smallint>>")
	requireKind(t, MapOf(Of(String), Of(Boolean)), "map<string,boolean>")
	requireKind(t, UnionOf(), "uniontype<>")
	requireKind(t, UnionOf(Of(String)), "uniontype<string>")
	requireKind(t, UnionOf(Of(String), Of(Boolean)), "uniontype<string,boolean>")
}

func TestEqualIsStructural(t *testing.T) {
	a := MustParse("struct<long1:bigint,string1:string,bytes1:binary>")
	b := MustParse("struct<long1:bigint,bytes1:binary,string1:string>")
	require.False(t, a.Equal(b))
	require.True(t, a.Equal(MustParse(a.TypeString())))
	require.False(t, DecimalOf(10, 2).Equal(DecimalOf(10, 3)))
	require.False(t, VarcharOf(3).Equal(CharOf(3)))
	require.False(t, ListOf(Of(Int)).Equal(ListOf(Of(Long))))
}

func TestString(t *testing.T) {
	require.Equal(t, "Long", Of(Long).String())
	require.Equal(t, "List(Int)", ListOf(Of(Int)).String())
	require.Equal(t, "Map(String, Decimal(10, 2))", MapOf(Of(String), DecimalOf(10, 2)).String())
	require.Equal(t, "Struct(a: Varchar(5), b: Union(Int, Date))",
		StructOf(Field{"a", VarcharOf(5)}, Field{"b", UnionOf(Of(Int), Of(Date))}).String())
}

func TestTypeStringRoundTrip(t *testing.T) {
	for _, s := range []string{
		"struct<a:boolean,b:struct<b1:smallint,b2:int>,c:bigint>",
		"array<map<string,decimal(38,10)>>",
		"uniontype<timestamp with local time zone,char(3),varchar(7)>",
		"struct<t:timestamp,d:date,f:float,x:double,y:binary,z:tinyint>",
	} {
		require.Equal(t, s, MustParse(s).TypeString())
	}
}

func TestAccessors(t *testing.T) {
	k := MustParse("struct<m:map<string,array<int>>>")
	m, ok := k.Field("m")
	require.True(t, ok)
	require.Equal(t, String, m.Key().Tag())
	require.Equal(t, Int, m.Value().Elem().Tag())
	_, ok = k.Field("missing")
	require.False(t, ok)
	require.Panics(t, func() { m.Elem() })
	require.Panics(t, func() { Of(Struct) })
}

func FuzzParse(f *testing.F) {
	f.Add("struct<a:boolean,b:array<map<string,int>>>")
	f.Add("decimal(10, 2)")
	f.Add("uniontype<string,char(3)>")
	f.Fuzz(func(t *testing.T, s string) {
		k, err := Parse(s)
		if err != nil {
			return
		}
		again, err := Parse(k.TypeString())
		require.NoError(t, err)
		require.True(t, k.Equal(again))
	})
}
