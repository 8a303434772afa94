// Package jsonrows renders the rows of a structured.ColumnTree as JSON.
package jsonrows

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/structured"
	"github.com/rawbytedev/orcrow/pkg/vector"
)

// Member is one key of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is a JSON object that keeps its keys in order.
type Object []Member

func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value of key.
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Values returns one JSON-ready value per element of c, nil for nulls.
//
// Booleans become bool, other integers int64 and floats float64. Non-finite
// floats become null. Text becomes a string with invalid UTF-8 replaced,
// binary a []int of its bytes. Timestamps and dates become strings, decimals
// float64. Lists become []any, maps []any of {"key","value"} objects and
// structs an Object in field order. A union becomes its selected value.
func Values(c structured.ColumnTree) []any {
	out := make([]any, 0, c.NumElements())
	switch c := c.(type) {
	case structured.LongColumn:
		for v, ok := range c.Iter() {
			out = append(out, long(c.Kind(), v, ok))
		}
	case structured.DoubleColumn:
		for v, ok := range c.Iter() {
			if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
				out = append(out, nil)
				continue
			}
			out = append(out, v)
		}
	case structured.StringColumn:
		binary := c.Kind().Tag() == kind.Binary
		for v, ok := range c.Iter() {
			switch {
			case !ok:
				out = append(out, nil)
			case binary:
				out = append(out, byteNumbers(v))
			default:
				out = append(out, strings.ToValidUTF8(string(v), "\uFFFD"))
			}
		}
	case structured.TimestampColumn:
		for v, ok := range c.Iter() {
			if !ok {
				out = append(out, nil)
				continue
			}
			out = append(out, FormatTimestamp(v))
		}
	case structured.DecimalColumn:
		for v, ok := range c.Iter() {
			if !ok {
				out = append(out, nil)
				continue
			}
			out = append(out, v.InexactFloat64())
		}
	case structured.ListColumn:
		elems := Values(c.Elements)
		for r, ok := range c.Ranges() {
			if !ok {
				out = append(out, nil)
				continue
			}
			out = append(out, elems[r.Start:r.End:r.End])
		}
	case structured.MapColumn:
		keys, values := Values(c.Keys), Values(c.Values)
		for r, ok := range c.Ranges() {
			if !ok {
				out = append(out, nil)
				continue
			}
			entries := make([]any, 0, r.Len())
			for i := r.Start; i < r.End; i++ {
				entries = append(entries, Object{{"key", keys[i]}, {"value", values[i]}})
			}
			out = append(out, entries)
		}
	case structured.StructColumn:
		fields := make([][]any, len(c.Columns))
		for j, nc := range c.Columns {
			fields[j] = Values(nc.Column)
		}
		for i := range c.NumElements() {
			if !c.Present(i) {
				out = append(out, nil)
				continue
			}
			obj := make(Object, len(c.Columns))
			for j, nc := range c.Columns {
				obj[j] = Member{Key: nc.Name, Value: fields[j][i]}
			}
			out = append(out, obj)
		}
	case structured.UnionColumn:
		variants := make([][]any, len(c.Variants))
		for j, v := range c.Variants {
			variants[j] = Values(v)
		}
		for v, ok := range c.Iter() {
			if !ok {
				out = append(out, nil)
				continue
			}
			out = append(out, variants[v.Tag][v.Offset])
		}
	default:
		panic("jsonrows: unsupported column " + c.Kind().String())
	}
	return out
}

func long(k kind.Kind, v int64, ok bool) any {
	switch {
	case !ok:
		return nil
	case k.Tag() == kind.Boolean:
		return v != 0
	case k.Tag() == kind.Date:
		return vector.Date(v).String()
	}
	return v
}

func byteNumbers(b []byte) []int {
	out := make([]int, len(b))
	for i, c := range b {
		out[i] = int(c)
	}
	return out
}

// FormatTimestamp renders t as "2006-01-02 15:04:05.999999999" in UTC with
// trailing zeros of the fraction trimmed, keeping at least one digit.
func FormatTimestamp(t vector.Timestamp) string {
	tm := t.Time()
	frac := strings.TrimRight(strconv.FormatInt(int64(tm.Nanosecond())+1e9, 10)[1:], "0")
	if frac == "" {
		frac = "0"
	}
	return tm.Format("2006-01-02 15:04:05") + "." + frac
}
