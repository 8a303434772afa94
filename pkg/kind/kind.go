// Package kind describes the type tree of a columnar file.
package kind

import (
	"strconv"
	"strings"
)

// Tag identifies the variant of a Kind.
type Tag uint8

const (
	Boolean Tag = iota
	Byte
	Short
	Int
	Long
	Float
	Double
	String
	Binary
	Timestamp
	List
	Map
	Struct
	Union
	Decimal
	Date
	Varchar
	Char
	TimestampInstant
)

var tagNames = [...]string{
	Boolean:          "Boolean",
	Byte:             "Byte",
	Short:            "Short",
	Int:              "Int",
	Long:             "Long",
	Float:            "Float",
	Double:           "Double",
	String:           "String",
	Binary:           "Binary",
	Timestamp:        "Timestamp",
	List:             "List",
	Map:              "Map",
	Struct:           "Struct",
	Union:            "Union",
	Decimal:          "Decimal",
	Date:             "Date",
	Varchar:          "Varchar",
	Char:             "Char",
	TimestampInstant: "TimestampInstant",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "Tag(" + strconv.Itoa(int(t)) + ")"
}

// Field is one named member of a Struct kind.
type Field struct {
	Name string
	Kind Kind
}

// Kind is an immutable node of a type tree. The zero value is Boolean.
type Kind struct {
	tag       Tag
	fields    []Field
	children  []Kind // list: elem; map: key, value; union: variants
	precision uint64
	scale     uint64
	maxLength uint64
}

// Of returns the leaf kind for tag. Compound tags need their own constructor.
func Of(tag Tag) Kind {
	switch tag {
	case List, Map, Struct, Union, Decimal, Varchar, Char:
		panic("kind: " + tag.String() + " needs parameters")
	}
	return Kind{tag: tag}
}

func ListOf(elem Kind) Kind {
	return Kind{tag: List, children: []Kind{elem}}
}

func MapOf(key, value Kind) Kind {
	return Kind{tag: Map, children: []Kind{key, value}}
}

// StructOf copies fields, so the caller may reuse its slice.
func StructOf(fields ...Field) Kind {
	return Kind{tag: Struct, fields: append([]Field(nil), fields...)}
}

func UnionOf(variants ...Kind) Kind {
	return Kind{tag: Union, children: append([]Kind(nil), variants...)}
}

func DecimalOf(precision, scale uint64) Kind {
	return Kind{tag: Decimal, precision: precision, scale: scale}
}

func VarcharOf(maxLength uint64) Kind {
	return Kind{tag: Varchar, maxLength: maxLength}
}

func CharOf(maxLength uint64) Kind {
	return Kind{tag: Char, maxLength: maxLength}
}

func (k Kind) Tag() Tag { return k.tag }

// Fields returns the struct members in file order. The slice must not be modified.
func (k Kind) Fields() []Field { return k.fields }

// Elem is the element kind of a List.
func (k Kind) Elem() Kind { return k.child(List, 0) }

// Key is the key kind of a Map.
func (k Kind) Key() Kind { return k.child(Map, 0) }

// Value is the value kind of a Map.
func (k Kind) Value() Kind { return k.child(Map, 1) }

// Variants returns the alternatives of a Union. The slice must not be modified.
func (k Kind) Variants() []Kind {
	if k.tag != Union {
		return nil
	}
	return k.children
}

func (k Kind) Precision() uint64 { return k.precision }
func (k Kind) Scale() uint64     { return k.scale }

// MaxLength is the declared length of Varchar and Char kinds.
func (k Kind) MaxLength() uint64 { return k.maxLength }

func (k Kind) child(tag Tag, i int) Kind {
	if k.tag != tag {
		panic("kind: " + k.String() + " is not a " + tag.String())
	}
	return k.children[i]
}

// Field looks up a struct member by name.
func (k Kind) Field(name string) (Kind, bool) {
	for _, f := range k.fields {
		if f.Name == name {
			return f.Kind, true
		}
	}
	return Kind{}, false
}

// Equal reports structural equality, field names and order included.
func (k Kind) Equal(o Kind) bool {
	if k.tag != o.tag {
		return false
	}
	switch k.tag {
	case Decimal:
		return k.precision == o.precision && k.scale == o.scale
	case Varchar, Char:
		return k.maxLength == o.maxLength
	case Struct:
		if len(k.fields) != len(o.fields) {
			return false
		}
		for i := range k.fields {
			if k.fields[i].Name != o.fields[i].Name || !k.fields[i].Kind.Equal(o.fields[i].Kind) {
				return false
			}
		}
		return true
	case List, Map, Union:
		if len(k.children) != len(o.children) {
			return false
		}
		for i := range k.children {
			if !k.children[i].Equal(o.children[i]) {
				return false
			}
		}
		return true
	}
	return true
}

// String renders the kind for diagnostics, e.g. List(Struct(a: Int, b: String)).
func (k Kind) String() string {
	var sb strings.Builder
	k.writeDebug(&sb)
	return sb.String()
}

func (k Kind) writeDebug(sb *strings.Builder) {
	sb.WriteString(k.tag.String())
	switch k.tag {
	case Decimal:
		sb.WriteString("(" + strconv.FormatUint(k.precision, 10) + ", " + strconv.FormatUint(k.scale, 10) + ")")
	case Varchar, Char:
		sb.WriteString("(" + strconv.FormatUint(k.maxLength, 10) + ")")
	case Struct:
		sb.WriteByte('(')
		for i, f := range k.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name + ": ")
			f.Kind.writeDebug(sb)
		}
		sb.WriteByte(')')
	case List, Map, Union:
		sb.WriteByte('(')
		for i, c := range k.children {
			if i > 0 {
				sb.WriteString(", ")
			}
			c.writeDebug(sb)
		}
		sb.WriteByte(')')
	}
}

var typeNames = map[Tag]string{
	Boolean:          "boolean",
	Byte:             "tinyint",
	Short:            "smallint",
	Int:              "int",
	Long:             "bigint",
	Float:            "float",
	Double:           "double",
	String:           "string",
	Binary:           "binary",
	Timestamp:        "timestamp",
	Date:             "date",
	TimestampInstant: "timestamp with local time zone",
}

// TypeString renders the kind in the grammar accepted by Parse.
func (k Kind) TypeString() string {
	var sb strings.Builder
	k.writeType(&sb)
	return sb.String()
}

func (k Kind) writeType(sb *strings.Builder) {
	switch k.tag {
	case Decimal:
		sb.WriteString("decimal(" + strconv.FormatUint(k.precision, 10) + "," + strconv.FormatUint(k.scale, 10) + ")")
	case Varchar:
		sb.WriteString("varchar(" + strconv.FormatUint(k.maxLength, 10) + ")")
	case Char:
		sb.WriteString("char(" + strconv.FormatUint(k.maxLength, 10) + ")")
	case List:
		sb.WriteString("array<")
		k.children[0].writeType(sb)
		sb.WriteByte('>')
	case Map:
		sb.WriteString("map<")
		k.children[0].writeType(sb)
		sb.WriteByte(',')
		k.children[1].writeType(sb)
		sb.WriteByte('>')
	case Union:
		sb.WriteString("uniontype<")
		for i, c := range k.children {
			if i > 0 {
				sb.WriteByte(',')
			}
			c.writeType(sb)
		}
		sb.WriteByte('>')
	case Struct:
		sb.WriteString("struct<")
		for i, f := range k.fields {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(f.Name + ":")
			f.Kind.writeType(sb)
		}
		sb.WriteByte('>')
	default:
		sb.WriteString(typeNames[k.tag])
	}
}
