package kind

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrSyntax = errors.New("invalid type string")

// Parse reads a type string such as "struct<a:int,b:array<string>>".
func Parse(s string) (Kind, error) {
	p := parser{in: s}
	k, err := p.kind()
	if err != nil {
		return Kind{}, err
	}
	if p.pos != len(p.in) {
		return Kind{}, p.errorf("unexpected %q", p.in[p.pos:])
	}
	return k, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Kind {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

type parser struct {
	in  string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d of %q: %s", ErrSyntax, p.pos, p.in, fmt.Sprintf(format, args...))
}

func (p *parser) peek() byte {
	if p.pos < len(p.in) {
		return p.in[p.pos]
	}
	return 0
}

func (p *parser) eat(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(c byte) error {
	if !p.eat(c) {
		return p.errorf("expected %q", c)
	}
	return nil
}

func (p *parser) skipSpaces() {
	for p.peek() == ' ' {
		p.pos++
	}
}

// ident reads [A-Za-z0-9_]*.
func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.in) {
		c := p.in[p.pos]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		break
	}
	return p.in[start:p.pos]
}

func (p *parser) number(allowEmpty bool) (uint64, error) {
	start := p.pos
	for p.pos < len(p.in) && p.in[p.pos] >= '0' && p.in[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		if allowEmpty {
			return 0, nil
		}
		return 0, p.errorf("expected a number")
	}
	n, err := strconv.ParseUint(p.in[start:p.pos], 10, 64)
	if err != nil {
		return 0, p.errorf("%v", err)
	}
	return n, nil
}

const instantSuffix = " with local time zone"

func (p *parser) kind() (Kind, error) {
	name := p.ident()
	switch name {
	case "boolean":
		return Of(Boolean), nil
	case "tinyint":
		return Of(Byte), nil
	case "smallint":
		return Of(Short), nil
	case "int":
		return Of(Int), nil
	case "bigint":
		return Of(Long), nil
	case "float":
		return Of(Float), nil
	case "double":
		return Of(Double), nil
	case "string":
		return Of(String), nil
	case "binary":
		return Of(Binary), nil
	case "date":
		return Of(Date), nil
	case "timestamp":
		if strings.HasPrefix(p.in[p.pos:], instantSuffix) {
			p.pos += len(instantSuffix)
			return Of(TimestampInstant), nil
		}
		return Of(Timestamp), nil
	case "char", "varchar":
		n, err := p.length()
		if err != nil {
			return Kind{}, err
		}
		if name == "char" {
			return CharOf(n), nil
		}
		return VarcharOf(n), nil
	case "decimal":
		return p.decimal()
	case "array":
		if err := p.expect('<'); err != nil {
			return Kind{}, err
		}
		elem, err := p.kind()
		if err != nil {
			return Kind{}, err
		}
		if err := p.expect('>'); err != nil {
			return Kind{}, err
		}
		return ListOf(elem), nil
	case "map":
		if err := p.expect('<'); err != nil {
			return Kind{}, err
		}
		key, err := p.kind()
		if err != nil {
			return Kind{}, err
		}
		if err := p.expect(','); err != nil {
			return Kind{}, err
		}
		value, err := p.kind()
		if err != nil {
			return Kind{}, err
		}
		if err := p.expect('>'); err != nil {
			return Kind{}, err
		}
		return MapOf(key, value), nil
	case "uniontype":
		return p.union()
	case "struct":
		return p.structure()
	case "":
		return Kind{}, p.errorf("expected a type name")
	}
	return Kind{}, p.errorf("unknown type %q", name)
}

// length parses "(n)" where n may be omitted.
func (p *parser) length() (uint64, error) {
	if err := p.expect('('); err != nil {
		return 0, err
	}
	n, err := p.number(true)
	if err != nil {
		return 0, err
	}
	return n, p.expect(')')
}

func (p *parser) decimal() (Kind, error) {
	if err := p.expect('('); err != nil {
		return Kind{}, err
	}
	precision, err := p.number(false)
	if err != nil {
		return Kind{}, err
	}
	if err := p.expect(','); err != nil {
		return Kind{}, err
	}
	p.skipSpaces()
	scale, err := p.number(false)
	if err != nil {
		return Kind{}, err
	}
	if err := p.expect(')'); err != nil {
		return Kind{}, err
	}
	return DecimalOf(precision, scale), nil
}

func (p *parser) union() (Kind, error) {
	if err := p.expect('<'); err != nil {
		return Kind{}, err
	}
	var variants []Kind
	if p.eat('>') {
		return UnionOf(variants...), nil
	}
	for {
		v, err := p.kind()
		if err != nil {
			return Kind{}, err
		}
		variants = append(variants, v)
		if p.eat('>') {
			return UnionOf(variants...), nil
		}
		if err := p.expect(','); err != nil {
			return Kind{}, err
		}
	}
}

func (p *parser) structure() (Kind, error) {
	if err := p.expect('<'); err != nil {
		return Kind{}, err
	}
	var fields []Field
	if p.eat('>') {
		return StructOf(fields...), nil
	}
	for {
		name := p.ident()
		if name == "" {
			return Kind{}, p.errorf("expected a field name")
		}
		if err := p.expect(':'); err != nil {
			return Kind{}, err
		}
		k, err := p.kind()
		if err != nil {
			return Kind{}, err
		}
		fields = append(fields, Field{Name: name, Kind: k})
		if p.eat('>') {
			return StructOf(fields...), nil
		}
		if err := p.expect(','); err != nil {
			return Kind{}, err
		}
	}
}
