package fjson

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ValueKind identifies which variant a Value holds.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// String returns the JSON type name for the kind, with int/float both
// reporting as "number".
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt, KindFloat:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is the result of a parse: a tagged union over the JSON types.
// A Value is built bottom-up during a single parse call and must be
// treated as immutable once returned.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
	a    []Value
	o    *Object
}

// Object is an insertion-ordered string-keyed mapping. Keys are
// unique; Set on an existing key replaces the value in place, so the
// last occurrence of a duplicate key wins without disturbing the
// original insertion position.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Len returns the number of entries.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order. The returned slice is
// shared; callers must not modify it.
func (o *Object) Keys() []string {
	return o.keys
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set inserts or replaces the value for key.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Constructors.

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps a 64-bit integer number.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a 64-bit floating point number.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array wraps a sequence of values.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, a: elems}
}

// ObjectValue wraps an object. A nil object is normalized to empty.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, o: o}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload; ok is false for other kinds.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsInt64 returns the integer payload; ok is false for other kinds,
// including floats.
func (v Value) AsInt64() (int64, bool) {
	return v.i, v.kind == KindInt
}

// AsFloat64 returns the numeric payload as a float. Integer values
// convert; ok is false for non-numbers.
func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsString returns the string payload; ok is false for other kinds.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsArray returns the element slice; ok is false for other kinds.
// The slice is shared and must not be modified.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.a, true
}

// AsObject returns the object; ok is false for other kinds.
func (v Value) AsObject() (*Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.o, true
}

// Equal reports structural equality. Objects compare by key set and
// per-key values, ignoring insertion order differences; integers and
// floats of equal numeric value are still distinct kinds.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f || (math.IsNaN(v.f) && math.IsNaN(other.f))
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.a) != len(other.a) {
			return false
		}
		for idx := range v.a {
			if !v.a[idx].Equal(other.a[idx]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.o.Len() != other.o.Len() {
			return false
		}
		for _, k := range v.o.keys {
			ov, ok := other.o.Get(k)
			if !ok {
				return false
			}
			mv, _ := v.o.Get(k)
			if !mv.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// CompactJSON serializes the value as minimal standard JSON. Object
// keys appear in insertion order. The output always re-parses under
// default (and strict) options to a structurally equal value.
func (v Value) CompactJSON() string {
	var b strings.Builder
	v.writeCompact(&b)
	return b.String()
}

func (v Value) writeCompact(b *strings.Builder) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		if v.b {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindInt:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		writeCompactFloat(b, v.f)
	case KindString:
		writeQuoted(b, v.s)
	case KindArray:
		b.WriteByte('[')
		for i, elem := range v.a {
			if i > 0 {
				b.WriteByte(',')
			}
			elem.writeCompact(b)
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		for i, k := range v.o.keys {
			if i > 0 {
				b.WriteByte(',')
			}
			writeQuoted(b, k)
			b.WriteByte(':')
			elem, _ := v.o.Get(k)
			elem.writeCompact(b)
		}
		b.WriteByte('}')
	}
}

// IndentJSON serializes the value as standard JSON with one element
// per line, nesting by indent. Empty objects and arrays stay on one
// line.
func (v Value) IndentJSON(indent string) string {
	var b strings.Builder
	v.writeIndent(&b, indent, 0)
	return b.String()
}

func (v Value) writeIndent(b *strings.Builder, indent string, depth int) {
	switch v.kind {
	case KindArray:
		if len(v.a) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, elem := range v.a {
			if i > 0 {
				b.WriteString(",\n")
			}
			writeIndentPrefix(b, indent, depth+1)
			elem.writeIndent(b, indent, depth+1)
		}
		b.WriteByte('\n')
		writeIndentPrefix(b, indent, depth)
		b.WriteByte(']')
	case KindObject:
		if v.o == nil || len(v.o.keys) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for i, k := range v.o.keys {
			if i > 0 {
				b.WriteString(",\n")
			}
			writeIndentPrefix(b, indent, depth+1)
			writeQuoted(b, k)
			b.WriteString(": ")
			elem, _ := v.o.Get(k)
			elem.writeIndent(b, indent, depth+1)
		}
		b.WriteByte('\n')
		writeIndentPrefix(b, indent, depth)
		b.WriteByte('}')
	default:
		v.writeCompact(b)
	}
}

func writeIndentPrefix(b *strings.Builder, indent string, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(indent)
	}
}

// writeCompactFloat renders f so the result is still a valid JSON
// number: non-finite values degrade to null, and values that format
// without a point or exponent gain a ".0" so they re-parse as floats.
func writeCompactFloat(b *strings.Builder, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		b.WriteString("null")
		return
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	b.WriteString(s)
	if !strings.ContainsAny(s, ".eE") {
		b.WriteString(".0")
	}
}

// writeQuoted renders s as a double-quoted JSON string, escaping the
// required characters and control bytes.
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 {
				b.WriteString(`\u`)
				const hex = "0123456789abcdef"
				b.WriteByte('0')
				b.WriteByte('0')
				b.WriteByte(hex[(r>>4)&0xf])
				b.WriteByte(hex[r&0xf])
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

// decodeStringLiteral converts the contents of a quoted string literal
// (without the surrounding quotes, starting at byte offset contentPos
// in the original input) into its unescaped form. Errors carry the
// position of the offending escape.
func decodeStringLiteral(content string, contentPos int) (string, *ParseError) {
	if !strings.ContainsRune(content, '\\') {
		return content, nil
	}
	var b strings.Builder
	b.Grow(len(content))
	for i := 0; i < len(content); {
		c := content[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		escPos := contentPos + i
		if i+1 >= len(content) {
			return "", errInvalidEscape(escPos)
		}
		switch content[i+1] {
		case '"':
			b.WriteByte('"')
			i += 2
		case '\'':
			b.WriteByte('\'')
			i += 2
		case '\\':
			b.WriteByte('\\')
			i += 2
		case '/':
			b.WriteByte('/')
			i += 2
		case 'b':
			b.WriteByte('\b')
			i += 2
		case 'f':
			b.WriteByte('\f')
			i += 2
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 'r':
			b.WriteByte('\r')
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case 'u':
			r, consumed, err := decodeUnicodeEscape(content[i:], escPos)
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			i += consumed
		default:
			return "", errInvalidEscape(escPos)
		}
	}
	return b.String(), nil
}

// decodeUnicodeEscape decodes a \uXXXX escape starting at the leading
// backslash, composing surrogate pairs into a single rune. It returns
// the rune and the number of input bytes consumed.
func decodeUnicodeEscape(s string, pos int) (rune, int, *ParseError) {
	// s begins with `\u`.
	if len(s) < 6 {
		return 0, 0, errInvalidUnicode(pos)
	}
	hi, ok := parseHex4(s[2:6])
	if !ok {
		return 0, 0, errInvalidUnicode(pos)
	}
	if utf16.IsSurrogate(rune(hi)) {
		if len(s) >= 12 && s[6] == '\\' && s[7] == 'u' {
			lo, ok := parseHex4(s[8:12])
			if ok {
				r := utf16.DecodeRune(rune(hi), rune(lo))
				if r != utf8.RuneError {
					return r, 12, nil
				}
			}
		}
		// Lone surrogate: substitute the replacement character rather
		// than failing, matching lenient decoder behavior.
		return utf8.RuneError, 6, nil
	}
	return rune(hi), 6, nil
}

func parseHex4(s string) (uint16, bool) {
	var v uint16
	for i := 0; i < 4; i++ {
		c := s[i]
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint16(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint16(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint16(c-'A') + 10
		default:
			return 0, false
		}
	}
	return v, true
}
