package parse

import (
	"fmt"
	"strings"
)

type valueTag uint8

const (
	tagLit valueTag = iota
	tagRef
	tagNested
)

// Value is a kind parameter: a literal, a reference to an already decoded
// field, or a kind decoded inline to produce the argument.
type Value struct {
	lit  any
	kind *Kind
	ref  []string
	tag  valueTag
}

// Lit returns a literal parameter.
func Lit(v any) Value {
	return Value{tag: tagLit, lit: v}
}

// Ref returns a reference parameter. The path is dot separated; the first
// segment is looked up in the current instance and then in its ancestors,
// later segments descend into nested instances.
func Ref(path string) Value {
	return Value{tag: tagRef, ref: strings.Split(path, ".")}
}

// Nested returns a parameter whose value is produced by decoding k at the
// point the owning field is decoded.
func Nested(k Kind) Value {
	return Value{tag: tagNested, kind: &k}
}

// IsRef reports whether v is a field reference.
func (v Value) IsRef() bool { return v.tag == tagRef }

// RefPath returns the dot separated path of a reference, or "".
func (v Value) RefPath() string {
	if v.tag != tagRef {
		return ""
	}
	return strings.Join(v.ref, ".")
}

// Literal returns the literal of v and whether v is a literal.
func (v Value) Literal() (any, bool) {
	return v.lit, v.tag == tagLit
}

func (v Value) String() string {
	switch v.tag {
	case tagRef:
		return "$" + v.RefPath()
	case tagNested:
		return "<" + v.kind.Name + ">"
	default:
		return fmt.Sprintf("%v", v.lit)
	}
}
