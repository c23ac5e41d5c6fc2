package parse

import (
	"github.com/i64/duckparse/errors"
)

// EnumType maps integers to symbolic names.
type EnumType struct {
	Values map[int64]string
	Name   string
}

// NewEnum declares an enum type.
func NewEnum(name string, values map[int64]string) *EnumType {
	return &EnumType{Name: name, Values: values}
}

// Of returns the enum value for v, if v is mapped.
func (t *EnumType) Of(v int64) (EnumValue, bool) {
	name, ok := t.Values[v]
	if !ok {
		return EnumValue{}, false
	}
	return EnumValue{Type: t, Name: name, Value: v}, true
}

// EnumValue is a decoded enum member.
type EnumValue struct {
	Type  *EnumType
	Name  string
	Value int64
}

func (v EnumValue) String() string {
	if v.Type == nil {
		return v.Name
	}
	return v.Type.Name + "." + v.Name
}

type enum struct {
	t *EnumType
}

func (e enum) Process(c *Context, args []any) (any, error) {
	n, ok := AsInt64(args[0])
	if !ok {
		return nil, errors.New(errors.PhaseDecode, errors.KindMalformedDescriptor).
			Value(args[0]).
			Detail("enum %s wraps a non-integer kind (%T)", e.t.Name, args[0]).
			Build()
	}
	v, ok := e.t.Of(n)
	if !ok {
		return nil, errors.UnknownEnumValue(nil, -1, n, e.t.Name)
	}
	return v, nil
}

func (e enum) check() error {
	if e.t == nil || len(e.t.Values) == 0 {
		return errors.MalformedDescriptor(errors.PhaseCompile, nil, "enum has no values")
	}
	return nil
}

// Enum decodes inner and maps the integer through t. Integers without a
// name are an unknown_enum_value error.
func Enum(t *EnumType, inner Kind) Kind {
	return Kind{Name: "enum", Processor: enum{t: t}, Params: []Value{Nested(inner)}}
}
