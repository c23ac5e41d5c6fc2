package parse

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// Instance is the result of executing a plan: a record of decoded values
// stored in the plan's slot order. Fields are populated strictly in plan
// order and are visible to later steps as soon as they are assigned.
type Instance struct {
	plan   *Plan
	values []any
	isSet  []bool
}

func newInstance(p *Plan) *Instance {
	return &Instance{
		plan:   p,
		values: make([]any, len(p.slots)),
		isSet:  make([]bool, len(p.slots)),
	}
}

func (in *Instance) set(slot int, v any) {
	in.values[slot] = v
	in.isSet[slot] = true
}

// Name returns the name of the structure the instance was decoded from.
func (in *Instance) Name() string { return in.plan.name }

// Get returns the value of a populated field, or nil.
func (in *Instance) Get(name string) any {
	v, _ := in.Lookup(name)
	return v
}

// Lookup returns the value of a field and whether it has been populated.
func (in *Instance) Lookup(name string) (any, bool) {
	i, ok := in.plan.index[name]
	if !ok || !in.isSet[i] {
		return nil, false
	}
	return in.values[i], true
}

// Has reports whether name has been populated.
func (in *Instance) Has(name string) bool {
	_, ok := in.Lookup(name)
	return ok
}

// Int returns a populated integer field as int64.
func (in *Instance) Int(name string) (int64, bool) {
	v, ok := in.Lookup(name)
	if !ok {
		return 0, false
	}
	return AsInt64(v)
}

// Fields returns the populated field names in slot order.
func (in *Instance) Fields() []string {
	out := make([]string, 0, len(in.values))
	for i, name := range in.plan.slots {
		if in.isSet[i] {
			out = append(out, name)
		}
	}
	return out
}

// All iterates over populated fields in slot order.
func (in *Instance) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for i, name := range in.plan.slots {
			if !in.isSet[i] {
				continue
			}
			if !yield(name, in.values[i]) {
				return
			}
		}
	}
}

// Len returns the number of populated fields.
func (in *Instance) Len() int {
	n := 0
	for _, ok := range in.isSet {
		if ok {
			n++
		}
	}
	return n
}

// String renders the instance as Name(field=value, ...). Integers are
// decimal, byte slices and strings are quoted, enum values render as
// Type.NAME and lists as [a, b].
func (in *Instance) String() string {
	var b strings.Builder
	in.render(&b)
	return b.String()
}

func (in *Instance) render(b *strings.Builder) {
	b.WriteString(in.plan.name)
	b.WriteByte('(')
	first := true
	for name, v := range in.All() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(name)
		b.WriteByte('=')
		renderValue(b, v)
	}
	b.WriteByte(')')
}

func renderValue(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("nil")
	case *Instance:
		x.render(b)
	case EnumValue:
		b.WriteString(x.String())
	case []byte:
		b.WriteString(strconv.Quote(string(x)))
	case string:
		b.WriteString(strconv.Quote(x))
	case []any:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			renderValue(b, e)
		}
		b.WriteByte(']')
	case float32:
		b.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	case float64:
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	default:
		if n, ok := AsInt64(v); ok {
			b.WriteString(strconv.FormatInt(n, 10))
			return
		}
		if u, ok := v.(uint64); ok {
			b.WriteString(strconv.FormatUint(u, 10))
			return
		}
		fmt.Fprintf(b, "%v", v)
	}
}
