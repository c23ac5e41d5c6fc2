package parse

import (
	"sort"

	"github.com/i64/duckparse/errors"
)

type dispatch struct {
	cases map[int64]*Structure
}

func (d dispatch) Structures() []*Structure {
	keys := make([]int64, 0, len(d.cases))
	for k := range d.cases {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]*Structure, len(keys))
	for i, k := range keys {
		out[i] = d.cases[k]
	}
	return out
}

func (d dispatch) check() error {
	if len(d.cases) == 0 {
		return errors.MalformedDescriptor(errors.PhaseCompile, nil, "dispatch has no cases")
	}
	return nil
}

func (d dispatch) Process(c *Context, args []any) (any, error) {
	disc, ok := AsInt64(args[0])
	if !ok {
		if u, wide := asUint64(args[0]); wide {
			return nil, errors.New(errors.PhaseDecode, errors.KindUnknownVariant).
				Offset(c.cur.Tell()).
				Value(u).
				Detail("no case for discriminant %#x", u).
				Build()
		}
		return nil, errors.New(errors.PhaseDecode, errors.KindMalformedDescriptor).
			Value(args[0]).
			Detail("dispatch discriminant must be an integer or enum, got %T", args[0]).
			Build()
	}
	s, ok := d.cases[disc]
	if !ok {
		return nil, errors.UnknownVariant(nil, c.cur.Tell(), disc)
	}
	return c.DecodeStructure(s)
}

// asUint64 reports unsigned discriminants beyond the int64 range. No case
// key can match them.
func asUint64(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	}
	return 0, false
}

// Dispatch selects a section structure by discriminant and decodes it
// inline. A discriminant without a case is an unknown_variant error; there
// is no default branch.
func Dispatch(disc Value, cases map[int64]*Structure) Kind {
	return Kind{Name: "dispatch", Processor: dispatch{cases: cases}, Params: []Value{disc}}
}

type nested struct {
	s *Structure
}

func (n nested) Structures() []*Structure { return []*Structure{n.s} }

func (n nested) Process(c *Context, _ []any) (any, error) {
	return c.DecodeStructure(n.s)
}

// Struct decodes the section s inline.
func Struct(s *Structure) Kind {
	name := "struct"
	if s != nil {
		name = s.Name
	}
	return Kind{Name: name, Processor: nested{s: s}}
}
