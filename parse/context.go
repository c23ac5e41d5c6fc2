package parse

import (
	"strings"

	"github.com/i64/duckparse/cursor"
	"github.com/i64/duckparse/errors"
)

// Context is the state a processor, reprocessor or nested decode sees: the
// shared cursor, the instance being populated and the chain of enclosing
// contexts.
type Context struct {
	cur    *cursor.Cursor
	plan   *Plan
	inst   *Instance
	parent *Context
}

func (c *Context) Cursor() *cursor.Cursor { return c.cur }

func (c *Context) Instance() *Instance { return c.inst }

// Parent returns the context of the enclosing structure, or nil at the top.
func (c *Context) Parent() *Context { return c.parent }

// Lookup resolves a dot separated field path. The first segment is searched
// in the current instance and then in each ancestor, stopping at the nearest
// structure that declares it; the remaining segments descend through nested
// instances.
func (c *Context) Lookup(path string) (any, error) {
	return c.Resolve(Ref(path))
}

// Resolve returns the argument value of v.
func (c *Context) Resolve(v Value) (any, error) {
	switch v.tag {
	case tagRef:
		return c.lookup(v.ref)
	case tagNested:
		return c.Decode(*v.kind)
	default:
		return v.lit, nil
	}
}

func (c *Context) lookup(ref []string) (any, error) {
	var (
		val   any
		found bool
	)
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if val, found = ctx.inst.Lookup(ref[0]); found {
			break
		}
		// A declared but unpopulated field shadows ancestors.
		if _, declared := ctx.plan.index[ref[0]]; declared {
			return nil, errors.UnresolvedReference(nil, joinRef(ref))
		}
	}
	if !found {
		return nil, errors.UnresolvedReference(nil, joinRef(ref))
	}

	for _, seg := range ref[1:] {
		inst, ok := val.(*Instance)
		if !ok {
			return nil, errors.UnresolvedReference(nil, joinRef(ref))
		}
		if val, ok = inst.Lookup(seg); !ok {
			return nil, errors.UnresolvedReference(nil, joinRef(ref))
		}
	}
	return val, nil
}

// Decode resolves the parameters of k and runs its processor.
func (c *Context) Decode(k Kind) (any, error) {
	var args []any
	if len(k.Params) > 0 {
		args = make([]any, len(k.Params))
		for i, p := range k.Params {
			v, err := c.Resolve(p)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
	}
	return k.Processor.Process(c, args)
}

// DecodeStructure decodes the section s inline against the shared cursor.
// The new instance's context has c as its parent.
func (c *Context) DecodeStructure(s *Structure) (*Instance, error) {
	p, ok := c.plan.subs[s]
	if !ok {
		var err error
		if p, err = Compile(s); err != nil {
			return nil, err
		}
	}
	if !p.section {
		return nil, errors.MalformedDescriptor(errors.PhaseDecode, []string{s.Name},
			"nested structures must be sections")
	}
	return p.exec(c.cur, c)
}

func joinRef(ref []string) string {
	return strings.Join(ref, ".")
}
