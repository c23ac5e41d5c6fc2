package parse

import (
	"sync"

	"go.uber.org/zap"

	"github.com/i64/duckparse/errors"
)

// Compiler turns structures into plans. Plans are cached per structure, so
// compiling the same descriptor twice returns the same plan. A Compiler is
// safe for concurrent use.
type Compiler struct {
	cache sync.Map // *Structure -> *Plan
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

var defaultCompiler = NewCompiler()

// Compile compiles s with the package's default compiler.
func Compile(s *Structure) (*Plan, error) {
	return defaultCompiler.Compile(s)
}

// MustCompile is like Compile but panics on error. It simplifies
// package-level plan variables.
func MustCompile(s *Structure) *Plan {
	p, err := Compile(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (c *Compiler) Compile(s *Structure) (*Plan, error) {
	if s == nil {
		return nil, errors.MalformedDescriptor(errors.PhaseCompile, nil, "structure cannot be nil")
	}

	if cached, ok := c.cache.Load(s); ok {
		return cached.(*Plan), nil
	}

	b := &builder{plans: make(map[*Structure]*Plan)}
	p, err := b.build(s)
	if err != nil {
		return nil, err
	}

	actual, _ := c.cache.LoadOrStore(s, p)
	return actual.(*Plan), nil
}

// builder holds the state of one compilation. Every plan it produces shares
// the same sub-plan table.
type builder struct {
	plans map[*Structure]*Plan
}

func (b *builder) build(s *Structure) (*Plan, error) {
	if p, ok := b.plans[s]; ok {
		return p, nil
	}

	p := &Plan{
		name:    s.Name,
		section: s.Section,
		endian:  s.Endian,
		index:   make(map[string]int, len(s.Fields)),
		subs:    b.plans,
	}
	b.plans[s] = p

	if s.Before != nil {
		p.steps = append(p.steps, step{op: opHook, hook: s.Before})
	}

	for i, f := range s.Fields {
		if f.Name == "" {
			return nil, errors.New(errors.PhaseCompile, errors.KindMalformedDescriptor).
				Path(s.Name).
				Detail("field %d has no name", i).
				Build()
		}
		if _, dup := p.index[f.Name]; dup {
			return nil, errors.MalformedDescriptor(errors.PhaseCompile, []string{s.Name, f.Name}, "duplicate field name")
		}
		p.index[f.Name] = i
		p.slots = append(p.slots, f.Name)
	}

	pending := make(map[string][]step)
	for i := range s.Fields {
		f := &s.Fields[i]
		path := []string{s.Name, f.Name}

		if err := b.walk(&f.Kind, path); err != nil {
			return nil, err
		}

		k := f.Kind
		p.steps = append(p.steps, step{
			op:    opAssign,
			field: f.Name,
			slot:  i,
			kind:  &k,
		})

		if r := f.Kind.Reprocess; r != nil {
			deferred, err := p.bind(r, i, path)
			if err != nil {
				return nil, err
			}
			pending[r.Trigger] = append(pending[r.Trigger], deferred)
		}

		if deferred, ok := pending[f.Name]; ok {
			p.steps = append(p.steps, deferred...)
			delete(pending, f.Name)
		}
	}

	if ce := Logger().Check(zap.DebugLevel, "compiled plan"); ce != nil {
		ce.Write(
			zap.String("structure", p.name),
			zap.Bool("section", p.section),
			zap.Int("steps", len(p.steps)),
			zap.Int("slots", len(p.slots)),
		)
	}
	return p, nil
}

// bind validates a reprocess binding declared on field i and returns its
// deferred step.
func (p *Plan) bind(r *Binding, i int, path []string) (step, error) {
	if r.Fn == nil {
		return step{}, errors.MalformedDescriptor(errors.PhaseCompile, path, "reprocess binding has no function")
	}
	if r.Target == "" {
		return step{}, errors.MalformedDescriptor(errors.PhaseCompile, path, "reprocess binding has no target")
	}
	ti, ok := p.index[r.Trigger]
	if !ok || ti < i {
		return step{}, errors.New(errors.PhaseCompile, errors.KindMalformedDescriptor).
			Path(path...).
			Value(r.Trigger).
			Detail("reprocess trigger %q does not follow the declaring field", r.Trigger).
			Build()
	}

	slot, ok := p.index[r.Target]
	if !ok {
		slot = len(p.slots)
		p.index[r.Target] = slot
		p.slots = append(p.slots, r.Target)
	}

	return step{
		op:    opReprocess,
		field: r.Target,
		slot:  slot,
		fn:    r.Fn,
	}, nil
}

// walk validates k and compiles every structure reachable from it.
func (b *builder) walk(k *Kind, path []string) error {
	if k.Processor == nil {
		return errors.New(errors.PhaseCompile, errors.KindMalformedDescriptor).
			Path(path...).
			Detail("kind %q has no processor", k.Name).
			Build()
	}

	for i := range k.Params {
		if v := &k.Params[i]; v.tag == tagNested {
			if err := b.walk(v.kind, path); err != nil {
				return err
			}
		}
	}

	if c, ok := k.Processor.(checker); ok {
		if err := c.check(); err != nil {
			if e, ok := err.(*errors.Error); ok {
				e.Path = append(append([]string(nil), path...), e.Path...)
			}
			return err
		}
	}

	if h, ok := k.Processor.(KindHolder); ok {
		for _, inner := range h.Kinds() {
			if err := b.walk(&inner, path); err != nil {
				return err
			}
		}
	}

	if h, ok := k.Processor.(StructureHolder); ok {
		for _, s := range h.Structures() {
			if s == nil {
				return errors.MalformedDescriptor(errors.PhaseCompile, path, "nested structure is nil")
			}
			if !s.Section {
				return errors.New(errors.PhaseCompile, errors.KindMalformedDescriptor).
					Path(path...).
					Value(s.Name).
					Detail("structure %q is a stream; nested structures must be sections", s.Name).
					Build()
			}
			if _, err := b.build(s); err != nil {
				return err
			}
		}
	}

	return nil
}
