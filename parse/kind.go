package parse

// Processor decodes one value. args holds the kind's parameters, already
// resolved in declaration order.
type Processor interface {
	Process(c *Context, args []any) (any, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(c *Context, args []any) (any, error)

func (f ProcessorFunc) Process(c *Context, args []any) (any, error) {
	return f(c, args)
}

// KindHolder is implemented by processors that decode other kinds, such as
// repeats. The compiler walks the returned kinds.
type KindHolder interface {
	Kinds() []Kind
}

// StructureHolder is implemented by processors that decode nested section
// structures. The compiler builds a sub-plan for each returned structure.
type StructureHolder interface {
	Structures() []*Structure
}

// checker is implemented by built-in processors with constraints that can
// be verified without reading any bytes.
type checker interface {
	check() error
}

// Reprocessor recomputes a field after its trigger has been decoded. It runs
// with the cursor positioned right after the trigger.
type Reprocessor func(c *Context) (any, error)

// Binding attaches a deferred recomputation to a field: once Trigger has
// been assigned, Fn runs and its result is stored in Target.
type Binding struct {
	Fn      Reprocessor
	Trigger string
	Target  string
}

// Kind describes how one field is decoded.
type Kind struct {
	Processor Processor
	Reprocess *Binding
	Name      string
	Params    []Value
	discard   bool
}

// Then returns a copy of k that is recomputed by fn into target once the
// field named trigger has been decoded.
func (k Kind) Then(trigger, target string, fn Reprocessor) Kind {
	k.Reprocess = &Binding{Trigger: trigger, Target: target, Fn: fn}
	return k
}

// Custom wraps fn as a kind with the given parameters.
func Custom(name string, fn ProcessorFunc, params ...Value) Kind {
	return Kind{Name: name, Processor: fn, Params: params}
}
