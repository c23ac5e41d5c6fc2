package parse

import (
	"bytes"
	stderrors "errors"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/i64/duckparse/codec"
	"github.com/i64/duckparse/cursor"
	"github.com/i64/duckparse/errors"
)

type stepOp uint8

const (
	opHook      stepOp = iota // pre-decode hook
	opAssign                  // decode a field into its slot
	opReprocess               // deferred recomputation after a trigger
)

func (o stepOp) String() string {
	switch o {
	case opHook:
		return "hook"
	case opAssign:
		return "assign"
	default:
		return "reprocess"
	}
}

type step struct {
	kind  *Kind
	fn    Reprocessor
	hook  func(*cursor.Cursor) error
	field string
	slot  int
	op    stepOp
}

// Plan is the compiled, immutable form of a Structure. A plan may be
// executed any number of times, concurrently, each time against its own
// cursor.
type Plan struct {
	index   map[string]int
	subs    map[*Structure]*Plan
	name    string
	steps   []step
	slots   []string
	endian  codec.Endianness
	section bool
}

// Name returns the name of the compiled structure.
func (p *Plan) Name() string { return p.name }

// Section reports whether the plan decodes against a borrowed cursor.
func (p *Plan) Section() bool { return p.section }

// Slots returns the field slot names in slot order: declared fields first,
// then reprocess targets that were not declared as fields.
func (p *Plan) Slots() []string {
	return append([]string(nil), p.slots...)
}

// Steps describes the plan's steps, one "op:field" entry per step.
func (p *Plan) Steps() []string {
	out := make([]string, len(p.steps))
	for i, st := range p.steps {
		if st.op == opHook {
			out[i] = "hook"
			continue
		}
		out[i] = st.op.String() + ":" + st.field
	}
	return out
}

// Parse decodes a stream plan from src. A new cursor is built around src in
// the structure's byte order.
func (p *Plan) Parse(src io.ReadSeeker) (*Instance, error) {
	if p.section {
		return nil, errors.MalformedDescriptor(errors.PhaseDecode, []string{p.name},
			"section structures decode with ParseInto")
	}
	cur, err := cursor.New(src, cursor.WithEndianness(p.endian))
	if err != nil {
		return nil, err
	}
	return p.ParseInto(cur)
}

// ParseInto decodes against a caller-owned cursor, continuing from its
// current position. The cursor is held for the duration of the call; a
// second concurrent ParseInto on the same cursor fails.
func (p *Plan) ParseInto(cur *cursor.Cursor) (*Instance, error) {
	if cur == nil {
		return nil, errors.InvalidInput(errors.PhaseDecode, "nil cursor")
	}
	if !cur.Acquire() {
		return nil, errors.InvalidInput(errors.PhaseDecode, "cursor is owned by another parse")
	}
	defer cur.Release()

	return p.exec(cur, nil)
}

// ParseBytes compiles s and decodes it from data.
func ParseBytes(s *Structure, data []byte) (*Instance, error) {
	p, err := Compile(s)
	if err != nil {
		return nil, err
	}
	if p.section {
		return p.ParseInto(cursor.FromBytes(data, cursor.WithEndianness(p.endian)))
	}
	return p.Parse(bytes.NewReader(data))
}

func (p *Plan) exec(cur *cursor.Cursor, parent *Context) (*Instance, error) {
	inst := newInstance(p)
	ctx := &Context{cur: cur, plan: p, inst: inst, parent: parent}

	for i := range p.steps {
		st := &p.steps[i]
		start := cur.Tell()

		if ce := Logger().Check(zap.DebugLevel, "step"); ce != nil {
			ce.Write(
				zap.String("structure", p.name),
				zap.Stringer("op", st.op),
				zap.String("field", st.field),
				zap.Int64("offset", start),
			)
		}

		switch st.op {
		case opHook:
			if err := st.hook(cur); err != nil {
				return nil, stepError(err, p.name, "", start)
			}
		case opAssign:
			v, err := ctx.Decode(*st.kind)
			if err != nil {
				return nil, stepError(err, p.name, st.field, start)
			}
			if !st.kind.discard {
				inst.set(st.slot, v)
			}
		case opReprocess:
			v, err := st.fn(ctx)
			if err != nil {
				return nil, stepError(err, p.name, st.field, start)
			}
			inst.set(st.slot, v)
		}
	}

	return inst, nil
}

// stepError attaches the failing field and offset to err without changing
// its kind. Errors that are not *errors.Error become invalid_data.
func stepError(err error, structure, field string, offset int64) error {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		e = errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Offset(offset).
			Cause(err).
			Detail("decode %s", structure).
			Build()
	} else if e.Offset < 0 {
		cp := *e
		cp.Offset = offset
		e = &cp
	}
	if field == "" {
		return e
	}
	return e.WithParent(field)
}

func indexSegment(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
