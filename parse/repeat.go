package parse

import (
	"github.com/i64/duckparse/errors"
)

type repeatN struct {
	body Kind
}

func (r repeatN) Kinds() []Kind { return []Kind{r.body} }

func (r repeatN) Process(c *Context, args []any) (any, error) {
	n, ok := count(args[0])
	if !ok {
		return nil, errors.New(errors.PhaseDecode, errors.KindMalformedDescriptor).
			Value(args[0]).
			Detail("repeat count must be a non-negative integer, got %v (%T)", args[0], args[0]).
			Build()
	}

	// The count is untrusted; cap the reservation by what the stream can hold.
	out := make([]any, 0, min(n, int(c.cur.Remaining())))
	for i := 0; i < n; i++ {
		start := c.cur.Tell()
		v, err := c.Decode(r.body)
		if err != nil {
			return nil, stepError(err, r.body.Name, indexSegment(i), start)
		}
		out = append(out, v)
	}
	return out, nil
}

// RepeatN decodes body count times against the shared cursor. The count is
// resolved once, before the first iteration.
func RepeatN(body Kind, count Value) Kind {
	return Kind{Name: "repeat", Processor: repeatN{body: body}, Params: []Value{count}}
}

type repeatEOS struct {
	body Kind
}

func (r repeatEOS) Kinds() []Kind { return []Kind{r.body} }

func (r repeatEOS) Process(c *Context, _ []any) (any, error) {
	var out []any
	for i := 0; c.cur.Tell() != c.cur.Size(); i++ {
		start, needle := c.cur.Tell(), c.cur.BitNeedle()
		v, err := c.Decode(r.body)
		if err != nil {
			return nil, stepError(err, r.body.Name, indexSegment(i), start)
		}
		if c.cur.Tell() == start && c.cur.BitNeedle() == needle {
			return nil, errors.New(errors.PhaseDecode, errors.KindMalformedDescriptor).
				Path(indexSegment(i)).
				Offset(start).
				Detail("repeated %s consumed no input", r.body.Name).
				Build()
		}
		out = append(out, v)
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}

// RepeatEOS decodes body until the cursor reaches the end of the source.
// A body that runs out of input mid-iteration fails with end_of_stream.
func RepeatEOS(body Kind) Kind {
	return Kind{Name: "repeat_eos", Processor: repeatEOS{body: body}}
}
