package parse

import (
	"bytes"

	"github.com/i64/duckparse/errors"
)

func lengthArg(what string, arg any) (int, error) {
	n, ok := count(arg)
	if !ok {
		return 0, errors.New(errors.PhaseDecode, errors.KindMalformedDescriptor).
			Value(arg).
			Detail("%s must be a non-negative integer, got %v (%T)", what, arg, arg).
			Build()
	}
	return n, nil
}

type rawBytes struct{}

func (rawBytes) Process(c *Context, args []any) (any, error) {
	n, err := lengthArg("length", args[0])
	if err != nil {
		return nil, err
	}
	return c.cur.ReadBytes(n)
}

// Bytes reads n raw bytes.
func Bytes(n Value) Kind {
	return Kind{Name: "bytes", Processor: rawBytes{}, Params: []Value{n}}
}

// Array reads n raw bytes. It is an alias of Bytes and yields the same
// []byte value.
func Array(n Value) Kind {
	return Kind{Name: "array", Processor: rawBytes{}, Params: []Value{n}}
}

// Skip consumes n bytes. The field is not stored in the instance.
func Skip(n Value) Kind {
	return Kind{Name: "skip", Processor: rawBytes{}, Params: []Value{n}, discard: true}
}

type bitField struct{}

func (bitField) Process(c *Context, args []any) (any, error) {
	n, err := lengthArg("bit width", args[0])
	if err != nil {
		return nil, err
	}
	return c.cur.ReadBitsLE(n)
}

// Bits reads an n-bit little-endian bit field as uint64.
func Bits(n Value) Kind {
	return Kind{Name: "bits", Processor: bitField{}, Params: []Value{n}}
}

type contents struct {
	lit []byte
}

func (k contents) Process(c *Context, _ []any) (any, error) {
	start := c.cur.Tell()
	found, err := c.cur.ReadBytes(len(k.lit))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(found, k.lit) {
		return nil, errors.ValidationMismatch(nil, start, k.lit, found)
	}
	return k.lit, nil
}

func (k contents) check() error {
	if len(k.lit) == 0 {
		return errors.MalformedDescriptor(errors.PhaseCompile, nil, "contents literal is empty")
	}
	return nil
}

// Contents reads len(lit) bytes and fails with a validation mismatch unless
// they equal lit.
func Contents(lit []byte) Kind {
	return Kind{Name: "contents", Processor: contents{lit: bytes.Clone(lit)}}
}
