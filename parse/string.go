package parse

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/i64/duckparse/errors"
)

// ToEnd is the string length that reads up to a NUL terminator.
const ToEnd = -1

type textCodec struct {
	dec   encoding.Encoding // nil for ascii and utf-8
	name  string
	wide  bool
	ascii bool
}

var textCodecs = map[string]textCodec{
	"ascii":      {name: "ascii", ascii: true},
	"utf-8":      {name: "utf-8"},
	"utf8":       {name: "utf-8"},
	"latin-1":    {name: "latin-1", dec: charmap.ISO8859_1},
	"latin1":     {name: "latin-1", dec: charmap.ISO8859_1},
	"iso-8859-1": {name: "latin-1", dec: charmap.ISO8859_1},
	"cp437":      {name: "cp437", dec: charmap.CodePage437},
	"utf-16le":   {name: "utf-16le", dec: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), wide: true},
	"utf-16be":   {name: "utf-16be", dec: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), wide: true},
}

func lookupCodec(arg any) (textCodec, error) {
	name, ok := arg.(string)
	if !ok {
		return textCodec{}, errors.New(errors.PhaseDecode, errors.KindMalformedDescriptor).
			Value(arg).
			Detail("encoding must be a string, got %T", arg).
			Build()
	}
	tc, ok := textCodecs[strings.ToLower(name)]
	if !ok {
		return textCodec{}, errors.New(errors.PhaseDecode, errors.KindMalformedDescriptor).
			Value(name).
			Detail("unknown encoding %q", name).
			Build()
	}
	return tc, nil
}

// decode converts raw text in the codec's encoding to a Go string.
func (tc textCodec) decode(raw []byte) (string, error) {
	switch {
	case tc.ascii:
		for i, b := range raw {
			if b >= 0x80 {
				return "", errors.InvalidData(errors.PhaseDecode, nil, "non-ascii byte at index "+strconv.Itoa(i))
			}
		}
		return string(raw), nil
	case tc.dec == nil:
		if !utf8.Valid(raw) {
			return "", errors.InvalidData(errors.PhaseDecode, nil, "invalid utf-8")
		}
		return string(raw), nil
	case tc.wide && len(raw)%2 != 0:
		return "", errors.InvalidData(errors.PhaseDecode, nil, tc.name+" text has odd length")
	}

	out, err := tc.dec.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, tc.name)
	}
	return string(out), nil
}

// readZ reads up to a NUL terminator; for UTF-16 the terminator is a zero
// code unit.
func (tc textCodec) readZ(c *Context) ([]byte, error) {
	if !tc.wide {
		return c.cur.ReadUntil(0)
	}
	var out []byte
	for {
		unit, err := c.cur.ReadBytes(2)
		if err != nil {
			return nil, err
		}
		if unit[0] == 0 && unit[1] == 0 {
			return out, nil
		}
		out = append(out, unit...)
	}
}

type text struct{}

func (text) Process(c *Context, args []any) (any, error) {
	tc, err := lookupCodec(args[1])
	if err != nil {
		return nil, err
	}

	var raw []byte
	if n, ok := AsInt64(args[0]); ok && n == ToEnd {
		raw, err = tc.readZ(c)
	} else {
		var size int
		if size, err = lengthArg("string length", args[0]); err != nil {
			return nil, err
		}
		raw, err = c.cur.ReadBytes(size)
	}
	if err != nil {
		return nil, err
	}

	return tc.decode(raw)
}

// String reads n bytes of text in the named encoding. n may be ToEnd to
// read up to a NUL terminator. Supported encodings are ascii, utf-8,
// latin-1, cp437, utf-16le and utf-16be.
func String(n, enc Value) Kind {
	return Kind{Name: "string", Processor: text{}, Params: []Value{n, enc}}
}

// StringZ reads NUL-terminated text.
func StringZ(enc string) Kind {
	return Kind{Name: "strz", Processor: text{}, Params: []Value{Lit(ToEnd), Lit(enc)}}
}

// DecodeText decodes raw in the named encoding, accepting the same names
// as String.
func DecodeText(raw []byte, enc string) (string, error) {
	tc, err := lookupCodec(enc)
	if err != nil {
		return "", err
	}
	return tc.decode(raw)
}
