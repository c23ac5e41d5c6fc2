package parse

import (
	"github.com/i64/duckparse/codec"
)

// fixed decodes a fixed-width integer or float. When pinned is false the
// cursor's byte order is used.
type fixed struct {
	width  int
	signed bool
	float  bool
	pinned bool
	end    codec.Endianness
}

func (f fixed) Process(c *Context, _ []any) (any, error) {
	b, err := c.cur.ReadBytes(f.width / 8)
	if err != nil {
		return nil, err
	}

	tbl := c.cur.Codec()
	if f.pinned {
		tbl = codec.For(f.end)
	}

	switch {
	case f.float && f.width == 32:
		return tbl.F32(b), nil
	case f.float:
		return tbl.F64(b), nil
	}

	switch f.width {
	case 8:
		if f.signed {
			return int8(b[0]), nil
		}
		return b[0], nil
	case 16:
		if f.signed {
			return tbl.I16(b), nil
		}
		return tbl.U16(b), nil
	case 32:
		if f.signed {
			return tbl.I32(b), nil
		}
		return tbl.U32(b), nil
	default:
		if f.signed {
			return tbl.I64(b), nil
		}
		return tbl.U64(b), nil
	}
}

func primitive(name string, f fixed) Kind {
	return Kind{Name: name, Processor: f}
}

// Fixed-width kinds in the cursor's byte order.
var (
	U8  = primitive("u8", fixed{width: 8})
	I8  = primitive("i8", fixed{width: 8, signed: true})
	U16 = primitive("u16", fixed{width: 16})
	I16 = primitive("i16", fixed{width: 16, signed: true})
	U32 = primitive("u32", fixed{width: 32})
	I32 = primitive("i32", fixed{width: 32, signed: true})
	U64 = primitive("u64", fixed{width: 64})
	I64 = primitive("i64", fixed{width: 64, signed: true})
	F32 = primitive("f32", fixed{width: 32, float: true})
	F64 = primitive("f64", fixed{width: 64, float: true})
)

// Fixed-width kinds with a pinned byte order.
var (
	U16LE = primitive("u16le", fixed{width: 16, pinned: true, end: codec.LittleEndian})
	U16BE = primitive("u16be", fixed{width: 16, pinned: true, end: codec.BigEndian})
	I16LE = primitive("i16le", fixed{width: 16, signed: true, pinned: true, end: codec.LittleEndian})
	I16BE = primitive("i16be", fixed{width: 16, signed: true, pinned: true, end: codec.BigEndian})
	U32LE = primitive("u32le", fixed{width: 32, pinned: true, end: codec.LittleEndian})
	U32BE = primitive("u32be", fixed{width: 32, pinned: true, end: codec.BigEndian})
	I32LE = primitive("i32le", fixed{width: 32, signed: true, pinned: true, end: codec.LittleEndian})
	I32BE = primitive("i32be", fixed{width: 32, signed: true, pinned: true, end: codec.BigEndian})
	U64LE = primitive("u64le", fixed{width: 64, pinned: true, end: codec.LittleEndian})
	U64BE = primitive("u64be", fixed{width: 64, pinned: true, end: codec.BigEndian})
	I64LE = primitive("i64le", fixed{width: 64, signed: true, pinned: true, end: codec.LittleEndian})
	I64BE = primitive("i64be", fixed{width: 64, signed: true, pinned: true, end: codec.BigEndian})
	F32LE = primitive("f32le", fixed{width: 32, float: true, pinned: true, end: codec.LittleEndian})
	F32BE = primitive("f32be", fixed{width: 32, float: true, pinned: true, end: codec.BigEndian})
	F64LE = primitive("f64le", fixed{width: 64, float: true, pinned: true, end: codec.LittleEndian})
	F64BE = primitive("f64be", fixed{width: 64, float: true, pinned: true, end: codec.BigEndian})
)

// ULEB128 and SLEB128 decode LEB128 varints as uint64 and int64.
var (
	ULEB128 = Kind{Name: "uleb128", Processor: ProcessorFunc(func(c *Context, _ []any) (any, error) {
		return c.cur.ReadULEB128()
	})}
	SLEB128 = Kind{Name: "sleb128", Processor: ProcessorFunc(func(c *Context, _ []any) (any, error) {
		return c.cur.ReadSLEB128()
	})}
)
