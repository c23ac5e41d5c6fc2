// Package codec decodes fixed-width integers and floats from byte slices.
//
// A Table is selected once per endianness and then used for every
// fixed-width read. All functions are pure: they take exactly width/8 bytes
// and never retain the slice.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Endianness selects the byte order of multi-byte values.
type Endianness uint8

const (
	NativeEndian Endianness = iota
	LittleEndian
	BigEndian
)

func (e Endianness) String() string {
	switch e {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return "native"
	}
}

// ParseEndianness accepts "little", "big", "native" and the short forms
// "le" and "be".
func ParseEndianness(s string) (Endianness, error) {
	switch s {
	case "little", "le":
		return LittleEndian, nil
	case "big", "be":
		return BigEndian, nil
	case "native", "":
		return NativeEndian, nil
	}
	return 0, fmt.Errorf("unknown endianness %q", s)
}

// Resolve maps NativeEndian to the platform's byte order.
func (e Endianness) Resolve() Endianness {
	if e != NativeEndian {
		return e
	}
	if nativeLittle {
		return LittleEndian
	}
	return BigEndian
}

var nativeLittle = func() bool {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	return b[0] == 1
}()

// Table decodes fixed-width values in one byte order.
type Table struct {
	order binary.ByteOrder
	end   Endianness
}

var (
	little = Table{order: binary.LittleEndian, end: LittleEndian}
	big    = Table{order: binary.BigEndian, end: BigEndian}
)

// For returns the codec table for e. NativeEndian resolves to the platform order.
func For(e Endianness) Table {
	if e.Resolve() == BigEndian {
		return big
	}
	return little
}

// Endianness returns the (resolved) byte order of the table.
func (t Table) Endianness() Endianness { return t.end }

// Uint decodes an unsigned integer of width bits from b.
// len(b) must equal width/8.
func (t Table) Uint(width int, b []byte) (uint64, error) {
	if err := checkWidth(width, b); err != nil {
		return 0, err
	}
	switch width {
	case 8:
		return uint64(b[0]), nil
	case 16:
		return uint64(t.order.Uint16(b)), nil
	case 32:
		return uint64(t.order.Uint32(b)), nil
	default:
		return t.order.Uint64(b), nil
	}
}

// Int decodes a two's-complement signed integer of width bits from b.
func (t Table) Int(width int, b []byte) (int64, error) {
	u, err := t.Uint(width, b)
	if err != nil {
		return 0, err
	}
	switch width {
	case 8:
		return int64(int8(u)), nil
	case 16:
		return int64(int16(u)), nil
	case 32:
		return int64(int32(u)), nil
	default:
		return int64(u), nil
	}
}

// Float decodes an IEEE-754 float of width 32 or 64 from b.
func (t Table) Float(width int, b []byte) (float64, error) {
	if width != 32 && width != 64 {
		return 0, fmt.Errorf("codec: unsupported float width %d", width)
	}
	u, err := t.Uint(width, b)
	if err != nil {
		return 0, err
	}
	if width == 32 {
		return float64(math.Float32frombits(uint32(u))), nil
	}
	return math.Float64frombits(u), nil
}

func (t Table) U16(b []byte) uint16 { return t.order.Uint16(b) }
func (t Table) U32(b []byte) uint32 { return t.order.Uint32(b) }
func (t Table) U64(b []byte) uint64 { return t.order.Uint64(b) }
func (t Table) I16(b []byte) int16  { return int16(t.order.Uint16(b)) }
func (t Table) I32(b []byte) int32  { return int32(t.order.Uint32(b)) }
func (t Table) I64(b []byte) int64  { return int64(t.order.Uint64(b)) }

func (t Table) F32(b []byte) float32 { return math.Float32frombits(t.order.Uint32(b)) }
func (t Table) F64(b []byte) float64 { return math.Float64frombits(t.order.Uint64(b)) }

func checkWidth(width int, b []byte) error {
	switch width {
	case 8, 16, 32, 64:
	default:
		return fmt.Errorf("codec: unsupported width %d", width)
	}
	if len(b) != width/8 {
		return fmt.Errorf("codec: width %d needs %d bytes, got %d", width, width/8, len(b))
	}
	return nil
}
