package cursor

import (
	"bytes"
	stderrors "errors"
	"io"
	"sync/atomic"

	"github.com/i64/duckparse/codec"
	"github.com/i64/duckparse/errors"
)

// aligned is the needle value meaning no bits of lastByte remain unread.
const aligned = 8

// Cursor reads bytes and LSB-first bit fields from a seekable source of
// fixed size. It is not safe for concurrent use; see Acquire.
type Cursor struct {
	src   io.ReadSeeker
	table codec.Table
	end   codec.Endianness

	pos  int64
	size int64

	lastByte byte
	needle   uint8 // bits of lastByte consumed, 1..8

	busy atomic.Bool
}

// Option configures a Cursor.
type Option func(*Cursor)

// WithEndianness sets the byte order used for fixed-width values.
// The default is codec.NativeEndian.
func WithEndianness(e codec.Endianness) Option {
	return func(c *Cursor) {
		c.end = e
	}
}

// New wraps src. The size of src is probed once by seeking to its end; the
// current position is restored and becomes the cursor's starting position.
func New(src io.ReadSeeker, opts ...Option) (*Cursor, error) {
	if src == nil {
		return nil, errors.InvalidInput(errors.PhaseDecode, "nil source")
	}

	c := &Cursor{src: src, needle: aligned}
	for _, opt := range opts {
		opt(c)
	}
	c.table = codec.For(c.end)

	start, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidInput, err, "probe position")
	}
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidInput, err, "probe size")
	}
	if _, err := src.Seek(start, io.SeekStart); err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidInput, err, "restore position")
	}

	c.pos = start
	c.size = size
	return c, nil
}

// FromBytes returns a cursor over an in-memory buffer.
func FromBytes(data []byte, opts ...Option) *Cursor {
	c, _ := New(bytes.NewReader(data), opts...)
	return c
}

// Tell returns the absolute byte position.
func (c *Cursor) Tell() int64 { return c.pos }

// Size returns the total size of the source.
func (c *Cursor) Size() int64 { return c.size }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int64 { return c.size - c.pos }

// AtEnd reports whether every byte has been consumed.
func (c *Cursor) AtEnd() bool { return c.pos == c.size }

// BitNeedle returns how many bits of the last byte have been consumed,
// modulo 8. An aligned cursor reports 0.
func (c *Cursor) BitNeedle() int { return int(c.needle % 8) }

// RemainingBits returns the unread bits left in the last byte.
func (c *Cursor) RemainingBits() int { return aligned - int(c.needle) }

// Aligned reports whether the cursor sits on a byte boundary.
func (c *Cursor) Aligned() bool { return c.needle == aligned }

// Endianness returns the configured byte order.
func (c *Cursor) Endianness() codec.Endianness { return c.end }

// Codec returns the fixed-width decode table for the cursor's byte order.
func (c *Cursor) Codec() codec.Table { return c.table }

// ReadBytes consumes exactly n bytes. Fewer than n remaining is an
// end-of-stream error and leaves the cursor untouched. A read of n > 0
// bytes realigns the bit reader onto the byte after the last one read.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.New(errors.PhaseDecode, errors.KindMalformedDescriptor).
			Offset(c.pos).
			Value(n).
			Detail("negative read length %d", n).
			Build()
	}
	if int64(n) > c.Remaining() {
		return nil, errors.EndOfStream(nil, c.pos, int64(n), c.Remaining())
	}
	if n == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(c.src, buf); err != nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindEndOfStream).
			Offset(c.pos).
			Cause(err).
			Detail("read %d bytes", n).
			Build()
	}

	c.pos += int64(n)
	c.lastByte = buf[n-1]
	c.needle = aligned
	return buf, nil
}

// ReadByte consumes one byte. It satisfies io.ByteReader.
func (c *Cursor) ReadByte() (byte, error) {
	b, err := c.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUntil consumes bytes up to and including term and returns them
// without the terminator.
func (c *Cursor) ReadUntil(term byte) ([]byte, error) {
	start := c.pos
	var out []byte
	for {
		b, err := c.ReadByte()
		if err != nil {
			var e *errors.Error
			if stderrors.As(err, &e) {
				e.Offset = start
				e.Detail = "unterminated sequence"
			}
			return nil, err
		}
		if b == term {
			return out, nil
		}
		out = append(out, b)
	}
}

// ReadBitsLE reads n bits (1..64), least significant bit first within each
// byte and bytes in ascending order. Bits left over in the current byte are
// used first; only as many new bytes as the remainder needs are consumed.
func (c *Cursor) ReadBitsLE(n int) (uint64, error) {
	if n < 1 || n > 64 {
		return 0, errors.New(errors.PhaseDecode, errors.KindMalformedDescriptor).
			Offset(c.pos).
			Value(n).
			Detail("bit width %d out of range 1..64", n).
			Build()
	}

	remaining := aligned - int(c.needle)
	if n <= remaining {
		v := uint64(c.lastByte>>c.needle) & mask(n)
		c.needle += uint8(n)
		return v, nil
	}

	extra := n - remaining
	count := (extra + 7) / 8
	leftover := uint64(c.lastByte >> c.needle)

	buf, err := c.ReadBytes(count)
	if err != nil {
		return 0, err
	}

	var wide uint64
	for i := len(buf) - 1; i >= 0; i-- {
		wide = wide<<8 | uint64(buf[i])
	}

	v := (wide<<uint(remaining) | leftover) & mask(n)
	c.needle = uint8(extra - 8*(count-1))
	return v, nil
}

// Seek moves the cursor and realigns the bit reader. Targets outside
// [0, Size()] are reported as end-of-stream.
func (c *Cursor) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = c.pos + offset
	case io.SeekEnd:
		target = c.size + offset
	default:
		return c.pos, errors.InvalidInput(errors.PhaseDecode, "invalid whence")
	}

	if target < 0 || target > c.size {
		return c.pos, errors.New(errors.PhaseDecode, errors.KindEndOfStream).
			Offset(c.pos).
			Value(target).
			Detail("seek to %d outside [0, %d]", target, c.size).
			Build()
	}

	if _, err := c.src.Seek(target, io.SeekStart); err != nil {
		return c.pos, errors.Wrap(errors.PhaseDecode, errors.KindInvalidInput, err, "seek")
	}
	c.pos = target
	c.needle = aligned
	return c.pos, nil
}

// Acquire marks the cursor as owned by an in-flight top-level parse. It
// returns false when another parse already holds it.
func (c *Cursor) Acquire() bool {
	return c.busy.CompareAndSwap(false, true)
}

// Release ends ownership taken by Acquire.
func (c *Cursor) Release() {
	c.busy.Store(false)
}

func mask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}
