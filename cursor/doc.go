// Package cursor implements the byte and bit reader that every decode runs on.
//
// A Cursor wraps an io.ReadSeeker whose size is fixed for the lifetime of the
// parse. Byte reads are exact: a read that would run past the end fails with
// an end-of-stream error before anything is consumed. Bit reads are LSB-first
// within a byte, and mixing them with byte reads is allowed:
//
//	c := cursor.FromBytes(data, cursor.WithEndianness(codec.LittleEndian))
//	tag, _ := c.ReadByte()
//	flags, _ := c.ReadBitsLE(3)  // low 3 bits of the next byte
//	length, _ := c.ReadBytes(2)  // realigns onto the following byte
//
// The bit reader keeps a needle into the last byte read. Any byte read of at
// least one byte, and any Seek, moves the needle back to the aligned state.
//
// A Cursor has a single owner at a time. Top-level parses call Acquire and
// Release around their work; nested structures borrow the cursor from their
// parent without acquiring it.
package cursor
