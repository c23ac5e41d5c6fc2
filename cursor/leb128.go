package cursor

import "github.com/i64/duckparse/errors"

// ReadULEB128 reads an unsigned LEB128 encoded uint64.
func (c *Cursor) ReadULEB128() (uint64, error) {
	start := c.pos
	var result uint64
	var shift uint
	for {
		b, err := c.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift == 63 && b > 1 {
			return 0, overflow(start)
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 70 {
			return 0, overflow(start)
		}
	}
}

// ReadSLEB128 reads a signed LEB128 encoded int64.
func (c *Cursor) ReadSLEB128() (int64, error) {
	start := c.pos
	var result int64
	var shift uint
	var b byte
	var err error
	for {
		b, err = c.ReadByte()
		if err != nil {
			return 0, err
		}
		// The tenth byte carries only the sign bit.
		if shift == 63 && b != 0 && b != 0x7f {
			return 0, overflow(start)
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift >= 70 {
			return 0, overflow(start)
		}
	}
	// Sign extend
	if shift < 64 && b&0x40 != 0 {
		result |= ^int64(0) << shift
	}
	return result, nil
}

func overflow(at int64) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Offset(at).
		Detail("leb128: overflow").
		Build()
}
