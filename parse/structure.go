package parse

import (
	"github.com/i64/duckparse/codec"
	"github.com/i64/duckparse/cursor"
)

// Field is a named kind inside a structure.
type Field struct {
	Name string
	Kind Kind
}

// F declares a field.
func F(name string, k Kind) Field {
	return Field{Name: name, Kind: k}
}

// Structure describes a binary structure as an ordered list of fields.
//
// A stream structure owns its cursor: Plan.Parse builds one around the byte
// source. A section structure decodes against the cursor of its caller and is
// the only kind of structure that may be nested.
type Structure struct {
	// Before runs before the first field, typically to seek.
	Before  func(c *cursor.Cursor) error
	Name    string
	Fields  []Field
	Endian  codec.Endianness
	Section bool
}

// Stream declares a top-level structure.
func Stream(name string, fields ...Field) *Structure {
	return &Structure{Name: name, Fields: fields}
}

// Section declares a structure that borrows its caller's cursor.
func Section(name string, fields ...Field) *Structure {
	return &Structure{Name: name, Fields: fields, Section: true}
}

// WithBefore sets the pre-decode hook and returns s.
func (s *Structure) WithBefore(fn func(c *cursor.Cursor) error) *Structure {
	s.Before = fn
	return s
}

// WithEndian sets the byte order of the cursor a stream structure builds.
func (s *Structure) WithEndian(e codec.Endianness) *Structure {
	s.Endian = e
	return s
}
