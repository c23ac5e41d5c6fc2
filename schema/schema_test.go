package schema

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i64/duckparse/cursor"
	"github.com/i64/duckparse/errors"
	"github.com/i64/duckparse/parse"
)

const archiveYAML = `
name: archive
endian: little
enums:
  method:
    0: stored
    8: deflate
structures:
  - name: archive
    fields:
      - name: sections
        type: repeat_eos
        of: {type: struct, struct: pk_section}

  - name: pk_section
    section: true
    fields:
      - {name: magic, type: contents, value: PK}
      - {name: type, type: u16}
      - name: body
        type: match
        on: $type
        cases:
          0x0403: local_file
          0x0201: central_dir

  - name: local_file
    section: true
    fields:
      - {name: method, type: enum, enum: method, of: {type: u16}}
      - {name: name_len, type: u8}
      - {name: name, type: string, length: $name_len, encoding: ascii}

  - name: central_dir
    section: true
    fields:
      - {name: count, type: u8}
`

func archiveData() []byte {
	var b bytes.Buffer
	b.WriteString("PK\x03\x04")
	b.Write([]byte{0x08, 0x00, 0x03})
	b.WriteString("abc")
	b.WriteString("PK\x01\x02")
	b.WriteByte(5)
	return b.Bytes()
}

func TestLoad_Archive(t *testing.T) {
	s, err := Load([]byte(archiveYAML))
	require.NoError(t, err)
	assert.Equal(t, "archive", s.Name())
	assert.Equal(t, "archive", s.Root().Name)

	_, ok := s.Structure("local_file")
	assert.True(t, ok)
	m, ok := s.Enum("method")
	require.True(t, ok)
	assert.Equal(t, "deflate", m.Values[8])

	inst, err := s.Parse(bytes.NewReader(archiveData()))
	require.NoError(t, err)

	sections, ok := inst.Get("sections").([]any)
	require.True(t, ok)
	require.Len(t, sections, 2)

	local := sections[0].(*parse.Instance)
	assert.Equal(t, uint16(0x0403), local.Get("type"))
	body := local.Get("body").(*parse.Instance)
	assert.Equal(t, "local_file", body.Name())
	assert.Equal(t, "abc", body.Get("name"))
	assert.Equal(t, "method.deflate", body.Get("method").(parse.EnumValue).String())

	central := sections[1].(*parse.Instance).Get("body").(*parse.Instance)
	assert.Equal(t, "central_dir", central.Name())
	assert.Equal(t, uint8(5), central.Get("count"))
}

func TestLoad_UnknownVariant(t *testing.T) {
	s, err := Load([]byte(archiveYAML))
	require.NoError(t, err)

	_, err = s.Parse(bytes.NewReader([]byte("PK\x05\x06")))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnknownVariant), "err = %v", err)
}

func TestLoad_Reprocess(t *testing.T) {
	doc := `
structures:
  - name: rec
    fields:
      - name: checksum
        type: u8
        reprocess: {after: payload, func: sum}
      - {name: len, type: u8}
      - {name: payload, type: bytes, length: $len}
`
	sum := func(c *parse.Context) (any, error) {
		v, err := c.Lookup("payload")
		if err != nil {
			return nil, err
		}
		var total int64
		for _, b := range v.([]byte) {
			total += int64(b)
		}
		return total, nil
	}

	s, err := Load([]byte(doc), WithFuncs(map[string]parse.Reprocessor{"sum": sum}))
	require.NoError(t, err)

	inst, err := s.Parse(bytes.NewReader([]byte{0, 3, 1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, int64(6), inst.Get("checksum"))
}

func TestLoad_HooksAndSeek(t *testing.T) {
	doc := `
structures:
  - name: file
    before: skip_one
    fields:
      - {name: head, type: u8}
      - {name: tail, type: struct, struct: trailer}
  - name: trailer
    section: true
    seek: {whence: end, offset: -1}
    fields:
      - {name: v, type: u8}
`
	skip := func(c *cursor.Cursor) error {
		_, err := c.Seek(1, io.SeekCurrent)
		return err
	}

	s, err := Load([]byte(doc), WithHooks(map[string]func(*cursor.Cursor) error{"skip_one": skip}))
	require.NoError(t, err)

	inst, err := s.Parse(bytes.NewReader([]byte{0, 1, 2, 7}))
	require.NoError(t, err)
	assert.Equal(t, uint8(1), inst.Get("head"))
	assert.Equal(t, uint8(7), inst.Get("tail").(*parse.Instance).Get("v"))
}

func TestLoad_CustomAndBits(t *testing.T) {
	doc := `
endian: big
structures:
  - name: rec
    fields:
      - {name: a, type: u16}
      - {name: d, type: custom, func: double, args: [$a]}
      - {name: lo, type: bits, bits: 4}
      - {name: hi, type: bits, bits: 4}
      - {name: tag, type: contents, hex: cafe}
      - {name: n, type: uleb128}
      - {name: pad, type: skip, length: 1}
      - {name: items, type: repeat, count: 2, of: {type: u8}}
      - {name: rest, type: strz}
`
	double := func(_ *parse.Context, args []any) (any, error) {
		n, _ := parse.AsInt64(args[0])
		return n * 2, nil
	}

	s, err := Load([]byte(doc), WithProcessors(map[string]parse.ProcessorFunc{"double": double}))
	require.NoError(t, err)

	data := []byte{0x00, 0x15, 0x21, 0xCA, 0xFE, 0x96, 0x01, 0xFF, 4, 5, 'o', 'k', 0}
	inst, err := s.Parse(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, uint16(21), inst.Get("a"))
	assert.Equal(t, int64(42), inst.Get("d"))
	assert.Equal(t, uint64(1), inst.Get("lo"))
	assert.Equal(t, uint64(2), inst.Get("hi"))
	assert.Equal(t, uint64(150), inst.Get("n"))
	assert.False(t, inst.Has("pad"))
	assert.Equal(t, []any{uint8(4), uint8(5)}, inst.Get("items"))
	assert.Equal(t, "ok", inst.Get("rest"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.yaml")
	require.NoError(t, os.WriteFile(path, []byte(archiveYAML), 0o600))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "archive", s.Name())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		target error
	}{
		{"not yaml", "structures: [", errors.ErrInvalidInput},
		{"bad endian", "endian: middle\nstructures: [{name: a, fields: []}]", errors.ErrInvalidInput},
		{"no structures", "name: empty", errors.ErrMalformedDescriptor},
		{"unnamed structure", "structures: [{fields: []}]", errors.ErrMalformedDescriptor},
		{"duplicate structure", "structures: [{name: a}, {name: a}]", errors.ErrMalformedDescriptor},
		{"unknown root", "root: b\nstructures: [{name: a}]", errors.ErrMalformedDescriptor},
		{"section root", "structures: [{name: a, section: true}]", errors.ErrMalformedDescriptor},
		{"unknown type", "structures: [{name: a, fields: [{name: x, type: u128}]}]", errors.ErrMalformedDescriptor},
		{"missing length", "structures: [{name: a, fields: [{name: x, type: bytes}]}]", errors.ErrMalformedDescriptor},
		{"bad length", "structures: [{name: a, fields: [{name: x, type: bytes, length: lots}]}]", errors.ErrMalformedDescriptor},
		{"undeclared struct", "structures: [{name: a, fields: [{name: x, type: struct, struct: b}]}]", errors.ErrMalformedDescriptor},
		{"undeclared enum", "structures: [{name: a, fields: [{name: x, type: enum, enum: e}]}]", errors.ErrMalformedDescriptor},
		{"repeat without body", "structures: [{name: a, fields: [{name: x, type: repeat, count: 2}]}]", errors.ErrMalformedDescriptor},
		{"match without ref", "structures: [{name: a, fields: [{name: x, type: match, on: t}]}]", errors.ErrMalformedDescriptor},
		{"contents without value", "structures: [{name: a, fields: [{name: x, type: contents}]}]", errors.ErrMalformedDescriptor},
		{"bad hex", "structures: [{name: a, fields: [{name: x, type: contents, hex: zz}]}]", errors.ErrMalformedDescriptor},
		{"unregistered processor", "structures: [{name: a, fields: [{name: x, type: custom, func: f}]}]", errors.ErrMalformedDescriptor},
		{"unregistered hook", "structures: [{name: a, before: h}]", errors.ErrMalformedDescriptor},
		{"bad whence", "structures: [{name: a, seek: {whence: middle}}]", errors.ErrMalformedDescriptor},
		{"seek and before", "structures: [{name: a, before: h, seek: {offset: 1}}]", errors.ErrMalformedDescriptor},
		{
			"unregistered reprocess",
			"structures: [{name: a, fields: [{name: x, type: u8, reprocess: {after: x, func: f}}]}]",
			errors.ErrMalformedDescriptor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, tt.target), "err = %v, want %v", err, tt.target)
		})
	}
}

func TestLoad_CompileErrorSurfacesOnParse(t *testing.T) {
	// Trigger declared before the reprocessed field.
	doc := `
structures:
  - name: a
    fields:
      - {name: t, type: u8}
      - name: x
        type: u8
        reprocess: {after: t, func: f}
`
	f := func(*parse.Context) (any, error) { return nil, nil }
	s, err := Load([]byte(doc), WithFuncs(map[string]parse.Reprocessor{"f": f}))
	require.NoError(t, err)

	_, err = s.Compile()
	var e *errors.Error
	require.True(t, stderrors.As(err, &e), "err = %v", err)
	assert.Equal(t, errors.KindMalformedDescriptor, e.Kind)
	assert.Equal(t, errors.PhaseCompile, e.Phase)
}
