package wasm

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i64/duckparse/errors"
	"github.com/i64/duckparse/parse"
)

// addModule exports one function: add(i32, i32) i32.
var addModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x07, 0x01, 0x03, 0x61, 0x64, 0x64, 0x00, 0x00,
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b,
}

func TestParse(t *testing.T) {
	inst, err := Parse(bytes.NewReader(addModule))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), inst.Get("version"))

	sections := inst.Get("sections").([]any)
	require.Len(t, sections, 4)

	var ids []string
	for _, s := range sections {
		ids = append(ids, s.(*parse.Instance).Get("id").(parse.EnumValue).Name)
	}
	assert.Equal(t, []string{"TYPE", "FUNCTION", "EXPORT", "CODE"}, ids)

	typ := sections[0].(*parse.Instance)
	assert.Equal(t, []byte{0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f}, typ.Get("body"))

	exp := sections[2].(*parse.Instance).Get("body").(*parse.Instance)
	assert.Equal(t, "export_section", exp.Name())
	exports := exp.Get("exports").([]any)
	require.Len(t, exports, 1)
	add := exports[0].(*parse.Instance)
	assert.Equal(t, "add", add.Get("name"))
	assert.Equal(t, "ExternKind.FUNC", add.Get("kind").(parse.EnumValue).String())
	assert.Equal(t, uint64(0), add.Get("index"))

	assert.Equal(t, []string{"add"}, FunctionExports(inst))
}

func TestParse_BadMagic(t *testing.T) {
	data := bytes.Clone(addModule)
	data[1] = 'b'
	_, err := Format.Parse(bytes.NewReader(data))
	assert.True(t, stderrors.Is(err, errors.ErrValidationMismatch), "err = %v", err)
}

func TestParse_ExportSizeMismatch(t *testing.T) {
	data := bytes.Clone(addModule)
	data[22] = 0x08
	_, err := Parse(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidData), "err = %v", err)

	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, []string{"sections", "[2]", "body"}, e.Path)
	assert.Equal(t, int64(23), e.Offset)
}

func TestParse_UnknownSection(t *testing.T) {
	data := append(bytes.Clone(addModule), 0x2A, 0x00)
	_, err := Parse(bytes.NewReader(data))
	assert.True(t, stderrors.Is(err, errors.ErrUnknownEnumValue), "err = %v", err)
}

func TestVerifyExports(t *testing.T) {
	require.NoError(t, VerifyExports(context.Background(), addModule))
}

func TestVerifyExports_Truncated(t *testing.T) {
	err := VerifyExports(context.Background(), addModule[:len(addModule)-3])
	assert.True(t, stderrors.Is(err, errors.ErrEndOfStream), "err = %v", err)
}

func TestCompareExports(t *testing.T) {
	assert.NoError(t, compareExports([]string{"a", "b"}, []string{"a", "b"}))

	err := compareExports([]string{"a", "b"}, []string{"a"})
	require.Error(t, err)
	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, errors.KindValidationMismatch, e.Kind)
	assert.Equal(t, []byte("a,b"), e.Expected)
	assert.Equal(t, []byte("a"), e.Found)
}
