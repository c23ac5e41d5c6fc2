// Package wasm describes the section layout of WebAssembly binary modules.
// Export sections are decoded field by field; every other section is kept
// as raw bytes.
package wasm

import (
	"bytes"
	"context"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/i64/duckparse"
	"github.com/i64/duckparse/codec"
	"github.com/i64/duckparse/errors"
	"github.com/i64/duckparse/parse"
)

// Magic opens every module.
const Magic = "\x00asm"

const sectionExport = 7

var SectionID = parse.NewEnum("SectionID", map[int64]string{
	0:  "CUSTOM",
	1:  "TYPE",
	2:  "IMPORT",
	3:  "FUNCTION",
	4:  "TABLE",
	5:  "MEMORY",
	6:  "GLOBAL",
	7:  "EXPORT",
	8:  "START",
	9:  "ELEMENT",
	10: "CODE",
	11: "DATA",
	12: "DATA_COUNT",
	13: "TAG",
})

var ExternKind = parse.NewEnum("ExternKind", map[int64]string{
	0: "FUNC",
	1: "TABLE",
	2: "MEMORY",
	3: "GLOBAL",
	4: "TAG",
})

var Export = parse.Section("export",
	parse.F("name_len", parse.ULEB128),
	parse.F("name", parse.String(parse.Ref("name_len"), parse.Lit("utf-8"))),
	parse.F("kind", parse.Enum(ExternKind, parse.U8)),
	parse.F("index", parse.ULEB128),
)

var ExportSection = parse.Section("export_section",
	parse.F("count", parse.ULEB128),
	parse.F("exports", parse.RepeatN(parse.Struct(Export), parse.Ref("count"))),
)

// sectionBody decodes the payload of a section from its id and size.
type sectionBody struct{}

func (sectionBody) Structures() []*parse.Structure {
	return []*parse.Structure{ExportSection}
}

func (sectionBody) Process(c *parse.Context, args []any) (any, error) {
	id, _ := parse.AsInt64(args[0])
	size, ok := parse.AsInt64(args[1])
	if !ok {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Value(args[1]).
			Detail("section size out of range").
			Build()
	}

	cur := c.Cursor()
	if id != sectionExport {
		return cur.ReadBytes(int(size))
	}

	start := cur.Tell()
	inst, err := c.DecodeStructure(ExportSection)
	if err != nil {
		return nil, err
	}
	if used := cur.Tell() - start; used != size {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Offset(start).
			Value(used).
			Detail("export section declares %d bytes, decoded %d", size, used).
			Build()
	}
	return inst, nil
}

var Section = parse.Section("section",
	parse.F("id", parse.Enum(SectionID, parse.U8)),
	parse.F("size", parse.ULEB128),
	parse.F("body", parse.Kind{
		Name:      "section_body",
		Processor: sectionBody{},
		Params:    []parse.Value{parse.Ref("id"), parse.Ref("size")},
	}),
)

var Module = parse.Stream("module",
	parse.F("magic", parse.Contents([]byte(Magic))),
	parse.F("version", parse.U32LE),
	parse.F("sections", parse.RepeatEOS(parse.Struct(Section))),
).WithEndian(codec.LittleEndian)

var Plan = parse.MustCompile(Module)

// Format registers WebAssembly modules under the name "wasm".
var Format duckparse.Format = duckparse.PlanFormat{ID: "wasm", Plan: Plan}

// Parse decodes a module.
func Parse(src io.ReadSeeker) (*parse.Instance, error) {
	return Plan.Parse(src)
}

// FunctionExports returns the sorted names of the function exports of a
// decoded module.
func FunctionExports(inst *parse.Instance) []string {
	var names []string
	sections, _ := inst.Get("sections").([]any)
	for _, s := range sections {
		body, ok := s.(*parse.Instance).Get("body").(*parse.Instance)
		if !ok {
			continue
		}
		exports, _ := body.Get("exports").([]any)
		for _, e := range exports {
			ex := e.(*parse.Instance)
			if k, _ := ex.Int("kind"); k == 0 {
				names = append(names, ex.Get("name").(string))
			}
		}
	}
	slices.Sort(names)
	return names
}

// VerifyExports decodes data and compares its function exports with the
// ones wazero reports after compiling the same bytes.
func VerifyExports(ctx context.Context, data []byte) error {
	inst, err := Parse(bytes.NewReader(data))
	if err != nil {
		return err
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCoreFeatures(api.CoreFeaturesV2))
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		return errors.Wrap(errors.PhaseValidate, errors.KindInvalidData, err, "compile module")
	}
	defer compiled.Close(ctx)

	want := slices.Sorted(maps.Keys(compiled.ExportedFunctions()))
	return compareExports(want, FunctionExports(inst))
}

func compareExports(want, got []string) error {
	if slices.Equal(want, got) {
		return nil
	}
	return errors.New(errors.PhaseValidate, errors.KindValidationMismatch).
		Expected([]byte(strings.Join(want, ","))).
		Found([]byte(strings.Join(got, ","))).
		Detail("decoded function exports differ from the compiled module").
		Build()
}
