package schema

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/i64/duckparse/codec"
	"github.com/i64/duckparse/cursor"
	"github.com/i64/duckparse/errors"
	"github.com/i64/duckparse/parse"
)

// Schema is a loaded document: its structures and enums resolved into
// parse descriptors.
type Schema struct {
	root       *parse.Structure
	structures map[string]*parse.Structure
	enums      map[string]*parse.EnumType
	name       string
}

// Load parses a YAML schema document.
func Load(data []byte, opts ...Option) (*Schema, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "parse document")
	}
	return FromDocument(&doc, opts...)
}

// LoadFile reads and parses a YAML schema document.
func LoadFile(path string, opts ...Option) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "read "+path)
	}
	return Load(data, opts...)
}

// FromDocument resolves an already decoded document.
func FromDocument(doc *Document, opts ...Option) (*Schema, error) {
	l := &loader{
		cfg:        newConfig(opts),
		structures: make(map[string]*parse.Structure, len(doc.Structures)),
		enums:      make(map[string]*parse.EnumType, len(doc.Enums)),
	}

	end, err := codec.ParseEndianness(doc.Endian)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "endian")
	}

	for name, values := range doc.Enums {
		l.enums[name] = parse.NewEnum(name, values)
	}

	if len(doc.Structures) == 0 {
		return nil, errors.MalformedDescriptor(errors.PhaseLoad, nil, "document declares no structures")
	}

	// Shells first, so structures may refer to each other in any order.
	for _, sd := range doc.Structures {
		if sd.Name == "" {
			return nil, errors.MalformedDescriptor(errors.PhaseLoad, nil, "structure without a name")
		}
		if _, dup := l.structures[sd.Name]; dup {
			return nil, errors.MalformedDescriptor(errors.PhaseLoad, []string{sd.Name}, "duplicate structure")
		}
		l.structures[sd.Name] = &parse.Structure{Name: sd.Name, Section: sd.Section}
	}

	for i := range doc.Structures {
		if err := l.fill(&doc.Structures[i]); err != nil {
			return nil, err
		}
	}

	rootName := doc.Root
	if rootName == "" {
		rootName = doc.Structures[0].Name
	}
	root, ok := l.structures[rootName]
	if !ok {
		return nil, errors.MalformedDescriptor(errors.PhaseLoad, nil, fmt.Sprintf("root structure %q is not declared", rootName))
	}
	if root.Section {
		return nil, errors.MalformedDescriptor(errors.PhaseLoad, []string{rootName}, "root structure must not be a section")
	}
	root.Endian = end

	name := doc.Name
	if name == "" {
		name = rootName
	}

	Logger().Debug("loaded schema",
		zap.String("name", name),
		zap.String("root", rootName),
		zap.Int("structures", len(l.structures)),
		zap.Int("enums", len(l.enums)),
	)

	return &Schema{
		name:       name,
		root:       root,
		structures: l.structures,
		enums:      l.enums,
	}, nil
}

// Name returns the document name, or the root structure's name.
func (s *Schema) Name() string { return s.name }

// Root returns the root structure.
func (s *Schema) Root() *parse.Structure { return s.root }

// Structure returns a declared structure by name.
func (s *Schema) Structure(name string) (*parse.Structure, bool) {
	st, ok := s.structures[name]
	return st, ok
}

// Enum returns a declared enum by name.
func (s *Schema) Enum(name string) (*parse.EnumType, bool) {
	e, ok := s.enums[name]
	return e, ok
}

// Compile compiles the root structure.
func (s *Schema) Compile() (*parse.Plan, error) {
	return parse.Compile(s.root)
}

// Parse decodes src with the root structure.
func (s *Schema) Parse(src io.ReadSeeker) (*parse.Instance, error) {
	p, err := s.Compile()
	if err != nil {
		return nil, err
	}
	return p.Parse(src)
}

type loader struct {
	cfg        *config
	structures map[string]*parse.Structure
	enums      map[string]*parse.EnumType
}

func (l *loader) fill(sd *StructureDef) error {
	st := l.structures[sd.Name]

	switch {
	case sd.Seek != nil && sd.Before != "":
		return malformed([]string{sd.Name}, "seek and before are exclusive")
	case sd.Seek != nil:
		hook, err := seekHook(sd.Seek)
		if err != nil {
			return malformed([]string{sd.Name}, err.Error())
		}
		st.Before = hook
	case sd.Before != "":
		hook, ok := l.cfg.hooks[sd.Before]
		if !ok {
			return malformed([]string{sd.Name}, fmt.Sprintf("hook %q is not registered", sd.Before))
		}
		st.Before = hook
	}

	st.Fields = make([]parse.Field, 0, len(sd.Fields))
	for i := range sd.Fields {
		fd := &sd.Fields[i]
		path := []string{sd.Name, fd.Name}

		k, err := l.kind(fd, path)
		if err != nil {
			return err
		}

		if r := fd.Reprocess; r != nil {
			fn, ok := l.cfg.funcs[r.Func]
			if !ok {
				return malformed(path, fmt.Sprintf("reprocess function %q is not registered", r.Func))
			}
			target := r.AssignTo
			if target == "" {
				target = fd.Name
			}
			k = k.Then(r.After, target, fn)
		}

		st.Fields = append(st.Fields, parse.F(fd.Name, k))
	}
	return nil
}

var primitives = map[string]parse.Kind{
	"u8": parse.U8, "u16": parse.U16, "u32": parse.U32, "u64": parse.U64,
	"i8": parse.I8, "i16": parse.I16, "i32": parse.I32, "i64": parse.I64,
	"s8": parse.I8, "s16": parse.I16, "s32": parse.I32, "s64": parse.I64,
	"f32": parse.F32, "f64": parse.F64,
	"u16le": parse.U16LE, "u16be": parse.U16BE,
	"i16le": parse.I16LE, "i16be": parse.I16BE,
	"u32le": parse.U32LE, "u32be": parse.U32BE,
	"i32le": parse.I32LE, "i32be": parse.I32BE,
	"u64le": parse.U64LE, "u64be": parse.U64BE,
	"i64le": parse.I64LE, "i64be": parse.I64BE,
	"f32le": parse.F32LE, "f32be": parse.F32BE,
	"f64le": parse.F64LE, "f64be": parse.F64BE,
	"uleb128": parse.ULEB128, "sleb128": parse.SLEB128,
}

func (l *loader) kind(fd *FieldDef, path []string) (parse.Kind, error) {
	typ := strings.ToLower(fd.Type)
	if k, ok := primitives[typ]; ok {
		return k, nil
	}

	switch typ {
	case "bytes", "array", "skip":
		n, err := number(fd.Length, "length", path)
		if err != nil {
			return parse.Kind{}, err
		}
		switch typ {
		case "bytes":
			return parse.Bytes(n), nil
		case "array":
			return parse.Array(n), nil
		default:
			return parse.Skip(n), nil
		}

	case "bits":
		n, err := number(fd.Bits, "bits", path)
		if err != nil {
			return parse.Kind{}, err
		}
		return parse.Bits(n), nil

	case "string":
		n, err := number(fd.Length, "length", path)
		if err != nil {
			return parse.Kind{}, err
		}
		return parse.String(n, parse.Lit(encodingOf(fd))), nil

	case "strz":
		return parse.StringZ(encodingOf(fd)), nil

	case "contents":
		lit, err := literal(fd, path)
		if err != nil {
			return parse.Kind{}, err
		}
		return parse.Contents(lit), nil

	case "enum":
		t, ok := l.enums[fd.Enum]
		if !ok {
			return parse.Kind{}, malformed(path, fmt.Sprintf("enum %q is not declared", fd.Enum))
		}
		inner := parse.U8
		if fd.Of != nil {
			var err error
			if inner, err = l.kind(fd.Of, path); err != nil {
				return parse.Kind{}, err
			}
		}
		return parse.Enum(t, inner), nil

	case "struct":
		st, err := l.structure(fd.Struct, path)
		if err != nil {
			return parse.Kind{}, err
		}
		return parse.Struct(st), nil

	case "repeat", "repeat_eos":
		if fd.Of == nil {
			return parse.Kind{}, malformed(path, typ+" needs an \"of\" body")
		}
		body, err := l.kind(fd.Of, path)
		if err != nil {
			return parse.Kind{}, err
		}
		if typ == "repeat_eos" {
			return parse.RepeatEOS(body), nil
		}
		n, err := number(fd.Count, "count", path)
		if err != nil {
			return parse.Kind{}, err
		}
		return parse.RepeatN(body, n), nil

	case "match":
		if !strings.HasPrefix(fd.On, "$") {
			return parse.Kind{}, malformed(path, "match needs \"on: $field\"")
		}
		cases := make(map[int64]*parse.Structure, len(fd.Cases))
		for disc, name := range fd.Cases {
			st, err := l.structure(name, path)
			if err != nil {
				return parse.Kind{}, err
			}
			cases[disc] = st
		}
		return parse.Dispatch(parse.Ref(fd.On[1:]), cases), nil

	case "custom":
		fn, ok := l.cfg.processors[fd.Func]
		if !ok {
			return parse.Kind{}, malformed(path, fmt.Sprintf("processor %q is not registered", fd.Func))
		}
		params := make([]parse.Value, len(fd.Args))
		for i, a := range fd.Args {
			params[i] = argument(a)
		}
		return parse.Custom(fd.Func, fn, params...), nil
	}

	return parse.Kind{}, malformed(path, fmt.Sprintf("unknown field type %q", fd.Type))
}

func (l *loader) structure(name string, path []string) (*parse.Structure, error) {
	st, ok := l.structures[name]
	if !ok {
		return nil, malformed(path, fmt.Sprintf("structure %q is not declared", name))
	}
	return st, nil
}

// number converts a numeric parameter: an integer literal or a "$path"
// reference.
func number(v any, what string, path []string) (parse.Value, error) {
	switch x := v.(type) {
	case int:
		return parse.Lit(int64(x)), nil
	case int64:
		return parse.Lit(x), nil
	case uint64:
		return parse.Lit(x), nil
	case string:
		if strings.HasPrefix(x, "$") && len(x) > 1 {
			return parse.Ref(x[1:]), nil
		}
	case nil:
		return parse.Value{}, malformed(path, what+" is required")
	}
	return parse.Value{}, malformed(path, fmt.Sprintf("%s must be an integer or $reference, got %v", what, v))
}

func argument(v any) parse.Value {
	if s, ok := v.(string); ok && strings.HasPrefix(s, "$") && len(s) > 1 {
		return parse.Ref(s[1:])
	}
	if n, ok := v.(int); ok {
		return parse.Lit(int64(n))
	}
	return parse.Lit(v)
}

func encodingOf(fd *FieldDef) string {
	if fd.Encoding == "" {
		return "utf-8"
	}
	return fd.Encoding
}

func literal(fd *FieldDef, path []string) ([]byte, error) {
	switch {
	case fd.Hex != "" && fd.Value != "":
		return nil, malformed(path, "value and hex are exclusive")
	case fd.Hex != "":
		b, err := hex.DecodeString(fd.Hex)
		if err != nil {
			return nil, malformed(path, "hex: "+err.Error())
		}
		return b, nil
	case fd.Value != "":
		return []byte(fd.Value), nil
	}
	return nil, malformed(path, "contents needs value or hex")
}

func seekHook(sd *SeekDef) (func(*cursor.Cursor) error, error) {
	var whence int
	switch sd.Whence {
	case "", "start":
		whence = io.SeekStart
	case "current":
		whence = io.SeekCurrent
	case "end":
		whence = io.SeekEnd
	default:
		return nil, fmt.Errorf("unknown whence %q", sd.Whence)
	}
	offset := sd.Offset
	return func(c *cursor.Cursor) error {
		_, err := c.Seek(offset, whence)
		return err
	}, nil
}

func malformed(path []string, detail string) error {
	return errors.MalformedDescriptor(errors.PhaseLoad, path, detail)
}
