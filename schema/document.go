package schema

// Document is the YAML form of a schema.
type Document struct {
	Enums      map[string]map[int64]string `yaml:"enums,omitempty"`
	Name       string                      `yaml:"name"`
	Endian     string                      `yaml:"endian,omitempty"`
	Root       string                      `yaml:"root,omitempty"`
	Structures []StructureDef              `yaml:"structures"`
}

// StructureDef declares one structure. The first structure is the root
// unless Document.Root names another.
type StructureDef struct {
	Seek    *SeekDef   `yaml:"seek,omitempty"`
	Name    string     `yaml:"name"`
	Before  string     `yaml:"before,omitempty"` // hook registered with WithHooks
	Fields  []FieldDef `yaml:"fields"`
	Section bool       `yaml:"section,omitempty"`
}

// SeekDef is a built-in pre-decode hook that moves the cursor.
type SeekDef struct {
	Whence string `yaml:"whence,omitempty"` // start, current or end
	Offset int64  `yaml:"offset"`
}

// FieldDef declares one field. Numeric parameters (length, bits, count) are
// either integers or "$path" references to decoded fields.
type FieldDef struct {
	Length    any              `yaml:"length,omitempty"`
	Bits      any              `yaml:"bits,omitempty"`
	Count     any              `yaml:"count,omitempty"`
	Of        *FieldDef        `yaml:"of,omitempty"`
	Reprocess *ReprocessDef    `yaml:"reprocess,omitempty"`
	Cases     map[int64]string `yaml:"cases,omitempty"`
	Name      string           `yaml:"name,omitempty"`
	Type      string           `yaml:"type"`
	Encoding  string           `yaml:"encoding,omitempty"`
	Value     string           `yaml:"value,omitempty"`
	Hex       string           `yaml:"hex,omitempty"`
	Enum      string           `yaml:"enum,omitempty"`
	Struct    string           `yaml:"struct,omitempty"`
	On        string           `yaml:"on,omitempty"`
	Func      string           `yaml:"func,omitempty"`
	Args      []any            `yaml:"args,omitempty"`
}

// ReprocessDef binds a named reprocess function to a trigger field.
type ReprocessDef struct {
	After    string `yaml:"after"`
	AssignTo string `yaml:"assign_to,omitempty"` // defaults to the declaring field
	Func     string `yaml:"func"`
}
