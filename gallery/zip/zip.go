// Package zip describes ZIP archives as a flat run of PK sections, each
// dispatched on its two byte section type.
package zip

import (
	"io"

	"github.com/i64/duckparse"
	"github.com/i64/duckparse/codec"
	"github.com/i64/duckparse/parse"
)

// Section types following the "PK" magic.
const (
	TypeCentralDirEntry = 0x0201
	TypeLocalFile       = 0x0403
	TypeEndOfCentralDir = 0x0605
)

// FlagUTF8 marks names and comments encoded as UTF-8 rather than CP437.
const FlagUTF8 = 1 << 11

var Compression = parse.NewEnum("Compression", map[int64]string{
	0:  "NONE",
	1:  "SHRUNK",
	2:  "REDUCED_1",
	3:  "REDUCED_2",
	4:  "REDUCED_3",
	5:  "REDUCED_4",
	6:  "IMPLODED",
	8:  "DEFLATED",
	9:  "ENHANCED_DEFLATED",
	10: "PKWARE_DCL_IMPLODED",
	12: "BZIP2",
	14: "LZMA",
	18: "IBM_TERSE",
	19: "IBM_LZ77_Z",
	98: "PPMD",
})

// text reads a length-prefixed name or comment whose encoding depends on
// the general purpose flags.
func text(length string) parse.Kind {
	return parse.Custom("zip_text", func(c *parse.Context, args []any) (any, error) {
		flags, _ := parse.AsInt64(args[0])
		n, _ := parse.AsInt64(args[1])
		raw, err := c.Cursor().ReadBytes(int(n))
		if err != nil {
			return nil, err
		}
		enc := "cp437"
		if flags&FlagUTF8 != 0 {
			enc = "utf-8"
		}
		return parse.DecodeText(raw, enc)
	}, parse.Ref("flags"), parse.Ref(length))
}

var CentralDirEntry = parse.Section("central_dir_entry",
	parse.F("version_made_by", parse.U16),
	parse.F("version_needed_to_extract", parse.U16),
	parse.F("flags", parse.U16),
	parse.F("compression_method", parse.Enum(Compression, parse.U16)),
	parse.F("last_mod_file_time", parse.U16),
	parse.F("last_mod_file_date", parse.U16),
	parse.F("crc32", parse.U32),
	parse.F("len_body_compressed", parse.U32),
	parse.F("len_body_uncompressed", parse.U32),
	parse.F("len_file_name", parse.U16),
	parse.F("len_extra", parse.U16),
	parse.F("len_comment", parse.U16),
	parse.F("disk_number_start", parse.U16),
	parse.F("int_file_attr", parse.U16),
	parse.F("ext_file_attr", parse.U32),
	parse.F("ofs_local_header", parse.I32),
	parse.F("file_name", text("len_file_name")),
	parse.F("extra", parse.Bytes(parse.Ref("len_extra"))),
	parse.F("comment", text("len_comment")),
)

var LocalFileHeader = parse.Section("local_file_header",
	parse.F("version", parse.U16),
	parse.F("flags", parse.U16),
	parse.F("compression_method", parse.Enum(Compression, parse.U16)),
	parse.F("file_mod_time", parse.U16),
	parse.F("file_mod_date", parse.U16),
	parse.F("crc32", parse.U32),
	parse.F("len_body_compressed", parse.U32),
	parse.F("len_body_uncompressed", parse.U32),
	parse.F("len_file_name", parse.U16),
	parse.F("len_extra", parse.U16),
	parse.F("file_name", text("len_file_name")),
	parse.F("extra", parse.Bytes(parse.Ref("len_extra"))),
)

var LocalFile = parse.Section("local_file",
	parse.F("header", parse.Struct(LocalFileHeader)),
	parse.F("body", parse.Bytes(parse.Ref("header.len_body_compressed"))),
)

var EndOfCentralDir = parse.Section("end_of_central_dir",
	parse.F("disk_of_end_of_central_dir", parse.U16),
	parse.F("disk_of_central_dir", parse.U16),
	parse.F("num_central_dir_entries_on_disk", parse.U16),
	parse.F("num_central_dir_entries_total", parse.U16),
	parse.F("len_central_dir", parse.U32),
	parse.F("ofs_central_dir", parse.U32),
	parse.F("len_comment", parse.U16),
	parse.F("comment", parse.String(parse.Ref("len_comment"), parse.Lit("cp437"))),
)

var PKSection = parse.Section("pk_section",
	parse.F("magic", parse.Contents([]byte("PK"))),
	parse.F("section_type", parse.U16),
	parse.F("body", parse.Dispatch(parse.Ref("section_type"), map[int64]*parse.Structure{
		TypeCentralDirEntry: CentralDirEntry,
		TypeLocalFile:       LocalFile,
		TypeEndOfCentralDir: EndOfCentralDir,
	})),
)

// Zip is the whole archive. Data descriptors (PK\x07\x08) are not
// described and fail with an unknown variant.
var Zip = parse.Stream("zip",
	parse.F("sections", parse.RepeatEOS(parse.Struct(PKSection))),
).WithEndian(codec.LittleEndian)

var Plan = parse.MustCompile(Zip)

// Format registers ZIP under the name "zip".
var Format duckparse.Format = duckparse.PlanFormat{ID: "zip", Plan: Plan}

// Parse decodes a ZIP archive.
func Parse(src io.ReadSeeker) (*parse.Instance, error) {
	return Plan.Parse(src)
}
