// Package tga describes Truevision TGA images: the fixed header, the image
// id and the version 2 footer at the end of the file.
package tga

import (
	"io"

	"github.com/i64/duckparse"
	"github.com/i64/duckparse/codec"
	"github.com/i64/duckparse/cursor"
	"github.com/i64/duckparse/parse"
)

// Signature closes every version 2 TGA file.
const Signature = "TRUEVISION-XFILE.\x00"

// FooterSize is the size of the footer, counted from the end of the file.
const FooterSize = 26

var (
	ColorMapType = parse.NewEnum("ColorMapType", map[int64]string{
		0: "NO_COLOR_MAP",
		1: "HAS_COLOR_MAP",
	})

	ImageType = parse.NewEnum("ImageType", map[int64]string{
		0:  "NO_IMAGE_DATA",
		1:  "UNCOMP_COLOR_MAPPED",
		2:  "UNCOMP_TRUE_COLOR",
		3:  "UNCOMP_BW",
		9:  "RLE_COLOR_MAPPED",
		10: "RLE_TRUE_COLOR",
		11: "RLE_BW",
	})
)

// Footer is found by seeking FooterSize bytes back from the end.
var Footer = parse.Section("footer",
	parse.F("ext_area_ofs", parse.U32),
	parse.F("dev_dir_ofs", parse.U32),
	parse.F("signature", parse.Contents([]byte(Signature))),
).WithBefore(func(c *cursor.Cursor) error {
	_, err := c.Seek(-FooterSize, io.SeekEnd)
	return err
})

// TGA is the whole file. Pixel data between the image id and the footer is
// not decoded.
var TGA = parse.Stream("tga",
	parse.F("image_id_len", parse.U8),
	parse.F("color_map_type", parse.Enum(ColorMapType, parse.U8)),
	parse.F("image_type", parse.Enum(ImageType, parse.U8)),
	parse.F("color_map_ofs", parse.U16),
	parse.F("num_color_map", parse.U16),
	parse.F("color_map_depth", parse.U8),
	parse.F("x_offset", parse.U16),
	parse.F("y_offset", parse.U16),
	parse.F("width", parse.U16),
	parse.F("height", parse.U16),
	parse.F("image_depth", parse.U8),
	parse.F("img_descriptor", parse.U8),
	parse.F("image_id", parse.Bytes(parse.Ref("image_id_len"))),
	parse.F("footer", parse.Struct(Footer)),
).WithEndian(codec.LittleEndian)

// Plan is the compiled TGA description.
var Plan = parse.MustCompile(TGA)

// Format registers TGA under the name "tga".
var Format duckparse.Format = duckparse.PlanFormat{ID: "tga", Plan: Plan}

// Parse decodes a TGA file.
func Parse(src io.ReadSeeker) (*parse.Instance, error) {
	return Plan.Parse(src)
}
