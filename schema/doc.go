// Package schema loads parse descriptors from YAML documents.
//
// A document declares enums and structures; the first structure is the
// root unless "root" names another. Field types map onto the kinds of
// package parse:
//
//	u8 u16 u32 u64 i8 i16 i32 i64 f32 f64   fixed width, document endian
//	u16le u32be ... f64be                   fixed width, pinned endian
//	uleb128 sleb128                         varints
//	bytes array skip   (length)             raw bytes
//	bits               (bits)               little endian bit field
//	string (length, encoding) strz (encoding)
//	contents (value | hex)                  literal check
//	enum (enum, of)   struct (struct)
//	repeat (count, of)   repeat_eos (of)
//	match (on, cases)                       dispatch on a decoded field
//	custom (func, args)                     processor from WithProcessors
//
// Numeric parameters are integers or "$path" references. A field may carry
// a reprocess block that recomputes a target once a later field is decoded:
//
//	- name: checksum
//	  type: u32
//	  reprocess: {after: payload, func: crc}
package schema
