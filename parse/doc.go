// Package parse compiles structure descriptions into decode plans and runs
// them.
//
// # Descriptions
//
// A Structure is an ordered list of fields. Each field has a Kind: a
// Processor plus parameters. Parameters are Values, one of
//
//	Lit(v)       a literal
//	Ref("a.b")   an already decoded field, here or in an enclosing structure
//	Nested(k)    a kind decoded inline to produce the argument
//
// Stream structures own the cursor of a parse. Section structures borrow the
// cursor of whoever decodes them and are the only structures that may be
// nested through Struct, Dispatch or repeats.
//
// # Plans
//
// Compile walks a description once, without reading any bytes, and produces
// a Plan: a flat list of steps. Every field contributes one assign step.
// A field whose kind carries a reprocess binding also contributes a deferred
// step, placed right after the step of its trigger field. Nested structures
// are compiled into a table owned by the plan, so recursive descriptions
// compile to a finite plan.
//
//	┌───────────┐  Compile   ┌──────┐  Parse / ParseInto  ┌──────────┐
//	│ Structure │ ─────────▶ │ Plan │ ──────────────────▶ │ Instance │
//	└───────────┘   (once)   └──────┘    (per input)      └──────────┘
//
// Plans are immutable and may be shared between goroutines. Cursors and
// instances are not.
//
// # Kinds
//
//	U8 … I64, F32, F64     fixed width, cursor byte order
//	U16LE … F64BE          fixed width, pinned byte order
//	Bits(n)                LSB-first bit field as uint64
//	Bytes(n), Array(n)     raw bytes as []byte
//	String(n, enc)         text; n = ToEnd reads to NUL
//	Contents(lit)          validated literal
//	Enum(t, inner)         integer mapped to EnumValue
//	Struct(s)              nested section
//	Dispatch(disc, cases)  section selected by discriminant
//	RepeatN(body, n)       fixed count repeat
//	RepeatEOS(body)        repeat to end of input
//	ULEB128, SLEB128       varints
//	Skip(n)                consumed, not stored
//	Custom(name, fn, …)    user processor
package parse
