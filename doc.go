// Package duckparse decodes binary formats from declarative descriptions.
//
// A format is described as an ordered list of named fields, each with a kind
// that says how its bytes are read: fixed-width integers, bit fields, strings,
// validated magic numbers, enums, nested sections, repeats and tag dispatch.
// The description is compiled once into a plan of steps and the plan is
// replayed against any number of inputs.
//
// # Architecture Overview
//
//	duckparse/           Root package with the Source and Format interfaces
//	├── cursor/          Byte and LSB-first bit reader over a seekable source
//	├── codec/           Fixed-width integer and float decoding per byte order
//	├── parse/           Structures, kinds, compiler, plans and instances
//	├── schema/          YAML documents compiled to structures
//	├── export/          Instances rendered as JSON, CBOR or plain trees
//	├── errors/          Structured error types for debugging
//	├── gallery/         Example formats: tga, zip, wasm
//	└── cmd/duckparse/   Command line decoder and browser
//
// # Quick Start
//
// Describe and decode a length-prefixed record:
//
//	rec := parse.Stream("record",
//	    parse.F("magic", parse.Contents([]byte("RC"))),
//	    parse.F("len", parse.U8),
//	    parse.F("body", parse.Bytes(parse.Ref("len"))),
//	)
//
//	inst, err := parse.ParseBytes(rec, []byte("RC\x03abc"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(inst) // record(magic="RC", len=3, body="abc")
//
// # Deferred Fields
//
// A field may be recomputed after a later field has been decoded. The
// binding names the trigger field and the slot that receives the result:
//
//	parse.F("data", parse.Bytes(parse.Lit(0)).Then("len", "data",
//	    func(c *parse.Context) (any, error) {
//	        n, _ := c.Instance().Int("len")
//	        return c.Cursor().ReadBytes(int(n))
//	    }))
//
// # Error Handling
//
// Every failure is an *errors.Error carrying a Kind, the field path and the
// byte offset. Use errors.Is with the sentinels of the errors package:
//
//	if errors.Is(err, dperrors.ErrUnknownVariant) {
//	    // discriminant had no case
//	}
package duckparse
