// Package errors provides structured error types for duckparse.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries decode context: field path, byte offset, the expected and
// found bytes of a failed literal check, the offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindUnknownVariant).
//		Path("sections[2]", "body").
//		Offset(118).
//		Value(0x0807).
//		Detail("no case for discriminant 0x0807").
//		Build()
//
// Or use convenience constructors for the decode taxonomy:
//
//	err := errors.EndOfStream(path, offset, 4, 1)
//	err := errors.ValidationMismatch(path, offset, []byte("PK"), found)
//
// All errors implement the standard error interface and support errors.Is/As.
// Matching is done on Kind, so a target such as ErrEndOfStream matches an
// end-of-stream failure regardless of where in a nested parse it happened.
package errors
