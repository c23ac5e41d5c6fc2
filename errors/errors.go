package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCompile  Phase = "compile"  // descriptor compilation
	PhaseDecode   Phase = "decode"   // plan execution
	PhaseValidate Phase = "validate" // literal checks
	PhaseLoad     Phase = "load"     // schema documents
	PhaseExport   Phase = "export"   // instance serialization
)

// Kind categorizes the error
type Kind string

const (
	KindEndOfStream         Kind = "end_of_stream"
	KindValidationMismatch  Kind = "validation_mismatch"
	KindUnknownEnumValue    Kind = "unknown_enum_value"
	KindUnknownVariant      Kind = "unknown_variant"
	KindUnresolvedReference Kind = "unresolved_reference"
	KindMalformedDescriptor Kind = "malformed_descriptor"
	KindInvalidData         Kind = "invalid_data"
	KindInvalidInput        Kind = "invalid_input"
)

// Sentinel targets for errors.Is. They carry no phase, so they match any
// error of the same kind.
var (
	ErrEndOfStream         = &Error{Kind: KindEndOfStream}
	ErrValidationMismatch  = &Error{Kind: KindValidationMismatch}
	ErrUnknownEnumValue    = &Error{Kind: KindUnknownEnumValue}
	ErrUnknownVariant      = &Error{Kind: KindUnknownVariant}
	ErrUnresolvedReference = &Error{Kind: KindUnresolvedReference}
	ErrMalformedDescriptor = &Error{Kind: KindMalformedDescriptor}
	ErrInvalidData         = &Error{Kind: KindInvalidData}
	ErrInvalidInput        = &Error{Kind: KindInvalidInput}
)

// Error is the structured error type used throughout duckparse
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Detail   string
	Path     []string
	Expected []byte
	Found    []byte
	Offset   int64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(JoinPath(e.Path))
	}

	if e.Offset >= 0 {
		b.WriteString(" (offset ")
		b.WriteString(strconv.FormatInt(e.Offset, 10))
		b.WriteByte(')')
	}

	if e.Expected != nil || e.Found != nil {
		b.WriteString(": expected ")
		b.WriteString(strconv.Quote(string(e.Expected)))
		b.WriteString(", found ")
		b.WriteString(strconv.Quote(string(e.Found)))
	}

	if e.Detail != "" {
		if e.Expected != nil || e.Found != nil {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Kinds must be equal; the
// phase is compared only when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Phase == "" || t.Phase == e.Phase
}

// WithParent returns a copy of e whose path is prefixed by segment. Nested
// decoders use it to report the full field path to the top-level caller
// without changing the error's kind.
func (e *Error) WithParent(segment string) *Error {
	cp := *e
	cp.Path = make([]string, 0, len(e.Path)+1)
	cp.Path = append(cp.Path, segment)
	cp.Path = append(cp.Path, e.Path...)
	return &cp
}

// JoinPath renders a field path. Index segments ("[3]") attach to the
// preceding name without a dot.
func JoinPath(path []string) string {
	var b strings.Builder
	for i, p := range path {
		if i > 0 && !strings.HasPrefix(p, "[") {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Offset sets the stream offset at which the error occurred
func (b *Builder) Offset(off int64) *Builder {
	b.err.Offset = off
	return b
}

// Expected sets the expected bytes of a literal check
func (b *Builder) Expected(data []byte) *Builder {
	b.err.Expected = data
	return b
}

// Found sets the bytes actually read
func (b *Builder) Found(data []byte) *Builder {
	b.err.Found = data
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the decode taxonomy

// EndOfStream creates an error for a read that requested more data than remains
func EndOfStream(path []string, offset int64, want, have int64) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindEndOfStream,
		Path:   path,
		Offset: offset,
		Detail: fmt.Sprintf("need %d bytes, %d remaining", want, have),
	}
}

// ValidationMismatch creates a literal-content mismatch error
func ValidationMismatch(path []string, offset int64, expected, found []byte) *Error {
	return &Error{
		Phase:    PhaseValidate,
		Kind:     KindValidationMismatch,
		Path:     path,
		Offset:   offset,
		Expected: expected,
		Found:    found,
	}
}

// UnknownEnumValue creates an error for an integer with no symbolic mapping
func UnknownEnumValue(path []string, offset int64, value int64, enumType string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnknownEnumValue,
		Path:   path,
		Offset: offset,
		Detail: fmt.Sprintf("value %d has no name in %s", value, enumType),
		Value:  value,
	}
}

// UnknownVariant creates an error for a discriminant without a dispatch case
func UnknownVariant(path []string, offset int64, disc int64) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnknownVariant,
		Path:   path,
		Offset: offset,
		Detail: fmt.Sprintf("no case for discriminant %#x", disc),
		Value:  disc,
	}
}

// UnresolvedReference creates an error for a reference to an absent or not yet populated field
func UnresolvedReference(path []string, ref string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnresolvedReference,
		Path:   path,
		Offset: -1,
		Detail: fmt.Sprintf("reference %q is not populated", ref),
		Value:  ref,
	}
}

// MalformedDescriptor creates a structural descriptor error
func MalformedDescriptor(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformedDescriptor,
		Path:   path,
		Offset: -1,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Offset: -1,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: -1,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}

// KindOf returns the kind of err if it is, or wraps, an *Error.
func KindOf(err error) (Kind, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return "", false
		}
		err = u.Unwrap()
	}
	return "", false
}
