package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in the pipeline the error occurred
type Phase string

const (
	PhaseConvert Phase = "convert" // descriptor to record type
	PhaseLower   Phase = "lower"   // field access / index lowering
	PhaseCompile Phase = "compile" // function checking and module compilation
	PhaseRuntime Phase = "runtime" // compiled or interpreted execution
	PhaseLoad    Phase = "load"    // descriptor loading and adapters
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedFieldKind Kind = "unsupported_field_kind"
	KindLayoutMismatch       Kind = "layout_mismatch"
	KindUnknownField         Kind = "unknown_field"
	KindIndexOutOfRange      Kind = "index_out_of_range"
	KindDuplicateField       Kind = "duplicate_field"
	KindTypeMismatch         Kind = "type_mismatch"
	KindUnsupported          Kind = "unsupported"
	KindInvalidInput         Kind = "invalid_input"
	KindInvalidData          Kind = "invalid_data"
	KindUnboundLocal         Kind = "unbound_local"
	KindInstantiation        Kind = "instantiation"
	KindNotFound             Kind = "not_found"
	KindTrap                 Kind = "trap"
	KindOutput               Kind = "output"
)

// Taxonomy sentinels. They carry no phase, so errors.Is matches them
// against an error of the same kind raised in any phase.
var (
	ErrUnsupportedFieldKind = &Error{Kind: KindUnsupportedFieldKind}
	ErrLayoutMismatch       = &Error{Kind: KindLayoutMismatch}
	ErrUnknownField         = &Error{Kind: KindUnknownField}
	ErrIndexOutOfRange      = &Error{Kind: KindIndexOutOfRange}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	RecordType string
	FieldKind  string
	Detail     string
	Path       []string
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
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.RecordType != "" || e.FieldKind != "" {
		b.WriteString(": ")
		if e.RecordType != "" && e.FieldKind != "" {
			b.WriteString("record ")
			b.WriteString(e.RecordType)
			b.WriteString(", field kind ")
			b.WriteString(e.FieldKind)
		} else if e.RecordType != "" {
			b.WriteString("record ")
			b.WriteString(e.RecordType)
		} else {
			b.WriteString("field kind ")
			b.WriteString(e.FieldKind)
		}
	}

	if e.Detail != "" {
		if e.RecordType != "" || e.FieldKind != "" {
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

// Is reports whether target matches this error. A target without a phase
// matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// RecordType sets the record type description
func (b *Builder) RecordType(t string) *Builder {
	b.err.RecordType = t
	return b
}

// FieldKind sets the field kind tag
func (b *Builder) FieldKind(k string) *Builder {
	b.err.FieldKind = k
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

// Convenience constructors for the pipeline taxonomy

// UnsupportedFieldKind reports a descriptor element kind outside the closed vocabulary
func UnsupportedFieldKind(path []string, tag string) *Error {
	return &Error{
		Phase:     PhaseConvert,
		Kind:      KindUnsupportedFieldKind,
		Path:      path,
		FieldKind: tag,
		Detail:    "element kind is not a supported scalar kind",
		Value:     tag,
	}
}

// LayoutMismatch reports a declared layout value that diverges from the computed one
func LayoutMismatch(path []string, what string, declared, computed uint32) *Error {
	return &Error{
		Phase:  PhaseConvert,
		Kind:   KindLayoutMismatch,
		Path:   path,
		Detail: fmt.Sprintf("declared %s %d, computed %d", what, declared, computed),
		Value:  declared,
	}
}

// UnknownField reports a field name absent from a record type
func UnknownField(phase Phase, recordType, fieldName string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindUnknownField,
		Path:       []string{fieldName},
		RecordType: recordType,
		Detail:     fmt.Sprintf("unknown field %q", fieldName),
	}
}

// IndexOutOfRange reports an index outside [0, count)
func IndexOutOfRange(phase Phase, index int64, count int64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIndexOutOfRange,
		Detail: fmt.Sprintf("index %d out of range (count %d)", index, count),
		Value:  index,
	}
}

// DuplicateField reports a field name declared twice in one descriptor
func DuplicateField(path []string, fieldName string) *Error {
	return &Error{
		Phase:  PhaseConvert,
		Kind:   KindDuplicateField,
		Path:   path,
		Detail: fmt.Sprintf("field %q declared more than once", fieldName),
	}
}

// TypeMismatch reports an operand whose type does not fit the operation
func TypeMismatch(phase Phase, path []string, detail string, args ...any) *Error {
	return New(phase, KindTypeMismatch).Path(path...).Detail(detail, args...).Build()
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Trap reports compiled code that stopped with a WebAssembly trap
func Trap(cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindTrap,
		Detail: "execution trapped",
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
