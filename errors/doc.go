// Package errors provides structured error types for the record compilation pipeline.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries context: field path, record type, field kind and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLower, errors.KindTypeMismatch).
//		Path("x", "s1").
//		RecordType("{f1:i64@0,s1:bytes<3>@8}").
//		Detail("byte strings do not support arithmetic").
//		Build()
//
// Or use convenience constructors for the pipeline taxonomy:
//
//	err := errors.UnsupportedFieldKind(path, "c16")
//	err := errors.IndexOutOfRange(errors.PhaseRuntime, 5, 5)
//
// The taxonomy sentinels ErrUnsupportedFieldKind, ErrLayoutMismatch,
// ErrUnknownField and ErrIndexOutOfRange match errors of their kind in any
// phase through the standard errors.Is.
package errors
