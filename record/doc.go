// Package record builds canonical record types from layout descriptors and
// provides aliasing handles over record storage.
//
// A Converter validates a dtype.Descriptor, computes its layout under the
// packed or aligned policy and interns the result in a Registry:
//
//	conv := record.NewConverter(record.NewRegistry())
//	t, err := conv.Convert(dtype.Packed(
//		dtype.F("f1", "i64"),
//		dtype.F("s1", "bytes<3>"),
//		dtype.F("f2", "f64"),
//	))
//
// Structurally equal descriptors yield the same *Type.
//
// Array, View and Column never copy: a View returned by Array.At and a
// Column returned by Array.Column read and write the array's bytes.
// Array.Clone is the only copying operation.
package record
