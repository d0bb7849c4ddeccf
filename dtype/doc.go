// Package dtype describes record field element kinds and the layout
// descriptors records are built from.
//
// # Element Kinds
//
// The vocabulary is closed:
//
//	Tag        Size    Alignment   Prints as
//	───────────────────────────────────────────────
//	i8/u8      1       1           decimal
//	i16/u16    2       2           decimal
//	i32/u32    4       4           decimal
//	i64/u64    8       8           decimal
//	f32        4       4           shortest float32 repr
//	f64        8       8           shortest float64 repr
//	bytes<N>   N       1           raw, trailing NULs stripped
//
// Scalar carries one value of a kind. Load and Store access exactly the
// kind's width in little-endian order; Convert follows WebAssembly numeric
// conversion rules so interpreted and compiled code agree bit for bit.
//
// # Descriptors
//
// A Descriptor is the external layout input: ordered (name, tag, offset)
// entries and the packed flag. It can be written in Go, decoded from YAML, or
// derived from a NumPy field list or a WIT record.
package dtype
