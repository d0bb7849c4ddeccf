// Package layout computes record field offsets under the packed and aligned
// policies.
//
// # Layout Rules
//
//   - Packed: each field starts where the previous one ends; alignment is 1
//     and the size is the sum of the field sizes.
//   - Aligned: each field offset is rounded up to the field's natural
//     alignment; the record alignment is the largest field alignment and the
//     size is rounded up to it.
//
// # Usage
//
//	info, err := layout.Calculate(kinds, packed)
//	// info.Offsets[i], info.Size, info.Align
//
// This package is internal to record.
package layout
