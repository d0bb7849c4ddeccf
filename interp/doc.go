// Package interp is the reference interpreter for checked functions.
//
// It evaluates the same ir the compiler lowers, over record.Array and
// record.View handles, and prints through dtype formatting. Index
// expressions are always bounds checked. Compiled entry points are tested
// for output and mutation parity against it.
package interp
