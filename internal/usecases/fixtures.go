package usecases

import (
	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/ir"
	"github.com/wippyai/recjit/record"
)

// PrintCount is the number of records in the printing fixture.
const PrintCount = 5

// CrossDescriptor is the packed p, row, col record of Usecase1.
func CrossDescriptor() dtype.Descriptor {
	return dtype.Packed(dtype.F("p", "f64"), dtype.F("row", "f64"), dtype.F("col", "f64"))
}

// PrintDescriptor is the f1, s1, f2 record of the printing use cases. With
// floatF1 the first field is f64 instead of i64.
func PrintDescriptor(packed, floatF1 bool) dtype.Descriptor {
	f1 := "i64"
	if floatF1 {
		f1 = "f64"
	}
	d := dtype.Aligned(dtype.F("f1", f1), dtype.F("s1", "bytes<3>"), dtype.F("f2", "f64"))
	return d.WithPacked(packed)
}

// CrossArrays returns two arrays of n records with every field of record
// i set to i+1.
func CrossArrays(t *record.Type, n int) (*record.Array, *record.Array, error) {
	a, err := fillCross(t, n)
	if err != nil {
		return nil, nil, err
	}
	b, err := fillCross(t, n)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func fillCross(t *record.Type, n int) (*record.Array, error) {
	arr, err := record.NewArray(t, n)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{"p", "row", "col"} {
		col, err := arr.Column(name)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			if err := col.Set(i, dtype.Int(dtype.Int64, int64(i+1))); err != nil {
				return nil, err
			}
		}
	}
	return arr, nil
}

// PrintArray returns PrintCount records with f1 = k, f2 = k+2 and
// s1 = "abc".
func PrintArray(t *record.Type) (*record.Array, error) {
	arr, err := record.NewArray(t, PrintCount)
	if err != nil {
		return nil, err
	}
	for k := 0; k < PrintCount; k++ {
		v, err := arr.At(k)
		if err != nil {
			return nil, err
		}
		if err := v.Set("f1", dtype.Int(dtype.Int64, int64(k))); err != nil {
			return nil, err
		}
		if err := v.Set("f2", dtype.Int(dtype.Int64, int64(k+2))); err != nil {
			return nil, err
		}
		if err := v.Set("s1", dtype.ByteString(dtype.Bytes(3), []byte("abc"))); err != nil {
			return nil, err
		}
	}
	return arr, nil
}

// CrossArgs are the argument types of Usecase1 over t.
func CrossArgs(t *record.Type) []ir.Type {
	return []ir.Type{ir.ArrayOf(t), ir.ArrayOf(t)}
}

// PrintArgs are the argument types of the printing use cases over t.
func PrintArgs(t *record.Type) []ir.Type {
	return []ir.Type{ir.ArrayOf(t), ir.Int}
}
