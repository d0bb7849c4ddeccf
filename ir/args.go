package ir

import (
	"fmt"

	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/errors"
	"github.com/wippyai/recjit/record"
)

// Result is the outcome of one call. Valid is false when the function
// returns no value.
type Result struct {
	Value dtype.Scalar
	Valid bool
}

func (r Result) String() string {
	if !r.Valid {
		return "None"
	}
	return r.Value.String()
}

// ArrayArg returns args[i] as an array of t.
func ArrayArg(t *ArrayType, arg any, i int) (*record.Array, error) {
	arr, ok := arg.(*record.Array)
	if !ok || arr == nil {
		return nil, argMismatch(i, t, arg)
	}
	if !arr.Type().Equal(t.Elem) {
		return nil, argMismatch(i, t, arg)
	}
	return arr, nil
}

// RecordArg returns args[i] as a view of t.
func RecordArg(t *RecordType, arg any, i int) (record.View, error) {
	v, ok := arg.(record.View)
	if !ok || !v.Valid() || !v.Type().Equal(t.Rec) {
		return record.View{}, argMismatch(i, t, arg)
	}
	return v, nil
}

// ScalarArg converts args[i] to the promoted kind of t. Go integers,
// floats and dtype.Scalar values are accepted.
func ScalarArg(t *ScalarType, arg any, i int) (dtype.Scalar, error) {
	var s dtype.Scalar
	switch v := arg.(type) {
	case int:
		s = dtype.Int(dtype.Int64, int64(v))
	case int32:
		s = dtype.Int(dtype.Int64, int64(v))
	case int64:
		s = dtype.Int(dtype.Int64, v)
	case uint32:
		s = dtype.Uint(dtype.Uint64, uint64(v))
	case uint64:
		s = dtype.Uint(dtype.Uint64, v)
	case float32:
		s = dtype.Float(dtype.Float64, float64(v))
	case float64:
		s = dtype.Float(dtype.Float64, v)
	case dtype.Scalar:
		s = v
	default:
		return dtype.Scalar{}, argMismatch(i, t, arg)
	}
	out, ok := s.Convert(t.Kind.Promoted())
	if !ok {
		return dtype.Scalar{}, argMismatch(i, t, arg)
	}
	return out, nil
}

// CheckArgs verifies that args match types positionally.
func CheckArgs(types []Type, args []any) error {
	if len(args) != len(types) {
		return errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
			Detail("function takes %d arguments, got %d", len(types), len(args)).
			Build()
	}
	for i, t := range types {
		var err error
		switch t := t.(type) {
		case *ArrayType:
			_, err = ArrayArg(t, args[i], i)
		case *RecordType:
			_, err = RecordArg(t, args[i], i)
		case *ScalarType:
			_, err = ScalarArg(t, args[i], i)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func argMismatch(i int, t Type, arg any) error {
	return errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
		Path(fmt.Sprintf("arg%d", i)).
		Detail("expected %s, got %T", t, arg).
		Build()
}
