package ir

import (
	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/record"
)

// Type is the static type of an argument, local or expression.
type Type interface {
	String() string
	aType()
}

// ArrayType is an array of records passed as (base, count).
type ArrayType struct {
	Elem *record.Type
}

// RecordType is a view over one record.
type RecordType struct {
	Rec *record.Type
}

// ScalarType is a single value of one element kind.
type ScalarType struct {
	Kind dtype.ScalarKind
}

func (*ArrayType) aType()  {}
func (*RecordType) aType() {}
func (*ScalarType) aType() {}

func (t *ArrayType) String() string  { return "array(" + t.Elem.String() + ")" }
func (t *RecordType) String() string { return "record(" + t.Rec.String() + ")" }
func (t *ScalarType) String() string { return t.Kind.String() }

// ArrayOf returns the array-of-records type for t.
func ArrayOf(t *record.Type) Type { return &ArrayType{Elem: t} }

// RecordOf returns the record view type for t.
func RecordOf(t *record.Type) Type { return &RecordType{Rec: t} }

// Scalar returns the scalar type of kind k.
func Scalar(k dtype.ScalarKind) Type { return &ScalarType{Kind: k} }

var (
	Int   Type = &ScalarType{Kind: dtype.Int64}
	Uint  Type = &ScalarType{Kind: dtype.Uint64}
	Float Type = &ScalarType{Kind: dtype.Float64}
)

// SameType reports whether a and b are the same type. Record types compare
// structurally.
func SameType(a, b Type) bool {
	switch x := a.(type) {
	case *ArrayType:
		y, ok := b.(*ArrayType)
		return ok && x.Elem.Equal(y.Elem)
	case *RecordType:
		y, ok := b.(*RecordType)
		return ok && x.Rec.Equal(y.Rec)
	case *ScalarType:
		y, ok := b.(*ScalarType)
		return ok && x.Kind == y.Kind
	default:
		return false
	}
}

// TypeKey returns a string identifying a list of argument types.
func TypeKey(types []Type) string {
	key := ""
	for i, t := range types {
		if i > 0 {
			key += ";"
		}
		key += t.String()
	}
	return key
}

// kindOf returns the scalar kind of t, or false if t is not a scalar.
func kindOf(t Type) (dtype.ScalarKind, bool) {
	s, ok := t.(*ScalarType)
	if !ok {
		return dtype.ScalarKind{}, false
	}
	return s.Kind, true
}
