package dtype

import (
	"fmt"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/recjit/errors"
)

// NumpyField is one entry of a NumPy structured dtype: name, array-interface
// typestring and optional byte offset.
type NumpyField struct {
	Offset  *uint32
	Name    string
	Typestr string
}

// FromNumpy builds a descriptor from a NumPy field list. align selects the
// aligned policy (numpy.dtype(..., align=True)). Typestrings that do not map
// to a little-endian scalar kind are carried through verbatim so conversion
// rejects them as unsupported.
func FromNumpy(fields []NumpyField, align bool) Descriptor {
	d := Descriptor{Fields: make([]Field, len(fields)), Packed: !align}
	for i, f := range fields {
		d.Fields[i] = Field{Name: f.Name, Kind: numpyTag(f.Typestr), Offset: f.Offset}
	}
	return d
}

func numpyTag(typestr string) string {
	if len(typestr) < 3 {
		return typestr
	}
	switch typestr[0] {
	case '<', '|', '=':
	default:
		return typestr
	}
	code, width := typestr[1], typestr[2:]
	switch code {
	case 'i':
		switch width {
		case "1":
			return "i8"
		case "2":
			return "i16"
		case "4":
			return "i32"
		case "8":
			return "i64"
		}
	case 'u':
		switch width {
		case "1":
			return "u8"
		case "2":
			return "u16"
		case "4":
			return "u32"
		case "8":
			return "u64"
		}
	case 'f':
		switch width {
		case "4":
			return "f32"
		case "8":
			return "f64"
		}
	case 'S':
		return "bytes<" + width + ">"
	}
	return typestr
}

// FromWIT builds a descriptor from a WIT record type. Primitive numeric
// fields map to their scalar tags; every other field type is carried through
// by name so conversion rejects it.
func FromWIT(t wit.Type, packed bool) (Descriptor, error) {
	td, ok := t.(*wit.TypeDef)
	if !ok {
		return Descriptor{}, errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
			Detail("expected WIT record, got %T", t).
			Build()
	}
	rec, ok := td.Kind.(*wit.Record)
	if !ok {
		return Descriptor{}, errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
			Detail("expected WIT record, got %T", td.Kind).
			Build()
	}

	d := Descriptor{Fields: make([]Field, len(rec.Fields)), Packed: packed}
	for i, f := range rec.Fields {
		d.Fields[i] = Field{Name: f.Name, Kind: witTag(f.Type)}
	}
	return d, nil
}

func witTag(t wit.Type) string {
	switch v := t.(type) {
	case wit.U8:
		return "u8"
	case wit.S8:
		return "i8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "i16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "i32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "i64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Bool:
		return "bool"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		return fmt.Sprintf("%T", v.Kind)
	default:
		return fmt.Sprintf("%T", t)
	}
}
