package dtype

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/recjit/errors"
)

// Field is one descriptor entry. Kind is the element tag; Offset is the
// optional declared byte offset.
type Field struct {
	Offset *uint32 `yaml:"offset,omitempty"`
	Name   string  `yaml:"name"`
	Kind   string  `yaml:"kind"`
}

// Descriptor is the externally supplied layout of a record. Size and Align
// are optional declared totals; zero means absent.
type Descriptor struct {
	Fields []Field `yaml:"fields"`
	Size   uint32  `yaml:"size,omitempty"`
	Align  uint32  `yaml:"align,omitempty"`
	Packed bool    `yaml:"packed"`
}

// F returns a field without a declared offset.
func F(name, kind string) Field {
	return Field{Name: name, Kind: kind}
}

// At returns a field with a declared offset.
func At(name, kind string, offset uint32) Field {
	return Field{Name: name, Kind: kind, Offset: &offset}
}

// Packed returns a packed descriptor over fields.
func Packed(fields ...Field) Descriptor {
	return Descriptor{Fields: fields, Packed: true}
}

// Aligned returns an aligned descriptor over fields.
func Aligned(fields ...Field) Descriptor {
	return Descriptor{Fields: fields}
}

// WithPacked returns a copy of d using the given layout policy. Declared
// offsets and totals are dropped since they belong to the old policy.
func (d Descriptor) WithPacked(packed bool) Descriptor {
	fields := make([]Field, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = Field{Name: f.Name, Kind: f.Kind}
	}
	return Descriptor{Fields: fields, Packed: packed}
}

// DecodeYAML reads one descriptor document.
//
//	packed: true
//	fields:
//	  - {name: f1, kind: i64}
//	  - {name: s1, kind: bytes<3>, offset: 8}
func DecodeYAML(r io.Reader) (Descriptor, error) {
	var d Descriptor
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return Descriptor{}, errors.ParseFailed("layout descriptor", err)
	}
	return d, nil
}

// EncodeYAML writes d as one descriptor document.
func EncodeYAML(w io.Writer, d Descriptor) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "encode layout descriptor")
	}
	return enc.Close()
}
