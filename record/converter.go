package record

import (
	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/errors"
	"github.com/wippyai/recjit/record/internal/layout"
)

// Converter turns layout descriptors into canonical record types.
type Converter struct {
	registry *Registry
}

// NewConverter returns a converter interning into r, or into Default() when r is nil.
func NewConverter(r *Registry) *Converter {
	if r == nil {
		r = Default()
	}
	return &Converter{registry: r}
}

// Registry returns the registry the converter interns into.
func (c *Converter) Registry() *Registry {
	return c.registry
}

// Convert validates d and returns the canonical record type for it. The
// computed layout is authoritative: declared offsets, size and alignment
// must match it exactly. Nothing is registered when conversion fails.
func (c *Converter) Convert(d dtype.Descriptor) (*Type, error) {
	if len(d.Fields) == 0 {
		return nil, errors.InvalidInput(errors.PhaseConvert, "descriptor has no fields")
	}

	kinds := make([]dtype.ScalarKind, len(d.Fields))
	seen := make(map[string]struct{}, len(d.Fields))
	for i, f := range d.Fields {
		if f.Name == "" {
			return nil, errors.New(errors.PhaseConvert, errors.KindInvalidInput).
				FieldKind(f.Kind).
				Detail("field %d has no name", i).
				Build()
		}
		if _, dup := seen[f.Name]; dup {
			return nil, errors.DuplicateField([]string{f.Name}, f.Name)
		}
		seen[f.Name] = struct{}{}

		k, err := dtype.ParseKind(f.Kind)
		if err != nil {
			return nil, errors.UnsupportedFieldKind([]string{f.Name}, f.Kind)
		}
		kinds[i] = k
	}

	info, err := layout.Calculate(kinds, d.Packed)
	if err != nil {
		return nil, err
	}

	fields := make([]Field, len(d.Fields))
	for i, f := range d.Fields {
		if f.Offset != nil && *f.Offset != info.Offsets[i] {
			return nil, errors.LayoutMismatch([]string{f.Name}, "offset", *f.Offset, info.Offsets[i])
		}
		fields[i] = Field{Name: f.Name, Kind: kinds[i], Offset: info.Offsets[i], Index: i}
	}
	if d.Size != 0 && d.Size != info.Size {
		return nil, errors.LayoutMismatch(nil, "size", d.Size, info.Size)
	}
	if d.Align != 0 && d.Align != info.Align {
		return nil, errors.LayoutMismatch(nil, "alignment", d.Align, info.Align)
	}

	return c.registry.Intern(newType(fields, info.Size, info.Align, d.Packed)), nil
}

// MustConvert is like Convert but panics on error. It is meant for fixtures.
func (c *Converter) MustConvert(d dtype.Descriptor) *Type {
	t, err := c.Convert(d)
	if err != nil {
		panic(err)
	}
	return t
}
