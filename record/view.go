package record

import (
	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/errors"
	"github.com/wippyai/recjit/record/internal/layout"
)

// Array is a contiguous run of records of one type over caller-owned bytes.
// Views and columns obtained from it alias the same storage.
type Array struct {
	t     *Type
	data  []byte
	count int
}

// NewArray allocates a zeroed array of count records.
func NewArray(t *Type, count int) (*Array, error) {
	if count < 0 {
		return nil, errors.InvalidInput(errors.PhaseRuntime, "negative record count")
	}
	n, ok := layout.SafeMulU32(t.size, uint32(count))
	if !ok || uint64(count) > uint64(^uint32(0)) {
		return nil, errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
			RecordType(t.String()).
			Detail("%d records overflow the addressable size", count).
			Build()
	}
	return &Array{t: t, data: make([]byte, n), count: count}, nil
}

// WrapArray views data as records of type t. len(data) must be a multiple of
// the record size. The array aliases data.
func WrapArray(t *Type, data []byte) (*Array, error) {
	if len(data)%int(t.size) != 0 {
		return nil, errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
			RecordType(t.String()).
			Detail("%d bytes is not a multiple of record size %d", len(data), t.size).
			Build()
	}
	return &Array{t: t, data: data, count: len(data) / int(t.size)}, nil
}

func (a *Array) Type() *Type {
	return a.t
}

// Len returns the record count.
func (a *Array) Len() int {
	return a.count
}

// Bytes returns the backing storage.
func (a *Array) Bytes() []byte {
	return a.data
}

// At returns a view of record i.
func (a *Array) At(i int) (View, error) {
	if i < 0 || i >= a.count {
		return View{}, errors.IndexOutOfRange(errors.PhaseRuntime, int64(i), int64(a.count))
	}
	start := i * int(a.t.size)
	return View{t: a.t, data: a.data[start : start+int(a.t.size) : start+int(a.t.size)]}, nil
}

// Column returns the per-field column for name.
func (a *Array) Column(name string) (Column, error) {
	f, ok := a.t.Field(name)
	if !ok {
		return Column{}, errors.UnknownField(errors.PhaseRuntime, a.t.String(), name)
	}
	return Column{arr: a, field: f}, nil
}

// Clone returns an independent copy of the array.
func (a *Array) Clone() *Array {
	data := make([]byte, len(a.data))
	copy(data, a.data)
	return &Array{t: a.t, data: data, count: a.count}
}

// View is an address + type handle over one record.
type View struct {
	t    *Type
	data []byte
}

// NewView allocates a standalone zeroed record.
func NewView(t *Type) View {
	return View{t: t, data: make([]byte, t.size)}
}

func (v View) Type() *Type {
	return v.t
}

// Bytes returns the record's backing bytes.
func (v View) Bytes() []byte {
	return v.data
}

// Valid reports whether v refers to a record.
func (v View) Valid() bool {
	return v.t != nil
}

// Get reads field name.
func (v View) Get(name string) (dtype.Scalar, error) {
	f, ok := v.t.Field(name)
	if !ok {
		return dtype.Scalar{}, errors.UnknownField(errors.PhaseRuntime, v.t.String(), name)
	}
	return dtype.Load(f.Kind, v.data[f.Offset:]), nil
}

// Set converts val to the field kind and writes it.
func (v View) Set(name string, val dtype.Scalar) error {
	f, ok := v.t.Field(name)
	if !ok {
		return errors.UnknownField(errors.PhaseRuntime, v.t.String(), name)
	}
	return store(v.t, f, v.data[f.Offset:], val)
}

// Column is one field of every record in an array.
type Column struct {
	arr   *Array
	field Field
}

func (c Column) Field() Field {
	return c.field
}

// Len returns the number of records in the underlying array.
func (c Column) Len() int {
	return c.arr.count
}

// Get reads the field of record i.
func (c Column) Get(i int) (dtype.Scalar, error) {
	off, err := c.offset(i)
	if err != nil {
		return dtype.Scalar{}, err
	}
	return dtype.Load(c.field.Kind, c.arr.data[off:]), nil
}

// Set writes the field of record i.
func (c Column) Set(i int, val dtype.Scalar) error {
	off, err := c.offset(i)
	if err != nil {
		return err
	}
	return store(c.arr.t, c.field, c.arr.data[off:], val)
}

func (c Column) offset(i int) (int, error) {
	if i < 0 || i >= c.arr.count {
		return 0, errors.IndexOutOfRange(errors.PhaseRuntime, int64(i), int64(c.arr.count))
	}
	return i*int(c.arr.t.size) + int(c.field.Offset), nil
}

func store(t *Type, f Field, mem []byte, val dtype.Scalar) error {
	out, ok := val.Convert(f.Kind)
	if !ok {
		return errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
			Path(f.Name).
			RecordType(t.String()).
			FieldKind(f.Kind.String()).
			Detail("cannot store %s value", val.Kind()).
			Build()
	}
	out.Store(mem)
	return nil
}
