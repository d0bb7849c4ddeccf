package record

import (
	"strconv"
	"strings"

	"github.com/wippyai/recjit/dtype"
)

// Field is one laid-out record field.
type Field struct {
	Name   string
	Kind   dtype.ScalarKind
	Offset uint32
	Index  int
}

// Type is an immutable record layout. Types produced by a Converter are
// canonical within its Registry, so pointer equality implies structural
// equality for them.
type Type struct {
	byName map[string]int
	key    string
	fields []Field
	size   uint32
	align  uint32
	packed bool
}

func newType(fields []Field, size, align uint32, packed bool) *Type {
	t := &Type{
		fields: fields,
		byName: make(map[string]int, len(fields)),
		size:   size,
		align:  align,
		packed: packed,
	}
	for i, f := range fields {
		t.byName[f.Name] = i
	}
	t.key = buildKey(t)
	return t
}

func buildKey(t *Type) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range t.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.Name)
		b.WriteByte(':')
		b.WriteString(f.Kind.String())
		b.WriteByte('@')
		b.WriteString(strconv.FormatUint(uint64(f.Offset), 10))
	}
	b.WriteString("}/size=")
	b.WriteString(strconv.FormatUint(uint64(t.size), 10))
	b.WriteString("/align=")
	b.WriteString(strconv.FormatUint(uint64(t.align), 10))
	if t.packed {
		b.WriteString("/packed")
	}
	return b.String()
}

// Fields returns the fields in declaration order. The slice must not be modified.
func (t *Type) Fields() []Field {
	return t.fields
}

// Field looks up a field by name.
func (t *Type) Field(name string) (Field, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Field{}, false
	}
	return t.fields[i], true
}

// NumFields returns the number of fields.
func (t *Type) NumFields() int {
	return len(t.fields)
}

// Size returns the record size in bytes, including padding.
func (t *Type) Size() uint32 {
	return t.size
}

// Align returns the record alignment: 1 when packed, else the largest field alignment.
func (t *Type) Align() uint32 {
	return t.align
}

// Packed reports whether the record uses the packed layout policy.
func (t *Type) Packed() bool {
	return t.packed
}

// Key returns the structural key: ordered (name, kind, offset) triples,
// size, alignment and the packed flag.
func (t *Type) Key() string {
	return t.key
}

// String returns the structural key.
func (t *Type) String() string {
	return t.key
}

// Equal reports structural equality.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.size != o.size || t.align != o.align || t.packed != o.packed || len(t.fields) != len(o.fields) {
		return false
	}
	for i := range t.fields {
		a, b := t.fields[i], o.fields[i]
		if a.Name != b.Name || a.Kind != b.Kind || a.Offset != b.Offset {
			return false
		}
	}
	return true
}
