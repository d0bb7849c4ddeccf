package dtype

import (
	"testing"

	"github.com/wippyai/recjit/errors"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		tag   string
		want  ScalarKind
		size  uint32
		align uint32
	}{
		{"i8", Int8, 1, 1},
		{"i16", Int16, 2, 2},
		{"i32", Int32, 4, 4},
		{"i64", Int64, 8, 8},
		{"u8", Uint8, 1, 1},
		{"u16", Uint16, 2, 2},
		{"u32", Uint32, 4, 4},
		{"u64", Uint64, 8, 8},
		{"f32", Float32, 4, 4},
		{"f64", Float64, 8, 8},
		{"bytes<3>", Bytes(3), 3, 1},
		{"bytes<16>", Bytes(16), 16, 1},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseKind(tt.tag)
			if err != nil {
				t.Fatalf("ParseKind(%q) failed: %v", tt.tag, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.tag, got, tt.want)
			}
			if got.Size() != tt.size {
				t.Errorf("Size() = %d, want %d", got.Size(), tt.size)
			}
			if got.Align() != tt.align {
				t.Errorf("Align() = %d, want %d", got.Align(), tt.align)
			}
			if got.String() != tt.tag {
				t.Errorf("String() = %q, want %q", got.String(), tt.tag)
			}
		})
	}
}

func TestParseKind_Unsupported(t *testing.T) {
	for _, tag := range []string{"", "bool", "c16", "f16", "bytes<0>", "bytes<>", "bytes<x>", "bytes3", "record", "I64"} {
		t.Run(tag, func(t *testing.T) {
			_, err := ParseKind(tag)
			if err == nil {
				t.Fatalf("ParseKind(%q) succeeded, want error", tag)
			}
			if !errors.Is(err, errors.ErrUnsupportedFieldKind) {
				t.Errorf("ParseKind(%q) error = %v, want UnsupportedFieldKind", tag, err)
			}
		})
	}
}

func TestScalarKind_Promoted(t *testing.T) {
	tests := []struct {
		in   ScalarKind
		want ScalarKind
	}{
		{Int8, Int64},
		{Uint32, Int64},
		{Int64, Int64},
		{Uint64, Uint64},
		{Float32, Float64},
		{Float64, Float64},
		{Bytes(3), Bytes(3)},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			if got := tt.in.Promoted(); got != tt.want {
				t.Errorf("Promoted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScalarKind_Predicates(t *testing.T) {
	if !Int16.IsInteger() || !Int16.IsSigned() || Int16.IsFloat() {
		t.Error("i16 predicates wrong")
	}
	if !Uint16.IsInteger() || Uint16.IsSigned() {
		t.Error("u16 predicates wrong")
	}
	if !Float32.IsFloat() || Float32.IsInteger() {
		t.Error("f32 predicates wrong")
	}
	if !Bytes(2).IsBytes() || Bytes(2).IsInteger() {
		t.Error("bytes predicates wrong")
	}
	if (ScalarKind{}).Valid() || Bytes(0).Valid() {
		t.Error("zero kinds should be invalid")
	}
}
