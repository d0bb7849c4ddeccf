package layout

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/recjit/dtype"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name   string
		kinds  []dtype.ScalarKind
		packed bool
		want   Info
	}{
		{
			name:   "packed f1 s1 f2",
			kinds:  []dtype.ScalarKind{dtype.Int64, dtype.Bytes(3), dtype.Float64},
			packed: true,
			want:   Info{Offsets: []uint32{0, 8, 11}, Size: 19, Align: 1},
		},
		{
			name:  "aligned f1 s1 f2",
			kinds: []dtype.ScalarKind{dtype.Int64, dtype.Bytes(3), dtype.Float64},
			want:  Info{Offsets: []uint32{0, 8, 16}, Size: 24, Align: 8},
		},
		{
			name:  "aligned tail padding",
			kinds: []dtype.ScalarKind{dtype.Int32, dtype.Int8},
			want:  Info{Offsets: []uint32{0, 4}, Size: 8, Align: 4},
		},
		{
			name:  "aligned mixed",
			kinds: []dtype.ScalarKind{dtype.Uint8, dtype.Int16, dtype.Uint8, dtype.Float64, dtype.Float32},
			want:  Info{Offsets: []uint32{0, 2, 4, 8, 16}, Size: 24, Align: 8},
		},
		{
			name:  "aligned bytes only",
			kinds: []dtype.ScalarKind{dtype.Bytes(3), dtype.Bytes(2)},
			want:  Info{Offsets: []uint32{0, 3}, Size: 5, Align: 1},
		},
		{
			name:   "packed mixed",
			kinds:  []dtype.ScalarKind{dtype.Uint8, dtype.Int16, dtype.Uint8, dtype.Float64, dtype.Float32},
			packed: true,
			want:   Info{Offsets: []uint32{0, 1, 3, 4, 12}, Size: 16, Align: 1},
		},
		{
			name:   "packed three f64",
			kinds:  []dtype.ScalarKind{dtype.Float64, dtype.Float64, dtype.Float64},
			packed: true,
			want:   Info{Offsets: []uint32{0, 8, 16}, Size: 24, Align: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(tt.kinds, tt.packed)
			if err != nil {
				t.Fatalf("Calculate failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Calculate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCalculate_OffsetLaws(t *testing.T) {
	kinds := []dtype.ScalarKind{
		dtype.Int8, dtype.Float64, dtype.Bytes(5), dtype.Uint16, dtype.Int32,
		dtype.Bytes(1), dtype.Uint64, dtype.Float32, dtype.Int16,
	}

	packed, err := Calculate(kinds, true)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(kinds); i++ {
		if want := packed.Offsets[i-1] + kinds[i-1].Size(); packed.Offsets[i] != want {
			t.Errorf("packed offset[%d] = %d, want %d", i, packed.Offsets[i], want)
		}
	}

	aligned, err := Calculate(kinds, false)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(kinds); i++ {
		want := AlignTo(aligned.Offsets[i-1]+kinds[i-1].Size(), kinds[i].Align())
		if aligned.Offsets[i] != want {
			t.Errorf("aligned offset[%d] = %d, want %d", i, aligned.Offsets[i], want)
		}
	}
	last := len(kinds) - 1
	if want := AlignTo(aligned.Offsets[last]+kinds[last].Size(), aligned.Align); aligned.Size != want {
		t.Errorf("aligned size = %d, want %d", aligned.Size, want)
	}
}

func TestCalculate_Overflow(t *testing.T) {
	tests := []struct {
		name   string
		kinds  []dtype.ScalarKind
		packed bool
	}{
		{"packed sum", []dtype.ScalarKind{dtype.Bytes(math.MaxUint32), dtype.Int8}, true},
		{"aligned field offset", []dtype.ScalarKind{dtype.Bytes(math.MaxUint32), dtype.Int64}, false},
		{"aligned near limit", []dtype.ScalarKind{dtype.Bytes(math.MaxUint32 - 2), dtype.Int32}, false},
		{"aligned total size", []dtype.ScalarKind{dtype.Int64, dtype.Bytes(math.MaxUint32 - 9)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Calculate(tt.kinds, tt.packed)
			if err == nil {
				t.Errorf("Calculate succeeded with offsets %v size %d, want overflow error", info.Offsets, info.Size)
			}
		})
	}
}

func TestAlignTo(t *testing.T) {
	tests := []struct {
		offset, align, want uint32
	}{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{11, 8, 16},
		{3, 1, 3},
		{5, 0, 5},
	}
	for _, tt := range tests {
		if got := AlignTo(tt.offset, tt.align); got != tt.want {
			t.Errorf("AlignTo(%d, %d) = %d, want %d", tt.offset, tt.align, got, tt.want)
		}
	}
}

func TestSafeArith(t *testing.T) {
	if _, ok := SafeMulU32(1<<20, 1<<20); ok {
		t.Error("SafeMulU32 should overflow")
	}
	if got, ok := SafeMulU32(24, 3); !ok || got != 72 {
		t.Errorf("SafeMulU32(24, 3) = %d, %v", got, ok)
	}
	if _, ok := SafeAddU32(math.MaxUint32, 1); ok {
		t.Error("SafeAddU32 should overflow")
	}
}
