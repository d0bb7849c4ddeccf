package layout

import (
	"math"

	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/errors"
)

// Info is the computed layout of one record.
type Info struct {
	Offsets []uint32
	Size    uint32
	Align   uint32
}

// Calculate lays out kinds in order under the selected policy.
func Calculate(kinds []dtype.ScalarKind, packed bool) (Info, error) {
	info := Info{Offsets: make([]uint32, len(kinds)), Align: 1}
	offset := uint32(0)

	for i, k := range kinds {
		if !packed {
			aligned := AlignTo(offset, k.Align())
			if aligned < offset {
				return Info{}, errors.New(errors.PhaseConvert, errors.KindInvalidInput).
					FieldKind(k.String()).
					Detail("record size overflows 32 bits").
					Build()
			}
			offset = aligned
			if k.Align() > info.Align {
				info.Align = k.Align()
			}
		}
		info.Offsets[i] = offset

		next, ok := SafeAddU32(offset, k.Size())
		if !ok {
			return Info{}, errors.New(errors.PhaseConvert, errors.KindInvalidInput).
				FieldKind(k.String()).
				Detail("record size overflows 32 bits").
				Build()
		}
		offset = next
	}

	info.Size = AlignTo(offset, info.Align)
	if info.Size < offset {
		return Info{}, errors.New(errors.PhaseConvert, errors.KindInvalidInput).
			Detail("record size overflows 32 bits").
			Build()
	}
	return info, nil
}

// AlignTo rounds offset up to a multiple of align, a power of two.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

func SafeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}
