package dtype

import (
	"math"
	"testing"
)

func TestAppendFloat(t *testing.T) {
	tests := []struct {
		in      float64
		bitSize int
		want    string
	}{
		{0, 64, "0.0"},
		{math.Copysign(0, -1), 64, "-0.0"},
		{2, 64, "2.0"},
		{-6, 64, "-6.0"},
		{0.1, 64, "0.1"},
		{1.5, 64, "1.5"},
		{0.0001, 64, "0.0001"},
		{0.00001, 64, "1e-05"},
		{0.000015, 64, "1.5e-05"},
		{1e15, 64, "1000000000000000.0"},
		{1e16, 64, "1e+16"},
		{1.25e17, 64, "1.25e+17"},
		{1e100, 64, "1e+100"},
		{123456789.125, 64, "123456789.125"},
		{1.0 / 3, 64, "0.3333333333333333"},
		{math.Inf(1), 64, "inf"},
		{math.Inf(-1), 64, "-inf"},
		{math.NaN(), 64, "nan"},
		{float64(float32(0.1)), 32, "0.1"},
		{float64(float32(16777217)), 32, "16777216.0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := string(AppendFloat(nil, tt.in, tt.bitSize))
			if got != tt.want {
				t.Errorf("AppendFloat(%v, %d) = %q, want %q", tt.in, tt.bitSize, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		s    Scalar
		want string
	}{
		{"i64", Int(Int64, -42), "-42"},
		{"u64 max", Uint(Uint64, math.MaxUint64), "18446744073709551615"},
		{"u8", Uint(Uint8, 255), "255"},
		{"i8", Int(Int8, -1), "-1"},
		{"f64", Float(Float64, 2), "2.0"},
		{"f32", Float(Float32, 2.5), "2.5"},
		{"bytes full", ByteString(Bytes(3), []byte("abc")), "abc"},
		{"bytes trailing zeros", ByteString(Bytes(5), []byte("ab")), "ab"},
		{"bytes interior zero", ByteString(Bytes(4), []byte("a\x00b")), "a\x00b"},
		{"bytes empty", ByteString(Bytes(2), nil), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
