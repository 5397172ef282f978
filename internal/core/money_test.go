package core

import (
	"math"
	"testing"
	"time"
)

const nnbsp, nbsp = "\u202f", "\u00a0"

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in  float64
		out string
	}{
		{1234.56, "1" + nnbsp + "234,56" + nbsp + "€"},
		{0, "0,00" + nbsp + "€"},
		{0.99, "0,99" + nbsp + "€"},
		{1, "1,00" + nbsp + "€"},
		{-999.99, "-999,99" + nbsp + "€"},
		{1000000, "1" + nnbsp + "000" + nnbsp + "000,00" + nbsp + "€"},
		{123456.7, "123" + nnbsp + "456,70" + nbsp + "€"},
		{1.005, "1,01" + nbsp + "€"},   // half away from zero
		{-1.005, "-1,01" + nbsp + "€"}, // symmetric for negatives
		{2.004, "2,00" + nbsp + "€"},
		{-0.001, "0,00" + nbsp + "€"}, // no "-0,00"
		{math.Copysign(0, -1), "0,00" + nbsp + "€"},
		{math.NaN(), "0,00" + nbsp + "€"},
		{math.Inf(1), "0,00" + nbsp + "€"},
		{math.Inf(-1), "0,00" + nbsp + "€"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.in); got != tc.out {
			t.Errorf("FormatAmount(%v) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestFormatOptionalAmount(t *testing.T) {
	if got := FormatOptionalAmount(nil); got != "0,00"+nbsp+"€" {
		t.Fatalf("nil amount rendered as %q", got)
	}
	v := 12.5
	if got := FormatOptionalAmount(&v); got != "12,50"+nbsp+"€" {
		t.Fatalf("12.5 rendered as %q", got)
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(29.8416); got != "29,84"+nbsp+"%" {
		t.Fatalf("got %q", got)
	}
	if got := FormatPercent(math.Inf(1)); got != "∞"+nbsp+"%" {
		t.Fatalf("got %q", got)
	}
	if got := FormatPercent(math.NaN()); got != "0,00"+nbsp+"%" {
		t.Fatalf("got %q", got)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1 234,56", 1234.56, true},
		{"1" + nnbsp + "234,56" + nbsp + "€", 1234.56, true},
		{"1,234.56", 1234.56, true},
		{"1.234,56", 1234.56, true},
		{"$1,234.56", 1234.56, true},
		{"1,234,567", 1234567, true},
		{"1.234.567", 1234567, true},
		{"12,5", 12.5, true},
		{"12.5", 12.5, true},
		{"  42 € ", 42, true},
		{"42 EUR", 42, true},
		{"-999,99", -999.99, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"12abc", 0, false},
		{"1,2.3,4", 0, false},
		{"", 0, false},
		{"   ", 0, false},
		{"€", 0, false},
		{"1e3", 1000, true},
		{"1e400", 0, false},
		{"-1e400", 0, false},
	}
	for _, tc := range cases {
		got := ParseAmount(tc.in)
		if !tc.ok {
			if !math.IsNaN(got) {
				t.Errorf("ParseAmount(%q) = %v, want NaN", tc.in, got)
			}
			continue
		}
		if math.Abs(got-tc.out) > 1e-9 {
			t.Errorf("ParseAmount(%q) = %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestParseAmountHugeExponent(t *testing.T) {
	start := time.Now()
	got := ParseAmount("1e10000000")
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("ParseAmount took %v", elapsed)
	}
	if !math.IsNaN(got) {
		t.Fatalf("ParseAmount(1e10000000) = %v, want NaN", got)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.99, 1.00, 1234.56, -999.99, 1000000.00} {
		got := ParseAmount(FormatAmount(v))
		if math.Abs(got-v) > 0.01 {
			t.Errorf("round trip of %v gave %v", v, got)
		}
	}
}

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		in float64
		ok bool
	}{
		{math.NaN(), false},
		{math.Inf(1), false},
		{math.Inf(-1), false},
		{math.Copysign(0, -1), true},
		{0, true},
		{-42.5, true},
		{1e12, true},
	}
	for _, tc := range cases {
		if got := ValidateAmount(tc.in); got != tc.ok {
			t.Errorf("ValidateAmount(%v) = %v, want %v", tc.in, got, tc.ok)
		}
	}
}
