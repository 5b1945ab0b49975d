package core

import (
	"math"
	"testing"
)

func TestParseAmountToOre(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"0", 0, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"1,005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"750 000", 75000000, true},
		{"750 000 kr", 75000000, true},
		{"100000KR", 10000000, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"kr", 0, false},
		{"92233720368547758.07", math.MaxInt64, true},
		{"92233720368547758.08", 0, false},
		{"92233720368547758.99", 0, false},
		{"92233720368547758.075", 0, false},
		{"92233720368547759", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmountToOre(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseKroner(t *testing.T) {
	got, err := ParseKroner("8 333,33")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 8333.33 {
		t.Fatalf("expected 8333.33, got %v", got)
	}
}

func TestFormatKroner(t *testing.T) {
	cases := map[float64]string{
		750000:   "750 000 kr",
		8333.33:  "8 333 kr",
		0:        "0 kr",
		-8333.33: "-8 333 kr",
		999.5:    "1 000 kr",
	}
	for in, want := range cases {
		if got := FormatKroner(in); got != want {
			t.Errorf("FormatKroner(%v) = %q, want %q", in, got, want)
		}
	}
}
