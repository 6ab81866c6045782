package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12", 1200, false},
		{"0.01", 1, false},
		{".5", 50, false},
		{"12.345", 1234, false},
		{"12.346", 1235, false},
		{"  7.00 ", 700, false},
		{"", 0, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"-5", 0, true},
		{"+5", 0, true},
		{"1.2.3", 0, true},
		{"abc", 0, true},
		{"12a.00", 0, true},
		{"12.a0", 0, true},
		{"92233720368547759", 0, true}, // would overflow when scaled to cents
	}

	for _, tt := range tests {
		got, err := ParseDecimalToCents(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{100, "1.00"},
		{5, "0.05"},
		{0, "0.00"},
		{-1234, "-12.34"},
		{-5, "-0.05"},
	}
	for _, tt := range tests {
		if got := FormatCents(tt.cents); got != tt.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 100}).Validate(); err != nil {
		t.Errorf("positive amount rejected: %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Error("zero amount accepted")
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Error("negative amount accepted")
	}
}
