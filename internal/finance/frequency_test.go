package finance

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		freq   Frequency
		want   float64
	}{
		{"weekly", 100, FrequencyWeekly, 433},
		{"bi-weekly", 2000, FrequencyBiWeekly, 4340},
		{"monthly", 1500, FrequencyMonthly, 1500},
		{"yearly", 120000, FrequencyYearly, 10000},
		{"one-time excluded", 5000, FrequencyOneTime, 0},
		{"zero passes through", 0, FrequencyWeekly, 0},
		{"negative passes through", -100, FrequencyMonthly, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.amount, tt.freq)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !almostEqual(got, tt.want) {
				t.Errorf("Normalize(%v, %s) = %v, want %v", tt.amount, tt.freq, got, tt.want)
			}
		})
	}
}

func TestNormalize_InvalidFrequency(t *testing.T) {
	_, err := Normalize(100, Frequency("fortnightly"))
	if err == nil {
		t.Fatal("expected error for unknown frequency")
	}
	if !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("expected ErrInvalidFrequency, got %v", err)
	}
	var freqErr *InvalidFrequencyError
	if !errors.As(err, &freqErr) || freqErr.Value != "fortnightly" {
		t.Errorf("expected InvalidFrequencyError carrying the value, got %#v", err)
	}
}

func TestNormalize_MonthlyIdempotent(t *testing.T) {
	for _, x := range []float64{0, 1, 99.99, -42, 1e9} {
		once, err := Normalize(x, FrequencyMonthly)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		twice, err := Normalize(once, FrequencyMonthly)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if once != twice {
			t.Errorf("monthly normalization not idempotent for %v: %v != %v", x, once, twice)
		}
	}
}

func TestParseFrequency(t *testing.T) {
	for _, f := range Frequencies() {
		got, err := ParseFrequency(string(f))
		if err != nil {
			t.Errorf("ParseFrequency(%q) unexpected error: %v", f, err)
		}
		if got != f {
			t.Errorf("ParseFrequency(%q) = %q", f, got)
		}
	}

	if _, err := ParseFrequency("daily"); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("expected ErrInvalidFrequency for daily, got %v", err)
	}
}
