package app

import "testing"

func TestHumanMeters(t *testing.T) {
	tests := []struct {
		meters float64
		want   string
	}{
		{0, "0.00 m"},
		{42.5, "42.50 m"},
		{1250, "1.25 km"},
		{987654, "987.65 km"},
	}

	for _, tt := range tests {
		if got := humanMeters(tt.meters); got != tt.want {
			t.Errorf("humanMeters(%v) = %q, want %q", tt.meters, got, tt.want)
		}
	}
}

func TestNewAnnotatorMissingFont(t *testing.T) {
	if _, err := NewAnnotator("no/such/font.ttf"); err == nil {
		t.Error("NewAnnotator() error = nil, want error for a missing font file")
	}
}
