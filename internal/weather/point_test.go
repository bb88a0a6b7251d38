package weather

import (
	"math"
	"testing"
)

func TestKmhToMs(t *testing.T) {
	tests := []struct {
		kmh  float64
		want float64
	}{
		{36, 10.0},
		{0, 0},
		{5.4, 1.5},
		{3.6, 1.0},
	}
	for _, tt := range tests {
		if got := KmhToMs(tt.kmh); math.Abs(got-tt.want) > 0.01 {
			t.Errorf("KmhToMs(%v) = %v, want %v", tt.kmh, got, tt.want)
		}
	}
}

func TestMmHgToHpa(t *testing.T) {
	tests := []struct {
		mmHg float64
		want float64
	}{
		{750, 999.92},
		{760, 1013.25},
		{0, 0},
	}
	for _, tt := range tests {
		if got := MmHgToHpa(tt.mmHg); math.Abs(got-tt.want) > 0.01 {
			t.Errorf("MmHgToHpa(%v) = %v, want %v", tt.mmHg, got, tt.want)
		}
	}
}

func TestPaToHpa(t *testing.T) {
	if got := PaToHpa(101325); math.Abs(got-1013.25) > 0.01 {
		t.Errorf("PaToHpa(101325) = %v, want 1013.25", got)
	}
}
