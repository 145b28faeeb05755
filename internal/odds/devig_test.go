package odds

import (
	"math"
	"testing"
)

func TestDevigTwoWaySumsToOne(t *testing.T) {
	tests := []struct {
		p1, p2 float64
	}{
		{0.524, 0.524},
		{0.60, 0.45},
		{0.50, 0.50},
		{0.91, 0.13},
	}
	for _, tt := range tests {
		f1, f2, s := DevigTwoWay(tt.p1, tt.p2)
		if math.Abs((f1+f2)-1.0) > 1e-12 {
			t.Errorf("DevigTwoWay(%v, %v): fair sum = %v, want 1", tt.p1, tt.p2, f1+f2)
		}
		if math.Abs(s-(tt.p1+tt.p2)) > 1e-12 {
			t.Errorf("DevigTwoWay(%v, %v): overround = %v, want %v", tt.p1, tt.p2, s, tt.p1+tt.p2)
		}
		if math.Abs(f1-tt.p1/s) > 1e-12 {
			t.Errorf("DevigTwoWay(%v, %v): fair1 = %v, want %v", tt.p1, tt.p2, f1, tt.p1/s)
		}
	}
}

func TestDevigTwoWayDegenerate(t *testing.T) {
	f1, f2, s := DevigTwoWay(0, 0)
	if f1 != 0 || f2 != 0 || s != 0 {
		t.Fatalf("expected zeros for degenerate input, got %v %v %v", f1, f2, s)
	}
}

func TestBandAccepts(t *testing.T) {
	band := DefaultBand()
	for _, s := range []float64{0.98, 1.0, 1.048, 1.10} {
		if !band.Accepts(s) {
			t.Errorf("band should accept overround %v", s)
		}
	}
	for _, s := range []float64{0.979, 1.101, 1.15, 0.5, 2.0} {
		if band.Accepts(s) {
			t.Errorf("band should reject overround %v", s)
		}
	}
}
