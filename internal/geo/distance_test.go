package geo

import (
	"math"
	"testing"
)

func TestFormatMiles(t *testing.T) {
	cases := []struct {
		meters float64
		want   string
	}{
		{1609.344, "1.0 mi"},
		{0, "0.0 mi"},
		{482.8, "0.3 mi"},
		{8046.72, "5.0 mi"},
	}

	for _, tc := range cases {
		if got := FormatMiles(tc.meters); got != tc.want {
			t.Errorf("FormatMiles(%v) = %q, want %q", tc.meters, got, tc.want)
		}
	}
}

func TestHaversine(t *testing.T) {
	// Empire State Building to Central Park Zoo, roughly 2.6 km.
	d := Haversine(40.748817, -73.985428, 40.767778, -73.971944)
	if d < 2300 || d > 2900 {
		t.Errorf("expected roughly 2.6km, got %.0fm", d)
	}

	if d := Haversine(40.0, -73.0, 40.0, -73.0); math.Abs(d) > 0.001 {
		t.Errorf("same point should be zero distance, got %v", d)
	}
}
