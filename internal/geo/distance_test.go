package geo

import (
	"errors"
	"math"
	"testing"
)

func TestDistanceKm_ZeroDistance(t *testing.T) {
	d, err := DistanceKm(10, 20, 10, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d < 0 || d > 1e-9 {
		t.Fatalf("zero distance expected ~0, got %v", d)
	}
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// Lagos (6.5244, 3.3792) to Abuja (9.0765, 7.3986) is roughly 536 km.
	d, err := DistanceKm(6.5244, 3.3792, 9.0765, 7.3986)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d < 520 || d > 560 {
		t.Fatalf("expected ~536 km, got %v", d)
	}
}

func TestDistanceKm_InvalidCoordinates(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
	}{
		{"nan latitude", math.NaN(), 0, 0, 0},
		{"nan longitude", 0, 0, 0, math.NaN()},
		{"latitude out of range", 91, 0, 0, 0},
		{"longitude out of range", 0, 0, 0, -181},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DistanceKm(tc.lat1, tc.lng1, tc.lat2, tc.lng2); !errors.Is(err, ErrInvalidCoordinate) {
				t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
			}
		})
	}
}

func TestKmToMiles(t *testing.T) {
	if got := KmToMiles(100); math.Abs(got-62.1371) > 1e-6 {
		t.Fatalf("KmToMiles(100) = %v, want 62.1371", got)
	}
}
