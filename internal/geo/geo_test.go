package geo

import (
	"math"
	"testing"
)

func TestResolvePlace(t *testing.T) {
	tests := []struct {
		name    string
		place   string
		wantLat float64
		wantLon float64
		wantErr bool
	}{
		{"known place", "colombo", 6.9271, 79.8612, false},
		{"mixed case", "Sri Lanka", 7.8731, 80.7718, false},
		{"the prefix stripped", "the bay of bengal", 15.0, 90.0, false},
		{"unknown place", "atlantis", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coord, err := ResolvePlace(tt.place)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got %+v", tt.place, coord)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolvePlace(%q) failed: %v", tt.place, err)
			}
			if coord.Lat != tt.wantLat || coord.Lon != tt.wantLon {
				t.Errorf("Expected (%v, %v), got (%v, %v)", tt.wantLat, tt.wantLon, coord.Lat, coord.Lon)
			}
		})
	}
}

func TestDistanceKm_Zero(t *testing.T) {
	if d := DistanceKm(6.93, 79.86, 6.93, 79.86); d != 0 {
		t.Errorf("Expected zero distance, got %v", d)
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	d1 := DistanceKm(6.93, 79.86, 13.08, 80.27)
	d2 := DistanceKm(13.08, 80.27, 6.93, 79.86)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("Expected symmetric distances, got %v and %v", d1, d2)
	}
}

func TestDistanceKm_KnownValue(t *testing.T) {
	// Colombo to Chennai is roughly 690 km
	d := DistanceKm(6.9271, 79.8612, 13.0827, 80.2707)
	if d < 650 || d > 730 {
		t.Errorf("Expected roughly 690 km, got %v", d)
	}
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantLat float64
		wantLon float64
		wantErr bool
	}{
		{"labeled", "nearest floats to lat: 12.97, lon: 77.59", 12.97, 77.59, false},
		{"labeled equals", "lat=-5.5 lon=80", -5.5, 80, false},
		{"no coordinates", "nearest floats to this location", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coord, err := ParseCoordinate(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error, got %+v", coord)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCoordinate(%q) failed: %v", tt.text, err)
			}
			if coord.Lat != tt.wantLat || coord.Lon != tt.wantLon {
				t.Errorf("Expected (%v, %v), got (%v, %v)", tt.wantLat, tt.wantLon, coord.Lat, coord.Lon)
			}
		})
	}
}
