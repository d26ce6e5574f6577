package geo

import (
	"errors"
	"strings"
)

// ErrPlaceNotFound is returned when a place name has no gazetteer entry.
// Callers recover by asking the user for explicit coordinates.
var ErrPlaceNotFound = errors.New("place not found in gazetteer")

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// gazetteer maps lowercase place names to coordinates. Minimal built-in
// table; extend as needed.
var gazetteer = map[string]Coordinate{
	"sri lanka":     {Lat: 7.8731, Lon: 80.7718},
	"colombo":       {Lat: 6.9271, Lon: 79.8612},
	"bay of bengal": {Lat: 15.0, Lon: 90.0},
	"arabian sea":   {Lat: 18.0, Lon: 64.0},
	"indian ocean":  {Lat: 0.0, Lon: 80.0},
	"chennai":       {Lat: 13.0827, Lon: 80.2707},
}

// ResolvePlace looks up a place name. Matching is case-insensitive and exact,
// with a leading "the " article stripped; there is no fuzzy matching.
func ResolvePlace(name string) (Coordinate, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := gazetteer[key]; ok {
		return c, nil
	}
	key = strings.TrimSpace(strings.TrimPrefix(key, "the "))
	if c, ok := gazetteer[key]; ok {
		return c, nil
	}
	return Coordinate{}, ErrPlaceNotFound
}
