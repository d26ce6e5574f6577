package geo

import (
	"errors"
	"regexp"
	"strconv"
)

// ErrNoCoordinates is returned when free text contains no recognizable
// latitude/longitude pair.
var ErrNoCoordinates = errors.New("no coordinates found in text")

var (
	// "lat: 12.34, lon: 77.12" (colon or equals, comma optional)
	labeledPattern = regexp.MustCompile(`(?i)lat\s*[:=]\s*([-+]?\d+\.?\d*)\s*,?\s*lon\s*[:=]\s*([-+]?\d+\.?\d*)`)
	// bare "12.34, 77.12"
	barePattern = regexp.MustCompile(`([-+]?\d+\.?\d*)\s*,\s*([-+]?\d+\.?\d*)`)
)

// ParseCoordinate extracts a coordinate pair from free text. Labeled pairs
// are accepted as-is; bare pairs must fall inside valid lat/lon ranges.
func ParseCoordinate(text string) (Coordinate, error) {
	if m := labeledPattern.FindStringSubmatch(text); m != nil {
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lon, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			return Coordinate{Lat: lat, Lon: lon}, nil
		}
	}
	if m := barePattern.FindStringSubmatch(text); m != nil {
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lon, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil && lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180 {
			return Coordinate{Lat: lat, Lon: lon}, nil
		}
	}
	return Coordinate{}, ErrNoCoordinates
}
