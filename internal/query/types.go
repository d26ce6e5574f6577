package query

import (
	"fmt"
	"strings"
	"time"
)

// Parameter identifies one measurement column of the float store.
type Parameter string

const (
	ParamTemperature Parameter = "temperature"
	ParamSalinity    Parameter = "salinity"
	ParamOxygen      Parameter = "oxygen"
	ParamPressure    Parameter = "pressure"
)

// Known reports whether p is one of the supported parameters.
func (p Parameter) Known() bool {
	switch p {
	case ParamTemperature, ParamSalinity, ParamOxygen, ParamPressure:
		return true
	}
	return false
}

// Box is an inclusive latitude/longitude bounding box.
type Box struct {
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// Intersect narrows the box to the overlap with other. When two region rules
// fire on the same question their predicates apply as a conjunction, which
// for boxes is the intersection.
func (b Box) Intersect(other Box) Box {
	return Box{
		LatMin: max(b.LatMin, other.LatMin),
		LatMax: min(b.LatMax, other.LatMax),
		LonMin: max(b.LonMin, other.LonMin),
		LonMax: min(b.LonMax, other.LonMax),
	}
}

// TimeRange is a half-open absolute window [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// MaxRows is the hard cap applied to every aggregate query.
const MaxRows = 200

// ConstraintSet is the normalized representation of an aggregate question,
// produced by Extract or by the LLM translator. Exactly one parameter is
// selected; at most one region box applies; the time filter is either an
// absolute range or relative recency markers, never both.
type ConstraintSet struct {
	Parameter Parameter
	Region    *Box
	Absolute  *TimeRange
	// Windows holds every relative recency marker that fired, in days.
	// Several phrases may match the same question; WindowDays picks the
	// effective one.
	Windows []int
	Limit   int
}

// WindowDays returns the effective relative window. When multiple markers
// co-occur the smallest (most specific) window wins. 0 means no relative
// filter.
func (c *ConstraintSet) WindowDays() int {
	days := 0
	for _, w := range c.Windows {
		if w > 0 && (days == 0 || w < days) {
			days = w
		}
	}
	return days
}

// SQL renders the constraint set as the SELECT it stands for. The string is
// display-only and is echoed to the caller as the resolved query
// representation; execution goes through the store's parameterized filter.
func (c *ConstraintSet) SQL() string {
	var where []string
	where = append(where, fmt.Sprintf("%s IS NOT NULL", c.Parameter))
	if c.Region != nil {
		where = append(where, fmt.Sprintf("latitude BETWEEN %g AND %g", c.Region.LatMin, c.Region.LatMax))
		where = append(where, fmt.Sprintf("longitude BETWEEN %g AND %g", c.Region.LonMin, c.Region.LonMax))
	}
	if c.Absolute != nil {
		where = append(where, fmt.Sprintf("timestamp >= '%s' AND timestamp < '%s'",
			c.Absolute.Start.Format("2006-01-02"), c.Absolute.End.Format("2006-01-02")))
	}
	if days := c.WindowDays(); days > 0 {
		where = append(where, fmt.Sprintf("timestamp >= NOW() - INTERVAL '%d days'", days))
	}

	return fmt.Sprintf(
		"SELECT float_id, latitude, longitude, %s AS value, timestamp FROM float_records WHERE %s ORDER BY timestamp DESC LIMIT %d",
		c.Parameter, strings.Join(where, " AND "), c.Limit)
}
