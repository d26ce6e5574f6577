package query

import (
	"strings"
	"time"
)

// rule is one (predicate, effect) pair of the extraction table. Rules are
// evaluated independently against the lowercased question and are additive:
// several may fire on the same text.
type rule struct {
	match func(q string) bool
	apply func(cs *ConstraintSet)
}

func containsAny(phrases ...string) func(string) bool {
	return func(q string) bool {
		for _, p := range phrases {
			if strings.Contains(q, p) {
				return true
			}
		}
		return false
	}
}

var (
	equatorBand    = Box{LatMin: -5, LatMax: 5, LonMin: -180, LonMax: 180}
	indianOceanBox = Box{LatMin: -30, LatMax: 30, LonMin: 20, LonMax: 120}

	march2023 = TimeRange{
		Start: time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC),
	}
)

func setRegion(box Box) func(*ConstraintSet) {
	return func(cs *ConstraintSet) {
		if cs.Region == nil {
			cs.Region = &box
			return
		}
		narrowed := cs.Region.Intersect(box)
		cs.Region = &narrowed
	}
}

func addWindow(days int) func(*ConstraintSet) {
	return func(cs *ConstraintSet) {
		cs.Windows = append(cs.Windows, days)
	}
}

// extractionRules fire in order; regions narrow by intersection, windows
// stack as markers.
var extractionRules = []rule{
	{containsAny("equator"), setRegion(equatorBand)},
	{containsAny("indian ocean"), setRegion(indianOceanBox)},
	{containsAny("march 2023"), func(cs *ConstraintSet) {
		r := march2023
		cs.Absolute = &r
	}},
	{containsAny("last 30 days", "past 30 days", "30 days"), addWindow(30)},
	{containsAny("this week", "past week", "last 7 days", "7 days"), addWindow(7)},
	{containsAny("last 6 months", "past 6 months", "6 months"), addWindow(180)},
}

// parameterRules is a single mutually-exclusive branch evaluated after the
// additive rules, in fixed priority. Salinity is the default.
var parameterRules = []struct {
	match func(string) bool
	param Parameter
}{
	{containsAny("oxygen", "dissolved oxygen", "o2"), ParamOxygen},
	{containsAny("salinity", "psal"), ParamSalinity},
	{containsAny("temperature", "temp"), ParamTemperature},
	{containsAny("pressure", "pres"), ParamPressure},
}

// Extract maps recognized phrases in an aggregate question to a normalized
// constraint set. Every result carries the hard row cap and a non-null filter
// on the selected parameter (applied at execution).
func Extract(text string) ConstraintSet {
	q := strings.ToLower(text)

	cs := ConstraintSet{Limit: MaxRows}
	for _, r := range extractionRules {
		if r.match(q) {
			r.apply(&cs)
		}
	}

	// An explicit absolute range is more specific than any recency phrase;
	// relative markers are dropped so the two never coexist.
	if cs.Absolute != nil {
		cs.Windows = nil
	}

	cs.Parameter = ParamSalinity
	for _, pr := range parameterRules {
		if pr.match(q) {
			cs.Parameter = pr.param
			break
		}
	}

	return cs
}
