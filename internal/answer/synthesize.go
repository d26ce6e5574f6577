package answer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/floatchat/floatchat/internal/database"
)

// NoMatchMessage is the fixed reply for an aggregate query that matched no
// rows even after widening.
const NoMatchMessage = "I couldn't find matching samples for that filter. Try widening the time or latitude band."

// basinDeviationThreshold is the minimum absolute deviation from the global
// mean for a basin to be reported as unusual, in units of the parameter.
const basinDeviationThreshold = 0.30

// minSubregionSamples is the minimum sample count for a subregion to qualify
// for the variability ranking.
const minSubregionSamples = 3

// lowOxygenReportCap bounds how many anomalous rows the oxygen narrative
// names.
const lowOxygenReportCap = 5

// rowData carries the matched rows plus the per-parameter value slices the
// narrative rules share.
type rowData struct {
	rows []database.FloatRecord
	sal  []float64
	tmp  []float64
	oxy  []float64
	lats []float64
	lons []float64
}

func collect(rows []database.FloatRecord) *rowData {
	d := &rowData{rows: rows}
	for _, r := range rows {
		if r.Salinity != nil {
			d.sal = append(d.sal, *r.Salinity)
		}
		if r.Temperature != nil {
			d.tmp = append(d.tmp, *r.Temperature)
		}
		if r.Oxygen != nil {
			d.oxy = append(d.oxy, *r.Oxygen)
		}
		d.lats = append(d.lats, r.Latitude)
		d.lons = append(d.lons, r.Longitude)
	}
	return d
}

// narrativeRule is one (predicate, builder) pair. Rules are evaluated in
// priority order against the lowercased question; the first match produces
// the narrative and the generic summary is the fallback.
type narrativeRule struct {
	match func(q string, d *rowData) bool
	build func(q string, d *rowData) string
}

func anyOf(q string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(q, p) {
			return true
		}
	}
	return false
}

var narrativeRules = []narrativeRule{
	{
		match: func(q string, d *rowData) bool {
			return strings.Contains(q, "unusual") && anyOf(q, "salinity", "psal") && len(d.sal) > 0
		},
		build: unusualSalinityNarrative,
	},
	{
		match: func(q string, d *rowData) bool {
			return strings.Contains(q, "indian ocean") && strings.Contains(q, "variability") &&
				anyOf(q, "salinity", "psal") && len(d.sal) > 0
		},
		build: salinityVariabilityNarrative,
	},
	{
		match: func(q string, d *rowData) bool {
			return strings.Contains(q, "indian ocean") && anyOf(q, "temperature", "temp") && len(d.tmp) > 0
		},
		build: indianTemperatureNarrative,
	},
	{
		match: func(q string, d *rowData) bool {
			return anyOf(q, "oxygen", "o2", "dissolved oxygen") && len(d.oxy) > 0
		},
		build: oxygenAnomalyNarrative,
	},
}

// Synthesize produces a deterministic narrative for the matched rows,
// conditioned on the question text.
func Synthesize(queryText string, rows []database.FloatRecord) string {
	if len(rows) == 0 {
		return NoMatchMessage
	}

	q := strings.ToLower(queryText)
	d := collect(rows)

	for _, rule := range narrativeRules {
		if rule.match(q, d) {
			return rule.build(q, d)
		}
	}
	return genericNarrative(q, d)
}

// unusualSalinityNarrative reports basins whose mean deviates from the global
// mean of the returned rows by at least the threshold, largest deviation
// first.
func unusualSalinityNarrative(q string, d *rowData) string {
	globalMean := mean(d.sal)

	byBasin := map[string][]float64{}
	for _, r := range d.rows {
		if r.Salinity == nil {
			continue
		}
		name := basinName(r.Latitude, r.Longitude)
		if name == "Global" {
			continue
		}
		byBasin[name] = append(byBasin[name], *r.Salinity)
	}

	type deviation struct {
		name  string
		delta float64
		mean  float64
	}
	var deltas []deviation
	for _, name := range basinNames {
		vals := byBasin[name]
		if len(vals) == 0 {
			continue
		}
		m := mean(vals)
		deltas = append(deltas, deviation{name: name, delta: m - globalMean, mean: m})
	}
	sort.SliceStable(deltas, func(i, j int) bool {
		return abs(deltas[i].delta) > abs(deltas[j].delta)
	})

	var highlights []string
	for _, dev := range deltas {
		if abs(dev.delta) < basinDeviationThreshold {
			continue
		}
		direction := "higher"
		if dev.delta < 0 {
			direction = "lower"
		}
		highlights = append(highlights, fmt.Sprintf("%s (%s by %.2f PSU; mean %.2f PSU)",
			dev.name, direction, abs(dev.delta), dev.mean))
	}

	base := fmt.Sprintf("Based on %d recent samples, global salinity averages %.2f PSU. ", len(d.rows), globalMean)
	if len(highlights) == 0 {
		return base + "No strong regional anomalies (>|0.30| PSU) were detected in this window."
	}
	return base + "Unusual patterns detected in: " + strings.Join(highlights, ", ") + "."
}

// salinityVariabilityNarrative ranks Indian Ocean subregions by population
// standard deviation. Subregions with fewer than three samples don't qualify.
func salinityVariabilityNarrative(q string, d *rowData) string {
	buckets := map[string][]float64{}
	for _, r := range d.rows {
		if r.Salinity == nil {
			continue
		}
		name := subregionName(r.Latitude, r.Longitude)
		buckets[name] = append(buckets[name], *r.Salinity)
	}

	type ranked struct {
		name  string
		sigma float64
		mean  float64
		count int
	}
	var ranking []ranked
	for name, vals := range buckets {
		if len(vals) < minSubregionSamples {
			continue
		}
		ranking = append(ranking, ranked{name: name, sigma: pstdev(vals), mean: mean(vals), count: len(vals)})
	}
	if len(ranking) == 0 {
		return fmt.Sprintf("I found %d samples in the Indian Ocean but not enough per subregion to estimate variability. Try widening the time window.", len(d.rows))
	}

	sort.SliceStable(ranking, func(i, j int) bool { return ranking[i].sigma > ranking[j].sigma })
	if len(ranking) > 4 {
		ranking = ranking[:4]
	}

	var lines []string
	for _, r := range ranking {
		lines = append(lines, fmt.Sprintf("%s: σ=%.3f PSU (mean %.2f, n=%d)", r.name, r.sigma, r.mean, r.count))
	}
	return "Highest salinity variability by Indian Ocean subregion: " + strings.Join(lines, "; ") + "."
}

func indianTemperatureNarrative(q string, d *rowData) string {
	lo, hi := minMax(d.tmp)
	return fmt.Sprintf(
		"Indian Ocean (last window): Mean temperature %.2f°C, range %.2f–%.2f°C across %d samples. "+
			"Warmest pockets align with lower latitudes and western/eastern basin edges.",
		mean(d.tmp), lo, hi, len(d.rows))
}

// oxygenAnomalyNarrative flags rows at or below mean − 1.5σ (or the minimum
// when σ is zero) as low-oxygen anomalies.
func oxygenAnomalyNarrative(q string, d *rowData) string {
	meanO := mean(d.oxy)
	sigma := pstdev(d.oxy)

	threshold := meanO - 1.5*sigma
	if sigma == 0 {
		lo, _ := minMax(d.oxy)
		threshold = lo
	}

	type low struct {
		value float64
		row   database.FloatRecord
	}
	var lows []low
	for _, r := range d.rows {
		if r.Oxygen == nil {
			continue
		}
		if *r.Oxygen <= threshold {
			lows = append(lows, low{value: *r.Oxygen, row: r})
		}
	}

	if len(lows) == 0 {
		return fmt.Sprintf("Analyzed %d samples. Oxygen mean %.2f mg/L; no low-oxygen anomalies below %.2f mg/L detected.",
			len(d.rows), meanO, threshold)
	}

	sort.SliceStable(lows, func(i, j int) bool { return lows[i].value < lows[j].value })
	total := len(lows)
	if len(lows) > lowOxygenReportCap {
		lows = lows[:lowOxygenReportCap]
	}

	var lines []string
	for _, l := range lows {
		lines = append(lines, fmt.Sprintf("float %s: O₂=%.2f mg/L at (%.2f,%.2f)",
			l.row.FloatID, l.value, l.row.Latitude, l.row.Longitude))
	}
	return fmt.Sprintf("Detected %d low-oxygen samples (≤ %.2f mg/L). ", total, threshold) +
		strings.Join(lines, "; ") + "."
}

// genericNarrative reports mean/min/max for whichever parameters are present
// plus the coverage bounding box.
func genericNarrative(q string, d *rowData) string {
	var parts []string
	if len(d.tmp) > 0 {
		lo, hi := minMax(d.tmp)
		parts = append(parts, fmt.Sprintf("Temperature mean %.2f°C (min %.2f, max %.2f).", mean(d.tmp), lo, hi))
	}
	if len(d.sal) > 0 {
		lo, hi := minMax(d.sal)
		parts = append(parts, fmt.Sprintf("Salinity mean %.2f PSU (min %.2f, max %.2f).", mean(d.sal), lo, hi))
	}
	if len(d.oxy) > 0 {
		lo, hi := minMax(d.oxy)
		parts = append(parts, fmt.Sprintf("Oxygen mean %.2f mg/L (min %.2f, max %.2f).", mean(d.oxy), lo, hi))
	}
	if len(d.lats) > 0 && len(d.lons) > 0 {
		latLo, latHi := minMax(d.lats)
		lonLo, lonHi := minMax(d.lons)
		parts = append(parts, fmt.Sprintf("Coverage: lat %.2f–%.2f, lon %.2f–%.2f.", latLo, latHi, lonLo, lonHi))
	}

	return fmt.Sprintf("Analyzed %d samples. ", len(d.rows)) + strings.Join(parts, " ")
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
