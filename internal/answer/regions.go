package answer

// regionBox names a latitude/longitude box used to partition returned rows.
// Boxes are hand-tuned constants kept as data so they can be adjusted and
// tested without touching synthesis logic.
type regionBox struct {
	Name   string
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

func (b regionBox) contains(lat, lon float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax
}

// oceanBasins partitions the globe for anomaly reporting, first match wins.
// The Pacific spans the antimeridian so it takes two boxes.
var oceanBasins = []regionBox{
	{Name: "Indian Ocean", LatMin: -30, LatMax: 30, LonMin: 20, LonMax: 120},
	{Name: "Atlantic Ocean", LatMin: -60, LatMax: 60, LonMin: -60, LonMax: 20},
	{Name: "Pacific Ocean", LatMin: -60, LatMax: 60, LonMin: 120, LonMax: 180},
	{Name: "Pacific Ocean", LatMin: -60, LatMax: 60, LonMin: -180, LonMax: -60},
}

// basinNames fixes the reporting order for basin partitions.
var basinNames = []string{"Indian Ocean", "Atlantic Ocean", "Pacific Ocean"}

// basinName classifies a point into one of the fixed basins, or "Global".
func basinName(lat, lon float64) string {
	for _, b := range oceanBasins {
		if b.contains(lat, lon) {
			return b.Name
		}
	}
	return "Global"
}

const otherIndianSubregion = "Other Indian"

// indianSubregions partitions Indian Ocean rows for variability ranking,
// first match wins.
var indianSubregions = []regionBox{
	{Name: "Arabian Sea (NW)", LatMin: 5, LatMax: 25, LonMin: 45, LonMax: 80},
	{Name: "Bay of Bengal (NE)", LatMin: 5, LatMax: 25, LonMin: 80, LonMax: 100},
	{Name: "Equatorial Indian (EQ)", LatMin: -10, LatMax: 10, LonMin: -180, LonMax: 180},
	{Name: "Southern Indian (SW/SE)", LatMin: -30, LatMax: -10, LonMin: -180, LonMax: 180},
}

// subregionName classifies a point into one of the named Indian Ocean
// subregions.
func subregionName(lat, lon float64) string {
	for _, b := range indianSubregions {
		if b.contains(lat, lon) {
			return b.Name
		}
	}
	return otherIndianSubregion
}
