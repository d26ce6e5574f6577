package answer

import (
	"strings"
	"testing"
	"time"

	"github.com/floatchat/floatchat/internal/database"
)

func sample(id string, lat, lon float64, set func(*database.FloatRecord)) database.FloatRecord {
	rec := database.FloatRecord{
		FloatID:   id,
		Latitude:  lat,
		Longitude: lon,
		Timestamp: time.Now(),
		Status:    database.FloatStatusActive,
	}
	if set != nil {
		set(&rec)
	}
	return rec
}

func withSalinity(v float64) func(*database.FloatRecord) {
	return func(r *database.FloatRecord) { r.Salinity = &v }
}

func withTemperature(v float64) func(*database.FloatRecord) {
	return func(r *database.FloatRecord) { r.Temperature = &v }
}

func withOxygen(v float64) func(*database.FloatRecord) {
	return func(r *database.FloatRecord) { r.Oxygen = &v }
}

func TestSynthesize_EmptyRows(t *testing.T) {
	if got := Synthesize("any question", nil); got != NoMatchMessage {
		t.Errorf("Expected no-match message, got %q", got)
	}
}

func TestSynthesize_UnusualSalinityFlagsDeviantBasins(t *testing.T) {
	// Indian basin well above the global mean, Pacific below, Atlantic near it
	var rows []database.FloatRecord
	for i := 0; i < 3; i++ {
		rows = append(rows, sample("ind", 0, 80, withSalinity(36.0)))
		rows = append(rows, sample("atl", 0, -30, withSalinity(35.0)))
		rows = append(rows, sample("pac", 0, 150, withSalinity(34.5)))
	}

	got := Synthesize("any unusual salinity patterns recently?", rows)

	if !strings.Contains(got, "Unusual patterns detected in:") {
		t.Fatalf("Expected anomaly report, got %q", got)
	}
	if !strings.Contains(got, "Indian Ocean (higher by") {
		t.Errorf("Expected Indian Ocean flagged higher, got %q", got)
	}
	if !strings.Contains(got, "Pacific Ocean (lower by") {
		t.Errorf("Expected Pacific Ocean flagged lower, got %q", got)
	}
	if strings.Contains(got, "Atlantic Ocean (") {
		t.Errorf("Expected Atlantic Ocean below threshold, got %q", got)
	}
}

func TestSynthesize_UnusualSalinityNoAnomalies(t *testing.T) {
	rows := []database.FloatRecord{
		sample("a", 0, 80, withSalinity(35.0)),
		sample("b", 0, -30, withSalinity(35.1)),
	}

	got := Synthesize("unusual salinity?", rows)
	if !strings.Contains(got, "No strong regional anomalies") {
		t.Errorf("Expected no-anomaly message, got %q", got)
	}
}

func TestSynthesize_SalinityVariabilityRanking(t *testing.T) {
	var rows []database.FloatRecord
	// Arabian Sea: high spread
	for _, v := range []float64{34.0, 36.0, 38.0} {
		rows = append(rows, sample("as", 15, 60, withSalinity(v)))
	}
	// Bay of Bengal: tight spread
	for _, v := range []float64{33.0, 33.1, 33.2} {
		rows = append(rows, sample("bb", 15, 90, withSalinity(v)))
	}
	// Equatorial: only two samples, below the minimum
	for _, v := range []float64{30.0, 40.0} {
		rows = append(rows, sample("eq", 0, 70, withSalinity(v)))
	}

	got := Synthesize("salinity variability in the indian ocean", rows)

	if !strings.HasPrefix(got, "Highest salinity variability by Indian Ocean subregion:") {
		t.Fatalf("Expected variability ranking, got %q", got)
	}
	asIdx := strings.Index(got, "Arabian Sea (NW)")
	bbIdx := strings.Index(got, "Bay of Bengal (NE)")
	if asIdx == -1 || bbIdx == -1 {
		t.Fatalf("Expected both qualifying subregions, got %q", got)
	}
	if asIdx > bbIdx {
		t.Errorf("Expected Arabian Sea ranked above Bay of Bengal, got %q", got)
	}
	if strings.Contains(got, "Equatorial Indian") {
		t.Errorf("Expected under-sampled subregion excluded, got %q", got)
	}
}

func TestSynthesize_IndianOceanTemperature(t *testing.T) {
	rows := []database.FloatRecord{
		sample("a", 10, 70, withTemperature(27.0)),
		sample("b", -5, 90, withTemperature(29.0)),
	}

	got := Synthesize("temperature in the indian ocean", rows)
	if !strings.Contains(got, "Mean temperature 28.00°C") {
		t.Errorf("Expected mean temperature, got %q", got)
	}
	if !strings.Contains(got, "range 27.00–29.00°C across 2 samples") {
		t.Errorf("Expected range, got %q", got)
	}
}

func TestSynthesize_OxygenAnomalies(t *testing.T) {
	var rows []database.FloatRecord
	for i := 0; i < 7; i++ {
		rows = append(rows, sample("normal", 5, 60, withOxygen(8.0)))
	}
	rows = append(rows, sample("hypoxic", 12, 65, withOxygen(2.0)))

	got := Synthesize("oxygen anomalies near the arabian sea", rows)

	if !strings.Contains(got, "Detected 1 low-oxygen samples") {
		t.Fatalf("Expected one anomaly, got %q", got)
	}
	if !strings.Contains(got, "float hypoxic: O₂=2.00 mg/L") {
		t.Errorf("Expected anomalous float named, got %q", got)
	}
}

func TestSynthesize_OxygenUniformValuesReportMinimum(t *testing.T) {
	rows := []database.FloatRecord{
		sample("a", 0, 60, withOxygen(6.0)),
		sample("b", 1, 61, withOxygen(6.0)),
	}

	// Sigma is zero so the threshold falls back to the minimum, which every
	// row meets.
	got := Synthesize("dissolved oxygen levels", rows)
	if !strings.Contains(got, "Detected 2 low-oxygen samples") {
		t.Errorf("Expected both rows at threshold, got %q", got)
	}
}

func TestSynthesize_GenericFallback(t *testing.T) {
	rows := []database.FloatRecord{
		sample("a", 5, 60, withSalinity(35.0)),
		sample("b", 10, 70, withSalinity(36.0)),
	}

	got := Synthesize("show me salinity", rows)
	if !strings.HasPrefix(got, "Analyzed 2 samples.") {
		t.Fatalf("Expected generic summary, got %q", got)
	}
	if !strings.Contains(got, "Salinity mean 35.50 PSU (min 35.00, max 36.00).") {
		t.Errorf("Expected salinity stats, got %q", got)
	}
	if !strings.Contains(got, "Coverage: lat 5.00–10.00, lon 60.00–70.00.") {
		t.Errorf("Expected coverage box, got %q", got)
	}
}

func TestBasinName(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     string
	}{
		{0, 80, "Indian Ocean"},
		{0, -30, "Atlantic Ocean"},
		{0, 150, "Pacific Ocean"},
		{0, -150, "Pacific Ocean"},
		{75, 0, "Global"},
	}
	for _, tt := range tests {
		if got := basinName(tt.lat, tt.lon); got != tt.want {
			t.Errorf("basinName(%v, %v) = %q, want %q", tt.lat, tt.lon, got, tt.want)
		}
	}
}

func TestSubregionName(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     string
	}{
		{15, 60, "Arabian Sea (NW)"},
		{15, 90, "Bay of Bengal (NE)"},
		{0, 70, "Equatorial Indian (EQ)"},
		{-20, 80, "Southern Indian (SW/SE)"},
		{28, 75, "Other Indian"},
	}
	for _, tt := range tests {
		if got := subregionName(tt.lat, tt.lon); got != tt.want {
			t.Errorf("subregionName(%v, %v) = %q, want %q", tt.lat, tt.lon, got, tt.want)
		}
	}
}
