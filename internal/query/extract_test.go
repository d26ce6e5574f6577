package query

import (
	"strings"
	"testing"
	"time"
)

func TestExtract_DefaultsToSalinity(t *testing.T) {
	cs := Extract("show me some data")
	if cs.Parameter != ParamSalinity {
		t.Errorf("Expected salinity default, got %s", cs.Parameter)
	}
	if cs.Limit != MaxRows {
		t.Errorf("Expected limit %d, got %d", MaxRows, cs.Limit)
	}
	if cs.Region != nil || cs.Absolute != nil || len(cs.Windows) != 0 {
		t.Errorf("Expected empty constraints, got %+v", cs)
	}
}

func TestExtract_ParameterPriority(t *testing.T) {
	tests := []struct {
		text string
		want Parameter
	}{
		{"oxygen levels near the equator", ParamOxygen},
		{"dissolved oxygen and temperature", ParamOxygen},
		{"salinity and temperature profiles", ParamSalinity},
		{"temperature in the indian ocean", ParamTemperature},
		{"pressure at depth", ParamPressure},
	}

	for _, tt := range tests {
		if got := Extract(tt.text).Parameter; got != tt.want {
			t.Errorf("Extract(%q).Parameter = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestExtract_EquatorBand(t *testing.T) {
	cs := Extract("oxygen levels near the equator in the last 30 days")

	if cs.Parameter != ParamOxygen {
		t.Fatalf("Expected oxygen, got %s", cs.Parameter)
	}
	if cs.Region == nil {
		t.Fatal("Expected a region box")
	}
	if cs.Region.LatMin != -5 || cs.Region.LatMax != 5 {
		t.Errorf("Expected equator band [-5,5], got [%v,%v]", cs.Region.LatMin, cs.Region.LatMax)
	}
	if cs.WindowDays() != 30 {
		t.Errorf("Expected 30-day window, got %d", cs.WindowDays())
	}
}

func TestExtract_IndianOceanBox(t *testing.T) {
	cs := Extract("temperature in the Indian Ocean")
	if cs.Region == nil {
		t.Fatal("Expected a region box")
	}
	if cs.Region.LonMin != 20 || cs.Region.LonMax != 120 {
		t.Errorf("Expected lon [20,120], got [%v,%v]", cs.Region.LonMin, cs.Region.LonMax)
	}
	if cs.Region.LatMin != -30 || cs.Region.LatMax != 30 {
		t.Errorf("Expected lat [-30,30], got [%v,%v]", cs.Region.LatMin, cs.Region.LatMax)
	}
}

func TestExtract_RegionsIntersect(t *testing.T) {
	cs := Extract("salinity near the equator in the indian ocean")
	if cs.Region == nil {
		t.Fatal("Expected a region box")
	}
	// Intersection of the equator band and the Indian Ocean box
	if cs.Region.LatMin != -5 || cs.Region.LatMax != 5 {
		t.Errorf("Expected lat [-5,5], got [%v,%v]", cs.Region.LatMin, cs.Region.LatMax)
	}
	if cs.Region.LonMin != 20 || cs.Region.LonMax != 120 {
		t.Errorf("Expected lon [20,120], got [%v,%v]", cs.Region.LonMin, cs.Region.LonMax)
	}
}

func TestExtract_AbsoluteRangeClearsWindows(t *testing.T) {
	cs := Extract("salinity in march 2023 over the last 30 days")
	if cs.Absolute == nil {
		t.Fatal("Expected an absolute range")
	}
	if len(cs.Windows) != 0 {
		t.Errorf("Expected relative markers cleared, got %v", cs.Windows)
	}

	wantStart := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !cs.Absolute.Start.Equal(wantStart) || !cs.Absolute.End.Equal(wantEnd) {
		t.Errorf("Expected [%v,%v), got [%v,%v)", wantStart, wantEnd, cs.Absolute.Start, cs.Absolute.End)
	}
}

func TestWindowDays_SmallestWins(t *testing.T) {
	cs := Extract("salinity this week and over the last 6 months")
	if got := cs.WindowDays(); got != 7 {
		t.Errorf("Expected smallest window 7, got %d", got)
	}
}

func TestConstraintSet_SQL(t *testing.T) {
	cs := Extract("oxygen near the equator last 30 days")
	sql := cs.SQL()

	for _, want := range []string{
		"oxygen IS NOT NULL",
		"latitude BETWEEN -5 AND 5",
		"INTERVAL '30 days'",
		"ORDER BY timestamp DESC",
		"LIMIT 200",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("Expected SQL to contain %q, got %q", want, sql)
		}
	}
}
