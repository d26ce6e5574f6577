package database

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func ptr(v float64) *float64 { return &v }

func TestBuildObservationQuery_Minimal(t *testing.T) {
	query, args, err := buildObservationQuery(ObservationFilter{Parameter: "salinity", Limit: 200})
	if err != nil {
		t.Fatalf("buildObservationQuery failed: %v", err)
	}

	if !strings.Contains(query, "salinity IS NOT NULL") {
		t.Errorf("Expected non-null predicate, got %q", query)
	}
	if !strings.Contains(query, "ORDER BY timestamp DESC LIMIT $1") {
		t.Errorf("Expected ordered limit, got %q", query)
	}
	if len(args) != 1 || args[0] != 200 {
		t.Errorf("Expected args [200], got %v", args)
	}
}

func TestBuildObservationQuery_BoxAndWindow(t *testing.T) {
	f := ObservationFilter{
		Parameter:  "oxygen",
		LatMin:     ptr(-5),
		LatMax:     ptr(5),
		LonMin:     ptr(20),
		LonMax:     ptr(120),
		WindowDays: 30,
		Limit:      200,
	}

	query, args, err := buildObservationQuery(f)
	if err != nil {
		t.Fatalf("buildObservationQuery failed: %v", err)
	}

	for _, want := range []string{
		"oxygen IS NOT NULL",
		"latitude BETWEEN $1 AND $2",
		"longitude BETWEEN $3 AND $4",
		"timestamp >= NOW() - ($5 * INTERVAL '1 day')",
		"LIMIT $6",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("Expected query to contain %q, got %q", want, query)
		}
	}
	if len(args) != 6 {
		t.Fatalf("Expected 6 args, got %v", args)
	}
	if args[4] != 30 {
		t.Errorf("Expected window arg 30, got %v", args[4])
	}
}

func TestBuildObservationQuery_AbsoluteRange(t *testing.T) {
	start := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)

	query, args, err := buildObservationQuery(ObservationFilter{
		Parameter: "temperature", Start: &start, End: &end, Limit: 200,
	})
	if err != nil {
		t.Fatalf("buildObservationQuery failed: %v", err)
	}
	if !strings.Contains(query, "timestamp >= $1") || !strings.Contains(query, "timestamp < $2") {
		t.Errorf("Expected half-open range predicates, got %q", query)
	}
	if len(args) != 3 {
		t.Errorf("Expected 3 args, got %v", args)
	}
}

func TestBuildObservationQuery_Rejections(t *testing.T) {
	start := time.Now()

	tests := []struct {
		name   string
		filter ObservationFilter
	}{
		{"unknown parameter", ObservationFilter{Parameter: "ph", Limit: 200}},
		{"absolute plus window", ObservationFilter{Parameter: "salinity", Start: &start, WindowDays: 30, Limit: 200}},
		{"zero limit", ObservationFilter{Parameter: "salinity"}},
		{"negative limit", ObservationFilter{Parameter: "salinity", Limit: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := buildObservationQuery(tt.filter)
			if !errors.Is(err, ErrInvalidFilter) {
				t.Errorf("Expected ErrInvalidFilter, got %v", err)
			}
		})
	}
}
