package database

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidFilter is returned for an internally inconsistent observation
// filter. Such a filter is rejected rather than executed.
var ErrInvalidFilter = errors.New("invalid observation filter")

// parameterColumns whitelists the filterable measurement columns. Filters are
// validated against this table before any SQL is built.
var parameterColumns = map[string]string{
	"temperature": "temperature",
	"salinity":    "salinity",
	"oxygen":      "oxygen",
	"pressure":    "pressure",
}

// ObservationFilter selects float records for the query executor. All set
// predicates apply as a conjunction.
type ObservationFilter struct {
	Parameter string // required; rows where this column is NULL are excluded

	// Optional inclusive bounding box. Either all four bounds are set or none.
	LatMin, LatMax *float64
	LonMin, LonMax *float64

	// Absolute window [Start, End). Mutually exclusive with WindowDays.
	Start *time.Time
	End   *time.Time

	// Relative recency window in days. 0 means no relative filter.
	WindowDays int

	Limit int
}

func buildObservationQuery(f ObservationFilter) (string, []any, error) {
	column, ok := parameterColumns[f.Parameter]
	if !ok {
		return "", nil, fmt.Errorf("%w: unknown parameter %q", ErrInvalidFilter, f.Parameter)
	}
	if (f.Start != nil || f.End != nil) && f.WindowDays > 0 {
		return "", nil, fmt.Errorf("%w: absolute range and relative window are mutually exclusive", ErrInvalidFilter)
	}
	if f.Limit <= 0 {
		return "", nil, fmt.Errorf("%w: limit must be positive", ErrInvalidFilter)
	}

	conds := []string{fmt.Sprintf("%s IS NOT NULL", column)}
	args := []any{}
	n := 1

	if f.LatMin != nil && f.LatMax != nil {
		conds = append(conds, fmt.Sprintf("latitude BETWEEN $%d AND $%d", n, n+1))
		args = append(args, *f.LatMin, *f.LatMax)
		n += 2
	}
	if f.LonMin != nil && f.LonMax != nil {
		conds = append(conds, fmt.Sprintf("longitude BETWEEN $%d AND $%d", n, n+1))
		args = append(args, *f.LonMin, *f.LonMax)
		n += 2
	}
	if f.Start != nil {
		conds = append(conds, fmt.Sprintf("timestamp >= $%d", n))
		args = append(args, *f.Start)
		n++
	}
	if f.End != nil {
		conds = append(conds, fmt.Sprintf("timestamp < $%d", n))
		args = append(args, *f.End)
		n++
	}
	if f.WindowDays > 0 {
		conds = append(conds, fmt.Sprintf("timestamp >= NOW() - ($%d * INTERVAL '1 day')", n))
		args = append(args, f.WindowDays)
		n++
	}

	query := fmt.Sprintf(`SELECT %s FROM float_records WHERE %s ORDER BY timestamp DESC LIMIT $%d`,
		floatColumns, strings.Join(conds, " AND "), n)
	args = append(args, f.Limit)

	return query, args, nil
}
