package query

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/floatchat/floatchat/internal/database"
)

// Store is the read-only slice of the float store the executor needs.
type Store interface {
	QueryObservations(ctx context.Context, f database.ObservationFilter) ([]database.FloatRecord, error)
}

// wideningSteps is the escalation sequence applied when a recency-window
// query matches nothing. 0 removes the time filter entirely. Sparse sensor
// coverage means strict recent-window queries frequently return nothing; a
// best-effort stale answer beats a hard failure.
var wideningSteps = []int{30, 90, 180, 0}

// Executor runs constraint sets against the store, widening relative time
// windows on empty results.
type Executor struct {
	store Store
	log   zerolog.Logger
}

func NewExecutor(store Store, logger zerolog.Logger) *Executor {
	return &Executor{store: store, log: logger}
}

func (e *Executor) filter(cs ConstraintSet, windowDays int) database.ObservationFilter {
	f := database.ObservationFilter{
		Parameter:  string(cs.Parameter),
		WindowDays: windowDays,
		Limit:      cs.Limit,
	}
	if cs.Region != nil {
		f.LatMin, f.LatMax = &cs.Region.LatMin, &cs.Region.LatMax
		f.LonMin, f.LonMax = &cs.Region.LonMin, &cs.Region.LonMax
	}
	if cs.Absolute != nil {
		f.Start, f.End = &cs.Absolute.Start, &cs.Absolute.End
	}
	return f
}

// Execute applies the constraint set as a conjunction. When the result is
// empty and a relative recency marker was present, the window is re-run
// through the widening sequence until rows appear or the sequence is
// exhausted. Absolute ranges are never widened.
func (e *Executor) Execute(ctx context.Context, cs ConstraintSet) ([]database.FloatRecord, error) {
	if !cs.Parameter.Known() {
		return nil, fmt.Errorf("%w: unknown parameter %q", database.ErrInvalidFilter, cs.Parameter)
	}
	if cs.Absolute != nil && len(cs.Windows) > 0 {
		return nil, fmt.Errorf("%w: absolute range and relative window are mutually exclusive", database.ErrInvalidFilter)
	}

	window := cs.WindowDays()
	rows, err := e.store.QueryObservations(ctx, e.filter(cs, window))
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	if len(rows) > 0 || window == 0 {
		return rows, nil
	}

	for _, days := range wideningSteps {
		e.log.Debug().Int("requested_days", window).Int("widened_days", days).
			Msg("no rows in recency window, widening")

		rows, err = e.store.QueryObservations(ctx, e.filter(cs, days))
		if err != nil {
			return nil, fmt.Errorf("query execution failed: %w", err)
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}

	return nil, nil
}
