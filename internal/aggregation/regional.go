package aggregation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/floatchat/floatchat/internal/database"
)

// regionFilter pairs a region label with the SQL predicate selecting its
// float records. The boxes mirror the basin partitions used by the answer
// synthesizer; the Pacific spans the antimeridian, hence the OR.
type regionFilter struct {
	Name      string
	Predicate string
}

var regionFilters = []regionFilter{
	{Name: "global", Predicate: "TRUE"},
	{Name: "indian_ocean", Predicate: "longitude BETWEEN 20 AND 120 AND latitude BETWEEN -30 AND 30"},
	{Name: "atlantic_ocean", Predicate: "longitude BETWEEN -60 AND 20 AND latitude BETWEEN -60 AND 60"},
	{Name: "pacific_ocean", Predicate: "(longitude >= 120 OR longitude <= -60) AND latitude BETWEEN -60 AND 60"},
}

// RegionalAggregator computes daily per-basin parameter averages for the
// statistics endpoint.
type RegionalAggregator struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRegionalAggregator creates a new regional aggregator
func NewRegionalAggregator(db *database.DB, logger zerolog.Logger) *RegionalAggregator {
	return &RegionalAggregator{db: db, log: logger}
}

// Aggregate upserts one summary row per region for the given day.
func (a *RegionalAggregator) Aggregate(ctx context.Context, day time.Time) error {
	dayStart := day.Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	for _, region := range regionFilters {
		query := fmt.Sprintf(`
			INSERT INTO regional_summaries (region, day, avg_temperature, avg_salinity, avg_oxygen, sample_count)
			SELECT $1, $2::date, AVG(temperature), AVG(salinity), AVG(oxygen), COUNT(*)
			FROM float_records
			WHERE timestamp >= $2 AND timestamp < $3 AND %s
			HAVING COUNT(*) > 0
			ON CONFLICT (region, day) DO UPDATE
			SET avg_temperature = EXCLUDED.avg_temperature,
			    avg_salinity = EXCLUDED.avg_salinity,
			    avg_oxygen = EXCLUDED.avg_oxygen,
			    sample_count = EXCLUDED.sample_count
		`, region.Predicate)

		result, err := a.db.ExecContext(ctx, query, region.Name, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("failed to aggregate region %s: %w", region.Name, err)
		}

		rowsAffected, _ := result.RowsAffected()
		a.log.Info().Str("region", region.Name).Time("day", dayStart).Int64("rows", rowsAffected).
			Msg("regional aggregation completed")
	}

	return nil
}

// AggregatePreviousDay aggregates the previous full day
func (a *RegionalAggregator) AggregatePreviousDay(ctx context.Context) error {
	yesterday := time.Now().AddDate(0, 0, -1)
	return a.Aggregate(ctx, yesterday)
}

// NextRunTime calculates the next daily run for a "HH:MM" time of day.
func (a *RegionalAggregator) NextRunTime(timeOfDay string) (time.Time, error) {
	now := time.Now()

	var hour, minute int
	if _, err := fmt.Sscanf(timeOfDay, "%d:%d", &hour, &minute); err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %s (expected HH:MM)", timeOfDay)
	}

	todayRun := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.After(todayRun) {
		return todayRun.AddDate(0, 0, 1), nil
	}
	return todayRun, nil
}
