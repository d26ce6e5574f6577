package answer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/floatchat/floatchat/internal/database"
	"github.com/floatchat/floatchat/internal/geo"
	"github.com/floatchat/floatchat/internal/llm"
	"github.com/floatchat/floatchat/internal/query"
)

// Envelope is the caller-facing result of one question. It is always well
// formed: internal failures degrade the envelope instead of propagating.
type Envelope struct {
	Response       string  `json:"response"`
	SQLQuery       *string `json:"sql_query"`
	DataPoints     int     `json:"data_points"`
	ContextSources int     `json:"context_sources"`
	Confidence     float64 `json:"confidence"`
	UsedLLM        bool    `json:"used_llm"`
}

// Heuristic confidence per handling path. Scores, not probabilities.
const (
	confNearestParsed    = 0.9
	confNearestNoCoords  = 0.6
	confStoreEmpty       = 0.7
	confPlaceUnresolved  = 0.5
	confRadiusNoMatches  = 0.8
	confRadiusMatches    = 0.9
	confAggregateRows    = 0.85
	confAggregateNoRows  = 0.0
	confDegraded         = 0.0
	nearestNeighborCap   = 5
	radiusListedFloatCap = 10
)

// Store is everything the pipeline needs from the float store.
type Store interface {
	query.Store
	AllFloats(ctx context.Context) ([]database.FloatRecord, error)
	ActiveFloats(ctx context.Context) ([]database.FloatRecord, error)
}

// Pipeline answers natural-language questions about the float store. It holds
// no mutable state between calls and is safe for concurrent use.
type Pipeline struct {
	store      Store
	exec       *query.Executor
	translator *llm.Translator // nil when no LLM backend is configured
	log        zerolog.Logger
}

// New builds a pipeline. translator may be nil; the rule-based extractor is
// the default path either way.
func New(store Store, translator *llm.Translator, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		store:      store,
		exec:       query.NewExecutor(store, logger),
		translator: translator,
		log:        logger,
	}
}

// Answer classifies the question and dispatches to the matching handler.
// It never fails: any internal error is converted into a degraded envelope.
func (p *Pipeline) Answer(ctx context.Context, text, requesterID string) *Envelope {
	p.log.Info().Str("requester", requesterID).Str("query", truncate(text, 120)).Msg("processing query")

	intent := query.Classify(text)
	switch intent.Kind {
	case query.IntentNearest:
		return p.answerNearest(ctx, text)
	case query.IntentRadius:
		return p.answerRadius(ctx, intent)
	default:
		return p.answerAggregate(ctx, text)
	}
}

func (p *Pipeline) degraded(err error) *Envelope {
	p.log.Error().Err(err).Msg("query processing failed")
	return &Envelope{
		Response:   fmt.Sprintf("I apologize, but I encountered an error processing your query: %v", err),
		Confidence: confDegraded,
	}
}

// constraints resolves the question into a constraint set, via the LLM
// translator when one is configured and the rule-based extractor otherwise
// (or whenever translation fails a guardrail).
func (p *Pipeline) constraints(ctx context.Context, text string) (query.ConstraintSet, bool) {
	if p.translator != nil {
		cs, err := p.translator.Translate(ctx, text)
		if err == nil {
			return cs, true
		}
		p.log.Warn().Err(err).Msg("llm translation rejected, falling back to rules")
	}
	return query.Extract(text), false
}

func (p *Pipeline) answerAggregate(ctx context.Context, text string) *Envelope {
	cs, usedLLM := p.constraints(ctx, text)
	sqlText := cs.SQL()

	rows, err := p.exec.Execute(ctx, cs)
	if err != nil {
		return p.degraded(err)
	}

	if len(rows) == 0 {
		return &Envelope{
			Response:   NoMatchMessage,
			SQLQuery:   &sqlText,
			Confidence: confAggregateNoRows,
			UsedLLM:    usedLLM,
		}
	}

	return &Envelope{
		Response:   Synthesize(text, rows),
		SQLQuery:   &sqlText,
		DataPoints: len(rows),
		Confidence: confAggregateRows,
		UsedLLM:    usedLLM,
	}
}

func (p *Pipeline) answerNearest(ctx context.Context, text string) *Envelope {
	origin, err := geo.ParseCoordinate(text)
	if err != nil {
		return &Envelope{
			Response: `Please provide coordinates. For example: "nearest ARGO floats to lat: 12.97, lon: 77.59". ` +
				`If you said "this location", enable browser location so I can use it.`,
			Confidence: confNearestNoCoords,
		}
	}

	floats, err := p.store.AllFloats(ctx)
	if err != nil {
		return p.degraded(err)
	}
	if len(floats) == 0 {
		return &Envelope{
			Response:   "I could not find floats in the local database yet. Try triggering data ingestion or try again shortly.",
			Confidence: confStoreEmpty,
		}
	}

	type withDistance struct {
		distance float64
		rec      database.FloatRecord
	}
	ranked := make([]withDistance, 0, len(floats))
	for _, f := range floats {
		d := geo.DistanceKm(origin.Lat, origin.Lon, f.Latitude, f.Longitude)
		ranked = append(ranked, withDistance{distance: d, rec: f})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].distance < ranked[j].distance })

	if len(ranked) > nearestNeighborCap {
		ranked = ranked[:nearestNeighborCap]
	}

	var lines []string
	for _, r := range ranked {
		lines = append(lines, fmt.Sprintf("- Float %s: %.1f km away at (%.2f, %.2f), salinity=%s, temp=%s",
			r.rec.FloatID, r.distance, r.rec.Latitude, r.rec.Longitude,
			formatValue(r.rec.Salinity), formatValue(r.rec.Temperature)))
	}

	return &Envelope{
		Response:   fmt.Sprintf("Nearest ARGO floats to (%.2f, %.2f):\n", origin.Lat, origin.Lon) + strings.Join(lines, "\n"),
		DataPoints: len(ranked),
		Confidence: confNearestParsed,
	}
}

func (p *Pipeline) answerRadius(ctx context.Context, intent query.Intent) *Envelope {
	origin, err := geo.ResolvePlace(intent.Place)
	if err != nil {
		return &Envelope{
			Response: fmt.Sprintf("I couldn't resolve the location '%s'. Please provide coordinates like 'lat: 7.0, lon: 81.0'.",
				intent.Place),
			Confidence: confPlaceUnresolved,
		}
	}

	floats, err := p.store.ActiveFloats(ctx)
	if err != nil {
		return p.degraded(err)
	}
	if len(floats) == 0 {
		return &Envelope{
			Response:   "No floats available in the local database yet. Try triggering data ingestion.",
			Confidence: confStoreEmpty,
		}
	}

	type withDistance struct {
		distance float64
		rec      database.FloatRecord
	}
	var nearby []withDistance
	for _, f := range floats {
		d := geo.DistanceKm(origin.Lat, origin.Lon, f.Latitude, f.Longitude)
		if d <= intent.RadiusKm {
			nearby = append(nearby, withDistance{distance: d, rec: f})
		}
	}

	placeLabel := titleCase(intent.Place)
	if len(nearby) == 0 {
		return &Envelope{
			Response:   fmt.Sprintf("No active floats found within %d km of %s.", int(intent.RadiusKm), placeLabel),
			Confidence: confRadiusNoMatches,
		}
	}

	sort.SliceStable(nearby, func(i, j int) bool { return nearby[i].distance < nearby[j].distance })

	listed := nearby
	if len(listed) > radiusListedFloatCap {
		listed = listed[:radiusListedFloatCap]
	}
	var lines []string
	for _, r := range listed {
		lines = append(lines, fmt.Sprintf("- %s: %.1f km; temp=%s, salinity=%s at (%.2f,%.2f)",
			r.rec.FloatID, r.distance, formatValue(r.rec.Temperature), formatValue(r.rec.Salinity),
			r.rec.Latitude, r.rec.Longitude))
	}

	return &Envelope{
		Response: fmt.Sprintf("Found %d active floats within %d km of %s.\n",
			len(nearby), int(intent.RadiusKm), placeLabel) + strings.Join(lines, "\n"),
		DataPoints: len(nearby),
		Confidence: confRadiusMatches,
	}
}

func formatValue(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
