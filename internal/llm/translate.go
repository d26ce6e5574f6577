package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/floatchat/floatchat/internal/query"
)

const translateSystemPrompt = `You translate user questions about ocean float data into a single JSON object describing query constraints. Fields:
- "parameter": one of "temperature", "salinity", "oxygen", "pressure"
- "lat_min", "lat_max", "lon_min", "lon_max": optional bounding box in decimal degrees (set all four or none)
- "start", "end": optional absolute time range, RFC 3339 dates, end exclusive
- "window_days": optional integer, a recency window in days (never combine with start/end)
Known regions: Indian Ocean = lon 20..120, lat -30..30. Equator = lat -5..5.
Return ONLY the JSON object, no explanation.`

// constraintWire is the JSON shape the model is asked to produce.
type constraintWire struct {
	Parameter  string   `json:"parameter"`
	LatMin     *float64 `json:"lat_min"`
	LatMax     *float64 `json:"lat_max"`
	LonMin     *float64 `json:"lon_min"`
	LonMax     *float64 `json:"lon_max"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	WindowDays int      `json:"window_days"`
}

// Translator converts questions into constraint sets through a chat model.
// Every guardrail failure is returned as an error so the caller can fall back
// to the rule-based extractor; the output shape never changes silently.
type Translator struct {
	client Client
	log    zerolog.Logger
}

func NewTranslator(client Client, logger zerolog.Logger) *Translator {
	return &Translator{client: client, log: logger}
}

// Translate asks the model for constraint JSON and validates it into a
// ConstraintSet.
func (t *Translator) Translate(ctx context.Context, question string) (query.ConstraintSet, error) {
	var cs query.ConstraintSet

	raw, err := t.client.Chat(ctx, translateSystemPrompt, question)
	if err != nil {
		return cs, fmt.Errorf("translation request failed: %w", err)
	}

	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.Trim(cleaned, "` \n")

	var wire constraintWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return cs, fmt.Errorf("model did not return constraint JSON: %w", err)
	}

	cs.Parameter = query.Parameter(wire.Parameter)
	if !cs.Parameter.Known() {
		return cs, fmt.Errorf("model returned unknown parameter %q", wire.Parameter)
	}

	boxBounds := 0
	for _, v := range []*float64{wire.LatMin, wire.LatMax, wire.LonMin, wire.LonMax} {
		if v != nil {
			boxBounds++
		}
	}
	switch boxBounds {
	case 0:
	case 4:
		cs.Region = &query.Box{
			LatMin: *wire.LatMin, LatMax: *wire.LatMax,
			LonMin: *wire.LonMin, LonMax: *wire.LonMax,
		}
	default:
		return cs, fmt.Errorf("model returned a partial bounding box (%d of 4 bounds)", boxBounds)
	}

	if wire.Start != "" && wire.End != "" {
		start, err1 := parseDate(wire.Start)
		end, err2 := parseDate(wire.End)
		if err1 != nil || err2 != nil || !end.After(start) {
			return cs, fmt.Errorf("model returned invalid time range %q..%q", wire.Start, wire.End)
		}
		cs.Absolute = &query.TimeRange{Start: start, End: end}
	}

	if wire.WindowDays > 0 {
		if cs.Absolute != nil {
			return cs, fmt.Errorf("model combined absolute range with relative window")
		}
		cs.Windows = []int{wire.WindowDays}
	}

	// Hard row cap regardless of what the model says
	cs.Limit = query.MaxRows

	t.log.Debug().Str("question", question).Str("sql", cs.SQL()).Msg("llm translation accepted")
	return cs, nil
}

func parseDate(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", s)
}
