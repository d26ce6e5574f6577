package query

import (
	"regexp"
	"strconv"
	"strings"
)

// IntentKind selects the handling strategy for a question.
type IntentKind int

const (
	// IntentAggregate runs the extract -> execute -> synthesize chain.
	IntentAggregate IntentKind = iota
	// IntentNearest answers "nearest floats to <coordinates>" directly.
	IntentNearest
	// IntentRadius answers "within <N> km of <place>" directly.
	IntentRadius
)

// Intent is the classified handling strategy, with the radius parameters
// filled in for IntentRadius.
type Intent struct {
	Kind     IntentKind
	RadiusKm float64
	Place    string
}

var withinPattern = regexp.MustCompile(`(?i)within\s+(\d{1,4})\s*km\s+of\s+(.+)$`)

// Classify inspects the question text and picks a strategy. Priority order:
// geo-proximity intents are narrow and unambiguous, so they pre-empt the
// broader aggregate path.
func Classify(text string) Intent {
	if strings.Contains(strings.ToLower(text), "nearest") {
		return Intent{Kind: IntentNearest}
	}

	if m := withinPattern.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		radius, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			place := strings.TrimSpace(m[2])
			place = strings.TrimRight(place, "?")
			place = strings.ToLower(strings.TrimSpace(place))
			return Intent{Kind: IntentRadius, RadiusKm: radius, Place: place}
		}
	}

	return Intent{Kind: IntentAggregate}
}
