package cache

import "testing"

func TestAnswerKey_Normalizes(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{"case", "Show Me Salinity", "show me salinity"},
		{"whitespace", "  show   me\tsalinity ", "show me salinity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if AnswerKey(tt.a) != AnswerKey(tt.b) {
				t.Errorf("Expected equal keys for %q and %q", tt.a, tt.b)
			}
		})
	}
}

func TestAnswerKey_DistinctQuestions(t *testing.T) {
	if AnswerKey("salinity near the equator") == AnswerKey("oxygen near the equator") {
		t.Error("Expected different keys for different questions")
	}
}
