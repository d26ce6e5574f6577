package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/floatchat/floatchat/internal/query"
)

type stubClient struct {
	reply string
	err   error
}

func (s *stubClient) Chat(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return s.reply, s.err
}

func TestTranslate_ValidConstraint(t *testing.T) {
	tr := NewTranslator(&stubClient{
		reply: `{"parameter":"oxygen","lat_min":-5,"lat_max":5,"lon_min":20,"lon_max":120,"window_days":30}`,
	}, zerolog.Nop())

	cs, err := tr.Translate(context.Background(), "oxygen near the equator in the indian ocean, last month")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	if cs.Parameter != query.ParamOxygen {
		t.Errorf("Expected oxygen, got %s", cs.Parameter)
	}
	if cs.Region == nil || cs.Region.LatMin != -5 || cs.Region.LonMax != 120 {
		t.Errorf("Expected region box, got %+v", cs.Region)
	}
	if cs.WindowDays() != 30 {
		t.Errorf("Expected 30-day window, got %d", cs.WindowDays())
	}
	if cs.Limit != query.MaxRows {
		t.Errorf("Expected hard row cap %d, got %d", query.MaxRows, cs.Limit)
	}
}

func TestTranslate_StripsCodeFence(t *testing.T) {
	tr := NewTranslator(&stubClient{
		reply: "```json\n{\"parameter\":\"salinity\"}\n```",
	}, zerolog.Nop())

	cs, err := tr.Translate(context.Background(), "salinity please")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if cs.Parameter != query.ParamSalinity {
		t.Errorf("Expected salinity, got %s", cs.Parameter)
	}
}

func TestTranslate_AbsoluteRange(t *testing.T) {
	tr := NewTranslator(&stubClient{
		reply: `{"parameter":"salinity","start":"2023-03-01","end":"2023-04-01"}`,
	}, zerolog.Nop())

	cs, err := tr.Translate(context.Background(), "salinity in march 2023")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if cs.Absolute == nil {
		t.Fatal("Expected absolute range")
	}
	if !cs.Absolute.End.After(cs.Absolute.Start) {
		t.Errorf("Expected ordered range, got %+v", cs.Absolute)
	}
}

func TestTranslate_Guardrails(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"prose instead of JSON", "Sure! Here is your query: SELECT * FROM floats"},
		{"unknown parameter", `{"parameter":"chlorophyll"}`},
		{"inverted range", `{"parameter":"salinity","start":"2023-04-01","end":"2023-03-01"}`},
		{"absolute plus window", `{"parameter":"salinity","start":"2023-03-01","end":"2023-04-01","window_days":30}`},
		{"partial box", `{"parameter":"salinity","lat_min":-5,"lat_max":5}`},
		{"partial box single bound", `{"parameter":"salinity","lon_max":120}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTranslator(&stubClient{reply: tt.reply}, zerolog.Nop())
			if _, err := tr.Translate(context.Background(), "anything"); err == nil {
				t.Error("Expected guardrail rejection")
			}
		})
	}
}

func TestTranslate_ClientError(t *testing.T) {
	tr := NewTranslator(&stubClient{err: errors.New("timeout")}, zerolog.Nop())
	if _, err := tr.Translate(context.Background(), "anything"); err == nil {
		t.Error("Expected error from client")
	}
}
