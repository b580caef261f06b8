package analysis

import (
	"strings"
	"testing"
)

func TestParseCompletionDecoding(t *testing.T) {
	fenced := "Here is my analysis.\n\n```json\n{\"suggestions\": [{\"title\": \"Best Coffee Grinder 2024\", \"description\": \"Lab tested picks.\", \"rationale\": \"Adds the year.\"}], \"confidence\": 0.8}\n```\n\nLet me know if you need more."
	bare := `{"suggestions": [{"title": "Best Coffee Grinder 2024", "description": "Lab tested picks.", "rationale": "Adds the year."}], "confidence": 0.8}`

	tests := []struct {
		name string
		raw  string
	}{
		{name: "fenced JSON with surrounding prose", raw: fenced},
		{name: "bare JSON body", raw: bare},
		{name: "bare JSON with whitespace", raw: "\n\n  " + bare + "  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseCompletion(tt.raw, 65, 160)
			if err != nil {
				t.Fatalf("Expected successful parse, got error: %v", err)
			}
			if result.SuggestedTitle != "Best Coffee Grinder 2024" {
				t.Errorf("Expected parsed title, got %q", result.SuggestedTitle)
			}
			if result.SuggestedDescription != "Lab tested picks." {
				t.Errorf("Expected parsed description, got %q", result.SuggestedDescription)
			}
			if result.Confidence != 0.8 {
				t.Errorf("Expected confidence 0.8, got %f", result.Confidence)
			}
		})
	}
}

func TestParseCompletionRejectsGarbage(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{name: "plain prose", raw: "I think the title should mention the year.", wantErr: "not valid JSON"},
		{name: "empty reply", raw: "", wantErr: "not valid JSON"},
		{name: "broken fence", raw: "```json\n{\"suggestions\": [}\n```", wantErr: "not valid JSON"},
		{name: "empty suggestions", raw: `{"suggestions": [], "confidence": 0.9}`, wantErr: "no usable suggestions"},
		{name: "only empty titles", raw: `{"suggestions": [{"title": "", "description": "d", "rationale": "r"}, {"title": "   ", "description": "d", "rationale": "r"}]}`, wantErr: "no usable suggestions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseCompletion(tt.raw, 65, 160)
			if err == nil {
				t.Fatalf("Expected error, got result %+v", result)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestParseCompletionConfidence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{name: "absent falls back", raw: `{"suggestions": [{"title": "T", "rationale": "r"}]}`, want: 0.5},
		{name: "negative falls back", raw: `{"suggestions": [{"title": "T", "rationale": "r"}], "confidence": -0.2}`, want: 0.5},
		{name: "above one falls back", raw: `{"suggestions": [{"title": "T", "rationale": "r"}], "confidence": 1.5}`, want: 0.5},
		{name: "zero kept", raw: `{"suggestions": [{"title": "T", "rationale": "r"}], "confidence": 0}`, want: 0},
		{name: "one kept", raw: `{"suggestions": [{"title": "T", "rationale": "r"}], "confidence": 1}`, want: 1},
		{name: "in range kept", raw: `{"suggestions": [{"title": "T", "rationale": "r"}], "confidence": 0.85}`, want: 0.85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseCompletion(tt.raw, 65, 160)
			if err != nil {
				t.Fatalf("Expected successful parse, got error: %v", err)
			}
			if result.Confidence != tt.want {
				t.Errorf("Expected confidence %f, got %f", tt.want, result.Confidence)
			}
		})
	}
}

func TestParseCompletionNormalizes(t *testing.T) {
	raw := `{"suggestions": [
		{"title": "  Best\n\tCoffee   Grinder  ", "description": "Line one.\nLine two.", "rationale": ""},
		{"title": "", "description": "skipped", "rationale": "skipped"},
		{"title": "Second Pick", "description": "Alt description.", "rationale": "Alt rationale."}
	], "confidence": 0.7}`

	result, err := parseCompletion(raw, 65, 160)
	if err != nil {
		t.Fatalf("Expected successful parse, got error: %v", err)
	}

	if result.SuggestedTitle != "Best Coffee Grinder" {
		t.Errorf("Expected whitespace-normalized title, got %q", result.SuggestedTitle)
	}
	if result.SuggestedDescription != "Line one. Line two." {
		t.Errorf("Expected whitespace-normalized description, got %q", result.SuggestedDescription)
	}
	if result.Rationale != "No rationale provided by the model." {
		t.Errorf("Expected rationale fallback, got %q", result.Rationale)
	}

	// The empty-title suggestion is dropped, not carried as an alternative.
	if len(result.Alternatives) != 1 {
		t.Fatalf("Expected 1 alternative, got %d", len(result.Alternatives))
	}
	if result.Alternatives[0].Title != "Second Pick" {
		t.Errorf("Expected second suggestion as alternative, got %q", result.Alternatives[0].Title)
	}
	if result.Alternatives[0].Rationale != "Alt rationale." {
		t.Errorf("Expected alternative rationale kept, got %q", result.Alternatives[0].Rationale)
	}
}

func TestParseCompletionTruncatesOverflow(t *testing.T) {
	longTitle := strings.Repeat("a", 80)
	longDescription := strings.Repeat("b", 200)
	raw := `{"suggestions": [{"title": "` + longTitle + `", "description": "` + longDescription + `", "rationale": "r"}]}`

	result, err := parseCompletion(raw, 65, 160)
	if err != nil {
		t.Fatalf("Expected successful parse, got error: %v", err)
	}

	if len([]rune(result.SuggestedTitle)) != 65 {
		t.Errorf("Expected title truncated to 65 runes, got %d", len([]rune(result.SuggestedTitle)))
	}
	if len([]rune(result.SuggestedDescription)) != 160 {
		t.Errorf("Expected description truncated to 160 runes, got %d", len([]rune(result.SuggestedDescription)))
	}
}
