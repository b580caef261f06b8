package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// jsonFencePattern lifts the first fenced JSON object out of a model reply.
var jsonFencePattern = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

type modelPayload struct {
	Suggestions []modelSuggestion `json:"suggestions"`
	Confidence  *float64          `json:"confidence"`
}

type modelSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Rationale   string `json:"rationale"`
}

// parseCompletion validates a raw model reply against the declared schema and
// normalizes it into a partial Result; FeaturesUsed is filled by the caller.
// Titles and descriptions are truncated, never rejected, when they overflow
// their caps. Confidence outside [0,1] (or absent) falls back to 0.5.
func parseCompletion(raw string, maxTitleLen, maxDescriptionLen int) (*Result, error) {
	payload, err := decodePayload(raw)
	if err != nil {
		return nil, err
	}

	suggestions := make([]TitleSuggestion, 0, len(payload.Suggestions))
	for _, s := range payload.Suggestions {
		title := truncateRunes(normalizeText(s.Title), maxTitleLen)
		if title == "" {
			continue
		}
		rationale := normalizeText(s.Rationale)
		if rationale == "" {
			rationale = "No rationale provided by the model."
		}
		suggestions = append(suggestions, TitleSuggestion{
			Title:       title,
			Description: truncateRunes(normalizeText(s.Description), maxDescriptionLen),
			Rationale:   rationale,
		})
	}
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("model reply contained no usable suggestions")
	}

	confidence := 0.5
	if payload.Confidence != nil && *payload.Confidence >= 0 && *payload.Confidence <= 1 {
		confidence = *payload.Confidence
	}

	result := &Result{
		SuggestedTitle:       suggestions[0].Title,
		SuggestedDescription: suggestions[0].Description,
		Rationale:            suggestions[0].Rationale,
		Confidence:           confidence,
	}
	if len(suggestions) > 1 {
		result.Alternatives = suggestions[1:]
	}
	return result, nil
}

// decodePayload tries the fenced JSON block first, then the whole body.
func decodePayload(raw string) (*modelPayload, error) {
	if match := jsonFencePattern.FindStringSubmatch(raw); len(match) == 2 {
		var payload modelPayload
		if err := json.Unmarshal([]byte(match[1]), &payload); err == nil {
			return &payload, nil
		}
	}

	var payload modelPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return nil, fmt.Errorf("model reply is not valid JSON: %w", err)
	}
	return &payload, nil
}

// normalizeText collapses runs of whitespace, including newlines, to single
// spaces.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
