package serpapi

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"seo-copilot/services/mcp-tools/internal/domain/serp"
)

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// ValidateResponse checks structural soundness of a normalized SERP response.
// An empty organic result set is a legitimate outcome for obscure queries and
// never fails validation. Entries are expected to already be normalized:
// positive unique positions in ascending order, non-empty titles.
func ValidateResponse(resp *serp.Response) error {
	if resp == nil {
		return ValidationError{Field: "response", Message: "response is nil"}
	}

	if resp.Entries == nil {
		log.Warn().Str("query", resp.Query).Msg("serp response has nil entries")
		resp.Entries = []serp.Entry{}
	}

	if len(resp.Entries) == 0 {
		log.Debug().Str("query", resp.Query).Msg("serp response has no organic results")
		return nil
	}

	lastPosition := 0
	for idx, entry := range resp.Entries {
		if entry.Position <= 0 {
			return ValidationError{
				Field:   fmt.Sprintf("entries[%d].position", idx),
				Message: "position must be 1-based",
			}
		}
		if entry.Position <= lastPosition {
			return ValidationError{
				Field:   fmt.Sprintf("entries[%d].position", idx),
				Message: fmt.Sprintf("positions must be strictly ascending, got %d after %d", entry.Position, lastPosition),
			}
		}
		if strings.TrimSpace(entry.Title) == "" {
			return ValidationError{
				Field:   fmt.Sprintf("entries[%d].title", idx),
				Message: "title must not be empty",
			}
		}
		lastPosition = entry.Position
	}

	return nil
}
