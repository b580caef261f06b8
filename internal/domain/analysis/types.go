// Package analysis implements the SERP-to-suggestion pipeline: competitive
// feature extraction, prompt construction, model-response parsing and the
// orchestration that ties them to the external providers.
package analysis

import (
	"context"
	"time"
)

// Options tunes one analysis invocation. Absent fields fall back to the
// service configuration.
type Options struct {
	LocationCode         *int    `json:"location_code,omitempty"`          // Provider location code (default: 2840)
	LanguageCode         *string `json:"language_code,omitempty"`          // ISO 639-1 language (default: "en")
	Device               *string `json:"device,omitempty"`                 // "desktop" or "mobile"
	MaxResults           *int    `json:"max_results,omitempty"`            // Organic rows to analyze (default: 10, cap: 100)
	MaxTitleLength       *int    `json:"max_title_length,omitempty"`       // Character cap for suggested titles (default: 65)
	MaxDescriptionLength *int    `json:"max_description_length,omitempty"` // Character cap for suggested descriptions (default: 160)
	UserDomain           *string `json:"user_domain,omitempty"`            // Caller's own domain, excluded from competitor stats
	PageURL              *string `json:"page_url,omitempty"`               // Fetch title/description from this page when absent
	Offline              *bool   `json:"offline,omitempty"`                // Analyze the bundled sample instead of live SERP data
}

// Request is the caller's input to one analysis.
type Request struct {
	Query              string  `json:"query"`
	CurrentTitle       string  `json:"current_title"`
	CurrentDescription string  `json:"current_description,omitempty"`
	Options            Options `json:"options,omitempty"`
}

// LengthRange is the min/max competitor title length in characters.
type LengthRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// SeparatorUsage counts competitor titles using common separator styles.
type SeparatorUsage struct {
	Pipe int `json:"pipe"`
	Dash int `json:"dash"`
}

// PowerWordCount is one power word's usage across competitor titles.
type PowerWordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// CompetitorRow is one competitor entry carried into the prompt. Snippets are
// truncated at extraction time so downstream stages see bounded rows.
type CompetitorRow struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet,omitempty"`
}

// CompetitiveFeatures are the signals derived from one SERP response.
// Derived once per invocation and never mutated afterwards.
type CompetitiveFeatures struct {
	TotalResults             int              `json:"total_results"`
	AvgCompetitorTitleLength float64          `json:"avg_competitor_title_length"`
	KeywordCoverageRatio     float64          `json:"keyword_coverage_ratio"`
	DuplicateTitleCount      int              `json:"duplicate_title_count"`
	KeywordInCurrentTitle    bool             `json:"target_keyword_present_in_current_title"`
	TopPositionsWithKeyword  []int            `json:"top_n_positions_with_keyword"`
	TitleLengthRange         LengthRange      `json:"title_length_range"`
	TitlesWithYear           int              `json:"titles_with_year"`
	TitlesWithNumbers        int              `json:"titles_with_numbers"`
	SeparatorUsage           SeparatorUsage   `json:"separator_usage"`
	PowerWordUsage           []PowerWordCount `json:"power_word_usage,omitempty"`
	PeopleAlsoAsk            []string         `json:"people_also_ask,omitempty"`
	UserDomainPosition       int              `json:"user_domain_position,omitempty"` // 0 = not ranked
	CompetitorSample         []CompetitorRow  `json:"competitor_sample,omitempty"`
}

// TitleSuggestion is one ranked rewrite candidate.
type TitleSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Rationale   string `json:"rationale"`
}

// Result is the guaranteed-shape output of one analysis. Either every field
// is populated or the invocation failed with a typed error; callers never see
// a partially-filled success.
type Result struct {
	SuggestedTitle       string              `json:"suggested_title"`
	SuggestedDescription string              `json:"suggested_description"`
	Rationale            string              `json:"rationale"`
	Confidence           float64             `json:"confidence"`
	FeaturesUsed         CompetitiveFeatures `json:"features_used"`
	Alternatives         []TitleSuggestion   `json:"alternatives,omitempty"`
}

// Prompt is the rendered, size-bounded payload for one model call.
type Prompt struct {
	System string
	User   string
}

// Size returns the rendered prompt length in bytes.
func (p Prompt) Size() int {
	return len(p.System) + len(p.User)
}

// CompletionClient defines the single-turn model call required by the
// suggestion generator.
type CompletionClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// PageMeta is the title/description pair lifted from a live page.
type PageMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PageMetaClient fetches a page's current title and meta description.
type PageMetaClient interface {
	FetchMeta(ctx context.Context, pageURL string) (*PageMeta, error)
}

// Stage names one step of the per-invocation pipeline state machine.
type Stage string

const (
	StageFetching   Stage = "fetching"
	StageExtracting Stage = "extracting"
	StagePrompting  Stage = "prompting"
	StageGenerating Stage = "generating"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// Config carries the process-wide defaults the orchestrator applies when a
// request omits options. Supplied at construction; pipeline stages never read
// the environment directly.
type Config struct {
	LocationCode         int
	LanguageCode         string
	Device               string
	MaxResults           int
	MaxResultsCap        int
	MaxTitleLength       int
	MaxDescriptionLength int
	SerpTimeout          time.Duration
	CompletionTimeout    time.Duration
	PageFetchTimeout     time.Duration
	Rules                Heuristics
}
