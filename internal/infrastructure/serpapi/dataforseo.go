package serpapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"seo-copilot/services/mcp-tools/internal/domain/serp"
	"seo-copilot/services/mcp-tools/internal/infrastructure/metrics"
	"seo-copilot/services/mcp-tools/internal/infrastructure/resilience"
)

// dataForSEOStatusOK is the in-body status DataForSEO returns for a
// successfully executed task.
const dataForSEOStatusOK = 20000

// dataForSEOTask is one element of the POST body array the live/advanced
// endpoint expects.
type dataForSEOTask struct {
	Keyword      string `json:"keyword"`
	LocationCode int    `json:"location_code"`
	LanguageCode string `json:"language_code"`
	Device       string `json:"device"`
	Depth        int    `json:"depth,omitempty"`
}

type dataForSEOResponse struct {
	StatusCode    int                  `json:"status_code"`
	StatusMessage string               `json:"status_message"`
	Tasks         []dataForSEOTaskBody `json:"tasks"`
}

type dataForSEOTaskBody struct {
	StatusCode    int                `json:"status_code"`
	StatusMessage string             `json:"status_message"`
	Result        []dataForSEOResult `json:"result"`
}

type dataForSEOResult struct {
	Keyword      string           `json:"keyword"`
	LocationName string           `json:"location_name"`
	LanguageCode string           `json:"language_code"`
	ItemsCount   int              `json:"items_count"`
	Items        []dataForSEOItem `json:"items"`
}

type dataForSEOItem struct {
	Type         string           `json:"type"`
	RankGroup    int              `json:"rank_group"`
	RankAbsolute int              `json:"rank_absolute"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	URL          string           `json:"url"`
	Items        []dataForSEOItem `json:"items,omitempty"` // PAA children
}

func (c *Client) fetchViaDataForSEO(ctx context.Context, query serp.Query) (*serp.Response, error) {
	if !c.hasDataForSEOCredentials() {
		return nil, fmt.Errorf("dataforseo credentials not configured")
	}

	// Check circuit breaker
	if c.dataForSEOCB.GetState() == resilience.StateOpen {
		log.Error().Str("service", "dataforseo").Msg("dataforseo circuit breaker is open, skipping")
		return nil, fmt.Errorf("dataforseo circuit breaker is open")
	}

	startTime := time.Now()
	status := "success"
	defer func() {
		metrics.RecordProviderRequest("serp_fetch", "dataforseo", status)
		metrics.RecordExternalProviderLatency("dataforseo", time.Since(startTime).Seconds())
	}()

	// Single-element array per the DataForSEO task interface
	body := []dataForSEOTask{{
		Keyword:      query.Keyword,
		LocationCode: query.LocationCode,
		LanguageCode: query.LanguageCode,
		Device:       query.Device,
		Depth:        query.MaxResults,
	}}

	var opErr error

	// Retry with exponential backoff
	resultPtr, err := resilience.WithRetry(ctx, c.retryConfig, "dataforseo_fetch", func() (*dataForSEOResponse, error) {
		var res dataForSEOResponse
		resp, err := c.dataForSEO.R().
			SetContext(ctx).
			SetBasicAuth(c.cfg.DataForSEOLogin, c.cfg.DataForSEOPassword).
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			SetResult(&res).
			Post(c.cfg.DataForSEOEndpoint)

		if err != nil {
			log.Error().Err(err).Str("service", "dataforseo").Str("endpoint", c.cfg.DataForSEOEndpoint).Msg("failed to query DataForSEO API")
			return nil, fmt.Errorf("failed to query DataForSEO API: %w", err)
		}

		if resp.StatusCode() == 401 {
			log.Error().Str("service", "dataforseo").Msg("DataForSEO authentication failed")
			return nil, fmt.Errorf("DataForSEO authentication failed (status 401): check credentials")
		}

		if resp.IsError() {
			log.Error().Int("status", resp.StatusCode()).Str("service", "dataforseo").Str("response", resp.String()).Msg("DataForSEO API error")
			return nil, fmt.Errorf("DataForSEO API error (status %d): %s", resp.StatusCode(), resp.String())
		}

		if res.StatusCode != dataForSEOStatusOK {
			msg := res.StatusMessage
			if msg == "" {
				msg = "unknown error"
			}
			log.Error().Int("api_status", res.StatusCode).Str("service", "dataforseo").Str("message", msg).Msg("DataForSEO task error")
			return nil, fmt.Errorf("DataForSEO task error (status %d): %s", res.StatusCode, msg)
		}

		return &res, nil
	})

	opErr = err
	var response *serp.Response
	if opErr == nil {
		response, opErr = mapDataForSEOResponse(resultPtr, query)
	}
	if opErr == nil {
		if validationErr := ValidateResponse(response); validationErr != nil {
			log.Warn().Err(validationErr).Msg("dataforseo fetch returned invalid response")
			opErr = fmt.Errorf("dataforseo invalid response: %w", validationErr)
		}
	}

	// Update circuit breaker
	c.dataForSEOCB.RecordResult("dataforseo_fetch", opErr)

	if opErr != nil {
		status = "error"
		log.Error().Err(opErr).Str("service", "dataforseo").Str("operation", "serp_fetch").Msg("dataforseo fetch failed after retries")
		return nil, opErr
	}

	log.Info().
		Str("engine", "dataforseo").
		Str("keyword", query.Keyword).
		Int("result_count", len(response.Entries)).
		Int("paa_count", len(response.PeopleAlsoAsk)).
		Msg("serp fetch completed")

	return response, nil
}

// mapDataForSEOResponse unwraps tasks[0].result[0] and normalizes its items
// into the domain shape. Organic rows missing a title or position are skipped
// with a warning; People Also Ask questions are collected from nested blocks.
func mapDataForSEOResponse(res *dataForSEOResponse, query serp.Query) (*serp.Response, error) {
	if len(res.Tasks) == 0 || len(res.Tasks[0].Result) == 0 {
		return nil, fmt.Errorf("malformed DataForSEO response: no task result block")
	}
	block := res.Tasks[0].Result[0]

	entries := make([]serp.Entry, 0, len(block.Items))
	var paa []string
	for idx, item := range block.Items {
		switch item.Type {
		case "organic":
			position := item.RankGroup
			if position <= 0 {
				position = item.RankAbsolute
			}
			if position <= 0 || strings.TrimSpace(item.Title) == "" {
				log.Warn().
					Int("index", idx).
					Int("rank_group", item.RankGroup).
					Str("title", item.Title).
					Msg("skipping malformed organic item")
				continue
			}
			entries = append(entries, serp.Entry{
				Position: position,
				Title:    item.Title,
				Snippet:  item.Description,
				URL:      item.URL,
			})
		case "people_also_ask":
			for _, child := range item.Items {
				if child.Type != "people_also_ask_element" {
					continue
				}
				if question := strings.TrimSpace(child.Title); question != "" {
					paa = append(paa, question)
				}
			}
		}
	}

	entries = serp.NormalizeEntries(entries)
	if query.MaxResults > 0 && len(entries) > query.MaxResults {
		entries = entries[:query.MaxResults]
	}

	keyword := block.Keyword
	if strings.TrimSpace(keyword) == "" {
		keyword = query.Keyword
	}

	return &serp.Response{
		Query:         keyword,
		Location:      block.LocationName,
		Language:      block.LanguageCode,
		Entries:       entries,
		PeopleAlsoAsk: paa,
		Live:          true,
		FetchedAt:     time.Now().UTC(),
	}, nil
}
