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

// serperLocationToGL maps the Google geotarget codes used by the default
// engine onto Serper's two-letter gl country parameter. Unknown codes fall
// back to "us".
var serperLocationToGL = map[int]string{
	2840: "us",
	2826: "gb",
	2124: "ca",
	2036: "au",
	2276: "de",
	2250: "fr",
	2724: "es",
	2380: "it",
	2392: "jp",
	2356: "in",
	2076: "br",
	2528: "nl",
}

type serperResponse struct {
	Organic       []serperOrganic `json:"organic"`
	PeopleAlsoAsk []serperPAA     `json:"peopleAlsoAsk"`
}

type serperOrganic struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

type serperPAA struct {
	Question string `json:"question"`
	Snippet  string `json:"snippet"`
	Title    string `json:"title"`
	Link     string `json:"link"`
}

func (c *Client) fetchViaSerper(ctx context.Context, query serp.Query) (*serp.Response, error) {
	if !c.hasSerperAPIKey() {
		return nil, fmt.Errorf("serper api key not configured")
	}

	// Check circuit breaker
	if c.serperCB.GetState() == resilience.StateOpen {
		log.Error().Str("service", "serper").Msg("serper circuit breaker is open, skipping")
		return nil, fmt.Errorf("serper circuit breaker is open")
	}

	startTime := time.Now()
	status := "success"
	defer func() {
		metrics.RecordProviderRequest("serp_fetch", "serper", status)
		metrics.RecordExternalProviderLatency("serper", time.Since(startTime).Seconds())
	}()

	body := map[string]any{
		"q":  query.Keyword,
		"gl": glForLocation(query.LocationCode),
	}
	if strings.TrimSpace(query.LanguageCode) != "" {
		body["hl"] = query.LanguageCode
	}
	if query.MaxResults > 0 {
		body["num"] = query.MaxResults
	}

	var opErr error

	// Retry with exponential backoff
	resultPtr, err := resilience.WithRetry(ctx, c.retryConfig, "serper_fetch", func() (*serperResponse, error) {
		var res serperResponse
		resp, err := c.serper.R().
			SetContext(ctx).
			SetHeader("X-API-KEY", c.cfg.SerperAPIKey).
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			SetResult(&res).
			Post(c.cfg.SerperEndpoint)

		if err != nil {
			log.Error().Err(err).Str("service", "serper").Str("endpoint", c.cfg.SerperEndpoint).Msg("failed to query Serper search API")
			return nil, fmt.Errorf("failed to query Serper search API: %w", err)
		}

		if resp.IsError() {
			log.Error().Int("status", resp.StatusCode()).Str("service", "serper").Str("response", resp.String()).Msg("Serper search API error")
			return nil, fmt.Errorf("Serper search API error (status %d): %s", resp.StatusCode(), resp.String())
		}

		return &res, nil
	})

	opErr = err
	var response *serp.Response
	if opErr == nil {
		response = mapSerperResponse(resultPtr, query)
		if validationErr := ValidateResponse(response); validationErr != nil {
			log.Warn().Err(validationErr).Msg("serper fetch returned invalid response")
			opErr = fmt.Errorf("serper invalid response: %w", validationErr)
		}
	}

	// Update circuit breaker
	c.serperCB.RecordResult("serper_fetch", opErr)

	if opErr != nil {
		status = "error"
		log.Error().Err(opErr).Str("service", "serper").Str("operation", "serp_fetch").Msg("serper fetch failed after retries")
		return nil, opErr
	}

	log.Info().
		Str("engine", "serper").
		Str("keyword", query.Keyword).
		Int("result_count", len(response.Entries)).
		Int("paa_count", len(response.PeopleAlsoAsk)).
		Msg("serp fetch completed")

	return response, nil
}

// mapSerperResponse normalizes Serper organic hits into the domain shape.
// Rows without a position get one assigned from their array order, matching
// how Serper renders its results.
func mapSerperResponse(res *serperResponse, query serp.Query) *serp.Response {
	entries := make([]serp.Entry, 0, len(res.Organic))
	for idx, item := range res.Organic {
		position := item.Position
		if position <= 0 {
			position = idx + 1
		}
		if strings.TrimSpace(item.Title) == "" {
			log.Warn().Int("index", idx).Msg("skipping serper organic item without title")
			continue
		}
		entries = append(entries, serp.Entry{
			Position: position,
			Title:    item.Title,
			Snippet:  item.Snippet,
			URL:      item.Link,
		})
	}

	entries = serp.NormalizeEntries(entries)
	if query.MaxResults > 0 && len(entries) > query.MaxResults {
		entries = entries[:query.MaxResults]
	}

	var paa []string
	for _, item := range res.PeopleAlsoAsk {
		if question := strings.TrimSpace(item.Question); question != "" {
			paa = append(paa, question)
		}
	}

	return &serp.Response{
		Query:         query.Keyword,
		Location:      glForLocation(query.LocationCode),
		Language:      query.LanguageCode,
		Entries:       entries,
		PeopleAlsoAsk: paa,
		Live:          true,
		FetchedAt:     time.Now().UTC(),
	}
}

func glForLocation(code int) string {
	if gl, ok := serperLocationToGL[code]; ok {
		return gl
	}
	return "us"
}
