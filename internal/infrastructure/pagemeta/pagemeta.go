// Package pagemeta fetches the title and meta description of a live page,
// used to backfill analysis requests that name a page instead of a title.
package pagemeta

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"seo-copilot/services/mcp-tools/internal/domain/analysis"
	"seo-copilot/services/mcp-tools/internal/infrastructure/metrics"
	"seo-copilot/services/mcp-tools/internal/infrastructure/resilience"
)

// ClientConfig captures the knobs exposed to operators for the page fetcher.
type ClientConfig struct {
	HTTPTimeout time.Duration

	// Retry Settings
	RetryMaxAttempts   int
	RetryInitialDelay  time.Duration
	RetryMaxDelay      time.Duration
	RetryBackoffFactor float64
}

// Client implements analysis.PageMetaClient with a direct HTTP fetch.
type Client struct {
	http        *resty.Client
	retryConfig resilience.RetryConfig
}

var _ analysis.PageMetaClient = (*Client)(nil)

// NewClient wires the HTTP client used for page metadata fetches. Browser-like
// headers avoid basic bot detection on the pages being analyzed.
func NewClient(cfg ClientConfig) *Client {
	httpTimeout := 10 * time.Second
	if cfg.HTTPTimeout > 0 {
		httpTimeout = cfg.HTTPTimeout
	}

	httpClient := resty.New().
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36").
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5").
		SetTimeout(httpTimeout).
		SetRetryCount(0)

	retryConfig := resilience.DefaultRetryConfig()
	if cfg.RetryMaxAttempts > 0 {
		retryConfig.MaxAttempts = cfg.RetryMaxAttempts
	}
	if cfg.RetryInitialDelay > 0 {
		retryConfig.InitialDelay = cfg.RetryInitialDelay
	}
	if cfg.RetryMaxDelay > 0 {
		retryConfig.MaxDelay = cfg.RetryMaxDelay
	}
	if cfg.RetryBackoffFactor > 0 {
		retryConfig.BackoffFactor = cfg.RetryBackoffFactor
	}

	return &Client{
		http:        httpClient,
		retryConfig: retryConfig,
	}
}

// FetchMeta downloads the page and extracts its <title> and meta description.
func (c *Client) FetchMeta(ctx context.Context, pageURL string) (*analysis.PageMeta, error) {
	startTime := time.Now()
	status := "success"
	defer func() {
		metrics.RecordProviderRequest("page_meta", "direct-http", status)
		metrics.RecordExternalProviderLatency("direct-http", time.Since(startTime).Seconds())
	}()

	result, err := resilience.WithRetry(ctx, c.retryConfig, "page_meta_fetch", func() (*analysis.PageMeta, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			Get(pageURL)
		if err != nil {
			log.Error().Err(err).Str("service", "pagemeta").Str("url", pageURL).Msg("page fetch failed")
			return nil, fmt.Errorf("page fetch failed: %w", err)
		}
		if resp.IsError() {
			log.Error().Int("status", resp.StatusCode()).Str("service", "pagemeta").Str("url", pageURL).Msg("page fetch HTTP error")
			return nil, fmt.Errorf("page fetch HTTP %d: %s", resp.StatusCode(), resp.Status())
		}

		meta := parseMeta(resp.Body())
		if strings.TrimSpace(meta.Title) == "" && strings.TrimSpace(meta.Description) == "" {
			return nil, fmt.Errorf("page has no title or meta description")
		}
		return meta, nil
	})

	if err != nil {
		status = "error"
		log.Error().Err(err).Str("service", "pagemeta").Str("url", pageURL).Msg("page metadata fetch failed after retries")
		return nil, err
	}

	log.Debug().
		Str("url", pageURL).
		Int("title_length", len(result.Title)).
		Int("description_length", len(result.Description)).
		Msg("page metadata extracted")

	return result, nil
}

// parseMeta walks the document for the first <title> text and the first
// description meta tag. og:description is accepted as a fallback name.
func parseMeta(body []byte) *analysis.PageMeta {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return &analysis.PageMeta{}
	}

	meta := &analysis.PageMeta{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if meta.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					meta.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				var name, content string
				for _, attr := range n.Attr {
					switch strings.ToLower(attr.Key) {
					case "name", "property":
						name = strings.ToLower(strings.TrimSpace(attr.Val))
					case "content":
						content = attr.Val
					}
				}
				if meta.Description == "" && (name == "description" || name == "og:description") {
					meta.Description = strings.TrimSpace(content)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return meta
}
