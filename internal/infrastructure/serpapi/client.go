package serpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"seo-copilot/services/mcp-tools/internal/domain/serp"
	"seo-copilot/services/mcp-tools/internal/infrastructure/resilience"
)

const (
	dataForSEOLiveEndpoint = "https://api.dataforseo.com/v3/serp/google/organic/live/advanced"
	serperSearchEndpoint   = "https://google.serper.dev/search"
)

// Engine represents the configured backend for SERP fetches.
type Engine string

const (
	// EngineDataForSEO routes fetches to the DataForSEO live/advanced API.
	EngineDataForSEO Engine = "dataforseo"
	// EngineSerper routes fetches to the hosted Serper API.
	EngineSerper Engine = "serper"
)

// ClientConfig captures the knobs exposed to operators for the SERP client.
type ClientConfig struct {
	Engine             Engine
	DataForSEOLogin    string
	DataForSEOPassword string
	DataForSEOEndpoint string // override for tests
	SerperAPIKey       string
	SerperEndpoint     string // override for tests
	OfflineMode        bool

	// Circuit Breaker Settings
	CBEnabled          bool
	CBFailureThreshold int
	CBSuccessThreshold int
	CBTimeout          time.Duration
	CBMaxHalfOpen      int

	// HTTP Client Settings
	HTTPTimeout     time.Duration
	MaxConnsPerHost int
	MaxIdleConns    int
	IdleConnTimeout time.Duration

	// Retry Settings
	RetryMaxAttempts   int
	RetryInitialDelay  time.Duration
	RetryMaxDelay      time.Duration
	RetryBackoffFactor float64
}

// Client implements serp.Client against the configured backend.
type Client struct {
	cfg          ClientConfig
	dataForSEO   *resty.Client
	serper       *resty.Client
	retryConfig  resilience.RetryConfig
	dataForSEOCB *resilience.CircuitBreaker
	serperCB     *resilience.CircuitBreaker
}

var _ serp.Client = (*Client)(nil)

// NewClient wires HTTP clients for the supported SERP backends.
func NewClient(cfg ClientConfig) *Client {
	engine := Engine(strings.ToLower(string(cfg.Engine)))
	if engine == "" {
		engine = EngineDataForSEO
	}
	cfg.Engine = engine

	if strings.TrimSpace(cfg.DataForSEOEndpoint) == "" {
		cfg.DataForSEOEndpoint = dataForSEOLiveEndpoint
	}
	if strings.TrimSpace(cfg.SerperEndpoint) == "" {
		cfg.SerperEndpoint = serperSearchEndpoint
	}

	// Set default HTTP timeout if not configured
	httpTimeout := 15 * time.Second
	if cfg.HTTPTimeout > 0 {
		httpTimeout = cfg.HTTPTimeout
	}

	// Configure HTTP transport with connection pooling
	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns == 0 {
		maxIdleConns = 100 // match Go default
	}
	maxConnsPerHost := cfg.MaxConnsPerHost
	if maxConnsPerHost == 0 {
		maxConnsPerHost = 50
	}
	idleConnTimeout := cfg.IdleConnTimeout
	if idleConnTimeout == 0 {
		idleConnTimeout = 90 * time.Second // match Go default
	}
	transport := &http.Transport{
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     maxConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
		DisableKeepAlives:   false,
		ForceAttemptHTTP2:   true,
	}

	dataForSEOHTTP := resty.New().
		SetHeader("User-Agent", "SEO-Copilot-MCP-Tools/1.0").
		SetTimeout(httpTimeout).
		SetRetryCount(0).
		SetTransport(transport)

	serperHTTP := resty.New().
		SetHeader("User-Agent", "SEO-Copilot-MCP-Tools/1.0").
		SetTimeout(httpTimeout).
		SetRetryCount(0).
		SetTransport(transport)

	// Build retry config from ClientConfig
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

	// Build circuit breaker config from ClientConfig
	cbConfig := resilience.DefaultCircuitBreakerConfig()
	cbConfig.Enabled = cfg.CBEnabled
	if cfg.CBFailureThreshold > 0 {
		cbConfig.FailureThreshold = cfg.CBFailureThreshold
	}
	if cfg.CBSuccessThreshold > 0 {
		cbConfig.SuccessThreshold = cfg.CBSuccessThreshold
	}
	if cfg.CBTimeout > 0 {
		cbConfig.Timeout = cfg.CBTimeout
	}
	if cfg.CBMaxHalfOpen > 0 {
		cbConfig.MaxHalfOpenCalls = cfg.CBMaxHalfOpen
	}

	return &Client{
		cfg:          cfg,
		dataForSEO:   dataForSEOHTTP,
		serper:       serperHTTP,
		retryConfig:  retryConfig,
		dataForSEOCB: resilience.NewCircuitBreaker("dataforseo", cbConfig),
		serperCB:     resilience.NewCircuitBreaker("serper", cbConfig),
	}
}

// Fetch returns live organic results for the query, or the canned sample when
// offline mode applies.
func (c *Client) Fetch(ctx context.Context, query serp.Query) (*serp.Response, error) {
	offline := c.cfg.OfflineMode || query.Offline

	log.Debug().
		Str("operation", "serp_fetch").
		Str("keyword", query.Keyword).
		Str("engine", string(c.cfg.Engine)).
		Bool("offline_mode", offline).
		Msg("serp client starting fetch")

	if offline {
		return c.sampleFetch(query), nil
	}

	switch c.cfg.Engine {
	case EngineSerper:
		return c.fetchViaSerper(ctx, query)
	case EngineDataForSEO:
		return c.fetchViaDataForSEO(ctx, query)
	default:
		return nil, fmt.Errorf("unsupported serp engine %q", c.cfg.Engine)
	}
}

// sampleFetch serves the bundled fixture, trimmed to the requested result
// count so downstream behavior matches a live fetch.
func (c *Client) sampleFetch(query serp.Query) *serp.Response {
	sample := serp.SampleResponse()
	if query.MaxResults > 0 && query.MaxResults < len(sample.Entries) {
		sample.Entries = sample.Entries[:query.MaxResults]
	}
	log.Info().
		Str("keyword", query.Keyword).
		Int("result_count", len(sample.Entries)).
		Msg("serving sample SERP data in offline mode")
	return sample
}

func (c *Client) hasDataForSEOCredentials() bool {
	return strings.TrimSpace(c.cfg.DataForSEOLogin) != "" && strings.TrimSpace(c.cfg.DataForSEOPassword) != ""
}

func (c *Client) hasSerperAPIKey() bool {
	return strings.TrimSpace(c.cfg.SerperAPIKey) != ""
}
