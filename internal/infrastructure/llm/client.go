// Package llm provides the Anthropic-backed completion client used by the
// analysis pipeline.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"seo-copilot/services/mcp-tools/internal/domain/analysis"
	"seo-copilot/services/mcp-tools/internal/infrastructure/metrics"
	"seo-copilot/services/mcp-tools/internal/infrastructure/resilience"
)

const (
	anthropicBaseURLDefault = "https://api.anthropic.com"
	anthropicMessagesPath   = "/v1/messages"
	anthropicVersion        = "2023-06-01"
	anthropicModelDefault   = "claude-3-haiku-20240307"
)

// ClientConfig captures the knobs exposed to operators for the completion
// client.
type ClientConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64

	// Circuit Breaker Settings
	CBEnabled          bool
	CBFailureThreshold int
	CBSuccessThreshold int
	CBTimeout          time.Duration
	CBMaxHalfOpen      int

	// HTTP Client Settings
	HTTPTimeout time.Duration

	// Retry Settings
	RetryMaxAttempts   int
	RetryInitialDelay  time.Duration
	RetryMaxDelay      time.Duration
	RetryBackoffFactor float64
}

// Client implements analysis.CompletionClient against the Anthropic Messages
// API.
type Client struct {
	cfg         ClientConfig
	http        *resty.Client
	retryConfig resilience.RetryConfig
	breaker     *resilience.CircuitBreaker
}

var _ analysis.CompletionClient = (*Client)(nil)

// messagesRequest is the Anthropic Messages API request body.
type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      tokenUsage     `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type tokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// NewClient wires the HTTP client for the Anthropic Messages API.
func NewClient(cfg ClientConfig) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = anthropicBaseURLDefault
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = anthropicModelDefault
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}

	httpTimeout := 30 * time.Second
	if cfg.HTTPTimeout > 0 {
		httpTimeout = cfg.HTTPTimeout
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("User-Agent", "SEO-Copilot-MCP-Tools/1.0").
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
		cfg:         cfg,
		http:        httpClient,
		retryConfig: retryConfig,
		breaker:     resilience.NewCircuitBreaker("anthropic", cbConfig),
	}
}

// Complete sends the prompt to the model and returns its raw text reply.
func (c *Client) Complete(ctx context.Context, prompt analysis.Prompt) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", fmt.Errorf("anthropic api key not configured")
	}

	// Check circuit breaker
	if c.breaker.GetState() == resilience.StateOpen {
		log.Error().Str("service", "anthropic").Msg("anthropic circuit breaker is open, skipping")
		return "", fmt.Errorf("anthropic circuit breaker is open")
	}

	startTime := time.Now()
	status := "success"
	defer func() {
		metrics.RecordProviderRequest("completion", "anthropic", status)
		metrics.RecordExternalProviderLatency("anthropic", time.Since(startTime).Seconds())
	}()

	body := messagesRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		System:      prompt.System,
		Messages:    []message{{Role: "user", Content: prompt.User}},
	}

	var opErr error

	// Retry with exponential backoff
	resultPtr, err := resilience.WithRetry(ctx, c.retryConfig, "anthropic_complete", func() (*messagesResponse, error) {
		var res messagesResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("x-api-key", c.cfg.APIKey).
			SetHeader("anthropic-version", anthropicVersion).
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			SetResult(&res).
			Post(anthropicMessagesPath)

		if err != nil {
			log.Error().Err(err).Str("service", "anthropic").Str("model", c.cfg.Model).Msg("failed to query Anthropic Messages API")
			return nil, fmt.Errorf("failed to query Anthropic Messages API: %w", err)
		}

		if resp.IsError() {
			log.Error().Int("status", resp.StatusCode()).Str("service", "anthropic").Str("response", resp.String()).Msg("Anthropic Messages API error")
			return nil, fmt.Errorf("Anthropic Messages API error (status %d): %s", resp.StatusCode(), resp.String())
		}

		return &res, nil
	})

	opErr = err
	text := ""
	if opErr == nil {
		text = completionText(resultPtr)
		if strings.TrimSpace(text) == "" {
			opErr = fmt.Errorf("anthropic reply contained no text content")
		}
	}

	// Update circuit breaker
	c.breaker.RecordResult("anthropic_complete", opErr)

	if opErr != nil {
		status = "error"
		log.Error().Err(opErr).Str("service", "anthropic").Str("operation", "completion").Msg("anthropic completion failed after retries")
		return "", opErr
	}

	log.Info().
		Str("service", "anthropic").
		Str("model", resultPtr.Model).
		Str("stop_reason", resultPtr.StopReason).
		Int("input_tokens", resultPtr.Usage.InputTokens).
		Int("output_tokens", resultPtr.Usage.OutputTokens).
		Msg("completion received")

	return text, nil
}

// completionText concatenates the text blocks of the reply.
func completionText(res *messagesResponse) string {
	var sb strings.Builder
	for _, block := range res.Content {
		if block.Type == "" || block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}
