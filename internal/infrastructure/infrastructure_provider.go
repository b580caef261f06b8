package infrastructure

import (
	"context"
	"time"

	"github.com/google/wire"
	"github.com/rs/zerolog/log"

	"seo-copilot/services/mcp-tools/internal/domain/analysis"
	"seo-copilot/services/mcp-tools/internal/domain/serp"
	"seo-copilot/services/mcp-tools/internal/infrastructure/auth"
	"seo-copilot/services/mcp-tools/internal/infrastructure/config"
	"seo-copilot/services/mcp-tools/internal/infrastructure/heuristics"
	llmclient "seo-copilot/services/mcp-tools/internal/infrastructure/llm"
	pagemetaclient "seo-copilot/services/mcp-tools/internal/infrastructure/pagemeta"
	serpclient "seo-copilot/services/mcp-tools/internal/infrastructure/serpapi"
)

// InfrastructureProvider provides all infrastructure dependencies
var InfrastructureProvider = wire.NewSet(
	// Config
	ProvideConfig,

	// SERP client
	ProvideSERPClient,

	// Completion client
	ProvideCompletionClient,

	// Page metadata client
	ProvidePageMetaClient,

	// Analysis heuristics + assembled pipeline config
	ProvideHeuristics,
	ProvideAnalysisConfig,

	// Auth validator
	ProvideAuthValidator,
)

// ProvideConfig loads and provides the application configuration
func ProvideConfig() (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideSERPClient provides the SERP fetch client
func ProvideSERPClient(cfg *config.Config) serp.Client {
	return serpclient.NewClient(serpclient.ClientConfig{
		Engine:             serpclient.Engine(cfg.SerpEngine),
		DataForSEOLogin:    cfg.DataForSEOLogin,
		DataForSEOPassword: cfg.DataForSEOPassword,
		SerperAPIKey:       cfg.SerperAPIKey,
		OfflineMode:        cfg.SerpOfflineMode,

		CBEnabled:          true,
		CBFailureThreshold: cfg.ProviderCBFailureThreshold,
		CBSuccessThreshold: cfg.ProviderCBSuccessThreshold,
		CBTimeout:          time.Duration(cfg.ProviderCBTimeout) * time.Second,
		CBMaxHalfOpen:      cfg.ProviderCBMaxHalfOpen,

		HTTPTimeout:     time.Duration(cfg.SerpHTTPTimeout) * time.Second,
		MaxConnsPerHost: cfg.MaxConnsPerHost,
		MaxIdleConns:    cfg.MaxIdleConns,
		IdleConnTimeout: time.Duration(cfg.IdleConnTimeout) * time.Second,

		RetryMaxAttempts:   cfg.ProviderRetryMaxAttempts,
		RetryInitialDelay:  time.Duration(cfg.ProviderRetryInitialDelay) * time.Millisecond,
		RetryMaxDelay:      time.Duration(cfg.ProviderRetryMaxDelay) * time.Millisecond,
		RetryBackoffFactor: cfg.ProviderRetryBackoffFactor,
	})
}

// ProvideCompletionClient provides the Anthropic completion client
func ProvideCompletionClient(cfg *config.Config) analysis.CompletionClient {
	return llmclient.NewClient(llmclient.ClientConfig{
		APIKey:      cfg.AnthropicAPIKey,
		BaseURL:     cfg.AnthropicBaseURL,
		Model:       cfg.AnthropicModel,
		MaxTokens:   cfg.AnthropicMaxTokens,
		Temperature: cfg.AnthropicTemperature,

		CBEnabled:          true,
		CBFailureThreshold: cfg.ProviderCBFailureThreshold,
		CBSuccessThreshold: cfg.ProviderCBSuccessThreshold,
		CBTimeout:          time.Duration(cfg.ProviderCBTimeout) * time.Second,
		CBMaxHalfOpen:      cfg.ProviderCBMaxHalfOpen,

		HTTPTimeout: time.Duration(cfg.LLMHTTPTimeout) * time.Second,

		RetryMaxAttempts:   cfg.ProviderRetryMaxAttempts,
		RetryInitialDelay:  time.Duration(cfg.ProviderRetryInitialDelay) * time.Millisecond,
		RetryMaxDelay:      time.Duration(cfg.ProviderRetryMaxDelay) * time.Millisecond,
		RetryBackoffFactor: cfg.ProviderRetryBackoffFactor,
	})
}

// ProvidePageMetaClient provides the page metadata fetcher
func ProvidePageMetaClient(cfg *config.Config) analysis.PageMetaClient {
	return pagemetaclient.NewClient(pagemetaclient.ClientConfig{
		HTTPTimeout: time.Duration(cfg.PageFetchTimeout) * time.Second,

		RetryMaxAttempts:   cfg.ProviderRetryMaxAttempts,
		RetryInitialDelay:  time.Duration(cfg.ProviderRetryInitialDelay) * time.Millisecond,
		RetryMaxDelay:      time.Duration(cfg.ProviderRetryMaxDelay) * time.Millisecond,
		RetryBackoffFactor: cfg.ProviderRetryBackoffFactor,
	})
}

// ProvideHeuristics loads the extraction heuristics file
func ProvideHeuristics(cfg *config.Config) analysis.Heuristics {
	rules, err := heuristics.Load(cfg.HeuristicsFile)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.HeuristicsFile).Msg("failed to load heuristics file, using defaults")
	}
	return rules
}

// ProvideAnalysisConfig assembles the analysis pipeline configuration
func ProvideAnalysisConfig(cfg *config.Config, rules analysis.Heuristics) analysis.Config {
	return analysis.Config{
		LocationCode:         cfg.DefaultLocationCode,
		LanguageCode:         cfg.DefaultLanguageCode,
		Device:               cfg.DefaultDevice,
		MaxResults:           cfg.DefaultMaxResults,
		MaxResultsCap:        cfg.MaxResultsCap,
		MaxTitleLength:       cfg.MaxTitleLength,
		MaxDescriptionLength: cfg.MaxDescriptionLength,

		SerpTimeout:       time.Duration(cfg.SerpHTTPTimeout) * time.Second,
		CompletionTimeout: time.Duration(cfg.LLMHTTPTimeout) * time.Second,
		PageFetchTimeout:  time.Duration(cfg.PageFetchTimeout) * time.Second,

		Rules: rules,
	}
}

// ProvideAuthValidator provides the auth validator
func ProvideAuthValidator(ctx context.Context, cfg *config.Config) (*auth.Validator, error) {
	// Get global logger from zerolog
	logger := log.Logger
	return auth.NewValidator(ctx, cfg, logger)
}
