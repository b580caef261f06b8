package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the MCP Tools service
type Config struct {
	// HTTP Server - using MCP_TOOLS_ prefix to avoid collisions
	HTTPPort  string `env:"MCP_TOOLS_HTTP_PORT" envDefault:"8091"`
	LogLevel  string `env:"MCP_TOOLS_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"MCP_TOOLS_LOG_FORMAT" envDefault:"json"` // json or console

	// SERP Configuration
	SerpEngine         string `env:"MCP_SERP_ENGINE" envDefault:"dataforseo"` // dataforseo or serper
	DataForSEOLogin    string `env:"DATAFORSEO_LOGIN"`
	DataForSEOPassword string `env:"DATAFORSEO_PASSWORD"`
	SerperAPIKey       string `env:"SERPER_API_KEY"`
	SerpOfflineMode    bool   `env:"SERP_OFFLINE_MODE" envDefault:"false"`

	// Anthropic Configuration
	AnthropicAPIKey      string  `env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL     string  `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com"`
	AnthropicModel       string  `env:"ANTHROPIC_MODEL" envDefault:"claude-3-haiku-20240307"`
	AnthropicMaxTokens   int     `env:"ANTHROPIC_MAX_TOKENS" envDefault:"2000"`
	AnthropicTemperature float64 `env:"ANTHROPIC_TEMPERATURE" envDefault:"0.7"`

	// Analysis Defaults
	DefaultLocationCode  int    `env:"ANALYSIS_LOCATION_CODE" envDefault:"2840"`
	DefaultLanguageCode  string `env:"ANALYSIS_LANGUAGE_CODE" envDefault:"en"`
	DefaultDevice        string `env:"ANALYSIS_DEVICE" envDefault:"desktop"`
	DefaultMaxResults    int    `env:"ANALYSIS_MAX_RESULTS" envDefault:"10"`
	MaxResultsCap        int    `env:"ANALYSIS_MAX_RESULTS_CAP" envDefault:"100"`
	MaxTitleLength       int    `env:"ANALYSIS_MAX_TITLE_LENGTH" envDefault:"65"`
	MaxDescriptionLength int    `env:"ANALYSIS_MAX_DESCRIPTION_LENGTH" envDefault:"160"`

	// Heuristics file - compiled-in defaults apply when the file is missing
	HeuristicsFile string `env:"MCP_HEURISTICS_FILE" envDefault:"configs/heuristics.yml"`

	// Circuit Breaker Configuration
	ProviderCBFailureThreshold int `env:"PROVIDER_CB_FAILURE_THRESHOLD" envDefault:"15"`
	ProviderCBSuccessThreshold int `env:"PROVIDER_CB_SUCCESS_THRESHOLD" envDefault:"5"`
	ProviderCBTimeout          int `env:"PROVIDER_CB_TIMEOUT" envDefault:"45"`
	ProviderCBMaxHalfOpen      int `env:"PROVIDER_CB_MAX_HALF_OPEN" envDefault:"10"`

	// HTTP Client Performance
	SerpHTTPTimeout  int `env:"SERP_HTTP_TIMEOUT" envDefault:"15"`
	LLMHTTPTimeout   int `env:"LLM_HTTP_TIMEOUT" envDefault:"30"` // Separate longer timeout for completion calls
	PageFetchTimeout int `env:"PAGE_FETCH_TIMEOUT" envDefault:"10"`
	MaxConnsPerHost  int `env:"PROVIDER_MAX_CONNS_PER_HOST" envDefault:"50"`
	MaxIdleConns     int `env:"PROVIDER_MAX_IDLE_CONNS" envDefault:"100"`
	IdleConnTimeout  int `env:"PROVIDER_IDLE_CONN_TIMEOUT" envDefault:"90"`

	// Retry Configuration - at most one extra attempt per external call by default
	ProviderRetryMaxAttempts   int     `env:"PROVIDER_RETRY_MAX_ATTEMPTS" envDefault:"2"`
	ProviderRetryInitialDelay  int     `env:"PROVIDER_RETRY_INITIAL_DELAY" envDefault:"250"`
	ProviderRetryMaxDelay      int     `env:"PROVIDER_RETRY_MAX_DELAY" envDefault:"5000"`
	ProviderRetryBackoffFactor float64 `env:"PROVIDER_RETRY_BACKOFF_FACTOR" envDefault:"1.5"`

	// Authentication
	AuthEnabled bool   `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer  string `env:"AUTH_ISSUER"`
	Account     string `env:"ACCOUNT"`
	AuthJWKSURL string `env:"AUTH_JWKS_URL"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(os.Getenv("MCP_TOOLS_LOG_LEVEL")) == "" {
		if global := strings.TrimSpace(os.Getenv("LOG_LEVEL")); global != "" {
			cfg.LogLevel = global
		}
	}
	if strings.TrimSpace(os.Getenv("MCP_TOOLS_LOG_FORMAT")) == "" {
		if global := strings.TrimSpace(os.Getenv("LOG_FORMAT")); global != "" {
			cfg.LogFormat = global
		}
	}

	cfg.SerpEngine = strings.ToLower(strings.TrimSpace(cfg.SerpEngine))
	switch cfg.SerpEngine {
	case "dataforseo", "serper":
	default:
		return nil, fmt.Errorf("MCP_SERP_ENGINE must be dataforseo or serper, got %q", cfg.SerpEngine)
	}

	if !cfg.SerpOfflineMode {
		switch cfg.SerpEngine {
		case "dataforseo":
			if strings.TrimSpace(cfg.DataForSEOLogin) == "" || strings.TrimSpace(cfg.DataForSEOPassword) == "" {
				return nil, fmt.Errorf("DATAFORSEO_LOGIN and DATAFORSEO_PASSWORD are required when MCP_SERP_ENGINE is dataforseo")
			}
		case "serper":
			if strings.TrimSpace(cfg.SerperAPIKey) == "" {
				return nil, fmt.Errorf("SERPER_API_KEY is required when MCP_SERP_ENGINE is serper")
			}
		}
		if strings.TrimSpace(cfg.AnthropicAPIKey) == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required unless SERP_OFFLINE_MODE is true")
		}
	}

	if cfg.AuthEnabled {
		if strings.TrimSpace(cfg.AuthIssuer) == "" {
			return nil, fmt.Errorf("AUTH_ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.Account) == "" {
			return nil, fmt.Errorf("ACCOUNT is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthJWKSURL) == "" {
			return nil, fmt.Errorf("AUTH_JWKS_URL is required when AUTH_ENABLED is true")
		}
	}
	return cfg, nil
}
