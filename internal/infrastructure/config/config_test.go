package config

import (
	"os"
	"strings"
	"testing"
)

// clearEnv unsets every variable the loader reads so ambient shell state
// cannot leak into assertions. t.Setenv registers the restore.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"MCP_TOOLS_HTTP_PORT", "MCP_TOOLS_LOG_LEVEL", "MCP_TOOLS_LOG_FORMAT",
		"LOG_LEVEL", "LOG_FORMAT",
		"MCP_SERP_ENGINE", "DATAFORSEO_LOGIN", "DATAFORSEO_PASSWORD", "SERPER_API_KEY", "SERP_OFFLINE_MODE",
		"ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL", "ANTHROPIC_MODEL", "ANTHROPIC_MAX_TOKENS", "ANTHROPIC_TEMPERATURE",
		"ANALYSIS_LOCATION_CODE", "ANALYSIS_LANGUAGE_CODE", "ANALYSIS_DEVICE", "ANALYSIS_MAX_RESULTS",
		"ANALYSIS_MAX_RESULTS_CAP", "ANALYSIS_MAX_TITLE_LENGTH", "ANALYSIS_MAX_DESCRIPTION_LENGTH",
		"MCP_HEURISTICS_FILE",
		"PROVIDER_CB_FAILURE_THRESHOLD", "PROVIDER_CB_SUCCESS_THRESHOLD", "PROVIDER_CB_TIMEOUT", "PROVIDER_CB_MAX_HALF_OPEN",
		"SERP_HTTP_TIMEOUT", "LLM_HTTP_TIMEOUT", "PAGE_FETCH_TIMEOUT",
		"PROVIDER_MAX_CONNS_PER_HOST", "PROVIDER_MAX_IDLE_CONNS", "PROVIDER_IDLE_CONN_TIMEOUT",
		"PROVIDER_RETRY_MAX_ATTEMPTS", "PROVIDER_RETRY_INITIAL_DELAY", "PROVIDER_RETRY_MAX_DELAY", "PROVIDER_RETRY_BACKOFF_FACTOR",
		"AUTH_ENABLED", "AUTH_ISSUER", "ACCOUNT", "AUTH_JWKS_URL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERP_OFFLINE_MODE", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected offline config to load, got error: %v", err)
	}

	if cfg.HTTPPort != "8091" {
		t.Errorf("Expected default port 8091, got %s", cfg.HTTPPort)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Errorf("Expected default logging info/json, got %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.SerpEngine != "dataforseo" {
		t.Errorf("Expected default engine dataforseo, got %s", cfg.SerpEngine)
	}
	if cfg.DefaultLocationCode != 2840 || cfg.DefaultLanguageCode != "en" || cfg.DefaultDevice != "desktop" {
		t.Errorf("Expected default analysis location/language/device, got %d/%s/%s",
			cfg.DefaultLocationCode, cfg.DefaultLanguageCode, cfg.DefaultDevice)
	}
	if cfg.DefaultMaxResults != 10 || cfg.MaxResultsCap != 100 {
		t.Errorf("Expected default result limits 10/100, got %d/%d", cfg.DefaultMaxResults, cfg.MaxResultsCap)
	}
	if cfg.MaxTitleLength != 65 || cfg.MaxDescriptionLength != 160 {
		t.Errorf("Expected default length caps 65/160, got %d/%d", cfg.MaxTitleLength, cfg.MaxDescriptionLength)
	}
	if cfg.HeuristicsFile != "configs/heuristics.yml" {
		t.Errorf("Expected default heuristics path, got %s", cfg.HeuristicsFile)
	}
	if cfg.ProviderRetryMaxAttempts != 2 {
		t.Errorf("Expected default retry attempts 2, got %d", cfg.ProviderRetryMaxAttempts)
	}
	if cfg.AuthEnabled {
		t.Error("Expected auth disabled by default")
	}
}

func TestLoadConfigOfflineSkipsCredentialChecks(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERP_OFFLINE_MODE", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected offline mode to need no credentials, got error: %v", err)
	}
	if !cfg.SerpOfflineMode {
		t.Error("Expected offline mode enabled")
	}
}

func TestLoadConfigCredentialValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "dataforseo without credentials",
			env:     map[string]string{"ANTHROPIC_API_KEY": "key"},
			wantErr: "DATAFORSEO_LOGIN",
		},
		{
			name: "serper without api key",
			env: map[string]string{
				"MCP_SERP_ENGINE":   "serper",
				"ANTHROPIC_API_KEY": "key",
			},
			wantErr: "SERPER_API_KEY",
		},
		{
			name: "missing anthropic key",
			env: map[string]string{
				"DATAFORSEO_LOGIN":    "login",
				"DATAFORSEO_PASSWORD": "secret",
			},
			wantErr: "ANTHROPIC_API_KEY",
		},
		{
			name:    "unknown engine",
			env:     map[string]string{"MCP_SERP_ENGINE": "bing"},
			wantErr: "must be dataforseo or serper",
		},
		{
			name: "complete dataforseo config",
			env: map[string]string{
				"DATAFORSEO_LOGIN":    "login",
				"DATAFORSEO_PASSWORD": "secret",
				"ANTHROPIC_API_KEY":   "key",
			},
		},
		{
			name: "complete serper config",
			env: map[string]string{
				"MCP_SERP_ENGINE":   "serper",
				"SERPER_API_KEY":    "key123",
				"ANTHROPIC_API_KEY": "key",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := LoadConfig()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected config to load, got error: %v", err)
				}
				if cfg == nil {
					t.Fatal("Expected a config")
				}
				return
			}
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestLoadConfigNormalizesEngine(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERP_OFFLINE_MODE", "true")
	t.Setenv("MCP_SERP_ENGINE", "  Serper  ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected engine name to normalize, got error: %v", err)
	}
	if cfg.SerpEngine != "serper" {
		t.Errorf("Expected normalized engine serper, got %q", cfg.SerpEngine)
	}
}

func TestLoadConfigAuthValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing issuer",
			env:     map[string]string{},
			wantErr: "AUTH_ISSUER",
		},
		{
			name:    "missing account",
			env:     map[string]string{"AUTH_ISSUER": "https://issuer.example.com"},
			wantErr: "ACCOUNT",
		},
		{
			name: "missing jwks url",
			env: map[string]string{
				"AUTH_ISSUER": "https://issuer.example.com",
				"ACCOUNT":     "tenant",
			},
			wantErr: "AUTH_JWKS_URL",
		},
		{
			name: "complete auth config",
			env: map[string]string{
				"AUTH_ISSUER":   "https://issuer.example.com",
				"ACCOUNT":       "tenant",
				"AUTH_JWKS_URL": "https://issuer.example.com/jwks.json",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("SERP_OFFLINE_MODE", "true")
			t.Setenv("AUTH_ENABLED", "true")
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := LoadConfig()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected config to load, got error: %v", err)
				}
				if !cfg.AuthEnabled {
					t.Error("Expected auth enabled")
				}
				return
			}
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestLoadConfigGlobalLogFallback(t *testing.T) {
	t.Run("global values apply", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SERP_OFFLINE_MODE", "true")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_FORMAT", "console")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("Expected config to load, got error: %v", err)
		}
		if cfg.LogLevel != "debug" || cfg.LogFormat != "console" {
			t.Errorf("Expected global log settings debug/console, got %s/%s", cfg.LogLevel, cfg.LogFormat)
		}
	})

	t.Run("service-specific values win", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SERP_OFFLINE_MODE", "true")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("MCP_TOOLS_LOG_LEVEL", "warn")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("Expected config to load, got error: %v", err)
		}
		if cfg.LogLevel != "warn" {
			t.Errorf("Expected service-specific level warn, got %s", cfg.LogLevel)
		}
	})
}
