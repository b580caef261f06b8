package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"seo-copilot/services/mcp-tools/internal/infrastructure/config"
	"seo-copilot/services/mcp-tools/internal/infrastructure/logger"
	_ "seo-copilot/services/mcp-tools/internal/infrastructure/metrics" // Register Prometheus metrics
	"seo-copilot/services/mcp-tools/internal/interfaces/httpserver"
)

type Application struct {
	config     *config.Config
	httpServer *httpserver.HTTPServer
}

func init() {
	// Initialize logger with default settings
	logger.Init("info", "json")
}

// @title SEO Copilot MCP Tools Service
// @version 1.0
// @description Model Context Protocol (MCP) tools service providing SERP analysis and title rewrite suggestions.
// @contact.name SEO Copilot Team
// @contact.url https://github.com/seo-copilot/seo-copilot
// @BasePath /
func (app *Application) Start(ctx context.Context) error {
	log.Info().Str("address", fmt.Sprintf(":%s", app.config.HTTPPort)).Msg("Server listening")
	return app.httpServer.Run()
}

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Re-initialize logger with config settings
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("http_port", cfg.HTTPPort).
		Str("serp_engine", cfg.SerpEngine).
		Bool("offline_mode", cfg.SerpOfflineMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting MCP Tools service")

	// Create application with dependency injection
	application, err := CreateApplication(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application")
	}

	// Start application
	if err := application.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
