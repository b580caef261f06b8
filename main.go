// Command serp-analyze runs the title analysis pipeline once from the command
// line. By default it analyzes the bundled sample SERP so no provider
// credentials are needed; pass -live to fetch real search results using the
// same environment variables the server reads. When ANTHROPIC_API_KEY is set
// the full pipeline runs and prints the suggestion report; without it the
// command prints the extracted competitive signals and the prompt that would
// be sent, which is useful for tuning heuristics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"seo-copilot/services/mcp-tools/internal/domain/analysis"
	"seo-copilot/services/mcp-tools/internal/domain/serp"
	"seo-copilot/services/mcp-tools/internal/infrastructure/heuristics"
	"seo-copilot/services/mcp-tools/internal/infrastructure/llm"
	"seo-copilot/services/mcp-tools/internal/infrastructure/logger"
	"seo-copilot/services/mcp-tools/internal/infrastructure/pagemeta"
	"seo-copilot/services/mcp-tools/internal/infrastructure/serpapi"
)

func main() {
	query := flag.String("query", "best running shoes", "search query to analyze")
	currentTitle := flag.String("title", "", "current page title")
	currentDescription := flag.String("description", "", "current page meta description")
	heuristicsFile := flag.String("heuristics", "configs/heuristics.yml", "path to the heuristics YAML file")
	live := flag.Bool("live", false, "fetch a live SERP instead of the bundled sample")
	asJSON := flag.Bool("json", false, "print raw JSON instead of the markdown report")
	flag.Parse()

	logger.Init("warn", "console")

	rules, err := heuristics.Load(*heuristicsFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", *heuristicsFile).Msg("Failed to load heuristics")
	}

	serpClient := serpapi.NewClient(serpapi.ClientConfig{
		Engine:             serpapi.Engine(os.Getenv("MCP_SERP_ENGINE")),
		DataForSEOLogin:    os.Getenv("DATAFORSEO_LOGIN"),
		DataForSEOPassword: os.Getenv("DATAFORSEO_PASSWORD"),
		SerperAPIKey:       os.Getenv("SERPER_API_KEY"),
		OfflineMode:        !*live,
	})
	serpService := serp.NewService(serpClient)

	ctx := context.Background()
	req := analysis.Request{
		Query:              *query,
		CurrentTitle:       *currentTitle,
		CurrentDescription: *currentDescription,
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		previewPrompt(ctx, serpService, req, rules, *asJSON)
		return
	}

	completions := llm.NewClient(llm.ClientConfig{
		APIKey:  apiKey,
		BaseURL: os.Getenv("ANTHROPIC_BASE_URL"),
		Model:   os.Getenv("ANTHROPIC_MODEL"),
	})
	pages := pagemeta.NewClient(pagemeta.ClientConfig{})
	service := analysis.NewService(serpService, completions, pages, analysis.Config{Rules: rules})

	result, err := service.AnalyzeTitle(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Str("query", req.Query).Msg("Analysis failed")
	}

	if *asJSON {
		printJSON(result)
		return
	}
	fmt.Println(analysis.RenderReport(req, result))
}

// previewPrompt runs the deterministic half of the pipeline and prints what
// the model would receive. No credentials are required for the sample SERP.
func previewPrompt(ctx context.Context, serpService *serp.Service, req analysis.Request, rules analysis.Heuristics, asJSON bool) {
	resp, err := serpService.Fetch(ctx, serp.Query{
		Keyword:      req.Query,
		LocationCode: 2840,
		LanguageCode: "en",
		Device:       "desktop",
		MaxResults:   rules.TopPositionsLimit,
		Offline:      true,
	})
	if err != nil {
		log.Fatal().Err(err).Str("query", req.Query).Msg("SERP fetch failed")
	}

	feats := analysis.ExtractFeatures(resp, req.CurrentTitle, req.Query, "", rules)
	prompt := analysis.BuildPrompt(req, feats, rules)

	if asJSON {
		printJSON(map[string]any{
			"features": feats,
			"prompt":   map[string]string{"system": prompt.System, "user": prompt.User},
		})
		return
	}

	fmt.Println("ANTHROPIC_API_KEY not set, printing extracted signals and prompt instead of suggestions.")
	fmt.Println()
	fmt.Println("## Competitive signals")
	printJSON(feats)
	fmt.Println()
	fmt.Println("## System prompt")
	fmt.Println(prompt.System)
	fmt.Println()
	fmt.Println("## User prompt")
	fmt.Println(prompt.User)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode output")
	}
	fmt.Println(string(data))
}
