package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"seo-copilot/services/mcp-tools/internal/domain/analysis"
	"seo-copilot/services/mcp-tools/internal/domain/serp"
	"seo-copilot/services/mcp-tools/internal/infrastructure/config"
	"seo-copilot/services/mcp-tools/internal/infrastructure/metrics"
	"seo-copilot/services/mcp-tools/utils/platformerrors"
)

// Tool and resource keys exposed by this service.
const (
	ToolKeyAnalyzeTitle    = "analyze_title"
	ResourceNameSampleSerp = "sample_serp_data"
	resourceURISampleSerp  = "serp://sample/best-running-shoes"
)

const analyzeTitleDescription = "Analyze the live search results for a query and suggest improved page " +
	"titles and meta descriptions. Fetches the SERP, derives competitive signals " +
	"(title lengths, keyword coverage, duplicate titles, power words) and asks the " +
	"model for ranked rewrite suggestions. Set options.offline to analyze the " +
	"bundled sample data without provider credentials."

const sampleSerpDescription = "A fixed snapshot of search results for the query \"best running shoes\", " +
	"served for offline demonstration of the analysis pipeline. The document has the " +
	"same shape as a live SERP response: query, location, language and position-ordered entries."

// AnalyzeArgs defines the arguments for the analyze_title tool.
type AnalyzeArgs struct {
	Query              string            `json:"query"`
	CurrentTitle       string            `json:"current_title,omitempty"`
	CurrentDescription string            `json:"current_description,omitempty"`
	Options            *analysis.Options `json:"options,omitempty"`
	// Context passthrough (ignored by the handler but allowed for validation)
	ToolCallID     string `json:"tool_call_id,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
}

// analyzeToolPayload is the structured tool result. The analysis result fields
// are carried verbatim so any host can rely on their names and types.
type analyzeToolPayload struct {
	Query                string                       `json:"query"`
	Error                string                       `json:"error,omitempty"`
	ErrorKind            string                       `json:"error_kind,omitempty"`
	SuggestedTitle       string                       `json:"suggested_title,omitempty"`
	SuggestedDescription string                       `json:"suggested_description,omitempty"`
	Rationale            string                       `json:"rationale,omitempty"`
	Confidence           float64                      `json:"confidence,omitempty"`
	FeaturesUsed         *analysis.CompetitiveFeatures `json:"features_used,omitempty"`
	Alternatives         []analysis.TitleSuggestion   `json:"alternatives,omitempty"`
	Report               string                       `json:"report,omitempty"`
}

// AnalyzeMCP handles MCP tool and resource registration for the analysis
// pipeline.
type AnalyzeMCP struct {
	analysisService *analysis.Service
	serpEngine      string
	offlineMode     bool
}

// NewAnalyzeMCP creates the analysis MCP handler.
func NewAnalyzeMCP(analysisService *analysis.Service, cfg *config.Config) *AnalyzeMCP {
	return &AnalyzeMCP{
		analysisService: analysisService,
		serpEngine:      cfg.SerpEngine,
		offlineMode:     cfg.SerpOfflineMode,
	}
}

// RegisterTools registers the analyze_title tool with the MCP server.
func (a *AnalyzeMCP) RegisterTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolKeyAnalyzeTitle,
		Description: analyzeTitleDescription,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeArgs) (*mcp.CallToolResult, analyzeToolPayload, error) {
		startTime := time.Now()
		callCtx := extractCallContext(req)

		log.Info().
			Str("tool", ToolKeyAnalyzeTitle).
			Str("tool_call_id", callCtx.ToolCallID).
			Str("request_id", callCtx.RequestID).
			Str("conversation_id", callCtx.ConversationID).
			Str("user_id", callCtx.UserID).
			Msg("MCP tool call received")

		log.Debug().
			Str("tool", ToolKeyAnalyzeTitle).
			Str("query", input.Query).
			Int("title_length", len(input.CurrentTitle)).
			Bool("has_options", input.Options != nil).
			Msg("analyze_title request details")

		analysisReq := analysis.Request{
			Query:              input.Query,
			CurrentTitle:       input.CurrentTitle,
			CurrentDescription: input.CurrentDescription,
		}
		if input.Options != nil {
			analysisReq.Options = *input.Options
		}

		provider := a.providerLabel(analysisReq.Options)

		result, err := a.analysisService.AnalyzeTitle(ctx, analysisReq)
		if err != nil {
			kind, message := describeFailure(err)
			log.Warn().
				Err(err).
				Str("tool", ToolKeyAnalyzeTitle).
				Str("query", input.Query).
				Str("error_kind", kind).
				Msg("analysis service failed")

			payload := analyzeToolPayload{
				Query:     input.Query,
				Error:     message,
				ErrorKind: kind,
			}
			metrics.RecordToolCall(ToolKeyAnalyzeTitle, provider, "error", time.Since(startTime).Seconds())
			metrics.RecordAnalysisStage(failedStage(err), "error")
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: kind + ": " + message}},
				IsError: true,
			}, payload, nil
		}

		report := analysis.RenderReport(analysisReq, result)
		payload := analyzeToolPayload{
			Query:                analysisReq.Query,
			SuggestedTitle:       result.SuggestedTitle,
			SuggestedDescription: result.SuggestedDescription,
			Rationale:            result.Rationale,
			Confidence:           result.Confidence,
			FeaturesUsed:         &result.FeaturesUsed,
			Alternatives:         result.Alternatives,
			Report:               report,
		}

		estimatedTokens := estimateTokensFromAnalyzePayload(payload)
		metrics.RecordToolCall(ToolKeyAnalyzeTitle, provider, "success", time.Since(startTime).Seconds())
		metrics.RecordAnalysisStage(string(analysis.StageDone), "success")
		if estimatedTokens > 0 {
			metrics.RecordToolTokens(ToolKeyAnalyzeTitle, provider, estimatedTokens)
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: report}},
		}, payload, nil
	})
}

// RegisterResources registers the sample SERP document with the MCP server.
func (a *AnalyzeMCP) RegisterResources(server *mcp.Server) {
	server.AddResource(&mcp.Resource{
		URI:         resourceURISampleSerp,
		Name:        ResourceNameSampleSerp,
		Description: sampleSerpDescription,
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		data, err := json.MarshalIndent(serp.SampleResponse(), "", "  ")
		if err != nil {
			return nil, err
		}

		log.Debug().
			Str("resource", ResourceNameSampleSerp).
			Str("uri", resourceURISampleSerp).
			Msg("MCP resource read")

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      resourceURISampleSerp,
				MIMEType: "application/json",
				Text:     string(data),
			}},
		}, nil
	})
}

// providerLabel names the SERP backend a call will hit, for metrics.
func (a *AnalyzeMCP) providerLabel(opts analysis.Options) string {
	if a.offlineMode || (opts.Offline != nil && *opts.Offline) {
		return "sample"
	}
	if a.serpEngine == "" {
		return "unknown"
	}
	return a.serpEngine
}

// describeFailure extracts the taxonomy kind and human-readable message of a
// pipeline failure so the tool result text can lead with the kind.
func describeFailure(err error) (kind, message string) {
	var perr *platformerrors.PlatformError
	if errors.As(err, &perr) {
		return string(perr.Type), perr.Message
	}
	return string(platformerrors.ErrorTypeInternal), err.Error()
}

// failedStage names the pipeline stage a failure was raised in. Validation
// failures carry no stage annotation and count against the validating stage.
func failedStage(err error) string {
	var perr *platformerrors.PlatformError
	if errors.As(err, &perr) {
		if stage, ok := perr.Context["stage"].(string); ok && stage != "" {
			return stage
		}
		if perr.Type == platformerrors.ErrorTypeInvalidRequest {
			return "validating"
		}
	}
	return "unknown"
}

func estimateTokensFromAnalyzePayload(payload analyzeToolPayload) float64 {
	charCount := len(payload.SuggestedTitle) + len(payload.SuggestedDescription) + len(payload.Rationale) + len(payload.Report)
	for _, alt := range payload.Alternatives {
		charCount += len(alt.Title) + len(alt.Description) + len(alt.Rationale)
	}
	return float64(charCount) / 4
}
