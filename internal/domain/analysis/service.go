package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"seo-copilot/services/mcp-tools/internal/domain/serp"
	"seo-copilot/services/mcp-tools/utils/platformerrors"
)

// Service composes the pipeline stages into the single analyze operation.
// It holds no per-request state: every entity created during a run is
// discarded when the run returns, so concurrent invocations need no
// coordination.
type Service struct {
	serp        *serp.Service
	completions CompletionClient
	pages       PageMetaClient
	cfg         Config
}

// NewService creates the analysis orchestrator. pages may be nil when page
// metadata fetching is not configured.
func NewService(serpService *serp.Service, completions CompletionClient, pages PageMetaClient, cfg Config) *Service {
	return &Service{
		serp:        serpService,
		completions: completions,
		pages:       pages,
		cfg:         cfg.withDefaults(),
	}
}

func (c Config) withDefaults() Config {
	if c.LocationCode <= 0 {
		c.LocationCode = 2840
	}
	if strings.TrimSpace(c.LanguageCode) == "" {
		c.LanguageCode = "en"
	}
	if strings.TrimSpace(c.Device) == "" {
		c.Device = "desktop"
	}
	if c.MaxResults <= 0 {
		c.MaxResults = 10
	}
	if c.MaxResultsCap <= 0 {
		c.MaxResultsCap = 100
	}
	if c.MaxTitleLength <= 0 {
		c.MaxTitleLength = fallbackMaxTitleLength
	}
	if c.MaxDescriptionLength <= 0 {
		c.MaxDescriptionLength = fallbackMaxDescriptionLength
	}
	if c.SerpTimeout <= 0 {
		c.SerpTimeout = 15 * time.Second
	}
	if c.CompletionTimeout <= 0 {
		c.CompletionTimeout = 30 * time.Second
	}
	if c.PageFetchTimeout <= 0 {
		c.PageFetchTimeout = 10 * time.Second
	}
	c.Rules = c.Rules.withDefaults()
	return c
}

// AnalyzeTitle runs the full pipeline for one request:
// fetching -> extracting -> prompting -> generating. Any stage failure is
// translated into exactly one taxonomy kind before it reaches the caller;
// raw transport errors never escape this boundary. Identical inputs against
// identical provider responses produce identical results.
func (s *Service) AnalyzeTitle(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	s.applyDefaults(&req)

	if err := s.fillFromPage(ctx, &req); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	stage := StageFetching
	serpCtx, cancelFetch := context.WithTimeout(ctx, s.cfg.SerpTimeout)
	defer cancelFetch()
	resp, err := s.serp.Fetch(serpCtx, s.buildQuery(req))
	if err != nil {
		return nil, s.fail(ctx, stage, "serp", err)
	}

	stage = StageExtracting
	feats := ExtractFeatures(resp, req.CurrentTitle, req.Query, stringValue(req.Options.UserDomain), s.cfg.Rules)

	stage = StagePrompting
	prompt := BuildPrompt(req, feats, s.cfg.Rules)

	stage = StageGenerating
	result, err := s.generate(ctx, prompt, req)
	if err != nil {
		return nil, s.fail(ctx, stage, "model", err)
	}

	result.FeaturesUsed = feats

	log.Info().
		Str("query", req.Query).
		Str("stage", string(StageDone)).
		Int("results_analyzed", feats.TotalResults).
		Float64("confidence", result.Confidence).
		Dur("duration", time.Since(started)).
		Msg("title analysis completed")

	return result, nil
}

// applyDefaults trims the caller's inputs and fills absent options from the
// service configuration. MaxResults is additionally clamped to the cap.
func (s *Service) applyDefaults(req *Request) {
	req.Query = strings.TrimSpace(req.Query)
	req.CurrentTitle = strings.TrimSpace(req.CurrentTitle)
	req.CurrentDescription = strings.TrimSpace(req.CurrentDescription)

	opts := &req.Options
	if opts.LocationCode == nil {
		v := s.cfg.LocationCode
		opts.LocationCode = &v
	}
	if opts.LanguageCode == nil || strings.TrimSpace(*opts.LanguageCode) == "" {
		v := s.cfg.LanguageCode
		opts.LanguageCode = &v
	}
	if opts.Device == nil || strings.TrimSpace(*opts.Device) == "" {
		v := s.cfg.Device
		opts.Device = &v
	}
	if opts.MaxResults == nil {
		v := s.cfg.MaxResults
		opts.MaxResults = &v
	}
	if *opts.MaxResults > s.cfg.MaxResultsCap {
		v := s.cfg.MaxResultsCap
		opts.MaxResults = &v
	}
	if opts.MaxTitleLength == nil {
		v := s.cfg.MaxTitleLength
		opts.MaxTitleLength = &v
	}
	if opts.MaxDescriptionLength == nil {
		v := s.cfg.MaxDescriptionLength
		opts.MaxDescriptionLength = &v
	}
}

// fillFromPage lifts title/description from the caller's page when the
// request omits them and a page URL was provided.
func (s *Service) fillFromPage(ctx context.Context, req *Request) error {
	pageURL := strings.TrimSpace(stringValue(req.Options.PageURL))
	if pageURL == "" || s.pages == nil {
		return nil
	}
	if req.CurrentTitle != "" && req.CurrentDescription != "" {
		return nil
	}

	metaCtx, cancel := context.WithTimeout(ctx, s.cfg.PageFetchTimeout)
	defer cancel()

	meta, err := s.pages.FetchMeta(metaCtx, pageURL)
	if err != nil {
		if req.CurrentTitle != "" {
			log.Warn().Err(err).Str("page_url", pageURL).Msg("page metadata fetch failed, continuing with provided title")
			return nil
		}
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidRequest,
			"current_title is empty and the page could not be fetched", err, "")
	}

	if req.CurrentTitle == "" {
		req.CurrentTitle = strings.TrimSpace(meta.Title)
	}
	if req.CurrentDescription == "" {
		req.CurrentDescription = strings.TrimSpace(meta.Description)
	}
	return nil
}

func (s *Service) validate(ctx context.Context, req Request) error {
	if req.Query == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidRequest,
			"query must not be empty", nil, "")
	}
	if req.CurrentTitle == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidRequest,
			"current_title must not be empty", nil, "")
	}
	if *req.Options.MaxTitleLength <= 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidRequest,
			"max_title_length must be positive", nil, "")
	}
	if *req.Options.MaxDescriptionLength <= 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidRequest,
			"max_description_length must be positive", nil, "")
	}
	if *req.Options.MaxResults <= 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidRequest,
			"max_results must be positive", nil, "")
	}
	return nil
}

func (s *Service) buildQuery(req Request) serp.Query {
	return serp.Query{
		Keyword:      req.Query,
		LocationCode: *req.Options.LocationCode,
		LanguageCode: *req.Options.LanguageCode,
		Device:       *req.Options.Device,
		MaxResults:   *req.Options.MaxResults,
		Offline:      boolValue(req.Options.Offline),
	}
}

// generate runs the model call and parsing, retrying once with a stricter
// instruction when the first reply is unparsable. The retry's outcome
// replaces the first attempt entirely.
func (s *Service) generate(ctx context.Context, prompt Prompt, req Request) (*Result, error) {
	maxTitle := *req.Options.MaxTitleLength
	maxDescription := *req.Options.MaxDescriptionLength

	raw, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, parseErr := parseCompletion(raw, maxTitle, maxDescription)
	if parseErr == nil {
		return result, nil
	}
	log.Warn().Err(parseErr).Str("query", req.Query).Msg("model reply failed schema parse, retrying with strict instruction")

	raw, err = s.complete(ctx, prompt.StrictRetry())
	if err != nil {
		return nil, err
	}
	result, parseErr = parseCompletion(raw, maxTitle, maxDescription)
	if parseErr != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnparsableResponse,
			"model reply did not match the declared schema after a corrective retry", parseErr, "")
	}
	return result, nil
}

func (s *Service) complete(ctx context.Context, prompt Prompt) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CompletionTimeout)
	defer cancel()
	return s.completions.Complete(callCtx, prompt)
}

// fail translates a stage failure into its taxonomy kind and logs the
// transition to Failed.
func (s *Service) fail(ctx context.Context, stage Stage, provider string, err error) error {
	kind := classify(err)
	perr := platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, kind, failureMessage(kind, provider), err, "", map[string]any{
		"stage":    string(stage),
		"provider": provider,
	})

	log.Warn().
		Str("stage", string(StageFailed)).
		Str("failed_stage", string(stage)).
		Str("provider", provider).
		Str("error_type", string(kind)).
		Err(err).
		Msg("title analysis failed")

	return perr
}

// classify maps an underlying failure to its taxonomy kind. Deadline
// expiries anywhere in the chain surface as provider timeouts; anything
// untyped from a provider stage is treated as the provider being
// unavailable.
func classify(err error) platformerrors.ErrorType {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return platformerrors.ErrorTypeProviderTimeout
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeProviderTimeout):
		return platformerrors.ErrorTypeProviderTimeout
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnparsableResponse):
		return platformerrors.ErrorTypeUnparsableResponse
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeInvalidRequest):
		return platformerrors.ErrorTypeInvalidRequest
	default:
		return platformerrors.ErrorTypeProviderUnavailable
	}
}

func failureMessage(kind platformerrors.ErrorType, provider string) string {
	switch kind {
	case platformerrors.ErrorTypeProviderTimeout:
		return "the " + provider + " provider call exceeded its time budget"
	case platformerrors.ErrorTypeUnparsableResponse:
		return "the model reply did not match the expected schema"
	case platformerrors.ErrorTypeInvalidRequest:
		return "the request failed validation"
	default:
		return "the " + provider + " provider is unavailable"
	}
}

func stringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func boolValue(v *bool) bool {
	return v != nil && *v
}
