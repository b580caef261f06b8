package domain

import (
	"github.com/google/wire"

	"seo-copilot/services/mcp-tools/internal/domain/analysis"
	"seo-copilot/services/mcp-tools/internal/domain/serp"
)

// DomainProvider provides all domain services
var DomainProvider = wire.NewSet(
	serp.NewService,
	analysis.NewService,
)
