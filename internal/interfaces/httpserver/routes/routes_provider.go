package routes

import (
	"github.com/google/wire"

	"seo-copilot/services/mcp-tools/internal/interfaces/httpserver/routes/mcp"
)

// RoutesProvider provides all route dependencies
var RoutesProvider = wire.NewSet(
	mcp.NewAnalyzeMCP,
	mcp.NewMCPRoute,
)
