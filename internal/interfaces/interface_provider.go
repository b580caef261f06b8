package interfaces

import (
	"github.com/google/wire"

	"seo-copilot/services/mcp-tools/internal/interfaces/httpserver"
)

// InterfacesProvider provides all interface layer dependencies
var InterfacesProvider = wire.NewSet(
	httpserver.NewHTTPServer,
)
