//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"seo-copilot/services/mcp-tools/internal/domain"
	"seo-copilot/services/mcp-tools/internal/infrastructure"
	"seo-copilot/services/mcp-tools/internal/interfaces"
	"seo-copilot/services/mcp-tools/internal/interfaces/httpserver/routes"
)

func CreateApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		domain.DomainProvider,
		infrastructure.InfrastructureProvider,
		routes.RoutesProvider,
		interfaces.InterfacesProvider,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
