package serp

import "context"

// Client defines the SERP fetch operation required by the domain layer.
type Client interface {
	Fetch(ctx context.Context, query Query) (*Response, error)
}

// Service fronts the configured SERP provider while remaining transport-agnostic.
type Service struct {
	client Client
}

// NewService creates a new SERP service.
func NewService(client Client) *Service {
	return &Service{
		client: client,
	}
}

// Fetch retrieves one query's normalized result set from the configured provider.
func (s *Service) Fetch(ctx context.Context, query Query) (*Response, error) {
	return s.client.Fetch(ctx, query)
}
