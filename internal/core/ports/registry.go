package ports

import (
	"context"

	"go.trai.ch/ipkg/internal/core/domain"
)

// RegistryIndex lists the published releases of registry packages.
//
//go:generate go run go.uber.org/mock/mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks
type RegistryIndex interface {
	// Releases returns every release of name.
	Releases(ctx context.Context, name string) ([]domain.Release, error)
}
