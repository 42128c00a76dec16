package ports

import (
	"context"

	"go.trai.ch/ipkg/internal/core/domain"
)

// SourceResolver turns declared sources into pinned ones and reads the manifests they contain.
//
//go:generate go run go.uber.org/mock/mockgen -source=source_resolver.go -destination=mocks/mock_source_resolver.go -package=mocks
type SourceResolver interface {
	// Resolve pins desc to concrete content.
	Resolve(ctx context.Context, desc domain.SourceDescriptor, rctx domain.ResolveContext) (domain.ResolvedSource, error)

	// Manifest reads the manifest stored in src. It returns nil, nil when src has no manifest.
	Manifest(ctx context.Context, src domain.ResolvedSource) (*domain.Manifest, error)
}
