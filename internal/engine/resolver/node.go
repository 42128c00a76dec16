package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ipkg/internal/adapters/config"
	"go.trai.ch/ipkg/internal/adapters/git"
	"go.trai.ch/ipkg/internal/adapters/logger"
	"go.trai.ch/ipkg/internal/adapters/registry"
	"go.trai.ch/ipkg/internal/core/ports"
)

// NodeID is the unique identifier for the source resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[ports.SourceResolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{git.NodeID, registry.NodeID, config.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.SourceResolver, error) {
			vcs, err := graft.Dep[ports.VCS](ctx)
			if err != nil {
				return nil, err
			}
			index, err := graft.Dep[ports.RegistryIndex](ctx)
			if err != nil {
				return nil, err
			}
			loader, err := graft.Dep[ports.ManifestLoader](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(vcs, index, loader, log), nil
		},
	})
}
