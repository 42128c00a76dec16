package registry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ipkg/internal/adapters/config"
	"go.trai.ch/ipkg/internal/adapters/logger"
	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
)

// NodeID is the unique identifier for the registry index Graft node.
const NodeID graft.ID = "adapter.registry"

func init() {
	graft.Register(graft.Node[ports.RegistryIndex]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.RegistryIndex, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewIndex(settings, log), nil
		},
	})
}
