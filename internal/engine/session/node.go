package session

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ipkg/internal/adapters/config"
	"go.trai.ch/ipkg/internal/adapters/logger"
	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
	"go.trai.ch/ipkg/internal/engine/resolver"
)

// NodeID is the unique identifier for the session builder Graft node.
const NodeID graft.ID = "engine.session"

func init() {
	graft.Register(graft.Node[*Builder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{resolver.NodeID, logger.NodeID, config.SettingsNodeID},
		Run: func(ctx context.Context) (*Builder, error) {
			res, err := graft.Dep[ports.SourceResolver](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return NewBuilder(res, log, settings.Jobs), nil
		},
	})
}
