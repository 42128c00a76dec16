package git

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ipkg/internal/adapters/config"
	"go.trai.ch/ipkg/internal/adapters/fs"
	"go.trai.ch/ipkg/internal/adapters/logger"
	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
)

// NodeID is the unique identifier for the git VCS Graft node.
const NodeID graft.ID = "adapter.git"

func init() {
	graft.Register(graft.Node[ports.VCS]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID, fs.HasherNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.VCS, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewVCS(settings, hasher, log), nil
		},
	})
}
