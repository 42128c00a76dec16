package checkout

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ipkg/internal/adapters/config"
	"go.trai.ch/ipkg/internal/adapters/fs"
	"go.trai.ch/ipkg/internal/adapters/git"
	"go.trai.ch/ipkg/internal/adapters/logger"
	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
)

// NodeID is the unique identifier for the checkout manager Graft node.
const NodeID graft.ID = "adapter.checkout"

func init() {
	graft.Register(graft.Node[ports.CheckoutManager]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID, git.NodeID, fs.HasherNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.CheckoutManager, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			vcs, err := graft.Dep[ports.VCS](ctx)
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
			return NewManager(settings, vcs, hasher, log), nil
		},
	})
}
