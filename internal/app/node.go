package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ipkg/internal/adapters/checkout" //nolint:depguard // Wired in app layer
	"go.trai.ch/ipkg/internal/adapters/config"   //nolint:depguard // Wired in app layer
	"go.trai.ch/ipkg/internal/adapters/fs"       //nolint:depguard // Wired in app layer
	"go.trai.ch/ipkg/internal/adapters/lockfile" //nolint:depguard // Wired in app layer
	"go.trai.ch/ipkg/internal/adapters/logger"   //nolint:depguard // Wired in app layer
	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
	"go.trai.ch/ipkg/internal/engine/session"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.SettingsNodeID,
			config.SettingsLoaderNodeID,
			config.NodeID,
			lockfile.NodeID,
			session.NodeID,
			checkout.NodeID,
			fs.ResolverNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewComponents(a, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	settings, err := graft.Dep[*domain.Settings](ctx)
	if err != nil {
		return nil, err
	}

	settingsLoader, err := graft.Dep[ports.SettingsLoader](ctx)
	if err != nil {
		return nil, err
	}

	manifests, err := graft.Dep[ports.ManifestLoader](ctx)
	if err != nil {
		return nil, err
	}

	locks, err := graft.Dep[ports.LockfileStore](ctx)
	if err != nil {
		return nil, err
	}

	builder, err := graft.Dep[*session.Builder](ctx)
	if err != nil {
		return nil, err
	}

	checkouts, err := graft.Dep[ports.CheckoutManager](ctx)
	if err != nil {
		return nil, err
	}

	files, err := graft.Dep[ports.SourceFileResolver](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(settings, settingsLoader, manifests, locks, builder, checkouts, files, log), nil
}
