package config

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// NodeID is the unique identifier for the manifest loader Graft node.
	NodeID graft.ID = "adapter.manifest_loader"
	// SettingsLoaderNodeID is the unique identifier for the settings loader Graft node.
	SettingsLoaderNodeID graft.ID = "adapter.settings_loader"
	// SettingsNodeID is the unique identifier for the effective settings Graft node.
	SettingsNodeID graft.ID = "adapter.settings"
)

func init() {
	graft.Register(graft.Node[ports.ManifestLoader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ManifestLoader, error) {
			return NewLoader(), nil
		},
	})

	graft.Register(graft.Node[ports.SettingsLoader]{
		ID:        SettingsLoaderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SettingsLoader, error) {
			return NewSettingsLoader(), nil
		},
	})

	graft.Register(graft.Node[*domain.Settings]{
		ID:        SettingsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{SettingsLoaderNodeID},
		Run: func(ctx context.Context) (*domain.Settings, error) {
			loader, err := graft.Dep[ports.SettingsLoader](ctx)
			if err != nil {
				return nil, err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return nil, zerr.Wrap(domain.ErrSettingsLoadFailed, err.Error())
			}
			return loader.Load(cwd)
		},
	})
}
