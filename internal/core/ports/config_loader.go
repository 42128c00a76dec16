package ports

import "go.trai.ch/ipkg/internal/core/domain"

// ManifestLoader reads package manifests.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ManifestLoader interface {
	// Load reads the manifest in dir. It returns nil, nil if dir has none.
	Load(dir string) (*domain.Manifest, error)

	// Parse decodes manifest content read from elsewhere. dir anchors relative paths.
	Parse(data []byte, dir string) (*domain.Manifest, error)
}

// SettingsLoader reads tool settings and local overrides.
type SettingsLoader interface {
	// Load computes the effective settings for the workspace containing cwd.
	Load(cwd string) (*domain.Settings, error)

	// SaveOverride records a path override in the workspace's local file.
	SaveOverride(root, name, path string) error
}
