// Package config loads manifests and tool settings.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ManifestLoader = (*Loader)(nil)

// Loader implements ports.ManifestLoader for ipkg.yml files.
type Loader struct {
	Filename string
}

// NewLoader creates a new manifest loader.
func NewLoader() *Loader {
	return &Loader{Filename: domain.ManifestFileName}
}

// Load reads the manifest in dir. A directory without one yields nil, nil.
func (l *Loader) Load(dir string) (*domain.Manifest, error) {
	path := filepath.Join(dir, l.Filename)
	data, err := os.ReadFile(path) //nolint:gosec // path is built from a resolved package directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrManifestReadFailed, err.Error()), "path", path)
	}

	m, err := l.Parse(data, dir)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return m, nil
}

// Parse decodes manifest content. Relative dependency paths stay as written and resolve against dir.
func (l *Loader) Parse(data []byte, dir string) (*domain.Manifest, error) {
	var dto Manifest
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, zerr.Wrap(domain.ErrManifestParseFailed, err.Error())
	}

	deps, err := parseDependencies(&dto.Dependencies)
	if err != nil {
		return nil, err
	}

	return &domain.Manifest{
		Name:         strings.TrimSpace(dto.Package.Name),
		Dir:          dir,
		Dependencies: deps,
		Sources:      dto.Sources,
	}, nil
}

// parseDependencies walks the mapping node so declaration order survives decoding.
func parseDependencies(node *yaml.Node) ([]domain.DependencySpec, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidManifest, "dependencies must be a mapping"), "line", node.Line)
	}

	deps := make([]domain.DependencySpec, 0, len(node.Content)/2)
	seen := make(map[string]struct{}, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		value := node.Content[i+1]

		if name == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidManifest, "dependency name is empty"), "line", node.Content[i].Line)
		}
		if !domain.ValidPackageName(name) {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidManifest, "dependency name is not a valid path element"), "dependency", name)
		}
		if _, dup := seen[name]; dup {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidManifest, "dependency declared twice"), "dependency", name)
		}
		seen[name] = struct{}{}

		src, err := parseDependency(name, value)
		if err != nil {
			return nil, err
		}
		deps = append(deps, domain.DependencySpec{Name: name, Source: src})
	}

	return deps, nil
}

func parseDependency(name string, node *yaml.Node) (domain.SourceDescriptor, error) {
	if node.Kind == yaml.ScalarNode {
		return domain.RegistrySource(name, node.Value), nil
	}

	var dto DependencyDTO
	if err := node.Decode(&dto); err != nil {
		return domain.SourceDescriptor{}, zerr.With(zerr.Wrap(domain.ErrManifestParseFailed, err.Error()), "dependency", name)
	}

	invalid := func(msg string) error {
		return zerr.With(zerr.Wrap(domain.ErrInvalidManifest, msg), "dependency", name)
	}

	switch {
	case dto.Path != "":
		if dto.Git != "" || dto.Rev != "" || dto.Version != "" {
			return domain.SourceDescriptor{}, invalid("path dependencies take no git, rev or version")
		}
		return domain.PathSource(dto.Path), nil
	case dto.Git != "":
		if dto.Rev != "" && dto.Version != "" {
			return domain.SourceDescriptor{}, invalid("rev and version are mutually exclusive")
		}
		ref := dto.Rev
		if ref == "" {
			ref = dto.Version
		}
		return domain.GitSource(dto.Git, ref), nil
	case dto.Version != "":
		if dto.Rev != "" {
			return domain.SourceDescriptor{}, invalid("rev requires git")
		}
		return domain.RegistrySource(name, dto.Version), nil
	default:
		return domain.SourceDescriptor{}, invalid("dependency needs one of git, path or version")
	}
}
