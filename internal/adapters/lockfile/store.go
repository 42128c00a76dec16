// Package lockfile persists resolutions as ipkg.lock files.
package lockfile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.LockfileStore = (*Store)(nil)

// Store implements ports.LockfileStore with YAML files. Loaded lockfiles are cached per root.
type Store struct {
	mu    sync.RWMutex
	cache map[string]*domain.Lockfile
}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{cache: make(map[string]*domain.Lockfile)}
}

// lockDTO is the on-disk layout of ipkg.lock.
type lockDTO struct {
	Version  int                   `yaml:"version"`
	Packages map[string]packageDTO `yaml:"packages"`
}

type packageDTO struct {
	Source       string   `yaml:"source"`
	URL          string   `yaml:"url,omitempty"`
	Revision     string   `yaml:"revision,omitempty"`
	Version      string   `yaml:"version,omitempty"`
	Path         string   `yaml:"path,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	Requests     []string `yaml:"requests,omitempty"`
}

// Load reads root's lockfile. A missing file yields nil, nil.
func (s *Store) Load(root string) (*domain.Lockfile, error) {
	path := filepath.Join(filepath.Clean(root), domain.LockFileName)

	s.mu.RLock()
	cached, ok := s.cache[path]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is the workspace lockfile
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrLockReadFailed, err.Error()), "path", path)
	}

	var dto lockDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrLockParseFailed, err.Error()), "path", path)
	}
	if dto.Version != domain.LockfileVersion {
		err := zerr.With(zerr.Wrap(domain.ErrLockParseFailed, "unsupported lockfile version"), "path", path)
		return nil, zerr.With(err, "version", dto.Version)
	}

	lock := &domain.Lockfile{
		Version:  dto.Version,
		Packages: make(map[string]domain.LockedPackage, len(dto.Packages)),
	}
	for name, p := range dto.Packages {
		kind, err := parseKind(p.Source)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "path", path), "package", name)
		}
		lock.Packages[name] = domain.LockedPackage{
			Source: domain.ResolvedSource{
				Kind:     kind,
				URL:      p.URL,
				Revision: p.Revision,
				Version:  p.Version,
				Path:     p.Path,
			},
			Dependencies: p.Dependencies,
			Requests:     p.Requests,
		}
	}

	s.mu.Lock()
	s.cache[path] = lock
	s.mu.Unlock()
	return lock, nil
}

// Save writes lock into root atomically.
func (s *Store) Save(root string, lock *domain.Lockfile) error {
	path := filepath.Join(filepath.Clean(root), domain.LockFileName)

	dto := lockDTO{
		Version:  lock.Version,
		Packages: make(map[string]packageDTO, len(lock.Packages)),
	}
	for name, p := range lock.Packages {
		deps := append([]string(nil), p.Dependencies...)
		sort.Strings(deps)
		dto.Packages[name] = packageDTO{
			Source:       p.Source.Kind.String(),
			URL:          p.Source.URL,
			Revision:     p.Source.Revision,
			Version:      p.Source.Version,
			Path:         p.Source.Path,
			Dependencies: deps,
			Requests:     p.Requests,
		}
	}

	data, err := yaml.Marshal(&dto)
	if err != nil {
		return zerr.Wrap(domain.ErrLockWriteFailed, err.Error())
	}

	if err := writeFileAtomic(path, data); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrLockWriteFailed, err.Error()), "path", path)
	}

	s.mu.Lock()
	s.cache[path] = lock
	s.mu.Unlock()
	return nil
}

func parseKind(s string) (domain.SourceKind, error) {
	switch s {
	case domain.SourceGit.String():
		return domain.SourceGit, nil
	case domain.SourcePath.String():
		return domain.SourcePath, nil
	case domain.SourceRegistry.String():
		return domain.SourceRegistry, nil
	default:
		return domain.SourceUnknown, zerr.With(zerr.Wrap(domain.ErrLockParseFailed, "unknown source kind"), "source", s)
	}
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ipkg-lock-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
