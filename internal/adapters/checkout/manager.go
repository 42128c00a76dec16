// Package checkout materializes resolved sources below the checkout directory.
package checkout

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.CheckoutManager = (*Manager)(nil)

// Manager implements ports.CheckoutManager.
// A checkout is complete once its ready marker holds the source key; clones are
// staged in a temporary sibling and renamed into place.
type Manager struct {
	root   string
	vcs    ports.VCS
	hasher ports.Hasher
	logger ports.Logger

	group   singleflight.Group
	mu      sync.Mutex
	cloning map[string]struct{}
}

// NewManager creates a Manager storing checkouts below settings.CacheDir.
func NewManager(settings *domain.Settings, vcs ports.VCS, hasher ports.Hasher, logger ports.Logger) *Manager {
	return &Manager{
		root:    domain.CheckoutsPath(settings.CacheDir),
		vcs:     vcs,
		hasher:  hasher,
		logger:  logger,
		cloning: make(map[string]struct{}),
	}
}

// Dir returns the checkout directory of src. Path sources are used in place.
func (m *Manager) Dir(name string, src domain.ResolvedSource) string {
	if src.IsPath() {
		return src.Path
	}
	return filepath.Join(m.root, name+"-"+m.hasher.Key(src.Key()))
}

// Inspect reports the on-disk state of src without touching it.
func (m *Manager) Inspect(name string, src domain.ResolvedSource) domain.Checkout {
	dir := m.Dir(name, src)
	co := domain.Checkout{Source: src, Path: dir}

	m.mu.Lock()
	_, busy := m.cloning[dir]
	m.mu.Unlock()
	if busy {
		co.State = domain.CheckoutCloning
		return co
	}

	if src.IsPath() {
		if isDir(dir) {
			co.State = domain.CheckoutReady
		}
		return co
	}

	co.State, _ = m.inspect(dir, src)
	return co
}

// Ensure returns a Ready checkout of src, cloning or refreshing it when needed.
// Concurrent calls for the same source share one clone. A shared clone aborted
// by another caller's context is retried under ctx.
func (m *Manager) Ensure(ctx context.Context, name string, src domain.ResolvedSource) (domain.Checkout, error) {
	if src.IsPath() {
		if !isDir(src.Path) {
			return domain.Checkout{}, zerr.With(zerr.Wrap(domain.ErrUnreachableSource, "path source is not a directory"), "path", src.Path)
		}
		return domain.Checkout{Source: src, Path: src.Path, State: domain.CheckoutReady}, nil
	}

	if !domain.ValidPackageName(name) {
		return domain.Checkout{}, zerr.With(zerr.Wrap(domain.ErrInvalidManifest, "package name is not a valid path element"), "package", name)
	}
	dir := m.Dir(name, src)

	for {
		v, err, _ := m.group.Do(dir, func() (any, error) {
			err := m.ensure(ctx, name, dir, src)
			return ctx.Err() != nil, err
		})
		if aborted, _ := v.(bool); err != nil && aborted && ctx.Err() == nil {
			continue
		}
		if err != nil {
			return domain.Checkout{}, err
		}
		return domain.Checkout{Source: src, Path: dir, State: domain.CheckoutReady}, nil
	}
}

func (m *Manager) ensure(ctx context.Context, name, dir string, src domain.ResolvedSource) error {
	state, err := m.inspect(dir, src)
	if err != nil {
		return err
	}

	switch state {
	case domain.CheckoutReady:
		return nil
	case domain.CheckoutStale:
		m.logger.Warn("checkout of " + name + " is stale, refetching")
		if err := os.RemoveAll(dir); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrCloneFailed, err.Error()), "path", dir)
		}
	}

	m.mu.Lock()
	m.cloning[dir] = struct{}{}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.cloning, dir)
		m.mu.Unlock()
	}()

	return m.clone(ctx, name, dir, src)
}

func (m *Manager) clone(ctx context.Context, name, dir string, src domain.ResolvedSource) error {
	fail := func(err error) error {
		wrapped := zerr.With(zerr.Wrap(domain.ErrCloneFailed, err.Error()), "package", name)
		return zerr.With(wrapped, "path", dir)
	}

	if err := os.MkdirAll(m.root, domain.DirPerm); err != nil {
		return fail(err)
	}

	tmp, err := os.MkdirTemp(m.root, domain.TempPrefix+name+"-")
	if err != nil {
		return fail(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(tmp)
		}
	}()

	m.logger.Info("checking out " + name + " at " + src.String())
	if err := m.vcs.Checkout(ctx, src.URL, src.Revision, tmp); err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	marker := filepath.Join(tmp, domain.ReadyMarkerName)
	if err := os.WriteFile(marker, []byte(src.Key()+"\n"), domain.FilePerm); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmp, dir); err != nil {
		// Another process may have completed the same checkout meanwhile.
		if state, _ := m.inspect(dir, src); state == domain.CheckoutReady {
			m.logger.Debug("checkout of " + name + " was completed concurrently")
			return nil
		}
		return fail(err)
	}
	committed = true
	return nil
}

// inspect classifies dir: Absent when missing, Ready when the marker matches,
// Stale when a directory exists without a matching marker.
func (m *Manager) inspect(dir string, src domain.ResolvedSource) (domain.CheckoutState, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.CheckoutAbsent, nil
		}
		return domain.CheckoutAbsent, zerr.With(zerr.Wrap(domain.ErrCloneFailed, err.Error()), "path", dir)
	}
	if !info.IsDir() {
		return domain.CheckoutStale, zerr.With(zerr.Wrap(domain.ErrPathConflict, "checkout path is not a directory"), "path", dir)
	}

	data, err := os.ReadFile(filepath.Join(dir, domain.ReadyMarkerName)) //nolint:gosec // marker inside the checkout
	if err != nil || strings.TrimSpace(string(data)) != src.Key() {
		return domain.CheckoutStale, nil
	}
	return domain.CheckoutReady, nil
}

// Clean removes every checkout. Path sources are never touched.
func (m *Manager) Clean() error {
	if err := os.RemoveAll(m.root); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove checkouts"), "path", m.root)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
