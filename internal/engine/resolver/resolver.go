// Package resolver turns source descriptors into pinned sources and reads their manifests.
package resolver

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
	"go.trai.ch/ipkg/internal/semver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.SourceResolver = (*Resolver)(nil)

// Resolver implements ports.SourceResolver by dispatching on the source kind.
// Results are memoized for the lifetime of the Resolver.
type Resolver struct {
	vcs      ports.VCS
	registry ports.RegistryIndex
	loader   ports.ManifestLoader
	logger   ports.Logger

	group singleflight.Group
	mu    sync.Mutex
	memo  map[string]result
}

type result struct {
	src domain.ResolvedSource
	err error

	// aborted marks a result cut short by the resolving caller's context.
	aborted bool
}

// New creates a Resolver.
func New(vcs ports.VCS, registry ports.RegistryIndex, loader ports.ManifestLoader, logger ports.Logger) *Resolver {
	return &Resolver{
		vcs:      vcs,
		registry: registry,
		loader:   loader,
		logger:   logger,
		memo:     make(map[string]result),
	}
}

// Resolve pins desc. A lock pin recorded for the same descriptor wins over
// resolution, except for path sources which always resolve from disk.
func (r *Resolver) Resolve(ctx context.Context, desc domain.SourceDescriptor, rctx domain.ResolveContext) (domain.ResolvedSource, error) {
	if desc.Kind != domain.SourcePath && rctx.Pin.Matches(desc) && rctx.Pin.Source.Kind == desc.Kind {
		return rctx.Pin.Source, nil
	}

	key := desc.String()
	if desc.Kind == domain.SourcePath {
		key += "\x00" + rctx.Dir
	}

	r.mu.Lock()
	cached, ok := r.memo[key]
	r.mu.Unlock()
	if ok {
		return cached.src, cached.err
	}

	for {
		v, _, _ := r.group.Do(key, func() (any, error) {
			src, err := r.resolve(ctx, desc, rctx)
			res := result{src: src, err: err, aborted: err != nil && ctx.Err() != nil}
			if !res.aborted {
				r.mu.Lock()
				r.memo[key] = res
				r.mu.Unlock()
			}
			return res, nil
		})
		res := v.(result)
		if res.aborted && ctx.Err() == nil {
			continue
		}
		return res.src, res.err
	}
}

func (r *Resolver) resolve(ctx context.Context, desc domain.SourceDescriptor, rctx domain.ResolveContext) (domain.ResolvedSource, error) {
	switch desc.Kind {
	case domain.SourcePath:
		return resolvePath(desc, rctx)
	case domain.SourceGit:
		return r.resolveGit(ctx, desc, rctx)
	case domain.SourceRegistry:
		return r.resolveRegistry(ctx, desc, rctx)
	case domain.SourceUnknown:
		fallthrough
	default:
		return domain.ResolvedSource{}, zerr.With(zerr.Wrap(domain.ErrUnreachableSource, "unknown source kind"), "package", rctx.Name)
	}
}

func resolvePath(desc domain.SourceDescriptor, rctx domain.ResolveContext) (domain.ResolvedSource, error) {
	path := desc.Path
	if !filepath.IsAbs(path) {
		if rctx.Dir == "" {
			err := zerr.With(zerr.Wrap(domain.ErrUnreachableSource, "relative path dependency in a remote package"), "package", rctx.Name)
			return domain.ResolvedSource{}, zerr.With(err, "path", path)
		}
		path = filepath.Join(rctx.Dir, path)
	}

	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		err := zerr.With(zerr.Wrap(domain.ErrUnreachableSource, "path does not exist"), "package", rctx.Name)
		return domain.ResolvedSource{}, zerr.With(err, "path", path)
	}
	canonical, err = filepath.Abs(canonical)
	if err != nil {
		return domain.ResolvedSource{}, zerr.With(zerr.Wrap(domain.ErrUnreachableSource, err.Error()), "path", path)
	}

	info, err := os.Stat(canonical)
	if err != nil || !info.IsDir() {
		err := zerr.With(zerr.Wrap(domain.ErrUnreachableSource, "path is not a directory"), "package", rctx.Name)
		return domain.ResolvedSource{}, zerr.With(err, "path", canonical)
	}

	return domain.ResolvedSource{Kind: domain.SourcePath, Path: canonical}, nil
}

func (r *Resolver) resolveGit(ctx context.Context, desc domain.SourceDescriptor, rctx domain.ResolveContext) (domain.ResolvedSource, error) {
	rev, err := r.vcs.ResolveRef(ctx, desc.URL, desc.Ref)
	if err != nil {
		return domain.ResolvedSource{}, zerr.With(err, "package", rctx.Name)
	}
	r.logger.Debug("resolved " + rctx.Name + " " + desc.String() + " to " + rev)
	return domain.ResolvedSource{Kind: domain.SourceGit, URL: desc.URL, Revision: rev}, nil
}

func (r *Resolver) resolveRegistry(ctx context.Context, desc domain.SourceDescriptor, rctx domain.ResolveContext) (domain.ResolvedSource, error) {
	constraint, err := semver.ParseConstraint(desc.Version)
	if err != nil {
		return domain.ResolvedSource{}, zerr.With(err, "package", rctx.Name)
	}

	releases, err := r.registry.Releases(ctx, desc.Name)
	if err != nil {
		return domain.ResolvedSource{}, zerr.With(err, "package", rctx.Name)
	}

	versions := make([]string, len(releases))
	for i, rel := range releases {
		versions[i] = rel.Version
	}

	idx, ok := semver.MaxSatisfying(constraint, versions)
	if !ok {
		err := zerr.With(zerr.Wrap(domain.ErrNoMatchingVersion, "no release satisfies constraint"), "package", rctx.Name)
		return domain.ResolvedSource{}, zerr.With(err, "constraint", desc.Version)
	}
	rel := releases[idx]

	rev := rel.Revision
	if rev == "" {
		rev, err = r.vcs.ResolveRef(ctx, rel.URL, rel.Version)
		if err != nil {
			return domain.ResolvedSource{}, zerr.With(err, "package", rctx.Name)
		}
	}

	return domain.ResolvedSource{Kind: domain.SourceRegistry, URL: rel.URL, Revision: rev, Version: rel.Version}, nil
}

// Manifest reads the manifest of src. Git and registry manifests are read
// from the fetched database without a checkout.
func (r *Resolver) Manifest(ctx context.Context, src domain.ResolvedSource) (*domain.Manifest, error) {
	switch src.Kind {
	case domain.SourcePath:
		return r.loader.Load(src.Path)
	case domain.SourceGit, domain.SourceRegistry:
		data, err := r.vcs.ReadFile(ctx, src.URL, src.Revision, domain.ManifestFileName)
		if err != nil {
			return nil, err
		}
		if data == nil {
			return nil, nil
		}
		m, err := r.loader.Parse(data, "")
		if err != nil {
			return nil, zerr.With(zerr.With(err, "url", src.URL), "revision", src.Revision)
		}
		return m, nil
	case domain.SourceUnknown:
		fallthrough
	default:
		return nil, zerr.Wrap(domain.ErrUnreachableSource, "unknown source kind")
	}
}
