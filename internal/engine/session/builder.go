package session

import (
	"context"
	"errors"
	"maps"
	"slices"

	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
	"go.trai.ch/ipkg/internal/engine/solver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxRounds bounds transitive discovery.
const DefaultMaxRounds = 64

// Options tune one Open call.
type Options struct {
	// Lock pins previously resolved sources. Nil resolves everything afresh.
	Lock *domain.Lockfile

	// Overrides force package names to local directories.
	Overrides map[string]string

	// MaxRounds bounds transitive discovery. Zero means DefaultMaxRounds.
	MaxRounds int
}

// Builder opens sessions.
type Builder struct {
	resolver ports.SourceResolver
	solver   *solver.Solver
	logger   ports.Logger
	jobs     int
}

// NewBuilder creates a Builder running at most jobs resolutions at once.
func NewBuilder(resolver ports.SourceResolver, logger ports.Logger, jobs int) *Builder {
	return &Builder{
		resolver: resolver,
		solver:   solver.New(resolver, jobs),
		logger:   logger,
		jobs:     max(jobs, 1),
	}
}

// discovered is the manifest read for a decided source.
type discovered struct {
	key      string
	manifest *domain.Manifest
}

// Open resolves the workspace described by root.
//
// Requests are collected to a fixed point: the root manifest's requests plus
// those of every decided package's manifest. Each round re-solves the full set,
// so a later request can still conflict with an earlier decision.
func (b *Builder) Open(ctx context.Context, root *domain.Manifest, opts Options) (*Session, error) {
	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	found := make(map[string]discovered)
	var order []string

	for round := 0; ; round++ {
		if round == maxRounds {
			return nil, zerr.With(zerr.Wrap(domain.ErrResolutionUnstable, "giving up"), "rounds", maxRounds)
		}

		requests := b.collect(root, order, found, opts.Overrides)
		res, err := b.solver.Solve(ctx, requests, opts.Lock)
		if err != nil {
			return nil, err
		}

		changed, err := b.discover(ctx, res, found)
		if err != nil {
			return nil, err
		}
		order = res.Order

		if !changed {
			b.logger.Debug("resolution settled")
			return build(root, res, requests, found)
		}
	}
}

// collect assembles the request set of one round in a deterministic order.
func (b *Builder) collect(root *domain.Manifest, order []string, found map[string]discovered, overrides map[string]string) []domain.DependencyRequest {
	requests := root.Requests(domain.RootRequester)
	for _, name := range order {
		if m := found[name].manifest; m != nil {
			requests = append(requests, m.Requests(name)...)
		}
	}

	requested := make(map[string]struct{}, len(requests))
	for _, req := range requests {
		requested[req.Name.String()] = struct{}{}
	}
	for _, name := range slices.Sorted(maps.Keys(overrides)) {
		if _, ok := requested[name]; !ok {
			continue
		}
		requests = append(requests, domain.DependencyRequest{
			Requester: domain.OverrideRequester,
			Name:      domain.NewInternedString(name),
			Source:    domain.PathSource(overrides[name]),
			Dir:       root.Dir,
		})
	}
	return requests
}

// discover reads the manifests of newly decided sources and drops those no longer
// requested. It reports whether the request set can change.
func (b *Builder) discover(ctx context.Context, res *solver.Resolution, found map[string]discovered) (bool, error) {
	changed := false
	for name := range found {
		if _, ok := res.Decisions[name]; !ok {
			delete(found, name)
			changed = true
		}
	}

	var pending []string
	for _, name := range res.Order {
		if found[name].key != res.Decisions[name].Source.Key() {
			pending = append(pending, name)
		}
	}
	if len(pending) == 0 {
		return changed, nil
	}

	manifests := make([]*domain.Manifest, len(pending))
	errs := make([]error, len(pending))

	var g errgroup.Group
	g.SetLimit(b.jobs)
	for i, name := range pending {
		g.Go(func() error {
			manifests[i], errs[i] = b.resolver.Manifest(ctx, res.Decisions[name].Source)
			if errs[i] != nil {
				errs[i] = zerr.With(errs[i], "package", name)
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := errors.Join(errs...); err != nil {
		return false, err
	}

	for i, name := range pending {
		m := manifests[i]
		if m != nil && m.Name != "" && m.Name != name {
			b.logger.Warn("package " + name + " declares itself as " + m.Name)
		}
		found[name] = discovered{key: res.Decisions[name].Source.Key(), manifest: m}
	}
	return true, nil
}

func build(root *domain.Manifest, res *solver.Resolution, requests []domain.DependencyRequest, found map[string]discovered) (*Session, error) {
	g := domain.NewGraph()
	ids := make(map[string]domain.PackageID, len(res.Order))
	for _, name := range res.Order {
		ids[name] = g.AddPackage(domain.NewInternedString(name), res.Decisions[name].Source)
	}

	manifests := make(map[domain.PackageID]*domain.Manifest, len(found))
	for _, name := range res.Order {
		from := ids[name]
		m := found[name].manifest
		if m == nil {
			continue
		}
		manifests[from] = m
		for _, dep := range m.Dependencies {
			to, ok := ids[dep.Name]
			if !ok {
				return nil, zerr.With(zerr.Wrap(domain.ErrUnknownPackageName, "dependency was not resolved"), "package", dep.Name)
			}
			err := g.AddEdge(from, to)
			switch {
			case err == nil, errors.Is(err, domain.ErrDuplicateEdge):
			case errors.Is(err, domain.ErrSelfDependency):
				return nil, &domain.CycleError{Cycle: []domain.PackageID{from}, Names: []string{name}}
			default:
				return nil, err
			}
		}
	}

	if err := g.DetectCycles(); err != nil {
		return nil, err
	}
	ranks, err := g.TopologicalRanks()
	if err != nil {
		return nil, err
	}

	return &Session{
		root:      root,
		graph:     g,
		ranks:     ranks,
		requests:  requests,
		manifests: manifests,
		checkouts: make(map[domain.PackageID]domain.Checkout),
	}, nil
}
