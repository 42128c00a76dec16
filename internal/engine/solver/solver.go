// Package solver decides one source per package name from all requests for it.
package solver

import (
	"context"
	"errors"

	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// Decision is the source chosen for one package name.
type Decision struct {
	Name   string
	Source domain.ResolvedSource

	// Candidates lists every request for Name with what it resolved to, in request order.
	Candidates []domain.Candidate
}

// Resolution is the outcome of a successful Solve.
type Resolution struct {
	// Order lists package names in the order they were first requested.
	Order     []string
	Decisions map[string]Decision
}

// Solver resolves requests concurrently and reconciles them per name.
type Solver struct {
	resolver ports.SourceResolver
	jobs     int
}

// New creates a Solver running at most jobs resolutions at once.
func New(resolver ports.SourceResolver, jobs int) *Solver {
	return &Solver{resolver: resolver, jobs: max(jobs, 1)}
}

// Solve resolves every request and picks one source per name.
// Path requests override other kinds; any other disagreement is a conflict.
// All resolution failures and all conflicts are reported together.
func (s *Solver) Solve(ctx context.Context, requests []domain.DependencyRequest, lock *domain.Lockfile) (*Resolution, error) {
	resolved := make([]domain.ResolvedSource, len(requests))
	errs := make([]error, len(requests))

	var g errgroup.Group
	g.SetLimit(s.jobs)
	for i, req := range requests {
		g.Go(func() error {
			rctx := domain.ResolveContext{
				Name: req.Name.String(),
				Dir:  req.Dir,
				Pin:  lock.Pin(req.Name.String()),
			}
			resolved[i], errs[i] = s.resolver.Resolve(ctx, req.Source, rctx)
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	res := &Resolution{Decisions: make(map[string]Decision)}
	candidates := make(map[string][]domain.Candidate)
	for i, req := range requests {
		name := req.Name.String()
		if _, seen := candidates[name]; !seen {
			res.Order = append(res.Order, name)
		}
		candidates[name] = append(candidates[name], domain.Candidate{
			Requester: req.Requester,
			Requested: req.Source,
			Source:    resolved[i],
		})
	}

	var conflicts []error
	for _, name := range res.Order {
		src, err := decide(name, candidates[name])
		if err != nil {
			conflicts = append(conflicts, err)
			continue
		}
		res.Decisions[name] = Decision{Name: name, Source: src, Candidates: candidates[name]}
	}
	if len(conflicts) > 0 {
		return nil, errors.Join(conflicts...)
	}
	return res, nil
}

func decide(name string, candidates []domain.Candidate) (domain.ResolvedSource, error) {
	var paths []domain.Candidate
	for _, c := range candidates {
		if c.Source.IsPath() {
			paths = append(paths, c)
		}
	}

	pool := candidates
	if len(paths) > 0 {
		pool = paths
	}

	first := pool[0].Source
	for _, c := range pool[1:] {
		if !c.Source.Equal(first) {
			return domain.ResolvedSource{}, &domain.ConflictError{Name: name, Candidates: candidates}
		}
	}
	return first, nil
}
