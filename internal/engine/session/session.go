// Package session owns one resolved dependency graph and answers queries about it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Session is the outcome of resolving a workspace. It is read-only once opened,
// except for the checkouts recorded by Checkout.
type Session struct {
	root      *domain.Manifest
	graph     *domain.Graph
	ranks     [][]domain.PackageID
	requests  []domain.DependencyRequest
	manifests map[domain.PackageID]*domain.Manifest

	mu        sync.RWMutex
	checkouts map[domain.PackageID]domain.Checkout
}

// Graph returns the dependency graph.
func (s *Session) Graph() *domain.Graph {
	return s.graph
}

// Packages returns the package ids grouped by rank. Rank 0 holds packages without dependencies.
func (s *Session) Packages() [][]domain.PackageID {
	return s.ranks
}

// DependencyName returns the name of id. It panics if id does not belong to the session.
func (s *Session) DependencyName(id domain.PackageID) string {
	pkg, ok := s.graph.Package(id)
	if !ok {
		panic(fmt.Sprintf("session: unknown package id %d", id))
	}
	return pkg.Name.String()
}

// Package returns the package with the given id.
func (s *Session) Package(id domain.PackageID) (domain.Package, bool) {
	return s.graph.Package(id)
}

// PackageByName returns the package named name.
func (s *Session) PackageByName(name string) (domain.Package, bool) {
	id, ok := s.graph.Lookup(name)
	if !ok {
		return domain.Package{}, false
	}
	return s.graph.Package(id)
}

// Dependencies returns the direct dependencies of id in declaration order.
func (s *Session) Dependencies(id domain.PackageID) []domain.PackageID {
	return s.graph.Dependencies(id)
}

// Parents returns the packages depending on id.
func (s *Session) Parents(id domain.PackageID) []domain.PackageID {
	return s.graph.Parents(id)
}

// Requests returns every request made for name, in discovery order.
func (s *Session) Requests(name string) []domain.DependencyRequest {
	var out []domain.DependencyRequest
	for _, req := range s.requests {
		if req.Name.String() == name {
			out = append(out, req)
		}
	}
	return out
}

// Root returns the workspace manifest.
func (s *Session) Root() *domain.Manifest {
	return s.root
}

// Manifest returns the manifest of id, or nil if the package has none.
func (s *Session) Manifest(id domain.PackageID) *domain.Manifest {
	return s.manifests[id]
}

// Lockfile snapshots the session for ipkg.lock.
func (s *Session) Lockfile() *domain.Lockfile {
	return domain.NewLockfile(s.graph, s.requests)
}

// Checkout materializes ids, or every package when ids is empty, running at most jobs at once.
// Every failure is reported.
func (s *Session) Checkout(ctx context.Context, mgr ports.CheckoutManager, jobs int, ids ...domain.PackageID) ([]domain.Checkout, error) {
	if len(ids) == 0 {
		for _, rank := range s.ranks {
			ids = append(ids, rank...)
		}
	}

	out := make([]domain.Checkout, len(ids))
	errs := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(max(jobs, 1))
	for i, id := range ids {
		pkg, ok := s.graph.Package(id)
		if !ok {
			errs[i] = zerr.With(zerr.Wrap(domain.ErrUnknownPackage, "cannot check out"), "id", uint32(id))
			continue
		}
		g.Go(func() error {
			co, err := mgr.Ensure(ctx, pkg.Name.String(), pkg.Source)
			if err != nil {
				errs[i] = err
				return nil
			}
			out[i] = co
			s.mu.Lock()
			s.checkouts[id] = co
			s.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckoutOf returns the checkout recorded for id by Checkout.
func (s *Session) CheckoutOf(id domain.PackageID) (domain.Checkout, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	co, ok := s.checkouts[id]
	return co, ok
}
