// Package domain contains the core domain models of the package dependency graph.
package domain

import (
	"iter"
	"slices"

	"go.trai.ch/zerr"
)

type edge struct {
	from PackageID
	to   PackageID
}

type identity struct {
	name InternedString
	key  string
}

// Graph is the dependency graph of resolved packages.
// Edges point from a package to its dependency.
type Graph struct {
	packages map[PackageID]Package
	order    []PackageID
	index    map[PackageID]int
	byIdent  map[identity]PackageID
	deps     map[PackageID][]PackageID
	edges    map[edge]struct{}
	parents  map[PackageID][]PackageID
	nextID   PackageID
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		packages: make(map[PackageID]Package),
		index:    make(map[PackageID]int),
		byIdent:  make(map[identity]PackageID),
		deps:     make(map[PackageID][]PackageID),
		edges:    make(map[edge]struct{}),
		parents:  make(map[PackageID][]PackageID),
	}
}

// AddPackage registers a package identity and returns its id.
// Adding the same name and source again returns the existing id.
func (g *Graph) AddPackage(name InternedString, src ResolvedSource) PackageID {
	ident := identity{name: name, key: src.Key()}
	if id, ok := g.byIdent[ident]; ok {
		return id
	}

	id := g.nextID
	g.nextID++

	g.packages[id] = Package{ID: id, Name: name, Source: src}
	g.index[id] = len(g.order)
	g.order = append(g.order, id)
	g.byIdent[ident] = id
	return id
}

// AddEdge records that from depends on to.
// A duplicate edge returns ErrDuplicateEdge and leaves the graph unchanged.
func (g *Graph) AddEdge(from, to PackageID) error {
	if _, ok := g.packages[from]; !ok {
		return zerr.With(zerr.Wrap(ErrUnknownPackage, "edge source is not registered"), "id", uint32(from))
	}
	if _, ok := g.packages[to]; !ok {
		return zerr.With(zerr.Wrap(ErrUnknownPackage, "edge target is not registered"), "id", uint32(to))
	}
	if from == to {
		return zerr.With(zerr.Wrap(ErrSelfDependency, "self edge rejected"), "package", g.packages[from].Name.String())
	}

	e := edge{from: from, to: to}
	if _, ok := g.edges[e]; ok {
		err := zerr.With(zerr.Wrap(ErrDuplicateEdge, "edge rejected"), "from", g.packages[from].Name.String())
		return zerr.With(err, "to", g.packages[to].Name.String())
	}

	g.edges[e] = struct{}{}
	g.deps[from] = append(g.deps[from], to)
	g.parents[to] = insertOrdered(g.parents[to], from, g.index)
	return nil
}

// insertOrdered keeps parent lists in package insertion order.
func insertOrdered(ids []PackageID, id PackageID, index map[PackageID]int) []PackageID {
	pos, _ := slices.BinarySearchFunc(ids, id, func(a, b PackageID) int {
		return index[a] - index[b]
	})
	return slices.Insert(ids, pos, id)
}

// Len returns the number of packages.
func (g *Graph) Len() int {
	return len(g.order)
}

// Package returns the package with the given id.
func (g *Graph) Package(id PackageID) (Package, bool) {
	p, ok := g.packages[id]
	return p, ok
}

// Lookup returns the id of the first package added under name.
func (g *Graph) Lookup(name string) (PackageID, bool) {
	for _, id := range g.order {
		if g.packages[id].Name.String() == name {
			return id, true
		}
	}
	return 0, false
}

// Packages yields packages in insertion order.
func (g *Graph) Packages() iter.Seq[Package] {
	return func(yield func(Package) bool) {
		for _, id := range g.order {
			if !yield(g.packages[id]) {
				return
			}
		}
	}
}

// Dependencies returns the direct dependencies of id in first-seen order.
func (g *Graph) Dependencies(id PackageID) []PackageID {
	return slices.Clone(g.deps[id])
}

// Parents returns every package declaring id as a dependency, in insertion order.
func (g *Graph) Parents(id PackageID) []PackageID {
	return slices.Clone(g.parents[id])
}

// RebuildParents recomputes the reverse index from the forward adjacency.
func (g *Graph) RebuildParents() {
	g.parents = make(map[PackageID][]PackageID, len(g.parents))
	for _, from := range g.order {
		for _, to := range g.deps[from] {
			g.parents[to] = append(g.parents[to], from)
		}
	}
}

// DetectCycles walks the graph depth-first and reports the first cycle found.
func (g *Graph) DetectCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[PackageID]int, len(g.order))
	var stack []PackageID

	var visit func(u PackageID) error
	visit = func(u PackageID) error {
		state[u] = visiting
		stack = append(stack, u)

		for _, v := range g.deps[u] {
			switch state[v] {
			case visiting:
				return g.cycleError(stack, v)
			case unvisited:
				if err := visit(v); err != nil {
					return err
				}
			}
		}

		state[u] = done
		stack = stack[:len(stack)-1]
		return nil
	}

	for _, id := range g.order {
		if state[id] == unvisited {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) cycleError(stack []PackageID, back PackageID) error {
	start := slices.Index(stack, back)
	cycle := slices.Clone(stack[start:])
	names := make([]string, len(cycle))
	for i, id := range cycle {
		names[i] = g.packages[id].Name.String()
	}
	return &CycleError{Cycle: cycle, Names: names}
}

// TopologicalRanks groups packages into layers. Rank 0 holds packages without dependencies
// and every package ranks strictly above all of its dependencies.
// Packages within a rank keep insertion order.
func (g *Graph) TopologicalRanks() ([][]PackageID, error) {
	remaining := make(map[PackageID]int, len(g.order))
	var current []PackageID
	for _, id := range g.order {
		remaining[id] = len(g.deps[id])
		if remaining[id] == 0 {
			current = append(current, id)
		}
	}

	var ranks [][]PackageID
	placed := 0
	for len(current) > 0 {
		ranks = append(ranks, current)
		placed += len(current)

		var next []PackageID
		for _, id := range current {
			for _, parent := range g.parents[id] {
				remaining[parent]--
				if remaining[parent] == 0 {
					next = append(next, parent)
				}
			}
		}
		slices.SortFunc(next, func(a, b PackageID) int {
			return g.index[a] - g.index[b]
		})
		current = next
	}

	if placed != len(g.order) {
		if err := g.DetectCycles(); err != nil {
			return nil, err
		}
		return nil, ErrCyclicDependency
	}
	return ranks, nil
}
