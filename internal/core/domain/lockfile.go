package domain

import "slices"

// Lockfile pins every package of a successful resolution so later runs reproduce it.
type Lockfile struct {
	// Version is the lockfile format version.
	Version int

	// Packages maps package names to their pinned sources.
	Packages map[string]LockedPackage
}

// LockedPackage is the pinned state of one package.
type LockedPackage struct {
	Source       ResolvedSource
	Dependencies []string

	// Requests are the descriptors, rendered as strings, that resolved to Source.
	// A pin only applies to a request still listed here.
	Requests []string
}

// Pin returns the locked entry for name, if any.
func (l *Lockfile) Pin(name string) *LockedPackage {
	if l == nil {
		return nil
	}
	p, ok := l.Packages[name]
	if !ok {
		return nil
	}
	return &p
}

// Matches reports whether the pin was recorded for desc.
func (p *LockedPackage) Matches(desc SourceDescriptor) bool {
	return p != nil && slices.Contains(p.Requests, desc.String())
}

// NewLockfile snapshots a resolved graph together with the requests that produced it.
func NewLockfile(g *Graph, requests []DependencyRequest) *Lockfile {
	byName := make(map[string][]string)
	for _, req := range requests {
		name := req.Name.String()
		desc := req.Source.String()
		if !slices.Contains(byName[name], desc) {
			byName[name] = append(byName[name], desc)
		}
	}

	lock := &Lockfile{
		Version:  LockfileVersion,
		Packages: make(map[string]LockedPackage, g.Len()),
	}
	for pkg := range g.Packages() {
		deps := g.Dependencies(pkg.ID)
		names := make([]string, 0, len(deps))
		for _, dep := range deps {
			p, _ := g.Package(dep)
			names = append(names, p.Name.String())
		}
		reqs := byName[pkg.Name.String()]
		slices.Sort(reqs)
		lock.Packages[pkg.Name.String()] = LockedPackage{
			Source:       pkg.Source,
			Dependencies: names,
			Requests:     reqs,
		}
	}
	return lock
}
