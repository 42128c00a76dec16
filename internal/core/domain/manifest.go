package domain

import "strings"

// Manifest declares a package and the sources of its direct dependencies.
type Manifest struct {
	// Name is the package name. It may be empty for a workspace root.
	Name string

	// Dir is the absolute directory the manifest was read from.
	Dir string

	// Dependencies keep declaration order.
	Dependencies []DependencySpec

	// Sources lists the package's source files relative to Dir.
	Sources []string
}

// DependencySpec is a single entry of a manifest's dependency table.
type DependencySpec struct {
	Name   string
	Source SourceDescriptor
}

// Requests converts the manifest's dependencies into requests made by requester.
func (m *Manifest) Requests(requester string) []DependencyRequest {
	reqs := make([]DependencyRequest, 0, len(m.Dependencies))
	for _, dep := range m.Dependencies {
		reqs = append(reqs, DependencyRequest{
			Requester: requester,
			Name:      NewInternedString(dep.Name),
			Source:    dep.Source,
			Dir:       m.Dir,
		})
	}
	return reqs
}

// ValidPackageName reports whether name can be used as a path element.
// Checkout, clone and registry cache paths are built from package names.
func ValidPackageName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
