package domain

// RootRequester names requests originating from the workspace root manifest.
const RootRequester = "root"

// OverrideRequester names requests originating from path overrides in settings or the local file.
const OverrideRequester = "override"

// DependencyRequest is one requester's intent to depend on a named package.
// This is the input of resolution, before any source is pinned.
type DependencyRequest struct {
	// Requester is the name of the declaring package, RootRequester or OverrideRequester.
	Requester string

	// Name is the requested package name.
	Name InternedString

	// Source is the descriptor as declared.
	Source SourceDescriptor

	// Dir is the directory of the declaring manifest. Relative paths resolve against it.
	Dir string
}

// ResolveContext carries what a resolver needs beyond the descriptor itself.
type ResolveContext struct {
	// Name is the requested package name.
	Name string

	// Dir is the directory relative paths resolve against.
	Dir string

	// Pin is the locked state of Name, if a lockfile is in effect.
	Pin *LockedPackage
}

// Release is one published version of a registry package.
type Release struct {
	Version  string `json:"version"`
	URL      string `json:"git"`
	Revision string `json:"revision"`
}
