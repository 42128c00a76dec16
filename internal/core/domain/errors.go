package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrUnreachableSource is returned when a git remote cannot be fetched, a path does not exist
	// or a registry does not know the requested package.
	ErrUnreachableSource = zerr.New("source is unreachable")

	// ErrNoMatchingVersion is returned when no published version satisfies a version constraint.
	ErrNoMatchingVersion = zerr.New("no version matches the requested constraint")

	// ErrInvalidReference is returned when a git reference names no commit in the remote.
	ErrInvalidReference = zerr.New("reference does not resolve to a revision")

	// ErrInvalidConstraint is returned when a version constraint cannot be parsed.
	ErrInvalidConstraint = zerr.New("invalid version constraint")

	// ErrConflictingSource is returned when requesters of one package name disagree on its source.
	ErrConflictingSource = zerr.New("conflicting sources requested for package")

	// ErrCyclicDependency is returned when the dependency graph contains a cycle.
	ErrCyclicDependency = zerr.New("dependency cycle detected")

	// ErrCloneFailed is returned when a checkout could not be materialized.
	ErrCloneFailed = zerr.New("failed to materialize checkout")

	// ErrPathConflict is returned when a checkout destination is occupied by something other than a directory.
	ErrPathConflict = zerr.New("checkout path is occupied by unrelated content")

	// ErrUnknownPackage is returned when an operation references a package id that was never added.
	ErrUnknownPackage = zerr.New("unknown package")

	// ErrDuplicateEdge is returned when the same dependency edge is added twice.
	ErrDuplicateEdge = zerr.New("dependency edge already exists")

	// ErrSelfDependency is returned when a package is made to depend on itself.
	ErrSelfDependency = zerr.New("package cannot depend on itself")

	// ErrResolutionUnstable is returned when transitive discovery does not settle.
	ErrResolutionUnstable = zerr.New("dependency resolution did not converge")

	// ErrManifestNotFound is returned when no manifest exists in the workspace root.
	ErrManifestNotFound = zerr.New("could not find " + ManifestFileName)

	// ErrManifestReadFailed is returned when a manifest cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest")

	// ErrManifestParseFailed is returned when a manifest is not valid YAML.
	ErrManifestParseFailed = zerr.New("failed to parse manifest")

	// ErrInvalidManifest is returned when a manifest is well-formed YAML but semantically invalid.
	ErrInvalidManifest = zerr.New("invalid manifest")

	// ErrLockReadFailed is returned when the lockfile cannot be read.
	ErrLockReadFailed = zerr.New("failed to read lockfile")

	// ErrLockParseFailed is returned when the lockfile cannot be parsed.
	ErrLockParseFailed = zerr.New("failed to parse lockfile")

	// ErrLockWriteFailed is returned when the lockfile cannot be written.
	ErrLockWriteFailed = zerr.New("failed to write lockfile")

	// ErrSettingsLoadFailed is returned when tool settings cannot be loaded.
	ErrSettingsLoadFailed = zerr.New("failed to load settings")

	// ErrRegistryIndexFailed is returned when a registry index cannot be fetched or decoded.
	ErrRegistryIndexFailed = zerr.New("failed to read registry index")

	// ErrGitOperationFailed is returned when a local git database cannot be read or written.
	ErrGitOperationFailed = zerr.New("git operation failed")

	// ErrOffline is returned when a network operation is required while running offline.
	ErrOffline = zerr.New("network access required while offline")

	// ErrUnknownPackageName is returned when a command names a package that is not in the graph.
	ErrUnknownPackageName = zerr.New("no package with this name in the dependency graph")
)

// Candidate is one requester's view of a conflicting package.
type Candidate struct {
	Requester string
	Requested SourceDescriptor
	Source    ResolvedSource
}

// ConflictError lists every requester of a package whose resolved sources disagree.
type ConflictError struct {
	Name       string
	Candidates []Candidate
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	b.WriteString(ErrConflictingSource.Error())
	b.WriteString(" \"")
	b.WriteString(e.Name)
	b.WriteString("\":")
	for _, c := range e.Candidates {
		b.WriteString("\n  - ")
		b.WriteString(c.Requester)
		b.WriteString(" requests ")
		b.WriteString(c.Requested.String())
		b.WriteString(" (resolved to ")
		b.WriteString(c.Source.String())
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap allows errors.Is(err, ErrConflictingSource).
func (e *ConflictError) Unwrap() error {
	return ErrConflictingSource
}

// CycleError carries the packages forming a dependency cycle in edge order.
// The cycle is closed: the last element depends on the first.
type CycleError struct {
	Cycle []PackageID
	Names []string
}

func (e *CycleError) Error() string {
	if len(e.Names) == 0 {
		return ErrCyclicDependency.Error()
	}
	return ErrCyclicDependency.Error() + ": " + strings.Join(e.Names, " -> ") + " -> " + e.Names[0]
}

// Unwrap allows errors.Is(err, ErrCyclicDependency).
func (e *CycleError) Unwrap() error {
	return ErrCyclicDependency
}
