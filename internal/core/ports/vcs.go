package ports

import "context"

// VCS is the version-control tool backing git and registry sources.
// Remotes are identified by URL. Each adapter keeps one local database per remote.
//
//go:generate go run go.uber.org/mock/mockgen -source=vcs.go -destination=mocks/mock_vcs.go -package=mocks
type VCS interface {
	// ResolveRef returns the commit a branch, tag or revision names.
	ResolveRef(ctx context.Context, url, ref string) (string, error)

	// ReadFile returns the content of path at rev. A missing path yields nil, nil.
	ReadFile(ctx context.Context, url, rev, path string) ([]byte, error)

	// Checkout writes the tree of rev into dest, creating it if needed.
	Checkout(ctx context.Context, url, rev, dest string) error
}
