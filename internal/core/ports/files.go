package ports

// SourceFileResolver expands declared source file patterns.
//
//go:generate go run go.uber.org/mock/mockgen -source=files.go -destination=mocks/mock_files.go -package=mocks
type SourceFileResolver interface {
	// ResolveSources expands patterns relative to root into sorted file paths.
	ResolveSources(patterns []string, root string) ([]string, error)
}

// Hasher derives short stable names from identities.
type Hasher interface {
	// Key hashes parts into a fixed-width hex string.
	Key(parts ...string) string
}
