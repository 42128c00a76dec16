package ports

import "go.trai.ch/ipkg/internal/core/domain"

// LockfileStore persists lockfiles.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type LockfileStore interface {
	// Load reads the lockfile in root. It returns nil, nil if none exists.
	Load(root string) (*domain.Lockfile, error)

	// Save writes lock into root.
	Save(root string, lock *domain.Lockfile) error
}
