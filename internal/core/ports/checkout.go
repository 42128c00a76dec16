package ports

import (
	"context"

	"go.trai.ch/ipkg/internal/core/domain"
)

// CheckoutManager materializes resolved sources on disk.
//
//go:generate go run go.uber.org/mock/mockgen -source=checkout.go -destination=mocks/mock_checkout.go -package=mocks
type CheckoutManager interface {
	// Ensure returns a Ready checkout of src, materializing it if needed.
	Ensure(ctx context.Context, name string, src domain.ResolvedSource) (domain.Checkout, error)

	// Inspect reports the current on-disk state of src without changing it.
	Inspect(name string, src domain.ResolvedSource) domain.Checkout

	// Clean removes every materialized checkout.
	Clean() error
}
