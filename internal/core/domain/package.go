package domain

// PackageID identifies a package within one session. Ids are allocated once and never reused.
type PackageID uint32

// Package is a dependency resolved to exactly one source.
type Package struct {
	ID     PackageID
	Name   InternedString
	Source ResolvedSource
}

// Checkout states.
const (
	CheckoutAbsent CheckoutState = iota
	CheckoutCloning
	CheckoutReady
	CheckoutStale
)

// CheckoutState is the lifecycle state of an on-disk checkout.
type CheckoutState uint8

func (s CheckoutState) String() string {
	switch s {
	case CheckoutAbsent:
		return "absent"
	case CheckoutCloning:
		return "cloning"
	case CheckoutReady:
		return "ready"
	case CheckoutStale:
		return "stale"
	default:
		return "invalid"
	}
}

// Checkout is a materialized copy of a resolved source.
type Checkout struct {
	Source ResolvedSource
	Path   string
	State  CheckoutState
}
