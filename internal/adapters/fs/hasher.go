package fs

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/ipkg/internal/core/ports"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher derives cache names with XXHash.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Key hashes parts, separated by null bytes, into 16 hex digits.
func (h *Hasher) Key(parts ...string) string {
	hasher := xxhash.New()
	for _, p := range parts {
		_, _ = hasher.WriteString(p)
		_, _ = hasher.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", hasher.Sum64())
}
