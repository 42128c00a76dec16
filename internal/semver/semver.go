// Package semver selects versions for registry releases and git tags.
package semver

import (
	mm "github.com/Masterminds/semver/v3"
	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/zerr"
)

// Version is a parsed semantic version.
type Version struct {
	v *mm.Version
}

// Constraint is a parsed version constraint such as "^1.2", "~0.4" or ">=1.0, <2.0".
type Constraint struct {
	c *mm.Constraints
}

// ParseVersion parses raw, accepting a leading "v".
func ParseVersion(raw string) (Version, error) {
	v, err := mm.NewVersion(raw)
	if err != nil {
		return Version{}, zerr.With(zerr.Wrap(err, "invalid version"), "version", raw)
	}
	return Version{v: v}, nil
}

// ParseConstraint parses raw. Failures wrap domain.ErrInvalidConstraint.
func ParseConstraint(raw string) (Constraint, error) {
	c, err := mm.NewConstraint(raw)
	if err != nil {
		return Constraint{}, zerr.With(zerr.Wrap(domain.ErrInvalidConstraint, err.Error()), "constraint", raw)
	}
	return Constraint{c: c}, nil
}

// IsConstraint reports whether raw parses as a constraint.
func IsConstraint(raw string) bool {
	_, err := mm.NewConstraint(raw)
	return err == nil
}

// String returns the version as originally written.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.Original()
}

// Check reports whether v satisfies c.
func (c Constraint) Check(v Version) bool {
	if v.v == nil || c.c == nil {
		return false
	}
	return c.c.Check(v.v)
}

// Compare returns -1, 0 or 1 as a is lower than, equal to or higher than b.
func Compare(a, b Version) int {
	switch {
	case a.v == nil && b.v == nil:
		return 0
	case a.v == nil:
		return -1
	case b.v == nil:
		return 1
	}
	return a.v.Compare(b.v)
}

// MaxSatisfying returns the index of the highest entry of raw satisfying c.
// Entries that are not versions are skipped. Among equal versions the first wins.
func MaxSatisfying(c Constraint, raw []string) (int, bool) {
	best := -1
	var bestVersion Version
	for i, r := range raw {
		v, err := ParseVersion(r)
		if err != nil || !c.Check(v) {
			continue
		}
		if best < 0 || Compare(v, bestVersion) > 0 {
			best, bestVersion = i, v
		}
	}
	return best, best >= 0
}
