package semver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/semver"
)

func TestConstraint_Check(t *testing.T) {
	c, err := semver.ParseConstraint("^1.2.0")
	require.NoError(t, err)

	for raw, want := range map[string]bool{
		"1.2.0":  true,
		"v1.9.9": true,
		"2.0.0":  false,
		"1.1.9":  false,
	} {
		v, err := semver.ParseVersion(raw)
		require.NoError(t, err)
		assert.Equal(t, want, c.Check(v), raw)
	}
}

func TestParseConstraint_Invalid(t *testing.T) {
	_, err := semver.ParseConstraint("not a constraint !!")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConstraint)
	assert.False(t, semver.IsConstraint("main"))
	assert.True(t, semver.IsConstraint(">=1.0, <2.0"))
}

func TestMaxSatisfying(t *testing.T) {
	c, err := semver.ParseConstraint(">=1.0.0 <2.0.0")
	require.NoError(t, err)

	candidates := []string{"v0.9.0", "v1.0.0", "latest", "v1.5.0", "1.5.0", "v2.0.0"}
	idx, ok := semver.MaxSatisfying(c, candidates)
	require.True(t, ok)
	assert.Equal(t, 3, idx, "first of equal versions wins")

	none, err := semver.ParseConstraint("^3")
	require.NoError(t, err)
	_, ok = semver.MaxSatisfying(none, candidates)
	assert.False(t, ok)
}

func TestCompare(t *testing.T) {
	a, _ := semver.ParseVersion("1.0.0")
	b, _ := semver.ParseVersion("1.0.1")
	assert.Equal(t, -1, semver.Compare(a, b))
	assert.Equal(t, 1, semver.Compare(b, a))
	assert.Equal(t, 0, semver.Compare(a, a))
	assert.Equal(t, "1.0.0", a.String())
}
