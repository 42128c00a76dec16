package resolver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ipkg/internal/adapters/config"
	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports/mocks"
	"go.trai.ch/ipkg/internal/engine/resolver"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	vcs      *mocks.MockVCS
	registry *mocks.MockRegistryIndex
	resolver *resolver.Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()

	vcs := mocks.NewMockVCS(ctrl)
	index := mocks.NewMockRegistryIndex(ctrl)
	return &fixture{
		vcs:      vcs,
		registry: index,
		resolver: resolver.New(vcs, index, config.NewLoader(), log),
	}
}

func TestResolve_Git(t *testing.T) {
	f := newFixture(t)
	desc := domain.GitSource("https://example.com/uart.git", "v1.0")
	f.vcs.EXPECT().ResolveRef(gomock.Any(), desc.URL, "v1.0").Return("aaa", nil).Times(1)

	for range 3 {
		got, err := f.resolver.Resolve(context.Background(), desc, domain.ResolveContext{Name: "uart"})
		require.NoError(t, err)
		assert.Equal(t, domain.ResolvedSource{Kind: domain.SourceGit, URL: desc.URL, Revision: "aaa"}, got)
	}
}

func TestResolve_GitError(t *testing.T) {
	f := newFixture(t)
	desc := domain.GitSource("https://example.com/uart.git", "nope")
	f.vcs.EXPECT().ResolveRef(gomock.Any(), desc.URL, "nope").Return("", domain.ErrInvalidReference)

	_, err := f.resolver.Resolve(context.Background(), desc, domain.ResolveContext{Name: "uart"})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestResolve_CancelledIsNotRemembered(t *testing.T) {
	f := newFixture(t)
	desc := domain.GitSource("https://example.com/uart.git", "main")
	gomock.InOrder(
		f.vcs.EXPECT().ResolveRef(gomock.Any(), desc.URL, "main").
			DoAndReturn(func(ctx context.Context, _, _ string) (string, error) {
				return "", ctx.Err()
			}),
		f.vcs.EXPECT().ResolveRef(gomock.Any(), desc.URL, "main").Return("bbb", nil),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.resolver.Resolve(ctx, desc, domain.ResolveContext{Name: "uart"})
	require.Error(t, err)

	got, err := f.resolver.Resolve(context.Background(), desc, domain.ResolveContext{Name: "uart"})
	require.NoError(t, err)
	assert.Equal(t, "bbb", got.Revision)
}

func TestResolve_SharedCallCancelledByOtherCaller(t *testing.T) {
	f := newFixture(t)
	desc := domain.GitSource("https://example.com/uart.git", "main")
	rctx := domain.ResolveContext{Name: "uart"}

	first, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})
	gomock.InOrder(
		f.vcs.EXPECT().ResolveRef(gomock.Any(), desc.URL, "main").
			DoAndReturn(func(ctx context.Context, _, _ string) (string, error) {
				close(started)
				<-release
				cancel()
				return "", ctx.Err()
			}),
		f.vcs.EXPECT().ResolveRef(gomock.Any(), desc.URL, "main").Return("bbb", nil),
	)

	firstErr := make(chan error, 1)
	go func() {
		_, err := f.resolver.Resolve(first, desc, rctx)
		firstErr <- err
	}()
	<-started

	type outcome struct {
		src domain.ResolvedSource
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		src, err := f.resolver.Resolve(context.Background(), desc, rctx)
		second <- outcome{src: src, err: err}
	}()
	close(release)

	require.Error(t, <-firstErr)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "bbb", got.src.Revision)
}

func TestResolve_Path(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "common"), 0o750))
	canonicalRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	got, err := f.resolver.Resolve(context.Background(), domain.PathSource("../common"),
		domain.ResolveContext{Name: "common", Dir: filepath.Join(root, "soc")})
	require.NoError(t, err)
	assert.Equal(t, domain.ResolvedSource{Kind: domain.SourcePath, Path: filepath.Join(canonicalRoot, "common")}, got)

	_, err = f.resolver.Resolve(context.Background(), domain.PathSource("missing"), domain.ResolveContext{Name: "x", Dir: root})
	assert.ErrorIs(t, err, domain.ErrUnreachableSource)

	_, err = f.resolver.Resolve(context.Background(), domain.PathSource("relative"), domain.ResolveContext{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrUnreachableSource)
}

func TestResolve_Registry(t *testing.T) {
	f := newFixture(t)
	releases := []domain.Release{
		{Version: "1.0.0", URL: "https://example.com/uart.git", Revision: "aaa"},
		{Version: "1.4.0", URL: "https://example.com/uart.git"},
		{Version: "2.0.0", URL: "https://example.com/uart.git", Revision: "ccc"},
	}
	f.registry.EXPECT().Releases(gomock.Any(), "uart").Return(releases, nil).AnyTimes()
	f.vcs.EXPECT().ResolveRef(gomock.Any(), "https://example.com/uart.git", "1.4.0").Return("bbb", nil)

	got, err := f.resolver.Resolve(context.Background(), domain.RegistrySource("uart", "^1.0"), domain.ResolveContext{Name: "uart"})
	require.NoError(t, err)
	assert.Equal(t, domain.ResolvedSource{
		Kind: domain.SourceRegistry, URL: "https://example.com/uart.git", Revision: "bbb", Version: "1.4.0",
	}, got)

	_, err = f.resolver.Resolve(context.Background(), domain.RegistrySource("uart", "^3"), domain.ResolveContext{Name: "uart"})
	assert.ErrorIs(t, err, domain.ErrNoMatchingVersion)

	_, err = f.resolver.Resolve(context.Background(), domain.RegistrySource("uart", "not a constraint"), domain.ResolveContext{Name: "uart"})
	assert.ErrorIs(t, err, domain.ErrInvalidConstraint)
}

func TestResolve_Pin(t *testing.T) {
	f := newFixture(t)
	desc := domain.GitSource("https://example.com/uart.git", "main")
	pinned := domain.ResolvedSource{Kind: domain.SourceGit, URL: desc.URL, Revision: "locked"}
	pin := &domain.LockedPackage{Source: pinned, Requests: []string{desc.String()}}

	got, err := f.resolver.Resolve(context.Background(), desc, domain.ResolveContext{Name: "uart", Pin: pin})
	require.NoError(t, err)
	assert.Equal(t, pinned, got, "a matching pin skips the remote")

	other := domain.GitSource("https://example.com/uart.git", "dev")
	f.vcs.EXPECT().ResolveRef(gomock.Any(), other.URL, "dev").Return("fresh", nil)
	got, err = f.resolver.Resolve(context.Background(), other, domain.ResolveContext{Name: "uart", Pin: pin})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Revision, "a changed request ignores the pin")
}

func TestManifest(t *testing.T) {
	f := newFixture(t)
	src := domain.ResolvedSource{Kind: domain.SourceGit, URL: "https://example.com/soc.git", Revision: "abc"}

	f.vcs.EXPECT().ReadFile(gomock.Any(), src.URL, "abc", domain.ManifestFileName).
		Return([]byte("package:\n  name: soc\ndependencies:\n  uart: \"^1\"\n"), nil)
	m, err := f.resolver.Manifest(context.Background(), src)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "soc", m.Name)
	assert.Equal(t, domain.RegistrySource("uart", "^1"), m.Dependencies[0].Source)

	bare := domain.ResolvedSource{Kind: domain.SourceGit, URL: "https://example.com/leaf.git", Revision: "def"}
	f.vcs.EXPECT().ReadFile(gomock.Any(), bare.URL, "def", domain.ManifestFileName).Return(nil, nil)
	m, err = f.resolver.Manifest(context.Background(), bare)
	require.NoError(t, err)
	assert.Nil(t, m)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ManifestFileName), []byte("package:\n  name: local\n"), 0o600))
	m, err = f.resolver.Manifest(context.Background(), domain.ResolvedSource{Kind: domain.SourcePath, Path: dir})
	require.NoError(t, err)
	assert.Equal(t, "local", m.Name)
	assert.Equal(t, dir, m.Dir)
}
