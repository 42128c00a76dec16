package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ipkg/internal/adapters/config"
	"go.trai.ch/ipkg/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, domain.ManifestFileName), "package:\n  name: top\n")
	nested := filepath.Join(root, "rtl", "core")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	got, err := config.FindRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)

	bare := t.TempDir()
	got, err = config.FindRoot(bare)
	require.NoError(t, err)
	assert.Equal(t, bare, got, "without a manifest cwd is the root")
}

func TestSettingsLoader_Defaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, domain.ManifestFileName), "package:\n  name: top\n")

	s, err := config.NewSettingsLoaderWithUserDir(t.TempDir()).Load(root)
	require.NoError(t, err)

	assert.Equal(t, root, s.Root)
	assert.Equal(t, domain.DefaultCachePath(root), s.CacheDir)
	assert.Empty(t, s.GitToken)
	assert.GreaterOrEqual(t, s.Jobs, 1)
	assert.Equal(t, 3, s.Retries)
	assert.Equal(t, 500*time.Millisecond, s.RetryDelay)
	assert.False(t, s.Offline)
	assert.Empty(t, s.Overrides)
}

func TestSettingsLoader_Precedence(t *testing.T) {
	root := t.TempDir()
	user := t.TempDir()

	writeFile(t, filepath.Join(user, "ipkg", "config.yml"), "jobs: 2\nretries: 5\ngit_token: from-file\n")
	writeFile(t, filepath.Join(root, domain.ConfigFileName), "retries: 7\ncache_dir: cache\nretry_delay: 2s\noverrides:\n  uart: ../uart-dev\n")
	writeFile(t, filepath.Join(root, domain.LocalFileName), "overrides:\n  axi: /src/axi\n")
	t.Setenv("IPKG_JOBS", "6")
	t.Setenv("IPKG_OFFLINE", "true")

	s, err := config.NewSettingsLoaderWithUserDir(user).Load(root)
	require.NoError(t, err)

	assert.Equal(t, "from-file", s.GitToken, "user file applies")
	assert.Equal(t, 7, s.Retries, "workspace file beats user file")
	assert.Equal(t, 6, s.Jobs, "environment beats files")
	assert.True(t, s.Offline)
	assert.Equal(t, 2*time.Second, s.RetryDelay)
	assert.Equal(t, filepath.Join(root, "cache"), s.CacheDir)
	assert.Equal(t, map[string]string{
		"uart": filepath.Join(root, "..", "uart-dev"),
		"axi":  "/src/axi",
	}, s.Overrides)
}

func TestSettingsLoader_InvalidDelay(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, domain.ConfigFileName), "retry_delay: soon\n")

	_, err := config.NewSettingsLoaderWithUserDir(t.TempDir()).Load(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSettingsLoadFailed)
}

func TestSettingsLoader_JobsFloor(t *testing.T) {
	root := t.TempDir()
	t.Setenv("IPKG_JOBS", "0")

	s, err := config.NewSettingsLoaderWithUserDir(t.TempDir()).Load(root)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Jobs)
}

func TestSettingsLoader_SaveOverride(t *testing.T) {
	root := t.TempDir()
	loader := config.NewSettingsLoaderWithUserDir(t.TempDir())

	require.NoError(t, loader.SaveOverride(root, "uart", "/src/uart"))
	require.NoError(t, loader.SaveOverride(root, "axi", "/src/axi"))

	s, err := loader.Load(root)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"uart": "/src/uart", "axi": "/src/axi"}, s.Overrides)
}
