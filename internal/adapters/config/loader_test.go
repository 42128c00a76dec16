package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ipkg/internal/adapters/config"
	"go.trai.ch/ipkg/internal/core/domain"
)

func TestParse_Success(t *testing.T) {
	content := `
package:
  name: soc
  authors: ["someone"]
dependencies:
  uart: "^1.2"
  axi:
    git: https://example.com/axi.git
    rev: main
  common:
    path: ../common
  dma:
    git: https://example.com/dma
    version: ">=0.3, <0.5"
  spi:
    version: "2.0"
sources:
  - src/**/*.sv
`
	m, err := config.NewLoader().Parse([]byte(content), "/work/soc")
	require.NoError(t, err)

	assert.Equal(t, "soc", m.Name)
	assert.Equal(t, "/work/soc", m.Dir)
	assert.Equal(t, []string{"src/**/*.sv"}, m.Sources)

	expected := []domain.DependencySpec{
		{Name: "uart", Source: domain.RegistrySource("uart", "^1.2")},
		{Name: "axi", Source: domain.GitSource("https://example.com/axi.git", "main")},
		{Name: "common", Source: domain.PathSource("../common")},
		{Name: "dma", Source: domain.GitSource("https://example.com/dma", ">=0.3, <0.5")},
		{Name: "spi", Source: domain.RegistrySource("spi", "2.0")},
	}
	assert.Equal(t, expected, m.Dependencies, "declaration order is preserved")

	reqs := m.Requests(domain.RootRequester)
	require.Len(t, reqs, 5)
	assert.Equal(t, domain.RootRequester, reqs[0].Requester)
	assert.Equal(t, "uart", reqs[0].Name.String())
	assert.Equal(t, "/work/soc", reqs[2].Dir)
}

func TestParse_NoDependencies(t *testing.T) {
	m, err := config.NewLoader().Parse([]byte("package:\n  name: leaf\n"), "/work/leaf")
	require.NoError(t, err)
	assert.Empty(t, m.Dependencies)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{name: "malformed yaml", content: "dependencies: [", target: domain.ErrManifestParseFailed},
		{name: "dependencies not a mapping", content: "dependencies:\n  - uart\n", target: domain.ErrInvalidManifest},
		{name: "duplicate dependency", content: "dependencies:\n  uart: \"1\"\n  uart: \"2\"\n", target: domain.ErrInvalidManifest},
		{name: "path with git", content: "dependencies:\n  x:\n    path: ../x\n    git: https://example.com/x\n", target: domain.ErrInvalidManifest},
		{name: "rev and version", content: "dependencies:\n  x:\n    git: https://example.com/x\n    rev: main\n    version: \"1\"\n", target: domain.ErrInvalidManifest},
		{name: "rev without git", content: "dependencies:\n  x:\n    version: \"1\"\n    rev: main\n", target: domain.ErrInvalidManifest},
		{name: "empty table", content: "dependencies:\n  x: {}\n", target: domain.ErrInvalidManifest},
		{name: "name with separator", content: "dependencies:\n  vendor/uart: \"1\"\n", target: domain.ErrInvalidManifest},
		{name: "name escaping cache", content: "dependencies:\n  \"../x\":\n    git: https://example.com/x\n", target: domain.ErrInvalidManifest},
		{name: "dot name", content: "dependencies:\n  \".\": \"1\"\n", target: domain.ErrInvalidManifest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.NewLoader().Parse([]byte(tt.content), "/work")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestLoad_MissingManifest(t *testing.T) {
	m, err := config.NewLoader().Load(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestLoad_FromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ManifestFileName),
		[]byte("package:\n  name: leaf\ndependencies:\n  b:\n    path: ../b\n"), 0o600))

	m, err := config.NewLoader().Load(dir)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "leaf", m.Name)
	assert.Equal(t, dir, m.Dir)
	assert.Equal(t, domain.PathSource("../b"), m.Dependencies[0].Source)
}

func TestLoad_ErrorCarriesPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, domain.ManifestFileName)
	require.NoError(t, os.WriteFile(path, []byte("dependencies:\n  x: {}\n"), 0o600))

	_, err := config.NewLoader().Load(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidManifest)
	assert.Contains(t, err.Error(), "dependency needs one of git, path or version")
}
