package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix         = "IPKG"
	defaultRetries    = 3
	defaultRetryDelay = 500 * time.Millisecond
)

var _ ports.SettingsLoader = (*SettingsLoader)(nil)

// SettingsLoader implements ports.SettingsLoader with viper.
// Sources in increasing precedence: defaults, the user config file, the workspace
// ipkg.config.yml, IPKG_* variables. Overrides from ipkg.local.yml are merged last.
type SettingsLoader struct {
	userConfigDir func() (string, error)
}

// NewSettingsLoader creates a settings loader using the platform config directory.
func NewSettingsLoader() *SettingsLoader {
	return &SettingsLoader{userConfigDir: os.UserConfigDir}
}

// FindRoot returns the nearest directory at or above cwd holding a manifest.
// Without one, cwd itself is the root.
func FindRoot(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(domain.ErrSettingsLoadFailed, err.Error())
	}

	for dir := abs; ; {
		if _, err := os.Stat(filepath.Join(dir, domain.ManifestFileName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}

// Load computes the effective settings for the workspace containing cwd.
func (s *SettingsLoader) Load(cwd string) (*domain.Settings, error) {
	root, err := FindRoot(cwd)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("cache_dir", domain.DefaultCachePath(root))
	v.SetDefault("git_token", "")
	v.SetDefault("jobs", runtime.NumCPU())
	v.SetDefault("retries", defaultRetries)
	v.SetDefault("retry_delay", defaultRetryDelay.String())
	v.SetDefault("registry_url", "")
	v.SetDefault("offline", false)
	v.SetDefault("overrides", map[string]string{})

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yaml")

	for _, path := range s.configFiles(root) {
		if !fileExists(path) {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrSettingsLoadFailed, err.Error()), "path", path)
		}
	}

	var dto SettingsDTO
	if err := v.Unmarshal(&dto); err != nil {
		return nil, zerr.Wrap(domain.ErrSettingsLoadFailed, err.Error())
	}

	delay, err := time.ParseDuration(dto.RetryDelay)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrSettingsLoadFailed, err.Error()), "retry_delay", dto.RetryDelay)
	}

	local, err := readLocalFile(root)
	if err != nil {
		return nil, err
	}

	overrides := make(map[string]string, len(dto.Overrides)+len(local.Overrides))
	for name, path := range dto.Overrides {
		overrides[name] = absFrom(root, path)
	}
	for name, path := range local.Overrides {
		overrides[name] = absFrom(root, path)
	}

	jobs := dto.Jobs
	if jobs < 1 {
		jobs = 1
	}

	return &domain.Settings{
		Root:        root,
		CacheDir:    absFrom(root, dto.CacheDir),
		GitToken:    dto.GitToken,
		Jobs:        jobs,
		Retries:     max(dto.Retries, 0),
		RetryDelay:  delay,
		RegistryURL: dto.RegistryURL,
		Offline:     dto.Offline,
		Overrides:   overrides,
	}, nil
}

// SaveOverride records name -> path in root's local file.
func (s *SettingsLoader) SaveOverride(root, name, path string) error {
	local, err := readLocalFile(root)
	if err != nil {
		return err
	}
	if local.Overrides == nil {
		local.Overrides = make(map[string]string)
	}
	local.Overrides[name] = path

	data, err := yaml.Marshal(local)
	if err != nil {
		return zerr.Wrap(domain.ErrSettingsLoadFailed, err.Error())
	}

	target := filepath.Join(root, domain.LocalFileName)
	if err := atomicWriteFile(target, data); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write local overrides"), "path", target)
	}
	return nil
}

func (s *SettingsLoader) configFiles(root string) []string {
	files := make([]string, 0, 2)
	if s.userConfigDir != nil {
		if dir, err := s.userConfigDir(); err == nil {
			files = append(files, filepath.Join(dir, "ipkg", "config.yml"))
		}
	}
	return append(files, filepath.Join(root, domain.ConfigFileName))
}

func readLocalFile(root string) (*LocalFile, error) {
	path := filepath.Join(root, domain.LocalFileName)
	data, err := os.ReadFile(path) //nolint:gosec // path is inside the workspace root
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &LocalFile{}, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrSettingsLoadFailed, err.Error()), "path", path)
	}

	var local LocalFile
	if err := yaml.Unmarshal(data, &local); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrSettingsLoadFailed, err.Error()), "path", path)
	}
	return &local, nil
}

func absFrom(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// atomicWriteFile writes data to a temp file next to path and renames it into place.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ipkg-write-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
