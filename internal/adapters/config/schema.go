package config

import "gopkg.in/yaml.v3"

// Manifest represents the structure of an ipkg.yml file.
type Manifest struct {
	Package      PackageDTO `yaml:"package"`
	Dependencies yaml.Node  `yaml:"dependencies"`
	Sources      []string   `yaml:"sources"`
}

// PackageDTO holds the package header of a manifest.
type PackageDTO struct {
	Name    string   `yaml:"name"`
	Authors []string `yaml:"authors"`
}

// DependencyDTO is one entry of the dependencies table.
// A bare scalar entry is shorthand for a registry version constraint.
type DependencyDTO struct {
	Git     string `yaml:"git"`
	Rev     string `yaml:"rev"`
	Version string `yaml:"version"`
	Path    string `yaml:"path"`
}

// LocalFile represents the structure of an ipkg.local.yml file.
type LocalFile struct {
	Overrides map[string]string `yaml:"overrides"`
}

// SettingsDTO mirrors domain.Settings with keys as they appear in settings files and IPKG_ variables.
type SettingsDTO struct {
	CacheDir    string            `mapstructure:"cache_dir"`
	GitToken    string            `mapstructure:"git_token"`
	Jobs        int               `mapstructure:"jobs"`
	Retries     int               `mapstructure:"retries"`
	RetryDelay  string            `mapstructure:"retry_delay"`
	RegistryURL string            `mapstructure:"registry_url"`
	Offline     bool              `mapstructure:"offline"`
	Overrides   map[string]string `mapstructure:"overrides"`
}
