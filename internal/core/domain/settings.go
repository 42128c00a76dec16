package domain

import "time"

// Settings is the effective tool configuration for one invocation.
type Settings struct {
	// Root is the workspace root holding the root manifest.
	Root string `yaml:"root"`

	// CacheDir holds git databases, checkouts and registry documents.
	CacheDir string `yaml:"cache_dir"`

	// GitToken authenticates https fetches. Empty means anonymous access.
	GitToken string `yaml:"-"`

	// Jobs bounds parallel resolution and checkout work.
	Jobs int `yaml:"jobs"`

	// Retries bounds attempts for transient network failures.
	Retries int `yaml:"retries"`

	// RetryDelay is the initial backoff between attempts. It doubles per attempt.
	RetryDelay time.Duration `yaml:"retry_delay"`

	// RegistryURL is the base of the registry index. It may be an http(s) URL or a directory.
	RegistryURL string `yaml:"registry_url"`

	// Offline forbids network access. Only locked or already fetched sources resolve.
	Offline bool `yaml:"offline"`

	// Overrides force packages to local paths.
	Overrides map[string]string `yaml:"overrides,omitempty"`
}
