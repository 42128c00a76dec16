package domain

import "path/filepath"

const (
	// IpkgDirName is the name of the internal workspace directory.
	IpkgDirName = ".ipkg"

	// GitDirName is the name of the directory holding git databases and checkouts.
	GitDirName = "git"

	// DBDirName is the name of the bare git database directory.
	DBDirName = "db"

	// CheckoutsDirName is the name of the checkout directory.
	CheckoutsDirName = "checkouts"

	// RegistryDirName is the name of the registry index cache directory.
	RegistryDirName = "registry"

	// ManifestFileName is the name of the package manifest.
	ManifestFileName = "ipkg.yml"

	// LockFileName is the name of the lockfile written next to the root manifest.
	LockFileName = "ipkg.lock"

	// LocalFileName is the name of the local override file written by clone.
	LocalFileName = "ipkg.local.yml"

	// ConfigFileName is the name of the optional tool settings file.
	ConfigFileName = "ipkg.config.yml"

	// ReadyMarkerName is the file marking a checkout directory as complete.
	ReadyMarkerName = ".ipkg-ready"

	// TempPrefix prefixes in-progress checkout directories.
	TempPrefix = ".tmp-"

	// LockfileVersion is the current lockfile format version.
	LockfileVersion = 1

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultCachePath returns the default cache directory for a workspace root.
func DefaultCachePath(root string) string {
	return filepath.Join(root, IpkgDirName)
}

// GitDBPath returns the directory holding bare git databases.
// It joins the cache dir, git and db.
func GitDBPath(cacheDir string) string {
	return filepath.Join(cacheDir, GitDirName, DBDirName)
}

// CheckoutsPath returns the directory holding materialized checkouts.
// It joins the cache dir, git and checkouts.
func CheckoutsPath(cacheDir string) string {
	return filepath.Join(cacheDir, GitDirName, CheckoutsDirName)
}

// RegistryCachePath returns the directory caching registry index documents.
func RegistryCachePath(cacheDir string) string {
	return filepath.Join(cacheDir, RegistryDirName)
}
