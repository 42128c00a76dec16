package config

// NewSettingsLoaderWithUserDir returns a loader reading user settings from dir.
func NewSettingsLoaderWithUserDir(dir string) *SettingsLoader {
	return &SettingsLoader{userConfigDir: func() (string, error) { return dir, nil }}
}
