package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/wmconf/pkg"
)

// baseConfig is the base name of the configuration file holding default flag
// values.
const baseConfig = "config"

// wmConfigEnv names the environment variable that the window manager reads
// its configuration path from.
const wmConfigEnv = "PEKWM_CONFIG_FILE"

// DefaultDirMode is the default permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// configPath returns the absolute path to a file or directory formed by joining
// the global configuration directory path with the given path elements.
//
// If no elements are given, it is equivalent to calling [pkg.ConfigDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// cacheDir returns the cache directory path used for transient files.
func cacheDir() string { return pkg.CacheDir() }

// wmConfigPath returns the window manager configuration file: the path in
// $PEKWM_CONFIG_FILE if set, else ~/.pekwm/config.
func wmConfigPath() string {
	if path := os.Getenv(wmConfigEnv); path != "" {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return filepath.Join(home, ".pekwm", "config")
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return pkg.ErrConfigDir.Wrap(err)
		}
	}

	return nil
}
