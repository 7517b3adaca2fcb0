package state

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// AppDirName is the directory name used under the user config and cache roots.
	AppDirName = "go-northstar"

	// ConfigFileName is the settings document inside the config directory.
	ConfigFileName = "config.yaml"

	// CacheFileName is the request cache document inside the cache directory.
	CacheFileName = "cached-requests.json"

	// LegacyCacheFileName is the request cache document written by older
	// launcher releases directly under the user cache root. It is only ever
	// deleted, never written.
	LegacyCacheFileName = "northstar-requests.json"

	// LogFileName is the default log file inside the config directory.
	LogFileName = "go-northstar.log"
)

// GetConfigDir returns the launcher configuration directory.
// It honours XDG_CONFIG_HOME and falls back to ~/.config/go-northstar.
func GetConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configHome, AppDirName), nil
}

// GetConfigPath returns the path to the settings document.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// GetLogPath returns the default log file path.
func GetLogPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, LogFileName), nil
}

// getCacheRoot returns the per-user cache root (XDG_CACHE_HOME on Linux).
func getCacheRoot() (string, error) {
	root, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return root, nil
}

// GetCacheDir returns the directory holding the request cache document.
func GetCacheDir() (string, error) {
	root, err := getCacheRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, AppDirName), nil
}

// GetCachePath returns the path to the request cache document.
func GetCachePath() (string, error) {
	cacheDir, err := GetCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, CacheFileName), nil
}

// GetLegacyCachePath returns the path of the pre-rename cache document.
func GetLegacyCachePath() (string, error) {
	root, err := getCacheRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, LegacyCacheFileName), nil
}

// EnsureDir ensures that a directory exists, creating it if necessary.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory %s: %w", path, err)
	}
	return nil
}

// ReplaceNonDir makes sure path is a directory. Symlinks are followed, so a
// link to a directory is kept as is. Anything else occupying the path (a
// regular file, a dangling symlink) is removed first.
func ReplaceNonDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err != nil && !os.IsNotExist(err):
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if _, err := os.Lstat(path); err == nil {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove non-directory %s: %w", path, err)
		}
	}
	return EnsureDir(path)
}
