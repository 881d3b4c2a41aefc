// Package account manages the on-disk layout for local accounts under
// ~/.mingle and resolves which account a command operates on.
package account

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.mingle.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mingle")
}

// Dir returns the account-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "accounts", name)
}

// LockPath returns the lock file path for an account.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// CacheDBPath returns the local cache database path for an account.
func CacheDBPath(name string) string {
	return filepath.Join(Dir(name), "mingle.db")
}

// LogDir returns the log directory for an account.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the client log file path for an account.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "mingle.log")
}

// TokenPath returns the saved auth token path for an account.
func TokenPath(name string) string {
	return filepath.Join(Dir(name), "token")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the account directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
