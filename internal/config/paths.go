package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns the path to the Vecway data directory.
// - Windows: %APPDATA%\vecway
// - Other OS: ~/.vecway
func DataDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "vecway")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".vecway"
	}
	return filepath.Join(home, ".vecway")
}

// DBPath returns the path to the SQLite database file.
func DBPath() string {
	return filepath.Join(DataDir(), "vecway.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0700)
}
