// Package config resolves grove's tunables — data file location, export
// path, retained MVCC root count, default viewport dimensions — through a
// package-level viper.Viper singleton, mirroring the teacher's
// internal/config package: config file discovery by walking up from the
// working directory, then a user config directory, then a home-directory
// fallback, with GROVE_-prefixed environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper singleton. Should be called once at
// application startup, before any Get* call.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	configFileSet := false

	// 1. Walk up from CWD looking for a project-local .grove/config.yaml.
	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			path := filepath.Join(dir, ".grove", "config.yaml")
			if _, err := os.Stat(path); err == nil {
				v.SetConfigFile(path)
				configFileSet = true
				break
			}
		}
	}

	// 2. User config directory (~/.config/grove/config.yaml).
	if !configFileSet {
		if dir, err := os.UserConfigDir(); err == nil {
			path := filepath.Join(dir, "grove", "config.yaml")
			if _, err := os.Stat(path); err == nil {
				v.SetConfigFile(path)
				configFileSet = true
			}
		}
	}

	// 3. Home directory fallback (~/.grove/config.yaml).
	if !configFileSet {
		if home, err := os.UserHomeDir(); err == nil {
			path := filepath.Join(home, ".grove", "config.yaml")
			if _, err := os.Stat(path); err == nil {
				v.SetConfigFile(path)
				configFileSet = true
			}
		}
	}

	v.SetEnvPrefix("GROVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("data", defaultDataPath())
	v.SetDefault("export", defaultExportPath())
	v.SetDefault("roots", 2)
	v.SetDefault("viewport.width", 80)
	v.SetDefault("viewport.height", 24)
	v.SetDefault("lock-timeout", "5s")

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}
	return nil
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".grove/grove.db"
	}
	return filepath.Join(home, ".grove", "grove.db")
}

func defaultExportPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".grove/export.db"
	}
	return filepath.Join(home, ".grove", "export.db")
}

// DataPath is the live environment file path.
func DataPath() string { return getString("data") }

// ExportPath is the sidecar file path used by Export/Import.
func ExportPath() string { return getString("export") }

// Roots is the number of historical MVCC roots requested of the store at
// open time.
func Roots() int { return getInt("roots") }

// ViewportWidth is the default flat-tree viewport width in columns.
func ViewportWidth() int { return getInt("viewport.width") }

// ViewportHeight is the default flat-tree viewport height in rows.
func ViewportHeight() int { return getInt("viewport.height") }

// LockTimeout returns the configured lock-timeout value as a duration
// string. internal/exportimport does not read it: Export and Import wait
// for their advisory lock for that package's fixed lockTimeout (5s).
func LockTimeout() string { return getString("lock-timeout") }

func getString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

func getInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// Set overrides a configuration value, e.g. from a parsed command-line
// flag. No-op before Initialize.
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}
