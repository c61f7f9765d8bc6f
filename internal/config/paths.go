package config

import (
	"os"
	"path/filepath"
)

// EnvConfigPath names an explicit config file and wins over every search location
const EnvConfigPath = "SITEDIR_CONFIG"

// File names tried per location, YAML before TOML
var (
	localNames = []string{"sitedir.yaml", "sitedir.toml"}
	dirNames   = []string{"config.yaml", "config.toml"}
)

// searchPaths lists config locations from most to least specific: the
// explicit env path, the working directory, the user config dir, /etc.
func searchPaths() []string {
	var paths []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}
	for _, name := range localNames {
		if abs, err := filepath.Abs(name); err == nil {
			paths = append(paths, abs)
		}
	}
	var dirs []string
	if userDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userDir, "sitedir"))
	}
	dirs = append(dirs, "/etc/sitedir")
	for _, dir := range dirs {
		for _, name := range dirNames {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths
}

// FindConfigPath returns the first existing regular file among the search
// locations, or "" when there is none.
func FindConfigPath() string {
	for _, p := range searchPaths() {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}
