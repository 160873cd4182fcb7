package configpaths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// ProjectFileBase is the base name of the project file looked up in a project directory.
const ProjectFileBase = "pageproc"

// DefaultConfigDir returns the platform-specific configuration directory for pageproc.
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, "pageproc"), nil
		}
		return "", errors.New("AppData not set")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "pageproc"), nil
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", "pageproc"), nil
		}
		return "", errors.New("HOME not set")
	}
}

// EnsureDir ensures the directory for a given file path exists.
func EnsureDir(filePath string) error {
	dir := filepath.Dir(filePath)
	return os.MkdirAll(dir, 0o755)
}

// ProjectFile returns the first existing project file in dir, trying
// pageproc.yaml, pageproc.yml, pageproc.toml and pageproc.json in that order.
func ProjectFile(dir string) (string, error) {
	for _, ext := range []string{".yaml", ".yml", ".toml", ".json"} {
		p := filepath.Join(dir, ProjectFileBase+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no pageproc.{yaml,yml,toml,json} found in " + dir)
}

// ConfigCandidatePaths builds candidate paths for CLI config files per format.
// If userPath is provided, it is prioritized and routed to the matching loader by extension.
func ConfigCandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	add := func(slice *[]string, p string) { *slice = append(*slice, p) }

	if userPath != "" {
		switch ext := filepath.Ext(userPath); ext {
		case ".json":
			add(&jsonPaths, userPath)
		case ".yaml", ".yml":
			add(&yamlPaths, userPath)
		case ".toml":
			add(&tomlPaths, userPath)
		default:
			add(&jsonPaths, userPath)
		}
	}

	// Config home
	if dir, err := DefaultConfigDir(); err == nil {
		add(&jsonPaths, filepath.Join(dir, "config.json"))
		add(&yamlPaths, filepath.Join(dir, "config.yaml"))
		add(&yamlPaths, filepath.Join(dir, "config.yml"))
		add(&tomlPaths, filepath.Join(dir, "config.toml"))
	}

	// System-wide (unix)
	if runtime.GOOS != "windows" {
		add(&jsonPaths, "/etc/pageproc/config.json")
		add(&yamlPaths, "/etc/pageproc/config.yaml")
		add(&yamlPaths, "/etc/pageproc/config.yml")
		add(&tomlPaths, "/etc/pageproc/config.toml")
	}

	return
}
