package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Organize contains tuning for the organize run.
type Organize struct {
	// Workers is the placement worker pool size. Zero means one worker per CPU.
	Workers int `toml:"workers"`
	// SidecarSuffix identifies sidecar metadata files during traversal.
	SidecarSuffix string `toml:"sidecar_suffix"`
	// ExcludedExtensions are never placed (sidecar byproducts, archives, markup).
	ExcludedExtensions []string `toml:"excluded_extensions"`
	// MaxCollisionProbes caps the `name_N` collision search per file.
	MaxCollisionProbes int `toml:"max_collision_probes"`
}

// Catalog contains configuration for the optional placement manifest.
type Catalog struct {
	// Path of the SQLite manifest database. Empty disables the catalog.
	Path string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for photosort.
type Config struct {
	Organize Organize `toml:"organize"`
	Catalog  Catalog  `toml:"catalog"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/photosort/config.toml")
}

// Load locates, parses, and validates a configuration file. Returns the
// effective config, the resolved path, and whether a file was actually read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("photosort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	c.Organize.SidecarSuffix = strings.ToLower(strings.TrimSpace(c.Organize.SidecarSuffix))
	if c.Organize.SidecarSuffix != "" && !strings.HasPrefix(c.Organize.SidecarSuffix, ".") {
		c.Organize.SidecarSuffix = "." + c.Organize.SidecarSuffix
	}

	cleaned := make([]string, 0, len(c.Organize.ExcludedExtensions))
	for _, ext := range c.Organize.ExcludedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cleaned = append(cleaned, ext)
	}
	c.Organize.ExcludedExtensions = cleaned

	if c.Catalog.Path != "" {
		expanded, err := expandPath(c.Catalog.Path)
		if err != nil {
			return err
		}
		c.Catalog.Path = expanded
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Organize.Workers < 0 {
		return errors.New("organize.workers must not be negative")
	}
	if c.Organize.SidecarSuffix == "" {
		return errors.New("organize.sidecar_suffix must be set")
	}
	if c.Organize.MaxCollisionProbes <= 0 {
		return errors.New("organize.max_collision_probes must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// ExcludedExtensionSet returns the excluded extensions as a lookup set.
func (c *Config) ExcludedExtensionSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Organize.ExcludedExtensions))
	for _, ext := range c.Organize.ExcludedExtensions {
		set[ext] = struct{}{}
	}
	return set
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
