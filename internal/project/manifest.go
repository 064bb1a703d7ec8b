// Package project locates and loads the uselint.toml manifest that
// configures a checked tree. The manifest is optional; a missing one means
// defaults.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"uselint/internal/check"
)

// ManifestName is the file the walk-up discovery looks for.
const ManifestName = "uselint.toml"

// Manifest is a loaded configuration file plus its location.
type Manifest struct {
	Path   string
	Root   string
	Config fileConfig
}

type fileConfig struct {
	Check checkConfig `toml:"check"`
	Files filesConfig `toml:"files"`
}

type checkConfig struct {
	MaxLineWidth          *int  `toml:"max_line_width"`
	AllowMultilineImports *bool `toml:"allow_multiline_imports"`
}

type filesConfig struct {
	Extensions []string `toml:"extensions"`
}

// FindManifest walks up from startDir to locate uselint.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads and validates the manifest at path. Unknown keys are
// rejected so typos surface instead of silently meaning defaults.
func Load(path string) (*Manifest, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Check.MaxLineWidth != nil && *cfg.Check.MaxLineWidth < 1 {
		return nil, fmt.Errorf("%s: [check].max_line_width must be at least 1, got %d",
			path, *cfg.Check.MaxLineWidth)
	}
	for _, ext := range cfg.Files.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return nil, fmt.Errorf("%s: [files].extensions entries must start with a dot, got %q", path, ext)
		}
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

// Discover finds and loads the manifest governing startDir. The second
// return is false when no manifest exists, which is not an error.
func Discover(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// CheckConfig merges the manifest over the built-in defaults.
func (m *Manifest) CheckConfig() check.Config {
	cfg := check.DefaultConfig()
	if m == nil {
		return cfg
	}
	if m.Config.Check.MaxLineWidth != nil {
		cfg.MaxLineWidth = *m.Config.Check.MaxLineWidth
	}
	if m.Config.Check.AllowMultilineImports != nil {
		cfg.AllowMultiLineImports = *m.Config.Check.AllowMultilineImports
	}
	return cfg
}

// Extensions returns the manifest's file suffix list, or nil for the
// default.
func (m *Manifest) Extensions() []string {
	if m == nil {
		return nil
	}
	return m.Config.Files.Extensions
}

// StarterManifest is the content `uselint init` writes.
const StarterManifest = `[check]
max_line_width = 110
allow_multiline_imports = false

[files]
extensions = [".rs"]
`
