package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"uselint/internal/check"
	"uselint/internal/project"
)

// resolveCheckConfig builds the effective check configuration for a command:
// defaults, overridden by a discovered uselint.toml, overridden by explicit
// flags. It also returns the file extensions the manifest selects, nil when
// no manifest applies.
func resolveCheckConfig(cmd *cobra.Command, startDir string) (check.Config, []string, error) {
	cfg := check.DefaultConfig()
	var exts []string

	manifest, ok, err := project.Discover(startDir)
	if err != nil {
		return cfg, nil, err
	}
	if ok {
		cfg = manifest.CheckConfig()
		exts = manifest.Extensions()
	}

	if cmd.Flags().Changed("max-line-width") {
		width, err := cmd.Flags().GetInt("max-line-width")
		if err != nil {
			return cfg, nil, fmt.Errorf("failed to get max-line-width flag: %w", err)
		}
		cfg.MaxLineWidth = width
	}
	if cmd.Flags().Changed("allow-multiline-imports") {
		allow, err := cmd.Flags().GetBool("allow-multiline-imports")
		if err != nil {
			return cfg, nil, fmt.Errorf("failed to get allow-multiline-imports flag: %w", err)
		}
		cfg.AllowMultiLineImports = allow
	}

	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	return cfg, exts, nil
}
