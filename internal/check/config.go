// Package check implements the two text-rule analyzers at the core of
// uselint: use-statement formatting and physical line width. Both run over
// one file's line sequence, share no state, and emit findings through a
// diag.Reporter.
package check

import (
	"fmt"
)

// DefaultMaxLineWidth is the width limit applied when no configuration
// overrides it.
const DefaultMaxLineWidth = 110

// Config carries the policy knobs for one checker run. Analyzers read it,
// never write it; callers may share one Config across parallel runs.
type Config struct {
	// MaxLineWidth is the inclusive character limit; a line of exactly
	// MaxLineWidth characters is fine, one more is flagged.
	MaxLineWidth int
	// AllowMultiLineImports accepts use statements whose item group spans
	// several physical lines.
	AllowMultiLineImports bool
}

// DefaultConfig returns the policy the original checker shipped with.
func DefaultConfig() Config {
	return Config{
		MaxLineWidth:          DefaultMaxLineWidth,
		AllowMultiLineImports: false,
	}
}

// Validate rejects configurations the analyzers cannot run under.
func (c *Config) Validate() error {
	if c.MaxLineWidth < 1 {
		return fmt.Errorf("%w: max line width must be at least 1, got %d", ErrInvalidInput, c.MaxLineWidth)
	}
	return nil
}
