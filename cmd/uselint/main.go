package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"uselint/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "uselint",
	Short: "Import and line-width checker for Rust-style sources",
	Long:  `uselint scans source files for multi-line use statements, malformed import groups and overlong lines`,
}

// main registers subcommands and persistent flags, then executes the root
// command. Execution errors exit with status code 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show per file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
