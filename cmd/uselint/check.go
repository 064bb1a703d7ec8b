package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"uselint/internal/diag"
	"uselint/internal/diagfmt"
	"uselint/internal/driver"
	"uselint/internal/observ"
	"uselint/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.rs|directory|->",
	Short: "Check use statements and line widths in a file or directory",
	Long:  `Check source files for multi-line use statements, duplicate import items, unterminated import groups and lines over the width limit. Pass "-" to read from stdin.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif|short)")
	checkCmd.Flags().Int("max-line-width", 0, "line width limit (0=manifest or default)")
	checkCmd.Flags().Bool("allow-multiline-imports", false, "do not flag use statements spanning multiple lines")
	checkCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("cache", false, "reuse cached results for unchanged files")
	checkCmd.Flags().String("ui", "auto", "interactive progress for directories (auto|on|off)")
}

// checkFlags carries the parsed per-invocation flags of the check command.
type checkFlags struct {
	format           string
	noWarnings       bool
	warningsAsErrors bool
	withNotes        bool
	suggest          bool
	fullPath         bool
	useColor         bool
	quiet            bool
	timings          bool
	maxDiagnostics   int
}

func runCheck(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	switch flags.format {
	case "pretty", "json", "sarif", "short":
	default:
		return fmt.Errorf("unknown format: %s", flags.format)
	}
	if flags.noWarnings && flags.warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}

	timer := observ.NewTimer()

	var (
		fileSet *source.FileSet
		results []driver.FileResult
	)

	if targetPath == "-" {
		fileSet, results, err = checkStdin(cmd)
	} else {
		var st os.FileInfo
		st, err = os.Stat(targetPath)
		if err != nil {
			return fmt.Errorf("failed to stat path: %w", err)
		}
		if st.IsDir() {
			fileSet, results, err = checkDirectory(cmd, targetPath, flags, timer)
		} else {
			fileSet, results, err = checkSingleFile(cmd, targetPath, flags)
		}
	}
	if err != nil {
		return err
	}

	for i := range results {
		applyWarningPolicy(results[i].Bag, flags.noWarnings, flags.warningsAsErrors)
	}

	renderPhase := timer.Begin("render")
	if err := renderResults(cmd.OutOrStdout(), fileSet, results, flags); err != nil {
		return err
	}
	timer.End(renderPhase, flags.format)

	summary := driver.Summarize(results)
	if !flags.quiet && flags.format == "pretty" && len(results) > 1 {
		fmt.Fprintf(cmd.OutOrStdout(), "checked %d files, %d diagnostics\n", summary.Files, summary.Diagnostics)
	}
	if flags.timings && !flags.quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), timer.Summary())
	}

	if summary.HasErrors {
		// Suppress cobra usage output; diagnostics are already printed.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}

func readCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	var flags checkFlags
	var err error

	if flags.format, err = cmd.Flags().GetString("format"); err != nil {
		return flags, fmt.Errorf("failed to get format flag: %w", err)
	}
	if flags.noWarnings, err = cmd.Flags().GetBool("no-warnings"); err != nil {
		return flags, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	if flags.warningsAsErrors, err = cmd.Flags().GetBool("warnings-as-errors"); err != nil {
		return flags, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if flags.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return flags, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if flags.suggest, err = cmd.Flags().GetBool("suggest"); err != nil {
		return flags, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if flags.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return flags, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if flags.maxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return flags, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if flags.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return flags, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if flags.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return flags, fmt.Errorf("failed to get timings flag: %w", err)
	}

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return flags, fmt.Errorf("failed to get color flag: %w", err)
	}
	flags.useColor = colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
	return flags, nil
}

func checkStdin(cmd *cobra.Command) (*source.FileSet, []driver.FileResult, error) {
	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	cfg, _, err := resolveCheckConfig(cmd, ".")
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSet()
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, nil, err
	}
	result, err := driver.CheckVirtual(fileSet, "<stdin>", content, &cfg, maxDiagnostics)
	if err != nil {
		return nil, nil, fmt.Errorf("check failed: %w", err)
	}
	return fileSet, []driver.FileResult{result}, nil
}

func checkSingleFile(cmd *cobra.Command, path string, flags checkFlags) (*source.FileSet, []driver.FileResult, error) {
	cfg, _, err := resolveCheckConfig(cmd, filepath.Dir(path))
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSet()
	result, err := driver.CheckFile(fileSet, path, &cfg, flags.maxDiagnostics)
	if err != nil {
		return nil, nil, fmt.Errorf("check failed: %w", err)
	}
	return fileSet, []driver.FileResult{result}, nil
}

func checkDirectory(cmd *cobra.Command, dir string, flags checkFlags, timer *observ.Timer) (*source.FileSet, []driver.FileResult, error) {
	cfg, exts, err := resolveCheckConfig(cmd, dir)
	if err != nil {
		return nil, nil, err
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return nil, nil, err
	}

	opts := driver.Options{
		Jobs:           jobs,
		MaxDiagnostics: flags.maxDiagnostics,
		Extensions:     exts,
	}
	if useCache {
		cache, err := driver.OpenDiskCache("uselint")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open disk cache: %w", err)
		}
		opts.Cache = cache
	}

	discoverPhase := timer.Begin("discover")
	files, err := driver.ListFiles(dir, opts.Extensions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list files: %w", err)
	}
	timer.End(discoverPhase, fmt.Sprintf("%d files", len(files)))

	checkPhase := timer.Begin("check")
	defer timer.End(checkPhase, "")

	// Interactive mode only makes sense for pretty output on a terminal.
	if flags.format == "pretty" && !flags.quiet && len(files) > 0 && shouldUseTUI(mode) {
		return runCheckDirWithUI(cmd.Context(), fmt.Sprintf("checking %s", dir), dir, files, &cfg, opts)
	}
	fs, results, err := driver.CheckDir(cmd.Context(), dir, &cfg, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("check failed: %w", err)
	}
	return fs, results, nil
}

// applyWarningPolicy rewrites diagnostic severities in place according to the
// --no-warnings / --warnings-as-errors flags.
func applyWarningPolicy(bag *diag.Bag, noWarnings, warningsAsErrors bool) {
	if bag == nil || (!noWarnings && !warningsAsErrors) {
		return
	}
	items := bag.Items()
	if noWarnings {
		kept := items[:0]
		for _, d := range items {
			if d.Severity == diag.SevWarning {
				continue
			}
			kept = append(kept, d)
		}
		bag.Truncate(len(kept))
		return
	}
	for i := range items {
		if items[i].Severity == diag.SevWarning {
			items[i].Severity = diag.SevError
		}
	}
}

func renderResults(out io.Writer, fileSet *source.FileSet, results []driver.FileResult, flags checkFlags) error {
	pathMode := diagfmt.PathModeAuto
	if flags.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch flags.format {
	case "pretty":
		prettyOpts := diagfmt.PrettyOpts{
			Color:     flags.useColor,
			PathMode:  pathMode,
			ShowNotes: flags.withNotes,
			ShowFixes: flags.suggest,
		}
		for idx, r := range results {
			if r.Bag == nil || r.Bag.Len() == 0 {
				continue
			}
			if len(results) > 1 {
				if idx > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "== %s ==\n", displayPath(fileSet, r, flags.fullPath))
			}
			diagfmt.Pretty(out, r.Bag, fileSet, prettyOpts)
		}
	case "short":
		all := make([]diag.Diagnostic, 0, len(results))
		for _, r := range results {
			if r.Bag == nil {
				continue
			}
			all = append(all, r.Bag.Items()...)
		}
		output := diag.FormatShortDiagnostics(all, fileSet)
		if output != "" {
			fmt.Fprintln(out, output)
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     flags.withNotes,
			IncludeFixes:     flags.suggest,
		}
		if len(results) == 1 {
			return diagfmt.JSON(out, results[0].Bag, fileSet, jsonOpts)
		}
		output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
		for _, r := range results {
			output[displayPath(fileSet, r, flags.fullPath)] = diagfmt.BuildDiagnosticsOutput(r.Bag, fileSet, jsonOpts)
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
	case "sarif":
		merged := driver.MergeBags(results)
		meta := diagfmt.SarifRunMeta{
			ToolName:       "uselint",
			ToolVersion:    "0.1.0",
			InvocationArgs: os.Args[1:],
		}
		if err := diagfmt.Sarif(out, merged, fileSet, meta); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}
	return nil
}

func displayPath(fileSet *source.FileSet, r driver.FileResult, fullPath bool) string {
	if r.FileID != 0 && fileSet != nil {
		file := fileSet.Get(r.FileID)
		if file != nil {
			mode := "auto"
			if fullPath {
				mode = "absolute"
			}
			return file.FormatPath(mode, fileSet.BaseDir())
		}
	}
	if fullPath {
		if abs, err := source.AbsolutePath(r.Path); err == nil {
			return abs
		}
	}
	return r.Path
}
