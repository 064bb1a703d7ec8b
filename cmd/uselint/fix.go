package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"uselint/internal/diag"
	"uselint/internal/driver"
	"uselint/internal/fix"
	"uselint/internal/source"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file.rs|directory>",
	Short: "Apply available fixes to a source file or directory",
	Long:  "Run the checkers, surface available fixes (such as collapsing a multi-line use statement), and apply them according to the chosen strategy.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply all safe fixes")
	fixCmd.Flags().Bool("once", false, "apply the first available fix (default)")
	fixCmd.Flags().String("id", "", "apply fix with a specific identifier")
	fixCmd.Flags().Bool("dry-run", false, "report fixes without modifying files")
	fixCmd.Flags().Bool("backup", false, "write a .bak copy next to each modified file")
	fixCmd.Flags().Int("max-line-width", 0, "line width limit (0=manifest or default)")
	fixCmd.Flags().Bool("allow-multiline-imports", false, "do not flag use statements spanning multiple lines")
}

func runFix(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	applyOnceFlag, err := cmd.Flags().GetBool("once")
	if err != nil {
		return err
	}
	targetID, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	backup, err := cmd.Flags().GetBool("backup")
	if err != nil {
		return err
	}

	if targetID != "" && (applyAll || applyOnceFlag) {
		return fmt.Errorf("--id cannot be combined with --all or --once")
	}
	if applyAll && applyOnceFlag {
		return fmt.Errorf("--all and --once are mutually exclusive")
	}

	mode := fix.ApplyModeOnce
	if targetID != "" {
		mode = fix.ApplyModeID
	} else if applyAll {
		mode = fix.ApplyModeAll
	}
	opts := fix.ApplyOptions{
		Mode:     mode,
		TargetID: targetID,
		DryRun:   dryRun,
		Backup:   backup,
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	info, err := os.Stat(targetPath)
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}

	// Synthetic fix IDs are only stable within one file's run.
	if info.IsDir() && targetID != "" {
		return fmt.Errorf("fix: id can only be used with a single file")
	}

	if !info.IsDir() {
		return runFixFile(cmd, targetPath, maxDiagnostics, opts)
	}
	return runFixDir(cmd, targetPath, maxDiagnostics, opts)
}

func runFixFile(cmd *cobra.Command, path string, maxDiagnostics int, opts fix.ApplyOptions) error {
	cfg, _, err := resolveCheckConfig(cmd, filepath.Dir(path))
	if err != nil {
		return err
	}
	fileSet := source.NewFileSet()
	result, err := driver.CheckFile(fileSet, path, &cfg, maxDiagnostics)
	if err != nil {
		return fmt.Errorf("fix: check failed: %w", err)
	}
	var diagnostics []diag.Diagnostic
	if result.Bag != nil {
		diagnostics = append(diagnostics, result.Bag.Items()...)
	}
	res, applyErr := fix.Apply(fileSet, diagnostics, opts)
	return handleApplyResult(cmd, res, applyErr, opts.DryRun)
}

func runFixDir(cmd *cobra.Command, path string, maxDiagnostics int, opts fix.ApplyOptions) error {
	cfg, exts, err := resolveCheckConfig(cmd, path)
	if err != nil {
		return err
	}
	fs, results, err := driver.CheckDir(cmd.Context(), path, &cfg, driver.Options{
		MaxDiagnostics: maxDiagnostics,
		Extensions:     exts,
	})
	if err != nil {
		return fmt.Errorf("fix: check failed: %w", err)
	}

	allDiagnostics := make([]diag.Diagnostic, 0)
	for _, r := range results {
		if r.Bag == nil {
			continue
		}
		allDiagnostics = append(allDiagnostics, r.Bag.Items()...)
	}

	res, applyErr := fix.Apply(fs, allDiagnostics, opts)
	return handleApplyResult(cmd, res, applyErr, opts.DryRun)
}

func handleApplyResult(cmd *cobra.Command, res *fix.ApplyResult, applyErr error, dryRun bool) error {
	if res == nil {
		return applyErr
	}
	out := cmd.OutOrStdout()

	if len(res.Applied) > 0 {
		verb := "Applied"
		if dryRun {
			verb = "Would apply"
		}
		fmt.Fprintf(out, "%s %d fix(es):\n", verb, len(res.Applied))
		for _, item := range res.Applied {
			location := item.Path
			if location == "" {
				location = "(unknown location)"
			}
			fmt.Fprintf(out, "  %s [%s] %s (%d edits)\n", item.Title, item.ID, location, item.EditCount)
		}
	}

	if len(res.FileChanges) > 0 && !dryRun {
		fmt.Fprintln(out, "Updated files:")
		for _, change := range res.FileChanges {
			fmt.Fprintf(out, "  %s (%d edits)\n", change.Path, change.EditCount)
		}
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintln(out, "Skipped fixes:")
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if skip.Title != "" {
				fmt.Fprintf(out, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				fmt.Fprintf(out, "  [%s]: %s\n", id, skip.Reason)
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			fmt.Fprintln(out, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}

	if len(res.Applied) == 0 {
		fmt.Fprintln(out, "No fixes applied.")
	}
	return nil
}
