package fix

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"uselint/internal/check"
	"uselint/internal/diag"
	"uselint/internal/source"
)

func writeSource(t *testing.T, content string) (string, *source.FileSet, *source.File) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.rs")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return path, fs, fs.Get(id)
}

func checkedDiagnostics(t *testing.T, f *source.File) []diag.Diagnostic {
	t.Helper()
	cfg := check.DefaultConfig()
	bag := diag.NewBag(100)
	if _, err := check.RunFile(f, &cfg, bag); err != nil {
		t.Fatalf("RunFile: %v", err)
	}
	return bag.Items()
}

func TestApplyCollapsesMultiLineUse(t *testing.T) {
	content := "use crate::example::{\n    One,\n    Two,\n    Three,\n};\nfn main() {}\n"
	path, fs, file := writeSource(t, content)

	res, err := Apply(fs, checkedDiagnostics(t, file), ApplyOptions{Mode: ApplyModeOnce})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 {
		t.Fatalf("applied %d fixes, want 1", len(res.Applied))
	}
	if res.Applied[0].Code != diag.UseMultiLine {
		t.Errorf("applied fix for %v", res.Applied[0].Code)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "use crate::example::{One, Two, Three};\nfn main() {}\n"
	if string(got) != want {
		t.Errorf("file after fix:\n%q\nwant:\n%q", got, want)
	}
}

func TestApplyDryRunWritesNothing(t *testing.T) {
	content := "use a::{\n    X,\n    Y,\n};\n"
	path, fs, file := writeSource(t, content)

	res, err := Apply(fs, checkedDiagnostics(t, file), ApplyOptions{Mode: ApplyModeOnce, DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 {
		t.Fatalf("applied %d fixes, want 1", len(res.Applied))
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content {
		t.Error("dry run must leave the file untouched")
	}
}

func TestApplyBackupWritesBakFile(t *testing.T) {
	content := "use a::{\n    X,\n    Y,\n};\n"
	path, fs, file := writeSource(t, content)

	_, err := Apply(fs, checkedDiagnostics(t, file), ApplyOptions{Mode: ApplyModeOnce, Backup: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("backup not written: %v", err)
	}
	if string(bak) != content {
		t.Errorf("backup holds %q, want the original content", bak)
	}
}

func TestApplyByID(t *testing.T) {
	content := "use a::{\n    X,\n    Y,\n};\n"
	_, fs, file := writeSource(t, content)
	diagnostics := checkedDiagnostics(t, file)

	// Discover the synthetic ID through a dry run, then target it.
	probe, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeOnce, DryRun: true})
	if err != nil {
		t.Fatalf("probe Apply: %v", err)
	}
	id := probe.Applied[0].ID

	res, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeID, TargetID: id})
	if err != nil {
		t.Fatalf("Apply by ID: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0].ID != id {
		t.Errorf("applied = %+v", res.Applied)
	}

	if _, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeID, TargetID: "nope"}); !errors.Is(err, ErrNoFixes) {
		t.Errorf("unknown ID: err = %v", err)
	}
}

func TestApplyNoFixes(t *testing.T) {
	_, fs, file := writeSource(t, "use a;\n")
	if _, err := Apply(fs, checkedDiagnostics(t, file), ApplyOptions{Mode: ApplyModeAll}); !errors.Is(err, ErrNoFixes) {
		t.Errorf("err = %v, want ErrNoFixes", err)
	}
}

func TestApplySkipsConflictingFixes(t *testing.T) {
	path, fs, file := writeSource(t, "use a::{X};\n")

	sp := source.Span{File: file.ID, Start: 0, End: 11}
	d1 := diag.NewDefault(diag.UseMultiLine, sp, "first").
		WithFix("rewrite", diag.FixEdit{Span: sp, NewText: "use a::{X};"})
	d2 := diag.NewDefault(diag.UseMultiLine, sp, "second").
		WithFix("rewrite again", diag.FixEdit{Span: sp, NewText: "use b::{Y};"})

	res, err := Apply(fs, []diag.Diagnostic{d1, d2}, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 {
		t.Errorf("applied %d fixes, want 1", len(res.Applied))
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != "conflicts with a previously applied fix" {
		t.Errorf("skipped = %+v", res.Skipped)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "use a::{X};\n" {
		t.Errorf("file = %q", got)
	}
}

func TestApplySkipsVirtualFiles(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("<stdin>", []byte("use a::{\n    X,\n};\n"))
	file := fs.Get(id)

	res, err := Apply(fs, checkedDiagnostics(t, file), ApplyOptions{Mode: ApplyModeAll})
	if !errors.Is(err, ErrNoFixes) {
		t.Errorf("err = %v, want ErrNoFixes", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != "target file is virtual" {
		t.Errorf("skipped = %+v", res.Skipped)
	}
}

func TestApplySkipsOutOfRangeEdits(t *testing.T) {
	_, fs, file := writeSource(t, "use a;\n")

	d := diag.NewDefault(diag.UseMultiLine, source.Span{File: file.ID, Start: 0, End: 6}, "m").
		WithFix("bad edit", diag.FixEdit{
			Span:    source.Span{File: file.ID, Start: 100, End: 200},
			NewText: "x",
		})

	res, err := Apply(fs, []diag.Diagnostic{d}, ApplyOptions{Mode: ApplyModeAll})
	if !errors.Is(err, ErrNoFixes) {
		t.Errorf("err = %v, want ErrNoFixes", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != "edit span out of range" {
		t.Errorf("skipped = %+v", res.Skipped)
	}
}
