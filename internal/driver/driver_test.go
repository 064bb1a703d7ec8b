package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"uselint/internal/check"
	"uselint/internal/diag"
	"uselint/internal/source"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestListFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"b.rs":       "use b;\n",
		"a.rs":       "use a;\n",
		"sub/c.rs":   "use c;\n",
		"notes.txt":  "not source\n",
		"sub/d.toml": "[check]\n",
	})

	files, err := ListFiles(dir, []string{".rs"})
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files: %v", len(files), files)
	}
	// Sorted discovery order.
	for i := 1; i < len(files); i++ {
		if files[i-1] >= files[i] {
			t.Errorf("files not sorted: %v", files)
		}
	}
	for _, f := range files {
		if !strings.HasSuffix(f, ".rs") {
			t.Errorf("unexpected file %q", f)
		}
	}
}

func TestCheckFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"multi.rs": "use a::{\n    X,\n    Y,\n};\n",
	})

	fs := source.NewFileSet()
	cfg := check.DefaultConfig()
	res, err := CheckFile(fs, filepath.Join(dir, "multi.rs"), &cfg, 0)
	if err != nil {
		t.Fatalf("CheckFile: %v", err)
	}
	if res.FileID == 0 {
		t.Error("expected a valid FileID")
	}
	if res.Bag.Len() != 1 || res.Bag.Items()[0].Code != diag.UseMultiLine {
		t.Errorf("unexpected diagnostics: %v", res.Bag.Items())
	}
}

func TestCheckFileLoadFailureDegradesToDiagnostic(t *testing.T) {
	fs := source.NewFileSet()
	cfg := check.DefaultConfig()
	res, err := CheckFile(fs, filepath.Join(t.TempDir(), "missing.rs"), &cfg, 0)
	if err != nil {
		t.Fatalf("load failure must not be an error: %v", err)
	}
	if res.FileID != 0 {
		t.Error("failed load must leave FileID invalid")
	}
	if res.Bag.Len() != 1 || res.Bag.Items()[0].Code != diag.IOLoadFileError {
		t.Fatalf("expected one IO diagnostic, got %v", res.Bag.Items())
	}
	if !res.Bag.HasErrors() {
		t.Error("IO diagnostic must be an error")
	}
}

func TestCheckVirtual(t *testing.T) {
	fs := source.NewFileSet()
	cfg := check.DefaultConfig()
	res, err := CheckVirtual(fs, "<stdin>", []byte("use a::{X, X};\n"), &cfg, 0)
	if err != nil {
		t.Fatalf("CheckVirtual: %v", err)
	}
	if res.Bag.Len() != 1 || res.Bag.Items()[0].Code != diag.UseDuplicateItem {
		t.Errorf("unexpected diagnostics: %v", res.Bag.Items())
	}
	if f := fs.Get(res.FileID); f == nil || f.Flags&source.FileVirtual == 0 {
		t.Error("expected a virtual file in the set")
	}
}

func TestCheckDirResultsInDiscoveryOrder(t *testing.T) {
	long := strings.Repeat("x", 120)
	dir := writeFiles(t, map[string]string{
		"a.rs": "use a;\n",
		"b.rs": long + "\n",
		"c.rs": "use c::{\n    X",
	})

	cfg := check.DefaultConfig()
	fs, results, err := CheckDir(context.Background(), dir, &cfg, Options{Jobs: 4})
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	if fs.Len() != 3 {
		t.Errorf("FileSet holds %d files, want 3", fs.Len())
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}

	wantBase := []string{"a.rs", "b.rs", "c.rs"}
	for i, res := range results {
		if filepath.Base(res.Path) != wantBase[i] {
			t.Errorf("results[%d].Path = %q, want base %q", i, res.Path, wantBase[i])
		}
	}

	if results[0].Bag.Len() != 0 {
		t.Errorf("a.rs should be clean: %v", results[0].Bag.Items())
	}
	if results[1].Bag.Len() != 1 || results[1].Bag.Items()[0].Code != diag.WidthLineTooLong {
		t.Errorf("b.rs diagnostics: %v", results[1].Bag.Items())
	}
	if !results[2].Bag.HasErrors() {
		t.Error("c.rs must carry an error")
	}

	s := Summarize(results)
	if s.Files != 3 || !s.HasErrors || !s.HasWarnings || s.Diagnostics != 2 {
		t.Errorf("summary = %+v", s)
	}
}

func TestCheckDirEmitsEvents(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.rs": "use a;\n",
		"b.rs": "use b;\n",
	})

	events := make(chan Event, 16)
	cfg := check.DefaultConfig()
	_, _, err := CheckDir(context.Background(), dir, &cfg, Options{Events: events})
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	close(events)

	started, finished := 0, 0
	for ev := range events {
		switch ev.Kind {
		case EventStarted:
			started++
		case EventFinished:
			finished++
		case EventFailed:
			t.Errorf("unexpected failure event for %s", ev.Path)
		}
	}
	if started != 2 || finished != 2 {
		t.Errorf("events: %d started, %d finished, want 2/2", started, finished)
	}
}

func TestCheckDirNilConfig(t *testing.T) {
	if _, _, err := CheckDir(context.Background(), t.TempDir(), nil, Options{}); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestCheckDirEmpty(t *testing.T) {
	cfg := check.DefaultConfig()
	fs, results, err := CheckDir(context.Background(), t.TempDir(), &cfg, Options{})
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	if fs == nil || len(results) != 0 {
		t.Errorf("expected an empty run, got %d results", len(results))
	}
}

func TestMergeBags(t *testing.T) {
	a := diag.NewBag(10)
	a.Add(diag.NewDefault(diag.WidthLineTooLong, source.Span{File: 1}, "a"))
	b := diag.NewBag(10)
	b.Add(diag.NewDefault(diag.UseMultiLine, source.Span{File: 2}, "b"))

	merged := MergeBags([]FileResult{{Bag: a}, {Bag: b}, {}})
	if merged.Len() != 2 {
		t.Errorf("merged %d diagnostics, want 2", merged.Len())
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if o.jobs() < 1 {
		t.Error("jobs default must be positive")
	}
	if o.maxDiagnostics() != DefaultMaxDiagnostics {
		t.Errorf("maxDiagnostics default = %d", o.maxDiagnostics())
	}
	if exts := o.extensions(); len(exts) != 1 || exts[0] != ".rs" {
		t.Errorf("extensions default = %v", exts)
	}
}
