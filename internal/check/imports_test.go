package check

import (
	"strings"
	"testing"

	"uselint/internal/diag"
	"uselint/internal/source"
)

func analyze(t *testing.T, content string, cfg *Config) (*source.FileSet, []ImportStatement, *diag.Bag) {
	t.Helper()
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.rs", []byte(content))
	bag := diag.NewBag(100)
	stmts := AnalyzeImports(fs.Get(id), cfg, diag.BagReporter{Bag: bag})
	return fs, stmts, bag
}

func TestSingleLineGroupedUseIsClean(t *testing.T) {
	_, stmts, bag := analyze(t, "use crate::example::{One, Two, Three};\n", nil)

	if bag.Len() != 0 {
		t.Fatalf("expected no diagnostics, got %d", bag.Len())
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	s := stmts[0]
	if s.IsMultiLine {
		t.Error("single-line statement flagged as multi-line")
	}
	if !s.IsWellFormed {
		t.Error("expected well-formed statement")
	}
	if s.PathPrefix != "crate::example::" {
		t.Errorf("PathPrefix = %q", s.PathPrefix)
	}
	want := []string{"One", "Two", "Three"}
	if len(s.Items) != len(want) {
		t.Fatalf("Items = %v", s.Items)
	}
	for i := range want {
		if s.Items[i] != want[i] {
			t.Errorf("Items[%d] = %q, want %q", i, s.Items[i], want[i])
		}
	}
}

func TestMultiLineUseReportedOnceAtStartLine(t *testing.T) {
	content := "fn f() {}\n" +
		"\n" +
		"use crate::example::{\n" +
		"    One,\n" +
		"    Two,\n" +
		"    Three,\n" +
		"};\n"
	fs, stmts, bag := analyze(t, content, nil)

	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %v", bag.Len(), bag.Items())
	}
	d := bag.Items()[0]
	if d.Code != diag.UseMultiLine {
		t.Fatalf("Code = %v", d.Code)
	}
	if d.Severity != diag.SevWarning {
		t.Errorf("Severity = %v, want warning", d.Severity)
	}
	if d.Message != "use statement spans 5 lines; collapse it to one" {
		t.Errorf("Message = %q", d.Message)
	}
	start, _ := fs.Resolve(d.Primary)
	if start.Line != 3 {
		t.Errorf("reported at line %d, want 3", start.Line)
	}

	if len(stmts) != 1 || !stmts[0].IsMultiLine {
		t.Fatalf("statement not recognized as multi-line: %+v", stmts)
	}
	if stmts[0].StartLine != 3 || stmts[0].EndLine != 7 {
		t.Errorf("lines = %d..%d, want 3..7", stmts[0].StartLine, stmts[0].EndLine)
	}
}

func TestMultiLineUseCarriesCollapseFix(t *testing.T) {
	content := "use crate::example::{\n" +
		"    One,\n" +
		"    Two as Renamed,\n" +
		"    Three,\n" +
		"};\n"
	_, _, bag := analyze(t, content, nil)

	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if len(d.Fixes) != 1 {
		t.Fatalf("expected 1 fix, got %d", len(d.Fixes))
	}
	fix := d.Fixes[0]
	if fix.Title != "collapse use statement to one line" {
		t.Errorf("fix title = %q", fix.Title)
	}
	if len(fix.Edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(fix.Edits))
	}
	want := "use crate::example::{One, Two as Renamed, Three};"
	if fix.Edits[0].NewText != want {
		t.Errorf("NewText = %q, want %q", fix.Edits[0].NewText, want)
	}
}

func TestBracelessCommaListNeverMultiLine(t *testing.T) {
	_, stmts, bag := analyze(t, "use std::io::Error, Result;\n", nil)

	if bag.Len() != 0 {
		t.Fatalf("expected no diagnostics, got %v", bag.Items())
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	s := stmts[0]
	if s.IsMultiLine {
		t.Error("braceless statement can never be multi-line")
	}
	if len(s.Items) != 2 || s.Items[0] != "std::io::Error" || s.Items[1] != "Result" {
		t.Errorf("Items = %v", s.Items)
	}
}

func TestUnterminatedGroupReportedAtLastLine(t *testing.T) {
	content := "use crate::example::{\n" +
		"    One,\n" +
		"    Two"
	fs, stmts, bag := analyze(t, content, nil)

	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %v", bag.Len(), bag.Items())
	}
	d := bag.Items()[0]
	if d.Code != diag.UseUnterminatedGroup {
		t.Fatalf("Code = %v", d.Code)
	}
	if d.Severity != diag.SevError {
		t.Errorf("Severity = %v, want error", d.Severity)
	}
	if d.Message != "use group is never closed before end of file" {
		t.Errorf("Message = %q", d.Message)
	}
	start, _ := fs.Resolve(d.Primary)
	if start.Line != 3 {
		t.Errorf("reported at line %d, want the last line 3", start.Line)
	}
	if len(d.Notes) != 1 || d.Notes[0].Msg != "group opened here" {
		t.Errorf("missing opening note: %+v", d.Notes)
	}

	// The statement is malformed but still recovered, and the style
	// finding is suppressed.
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if stmts[0].IsWellFormed {
		t.Error("unterminated statement must not be well-formed")
	}
}

func TestUnterminatedGroupRecoversAtNextStatement(t *testing.T) {
	content := "use a::{\n" +
		"X\n" +
		"use b::{\n" +
		"Y,\n" +
		"};\n"
	fs, stmts, bag := analyze(t, content, nil)

	if len(stmts) != 2 {
		t.Fatalf("expected recovery to produce 2 statements, got %d", len(stmts))
	}
	if stmts[0].IsWellFormed {
		t.Error("cut-off statement must not be well-formed")
	}
	if stmts[1].StartLine != 3 || stmts[1].EndLine != 5 {
		t.Errorf("second statement spans lines %d-%d, want 3-5",
			stmts[1].StartLine, stmts[1].EndLine)
	}

	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %v", bag.Len(), bag.Items())
	}
	first, second := bag.Items()[0], bag.Items()[1]
	if first.Code != diag.UseUnterminatedGroup {
		t.Fatalf("first Code = %v", first.Code)
	}
	if first.Message != "use group is never closed before the next use statement" {
		t.Errorf("first Message = %q", first.Message)
	}
	start, _ := fs.Resolve(first.Primary)
	if start.Line != 2 {
		t.Errorf("unterminated group reported at line %d, want 2", start.Line)
	}
	if second.Code != diag.UseMultiLine {
		t.Fatalf("second Code = %v", second.Code)
	}
	start, _ = fs.Resolve(second.Primary)
	if start.Line != 3 {
		t.Errorf("multi-line statement reported at line %d, want 3", start.Line)
	}
}

func TestUseGroupWithBlankLine(t *testing.T) {
	content := "use a::{\n" +
		"    X,\n" +
		"\n" +
		"    Y,\n" +
		"};\n"
	_, stmts, bag := analyze(t, content, nil)

	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if stmts[0].StartLine != 1 || stmts[0].EndLine != 5 {
		t.Errorf("statement spans lines %d-%d, want 1-5",
			stmts[0].StartLine, stmts[0].EndLine)
	}
	want := []string{"X", "Y"}
	if len(stmts[0].Items) != len(want) {
		t.Fatalf("Items = %v", stmts[0].Items)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.UseMultiLine {
		t.Fatalf("expected a single multi-line finding, got %v", bag.Items())
	}
}

func TestDuplicateItems(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantDups []string
	}{
		{
			"plain duplicate",
			"use a::{X, Y, X};\n",
			[]string{"X"},
		},
		{
			"reported once per name",
			"use a::{X, X, X, Y, Y};\n",
			[]string{"X", "Y"},
		},
		{
			"alias resolves to base name",
			"use a::{X as Y, X};\n",
			[]string{"X"},
		},
		{
			"alias to distinct name is fine",
			"use a::{X as Y, Z};\n",
			nil,
		},
		{
			"whitespace variants collide",
			"use a::{ X ,X};\n",
			[]string{"X"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := analyze(t, tt.content, nil)
			var got []string
			for _, d := range bag.Items() {
				if d.Code != diag.UseDuplicateItem {
					t.Fatalf("unexpected code %v", d.Code)
				}
				got = append(got, d.Message)
			}
			if len(got) != len(tt.wantDups) {
				t.Fatalf("got %d duplicate findings %v, want %d", len(got), got, len(tt.wantDups))
			}
			for i, name := range tt.wantDups {
				want := "duplicate item \"" + name + "\" in use statement"
				if got[i] != want {
					t.Errorf("message[%d] = %q, want %q", i, got[i], want)
				}
			}
		})
	}
}

func TestDuplicateSuppressesMultiLineFinding(t *testing.T) {
	content := "use a::{\n" +
		"    X,\n" +
		"    X,\n" +
		"};\n"
	_, stmts, bag := analyze(t, content, nil)

	if bag.Len() != 1 {
		t.Fatalf("expected only the duplicate finding, got %v", bag.Items())
	}
	if bag.Items()[0].Code != diag.UseDuplicateItem {
		t.Errorf("Code = %v", bag.Items()[0].Code)
	}
	if stmts[0].IsWellFormed {
		t.Error("statement with duplicates must not be well-formed")
	}
}

func TestEmptyGroupIsClean(t *testing.T) {
	_, stmts, bag := analyze(t, "use a::{};\n", nil)
	if bag.Len() != 0 {
		t.Fatalf("expected no diagnostics, got %v", bag.Items())
	}
	if len(stmts) != 1 || len(stmts[0].Items) != 0 {
		t.Errorf("expected zero items, got %v", stmts[0].Items)
	}
}

func TestAllowMultiLineImports(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowMultiLineImports = true
	content := "use a::{\n    X,\n    Y,\n};\n"

	_, stmts, bag := analyze(t, content, &cfg)
	if bag.Len() != 0 {
		t.Fatalf("expected no diagnostics when multi-line is allowed, got %v", bag.Items())
	}
	if !stmts[0].IsMultiLine || !stmts[0].IsWellFormed {
		t.Errorf("statement = %+v", stmts[0])
	}
}

func TestPubUseRecognized(t *testing.T) {
	_, stmts, bag := analyze(t, "pub use a::{X, Y};\n", nil)
	if bag.Len() != 0 {
		t.Fatalf("expected no diagnostics, got %v", bag.Items())
	}
	if len(stmts) != 1 || stmts[0].Keyword != "pub use" {
		t.Errorf("statement = %+v", stmts)
	}
}

func TestIndentedUseRecognized(t *testing.T) {
	content := "mod m {\n" +
		"    use a::{\n" +
		"        X,\n" +
		"    };\n" +
		"}\n"
	fs, stmts, bag := analyze(t, content, nil)

	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.UseMultiLine {
		t.Fatalf("expected one multi-line finding, got %v", bag.Items())
	}
	start, _ := fs.Resolve(bag.Items()[0].Primary)
	if start.Line != 2 || start.Col != 5 {
		t.Errorf("primary at %d:%d, want 2:5", start.Line, start.Col)
	}
}

func TestNonUseLinesIgnored(t *testing.T) {
	content := "fn user() {}\n" +
		"// use inside a comment\n" +
		"let usefulness = 1;\n" +
		"usefn();\n"
	_, stmts, bag := analyze(t, content, nil)
	if len(stmts) != 0 {
		t.Errorf("expected no statements, got %+v", stmts)
	}
	if bag.Len() != 0 {
		t.Errorf("expected no diagnostics, got %v", bag.Items())
	}
}

func TestNestedGroupCommasStayTogether(t *testing.T) {
	_, stmts, _ := analyze(t, "use a::{b::{X, Y}, Z};\n", nil)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	items := stmts[0].Items
	if len(items) != 2 {
		t.Fatalf("Items = %v, want nested group kept whole", items)
	}
	if !strings.Contains(items[0], "b::{X, Y}") && !strings.Contains(items[0], "b::{X,Y}") {
		t.Errorf("Items[0] = %q", items[0])
	}
	if items[1] != "Z" {
		t.Errorf("Items[1] = %q", items[1])
	}
}

func TestStatementSpanCoversThroughSemicolon(t *testing.T) {
	fs, stmts, _ := analyze(t, "use a::{X};  // trailing\n", nil)
	s := stmts[0]
	file, _ := fs.GetByPath("main.rs")
	text := string(file.Content[s.Span.Start:s.Span.End])
	if text != "use a::{X};" {
		t.Errorf("span text = %q", text)
	}
}
