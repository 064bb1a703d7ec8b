package diag

import (
	"testing"

	"uselint/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestBagBoundedAdd(t *testing.T) {
	bag := NewBag(2)

	if !bag.Add(NewDefault(WidthLineTooLong, span(1, 0, 5), "one")) {
		t.Error("first Add should succeed")
	}
	if !bag.Add(NewDefault(WidthLineTooLong, span(1, 6, 10), "two")) {
		t.Error("second Add should succeed")
	}
	if bag.Add(NewDefault(WidthLineTooLong, span(1, 11, 15), "three")) {
		t.Error("Add past the cap should report the drop")
	}
	if bag.Len() != 2 {
		t.Errorf("Len = %d, want 2", bag.Len())
	}
	if bag.Cap() != 2 {
		t.Errorf("Cap = %d, want 2", bag.Cap())
	}
}

func TestBagHasErrorsAndWarnings(t *testing.T) {
	bag := NewBag(10)
	if bag.HasErrors() || bag.HasWarnings() {
		t.Error("empty bag must have no errors or warnings")
	}

	bag.Add(NewDefault(UseMultiLine, span(1, 0, 5), "style"))
	if bag.HasErrors() {
		t.Error("a warning alone must not set HasErrors")
	}
	if !bag.HasWarnings() {
		t.Error("expected HasWarnings after a warning")
	}

	bag.Add(NewDefault(UseUnterminatedGroup, span(1, 6, 10), "broken"))
	if !bag.HasErrors() {
		t.Error("expected HasErrors after an error")
	}
}

func TestBagSortRankBreaksOffsetTies(t *testing.T) {
	bag := NewBag(10)
	// Same file, same start: the width finding arrives first but the
	// malformed-import finding must sort ahead of it.
	bag.Add(NewDefault(WidthLineTooLong, span(1, 0, 120), "long"))
	bag.Add(NewDefault(UseDuplicateItem, span(1, 0, 40), "dup"))
	bag.Add(NewDefault(UseMultiLine, span(1, 0, 80), "multi"))

	bag.Sort()

	items := bag.Items()
	wantCodes := []Code{UseDuplicateItem, UseMultiLine, WidthLineTooLong}
	for i, want := range wantCodes {
		if items[i].Code != want {
			t.Errorf("items[%d].Code = %v, want %v", i, items[i].Code, want)
		}
	}
}

func TestBagSortByFileThenOffset(t *testing.T) {
	bag := NewBag(10)
	bag.Add(NewDefault(WidthLineTooLong, span(2, 0, 5), "b"))
	bag.Add(NewDefault(WidthLineTooLong, span(1, 50, 55), "a2"))
	bag.Add(NewDefault(WidthLineTooLong, span(1, 0, 5), "a1"))

	bag.Sort()

	items := bag.Items()
	if items[0].Message != "a1" || items[1].Message != "a2" || items[2].Message != "b" {
		t.Errorf("unexpected order: %q %q %q", items[0].Message, items[1].Message, items[2].Message)
	}
}

func TestBagMergeGrowsLimit(t *testing.T) {
	a := NewBag(1)
	a.Add(NewDefault(WidthLineTooLong, span(1, 0, 5), "a"))

	b := NewBag(2)
	b.Add(NewDefault(WidthLineTooLong, span(2, 0, 5), "b1"))
	b.Add(NewDefault(WidthLineTooLong, span(2, 6, 10), "b2"))

	a.Merge(b)
	if a.Len() != 3 {
		t.Errorf("Len after Merge = %d, want 3", a.Len())
	}
	a.Merge(nil) // no-op
	if a.Len() != 3 {
		t.Errorf("Len after nil Merge = %d, want 3", a.Len())
	}
}

func TestBagTruncate(t *testing.T) {
	bag := NewBag(10)
	bag.Add(NewDefault(WidthLineTooLong, span(1, 0, 5), "a"))
	bag.Add(NewDefault(WidthLineTooLong, span(1, 6, 10), "b"))

	bag.Truncate(1)
	if bag.Len() != 1 {
		t.Errorf("Len after Truncate = %d, want 1", bag.Len())
	}
	bag.Truncate(5) // out of range is a no-op
	if bag.Len() != 1 {
		t.Errorf("Len after over-Truncate = %d, want 1", bag.Len())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})

	d := NewDefault(WidthLineTooLong, span(1, 0, 5), "long")
	r.Report(d)
	r.Report(d)
	other := d
	other.Message = "different"
	r.Report(other)

	if bag.Len() != 2 {
		t.Errorf("Len = %d, want 2", bag.Len())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(10)
	b := NewReportBuilder(BagReporter{Bag: bag}, NewDefault(UseMultiLine, span(1, 0, 5), "m")).
		WithNote(Note{Span: span(1, 0, 0), Msg: "here"}).
		WithFix("collapse", FixEdit{Span: span(1, 0, 5), NewText: "use a;"})

	b.Emit()
	b.Emit()

	if bag.Len() != 1 {
		t.Fatalf("Len = %d, want 1", bag.Len())
	}
	got := bag.Items()[0]
	if len(got.Notes) != 1 || len(got.Fixes) != 1 {
		t.Errorf("notes/fixes not carried: %d notes, %d fixes", len(got.Notes), len(got.Fixes))
	}
}

func TestCodeMetadata(t *testing.T) {
	tests := []struct {
		code Code
		id   string
		sev  Severity
		rank int
	}{
		{UseMultiLine, "USE1001", SevWarning, 1},
		{UseDuplicateItem, "USE1002", SevError, 0},
		{UseUnterminatedGroup, "USE1003", SevError, 0},
		{WidthLineTooLong, "WID2001", SevWarning, 2},
		{IOLoadFileError, "IO4001", SevError, 3},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.id {
			t.Errorf("%v.ID() = %q, want %q", tt.code, got, tt.id)
		}
		if got := tt.code.DefaultSeverity(); got != tt.sev {
			t.Errorf("%v.DefaultSeverity() = %v, want %v", tt.code, got, tt.sev)
		}
		if got := tt.code.Rank(); got != tt.rank {
			t.Errorf("%v.Rank() = %d, want %d", tt.code, got, tt.rank)
		}
	}
}
