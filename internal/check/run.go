package check

import (
	"errors"
	"sort"

	"uselint/internal/diag"
	"uselint/internal/source"
)

// ErrInvalidInput marks the only unrecoverable condition: a missing file,
// config or bag. Everything detectable inside the file degrades to
// diagnostics instead.
var ErrInvalidInput = errors.New("check: invalid input")

// Report is the immutable result of checking one file.
type Report struct {
	Imports   []ImportStatement
	Diags     []diag.Diagnostic
	HasErrors bool
}

// RunFile runs both analyzers over the file into bag, then sorts the
// collected diagnostics. Duplicates are filtered at report time; the
// analyzers are independent and the merged order is by position first,
// category precedence second.
func RunFile(f *source.File, cfg *Config, bag *diag.Bag) (Report, error) {
	if f == nil || cfg == nil || bag == nil {
		return Report{}, ErrInvalidInput
	}
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}

	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	stmts := AnalyzeImports(f, cfg, reporter)
	AnalyzeLineWidth(f, cfg, reporter)

	sortByLine(f, bag)

	return Report{
		Imports:   stmts,
		Diags:     bag.Items(),
		HasErrors: bag.HasErrors(),
	}, nil
}

// sortByLine orders the bag by line number first and category rank second,
// the report order the consumers rely on. Spans that start mid-line (an
// indented use statement) still sort by the line they sit on, which a
// plain offset sort would not guarantee against a full-line finding.
func sortByLine(f *source.File, bag *diag.Bag) {
	items := bag.Items()
	sort.SliceStable(items, func(i, j int) bool {
		di, dj := items[i], items[j]
		li, lj := f.LineOf(di.Primary.Start), f.LineOf(dj.Primary.Start)
		if li != lj {
			return li < lj
		}
		if ri, rj := di.Code.Rank(), dj.Code.Rank(); ri != rj {
			return ri < rj
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
