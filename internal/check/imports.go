package check

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"uselint/internal/diag"
	"uselint/internal/scan"
	"uselint/internal/source"
)

// ImportStatement is one logical use declaration recovered from the line
// scan. Items hold the canonical imported names with aliases stripped.
type ImportStatement struct {
	StartLine    uint32
	EndLine      uint32
	Span         source.Span
	Keyword      string // "use" or "pub use"
	PathPrefix   string // text between the keyword and the item group, if any
	Items        []string
	IsMultiLine  bool
	IsWellFormed bool
}

// AnalyzeImports scans the file for use statements, assembles multi-line
// groups by brace balance, and reports policy violations. It never fails:
// malformed input degrades to diagnostics and the scan continues at the
// next statement start.
func AnalyzeImports(f *source.File, cfg *Config, r diag.Reporter) []ImportStatement {
	lines := scan.Lines(f)

	var stmts []ImportStatement
	i := 0
	for i < len(lines) {
		keyword, rest, ok := matchUseStart(lines[i].Text)
		if !ok {
			i++
			continue
		}

		raw, next := assembleUse(f, lines, i)
		raw.body = extractBody(raw.text, rest)
		stmt := buildStatement(raw, lines, keyword)
		analyzeStatement(&stmt, raw, lines, cfg, r)
		stmts = append(stmts, stmt)
		i = next
	}
	return stmts
}

// rawStatement is the textual extent of one use declaration before item
// extraction.
type rawStatement struct {
	startIdx   int // index into lines
	endIdx     int
	text       string // physical lines joined with \n
	body       string // text after the keyword, semicolon stripped
	span       source.Span
	hasBraces  bool
	terminated bool // brace balance returned to zero before EOF
}

// extractBody cuts the statement text down to the part after the use
// keyword and drops the terminating semicolon.
func extractBody(text, rest string) string {
	if i := strings.Index(text, rest); i >= 0 {
		text = text[i:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), ";")
	return strings.TrimSpace(text)
}

// matchUseStart recognizes a statement opener: optional indentation, an
// optional pub modifier, the use keyword, and at least one following
// character of path expression. rest is the text after the keyword.
func matchUseStart(text string) (keyword, rest string, ok bool) {
	s := strings.TrimLeft(text, " \t")

	keyword = "use"
	if after, found := strings.CutPrefix(s, "pub "); found {
		keyword = "pub use"
		s = strings.TrimLeft(after, " \t")
	}
	after, found := strings.CutPrefix(s, "use")
	if !found || after == "" || (after[0] != ' ' && after[0] != '\t') {
		return "", "", false
	}
	rest = strings.TrimLeft(after, " \t")
	if rest == "" {
		return "", "", false
	}
	return keyword, rest, true
}

// assembleUse consumes the physical lines of one use statement starting at
// lines[start]. A statement without braces always ends on its first line;
// an open brace keeps pulling lines until the balance returns to zero, a
// new statement opener appears, or the file ends.
func assembleUse(f *source.File, lines []scan.Line, start int) (rawStatement, int) {
	depth := 0
	sawBrace := false
	var b strings.Builder

	for j := start; j < len(lines); j++ {
		if j > start {
			// A fresh opener inside an open group means the group never
			// closes. Cut the statement off before it and resume there.
			if _, _, ok := matchUseStart(lines[j].Text); ok {
				raw := rawStatement{
					startIdx:  start,
					endIdx:    j - 1,
					text:      b.String(),
					span:      statementSpan(lines, start, j-1),
					hasBraces: sawBrace,
				}
				return raw, j
			}
			b.WriteByte('\n')
		}
		b.WriteString(lines[j].Text)
		depth, sawBrace = scanBraces(f, lines[j], depth, sawBrace)

		if !sawBrace || depth == 0 {
			raw := rawStatement{
				startIdx:   start,
				endIdx:     j,
				text:       b.String(),
				span:       statementSpan(lines, start, j),
				hasBraces:  sawBrace,
				terminated: true,
			}
			return raw, j + 1
		}
	}

	// Open group at EOF.
	last := len(lines) - 1
	raw := rawStatement{
		startIdx:  start,
		endIdx:    last,
		text:      b.String(),
		span:      statementSpan(lines, start, last),
		hasBraces: sawBrace,
	}
	return raw, len(lines)
}

// scanBraces walks one line with a byte cursor and folds its braces into
// the running group depth.
func scanBraces(f *source.File, line scan.Line, depth int, sawBrace bool) (int, bool) {
	if line.Span.End <= line.Span.Start {
		return depth, sawBrace
	}
	cur := scan.Cursor{File: f, Off: line.Span.Start, Limit: line.Span.End}
	for !cur.EOF() {
		switch cur.Bump() {
		case '{':
			depth++
			sawBrace = true
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return depth, sawBrace
}

// statementSpan covers the statement from its first non-blank byte through
// the terminating semicolon (or the end of the closing line).
func statementSpan(lines []scan.Line, start, end int) source.Span {
	first := lines[start]
	indent := uint32(len(first.Text) - len(strings.TrimLeft(first.Text, " \t")))

	lastLine := lines[end]
	endOff := lastLine.Span.End
	if idx := strings.LastIndexByte(lastLine.Text, ';'); idx >= 0 {
		endOff = lastLine.Span.Start + uint32(idx) + 1
	}

	return source.Span{
		File:  first.Span.File,
		Start: first.Span.Start + indent,
		End:   endOff,
	}
}

func buildStatement(raw rawStatement, lines []scan.Line, keyword string) ImportStatement {
	stmt := ImportStatement{
		StartLine:   lines[raw.startIdx].Num,
		EndLine:     lines[raw.endIdx].Num,
		Span:        raw.span,
		Keyword:     keyword,
		IsMultiLine: raw.endIdx > raw.startIdx,
	}

	if open := indexTopLevelByte(raw.body, '{'); open >= 0 {
		stmt.PathPrefix = strings.TrimSpace(raw.body[:open])
		stmt.Items = splitItems(groupInner(raw.body, open))
	} else {
		stmt.Items = splitItems(raw.body)
	}
	return stmt
}

// groupInner returns the text inside the brace group opened at open,
// tolerating a missing closing brace.
func groupInner(body string, open int) string {
	inner := body[open+1:]
	if close := matchingClose(inner); close >= 0 {
		inner = inner[:close]
	}
	return inner
}

func analyzeStatement(stmt *ImportStatement, raw rawStatement, lines []scan.Line, cfg *Config, r diag.Reporter) {
	malformed := false

	if !raw.terminated {
		lastLine := lines[raw.endIdx]
		msg := "use group is never closed before end of file"
		if raw.endIdx < len(lines)-1 {
			msg = "use group is never closed before the next use statement"
		}
		diag.NewReportBuilder(r, diag.NewDefault(diag.UseUnterminatedGroup, lastLine.Span, msg)).
			WithNote(diag.Note{
				Span: source.Span{File: lastLine.Span.File, Start: raw.span.Start, End: raw.span.Start},
				Msg:  "group opened here",
			}).
			Emit()
		malformed = true
	}

	for _, name := range duplicateItems(stmt.Items) {
		d := diag.NewDefault(diag.UseDuplicateItem, raw.span,
			fmt.Sprintf("duplicate item %q in use statement", name))
		r.Report(d)
		malformed = true
	}

	// A malformed statement is reported once, as malformed; the style
	// finding for the same statement is suppressed.
	if stmt.IsMultiLine && !cfg.AllowMultiLineImports && !malformed {
		spanLines := stmt.EndLine - stmt.StartLine + 1
		diag.NewReportBuilder(r, diag.NewDefault(diag.UseMultiLine, raw.span,
			fmt.Sprintf("use statement spans %d lines; collapse it to one", spanLines))).
			WithFix("collapse use statement to one line", diag.FixEdit{
				Span:    raw.span,
				NewText: collapseStatement(stmt, raw),
			}).
			Emit()
	}

	stmt.IsWellFormed = !malformed && (!stmt.IsMultiLine || cfg.AllowMultiLineImports)
}

// collapseStatement renders the single-line form of a (possibly
// multi-line) use statement, preserving aliases.
func collapseStatement(stmt *ImportStatement, raw rawStatement) string {
	if open := indexTopLevelByte(raw.body, '{'); open >= 0 {
		items := rawItems(groupInner(raw.body, open))
		return stmt.Keyword + " " + stmt.PathPrefix + "{" + strings.Join(items, ", ") + "};"
	}
	return stmt.Keyword + " " + strings.Join(rawItems(raw.body), ", ") + ";"
}

// splitItems cuts an item list on top-level commas and canonicalizes each
// entry: whitespace collapsed, alias dropped, Unicode normalized to NFC so
// visually identical names compare equal.
func splitItems(list string) []string {
	var items []string
	for _, part := range splitTopLevel(list) {
		name := canonicalName(part)
		if name == "" {
			continue
		}
		items = append(items, name)
	}
	return items
}

// rawItems is splitItems without alias stripping, for fix rendering.
func rawItems(list string) []string {
	var items []string
	for _, part := range splitTopLevel(list) {
		flat := strings.Join(strings.Fields(part), " ")
		if flat == "" {
			continue
		}
		items = append(items, flat)
	}
	return items
}

// splitTopLevel splits on commas that sit outside any nested brace group.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// canonicalName flattens whitespace, drops an "as alias" suffix, and
// normalizes to NFC.
func canonicalName(item string) string {
	flat := strings.Join(strings.Fields(item), " ")
	if i := strings.Index(flat, " as "); i >= 0 {
		flat = flat[:i]
	}
	return norm.NFC.String(strings.TrimSpace(flat))
}

// duplicateItems returns each item name that occurs more than once, one
// entry per duplicated name, in first-occurrence order.
func duplicateItems(items []string) []string {
	seen := make(map[string]int, len(items))
	var dups []string
	for _, name := range items {
		seen[name]++
		if seen[name] == 2 {
			dups = append(dups, name)
		}
	}
	return dups
}

// indexTopLevelByte finds the first occurrence of b outside nested groups.
func indexTopLevelByte(s string, b byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if s[i] == b && depth == 0 {
				return i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		default:
			if s[i] == b && depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchingClose returns the index of the brace closing the group that was
// already opened before s, or -1 when the group never closes.
func matchingClose(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}
