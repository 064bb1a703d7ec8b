package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"uselint/internal/diag"
	"uselint/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	codeColor    = color.New(color.Bold)
	gutterColor  = color.New(color.FgBlue)
	fixColor     = color.New(color.FgGreen)
)

func severityPrinter(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

// Pretty renders diagnostics in a human-readable form, one block per
// diagnostic:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	   N | <source line>
//	     | ^~~~~~~
//
// followed by notes and fix titles when enabled. The bag is expected to be
// sorted already.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	prevNoColor := color.NoColor
	color.NoColor = !opts.Color
	defer func() { color.NoColor = prevNoColor }()

	for _, d := range bag.Items() {
		writePrettyDiagnostic(w, d, fs, opts)
	}
}

func writePrettyDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	file := fs.Get(d.Primary.File)
	start, end := fs.Resolve(d.Primary)
	path := "<unknown>"
	if file != nil {
		path = file.FormatPath(opts.PathMode.mode(), fs.BaseDir())
	}

	sev := severityPrinter(d.Severity)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		path, start.Line, start.Col,
		sev.Sprint(strings.ToLower(d.Severity.String())),
		codeColor.Sprint(d.Code.ID()),
		d.Message)

	writeContext(w, file, start, end, sev, opts)

	if opts.ShowNotes {
		for _, note := range d.Notes {
			nstart, _ := fs.Resolve(note.Span)
			npath := "<unknown>"
			if nfile := fs.Get(note.Span.File); nfile != nil {
				npath = nfile.FormatPath(opts.PathMode.mode(), fs.BaseDir())
			}
			fmt.Fprintf(w, "  %s: %s:%d:%d: %s\n",
				infoColor.Sprint("note"),
				npath, nstart.Line, nstart.Col, note.Msg)
		}
	}

	if opts.ShowFixes {
		for _, fix := range d.Fixes {
			fmt.Fprintf(w, "  %s: %s\n", fixColor.Sprint("fix"), fix.Title)
			for _, edit := range fix.Edits {
				fmt.Fprintf(w, "    %s %s\n", fixColor.Sprint("->"), edit.NewText)
			}
		}
	}
}

// writeContext prints the offending source line with a caret/tilde
// underline sized in display cells, so wide runes line up.
func writeContext(w io.Writer, file *source.File, start, end source.LineCol, sev *color.Color, opts PrettyOpts) {
	if file == nil {
		return
	}
	text := file.GetLine(start.Line)
	if text == "" && start.Line > file.LineCount() {
		return
	}

	display := strings.ReplaceAll(text, "\t", "    ")
	if opts.Width > 0 {
		display = runewidth.Truncate(display, opts.Width, "…")
	}

	gutter := fmt.Sprintf("%4d", start.Line)
	fmt.Fprintf(w, "%s %s %s\n", gutterColor.Sprint(gutter), gutterColor.Sprint("|"), display)

	// Underline within the start line only; multi-line spans run to the end
	// of the line.
	prefix := lineSlice(text, 1, start.Col)
	marked := lineSlice(text, start.Col, endColOnLine(start, end, text))

	pad := runewidth.StringWidth(strings.ReplaceAll(prefix, "\t", "    "))
	ulen := runewidth.StringWidth(strings.ReplaceAll(marked, "\t", "    "))
	if ulen < 1 {
		ulen = 1
	}
	if opts.Width > 0 && pad+ulen > opts.Width {
		if pad >= opts.Width {
			return
		}
		ulen = opts.Width - pad
	}

	underline := "^" + strings.Repeat("~", ulen-1)
	fmt.Fprintf(w, "     %s %s%s\n",
		gutterColor.Sprint("|"),
		strings.Repeat(" ", pad),
		sev.Sprint(underline))
}

// lineSlice returns the byte slice of text between 1-based columns
// [from, to), clamped to the line.
func lineSlice(text string, from, to uint32) string {
	if from < 1 {
		from = 1
	}
	if to < from {
		to = from
	}
	start := int(from - 1)
	end := int(to - 1)
	if start > len(text) {
		start = len(text)
	}
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

// endColOnLine clamps the span's end column to the start line.
func endColOnLine(start, end source.LineCol, text string) uint32 {
	if end.Line != start.Line {
		return uint32(len(text)) + 1
	}
	return end.Col
}
