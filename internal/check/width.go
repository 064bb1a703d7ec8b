package check

import (
	"fmt"
	"unicode/utf8"

	"uselint/internal/diag"
	"uselint/internal/scan"
	"uselint/internal/source"
)

// AnalyzeLineWidth reports every physical line whose character count
// strictly exceeds cfg.MaxLineWidth. The count is in runes, excludes the
// terminator, and includes all whitespace; content type is irrelevant, a
// comment line is measured like a code line.
func AnalyzeLineWidth(f *source.File, cfg *Config, r diag.Reporter) {
	for _, line := range scan.Lines(f) {
		length := utf8.RuneCountInString(line.Text)
		if length <= cfg.MaxLineWidth {
			continue
		}
		r.Report(diag.NewDefault(diag.WidthLineTooLong, line.Span,
			fmt.Sprintf("line is %d characters long, limit is %d", length, cfg.MaxLineWidth)))
	}
}
