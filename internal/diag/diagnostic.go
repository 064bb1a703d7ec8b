package diag

import (
	"uselint/internal/source"
)

// Note attaches secondary context to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// FixEdit replaces the text of Span with NewText.
type FixEdit struct {
	Span    source.Span
	NewText string
}

// Fix is a suggested rewrite that resolves its diagnostic.
type Fix struct {
	Title string
	Edits []FixEdit
}

// Diagnostic is a single immutable finding. Analyzers create diagnostics;
// only the reporter layer consumes them.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}
