package scan

import (
	"uselint/internal/source"
)

// Line is one physical line of a file: its 1-based number, its text
// without the terminator, and the byte span of that text.
type Line struct {
	Num  uint32
	Text string
	Span source.Span
}

// Lines materializes the ordered line sequence of a file. The result is
// independent of the file's content buffer only in structure; Text slices
// are copies and safe to hold.
func Lines(f *source.File) []Line {
	count := f.LineCount()
	out := make([]Line, 0, count)
	for n := uint32(1); n <= count; n++ {
		sp := f.LineSpan(n)
		out = append(out, Line{
			Num:  n,
			Text: string(f.Content[sp.Start:sp.End]),
			Span: sp,
		})
	}
	return out
}
