package diagfmt

import (
	"fmt"
	"io"

	"uselint/internal/diag"
	"uselint/internal/source"
)

// Short writes the compact one-line-per-diagnostic form, the same
// representation golden tests compare against.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet) {
	out := diag.FormatShortDiagnostics(bag.Items(), fs)
	if out == "" {
		return
	}
	fmt.Fprintln(w, out)
}
