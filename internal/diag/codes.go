package diag

import (
	"fmt"
)

// Code identifies a diagnostic kind. Codes form a closed set grouped into
// numeric ranges so the reporter can rank them exhaustively.
type Code uint16

const (
	// UnknownCode covers diagnostics without a specific code.
	UnknownCode Code = 0

	// Use-statement checks.
	UseInfo              Code = 1000
	UseMultiLine         Code = 1001
	UseDuplicateItem     Code = 1002
	UseUnterminatedGroup Code = 1003

	// Line-width checks.
	WidthInfo        Code = 2000
	WidthLineTooLong Code = 2001

	// I/O.
	IOLoadFileError Code = 4001

	// Configuration.
	CfgInfo            Code = 5000
	CfgInvalidMaxWidth Code = 5001
	CfgUnknownKey      Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode:          "unknown diagnostic",
	UseInfo:              "use-statement information",
	UseMultiLine:         "multi-line use statement",
	UseDuplicateItem:     "duplicate item in use statement",
	UseUnterminatedGroup: "unterminated use group",
	WidthInfo:            "line-width information",
	WidthLineTooLong:     "line exceeds width limit",
	IOLoadFileError:      "I/O load file error",
	CfgInfo:              "configuration information",
	CfgInvalidMaxWidth:   "invalid max line width",
	CfgUnknownKey:        "unknown configuration key",
}

// DefaultSeverity returns the severity a fresh diagnostic of this code
// carries. Structural problems are errors, style findings are warnings.
func (c Code) DefaultSeverity() Severity {
	switch c {
	case UseDuplicateItem, UseUnterminatedGroup, IOLoadFileError,
		CfgInvalidMaxWidth, CfgUnknownKey:
		return SevError
	case UseMultiLine, WidthLineTooLong:
		return SevWarning
	}
	return SevInfo
}

// Rank orders codes that land on the same line: malformed use statements
// first, then multi-line style findings, then width findings. Lower ranks
// sort earlier.
func (c Code) Rank() int {
	switch c {
	case UseDuplicateItem, UseUnterminatedGroup:
		return 0
	case UseMultiLine:
		return 1
	case WidthLineTooLong:
		return 2
	}
	return 3
}

// ID renders the stable string form of the code, e.g. "USE1001".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("USE%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("WID%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	}
	return "E0000"
}

// Title returns the short human description of the code.
func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// AllCodes lists every defined code in ascending order; SARIF output uses
// it to publish the rule table.
func AllCodes() []Code {
	return []Code{
		UseInfo, UseMultiLine, UseDuplicateItem, UseUnterminatedGroup,
		WidthInfo, WidthLineTooLong,
		IOLoadFileError,
		CfgInfo, CfgInvalidMaxWidth, CfgUnknownKey,
	}
}
