// Package fix applies the suggested rewrites attached to diagnostics, such
// as collapsing a multi-line use statement back to one line.
package fix

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"uselint/internal/diag"
	"uselint/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines the selection strategy for fixes.
type ApplyMode uint8

const (
	// ApplyModeOnce applies only the first candidate fix.
	ApplyModeOnce ApplyMode = iota
	// ApplyModeAll applies every non-conflicting fix.
	ApplyModeAll
	// ApplyModeID applies the single fix with the matching ID.
	ApplyModeID
)

// ApplyOptions configures how fixes are selected and applied.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	// DryRun computes everything but writes nothing to disk.
	DryRun bool
	// Backup writes a .bak copy next to each modified file.
	Backup bool
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID        string
	Title     string
	Code      diag.Code
	Message   string
	Path      string
	EditCount int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange summarises modifications performed on a file.
type FileChange struct {
	Path      string
	EditCount int
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	id    string
	order int
}

// Apply collects fixes from diagnostics, selects a subset according to
// opts, and applies them file by file, edits in descending offset order so
// earlier spans stay valid.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	candidates := gatherCandidates(diagnostics)
	if len(candidates) == 0 {
		return result, ErrNoFixes
	}
	sortCandidates(candidates)

	selected, selectionSkips := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, selectionSkips...)
	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	if err := applyCandidates(fs, selected, opts, result); err != nil {
		return result, err
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	return result, nil
}

// gatherCandidates flattens diagnostics into fix candidates with synthetic
// deterministic IDs.
func gatherCandidates(diagnostics []diag.Diagnostic) []candidate {
	var cands []candidate
	order := 0
	for _, d := range diagnostics {
		for idx, f := range d.Fixes {
			if len(f.Edits) == 0 {
				continue
			}
			cands = append(cands, candidate{
				diag:  d,
				fix:   f,
				id:    fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, idx),
				order: order,
			})
			order++
		}
	}
	return cands
}

func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].diag, candidates[j].diag
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		return candidates[i].order < candidates[j].order
	})
}

func selectCandidates(candidates []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	switch opts.Mode {
	case ApplyModeID:
		for _, cand := range candidates {
			if cand.id == opts.TargetID {
				return []candidate{cand}, nil
			}
		}
		return nil, []SkippedFix{{ID: opts.TargetID, Reason: "fix id not found"}}
	case ApplyModeAll:
		return candidates, nil
	case ApplyModeOnce:
		return candidates[:1], nil
	default:
		return nil, nil
	}
}

// applyCandidates groups accepted edits per file and rewrites each file in
// a single descending-offset pass, so every edit keeps its original
// coordinates.
func applyCandidates(fs *source.FileSet, selected []candidate, opts ApplyOptions, result *ApplyResult) error {
	pending := make(map[source.FileID][]diag.FixEdit)
	var order []source.FileID

	for _, cand := range selected {
		fileID := cand.diag.Primary.File
		file := fs.Get(fileID)

		if file == nil {
			result.Skipped = append(result.Skipped, SkippedFix{
				ID: cand.id, Title: cand.fix.Title, Reason: "target file is unknown",
			})
			continue
		}
		if file.Flags&source.FileVirtual != 0 {
			result.Skipped = append(result.Skipped, SkippedFix{
				ID: cand.id, Title: cand.fix.Title, Reason: "target file is virtual",
			})
			continue
		}
		if !editsInRange(cand.fix.Edits, len(file.Content)) {
			result.Skipped = append(result.Skipped, SkippedFix{
				ID: cand.id, Title: cand.fix.Title, Reason: "edit span out of range",
			})
			continue
		}
		if overlapsClaimed(pending[fileID], cand.fix.Edits) {
			result.Skipped = append(result.Skipped, SkippedFix{
				ID: cand.id, Title: cand.fix.Title,
				Reason: "conflicts with a previously applied fix",
			})
			continue
		}

		if _, seen := pending[fileID]; !seen {
			order = append(order, fileID)
		}
		pending[fileID] = append(pending[fileID], cand.fix.Edits...)

		result.Applied = append(result.Applied, AppliedFix{
			ID:        cand.id,
			Title:     cand.fix.Title,
			Code:      cand.diag.Code,
			Message:   cand.diag.Message,
			Path:      file.Path,
			EditCount: len(cand.fix.Edits),
		})
	}

	for _, fileID := range order {
		file := fs.Get(fileID)
		edits := pending[fileID]

		sort.SliceStable(edits, func(i, j int) bool {
			return edits[i].Span.Start > edits[j].Span.Start
		})
		working := append([]byte(nil), file.Content...)
		for _, edit := range edits {
			start, end := int(edit.Span.Start), int(edit.Span.End)
			suffix := append([]byte(nil), working[end:]...)
			working = append(append(working[:start], []byte(edit.NewText)...), suffix...)
		}

		result.FileChanges = append(result.FileChanges, FileChange{
			Path:      file.Path,
			EditCount: len(edits),
		})
		if opts.DryRun {
			continue
		}
		if opts.Backup {
			if err := os.WriteFile(file.Path+".bak", file.Content, 0o644); err != nil {
				return fmt.Errorf("failed to write backup for %s: %w", file.Path, err)
			}
		}
		if err := os.WriteFile(file.Path, working, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}
	return nil
}

func editsInRange(edits []diag.FixEdit, size int) bool {
	for _, edit := range edits {
		if edit.Span.End < edit.Span.Start || int(edit.Span.End) > size {
			return false
		}
	}
	return true
}

func overlapsClaimed(claimed []diag.FixEdit, edits []diag.FixEdit) bool {
	for _, prev := range claimed {
		for _, edit := range edits {
			if edit.Span.Start < prev.Span.End && prev.Span.Start < edit.Span.End {
				return true
			}
		}
	}
	return false
}
