package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"uselint/internal/check"
	"uselint/internal/driver"
	"uselint/internal/source"
	"uselint/internal/ui"
)

type checkOutcome struct {
	fileSet *source.FileSet
	results []driver.FileResult
	err     error
}

// runCheckDirWithUI runs a directory check with the interactive progress view
// attached to the driver's event channel. The check itself runs in a
// background goroutine; the Bubble Tea program owns the terminal until the
// event channel closes.
func runCheckDirWithUI(ctx context.Context, title, dir string, files []string, cfg *check.Config, opts driver.Options) (*source.FileSet, []driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Events = events
		fs, results, err := driver.CheckDir(ctx, dir, cfg, optsCopy)
		outcomeCh <- checkOutcome{fileSet: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// The program can quit before the check is done (ctrl+c); keep the
	// event channel moving so the checker's sends never block.
	drainEvents(events)
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}

// drainEvents discards remaining events until the channel closes.
func drainEvents(events <-chan driver.Event) {
	for range events {
	}
}
