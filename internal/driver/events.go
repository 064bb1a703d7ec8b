package driver

// EventKind tags progress events emitted while checking a directory.
type EventKind uint8

const (
	// EventStarted fires when a file's pipeline begins.
	EventStarted EventKind = iota
	// EventFinished fires when a file's pipeline completes.
	EventFinished
	// EventFailed fires when a file could not be loaded.
	EventFailed
)

// Event is one progress notification for the UI layer.
type Event struct {
	Kind        EventKind
	Path        string
	Diagnostics int
	HasErrors   bool
	FromCache   bool
}
