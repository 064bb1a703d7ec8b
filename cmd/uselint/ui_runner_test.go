package main

import (
	"testing"
	"time"

	"uselint/internal/driver"
)

func TestDrainEventsUnblocksProducer(t *testing.T) {
	// A tiny buffer forces the producer to block unless someone keeps
	// receiving, the situation after the progress program quits early.
	events := make(chan driver.Event, 1)
	done := make(chan struct{})

	go func() {
		for i := 0; i < 64; i++ {
			events <- driver.Event{Kind: driver.EventFinished, Path: "f.rs"}
		}
		close(events)
		close(done)
	}()

	drainEvents(events)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("producer still blocked after drain")
	}
}
