package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStops(t *testing.T) {
	s := newSpinner(context.Background(), "Pulling...")
	s.start()
	time.Sleep(100 * time.Millisecond)
	s.stop()
}

func TestSpinnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinner(ctx, "Pulling...")
	s.start()
	cancel()

	// The animation goroutine notices cancellation on its own; stop must
	// still return without hanging.
	time.Sleep(100 * time.Millisecond)
	s.stop()
}
