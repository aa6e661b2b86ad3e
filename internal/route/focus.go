package route

import (
	"sync"

	"mseat/internal/display"
)

// Tracker records, per region, the top-level window last observed to
// hold foreground focus while input targeted that region. Records go
// stale when the window closes; liveness is never validated here, the
// downstream foreground/injection calls no-op on a dead handle.
type Tracker struct {
	mu sync.Mutex
	m  map[display.RegionID]Window
}

// NewTracker returns an empty focus tracker.
func NewTracker() *Tracker {
	return &Tracker{m: make(map[display.RegionID]Window)}
}

// Record stores or updates the focus record for a region.
func (t *Tracker) Record(region display.RegionID, win Window) {
	if region == 0 || win == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m[region] = win
}

// Lookup returns the recorded window for a region, if any.
func (t *Tracker) Lookup(region display.RegionID) (Window, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	win, ok := t.m[region]
	return win, ok
}

// ClearAll drops every record. Called when typing redirection is
// disabled.
func (t *Tracker) ClearAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m = make(map[display.RegionID]Window)
}
