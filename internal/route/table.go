package route

import (
	"sync"

	"mseat/internal/device"
	"mseat/internal/display"
)

// Table maps device identities to assigned regions. A device absent
// from the table is unassigned. Reads come from the event-delivery
// thread and writes from control calls, so the whole table sits behind
// one mutex; contention is rare and brief.
type Table struct {
	mu sync.Mutex
	m  map[device.ID]display.RegionID
}

// NewTable returns an empty assignment table.
func NewTable() *Table {
	return &Table{m: make(map[device.ID]display.RegionID)}
}

// Assign sets the device's region, or removes the entry when region is
// zero. Idempotent; an identity no events will ever reference is
// simply stored and stays inert.
func (t *Table) Assign(dev device.ID, region display.RegionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if region == 0 {
		delete(t.m, dev)
		return
	}
	t.m[dev] = region
}

// Lookup returns the device's assigned region, if any.
func (t *Table) Lookup(dev device.ID) (display.RegionID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	region, ok := t.m[dev]
	return region, ok
}

// ClearAll empties the table. Called when the class's intercept
// session is disabled.
func (t *Table) ClearAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m = make(map[device.ID]display.RegionID)
}

// Len returns the number of assigned devices.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.m)
}

// Snapshot returns a copy of the table for status reporting.
func (t *Table) Snapshot() map[device.ID]display.RegionID {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[device.ID]display.RegionID, len(t.m))
	for dev, region := range t.m {
		out[dev] = region
	}
	return out
}
