package route

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mseat/internal/display"
)

func TestTrackerRecordLookup(t *testing.T) {
	tr := NewTracker()

	region := display.RegionID(5)
	_, ok := tr.Lookup(region)
	assert.False(t, ok)

	tr.Record(region, Window(0x1234))
	win, ok := tr.Lookup(region)
	assert.True(t, ok)
	assert.Equal(t, Window(0x1234), win)

	// A newer observation replaces the record.
	tr.Record(region, Window(0x5678))
	win, _ = tr.Lookup(region)
	assert.Equal(t, Window(0x5678), win)
}

func TestTrackerIgnoresZeroValues(t *testing.T) {
	tr := NewTracker()

	tr.Record(0, Window(0x1234))
	tr.Record(display.RegionID(5), 0)

	_, ok := tr.Lookup(0)
	assert.False(t, ok)
	_, ok = tr.Lookup(5)
	assert.False(t, ok)
}

func TestTrackerClearAll(t *testing.T) {
	tr := NewTracker()
	tr.Record(1, Window(0x10))
	tr.Record(2, Window(0x20))

	tr.ClearAll()

	_, ok := tr.Lookup(1)
	assert.False(t, ok)
	_, ok = tr.Lookup(2)
	assert.False(t, ok)
}
