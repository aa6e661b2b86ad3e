package route

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mseat/internal/display"
)

// Fakes standing in for the OS primitives, per the message-passing
// boundary: the engine is asserted on synthesized output and table
// state, never on real OS side effects.

type fakeCursor struct {
	x, y   int32
	posErr error
	sets   [][2]int32
}

func (c *fakeCursor) Pos() (int32, int32, error) {
	return c.x, c.y, c.posErr
}

func (c *fakeCursor) SetPos(x, y int32) error {
	c.x, c.y = x, y
	c.sets = append(c.sets, [2]int32{x, y})
	return nil
}

type synthOp struct {
	kind   string // "btn", "wheel", "key"
	button Button
	down   bool
	wheel  int16
	vkey   uint16
	// cursor position at the moment of synthesis
	atX, atY int32
}

type fakeSynth struct {
	cursor *fakeCursor
	ops    []synthOp
	keyErr error
}

func (s *fakeSynth) MouseButton(b Button, down bool) error {
	s.ops = append(s.ops, synthOp{kind: "btn", button: b, down: down, atX: s.cursor.x, atY: s.cursor.y})
	return nil
}

func (s *fakeSynth) Wheel(delta int16) error {
	s.ops = append(s.ops, synthOp{kind: "wheel", wheel: delta, atX: s.cursor.x, atY: s.cursor.y})
	return nil
}

func (s *fakeSynth) Key(vkey, scan uint16, down bool) error {
	s.ops = append(s.ops, synthOp{kind: "key", vkey: vkey, down: down})
	return s.keyErr
}

type fakeForeground struct {
	current Window
	refuse  bool
	raised  []Window
}

func (f *fakeForeground) Current() Window { return f.current }

func (f *fakeForeground) Raise(w Window) bool {
	f.raised = append(f.raised, w)
	if f.refuse {
		return false
	}
	f.current = w
	return true
}

type fakeRegions struct {
	bounds map[display.RegionID]display.Rect
	of     map[Window]display.RegionID
}

func (r *fakeRegions) Bounds(id display.RegionID) (display.Rect, bool) {
	b, ok := r.bounds[id]
	return b, ok
}

func (r *fakeRegions) RegionOf(w Window) (display.RegionID, bool) {
	id, ok := r.of[w]
	return id, ok
}

type engineFixture struct {
	engine  *Engine
	cursor  *fakeCursor
	synth   *fakeSynth
	fg      *fakeForeground
	regions *fakeRegions
	point   *Table
	typing  *Table
	tracker *Tracker
}

func newFixture() *engineFixture {
	cursor := &fakeCursor{}
	synth := &fakeSynth{cursor: cursor}
	fg := &fakeForeground{}
	regions := &fakeRegions{
		bounds: map[display.RegionID]display.Rect{
			1: {Left: 0, Top: 0, Right: 1920, Bottom: 1080},
			2: {Left: 1920, Top: 0, Right: 3840, Bottom: 1080},
		},
		of: map[Window]display.RegionID{},
	}
	point := NewTable()
	typing := NewTable()
	tracker := NewTracker()
	return &engineFixture{
		engine:  NewEngine(point, typing, tracker, cursor, synth, fg, regions),
		cursor:  cursor,
		synth:   synth,
		fg:      fg,
		regions: regions,
		point:   point,
		typing:  typing,
		tracker: tracker,
	}
}

func TestPointerUnassignedPassesThroughUnclamped(t *testing.T) {
	f := newFixture()
	f.cursor.x, f.cursor.y = 1900, 500

	f.engine.HandlePointer(PointerEvent{Device: 1, DX: 500, DY: 700})

	// Way past region 1's edge, untouched: no assignment, no clamp.
	assert.Equal(t, int32(2400), f.cursor.x)
	assert.Equal(t, int32(1200), f.cursor.y)
}

func TestPointerClampedToAssignedRegion(t *testing.T) {
	f := newFixture()

	// D1 on region 1, D2 on region 2 (the side-by-side 1920x1080 pair).
	f.point.Assign(1, 1)
	f.point.Assign(2, 2)

	f.cursor.x, f.cursor.y = 1900, 500
	f.engine.HandlePointer(PointerEvent{Device: 1, DX: 50, DY: 0})
	assert.Equal(t, int32(1919), f.cursor.x, "clamped to region 1 right edge")
	assert.Equal(t, int32(500), f.cursor.y)

	f.cursor.x, f.cursor.y = 1930, 500
	f.engine.HandlePointer(PointerEvent{Device: 2, DX: -50, DY: 0})
	assert.Equal(t, int32(1920), f.cursor.x, "clamped to region 2 left edge")
	assert.Equal(t, int32(500), f.cursor.y)
}

func TestPointerClampInvariantUnderDeltaSequences(t *testing.T) {
	f := newFixture()
	f.point.Assign(1, 2)
	f.cursor.x, f.cursor.y = 2000, 500

	deltas := [][2]int32{
		{5000, 0}, {-9000, 0}, {0, 5000}, {0, -5000},
		{-1, -1}, {3, 3}, {10000, 10000},
	}
	bounds := f.regions.bounds[2]
	for _, d := range deltas {
		f.engine.HandlePointer(PointerEvent{Device: 1, DX: d[0], DY: d[1]})
		assert.GreaterOrEqual(t, f.cursor.x, bounds.Left)
		assert.LessOrEqual(t, f.cursor.x, bounds.Right-1)
		assert.GreaterOrEqual(t, f.cursor.y, bounds.Top)
		assert.LessOrEqual(t, f.cursor.y, bounds.Bottom-1)
	}
}

func TestPointerZeroEventIsNoOp(t *testing.T) {
	f := newFixture()
	f.cursor.x, f.cursor.y = 100, 100

	f.engine.HandlePointer(PointerEvent{Device: 1})

	assert.Empty(t, f.cursor.sets, "no cursor write for an empty event")
	assert.Empty(t, f.synth.ops)
}

func TestPointerMoveBeforeClick(t *testing.T) {
	f := newFixture()
	f.point.Assign(1, 1)
	f.cursor.x, f.cursor.y = 1900, 500

	f.engine.HandlePointer(PointerEvent{Device: 1, DX: 100, DY: 0, Buttons: LeftDown})

	require.Len(t, f.synth.ops, 1)
	op := f.synth.ops[0]
	assert.Equal(t, "btn", op.kind)
	assert.Equal(t, ButtonLeft, op.button)
	assert.True(t, op.down)
	// The click must land at the already-clamped position.
	assert.Equal(t, int32(1919), op.atX)
	assert.Equal(t, int32(500), op.atY)
}

func TestPointerCanonicalButtonOrder(t *testing.T) {
	f := newFixture()

	ev := PointerEvent{
		Device:  1,
		Buttons: WheelScroll | MiddleUp | MiddleDown | RightUp | RightDown | LeftUp | LeftDown,
		Wheel:   -120,
	}
	f.engine.HandlePointer(ev)

	require.Len(t, f.synth.ops, 7)
	assert.Equal(t, synthOp{kind: "btn", button: ButtonLeft, down: true}, stripAt(f.synth.ops[0]))
	assert.Equal(t, synthOp{kind: "btn", button: ButtonLeft, down: false}, stripAt(f.synth.ops[1]))
	assert.Equal(t, synthOp{kind: "btn", button: ButtonRight, down: true}, stripAt(f.synth.ops[2]))
	assert.Equal(t, synthOp{kind: "btn", button: ButtonRight, down: false}, stripAt(f.synth.ops[3]))
	assert.Equal(t, synthOp{kind: "btn", button: ButtonMiddle, down: true}, stripAt(f.synth.ops[4]))
	assert.Equal(t, synthOp{kind: "btn", button: ButtonMiddle, down: false}, stripAt(f.synth.ops[5]))
	assert.Equal(t, synthOp{kind: "wheel", wheel: -120}, stripAt(f.synth.ops[6]))
}

func stripAt(op synthOp) synthOp {
	op.atX, op.atY = 0, 0
	return op
}

func TestPointerWheelDeltaPreserved(t *testing.T) {
	f := newFixture()
	f.point.Assign(1, 1)
	f.cursor.x, f.cursor.y = 500, 500

	f.engine.HandlePointer(PointerEvent{Device: 1, Buttons: WheelScroll, Wheel: -120})

	require.Len(t, f.synth.ops, 1)
	assert.Equal(t, int16(-120), f.synth.ops[0].wheel)
	assert.Equal(t, int32(500), f.synth.ops[0].atX, "wheel fires at the updated cursor position")
}

func TestPointerCursorReadFailureDropsEvent(t *testing.T) {
	f := newFixture()
	f.cursor.posErr = errors.New("no cursor")

	f.engine.HandlePointer(PointerEvent{Device: 1, DX: 10, Buttons: LeftDown})

	assert.Empty(t, f.cursor.sets)
	assert.Empty(t, f.synth.ops, "no synthesis without a known position")
}

func TestKeyRoutedToRecordedWindow(t *testing.T) {
	f := newFixture()
	f.typing.Assign(9, 2)
	f.tracker.Record(2, Window(0xBEEF))
	f.fg.current = Window(0xAAAA)

	f.engine.HandleKey(KeyEvent{Device: 9, VKey: 0x41, Down: true})

	require.Len(t, f.fg.raised, 1)
	assert.Equal(t, Window(0xBEEF), f.fg.raised[0])
	require.Len(t, f.synth.ops, 1)
	assert.Equal(t, "key", f.synth.ops[0].kind)
	assert.Equal(t, uint16(0x41), f.synth.ops[0].vkey)
	assert.True(t, f.synth.ops[0].down)
}

func TestKeyUpMatchesTransition(t *testing.T) {
	f := newFixture()
	f.fg.current = Window(0xAAAA)

	f.engine.HandleKey(KeyEvent{Device: 9, VKey: 0x41, Down: false})

	require.Len(t, f.synth.ops, 1)
	assert.False(t, f.synth.ops[0].down)
}

func TestKeyUnassignedFallsBackToForeground(t *testing.T) {
	f := newFixture()
	f.fg.current = Window(0xCCCC)

	f.engine.HandleKey(KeyEvent{Device: 9, VKey: 0x20, Down: true})

	// Falls back to raising whatever already is foreground.
	require.Len(t, f.fg.raised, 1)
	assert.Equal(t, Window(0xCCCC), f.fg.raised[0])
	require.Len(t, f.synth.ops, 1)
}

func TestKeyRaiseRefusedStillInjects(t *testing.T) {
	f := newFixture()
	f.typing.Assign(9, 1)
	f.tracker.Record(1, Window(0xDEAD)) // window already gone
	f.fg.current = Window(0x1111)
	f.fg.refuse = true

	f.engine.HandleKey(KeyEvent{Device: 9, VKey: 0x41, Down: true})

	// Silent degradation: the key lands in whatever stayed foreground.
	require.Len(t, f.synth.ops, 1)
	assert.Equal(t, uint16(0x41), f.synth.ops[0].vkey)
}

func TestKeySynthesisErrorDoesNotPropagate(t *testing.T) {
	f := newFixture()
	f.fg.current = Window(0x1111)
	f.synth.keyErr = errors.New("SendInput failed")

	assert.NotPanics(t, func() {
		f.engine.HandleKey(KeyEvent{Device: 9, VKey: 0x41, Down: true})
	})
}

func TestRecordForegroundNow(t *testing.T) {
	f := newFixture()
	f.fg.current = Window(0xF00)
	f.regions.of[Window(0xF00)] = 2

	f.engine.RecordForegroundNow()

	win, ok := f.tracker.Lookup(2)
	assert.True(t, ok)
	assert.Equal(t, Window(0xF00), win)
}

func TestRecordForegroundNowNoWindowNoRecord(t *testing.T) {
	f := newFixture()
	f.fg.current = 0

	f.engine.RecordForegroundNow()

	_, ok := f.tracker.Lookup(1)
	assert.False(t, ok)
	_, ok = f.tracker.Lookup(2)
	assert.False(t, ok)
}

func TestRecordForegroundNowWindowOffAllRegions(t *testing.T) {
	f := newFixture()
	f.fg.current = Window(0xF00) // not in regions.of

	f.engine.RecordForegroundNow()

	_, ok := f.tracker.Lookup(1)
	assert.False(t, ok)
}

func TestClearTypingDropsAssignmentsAndRecords(t *testing.T) {
	f := newFixture()
	f.typing.Assign(9, 1)
	f.tracker.Record(1, Window(0x10))
	f.point.Assign(1, 1)

	f.engine.ClearTyping()

	assert.Equal(t, 0, f.typing.Len())
	_, ok := f.tracker.Lookup(1)
	assert.False(t, ok)
	assert.Equal(t, 1, f.point.Len(), "pointing table untouched")
}
