package route

import (
	"github.com/sirupsen/logrus"

	"mseat/internal/display"
)

// Cursor reads and writes the absolute system cursor position.
type Cursor interface {
	Pos() (x, y int32, err error)
	SetPos(x, y int32) error
}

// Synth emits system-level input events. Mouse events land at the
// current cursor position; key events land in the current foreground
// window (an OS constraint, there is no per-window injection target).
type Synth interface {
	MouseButton(b Button, down bool) error
	Wheel(delta int16) error
	Key(vkey, scan uint16, down bool) error
}

// Foreground queries and changes the OS foreground window.
type Foreground interface {
	Current() Window
	// Raise is best effort; the OS may refuse foreground changes from
	// a background process.
	Raise(Window) bool
}

// Regions resolves region ids to bounds and windows to regions.
type Regions interface {
	Bounds(display.RegionID) (display.Rect, bool)
	RegionOf(Window) (display.RegionID, bool)
}

// Engine is the redirection core. It is pure given its injected OS
// interfaces: every handler maps (event, tables) to synthesized output
// plus table mutations, so the whole thing is testable with fakes.
//
// Handlers run on the host's single event-dispatch thread, one event
// at a time, and never block.
type Engine struct {
	pointing *Table
	typing   *Table
	tracker  *Tracker
	cursor   Cursor
	synth    Synth
	fg       Foreground
	regions  Regions
	log      *logrus.Entry
}

// NewEngine wires the redirection engine to its collaborators.
func NewEngine(pointing, typing *Table, tracker *Tracker, cursor Cursor, synth Synth, fg Foreground, regions Regions) *Engine {
	return &Engine{
		pointing: pointing,
		typing:   typing,
		tracker:  tracker,
		cursor:   cursor,
		synth:    synth,
		fg:       fg,
		regions:  regions,
		log:      logrus.WithField("component", "engine"),
	}
}

// HandlePointer processes one raw pointing event: move the cursor
// (clamped to the assigned region, unclamped when unassigned), then
// synthesize button/wheel transitions at the updated position. The
// position update must precede button synthesis so clicks land inside
// the right region. Failures degrade to skipping the one event.
func (e *Engine) HandlePointer(ev PointerEvent) {
	if ev.DX == 0 && ev.DY == 0 && ev.Buttons == 0 {
		return // nothing to do, raw event already consumed
	}

	x, y, err := e.cursor.Pos()
	if err != nil {
		e.log.WithError(err).Debug("cursor position read failed, dropping pointer event")
		return
	}

	nx, ny := x+ev.DX, y+ev.DY
	if region, ok := e.pointing.Lookup(ev.Device); ok {
		if bounds, found := e.regions.Bounds(region); found {
			nx, ny = bounds.ClampPoint(nx, ny)
		}
	}

	if err := e.cursor.SetPos(nx, ny); err != nil {
		e.log.WithError(err).Debug("cursor position set failed")
	}

	e.synthesizeButtons(ev)
}

// synthesizeButtons translates the event's transition flags in the
// canonical order: left-down, left-up, right-down, right-up,
// middle-down, middle-up, wheel. The flags are read as a set, so the
// fixed order is what makes multi-flag events deterministic.
func (e *Engine) synthesizeButtons(ev PointerEvent) {
	emit := func(b Button, down bool) {
		if err := e.synth.MouseButton(b, down); err != nil {
			e.log.WithError(err).WithField("button", b).Debug("button synthesis failed")
		}
	}

	if ev.Buttons&LeftDown != 0 {
		emit(ButtonLeft, true)
	}
	if ev.Buttons&LeftUp != 0 {
		emit(ButtonLeft, false)
	}
	if ev.Buttons&RightDown != 0 {
		emit(ButtonRight, true)
	}
	if ev.Buttons&RightUp != 0 {
		emit(ButtonRight, false)
	}
	if ev.Buttons&MiddleDown != 0 {
		emit(ButtonMiddle, true)
	}
	if ev.Buttons&MiddleUp != 0 {
		emit(ButtonMiddle, false)
	}
	if ev.Buttons&WheelScroll != 0 {
		if err := e.synth.Wheel(ev.Wheel); err != nil {
			e.log.WithError(err).Debug("wheel synthesis failed")
		}
	}
}

// HandleKey processes one raw typing event: resolve the target window
// through the assignment table and focus records, raise it best
// effort, then inject the key. When the raise is refused the key still
// goes out and lands in whatever window the OS kept in front; the user
// recovers by focusing the intended window manually.
func (e *Engine) HandleKey(ev KeyEvent) {
	var target Window
	if region, ok := e.typing.Lookup(ev.Device); ok {
		if win, found := e.tracker.Lookup(region); found {
			target = win
		}
	}
	if target == 0 {
		// Unassigned device, or no focus record yet: route to the
		// current OS foreground rather than dropping the key.
		target = e.fg.Current()
	}

	if target != 0 && !e.fg.Raise(target) {
		e.log.WithField("window", target).Debug("foreground change refused, injecting anyway")
	}

	if err := e.synth.Key(ev.VKey, ev.Scan, ev.Down); err != nil {
		e.log.WithError(err).WithField("vkey", ev.VKey).Debug("key synthesis failed")
	}
}

// RecordForegroundNow samples the current foreground window, resolves
// the region containing it, and updates that region's focus record.
// Called once when typing redirection is enabled and then on a fixed
// sub-second poll interval from the dispatch loop's timer.
func (e *Engine) RecordForegroundNow() {
	win := e.fg.Current()
	if win == 0 {
		return
	}
	region, ok := e.regions.RegionOf(win)
	if !ok {
		return
	}
	e.tracker.Record(region, win)
}

// ClearTyping drops typing assignments and focus records. Used when
// the typing intercept session is disabled.
func (e *Engine) ClearTyping() {
	e.typing.ClearAll()
	e.tracker.ClearAll()
}

// ClearPointing drops pointing assignments. Used when the pointing
// intercept session is disabled.
func (e *Engine) ClearPointing() {
	e.pointing.ClearAll()
}
