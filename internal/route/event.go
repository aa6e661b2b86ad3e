// Package route implements the redirection core: per-device region
// assignments, per-region focus records, and the engine that turns raw
// device events into synthesized system input.
package route

import "mseat/internal/device"

// Button identifies a pointing-device button.
type Button int

const (
	ButtonLeft   Button = 1
	ButtonRight  Button = 2
	ButtonMiddle Button = 3
)

// ButtonFlags is the set of button/wheel transitions carried by one
// raw pointing event. The flags are an unordered set; the engine
// applies them in a fixed canonical order.
type ButtonFlags uint16

const (
	LeftDown ButtonFlags = 1 << iota
	LeftUp
	RightDown
	RightUp
	MiddleDown
	MiddleUp
	WheelScroll
)

// PointerEvent is one raw pointing-device report: relative motion plus
// zero or more button/wheel transitions.
type PointerEvent struct {
	Device  device.ID
	DX, DY  int32
	Buttons ButtonFlags
	// Wheel is the signed wheel delta, valid when WheelScroll is set.
	// One detent is +-120 by convention.
	Wheel int16
}

// KeyEvent is one raw typing-device report.
type KeyEvent struct {
	Device device.ID
	VKey   uint16
	Scan   uint16
	Down   bool
}

// Window is an opaque top-level window identity (HWND on Windows).
// The core never validates liveness; injection against a dead window
// no-ops downstream.
type Window uintptr
