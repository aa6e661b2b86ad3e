//go:build !windows

// Package osinput wraps the OS cursor, input synthesis and foreground
// window primitives consumed by the redirection engine.
package osinput

import (
	"fmt"

	"mseat/internal/route"
)

// Stub implementation for non-Windows platforms

// Input is the stub input primitive set.
type Input struct{}

// New returns the stub input primitive set.
func New() *Input {
	return &Input{}
}

// Pos reads the cursor position (stub).
func (i *Input) Pos() (int32, int32, error) {
	return 0, 0, fmt.Errorf("cursor access not supported on this platform")
}

// SetPos places the cursor (stub).
func (i *Input) SetPos(x, y int32) error {
	return fmt.Errorf("cursor access not supported on this platform")
}

// MouseButton synthesizes a button transition (stub).
func (i *Input) MouseButton(b route.Button, down bool) error {
	return fmt.Errorf("input synthesis not supported on this platform")
}

// Wheel synthesizes a wheel event (stub).
func (i *Input) Wheel(delta int16) error {
	return fmt.Errorf("input synthesis not supported on this platform")
}

// Key synthesizes a key transition (stub).
func (i *Input) Key(vkey, scan uint16, down bool) error {
	return fmt.Errorf("input synthesis not supported on this platform")
}

// Current returns the foreground window (stub).
func (i *Input) Current() route.Window {
	return 0
}

// Raise brings a window to foreground (stub).
func (i *Input) Raise(w route.Window) bool {
	return false
}

// IsAdmin reports process elevation (stub).
func IsAdmin() bool {
	return false
}
