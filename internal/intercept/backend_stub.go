//go:build !windows

package intercept

import (
	"fmt"
	"time"

	"mseat/internal/device"
)

// Stub backend for non-Windows platforms

// WindowsBackend is the stub raw-input backend.
type WindowsBackend struct{}

// NewBackend creates a stub backend.
func NewBackend() *WindowsBackend {
	return &WindowsBackend{}
}

// SetHandler installs the event consumer (stub).
func (b *WindowsBackend) SetHandler(h Handler) {}

// Run starts the dispatch loop (stub).
func (b *WindowsBackend) Run() error {
	return fmt.Errorf("raw input capture not supported on this platform")
}

// Close tears the loop down (stub).
func (b *WindowsBackend) Close() {}

// Register requests exclusive raw delivery (stub).
func (b *WindowsBackend) Register(class device.Class) error {
	return fmt.Errorf("raw input capture not supported on this platform")
}

// Unregister restores default delivery (stub).
func (b *WindowsBackend) Unregister(class device.Class) error {
	return nil
}

// StartFocusPoll schedules the focus poll (stub).
func (b *WindowsBackend) StartFocusPoll(interval time.Duration, fn func()) error {
	return fmt.Errorf("focus polling not supported on this platform")
}

// StopFocusPoll cancels the focus poll (stub).
func (b *WindowsBackend) StopFocusPoll() {}
