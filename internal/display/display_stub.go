//go:build !windows

package display

import "fmt"

// Stub implementation for non-Windows platforms

// Enumerate lists display regions (stub).
func Enumerate() ([]Region, error) {
	return nil, fmt.Errorf("display enumeration not supported on this platform")
}

// FromWindow returns the region containing a window (stub).
func FromWindow(hwnd uintptr) (RegionID, bool) {
	return 0, false
}

// Confine restricts the cursor to a region (stub).
func Confine(r Region) error {
	return fmt.Errorf("cursor confinement not supported on this platform")
}

// Release lifts cursor confinement (stub).
func Release() {}
