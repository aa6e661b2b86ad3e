//go:build !windows

package device

import "fmt"

// Stub implementation for non-Windows platforms

// List enumerates attached devices (stub).
func List(class Class) ([]Device, error) {
	return nil, fmt.Errorf("device enumeration not supported on this platform")
}
