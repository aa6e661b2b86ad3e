// Package device enumerates physical pointing and typing devices.
package device

import (
	"fmt"
	"strings"
)

// Class distinguishes the two device classes the router handles.
type Class int

const (
	// Pointing covers mice, trackballs and touchpads.
	Pointing Class = iota
	// Typing covers keyboards and keypads.
	Typing
)

// String returns the lower-case class name.
func (c Class) String() string {
	switch c {
	case Pointing:
		return "pointing"
	case Typing:
		return "typing"
	default:
		return "unknown"
	}
}

// ID is the opaque per-session device identity. On Windows this is the
// Raw Input device handle: stable for the session, unique per physical
// device, invalidated on unplug or process restart.
type ID uintptr

// Device describes one attached input device. Read-only after
// enumeration; never persisted.
type Device struct {
	ID    ID     `json:"id"`
	Class Class  `json:"class"`
	Label string `json:"label"`
}

// FallbackLabel synthesizes a label when the OS name lookup fails.
func FallbackLabel(class Class, ordinal int) string {
	return fmt.Sprintf("%s %d", class, ordinal)
}

// LabelFromInterfacePath derives a human-readable label from a device
// interface path such as
// `\\?\HID#VID_046D&PID_C077&MI_00#8&2f28a0b5&0&0000#{...}`.
// Returns "" when the path carries nothing usable.
func LabelFromInterfacePath(path string) string {
	trimmed := strings.TrimPrefix(path, `\\?\`)
	trimmed = strings.TrimPrefix(trimmed, `\??\`)
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "#")
	if len(parts) < 2 {
		return ""
	}

	bus := parts[0]
	ids := parts[1]

	vid, pid := "", ""
	for _, seg := range strings.Split(ids, "&") {
		upper := strings.ToUpper(seg)
		switch {
		case strings.HasPrefix(upper, "VID_"):
			vid = upper[4:]
		case strings.HasPrefix(upper, "PID_"):
			pid = upper[4:]
		}
	}

	if vid != "" && pid != "" {
		return fmt.Sprintf("%s %s:%s", strings.ToUpper(bus), vid, pid)
	}
	if ids != "" {
		return fmt.Sprintf("%s %s", strings.ToUpper(bus), ids)
	}
	return strings.ToUpper(bus)
}
