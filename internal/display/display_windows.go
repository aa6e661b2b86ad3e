//go:build windows

package display

import (
	"fmt"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

const (
	monitorinfofPrimary  = 0x00000001
	monitorDefaultToNull = 0x00000000
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW     = user32.NewProc("GetMonitorInfoW")
	procMonitorFromWindow   = user32.NewProc("MonitorFromWindow")
	procClipCursor          = user32.NewProc("ClipCursor")
)

type rect struct {
	Left, Top, Right, Bottom int32
}

type monitorInfoEx struct {
	CbSize    uint32
	RcMonitor rect
	RcWork    rect
	DwFlags   uint32
	SzDevice  [32]uint16
}

// enumCallback is registered once; callbacks created per call would
// leak the process's limited callback slots.
var enumCallback = windows.NewCallback(func(hMonitor, hdc, lprc, lparam uintptr) uintptr {
	out := (*[]Region)(unsafe.Pointer(lparam))

	var info monitorInfoEx
	info.CbSize = uint32(unsafe.Sizeof(info))

	ret, _, _ := procGetMonitorInfoW.Call(hMonitor, uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		logrus.WithField("monitor", hMonitor).Warn("GetMonitorInfoW failed, skipping monitor")
		return 1 // keep enumerating
	}

	*out = append(*out, Region{
		ID: RegionID(hMonitor),
		Bounds: Rect{
			Left:   info.RcMonitor.Left,
			Top:    info.RcMonitor.Top,
			Right:  info.RcMonitor.Right,
			Bottom: info.RcMonitor.Bottom,
		},
		WorkArea: Rect{
			Left:   info.RcWork.Left,
			Top:    info.RcWork.Top,
			Right:  info.RcWork.Right,
			Bottom: info.RcWork.Bottom,
		},
		Primary: info.DwFlags&monitorinfofPrimary != 0,
		Label:   windows.UTF16ToString(info.SzDevice[:]),
	})
	return 1
})

// Enumerate lists all display regions of the virtual desktop. A
// monitor whose info query fails is skipped rather than failing the
// whole call.
func Enumerate() ([]Region, error) {
	var regions []Region
	ret, _, err := procEnumDisplayMonitors.Call(0, 0, enumCallback, uintptr(unsafe.Pointer(&regions)))
	if ret == 0 {
		return regions, fmt.Errorf("EnumDisplayMonitors failed: %v", err)
	}
	return regions, nil
}

// FromWindow returns the region containing (most of) the given
// top-level window, or false if the window intersects no display.
func FromWindow(hwnd uintptr) (RegionID, bool) {
	ret, _, _ := procMonitorFromWindow.Call(hwnd, monitorDefaultToNull)
	if ret == 0 {
		return 0, false
	}
	return RegionID(ret), true
}

// Confine restricts the system cursor to the region's bounds until
// Release is called. This is the single-cursor "simple lock" mode; it
// shares no state with the redirection engine.
func Confine(r Region) error {
	rc := rect{
		Left:   r.Bounds.Left,
		Top:    r.Bounds.Top,
		Right:  r.Bounds.Right,
		Bottom: r.Bounds.Bottom,
	}
	ret, _, err := procClipCursor.Call(uintptr(unsafe.Pointer(&rc)))
	if ret == 0 {
		return fmt.Errorf("ClipCursor failed: %v", err)
	}
	return nil
}

// Release lifts any cursor confinement. Best effort.
func Release() {
	procClipCursor.Call(0) // NULL rect releases clipping
}
