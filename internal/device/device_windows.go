//go:build windows

package device

import (
	"fmt"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

// Raw Input device enumeration.

const (
	rimTypeMouse    = 0
	rimTypeKeyboard = 1

	ridiDeviceName = 0x20000007
)

var (
	user32                     = windows.NewLazySystemDLL("user32.dll")
	procGetRawInputDeviceList  = user32.NewProc("GetRawInputDeviceList")
	procGetRawInputDeviceInfoW = user32.NewProc("GetRawInputDeviceInfoW")
)

type rawInputDeviceList struct {
	Device uintptr
	Type   uint32
}

// List enumerates currently attached devices of the given class. A
// device whose name lookup fails still appears, with a fallback label.
// The empty list is not an error.
func List(class Class) ([]Device, error) {
	var want uint32 = rimTypeMouse
	if class == Typing {
		want = rimTypeKeyboard
	}

	var count uint32
	entrySize := uint32(unsafe.Sizeof(rawInputDeviceList{}))

	ret, _, err := procGetRawInputDeviceList.Call(
		0,
		uintptr(unsafe.Pointer(&count)),
		uintptr(entrySize),
	)
	if int32(ret) < 0 {
		return nil, fmt.Errorf("GetRawInputDeviceList (count) failed: %v", err)
	}
	if count == 0 {
		return nil, nil
	}

	entries := make([]rawInputDeviceList, count)
	ret, _, err = procGetRawInputDeviceList.Call(
		uintptr(unsafe.Pointer(&entries[0])),
		uintptr(unsafe.Pointer(&count)),
		uintptr(entrySize),
	)
	if int32(ret) < 0 {
		return nil, fmt.Errorf("GetRawInputDeviceList failed: %v", err)
	}

	devices := make([]Device, 0, count)
	ordinal := 0
	for _, entry := range entries[:count] {
		if entry.Type != want {
			continue
		}
		ordinal++

		label := LabelFromInterfacePath(deviceName(entry.Device))
		if label == "" {
			label = FallbackLabel(class, ordinal)
		}

		devices = append(devices, Device{
			ID:    ID(entry.Device),
			Class: class,
			Label: label,
		})
	}

	logrus.WithFields(logrus.Fields{
		"class": class.String(),
		"count": len(devices),
	}).Debug("enumerated raw input devices")

	return devices, nil
}

// deviceName retrieves the device interface path for a raw input
// handle. Returns "" on any failure; callers fall back to a synthetic
// label.
func deviceName(handle uintptr) string {
	var size uint32
	ret, _, _ := procGetRawInputDeviceInfoW.Call(
		handle,
		ridiDeviceName,
		0,
		uintptr(unsafe.Pointer(&size)),
	)
	if int32(ret) < 0 || size == 0 {
		return ""
	}

	buf := make([]uint16, size)
	ret, _, _ = procGetRawInputDeviceInfoW.Call(
		handle,
		ridiDeviceName,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
	)
	if int32(ret) < 0 {
		return ""
	}

	return windows.UTF16ToString(buf)
}
