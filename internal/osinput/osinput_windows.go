//go:build windows

package osinput

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"mseat/internal/route"
)

const (
	mouseeventfLeftDown   = 0x0002
	mouseeventfLeftUp     = 0x0004
	mouseeventfRightDown  = 0x0008
	mouseeventfRightUp    = 0x0010
	mouseeventfMiddleDown = 0x0020
	mouseeventfMiddleUp   = 0x0040
	mouseeventfWheel      = 0x0800

	keyeventfKeyUp = 0x0002

	inputMouse    = 0
	inputKeyboard = 1
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procGetCursorPos        = user32.NewProc("GetCursorPos")
	procSetCursorPos        = user32.NewProc("SetCursorPos")
	procSendInput           = user32.NewProc("SendInput")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
)

type point struct {
	X, Y int32
}

// 64-bit INPUT layout. The union member is 32 bytes; KEYBDINPUT is
// padded up to match MOUSEINPUT.

type mouseInput struct {
	Dx        int32
	Dy        int32
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type keybdInput struct {
	Vk        uint16
	Scan      uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
	_         [8]byte
}

type mouseInputPacket struct {
	Type uint32
	_    uint32
	Mi   mouseInput
}

type keybdInputPacket struct {
	Type uint32
	_    uint32
	Ki   keybdInput
}

// Input implements the engine's Cursor, Synth and Foreground
// interfaces over the Win32 user input API. All calls return
// immediately; nothing here blocks.
type Input struct{}

// New returns the Windows input primitive set.
func New() *Input {
	return &Input{}
}

// Pos reads the absolute cursor position.
func (i *Input) Pos() (int32, int32, error) {
	var pt point
	ret, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if ret == 0 {
		return 0, 0, fmt.Errorf("GetCursorPos failed: %v", err)
	}
	return pt.X, pt.Y, nil
}

// SetPos places the cursor at an absolute position.
func (i *Input) SetPos(x, y int32) error {
	ret, _, err := procSetCursorPos.Call(uintptr(x), uintptr(y))
	if ret == 0 {
		return fmt.Errorf("SetCursorPos failed: %v", err)
	}
	return nil
}

// MouseButton synthesizes a button transition at the current cursor
// position (zero relative offset; the position was set beforehand).
func (i *Input) MouseButton(b route.Button, down bool) error {
	var flags uint32
	switch b {
	case route.ButtonLeft:
		flags = mouseeventfLeftDown
		if !down {
			flags = mouseeventfLeftUp
		}
	case route.ButtonRight:
		flags = mouseeventfRightDown
		if !down {
			flags = mouseeventfRightUp
		}
	case route.ButtonMiddle:
		flags = mouseeventfMiddleDown
		if !down {
			flags = mouseeventfMiddleUp
		}
	default:
		return fmt.Errorf("unknown button %d", b)
	}
	return sendMouse(mouseInput{Flags: flags})
}

// Wheel synthesizes a vertical wheel event carrying the raw signed
// delta (one detent is +-120, matching the injection convention).
func (i *Input) Wheel(delta int16) error {
	return sendMouse(mouseInput{
		MouseData: uint32(int32(delta)),
		Flags:     mouseeventfWheel,
	})
}

// Key synthesizes a key transition against the current foreground
// window; SendInput takes no target handle, which is why foregrounding
// must happen first.
func (i *Input) Key(vkey, scan uint16, down bool) error {
	var flags uint32
	if !down {
		flags = keyeventfKeyUp
	}
	pkt := keybdInputPacket{
		Type: inputKeyboard,
		Ki: keybdInput{
			Vk:    vkey,
			Scan:  scan,
			Flags: flags,
		},
	}
	ret, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&pkt)), unsafe.Sizeof(pkt))
	if ret == 0 {
		return fmt.Errorf("SendInput(key) failed: %v", err)
	}
	return nil
}

// Current returns the OS foreground window, zero when none.
func (i *Input) Current() route.Window {
	ret, _, _ := procGetForegroundWindow.Call()
	return route.Window(ret)
}

// Raise attempts to bring a window to foreground. The OS refuses this
// for background processes in some states; a dead handle no-ops. Both
// come back as false.
func (i *Input) Raise(w route.Window) bool {
	ret, _, _ := procSetForegroundWindow.Call(uintptr(w))
	return ret != 0
}

func sendMouse(mi mouseInput) error {
	pkt := mouseInputPacket{Type: inputMouse, Mi: mi}
	ret, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&pkt)), unsafe.Sizeof(pkt))
	if ret == 0 {
		return fmt.Errorf("SendInput(mouse) failed: %v", err)
	}
	return nil
}

// IsAdmin reports whether the process runs elevated. NOLEGACY raw
// input registration tends to need it.
func IsAdmin() bool {
	var token windows.Token
	h, _ := windows.GetCurrentProcess()
	if err := windows.OpenProcessToken(h, windows.TOKEN_QUERY, &token); err != nil {
		return false
	}
	defer token.Close()

	var sid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	member, err := token.IsMember(sid)
	if err != nil {
		return false
	}
	return member
}
