//go:build windows

package intercept

import (
	"fmt"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"

	"mseat/internal/device"
)

// Windows backend: a message-only window on a locked OS thread. Every
// WM_INPUT and the focus-poll WM_TIMER arrive serialized on that one
// thread, which is what gives the core its cooperative single-threaded
// dispatch guarantee.

const (
	wmInput   = 0x00FF
	wmTimer   = 0x0113
	wmClose   = 0x0010
	wmDestroy = 0x0002

	ridInput = 0x10000003

	ridevRemove    = 0x00000001
	ridevNoLegacy  = 0x00000030
	ridevInputSink = 0x00000100

	hidUsagePageGeneric = 0x01
	hidUsageMouse       = 0x02
	hidUsageKeyboard    = 0x06

	focusTimerID = 1
)

// HWND_MESSAGE parents a window into the message-only hierarchy.
var hwndMessage = ^uintptr(2) // (HWND)-3

var (
	user32                      = windows.NewLazySystemDLL("user32.dll")
	kernel32                    = windows.NewLazySystemDLL("kernel32.dll")
	procRegisterClassExW        = user32.NewProc("RegisterClassExW")
	procCreateWindowExW         = user32.NewProc("CreateWindowExW")
	procDefWindowProcW          = user32.NewProc("DefWindowProcW")
	procGetMessageW             = user32.NewProc("GetMessageW")
	procTranslateMessage        = user32.NewProc("TranslateMessage")
	procDispatchMessageW        = user32.NewProc("DispatchMessageW")
	procPostMessageW            = user32.NewProc("PostMessageW")
	procPostQuitMessage         = user32.NewProc("PostQuitMessage")
	procRegisterRawInputDevices = user32.NewProc("RegisterRawInputDevices")
	procGetRawInputData         = user32.NewProc("GetRawInputData")
	procSetTimer                = user32.NewProc("SetTimer")
	procKillTimer               = user32.NewProc("KillTimer")
	procGetModuleHandleW        = kernel32.NewProc("GetModuleHandleW")
)

type wndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CbClsExtra    int32
	CbWndExtra    int32
	HInstance     windows.Handle
	HIcon         windows.Handle
	HCursor       windows.Handle
	HbrBackground windows.Handle
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       windows.Handle
}

type msg struct {
	Hwnd    windows.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

type rawInputDevice struct {
	UsagePage uint16
	Usage     uint16
	Flags     uint32
	Target    windows.Handle
}

// WindowsBackend implements Backend over the Raw Input API.
type WindowsBackend struct {
	mu      sync.Mutex
	hwnd    windows.Handle
	handler Handler
	pollFn  func()
	ready   chan error
	done    chan struct{}
	running bool
	log     *logrus.Entry
}

// NewBackend creates the Windows raw-input backend. Call Run before
// registering classes.
func NewBackend() *WindowsBackend {
	return &WindowsBackend{
		ready: make(chan error, 1),
		done:  make(chan struct{}),
		log:   logrus.WithField("component", "rawinput"),
	}
}

// SetHandler installs the event consumer. Must be called before Run.
func (b *WindowsBackend) SetHandler(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = h
}

// Run creates the message-only window and starts the dispatch loop on
// a dedicated, locked OS thread. Returns once the window exists (or
// creation failed); the loop itself keeps running until Close.
func (b *WindowsBackend) Run() error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = true
	b.mu.Unlock()

	go b.loop()
	return <-b.ready
}

func (b *WindowsBackend) loop() {
	// Raw input is delivered to the thread that created the target
	// window; the whole dispatch must stay on it.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(b.done)

	if err := b.createWindow(); err != nil {
		b.ready <- err
		return
	}
	b.ready <- nil

	var m msg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) <= 0 {
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
	b.log.Debug("dispatch loop exited")
}

func (b *WindowsBackend) createWindow() error {
	className, err := windows.UTF16PtrFromString("MSEATRawInput")
	if err != nil {
		return err
	}

	hInstance, _, _ := procGetModuleHandleW.Call(0)
	wc := wndClassEx{
		CbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
		LpfnWndProc:   windows.NewCallback(b.wndProc),
		HInstance:     windows.Handle(hInstance),
		LpszClassName: className,
	}
	if ret, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); ret == 0 {
		return fmt.Errorf("RegisterClassEx failed: %v", err)
	}

	hwnd, _, err := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		0,
		0,
		0, 0, 0, 0,
		hwndMessage, // message-only window, never visible
		0, hInstance, 0,
	)
	if hwnd == 0 {
		return fmt.Errorf("CreateWindowEx failed: %v", err)
	}

	b.mu.Lock()
	b.hwnd = windows.Handle(hwnd)
	b.mu.Unlock()
	b.log.WithField("hwnd", hwnd).Debug("message-only window created")
	return nil
}

func (b *WindowsBackend) wndProc(hwnd windows.Handle, message uint32, wparam, lparam uintptr) uintptr {
	switch message {
	case wmInput:
		b.handleRawInput(lparam)
		return 0
	case wmTimer:
		if wparam == focusTimerID {
			b.mu.Lock()
			fn := b.pollFn
			b.mu.Unlock()
			if fn != nil {
				fn()
			}
			return 0
		}
	case wmDestroy:
		procPostQuitMessage.Call(0)
		return 0
	}
	ret, _, _ := procDefWindowProcW.Call(uintptr(hwnd), uintptr(message), wparam, lparam)
	return ret
}

// handleRawInput runs the two-call GetRawInputData protocol and feeds
// the parsed event to the handler. Parse or retrieval failures drop
// the one event; the loop keeps going.
func (b *WindowsBackend) handleRawInput(lparam uintptr) {
	var size uint32
	ret, _, _ := procGetRawInputData.Call(
		lparam,
		ridInput,
		0,
		uintptr(unsafe.Pointer(&size)),
		headerSize,
	)
	if int32(ret) < 0 || size == 0 {
		return
	}

	buf := make([]byte, size)
	ret, _, _ = procGetRawInputData.Call(
		lparam,
		ridInput,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
		headerSize,
	)
	if int32(ret) <= 0 {
		return
	}

	ev, err := Parse(buf[:ret])
	if err != nil {
		b.log.WithError(err).Debug("unparseable raw input payload")
		return
	}

	b.mu.Lock()
	h := b.handler
	b.mu.Unlock()
	if h == nil {
		return
	}

	switch ev.Kind {
	case KindPointer:
		h.HandlePointer(ev.Pointer)
	case KindKey:
		h.HandleKey(ev.Key)
	}
}

// Register requests exclusive raw delivery for a class. NOLEGACY
// suppresses the OS's own cursor/focus composition for the class;
// INPUTSINK keeps delivery alive while our window is background.
func (b *WindowsBackend) Register(class device.Class) error {
	b.mu.Lock()
	hwnd := b.hwnd
	b.mu.Unlock()
	if hwnd == 0 {
		return fmt.Errorf("backend not running")
	}

	rid := rawInputDevice{
		UsagePage: hidUsagePageGeneric,
		Usage:     usageFor(class),
		Flags:     ridevNoLegacy | ridevInputSink,
		Target:    hwnd,
	}
	ret, _, err := procRegisterRawInputDevices.Call(
		uintptr(unsafe.Pointer(&rid)),
		1,
		unsafe.Sizeof(rid),
	)
	if ret == 0 {
		return fmt.Errorf("RegisterRawInputDevices failed: %v", err)
	}
	return nil
}

// Unregister restores default delivery for the class.
func (b *WindowsBackend) Unregister(class device.Class) error {
	rid := rawInputDevice{
		UsagePage: hidUsagePageGeneric,
		Usage:     usageFor(class),
		Flags:     ridevRemove,
		Target:    0, // REMOVE requires a NULL target
	}
	ret, _, err := procRegisterRawInputDevices.Call(
		uintptr(unsafe.Pointer(&rid)),
		1,
		unsafe.Sizeof(rid),
	)
	if ret == 0 {
		return fmt.Errorf("RegisterRawInputDevices(REMOVE) failed: %v", err)
	}
	return nil
}

func usageFor(class device.Class) uint16 {
	if class == device.Typing {
		return hidUsageKeyboard
	}
	return hidUsageMouse
}

// StartFocusPoll schedules fn via a window timer; WM_TIMER fires on
// the dispatch thread, so fn only ever interleaves between raw events.
func (b *WindowsBackend) StartFocusPoll(interval time.Duration, fn func()) error {
	b.mu.Lock()
	hwnd := b.hwnd
	b.pollFn = fn
	b.mu.Unlock()
	if hwnd == 0 {
		return fmt.Errorf("backend not running")
	}

	ret, _, err := procSetTimer.Call(uintptr(hwnd), focusTimerID, uintptr(interval.Milliseconds()), 0)
	if ret == 0 {
		return fmt.Errorf("SetTimer failed: %v", err)
	}
	return nil
}

// StopFocusPoll cancels the poll timer. Best effort.
func (b *WindowsBackend) StopFocusPoll() {
	b.mu.Lock()
	hwnd := b.hwnd
	b.pollFn = nil
	b.mu.Unlock()
	if hwnd != 0 {
		procKillTimer.Call(uintptr(hwnd), focusTimerID)
	}
}

// Close tears down the window and waits for the loop to exit.
func (b *WindowsBackend) Close() {
	b.mu.Lock()
	hwnd := b.hwnd
	running := b.running
	b.hwnd = 0
	b.running = false
	b.mu.Unlock()

	if !running {
		return
	}
	if hwnd != 0 {
		procPostMessageW.Call(uintptr(hwnd), wmClose, 0, 0)
	}
	<-b.done
}
