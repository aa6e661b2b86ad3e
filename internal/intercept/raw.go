package intercept

import (
	"encoding/binary"
	"fmt"

	"mseat/internal/device"
	"mseat/internal/route"
)

// RAWINPUT payload decoding. The structure is a C union read out of
// process memory, so it is decoded field by field against the 64-bit
// Windows layout. Keeping the parser free of build tags lets it be
// exercised anywhere with synthetic payloads.

const (
	rimTypeMouse    = 0
	rimTypeKeyboard = 1

	// 64-bit RAWINPUTHEADER: dwType(4) dwSize(4) hDevice(8) wParam(8).
	headerSize = 24

	mousePayloadSize    = 24 // RAWMOUSE
	keyboardPayloadSize = 16 // RAWKEYBOARD

	// RAWMOUSE button transition flags.
	riLeftDown   = 0x0001
	riLeftUp     = 0x0002
	riRightDown  = 0x0004
	riRightUp    = 0x0008
	riMiddleDown = 0x0010
	riMiddleUp   = 0x0020
	riWheel      = 0x0400

	mouseMoveAbsolute = 0x0001

	riKeyBreak = 0x0001

	// Make code reported on keyboard buffer overrun; carries no key.
	keyboardOverrunMakeCode = 0xFF
)

// Kind discriminates parsed raw events.
type Kind int

const (
	KindPointer Kind = iota
	KindKey
	KindOther
)

// Event is one decoded raw-input payload.
type Event struct {
	Kind    Kind
	Pointer route.PointerEvent
	Key     route.KeyEvent
}

// Parse decodes a RAWINPUT buffer as retrieved by GetRawInputData.
// Payloads of types other than mouse/keyboard (HID, pen, touch) come
// back as KindOther and are ignored upstream.
func Parse(data []byte) (Event, error) {
	if len(data) < headerSize {
		return Event{}, fmt.Errorf("raw input buffer too short: %d bytes", len(data))
	}

	le := binary.LittleEndian
	dwType := le.Uint32(data[0:])
	hDevice := device.ID(le.Uint64(data[8:]))

	switch dwType {
	case rimTypeMouse:
		if len(data) < headerSize+mousePayloadSize {
			return Event{}, fmt.Errorf("truncated mouse payload: %d bytes", len(data))
		}
		return parseMouse(data[headerSize:], hDevice), nil

	case rimTypeKeyboard:
		if len(data) < headerSize+keyboardPayloadSize {
			return Event{}, fmt.Errorf("truncated keyboard payload: %d bytes", len(data))
		}
		return parseKeyboard(data[headerSize:], hDevice), nil

	default:
		return Event{Kind: KindOther}, nil
	}
}

// parseMouse decodes RAWMOUSE: usFlags(2) pad(2) usButtonFlags(2)
// usButtonData(2) ulRawButtons(4) lLastX(4) lLastY(4) extra(4).
func parseMouse(p []byte, dev device.ID) Event {
	le := binary.LittleEndian

	usFlags := le.Uint16(p[0:])
	buttonFlags := le.Uint16(p[4:])
	buttonData := int16(le.Uint16(p[6:]))
	lastX := int32(le.Uint32(p[12:]))
	lastY := int32(le.Uint32(p[16:]))

	ev := route.PointerEvent{Device: dev}

	// Absolute-coordinate devices (tablets, remote sessions) are out
	// of scope; their coordinates are not relative deltas, so motion
	// is dropped while button transitions still go through.
	if usFlags&mouseMoveAbsolute == 0 {
		ev.DX = lastX
		ev.DY = lastY
	}

	if buttonFlags&riLeftDown != 0 {
		ev.Buttons |= route.LeftDown
	}
	if buttonFlags&riLeftUp != 0 {
		ev.Buttons |= route.LeftUp
	}
	if buttonFlags&riRightDown != 0 {
		ev.Buttons |= route.RightDown
	}
	if buttonFlags&riRightUp != 0 {
		ev.Buttons |= route.RightUp
	}
	if buttonFlags&riMiddleDown != 0 {
		ev.Buttons |= route.MiddleDown
	}
	if buttonFlags&riMiddleUp != 0 {
		ev.Buttons |= route.MiddleUp
	}
	if buttonFlags&riWheel != 0 {
		ev.Buttons |= route.WheelScroll
		ev.Wheel = buttonData
	}

	return Event{Kind: KindPointer, Pointer: ev}
}

// parseKeyboard decodes RAWKEYBOARD: MakeCode(2) Flags(2) Reserved(2)
// VKey(2) Message(4) extra(4).
func parseKeyboard(p []byte, dev device.ID) Event {
	le := binary.LittleEndian

	makeCode := le.Uint16(p[0:])
	flags := le.Uint16(p[2:])
	vkey := le.Uint16(p[6:])

	if makeCode == keyboardOverrunMakeCode || vkey == 0xFF {
		return Event{Kind: KindOther}
	}

	return Event{
		Kind: KindKey,
		Key: route.KeyEvent{
			Device: dev,
			VKey:   vkey,
			Scan:   makeCode,
			Down:   flags&riKeyBreak == 0,
		},
	}
}
