package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// InputEventCode is a fast-path input event code (MS-RDPBCGR 2.2.8.1.2.2).
type InputEventCode uint8

const (
	InputEventCodeScanCode     InputEventCode = 0
	InputEventCodeMouse        InputEventCode = 1
	InputEventCodeMouseX       InputEventCode = 2
	InputEventCodeSync         InputEventCode = 3
	InputEventCodeUnicode      InputEventCode = 4
	InputEventCodeQoETimestamp InputEventCode = 6
)

// Keyboard scancode event flags (MS-RDPBCGR 2.2.8.1.2.2.1).
const (
	KBDFlagsRelease   uint8 = 0x01
	KBDFlagsExtended  uint8 = 0x02
	KBDFlagsExtended1 uint8 = 0x04
)

// Mouse pointer flags (MS-RDPBCGR 2.2.8.1.2.2.3).
const (
	PTRFlagsHWheel        uint16 = 0x0400
	PTRFlagsWheel         uint16 = 0x0200
	PTRFlagsWheelNegative uint16 = 0x0100
	PTRFlagsMove          uint16 = 0x0800
	PTRFlagsDown          uint16 = 0x8000
	PTRFlagsButton1       uint16 = 0x1000
	PTRFlagsButton2       uint16 = 0x2000
	PTRFlagsButton3       uint16 = 0x4000
)

// Extended mouse (X button) pointer flags (MS-RDPBCGR 2.2.8.1.2.2.4).
const (
	PTRXFlagsDown    uint16 = 0x8000
	PTRXFlagsButton1 uint16 = 0x0001
	PTRXFlagsButton2 uint16 = 0x0002
)

// Synchronize toggle-key flags (MS-RDPBCGR 2.2.8.1.2.2.5).
const (
	SyncScrollLock uint8 = 0x01
	SyncNumLock    uint8 = 0x02
	SyncCapsLock   uint8 = 0x04
	SyncKanaLock   uint8 = 0x08
)

// InputEvent is a single FASTPATH_INPUT_EVENT (MS-RDPBCGR 2.2.8.1.2.2): a
// one-byte header packing EventFlags and EventCode, followed by a body whose
// shape is selected by EventCode. Exactly one of the typed fields below is
// populated, matching EventCode.
type InputEvent struct {
	EventFlags uint8
	EventCode  InputEventCode

	KeyCode        uint8   // scancode events
	UnicodeCode    uint16  // unicode events
	PointerFlags   uint16  // mouse / mouseX events
	XPos, YPos     uint16  // mouse / mouseX events
	QoETimestamp   uint32  // QoE timestamp events
}

// NewKeyboardEvent creates a keyboard scancode input event.
func NewKeyboardEvent(flags, keyCode uint8) InputEvent {
	return InputEvent{EventFlags: flags, EventCode: InputEventCodeScanCode, KeyCode: keyCode}
}

// NewUnicodeKeyboardEvent creates a Unicode keyboard input event.
func NewUnicodeKeyboardEvent(flags uint8, unicodeCode uint16) InputEvent {
	return InputEvent{EventFlags: flags, EventCode: InputEventCodeUnicode, UnicodeCode: unicodeCode}
}

// NewMouseEvent creates a mouse input event.
func NewMouseEvent(pointerFlags, xPos, yPos uint16) InputEvent {
	return InputEvent{EventCode: InputEventCodeMouse, PointerFlags: pointerFlags, XPos: xPos, YPos: yPos}
}

// NewExtendedMouseEvent creates an extended (X-button) mouse input event.
func NewExtendedMouseEvent(pointerFlags, xPos, yPos uint16) InputEvent {
	return InputEvent{EventCode: InputEventCodeMouseX, PointerFlags: pointerFlags, XPos: xPos, YPos: yPos}
}

// NewSynchronizeEvent creates a toggle-key synchronize input event.
func NewSynchronizeEvent(flags uint8) InputEvent {
	return InputEvent{EventFlags: flags, EventCode: InputEventCodeSync}
}

// Size returns the event's total encoded length including its header byte.
func (e *InputEvent) Size() int {
	switch e.EventCode {
	case InputEventCodeScanCode:
		return 2
	case InputEventCodeUnicode:
		return 3
	case InputEventCodeMouse, InputEventCodeMouseX:
		return 7
	case InputEventCodeSync:
		return 1
	case InputEventCodeQoETimestamp:
		return 5
	default:
		return 1
	}
}

// Encode writes the input event to wire format.
func (e *InputEvent) Encode(w *buffer.Writer) error {
	header := (e.EventFlags&0x1f)<<3 | uint8(e.EventCode)&0x7
	if err := w.WriteUint8(header); err != nil {
		return err
	}
	switch e.EventCode {
	case InputEventCodeScanCode:
		return w.WriteUint8(e.KeyCode)
	case InputEventCodeUnicode:
		return w.WriteUint16LE(e.UnicodeCode)
	case InputEventCodeMouse, InputEventCodeMouseX:
		if err := w.WriteUint16LE(e.PointerFlags); err != nil {
			return err
		}
		if err := w.WriteUint16LE(e.XPos); err != nil {
			return err
		}
		return w.WriteUint16LE(e.YPos)
	case InputEventCodeSync:
		return nil
	case InputEventCodeQoETimestamp:
		return w.WriteUint32LE(e.QoETimestamp)
	default:
		return nil
	}
}

// Decode reads an input event from wire format.
func (e *InputEvent) Decode(r *buffer.Reader) error {
	header, err := r.Uint8()
	if err != nil {
		return err
	}
	e.EventFlags = header >> 3
	e.EventCode = InputEventCode(header & 0x7)
	switch e.EventCode {
	case InputEventCodeScanCode:
		e.KeyCode, err = r.Uint8()
	case InputEventCodeUnicode:
		e.UnicodeCode, err = r.Uint16LE()
	case InputEventCodeMouse, InputEventCodeMouseX:
		if e.PointerFlags, err = r.Uint16LE(); err != nil {
			return err
		}
		if e.XPos, err = r.Uint16LE(); err != nil {
			return err
		}
		e.YPos, err = r.Uint16LE()
	case InputEventCodeSync:
		// no body
	case InputEventCodeQoETimestamp:
		e.QoETimestamp, err = r.Uint32LE()
	}
	return err
}
