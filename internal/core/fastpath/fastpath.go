// Package fastpath implements the RDP fast-path framing and update codec
// (MS-RDPBCGR 2.2.9.1), the compact alternative to the full
// TPKT/X.224/MCS/share-control envelope used once a session is connected.
package fastpath

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/pdu"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// Action is the 2-bit action field at the bottom of a fast-path PDU's first
// byte, distinguishing a fast-path packet from a slow-path one still using
// the X.224 envelope (MS-RDPBCGR 2.2.9.1.2.1).
type Action uint8

const (
	ActionFastPath Action = 0
	ActionX224     Action = 3
)

// Flag is a bit in the fast-path output header's 2-bit flags field
// (MS-RDPBCGR 2.2.9.1.2.1).
type Flag uint8

const (
	FlagSecureChecksum Flag = 0x1
	FlagEncrypted      Flag = 0x2
)

// MaxPDULength is the largest length a fast-path PDU's two-byte length
// field may encode; a server advertising more is rejected as malformed
// rather than trusted with an oversized allocation.
const MaxPDULength = 0x4000

// Hint reports how many additional bytes are needed to decode the next
// fast-path PDU header, given the bytes read so far. It lets a caller doing
// incremental reads from a socket know when to stop buffering and call
// Header.Decode. Returns 0 once enough bytes are present.
func Hint(have []byte) int {
	if len(have) < 2 {
		return 2 - len(have)
	}
	if have[1]&0x80 == 0 {
		return 0
	}
	if len(have) < 3 {
		return 1
	}
	return 0
}

// Header is the fast-path PDU header: a one-byte action/flags/numEvents
// field, followed by a one- or two-byte length. numEvents is only
// meaningful for a client-to-server input PDU; output PDUs leave it zero.
type Header struct {
	Action    Action
	Flags     Flag
	NumEvents uint8
	Length    uint16
}

// Decode reads the header, including the variable-length length field, from
// wire format.
func (h *Header) Decode(r *buffer.Reader) error {
	first, err := r.Uint8()
	if err != nil {
		return err
	}
	h.Action = Action(first & 0x3)
	h.Flags = Flag((first >> 6) & 0x3)
	h.NumEvents = (first >> 2) & 0xF

	lenByte1, err := r.Uint8()
	if err != nil {
		return err
	}
	if lenByte1&0x80 == 0 {
		h.Length = uint16(lenByte1)
	} else {
		lenByte2, err := r.Uint8()
		if err != nil {
			return err
		}
		h.Length = uint16(lenByte1&0x7F)<<8 | uint16(lenByte2)
	}
	if h.Length > MaxPDULength {
		return &rdperr.InvalidField{Name: "fastpath.length", Reason: "exceeds maximum PDU length"}
	}
	return nil
}

// Encode writes the header to wire format. length is the number of payload
// bytes following the header (not including the header itself).
func (h *Header) Encode(w *buffer.Writer, length int) error {
	first := uint8(h.Action)&0x3 | (h.NumEvents&0xF)<<2 | uint8(h.Flags&0x3)<<6
	if err := w.WriteUint8(first); err != nil {
		return err
	}
	if length <= 0x7F {
		return w.WriteUint8(uint8(length))
	}
	return w.WriteUint16BE(uint16(length) | 0x8000)
}

// UpdateCode is the updateCode field of TS_FP_UPDATE (MS-RDPBCGR 2.2.9.1.2.1.1).
type UpdateCode uint8

const (
	UpdateCodeOrders      UpdateCode = 0x0
	UpdateCodeBitmap      UpdateCode = 0x1
	UpdateCodePalette     UpdateCode = 0x2
	UpdateCodeSynchronize UpdateCode = 0x3
	UpdateCodeSurfCMDs    UpdateCode = 0x4
	UpdateCodePTRNull     UpdateCode = 0x5
	UpdateCodePTRDefault  UpdateCode = 0x6
	UpdateCodePTRPosition UpdateCode = 0x8
	UpdateCodeColor       UpdateCode = 0x9
	UpdateCodeCached      UpdateCode = 0xA
	UpdateCodePointer     UpdateCode = 0xB
	UpdateCodeLargePointer UpdateCode = 0xC
)

// Fragment is the fragmentation field of TS_FP_UPDATE (MS-RDPBCGR 2.2.9.1.2.1.1).
type Fragment uint8

const (
	FragmentSingle Fragment = 0
	FragmentLast   Fragment = 1
	FragmentFirst  Fragment = 2
	FragmentNext   Fragment = 3
)

// Compression is the compressionFlags presence field of TS_FP_UPDATE.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionUsed Compression = 2
)

// Update is one TS_FP_UPDATE entry (MS-RDPBCGR 2.2.9.1.2.1.1): a graphics
// or pointer update carried inside the fast-path update PDU's payload.
// Payload is left undecoded here; the session machine interprets it (with
// the codec package's decoders) once UpdateCode identifies its shape.
type Update struct {
	UpdateCode       UpdateCode
	Fragmentation    Fragment
	Compression      Compression
	CompressionFlags uint8
	Payload          []byte
}

// Decode reads one update entry from wire format. Payload aliases the
// decode buffer's backing array; callers that retain it beyond the current
// decode must copy it.
func (u *Update) Decode(r *buffer.Reader) error {
	header, err := r.Uint8()
	if err != nil {
		return err
	}
	u.UpdateCode = UpdateCode(header & 0xF)
	u.Fragmentation = Fragment((header >> 4) & 0x3)
	u.Compression = Compression((header >> 6) & 0x3)

	if u.Compression == CompressionUsed {
		if u.CompressionFlags, err = r.Uint8(); err != nil {
			return err
		}
	}
	size, err := r.Uint16LE()
	if err != nil {
		return err
	}
	u.Payload, err = r.Bytes(int(size))
	return err
}

// Encode writes one update entry to wire format.
func (u *Update) Encode(w *buffer.Writer) error {
	header := uint8(u.UpdateCode)&0xF | uint8(u.Fragmentation&0x3)<<4 | uint8(u.Compression&0x3)<<6
	if err := w.WriteUint8(header); err != nil {
		return err
	}
	if u.Compression == CompressionUsed {
		if err := w.WriteUint8(u.CompressionFlags); err != nil {
			return err
		}
	}
	if err := w.WriteUint16LE(uint16(len(u.Payload))); err != nil {
		return err
	}
	return w.WriteBytes(u.Payload)
}

// UpdatePDU is a complete server-to-client fast-path output PDU: a Header
// naming ActionFastPath, followed by zero or more Update entries packed
// back to back until Header.Length bytes are consumed.
type UpdatePDU struct {
	Header  Header
	Updates []Update
}

// Decode reads a fast-path update PDU from wire format.
func (p *UpdatePDU) Decode(r *buffer.Reader) error {
	if err := p.Header.Decode(r); err != nil {
		return err
	}
	if p.Header.Action != ActionFastPath {
		return &rdperr.UnexpectedMessageType{Phase: "session", Got: "fastPathAction", Allowed: []string{"fastPath"}}
	}
	if p.Header.Flags&FlagEncrypted != 0 {
		return &rdperr.InvalidField{Name: "fastpath.flags", Reason: "encrypted fast-path PDUs are not supported"}
	}

	body, err := r.Bytes(int(p.Header.Length))
	if err != nil {
		return err
	}
	br := buffer.NewReader(body)
	p.Updates = p.Updates[:0]
	for br.Len() > 0 {
		var u Update
		if err := u.Decode(br); err != nil {
			return err
		}
		p.Updates = append(p.Updates, u)
	}
	return nil
}

// InputEventPDU is a client-to-server fast-path input PDU (MS-RDPBCGR
// 2.2.8.1.2): a Header naming ActionFastPath with NumEvents set, followed
// by that many InputEvent entries packed back to back.
type InputEventPDU struct {
	Header Header
	Events []pdu.InputEvent
}

// NewInputEventPDU creates an input event PDU carrying the given events.
func NewInputEventPDU(events []pdu.InputEvent) *InputEventPDU {
	return &InputEventPDU{
		Header: Header{Action: ActionFastPath, NumEvents: uint8(len(events))},
		Events: events,
	}
}

// Encode writes the input event PDU to wire format.
func (p *InputEventPDU) Encode(w *buffer.Writer) error {
	body := buffer.NewWriter(64)
	for i := range p.Events {
		if err := p.Events[i].Encode(body); err != nil {
			return err
		}
	}
	p.Header.NumEvents = uint8(len(p.Events))
	if err := p.Header.Encode(w, body.Len()); err != nil {
		return err
	}
	return w.WriteBytes(body.Bytes())
}

// Decode reads an input event PDU from wire format.
func (p *InputEventPDU) Decode(r *buffer.Reader) error {
	if err := p.Header.Decode(r); err != nil {
		return err
	}
	if p.Header.Action != ActionFastPath {
		return &rdperr.UnexpectedMessageType{Phase: "input", Got: "fastPathAction", Allowed: []string{"fastPath"}}
	}
	body, err := r.Bytes(int(p.Header.Length))
	if err != nil {
		return err
	}
	br := buffer.NewReader(body)
	p.Events = make([]pdu.InputEvent, 0, p.Header.NumEvents)
	for i := 0; i < int(p.Header.NumEvents); i++ {
		var e pdu.InputEvent
		if err := e.Decode(br); err != nil {
			return err
		}
		p.Events = append(p.Events, e)
	}
	return nil
}
