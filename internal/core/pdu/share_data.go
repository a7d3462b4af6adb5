package pdu

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// ShareDataType is the pduType2 field of TS_SHAREDATAHEADER
// (MS-RDPBCGR 2.2.8.1.1.1.2).
type ShareDataType uint8

const (
	ShareDataTypeUpdate          ShareDataType = 0x02
	ShareDataTypeControl         ShareDataType = 0x14
	ShareDataTypePointer         ShareDataType = 0x1B
	ShareDataTypeInput           ShareDataType = 0x1C
	ShareDataTypeSynchronize     ShareDataType = 0x1F
	ShareDataTypeRefreshRect     ShareDataType = 0x21
	ShareDataTypePlaySound       ShareDataType = 0x22
	ShareDataTypeSuppressOutput  ShareDataType = 0x23
	ShareDataTypeShutdownRequest ShareDataType = 0x24
	ShareDataTypeShutdownDenied  ShareDataType = 0x25
	ShareDataTypeSaveSessionInfo ShareDataType = 0x26
	ShareDataTypeFontList        ShareDataType = 0x27
	ShareDataTypeFontMap         ShareDataType = 0x28
	ShareDataTypeSetErrorInfo    ShareDataType = 0x2F
	ShareDataTypeFrameAck        ShareDataType = 0x38
)

// Compression flags carried in the TS_SHAREDATAHEADER (MS-RDPBCGR 2.2.8.1.1.1.2).
const (
	StreamIDNone     uint8 = 0x00
	StreamIDLossless uint8 = 0x01
	StreamIDLossy    uint8 = 0x02
)

// ShareDataHeader is the TS_SHAREDATAHEADER structure following a
// ShareControlHeader in every Data share-control PDU.
type ShareDataHeader struct {
	ShareID            uint32
	StreamID           uint8
	UncompressedLength uint16
	PDUType2           ShareDataType
	CompressedType     uint8
	CompressedLength   uint16
}

// FixedPartSize is the header's constant encoded size.
func (h *ShareDataHeader) FixedPartSize() int { return 12 }

// Encode writes the header to wire format.
func (h *ShareDataHeader) Encode(w *buffer.Writer) error {
	if err := w.WriteUint32LE(h.ShareID); err != nil {
		return err
	}
	if err := w.WriteUint8(0); err != nil { // pad1
		return err
	}
	if err := w.WriteUint8(h.StreamID); err != nil {
		return err
	}
	if err := w.WriteUint16LE(h.UncompressedLength); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(h.PDUType2)); err != nil {
		return err
	}
	if err := w.WriteUint8(h.CompressedType); err != nil {
		return err
	}
	return w.WriteUint16LE(h.CompressedLength)
}

// Decode reads the header from wire format.
func (h *ShareDataHeader) Decode(r *buffer.Reader) error {
	var err error
	if h.ShareID, err = r.Uint32LE(); err != nil {
		return err
	}
	if err := r.Skip(1); err != nil { // pad1
		return err
	}
	if h.StreamID, err = r.Uint8(); err != nil {
		return err
	}
	if h.UncompressedLength, err = r.Uint16LE(); err != nil {
		return err
	}
	pduType2, err := r.Uint8()
	if err != nil {
		return err
	}
	h.PDUType2 = ShareDataType(pduType2)
	if h.CompressedType, err = r.Uint8(); err != nil {
		return err
	}
	h.CompressedLength, err = r.Uint16LE()
	return err
}

// SynchronizePDUData is the TS_SYNCHRONIZE_PDU structure (MS-RDPBCGR
// 2.2.1.14.1), exchanged by client and server to rendezvous after the
// capability exchange completes.
type SynchronizePDUData struct {
	MessageType uint16
	TargetUser  uint16
}

// NewSynchronizePDUData creates a Synchronize PDU data body addressed to
// the server's MCS channel (1002, per MS-RDPBCGR 2.2.1.14.1).
func NewSynchronizePDUData(targetUser uint16) *SynchronizePDUData {
	return &SynchronizePDUData{MessageType: 1, TargetUser: targetUser}
}

// Encode writes the PDU data to wire format.
func (s *SynchronizePDUData) Encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(s.MessageType); err != nil {
		return err
	}
	return w.WriteUint16LE(s.TargetUser)
}

// Decode reads the PDU data from wire format.
func (s *SynchronizePDUData) Decode(r *buffer.Reader) error {
	var err error
	if s.MessageType, err = r.Uint16LE(); err != nil {
		return err
	}
	s.TargetUser, err = r.Uint16LE()
	return err
}

// ControlAction is the action field of TS_CONTROL_PDU (MS-RDPBCGR 2.2.1.15.1).
type ControlAction uint16

const (
	ControlActionRequestControl ControlAction = 1
	ControlActionGrantedControl ControlAction = 2
	ControlActionDetach         ControlAction = 3
	ControlActionCooperate      ControlAction = 4
)

// ControlPDUData is the TS_CONTROL_PDU structure (MS-RDPBCGR 2.2.1.15.1 /
// 2.2.1.16.1), used for both the client's control exchange and the input
// control cycle.
type ControlPDUData struct {
	Action    ControlAction
	GrantID   uint16
	ControlID uint32
}

// NewControlPDUData creates a Control PDU data body for the given action.
func NewControlPDUData(action ControlAction) *ControlPDUData {
	return &ControlPDUData{Action: action}
}

// Encode writes the PDU data to wire format.
func (c *ControlPDUData) Encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(uint16(c.Action)); err != nil {
		return err
	}
	if err := w.WriteUint16LE(c.GrantID); err != nil {
		return err
	}
	return w.WriteUint32LE(c.ControlID)
}

// Decode reads the PDU data from wire format.
func (c *ControlPDUData) Decode(r *buffer.Reader) error {
	action, err := r.Uint16LE()
	if err != nil {
		return err
	}
	c.Action = ControlAction(action)
	if c.GrantID, err = r.Uint16LE(); err != nil {
		return err
	}
	c.ControlID, err = r.Uint32LE()
	return err
}

// FontListPDUData is the TS_FONT_LIST_PDU structure (MS-RDPBCGR 2.2.1.18.1).
// Every field is a fixed, client-hardcoded value; the PDU carries no
// negotiable content.
type FontListPDUData struct{}

// NewFontListPDUData creates a Font List PDU data body.
func NewFontListPDUData() *FontListPDUData { return &FontListPDUData{} }

// Encode writes the PDU data to wire format.
func (f *FontListPDUData) Encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(0); err != nil { // numberFonts
		return err
	}
	if err := w.WriteUint16LE(0); err != nil { // totalNumFonts
		return err
	}
	if err := w.WriteUint16LE(3); err != nil { // listFlags, FONTLIST_FIRST|FONTLIST_LAST
		return err
	}
	return w.WriteUint16LE(50) // entrySize
}

// Decode reads the PDU data from wire format.
func (f *FontListPDUData) Decode(r *buffer.Reader) error {
	return r.Skip(8)
}

// FontMapPDUData is the TS_FONT_MAP_PDU structure (MS-RDPBCGR 2.2.1.22.1),
// the server's acknowledgement of the client's font list.
type FontMapPDUData struct{}

// Decode reads the PDU data from wire format.
func (f *FontMapPDUData) Decode(r *buffer.Reader) error {
	return r.Skip(8)
}

// Encode writes the PDU data to wire format.
func (f *FontMapPDUData) Encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(0); err != nil {
		return err
	}
	if err := w.WriteUint16LE(0); err != nil {
		return err
	}
	if err := w.WriteUint16LE(3); err != nil {
		return err
	}
	return w.WriteUint16LE(4)
}

// ShutdownRequestPDUData is the TS_SHUTDOWN_REQUEST_PDU structure
// (MS-RDPBCGR 2.2.2.1.1): the client asking to end the session cleanly.
type ShutdownRequestPDUData struct{}

// Encode writes the (empty) PDU data to wire format.
func (s *ShutdownRequestPDUData) Encode(w *buffer.Writer) error { return nil }

// Decode reads the (empty) PDU data from wire format.
func (s *ShutdownRequestPDUData) Decode(r *buffer.Reader) error { return nil }

// ShutdownDeniedPDUData is the TS_SHUTDOWN_DENIED_PDU structure
// (MS-RDPBCGR 2.2.2.2.1): the server's reply refusing (or granting, by its
// absence of further action) the shutdown request.
type ShutdownDeniedPDUData struct{}

// Encode writes the (empty) PDU data to wire format.
func (s *ShutdownDeniedPDUData) Encode(w *buffer.Writer) error { return nil }

// Decode reads the (empty) PDU data from wire format.
func (s *ShutdownDeniedPDUData) Decode(r *buffer.Reader) error { return nil }

// SuppressOutputAction is the allowDisplayUpdates field of
// TS_SUPPRESS_OUTPUT_PDU (MS-RDPBCGR 2.2.11.3.1).
type SuppressOutputAction uint8

const (
	SuppressOutputSuppress SuppressOutputAction = 0
	SuppressOutputAllow    SuppressOutputAction = 1
)

// SuppressOutputPDUData is the TS_SUPPRESS_OUTPUT_PDU structure
// (MS-RDPBCGR 2.2.11.3.1): the client telling the server whether it wants
// display updates (e.g. the RDP window was minimized).
type SuppressOutputPDUData struct {
	AllowDisplayUpdates SuppressOutputAction
	Left, Top           uint16
	Right, Bottom       uint16
}

// Encode writes the PDU data to wire format.
func (s *SuppressOutputPDUData) Encode(w *buffer.Writer) error {
	if err := w.WriteUint8(uint8(s.AllowDisplayUpdates)); err != nil {
		return err
	}
	if err := w.WriteZeros(3); err != nil { // pad3Octets
		return err
	}
	if s.AllowDisplayUpdates != SuppressOutputAllow {
		return nil
	}
	for _, v := range []uint16{s.Left, s.Top, s.Right, s.Bottom} {
		if err := w.WriteUint16LE(v); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads the PDU data from wire format.
func (s *SuppressOutputPDUData) Decode(r *buffer.Reader) error {
	action, err := r.Uint8()
	if err != nil {
		return err
	}
	s.AllowDisplayUpdates = SuppressOutputAction(action)
	if err := r.Skip(3); err != nil {
		return err
	}
	if s.AllowDisplayUpdates != SuppressOutputAllow || r.Len() == 0 {
		return nil
	}
	fields := []*uint16{&s.Left, &s.Top, &s.Right, &s.Bottom}
	for _, f := range fields {
		v, err := r.Uint16LE()
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}

// FrameAcknowledgePDUData is the TS_FRAME_ACKNOWLEDGE_PDU structure
// (MS-RDPBCGR 2.2.8.1.1.1 / [MS-RDPRFX] frame acknowledgement), used by the
// client to flow-control RemoteFX frame generation on the server.
type FrameAcknowledgePDUData struct {
	FrameID uint32
}

// Encode writes the PDU data to wire format.
func (f *FrameAcknowledgePDUData) Encode(w *buffer.Writer) error {
	return w.WriteUint32LE(f.FrameID)
}

// Decode reads the PDU data from wire format.
func (f *FrameAcknowledgePDUData) Decode(r *buffer.Reader) error {
	var err error
	f.FrameID, err = r.Uint32LE()
	return err
}

// DataPDU is a Data share-control PDU: a ShareControlHeader naming
// ShareControlTypeData, followed by a ShareDataHeader, followed by a body
// whose shape is selected by ShareDataHeader.PDUType2. It is the envelope
// for every in-session client/server exchange except the capability
// exchange and deactivation PDUs handled by share_control.go.
type DataPDU struct {
	ControlHeader ShareControlHeader
	DataHeader    ShareDataHeader

	Synchronize     *SynchronizePDUData
	Control         *ControlPDUData
	FontList        *FontListPDUData
	FontMap         *FontMapPDUData
	ErrorInfo       *ErrorInfoPDUData
	ShutdownRequest *ShutdownRequestPDUData
	ShutdownDenied  *ShutdownDeniedPDUData
	SuppressOutput  *SuppressOutputPDUData
	FrameAck        *FrameAcknowledgePDUData
}

func (p *DataPDU) body() interface {
	Encode(*buffer.Writer) error
	Decode(*buffer.Reader) error
} {
	switch p.DataHeader.PDUType2 {
	case ShareDataTypeSynchronize:
		if p.Synchronize == nil {
			p.Synchronize = &SynchronizePDUData{}
		}
		return p.Synchronize
	case ShareDataTypeControl:
		if p.Control == nil {
			p.Control = &ControlPDUData{}
		}
		return p.Control
	case ShareDataTypeFontList:
		if p.FontList == nil {
			p.FontList = &FontListPDUData{}
		}
		return p.FontList
	case ShareDataTypeFontMap:
		if p.FontMap == nil {
			p.FontMap = &FontMapPDUData{}
		}
		return p.FontMap
	case ShareDataTypeSetErrorInfo:
		if p.ErrorInfo == nil {
			p.ErrorInfo = &ErrorInfoPDUData{}
		}
		return p.ErrorInfo
	case ShareDataTypeShutdownRequest:
		if p.ShutdownRequest == nil {
			p.ShutdownRequest = &ShutdownRequestPDUData{}
		}
		return p.ShutdownRequest
	case ShareDataTypeShutdownDenied:
		if p.ShutdownDenied == nil {
			p.ShutdownDenied = &ShutdownDeniedPDUData{}
		}
		return p.ShutdownDenied
	case ShareDataTypeSuppressOutput:
		if p.SuppressOutput == nil {
			p.SuppressOutput = &SuppressOutputPDUData{}
		}
		return p.SuppressOutput
	case ShareDataTypeFrameAck:
		if p.FrameAck == nil {
			p.FrameAck = &FrameAcknowledgePDUData{}
		}
		return p.FrameAck
	default:
		return nil
	}
}

// Encode writes the Data PDU to wire format, backpatching both the
// ShareControlHeader's TotalLength and the ShareDataHeader's
// UncompressedLength once the body's size is known.
func (p *DataPDU) Encode(w *buffer.Writer) error {
	body := p.body()
	if body == nil {
		return &rdperr.InvalidField{Name: "dataPDU.pduType2", Reason: "unsupported share-data sub-type"}
	}

	p.ControlHeader.PDUType = ShareControlTypeData
	headerStart := w.Len()
	if err := p.ControlHeader.Encode(w); err != nil {
		return err
	}
	dataHeaderStart := w.Len()
	if err := p.DataHeader.Encode(w); err != nil {
		return err
	}
	bodyStart := w.Len()
	if err := body.Encode(w); err != nil {
		return err
	}
	total := w.Len() - headerStart
	p.ControlHeader.TotalLength = uint16(total)
	w.PatchUint16LE(headerStart, uint16(total))
	p.DataHeader.UncompressedLength = uint16(w.Len() - dataHeaderStart + 4)
	w.PatchUint16LE(dataHeaderStart+4, p.DataHeader.UncompressedLength)
	_ = bodyStart
	return nil
}

// Decode reads a Data PDU from wire format, dispatching the body by the
// ShareDataHeader's PDUType2 field. For an Update PDU it stops after the
// ShareDataHeader, leaving r at the update's updateType field.
func (p *DataPDU) Decode(r *buffer.Reader) error {
	if err := p.ControlHeader.Decode(r); err != nil {
		return err
	}
	if p.ControlHeader.PDUType != ShareControlTypeData {
		return &rdperr.UnexpectedMessageType{Phase: "session", Got: "shareControl", Allowed: []string{"data"}}
	}
	if err := p.DataHeader.Decode(r); err != nil {
		return err
	}
	body := p.body()
	if body == nil {
		if p.DataHeader.PDUType2 == ShareDataTypeUpdate {
			return nil
		}
		return &rdperr.InvalidField{Name: "dataPDU.pduType2", Reason: "unsupported share-data sub-type"}
	}
	return body.Decode(r)
}
