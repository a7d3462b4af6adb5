package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// Dynamic virtual channel command IDs (MS-RDPEDYC 2.2.1). Only the framing
// needed to open, write to, and close a dynamic channel is implemented here;
// the channel-specific payloads (display control, RemoteFX progressive,
// RAIL) live above this codec layer.
const (
	DVCCmdCreate     uint8 = 0x01
	DVCCmdDataFirst  uint8 = 0x02
	DVCCmdData       uint8 = 0x03
	DVCCmdClose      uint8 = 0x04
	DVCCmdCapability uint8 = 0x05
)

// DVC capability versions (MS-RDPEDYC 2.2.1.1).
const (
	DVCCapsVersion1 uint16 = 0x0001
	DVCCapsVersion2 uint16 = 0x0002
)

// DVC create-response result codes (MS-RDPEDYC 2.2.2.2).
const (
	DVCCreateResultOK              uint32 = 0x00000000
	DVCCreateResultNoListener      uint32 = 0x00000003
	DVCCreateResultChannelNotFound uint32 = 0x80070490
)

// DVCHeader is the common one-byte header prefixing every DRDYNVC PDU
// (MS-RDPEDYC 2.2.1): a 2-bit channel-ID-length field, a 2-bit command-
// specific field, and a 4-bit command code.
type DVCHeader struct {
	CbChID uint8
	Sp     uint8
	Cmd    uint8
}

// Encode writes the header byte.
func (h *DVCHeader) Encode(w *buffer.Writer) error {
	return w.WriteUint8((h.CbChID & 0x03) | (h.Sp&0x03)<<2 | (h.Cmd&0x0F)<<4)
}

// Decode reads the header byte.
func (h *DVCHeader) Decode(r *buffer.Reader) error {
	b, err := r.Uint8()
	if err != nil {
		return err
	}
	h.CbChID = b & 0x03
	h.Sp = (b >> 2) & 0x03
	h.Cmd = (b >> 4) & 0x0F
	return nil
}

// dvcChannelIDSize returns the wire size of a channel ID for the given
// channel ID value, and the CbChID code that selects it.
func dvcChannelIDSize(id uint32) (size int, cbChID uint8) {
	switch {
	case id <= 0xFF:
		return 1, 0
	case id <= 0xFFFF:
		return 2, 1
	default:
		return 4, 2
	}
}

func writeDVCChannelID(w *buffer.Writer, id uint32, cbChID uint8) error {
	switch cbChID {
	case 0:
		return w.WriteUint8(uint8(id))
	case 1:
		return w.WriteUint16LE(uint16(id))
	default:
		return w.WriteUint32LE(id)
	}
}

func readDVCChannelID(r *buffer.Reader, cbChID uint8) (uint32, error) {
	switch cbChID {
	case 0:
		v, err := r.Uint8()
		return uint32(v), err
	case 1:
		v, err := r.Uint16LE()
		return uint32(v), err
	default:
		return r.Uint32LE()
	}
}

// DVCCapsPDU is DYNVC_CAPS_VERSIONx (MS-RDPEDYC 2.2.1.1), the capability
// negotiation exchanged once over the static drdynvc channel before any
// dynamic channel can be created.
type DVCCapsPDU struct {
	Version uint16
}

// Encode writes the Caps PDU to wire format.
func (c *DVCCapsPDU) Encode(w *buffer.Writer) error {
	header := DVCHeader{CbChID: 0, Sp: 0, Cmd: DVCCmdCapability}
	if err := header.Encode(w); err != nil {
		return err
	}
	if err := w.WriteUint8(0); err != nil { // pad
		return err
	}
	return w.WriteUint16LE(c.Version)
}

// Decode reads the Caps PDU from wire format, assuming the header byte has
// already been consumed by the caller's command dispatch.
func (c *DVCCapsPDU) Decode(r *buffer.Reader) error {
	if err := r.Skip(1); err != nil { // pad
		return err
	}
	var err error
	c.Version, err = r.Uint16LE()
	return err
}

// DVCCreateRequestPDU is DYNVC_CREATE_REQ (MS-RDPEDYC 2.2.2.1): the server
// asking the client to open a new dynamic channel by name.
type DVCCreateRequestPDU struct {
	ChannelID   uint32
	ChannelName string
}

// Encode writes the Create Request PDU to wire format.
func (c *DVCCreateRequestPDU) Encode(w *buffer.Writer) error {
	_, cbChID := dvcChannelIDSize(c.ChannelID)
	header := DVCHeader{CbChID: cbChID, Sp: 0, Cmd: DVCCmdCreate}
	if err := header.Encode(w); err != nil {
		return err
	}
	if err := writeDVCChannelID(w, c.ChannelID, cbChID); err != nil {
		return err
	}
	if err := w.WriteBytes([]byte(c.ChannelName)); err != nil {
		return err
	}
	return w.WriteUint8(0)
}

// DecodeBody reads the Create Request PDU body, given the CbChID already
// extracted from the header by the caller.
func (c *DVCCreateRequestPDU) DecodeBody(r *buffer.Reader, cbChID uint8) error {
	id, err := readDVCChannelID(r, cbChID)
	if err != nil {
		return err
	}
	c.ChannelID = id

	name := make([]byte, 0, 32)
	for {
		b, err := r.Uint8()
		if err != nil {
			return err
		}
		if b == 0 {
			break
		}
		name = append(name, b)
	}
	c.ChannelName = string(name)
	return nil
}

// DVCCreateResponsePDU is DYNVC_CREATE_RSP (MS-RDPEDYC 2.2.2.2): the
// client's reply naming whether the dynamic channel was opened.
type DVCCreateResponsePDU struct {
	ChannelID    uint32
	CreationCode uint32
}

// Encode writes the Create Response PDU to wire format.
func (c *DVCCreateResponsePDU) Encode(w *buffer.Writer) error {
	_, cbChID := dvcChannelIDSize(c.ChannelID)
	header := DVCHeader{CbChID: cbChID, Sp: 0, Cmd: DVCCmdCreate}
	if err := header.Encode(w); err != nil {
		return err
	}
	if err := writeDVCChannelID(w, c.ChannelID, cbChID); err != nil {
		return err
	}
	return w.WriteUint32LE(c.CreationCode)
}

// DecodeBody reads the Create Response PDU body.
func (c *DVCCreateResponsePDU) DecodeBody(r *buffer.Reader, cbChID uint8) error {
	id, err := readDVCChannelID(r, cbChID)
	if err != nil {
		return err
	}
	c.ChannelID = id
	c.CreationCode, err = r.Uint32LE()
	return err
}

// IsSuccess reports whether the create request succeeded.
func (c *DVCCreateResponsePDU) IsSuccess() bool { return c.CreationCode == DVCCreateResultOK }

// DVCDataPDU is DYNVC_DATA (MS-RDPEDYC 2.2.3.2): a single, unfragmented
// payload chunk addressed to an open dynamic channel.
type DVCDataPDU struct {
	ChannelID uint32
	Data      []byte
}

// Encode writes the Data PDU to wire format.
func (d *DVCDataPDU) Encode(w *buffer.Writer) error {
	_, cbChID := dvcChannelIDSize(d.ChannelID)
	header := DVCHeader{CbChID: cbChID, Sp: 0, Cmd: DVCCmdData}
	if err := header.Encode(w); err != nil {
		return err
	}
	if err := writeDVCChannelID(w, d.ChannelID, cbChID); err != nil {
		return err
	}
	return w.WriteBytes(d.Data)
}

// DecodeBody reads the Data PDU body; Data aliases the decode buffer's
// backing array and must be copied by callers that retain it.
func (d *DVCDataPDU) DecodeBody(r *buffer.Reader, cbChID uint8) error {
	id, err := readDVCChannelID(r, cbChID)
	if err != nil {
		return err
	}
	d.ChannelID = id
	d.Data, err = r.Bytes(r.Len())
	return err
}

// DVCDataFirstPDU is DYNVC_DATA_FIRST (MS-RDPEDYC 2.2.3.1): the first chunk
// of a fragmented payload, carrying the total reassembled length.
type DVCDataFirstPDU struct {
	ChannelID uint32
	Length    uint32
	Data      []byte
}

// Encode writes the Data First PDU to wire format.
func (d *DVCDataFirstPDU) Encode(w *buffer.Writer) error {
	_, cbChID := dvcChannelIDSize(d.ChannelID)
	_, lenSize := dvcChannelIDSize(d.Length)
	header := DVCHeader{CbChID: cbChID, Sp: lenSize, Cmd: DVCCmdDataFirst}
	if err := header.Encode(w); err != nil {
		return err
	}
	if err := writeDVCChannelID(w, d.ChannelID, cbChID); err != nil {
		return err
	}
	if err := writeDVCChannelID(w, d.Length, lenSize); err != nil {
		return err
	}
	return w.WriteBytes(d.Data)
}

// DecodeBody reads the Data First PDU body given CbChID and Sp (the length
// field's size code) from the header.
func (d *DVCDataFirstPDU) DecodeBody(r *buffer.Reader, cbChID, lenSize uint8) error {
	id, err := readDVCChannelID(r, cbChID)
	if err != nil {
		return err
	}
	d.ChannelID = id
	length, err := readDVCChannelID(r, lenSize)
	if err != nil {
		return err
	}
	d.Length = length
	d.Data, err = r.Bytes(r.Len())
	return err
}

// DVCClosePDU is DYNVC_CLOSE (MS-RDPEDYC 2.2.4): either party tearing down
// a dynamic channel.
type DVCClosePDU struct {
	ChannelID uint32
}

// Encode writes the Close PDU to wire format.
func (c *DVCClosePDU) Encode(w *buffer.Writer) error {
	_, cbChID := dvcChannelIDSize(c.ChannelID)
	header := DVCHeader{CbChID: cbChID, Sp: 0, Cmd: DVCCmdClose}
	if err := header.Encode(w); err != nil {
		return err
	}
	return writeDVCChannelID(w, c.ChannelID, cbChID)
}

// DecodeBody reads the Close PDU body.
func (c *DVCClosePDU) DecodeBody(r *buffer.Reader, cbChID uint8) error {
	id, err := readDVCChannelID(r, cbChID)
	c.ChannelID = id
	return err
}
