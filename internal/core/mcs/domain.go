package mcs

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/encoding"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// DomainMCSPDU application tags (T.125 section 7, PER CHOICE index).
const (
	erectDomainRequest          uint8 = 1
	disconnectProviderUltimatum uint8 = 8
	attachUserRequest           uint8 = 10
	attachUserConfirm           uint8 = 11
	channelJoinRequest          uint8 = 14
	channelJoinConfirm          uint8 = 15
	SendDataRequest             uint8 = 25
	SendDataIndication          uint8 = 26
)

// DomainPDU is every domain-scoped MCS PDU exchanged after Connect-Response,
// discriminated by Application; exactly one of the pointer fields is set.
type DomainPDU struct {
	Application uint8

	ClientErectDomainRequest *ClientErectDomainRequest
	ClientAttachUserRequest  *ClientAttachUserRequest
	ServerAttachUserConfirm  *ServerAttachUserConfirm
	ClientChannelJoinRequest *ClientChannelJoinRequest
	ServerChannelJoinConfirm *ServerChannelJoinConfirm
	ClientSendDataRequest    *ClientSendDataRequest
	ServerSendDataIndication *ServerSendDataIndication
}

// Encode writes the (application<<2)|options header byte followed by the
// active variant's body. No DomainPDU variant used by this client sets the
// PER CHOICE option bits, so the low two bits are always zero.
func (d *DomainPDU) Encode(w *buffer.Writer) error {
	if err := w.WriteUint8(d.Application << 2); err != nil {
		return err
	}

	switch d.Application {
	case erectDomainRequest:
		return d.ClientErectDomainRequest.encode(w)
	case attachUserRequest:
		return nil
	case channelJoinRequest:
		return d.ClientChannelJoinRequest.encode(w)
	case SendDataRequest:
		return d.ClientSendDataRequest.encode(w)
	default:
		return &rdperr.InvalidField{Name: "mcs.domainPDU.application", Reason: "unsupported outbound application"}
	}
}

// Serialize returns the encoded PDU.
func (d *DomainPDU) Serialize() []byte {
	w := buffer.NewWriter(64)
	if err := d.Encode(w); err != nil {
		return nil
	}
	return w.Bytes()
}

// Decode parses any server-originated DomainPDU.
func (d *DomainPDU) Decode(r *buffer.Reader) error {
	header, err := r.Uint8()
	if err != nil {
		return err
	}
	d.Application = header >> 2

	switch d.Application {
	case attachUserConfirm:
		d.ServerAttachUserConfirm = &ServerAttachUserConfirm{}
		return d.ServerAttachUserConfirm.decode(r)
	case channelJoinConfirm:
		d.ServerChannelJoinConfirm = &ServerChannelJoinConfirm{}
		return d.ServerChannelJoinConfirm.decode(r)
	case SendDataIndication:
		d.ServerSendDataIndication = &ServerSendDataIndication{}
		return d.ServerSendDataIndication.decode(r)
	case SendDataRequest:
		d.ClientSendDataRequest = &ClientSendDataRequest{}
		return d.ClientSendDataRequest.decode(r)
	case disconnectProviderUltimatum:
		return &rdperr.InvalidField{
			Name:   "mcs.domainPDU.application",
			Reason: "disconnect provider ultimatum",
			Cause:  ErrDisconnectUltimatum,
		}
	default:
		return &rdperr.InvalidField{
			Name:   "mcs.domainPDU.application",
			Reason: "unknown domain application",
			Cause:  ErrUnknownDomainApplication,
		}
	}
}

// Deserialize is an io-free alias kept for symmetry with the teacher's
// naming; it delegates to Decode.
func (d *DomainPDU) Deserialize(r *buffer.Reader) error { return d.Decode(r) }

// ClientErectDomainRequest is the first PDU a client sends after the MCS
// connection is established (T.125 ErectDomainRequest, both parameters 0).
type ClientErectDomainRequest struct{}

func (*ClientErectDomainRequest) encode(w *buffer.Writer) error {
	if err := encoding.PerWriteInteger(0, w); err != nil {
		return err
	}
	return encoding.PerWriteInteger(0, w)
}

// Serialize returns the PDU body alone (erectDomainRequest has no header;
// callers wrap it in a DomainPDU to add the application tag).
func (c *ClientErectDomainRequest) Serialize() []byte {
	w := buffer.NewWriter(8)
	if err := c.encode(w); err != nil {
		return nil
	}
	return w.Bytes()
}

// ClientAttachUserRequest has no body; the server replies with an
// AttachUserConfirm carrying the assigned user (channel) ID.
type ClientAttachUserRequest struct{}

// Serialize always returns nil: an AttachUserRequest carries no body.
func (c *ClientAttachUserRequest) Serialize() []byte { return nil }

// ServerAttachUserConfirm carries the result of an AttachUserRequest and,
// on success, the initiator ID the client must use in subsequent PDUs.
type ServerAttachUserConfirm struct {
	Result    uint8
	Initiator uint16
}

func (s *ServerAttachUserConfirm) decode(r *buffer.Reader) error {
	result, err := encoding.PerReadEnumerates(r)
	if err != nil {
		return err
	}
	s.Result = result

	s.Initiator, err = encoding.PerReadInteger16(1001, r)
	return err
}

// ClientChannelJoinRequest asks the server to join the given channel under
// the user (initiator) ID returned by AttachUserConfirm.
type ClientChannelJoinRequest struct {
	Initiator uint16
	ChannelId uint16
}

func (c *ClientChannelJoinRequest) encode(w *buffer.Writer) error {
	if err := encoding.PerWriteInteger16(c.Initiator, 1001, w); err != nil {
		return err
	}
	return encoding.PerWriteInteger16(c.ChannelId, 0, w)
}

// Serialize returns the PDU body alone.
func (c *ClientChannelJoinRequest) Serialize() []byte {
	w := buffer.NewWriter(8)
	if err := c.encode(w); err != nil {
		return nil
	}
	return w.Bytes()
}

// ServerChannelJoinConfirm is the server's reply to a ChannelJoinRequest.
// ChannelId is present only when the join succeeded; a short PDU (EOF
// before the channel ID) leaves it at its zero value rather than erroring.
type ServerChannelJoinConfirm struct {
	Result    uint8
	Initiator uint16
	Requested uint16
	ChannelId uint16
}

func (s *ServerChannelJoinConfirm) decode(r *buffer.Reader) error {
	result, err := encoding.PerReadEnumerates(r)
	if err != nil {
		return err
	}
	s.Result = result

	if s.Initiator, err = encoding.PerReadInteger16(1001, r); err != nil {
		return err
	}
	if s.Requested, err = encoding.PerReadInteger16(0, r); err != nil {
		return err
	}

	if r.Len() >= 2 {
		s.ChannelId, err = encoding.PerReadInteger16(0, r)
		if err != nil {
			return err
		}
	}
	return nil
}

// ClientSendDataRequest wraps an upward PDU (a share-control/share-data PDU,
// or virtual channel data) addressed to a single MCS channel.
type ClientSendDataRequest struct {
	Initiator uint16
	ChannelId uint16
	Data      []byte
}

// sendDataMagic is the fixed "user data" selector octet MS-RDPBCGR expects
// between the channel ID and the length determinant.
const sendDataMagic uint8 = 0x70

func (d *ClientSendDataRequest) encode(w *buffer.Writer) error {
	if err := encoding.PerWriteInteger16(d.Initiator, 1001, w); err != nil {
		return err
	}
	if err := encoding.PerWriteInteger16(d.ChannelId, 0, w); err != nil {
		return err
	}
	if err := w.WriteUint8(sendDataMagic); err != nil {
		return err
	}
	if err := encoding.BerWriteLength(len(d.Data), w); err != nil {
		return err
	}
	return w.WriteBytes(d.Data)
}

// decode reads the header only: Initiator, ChannelId, the magic selector
// and the length determinant. It never reads the Data payload itself — the
// caller already holds a reader positioned at the start of that payload
// and reads exactly length bytes of it directly, avoiding a copy.
func (d *ClientSendDataRequest) decode(r *buffer.Reader) error {
	var err error
	if d.Initiator, err = encoding.PerReadInteger16(1001, r); err != nil {
		return err
	}
	if d.ChannelId, err = encoding.PerReadInteger16(0, r); err != nil {
		return err
	}
	if _, err = r.Uint8(); err != nil { // magic
		return err
	}
	_, err = encoding.BerReadLength(r)
	return err
}

// Serialize returns the PDU body alone.
func (d *ClientSendDataRequest) Serialize() []byte {
	w := buffer.NewWriter(len(d.Data) + 8)
	if err := d.encode(w); err != nil {
		return nil
	}
	return w.Bytes()
}

// Deserialize parses the PDU body alone.
func (d *ClientSendDataRequest) Deserialize(r *buffer.Reader) error { return d.decode(r) }

// ServerSendDataIndication is the downward counterpart of
// ClientSendDataRequest; the channel's payload follows in the same reader
// and is left for the caller to decode per-channel.
type ServerSendDataIndication struct {
	Initiator uint16
	ChannelId uint16
}

func (d *ServerSendDataIndication) decode(r *buffer.Reader) error {
	var err error
	if d.Initiator, err = encoding.PerReadInteger16(1001, r); err != nil {
		return err
	}
	if d.ChannelId, err = encoding.PerReadInteger16(0, r); err != nil {
		return err
	}
	if _, err = encoding.PerReadEnumerates(r); err != nil {
		return err
	}
	_, err = encoding.BerReadLength(r)
	return err
}

// Deserialize parses the PDU body alone.
func (d *ServerSendDataIndication) Deserialize(r *buffer.Reader) error { return d.decode(r) }
