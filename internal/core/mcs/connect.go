package mcs

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/encoding"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// ConnectPDUApplication is the BER [APPLICATION n] tag carried by the
// outermost Connect-* PDU (T.125 ConnectMCSPDU).
type ConnectPDUApplication uint8

const (
	connectInitial    ConnectPDUApplication = 101
	connectResponse   ConnectPDUApplication = 102
	connectAdditional ConnectPDUApplication = 103
	connectResult     ConnectPDUApplication = 104
)

// ConnectPDU is the outer Connect-Initial/Connect-Response envelope
// exchanged once, immediately after the X.224 handshake.
type ConnectPDU struct {
	Application           ConnectPDUApplication
	ClientConnectInitial  *ClientConnectInitial
	ServerConnectResponse *ServerConnectResponse
}

// Encode serializes the PDU as its [APPLICATION Application] tag and length
// followed directly by the body fields (implicit tagging, the same layout
// Decode reads). Only Connect-Initial is encoded; any other Application
// returns InvalidField.
func (p *ConnectPDU) Encode(w *buffer.Writer) error {
	inner := buffer.NewWriter(256)

	switch p.Application {
	case connectInitial:
		if err := p.ClientConnectInitial.encode(inner); err != nil {
			return err
		}
	default:
		return &rdperr.InvalidField{Name: "mcs.connectPDU.application", Reason: "unsupported connect application"}
	}

	if err := encoding.BerWriteApplicationTag(uint8(p.Application), inner.Len(), w); err != nil {
		return err
	}
	return w.WriteBytes(inner.Bytes())
}

// NewConnectInitialPDU wraps a Connect-Initial body in its outer
// application-tagged envelope, ready for Serialize.
func NewConnectInitialPDU(initial *ClientConnectInitial) *ConnectPDU {
	return &ConnectPDU{Application: connectInitial, ClientConnectInitial: initial}
}

// Serialize returns the encoded PDU, used by collaborators sending a
// freshly-built ConnectPDU.
func (p *ConnectPDU) Serialize() []byte {
	w := buffer.NewWriter(256)
	if err := p.Encode(w); err != nil {
		return nil
	}
	return w.Bytes()
}

// Decode parses a Connect-Response PDU. The client never receives a
// Connect-Initial so only connectResponse is recognized.
func (p *ConnectPDU) Decode(r *buffer.Reader) error {
	application, err := encoding.BerReadApplicationTag(r)
	if err != nil {
		return err
	}
	length, err := encoding.BerReadLength(r)
	if err != nil {
		return err
	}
	_ = length

	p.Application = ConnectPDUApplication(application)
	switch p.Application {
	case connectResponse:
		p.ServerConnectResponse = &ServerConnectResponse{}
		return p.ServerConnectResponse.decode(r)
	default:
		return &rdperr.InvalidField{
			Name:   "mcs.connectPDU.application",
			Reason: "unknown connect application",
			Cause:  ErrUnknownConnectApplication,
		}
	}
}

// ClientConnectInitial is the client's T.125 Connect-Initial body (the
// MCS domain parameters it is willing to negotiate, plus the GCC
// Conference-Create-Request carried as opaque userData).
type ClientConnectInitial struct {
	calledDomainSelector  []byte
	callingDomainSelector []byte
	upwardFlag            bool
	targetParameters      domainParameters
	minimumParameters     domainParameters
	maximumParameters     domainParameters
	userData              []byte
}

// NewClientMCSConnectInitial builds a Connect-Initial with the standard
// RDP client domain parameter triple (MS-RDPBCGR 2.2.1.3).
func NewClientMCSConnectInitial(userData []byte) *ClientConnectInitial {
	return &ClientConnectInitial{
		calledDomainSelector:  []byte{0x01},
		callingDomainSelector: []byte{0x01},
		upwardFlag:            true,
		targetParameters: domainParameters{
			maxChannelIds: 34, maxUserIds: 2, maxTokenIds: 0, numPriorities: 1,
			minThroughput: 0, maxHeight: 1, maxMCSPDUsize: 65535, protocolVersion: 2,
		},
		minimumParameters: domainParameters{
			maxChannelIds: 1, maxUserIds: 1, maxTokenIds: 1, numPriorities: 1,
			minThroughput: 0, maxHeight: 1, maxMCSPDUsize: 1056, protocolVersion: 2,
		},
		maximumParameters: domainParameters{
			maxChannelIds: 65535, maxUserIds: 65535, maxTokenIds: 65535, numPriorities: 1,
			minThroughput: 0, maxHeight: 1, maxMCSPDUsize: 65535, protocolVersion: 2,
		},
		userData: userData,
	}
}

func (c *ClientConnectInitial) encode(w *buffer.Writer) error {
	if err := encoding.BerWriteOctetString(c.calledDomainSelector, w); err != nil {
		return err
	}
	if err := encoding.BerWriteOctetString(c.callingDomainSelector, w); err != nil {
		return err
	}
	if err := encoding.BerWriteBoolean(c.upwardFlag, w); err != nil {
		return err
	}
	for _, params := range []*domainParameters{&c.targetParameters, &c.minimumParameters, &c.maximumParameters} {
		inner := buffer.NewWriter(32)
		if err := params.encode(inner); err != nil {
			return err
		}
		if err := encoding.BerWriteSequence(inner.Bytes(), w); err != nil {
			return err
		}
	}
	return encoding.BerWriteOctetString(c.userData, w)
}

// Serialize returns the raw Connect-Initial content (no application tag;
// that wrapping is applied by ConnectPDU.Encode).
func (c *ClientConnectInitial) Serialize() []byte {
	w := buffer.NewWriter(256)
	if err := c.encode(w); err != nil {
		return nil
	}
	return w.Bytes()
}

// ServerConnectResponse is the server's T.125 Connect-Response body.
type ServerConnectResponse struct {
	Result         uint8
	CalledConnectId int
	ServerSettings domainParameters
	UserData       []byte
}

func (s *ServerConnectResponse) decode(r *buffer.Reader) error {
	result, err := encoding.BerReadEnumerated(r)
	if err != nil {
		return err
	}
	s.Result = result

	s.CalledConnectId, err = encoding.BerReadInteger(r)
	if err != nil {
		return err
	}

	ok, err := encoding.BerReadUniversalTag(encoding.TagSequence, true, r)
	if err != nil {
		return err
	}
	if !ok {
		return &rdperr.InvalidField{Name: "mcs.connectResponse.domainParameters", Reason: "expected SEQUENCE tag"}
	}
	if _, err := encoding.BerReadLength(r); err != nil {
		return err
	}
	if err := s.ServerSettings.decode(r); err != nil {
		return err
	}

	s.UserData, err = r.CopyBytes(r.Len())
	return err
}

func (s *ServerConnectResponse) Deserialize(r *buffer.Reader) error {
	return s.decode(r)
}
