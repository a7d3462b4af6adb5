// Package pdu implements the share-control/share-data PDUs, capability
// sets, licensing PDUs and input events carried inside X.224 Data TPDUs
// and MCS Send-Data-Request/Indication PDUs.
package pdu

import (
	"strings"

	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// NegotiationType is the type field of the RDP Negotiation
// Request/Response/Failure structures (MS-RDPBCGR 2.2.1.1).
type NegotiationType uint8

const (
	NegotiationTypeRequest  NegotiationType = 0x01
	NegotiationTypeResponse NegotiationType = 0x02
	NegotiationTypeFailure  NegotiationType = 0x03
)

func (t NegotiationType) IsRequest() bool  { return t == NegotiationTypeRequest }
func (t NegotiationType) IsResponse() bool { return t == NegotiationTypeResponse }
func (t NegotiationType) IsFailure() bool  { return t == NegotiationTypeFailure }

// NegotiationRequestFlag holds the flags octet of RDP_NEG_REQ.
type NegotiationRequestFlag uint8

const (
	NegReqFlagRestrictedAdminModeRequired          NegotiationRequestFlag = 0x01
	NegReqFlagRedirectedAuthenticationModeRequired NegotiationRequestFlag = 0x02
	NegReqFlagCorrelationInfoPresent               NegotiationRequestFlag = 0x08
)

func (f NegotiationRequestFlag) IsCorrelationInfoPresent() bool {
	return f&NegReqFlagCorrelationInfoPresent != 0
}

// NegotiationProtocol enumerates the security protocols a client offers or
// a server selects (MS-RDPBCGR 2.2.1.1.1).
type NegotiationProtocol uint32

const (
	NegotiationProtocolRDP      NegotiationProtocol = 0x00000000
	NegotiationProtocolSSL      NegotiationProtocol = 0x00000001
	NegotiationProtocolHybrid   NegotiationProtocol = 0x00000002
	NegotiationProtocolRDSTLS   NegotiationProtocol = 0x00000004
	NegotiationProtocolHybridEx NegotiationProtocol = 0x00000008
)

func (p NegotiationProtocol) IsRDP() bool      { return p == NegotiationProtocolRDP }
func (p NegotiationProtocol) IsSSL() bool      { return p == NegotiationProtocolSSL }
func (p NegotiationProtocol) IsHybrid() bool   { return p == NegotiationProtocolHybrid }
func (p NegotiationProtocol) IsRDSTLS() bool   { return p == NegotiationProtocolRDSTLS }
func (p NegotiationProtocol) IsHybridEx() bool { return p == NegotiationProtocolHybridEx }

// NegotiationRequest is the RDP_NEG_REQ structure, the client's advertised
// security protocol set.
type NegotiationRequest struct {
	Flags              NegotiationRequestFlag
	RequestedProtocols NegotiationProtocol
}

// FixedPartSize is the fixed RDP_NEG_REQ size (type, flags, length, protocols).
func (r NegotiationRequest) FixedPartSize() int { return 8 }

func (r NegotiationRequest) Size() int { return r.FixedPartSize() }

// Encode writes the negotiation request.
func (r NegotiationRequest) Encode(w *buffer.Writer) error {
	if err := w.WriteUint8(uint8(NegotiationTypeRequest)); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(r.Flags)); err != nil {
		return err
	}
	if err := w.WriteUint16LE(8); err != nil {
		return err
	}
	return w.WriteUint32LE(uint32(r.RequestedProtocols))
}

// Serialize returns the encoded negotiation request.
func (r NegotiationRequest) Serialize() []byte {
	w := buffer.NewWriter(8)
	if err := r.Encode(w); err != nil {
		return nil
	}
	return w.Bytes()
}

// CorrelationInfo is RDP_NEG_CORRELATION_INFO, an opaque 16-byte token
// correlating the client's connection attempt across log sources.
type CorrelationInfo struct {
	CorrelationID []byte
}

// SetCorrelationID validates and assigns a correlation ID (MS-RDPBCGR 2.2.1.1.2).
func (i *CorrelationInfo) SetCorrelationID(correlationID []byte) error {
	if len(correlationID) != 16 {
		return &rdperr.InvalidField{Name: "pdu.correlationInfo.id", Reason: "must be 16 bytes", Cause: ErrInvalidCorrelationID}
	}
	if correlationID[0] == 0x00 || correlationID[0] == 0xF4 {
		return &rdperr.InvalidField{Name: "pdu.correlationInfo.id", Reason: "reserved leading byte", Cause: ErrInvalidCorrelationID}
	}
	for _, b := range correlationID {
		if b == 0x0D {
			return &rdperr.InvalidField{Name: "pdu.correlationInfo.id", Reason: "reserved byte value 0x0D", Cause: ErrInvalidCorrelationID}
		}
	}
	i.CorrelationID = correlationID
	return nil
}

// Encode writes the 36-byte correlation info structure.
func (i CorrelationInfo) Encode(w *buffer.Writer) error {
	if err := w.WriteUint8(0x06); err != nil {
		return err
	}
	if err := w.WriteUint8(0x00); err != nil {
		return err
	}
	if err := w.WriteUint16LE(36); err != nil {
		return err
	}
	if i.CorrelationID == nil {
		if err := w.WriteZeros(16); err != nil {
			return err
		}
	} else if err := w.WriteBytes(i.CorrelationID); err != nil {
		return err
	}
	return w.WriteZeros(16)
}

// Serialize returns the encoded correlation info.
func (i CorrelationInfo) Serialize() []byte {
	w := buffer.NewWriter(36)
	if err := i.Encode(w); err != nil {
		return nil
	}
	return w.Bytes()
}

// NegotiationResponseFlag holds the flags octet of RDP_NEG_RSP.
type NegotiationResponseFlag uint8

const (
	NegotiationResponseFlagECDBSupported      NegotiationResponseFlag = 0x01
	NegotiationResponseFlagGFXSupported       NegotiationResponseFlag = 0x02
	NegotiationResponseFlagAdminModeSupported NegotiationResponseFlag = 0x08
	NegotiationResponseFlagAuthModeSupported  NegotiationResponseFlag = 0x10
)

func (f NegotiationResponseFlag) IsExtendedClientDataSupported() bool {
	return f&NegotiationResponseFlagECDBSupported != 0
}
func (f NegotiationResponseFlag) IsGFXProtocolSupported() bool {
	return f&NegotiationResponseFlagGFXSupported != 0
}

// String renders the set flags, comma-joined.
func (f NegotiationResponseFlag) String() string {
	var features []string
	if f&NegotiationResponseFlagECDBSupported != 0 {
		features = append(features, "EXTENDED_CLIENT_DATA_SUPPORTED")
	}
	if f&NegotiationResponseFlagGFXSupported != 0 {
		features = append(features, "DYNVC_GFX_PROTOCOL_SUPPORTED")
	}
	if f&NegotiationResponseFlagAdminModeSupported != 0 {
		features = append(features, "RESTRICTED_ADMIN_MODE_SUPPORTED")
	}
	if f&NegotiationResponseFlagAuthModeSupported != 0 {
		features = append(features, "REDIRECTED_AUTHENTICATION_MODE_SUPPORTED")
	}
	return strings.Join(features, ", ")
}

// NegotiationFailureCode is the RDP_NEG_FAILURE failureCode field.
type NegotiationFailureCode uint32

const (
	NegotiationFailureCodeSSLRequired             NegotiationFailureCode = 0x00000001
	NegotiationFailureCodeSSLNotAllowed           NegotiationFailureCode = 0x00000002
	NegotiationFailureCodeSSLCertNotOnServer      NegotiationFailureCode = 0x00000003
	NegotiationFailureCodeInconsistentFlags       NegotiationFailureCode = 0x00000004
	NegotiationFailureCodeHybridRequired          NegotiationFailureCode = 0x00000005
	NegotiationFailureCodeSSLWithUserAuthRequired NegotiationFailureCode = 0x00000006
)

var negotiationFailureCodeNames = map[NegotiationFailureCode]string{
	NegotiationFailureCodeSSLRequired:             "SSL_REQUIRED_BY_SERVER",
	NegotiationFailureCodeSSLNotAllowed:           "SSL_NOT_ALLOWED_BY_SERVER",
	NegotiationFailureCodeSSLCertNotOnServer:      "SSL_CERT_NOT_ON_SERVER",
	NegotiationFailureCodeInconsistentFlags:       "INCONSISTENT_FLAGS",
	NegotiationFailureCodeHybridRequired:          "HYBRID_REQUIRED_BY_SERVER",
	NegotiationFailureCodeSSLWithUserAuthRequired: "SSL_WITH_USER_AUTH_REQUIRED_BY_SERVER",
}

func (c NegotiationFailureCode) String() string { return negotiationFailureCodeNames[c] }

// ClientConnectionRequest is the X.224 Connection Request user data: the
// routing token/cookie line followed by the negotiation request and an
// optional correlation info block.
type ClientConnectionRequest struct {
	RoutingToken       string
	Cookie             string
	NegotiationRequest NegotiationRequest
	CorrelationInfo    CorrelationInfo
}

const crlf = "\r\n"

// Encode writes the cookie line, negotiation request, and (if flagged) the
// correlation info.
func (pdu *ClientConnectionRequest) Encode(w *buffer.Writer) error {
	switch {
	case pdu.RoutingToken != "":
		if err := w.WriteBytes([]byte(strings.Trim(pdu.RoutingToken, crlf) + crlf)); err != nil {
			return err
		}
	case pdu.Cookie != "":
		if err := w.WriteBytes([]byte("Cookie: mstshash=" + strings.Trim(pdu.Cookie, crlf) + crlf)); err != nil {
			return err
		}
	}

	if err := pdu.NegotiationRequest.Encode(w); err != nil {
		return err
	}

	if pdu.NegotiationRequest.Flags.IsCorrelationInfoPresent() {
		return pdu.CorrelationInfo.Encode(w)
	}
	return nil
}

// Serialize returns the encoded connection request user data.
func (pdu *ClientConnectionRequest) Serialize() []byte {
	w := buffer.NewWriter(64)
	if err := pdu.Encode(w); err != nil {
		return nil
	}
	return w.Bytes()
}

// ServerConnectionConfirm is the X.224 Connection Confirm user data: an
// RDP_NEG_RSP on success or RDP_NEG_FAILURE on negotiation failure,
// discriminated by Type.
type ServerConnectionConfirm struct {
	Type   NegotiationType
	Flags  NegotiationResponseFlag
	length uint16
	data   uint32
}

// SelectedProtocol returns the server-selected protocol (valid when Type
// is NegotiationTypeResponse).
func (pdu *ServerConnectionConfirm) SelectedProtocol() NegotiationProtocol {
	return NegotiationProtocol(pdu.data)
}

// FailureCode returns the negotiation failure code (valid when Type is
// NegotiationTypeFailure).
func (pdu *ServerConnectionConfirm) FailureCode() NegotiationFailureCode {
	return NegotiationFailureCode(pdu.data)
}

func (pdu *ServerConnectionConfirm) FixedPartSize() int { return 8 }

func (pdu *ServerConnectionConfirm) Size() int { return pdu.FixedPartSize() }

// Decode parses the connection confirm user data.
func (pdu *ServerConnectionConfirm) Decode(r *buffer.Reader) error {
	t, err := r.Uint8()
	if err != nil {
		return err
	}
	pdu.Type = NegotiationType(t)

	flags, err := r.Uint8()
	if err != nil {
		return err
	}
	pdu.Flags = NegotiationResponseFlag(flags)

	if pdu.length, err = r.Uint16LE(); err != nil {
		return err
	}
	pdu.data, err = r.Uint32LE()
	return err
}

// Deserialize is kept for symmetry with the teacher's naming.
func (pdu *ServerConnectionConfirm) Deserialize(r *buffer.Reader) error { return pdu.Decode(r) }
