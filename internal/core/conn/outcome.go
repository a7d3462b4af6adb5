// Package conn implements the client-side RDP connection state machine:
// negotiation, (optional) TLS/CredSSP security upgrade, MCS/GCC settings
// exchange, channel join, licensing, and capability negotiation. The
// machine is pure — it never touches a socket. Callers drive it with bytes
// read from the wire and a buffer.Writer to collect bytes to send, and
// service the two externalized suspension points (TLS upgrade, CredSSP
// network requests) themselves.
package conn

import "github.com/rcarmo/go-rdp-core/internal/core/pdu"

// Kind discriminates the variant carried by an Outcome.
type Kind int

const (
	// KindWritten means Step encoded zero or more PDUs into the caller's
	// buffer.Writer; the caller should transmit any bytes written and then
	// supply the next server PDU to the next Step call.
	KindWritten Kind = iota
	// KindNeedMore means Step consumed its input (or had none to consume)
	// and has nothing to send; the caller should supply the next complete
	// server PDU to the next Step call. NextHint gives no byte count.
	KindNeedMore
	// KindSecurityUpgrade means the machine has reached a point where the
	// transport must be upgraded to TLS before the connection can
	// continue. The caller performs the TLS handshake on its own
	// connection object, then resumes the machine with Step, passing the
	// server's public key: the CredSSP exchange takes it as its first
	// input, and the TLS-only path ignores it.
	KindSecurityUpgrade
	// KindNetworkRequest means the CredSSP sub-machine needs the caller to
	// perform an out-of-band request (normally writing Payload to the same
	// already-TLS-wrapped stream and reading a response) and feed the
	// response back into the next Step call.
	KindNetworkRequest
	// KindReady means the connection sequence finished; Result holds the
	// negotiated parameters the session state machine needs.
	KindReady
)

// SecurityProtocol names the transport security the server selected
// (MS-RDPBCGR 2.2.1.2.1). It mirrors pdu.NegotiationProtocol but is
// exported at the conn boundary as a plain enum collaborators can switch
// on without importing the pdu package.
type SecurityProtocol int

const (
	SecurityProtocolNone SecurityProtocol = iota
	SecurityProtocolTLS
)

// NetworkRequest is the unit of work a CredSSP sub-step hands back to the
// caller: an out-of-band exchange on the (already TLS-wrapped) connection.
// Fields follow the collaborator contract for security-upgrade
// collaborators in the external-interfaces section: URL identifies the
// logical endpoint (opaque to the core; the in-band CredSSP exchange this
// package produces leaves it empty), Protocol names the exchange framing
// (always "credssp", the standard in-band exchange), and Payload is the
// exact bytes to send.
type NetworkRequest struct {
	URL      string
	Protocol string
	Payload  []byte
}

// ChannelResult records one virtual channel's negotiated MCS channel ID.
type ChannelResult struct {
	Name      string
	ChannelID uint16
}

// ConnectionResult is everything the session state machine needs once the
// connection sequence reaches Connected.
type ConnectionResult struct {
	ShareID          uint32
	UserID           uint16
	IOChannelID      uint16
	Channels         []ChannelResult
	ServerCapability []pdu.CapabilitySet
	DesktopWidth     uint16
	DesktopHeight    uint16
	ColorDepth       int
}

// Outcome is the tagged result of one Step/StepNoInput call.
type Outcome struct {
	Kind Kind

	// Valid when Kind == KindSecurityUpgrade.
	Security SecurityProtocol

	// Valid when Kind == KindNetworkRequest.
	Request NetworkRequest

	// Valid when Kind == KindReady.
	Result ConnectionResult
}
