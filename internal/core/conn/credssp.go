package conn

import (
	"crypto/rand"

	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/credssp"
	"github.com/rcarmo/go-rdp-core/internal/core/ntlm"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// credsspState tracks the NTLMv2-over-CredSSP round trip MS-CSSP calls
// network level authentication: negotiate, challenge/authenticate, and a
// final public-key-bound credentials submission.
type credsspState int

const (
	credsspAwaitServerPublicKey credsspState = iota
	credsspAwaitChallenge
	credsspAwaitPubKeyVerify
	credsspDone
)

// credsspMachine drives CredSSP as a sequence of out-of-band network
// requests rather than bytes appended to the TPKT stream: every message in
// this exchange rides the raw TLS connection the caller just established,
// ahead of any X.224/MCS framing.
type credsspMachine struct {
	cfg   *Config
	state credsspState
	ntlm  *ntlm.Client

	serverPublicKey []byte
	clientNonce     []byte
}

func newCredsspMachine(cfg *Config) *credsspMachine {
	return &credsspMachine{
		cfg:  cfg,
		ntlm: ntlm.NewClient(cfg.Domain, cfg.Username, cfg.Password),
	}
}

// step advances the handshake by one round trip. The very first call is
// special: input carries the server's TLS certificate public key (supplied
// by the caller via Machine.Step right after the TLS handshake, not a
// NetworkRequest reply) so the client can bind it into pubKeyAuth later.
// Every subsequent call's input is the server's TSRequest response to the
// previous NetworkRequest. done reports whether CredSSP finished, at which
// point the caller falls through to Basic Settings Exchange.
func (c *credsspMachine) step(input []byte, out *buffer.Writer) (Outcome, bool, error) {
	switch c.state {
	case credsspAwaitServerPublicKey:
		return c.sendNegotiate(input)
	case credsspAwaitChallenge:
		return c.sendAuthenticate(input)
	case credsspAwaitPubKeyVerify:
		return c.sendCredentials(input)
	default:
		return Outcome{}, true, nil
	}
}

func (c *credsspMachine) sendNegotiate(serverPublicKey []byte) (Outcome, bool, error) {
	if len(serverPublicKey) == 0 {
		return Outcome{}, false, &rdperr.InvalidField{Name: "conn.credssp.serverPublicKey", Reason: "required before CredSSP can begin"}
	}
	c.serverPublicKey = serverPublicKey

	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return Outcome{}, false, &rdperr.AuthenticationFailure{SubCause: "credssp.nonce", Cause: err}
	}
	c.clientNonce = nonce

	payload := credssp.EncodeTSRequest([][]byte{c.ntlm.NegotiateMessage()}, nil, nil, nil)

	c.state = credsspAwaitChallenge
	return Outcome{Kind: KindNetworkRequest, Request: NetworkRequest{Protocol: "credssp", Payload: payload}}, false, nil
}

func (c *credsspMachine) sendAuthenticate(serverResponse []byte) (Outcome, bool, error) {
	req, err := credssp.DecodeTSRequest(serverResponse)
	if err != nil {
		return Outcome{}, false, err
	}
	if len(req.NegoTokens) == 0 {
		return Outcome{}, false, &rdperr.UnexpectedMessageType{Phase: "credssp", Got: "tsRequest", Allowed: []string{"negoTokens(challenge)"}}
	}

	clientChallenge := make([]byte, 8)
	if _, err := rand.Read(clientChallenge); err != nil {
		return Outcome{}, false, &rdperr.AuthenticationFailure{SubCause: "credssp.clientChallenge", Cause: err}
	}
	sessionKey := make([]byte, 16)
	if _, err := rand.Read(sessionKey); err != nil {
		return Outcome{}, false, &rdperr.AuthenticationFailure{SubCause: "credssp.sessionKey", Cause: err}
	}

	authenticate, err := c.ntlm.AuthenticateMessage(req.NegoTokens[0].Data, clientChallenge, sessionKey)
	if err != nil {
		return Outcome{}, false, err
	}

	pubKeyAuth := credssp.ClientPubKeyAuth(c.serverPublicKey, c.clientNonce)
	payload := credssp.EncodeTSRequest([][]byte{authenticate}, nil, pubKeyAuth, c.clientNonce)

	c.state = credsspAwaitPubKeyVerify
	return Outcome{Kind: KindNetworkRequest, Request: NetworkRequest{Protocol: "credssp", Payload: payload}}, false, nil
}

func (c *credsspMachine) sendCredentials(serverResponse []byte) (Outcome, bool, error) {
	req, err := credssp.DecodeTSRequest(serverResponse)
	if err != nil {
		return Outcome{}, false, err
	}
	if !credssp.VerifyServerPubKeyAuth(req.PubKeyAuth, c.serverPublicKey, c.clientNonce) {
		return Outcome{}, false, &rdperr.AuthenticationFailure{SubCause: "credssp.serverPubKeyAuth"}
	}

	domain, username, password := c.ntlm.CredSSPCredentials()
	payload := credssp.EncodeTSRequest(nil, credssp.EncodeCredentials(domain, username, password), nil, nil)

	c.state = credsspDone
	return Outcome{Kind: KindNetworkRequest, Request: NetworkRequest{Protocol: "credssp", Payload: payload}}, false, nil
}
