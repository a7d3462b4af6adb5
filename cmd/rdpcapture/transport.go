package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rcarmo/go-rdp-core/internal/core/conn"
	"github.com/rcarmo/go-rdp-core/internal/core/fastpath"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
	"github.com/rcarmo/go-rdp-core/internal/core/tpkt"
)

// wireConn is the dialed transport the connection and session pumps share.
// It starts as a plain TCP socket and is replaced by a *tls.Conn in place
// once the connection machine asks for KindSecurityUpgrade, mirroring the
// teacher's nla.go pattern of re-wrapping the same underlying net.Conn
// (InsecureSkipVerify since RDP servers almost always present a self-signed
// certificate, the same trust decision nla.go makes).
type wireConn struct {
	raw net.Conn
	br  *bufio.Reader
}

func dialWireConn(ctx context.Context, addr string) (*wireConn, error) {
	d := net.Dialer{Timeout: 10 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &wireConn{raw: conn, br: bufio.NewReaderSize(conn, 8192)}, nil
}

// ReadHint satisfies conn.Transport. The machine's NextHint never reports an
// exact count (it always returns ok=false), so n==0 is the only case that
// actually occurs; when it does, readFrame performs the same
// TPKT-length/fast-path-length framing a real client needs regardless of
// what Machine.NextHint says. A non-zero n is honored literally, for
// collaborators that do know their count (the CredSSP exchange never goes
// through this path; it uses RoundTrip instead).
func (c *wireConn) ReadHint(ctx context.Context, n int) ([]byte, error) {
	if n > 0 {
		buf := make([]byte, n)
		if _, err := io.ReadFull(c.br, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}
	return readFrame(c.br)
}

func (c *wireConn) Write(ctx context.Context, p []byte) error {
	_, err := c.raw.Write(p)
	return err
}

// UpgradeTLS re-wraps the raw socket in a TLS client connection, the point
// at which conn.Machine's KindSecurityUpgrade asks the caller to service
// the TLS-only and enhanced (NLA/CredSSP) protocols (MS-RDPBCGR 2.2.1.2.1);
// standard RDP security never asks for it. It returns the server
// certificate's SubjectPublicKeyInfo bytes.
func (c *wireConn) UpgradeTLS(ctx context.Context) ([]byte, error) {
	cfg := &tls.Config{
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS10,
		MaxVersion:         tls.VersionTLS12,
	}
	tlsConn := tls.Client(c.raw, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, fmt.Errorf("tls handshake: %w", err)
	}
	state := tlsConn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, fmt.Errorf("tls handshake: no peer certificate")
	}
	c.raw = tlsConn
	c.br = bufio.NewReaderSize(tlsConn, 8192)
	return state.PeerCertificates[0].RawSubjectPublicKeyInfo, nil
}

// RoundTrip performs one CredSSP NegoData exchange: write the DER-encoded
// TSRequest, then read back exactly one TSRequest by following its BER
// length octets. The core's credssp package only encodes/decodes the DER
// body; framing the read off a live stream is the caller's job, the same
// division Transport draws for TPKT/fast-path framing.
func (c *wireConn) RoundTrip(ctx context.Context, req conn.NetworkRequest) ([]byte, error) {
	if _, err := c.raw.Write(req.Payload); err != nil {
		return nil, fmt.Errorf("credssp write: %w", err)
	}
	return readBERMessage(c.br)
}

// readFrame returns exactly one logical server PDU: a complete TPKT/X.224
// frame (action bits == 3) or a complete fast-path PDU (action bits == 0),
// per MS-RDPBCGR 2.2.1.1 / 2.2.9.1.2.1's shared low-byte action field.
func readFrame(br *bufio.Reader) ([]byte, error) {
	first, err := br.Peek(1)
	if err != nil {
		return nil, err
	}
	if first[0]&0x3 == 0x3 {
		return readTPKTFrame(br)
	}
	return readFastPathFrame(br)
}

func readTPKTFrame(br *bufio.Reader) ([]byte, error) {
	hdr, err := br.Peek(tpkt.HeaderLen)
	if err != nil {
		return nil, err
	}
	_, total, err := tpkt.Hint(hdr)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, total)
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readFastPathFrame(br *bufio.Reader) ([]byte, error) {
	peeked := 2
	for {
		hdr, err := br.Peek(peeked)
		if err != nil {
			return nil, err
		}
		if need := fastpath.Hint(hdr); need > 0 {
			peeked += need
			continue
		}
		headerLen := 2
		if hdr[1]&0x80 != 0 {
			headerLen = 3
		}
		length := 0
		if headerLen == 2 {
			length = int(hdr[1])
		} else {
			length = int(hdr[1]&0x7F)<<8 | int(hdr[2])
		}
		total := headerLen + length
		buf := make([]byte, total)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}
}

// readBERMessage reads one ASN.1 BER/DER TLV off the stream (identifier
// octet, then a length in short or long definite form), returning the
// whole encoding including its header. CredSSP's TSRequest is always a
// constructed SEQUENCE, so the identifier octet itself carries no useful
// information beyond being present; only the length octets matter for
// framing.
func readBERMessage(br *bufio.Reader) ([]byte, error) {
	head, err := br.Peek(2)
	if err != nil {
		return nil, err
	}
	lenByte := head[1]
	switch {
	case lenByte&0x80 == 0:
		total := 2 + int(lenByte)
		buf := make([]byte, total)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, err
		}
		return buf, nil
	default:
		numLenBytes := int(lenByte &^ 0x80)
		if numLenBytes == 0 || numLenBytes > 4 {
			return nil, &rdperr.InvalidField{Name: "credssp.berLength", Reason: "unsupported long-form length"}
		}
		full, err := br.Peek(2 + numLenBytes)
		if err != nil {
			return nil, err
		}
		length := 0
		for _, b := range full[2 : 2+numLenBytes] {
			length = length<<8 | int(b)
		}
		total := 2 + numLenBytes + length
		buf := make([]byte, total)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}
}
