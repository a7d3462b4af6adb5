// Package credssp implements the MS-CSSP TSRequest/TSCredentials DER
// encoding CredSSP carries over TLS during network-level authentication. It
// is a pure codec: no socket, no randomness, no clock. The caller (conn's
// CredSSP sub-machine) owns sequencing, nonce generation, and NTLM message
// construction.
package credssp

import (
	"bytes"
	"crypto/sha256"

	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// Version is the TSRequest version this package negotiates. Version 6
// enables the SHA256 nonce-based public-key binding FreeRDP and modern
// Windows servers expect instead of the legacy direct-pubkey scheme.
const Version = 6

// ClientServerHashMagic and ServerClientHashMagic are the fixed strings
// MS-CSSP mixes into the nonce-based public-key binding hash (version 5+).
var (
	ClientServerHashMagic = []byte("CredSSP Client-To-Server Binding Hash\x00")
	ServerClientHashMagic = []byte("CredSSP Server-To-Client Binding Hash\x00")
)

// ClientPubKeyAuth computes the pubKeyAuth field the client sends, binding
// the TLS public key to this handshake via the client nonce.
func ClientPubKeyAuth(pubKey, nonce []byte) []byte {
	h := sha256.New()
	h.Write(ClientServerHashMagic)
	h.Write(nonce)
	h.Write(pubKey)
	return h.Sum(nil)
}

// VerifyServerPubKeyAuth checks the server's response binds the same TLS
// public key and nonce, proving the server terminated the same TLS session
// the client negotiated (defeats a man-in-the-middle relay).
func VerifyServerPubKeyAuth(serverPubKeyAuth, clientPubKey, nonce []byte) bool {
	h := sha256.New()
	h.Write(ServerClientHashMagic)
	h.Write(nonce)
	h.Write(clientPubKey)
	return bytes.Equal(serverPubKeyAuth, h.Sum(nil))
}

// NegoToken wraps one NTLM message inside a TSRequest's negoTokens field.
type NegoToken struct {
	Data []byte
}

// TSRequest is a decoded CredSSP envelope (MS-CSSP 2.2.1).
type TSRequest struct {
	Version     int
	NegoTokens  []NegoToken
	AuthInfo    []byte
	PubKeyAuth  []byte
	ErrorCode   uint32
	ServerNonce []byte
}

// EncodeTSRequest serializes a TSRequest carrying some combination of NTLM
// negoTokens, encrypted TSCredentials (authInfo), public-key binding, and the
// client nonce. Any of ntlmMessages/authInfo/pubKeyAuth/nonce may be nil;
// only the fields present are written, per MS-CSSP's all-OPTIONAL fields.
//
//	TSRequest ::= SEQUENCE {
//	   version     [0] INTEGER,
//	   negoTokens  [1] NegoData OPTIONAL,
//	   authInfo    [2] OCTET STRING OPTIONAL,
//	   pubKeyAuth  [3] OCTET STRING OPTIONAL,
//	   errorCode   [4] INTEGER OPTIONAL,
//	   clientNonce [5] OCTET STRING OPTIONAL,
//	}
func EncodeTSRequest(ntlmMessages [][]byte, authInfo, pubKeyAuth, nonce []byte) []byte {
	inner := &bytes.Buffer{}
	inner.Write(encodeContextTag(0, encodeInteger(Version)))

	if len(ntlmMessages) > 0 {
		negoData := &bytes.Buffer{}
		for _, msg := range ntlmMessages {
			negoData.Write(encodeSequence(encodeContextTag(0, encodeOctetString(msg))))
		}
		inner.Write(encodeContextTag(1, encodeSequence(negoData.Bytes())))
	}
	if len(authInfo) > 0 {
		inner.Write(encodeContextTag(2, encodeOctetString(authInfo)))
	}
	if len(pubKeyAuth) > 0 {
		inner.Write(encodeContextTag(3, encodeOctetString(pubKeyAuth)))
	}
	if len(nonce) > 0 {
		inner.Write(encodeContextTag(5, encodeOctetString(nonce)))
	}
	return encodeSequence(inner.Bytes())
}

// DecodeTSRequest parses a TSRequest received from the server.
func DecodeTSRequest(data []byte) (*TSRequest, error) {
	_, content, err := parseTag(data)
	if err != nil {
		return nil, err
	}

	req := &TSRequest{}
	offset := 0
	for offset < len(content) {
		tag, value, err := parseTag(content[offset:])
		if err != nil {
			return nil, err
		}
		switch tag & 0x1F {
		case 0:
			req.Version = parseInteger(value)
		case 1:
			req.NegoTokens = parseNegoTokens(value)
		case 2:
			if _, inner, err := parseTag(value); err == nil {
				req.AuthInfo = inner
			}
		case 3:
			if _, inner, err := parseTag(value); err == nil {
				req.PubKeyAuth = inner
			}
		case 4:
			req.ErrorCode = uint32(parseInteger(value))
		case 5:
			if _, inner, err := parseTag(value); err == nil {
				req.ServerNonce = inner
			}
		}
		offset += tagLen(content[offset:])
	}
	return req, nil
}

// EncodeCredentials serializes TSCredentials carrying a password credential.
//
//	TSCredentials ::= SEQUENCE { credType [0] INTEGER, credentials [1] OCTET STRING }
//	TSPasswordCreds ::= SEQUENCE { domainName [0], userName [1], password [2] OCTET STRING }
func EncodeCredentials(domain, username, password []byte) []byte {
	passCreds := &bytes.Buffer{}
	passCreds.Write(encodeContextTag(0, encodeOctetString(domain)))
	passCreds.Write(encodeContextTag(1, encodeOctetString(username)))
	passCreds.Write(encodeContextTag(2, encodeOctetString(password)))

	creds := &bytes.Buffer{}
	creds.Write(encodeContextTag(0, encodeInteger(1))) // credType = 1, password
	creds.Write(encodeContextTag(1, encodeOctetString(encodeSequence(passCreds.Bytes()))))
	return encodeSequence(creds.Bytes())
}

func encodeLength(length int) []byte {
	switch {
	case length < 128:
		return []byte{byte(length)}
	case length < 256:
		return []byte{0x81, byte(length)}
	case length < 65536:
		return []byte{0x82, byte(length >> 8), byte(length)}
	default:
		return []byte{0x83, byte(length >> 16), byte(length >> 8), byte(length)}
	}
}

func encodeSequence(data []byte) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(0x30)
	buf.Write(encodeLength(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func encodeContextTag(tag int, data []byte) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(0xA0 | byte(tag))
	buf.Write(encodeLength(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func encodeOctetString(data []byte) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(0x04)
	buf.Write(encodeLength(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func encodeInteger(val int) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(0x02)
	switch {
	case val < 128:
		buf.WriteByte(1)
		buf.WriteByte(byte(val))
	case val < 256:
		buf.WriteByte(2)
		buf.WriteByte(0)
		buf.WriteByte(byte(val))
	default:
		buf.WriteByte(2)
		buf.WriteByte(byte(val >> 8))
		buf.WriteByte(byte(val))
	}
	return buf.Bytes()
}

func parseTag(data []byte) (byte, []byte, error) {
	if len(data) < 2 {
		return 0, nil, &rdperr.NotEnoughBytes{Needed: 2, Available: len(data), Context: "credssp.tag"}
	}
	tag := data[0]
	lenByte := data[1]
	offset := 2
	length := 0
	if lenByte < 128 {
		length = int(lenByte)
	} else {
		numBytes := int(lenByte & 0x7F)
		if offset+numBytes > len(data) {
			return 0, nil, &rdperr.NotEnoughBytes{Needed: offset + numBytes, Available: len(data), Context: "credssp.length"}
		}
		for i := 0; i < numBytes; i++ {
			length = (length << 8) | int(data[offset])
			offset++
		}
	}
	if offset+length > len(data) {
		return 0, nil, &rdperr.NotEnoughBytes{Needed: offset + length, Available: len(data), Context: "credssp.value"}
	}
	return tag, data[offset : offset+length], nil
}

func tagLen(data []byte) int {
	if len(data) < 2 {
		return len(data)
	}
	lenByte := data[1]
	offset := 2
	length := 0
	if lenByte < 128 {
		length = int(lenByte)
	} else {
		numBytes := int(lenByte & 0x7F)
		offset += numBytes
		for i := 0; i < numBytes && 2+i < len(data); i++ {
			length = (length << 8) | int(data[2+i])
		}
	}
	return offset + length
}

func parseInteger(data []byte) int {
	_, value, err := parseTag(data)
	if err != nil || len(value) == 0 {
		return 0
	}
	result := 0
	for _, b := range value {
		result = (result << 8) | int(b)
	}
	return result
}

func parseNegoTokens(data []byte) []NegoToken {
	_, content, err := parseTag(data)
	if err != nil {
		return nil
	}
	var tokens []NegoToken
	offset := 0
	for offset < len(content) {
		_, item, err := parseTag(content[offset:])
		if err != nil {
			break
		}
		if _, tokenData, err := parseTag(item); err == nil {
			if _, octetStr, err := parseTag(tokenData); err == nil {
				tokens = append(tokens, NegoToken{Data: octetStr})
			}
		}
		offset += tagLen(content[offset:])
	}
	return tokens
}
