// Package ntlm builds the NTLMv2 messages CredSSP carries inside its
// negoTokens (MS-NLMP). It never touches the network: callers hand the
// server's Challenge message to Client.AuthenticateMessage and get back the
// bytes to wrap in the next TSRequest.
package ntlm

import (
	"bytes"
	"crypto/hmac"
	"crypto/md5"
	"crypto/rc4"
	"encoding/binary"
	"time"
	"unicode/utf16"

	"golang.org/x/crypto/md4"

	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

const (
	negotiateKeyExch                = 0x40000000
	negotiate128                    = 0x20000000
	negotiateVersion                = 0x02000000
	negotiateExtendedSessionSecurity = 0x00080000
	negotiateAlwaysSign              = 0x00008000
	negotiateNTLM                     = 0x00000200
	negotiateSeal                     = 0x00000020
	negotiateSign                     = 0x00000010
	requestTarget                     = 0x00000004
	negotiateUnicode                  = 0x00000001
)

// AV pair IDs carried in the Challenge message's TargetInfo (MS-NLMP 2.2.2.1).
const (
	avEOL           = 0x0000
	avFlags         = 0x0006
	avTimestamp     = 0x0007
)

var signature = []byte{'N', 'T', 'L', 'M', 'S', 'S', 'P', 0x00}

// Client carries one NTLMv2 handshake's derived keys and in-flight message
// state across the Negotiate/Challenge/Authenticate exchange.
type Client struct {
	domain, user, password string
	respKeyNT, respKeyLM   []byte
	enableUnicode          bool

	negotiateMsg []byte
	challenge    *ChallengeMessage
}

// NewClient derives the NTOWFv2/LMOWFv2 response keys for one account.
func NewClient(domain, user, password string) *Client {
	c := &Client{domain: domain, user: user, password: password}
	c.respKeyNT = ntowfv2(password, user, domain)
	c.respKeyLM = c.respKeyNT
	return c
}

// NegotiateMessage returns the Type 1 message that opens the handshake.
func (c *Client) NegotiateMessage() []byte {
	flags := uint32(negotiateKeyExch | negotiate128 | negotiateExtendedSessionSecurity |
		negotiateAlwaysSign | negotiateNTLM | negotiateSeal | negotiateSign |
		requestTarget | negotiateUnicode | negotiateVersion)

	buf := &bytes.Buffer{}
	buf.Write(signature)
	_ = binary.Write(buf, binary.LittleEndian, uint32(1))
	_ = binary.Write(buf, binary.LittleEndian, flags)
	buf.Write(make([]byte, 8)) // DomainNameFields, empty
	buf.Write(make([]byte, 8)) // WorkstationFields, empty
	buf.Write([]byte{0x06, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x0F})

	c.negotiateMsg = buf.Bytes()
	return c.negotiateMsg
}

// ChallengeMessage is the parsed Type 2 message (MS-NLMP 2.2.1.2).
type ChallengeMessage struct {
	NegotiateFlags  uint32
	ServerChallenge [8]byte
	TargetInfo      []byte
	Timestamp       []byte
	Raw             []byte
}

// ParseChallengeMessage decodes a Type 2 message.
func ParseChallengeMessage(data []byte) (*ChallengeMessage, error) {
	if len(data) < 48 {
		return nil, &rdperr.NotEnoughBytes{Needed: 48, Available: len(data), Context: "ntlm.challengeMessage"}
	}

	raw := make([]byte, len(data))
	copy(raw, data)

	offset := 12 // signature(8) + messageType(4)
	offset += 8  // TargetNameFields, unused here

	flags := binary.LittleEndian.Uint32(data[offset:])
	offset += 4

	var challenge [8]byte
	copy(challenge[:], data[offset:offset+8])
	offset += 8
	offset += 8 // Reserved

	targetInfoLen := binary.LittleEndian.Uint16(data[offset:])
	offset += 4 // len + maxLen
	targetInfoOffset := binary.LittleEndian.Uint32(data[offset:])

	msg := &ChallengeMessage{NegotiateFlags: flags, ServerChallenge: challenge, Raw: raw}
	if targetInfoLen > 0 && int(targetInfoOffset)+int(targetInfoLen) <= len(data) {
		msg.TargetInfo = data[targetInfoOffset : targetInfoOffset+uint32(targetInfoLen)]
		msg.Timestamp = extractTimestamp(msg.TargetInfo)
	}
	return msg, nil
}

func extractTimestamp(targetInfo []byte) []byte {
	offset := 0
	for offset+4 <= len(targetInfo) {
		avID := binary.LittleEndian.Uint16(targetInfo[offset:])
		avLen := binary.LittleEndian.Uint16(targetInfo[offset+2:])
		offset += 4
		if avID == avEOL {
			break
		}
		if avID == avTimestamp && avLen == 8 && offset+8 <= len(targetInfo) {
			return targetInfo[offset : offset+8]
		}
		offset += int(avLen)
	}
	return nil
}

// addMICFlag sets MsvAvFlags.MIC_PROVIDED (0x02) in targetInfo, inserting the
// AV pair before MsvAvEOL when the server didn't send one (MS-NLMP 3.1.5.1.2).
func addMICFlag(targetInfo []byte) []byte {
	if len(targetInfo) == 0 {
		return targetInfo
	}
	flagsOffset, eolOffset := -1, -1
	offset := 0
	for offset+4 <= len(targetInfo) {
		avID := binary.LittleEndian.Uint16(targetInfo[offset:])
		avLen := binary.LittleEndian.Uint16(targetInfo[offset+2:])
		if avID == avFlags {
			flagsOffset = offset
		}
		if avID == avEOL {
			eolOffset = offset
			break
		}
		offset += 4 + int(avLen)
	}

	result := make([]byte, len(targetInfo))
	copy(result, targetInfo)

	switch {
	case flagsOffset >= 0:
		existing := binary.LittleEndian.Uint32(result[flagsOffset+4:])
		binary.LittleEndian.PutUint32(result[flagsOffset+4:], existing|0x02)
	case eolOffset >= 0:
		pair := make([]byte, 8)
		binary.LittleEndian.PutUint16(pair[0:], avFlags)
		binary.LittleEndian.PutUint16(pair[2:], 4)
		binary.LittleEndian.PutUint32(pair[4:], 0x02)
		result = append(result[:eolOffset], append(pair, result[eolOffset:]...)...)
	}
	return result
}

// AuthenticateMessage parses the server's Challenge and returns the Type 3
// message to send back. clientChallenge is 8 bytes the caller generated
// (credssp.go owns nonce/randomness policy so this package stays
// deterministic and test-friendly); exportedSessionKey is 16 bytes likewise
// supplied by the caller, used to seed the encrypted session key field.
func (c *Client) AuthenticateMessage(challengeData, clientChallenge, exportedSessionKey []byte) ([]byte, error) {
	challenge, err := ParseChallengeMessage(challengeData)
	if err != nil {
		return nil, err
	}
	c.challenge = challenge
	c.enableUnicode = challenge.NegotiateFlags&negotiateUnicode != 0

	computeMIC := challenge.Timestamp != nil
	timestamp := challenge.Timestamp
	if timestamp == nil {
		timestamp = makeTimestamp()
	}

	targetInfo := challenge.TargetInfo
	if computeMIC {
		targetInfo = addMICFlag(challenge.TargetInfo)
	}

	ntResponse, lmResponse, sessionBaseKey := c.computeResponseV2(challenge.ServerChallenge[:], clientChallenge, timestamp, targetInfo)

	encryptedSessionKey := make([]byte, 16)
	rc, err := rc4.NewCipher(sessionBaseKey)
	if err != nil {
		return nil, &rdperr.AuthenticationFailure{SubCause: "ntlm.sessionKeyCipher", Cause: err}
	}
	rc.XORKeyStream(encryptedSessionKey, exportedSessionKey)

	domain, user := c.encodedCredentialNames()
	authMsg := c.buildAuthenticateMessage(challenge.NegotiateFlags, domain, user, lmResponse, ntResponse, encryptedSessionKey)

	if computeMIC {
		mic := c.computeMIC(exportedSessionKey, authMsg)
		copy(authMsg[72:88], mic)
	}
	return authMsg, nil
}

func (c *Client) computeResponseV2(serverChallenge, clientChallenge, timestamp, targetInfo []byte) (ntResponse, lmResponse, sessionBaseKey []byte) {
	temp := &bytes.Buffer{}
	temp.Write([]byte{0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	temp.Write(timestamp)
	temp.Write(clientChallenge)
	temp.Write([]byte{0x00, 0x00, 0x00, 0x00})
	temp.Write(targetInfo)
	temp.Write([]byte{0x00, 0x00, 0x00, 0x00})

	ntProofStr := hmacMD5(c.respKeyNT, append(append([]byte{}, serverChallenge...), temp.Bytes()...))
	ntResponse = append(append([]byte{}, ntProofStr...), temp.Bytes()...)

	lmProofStr := hmacMD5(c.respKeyLM, append(append([]byte{}, serverChallenge...), clientChallenge...))
	lmResponse = append(lmProofStr, clientChallenge...)

	sessionBaseKey = hmacMD5(c.respKeyNT, ntProofStr)
	return
}

func (c *Client) buildAuthenticateMessage(flags uint32, domain, user, lmResponse, ntResponse, encryptedKey []byte) []byte {
	const headerSize = 88
	buf := &bytes.Buffer{}
	buf.Write(signature)
	_ = binary.Write(buf, binary.LittleEndian, uint32(3))

	offset := uint32(headerSize)
	writeField := func(data []byte) {
		_ = binary.Write(buf, binary.LittleEndian, uint16(len(data)))
		_ = binary.Write(buf, binary.LittleEndian, uint16(len(data)))
		_ = binary.Write(buf, binary.LittleEndian, offset)
		offset += uint32(len(data))
	}
	writeField(lmResponse)
	writeField(ntResponse)
	writeField(domain)
	writeField(user)
	writeField(nil) // workstation, unused
	writeField(encryptedKey)

	_ = binary.Write(buf, binary.LittleEndian, flags)
	buf.Write([]byte{0x06, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x0F})
	buf.Write(make([]byte, 16)) // MIC, filled in by the caller when needed

	buf.Write(lmResponse)
	buf.Write(ntResponse)
	buf.Write(domain)
	buf.Write(user)
	buf.Write(encryptedKey)
	return buf.Bytes()
}

func (c *Client) computeMIC(exportedSessionKey, authMsg []byte) []byte {
	buf := &bytes.Buffer{}
	buf.Write(c.negotiateMsg)
	buf.Write(c.challenge.Raw)
	zeroed := make([]byte, len(authMsg))
	copy(zeroed, authMsg)
	for i := 72; i < 88 && i < len(zeroed); i++ {
		zeroed[i] = 0
	}
	buf.Write(zeroed)
	return hmacMD5(exportedSessionKey, buf.Bytes())[:16]
}

func (c *Client) encodedCredentialNames() (domain, user []byte) {
	if c.enableUnicode {
		return unicodeEncode(c.domain), unicodeEncode(c.user)
	}
	return []byte(c.domain), []byte(c.user)
}

// CredSSPCredentials returns domain/user/password as UTF-16LE, the fixed
// encoding TSPasswordCreds requires (MS-CSSP 4) regardless of the NTLM
// unicode flag negotiated above.
func (c *Client) CredSSPCredentials() (domain, user, password []byte) {
	return unicodeEncode(c.domain), unicodeEncode(c.user), unicodeEncode(c.password)
}

func unicodeEncode(s string) []byte {
	runes := utf16.Encode([]rune(s))
	out := make([]byte, len(runes)*2)
	for i, r := range runes {
		binary.LittleEndian.PutUint16(out[i*2:], r)
	}
	return out
}

func ntowfv2(password, user, domain string) []byte {
	h := md4.New()
	h.Write(unicodeEncode(password))
	passHash := h.Sum(nil)
	return hmacMD5(passHash, unicodeEncode(toUpper(user)+domain))
}

func hmacMD5(key, data []byte) []byte {
	h := hmac.New(md5.New, key)
	h.Write(data)
	return h.Sum(nil)
}

func makeTimestamp() []byte {
	ft := uint64(time.Now().UnixNano())/100 + 116444736000000000
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, ft)
	return buf
}

func toUpper(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'a' && r <= 'z' {
			out[i] = r - 32
		}
	}
	return string(out)
}
