package pdu

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
)

// InfoFlag is the flags field of TS_INFO_PACKET (MS-RDPBCGR 2.2.1.11.1.1).
type InfoFlag uint32

const (
	InfoFlagMouse             InfoFlag = 0x00000001
	InfoFlagDisableCtrlAltDel InfoFlag = 0x00000002
	InfoFlagAutologon         InfoFlag = 0x00000008
	InfoFlagUnicode           InfoFlag = 0x00000010
	InfoFlagMaximizeShell     InfoFlag = 0x00000020
	InfoFlagLogonNotify       InfoFlag = 0x00000040
	InfoFlagCompression       InfoFlag = 0x00000080
	InfoFlagEnableWindowsKey  InfoFlag = 0x00000100
	InfoFlagLogonErrors       InfoFlag = 0x00000400
	InfoFlagMouseHasWheel     InfoFlag = 0x00000800
	InfoFlagPasswordIsScPin   InfoFlag = 0x00001000
	InfoFlagNoAudioPlayback   InfoFlag = 0x00002000
	InfoFlagUsingSavedCreds   InfoFlag = 0x00004000
	InfoFlagAudioCapture      InfoFlag = 0x00008000
	InfoFlagVideoDisable      InfoFlag = 0x00010000
	InfoFlagRail              InfoFlag = 0x00200000
)

// ClientInfo is the Client Info PDU Data, TS_INFO_PACKET (MS-RDPBCGR
// 2.2.1.11.1.1). It carries the logon credentials and session preferences
// sent during secure settings exchange.
type ClientInfo struct {
	CodePage       uint32
	Flags          InfoFlag
	Domain         string
	UserName       string
	Password       string
	AlternateShell string
	WorkingDir     string
	Extended       *ExtendedClientInfo
}

// ExtendedClientInfo is TS_EXTENDED_INFO_PACKET (MS-RDPBCGR 2.2.1.11.1.1.1),
// appended after the fixed info packet when the client and server both
// negotiated RDP 5.0 or later during connection initiation.
type ExtendedClientInfo struct {
	ClientAddress     string
	ClientDir         string
	ClientTimeZone    []byte // TS_TIME_ZONE_INFORMATION, 172 bytes, opaque to this layer
	ClientSessionID   uint32
	PerformanceFlags  uint32
	AutoReconnectBlob []byte
}

// NewClientInfo builds a ClientInfo for an interactive logon, with the flag
// set a typical graphical client sends (mouse, Unicode strings, Windows key
// passthrough, logon error reporting).
func NewClientInfo(domain, userName, password string) *ClientInfo {
	return &ClientInfo{
		Flags:    InfoFlagMouse | InfoFlagUnicode | InfoFlagEnableWindowsKey | InfoFlagLogonErrors | InfoFlagMouseHasWheel,
		Domain:   domain,
		UserName: userName,
		Password: password,
	}
}

// utf16Len reports the wire length, in bytes, of s encoded as UTF-16LE
// without its terminator. ASCII and BMP text both encode one UTF-16 code
// unit per rune, which covers every credential this client sends.
func utf16Len(s string) int {
	n := 0
	for range s {
		n += 2
	}
	return n
}

// Encode writes the Client Info PDU Data body. When enhancedSecurity is
// false, the caller is responsible for the TS_SECURITY_HEADER that
// precedes this body on the wire (MS-RDPBCGR 2.2.1.11.1); when the
// connection uses TLS or CredSSP external security, that header is omitted
// and the body is written directly following the share-control framing.
func (c *ClientInfo) Encode(w *buffer.Writer) error {
	fields := []uint32{c.CodePage, uint32(c.Flags)}
	for _, v := range fields {
		if err := w.WriteUint32LE(v); err != nil {
			return err
		}
	}

	lengths := []uint16{
		uint16(utf16Len(c.Domain)),
		uint16(utf16Len(c.UserName)),
		uint16(utf16Len(c.Password)),
		uint16(utf16Len(c.AlternateShell)),
		uint16(utf16Len(c.WorkingDir)),
	}
	for _, v := range lengths {
		if err := w.WriteUint16LE(v); err != nil {
			return err
		}
	}

	strs := []string{c.Domain, c.UserName, c.Password, c.AlternateShell, c.WorkingDir}
	for _, s := range strs {
		if err := w.WriteUTF16LE(s, true); err != nil {
			return err
		}
	}

	if c.Extended != nil {
		return c.Extended.encode(w)
	}
	return nil
}

func (e *ExtendedClientInfo) encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(0); err != nil { // clientAddressFamily, AF_INET
		return err
	}
	if err := w.WriteUint16LE(uint16(utf16Len(e.ClientAddress) + 2)); err != nil {
		return err
	}
	if err := w.WriteUTF16LE(e.ClientAddress, true); err != nil {
		return err
	}

	if err := w.WriteUint16LE(uint16(utf16Len(e.ClientDir) + 2)); err != nil {
		return err
	}
	if err := w.WriteUTF16LE(e.ClientDir, true); err != nil {
		return err
	}

	tz := e.ClientTimeZone
	if len(tz) < 172 {
		padded := make([]byte, 172)
		copy(padded, tz)
		tz = padded
	}
	if err := w.WriteBytes(tz[:172]); err != nil {
		return err
	}

	if err := w.WriteUint32LE(e.ClientSessionID); err != nil {
		return err
	}
	if err := w.WriteUint32LE(e.PerformanceFlags); err != nil {
		return err
	}

	if err := w.WriteUint16LE(uint16(len(e.AutoReconnectBlob))); err != nil {
		return err
	}
	if len(e.AutoReconnectBlob) == 0 {
		return nil
	}
	return w.WriteBytes(e.AutoReconnectBlob)
}
