package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// LicensingMessageType is the bMsgType field of LICENSE_PREAMBLE (MS-RDPELE 2.2.2.1).
type LicensingMessageType uint8

const (
	LicensingMsgLicenseRequest        LicensingMessageType = 0x01
	LicensingMsgPlatformChallenge     LicensingMessageType = 0x02
	LicensingMsgNewLicense            LicensingMessageType = 0x03
	LicensingMsgUpgradeLicense        LicensingMessageType = 0x04
	LicensingMsgLicenseInfo           LicensingMessageType = 0x12
	LicensingMsgNewLicenseRequest     LicensingMessageType = 0x13
	LicensingMsgPlatformChallengeResp LicensingMessageType = 0x15
	LicensingMsgErrorAlert            LicensingMessageType = 0xFF
)

// LicensingErrorCode is the dwErrorCode field of LICENSE_ERROR_MESSAGE
// (MS-RDPELE 2.2.1.12.1.1). The only code a client expects to see in
// practice is ERR_STATUS_VALID_CLIENT, meaning the server waived the
// licensing protocol entirely.
type LicensingErrorCode uint32

const (
	LicensingErrInvalidServerCertificate LicensingErrorCode = 0x00000001
	LicensingErrNoLicense                LicensingErrorCode = 0x00000002
	LicensingErrValidClient              LicensingErrorCode = 0x00000007
	LicensingErrInvalidScope             LicensingErrorCode = 0x00000009
	LicensingErrNoLicenseServer          LicensingErrorCode = 0x00000006
)

// LicensingBinaryBlob is the LICENSE_BINARY_BLOB structure (MS-RDPELE 2.2.2.4).
type LicensingBinaryBlob struct {
	BlobType uint16
	BlobData []byte
}

// Decode reads a LICENSE_BINARY_BLOB from wire format.
func (b *LicensingBinaryBlob) Decode(r *buffer.Reader) error {
	var err error
	if b.BlobType, err = r.Uint16LE(); err != nil {
		return err
	}
	blobLen, err := r.Uint16LE()
	if err != nil {
		return err
	}
	if blobLen == 0 {
		return nil
	}
	b.BlobData, err = r.CopyBytes(int(blobLen))
	return err
}

// LicensingPreamble is the LICENSE_PREAMBLE structure (MS-RDPELE 2.2.2.1)
// prefixing every licensing PDU.
type LicensingPreamble struct {
	MsgType LicensingMessageType
	Flags   uint8
	MsgSize uint16
}

// Decode reads a LICENSE_PREAMBLE from wire format.
func (p *LicensingPreamble) Decode(r *buffer.Reader) error {
	msgType, err := r.Uint8()
	if err != nil {
		return err
	}
	p.MsgType = LicensingMessageType(msgType)
	if p.Flags, err = r.Uint8(); err != nil {
		return err
	}
	p.MsgSize, err = r.Uint16LE()
	return err
}

// LicensingErrorMessage is the LICENSE_ERROR_MESSAGE structure
// (MS-RDPELE 2.2.1.12.1.1), the body of a Server License Error PDU.
type LicensingErrorMessage struct {
	ErrorCode       LicensingErrorCode
	StateTransition uint32
	ErrorInfo       LicensingBinaryBlob
}

// Decode reads a LICENSE_ERROR_MESSAGE from wire format.
func (m *LicensingErrorMessage) Decode(r *buffer.Reader) error {
	code, err := r.Uint32LE()
	if err != nil {
		return err
	}
	m.ErrorCode = LicensingErrorCode(code)
	if m.StateTransition, err = r.Uint32LE(); err != nil {
		return err
	}
	return m.ErrorInfo.Decode(r)
}

// ServerLicenseErrorPDU is the Server License Error PDU (MS-RDPBCGR 2.2.1.12).
// The client-core licensing state only needs to recognize the valid-client
// waiver; any other error code ends the connection negotiation.
type ServerLicenseErrorPDU struct {
	Preamble LicensingPreamble
	Message  LicensingErrorMessage
}

// Decode reads a Server License Error PDU from wire format.
func (p *ServerLicenseErrorPDU) Decode(r *buffer.Reader) error {
	if err := p.Preamble.Decode(r); err != nil {
		return err
	}
	return p.Message.Decode(r)
}

// IsValidClient reports whether the server waived licensing for this client.
func (p *ServerLicenseErrorPDU) IsValidClient() bool {
	return p.Preamble.MsgType == LicensingMsgErrorAlert && p.Message.ErrorCode == LicensingErrValidClient
}
