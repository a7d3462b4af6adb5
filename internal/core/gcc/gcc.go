// Package gcc implements the Generic Conference Control (T.124) structures
// carried as the MCS Connect-Initial/Connect-Response userData: the
// Conference-Create-Request/Response envelope. The client/server data
// blocks (core, security, network, cluster) MS-RDPBCGR defines inside it
// are encoded and decoded by the pdu package.
package gcc

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/encoding"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

var (
	t12402_98OID = [6]byte{0, 0, 20, 124, 0, 1}
	h221CSKey    = "Duca"
	h221SCKey    = "McDn"
)

// ConferenceCreateRequest wraps the client's GCC user data blocks
// (serialized separately by the pdu package) in the T.124
// Conference-Create-Request envelope.
type ConferenceCreateRequest struct {
	UserData []byte
}

// NewConferenceCreateRequest builds a request carrying the given
// pre-encoded client data blocks.
func NewConferenceCreateRequest(userData []byte) *ConferenceCreateRequest {
	return &ConferenceCreateRequest{UserData: userData}
}

// Encode serializes the Conference-Create-Request PER envelope.
func (r *ConferenceCreateRequest) Encode(w *buffer.Writer) error {
	if err := encoding.PerWriteChoice(0, w); err != nil {
		return err
	}
	if err := encoding.PerWriteObjectIdentifier(t12402_98OID, w); err != nil {
		return err
	}
	if err := encoding.PerWriteLength(uint16(14+len(r.UserData)), w); err != nil {
		return err
	}

	if err := encoding.PerWriteChoice(0, w); err != nil {
		return err
	}
	if err := encoding.PerWriteSelection(0x08, w); err != nil {
		return err
	}

	if err := encoding.PerWriteNumericString("1", 1, w); err != nil {
		return err
	}
	if err := encoding.PerWritePadding(1, w); err != nil {
		return err
	}
	if err := encoding.PerWriteNumberOfSet(1, w); err != nil {
		return err
	}
	if err := encoding.PerWriteChoice(0xc0, w); err != nil {
		return err
	}
	if err := encoding.PerWriteOctetStream(h221CSKey, 4, w); err != nil {
		return err
	}
	return encoding.PerWriteOctetStream(string(r.UserData), 0, w)
}

// Serialize returns the encoded request.
func (r *ConferenceCreateRequest) Serialize() []byte {
	w := buffer.NewWriter(32 + len(r.UserData))
	if err := r.Encode(w); err != nil {
		return nil
	}
	return w.Bytes()
}

// ConferenceCreateResponse is the server's Conference-Create-Response
// envelope. The client data blocks enclosed in UserData are decoded
// separately by the pdu package.
type ConferenceCreateResponse struct {
	UserData []byte
}

// Decode parses the envelope, validating the T.124 object identifier and
// the H.221 SC key, then captures the remaining bytes as UserData.
func (r *ConferenceCreateResponse) Decode(reader *buffer.Reader) error {
	if _, err := encoding.PerReadChoice(reader); err != nil {
		return err
	}

	ok, err := encoding.PerReadObjectIdentifier(t12402_98OID, reader)
	if err != nil {
		return err
	}
	if !ok {
		return &rdperr.InvalidField{Name: "gcc.conferenceCreateResponse.oid", Reason: "bad object identifier t124"}
	}

	if _, err := encoding.PerReadLength(reader); err != nil {
		return err
	}
	if _, err := encoding.PerReadChoice(reader); err != nil {
		return err
	}
	if _, err := encoding.PerReadInteger16(1001, reader); err != nil {
		return err
	}
	if _, err := encoding.PerReadInteger(reader); err != nil {
		return err
	}
	if _, err := encoding.PerReadEnumerates(reader); err != nil {
		return err
	}
	if _, err := encoding.PerReadNumberOfSet(reader); err != nil {
		return err
	}
	if _, err := encoding.PerReadChoice(reader); err != nil {
		return err
	}

	ok, err = encoding.PerReadOctetStream([]byte(h221SCKey), 4, reader)
	if err != nil {
		return err
	}
	if !ok {
		return &rdperr.InvalidField{Name: "gcc.conferenceCreateResponse.h221ScKey", Reason: "bad H221 SC_KEY"}
	}

	length, err := encoding.PerReadLength(reader)
	if err != nil {
		return err
	}

	r.UserData, err = reader.CopyBytes(length)
	return err
}

// Deserialize parses the envelope; kept as an alias for symmetry with the
// teacher's naming.
func (r *ConferenceCreateResponse) Deserialize(reader *buffer.Reader) error {
	return r.Decode(reader)
}
