// Package tpkt implements TPKT framing (RFC 1006) as used by RDP to carry
// X.224 traffic before the connection upgrades to fast-path. Unlike the
// teacher's tpkt.Protocol, this package never touches a net.Conn: it only
// encodes/decodes the 4-byte header around an opaque payload.
package tpkt

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// Version is the fixed TPKT version byte (MS-RDPBCGR 2.2.1.1).
const Version = 0x03

// HeaderLen is the fixed TPKT header size: version, reserved, length(BE).
const HeaderLen = 4

// Frame is a decoded TPKT frame: the header plus its X.224 payload.
type Frame struct {
	Payload []byte
}

// Size returns the total encoded length including the 4-byte header.
func (f *Frame) Size() int {
	return HeaderLen + len(f.Payload)
}

// Encode writes the TPKT header followed by the payload. The length field
// always equals the true encoded size (spec.md invariant).
func (f *Frame) Encode(w *buffer.Writer) error {
	total := f.Size()
	if total > 0xFFFF {
		return &rdperr.InvalidField{Name: "tpkt.length", Reason: "payload exceeds 16-bit TPKT length"}
	}
	if err := w.WriteUint8(Version); err != nil {
		return err
	}
	if err := w.WriteUint8(0); err != nil { // reserved
		return err
	}
	if err := w.WriteUint16BE(uint16(total)); err != nil {
		return err
	}
	return w.WriteBytes(f.Payload)
}

// Decode parses a TPKT frame. The reader must contain exactly one frame's
// worth of bytes, as determined by Hint.
func (f *Frame) Decode(r *buffer.Reader) error {
	ver, err := r.Uint8()
	if err != nil {
		return err
	}
	if ver != Version {
		return &rdperr.InvalidField{Name: "tpkt.version", Reason: "expected 0x03"}
	}
	if _, err := r.Uint8(); err != nil { // reserved
		return err
	}
	length, err := r.Uint16BE()
	if err != nil {
		return err
	}
	if int(length) < HeaderLen {
		return &rdperr.InvalidField{Name: "tpkt.length", Reason: "declared length smaller than header"}
	}
	payloadLen := int(length) - HeaderLen
	payload, err := r.Bytes(payloadLen)
	if err != nil {
		return err
	}
	f.Payload = payload
	return nil
}

// Hint inspects a byte prefix and reports how many more bytes are needed to
// decide, or the exact total frame length once known. MS-RDPBCGR 2.2.1.1:
// the outer length lives at bytes 2-3 (big-endian).
func Hint(prefix []byte) (need int, total int, err error) {
	if len(prefix) < HeaderLen {
		return HeaderLen - len(prefix), 0, nil
	}
	if prefix[0] != Version {
		return 0, 0, &rdperr.InvalidField{Name: "tpkt.version", Reason: "expected 0x03"}
	}
	length := int(prefix[2])<<8 | int(prefix[3])
	if length < HeaderLen {
		return 0, 0, &rdperr.InvalidField{Name: "tpkt.length", Reason: "declared length smaller than header"}
	}
	if len(prefix) < length {
		return length - len(prefix), length, nil
	}
	return 0, length, nil
}
