// Package x224 implements the X.224 connection-oriented transport PDUs
// carried inside TPKT frames during RDP connection negotiation.
package x224

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// TPDU codes (X.224 section 13.7).
const (
	codeConnectionRequest uint8 = 0xE0
	codeConnectionConfirm uint8 = 0xD0 // upper nibble 0xD, lower nibble is credit
	codeDataLI            uint8 = 0x02 // fixed LI for a Data TPDU (3-byte header - 1)
)

const dataEOT uint8 = 0x80 // NREOT: end-of-transmission, no ROA

// ConnectionRequest is the Client X.224 Connection Request TPDU
// (MS-RDPBCGR 2.2.1.1). UserData carries the routing token/cookie followed
// by the RDP Negotiation Request/Correlation Info structures.
type ConnectionRequest struct {
	DstRef      uint16
	SrcRef      uint16
	ClassOption uint8
	UserData    []byte
}

// FixedPartSize is the 7-byte fixed header (LI, CRCDT, DSTREF, SRCREF, class).
func (c *ConnectionRequest) FixedPartSize() int { return 7 }

// Size returns the full encoded length.
func (c *ConnectionRequest) Size() int { return c.FixedPartSize() + len(c.UserData) }

// Encode writes the connection request.
func (c *ConnectionRequest) Encode(w *buffer.Writer) error {
	li := c.FixedPartSize() - 1 + len(c.UserData)
	if li > 0xFF {
		return &rdperr.InvalidField{Name: "x224.connectionRequest.li", Reason: "too large for 1-byte length indicator"}
	}
	if err := w.WriteUint8(uint8(li)); err != nil {
		return err
	}
	if err := w.WriteUint8(codeConnectionRequest); err != nil {
		return err
	}
	if err := w.WriteUint16BE(c.DstRef); err != nil {
		return err
	}
	if err := w.WriteUint16BE(c.SrcRef); err != nil {
		return err
	}
	if err := w.WriteUint8(c.ClassOption); err != nil {
		return err
	}
	return w.WriteBytes(c.UserData)
}

// Decode is provided for symmetry/testing; the client never receives a
// Connection Request.
func (c *ConnectionRequest) Decode(r *buffer.Reader) error {
	li, err := r.Uint8()
	if err != nil {
		return err
	}
	code, err := r.Uint8()
	if err != nil {
		return err
	}
	if code != codeConnectionRequest {
		return &rdperr.InvalidField{Name: "x224.connectionRequest.code", Reason: "wrong connection request code"}
	}
	if c.DstRef, err = r.Uint16BE(); err != nil {
		return err
	}
	if c.SrcRef, err = r.Uint16BE(); err != nil {
		return err
	}
	if c.ClassOption, err = r.Uint8(); err != nil {
		return err
	}
	userLen := int(li) - (c.FixedPartSize() - 1)
	if userLen < 0 {
		return &rdperr.InvalidField{Name: "x224.connectionRequest.li", Reason: "length indicator smaller than fixed part"}
	}
	c.UserData, err = r.CopyBytes(userLen)
	return err
}

// ConnectionConfirm is the Server X.224 Connection Confirm TPDU
// (MS-RDPBCGR 2.2.1.2). UserData carries the RDP Negotiation Response or
// Failure structure.
type ConnectionConfirm struct {
	DstRef      uint16
	SrcRef      uint16
	ClassOption uint8
	UserData    []byte
}

func (c *ConnectionConfirm) FixedPartSize() int { return 7 }

func (c *ConnectionConfirm) Size() int { return c.FixedPartSize() + len(c.UserData) }

func (c *ConnectionConfirm) Encode(w *buffer.Writer) error {
	li := c.FixedPartSize() - 1 + len(c.UserData)
	if li > 0xFF {
		return &rdperr.InvalidField{Name: "x224.connectionConfirm.li", Reason: "too large for 1-byte length indicator"}
	}
	if err := w.WriteUint8(uint8(li)); err != nil {
		return err
	}
	if err := w.WriteUint8(codeConnectionConfirm); err != nil {
		return err
	}
	if err := w.WriteUint16BE(c.DstRef); err != nil {
		return err
	}
	if err := w.WriteUint16BE(c.SrcRef); err != nil {
		return err
	}
	if err := w.WriteUint8(c.ClassOption); err != nil {
		return err
	}
	return w.WriteBytes(c.UserData)
}

func (c *ConnectionConfirm) Decode(r *buffer.Reader) error {
	li, err := r.Uint8()
	if err != nil {
		return err
	}
	code, err := r.Uint8()
	if err != nil {
		return err
	}
	if code&0xF0 != codeConnectionConfirm {
		return &rdperr.InvalidField{Name: "x224.connectionConfirm.code", Reason: "wrong connection confirm code"}
	}
	if c.DstRef, err = r.Uint16BE(); err != nil {
		return err
	}
	if c.SrcRef, err = r.Uint16BE(); err != nil {
		return err
	}
	if c.ClassOption, err = r.Uint8(); err != nil {
		return err
	}
	userLen := int(li) - (c.FixedPartSize() - 1)
	if userLen < 0 {
		return &rdperr.InvalidField{Name: "x224.connectionConfirm.li", Reason: "length indicator smaller than fixed part"}
	}
	c.UserData, err = r.CopyBytes(userLen)
	return err
}

// Data is the X.224 Data TPDU (MS-RDPBCGR 2.2.1.3/2.2.1.4) wrapping every
// PDU after the initial negotiation: the 3-byte header is fixed
// (LI=2, DT-ROA, EOT) and UserData carries the MCS/security payload.
type Data struct {
	UserData []byte
}

func (d *Data) FixedPartSize() int { return 3 }

func (d *Data) Size() int { return d.FixedPartSize() + len(d.UserData) }

func (d *Data) Encode(w *buffer.Writer) error {
	if err := w.WriteUint8(codeDataLI); err != nil {
		return err
	}
	if err := w.WriteUint8(0xF0); err != nil { // DT-ROA: data TPDU, ROA=0
		return err
	}
	if err := w.WriteUint8(dataEOT); err != nil {
		return err
	}
	return w.WriteBytes(d.UserData)
}

func (d *Data) Decode(r *buffer.Reader) error {
	li, err := r.Uint8()
	if err != nil {
		return err
	}
	if li != codeDataLI {
		return &rdperr.InvalidField{Name: "x224.data.li", Reason: "wrong data length indicator"}
	}
	if _, err := r.Uint8(); err != nil { // DT-ROA
		return err
	}
	if _, err := r.Uint8(); err != nil { // NR-EOT
		return err
	}
	d.UserData, err = r.CopyBytes(r.Len())
	return err
}
