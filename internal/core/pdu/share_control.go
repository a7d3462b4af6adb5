package pdu

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// ShareControlType is the pduType field of TS_SHARECONTROLHEADER
// (MS-RDPBCGR 2.2.8.1.1.1.1).
type ShareControlType uint16

const (
	ShareControlTypeDemandActive  ShareControlType = 0x01
	ShareControlTypeConfirmActive ShareControlType = 0x03
	ShareControlTypeDeactivateAll ShareControlType = 0x06
	ShareControlTypeData          ShareControlType = 0x07
)

// ShareControlHeader is the TS_SHARECONTROLHEADER structure
// (MS-RDPBCGR 2.2.8.1.1.1.1). TotalLength is the whole PDU's length
// including this header; it is backpatched by the enclosing PDU's Encode.
type ShareControlHeader struct {
	TotalLength uint16
	PDUType     ShareControlType
	PDUSource   uint16
}

// FixedPartSize is the header's constant encoded size.
func (h *ShareControlHeader) FixedPartSize() int { return 6 }

// Encode writes the header to wire format. pduType occupies the low 4 bits
// of the first uint16 with a version nibble of 1 (TS_PROTOCOL_VERSION) in
// the high bits, per 2.2.8.1.1.1.1.
func (h *ShareControlHeader) Encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(h.TotalLength); err != nil {
		return err
	}
	if err := w.WriteUint16LE(uint16(h.PDUType) | 0x0010); err != nil {
		return err
	}
	return w.WriteUint16LE(h.PDUSource)
}

// Decode reads the header from wire format.
func (h *ShareControlHeader) Decode(r *buffer.Reader) error {
	var err error
	if h.TotalLength, err = r.Uint16LE(); err != nil {
		return err
	}
	typeAndVersion, err := r.Uint16LE()
	if err != nil {
		return err
	}
	h.PDUType = ShareControlType(typeAndVersion & 0x000F)
	h.PDUSource, err = r.Uint16LE()
	return err
}

// DemandActivePDU is the TS_DEMAND_ACTIVE_PDU structure
// (MS-RDPBCGR 2.2.1.13.1) sent by the server to start capability exchange.
type DemandActivePDU struct {
	Header             ShareControlHeader
	ShareID            uint32
	SourceDescriptor    string
	CombinedCapabilities []CapabilitySet
}

// Decode reads a Demand Active PDU. lengthCombinedCapabilities is checked
// against the bytes left in the buffer, and every capability read is
// bounds-checked, so a truncated capability array is rejected rather than
// silently read past the buffer.
func (p *DemandActivePDU) Decode(r *buffer.Reader) error {
	if err := p.Header.Decode(r); err != nil {
		return err
	}
	if p.Header.PDUType != ShareControlTypeDemandActive {
		return &rdperr.UnexpectedMessageType{Phase: "capabilitiesExchange", Got: "shareControl", Allowed: []string{"demandActive"}}
	}

	var err error
	if p.ShareID, err = r.Uint32LE(); err != nil {
		return err
	}
	lengthSourceDescriptor, err := r.Uint16LE()
	if err != nil {
		return err
	}
	lengthCombinedCapabilities, err := r.Uint16LE()
	if err != nil {
		return err
	}
	srcBytes, err := r.Bytes(int(lengthSourceDescriptor))
	if err != nil {
		return err
	}
	p.SourceDescriptor = string(srcBytes)

	numberCapabilities, err := r.Uint16LE()
	if err != nil {
		return err
	}
	if err := r.Skip(2); err != nil { // pad2Octets
		return err
	}
	if int(lengthCombinedCapabilities) > r.Len()+4 {
		return &rdperr.InvalidField{Name: "demandActive.lengthCombinedCapabilities", Reason: "exceeds PDU bounds"}
	}

	p.CombinedCapabilities = make([]CapabilitySet, 0, numberCapabilities)
	seen := map[CapabilitySetType]bool{}
	for i := 0; i < int(numberCapabilities); i++ {
		var cap CapabilitySet
		if err := cap.Decode(r); err != nil {
			return err
		}
		if seen[cap.CapabilitySetType] {
			return &rdperr.InvalidField{Name: "demandActive.capabilitySets", Reason: "duplicate capability set type"}
		}
		seen[cap.CapabilitySetType] = true
		p.CombinedCapabilities = append(p.CombinedCapabilities, cap)
	}
	return r.Skip(4) // sessionId
}

// ConfirmActivePDU is the TS_CONFIRM_ACTIVE_PDU structure
// (MS-RDPBCGR 2.2.1.13.2), the client's reply naming the capability sets it
// actually negotiated. Capability order mirrors the order they appeared in
// the Demand Active PDU, per spec.md 4.B's ordering rule.
type ConfirmActivePDU struct {
	Header             ShareControlHeader
	ShareID            uint32
	OriginatorID       uint16
	SourceDescriptor    string
	CombinedCapabilities []CapabilitySet
}

// Size returns the full encoded length of the PDU.
func (p *ConfirmActivePDU) Size() int {
	n := p.Header.FixedPartSize() + 4 + 2 + 2 + 2 + len(p.SourceDescriptor) + 2 + 2
	for i := range p.CombinedCapabilities {
		n += p.CombinedCapabilities[i].Size()
	}
	return n
}

// Encode writes the Confirm Active PDU to wire format.
func (p *ConfirmActivePDU) Encode(w *buffer.Writer) error {
	p.Header.PDUType = ShareControlTypeConfirmActive
	p.Header.TotalLength = uint16(p.Size())
	if err := p.Header.Encode(w); err != nil {
		return err
	}
	if err := w.WriteUint32LE(p.ShareID); err != nil {
		return err
	}
	if err := w.WriteUint16LE(p.OriginatorID); err != nil {
		return err
	}
	if err := w.WriteUint16LE(uint16(len(p.SourceDescriptor))); err != nil {
		return err
	}

	lengthOffset := w.Len()
	if err := w.WriteUint16LE(0); err != nil { // lengthCombinedCapabilities, backpatched below
		return err
	}
	if err := w.WriteBytes([]byte(p.SourceDescriptor)); err != nil {
		return err
	}
	if err := w.WriteUint16LE(uint16(len(p.CombinedCapabilities))); err != nil {
		return err
	}
	if err := w.WriteUint16LE(0); err != nil { // pad2Octets
		return err
	}
	start := w.Len()
	for i := range p.CombinedCapabilities {
		if err := p.CombinedCapabilities[i].Encode(w); err != nil {
			return err
		}
	}
	w.PatchUint16LE(lengthOffset, uint16(4+w.Len()-start))
	return nil
}

// Decode reads a Confirm Active PDU from wire format.
func (p *ConfirmActivePDU) Decode(r *buffer.Reader) error {
	if err := p.Header.Decode(r); err != nil {
		return err
	}
	if p.Header.PDUType != ShareControlTypeConfirmActive {
		return &rdperr.UnexpectedMessageType{Phase: "capabilitiesExchange", Got: "shareControl", Allowed: []string{"confirmActive"}}
	}
	var err error
	if p.ShareID, err = r.Uint32LE(); err != nil {
		return err
	}
	if p.OriginatorID, err = r.Uint16LE(); err != nil {
		return err
	}
	lengthSourceDescriptor, err := r.Uint16LE()
	if err != nil {
		return err
	}
	if _, err := r.Uint16LE(); err != nil { // lengthCombinedCapabilities
		return err
	}
	srcBytes, err := r.Bytes(int(lengthSourceDescriptor))
	if err != nil {
		return err
	}
	p.SourceDescriptor = string(srcBytes)
	numberCapabilities, err := r.Uint16LE()
	if err != nil {
		return err
	}
	if err := r.Skip(2); err != nil { // pad2Octets
		return err
	}
	p.CombinedCapabilities = make([]CapabilitySet, 0, numberCapabilities)
	for i := 0; i < int(numberCapabilities); i++ {
		var cap CapabilitySet
		if err := cap.Decode(r); err != nil {
			return err
		}
		p.CombinedCapabilities = append(p.CombinedCapabilities, cap)
	}
	return nil
}

// Size returns the encoded length of one capability set entry.
func (s *CapabilitySet) Size() int {
	w := buffer.NewWriter(128)
	if err := s.Encode(w); err != nil {
		return 4
	}
	return w.Len()
}

// DeactivateAllPDU is the TS_DEACTIVATE_ALL_PDU structure
// (MS-RDPBCGR 2.2.3.1): the server telling the client to tear down the
// current session (e.g. before a resolution change) without disconnecting.
type DeactivateAllPDU struct {
	Header          ShareControlHeader
	ShareID         uint32
	SourceDescriptor string
}

// Decode reads a Deactivate All PDU from wire format.
func (p *DeactivateAllPDU) Decode(r *buffer.Reader) error {
	if err := p.Header.Decode(r); err != nil {
		return err
	}
	if p.Header.PDUType != ShareControlTypeDeactivateAll {
		return &rdperr.UnexpectedMessageType{Phase: "session", Got: "shareControl", Allowed: []string{"deactivateAll"}}
	}
	var err error
	if p.ShareID, err = r.Uint32LE(); err != nil {
		return err
	}
	lengthSourceDescriptor, err := r.Uint16LE()
	if err != nil {
		return err
	}
	srcBytes, err := r.Bytes(int(lengthSourceDescriptor))
	if err != nil {
		return err
	}
	p.SourceDescriptor = string(srcBytes)
	return nil
}
