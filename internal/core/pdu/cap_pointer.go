package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// PointerCapabilitySet is the TS_POINTER_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.1.5). The trailing pointerCacheSize field is absent
// when the server advertises a capability set with a 4-byte body
// (lengthCapability 8, header included); lengthCapability records the wire
// length seen on Decode so Encode can omit it symmetrically.
type PointerCapabilitySet struct {
	ColorPointerFlag      uint16
	ColorPointerCacheSize uint16
	PointerCacheSize      uint16

	lengthCapability uint16
}

// NewPointerCapabilitySet creates a Pointer Capability Set with default client values.
func NewPointerCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType: CapabilitySetTypePointer,
		PointerCapabilitySet: &PointerCapabilitySet{
			ColorPointerFlag: 1,
			PointerCacheSize: 25,
		},
	}
}

// Encode writes the capability set to wire format.
func (s *PointerCapabilitySet) Encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(s.ColorPointerFlag); err != nil {
		return err
	}
	if err := w.WriteUint16LE(s.ColorPointerCacheSize); err != nil {
		return err
	}
	if s.lengthCapability == 8 {
		return nil
	}
	return w.WriteUint16LE(s.PointerCacheSize)
}

// Decode reads the capability set from wire format.
func (s *PointerCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	if s.ColorPointerFlag, err = r.Uint16LE(); err != nil {
		return err
	}
	if s.ColorPointerCacheSize, err = r.Uint16LE(); err != nil {
		return err
	}
	if s.lengthCapability == 8 {
		return nil
	}
	s.PointerCacheSize, err = r.Uint16LE()
	return err
}
