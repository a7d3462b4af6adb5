package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// GeneralCapabilitySet is the TS_GENERAL_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.1.1).
type GeneralCapabilitySet struct {
	OSMajorType           uint16
	OSMinorType           uint16
	ExtraFlags            uint16
	RefreshRectSupport    uint8
	SuppressOutputSupport uint8
}

// NewGeneralCapabilitySet creates a General Capability Set with default client values.
func NewGeneralCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType: CapabilitySetTypeGeneral,
		GeneralCapabilitySet: &GeneralCapabilitySet{
			OSMajorType:           0x000A,                                     // Windows 10+ platform
			OSMinorType:           0x0000,                                     // Latest version
			ExtraFlags:            0x0001 | 0x0004 | 0x0400 | 0x0080 | 0x0100, // FASTPATH_OUTPUT_SUPPORTED, LONG_CREDENTIALS_SUPPORTED, NO_BITMAP_COMPRESSION_HDR, DYNAMIC_DST_SUPPORTED, TILE_SUPPORT
			RefreshRectSupport:    1,
			SuppressOutputSupport: 1,
		},
	}
}

// Encode writes the capability set to wire format.
func (s *GeneralCapabilitySet) Encode(w *buffer.Writer) error {
	for _, v := range []uint16{s.OSMajorType, s.OSMinorType, 0x0200, 0, 0} {
		if err := w.WriteUint16LE(v); err != nil {
			return err
		}
	}
	if err := w.WriteUint16LE(s.ExtraFlags); err != nil {
		return err
	}
	for _, v := range []uint16{0, 0, 0} {
		if err := w.WriteUint16LE(v); err != nil {
			return err
		}
	}
	if err := w.WriteUint8(s.RefreshRectSupport); err != nil {
		return err
	}
	return w.WriteUint8(s.SuppressOutputSupport)
}

// Decode reads the capability set from wire format.
func (s *GeneralCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	if s.OSMajorType, err = r.Uint16LE(); err != nil {
		return err
	}
	if s.OSMinorType, err = r.Uint16LE(); err != nil {
		return err
	}
	// protocolVersion, padding, compressionTypes: fixed/unused.
	if err = r.Skip(6); err != nil {
		return err
	}
	if s.ExtraFlags, err = r.Uint16LE(); err != nil {
		return err
	}
	// updateCapabilityFlag, remoteUnshareFlag, compressionLevel: unused.
	if err = r.Skip(6); err != nil {
		return err
	}
	if s.RefreshRectSupport, err = r.Uint8(); err != nil {
		return err
	}
	s.SuppressOutputSupport, err = r.Uint8()
	return err
}
