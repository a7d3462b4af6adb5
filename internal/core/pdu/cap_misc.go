package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// BitmapCacheHostSupportCapabilitySet is the TS_BITMAPCACHE_HOSTSUPPORT_CAPABILITYSET
// structure (MS-RDPBCGR 2.2.7.2.1).
type BitmapCacheHostSupportCapabilitySet struct {
	CacheVersion uint8
}

// NewBitmapCacheHostSupportCapabilitySet creates a new BitmapCacheHostSupportCapabilitySet.
func NewBitmapCacheHostSupportCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:                   CapabilitySetTypeBitmapCacheHostSupport,
		BitmapCacheHostSupportCapabilitySet: &BitmapCacheHostSupportCapabilitySet{CacheVersion: 1},
	}
}

// Encode writes the capability set to wire format.
func (s *BitmapCacheHostSupportCapabilitySet) Encode(w *buffer.Writer) error {
	if err := w.WriteUint8(s.CacheVersion); err != nil {
		return err
	}
	if err := w.WriteUint8(0); err != nil { // padding1
		return err
	}
	return w.WriteUint16LE(0) // padding2
}

// Decode reads the capability set from wire format.
func (s *BitmapCacheHostSupportCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	if s.CacheVersion, err = r.Uint8(); err != nil {
		return err
	}
	return r.Skip(3)
}

// ControlCapabilitySet is the TS_CONTROL_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.2.2).
type ControlCapabilitySet struct{}

// NewControlCapabilitySet creates a ControlCapabilitySet.
func NewControlCapabilitySet() CapabilitySet {
	return CapabilitySet{CapabilitySetType: CapabilitySetTypeControl, ControlCapabilitySet: &ControlCapabilitySet{}}
}

// Encode writes the capability set to wire format.
func (s *ControlCapabilitySet) Encode(w *buffer.Writer) error {
	for _, v := range []uint16{0, 0, 2, 2} { // controlFlags, remoteDetachFlag, controlInterest, detachInterest
		if err := w.WriteUint16LE(v); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads the capability set from wire format.
func (s *ControlCapabilitySet) Decode(r *buffer.Reader) error { return r.Skip(8) }

// WindowActivationCapabilitySet is the TS_WINDOWACTIVATION_CAPABILITYSET
// structure (MS-RDPBCGR 2.2.7.2.3).
type WindowActivationCapabilitySet struct{}

// NewWindowActivationCapabilitySet creates a WindowActivationCapabilitySet.
func NewWindowActivationCapabilitySet() CapabilitySet {
	return CapabilitySet{CapabilitySetType: CapabilitySetTypeWindowActivation, WindowActivationCapabilitySet: &WindowActivationCapabilitySet{}}
}

// Encode writes the capability set to wire format.
func (s *WindowActivationCapabilitySet) Encode(w *buffer.Writer) error { return w.WriteZeros(8) }

// Decode reads the capability set from wire format.
func (s *WindowActivationCapabilitySet) Decode(r *buffer.Reader) error { return r.Skip(8) }

// ShareCapabilitySet is the TS_SHARE_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.2.4).
type ShareCapabilitySet struct{}

// NewShareCapabilitySet creates a ShareCapabilitySet.
func NewShareCapabilitySet() CapabilitySet {
	return CapabilitySet{CapabilitySetType: CapabilitySetTypeShare, ShareCapabilitySet: &ShareCapabilitySet{}}
}

// Encode writes the capability set to wire format.
func (s *ShareCapabilitySet) Encode(w *buffer.Writer) error { return w.WriteZeros(4) }

// Decode reads the capability set from wire format.
func (s *ShareCapabilitySet) Decode(r *buffer.Reader) error { return r.Skip(4) }

// FontCapabilitySet is the TS_FONT_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.2.5).
type FontCapabilitySet struct {
	FontSupportFlags uint16
}

// NewFontCapabilitySet creates a FontCapabilitySet advertising font support.
func NewFontCapabilitySet() CapabilitySet {
	return CapabilitySet{CapabilitySetType: CapabilitySetTypeFont, FontCapabilitySet: &FontCapabilitySet{FontSupportFlags: 1}}
}

// Encode writes the capability set to wire format.
func (s *FontCapabilitySet) Encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(s.FontSupportFlags); err != nil {
		return err
	}
	return w.WriteUint16LE(0) // padding
}

// Decode reads the capability set from wire format.
func (s *FontCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	if s.FontSupportFlags, err = r.Uint16LE(); err != nil {
		return err
	}
	return r.Skip(2)
}
