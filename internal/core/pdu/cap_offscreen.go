package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// OffscreenBitmapCacheCapabilitySet is the TS_OFFSCREEN_CAPABILITYSET
// structure (MS-RDPBCGR 2.2.7.1.9).
type OffscreenBitmapCacheCapabilitySet struct {
	OffscreenSupportLevel uint32
	OffscreenCacheSize    uint16
	OffscreenCacheEntries uint16
}

// NewOffscreenBitmapCacheCapabilitySet creates a new OffscreenBitmapCacheCapabilitySet.
func NewOffscreenBitmapCacheCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:                 CapabilitySetTypeOffscreenBitmapCache,
		OffscreenBitmapCacheCapabilitySet: &OffscreenBitmapCacheCapabilitySet{},
	}
}

// Encode writes the capability set to wire format.
func (s *OffscreenBitmapCacheCapabilitySet) Encode(w *buffer.Writer) error {
	if err := w.WriteUint32LE(s.OffscreenSupportLevel); err != nil {
		return err
	}
	if err := w.WriteUint16LE(s.OffscreenCacheSize); err != nil {
		return err
	}
	return w.WriteUint16LE(s.OffscreenCacheEntries)
}

// Decode reads the capability set from wire format.
func (s *OffscreenBitmapCacheCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	if s.OffscreenSupportLevel, err = r.Uint32LE(); err != nil {
		return err
	}
	if s.OffscreenCacheSize, err = r.Uint16LE(); err != nil {
		return err
	}
	s.OffscreenCacheEntries, err = r.Uint16LE()
	return err
}
