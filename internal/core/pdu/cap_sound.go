package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// SoundCapabilitySet is the TS_SOUND_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.1.11).
type SoundCapabilitySet struct {
	SoundFlags uint16
}

// NewSoundCapabilitySet creates a Sound Capability Set with default values.
func NewSoundCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:  CapabilitySetTypeSound,
		SoundCapabilitySet: &SoundCapabilitySet{},
	}
}

// Encode writes the capability set to wire format.
func (s *SoundCapabilitySet) Encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(s.SoundFlags); err != nil {
		return err
	}
	return w.WriteUint16LE(0) // padding
}

// Decode reads the capability set from wire format.
func (s *SoundCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	if s.SoundFlags, err = r.Uint16LE(); err != nil {
		return err
	}
	return r.Skip(2)
}
