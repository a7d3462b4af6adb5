package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// VirtualChannelCapabilitySet is the TS_VIRTUALCHANNEL_CAPABILITYSET
// structure (MS-RDPBCGR 2.2.7.1.10).
type VirtualChannelCapabilitySet struct {
	Flags       uint32
	VCChunkSize uint32
}

// NewVirtualChannelCapabilitySet creates a new VirtualChannelCapabilitySet.
func NewVirtualChannelCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:           CapabilitySetTypeVirtualChannel,
		VirtualChannelCapabilitySet: &VirtualChannelCapabilitySet{VCChunkSize: 1600},
	}
}

// Encode writes the capability set to wire format.
func (s *VirtualChannelCapabilitySet) Encode(w *buffer.Writer) error {
	if err := w.WriteUint32LE(s.Flags); err != nil {
		return err
	}
	return w.WriteUint32LE(s.VCChunkSize)
}

// Decode reads the capability set from wire format.
func (s *VirtualChannelCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	if s.Flags, err = r.Uint32LE(); err != nil {
		return err
	}
	s.VCChunkSize, err = r.Uint32LE()
	return err
}
