package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// BrushSupportLevel indicates the level of brush support (MS-RDPBCGR 2.2.7.1.7).
type BrushSupportLevel uint32

const (
	BrushSupportLevelDefault BrushSupportLevel = 0
	BrushSupportLevelColor8x8 BrushSupportLevel = 1
	BrushSupportLevelFull    BrushSupportLevel = 2
)

// BrushCapabilitySet is the TS_BRUSH_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.1.7).
type BrushCapabilitySet struct {
	BrushSupportLevel BrushSupportLevel
}

// NewBrushCapabilitySet creates a BrushCapabilitySet with default values.
func NewBrushCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:  CapabilitySetTypeBrush,
		BrushCapabilitySet: &BrushCapabilitySet{BrushSupportLevel: BrushSupportLevelColor8x8},
	}
}

// Encode writes the capability set to wire format.
func (s *BrushCapabilitySet) Encode(w *buffer.Writer) error {
	return w.WriteUint32LE(uint32(s.BrushSupportLevel))
}

// Decode reads the capability set from wire format.
func (s *BrushCapabilitySet) Decode(r *buffer.Reader) error {
	v, err := r.Uint32LE()
	s.BrushSupportLevel = BrushSupportLevel(v)
	return err
}
