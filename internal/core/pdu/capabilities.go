package pdu

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// CapabilitySetType is the capabilitySetType field of TS_CAPS_SET
// (MS-RDPBCGR 2.2.1.13.1.1.1).
type CapabilitySetType uint16

const (
	CapabilitySetTypeGeneral                CapabilitySetType = 1
	CapabilitySetTypeBitmap                 CapabilitySetType = 2
	CapabilitySetTypeOrder                  CapabilitySetType = 3
	CapabilitySetTypeBitmapCache            CapabilitySetType = 4
	CapabilitySetTypeControl                CapabilitySetType = 5
	CapabilitySetTypeWindowActivation        CapabilitySetType = 7
	CapabilitySetTypePointer                CapabilitySetType = 8
	CapabilitySetTypeShare                   CapabilitySetType = 9
	CapabilitySetTypeColorCache              CapabilitySetType = 10
	CapabilitySetTypeSound                   CapabilitySetType = 12
	CapabilitySetTypeInput                   CapabilitySetType = 13
	CapabilitySetTypeFont                    CapabilitySetType = 14
	CapabilitySetTypeBrush                   CapabilitySetType = 15
	CapabilitySetTypeGlyphCache              CapabilitySetType = 16
	CapabilitySetTypeOffscreenBitmapCache    CapabilitySetType = 17
	CapabilitySetTypeBitmapCacheHostSupport  CapabilitySetType = 18
	CapabilitySetTypeBitmapCacheRev2         CapabilitySetType = 19
	CapabilitySetTypeVirtualChannel          CapabilitySetType = 20
	CapabilitySetTypeDrawNineGridCache       CapabilitySetType = 21
	CapabilitySetTypeDrawGDIPlus             CapabilitySetType = 22
	CapabilitySetTypeRail                    CapabilitySetType = 23
	CapabilitySetTypeWindow                  CapabilitySetType = 24
	CapabilitySetTypeCompDesk                CapabilitySetType = 25
	CapabilitySetTypeMultifragmentUpdate     CapabilitySetType = 26
	CapabilitySetTypeLargePointer            CapabilitySetType = 27
	CapabilitySetTypeSurfaceCommands         CapabilitySetType = 28
	CapabilitySetTypeBitmapCodecs            CapabilitySetType = 29
	CapabilitySetTypeFrameAcknowledge        CapabilitySetType = 30
)

// CapabilitySet is one TS_CAPS_SET entry of a Demand Active/Confirm Active
// PDU: a type discriminator plus exactly one populated capability set
// pointer, selected by CapabilitySetType.
type CapabilitySet struct {
	CapabilitySetType CapabilitySetType

	GeneralCapabilitySet                 *GeneralCapabilitySet
	BitmapCapabilitySet                  *BitmapCapabilitySet
	OrderCapabilitySet                   *OrderCapabilitySet
	BitmapCacheCapabilitySetRev1         *BitmapCacheCapabilitySetRev1
	BitmapCacheCapabilitySetRev2         *BitmapCacheCapabilitySetRev2
	ControlCapabilitySet                 *ControlCapabilitySet
	WindowActivationCapabilitySet        *WindowActivationCapabilitySet
	PointerCapabilitySet                 *PointerCapabilitySet
	ShareCapabilitySet                   *ShareCapabilitySet
	ColorCacheCapabilitySet              *ColorCacheCapabilitySet
	SoundCapabilitySet                   *SoundCapabilitySet
	InputCapabilitySet                   *InputCapabilitySet
	FontCapabilitySet                    *FontCapabilitySet
	BrushCapabilitySet                   *BrushCapabilitySet
	GlyphCacheCapabilitySet              *GlyphCacheCapabilitySet
	OffscreenBitmapCacheCapabilitySet    *OffscreenBitmapCacheCapabilitySet
	BitmapCacheHostSupportCapabilitySet  *BitmapCacheHostSupportCapabilitySet
	VirtualChannelCapabilitySet          *VirtualChannelCapabilitySet
	DrawNineGridCacheCapabilitySet       *DrawNineGridCacheCapabilitySet
	DrawGDIPlusCapabilitySet             *DrawGDIPlusCapabilitySet
	RailCapabilitySet                    *RailCapabilitySet
	WindowListCapabilitySet              *WindowListCapabilitySet
	DesktopCompositionCapabilitySet      *DesktopCompositionCapabilitySet
	MultifragmentUpdateCapabilitySet     *MultifragmentUpdateCapabilitySet
	LargePointerCapabilitySet            *LargePointerCapabilitySet
	SurfaceCommandsCapabilitySet         *SurfaceCommandsCapabilitySet
	BitmapCodecsCapabilitySet            *BitmapCodecsCapabilitySet
}

// capabilityBody is implemented by every concrete capability set.
type capabilityBody interface {
	Encode(w *buffer.Writer) error
	Decode(r *buffer.Reader) error
}

func (s *CapabilitySet) body() capabilityBody {
	switch s.CapabilitySetType {
	case CapabilitySetTypeGeneral:
		return s.GeneralCapabilitySet
	case CapabilitySetTypeBitmap:
		return s.BitmapCapabilitySet
	case CapabilitySetTypeOrder:
		return s.OrderCapabilitySet
	case CapabilitySetTypeBitmapCache:
		return s.BitmapCacheCapabilitySetRev1
	case CapabilitySetTypeBitmapCacheRev2:
		return s.BitmapCacheCapabilitySetRev2
	case CapabilitySetTypeControl:
		return s.ControlCapabilitySet
	case CapabilitySetTypeWindowActivation:
		return s.WindowActivationCapabilitySet
	case CapabilitySetTypePointer:
		return s.PointerCapabilitySet
	case CapabilitySetTypeShare:
		return s.ShareCapabilitySet
	case CapabilitySetTypeColorCache:
		return s.ColorCacheCapabilitySet
	case CapabilitySetTypeSound:
		return s.SoundCapabilitySet
	case CapabilitySetTypeInput:
		return s.InputCapabilitySet
	case CapabilitySetTypeFont:
		return s.FontCapabilitySet
	case CapabilitySetTypeBrush:
		return s.BrushCapabilitySet
	case CapabilitySetTypeGlyphCache:
		return s.GlyphCacheCapabilitySet
	case CapabilitySetTypeOffscreenBitmapCache:
		return s.OffscreenBitmapCacheCapabilitySet
	case CapabilitySetTypeBitmapCacheHostSupport:
		return s.BitmapCacheHostSupportCapabilitySet
	case CapabilitySetTypeVirtualChannel:
		return s.VirtualChannelCapabilitySet
	case CapabilitySetTypeDrawNineGridCache:
		return s.DrawNineGridCacheCapabilitySet
	case CapabilitySetTypeDrawGDIPlus:
		return s.DrawGDIPlusCapabilitySet
	case CapabilitySetTypeRail:
		return s.RailCapabilitySet
	case CapabilitySetTypeWindow:
		return s.WindowListCapabilitySet
	case CapabilitySetTypeCompDesk:
		return s.DesktopCompositionCapabilitySet
	case CapabilitySetTypeMultifragmentUpdate:
		return s.MultifragmentUpdateCapabilitySet
	case CapabilitySetTypeLargePointer:
		return s.LargePointerCapabilitySet
	case CapabilitySetTypeSurfaceCommands:
		return s.SurfaceCommandsCapabilitySet
	case CapabilitySetTypeBitmapCodecs:
		return s.BitmapCodecsCapabilitySet
	default:
		return nil
	}
}

// Encode writes the TS_CAPS_SET header (type, length) followed by the
// populated capability set's body, backpatching the length once known.
func (s *CapabilitySet) Encode(w *buffer.Writer) error {
	body := s.body()
	if body == nil {
		return &rdperr.InvalidField{Name: "pdu.capabilitySet.type", Reason: "no body set for capability set type"}
	}

	if err := w.WriteUint16LE(uint16(s.CapabilitySetType)); err != nil {
		return err
	}
	lengthOffset := w.Len()
	if err := w.WriteUint16LE(0); err != nil {
		return err
	}
	start := w.Len()
	if err := body.Encode(w); err != nil {
		return err
	}
	w.PatchUint16LE(lengthOffset, uint16(4+w.Len()-start))
	return nil
}

// Serialize returns the encoded capability set.
func (s *CapabilitySet) Serialize() []byte {
	w := buffer.NewWriter(64)
	if err := s.Encode(w); err != nil {
		return nil
	}
	return w.Bytes()
}

// Decode reads one TS_CAPS_SET entry: the type/length header, then
// dispatches the capabilityData to the matching concrete capability set.
func (s *CapabilitySet) Decode(r *buffer.Reader) error {
	capType, err := r.Uint16LE()
	if err != nil {
		return err
	}
	s.CapabilitySetType = CapabilitySetType(capType)

	length, err := r.Uint16LE()
	if err != nil {
		return err
	}
	if length < 4 {
		return &rdperr.InvalidField{Name: "pdu.capabilitySet.length", Reason: "lengthCapability below header size"}
	}

	body, err := r.CopyBytes(int(length) - 4)
	if err != nil {
		return err
	}
	br := buffer.NewReader(body)

	switch s.CapabilitySetType {
	case CapabilitySetTypeGeneral:
		s.GeneralCapabilitySet = &GeneralCapabilitySet{}
		return s.GeneralCapabilitySet.Decode(br)
	case CapabilitySetTypeBitmap:
		s.BitmapCapabilitySet = &BitmapCapabilitySet{}
		return s.BitmapCapabilitySet.Decode(br)
	case CapabilitySetTypeOrder:
		s.OrderCapabilitySet = &OrderCapabilitySet{}
		return s.OrderCapabilitySet.Decode(br)
	case CapabilitySetTypeBitmapCache:
		s.BitmapCacheCapabilitySetRev1 = &BitmapCacheCapabilitySetRev1{}
		return s.BitmapCacheCapabilitySetRev1.Decode(br)
	case CapabilitySetTypeBitmapCacheRev2:
		s.BitmapCacheCapabilitySetRev2 = &BitmapCacheCapabilitySetRev2{}
		return s.BitmapCacheCapabilitySetRev2.Decode(br)
	case CapabilitySetTypeControl:
		s.ControlCapabilitySet = &ControlCapabilitySet{}
		return s.ControlCapabilitySet.Decode(br)
	case CapabilitySetTypeWindowActivation:
		s.WindowActivationCapabilitySet = &WindowActivationCapabilitySet{}
		return s.WindowActivationCapabilitySet.Decode(br)
	case CapabilitySetTypePointer:
		s.PointerCapabilitySet = &PointerCapabilitySet{lengthCapability: length}
		return s.PointerCapabilitySet.Decode(br)
	case CapabilitySetTypeShare:
		s.ShareCapabilitySet = &ShareCapabilitySet{}
		return s.ShareCapabilitySet.Decode(br)
	case CapabilitySetTypeColorCache:
		s.ColorCacheCapabilitySet = &ColorCacheCapabilitySet{}
		return s.ColorCacheCapabilitySet.Decode(br)
	case CapabilitySetTypeSound:
		s.SoundCapabilitySet = &SoundCapabilitySet{}
		return s.SoundCapabilitySet.Decode(br)
	case CapabilitySetTypeInput:
		s.InputCapabilitySet = &InputCapabilitySet{}
		return s.InputCapabilitySet.Decode(br)
	case CapabilitySetTypeFont:
		s.FontCapabilitySet = &FontCapabilitySet{}
		return s.FontCapabilitySet.Decode(br)
	case CapabilitySetTypeBrush:
		s.BrushCapabilitySet = &BrushCapabilitySet{}
		return s.BrushCapabilitySet.Decode(br)
	case CapabilitySetTypeGlyphCache:
		s.GlyphCacheCapabilitySet = &GlyphCacheCapabilitySet{}
		return s.GlyphCacheCapabilitySet.Decode(br)
	case CapabilitySetTypeOffscreenBitmapCache:
		s.OffscreenBitmapCacheCapabilitySet = &OffscreenBitmapCacheCapabilitySet{}
		return s.OffscreenBitmapCacheCapabilitySet.Decode(br)
	case CapabilitySetTypeBitmapCacheHostSupport:
		s.BitmapCacheHostSupportCapabilitySet = &BitmapCacheHostSupportCapabilitySet{}
		return s.BitmapCacheHostSupportCapabilitySet.Decode(br)
	case CapabilitySetTypeVirtualChannel:
		s.VirtualChannelCapabilitySet = &VirtualChannelCapabilitySet{}
		return s.VirtualChannelCapabilitySet.Decode(br)
	case CapabilitySetTypeDrawNineGridCache:
		s.DrawNineGridCacheCapabilitySet = &DrawNineGridCacheCapabilitySet{}
		return s.DrawNineGridCacheCapabilitySet.Decode(br)
	case CapabilitySetTypeDrawGDIPlus:
		s.DrawGDIPlusCapabilitySet = &DrawGDIPlusCapabilitySet{}
		return s.DrawGDIPlusCapabilitySet.Decode(br)
	case CapabilitySetTypeRail:
		s.RailCapabilitySet = &RailCapabilitySet{}
		return s.RailCapabilitySet.Decode(br)
	case CapabilitySetTypeWindow:
		s.WindowListCapabilitySet = &WindowListCapabilitySet{}
		return s.WindowListCapabilitySet.Decode(br)
	case CapabilitySetTypeCompDesk:
		s.DesktopCompositionCapabilitySet = &DesktopCompositionCapabilitySet{}
		return s.DesktopCompositionCapabilitySet.Decode(br)
	case CapabilitySetTypeMultifragmentUpdate:
		s.MultifragmentUpdateCapabilitySet = &MultifragmentUpdateCapabilitySet{}
		return s.MultifragmentUpdateCapabilitySet.Decode(br)
	case CapabilitySetTypeLargePointer:
		s.LargePointerCapabilitySet = &LargePointerCapabilitySet{}
		return s.LargePointerCapabilitySet.Decode(br)
	case CapabilitySetTypeSurfaceCommands:
		s.SurfaceCommandsCapabilitySet = &SurfaceCommandsCapabilitySet{}
		return s.SurfaceCommandsCapabilitySet.Decode(br)
	case CapabilitySetTypeBitmapCodecs:
		s.BitmapCodecsCapabilitySet = &BitmapCodecsCapabilitySet{}
		return s.BitmapCodecsCapabilitySet.Decode(br)
	default:
		// Unknown/unsupported capability set: the body is consumed above
		// (length accounts for it), nothing further to decode.
		return nil
	}
}

// Deserialize is kept for symmetry with the teacher's naming.
func (s *CapabilitySet) Deserialize(r *buffer.Reader) error { return s.Decode(r) }
