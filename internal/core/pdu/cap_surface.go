package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// MultifragmentUpdateCapabilitySet is the TS_MULTIFRAGMENTUPDATE_CAPABILITYSET
// structure (MS-RDPBCGR 2.2.7.2.6).
type MultifragmentUpdateCapabilitySet struct {
	MaxRequestSize uint32
}

// NewMultifragmentUpdateCapabilitySet creates a Multifragment Update
// Capability Set advertising a 64KiB fragment limit.
func NewMultifragmentUpdateCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:                CapabilitySetTypeMultifragmentUpdate,
		MultifragmentUpdateCapabilitySet: &MultifragmentUpdateCapabilitySet{MaxRequestSize: 65535},
	}
}

// Encode writes the capability set to wire format.
func (s *MultifragmentUpdateCapabilitySet) Encode(w *buffer.Writer) error {
	return w.WriteUint32LE(s.MaxRequestSize)
}

// Decode reads the capability set from wire format.
func (s *MultifragmentUpdateCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	s.MaxRequestSize, err = r.Uint32LE()
	return err
}

// LargePointerCapabilitySet is the TS_LARGE_POINTER_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.2.7).
type LargePointerCapabilitySet struct {
	LargePointerSupportFlags uint16
}

// NewLargePointerCapabilitySet creates a LargePointerCapabilitySet
// advertising 96x96 cursor support (LARGE_POINTER_FLAG_96x96).
func NewLargePointerCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:         CapabilitySetTypeLargePointer,
		LargePointerCapabilitySet: &LargePointerCapabilitySet{LargePointerSupportFlags: 0x0001},
	}
}

// Encode writes the capability set to wire format.
func (s *LargePointerCapabilitySet) Encode(w *buffer.Writer) error {
	return w.WriteUint16LE(s.LargePointerSupportFlags)
}

// Decode reads the capability set from wire format.
func (s *LargePointerCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	s.LargePointerSupportFlags, err = r.Uint16LE()
	return err
}

// DesktopCompositionCapabilitySet is the TS_COMPDESK_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.2.8).
type DesktopCompositionCapabilitySet struct {
	CompDeskSupportLevel uint16
}

// NewDesktopCompositionCapabilitySet creates a DesktopCompositionCapabilitySet
// advertising no desktop composition (blending is handled client-side).
func NewDesktopCompositionCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:               CapabilitySetTypeCompDesk,
		DesktopCompositionCapabilitySet: &DesktopCompositionCapabilitySet{},
	}
}

// Encode writes the capability set to wire format.
func (s *DesktopCompositionCapabilitySet) Encode(w *buffer.Writer) error {
	return w.WriteUint16LE(s.CompDeskSupportLevel)
}

// Decode reads the capability set from wire format.
func (s *DesktopCompositionCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	s.CompDeskSupportLevel, err = r.Uint16LE()
	return err
}

// Surface command flags (MS-RDPBCGR 2.2.7.2.9).
const (
	SurfCmdSetSurfaceBits uint32 = 0x00000002
	SurfCmdFrameMarker    uint32 = 0x00000010
	SurfCmdStreamSurfBits uint32 = 0x00000040
)

// SurfaceCommandsCapabilitySet is the TS_SURFCMDS_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.2.9).
type SurfaceCommandsCapabilitySet struct {
	CmdFlags uint32
}

// NewSurfaceCommandsCapabilitySet creates a Surface Commands Capability Set
// advertising the surface commands this client can apply.
func NewSurfaceCommandsCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType: CapabilitySetTypeSurfaceCommands,
		SurfaceCommandsCapabilitySet: &SurfaceCommandsCapabilitySet{
			CmdFlags: SurfCmdSetSurfaceBits | SurfCmdFrameMarker | SurfCmdStreamSurfBits,
		},
	}
}

// Encode writes the capability set to wire format.
func (s *SurfaceCommandsCapabilitySet) Encode(w *buffer.Writer) error {
	if err := w.WriteUint32LE(s.CmdFlags); err != nil {
		return err
	}
	return w.WriteUint32LE(0) // reserved
}

// Decode reads the capability set from wire format.
func (s *SurfaceCommandsCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	if s.CmdFlags, err = r.Uint32LE(); err != nil {
		return err
	}
	return r.Skip(4) // reserved
}

// BitmapCodec is one TS_BITMAPCODEC entry (MS-RDPBCGR 2.2.7.2.10.1).
type BitmapCodec struct {
	CodecGUID       [16]byte
	CodecID         uint8
	CodecProperties []byte
}

// Encode writes the bitmap codec to wire format.
func (c *BitmapCodec) Encode(w *buffer.Writer) error {
	if err := w.WriteBytes(c.CodecGUID[:]); err != nil {
		return err
	}
	if err := w.WriteUint8(c.CodecID); err != nil {
		return err
	}
	if err := w.WriteUint16LE(uint16(len(c.CodecProperties))); err != nil {
		return err
	}
	return w.WriteBytes(c.CodecProperties)
}

// Decode reads the bitmap codec from wire format.
func (c *BitmapCodec) Decode(r *buffer.Reader) error {
	guid, err := r.Bytes(16)
	if err != nil {
		return err
	}
	copy(c.CodecGUID[:], guid)
	if c.CodecID, err = r.Uint8(); err != nil {
		return err
	}
	propLen, err := r.Uint16LE()
	if err != nil {
		return err
	}
	c.CodecProperties, err = r.CopyBytes(int(propLen))
	return err
}

// NSCodecGUID is the GUID for NSCodec (CA8D1BB9-000F-154F-589F-AE2D1A87E2D6)
// in the little-endian wire representation MS-RDPBCGR uses for GUID fields.
var NSCodecGUID = [16]byte{
	0xB9, 0x1B, 0x8D, 0xCA, 0x0F, 0x00, 0x4F, 0x15,
	0x58, 0x9F, 0xAE, 0x2D, 0x1A, 0x87, 0xE2, 0xD6,
}

// RemoteFXCodecGUID is the GUID for RemoteFX (76772F12-BD72-4463-AFB3-B73C9C6C452B).
var RemoteFXCodecGUID = [16]byte{
	0x12, 0x2F, 0x77, 0x76, 0x72, 0xBD, 0x63, 0x44,
	0xAF, 0xB3, 0xB7, 0x3C, 0x9C, 0x6C, 0x45, 0x2B,
}

// NSCodecCapabilitySet carries NSCodec-specific properties carried inside a
// BitmapCodec's CodecProperties field.
type NSCodecCapabilitySet struct {
	FAllowDynamicFidelity uint8
	FAllowSubsampling     uint8
	ColorLossLevel        uint8
}

// Serialize encodes the NSCodec properties.
func (c *NSCodecCapabilitySet) Serialize() []byte {
	return []byte{c.FAllowDynamicFidelity, c.FAllowSubsampling, c.ColorLossLevel}
}

// BitmapCodecsCapabilitySet is the TS_BITMAPCODECS_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.2.10).
type BitmapCodecsCapabilitySet struct {
	BitmapCodecArray []BitmapCodec
}

// NewBitmapCodecsCapabilitySet creates a capability set advertising
// RemoteFX and NSCodec support, preferred in that order per spec.md's
// codec tie-break (RemoteFX before RDP6/RLE/raw).
func NewBitmapCodecsCapabilitySet() CapabilitySet {
	nscodecProps := NSCodecCapabilitySet{FAllowDynamicFidelity: 1, FAllowSubsampling: 1, ColorLossLevel: 3}
	return CapabilitySet{
		CapabilitySetType: CapabilitySetTypeBitmapCodecs,
		BitmapCodecsCapabilitySet: &BitmapCodecsCapabilitySet{
			BitmapCodecArray: []BitmapCodec{
				{CodecGUID: RemoteFXCodecGUID, CodecID: 1},
				{CodecGUID: NSCodecGUID, CodecID: 2, CodecProperties: nscodecProps.Serialize()},
			},
		},
	}
}

// Encode writes the capability set to wire format.
func (s *BitmapCodecsCapabilitySet) Encode(w *buffer.Writer) error {
	if err := w.WriteUint8(uint8(len(s.BitmapCodecArray))); err != nil {
		return err
	}
	for i := range s.BitmapCodecArray {
		if err := s.BitmapCodecArray[i].Encode(w); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads the capability set from wire format.
func (s *BitmapCodecsCapabilitySet) Decode(r *buffer.Reader) error {
	count, err := r.Uint8()
	if err != nil {
		return err
	}
	s.BitmapCodecArray = make([]BitmapCodec, count)
	for i := range s.BitmapCodecArray {
		if err := s.BitmapCodecArray[i].Decode(r); err != nil {
			return err
		}
	}
	return nil
}

// RailCapabilitySet is the TS_RAIL_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.2.11).
type RailCapabilitySet struct {
	RailSupportLevel uint32
}

// NewRailCapabilitySet creates a RailCapabilitySet advertising RemoteApp
// support (MS-RDPERP docking surface, see drdynvc virtual channel wiring).
func NewRailCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType: CapabilitySetTypeRail,
		RailCapabilitySet: &RailCapabilitySet{RailSupportLevel: 1}, // TS_RAIL_LEVEL_SUPPORTED
	}
}

// Encode writes the capability set to wire format.
func (s *RailCapabilitySet) Encode(w *buffer.Writer) error { return w.WriteUint32LE(s.RailSupportLevel) }

// Decode reads the capability set from wire format.
func (s *RailCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	s.RailSupportLevel, err = r.Uint32LE()
	return err
}

// WindowListCapabilitySet is the TS_WINDOW_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.2.12).
type WindowListCapabilitySet struct {
	WndSupportLevel     uint32
	NumIconCaches       uint8
	NumIconCacheEntries uint16
}

// NewWindowListCapabilitySet creates a WindowListCapabilitySet advertising
// no window-list tracking (the client draws RAIL windows but keeps no icon
// cache of its own).
func NewWindowListCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:       CapabilitySetTypeWindow,
		WindowListCapabilitySet: &WindowListCapabilitySet{WndSupportLevel: 0}, // TS_WINDOW_LEVEL_NOT_SUPPORTED
	}
}

// Encode writes the capability set to wire format.
func (s *WindowListCapabilitySet) Encode(w *buffer.Writer) error {
	if err := w.WriteUint32LE(s.WndSupportLevel); err != nil {
		return err
	}
	if err := w.WriteUint8(s.NumIconCaches); err != nil {
		return err
	}
	return w.WriteUint16LE(s.NumIconCacheEntries)
}

// Decode reads the capability set from wire format.
func (s *WindowListCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	if s.WndSupportLevel, err = r.Uint32LE(); err != nil {
		return err
	}
	if s.NumIconCaches, err = r.Uint8(); err != nil {
		return err
	}
	s.NumIconCacheEntries, err = r.Uint16LE()
	return err
}
