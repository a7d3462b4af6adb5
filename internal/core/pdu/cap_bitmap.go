package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// BitmapCapabilitySet is the TS_BITMAP_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.1.2).
type BitmapCapabilitySet struct {
	PreferredBitsPerPixel uint16
	Receive1BitPerPixel   uint16
	Receive4BitsPerPixel  uint16
	Receive8BitsPerPixel  uint16
	DesktopWidth          uint16
	DesktopHeight         uint16
	DesktopResizeFlag     uint16
	DrawingFlags          uint8
}

// NewBitmapCapabilitySet creates a Bitmap Capability Set advertising 32bpp
// color and dynamic resize support.
func NewBitmapCapabilitySet(desktopWidth, desktopHeight uint16) CapabilitySet {
	return CapabilitySet{
		CapabilitySetType: CapabilitySetTypeBitmap,
		BitmapCapabilitySet: &BitmapCapabilitySet{
			PreferredBitsPerPixel: 0x0020, // HIGH_COLOR_32BPP
			Receive1BitPerPixel:   0x0001,
			Receive4BitsPerPixel:  0x0001,
			Receive8BitsPerPixel:  0x0001,
			DesktopWidth:          desktopWidth,
			DesktopHeight:         desktopHeight,
			DesktopResizeFlag:     0x0001,
		},
	}
}

// Encode writes the capability set to wire format.
func (s *BitmapCapabilitySet) Encode(w *buffer.Writer) error {
	fields := []uint16{
		s.PreferredBitsPerPixel, s.Receive1BitPerPixel, s.Receive4BitsPerPixel,
		s.Receive8BitsPerPixel, s.DesktopWidth, s.DesktopHeight,
		0, // padding
		s.DesktopResizeFlag,
		0x0001, // bitmapCompressionFlag
	}
	for _, v := range fields {
		if err := w.WriteUint16LE(v); err != nil {
			return err
		}
	}
	if err := w.WriteUint8(0); err != nil { // highColorFlags
		return err
	}
	if err := w.WriteUint8(s.DrawingFlags); err != nil {
		return err
	}
	if err := w.WriteUint16LE(0x0001); err != nil { // multipleRectangleSupport
		return err
	}
	return w.WriteUint16LE(0) // padding
}

// Decode reads the capability set from wire format.
func (s *BitmapCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	if s.PreferredBitsPerPixel, err = r.Uint16LE(); err != nil {
		return err
	}
	if s.Receive1BitPerPixel, err = r.Uint16LE(); err != nil {
		return err
	}
	if s.Receive4BitsPerPixel, err = r.Uint16LE(); err != nil {
		return err
	}
	if s.Receive8BitsPerPixel, err = r.Uint16LE(); err != nil {
		return err
	}
	if s.DesktopWidth, err = r.Uint16LE(); err != nil {
		return err
	}
	if s.DesktopHeight, err = r.Uint16LE(); err != nil {
		return err
	}
	if err = r.Skip(2); err != nil { // padding
		return err
	}
	if s.DesktopResizeFlag, err = r.Uint16LE(); err != nil {
		return err
	}
	if err = r.Skip(2); err != nil { // bitmapCompressionFlag
		return err
	}
	if err = r.Skip(1); err != nil { // highColorFlags
		return err
	}
	if s.DrawingFlags, err = r.Uint8(); err != nil {
		return err
	}
	return r.Skip(4) // multipleRectangleSupport + padding
}
