package pdu

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// BitmapCompressionFlag is the flags field bit marking a bitmap rectangle's
// data as interleaved-RLE compressed (MS-RDPBCGR 2.2.9.1.1.3.1.2.3).
const BitmapCompressionFlag uint16 = 0x0001

// NoBitmapCompressionHeaderFlag suppresses the 8-byte bitmapComprHdr that
// otherwise precedes compressed bitmap data (MS-RDPBCGR 2.2.9.1.1.3.1.2.3).
const NoBitmapCompressionHeaderFlag uint16 = 0x0400

// BitmapData is one TS_BITMAP_DATA rectangle (MS-RDPBCGR 2.2.9.1.1.3.1.2):
// a destination rectangle, the source bitmap's dimensions and color depth,
// and its (possibly compressed) pixel data.
type BitmapData struct {
	DestLeft, DestTop     uint16
	DestRight, DestBottom uint16
	Width, Height         uint16
	BitsPerPixel          uint16
	Flags                 uint16
	BitmapData            []byte
}

// Compressed reports whether BitmapData holds interleaved-RLE compressed
// pixels rather than raw ones.
func (b *BitmapData) Compressed() bool {
	return b.Flags&BitmapCompressionFlag != 0
}

// Decode reads one bitmap rectangle from wire format, including the
// optional compression header bytes it discards (row/final size are
// redundant with BitmapLength and the declared Width/Height).
func (b *BitmapData) Decode(r *buffer.Reader) error {
	var err error
	if b.DestLeft, err = r.Uint16LE(); err != nil {
		return err
	}
	if b.DestTop, err = r.Uint16LE(); err != nil {
		return err
	}
	if b.DestRight, err = r.Uint16LE(); err != nil {
		return err
	}
	if b.DestBottom, err = r.Uint16LE(); err != nil {
		return err
	}
	if b.Width, err = r.Uint16LE(); err != nil {
		return err
	}
	if b.Height, err = r.Uint16LE(); err != nil {
		return err
	}
	if b.BitsPerPixel, err = r.Uint16LE(); err != nil {
		return err
	}
	if b.Flags, err = r.Uint16LE(); err != nil {
		return err
	}
	bitmapLength, err := r.Uint16LE()
	if err != nil {
		return err
	}
	dataLen := int(bitmapLength)
	if b.Compressed() && b.Flags&NoBitmapCompressionHeaderFlag == 0 {
		// bitmapComprHdr: cbCompFirstRowSize, cbCompMainBodySize,
		// cbScanWidth, cbUncompressedSize (MS-RDPBCGR 2.2.9.1.1.3.1.2.3).
		if err := r.Skip(8); err != nil {
			return err
		}
		dataLen -= 8
	}
	if dataLen < 0 {
		return &rdperr.InvalidField{Name: "bitmapData.bitmapLength", Reason: "compression header exceeds declared length"}
	}
	b.BitmapData, err = r.CopyBytes(dataLen)
	return err
}

// Encode writes one bitmap rectangle to wire format. Compression headers
// are never emitted; callers that produce compressed data set
// NoBitmapCompressionHeaderFlag.
func (b *BitmapData) Encode(w *buffer.Writer) error {
	fields := []uint16{b.DestLeft, b.DestTop, b.DestRight, b.DestBottom, b.Width, b.Height, b.BitsPerPixel, b.Flags}
	for _, v := range fields {
		if err := w.WriteUint16LE(v); err != nil {
			return err
		}
	}
	if err := w.WriteUint16LE(uint16(len(b.BitmapData))); err != nil {
		return err
	}
	return w.WriteBytes(b.BitmapData)
}

// BitmapUpdateData is the TS_UPDATE_BITMAP_DATA structure (MS-RDPBCGR
// 2.2.9.1.1.3.1.1): zero or more bitmap rectangles applied in order, later
// rectangles winning where they overlap.
type BitmapUpdateData struct {
	Rectangles []BitmapData
}

// Decode reads a bitmap update body (no leading updateType field — that
// lives in the enclosing slow-path Update PDU, and is absent entirely from
// the fast-path encoding, which is why session.Machine strips it before
// calling here on the slow-path).
func (u *BitmapUpdateData) Decode(r *buffer.Reader) error {
	count, err := r.Uint16LE()
	if err != nil {
		return err
	}
	u.Rectangles = make([]BitmapData, count)
	for i := range u.Rectangles {
		if err := u.Rectangles[i].Decode(r); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes a bitmap update body to wire format.
func (u *BitmapUpdateData) Encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(uint16(len(u.Rectangles))); err != nil {
		return err
	}
	for i := range u.Rectangles {
		if err := u.Rectangles[i].Encode(w); err != nil {
			return err
		}
	}
	return nil
}
