package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// DrawNineGridCacheCapabilitySet is the TS_DRAW_NINEGRID_CAPABILITYSET
// structure (MS-RDPBCGR 2.2.7.1.9, deprecated but still round-tripped).
type DrawNineGridCacheCapabilitySet struct {
	DrawNineGridSupportLevel uint32
	DrawNineGridCacheSize    uint16
	DrawNineGridCacheEntries uint16
}

// NewDrawNineGridCacheCapabilitySet creates a DrawNineGridCacheCapabilitySet
// advertising no support (the client never requests this legacy feature).
func NewDrawNineGridCacheCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:              CapabilitySetTypeDrawNineGridCache,
		DrawNineGridCacheCapabilitySet: &DrawNineGridCacheCapabilitySet{},
	}
}

// Encode writes the capability set to wire format.
func (s *DrawNineGridCacheCapabilitySet) Encode(w *buffer.Writer) error {
	if err := w.WriteUint32LE(s.DrawNineGridSupportLevel); err != nil {
		return err
	}
	if err := w.WriteUint16LE(s.DrawNineGridCacheSize); err != nil {
		return err
	}
	return w.WriteUint16LE(s.DrawNineGridCacheEntries)
}

// Decode reads the capability set from wire format.
func (s *DrawNineGridCacheCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	if s.DrawNineGridSupportLevel, err = r.Uint32LE(); err != nil {
		return err
	}
	if s.DrawNineGridCacheSize, err = r.Uint16LE(); err != nil {
		return err
	}
	s.DrawNineGridCacheEntries, err = r.Uint16LE()
	return err
}

// GDICacheEntries holds GDI+ cache entry counts (MS-RDPBCGR 2.2.7.1.9).
type GDICacheEntries struct {
	GdipGraphicsCacheEntries        uint16
	GdipBrushCacheEntries           uint16
	GdipPenCacheEntries             uint16
	GdipImageCacheEntries           uint16
	GdipImageAttributesCacheEntries uint16
}

func (e *GDICacheEntries) encode(w *buffer.Writer) error {
	for _, v := range []uint16{
		e.GdipGraphicsCacheEntries, e.GdipBrushCacheEntries, e.GdipPenCacheEntries,
		e.GdipImageCacheEntries, e.GdipImageAttributesCacheEntries,
	} {
		if err := w.WriteUint16LE(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *GDICacheEntries) decode(r *buffer.Reader) error {
	fields := []*uint16{
		&e.GdipGraphicsCacheEntries, &e.GdipBrushCacheEntries, &e.GdipPenCacheEntries,
		&e.GdipImageCacheEntries, &e.GdipImageAttributesCacheEntries,
	}
	for _, f := range fields {
		v, err := r.Uint16LE()
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}

// GDICacheChunkSize holds GDI+ cache chunk sizes (MS-RDPBCGR 2.2.7.1.9).
type GDICacheChunkSize struct {
	GdipGraphicsCacheChunkSize              uint16
	GdipObjectBrushCacheChunkSize           uint16
	GdipObjectPenCacheChunkSize             uint16
	GdipObjectImageAttributesCacheChunkSize uint16
}

func (s *GDICacheChunkSize) encode(w *buffer.Writer) error {
	for _, v := range []uint16{
		s.GdipGraphicsCacheChunkSize, s.GdipObjectBrushCacheChunkSize,
		s.GdipObjectPenCacheChunkSize, s.GdipObjectImageAttributesCacheChunkSize,
	} {
		if err := w.WriteUint16LE(v); err != nil {
			return err
		}
	}
	return nil
}

func (s *GDICacheChunkSize) decode(r *buffer.Reader) error {
	fields := []*uint16{
		&s.GdipGraphicsCacheChunkSize, &s.GdipObjectBrushCacheChunkSize,
		&s.GdipObjectPenCacheChunkSize, &s.GdipObjectImageAttributesCacheChunkSize,
	}
	for _, f := range fields {
		v, err := r.Uint16LE()
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}

// GDIImageCacheProperties holds GDI+ image cache sizing (MS-RDPBCGR 2.2.7.1.9).
type GDIImageCacheProperties struct {
	GdipObjectImageCacheChunkSize uint16
	GdipObjectImageCacheTotalSize uint16
	GdipObjectImageCacheMaxSize   uint16
}

func (p *GDIImageCacheProperties) encode(w *buffer.Writer) error {
	for _, v := range []uint16{p.GdipObjectImageCacheChunkSize, p.GdipObjectImageCacheTotalSize, p.GdipObjectImageCacheMaxSize} {
		if err := w.WriteUint16LE(v); err != nil {
			return err
		}
	}
	return nil
}

func (p *GDIImageCacheProperties) decode(r *buffer.Reader) error {
	fields := []*uint16{&p.GdipObjectImageCacheChunkSize, &p.GdipObjectImageCacheTotalSize, &p.GdipObjectImageCacheMaxSize}
	for _, f := range fields {
		v, err := r.Uint16LE()
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}

// DrawGDIPlusCapabilitySet is the TS_DRAW_GDIPLUS_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.1.9).
type DrawGDIPlusCapabilitySet struct {
	DrawGDIPlusSupportLevel  uint32
	GdipVersion              uint32
	DrawGdiplusCacheLevel    uint32
	GdipCacheEntries         GDICacheEntries
	GdipCacheChunkSize       GDICacheChunkSize
	GdipImageCacheProperties GDIImageCacheProperties
}

// NewDrawGDIPlusCapabilitySet creates a DrawGDIPlusCapabilitySet advertising
// no GDI+ acceleration support.
func NewDrawGDIPlusCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:        CapabilitySetTypeDrawGDIPlus,
		DrawGDIPlusCapabilitySet: &DrawGDIPlusCapabilitySet{},
	}
}

// Encode writes the capability set to wire format.
func (s *DrawGDIPlusCapabilitySet) Encode(w *buffer.Writer) error {
	if err := w.WriteUint32LE(s.DrawGDIPlusSupportLevel); err != nil {
		return err
	}
	if err := w.WriteUint32LE(s.GdipVersion); err != nil {
		return err
	}
	if err := w.WriteUint32LE(s.DrawGdiplusCacheLevel); err != nil {
		return err
	}
	if err := s.GdipCacheEntries.encode(w); err != nil {
		return err
	}
	if err := s.GdipCacheChunkSize.encode(w); err != nil {
		return err
	}
	return s.GdipImageCacheProperties.encode(w)
}

// Decode reads the capability set from wire format.
func (s *DrawGDIPlusCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	if s.DrawGDIPlusSupportLevel, err = r.Uint32LE(); err != nil {
		return err
	}
	if s.GdipVersion, err = r.Uint32LE(); err != nil {
		return err
	}
	if s.DrawGdiplusCacheLevel, err = r.Uint32LE(); err != nil {
		return err
	}
	if err := s.GdipCacheEntries.decode(r); err != nil {
		return err
	}
	if err := s.GdipCacheChunkSize.decode(r); err != nil {
		return err
	}
	return s.GdipImageCacheProperties.decode(r)
}
