package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// BitmapCacheCapabilitySetRev1 is the TS_BITMAPCACHE_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.1.4).
type BitmapCacheCapabilitySetRev1 struct {
	Cache0Entries         uint16
	Cache0MaximumCellSize uint16
	Cache1Entries         uint16
	Cache1MaximumCellSize uint16
	Cache2Entries         uint16
	Cache2MaximumCellSize uint16
}

// NewBitmapCacheCapabilitySetRev1 creates a BitmapCacheCapabilitySetRev1 with zero values.
func NewBitmapCacheCapabilitySetRev1() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:            CapabilitySetTypeBitmapCache,
		BitmapCacheCapabilitySetRev1: &BitmapCacheCapabilitySetRev1{},
	}
}

// Encode writes the capability set to wire format.
func (s *BitmapCacheCapabilitySetRev1) Encode(w *buffer.Writer) error {
	if err := w.WriteZeros(24); err != nil { // padding
		return err
	}
	for _, v := range []uint16{s.Cache0Entries, s.Cache0MaximumCellSize, s.Cache1Entries, s.Cache1MaximumCellSize, s.Cache2Entries, s.Cache2MaximumCellSize} {
		if err := w.WriteUint16LE(v); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads the capability set from wire format.
func (s *BitmapCacheCapabilitySetRev1) Decode(r *buffer.Reader) error {
	if err := r.Skip(24); err != nil {
		return err
	}
	var err error
	if s.Cache0Entries, err = r.Uint16LE(); err != nil {
		return err
	}
	if s.Cache0MaximumCellSize, err = r.Uint16LE(); err != nil {
		return err
	}
	if s.Cache1Entries, err = r.Uint16LE(); err != nil {
		return err
	}
	if s.Cache1MaximumCellSize, err = r.Uint16LE(); err != nil {
		return err
	}
	if s.Cache2Entries, err = r.Uint16LE(); err != nil {
		return err
	}
	s.Cache2MaximumCellSize, err = r.Uint16LE()
	return err
}

// BitmapCacheCapabilitySetRev2 is the TS_BITMAPCACHE_CAPABILITYSET_REV2
// structure (MS-RDPBCGR 2.2.7.1.4.2).
type BitmapCacheCapabilitySetRev2 struct {
	CacheFlags           uint16
	NumCellCaches        uint8
	BitmapCache0CellInfo uint32
	BitmapCache1CellInfo uint32
	BitmapCache2CellInfo uint32
	BitmapCache3CellInfo uint32
	BitmapCache4CellInfo uint32
}

// NewBitmapCacheCapabilitySetRev2 creates a BitmapCacheCapabilitySetRev2 with zero values.
func NewBitmapCacheCapabilitySetRev2() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:            CapabilitySetTypeBitmapCacheRev2,
		BitmapCacheCapabilitySetRev2: &BitmapCacheCapabilitySetRev2{},
	}
}

// Encode writes the capability set to wire format.
func (s *BitmapCacheCapabilitySetRev2) Encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(s.CacheFlags); err != nil {
		return err
	}
	if err := w.WriteUint8(0); err != nil { // padding
		return err
	}
	if err := w.WriteUint8(s.NumCellCaches); err != nil {
		return err
	}
	for _, v := range []uint32{s.BitmapCache0CellInfo, s.BitmapCache1CellInfo, s.BitmapCache2CellInfo, s.BitmapCache3CellInfo, s.BitmapCache4CellInfo} {
		if err := w.WriteUint32LE(v); err != nil {
			return err
		}
	}
	return w.WriteZeros(12) // padding
}

// Decode reads the capability set from wire format.
func (s *BitmapCacheCapabilitySetRev2) Decode(r *buffer.Reader) error {
	var err error
	if s.CacheFlags, err = r.Uint16LE(); err != nil {
		return err
	}
	if err = r.Skip(1); err != nil { // padding
		return err
	}
	if s.NumCellCaches, err = r.Uint8(); err != nil {
		return err
	}
	if s.BitmapCache0CellInfo, err = r.Uint32LE(); err != nil {
		return err
	}
	if s.BitmapCache1CellInfo, err = r.Uint32LE(); err != nil {
		return err
	}
	if s.BitmapCache2CellInfo, err = r.Uint32LE(); err != nil {
		return err
	}
	if s.BitmapCache3CellInfo, err = r.Uint32LE(); err != nil {
		return err
	}
	if s.BitmapCache4CellInfo, err = r.Uint32LE(); err != nil {
		return err
	}
	return r.Skip(12) // padding
}

// ColorCacheCapabilitySet is the TS_COLORCACHE_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.1.4.1, virtual channel extension).
type ColorCacheCapabilitySet struct {
	ColorTableCacheSize uint16
}

// NewColorCacheCapabilitySet creates a ColorCacheCapabilitySet with zero values.
func NewColorCacheCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:       CapabilitySetTypeColorCache,
		ColorCacheCapabilitySet: &ColorCacheCapabilitySet{},
	}
}

// Encode writes the capability set to wire format.
func (s *ColorCacheCapabilitySet) Encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(s.ColorTableCacheSize); err != nil {
		return err
	}
	return w.WriteUint16LE(0) // padding
}

// Decode reads the capability set from wire format.
func (s *ColorCacheCapabilitySet) Decode(r *buffer.Reader) error {
	var err error
	if s.ColorTableCacheSize, err = r.Uint16LE(); err != nil {
		return err
	}
	return r.Skip(2)
}
