package pdu

import "github.com/rcarmo/go-rdp-core/internal/core/buffer"

// GlyphSupportLevel specifies the level of glyph caching support
// (MS-RDPBCGR 2.2.7.1.8).
type GlyphSupportLevel uint16

const (
	GlyphSupportLevelNone    GlyphSupportLevel = 0
	GlyphSupportLevelPartial GlyphSupportLevel = 1
	GlyphSupportLevelFull    GlyphSupportLevel = 2
	GlyphSupportLevelEncode  GlyphSupportLevel = 3
)

// CacheDefinition describes one glyph cache entry (MS-RDPBCGR 2.2.7.1.8).
type CacheDefinition struct {
	CacheEntries         uint16
	CacheMaximumCellSize uint16
}

// Encode writes the cache definition to wire format.
func (d *CacheDefinition) Encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(d.CacheEntries); err != nil {
		return err
	}
	return w.WriteUint16LE(d.CacheMaximumCellSize)
}

// Decode reads the cache definition from wire format.
func (d *CacheDefinition) Decode(r *buffer.Reader) error {
	var err error
	if d.CacheEntries, err = r.Uint16LE(); err != nil {
		return err
	}
	d.CacheMaximumCellSize, err = r.Uint16LE()
	return err
}

// GlyphCacheCapabilitySet is the TS_GLYPHCACHE_CAPABILITYSET structure
// (MS-RDPBCGR 2.2.7.1.8).
type GlyphCacheCapabilitySet struct {
	GlyphCache        [10]CacheDefinition
	FragCache         uint32
	GlyphSupportLevel GlyphSupportLevel
}

// NewGlyphCacheCapabilitySet creates a GlyphCacheCapabilitySet advertising no
// glyph caching (the client draws text as bitmap orders instead).
func NewGlyphCacheCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:       CapabilitySetTypeGlyphCache,
		GlyphCacheCapabilitySet: &GlyphCacheCapabilitySet{GlyphSupportLevel: GlyphSupportLevelNone},
	}
}

// Encode writes the capability set to wire format.
func (s *GlyphCacheCapabilitySet) Encode(w *buffer.Writer) error {
	for i := range s.GlyphCache {
		if err := s.GlyphCache[i].Encode(w); err != nil {
			return err
		}
	}
	if err := w.WriteUint32LE(s.FragCache); err != nil {
		return err
	}
	if err := w.WriteUint16LE(uint16(s.GlyphSupportLevel)); err != nil {
		return err
	}
	return w.WriteUint16LE(0) // padding
}

// Decode reads the capability set from wire format.
func (s *GlyphCacheCapabilitySet) Decode(r *buffer.Reader) error {
	for i := range s.GlyphCache {
		if err := s.GlyphCache[i].Decode(r); err != nil {
			return err
		}
	}
	var err error
	if s.FragCache, err = r.Uint32LE(); err != nil {
		return err
	}
	level, err := r.Uint16LE()
	if err != nil {
		return err
	}
	s.GlyphSupportLevel = GlyphSupportLevel(level)
	return r.Skip(2) // padding
}
