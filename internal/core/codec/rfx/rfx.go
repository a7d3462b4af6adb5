// Package rfx implements the RemoteFX (MS-RDPRFX) wavelet tile codec: a
// 64x64 tile pipeline of RLGR entropy decoding, differential DC decoding,
// dequantization, inverse 5/3 DWT, and YCbCr-to-RGBA color conversion.
// Every entry point here is pure.
package rfx

import "github.com/rcarmo/go-rdp-core/internal/core/rdperr"

// Tile dimensions fixed by MS-RDPRFX.
const (
	TileSize     = 64
	TilePixels   = TileSize * TileSize
	TileRGBASize = TilePixels * 4
)

// Subband coefficient buffer offsets, packed linear layout (MS-RDPRFX
// 3.1.8.1.1): three DWT levels plus the LL3 approximation band.
const (
	offsetHL1 = 0
	offsetLH1 = 1024
	offsetHH1 = 2048
	offsetHL2 = 3072
	offsetLH2 = 3328
	offsetHH2 = 3584
	offsetHL3 = 3840
	offsetLH3 = 3904
	offsetHH3 = 3968
	offsetLL3 = 4032

	sizeL1 = 1024
	sizeL2 = 256
	sizeL3 = 64
)

// Entropy coding modes (MS-RDPRFX 2.2.2.1.1): RLGR1 codes the luma plane,
// RLGR3 codes the two chroma planes.
const (
	rlgrMode1 = 1
	rlgrMode3 = 3
)

// Adaptive RLGR parameters (MS-RDPRFX 3.1.8.1.7.1).
const (
	rlgrKPMax = 80
	rlgrLSGR  = 3
	rlgrUpGR  = 4
	rlgrDnGR  = 6
	rlgrUqGR  = 3
	rlgrDqGR  = 3
)

// Block type tags (MS-RDPRFX 2.2.2.1.1).
const (
	blockSync          uint16 = 0xCCC0
	blockCodecVersions uint16 = 0xCCC1
	blockChannels      uint16 = 0xCCC2
	blockContext       uint16 = 0xCCC3
	blockFrameBegin    uint16 = 0xCCC4
	blockFrameEnd      uint16 = 0xCCC5
	blockRegion        uint16 = 0xCCC6
	blockExtension     uint16 = 0xCCC7
	blockTileset       uint16 = 0xCAC2
	blockTile          uint16 = 0xCAC3
)

// SubbandQuant holds the quantization factor for each of the ten subbands
// of one tile component, packed as 4-bit nibbles on the wire.
type SubbandQuant struct {
	LL3, LH3, HL3, HH3 uint8
	LH2, HL2, HH2      uint8
	LH1, HL1, HH1      uint8
}

// DefaultQuant returns the quantization table RemoteFX encoders commonly
// fall back to absent an explicit TS_RFX_CODEC_QUANT entry (quality ~85%).
func DefaultQuant() *SubbandQuant {
	return &SubbandQuant{
		LL3: 6, LH3: 6, HL3: 6, HH3: 6,
		LH2: 7, HL2: 7, HH2: 8,
		LH1: 8, HL1: 8, HH1: 9,
	}
}

func parseQuantValues(data []byte) (*SubbandQuant, error) {
	if len(data) < 5 {
		return nil, &rdperr.InvalidField{Name: "rfx.quant", Reason: "shorter than 5 bytes"}
	}
	return &SubbandQuant{
		LL3: data[0] & 0x0F,
		LH3: (data[0] >> 4) & 0x0F,
		HL3: data[1] & 0x0F,
		HH3: (data[1] >> 4) & 0x0F,
		LH2: data[2] & 0x0F,
		HL2: (data[2] >> 4) & 0x0F,
		HH2: data[3] & 0x0F,
		LH1: (data[3] >> 4) & 0x0F,
		HL1: data[4] & 0x0F,
		HH1: (data[4] >> 4) & 0x0F,
	}, nil
}

// Tile is one decoded 64x64 RemoteFX tile, positioned in tile (not pixel)
// coordinates; multiply by TileSize for the pixel offset.
type Tile struct {
	X, Y uint16
	RGBA []byte
}

// Rect is a dirty rectangle carried by a RemoteFX region block.
type Rect struct {
	X, Y          uint16
	Width, Height uint16
}

// Frame is one decoded RemoteFX update: the tiles it refreshed and the
// dirty rectangles the server clipped them against.
type Frame struct {
	FrameIdx uint32
	Tiles    []*Tile
	Rects    []Rect
}

// Context carries decoder state across frames: Decode stores the most
// recent context block's tileSize in Width and its properties field in
// Height. Quantization tables are not kept across frames; each tileset is
// decoded with the tables it carries.
type Context struct {
	Width  uint16
	Height uint16
}

// NewContext creates an empty decoding context.
func NewContext() *Context {
	return &Context{}
}
