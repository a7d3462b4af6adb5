package rfx

import (
	"encoding/binary"

	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// decodeTile decodes one CBT_TILE block (MS-RDPRFX 2.2.2.2.5.1): RLGR
// entropy decode per component, differential LL3 decode, dequantize,
// inverse DWT, then YCbCr-to-RGBA color conversion.
func decodeTile(data []byte, quantY, quantCb, quantCr *SubbandQuant) (*Tile, error) {
	if len(data) < 19 {
		return nil, &rdperr.InvalidField{Name: "rfx.tile", Reason: "shorter than minimum header size"}
	}

	offset := 0
	if binary.LittleEndian.Uint16(data[offset:]) != blockTile {
		return nil, &rdperr.InvalidField{Name: "rfx.tile.blockType", Reason: "not CBT_TILE"}
	}
	offset += 2

	blockLen := binary.LittleEndian.Uint32(data[offset:])
	if int(blockLen) > len(data) {
		return nil, &rdperr.InvalidField{Name: "rfx.tile.blockLen", Reason: "exceeds available data"}
	}
	offset += 4

	// quantIdxY/Cb/Cr already resolved by the caller.
	offset += 3

	xIdx := binary.LittleEndian.Uint16(data[offset:])
	offset += 2
	yIdx := binary.LittleEndian.Uint16(data[offset:])
	offset += 2

	yLen := int(binary.LittleEndian.Uint16(data[offset:]))
	offset += 2
	cbLen := int(binary.LittleEndian.Uint16(data[offset:]))
	offset += 2
	crLen := int(binary.LittleEndian.Uint16(data[offset:]))
	offset += 2

	if offset+yLen+cbLen+crLen > len(data) {
		return nil, &rdperr.InvalidField{Name: "rfx.tile.componentLengths", Reason: "exceed available data"}
	}

	yData := data[offset : offset+yLen]
	offset += yLen
	cbData := data[offset : offset+cbLen]
	offset += cbLen
	crData := data[offset : offset+crLen]

	yCoeff := make([]int16, TilePixels)
	cbCoeff := make([]int16, TilePixels)
	crCoeff := make([]int16, TilePixels)

	if err := rlgrDecode(yData, rlgrMode1, yCoeff); err != nil {
		return nil, err
	}
	if err := rlgrDecode(cbData, rlgrMode3, cbCoeff); err != nil {
		return nil, err
	}
	if err := rlgrDecode(crData, rlgrMode3, crCoeff); err != nil {
		return nil, err
	}

	differentialDecode(yCoeff[offsetLL3:], sizeL3)
	differentialDecode(cbCoeff[offsetLL3:], sizeL3)
	differentialDecode(crCoeff[offsetLL3:], sizeL3)

	dequantize(yCoeff, quantY)
	dequantize(cbCoeff, quantCb)
	dequantize(crCoeff, quantCr)

	yPixels := inverseDWT2D(yCoeff)
	cbPixels := inverseDWT2D(cbCoeff)
	crPixels := inverseDWT2D(crCoeff)

	rgba := make([]byte, TileRGBASize)
	ycbcrToRGBA(yPixels, cbPixels, crPixels, rgba)

	return &Tile{X: xIdx, Y: yIdx, RGBA: rgba}, nil
}
