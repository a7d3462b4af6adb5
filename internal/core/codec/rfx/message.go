package rfx

import (
	"encoding/binary"

	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// Decode parses a complete RemoteFX message — the stream carried inside a
// TS_RFX_UPDATE's bitmapDataLength payload — into a Frame of decoded tiles
// and the dirty rectangles they refresh. ctx keeps the last context
// block's tileSize and properties fields across calls.
func Decode(data []byte, ctx *Context) (*Frame, error) {
	if len(data) < 6 {
		return nil, &rdperr.InvalidField{Name: "rfx.message", Reason: "shorter than block header"}
	}

	frame := &Frame{Tiles: make([]*Tile, 0)}
	offset := 0

	for offset < len(data) {
		if offset+6 > len(data) {
			break
		}
		blockType := binary.LittleEndian.Uint16(data[offset:])
		blockLen := int(binary.LittleEndian.Uint32(data[offset+2:]))
		if blockLen < 6 || offset+blockLen > len(data) {
			return nil, &rdperr.InvalidField{Name: "rfx.message.blockLen", Reason: "invalid block length"}
		}
		block := data[offset : offset+blockLen]

		switch blockType {
		case blockContext:
			if err := parseContextBlock(block, ctx); err != nil {
				return nil, err
			}
		case blockFrameBegin:
			idx, err := parseFrameBegin(block)
			if err != nil {
				return nil, err
			}
			frame.FrameIdx = idx
		case blockRegion:
			rects, err := parseRegionBlock(block)
			if err != nil {
				return nil, err
			}
			frame.Rects = rects
		case blockTileset:
			tiles, err := parseTilesetBlock(block)
			if err != nil {
				return nil, err
			}
			frame.Tiles = append(frame.Tiles, tiles...)
		case blockSync, blockCodecVersions, blockChannels, blockFrameEnd, blockExtension:
			// Carry no state this decoder needs.
		}

		offset += blockLen
	}

	return frame, nil
}

func parseContextBlock(data []byte, ctx *Context) error {
	if len(data) < 13 {
		return &rdperr.InvalidField{Name: "rfx.context", Reason: "shorter than block size"}
	}
	ctx.Width = binary.LittleEndian.Uint16(data[9:])
	ctx.Height = binary.LittleEndian.Uint16(data[11:])
	return nil
}

func parseFrameBegin(data []byte) (uint32, error) {
	if len(data) < 14 {
		return 0, &rdperr.InvalidField{Name: "rfx.frameBegin", Reason: "shorter than block size"}
	}
	return binary.LittleEndian.Uint32(data[8:]), nil
}

func parseRegionBlock(data []byte) ([]Rect, error) {
	if len(data) < 15 {
		return nil, &rdperr.InvalidField{Name: "rfx.region", Reason: "shorter than block size"}
	}
	offset := 9 // skip header + regionFlags
	numRects := binary.LittleEndian.Uint16(data[offset:])
	offset += 2

	rects := make([]Rect, 0, numRects)
	for i := uint16(0); i < numRects && offset+8 <= len(data); i++ {
		rects = append(rects, Rect{
			X:      binary.LittleEndian.Uint16(data[offset:]),
			Y:      binary.LittleEndian.Uint16(data[offset+2:]),
			Width:  binary.LittleEndian.Uint16(data[offset+4:]),
			Height: binary.LittleEndian.Uint16(data[offset+6:]),
		})
		offset += 8
	}
	return rects, nil
}

func parseTilesetBlock(data []byte) ([]*Tile, error) {
	if len(data) < 22 {
		return nil, &rdperr.InvalidField{Name: "rfx.tileset", Reason: "shorter than block size"}
	}
	offset := 8 + 2 + 2 + 2 // header, subtype, idx, flags

	numQuant := data[offset]
	offset++
	offset++ // tile size, always 64
	numTiles := binary.LittleEndian.Uint16(data[offset:])
	offset += 2
	offset += 4 // tileDataSize

	quantTables := make([]*SubbandQuant, numQuant)
	for i := uint8(0); i < numQuant && offset+5 <= len(data); i++ {
		quant, err := parseQuantValues(data[offset:])
		if err != nil {
			return nil, err
		}
		quantTables[i] = quant
		offset += 5
	}

	tiles := make([]*Tile, 0, numTiles)
	for i := uint16(0); i < numTiles && offset < len(data); i++ {
		if offset+6 > len(data) {
			break
		}
		if binary.LittleEndian.Uint16(data[offset:]) != blockTile {
			break
		}
		tileLen := int(binary.LittleEndian.Uint32(data[offset+2:]))
		if offset+tileLen > len(data) {
			break
		}

		quantIdxY := data[offset+6]
		quantIdxCb := data[offset+7]
		quantIdxCr := data[offset+8]

		tile, err := decodeTile(data[offset:offset+tileLen],
			quantOrDefault(quantTables, quantIdxY),
			quantOrDefault(quantTables, quantIdxCb),
			quantOrDefault(quantTables, quantIdxCr))
		if err != nil {
			// A malformed tile drops only itself; the rest of the tileset
			// still decodes.
			offset += tileLen
			continue
		}
		tiles = append(tiles, tile)
		offset += tileLen
	}

	return tiles, nil
}

func quantOrDefault(tables []*SubbandQuant, idx uint8) *SubbandQuant {
	if int(idx) < len(tables) && tables[idx] != nil {
		return tables[idx]
	}
	return DefaultQuant()
}
