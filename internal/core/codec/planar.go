package codec

// RDP 6.0 Planar codec format header flags (MS-RDPEGDI 2.2.2.5.1).
const (
	planarFlagRLE     = 0x10
	planarFlagNoAlpha = 0x20
)

// DecodePlanar decompresses an RDP 6.0 Planar codec bitmap (MS-RDPEGDI
// 2.2.2.5) into top-down RGBA pixels.
func DecodePlanar(src []byte, width, height int) []byte {
	if len(src) < 1 || width <= 0 || height <= 0 {
		return nil
	}

	formatHeader := src[0]
	hasRLE := formatHeader&planarFlagRLE != 0
	noAlpha := formatHeader&planarFlagNoAlpha != 0

	idx := 1
	planeSize := width * height

	planeR := make([]byte, planeSize)
	planeG := make([]byte, planeSize)
	planeB := make([]byte, planeSize)
	planeA := make([]byte, planeSize)
	if noAlpha {
		for i := range planeA {
			planeA[i] = 255
		}
	}

	if hasRLE {
		for _, plane := range planarPlaneOrder(noAlpha, planeA, planeR, planeG, planeB) {
			consumed := decodePlanarPlaneRLE(src[idx:], plane, width, height)
			if consumed < 0 {
				return nil
			}
			idx += consumed
		}
	} else {
		for _, plane := range planarPlaneOrder(noAlpha, planeA, planeR, planeG, planeB) {
			if idx+planeSize > len(src) {
				return nil
			}
			copy(plane, src[idx:idx+planeSize])
			idx += planeSize
		}
	}

	// Planar data is bottom-up; flip while combining planes into RGBA.
	rgba := make([]byte, planeSize*4)
	for y := 0; y < height; y++ {
		srcRow := (height - 1 - y) * width
		dstRow := y * width
		for x := 0; x < width; x++ {
			s := srcRow + x
			d := (dstRow + x) * 4
			rgba[d], rgba[d+1], rgba[d+2], rgba[d+3] = planeR[s], planeG[s], planeB[s], planeA[s]
		}
	}
	return rgba
}

func planarPlaneOrder(noAlpha bool, a, r, g, b []byte) [][]byte {
	if noAlpha {
		return [][]byte{r, g, b}
	}
	return [][]byte{a, r, g, b}
}

// decodePlanarPlaneRLE decompresses one RLE-encoded plane, returning the
// number of source bytes consumed, or -1 if the stream is malformed.
func decodePlanarPlaneRLE(src, dst []byte, width, height int) int {
	srcIdx, dstIdx := 0, 0
	var prevScanline []byte

	for y := 0; y < height; y++ {
		rowStart := dstIdx
		var pixel int16

		for x := 0; x < width; {
			if srcIdx >= len(src) {
				return -1
			}
			control := src[srcIdx]
			srcIdx++

			runLength := int(control & 0x0F)
			rawBytes := int(control>>4) & 0x0F
			switch runLength {
			case 1:
				runLength = rawBytes + 16
				rawBytes = 0
			case 2:
				runLength = rawBytes + 32
				rawBytes = 0
			}
			if x+rawBytes+runLength > width {
				return -1
			}

			if prevScanline == nil {
				for ; rawBytes > 0; rawBytes-- {
					if srcIdx >= len(src) || dstIdx >= len(dst) {
						return -1
					}
					pixel = int16(src[srcIdx])
					srcIdx++
					dst[dstIdx] = byte(pixel)
					dstIdx++
					x++
				}
				for ; runLength > 0; runLength-- {
					if dstIdx >= len(dst) {
						return -1
					}
					dst[dstIdx] = byte(pixel)
					dstIdx++
					x++
				}
				continue
			}

			for ; rawBytes > 0; rawBytes-- {
				if srcIdx >= len(src) || dstIdx >= len(dst) {
					return -1
				}
				delta := src[srcIdx]
				srcIdx++
				if delta&1 != 0 {
					pixel = -int16(delta>>1) - 1
				} else {
					pixel = int16(delta >> 1)
				}
				dst[dstIdx] = planarSaturate(prevScanline[x], pixel)
				dstIdx++
				x++
			}
			for ; runLength > 0; runLength-- {
				if dstIdx >= len(dst) {
					return -1
				}
				dst[dstIdx] = planarSaturate(prevScanline[x], pixel)
				dstIdx++
				x++
			}
		}
		prevScanline = dst[rowStart:dstIdx]
	}
	return srcIdx
}

func planarSaturate(base byte, delta int16) byte {
	v := int16(base) + delta
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return byte(v)
	}
}
