package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// NSCodecGUID identifies the NSCodec bitmap codec in a TS_BITMAPCODEC_CAPS
// codec list (MS-RDPNSC 1.3.1.1): CA8D1BB9-000F-154F-589F-AE2D1A87E2D6.
var NSCodecGUID = [16]byte{
	0xB9, 0x1B, 0x8D, 0xCA, 0x0F, 0x00, 0x4F, 0x15,
	0x58, 0x9F, 0xAE, 0x2D, 0x1A, 0x87, 0xE2, 0xD6,
}

// nsStream holds the parsed fields of an NSCODEC_BITMAP_STREAM (MS-RDPNSC
// 2.2.1), the wire layout of an NSCodec-compressed bitmap update.
type nsStream struct {
	lumaSize, orangeSize, greenSize, alphaSize uint32
	colorLossLevel, chromaSubsamplingLevel     uint8
	luma, orange, green, alpha                 []byte
}

func parseNSStream(data []byte) (*nsStream, error) {
	if len(data) < 20 {
		return nil, &rdperr.InvalidField{Name: "nscodec.stream", Reason: "shorter than header size"}
	}
	s := &nsStream{
		lumaSize:               binary.LittleEndian.Uint32(data[0:4]),
		orangeSize:             binary.LittleEndian.Uint32(data[4:8]),
		greenSize:              binary.LittleEndian.Uint32(data[8:12]),
		alphaSize:              binary.LittleEndian.Uint32(data[12:16]),
		colorLossLevel:         data[16],
		chromaSubsamplingLevel: data[17],
	}
	if s.colorLossLevel < 1 || s.colorLossLevel > 7 {
		return nil, &rdperr.InvalidField{Name: "nscodec.colorLossLevel", Reason: "outside 1-7"}
	}

	offset := uint32(20)
	total := uint32(len(data))

	take := func(size uint32) ([]byte, error) {
		if size == 0 {
			return nil, nil
		}
		if total < offset+size {
			return nil, &rdperr.InvalidField{Name: "nscodec.plane", Reason: "truncated plane data"}
		}
		plane := data[offset : offset+size]
		offset += size
		return plane, nil
	}

	var err error
	if s.luma, err = take(s.lumaSize); err != nil {
		return nil, err
	}
	if s.orange, err = take(s.orangeSize); err != nil {
		return nil, err
	}
	if s.green, err = take(s.greenSize); err != nil {
		return nil, err
	}
	if s.alpha, err = take(s.alphaSize); err != nil {
		return nil, err
	}
	return s, nil
}

// DecodeNSCodec decompresses an NSCodec bitmap stream (MS-RDPNSC) into
// top-down RGBA pixels.
func DecodeNSCodec(data []byte, width, height int) ([]byte, error) {
	s, err := parseNSStream(data)
	if err != nil {
		return nil, err
	}
	return s.decode(width, height)
}

func (s *nsStream) decode(width, height int) ([]byte, error) {
	subsampled := s.chromaSubsamplingLevel != 0

	lumaW, lumaH := width, height
	chromaW, chromaH := width, height
	if subsampled {
		lumaW = roundUpMultiple(width, 8)
		lumaH = height
		chromaW = lumaW / 2
		chromaH = roundUpMultiple(height, 2) / 2
	}

	luma, err := nsDecompressPlane(s.luma, lumaW*lumaH)
	if err != nil {
		return nil, fmt.Errorf("nscodec: luma plane: %w", err)
	}
	orange, err := nsDecompressPlane(s.orange, chromaW*chromaH)
	if err != nil {
		return nil, fmt.Errorf("nscodec: orange chroma plane: %w", err)
	}
	green, err := nsDecompressPlane(s.green, chromaW*chromaH)
	if err != nil {
		return nil, fmt.Errorf("nscodec: green chroma plane: %w", err)
	}
	var alpha []byte
	if s.alphaSize > 0 {
		if alpha, err = nsDecompressPlane(s.alpha, width*height); err != nil {
			return nil, fmt.Errorf("nscodec: alpha plane: %w", err)
		}
	}

	if subsampled {
		orange = nsChromaUpsample(orange, chromaW, chromaH, lumaW, lumaH)
		green = nsChromaUpsample(green, chromaW, chromaH, lumaW, lumaH)
	}
	if s.colorLossLevel > 1 {
		orange = nsRestoreColorLoss(orange, s.colorLossLevel)
		green = nsRestoreColorLoss(green, s.colorLossLevel)
	}

	return nsAYCoCgToRGBA(luma, orange, green, alpha, lumaW, lumaH, width, height), nil
}

// nsDecompressPlane returns a plane verbatim if it is already the expected
// size (uncompressed), otherwise runs it through the NSCodec RLE scheme.
func nsDecompressPlane(data []byte, expectedSize int) ([]byte, error) {
	if len(data) == expectedSize {
		return data, nil
	}
	if len(data) > expectedSize {
		return nil, &rdperr.InvalidField{Name: "nscodec.plane", Reason: "larger than expected uncompressed size"}
	}
	return nsRLEDecompress(data, expectedSize)
}

// nsRLEDecompress decompresses one NSCodec plane's RLE stream: a sequence of
// run (high bit set) and literal segments, terminated by a 4-byte trailer
// copied verbatim from the tail of the source (MS-RDPNSC 2.2.2.1).
func nsRLEDecompress(data []byte, expectedSize int) ([]byte, error) {
	if len(data) < 4 {
		return nil, &rdperr.CodecFailure{Codec: "nscodec", Reason: "rle stream shorter than trailer"}
	}

	out := make([]byte, 0, expectedSize)
	offset := 0
	bodyLen := len(data) - 4

	for offset < bodyLen && len(out) < expectedSize-4 {
		header := data[offset]
		offset++

		if header&0x80 != 0 {
			runLength := int(header & 0x7F)
			if runLength == 0 {
				if offset >= bodyLen {
					return nil, &rdperr.CodecFailure{Codec: "nscodec", Reason: "truncated extended run length"}
				}
				runLength = int(data[offset]) + 128
				offset++
			}
			if offset >= bodyLen {
				return nil, &rdperr.CodecFailure{Codec: "nscodec", Reason: "truncated run value"}
			}
			runValue := data[offset]
			offset++
			for i := 0; i < runLength && len(out) < expectedSize-4; i++ {
				out = append(out, runValue)
			}
			continue
		}

		literalLength := int(header)
		if literalLength == 0 {
			if offset >= bodyLen {
				return nil, &rdperr.CodecFailure{Codec: "nscodec", Reason: "truncated extended literal length"}
			}
			literalLength = int(data[offset]) + 128
			offset++
		}
		if offset+literalLength > bodyLen {
			return nil, &rdperr.CodecFailure{Codec: "nscodec", Reason: "literal run overruns stream"}
		}
		out = append(out, data[offset:offset+literalLength]...)
		offset += literalLength
	}

	trailer := data[len(data)-4:]
	for _, b := range trailer {
		if len(out) < expectedSize {
			out = append(out, b)
		}
	}
	for len(out) < expectedSize {
		out = append(out, 0)
	}
	return out[:expectedSize], nil
}

// nsChromaUpsample nearest-neighbor upsamples a subsampled chroma plane to
// the luma plane's resolution.
func nsChromaUpsample(plane []byte, srcW, srcH, dstW, dstH int) []byte {
	out := make([]byte, dstW*dstH)
	for y := 0; y < dstH; y++ {
		srcY := y / 2
		if srcY >= srcH {
			srcY = srcH - 1
		}
		for x := 0; x < dstW; x++ {
			srcX := x / 2
			if srcX >= srcW {
				srcX = srcW - 1
			}
			if si := srcY*srcW + srcX; si < len(plane) {
				out[y*dstW+x] = plane[si]
			}
		}
	}
	return out
}

// nsRestoreColorLoss reverses the quantization NSCodec applies to chroma
// planes above color loss level 1 by left-shifting each sample back out.
func nsRestoreColorLoss(plane []byte, level uint8) []byte {
	if level <= 1 {
		return plane
	}
	shift := level - 1
	out := make([]byte, len(plane))
	for i, v := range plane {
		restored := int(v) << shift
		if restored > 255 {
			restored = 255
		}
		out[i] = byte(restored)
	}
	return out
}

// nsAYCoCgToRGBA converts the decoded AYCoCg planes to top-down RGBA.
func nsAYCoCgToRGBA(luma, orange, green, alpha []byte, planeW, planeH, width, height int) []byte {
	rgba := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pi := y*planeW + x
			if pi >= len(luma) || pi >= len(orange) || pi >= len(green) {
				continue
			}
			di := (y*width + x) * 4

			yVal := int(luma[pi])
			co := int(orange[pi]) - 128
			cg := int(green[pi]) - 128

			t := yVal - cg
			rgba[di+0] = nsClamp(t + co)
			rgba[di+1] = nsClamp(yVal + cg)
			rgba[di+2] = nsClamp(t - co)
			if alpha != nil && pi < len(alpha) {
				rgba[di+3] = alpha[pi]
			} else {
				rgba[di+3] = 255
			}
		}
	}
	return rgba
}

func nsClamp(v int) byte {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return byte(v)
	}
}

func roundUpMultiple(n, m int) int {
	if m == 0 {
		return n
	}
	if r := n % m; r != 0 {
		return n + m - r
	}
	return n
}
