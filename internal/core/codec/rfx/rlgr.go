package rfx

import "github.com/rcarmo/go-rdp-core/internal/core/rdperr"

// bitReader reads MSB-first bits out of a byte slice through a 32-bit
// left-aligned lookahead accumulator, the access pattern RLGR decoding
// needs (unary prefixes interleaved with fixed-width remainders).
type bitReader struct {
	data      []byte
	bytePos   int
	acc       uint32
	bitsInAcc int
}

func newBitReader(data []byte) *bitReader {
	br := &bitReader{data: data}
	br.refill()
	return br
}

func (br *bitReader) refill() {
	for br.bitsInAcc <= 24 && br.bytePos < len(br.data) {
		br.acc |= uint32(br.data[br.bytePos]) << (24 - br.bitsInAcc)
		br.bytePos++
		br.bitsInAcc += 8
	}
}

func (br *bitReader) readBits(n int) uint32 {
	if n == 0 {
		return 0
	}
	if n > br.bitsInAcc {
		br.refill()
	}
	if n > br.bitsInAcc {
		if br.bitsInAcc == 0 {
			return 0
		}
		result := br.acc >> (32 - br.bitsInAcc)
		br.bitsInAcc = 0
		br.acc = 0
		return result
	}
	result := br.acc >> (32 - n)
	br.acc <<= n
	br.bitsInAcc -= n
	return result
}

func (br *bitReader) readBit() uint32 { return br.readBits(1) }

// countLeadingZeros consumes and counts a unary run of 0 bits up to and
// including its terminating 1 bit, returning the run length.
func (br *bitReader) countLeadingZeros() int {
	count := 0
	for {
		if br.bitsInAcc == 0 {
			br.refill()
			if br.bitsInAcc == 0 {
				return count
			}
		}
		if br.acc&0x80000000 != 0 {
			br.acc <<= 1
			br.bitsInAcc--
			return count
		}
		br.acc <<= 1
		br.bitsInAcc--
		count++
		if count > 32000 {
			return count
		}
	}
}

// countLeadingOnes is countLeadingZeros with the polarity flipped.
func (br *bitReader) countLeadingOnes() int {
	count := 0
	for {
		if br.bitsInAcc == 0 {
			br.refill()
			if br.bitsInAcc == 0 {
				return count
			}
		}
		if br.acc&0x80000000 == 0 {
			br.acc <<= 1
			br.bitsInAcc--
			return count
		}
		br.acc <<= 1
		br.bitsInAcc--
		count++
		if count > 32000 {
			return count
		}
	}
}

func (br *bitReader) remainingBits() int {
	return (len(br.data)-br.bytePos)*8 + br.bitsInAcc
}

// rlgrDecode decodes one tile component's RLGR-coded subband coefficients
// (MS-RDPRFX 3.1.8.1.7) into a TilePixels-length int16 buffer. mode selects
// RLGR1 (luma) or RLGR3 (chroma) paired-value coding.
func rlgrDecode(data []byte, mode int, output []int16) error {
	if len(output) < TilePixels {
		return &rdperr.InvalidField{Name: "rfx.rlgr.output", Reason: "shorter than tile size"}
	}
	for i := range output {
		output[i] = 0
	}
	if len(data) == 0 {
		return nil
	}

	br := newBitReader(data)

	k := uint32(1)
	kp := uint32(8)
	kr := uint32(1)
	krp := uint32(8)

	idx := 0
	for idx < TilePixels && br.remainingBits() > 0 {
		if k != 0 {
			nIdx := br.countLeadingZeros()
			if br.remainingBits() == 0 {
				return &rdperr.CodecFailure{Codec: "rfx", Reason: "truncated run-length prefix"}
			}

			runLength := 0
			for i := 0; i < nIdx; i++ {
				runLength += 1 << k
				kp += rlgrUpGR
				if kp > rlgrKPMax {
					kp = rlgrKPMax
				}
				k = kp >> rlgrLSGR
			}
			if k > 0 && br.remainingBits() >= int(k) {
				runLength += int(br.readBits(int(k)))
			}

			for i := 0; i < runLength && idx < TilePixels; i++ {
				output[idx] = 0
				idx++
			}
			if idx >= TilePixels {
				break
			}

			if br.remainingBits() == 0 {
				return &rdperr.CodecFailure{Codec: "rfx", Reason: "truncated sign bit"}
			}
			sign := br.readBit()

			nIdx = br.countLeadingOnes()
			if br.remainingBits() == 0 && nIdx == 0 {
				return &rdperr.CodecFailure{Codec: "rfx", Reason: "truncated magnitude prefix"}
			}
			mag := uint32(0)
			if kr > 0 && br.remainingBits() >= int(kr) {
				mag = br.readBits(int(kr))
			}
			mag |= uint32(nIdx) << kr

			krp = rlgrUpdateKr(krp, nIdx)
			kr = krp >> rlgrLSGR

			if kp >= rlgrDnGR {
				kp -= rlgrDnGR
			} else {
				kp = 0
			}
			k = kp >> rlgrLSGR

			value := int16(mag + 1)
			if sign != 0 {
				value = -value
			}
			output[idx] = value
			idx++
			continue
		}

		if mode == rlgrMode1 {
			nIdx := br.countLeadingOnes()
			if br.remainingBits() == 0 && nIdx == 0 {
				return &rdperr.CodecFailure{Codec: "rfx", Reason: "truncated magnitude prefix"}
			}
			mag := uint32(0)
			if kr > 0 && br.remainingBits() >= int(kr) {
				mag = br.readBits(int(kr))
			}
			mag |= uint32(nIdx) << kr

			krp = rlgrUpdateKr(krp, nIdx)
			kr = krp >> rlgrLSGR

			var value int16
			if mag == 0 {
				kp += rlgrUqGR
				if kp > rlgrKPMax {
					kp = rlgrKPMax
				}
			} else {
				if mag&1 != 0 {
					value = -int16((mag + 1) >> 1)
				} else {
					value = int16(mag >> 1)
				}
				if kp >= rlgrDqGR {
					kp -= rlgrDqGR
				} else {
					kp = 0
				}
			}
			k = kp >> rlgrLSGR
			output[idx] = value
			idx++
			continue
		}

		// RLGR3: two values coded per symbol.
		nIdx := br.countLeadingOnes()
		if br.remainingBits() == 0 && nIdx == 0 {
			return &rdperr.CodecFailure{Codec: "rfx", Reason: "truncated magnitude prefix"}
		}
		code := uint32(0)
		if kr > 0 && br.remainingBits() >= int(kr) {
			code = br.readBits(int(kr))
		}
		code |= uint32(nIdx) << kr

		krp = rlgrUpdateKr(krp, nIdx)
		kr = krp >> rlgrLSGR

		bits := 0
		for tmp := code; tmp > 0; tmp >>= 1 {
			bits++
		}

		var val1, val2 uint32
		if bits > 0 {
			if br.remainingBits() < bits {
				return &rdperr.CodecFailure{Codec: "rfx", Reason: "truncated paired value"}
			}
			val1 = br.readBits(bits)
		}
		val2 = code - val1

		switch {
		case val1 != 0 && val2 != 0:
			if kp >= 2*rlgrDqGR {
				kp -= 2 * rlgrDqGR
			} else {
				kp = 0
			}
		case val1 == 0 && val2 == 0:
			kp += 2 * rlgrUqGR
			if kp > rlgrKPMax {
				kp = rlgrKPMax
			}
		}
		k = kp >> rlgrLSGR

		output[idx] = rlgrSignedValue(val1)
		idx++
		if idx >= TilePixels {
			break
		}
		output[idx] = rlgrSignedValue(val2)
		idx++
	}

	return nil
}

func rlgrSignedValue(v uint32) int16 {
	if v == 0 {
		return 0
	}
	if v&1 != 0 {
		return -int16((v + 1) >> 1)
	}
	return int16(v >> 1)
}

func rlgrUpdateKr(krp uint32, nIdx int) uint32 {
	switch {
	case nIdx == 0:
		if krp >= 2 {
			return krp - 2
		}
		return 0
	case nIdx > 1:
		krp += uint32(nIdx)
		if krp > rlgrKPMax {
			return rlgrKPMax
		}
		return krp
	default:
		return krp
	}
}
