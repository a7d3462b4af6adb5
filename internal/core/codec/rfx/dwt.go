package rfx

// inverseDWT2D performs a 3-level inverse 2D discrete wavelet transform
// (5/3 LeGall wavelet) on a tile's packed subband coefficients, turning
// frequency-domain coefficients into spatial-domain samples in place.
func inverseDWT2D(buffer []int16) []int16 {
	if len(buffer) < TilePixels {
		return nil
	}

	var temp [TilePixels]int16

	// Level 3 (8x8) -> level 2 (16x16), level 2 -> level 1 (32x32),
	// level 1 -> full 64x64 tile.
	idwtLevel(buffer, temp[:], offsetHL3, 8)
	idwtLevel(buffer, temp[:], offsetHL2, 16)
	idwtLevel(buffer, temp[:], offsetHL1, 32)

	return buffer
}

// idwtLevel combines one level's four size x size subbands (HL, LH, HH, LL,
// packed contiguously starting at offset) into a (2*size)x(2*size) block,
// written back in place at offset.
func idwtLevel(buffer, temp []int16, offset, size int) {
	size2 := size * size
	hlOfs := offset
	lhOfs := offset + size2
	hhOfs := offset + 2*size2
	llOfs := offset + 3*size2

	total := size * 2

	lDst, hDst := 0, total*size
	for y := 0; y < size; y++ {
		idwtRow(buffer[llOfs+y*size:], buffer[hlOfs+y*size:], temp[lDst:], size)
		lDst += total
		idwtRow(buffer[lhOfs+y*size:], buffer[hhOfs+y*size:], temp[hDst:], size)
		hDst += total
	}

	lSrc, hSrc := 0, total*size
	for x := 0; x < total; x++ {
		idwtColumn(temp, lSrc+x, hSrc+x, buffer, offset+x, total, size)
	}
}

// idwtRow performs the horizontal pass of the 5/3 LeGall inverse lifting
// scheme on one row: low holds the LL/LH coefficients, high the HL/HH ones.
func idwtRow(low, high, dst []int16, halfSize int) {
	dst[0] = low[0] - ((high[0] + high[0] + 1) >> 1)
	for n := 1; n < halfSize; n++ {
		dst[n*2] = low[n] - ((high[n-1] + high[n] + 1) >> 1)
	}
	for n := 0; n < halfSize-1; n++ {
		dst[n*2+1] = (high[n] << 1) + ((dst[n*2] + dst[n*2+2]) >> 1)
	}
	n := halfSize - 1
	dst[n*2+1] = (high[n] << 1) + ((dst[n*2] + dst[n*2]) >> 1)
}

// idwtColumn performs the vertical pass, combining a column of the
// horizontal pass's L and H halves into the final spatial-domain column.
func idwtColumn(src []int16, lOfs, hOfs int, dst []int16, dstOfs, stride, halfSize int) {
	l0 := src[lOfs]
	h0 := src[hOfs]
	dst[dstOfs] = l0 - ((h0 + h0 + 1) >> 1)

	for n := 1; n < halfSize; n++ {
		ln := src[lOfs+n*stride]
		hPrev := src[hOfs+(n-1)*stride]
		hn := src[hOfs+n*stride]
		dst[dstOfs+n*2*stride] = ln - ((hPrev + hn + 1) >> 1)
	}

	for n := 0; n < halfSize-1; n++ {
		hn := src[hOfs+n*stride]
		en := dst[dstOfs+n*2*stride]
		enNext := dst[dstOfs+(n*2+2)*stride]
		dst[dstOfs+(n*2+1)*stride] = (hn << 1) + ((en + enNext) >> 1)
	}

	n := halfSize - 1
	hn := src[hOfs+n*stride]
	en := dst[dstOfs+n*2*stride]
	dst[dstOfs+(n*2+1)*stride] = (hn << 1) + ((en + en) >> 1)
}
