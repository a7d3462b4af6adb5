package rfx

// dequantize reverses the per-subband quantization an RFX encoder applies
// before entropy coding: coefficient <<= (quant value - 1).
func dequantize(buffer []int16, quant *SubbandQuant) {
	if quant == nil || len(buffer) < TilePixels {
		return
	}

	dequantBlock(buffer[offsetHL1:offsetHL1+sizeL1], quant.HL1)
	dequantBlock(buffer[offsetLH1:offsetLH1+sizeL1], quant.LH1)
	dequantBlock(buffer[offsetHH1:offsetHH1+sizeL1], quant.HH1)

	dequantBlock(buffer[offsetHL2:offsetHL2+sizeL2], quant.HL2)
	dequantBlock(buffer[offsetLH2:offsetLH2+sizeL2], quant.LH2)
	dequantBlock(buffer[offsetHH2:offsetHH2+sizeL2], quant.HH2)

	dequantBlock(buffer[offsetHL3:offsetHL3+sizeL3], quant.HL3)
	dequantBlock(buffer[offsetLH3:offsetLH3+sizeL3], quant.LH3)
	dequantBlock(buffer[offsetHH3:offsetHH3+sizeL3], quant.HH3)
	dequantBlock(buffer[offsetLL3:offsetLL3+sizeL3], quant.LL3)
}

func dequantBlock(data []int16, quantValue uint8) {
	if quantValue <= 1 {
		return
	}
	shift := quantValue - 1
	for i := range data {
		data[i] <<= shift
	}
}
