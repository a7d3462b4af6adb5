package rfx

// differentialDecode reverses the running-sum differential encoding RFX
// applies to the LL3 (DC) subband: each stored value is a delta from the
// previous coefficient. Must run after RLGR decoding, before dequantizing.
func differentialDecode(buffer []int16, size int) {
	if len(buffer) < size {
		return
	}
	for i := 1; i < size; i++ {
		buffer[i] += buffer[i-1]
	}
}
