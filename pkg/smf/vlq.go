package smf

// maxVarLenBytes bounds the encoded form of a 32-bit value: five 7-bit
// groups cover 35 bits.
const maxVarLenBytes = 5

// appendVarLen appends v to dst in the MIDI variable-length quantity
// form: 7-bit groups emitted most significant first, the continuation bit
// 0x80 set on every byte but the last. Zero encodes as the single byte
// 0x00.
func appendVarLen(dst []byte, v uint32) []byte {
	var scratch [maxVarLenBytes]byte
	i := len(scratch) - 1
	scratch[i] = byte(v & 0x7F)
	for v >>= 7; v != 0; v >>= 7 {
		i--
		scratch[i] = byte(v&0x7F) | 0x80
	}
	return append(dst, scratch[i:]...)
}

// decodeVarLen reads one variable-length quantity from the front of p and
// reports the value and the number of bytes consumed. Truncated input and
// sequences longer than maxVarLenBytes yield (0, 0).
func decodeVarLen(p []byte) (uint32, int) {
	var v uint32
	for n := 0; n < len(p) && n < maxVarLenBytes; n++ {
		c := p[n]
		v = v<<7 | uint32(c&0x7F)
		if c&0x80 == 0 {
			return v, n + 1
		}
	}
	return 0, 0
}
