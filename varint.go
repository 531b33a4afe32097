package rseq

import "io"

// ReadVarLen reads a MIDI-style variable-length quantity: big-endian groups
// of seven bits, the high bit of each byte marking a continuation.
func ReadVarLen(r io.ByteReader) (uint32, error) {
	var v uint32
	for {
		c, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v = v<<7 | uint32(c&0x7F)
		if c&0x80 == 0 {
			return v, nil
		}
	}
}

// AppendVarLen appends the variable-length encoding of v to dst and returns
// the extended slice. Zero encodes as a single 0x00 byte.
func AppendVarLen(dst []byte, v uint32) []byte {
	n := 0
	for w := v; w > 0x7F; w >>= 7 {
		n++
	}
	for i := n; i >= 0; i-- {
		b := byte(v>>(7*uint(i))) & 0x7F
		if i > 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}
