package crypto

import "math/bits"

// ByteCipher is the chained byte-wise cipher used for fragments too short
// for word mixing. Each byte is offset and masked by the key bytes, then
// rotated by an amount derived from the previous ciphertext byte:
//
//	c[i] = rotr8((p[i] + kb[i%16]>>2) ^ rotl8(kb[15-i%16], (c[i-1]+n-i)%7), ^c[i-1]%7)
//
// with c[-1] = 0 and n the span length.
type ByteCipher struct {
	kb [16]byte
}

// NewByteCipher returns a ByteCipher over the key's little-endian bytes.
func NewByteCipher(key Key) *ByteCipher {
	c := &ByteCipher{}
	copy(c.kb[:], key.Bytes())
	return c
}

// EncryptBytes encrypts b in place.
func (c *ByteCipher) EncryptBytes(b []byte) {
	n := len(b)
	var prev byte
	for i := range b {
		x := b[i] + c.kb[i%16]>>2
		x ^= bits.RotateLeft8(c.kb[15-i%16], (int(prev)+n-i)%7)
		x = bits.RotateLeft8(x, -int(^uint32(prev)%7))
		b[i] = x
		prev = x
	}
}

// DecryptBytes decrypts b in place.
func (c *ByteCipher) DecryptBytes(b []byte) {
	n := len(b)
	var prev byte
	for i := range b {
		enc := b[i]
		x := bits.RotateLeft8(enc, int(^uint32(prev)%7))
		x ^= bits.RotateLeft8(c.kb[15-i%16], (int(prev)+n-i)%7)
		b[i] = x - c.kb[i%16]>>2
		prev = enc
	}
}

var _ TailCipher = (*ByteCipher)(nil)
