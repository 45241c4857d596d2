package crypto

import (
	"encoding/binary"
	"fmt"
)

const (
	// Delta is the TEA-family round constant (golden ratio * 2^32).
	Delta = uint32(0x9E3779B9)

	// BlockWords is the number of words in a super-block.
	BlockWords = 16
	// BlockSize is the size of a super-block in bytes.
	BlockSize = BlockWords * 4
)

// TailCipher transforms the 0-7 bytes left over once every whole super-block
// and the trailing word block have been processed. DecryptBytes must invert
// EncryptBytes for the same key.
type TailCipher interface {
	EncryptBytes(b []byte)
	DecryptBytes(b []byte)
}

// XXTEA implements Corrected Block TEA over arbitrary-length byte ranges.
//
// A range is split into 64-byte super-blocks, then a single variable-width
// block covering the remaining whole words (only when there are at least two),
// then the tail cipher for whatever bytes are left. Every byte goes through
// exactly one of the three paths.
type XXTEA struct {
	key  Key
	tail TailCipher
}

// NewXXTEA returns an engine using ByteCipher for sub-word tails.
func NewXXTEA(key Key) *XXTEA {
	return NewXXTEAWithTail(key, NewByteCipher(key))
}

// NewXXTEAWithTail returns an engine delegating sub-word tails to tail.
func NewXXTEAWithTail(key Key, tail TailCipher) *XXTEA {
	if tail == nil {
		panic("crypto/xxtea: nil tail cipher")
	}
	return &XXTEA{key: key, tail: tail}
}

// Key returns the engine's key.
func (c *XXTEA) Key() Key { return c.key }

// Encrypt encrypts buf[start:start+count] in place.
func (c *XXTEA) Encrypt(buf []byte, start, count int) {
	c.crypt(buf, start, count, true)
}

// Decrypt decrypts buf[start:start+count] in place.
func (c *XXTEA) Decrypt(buf []byte, start, count int) {
	c.crypt(buf, start, count, false)
}

func (c *XXTEA) crypt(buf []byte, start, count int, encrypt bool) {
	if start < 0 || count < 0 || start > len(buf) || count > len(buf)-start {
		panic(fmt.Sprintf("crypto/xxtea: range [%d:+%d] out of bounds for buffer of %d bytes", start, count, len(buf)))
	}

	full := count / BlockSize
	leftover := count % BlockSize

	off := start
	for i := 0; i < full; i++ {
		if encrypt {
			encryptFixed(&c.key, buf, off)
		} else {
			decryptFixed(&c.key, buf, off)
		}
		off += BlockSize
	}

	if leftover == 0 {
		return
	}

	if n := leftover / 4; n > 1 {
		if encrypt {
			encryptVariable(&c.key, buf[off:], n)
		} else {
			decryptVariable(&c.key, buf[off:], n)
		}

		leftover -= n * 4
		if leftover == 0 {
			return
		}
		off += n * 4
	}

	// Cap the tail so the tail cipher cannot reach past its span.
	tail := buf[off : off+leftover : off+leftover]
	if encrypt {
		c.tail.EncryptBytes(tail)
	} else {
		c.tail.DecryptBytes(tail)
	}
}

// encryptFixed encrypts the super-block at data[off:]. It is a no-op when
// fewer than BlockSize bytes remain after off.
func encryptFixed(key *Key, data []byte, off int) {
	if len(data)-off < BlockSize {
		return
	}

	var v [BlockWords]uint32
	loadWords(v[:], data[off:])
	EncryptWords(v[:], key)
	storeWords(data[off:], v[:])
}

// decryptFixed is the inverse of encryptFixed, with the same no-op guard.
func decryptFixed(key *Key, data []byte, off int) {
	if len(data)-off < BlockSize {
		return
	}

	var v [BlockWords]uint32
	loadWords(v[:], data[off:])
	DecryptWords(v[:], key)
	storeWords(data[off:], v[:])
}

// encryptVariable encrypts the first n words of data, 2 <= n <= BlockWords.
func encryptVariable(key *Key, data []byte, n int) {
	var buf [BlockWords]uint32
	v := buf[:n]

	loadWords(v, data)
	EncryptWords(v, key)
	storeWords(data, v)
}

func decryptVariable(key *Key, data []byte, n int) {
	var buf [BlockWords]uint32
	v := buf[:n]

	loadWords(v, data)
	DecryptWords(v, key)
	storeWords(data, v)
}

// EncryptWords runs the XXTEA encryption rounds over v in place.
// It panics if v holds fewer than two words.
func EncryptWords(v []uint32, key *Key) {
	m := len(v)
	if m < 2 {
		panic("crypto/xxtea: word block must hold at least two words")
	}

	last := m - 1
	var sum uint32
	z := v[last]
	for rounds := 6 + 52/m; rounds > 0; rounds-- {
		sum += Delta
		e := (sum >> 2) & 3
		for p := 0; p < last; p++ {
			y := v[p+1]
			v[p] += mx(y, z, sum, key[uint32(p&3)^e])
			z = v[p]
		}
		y := v[0]
		v[last] += mx(y, z, sum, key[uint32(last&3)^e])
		z = v[last]
	}
}

// DecryptWords inverts EncryptWords. It panics if v holds fewer than two
// words.
func DecryptWords(v []uint32, key *Key) {
	m := len(v)
	if m < 2 {
		panic("crypto/xxtea: word block must hold at least two words")
	}

	last := m - 1
	rounds := 6 + 52/m
	// rounds*Delta is never zero: Delta is odd and rounds < 2^32.
	sum := uint32(rounds) * Delta
	y := v[0]
	for ; sum != 0; sum -= Delta {
		e := (sum >> 2) & 3
		for p := last; p > 0; p-- {
			z := v[p-1]
			v[p] -= mx(y, z, sum, key[uint32(p&3)^e])
			y = v[p]
		}
		z := v[last]
		v[0] -= mx(y, z, sum, key[e])
		y = v[0]
	}
}

func mx(y, z, sum, k uint32) uint32 {
	return (((z >> 5) ^ (y << 2)) + ((y >> 3) ^ (z << 4))) ^ ((sum ^ y) + (k ^ z))
}

func loadWords(v []uint32, b []byte) {
	for i := range v {
		v[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
}

func storeWords(b []byte, v []uint32) {
	for i, w := range v {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
}
