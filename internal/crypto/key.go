package crypto

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrKeySize is returned when key material does not describe exactly four
// 32-bit words.
var ErrKeySize = errors.New("crypto: key must be four 32-bit words (16 bytes)")

// Key is the 128-bit XXTEA key. Word order matters: round key selection
// indexes it with (p&3)^e.
type Key [4]uint32

// KeyFromBytes loads a key from 16 little-endian bytes.
func KeyFromBytes(b []byte) (Key, error) {
	var k Key
	if len(b) != 16 {
		return k, fmt.Errorf("%w: got %d bytes", ErrKeySize, len(b))
	}
	for i := range k {
		k[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return k, nil
}

// KeyFromWords copies a four-word slice into a Key.
func KeyFromWords(w []uint32) (Key, error) {
	var k Key
	if len(w) != len(k) {
		return k, fmt.Errorf("%w: got %d words", ErrKeySize, len(w))
	}
	copy(k[:], w)
	return k, nil
}

// ParseKey parses either 32 hex digits (the key's 16 little-endian bytes,
// optionally 0x-prefixed) or four comma-separated unsigned integers in any
// base strconv accepts with base 0 ("1,0x2,3,4").
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)

	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 4 {
			return Key{}, fmt.Errorf("%w: got %d words in %q", ErrKeySize, len(parts), s)
		}
		var k Key
		for i, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 0, 32)
			if err != nil {
				return Key{}, fmt.Errorf("crypto: parse key word %d: %w", i, err)
			}
			k[i] = uint32(v)
		}
		return k, nil
	}

	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("crypto: parse key %q: %w", s, err)
	}
	return KeyFromBytes(b)
}

// Bytes returns the key's 16 little-endian bytes.
func (k Key) Bytes() []byte {
	b := make([]byte, 16)
	for i, w := range k {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}

// String returns the hex form accepted by ParseKey.
func (k Key) String() string {
	return hex.EncodeToString(k.Bytes())
}
