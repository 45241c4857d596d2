package crypto //nolint:testpackage // shares fixtures with xxtea_test.go

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestByteCipherVectors(t *testing.T) {
	for _, tc := range []struct {
		key        Key
		plain, enc string
	}{
		{testKey, "osz2!!!", "dfe0989375442f"},
		{zeroKey, "abc", "2c316c"},
		{testKey, "0123456789abcdefghijklmnopqrstuvwxyz", "b446d6cd68b1e5fbc321b717a321597bcc1b0e5da452063894fa99e667278238fe81c77b"},
	} {
		t.Run(tc.plain, func(t *testing.T) {
			c := NewByteCipher(tc.key)

			buf := []byte(tc.plain)
			c.EncryptBytes(buf)
			if got := hex.EncodeToString(buf); got != tc.enc {
				t.Errorf("EncryptBytes(%q) = %s, want = %s", tc.plain, got, tc.enc)
			}

			c.DecryptBytes(buf)
			if got, want := string(buf), tc.plain; got != want {
				t.Errorf("DecryptBytes(EncryptBytes(%q)) = %q, want = %q", want, got, want)
			}
		})
	}
}

func TestByteCipherRoundTrip(t *testing.T) {
	for _, key := range []Key{zeroKey, testKey, onesKey} {
		c := NewByteCipher(key)
		for n := 0; n <= 64; n++ {
			want := sequence(n)
			buf := bytes.Clone(want)
			c.EncryptBytes(buf)
			c.DecryptBytes(buf)
			if !bytes.Equal(buf, want) {
				t.Fatalf("key=%v n=%d: DecryptBytes(EncryptBytes(x)) = %x, want = %x", key, n, buf, want)
			}
		}
	}
}

func TestByteCipherChains(t *testing.T) {
	// Changing one byte changes every ciphertext byte after it.
	a, b := []byte("abcdefg"), []byte("abXdefg")
	c := NewByteCipher(testKey)
	c.EncryptBytes(a)
	c.EncryptBytes(b)

	if !bytes.Equal(a[:2], b[:2]) {
		t.Errorf("prefix diverged: %x vs %x", a[:2], b[:2])
	}
	if a[2] == b[2] {
		t.Errorf("changed byte encrypted identically: %x vs %x", a, b)
	}
}
