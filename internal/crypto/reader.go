package crypto

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrShortRead is returned when the source ends part way through a read.
	// Nothing is decrypted in that case.
	ErrShortRead = errors.New("crypto: short read from source")

	// ErrClosed is returned by reads on a closed Reader.
	ErrClosed = errors.New("crypto: reader closed")
)

// Reader decrypts data as it is read from an underlying source.
//
// Every Read of len(p) bytes pulls exactly len(p) bytes from the source and
// decrypts them as an independent buffer starting at offset 0. Block
// boundaries are therefore relative to each call, not to the stream: two
// 4-byte reads do not decrypt the same as one 8-byte read. Callers must read
// with the same span sizes the data was encrypted with.
//
// A Reader owns its source; Close closes it when it is an io.Closer.
type Reader struct {
	src    io.Reader
	cipher *XXTEA
	raw    []byte
	closed bool
}

// NewReader wraps src with a decrypting Reader using the default tail cipher.
func NewReader(src io.Reader, key Key) *Reader {
	return NewReaderWithCipher(src, NewXXTEA(key))
}

// NewReaderWithCipher wraps src with a decrypting Reader using c.
func NewReaderWithCipher(src io.Reader, c *XXTEA) *Reader {
	return &Reader{src: src, cipher: c}
}

// Open opens the named file and returns a Reader that owns it.
func Open(path string, key Key) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("crypto: open %s: %w", path, err)
	}
	return NewReader(f, key), nil
}

// Read fills p with exactly len(p) decrypted bytes.
//
// It returns io.EOF when the source is exhausted before the call, and an error
// wrapping both ErrShortRead and io.ErrUnexpectedEOF when the source ends part
// way through p. On any error n is 0.
func (r *Reader) Read(p []byte) (n int, err error) {
	if r.closed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	got, err := io.ReadFull(r.src, p)
	r.raw = append(r.raw, p[:got]...)
	switch {
	case err == nil:
	case errors.Is(err, io.ErrUnexpectedEOF):
		return 0, fmt.Errorf("%w: want %d bytes, got %d: %w", ErrShortRead, len(p), got, err)
	case err == io.EOF: //nolint:errorlint // io.ReadFull returns io.EOF unwrapped
		return 0, io.EOF
	default:
		return 0, fmt.Errorf("crypto: read source: %w", err)
	}

	r.cipher.Decrypt(p, 0, len(p))
	return len(p), nil
}

// ReadN reads and decrypts exactly n bytes into a new slice.
func (r *Reader) ReadN(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("crypto: negative read size %d", n)
	}
	buf := make([]byte, n)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Encrypted returns the raw bytes pulled from the source so far, including
// those of a failed short read. The slice must not be modified.
func (r *Reader) Encrypted() []byte {
	return r.raw
}

// Offset returns the number of raw bytes pulled from the source so far.
func (r *Reader) Offset() int64 {
	return int64(len(r.raw))
}

// Close closes the source if it implements io.Closer. Subsequent calls
// return nil.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var _ io.ReadCloser = (*Reader)(nil)
