package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"osz2-tools/internal/asset"
	"osz2-tools/internal/crypto"
)

func main() {
	keyFlag := flag.String("key", "", "Key: 32 hex digits or four comma-separated words")
	offset := flag.Int64("offset", 0, "Byte offset of the encrypted span")
	n := flag.Int("n", 256, "Bytes to decrypt (one span)")
	flag.Parse()

	if flag.NArg() != 1 || *keyFlag == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -key KEY [-offset N] [-n BYTES] file")
		os.Exit(2)
	}
	path := flag.Arg(0)

	key, err := crypto.ParseKey(*keyFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if _, err := f.Seek(*offset, io.SeekStart); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Error seeking to %d: %v\n", *offset, err)
		os.Exit(1)
	}

	// Clamp to what is left so short files still dump.
	size := int64(*n)
	if rest := info.Size() - *offset; rest < size {
		size = max(rest, 0)
	}

	r := crypto.NewReader(f, key)
	defer r.Close()

	plain, err := r.ReadN(int(size))
	if err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("File: %s (%d bytes)\n", path, info.Size())
	fmt.Printf("Key: %s\n", key)
	fmt.Printf("Span: offset=%d, size=%d\n", *offset, len(plain))
	format := asset.Detect(plain, path)
	if format == asset.Unknown {
		format = "unknown"
	}
	fmt.Printf("Detected: %s\n", format)

	fmt.Println("\n--- Encrypted ---")
	fmt.Print(hex.Dump(r.Encrypted()))
	fmt.Println("\n--- Decrypted ---")
	fmt.Print(hex.Dump(plain))
}
