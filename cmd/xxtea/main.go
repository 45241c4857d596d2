package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"osz2-tools/internal/batch"
	"osz2-tools/internal/config"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	key := flag.String("key", "", "Key: 32 hex digits or four comma-separated words")
	mode := flag.String("mode", "", "decrypt or encrypt (default: decrypt)")
	input := flag.String("in", "", "Input file or directory")
	output := flag.String("out", "", "Output file or directory (default: next to input)")
	offset := flag.Int("offset", 0, "Plain header bytes to copy through untouched")
	chunk := flag.Int("chunk", 0, "Encrypted span size in bytes (default: whole file)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	webp := flag.Bool("webp", false, "Write WebP previews of decrypted images")
	webpSize := flag.Int("webp-size", 0, "Longest preview side in pixels (default: 512)")
	pattern := flag.String("pattern", "", "Only process relative paths matching this regexp")

	flag.Parse()

	if *input == "" && flag.NArg() > 0 {
		*input = flag.Arg(0)
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		Key:        *key,
		Mode:       *mode,
		Input:      *input,
		Output:     *output,
		Pattern:    *pattern,
		Offset:     *offset,
		ChunkSize:  *chunk,
		ExportWebP: *webp,
		WebPSize:   *webpSize,
		Workers:    *workers,
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}
	cipherKey, err := cfg.CipherKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	jobs, err := batch.Jobs(cfg.Input, cfg.Output, cfg.Pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing input: %v\n", err)
		os.Exit(1)
	}
	if len(jobs) == 0 {
		fmt.Println("No files to process.")
		os.Exit(0)
	}

	// Print summary
	fmt.Printf("XXTEA %s\n", cfg.Mode)
	fmt.Printf("Files: %d, Workers: %d\n", len(jobs), cfg.Workers)
	if cfg.Offset > 0 || cfg.ChunkSize > 0 {
		fmt.Printf("Offset: %d, Chunk: %d\n", cfg.Offset, cfg.ChunkSize)
	}
	fmt.Printf("Output: %s\n", cfg.Output)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		Key:         cipherKey,
		Encrypt:     cfg.Mode == config.ModeEncrypt,
		Offset:      cfg.Offset,
		ChunkSize:   cfg.ChunkSize,
		ExportWebP:  cfg.ExportWebP,
		WebPMaxSize: cfg.WebPMaxSize,
		Workers:     cfg.Workers,
	}

	results := batch.Run(batchCfg, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	formats := map[string]int{}
	for _, r := range results {
		if r.Success {
			success++
			if r.Format != "" {
				formats[string(r.Format)]++
			}
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Processed: %d/%d\n", success, len(jobs))
	for f, n := range formats {
		fmt.Printf("  %s: %d\n", f, n)
	}

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest for directory runs
	if info, err := os.Stat(cfg.Input); err == nil && info.IsDir() {
		manifestPath := filepath.Join(cfg.Output, "manifest.json")
		os.MkdirAll(cfg.Output, 0755)
		if err := batch.WriteManifest(manifestPath, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
		} else {
			fmt.Printf("Manifest: %s\n", manifestPath)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
