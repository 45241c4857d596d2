package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"osz2-tools/internal/crypto"
)

// Modes understood by the batch pipeline.
const (
	ModeDecrypt = "decrypt"
	ModeEncrypt = "encrypt"
)

// ErrNoKey is returned by Validate when no key was configured.
var ErrNoKey = errors.New("config: no key configured")

// Config holds all configurable paths and cipher settings.
type Config struct {
	// Cipher
	Key  string `json:"key"`  // 32 hex digits or four comma-separated words
	Mode string `json:"mode"` // "decrypt" or "encrypt"

	// Paths
	Input   string `json:"input"`
	Output  string `json:"output"`
	Pattern string `json:"pattern"` // regexp on slash-separated relative paths

	// Layout of each file: Offset plain bytes, then the encrypted span,
	// optionally split into independently encrypted ChunkSize-byte chunks.
	Offset    int `json:"offset"`
	ChunkSize int `json:"chunk_size"`

	// Output settings
	ExportWebP  bool `json:"export_webp"`
	WebPMaxSize int  `json:"webp_max_size"`
	Workers     int  `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Key        string
	Mode       string
	Input      string
	Output     string
	Pattern    string
	Offset     int
	ChunkSize  int
	ExportWebP bool
	WebPSize   int
	Workers    int
}

// Resolve applies CLI overrides and fills in defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Key != "" {
		c.Key = flags.Key
	}
	if flags.Mode != "" {
		c.Mode = flags.Mode
	}
	if flags.Input != "" {
		c.Input = flags.Input
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.Pattern != "" {
		c.Pattern = flags.Pattern
	}
	if flags.Offset > 0 {
		c.Offset = flags.Offset
	}
	if flags.ChunkSize > 0 {
		c.ChunkSize = flags.ChunkSize
	}
	if flags.ExportWebP {
		c.ExportWebP = true
	}
	if flags.WebPSize > 0 {
		c.WebPMaxSize = flags.WebPSize
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	c.Mode = strings.ToLower(c.Mode)
	if c.Mode == "" {
		c.Mode = ModeDecrypt
	}

	// Output lands next to the input unless given
	if c.Output == "" && c.Input != "" {
		c.Output = filepath.Clean(c.Input) + "." + c.Mode + "ed"
	}

	if c.WebPMaxSize <= 0 {
		c.WebPMaxSize = 512
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate checks a resolved Config.
func (c *Config) Validate() error {
	if c.Key == "" {
		return ErrNoKey
	}
	if _, err := c.CipherKey(); err != nil {
		return err
	}
	if c.Mode != ModeDecrypt && c.Mode != ModeEncrypt {
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	if c.Input == "" {
		return errors.New("config: no input path")
	}
	if c.Offset < 0 || c.ChunkSize < 0 {
		return fmt.Errorf("config: negative offset (%d) or chunk size (%d)", c.Offset, c.ChunkSize)
	}
	return nil
}

// CipherKey parses the configured key.
func (c *Config) CipherKey() (crypto.Key, error) {
	k, err := crypto.ParseKey(c.Key)
	if err != nil {
		return crypto.Key{}, fmt.Errorf("config: key: %w", err)
	}
	return k, nil
}
