package asset

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format identifies a decrypted payload.
type Format string

const (
	Unknown Format = ""
	JPEG    Format = "jpeg"
	PNG     Format = "png"
	BMP     Format = "bmp"
	TGA     Format = "tga"
	WebP    Format = "webp"
	WAV     Format = "wav"
	OGG     Format = "ogg"
	MP3     Format = "mp3"
	Beatmap Format = "osu" // "osu file format vN" text
	Text    Format = "text"
)

// IsImage reports whether f can be decoded by Decode.
func (f Format) IsImage() bool {
	switch f {
	case JPEG, PNG, BMP, TGA, WebP:
		return true
	}
	return false
}

// Detect sniffs data's leading bytes. name is only consulted for formats
// without a magic number (TGA) and for plain text.
func Detect(data []byte, name string) Format {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return JPEG
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return PNG
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return WebP
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return WAV
	case bytes.HasPrefix(data, []byte("OggS")):
		return OGG
	case bytes.HasPrefix(data, []byte("ID3")), len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return MP3
	case bytes.HasPrefix(data, []byte("BM")) && len(data) >= 26:
		return BMP
	}

	// Beatmaps may start with a UTF-8 byte order mark.
	text := bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	if bytes.HasPrefix(text, []byte("osu file format")) {
		return Beatmap
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".tga":
		return TGA
	case ".osu", ".osb", ".txt":
		return Text
	}
	return Unknown
}
