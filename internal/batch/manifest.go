package batch

import (
	"encoding/json"
	"os"
	"path/filepath"

	"osz2-tools/internal/asset"
)

// ManifestEntry represents one file in the output manifest.
type ManifestEntry struct {
	Input   string       `json:"input"`
	Output  string       `json:"output"`
	Preview string       `json:"preview,omitempty"`
	Format  asset.Format `json:"format,omitempty"`
	Size    int          `json:"size"`
	Error   string       `json:"error,omitempty"`
}

// WriteManifest writes the results to path as JSON. Output and preview
// paths are stored relative to the manifest's directory.
func WriteManifest(path string, results []Result) error {
	dir := filepath.Dir(path)
	rel := func(p string) string {
		if p == "" {
			return ""
		}
		if r, err := filepath.Rel(dir, p); err == nil {
			return filepath.ToSlash(r)
		}
		return p
	}

	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Input:   r.Name,
			Output:  rel(r.Output),
			Preview: rel(r.Preview),
			Format:  r.Format,
			Size:    r.Size,
			Error:   r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
