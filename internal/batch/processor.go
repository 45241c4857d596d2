package batch

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"osz2-tools/internal/asset"
	"osz2-tools/internal/crypto"
)

// Config holds all shared settings for a batch run.
type Config struct {
	Key     crypto.Key
	Encrypt bool

	// Offset plain bytes are copied through untouched. The rest of the file
	// is one encrypted span, or independently encrypted ChunkSize-byte
	// spans when ChunkSize > 0.
	Offset    int
	ChunkSize int

	ExportWebP  bool
	WebPMaxSize int
	Workers     int

	// Quiet disables the progress ticker.
	Quiet bool
}

// Job is one file to process.
type Job struct {
	Name string // slash-separated path relative to the input root
	Src  string
	Dst  string
}

// Result holds the outcome of processing one file.
type Result struct {
	Name    string
	Output  string
	Preview string
	Format  asset.Format
	Size    int
	Success bool
	Error   string
}

// Jobs lists the files under input. A plain file yields a single job writing
// to output; a directory is walked and mirrored under output. When pattern is
// non-empty only relative paths matching it are kept.
func Jobs(input, output, pattern string) ([]Job, error) {
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		if re, err = regexp.Compile(pattern); err != nil {
			return nil, fmt.Errorf("batch: pattern %q: %w", pattern, err)
		}
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("batch: stat %s: %w", input, err)
	}
	if !info.IsDir() {
		name := filepath.Base(input)
		if re != nil && !re.MatchString(name) {
			return nil, nil
		}
		return []Job{{Name: name, Src: input, Dst: output}}, nil
	}

	var jobs []Job
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Don't descend into our own output
			if path != input && path == filepath.Clean(output) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(input, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if re != nil && !re.MatchString(name) {
			return nil
		}
		jobs = append(jobs, Job{Name: name, Src: path, Dst: filepath.Join(output, rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: walk %s: %w", input, err)
	}
	return jobs, nil
}

// Run processes all jobs using a worker pool.
func Run(cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		if cfg.Quiet {
			return
		}
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f files/sec\n", p, total, rate)
				}
			}
		}
	}()

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// One engine per worker
			engine := crypto.NewXXTEA(cfg.Key)
			for idx := range jobChan {
				results[idx] = processJob(cfg, engine, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(cfg Config, engine *crypto.XXTEA, job Job) Result {
	res := Result{Name: job.Name, Output: job.Dst}

	data, err := os.ReadFile(job.Src)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Size = len(data)

	if cfg.Offset > len(data) {
		res.Error = fmt.Sprintf("offset %d past end of %d-byte file", cfg.Offset, len(data))
		return res
	}

	if cfg.Encrypt {
		encryptSpans(engine, data, cfg.Offset, cfg.ChunkSize)
	} else if data, err = decryptSpans(engine, data, cfg.Offset, cfg.ChunkSize); err != nil {
		res.Error = err.Error()
		return res
	}

	if err := os.MkdirAll(filepath.Dir(job.Dst), 0755); err != nil {
		res.Error = err.Error()
		return res
	}
	if err := os.WriteFile(job.Dst, data, 0644); err != nil {
		res.Error = err.Error()
		return res
	}

	if cfg.Encrypt {
		res.Success = true
		return res
	}

	res.Format = asset.Detect(data, job.Name)
	if cfg.ExportWebP && res.Format.IsImage() {
		preview := job.Dst + ".webp"
		if err := writePreview(preview, data, job.Name, cfg.WebPMaxSize); err != nil {
			res.Error = fmt.Sprintf("WebP preview: %v", err)
			return res
		}
		res.Preview = preview
	}

	res.Success = true
	return res
}

func encryptSpans(engine *crypto.XXTEA, data []byte, offset, chunk int) {
	if chunk <= 0 {
		engine.Encrypt(data, offset, len(data)-offset)
		return
	}
	for pos := offset; pos < len(data); pos += chunk {
		engine.Encrypt(data, pos, min(chunk, len(data)-pos))
	}
}

// decryptSpans mirrors encryptSpans. Chunked files are read back through a
// crypto.Reader, one Read per chunk, so each chunk restarts its own span.
func decryptSpans(engine *crypto.XXTEA, data []byte, offset, chunk int) ([]byte, error) {
	if chunk <= 0 {
		engine.Decrypt(data, offset, len(data)-offset)
		return data, nil
	}

	out := make([]byte, offset, len(data))
	copy(out, data[:offset])

	r := crypto.NewReaderWithCipher(bytes.NewReader(data[offset:]), engine)
	defer r.Close()

	for remaining := len(data) - offset; remaining > 0; {
		p, err := r.ReadN(min(chunk, remaining))
		if err != nil {
			return nil, fmt.Errorf("batch: decrypt chunk at %d: %w", offset+int(r.Offset()), err)
		}
		out = append(out, p...)
		remaining -= len(p)
	}
	return out, nil
}

func writePreview(path string, data []byte, name string, maxSize int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := asset.Export(f, data, name, maxSize); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
