// Package fetcher downloads batches of static documents in parallel.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"ozzus/vendor-check/internal/artifacts"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
)

const (
	DefaultMaxWorkers = 25
	userAgent         = "vendor-check/1.0"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Result describes one URL of a batch. Err is nil when the file was written.
type Result struct {
	URL   string
	Path  string
	Bytes int64
	Err   error
}

type Options struct {
	MaxWorkers int
	Timeout    time.Duration
	Client     *http.Client
	Logger     *slog.Logger
}

type Fetcher struct {
	client     *http.Client
	fs         afero.Fs
	maxWorkers int
	log        *slog.Logger
}

func New(fs afero.Fs, opts Options) *Fetcher {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = DefaultMaxWorkers
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Fetcher{
		client:     client,
		fs:         fs,
		maxWorkers: opts.MaxWorkers,
		log:        log,
	}
}

func (f *Fetcher) MaxWorkers() int {
	return f.maxWorkers
}

// FetchAll downloads every URL into dest with at most min(MaxWorkers, len(urls))
// requests in flight. A failed URL never cancels its siblings; failures are
// reported in the returned slice, which is ordered like urls.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string, dest artifacts.Destination) []Result {
	results := make([]Result, len(urls))
	if len(urls) == 0 {
		return results
	}

	workers := min(f.maxWorkers, len(urls))
	p := pool.New().WithMaxGoroutines(workers)

	for i, rawURL := range urls {
		p.Go(func() {
			results[i] = f.fetch(ctx, rawURL, dest)
		})
	}
	p.Wait()

	for _, r := range results {
		if r.Err != nil {
			f.log.Warn("document fetch failed", "url", r.URL, "error", r.Err)
			continue
		}
		f.log.Debug("document fetched", "url", r.URL, "path", r.Path, "bytes", r.Bytes)
	}

	return results
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, dest artifacts.Destination) Result {
	result := Result{URL: rawURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		result.Err = fmt.Errorf("create request: %w", err)
		return result
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		result.Err = fmt.Errorf("execute request: %w", err)
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		result.Err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		return result
	}

	// Name the file after the final URL, as redirects may rename the document.
	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	name := Filename(finalURL)
	target := dest.File(name)
	tmp := target + ".tmp"

	out, err := f.fs.Create(tmp)
	if err != nil {
		result.Err = fmt.Errorf("create file: %w", err)
		return result
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = f.fs.Remove(tmp)
		result.Err = fmt.Errorf("write file: %w", err)
		return result
	}

	if err := f.fs.Rename(tmp, target); err != nil {
		_ = f.fs.Remove(tmp)
		result.Err = fmt.Errorf("rename file: %w", err)
		return result
	}

	result.Path = target
	result.Bytes = written
	return result
}

// Filename derives the local file name a URL is saved under.
func Filename(rawURL string) string {
	name := ""
	if parsed, err := url.Parse(rawURL); err == nil {
		name = path.Base(parsed.Path)
	}

	name = strings.TrimSpace(name)
	if name == "" || name == "/" || name == "." {
		return "download"
	}

	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" || name == "." || name == ".." {
		return "download"
	}

	return filepath.Base(name)
}
