// Package testdata resolves named image/mask cases, downloading them once
// into a local cache directory.
package testdata

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"voxtract/internal/logger"
)

// ErrCaseUnresolved is returned when an image/mask pair cannot be produced;
// extraction must not proceed without one.
var ErrCaseUnresolved = errors.New("testdata: test case could not be resolved")

// Case names a downloadable image/mask pair.
type Case struct {
	Name     string
	ImageURL string
	MaskURL  string
}

// Fetcher downloads case files with an on-disk cache keyed by URL.
type Fetcher struct {
	client   *http.Client
	cacheDir string
	log      logger.Logger
}

func NewFetcher(cacheDir string, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Fetcher{
		client:   &http.Client{Timeout: 2 * time.Minute},
		cacheDir: cacheDir,
		log:      log,
	}
}

// Resolve returns local paths for the case's image and mask, downloading
// whatever the cache is missing. Failure of either file resolves nothing.
func (f *Fetcher) Resolve(ctx context.Context, c Case) (imagePath, maskPath string, err error) {
	imagePath, err = f.fetch(ctx, c.Name+"_image", c.ImageURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s image: %v", ErrCaseUnresolved, c.Name, err)
	}
	maskPath, err = f.fetch(ctx, c.Name+"_mask", c.MaskURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s mask: %v", ErrCaseUnresolved, c.Name, err)
	}
	return imagePath, maskPath, nil
}

func (f *Fetcher) fetch(ctx context.Context, stem, rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.New("empty URL")
	}

	local := filepath.Join(f.cacheDir, stem+"_"+cacheKey(rawURL)+remoteExt(rawURL))
	if info, err := os.Stat(local); err == nil && info.Size() > 0 {
		f.log.Debug("testdata", "cache hit", map[string]interface{}{"path": local})
		return local, nil
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	tmp := local + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", tmp, err)
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}
	if written == 0 {
		os.Remove(tmp)
		return "", fmt.Errorf("download %s: empty body", rawURL)
	}

	if err := os.Rename(tmp, local); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalize %s: %w", local, err)
	}

	f.log.Info("testdata", "case file downloaded", map[string]interface{}{
		"url":   rawURL,
		"path":  local,
		"bytes": written,
	})
	return local, nil
}

func cacheKey(rawURL string) string {
	sum := sha1.Sum([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:12]
}

func remoteExt(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return path.Ext(parsed.Path)
}
