package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const maxImageBytes = 32 * 1024 * 1024 // 32 MB cap per fetched image

// Fetcher downloads remote images into the media directory. Server errors
// and network failures are retried with exponential backoff; client errors
// are permanent.
type Fetcher interface {
	FetchImage(ctx context.Context, rawURL string) (string, error)
	Probe(ctx context.Context, rawURL string) error
}

type HTTPFetcher struct {
	mediaDir string
	client   *http.Client
	logger   *slog.Logger
}

func NewHTTPFetcher(mediaDir string, timeout time.Duration, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		mediaDir: mediaDir,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// FetchImage GETs the URL and writes the body to a fresh file in the media
// directory, returning the saved filename (basename only).
func (f *HTTPFetcher) FetchImage(ctx context.Context, rawURL string) (string, error) {
	if err := os.MkdirAll(f.mediaDir, 0755); err != nil {
		return "", fmt.Errorf("cannot create media dir: %w", err)
	}

	var filename string
	operation := func() error {
		name, err := f.fetchOnce(ctx, rawURL)
		if err != nil {
			return err
		}
		filename = name
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", fmt.Errorf("%w: fetch %s: %v", ErrUpstream, rawURL, err)
	}

	f.logger.Info("image fetched", "url", rawURL, "filename", filename)
	return filename, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", backoff.Permanent(err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("remote returned HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", backoff.Permanent(fmt.Errorf("remote returned HTTP %d", resp.StatusCode))
	}

	filename := savedImageName(rawURL, resp.Header.Get("Content-Type"))
	dest := filepath.Join(f.mediaDir, filename)

	out, err := os.Create(dest)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(resp.Body, maxImageBytes)); err != nil {
		os.Remove(dest)
		return "", err
	}

	return filename, nil
}

// Probe issues a HEAD request to check the URL is reachable.
func (f *HTTPFetcher) Probe(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: probe %s returned HTTP %d", ErrUpstream, rawURL, resp.StatusCode)
	}
	return nil
}

// savedImageName builds a collision-free local filename, preferring the
// URL path extension and falling back to the response content type.
func savedImageName(rawURL, contentType string) string {
	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	if ext == "" && contentType != "" {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	if ext == "" {
		ext = ".img"
	}
	return "img-" + uuid.New().String() + ext
}
