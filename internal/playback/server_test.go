package playback

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(dir, logger), dir
}

func TestServeMediaFull(t *testing.T) {
	srv, dir := newTestServer(t)
	content := []byte("0123456789")
	if err := os.WriteFile(filepath.Join(dir, "clip.mp4"), content, 0o644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/media/file?name=clip.mp4", nil)
	if err := srv.ServeMedia(rec, req, "clip.mp4"); err != nil {
		t.Fatalf("ServeMedia: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
		t.Errorf("Content-Type = %q, want video/mp4", got)
	}
	if rec.Body.String() != "0123456789" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestServeMediaRange(t *testing.T) {
	srv, dir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/media/file?name=clip.mp4", nil)
	req.Header.Set("Range", "bytes=2-5")
	if err := srv.ServeMedia(rec, req, "clip.mp4"); err != nil {
		t.Fatalf("ServeMedia: %v", err)
	}

	if rec.Code != http.StatusPartialContent {
		t.Errorf("status = %d, want 206", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 2-5/10" {
		t.Errorf("Content-Range = %q", got)
	}
	if rec.Body.String() != "2345" {
		t.Errorf("body = %q, want 2345", rec.Body.String())
	}
}

func TestServeMediaUnsatisfiableRange(t *testing.T) {
	srv, dir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/media/file?name=clip.mp4", nil)
	req.Header.Set("Range", "bytes=100-")
	if err := srv.ServeMedia(rec, req, "clip.mp4"); err != nil {
		t.Fatalf("ServeMedia: %v", err)
	}

	if rec.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Errorf("status = %d, want 416", rec.Code)
	}
}

func TestServeMediaRejectsPaths(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, name := range []string{"", "../secret", "sub/clip.mp4", ".hidden"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/media/file", nil)
		if err := srv.ServeMedia(rec, req, name); err != ErrInvalidName {
			t.Errorf("ServeMedia(%q) error = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestServeMediaMissingFile(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/media/file", nil)
	if err := srv.ServeMedia(rec, req, "missing.mp4"); err != ErrNotFound {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
