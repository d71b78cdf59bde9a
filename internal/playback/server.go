// Package playback serves acquired media files over HTTP with byte-range
// support so the operator can scrub clips in a browser before placing them.
package playback

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidName = errors.New("invalid media name")
	ErrNotFound    = errors.New("media file not found")
)

type MediaService interface {
	ServeMedia(w http.ResponseWriter, r *http.Request, name string) error
}

// Server serves files out of a single media directory. Requests name files
// by basename only; anything resembling a path is rejected.
type Server struct {
	mediaDir string
	logger   *slog.Logger
}

func NewServer(mediaDir string, logger *slog.Logger) *Server {
	return &Server{mediaDir: mediaDir, logger: logger}
}

func (s *Server) ServeMedia(w http.ResponseWriter, r *http.Request, name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		s.logger.Warn("rejected media name", "name", name)
		return ErrInvalidName
	}

	path := filepath.Join(s.mediaDir, name)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to open media file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat media file: %w", err)
	}

	size := stat.Size()
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)

	byteRange, err := ParseRange(r.Header.Get("Range"), size)
	if err == ErrUnsatisfiable {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	}
	if err != nil && err != ErrInvalidRange {
		return err
	}

	if byteRange == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		io.Copy(w, file)
		return nil
	}

	w.Header().Set("Content-Length", fmt.Sprintf("%d", byteRange.Length()))
	w.Header().Set("Content-Range", byteRange.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)

	if _, err := file.Seek(byteRange.Start, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	io.CopyN(w, file, byteRange.Length())
	return nil
}
