package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const maxStderrBytes = 8 * 1024 // 8 KB tail of stderr kept for diagnostics

// Downloader fetches a hosted video into the media directory via the
// external yt-dlp tool. It is the acquisition collaborator for KindVideo
// URLs; the agent only needs the resulting filename and uploader label.
type Downloader interface {
	Download(ctx context.Context, videoID string) (DownloadResult, error)
}

// DownloadResult describes a completed download.
type DownloadResult struct {
	Filename string // basename of the saved media file
	Uploader string // channel/author label from the video metadata
	Duration time.Duration
}

// DownloaderConfig holds the subprocess downloader's configuration.
type DownloaderConfig struct {
	PythonPath string        // path to python binary; empty = auto-detect
	ModuleName string        // default "yt_dlp"
	MediaDir   string        // destination for downloaded files
	Timeout    time.Duration // per-download timeout
	Logger     *slog.Logger
}

// SubprocessDownloader is the production implementation of Downloader.
type SubprocessDownloader struct {
	cfg    DownloaderConfig
	python string // resolved python path
}

// NewDownloader creates a SubprocessDownloader, resolving the Python
// binary path.
func NewDownloader(cfg DownloaderConfig) (*SubprocessDownloader, error) {
	python, err := resolvePython(cfg.PythonPath)
	if err != nil {
		return nil, fmt.Errorf("cannot locate python: %w", err)
	}

	if err := os.MkdirAll(cfg.MediaDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create media dir: %w", err)
	}

	cfg.Logger.Info("video downloader initialised",
		"python", python,
		"module", cfg.ModuleName,
		"media_dir", cfg.MediaDir,
	)

	return &SubprocessDownloader{cfg: cfg, python: python}, nil
}

// Download runs yt-dlp for the given video id. The tool writes the media
// file plus an info-json sidecar; the sidecar supplies the final filename
// and the uploader label.
func (d *SubprocessDownloader) Download(ctx context.Context, videoID string) (DownloadResult, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	videoURL := "https://www.youtube.com/watch?v=" + videoID
	outTemplate := filepath.Join(d.cfg.MediaDir, "%(id)s.%(ext)s")

	cmdArgs := []string{
		"-m", d.cfg.ModuleName,
		"--format", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		"--output", outTemplate,
		"--merge-output-format", "mp4",
		"--restrict-filenames",
		"--write-info-json",
		"--quiet",
		"--no-warnings",
		videoURL,
	}

	cmd := exec.CommandContext(ctx, d.python, cmdArgs...)

	// Capture stderr with bounded buffer
	var stderrBuf bytes.Buffer
	cmd.Stderr = io.Writer(&limitedWriter{w: &stderrBuf, limit: maxStderrBytes})
	cmd.Stdout = io.Discard

	d.cfg.Logger.Info("executing video download", "video_id", videoID)

	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		d.cfg.Logger.Warn("video download failed",
			"video_id", videoID,
			"exit_code", exitCode,
			"duration_ms", elapsed.Milliseconds(),
			"stderr_tail", truncate(stderrBuf.String(), 512),
		)
		return DownloadResult{}, fmt.Errorf("%w: yt-dlp exited %d: %s", ErrUpstream, exitCode, truncate(stderrBuf.String(), 512))
	}

	result, err := d.readSidecar(videoID)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	result.Duration = elapsed

	d.cfg.Logger.Info("video download succeeded",
		"video_id", videoID,
		"filename", result.Filename,
		"uploader", result.Uploader,
		"duration_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

type infoSidecar struct {
	ID       string `json:"id"`
	Ext      string `json:"ext"`
	Uploader string `json:"uploader"`
	Channel  string `json:"channel"`
}

// readSidecar parses the <id>.info.json file yt-dlp writes next to the
// media file and verifies the media file exists.
func (d *SubprocessDownloader) readSidecar(videoID string) (DownloadResult, error) {
	sidecarPath := filepath.Join(d.cfg.MediaDir, videoID+".info.json")
	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("cannot read download metadata: %v", err)
	}

	var info infoSidecar
	if err := json.Unmarshal(data, &info); err != nil {
		return DownloadResult{}, fmt.Errorf("cannot parse download metadata: %v", err)
	}

	ext := info.Ext
	if ext == "" {
		ext = "mp4"
	}
	filename := videoID + "." + ext
	if _, err := os.Stat(filepath.Join(d.cfg.MediaDir, filename)); err != nil {
		// Merged downloads always end up as mp4 regardless of the
		// sidecar's pre-merge extension.
		filename = videoID + ".mp4"
		if _, err := os.Stat(filepath.Join(d.cfg.MediaDir, filename)); err != nil {
			return DownloadResult{}, fmt.Errorf("downloaded file missing for %s", videoID)
		}
	}

	uploader := info.Uploader
	if uploader == "" {
		uploader = info.Channel
	}

	return DownloadResult{Filename: filename, Uploader: uploader}, nil
}

// resolvePython finds a usable python binary.
func resolvePython(preferred string) (string, error) {
	if preferred != "" {
		if p, err := exec.LookPath(preferred); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("configured python %q not found", preferred)
	}
	for _, name := range []string{"python3", "python"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no python binary found on PATH (tried python3, python)")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter is an io.Writer that keeps only the last `limit` bytes.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		// Keep only the tail
		b := lw.w.Bytes()
		lw.w.Reset()
		lw.w.Write(b[len(b)-lw.limit:])
	}
	return n, nil
}

// StubDownloader is used when no python environment is available; every
// download reports an upstream failure.
type StubDownloader struct {
	logger *slog.Logger
}

func NewStubDownloader(logger *slog.Logger) *StubDownloader {
	return &StubDownloader{logger: logger}
}

func (s *StubDownloader) Download(ctx context.Context, videoID string) (DownloadResult, error) {
	s.logger.Warn("downloader unavailable, rejecting video acquisition", "video_id", videoID)
	return DownloadResult{}, fmt.Errorf("%w: downloader not configured", ErrUpstream)
}

var _ Downloader = (*SubprocessDownloader)(nil)
var _ Downloader = (*StubDownloader)(nil)

// SanitizeFilename strips path components so an acquired filename can be
// safely joined under the media dir. Inputs that reduce to no real name
// (empty, ".", "..", bare separators) come back empty; filepath.Base
// would map those to "." and a clip named "." must never be placed.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	name = strings.TrimSpace(filepath.Base(name))
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return ""
	}
	return name
}
