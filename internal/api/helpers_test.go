package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/storycut/storycut-agent/internal/archive"
	"github.com/storycut/storycut-agent/internal/compose"
	"github.com/storycut/storycut-agent/internal/history"
	"github.com/storycut/storycut-agent/internal/media"
	"github.com/storycut/storycut-agent/internal/playback"
	"github.com/storycut/storycut-agent/internal/segments"
	"github.com/storycut/storycut-agent/internal/timeline"
)

const testToken = "test-token"

type fakeFetcher struct {
	filename string
	err      error
}

func (f *fakeFetcher) FetchImage(ctx context.Context, rawURL string) (string, error) {
	return f.filename, f.err
}

func (f *fakeFetcher) Probe(ctx context.Context, rawURL string) error { return f.err }

type fakeDownloader struct {
	result media.DownloadResult
	err    error
}

func (f *fakeDownloader) Download(ctx context.Context, videoID string) (media.DownloadResult, error) {
	return f.result, f.err
}

type fakeRepo struct {
	acquisitions []*history.Acquisition
}

func (f *fakeRepo) CreateAcquisition(ctx context.Context, a *history.Acquisition) error {
	f.acquisitions = append(f.acquisitions, a)
	return nil
}

func (f *fakeRepo) GetAcquisition(ctx context.Context, id string) (*history.Acquisition, error) {
	return nil, nil
}

func (f *fakeRepo) ListAcquisitions(ctx context.Context, limit int) ([]*history.Acquisition, error) {
	return f.acquisitions, nil
}

func (f *fakeRepo) ListAcquisitionsBySegment(ctx context.Context, segmentID int) ([]*history.Acquisition, error) {
	return nil, nil
}

func (f *fakeRepo) UpdateAcquisitionStatus(ctx context.Context, id, status, filename, errorMsg string) error {
	for _, a := range f.acquisitions {
		if a.ID == id {
			a.Status = status
			a.Filename = filename
			a.Error = errorMsg
		}
	}
	return nil
}

func (f *fakeRepo) CountAcquisitions(ctx context.Context) (int, error) {
	return len(f.acquisitions), nil
}

func (f *fakeRepo) GetConfig(ctx context.Context, key string) (string, error) {
	if key == "auth_token" {
		return testToken, nil
	}
	return "", nil
}

func (f *fakeRepo) SetConfig(ctx context.Context, key, value string) error { return nil }

func newTestConfig(t *testing.T) (ServerConfig, string) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	segDoc := `[
		{"id": 5, "text": "hello world", "start": 10.0, "end": 12.5},
		{"id": 6, "text": "next line", "start": 12.5, "end": 14.0}
	]`
	segPath := filepath.Join(dir, "segments.json")
	if err := os.WriteFile(segPath, []byte(segDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	store := segments.NewStore(logger)
	store.Load(segPath, filepath.Join(dir, "terms.json"))

	mediaDir := filepath.Join(dir, "media")
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		t.Fatal(err)
	}

	repo := &fakeRepo{}
	svc := compose.NewService(compose.Config{
		Segments:   store,
		Clock:      timeline.NewClock(),
		Timeline:   timeline.Load(filepath.Join(dir, "composition.json"), 30, logger),
		Archive:    archive.Load(filepath.Join(dir, "archive.json"), logger),
		Index:      media.LoadIndex(filepath.Join(dir, "downloads.json"), logger),
		History:    repo,
		Fetcher:    &fakeFetcher{filename: "img-abc.jpg"},
		Downloader: &fakeDownloader{result: media.DownloadResult{Filename: "vid.mp4", Uploader: "Chan"}},
		ExportPath: filepath.Join(dir, "segments_frames.json"),
		Logger:     logger,
	})

	return ServerConfig{
		Port:       0,
		MediaDir:   mediaDir,
		Service:    svc,
		Repository: repo,
		Playback:   playback.NewServer(mediaDir, logger),
		Logger:     logger,
		StartTime:  time.Now(),
	}, dir
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}
