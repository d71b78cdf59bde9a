// Package compose is the operator-facing service tying the transcript to
// the frame clock, the timeline, and the acquisition collaborators.
// Handlers call into this package only.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/storycut/storycut-agent/internal/archive"
	"github.com/storycut/storycut-agent/internal/history"
	"github.com/storycut/storycut-agent/internal/media"
	"github.com/storycut/storycut-agent/internal/segments"
	"github.com/storycut/storycut-agent/internal/timeline"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrFPSUnset is returned by operations that need a frame rate before
	// one has been supplied.
	ErrFPSUnset = errors.New("fps has not been set")
)

// Service owns request-level orchestration. One mutex serializes the
// mutating operations so clip track allocation and the persisted documents
// cannot interleave.
type Service struct {
	mu sync.Mutex

	segments   *segments.Store
	clock      *timeline.Clock
	timeline   *timeline.Store
	archive    *archive.Log
	index      *media.Index
	history    history.Repository
	fetcher    media.Fetcher
	downloader media.Downloader
	exportPath string
	logger     *slog.Logger

	now func() time.Time
}

// Config collects the service's collaborators.
type Config struct {
	Segments   *segments.Store
	Clock      *timeline.Clock
	Timeline   *timeline.Store
	Archive    *archive.Log
	Index      *media.Index
	History    history.Repository
	Fetcher    media.Fetcher
	Downloader media.Downloader
	ExportPath string
	Logger     *slog.Logger
}

func NewService(cfg Config) *Service {
	return &Service{
		segments:   cfg.Segments,
		clock:      cfg.Clock,
		timeline:   cfg.Timeline,
		archive:    cfg.Archive,
		index:      cfg.Index,
		history:    cfg.History,
		fetcher:    cfg.Fetcher,
		downloader: cfg.Downloader,
		exportPath: cfg.ExportPath,
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// SegmentView is the read model for a single transcript segment.
type SegmentView struct {
	Segment  *segments.Segment
	Terms    *segments.SearchTerms
	Archived []archive.Entry
	FPS      float64
	FPSSet   bool
}

// Segment returns the view for one segment. Terms may be nil when no
// search suggestions were loaded for it.
func (s *Service) Segment(id int) (SegmentView, error) {
	seg, terms, err := s.segments.Get(id)
	if err != nil {
		return SegmentView{}, err
	}

	fps, set := s.clock.FPS()
	return SegmentView{
		Segment:  seg,
		Terms:    terms,
		Archived: s.archive.Entries(id),
		FPS:      fps,
		FPSSet:   set,
	}, nil
}

// SegmentCount returns the number of loaded transcript segments.
func (s *Service) SegmentCount() int {
	return s.segments.Count()
}

// SegmentIDs returns all segment ids in ascending order.
func (s *Service) SegmentIDs() []int {
	return s.segments.IDs()
}

// SetFPS validates and applies a new frame rate, then persists the
// composition timebase. Frames already on the timeline are never
// recomputed. A persist failure leaves the new fps active in memory.
func (s *Service) SetFPS(fps float64) error {
	if err := s.clock.SetFPS(fps); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.timeline.SetTimebase(int(math.Round(fps))); err != nil {
		s.logger.Error("timebase persist failed, fps active in memory only", "fps", fps, "error", err)
		return err
	}

	s.logger.Info("fps updated", "fps", fps)
	return nil
}

// FPS reports the current frame rate and whether one has been set.
func (s *Service) FPS() (float64, bool) {
	return s.clock.FPS()
}

// AcquireResult describes the outcome of one media acquisition.
type AcquireResult struct {
	Kind     media.Kind
	Filename string
	Reused   bool
	Clip     *timeline.Clip
}

// AcquireMedia routes a URL to the matching acquisition path: direct image
// fetch, external video download, or plain-link archival. A clip is
// appended to the timeline only after the media is actually on disk; a
// failed fetch or download never touches the composition. Every attempt is
// recorded in the acquisition history.
func (s *Service) AcquireMedia(ctx context.Context, segmentID int, rawURL string, extra map[string]string) (AcquireResult, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return AcquireResult{}, fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	if _, _, err := s.segments.Get(segmentID); err != nil {
		return AcquireResult{}, err
	}

	kind := media.Classify(rawURL)
	histID := s.recordAttempt(ctx, segmentID, string(kind), rawURL)

	var (
		result AcquireResult
		err    error
	)
	switch kind {
	case media.KindImage:
		result, err = s.acquireImage(ctx, segmentID, rawURL, extra)
	case media.KindVideo:
		result, err = s.acquireVideo(ctx, segmentID, rawURL, extra)
	default:
		result, err = s.acquireLink(segmentID, rawURL)
	}

	if err != nil {
		s.finishAttempt(ctx, histID, history.StatusFailed, "", err.Error())
		return AcquireResult{}, err
	}

	s.finishAttempt(ctx, histID, history.StatusCompleted, result.Filename, "")
	return result, nil
}

func (s *Service) acquireImage(ctx context.Context, segmentID int, rawURL string, extra map[string]string) (AcquireResult, error) {
	filename, reused := s.index.Has(rawURL)
	if !reused {
		fetched, err := s.fetcher.FetchImage(ctx, rawURL)
		if err != nil {
			return AcquireResult{}, err
		}
		filename = fetched

		if err := s.index.Record(rawURL, filename); err != nil {
			// The file is on disk and usable; only the dedup record is lost.
			s.logger.Warn("download index persist failed", "url", rawURL, "error", err)
		}
	} else {
		s.logger.Info("image already on disk, reusing", "url", rawURL, "filename", filename)
	}

	clip, err := s.RecordClip(segmentID, filename, rawURL, extra)
	if err != nil {
		return AcquireResult{}, err
	}
	return AcquireResult{Kind: media.KindImage, Filename: filename, Reused: reused, Clip: clip}, nil
}

func (s *Service) acquireVideo(ctx context.Context, segmentID int, rawURL string, extra map[string]string) (AcquireResult, error) {
	videoID := media.YouTubeID(rawURL)
	if videoID == "" {
		return AcquireResult{}, fmt.Errorf("%w: cannot extract video id from %s", ErrInvalidInput, rawURL)
	}

	res, err := s.downloader.Download(ctx, videoID)
	if err != nil {
		return AcquireResult{}, err
	}

	merged := make(map[string]string, len(extra)+1)
	for k, v := range extra {
		merged[k] = v
	}
	if res.Uploader != "" {
		merged["uploader"] = res.Uploader
	}

	clip, err := s.RecordClip(segmentID, res.Filename, rawURL, merged)
	if err != nil {
		return AcquireResult{}, err
	}
	return AcquireResult{Kind: media.KindVideo, Filename: res.Filename, Clip: clip}, nil
}

func (s *Service) acquireLink(segmentID int, rawURL string) (AcquireResult, error) {
	if err := s.archive.Append(segmentID, rawURL); err != nil {
		return AcquireResult{}, err
	}
	return AcquireResult{Kind: media.KindLink}, nil
}

// RecordClip places an already-acquired file on the timeline: the
// segment's time window is converted to frames with the current clock and
// the clip lands on the next free track for that segment. With no fps set
// the frames degrade to (0, 0); the clip is still placed.
func (s *Service) RecordClip(segmentID int, filename, sourceURL string, extra map[string]string) (*timeline.Clip, error) {
	filename = media.SanitizeFilename(filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}

	seg, _, err := s.segments.Get(segmentID)
	if err != nil {
		return nil, err
	}

	startFrame, durationFrame := s.clock.ToFrames(seg.Start, seg.End)

	s.mu.Lock()
	defer s.mu.Unlock()

	segID := segmentID
	clip := timeline.Clip{
		Filename:      filename,
		StartFrame:    startFrame,
		DurationFrame: durationFrame,
		SourceURL:     sourceURL,
		SegmentID:     &segID,
		Extra:         extra,
	}

	placed, err := s.timeline.Append(clip)
	if err != nil {
		s.logger.Error("composition persist failed, clip kept in memory", "segment_id", segmentID, "error", err)
		return &placed, err
	}

	s.logger.Info("clip placed",
		"segment_id", segmentID,
		"filename", filename,
		"start_frame", placed.StartFrame,
		"duration_frame", placed.DurationFrame,
		"track", placed.Track,
	)
	return &placed, nil
}

// ArchiveLink records a plain link for a segment without touching the
// timeline.
func (s *Service) ArchiveLink(segmentID int, rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	if _, _, err := s.segments.Get(segmentID); err != nil {
		return err
	}
	return s.archive.Append(segmentID, rawURL)
}

// Dedup reports whether a URL was already fetched and the filename it was
// saved as.
func (s *Service) Dedup(rawURL string) (string, bool) {
	return s.index.Has(rawURL)
}

// Composition returns a snapshot of the current timeline document.
func (s *Service) Composition() timeline.Composition {
	return s.timeline.Snapshot()
}

// FrameExportSegment is one row of the frame export document.
type FrameExportSegment struct {
	ID            int    `json:"id"`
	Sentence      string `json:"sentence"`
	StartFrame    int    `json:"start_frame"`
	EndFrame      int    `json:"end_frame"`
	DurationFrame int    `json:"duration_frame"`
}

// FrameExportDoc is the persisted frame export document.
type FrameExportDoc struct {
	FPS         float64              `json:"fps"`
	GeneratedAt string               `json:"generated_at"`
	Segments    []FrameExportSegment `json:"segments"`
}

// FrameExport converts every loaded segment's window to frames under the
// current fps, persists the document to the export path, and returns it.
// Requires the fps to be set.
func (s *Service) FrameExport() (FrameExportDoc, error) {
	fps, set := s.clock.FPS()
	if !set {
		return FrameExportDoc{}, ErrFPSUnset
	}

	doc := FrameExportDoc{
		FPS:         fps,
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Segments:    []FrameExportSegment{},
	}

	for _, id := range s.segments.IDs() {
		seg, _, err := s.segments.Get(id)
		if err != nil {
			continue
		}
		startFrame, durationFrame := s.clock.ToFrames(seg.Start, seg.End)
		doc.Segments = append(doc.Segments, FrameExportSegment{
			ID:            seg.ID,
			Sentence:      seg.Text,
			StartFrame:    startFrame,
			EndFrame:      startFrame + durationFrame,
			DurationFrame: durationFrame,
		})
	}

	if err := writeDocument(s.exportPath, doc); err != nil {
		return FrameExportDoc{}, err
	}

	s.logger.Info("frame export written", "path", s.exportPath, "segments", len(doc.Segments), "fps", fps)
	return doc, nil
}

// History returns the most recent acquisition attempts, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*history.Acquisition, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.history.ListAcquisitions(ctx, limit)
}

func (s *Service) recordAttempt(ctx context.Context, segmentID int, kind, url string) string {
	a := &history.Acquisition{
		ID:        history.NewID(),
		SegmentID: segmentID,
		Kind:      kind,
		URL:       url,
		Status:    history.StatusRunning,
		CreatedAt: s.now().UTC(),
		UpdatedAt: s.now().UTC(),
	}
	if err := s.history.CreateAcquisition(ctx, a); err != nil {
		s.logger.Warn("acquisition history insert failed", "segment_id", segmentID, "error", err)
	}
	return a.ID
}

func (s *Service) finishAttempt(ctx context.Context, id, status, filename, errorMsg string) {
	if err := s.history.UpdateAcquisitionStatus(ctx, id, status, filename, errorMsg); err != nil {
		s.logger.Warn("acquisition history update failed", "id", id, "error", err)
	}
}
