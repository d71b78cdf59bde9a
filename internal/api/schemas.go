package api

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/storycut/storycut-agent/internal/compose"
	"github.com/storycut/storycut-agent/internal/history"
)

var validate = validator.New()

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	Segments int    `json:"segments"`
	Clips    int    `json:"clips"`
}

type SegmentListResponse struct {
	Count int   `json:"count"`
	IDs   []int `json:"ids"`
}

type SegmentResponse struct {
	ID              int      `json:"id"`
	Sentence        string   `json:"sentence"`
	Start           float64  `json:"start"`
	End             float64  `json:"end"`
	DurationSeconds float64  `json:"duration_seconds"`
	YouTubeTerms    []string `json:"youtube_terms,omitempty"`
	SearchTerms     []string `json:"search_engine_terms,omitempty"`
	MovieSuggestion []string `json:"movie_suggestion,omitempty"`
	ArchivedLinks   []string `json:"archived_links,omitempty"`
	FPS             float64  `json:"fps,omitempty"`
}

type SetFPSRequest struct {
	FPS float64 `json:"fps" validate:"required,gt=0"`
}

type FPSResponse struct {
	FPS float64 `json:"fps"`
	Set bool    `json:"set"`
}

type AcquireMediaRequest struct {
	URL   string            `json:"url" validate:"required,url"`
	Extra map[string]string `json:"extra,omitempty"`
}

type ClipResponse struct {
	Filename      string            `json:"filename"`
	StartFrame    int               `json:"start_frame"`
	DurationFrame int               `json:"duration_frame"`
	Track         int               `json:"track"`
	SourceURL     string            `json:"source_url"`
	Extra         map[string]string `json:"extra,omitempty"`
}

type AcquireMediaResponse struct {
	Kind     string        `json:"kind"`
	Filename string        `json:"filename,omitempty"`
	Reused   bool          `json:"reused,omitempty"`
	Clip     *ClipResponse `json:"clip,omitempty"`
}

type RecordClipRequest struct {
	Filename  string            `json:"filename" validate:"required"`
	SourceURL string            `json:"source_url"`
	Extra     map[string]string `json:"extra,omitempty"`
}

type ArchiveLinkRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type DedupResponse struct {
	URL        string `json:"url"`
	Downloaded bool   `json:"downloaded"`
	Filename   string `json:"filename,omitempty"`
}

type ExportEDLRequest struct {
	OutputDir   string `json:"output_dir" validate:"required"`
	ProjectName string `json:"project_name,omitempty"`
}

type ExportEDLResponse struct {
	Status     string `json:"status"`
	OutputPath string `json:"output_path"`
	ClipCount  int    `json:"clip_count"`
}

type HistoryEntryResponse struct {
	ID        string `json:"id"`
	SegmentID int    `json:"segment_id"`
	Kind      string `json:"kind"`
	URL       string `json:"url"`
	Filename  string `json:"filename,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type HistoryResponse struct {
	Acquisitions []HistoryEntryResponse `json:"acquisitions"`
}

type NamesResponse struct {
	Names []string `json:"names"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func SegmentToResponse(v compose.SegmentView) SegmentResponse {
	resp := SegmentResponse{
		ID:              v.Segment.ID,
		Sentence:        v.Segment.Text,
		Start:           v.Segment.Start,
		End:             v.Segment.End,
		DurationSeconds: v.Segment.Duration(),
	}
	if v.FPSSet {
		resp.FPS = v.FPS
	}
	if v.Terms != nil {
		resp.YouTubeTerms = v.Terms.YouTubeTerms
		resp.SearchTerms = v.Terms.SearchEngineTerms
		resp.MovieSuggestion = v.Terms.MovieSuggestions
	}
	for _, e := range v.Archived {
		resp.ArchivedLinks = append(resp.ArchivedLinks, e.URL)
	}
	return resp
}

func AcquireToResponse(res compose.AcquireResult) AcquireMediaResponse {
	resp := AcquireMediaResponse{
		Kind:     string(res.Kind),
		Filename: res.Filename,
		Reused:   res.Reused,
	}
	if res.Clip != nil {
		resp.Clip = &ClipResponse{
			Filename:      res.Clip.Filename,
			StartFrame:    res.Clip.StartFrame,
			DurationFrame: res.Clip.DurationFrame,
			Track:         res.Clip.Track,
			SourceURL:     res.Clip.SourceURL,
			Extra:         res.Clip.Extra,
		}
	}
	return resp
}

func AcquisitionToResponse(a *history.Acquisition) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:        a.ID,
		SegmentID: a.SegmentID,
		Kind:      a.Kind,
		URL:       a.URL,
		Filename:  a.Filename,
		Status:    a.Status,
		Error:     a.Error,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339),
	}
}
