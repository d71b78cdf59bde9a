package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storycut/storycut-agent/internal/config"
	"github.com/storycut/storycut-agent/internal/names"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/segments", listSegmentsHandler(cfg))
		r.Get("/segments/{id}", getSegmentHandler(cfg))
		r.Post("/segments/{id}/media", acquireMediaHandler(cfg))
		r.Post("/segments/{id}/clips", recordClipHandler(cfg))
		r.Post("/segments/{id}/archive", archiveLinkHandler(cfg))
		r.Get("/fps", getFPSHandler(cfg))
		r.Put("/fps", setFPSHandler(cfg))
		r.Get("/dedup", dedupHandler(cfg))
		r.Get("/composition", compositionHandler(cfg))
		r.Post("/export/frames", exportFramesHandler(cfg))
		r.Post("/export/edl", exportEDLHandler(cfg))
		r.Get("/history", historyHandler(cfg))
		r.Get("/names/{count}", namesHandler(cfg))
		r.Get("/media/file", mediaFileHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  config.Version,
			UptimeS:  uptime,
			Segments: cfg.Service.SegmentCount(),
			Clips:    len(cfg.Service.Composition().Clips),
		})
	}
}

func listSegmentsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, SegmentListResponse{
			Count: cfg.Service.SegmentCount(),
			IDs:   cfg.Service.SegmentIDs(),
		})
	}
}

func getSegmentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := segmentID(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "segment id must be an integer", "BAD_REQUEST")
			return
		}

		view, err := cfg.Service.Segment(id)
		if err != nil {
			WriteServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, SegmentToResponse(view))
	}
}

func setFPSHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetFPSRequest
		if err := decodeAndValidate(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "fps must be a positive number", "BAD_REQUEST")
			return
		}

		if err := cfg.Service.SetFPS(req.FPS); err != nil {
			WriteServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, FPSResponse{FPS: req.FPS, Set: true})
	}
}

func getFPSHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fps, set := cfg.Service.FPS()
		WriteJSON(w, http.StatusOK, FPSResponse{FPS: fps, Set: set})
	}
}

func acquireMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := segmentID(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "segment id must be an integer", "BAD_REQUEST")
			return
		}

		var req AcquireMediaRequest
		if err := decodeAndValidate(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "url is required and must be valid", "BAD_REQUEST")
			return
		}

		res, err := cfg.Service.AcquireMedia(r.Context(), id, req.URL, req.Extra)
		if err != nil {
			WriteServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusCreated, AcquireToResponse(res))
	}
}

// recordClipHandler places a file that is already in the media directory
// (or otherwise resolvable by the editor) onto the timeline without going
// through acquisition.
func recordClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := segmentID(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "segment id must be an integer", "BAD_REQUEST")
			return
		}

		var req RecordClipRequest
		if err := decodeAndValidate(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "filename is required", "BAD_REQUEST")
			return
		}

		clip, err := cfg.Service.RecordClip(id, req.Filename, req.SourceURL, req.Extra)
		if err != nil {
			WriteServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusCreated, ClipResponse{
			Filename:      clip.Filename,
			StartFrame:    clip.StartFrame,
			DurationFrame: clip.DurationFrame,
			Track:         clip.Track,
			SourceURL:     clip.SourceURL,
			Extra:         clip.Extra,
		})
	}
}

func archiveLinkHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := segmentID(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "segment id must be an integer", "BAD_REQUEST")
			return
		}

		var req ArchiveLinkRequest
		if err := decodeAndValidate(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "url is required and must be valid", "BAD_REQUEST")
			return
		}

		if err := cfg.Service.ArchiveLink(id, req.URL); err != nil {
			WriteServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func dedupHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := r.URL.Query().Get("url")
		if url == "" {
			WriteError(w, http.StatusBadRequest, "url is required", "BAD_REQUEST")
			return
		}

		filename, ok := cfg.Service.Dedup(url)
		WriteJSON(w, http.StatusOK, DedupResponse{URL: url, Downloaded: ok, Filename: filename})
	}
}

func compositionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Service.Composition())
	}
}

func exportFramesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := cfg.Service.FrameExport()
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, doc)
	}
}

func historyHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if s := r.URL.Query().Get("limit"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				limit = n
			}
		}

		acquisitions, err := cfg.Service.History(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list history", "INTERNAL_ERROR")
			return
		}

		resp := HistoryResponse{Acquisitions: make([]HistoryEntryResponse, len(acquisitions))}
		for i, a := range acquisitions {
			resp.Acquisitions[i] = AcquisitionToResponse(a)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func namesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := strconv.Atoi(chi.URLParam(r, "count"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "count must be an integer", "BAD_REQUEST")
			return
		}

		generated, err := names.Generate(count)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusOK, NamesResponse{Names: generated})
	}
}

func mediaFileHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}

		if err := cfg.Playback.ServeMedia(w, r, name); err != nil {
			WriteServiceError(w, err)
		}
	}
}

func segmentID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}
