package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/storycut/storycut-agent/internal/export"
)

func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExportEDLRequest
		if err := decodeAndValidate(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		comp := cfg.Service.Composition()
		if len(comp.Clips) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "composition has no clips", "EMPTY_COMPOSITION")
			return
		}

		projectName := export.SanitizeTitle(req.ProjectName, 120)
		if projectName == "" {
			projectName = export.SanitizeTitle(comp.Name, 120)
		}
		if projectName == "" {
			projectName = "storycut_export"
		}

		edl := export.GenerateEDL(comp, cfg.MediaDir)
		outputPath := filepath.Join(req.OutputDir, projectName+".edl")
		if err := os.WriteFile(outputPath, []byte(edl), 0o644); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to write export file", "PERSIST_FAILED")
			return
		}

		WriteJSON(w, http.StatusOK, ExportEDLResponse{
			Status:     "ok",
			OutputPath: outputPath,
			ClipCount:  len(comp.Clips),
		})
	}
}
