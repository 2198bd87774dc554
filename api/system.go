package api

import (
	"net/http"

	"github.com/garnizeh/candidatures/internal/transfer"
)

type SystemHandler struct{}

func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "service": "candidatures"}, http.StatusOK)
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"version": version, "buildTime": buildTime}, http.StatusOK)
	}
}

// CSVTemplateHandler serves the import template.
func (h *SystemHandler) CSVTemplateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="template_candidatures.csv"`)
	if err := transfer.WriteTemplate(w); err != nil {
		logger.Error("failed to write csv template", "err", err)
	}
}
