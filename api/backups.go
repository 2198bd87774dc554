package api

import (
	"context"
	"net/http"

	"github.com/garnizeh/candidatures/internal/backup"
	"github.com/garnizeh/candidatures/pkg/apperror"
)

// BackupStore is the part of backup.Manager the HTTP layer uses.
type BackupStore interface {
	Snapshot(ctx context.Context) (string, error)
	List(ctx context.Context) ([]backup.Info, error)
}

type BackupsHandler struct {
	store BackupStore
}

func NewBackupsHandler(store BackupStore) *BackupsHandler {
	return &BackupsHandler{store: store}
}

func (h *BackupsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, []backup.Info{}, http.StatusOK)
		return
	}

	list, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, r, apperror.Store(err))
		return
	}

	writeJSON(w, list, http.StatusOK)
}

// Create takes a snapshot on demand. It answers 503 when backups are disabled.
func (h *BackupsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, errorResponse{Error: "backups are disabled", RequestID: RequestIDFromContext(r.Context())}, http.StatusServiceUnavailable)
		return
	}

	name, err := h.store.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, apperror.Store(err))
		return
	}

	writeJSON(w, map[string]string{"name": name}, http.StatusCreated)
}
