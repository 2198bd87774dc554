package api

import (
	"net/http"

	"github.com/garnizeh/candidatures/internal/tracker"
)

type ProfileHandler struct {
	svc *tracker.Service
}

func NewProfileHandler(svc *tracker.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Profile(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, p, http.StatusOK)
}

func (h *ProfileHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req tracker.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.UpdateContact(r.Context(), owner, req); err != nil {
		writeError(w, r, err)
		return
	}

	h.Get(w, r)
}

func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req tracker.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), owner, req); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
