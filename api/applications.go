package api

import (
	"net/http"

	"github.com/garnizeh/candidatures/internal/models"
	"github.com/garnizeh/candidatures/internal/tracker"
)

type ApplicationsHandler struct {
	svc *tracker.Service
}

func NewApplicationsHandler(svc *tracker.Service) *ApplicationsHandler {
	return &ApplicationsHandler{svc: svc}
}

func (h *ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	apps, err := h.svc.ListApplications(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, apps, http.StatusOK)
}

func (h *ApplicationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req tracker.CreateApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	app, err := h.svc.CreateApplication(r.Context(), owner, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, app, http.StatusCreated)
}

func (h *ApplicationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	app, err := h.svc.GetApplication(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, app, http.StatusOK)
}

func (h *ApplicationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req tracker.UpdateApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	app, err := h.svc.UpdateApplication(r.Context(), owner, id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, app, http.StatusOK)
}

func (h *ApplicationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.DeleteApplication(r.Context(), owner, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type followUpResponse struct {
	Success     bool                `json:"success"`
	Application *models.Application `json:"application,omitempty"`
}

// FollowUp records a follow-up. An id the owner does not have still answers
// success with no application in the body.
func (h *ApplicationsHandler) FollowUp(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req tracker.FollowUpRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	app, err := h.svc.RecordFollowUp(r.Context(), owner, id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, followUpResponse{Success: true, Application: app}, http.StatusOK)
}

func (h *ApplicationsHandler) Search(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	apps, err := h.svc.Search(r.Context(), owner, q.Get("q"), q.Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, apps, http.StatusOK)
}
