package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/candidatures/internal/tracker"
)

// CatalogHandler serves certifications and skills.
type CatalogHandler struct {
	svc *tracker.Service
}

func NewCatalogHandler(svc *tracker.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) ListCertifications(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	certs, err := h.svc.ListCertifications(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, certs, http.StatusOK)
}

func (h *CatalogHandler) CreateCertification(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req tracker.CreateCertificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	cert, err := h.svc.CreateCertification(r.Context(), owner, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, cert, http.StatusCreated)
}

func (h *CatalogHandler) DeleteCertification(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.DeleteCertification(r.Context(), owner, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	skills, err := h.svc.ListSkills(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, skills, http.StatusOK)
}

func (h *CatalogHandler) AddSkill(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req tracker.CreateSkillRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	skill, err := h.svc.AddSkill(r.Context(), owner, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, skill, http.StatusCreated)
}

func (h *CatalogHandler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteSkill(r.Context(), owner, mux.Vars(r)["name"]); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) ResetSkills(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	if err := h.svc.ResetSkills(r.Context(), owner); err != nil {
		writeError(w, r, err)
		return
	}

	skills, err := h.svc.ListSkills(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, skills, http.StatusOK)
}
