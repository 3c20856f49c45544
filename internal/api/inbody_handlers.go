package api

import (
	"net/http"

	"github.com/calcount/calcount/internal/store"
)

type SaveInBodyRequest struct {
	RecommendedCalories *flexInt        `json:"recommendedCalories"`
	Analysis            *store.Analysis `json:"analysis"`
}

func (h *APIHandler) ListInBodyHandler(w http.ResponseWriter, r *http.Request) {
	analyses, err := h.inbody.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "", "Failed to fetch InBody analyses")
		return
	}
	writeJSON(w, http.StatusOK, analyses)
}

func (h *APIHandler) LatestInBodyHandler(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.inbody.Latest(r.Context())
	if err != nil {
		writeServiceError(w, err, "No InBody analysis saved yet", "Failed to fetch InBody analyses")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (h *APIHandler) SaveInBodyHandler(w http.ResponseWriter, r *http.Request) {
	var req SaveInBodyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.RecommendedCalories == nil || req.Analysis == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields: recommendedCalories, analysis")
		return
	}

	saved, err := h.inbody.Save(r.Context(), int(*req.RecommendedCalories), *req.Analysis)
	if err != nil {
		writeServiceError(w, err, "", "Failed to create InBody analysis")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *APIHandler) DeleteInBodyHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.inbody.Delete(r.Context(), r.URL.Query().Get("id")); err != nil {
		writeServiceError(w, err, "InBody analysis not found", "Failed to delete InBody analysis")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
