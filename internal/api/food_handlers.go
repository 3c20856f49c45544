package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calcount/calcount/internal/core"
	"github.com/calcount/calcount/internal/store"
	"github.com/calcount/calcount/internal/utils"
)

type CreateEntryRequest struct {
	Name      string           `json:"name"`
	Calories  *flexInt         `json:"calories"`
	Meal      string           `json:"meal"`
	Date      string           `json:"date"`
	Nutrition *store.Nutrition `json:"nutrition,omitempty"`
}

type UpdateEntryRequest struct {
	ID        string                `json:"id"`
	Name      *string               `json:"name,omitempty"`
	Calories  *flexInt              `json:"calories,omitempty"`
	Meal      *string               `json:"meal,omitempty"`
	Nutrition *store.NutritionPatch `json:"nutrition,omitempty"`
}

func (h *APIHandler) ListEntriesHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.tracker.ListEntries(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, err, "", "Failed to fetch food entries")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *APIHandler) CreateEntryHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Calories == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields: name, calories, meal, date")
		return
	}

	entry, err := h.tracker.AddEntry(r.Context(), core.NewEntry{
		Name:      req.Name,
		Calories:  int(*req.Calories),
		Meal:      req.Meal,
		Date:      req.Date,
		Nutrition: req.Nutrition,
	})
	if err != nil {
		writeServiceError(w, err, "", "Failed to create food entry")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *APIHandler) UpdateEntryHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdateEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.tracker.UpdateEntry(r.Context(), req.ID, core.EntryUpdate{
		Name:      req.Name,
		Calories:  req.Calories.intPtr(),
		Meal:      req.Meal,
		Nutrition: req.Nutrition,
	})
	if err != nil {
		writeServiceError(w, err, "Food entry not found", "Failed to update food entry")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *APIHandler) DeleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.DeleteEntry(r.Context(), r.URL.Query().Get("id")); err != nil {
		writeServiceError(w, err, "Food entry not found", "Failed to delete food entry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dates, err := h.tracker.HistoryDates(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err, "", "Failed to fetch history dates")
		return
	}
	writeJSON(w, http.StatusOK, dates)
}

func (h *APIHandler) HistorySummaryHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	summaries, err := h.tracker.HistorySummaries(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err, "", "Failed to fetch history")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *APIHandler) DaySummaryHandler(w http.ResponseWriter, r *http.Request) {
	h.writeDaySummary(w, r, chi.URLParam(r, "date"))
}

// TodaySummaryHandler uses the server's local date.
func (h *APIHandler) TodaySummaryHandler(w http.ResponseWriter, r *http.Request) {
	h.writeDaySummary(w, r, utils.Today())
}

func (h *APIHandler) writeDaySummary(w http.ResponseWriter, r *http.Request, date string) {
	summary, err := h.tracker.DaySummary(r.Context(), date)
	if err != nil {
		writeServiceError(w, err, "", "Failed to build day summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
