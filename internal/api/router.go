package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/food-entries", func(r chi.Router) {
			r.Get("/", apiHandler.ListEntriesHandler)
			r.Post("/", apiHandler.CreateEntryHandler)
			r.Put("/", apiHandler.UpdateEntryHandler)
			r.Delete("/", apiHandler.DeleteEntryHandler)
		})

		r.Get("/history", apiHandler.HistoryHandler)
		r.Get("/history/summary", apiHandler.HistorySummaryHandler)
		r.Get("/days/today", apiHandler.TodaySummaryHandler)
		r.Get("/days/{date}", apiHandler.DaySummaryHandler)

		r.Get("/settings", apiHandler.GetSettingsHandler)
		r.Post("/settings", apiHandler.SaveSettingHandler)
		r.Put("/settings", apiHandler.SaveSettingHandler)

		r.Route("/inbody", func(r chi.Router) {
			r.Get("/", apiHandler.ListInBodyHandler)
			r.Get("/latest", apiHandler.LatestInBodyHandler)
			r.Post("/", apiHandler.SaveInBodyHandler)
			r.Delete("/", apiHandler.DeleteInBodyHandler)
		})

		// AI-backed
		r.Post("/estimate", apiHandler.EstimateHandler)
		r.Post("/analyze-inbody", apiHandler.AnalyzeInBodyHandler)
	})

	return r
}
