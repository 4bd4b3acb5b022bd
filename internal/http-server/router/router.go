package router

import (
	"net/http"

	"watermark-generator/internal/http-server/handler/watermark"
	"watermark-generator/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	WatermarkHandler *watermark.WatermarkHandler
}

func SetupRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/watermarks", func(r chi.Router) {
			r.Post("/render", h.WatermarkHandler.Render)
			r.Post("/jobs", h.WatermarkHandler.SubmitJob)
			r.Get("/jobs/{id}", h.WatermarkHandler.GetJob)
			r.Get("/jobs/{id}/image", h.WatermarkHandler.GetJobImage)
		})

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	})

	return r
}
