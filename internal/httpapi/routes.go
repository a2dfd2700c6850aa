package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes assembles the full chi router: request-ID/real-IP/panic-recovery
// middleware, CORS, health/ready/metrics, and every ladder endpoint.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/queue", func(r chi.Router) {
		r.Post("/enter", h.EnterQueue)
		r.Post("/leave", h.LeaveQueue)
		r.Get("/status/{uid}", h.QueueStatus)
	})

	r.Route("/matches", func(r chi.Router) {
		r.Get("/{id}", h.GetMatch)
		r.Post("/{id}/confirm", h.ConfirmMatch)
		r.Post("/{id}/report", h.RecordReport)
	})

	r.Route("/replays", func(r chi.Router) {
		r.Post("/upload", h.UploadReplay)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/resolve", h.Resolve)
		r.Post("/adjust_mmr", h.AdjustMMR)
		r.Post("/remove_from_queue", h.RemoveFromQueue)
		r.Post("/reset_aborts", h.ResetAborts)
		r.Post("/clear_queue", h.ClearQueue)
		r.Post("/ban", h.Ban)
	})

	return r
}
