package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/counterteams-service/internal/delivery/http/handler"
	"github.com/user/counterteams-service/internal/delivery/http/middleware"
	"github.com/user/counterteams-service/internal/entity"
)

func New(h *handler.Handler, bosses []entity.Boss) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Get("/status", h.HandleStatus)
		r.Get("/refresh", h.HandleRefresh)
		r.Post("/refresh", h.HandleRefresh)
		r.Get("/images/{key}", h.HandleImage)
		r.Get("/teams/{boss}", h.HandleTeamByParam)

		// Legacy per-boss paths, e.g. /api/giovanniTeam.
		for _, boss := range bosses {
			r.Get("/"+boss.ID+"Team", h.HandleTeam(boss.ID))
		}
	})

	return r
}
