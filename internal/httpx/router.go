package httpx

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"net/http"
	"time"
)

type RouterConfig struct {
	JWTSecret      []byte
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
	// Health reports readiness of the backing stores; nil means always healthy.
	Health func(ctx context.Context) error
}

// NewRouter mounts every marketplace under /api/{marketplace}.
func NewRouter(cfg RouterConfig, logger zerolog.Logger, markets ...*MarketplaceHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RealIP,
		hlog.NewHandler(logger),
		hlog.RequestIDHandler("req_id", "X-Request-Id"),
		hlog.MethodHandler("method"),
		hlog.URLHandler("url"),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request")
		}),
		middleware.Recoverer,
		middleware.Timeout(cfg.RequestTimeout),
		NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Limit,
	)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(r.Context()); err != nil {
				hlog.FromRequest(r).Warn().Err(err).Msg("health check")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(Identity(cfg.JWTSecret))
		for _, m := range markets {
			r.Mount("/"+string(m.market.ID), m.Routes())
		}
	})

	return cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", idempotencyHeader},
		AllowCredentials: true,
	}).Handler(r)
}
