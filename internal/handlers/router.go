package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vaughan-dsouza/staffdir/internal/middleware"
	"github.com/vaughan-dsouza/staffdir/internal/utils"
)

type RouterConfig struct {
	Auth           middleware.Authenticator
	Log            *slog.Logger
	CORSOrigins    []string
	LoginRateLimit int
	// TrustProxy rewrites RemoteAddr from X-Forwarded-For / X-Real-IP.
	TrustProxy bool
	// UploadDir is served under /uploads when set.
	UploadDir string
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(requestLogger(cfg.Log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.UploadDir != "" {
		files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
		r.Handle("/uploads/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			files.ServeHTTP(w, r)
		}))
	}

	limiter := middleware.NewRateLimiter(cfg.LoginRateLimit)

	routes := func(r chi.Router) {
		// Public
		r.Group(func(r chi.Router) {
			r.Use(limiter.Handler)

			r.Post("/auth/register", h.Auth.Register)
			r.Post("/auth/login", h.Auth.Login)
		})

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.Auth, cfg.Log))

			r.Get("/auth/me", h.Auth.Me)

			r.Get("/employees", h.Employees.List)
			r.Get("/employees/search", h.Employees.Search)
			r.Get("/employees/{id}", h.Employees.Get)

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/employees", h.Employees.Create)
				r.Put("/employees/{id}", h.Employees.Update)
				r.Delete("/employees/{id}", h.Employees.Delete)
			})
		})
	}

	routes(r)
	r.Route("/api", routes)

	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}
