package api

import (
	"net/http"

	"ranklist/internal/leaderboard"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig contains all dependencies needed to construct the HTTP router.
// This struct is designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Leaderboard: lb,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Leaderboard is the ranked leaderboard (required).
	Leaderboard *leaderboard.Leaderboard

	// Hub, if set, receives a broadcast for every mutation handled by
	// this router. Nil disables broadcasting.
	Hub *WebSocketHub

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, uses the default development origins.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool

	// AdminKey gates POST /api/clear behind the X-Admin-Key header.
	// Empty disables the check.
	AdminKey string
}

// routerHandlers holds the handler functions for the router.
// This is used internally to pass handlers to route setup.
type routerHandlers struct {
	leaderboard *leaderboard.Leaderboard
	hub         *WebSocketHub
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// It opens no network listeners. When cfg.RateLimiter is nil it creates an
// IPRateLimiter, which starts that limiter's cleanup goroutine; pass a
// pre-built RateLimiter to avoid starting one here.
//
// It can be used in tests with httptest.NewServer.
//
// Example:
//
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/size")
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		leaderboard: cfg.Leaderboard,
		hub:         cfg.Hub,
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/rank", h.handleSetRank)
		r.Delete("/rank/{key}", h.handleRemoveRank)
		r.Get("/rank/{key}", h.handleGetRank)
		r.Get("/top", h.handleTop)
		r.Get("/range", h.handleRange)
		r.Get("/around/{key}", h.handleAround)
		r.Get("/size", h.handleSize)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminKey))
			r.Post("/clear", h.handleClear)
		})
	})

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, map[string]string{"service": "ranklist"})
	})

	return r
}

// GetRateLimiterFromRouter returns cfg.RateLimiter when it is set. Otherwise
// it builds a new IPRateLimiter from the same configuration; that limiter is
// not the one NewRouter created for cfg and shares no state with it.
func GetRateLimiterFromRouter(cfg RouterConfig) *IPRateLimiter {
	if cfg.RateLimiter != nil {
		return cfg.RateLimiter
	}
	rateLimitCfg := DefaultRateLimitConfig
	if cfg.RateLimitConfig != nil {
		rateLimitCfg = *cfg.RateLimitConfig
	}
	return NewIPRateLimiter(rateLimitCfg)
}
