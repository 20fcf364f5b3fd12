package api

import (
	"log"
	"net/http"

	"ranklist/internal/leaderboard"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with a WebSocket hub for real-time updates.
type Server struct {
	leaderboard *leaderboard.Leaderboard
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer creates a new API server with default production configuration.
//
// It opens no network listener and does not run the WebSocket hub; both
// happen in Start(). It does create the IP rate limiter, which starts its
// cleanup goroutine here; Stop() ends that goroutine.
//
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(lb *leaderboard.Leaderboard, adminKey string) *Server {
	s := &Server{
		leaderboard: lb,
		wsHub:       NewWebSocketHub(),
	}

	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)

	s.router = NewRouter(RouterConfig{
		Leaderboard: lb,
		Hub:         s.wsHub,
		RateLimiter: s.rateLimiter,
		AdminKey:    adminKey,
	})

	s.setupWebSocketRoutes()

	return s
}

// setupWebSocketRoutes adds WebSocket-specific routes to the router.
// These routes need access to the wsHub instance, so they can't be part
// of the generic NewRouter factory.
func (s *Server) setupWebSocketRoutes() {
	s.router.Get("/ws", s.handleWS)
}

// Start runs the WebSocket hub loop in a goroutine and then serves HTTP on
// addr, blocking until the listener fails.
//
// Call this method only once. To stop the server, signal the process.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()

	log.Printf("API server starting on %s", addr)

	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
// Use this in integration tests instead of calling Start().
//
// Example:
//
//	server := api.NewServer(lb, "")
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/size")
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop stops the rate limiter's cleanup goroutine. It does not stop the
// WebSocket hub loop or close the HTTP listener started by Start.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
