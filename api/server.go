/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontends
  5. rateLimit:  Global token-bucket request limiter
  6. companyAuth: Requires the X-Company identity header

IDENTITY:
  Authentication lives in the gateway in front of this service; the
  gateway forwards the verified company username in X-Company. The
  companyAuth middleware rejects requests without it and stashes the
  username in the request context.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

type contextKey string

const companyKey contextKey = "company"

// companyFrom returns the authenticated company username. The
// companyAuth middleware guarantees it is present on API routes.
func companyFrom(r *http.Request) string {
	username, _ := r.Context().Value(companyKey).(string)
	return username
}

// companyAuth requires the X-Company header and stores its value in the
// request context.
func companyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := r.Header.Get("X-Company")
		if username == "" {
			writeError(w, http.StatusUnauthorized, "Missing X-Company header")
			return
		}
		ctx := context.WithValue(r.Context(), companyKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimit applies a global token bucket across all clients.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Company"},
		AllowCredentials: true,
	}))
	r.Use(rateLimit(rate.NewLimiter(rate.Limit(50), 100)))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(companyAuth)

		r.Route("/schedule", func(r chi.Router) {
			r.Post("/", h.CreateSchedule)
			r.Get("/", h.ListSchedules)
			r.Delete("/", h.DeleteSchedule)
		})

		r.Put("/upgrade", h.UpgradePlan)
		r.Put("/invitation_code", h.GenerateInvitationCode)
		r.Post("/topup", h.SubmitTopUp)
		r.Get("/transactions", h.ListTransactions)
	})

	return r
}
