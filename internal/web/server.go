// Package web exposes the JSON HTTP API. All success and failure responses
// share the {success, error} envelope.
package web

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"diet-plan-assistant/internal/metrics"
	"diet-plan-assistant/internal/nutrition"
	"diet-plan-assistant/internal/planner"
	"diet-plan-assistant/internal/session"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// PlanGenerator is the slice of the planner the server needs.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, profile nutrition.Profile, macros nutrition.Macros, cuisine string) (planner.Plan, error)
}

// Server serves the diet-plan JSON API.
type Server struct {
	sessions     *session.Store
	planner      PlanGenerator
	searcher     planner.FoodSearcher
	metricsStore *metrics.Store
	cookies      *cookieManager
	router       *mux.Router
}

// NewServer wires the API routes. metricsStore may be nil when telemetry is
// disabled.
func NewServer(sessions *session.Store, p PlanGenerator, searcher planner.FoodSearcher, metricsStore *metrics.Store, sessionSecret string) (*Server, error) {
	cookies, err := newCookieManager(sessionSecret, session.DefaultTTL)
	if err != nil {
		return nil, err
	}

	s := &Server{
		sessions:     sessions,
		planner:      p,
		searcher:     searcher,
		metricsStore: metricsStore,
		cookies:      cookies,
		router:       mux.NewRouter(),
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/api/submit-info", s.handleSubmitInfo).Methods("POST")
	s.router.HandleFunc("/api/generate-plan", s.handleGeneratePlan).Methods("POST")
	s.router.HandleFunc("/api/search-food", s.handleSearchFood).Methods("POST")
	s.router.HandleFunc("/api/update-cuisine", s.handleUpdateCuisine).Methods("POST")
	s.router.HandleFunc("/api/get-macros", s.handleGetMacros).Methods("GET")
	s.router.HandleFunc("/api/restart", s.handleRestart).Methods("POST")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the fully wrapped HTTP handler: CORS, then request logging,
// then routing.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(loggingMiddleware(s.router))
}

// responseWrapper captures the status code written by a handler.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)
		log.Printf("%s %s - %d - %v", r.Method, r.URL.Path, wrapper.statusCode, time.Since(start))
	})
}

// envelope is the uniform response body. Success payload fields are set per
// operation; failures carry only the error message.
type envelope struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
	Macros  interface{} `json:"macros,omitempty"`
	Plan    string      `json:"plan,omitempty"`
	Cuisine string      `json:"cuisine,omitempty"`
	Foods   interface{} `json:"foods,omitempty"`
	Health  interface{} `json:"health,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Error: message})
}

// decodeBody decodes a JSON request body into dst, tolerating an empty body.
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == io.EOF {
		return nil
	}
	return err
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
