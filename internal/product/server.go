package product

import (
	"log/slog"
	"net/http"
	"strings"
)

// Server handles HTTP requests for product resolution and inventory
type Server struct {
	resolver  *Service
	inventory *Inventory
	apiKey    string
	mux       *http.ServeMux
}

// NewServer creates a new Server with default mux. An empty apiKey disables
// authentication.
func NewServer(resolver *Service, inventory *Inventory, apiKey string) *Server {
	return NewServerWithMux(resolver, inventory, apiKey, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(resolver *Service, inventory *Inventory, apiKey string, mux *http.ServeMux) *Server {
	s := &Server{
		resolver:  resolver,
		inventory: inventory,
		apiKey:    apiKey,
		mux:       mux,
	}
	s.registerRoutes()
	return s
}

// authenticate checks the API key carried on the request
func (s *Server) authenticate(r *http.Request) bool {
	if s.apiKey == "" {
		return true // No auth required if not configured
	}

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ") == s.apiKey
	}
	return r.Header.Get("apikey") == s.apiKey
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			corsError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// registerRoutes registers all API routes on the server's mux
// Routes must be registered from most specific to least specific to avoid conflicts
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /analyze-product", s.requireAuth(s.handleAnalyzeProduct))

	s.mux.HandleFunc("GET /api/items/{id}", s.requireAuth(s.handleGetItem))
	s.mux.HandleFunc("DELETE /api/items/{id}", s.requireAuth(s.handleDeleteItem))
	s.mux.HandleFunc("GET /api/items", s.requireAuth(s.handleListItems))
	s.mux.HandleFunc("POST /api/items", s.requireAuth(s.handleAddItem))
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	// Wrap the mux with CORS middleware to handle all requests including OPTIONS
	return http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.mux.ServeHTTP(w, r)
		})(w, r)
	}))
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		s.mux.ServeHTTP(w, r)
	})(w, r)
}
