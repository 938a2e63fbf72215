package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vbonduro/placeoffers/internal/auth"
	"github.com/vbonduro/placeoffers/internal/imagestore"
	"github.com/vbonduro/placeoffers/internal/metrics"
	"github.com/vbonduro/placeoffers/internal/offers"
)

type Server struct {
	places  offers.PlacesAccess
	users   auth.UserSource
	images  imagestore.Store
	mux     *http.ServeMux
	handler http.Handler
	logger  *slog.Logger
}

func NewServer(places offers.PlacesAccess, users auth.UserSource, images imagestore.Store, logger *slog.Logger) *Server {
	s := &Server{
		places: places,
		users:  users,
		images: images,
		mux:    http.NewServeMux(),
		logger: logger,
	}
	s.registerRoutes()
	s.handler = requestLogger(logger, securityHeaders(metrics.Middleware(auth.Middleware(s.mux))))
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, offers.ListPath, http.StatusSeeOther)
	})
	s.mux.HandleFunc("GET "+offers.ListPath, s.handleListOffers)
	s.mux.HandleFunc("POST "+offers.ListPath+"/items/{id}/edit", s.handleEditFromList)
	s.mux.HandleFunc("GET "+offers.ListPath+"/new", s.handleNewOfferForm)
	s.mux.HandleFunc("POST "+offers.ListPath+"/new", s.handleCreateOffer)
	s.mux.HandleFunc("GET "+offers.ListPath+"/edit/{$}", s.handleEditWithoutID)
	s.mux.HandleFunc("GET "+offers.ListPath+"/edit/{id}", s.handleEditOfferForm)
	s.mux.HandleFunc("POST "+offers.ListPath+"/edit/{id}", s.handleUpdateOffer)
	s.mux.HandleFunc("DELETE "+offers.ListPath+"/edit/{id}", s.handleDeleteOffer)
	s.mux.HandleFunc("GET /images/{key...}", s.handleGetImage)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data: https:")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// HTTPServer returns an *http.Server for addr with the timeouts the
// application runs with. The caller owns its lifecycle.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
