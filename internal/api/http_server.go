package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"campus_scheduler/internal/config"
	"campus_scheduler/internal/domain"
	"campus_scheduler/internal/models"

	"github.com/rs/zerolog"
)

const homeText = "Smart Campus Scheduler Backend Running"

// VenueLister serves the read-only venue catalog.
type VenueLister interface {
	List() []models.Venue
}

// ReadinessChecker reports whether the backing store is reachable.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// HTTPServer exposes the booking API.
type HTTPServer struct {
	cfg     config.APIConfig
	svc     domain.BookingService
	venues  VenueLister
	ready   ReadinessChecker
	server  *http.Server
	auth    *HTTPAuth
	limiter *rateLimiter
	log     *zerolog.Logger
}

// NewHTTPServer wires routes and middleware. shared may be nil, in which
// case rate limiting uses in-process token buckets only.
func NewHTTPServer(
	cfg config.APIConfig,
	svc domain.BookingService,
	venues VenueLister,
	ready ReadinessChecker,
	shared domain.RateLimiter,
	logger *zerolog.Logger,
) *HTTPServer {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "http").Logger()
	}

	srv := &HTTPServer{
		cfg:    cfg,
		svc:    svc,
		venues: venues,
		ready:  ready,
		log:    &l,
	}
	srv.limiter = newRateLimiter(cfg.RateLimit, shared, srv.log)
	srv.auth = NewHTTPAuth(cfg, srv.limiter)

	handler := corsMiddleware(cfg.CORS.AllowedOrigins,
		loggingMiddleware(srv.log, srv.auth.Wrap(srv.routes())))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("GET /venues", s.handleVenues)

	mux.HandleFunc("POST /book", s.handleCreateBooking)
	mux.HandleFunc("GET /bookings", s.handleListBookings)
	mux.HandleFunc("GET /bookings/export", s.handleExportBookings)
	mux.HandleFunc("PUT /booking/{id}", s.handleUpdateBooking)
	mux.HandleFunc("DELETE /booking/{id}", s.handleDeleteBooking)
	mux.HandleFunc("PUT /approve/{id}", s.handleApproveBooking)
	mux.HandleFunc("PUT /reject/{id}", s.handleRejectBooking)

	return mux
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, homeText)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready.Ready(r.Context()); err != nil {
			s.log.Warn().Err(err).Msg("Readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *HTTPServer) handleVenues(w http.ResponseWriter, _ *http.Request) {
	list := []models.Venue{}
	if s.venues != nil {
		list = s.venues.List()
	}
	writeJSON(w, http.StatusOK, list)
}
