package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"touragency/internal/config"
	"touragency/internal/domain"
	"touragency/internal/service"
	"touragency/internal/session"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Services bundles what the HTTP surface calls into.
type Services struct {
	Auth     *service.AuthService
	Catalog  *service.CatalogService
	Bookings *service.BookingService
}

// ReadinessChecker reports whether the store can serve requests.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// HTTPServer serves the HTML pages and the JSON API.
type HTTPServer struct {
	cfg        *config.Config
	svc        Services
	sessions   *session.Manager
	attempts   domain.AttemptLimiter
	apiLimiter *rateLimiter
	readiness  ReadinessChecker
	pages      *pageSet
	logger     *zerolog.Logger
	server     *http.Server
}

func NewHTTPServer(
	cfg *config.Config,
	svc Services,
	sessions *session.Manager,
	attempts domain.AttemptLimiter,
	readiness ReadinessChecker,
	logger *zerolog.Logger,
) (*HTTPServer, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	pages, err := loadPages()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	srv := &HTTPServer{
		cfg:        cfg,
		svc:        svc,
		sessions:   sessions,
		attempts:   attempts,
		apiLimiter: newRateLimiter(cfg.API.RateLimit),
		readiness:  readiness,
		pages:      pages,
		logger:     logger,
	}

	handler := recoverMiddleware(srv.routes())
	handler = requestIDMiddleware(logger)(handler)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv, nil
}

func (s *HTTPServer) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware, originMiddleware, s.sessionMiddleware)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/register", s.handleRegisterForm).Methods(http.MethodGet)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLoginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.requireSession(s.handleLogout)).Methods(http.MethodGet)
	r.HandleFunc("/tours", s.handleTours).Methods(http.MethodGet)
	r.HandleFunc("/tour/{id:[0-9]+}", s.handleTourDetail).Methods(http.MethodGet)
	r.HandleFunc("/book/{id:[0-9]+}", s.requireSession(s.handleBook)).Methods(http.MethodPost)
	r.HandleFunc("/my-bookings", s.requireSession(s.handleMyBookings)).Methods(http.MethodGet)
	r.HandleFunc("/my-bookings/export", s.requireSession(s.handleExportBookings)).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(s.apiRateLimitMiddleware)
	apiRouter.HandleFunc("/tours", s.handleAPITours).Methods(http.MethodGet)
	apiRouter.HandleFunc("/stats", s.requireSession(s.handleAPIStats)).Methods(http.MethodGet)

	if dir := s.cfg.HTTP.StaticDir; dir != "" {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
	}

	return r
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.readiness != nil {
		if err := s.readiness.Ready(r.Context()); err != nil {
			s.requestLogger(r).Warn().Err(err).Msg("readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *HTTPServer) requestLogger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.logger
}

// serverError logs err and answers with a bare 500.
func (s *HTTPServer) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.requestLogger(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// redirect persists the session (queued flashes included) before redirecting.
func (s *HTTPServer) redirect(w http.ResponseWriter, r *http.Request, url string) {
	if err := s.saveSession(w, r); err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (s *HTTPServer) saveSession(w http.ResponseWriter, r *http.Request) error {
	data := session.FromContext(r.Context())
	if !data.Dirty() {
		return nil
	}
	return s.sessions.Save(w, data)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
