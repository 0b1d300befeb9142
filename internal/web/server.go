// Package web serves the dashboard and the JSON API over net/http.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jask/smartsavernet/internal/agents"
	"github.com/jask/smartsavernet/internal/logging"
	"github.com/jask/smartsavernet/internal/service"
)

const sessionCookie = "smartsaver_session"

//go:embed templates/*.html
var templateFS embed.FS

// Server exposes the coach over HTTP.
type Server struct {
	addr     string
	coach    *service.Coach
	defaults []agents.Name
	log      *slog.Logger
	page     *template.Template
	shutdown time.Duration
}

// NewServer builds a server. defaults are the agents ticked when a session has not run yet.
func NewServer(addr string, coach *service.Coach, defaults []agents.Name, log *slog.Logger) *Server {
	if len(defaults) == 0 {
		defaults = agents.Order
	}
	s := &Server{
		addr:     addr,
		coach:    coach,
		defaults: defaults,
		log:      logging.Named(log, "web"),
		shutdown: 5 * time.Second,
	}
	s.page = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
		"money": coach.Policy.Money,
		"date":  func(t time.Time) string { return t.Format(coach.Policy.UI.DateFormat) },
		"pct":   func(f float64) int { return int(f*100 + 0.5) },
		"cents": func(c int64) float64 { return float64(c) / 100 },
		"abs": func(v float64) float64 {
			if v < 0 {
				return -v
			}
			return v
		},
	}).ParseFS(templateFS, "templates/dashboard.html"))
	return s
}

// WithShutdownTimeout overrides how long Start waits for in-flight requests.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	if d > 0 {
		s.shutdown = d
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/run", s.handleRun)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("POST /api/seed", s.handleSeed)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/transactions", s.handleTransactions)

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("POST /run", s.formAction(s.formRun))
	mux.HandleFunc("POST /reset", s.formAction(s.formReset))
	mux.HandleFunc("POST /seed", s.formAction(s.formSeed))
	return s.logRequests(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           withContext(ctx, s.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("shutdown", "error", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// sessionID returns the caller's session, issuing a cookie when there is none.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

// withContext makes handlers refuse work once the root context is cancelled.
func withContext(ctx context.Context, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-ctx.Done():
			http.Error(w, "server shutting down", http.StatusServiceUnavailable)
			return
		default:
		}
		handler.ServeHTTP(w, r)
	})
}
