// Package site serves the portfolio's HTTP API: contact-form submission,
// the password-gated message list, and the theme preference cookie.
package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/phanxgames/backdrop"
	"github.com/phanxgames/backdrop/inbox"
)

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used by the package. Passing nil restores
// slog.Default().
func SetLogger(l *slog.Logger) { pkgLogger.Store(l) }

func logger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// Authorizer checks the admin credential.
type Authorizer interface {
	IsAuthorized(credential string) bool
}

// maxBodyBytes caps a contact-form request body.
const maxBodyBytes = 64 << 10

const themeCookie = "theme"

// Server routes the site API to an inbox.Store.
type Server struct {
	store inbox.Store
	auth  Authorizer
	mux   *http.ServeMux
}

// New returns a Server for store guarded by auth.
func New(store inbox.Store, auth Authorizer) *Server {
	s := &Server{store: store, auth: auth, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/messages", s.handleSubmit)
	s.mux.HandleFunc("GET /api/messages", s.requireAuth(s.handleList))
	s.mux.HandleFunc("POST /api/messages/{id}/read", s.requireAuth(s.handleMarkRead))
	s.mux.HandleFunc("GET /api/theme", s.handleGetTheme)
	s.mux.HandleFunc("PUT /api/theme", s.handlePutTheme)
	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok")
	})
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// credential reads the admin secret from the query string or a bearer
// token.
func credential(r *http.Request) string {
	if secret := r.URL.Query().Get("secret"); secret != "" {
		return secret
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil || !s.auth.IsAuthorized(credential(r)) {
			unauthorized(w)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var sub inbox.Submission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&sub); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	m, err := s.store.Submit(r.Context(), sub)
	switch {
	case errors.Is(err, inbox.ErrMissingFields):
		badRequest(w, "Missing required fields")
		return
	case err != nil:
		logger().Error("site: saving message", "error", err)
		internalServerError(w, "Failed to save message")
		return
	}
	logger().Info("site: message received", "id", m.ID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Message received"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.store.List(r.Context())
	if err != nil {
		logger().Error("site: reading messages", "error", err)
		internalServerError(w, "Failed to read messages")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	err := s.store.MarkRead(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, inbox.ErrNotFound):
		notFound(w, "Message not found")
	case err != nil:
		logger().Error("site: marking message read", "error", err)
		internalServerError(w, "Failed to update message")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// themeFrom returns the theme stored in the request cookie, light when
// absent or invalid.
func themeFrom(r *http.Request) backdrop.Theme {
	c, err := r.Cookie(themeCookie)
	if err != nil {
		return backdrop.ThemeLight
	}
	t, err := backdrop.ParseTheme(c.Value)
	if err != nil {
		return backdrop.ThemeLight
	}
	return t
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"theme": themeFrom(r).String()})
}

func (s *Server) handlePutTheme(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	t, err := backdrop.ParseTheme(body.Theme)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    t.String(),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"theme": t.String()})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger().Debug("site: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger().Info("site: listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
