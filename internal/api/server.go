// Package api exposes the HTTP interface for the screenshot service.
package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"isitchristmas-screenshot/internal/geo"
	"isitchristmas-screenshot/internal/render"
	"isitchristmas-screenshot/internal/screenshot"
	"isitchristmas-screenshot/internal/telemetry"
)

//go:embed web
var webFS embed.FS

// Screenshotter is the pipeline the server translates requests into.
type Screenshotter interface {
	Render(ctx context.Context, req screenshot.Request) (screenshot.Result, error)
}

// Server wires HTTP handlers to the screenshot pipeline.
type Server struct {
	router  chi.Router
	service Screenshotter
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(service Screenshotter, requestTimeout time.Duration, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: service,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(telemetry.Middleware)
	r.Use(timeoutMiddleware(requestTimeout))

	r.Get("/", s.index)
	r.Get("/health", s.health)
	r.Get("/readyz", s.readyz)
	r.Get("/metrics", telemetry.Handler().ServeHTTP)
	r.Get("/screenshot", s.getScreenshot)
	r.Handle("/styles/*", stylesHandler())

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// Renders are stateless; if we are serving, we are ready.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "index page unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(page); err != nil {
		s.logger.Debug("index write failed", zap.Error(err))
	}
}

func (s *Server) getScreenshot(w http.ResponseWriter, r *http.Request) {
	req := screenshot.Request{RemoteIP: clientIP(r)}

	if raw := r.URL.Query().Get("country"); raw != "" {
		country, err := geo.ParseCountry(raw)
		if err != nil {
			// Malformed overrides fall through to IP-based resolution
			// instead of rejecting the request.
			s.logger.Debug("ignoring invalid country parameter",
				zap.String("country", raw), zap.Error(err))
		} else {
			req.Country = country
		}
	}

	result, err := s.service.Render(r.Context(), req)
	if err != nil {
		status, reason := failureStatus(err)
		writeError(w, status, reason)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename=isitchristmas-%s.png", result.Country))
	if _, err := w.Write(result.Image); err != nil {
		s.logger.Debug("image write failed", zap.Error(err))
	}
}

func failureStatus(err error) (int, string) {
	switch render.KindOf(err) {
	case render.FailureNavigationTimeout:
		return http.StatusGatewayTimeout, "target page did not load in time"
	case render.FailureNavigation:
		return http.StatusBadGateway, "target page could not be loaded"
	case render.FailureLaunch:
		return http.StatusServiceUnavailable, "renderer unavailable"
	case render.FailureCapture:
		return http.StatusBadGateway, "screenshot capture failed"
	}
	if errors.Is(err, context.Canceled) {
		return http.StatusBadRequest, "request canceled"
	}
	return http.StatusInternalServerError, "render failed"
}

// clientIP extracts the caller's address, preferring the first
// X-Forwarded-For entry so deployments behind a proxy still geolocate the
// real visitor.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func stylesHandler() http.Handler {
	styles, err := fs.Sub(webFS, "web/styles")
	if err != nil {
		panic("embedded styles missing: " + err.Error())
	}
	return http.StripPrefix("/styles/", http.FileServer(http.FS(styles)))
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("request_id", requestIDFrom(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

// requestIDFrom returns the ID assigned by requestIDMiddleware, or "" for
// requests that bypassed it.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
