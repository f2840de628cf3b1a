package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/namvh1209/posture-cli/internal/api/middleware"
	"github.com/namvh1209/posture-cli/internal/metrics"
	"github.com/namvh1209/posture-cli/internal/scanner"
	consts "github.com/namvh1209/posture-cli/internal/shared/constants"
	sharederrors "github.com/namvh1209/posture-cli/internal/shared/errors"
)

// ScanRequest is the POST /scan body.
type ScanRequest struct {
	URL string `json:"url"`
}

// ScanService runs one full scan against a target.
type ScanService interface {
	RunScan(ctx context.Context, target string) (*scanner.Scan, error)
}

// Config wires the server's collaborators and policy knobs.
type Config struct {
	Scans       ScanService
	Store       *ScanStore
	AuthToken   string
	Logger      *zap.Logger
	CORSOrigins []string // allowed CORS origins (empty = allow all)
	RateLimit   int      // requests per second per IP (0 = disabled)
	RateBurst   int
}

// Server is the REST surface over the scan engine.
type Server struct {
	cfg      Config
	mux      *http.ServeMux
	limiters *rateLimiterMap
}

func NewServer(cfg Config) *Server {
	if cfg.Store == nil {
		cfg.Store = NewScanStore()
	}
	srv := &Server{
		cfg:      cfg,
		mux:      http.NewServeMux(),
		limiters: newRateLimiterMap(),
	}
	srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Middleware chain: RequestID -> Logging -> RateLimit -> CORS -> Handler
	handler := middleware.RequestID(s.withLogging(s.withRateLimit(s.withCORS(s.mux))))
	handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.Handle("/api/v1/scan", s.withAuth(http.HandlerFunc(s.handleScan)))
	s.mux.Handle("/api/v1/scan/", s.withAuth(http.HandlerFunc(s.handleScanByID)))
	s.mux.Handle("/api/v1/health", http.HandlerFunc(s.handleHealth))

	// Unversioned aliases for older consumers.
	s.mux.Handle("/scan", s.withAuth(http.HandlerFunc(s.handleScan)))
	s.mux.Handle("/scan/", s.withAuth(http.HandlerFunc(s.handleScanByID)))
	s.mux.Handle("/health", http.HandlerFunc(s.handleHealth))

	s.mux.Handle("/metrics", metrics.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, consts.MaxRequestBodyBytes)
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	// Reject malformed targets before any scan work begins.
	target, err := scanner.ValidateTargetURL(req.URL)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	scan, err := s.cfg.Scans.RunScan(r.Context(), target)
	if err != nil {
		// The only scan-level failure is the inability to run at all;
		// per-check failures already degraded into INFO findings.
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.cfg.Store.Put(scan)
	writeJSON(w, http.StatusOK, scan)
}

func (s *Server) handleScanByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/scan/")
	path = strings.TrimPrefix(path, "/scan/")
	id := strings.Trim(path, "/")
	if id == "" {
		s.writeError(w, r, http.StatusNotFound, errors.New("scan ID required"))
		return
	}
	scan, ok := s.cfg.Store.Get(id)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, sharederrors.ErrScanNotFound)
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RateLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		clientIP := clientAddress(r)
		limiter := s.limiters.getLimiter(clientIP, s.cfg.RateLimit, s.cfg.RateBurst)
		if !limiter.Allow() {
			s.requestLogger(r).Warn("rate_limit_exceeded", zap.String("client_ip", clientIP))
			s.writeError(w, r, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddress extracts the client IP, honoring the first entry of
// X-Forwarded-For for proxied requests.
func clientAddress(r *http.Request) string {
	addr := r.RemoteAddr
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		addr = forwarded
		if idx := strings.Index(forwarded, ","); idx > 0 {
			addr = forwarded[:idx]
		}
		return strings.TrimSpace(addr)
	}
	if idx := strings.LastIndex(addr, ":"); idx > 0 {
		addr = addr[:idx]
	}
	return addr
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowOrigin := "*"
		if len(s.cfg.CORSOrigins) > 0 {
			allowOrigin = ""
			for _, allowed := range s.cfg.CORSOrigins {
				if allowed == origin {
					allowOrigin = origin
					break
				}
			}
		}
		if allowOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Auth-Token")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)

		metrics.IncRequest(r.Method, fmt.Sprintf("%dxx", lrw.statusCode/100))
		if s.cfg.Logger != nil {
			s.cfg.Logger.Info("http_request",
				zap.String("request_id", middleware.GetRequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status", lrw.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.Int64("bytes", lrw.bytesWritten),
			)
		}
	})
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	if s.cfg.AuthToken == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Auth-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AuthToken)) != 1 {
			s.writeError(w, r, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingResponseWriter captures status code and bytes written for request logs.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytesWritten += int64(n)
	return n, err
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := err.Error()
	// 5xx details stay server-side; clients get a generic message.
	if status >= 500 {
		s.requestLogger(r).Error("internal_server_error",
			zap.Error(err),
			zap.Int("status", status),
		)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if s.cfg.Logger == nil {
		return zap.NewNop()
	}
	return s.cfg.Logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

// rateLimiterMap manages per-IP rate limiters with periodic cleanup.
type rateLimiterMap struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiterMap() *rateLimiterMap {
	m := &rateLimiterMap{limiters: make(map[string]*ipLimiter)}
	go m.cleanupLoop()
	return m
}

func (m *rateLimiterMap) getLimiter(ip string, rps, burst int) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if burst <= 0 {
		burst = rps
	}
	entry, ok := m.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
		m.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// cleanupLoop drops limiters idle for more than 5 minutes.
func (m *rateLimiterMap) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		m.mu.Lock()
		for ip, entry := range m.limiters {
			if time.Since(entry.lastSeen) > 5*time.Minute {
				delete(m.limiters, ip)
			}
		}
		m.mu.Unlock()
	}
}
