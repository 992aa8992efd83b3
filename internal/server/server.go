// Package server exposes the scan triggers over HTTP for an external
// scheduler, plus a small status surface. All trigger endpoints require
// a bearer token; without a valid token no work is performed.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/wverbeek/gamewire/internal/database"
	"github.com/wverbeek/gamewire/internal/pipeline"
	"github.com/wverbeek/gamewire/internal/schedule"
)

// maxForceCount mirrors the scheduler's force-mode ceiling for request
// validation.
const maxForceCount = 20

// Scanner runs scans; implemented by pipeline.Runner.
type Scanner interface {
	Scan(ctx context.Context, force bool, forceCount int) (*pipeline.Result, error)
	PodcastScan(ctx context.Context) (*pipeline.Result, error)
}

// Server is the HTTP server for the trigger endpoints.
type Server struct {
	db      *database.DB
	scanner Scanner
	token   string
	mux     *http.ServeMux
}

// New creates a Server. An empty token disables the trigger endpoints
// entirely rather than leaving them open.
func New(db *database.DB, scanner Scanner, token string) *Server {
	s := &Server{db: db, scanner: scanner, token: token, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /api/scan", s.authed(s.handleScan))
	s.mux.HandleFunc("POST /api/podcasts/scan", s.authed(s.handlePodcastScan))
	s.mux.HandleFunc("GET /api/status", s.authed(s.handleStatus))
}

// authed wraps a handler with the bearer-token check. A mismatch is
// rejected before any work happens.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		got, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || s.token == "" ||
			subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

type scanRequest struct {
	Force bool `json:"force"`
	Count int  `json:"count"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	if req.Force && (req.Count < 1 || req.Count > maxForceCount) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("count must be between 1 and %d when force is set", maxForceCount),
		})
		return
	}

	result, err := s.scanner.Scan(r.Context(), req.Force, req.Count)
	if err != nil {
		log.Printf("scan failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePodcastScan(w http.ResponseWriter, r *http.Request) {
	result, err := s.scanner.PodcastScan(r.Context())
	if err != nil {
		log.Printf("podcast scan failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetStats()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	now := time.Now()
	writeJSON(w, http.StatusOK, map[string]any{
		"totalArticles":  stats.TotalArticles,
		"publishedToday": stats.PublishedToday,
		"reviews":        stats.Reviews,
		"podcasts":       stats.Podcasts,
		"dailyMax":       schedule.DailyMax(now),
		"budget":         schedule.ComputeRunBudget(now, stats.PublishedToday, false, 0),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("error encoding response: %v", err)
	}
}

// Serve starts the HTTP server on the given port.
func Serve(db *database.DB, scanner Scanner, token string, port int) error {
	srv := New(db, scanner, token)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
