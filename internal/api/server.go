// Package api serves scoring, history, and rendering over HTTP.
// Every endpoint is read-only except POST /api/v1/analyze, which
// scores a text and, when a store is attached, records the session.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/resonance/internal/resonance"
	"github.com/talgya/resonance/internal/session"
	"github.com/talgya/resonance/internal/voice"
)

// Server serves the resonance API. Store may be nil, which disables
// the history endpoints and the save-on-analyze behavior; everything
// else keeps working.
type Server struct {
	Store   *session.Store
	Port    int
	Version string

	startMu sync.Mutex
	started time.Time

	renders renderCache
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "history", s.Store != nil)

	handler := s.Handler()
	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Handler builds the full middleware-wrapped route table. Split from
// Start so tests can drive it without a listener.
func (s *Server) Handler() http.Handler {
	s.startMu.Lock()
	if s.started.IsZero() {
		s.started = time.Now()
	}
	s.startMu.Unlock()

	// Renders burn CPU; scoring and lookups are cheap.
	renderLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/v1/sessions", s.handleSessions)
	mux.HandleFunc("/api/v1/sessions/", s.handleSessionRoutes)
	mux.HandleFunc("/api/v1/glyph.png", RateLimitMiddleware(renderLimiter, s.handleGlyphPNG))
	mux.HandleFunc("/api/v1/glyph.gif", RateLimitMiddleware(renderLimiter, s.handleGlyphGIF))

	return corsMiddleware(mux)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set RESONANCE_CORS_ORIGINS to a comma-separated list of extra
// origins; localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("RESONANCE_CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.startMu.Lock()
	started := s.started
	s.startMu.Unlock()

	status := map[string]any{
		"name":           "resonance",
		"version":        s.Version,
		"started":        humanize.Time(started),
		"uptime_seconds": int(time.Since(started).Seconds()),
		"history":        s.Store != nil,
	}
	if s.Store != nil {
		if n, err := s.Store.Count(); err == nil {
			status["sessions"] = n
		} else {
			slog.Warn("session count failed", "error", err)
		}
	}
	writeJSON(w, status)
}

// handleAnalyze scores the posted text. With a store attached the
// session is recorded unless the request opts out; a failed save is
// logged and the analysis still returned.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text     string          `json:"text"`
		Provider string          `json:"provider"`
		Source   string          `json:"source"`
		Voice    *voice.Analysis `json:"voice"`
		Save     *bool           `json:"save"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	vec := resonance.Analyze(req.Text)
	resp := map[string]any{"vector": vec}

	if s.Store != nil && (req.Save == nil || *req.Save) {
		rec := &session.Record{
			Text:     req.Text,
			Source:   req.Source,
			Provider: req.Provider,
			Vector:   vec,
			Voice:    req.Voice,
		}
		if err := s.Store.Save(rec); err != nil {
			slog.Warn("session save failed", "error", err)
		} else {
			resp["id"] = rec.ID
		}
	}

	writeJSON(w, resp)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "history not available", http.StatusServiceUnavailable)
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	records, err := s.Store.Recent(limit)
	if err != nil {
		slog.Error("session list failed", "error", err)
		http.Error(w, "history query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

// handleSessionRoutes dispatches /api/v1/sessions/:id and
// /api/v1/sessions/:id/snapshot.png.
func (s *Server) handleSessionRoutes(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "history not available", http.StatusServiceUnavailable)
		return
	}

	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}
	id := parts[4]

	rec, err := s.Store.Get(id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
		} else {
			slog.Error("session get failed", "id", id, "error", err)
			http.Error(w, "history query failed", http.StatusInternalServerError)
		}
		return
	}

	if len(parts) >= 6 && parts[5] == "snapshot.png" {
		if len(rec.Snapshot) == 0 {
			http.Error(w, "no snapshot for this session", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(rec.Snapshot)
		return
	}

	writeJSON(w, map[string]any{
		"id":          rec.ID,
		"createdAt":   rec.CreatedAt,
		"source":      rec.Source,
		"provider":    rec.Provider,
		"text":        rec.Text,
		"vector":      rec.Vector,
		"voice":       rec.Voice,
		"hasSnapshot": len(rec.Snapshot) > 0,
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
