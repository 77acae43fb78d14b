package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/talgya/resonance/internal/render"
	"github.com/talgya/resonance/internal/resonance"
)

const (
	renderCacheTTL     = 5 * time.Minute
	renderCacheEntries = 128
)

// renderCache memoizes encoded renders by their canonical query
// string. Renders are seeded, so identical queries produce identical
// bytes and the cache stays coherent.
type renderCache struct {
	mu      sync.Mutex
	entries map[string]cachedRender
}

type cachedRender struct {
	data        []byte
	contentType string
	at          time.Time
}

func (c *renderCache) get(key string) ([]byte, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Since(e.at) >= renderCacheTTL {
		return nil, "", false
	}
	return e.data, e.contentType, true
}

func (c *renderCache) put(key string, data []byte, contentType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]cachedRender)
	}
	if len(c.entries) >= renderCacheEntries {
		for k, e := range c.entries {
			if time.Since(e.at) >= renderCacheTTL {
				delete(c.entries, k)
			}
		}
		// Still full after expiry sweep: start over rather than
		// tracking an eviction order for a best-effort cache.
		if len(c.entries) >= renderCacheEntries {
			c.entries = make(map[string]cachedRender)
		}
	}
	c.entries[key] = cachedRender{data: data, contentType: contentType, at: time.Now()}
}

func (c *renderCache) serve(w http.ResponseWriter, key string) bool {
	data, contentType, ok := c.get(key)
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
	return true
}

// handleGlyphPNG renders a static glyph for the text in the query.
func (s *Server) handleGlyphPNG(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := "png|" + q.Encode()
	if s.renders.serve(w, key) {
		return
	}

	vec := resonance.Analyze(q.Get("text"))
	opts := render.DefaultOptions()
	opts.Animate = false
	opts.Width = clampQueryInt(q, "width", 600, 64, 1024)
	opts.Height = clampQueryInt(q, "height", 600, 64, 1024)

	var buf bytes.Buffer
	if err := render.RenderStill(vec, opts, &buf); err != nil {
		slog.Error("png render failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	s.renders.put(key, buf.Bytes(), "image/png")
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

// handleGlyphGIF renders a short animation for the text in the query.
// Duration, rate, and dimensions are clamped to keep one request from
// monopolizing the host; the seed defaults to a fixed value so the
// same URL always yields the same bytes.
func (s *Server) handleGlyphGIF(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := "gif|" + q.Encode()
	if s.renders.serve(w, key) {
		return
	}

	vec := resonance.Analyze(q.Get("text"))
	opts := render.DefaultOptions()
	opts.Width = clampQueryInt(q, "width", 320, 64, 512)
	opts.Height = clampQueryInt(q, "height", 320, 64, 512)
	opts.Seed = int64(clampQueryInt(q, "seed", 1, 1, 1<<30))
	opts.Turbulence = clampQueryFloat(q, "turbulence", 0, 0, 1)
	opts.ShowParticles = queryBool(q, "particles", true)
	opts.ShowField = queryBool(q, "field", true)
	seconds := clampQueryFloat(q, "seconds", 3, 0.5, 10)
	fps := clampQueryInt(q, "fps", 15, 1, 30)

	var buf bytes.Buffer
	if err := render.RenderGIF(vec, opts, seconds, fps, &buf); err != nil {
		slog.Error("gif render failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	s.renders.put(key, buf.Bytes(), "image/gif")
	w.Header().Set("Content-Type", "image/gif")
	w.Write(buf.Bytes())
}

func clampQueryInt(q url.Values, name string, def, lo, hi int) int {
	v := q.Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func clampQueryFloat(q url.Values, name string, def, lo, hi float64) float64 {
	v := q.Get(name)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

func queryBool(q url.Values, name string, def bool) bool {
	switch q.Get(name) {
	case "":
		return def
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}
