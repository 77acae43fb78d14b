package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/resonance/internal/resonance"
	"github.com/talgya/resonance/internal/session"
)

func newTestServer(t *testing.T, withStore bool) (*Server, http.Handler) {
	t.Helper()
	s := &Server{Version: "test"}
	if withStore {
		store, err := session.Open(filepath.Join(t.TempDir(), "sessions.db"))
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		s.Store = store
	}
	return s, s.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var parsed map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("%s %s: bad json response: %v\n%s", method, path, err, rec.Body.String())
		}
	}
	return rec, parsed
}

func TestStatusEndpoint(t *testing.T) {
	_, h := newTestServer(t, true)

	rec, body := doJSON(t, h, http.MethodGet, "/api/v1/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["name"] != "resonance" || body["version"] != "test" {
		t.Errorf("identity fields wrong: %v", body)
	}
	if body["history"] != true {
		t.Errorf("history = %v, want true", body["history"])
	}
	if _, ok := body["sessions"]; !ok {
		t.Error("sessions count missing with a store attached")
	}
}

func TestAnalyzeEmptyTextReturnsDefault(t *testing.T) {
	_, h := newTestServer(t, false)

	rec, body := doJSON(t, h, http.MethodPost, "/api/v1/analyze",
		map[string]string{"text": "   "})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	vec, ok := body["vector"].(map[string]any)
	if !ok {
		t.Fatalf("no vector in response: %v", body)
	}
	def := resonance.Default()
	if vec["cognitiveLoad"] != def.CognitiveLoad ||
		vec["emotionalIntensity"] != def.EmotionalIntensity {
		t.Errorf("empty text did not yield the default vector: %v", vec)
	}
	if vec["meaningSignature"] != def.MeaningSignature {
		t.Errorf("meaningSignature = %v, want %q", vec["meaningSignature"], def.MeaningSignature)
	}
	if _, saved := body["id"]; saved {
		t.Error("response carries a session id with no store attached")
	}
}

func TestAnalyzeMethodAndBodyValidation(t *testing.T) {
	_, h := newTestServer(t, false)

	rec, _ := doJSON(t, h, http.MethodGet, "/api/v1/analyze", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET analyze = %d, want 405", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze",
		strings.NewReader("{not json"))
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("malformed body = %d, want 400", rec2.Code)
	}
}

func TestAnalyzeSavesSession(t *testing.T) {
	s, h := newTestServer(t, true)

	_, body := doJSON(t, h, http.MethodPost, "/api/v1/analyze", map[string]any{
		"text":     "Love flows like a river.",
		"provider": "local",
	})
	id, ok := body["id"].(string)
	if !ok || id == "" {
		t.Fatalf("no session id in response: %v", body)
	}

	rec, detail := doJSON(t, h, http.MethodGet, "/api/v1/sessions/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get session = %d, want 200", rec.Code)
	}
	if detail["text"] != "Love flows like a river." || detail["provider"] != "local" {
		t.Errorf("stored record fields wrong: %v", detail)
	}

	wantVec, _ := json.Marshal(body["vector"])
	gotVec, _ := json.Marshal(detail["vector"])
	if string(wantVec) != string(gotVec) {
		t.Errorf("vector changed across save/load:\nanalyze %s\nsession %s", wantVec, gotVec)
	}

	n, err := s.Store.Count()
	if err != nil || n != 1 {
		t.Errorf("store count = %d (%v), want 1", n, err)
	}
}

func TestAnalyzeSaveOptOut(t *testing.T) {
	s, h := newTestServer(t, true)

	_, body := doJSON(t, h, http.MethodPost, "/api/v1/analyze", map[string]any{
		"text": "quiet",
		"save": false,
	})
	if _, saved := body["id"]; saved {
		t.Error("opt-out request still saved a session")
	}
	if n, _ := s.Store.Count(); n != 0 {
		t.Errorf("store count = %d, want 0", n)
	}
}

func TestSessionsEndpoints(t *testing.T) {
	s, h := newTestServer(t, true)

	for _, text := range []string{"first", "second", "third"} {
		rec := &session.Record{Text: text, Vector: resonance.Analyze(text)}
		if err := s.Store.Save(rec); err != nil {
			t.Fatalf("seed save: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?limit=2", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d, want 200", rec.Code)
	}
	var records []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("bad list json: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("list returned %d records, want 2", len(records))
	}

	rec2, _ := doJSON(t, h, http.MethodGet, "/api/v1/sessions/no-such-id", nil)
	if rec2.Code != http.StatusNotFound {
		t.Errorf("unknown id = %d, want 404", rec2.Code)
	}
}

func TestSessionsWithoutStore(t *testing.T) {
	_, h := newTestServer(t, false)
	rec, _ := doJSON(t, h, http.MethodGet, "/api/v1/sessions", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("list without store = %d, want 503", rec.Code)
	}
}

func TestSessionSnapshotRoute(t *testing.T) {
	s, h := newTestServer(t, true)

	withSnap := &session.Record{
		Text:     "pictured",
		Vector:   resonance.Default(),
		Snapshot: []byte{0x89, 'P', 'N', 'G', 9, 9},
	}
	bare := &session.Record{Text: "plain", Vector: resonance.Default()}
	for _, rec := range []*session.Record{withSnap, bare} {
		if err := s.Store.Save(rec); err != nil {
			t.Fatalf("seed save: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+withSnap.ID+"/snapshot.png", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), withSnap.Snapshot) {
		t.Error("snapshot bytes changed in transit")
	}

	rec2, _ := doJSON(t, h, http.MethodGet, "/api/v1/sessions/"+bare.ID+"/snapshot.png", nil)
	if rec2.Code != http.StatusNotFound {
		t.Errorf("missing snapshot = %d, want 404", rec2.Code)
	}

	_, detail := doJSON(t, h, http.MethodGet, "/api/v1/sessions/"+withSnap.ID, nil)
	if detail["hasSnapshot"] != true {
		t.Errorf("hasSnapshot = %v, want true", detail["hasSnapshot"])
	}
}

func TestGlyphPNGEndpoint(t *testing.T) {
	_, h := newTestServer(t, false)

	path := "/api/v1/glyph.png?text=hello&width=64&height=64"
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("glyph.png = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("body is not a PNG")
	}

	// Second identical request must come from the cache byte-for-byte.
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, httptest.NewRequest(http.MethodGet, path, nil))
	if !bytes.Equal(rec.Body.Bytes(), rec2.Body.Bytes()) {
		t.Error("cached render differs from the first")
	}
}

func TestGlyphGIFEndpoint(t *testing.T) {
	_, h := newTestServer(t, false)

	path := "/api/v1/glyph.gif?text=hi&width=64&height=64&seconds=0.5&fps=4"
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("glyph.gif = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/gif" {
		t.Errorf("Content-Type = %q, want image/gif", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("GIF8")) {
		t.Error("body is not a GIF")
	}
}

func TestCORSPreflightAndOrigin(t *testing.T) {
	_, h := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow-origin = %q", got)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req2.Header.Set("Origin", "http://evil.example")
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req2)
	if got := rec2.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unknown origin echoed: %q", got)
	}
}
