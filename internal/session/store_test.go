package session

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/talgya/resonance/internal/resonance"
	"github.com/talgya/resonance/internal/voice"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveFillsDefaults(t *testing.T) {
	s := openTestStore(t)

	rec := &Record{
		Text:   "The river remembers.",
		Vector: resonance.Analyze("The river remembers."),
	}
	if err := s.Save(rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID == "" {
		t.Error("Save left ID empty")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("Save left CreatedAt zero")
	}
	if rec.Source != SourceText {
		t.Errorf("Source = %q, want %q", rec.Source, SourceText)
	}
}

func TestSaveRejectsUnknownSource(t *testing.T) {
	s := openTestStore(t)
	err := s.Save(&Record{Text: "x", Source: "telepathy", Vector: resonance.Default()})
	if err == nil {
		t.Fatal("Save accepted an unknown source")
	}
}

func TestRoundTripPreservesVectorJSON(t *testing.T) {
	s := openTestStore(t)

	in := &Record{
		Text:     "Love dissolves like mist; the ancient sky waits.",
		Provider: "local",
		Vector:   resonance.Analyze("Love dissolves like mist; the ancient sky waits."),
	}
	if err := s.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := s.Get(in.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	wantJSON, _ := json.Marshal(in.Vector)
	gotJSON, _ := json.Marshal(out.Vector)
	if string(wantJSON) != string(gotJSON) {
		t.Errorf("vector changed across the store:\nsaved  %s\nloaded %s", wantJSON, gotJSON)
	}
	if out.Text != in.Text || out.Provider != in.Provider {
		t.Errorf("record fields changed: got %+v", out)
	}
	if !out.CreatedAt.Equal(in.CreatedAt.Truncate(time.Millisecond)) {
		t.Errorf("CreatedAt = %v, want %v at millisecond precision",
			out.CreatedAt, in.CreatedAt)
	}
}

func TestVoiceAndSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)

	va := &voice.Analysis{
		Duration:      8.2,
		AverageVolume: 0.5,
		PeakVolume:    0.8,
		Silences:      []voice.SilenceInterval{{Start: 2, End: 3.5}},
		SpeechRate:    132,
		Tone:          voice.ToneExcited,
	}
	in := &Record{
		Text:     "spoken words",
		Source:   SourceVoice,
		Vector:   resonance.Default(),
		Voice:    va,
		Snapshot: []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3},
	}
	if err := s.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := s.Get(in.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.Voice == nil {
		t.Fatal("voice record lost")
	}
	if !reflect.DeepEqual(*out.Voice, *va) {
		t.Errorf("voice record changed:\nsaved  %+v\nloaded %+v", *va, *out.Voice)
	}
	if !reflect.DeepEqual(out.Snapshot, in.Snapshot) {
		t.Errorf("snapshot bytes changed: %v", out.Snapshot)
	}
}

func TestGetUnknownID(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get("no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := &Record{
			Text:      string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Vector:    resonance.Default(),
		}
		if err := s.Save(rec); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	recent, err := s.Recent(3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Recent returned %d records, want 3", len(recent))
	}
	for i, want := range []string{"e", "d", "c"} {
		if recent[i].Text != want {
			t.Errorf("recent[%d].Text = %q, want %q", i, recent[i].Text, want)
		}
	}

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 5 {
		t.Errorf("Count = %d, want 5", n)
	}
}

func TestMetaRoundTrip(t *testing.T) {
	s := openTestStore(t)

	v, err := s.GetMeta("schema_version")
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if v != "1" {
		t.Errorf("schema_version = %q, want \"1\"", v)
	}

	if err := s.SetMeta("last_prune", "never"); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}
	if v, _ := s.GetMeta("last_prune"); v != "never" {
		t.Errorf("last_prune = %q, want \"never\"", v)
	}
}
