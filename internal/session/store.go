// Package session stores analysis history in SQLite: one record per
// scored text, with the vector, optional voice metadata, and an
// optional PNG snapshot of the rendered glyph.
//
// Storage is strictly off the critical path. Callers treat every
// error here as warn-and-continue; an analysis that cannot be saved
// is still returned to the user.
package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/resonance/internal/resonance"
	"github.com/talgya/resonance/internal/voice"
)

// ErrNotFound reports a lookup for a session id that was never saved
// or has been pruned.
var ErrNotFound = errors.New("session not found")

// Source tags where a record's text came from.
const (
	SourceText  = "text"
	SourceVoice = "voice"
)

// Record is one saved analysis. Voice and Snapshot are optional;
// everything else is filled by Save when left zero.
type Record struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"createdAt"`
	Source    string           `json:"source"`
	Provider  string           `json:"provider"`
	Text      string           `json:"text"`
	Vector    resonance.Vector `json:"vector"`
	Voice     *voice.Analysis  `json:"voice,omitempty"`
	Snapshot  []byte           `json:"-"`
}

// Store wraps a SQLite connection for session history.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		source TEXT NOT NULL,
		provider TEXT NOT NULL,
		body TEXT NOT NULL,
		vector_json TEXT NOT NULL,
		voice_json TEXT,
		snapshot_png BLOB
	);

	CREATE TABLE IF NOT EXISTS store_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return err
	}
	return s.SetMeta("schema_version", "1")
}

type sessionRow struct {
	ID        string `db:"id"`
	CreatedAt int64  `db:"created_at"`
	Source    string `db:"source"`
	Provider  string `db:"provider"`
	Body      string `db:"body"`
	Vector    string `db:"vector_json"`
	Voice     []byte `db:"voice_json"`
	Snapshot  []byte `db:"snapshot_png"`
}

// Save inserts one record. A zero ID gets a fresh UUID, a zero
// CreatedAt the current time, an empty Source the text source. The
// possibly-completed record is written back through rec.
func (s *Store) Save(rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Source == "" {
		rec.Source = SourceText
	}
	if rec.Source != SourceText && rec.Source != SourceVoice {
		return fmt.Errorf("unknown source %q", rec.Source)
	}

	vectorJSON, err := json.Marshal(rec.Vector)
	if err != nil {
		return fmt.Errorf("encode vector: %w", err)
	}
	var voiceJSON []byte
	if rec.Voice != nil {
		if voiceJSON, err = json.Marshal(rec.Voice); err != nil {
			return fmt.Errorf("encode voice: %w", err)
		}
	}

	_, err = s.conn.Exec(`INSERT INTO sessions
		(id, created_at, source, provider, body, vector_json, voice_json, snapshot_png)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UnixMilli(), rec.Source, rec.Provider,
		rec.Text, string(vectorJSON), voiceJSON, rec.Snapshot,
	)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves one record by id.
func (s *Store) Get(id string) (*Record, error) {
	var row sessionRow
	err := s.conn.Get(&row,
		"SELECT id, created_at, source, provider, body, vector_json, voice_json, snapshot_png FROM sessions WHERE id = ?",
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return decodeRow(&row)
}

// Recent returns the newest records, newest first. A non-positive
// limit defaults to 20.
func (s *Store) Recent(limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []sessionRow
	err := s.conn.Select(&rows,
		"SELECT id, created_at, source, provider, body, vector_json, voice_json, snapshot_png FROM sessions ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]*Record, 0, len(rows))
	for i := range rows {
		rec, err := decodeRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count returns the number of saved sessions.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.conn.Get(&n, "SELECT COUNT(*) FROM sessions"); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

// SetMeta stores a key-value pair in store metadata.
func (s *Store) SetMeta(key, value string) error {
	_, err := s.conn.Exec(
		"INSERT OR REPLACE INTO store_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.conn.Get(&value, "SELECT value FROM store_meta WHERE key = ?", key)
	return value, err
}

func decodeRow(row *sessionRow) (*Record, error) {
	rec := &Record{
		ID:        row.ID,
		CreatedAt: time.UnixMilli(row.CreatedAt).UTC(),
		Source:    row.Source,
		Provider:  row.Provider,
		Text:      row.Body,
		Snapshot:  row.Snapshot,
	}
	if err := json.Unmarshal([]byte(row.Vector), &rec.Vector); err != nil {
		return nil, fmt.Errorf("decode vector for %s: %w", row.ID, err)
	}
	if len(row.Voice) > 0 {
		rec.Voice = new(voice.Analysis)
		if err := json.Unmarshal(row.Voice, rec.Voice); err != nil {
			return nil, fmt.Errorf("decode voice for %s: %w", row.ID, err)
		}
	}
	return rec, nil
}
