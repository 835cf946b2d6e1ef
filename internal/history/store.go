// Package history keeps the local record of past analyses.
//
// Sessions live in a single SQLite database with an FTS5 index over the
// problem text and explanation. The store is single-user: one process, one
// file under the data directory.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/HendryAvila/triz-master/internal/ai"
	"github.com/HendryAvila/triz-master/internal/catalog"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrNotFound is returned for an unknown session id.
var ErrNotFound = errors.New("history: session not found")

// ─── Types ───────────────────────────────────────────────────────────────────

// Session is one saved analysis.
type Session struct {
	ID          string         `json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	Locale      catalog.Locale `json:"locale"`
	Problem     string         `json:"problem"`
	ImprovingID *int           `json:"improving_id,omitempty"`
	WorseningID *int           `json:"worsening_id,omitempty"`
	Explanation string         `json:"explanation,omitempty"`
	Principles  []int          `json:"principles"`
	Draft       *ai.Report     `json:"draft,omitempty"`
}

// ExportData is the serializable dump of the history database.
type ExportData struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Sessions   []Session `json:"sessions"`
}

// ImportResult holds counts of imported records.
type ImportResult struct {
	SessionsImported int `json:"sessions_imported"`
	SessionsSkipped  int `json:"sessions_skipped"`
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds history store configuration.
type Config struct {
	DataDir string
	// Limit is the number of sessions kept; older ones are trimmed on save.
	Limit            int
	MaxSearchResults int
}

// DefaultConfig returns the default configuration for the history store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:          filepath.Join(home, ".triz"),
		Limit:            15,
		MaxSearchResults: 20,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store persists sessions in SQLite.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New creates the data directory if needed, opens SQLite in WAL mode and
// runs migrations.
func New(cfg Config) (*Store, error) {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultConfig().Limit
	}
	if cfg.MaxSearchResults <= 0 {
		cfg.MaxSearchResults = DefaultConfig().MaxSearchResults
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(cfg.DataDir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Limit returns the number of sessions the store keeps.
func (s *Store) Limit() int { return s.cfg.Limit }

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			seq          INTEGER PRIMARY KEY AUTOINCREMENT,
			id           TEXT    NOT NULL UNIQUE,
			created_at   TEXT    NOT NULL,
			locale       TEXT    NOT NULL,
			problem      TEXT    NOT NULL,
			improving_id INTEGER,
			worsening_id INTEGER,
			explanation  TEXT    NOT NULL DEFAULT '',
			principles   TEXT    NOT NULL DEFAULT '[]',
			draft        TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_problem ON sessions(problem);

		CREATE VIRTUAL TABLE IF NOT EXISTS sessions_fts USING fts5(
			problem,
			explanation,
			content='sessions',
			content_rowid='seq'
		);

		CREATE TRIGGER IF NOT EXISTS sessions_fts_insert AFTER INSERT ON sessions BEGIN
			INSERT INTO sessions_fts(rowid, problem, explanation)
			VALUES (new.seq, new.problem, new.explanation);
		END;

		CREATE TRIGGER IF NOT EXISTS sessions_fts_delete AFTER DELETE ON sessions BEGIN
			INSERT INTO sessions_fts(sessions_fts, rowid, problem, explanation)
			VALUES ('delete', old.seq, old.problem, old.explanation);
		END;

		CREATE TRIGGER IF NOT EXISTS sessions_fts_update AFTER UPDATE ON sessions BEGIN
			INSERT INTO sessions_fts(sessions_fts, rowid, problem, explanation)
			VALUES ('delete', old.seq, old.problem, old.explanation);
			INSERT INTO sessions_fts(rowid, problem, explanation)
			VALUES (new.seq, new.problem, new.explanation);
		END;
	`)
	return err
}

// ─── Sessions ────────────────────────────────────────────────────────────────

const sessionColumns = `id, created_at, locale, problem, improving_id, worsening_id, explanation, principles, draft`

// Save stores a session. An earlier session with the identical problem
// text is replaced, and the history is trimmed to the newest Limit
// entries. Missing ids and timestamps are filled in.
func (s *Store) Save(sess Session) (*Session, error) {
	if strings.TrimSpace(sess.Problem) == "" {
		return nil, errors.New("history: problem text is required")
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	if sess.Locale == "" {
		sess.Locale = catalog.DefaultLocale
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("save: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM sessions WHERE problem = ? OR id = ?`, sess.Problem, sess.ID); err != nil {
		return nil, fmt.Errorf("save: replace duplicate: %w", err)
	}
	if err := insertSession(tx, sess); err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	if err := s.trim(tx); err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("save: commit: %w", err)
	}
	return &sess, nil
}

// List returns up to limit sessions, newest first. A limit <= 0 returns
// everything kept.
func (s *Store) List(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = s.cfg.Limit
	}
	return s.querySessions(
		`SELECT `+sessionColumns+` FROM sessions ORDER BY seq DESC LIMIT ?`, limit)
}

// Get returns the session with the given id.
func (s *Store) Get(id string) (*Session, error) {
	sessions, err := s.querySessions(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &sessions[0], nil
}

// Delete removes one session.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Clear removes every session and returns how many were deleted.
func (s *Store) Clear() (int, error) {
	res, err := s.db.Exec(`DELETE FROM sessions`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Count returns the number of stored sessions.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

// ─── Search ──────────────────────────────────────────────────────────────────

// Search finds sessions whose problem or explanation matches every word
// of query, best match first. An empty query returns the most recent
// sessions.
func (s *Store) Search(query string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > s.cfg.MaxSearchResults {
		limit = s.cfg.MaxSearchResults
	}

	ftsQuery := sanitizeFTS(query)
	if ftsQuery == "" {
		return s.List(limit)
	}

	sessions, err := s.querySessions(`
		SELECT s.id, s.created_at, s.locale, s.problem, s.improving_id, s.worsening_id,
		       s.explanation, s.principles, s.draft
		FROM sessions_fts fts
		JOIN sessions s ON s.seq = fts.rowid
		WHERE sessions_fts MATCH ?
		ORDER BY fts.rank, s.seq DESC
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return sessions, nil
}

// ─── Export / Import ─────────────────────────────────────────────────────────

// Export dumps every session, oldest first.
func (s *Store) Export() (*ExportData, error) {
	sessions, err := s.querySessions(`SELECT ` + sessionColumns + ` FROM sessions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("export sessions: %w", err)
	}
	return &ExportData{
		Version:    "1",
		ExportedAt: time.Now().UTC(),
		Sessions:   sessions,
	}, nil
}

// Import loads exported sessions. Sessions whose id already exists are
// skipped; a session with the same problem text as a stored one replaces
// it. The result is trimmed to the configured limit.
func (s *Store) Import(data *ExportData) (*ImportResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("import: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result := &ImportResult{}
	for _, sess := range data.Sessions {
		if sess.ID == "" || strings.TrimSpace(sess.Problem) == "" {
			result.SessionsSkipped++
			continue
		}
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM sessions WHERE id = ?`, sess.ID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("import session %s: %w", sess.ID, err)
		}
		if exists > 0 {
			result.SessionsSkipped++
			continue
		}
		if _, err := tx.Exec(`DELETE FROM sessions WHERE problem = ?`, sess.Problem); err != nil {
			return nil, fmt.Errorf("import session %s: %w", sess.ID, err)
		}
		if sess.CreatedAt.IsZero() {
			sess.CreatedAt = time.Now().UTC()
		}
		if sess.Locale == "" {
			sess.Locale = catalog.DefaultLocale
		}
		if err := insertSession(tx, sess); err != nil {
			return nil, fmt.Errorf("import session %s: %w", sess.ID, err)
		}
		result.SessionsImported++
	}

	if err := s.trim(tx); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("import: commit: %w", err)
	}
	return result, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func insertSession(tx *sql.Tx, sess Session) error {
	principles, err := json.Marshal(orEmpty(sess.Principles))
	if err != nil {
		return fmt.Errorf("encode principles: %w", err)
	}
	var draft *string
	if sess.Draft != nil {
		b, err := json.Marshal(sess.Draft)
		if err != nil {
			return fmt.Errorf("encode draft: %w", err)
		}
		d := string(b)
		draft = &d
	}

	_, err = tx.Exec(
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.CreatedAt.UTC().Format(time.RFC3339Nano), string(sess.Locale), sess.Problem,
		sess.ImprovingID, sess.WorseningID, sess.Explanation, string(principles), draft,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) trim(tx *sql.Tx) error {
	_, err := tx.Exec(`
		DELETE FROM sessions
		WHERE seq NOT IN (SELECT seq FROM sessions ORDER BY seq DESC LIMIT ?)`, s.cfg.Limit)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return nil
}

func (s *Store) querySessions(query string, args ...any) ([]Session, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Session
	for rows.Next() {
		var (
			sess       Session
			createdAt  string
			locale     string
			improving  sql.NullInt64
			worsening  sql.NullInt64
			principles string
			draft      sql.NullString
		)
		if err := rows.Scan(&sess.ID, &createdAt, &locale, &sess.Problem,
			&improving, &worsening, &sess.Explanation, &principles, &draft); err != nil {
			return nil, err
		}
		sess.Locale = catalog.Locale(locale)
		if sess.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("session %s: created_at: %w", sess.ID, err)
		}
		sess.ImprovingID = nullableInt(improving)
		sess.WorseningID = nullableInt(worsening)
		if err := json.Unmarshal([]byte(principles), &sess.Principles); err != nil {
			return nil, fmt.Errorf("session %s: principles: %w", sess.ID, err)
		}
		if draft.Valid {
			sess.Draft = &ai.Report{}
			if err := json.Unmarshal([]byte(draft.String), sess.Draft); err != nil {
				return nil, fmt.Errorf("session %s: draft: %w", sess.ID, err)
			}
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func orEmpty(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}

// sanitizeFTS wraps each word in quotes for safe FTS5 queries.
// "fuel engine" → `"fuel" "engine"`
func sanitizeFTS(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		w = strings.ReplaceAll(w, `"`, "")
		words[i] = `"` + w + `"`
	}
	return strings.Join(words, " ")
}

// IntPtr returns a pointer to v, for optional session fields.
func IntPtr(v int) *int { return &v }
