package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/openriskhq/decisionguide/internal/engine"
)

const schema = `
CREATE TABLE IF NOT EXISTS assessments (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at    TEXT NOT NULL,
	tree_id       TEXT NOT NULL,
	tree_title    TEXT NOT NULL,
	decision      TEXT NOT NULL,
	explanation   TEXT,
	path_json     TEXT NOT NULL,
	answers_json  TEXT NOT NULL,
	score         INTEGER,
	level         TEXT
);
CREATE INDEX IF NOT EXISTS idx_assessments_tree ON assessments(tree_id);
CREATE INDEX IF NOT EXISTS idx_assessments_created ON assessments(created_at);
`

// Entry is one completed assessment record.
type Entry struct {
	ID          int64           `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	TreeID      string          `json:"tree_id"`
	TreeTitle   string          `json:"tree_title"`
	Decision    string          `json:"decision"`
	Explanation string          `json:"explanation,omitempty"`
	Path        []string        `json:"path"`
	Answers     []engine.Answer `json:"answers"`
	Score       *int            `json:"score,omitempty"`
	Level       string          `json:"level,omitempty"`
}

// Filter narrows a history query. Zero values mean no constraint.
type Filter struct {
	TreeID   string
	Decision string
	Query    string
	Since    time.Time
	Until    time.Time
	Limit    int
}

// Store is the append-only assessment history, backed by SQLite. Appends
// serialize through the database, so concurrent sessions cannot interleave
// records. The store keeps at most maxEntries rows, evicting the oldest.
type Store struct {
	db         *sql.DB
	maxEntries int
}

// Open opens (or creates) the history database and runs migrations.
func Open(path string, maxEntries int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &Store{db: db, maxEntries: maxEntries}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. analytics).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Append records one completed assessment and prunes rows beyond the cap.
func (s *Store) Append(e Entry) error {
	pathJSON, err := json.Marshal(e.Path)
	if err != nil {
		return fmt.Errorf("marshal path: %w", err)
	}
	answersJSON, err := json.Marshal(e.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	// created_at is stored as fixed-width RFC3339 (no fractional seconds) so
	// the string comparisons in Search order chronologically.
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	var score interface{}
	if e.Score != nil {
		score = *e.Score
	}
	var level interface{}
	if e.Level != "" {
		level = e.Level
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO assessments (created_at, tree_id, tree_title, decision, explanation, path_json, answers_json, score, level)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.Format(time.RFC3339), e.TreeID, e.TreeTitle, e.Decision, e.Explanation,
		string(pathJSON), string(answersJSON), score, level,
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}

	_, err = tx.Exec(
		`DELETE FROM assessments WHERE id NOT IN (SELECT id FROM assessments ORDER BY id DESC LIMIT ?)`,
		s.maxEntries,
	)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}

	return tx.Commit()
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.Search(Filter{Limit: limit})
}

// Search returns entries matching the filter, most recent first. Query
// matches case-insensitively against tree title, decision, and explanation.
func (s *Store) Search(f Filter) ([]Entry, error) {
	q := `SELECT id, created_at, tree_id, tree_title, decision, explanation, path_json, answers_json, score, level
	      FROM assessments`
	var conds []string
	var args []interface{}

	if f.TreeID != "" {
		conds = append(conds, "tree_id = ?")
		args = append(args, f.TreeID)
	}
	if f.Decision != "" {
		conds = append(conds, "decision = ?")
		args = append(args, f.Decision)
	}
	if f.Query != "" {
		conds = append(conds, "(LOWER(tree_title) LIKE ? OR LOWER(decision) LIKE ? OR LOWER(explanation) LIKE ?)")
		like := "%" + strings.ToLower(f.Query) + "%"
		args = append(args, like, like, like)
	}
	if !f.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.Since.UTC().Format(time.RFC3339))
	}
	if !f.Until.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, f.Until.UTC().Format(time.RFC3339))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY id DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored assessments.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM assessments`).Scan(&n)
	return n, err
}

// Clear deletes all history.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM assessments`)
	return err
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var e Entry
	var createdStr, pathJSON, answersJSON string
	var explanation, level sql.NullString
	var score sql.NullInt64

	if err := rows.Scan(&e.ID, &createdStr, &e.TreeID, &e.TreeTitle, &e.Decision,
		&explanation, &pathJSON, &answersJSON, &score, &level); err != nil {
		return Entry{}, fmt.Errorf("scan assessment: %w", err)
	}

	e.Timestamp, _ = time.Parse(time.RFC3339, createdStr)
	if explanation.Valid {
		e.Explanation = explanation.String
	}
	if err := json.Unmarshal([]byte(pathJSON), &e.Path); err != nil {
		return Entry{}, fmt.Errorf("unmarshal path: %w", err)
	}
	if err := json.Unmarshal([]byte(answersJSON), &e.Answers); err != nil {
		return Entry{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	if score.Valid {
		n := int(score.Int64)
		e.Score = &n
	}
	if level.Valid {
		e.Level = level.String
	}
	return e, nil
}
