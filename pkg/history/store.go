package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mattsolo1/grove-jupyter/pkg/models"
)

// Store keeps a log of open and save outcomes
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database in dataDir
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataDir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history: %w", err)
	}
	return s, nil
}

// init creates the database schema
func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		server TEXT NOT NULL,
		path TEXT NOT NULL,
		kind TEXT NOT NULL,
		action TEXT NOT NULL,
		ok BOOLEAN NOT NULL,
		message TEXT,
		at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_server ON events(server);
	CREATE INDEX IF NOT EXISTS idx_events_at ON events(at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record appends an entry. A zero At is set to the current time.
func (s *Store) Record(e *models.HistoryEntry) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	res, err := s.db.Exec(`
		INSERT INTO events (server, path, kind, action, ok, message, at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.Server, e.Path, string(e.Kind), string(e.Action), e.OK, e.Message, e.At)
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		e.ID = id
	}
	return nil
}

// Recent returns up to limit entries, newest first. An empty server
// returns entries for every server.
func (s *Store) Recent(server string, limit int) ([]*models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, server, path, kind, action, ok, message, at
		FROM events
	`
	var args []any
	if server != "" {
		query += " WHERE server = ?"
		args = append(args, server)
	}
	query += " ORDER BY at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []*models.HistoryEntry
	for rows.Next() {
		e := &models.HistoryEntry{}
		var kind, action string
		var message sql.NullString
		if err := rows.Scan(&e.ID, &e.Server, &e.Path, &kind, &action, &e.OK, &message, &e.At); err != nil {
			return nil, err
		}
		e.Kind = models.NodeKind(kind)
		e.Action = models.HistoryAction(action)
		e.Message = message.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
