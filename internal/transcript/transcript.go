// Package transcript persists the chat log locally. Chat messages are
// never removed upstream, so the gateway keeps its own append-only copy
// in an embedded sqlite file.
package transcript

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bingohall/bingo-client/internal/chat"
)

type Store struct {
	db *sql.DB
}

// Open creates or opens the transcript database at path and ensures the
// schema exists. Safe to call against an existing file.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open transcript db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create transcript schema: %w", err)
	}
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS message (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    author TEXT NOT NULL,
    color TEXT NOT NULL,
    body TEXT NOT NULL,
    received_at TIMESTAMP NOT NULL
);
`

func (s *Store) Append(m chat.Message) error {
	_, err := s.db.Exec(
		`INSERT INTO message (author, color, body, received_at) VALUES (?, ?, ?, ?)`,
		m.Player.Name, m.Player.Color, m.Body, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("append transcript message: %w", err)
	}
	return nil
}

// Recent returns up to limit messages, newest first, matching the
// display order of the live chat panel.
func (s *Store) Recent(limit int) ([]chat.Message, error) {
	rows, err := s.db.Query(
		`SELECT author, color, body FROM message ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var out []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.Player.Name, &m.Player.Color, &m.Body); err != nil {
			return nil, fmt.Errorf("scan transcript row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
