package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ChatBot/internal/lib/sl"

	_ "modernc.org/sqlite"
)

// SQLiteDB keeps state documents as JSON rows in a single file.
type SQLiteDB struct {
	db  *sql.DB
	log *slog.Logger
}

// NewSQLiteDB opens the database at path, creating parent directories and the schema as needed.
func NewSQLiteDB(path string, logger *slog.Logger) (*SQLiteDB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteDB{
		db:  db,
		log: logger.With(sl.Module("sqlite")),
	}
	if err = s.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s.log.Info("sqlite store initialized", slog.String("path", path))
	return s, nil
}

func (s *SQLiteDB) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			key TEXT NOT NULL,
			data BLOB NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (collection, key)
		);
	`)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// SaveDocument replaces the document stored under collection and key.
func (s *SQLiteDB) SaveDocument(ctx context.Context, collection, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", collection, key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (collection, key, data, updated_at) VALUES (?, ?, ?, ?)`,
		collection, key, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving %s/%s: %w", collection, key, err)
	}
	return nil
}

// LoadDocument decodes the stored document into out.
func (s *SQLiteDB) LoadDocument(ctx context.Context, collection, key string, out any) (bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND key = ?`,
		collection, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading %s/%s: %w", collection, key, err)
	}
	if err = json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decoding %s/%s: %w", collection, key, err)
	}
	return true, nil
}

func (s *SQLiteDB) DeleteDocument(ctx context.Context, collection, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND key = ?`,
		collection, key,
	)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, key, err)
	}
	return nil
}
