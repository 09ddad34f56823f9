package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/michaelbrown/ctxlaunch/internal/storage"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements storage.Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and runs migrations.
// Use ":memory:" for an in-memory database (useful for testing).
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Each :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) PutServer(ctx context.Context, rec *storage.Record) error {
	if rec.ID == "" || rec.Command == "" {
		return fmt.Errorf("storing server: id and command are required")
	}

	args, err := json.Marshal(nonNilArgs(rec.Args))
	if err != nil {
		return fmt.Errorf("marshaling args: %w", err)
	}
	env, err := json.Marshal(nonNilEnv(rec.Env))
	if err != nil {
		return fmt.Errorf("marshaling env: %w", err)
	}

	now := time.Now().UTC()
	var created string
	// One statement, so concurrent writers of the same id agree on the
	// surviving uuid and created_at.
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO servers (uuid, id, command, args, env, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			command = excluded.command,
			args = excluded.args,
			env = excluded.env,
			description = excluded.description,
			updated_at = excluded.updated_at
		RETURNING uuid, created_at`,
		uuid.New().String(), rec.ID, rec.Command, string(args), string(env), rec.Description,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	).Scan(&rec.UUID, &created)
	if err != nil {
		return fmt.Errorf("storing server %s: %w", rec.ID, err)
	}
	rec.CreatedAt, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return fmt.Errorf("parsing created_at for %s: %w", rec.ID, err)
	}
	rec.UpdatedAt = now.Truncate(time.Second)
	return nil
}

func (s *SQLiteStore) GetServer(ctx context.Context, id string) (*storage.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT uuid, id, command, args, env, description, created_at, updated_at
		FROM servers WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying server %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLiteStore) ListServers(ctx context.Context) ([]storage.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uuid, id, command, args, env, description, created_at, updated_at
		FROM servers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing servers: %w", err)
	}
	defer rows.Close()

	var records []storage.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) DeleteServer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM servers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting server %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner works with both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*storage.Record, error) {
	var rec storage.Record
	var args, env, createdAt, updatedAt string
	err := s.Scan(&rec.UUID, &rec.ID, &rec.Command, &args, &env,
		&rec.Description, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(args), &rec.Args); err != nil {
		return nil, fmt.Errorf("unmarshaling args of %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(env), &rec.Env); err != nil {
		return nil, fmt.Errorf("unmarshaling env of %s: %w", rec.ID, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &rec, nil
}

func nonNilArgs(a []string) []string {
	if a == nil {
		return []string{}
	}
	return a
}

func nonNilEnv(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
