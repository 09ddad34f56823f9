package storage

import (
	"context"
	"errors"
	"time"

	"github.com/michaelbrown/ctxlaunch/internal/launch"
)

// ErrNotFound is returned when no stored server matches an identifier.
var ErrNotFound = errors.New("server not found")

// Record is a user-added context server persisted across runs.
type Record struct {
	UUID        string            `json:"uuid"`
	ID          string            `json:"id"`
	Command     string            `json:"command"`
	Args        []string          `json:"args"`
	Env         map[string]string `json:"env"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Entry converts the record to a registry entry.
func (r Record) Entry() launch.Entry {
	return launch.Entry{
		ID:          r.ID,
		Executable:  r.Command,
		Args:        r.Args,
		Env:         r.Env,
		Description: r.Description,
	}
}

// Store is the persistence interface for user-added servers.
type Store interface {
	// PutServer inserts or replaces the server with r.ID. A new record gets
	// a fresh UUID; replacing keeps the existing UUID and CreatedAt.
	PutServer(ctx context.Context, r *Record) error

	// GetServer returns the server with the exact identifier.
	GetServer(ctx context.Context, id string) (*Record, error)

	// ListServers returns all servers ordered by identifier.
	ListServers(ctx context.Context) ([]Record, error)

	// DeleteServer removes a server.
	DeleteServer(ctx context.Context, id string) error

	// Close releases resources.
	Close() error
}

// Entries loads every stored server as registry entries.
func Entries(ctx context.Context, s Store) ([]launch.Entry, error) {
	records, err := s.ListServers(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]launch.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, r.Entry())
	}
	return entries, nil
}
