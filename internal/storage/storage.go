// Package storage provides the save slot backends: a SQLite database using the
// pure-Go modernc.org/sqlite driver, and a plain directory of JSON files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrSlotNotFound is returned by Get and Delete for an unknown slot.
var ErrSlotNotFound = errors.New("storage: slot not found")

// SlotInfo describes a stored slot.
type SlotInfo struct {
	Name      string
	Size      int
	UpdatedAt time.Time
}

// Slots is a named-slot key/value store for serialized game states.
type Slots interface {
	Put(ctx context.Context, slot string, data []byte) error
	Get(ctx context.Context, slot string) ([]byte, error)
	List(ctx context.Context) ([]SlotInfo, error)
	Delete(ctx context.Context, slot string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Open returns the slot store for backend rooted at path. For sqlite path is
// the database file, for file it is a directory.
func Open(backend, path string) (Slots, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	switch backend {
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendFile:
		return OpenDir(path)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}

func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func checkSlot(slot string) error {
	if slot == "" {
		return errors.New("storage: empty slot name")
	}
	if strings.ContainsAny(slot, `/\`) || slot == "." || slot == ".." {
		return fmt.Errorf("storage: invalid slot name %q", slot)
	}
	return nil
}
