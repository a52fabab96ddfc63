package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLite stores slots in a single table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at dbPath and runs migrations.
func OpenSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS save_slots (
			slot TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put writes or replaces a slot.
func (s *SQLite) Put(ctx context.Context, slot string, data []byte) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO save_slots (slot, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		slot, data, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write slot %s: %w", slot, err)
	}
	return nil
}

// Get reads a slot.
func (s *SQLite) Get(ctx context.Context, slot string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM save_slots WHERE slot = ?", slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot read slot %s: %w", slot, err)
	}
	return data, nil
}

// List returns every slot ordered by name.
func (s *SQLite) List(ctx context.Context) ([]SlotInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT slot, length(data), updated_at FROM save_slots ORDER BY slot")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot list slots: %w", err)
	}
	defer rows.Close()

	var out []SlotInfo
	for rows.Next() {
		var info SlotInfo
		var updated int64
		if err := rows.Scan(&info.Name, &info.Size, &updated); err != nil {
			return nil, fmt.Errorf("storage: cannot scan slot: %w", err)
		}
		info.UpdatedAt = time.Unix(0, updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes a slot.
func (s *SQLite) Delete(ctx context.Context, slot string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM save_slots WHERE slot = ?", slot)
	if err != nil {
		return fmt.Errorf("storage: cannot delete slot %s: %w", slot, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
	}
	return nil
}
