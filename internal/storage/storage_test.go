package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Slots {
	t.Helper()
	dir := t.TempDir()

	db, err := Open(BackendSQLite, filepath.Join(dir, "db", "saves.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	files, err := Open(BackendFile, filepath.Join(dir, "files"))
	if err != nil {
		t.Fatalf("Failed to open file store: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		files.Close()
	})
	return map[string]Slots{BackendSQLite: db, BackendFile: files}
}

func TestSlotsPutGetOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put(ctx, "goldbox_save", []byte(`{"a":1}`)); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			if err := s.Put(ctx, "goldbox_save", []byte(`{"a":2}`)); err != nil {
				t.Fatalf("Put overwrite failed: %v", err)
			}
			data, err := s.Get(ctx, "goldbox_save")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(data) != `{"a":2}` {
				t.Errorf("Expected overwritten data, got %s", data)
			}
		})
	}
}

func TestSlotsMissing(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrSlotNotFound) {
				t.Errorf("Expected ErrSlotNotFound from Get, got %v", err)
			}
			if err := s.Delete(ctx, "nope"); !errors.Is(err, ErrSlotNotFound) {
				t.Errorf("Expected ErrSlotNotFound from Delete, got %v", err)
			}
		})
	}
}

func TestSlotsListAndDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, slot := range []string{"goldbox_quicksave", "goldbox_save"} {
				if err := s.Put(ctx, slot, []byte("{}")); err != nil {
					t.Fatalf("Put %s failed: %v", slot, err)
				}
			}
			list, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(list) != 2 || list[0].Name != "goldbox_quicksave" || list[1].Name != "goldbox_save" {
				t.Fatalf("Unexpected slot list %+v", list)
			}
			if list[0].Size != 2 {
				t.Errorf("Expected size 2, got %d", list[0].Size)
			}

			if err := s.Delete(ctx, "goldbox_save"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			list, _ = s.List(ctx)
			if len(list) != 1 {
				t.Errorf("Expected 1 slot after delete, got %d", len(list))
			}
		})
	}
}

func TestSlotNameValidation(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, bad := range []string{"", "../escape", "a/b"} {
				if err := s.Put(ctx, bad, []byte("{}")); err == nil {
					t.Errorf("Expected error for slot %q", bad)
				}
			}
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("redis", t.TempDir()); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
