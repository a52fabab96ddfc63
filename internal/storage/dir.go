package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const slotExt = ".json"

// Dir stores each slot as <dir>/<slot>.json.
type Dir struct {
	root string
}

// OpenDir creates the directory if needed.
func OpenDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", root, err)
	}
	return &Dir{root: root}, nil
}

func (d *Dir) path(slot string) string {
	return filepath.Join(d.root, slot+slotExt)
}

// Put writes a slot through a temp file so a crash never leaves half a save.
func (d *Dir) Put(ctx context.Context, slot string, data []byte) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(d.root, slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("storage: cannot write slot %s: %w", slot, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: cannot write slot %s: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: cannot write slot %s: %w", slot, err)
	}
	if err := os.Rename(tmp.Name(), d.path(slot)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: cannot write slot %s: %w", slot, err)
	}
	return nil
}

// Get reads a slot.
func (d *Dir) Get(ctx context.Context, slot string) ([]byte, error) {
	if err := checkSlot(slot); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot read slot %s: %w", slot, err)
	}
	return data, nil
}

// List returns every slot ordered by name.
func (d *Dir) List(ctx context.Context) ([]SlotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot list slots: %w", err)
	}
	var out []SlotInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), slotExt) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, SlotInfo{
			Name:      strings.TrimSuffix(e.Name(), slotExt),
			Size:      int(fi.Size()),
			UpdatedAt: fi.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a slot.
func (d *Dir) Delete(ctx context.Context, slot string) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	err := os.Remove(d.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
	}
	if err != nil {
		return fmt.Errorf("storage: cannot delete slot %s: %w", slot, err)
	}
	return nil
}

// Close is a no-op.
func (d *Dir) Close() error { return nil }
