package gamestate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoSave is returned when a slot is empty, unreadable or holds data
	// that does not describe a valid state.
	ErrNoSave = errors.New("no save found")
	// ErrInvalidState is returned by Validate.
	ErrInvalidState = errors.New("invalid game state")
)

// SlotStore is the key/value backend that save slots are written to.
type SlotStore interface {
	Put(ctx context.Context, slot string, data []byte) error
	Get(ctx context.Context, slot string) ([]byte, error)
}

// Marshal serializes the state as indented JSON.
func Marshal(st State) ([]byte, error) {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize game state: %w", err)
	}
	return data, nil
}

// Unmarshal parses and validates a serialized state.
func Unmarshal(data []byte) (State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("failed to parse game state: %w", err)
	}
	normalize(&st)
	if err := Validate(st); err != nil {
		return State{}, err
	}
	return st, nil
}

// Validate checks the structural invariants a loaded tree must satisfy.
func Validate(st State) error {
	var problems []string
	if len(st.Party.Characters) == 0 {
		problems = append(problems, "party has no characters")
	}
	seen := make(map[string]bool)
	for i, c := range st.Party.Characters {
		if c.ID == "" {
			problems = append(problems, fmt.Sprintf("character %d has no id", i))
		} else if seen[c.ID] {
			problems = append(problems, fmt.Sprintf("duplicate character id %q", c.ID))
		}
		seen[c.ID] = true
		if c.HitPoints.Max <= 0 {
			problems = append(problems, fmt.Sprintf("character %q has max hp %d", c.ID, c.HitPoints.Max))
		}
		if c.HitPoints.Current < 0 || c.HitPoints.Current > c.HitPoints.Max {
			problems = append(problems, fmt.Sprintf("character %q has hp %d/%d", c.ID, c.HitPoints.Current, c.HitPoints.Max))
		}
	}
	if st.Party.Position.MapID == "" {
		problems = append(problems, "party position has no map")
	}
	if st.Party.Gold < 0 {
		problems = append(problems, fmt.Sprintf("negative gold %d", st.Party.Gold))
	}
	if st.UI.ActiveScreen == "" {
		problems = append(problems, "no active screen")
	}
	if c := st.Combat; c != nil {
		if len(c.Participants) == 0 {
			problems = append(problems, "combat has no participants")
		} else if c.CurrentTurn < 0 || c.CurrentTurn >= len(c.Participants) {
			problems = append(problems, fmt.Sprintf("combat turn %d out of range", c.CurrentTurn))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidState, strings.Join(problems, "; "))
	}
	return nil
}

// Save writes the current state to a slot. Failures are logged and returned;
// callers treat them as recoverable.
func (s *Store) Save(ctx context.Context, slots SlotStore, slot string) error {
	data, err := Marshal(s.Snapshot())
	if err != nil {
		s.logger.Warn("save failed", "slot", slot, "error", err)
		return err
	}
	if err := slots.Put(ctx, slot, data); err != nil {
		s.logger.Warn("save failed", "slot", slot, "error", err)
		return fmt.Errorf("failed to write slot %s: %w", slot, err)
	}
	s.logger.Info("game saved", "slot", slot, "bytes", len(data))
	return nil
}

// ReadSlot loads and validates a slot without touching any store. Every
// failure is reported as ErrNoSave.
func ReadSlot(ctx context.Context, slots SlotStore, slot string) (State, error) {
	data, err := slots.Get(ctx, slot)
	if err != nil {
		return State{}, fmt.Errorf("%w: slot %s: %v", ErrNoSave, slot, err)
	}
	if len(data) == 0 {
		return State{}, fmt.Errorf("%w: slot %s is empty", ErrNoSave, slot)
	}
	st, err := Unmarshal(data)
	if err != nil {
		return State{}, fmt.Errorf("%w: slot %s: %v", ErrNoSave, slot, err)
	}
	return st, nil
}

// Restore replaces the live tree with the contents of a slot. On failure the
// store is left unchanged.
func (s *Store) Restore(ctx context.Context, slots SlotStore, slot string) (State, error) {
	st, err := ReadSlot(ctx, slots, slot)
	if err != nil {
		s.logger.Warn("load failed", "slot", slot, "error", err)
		return State{}, err
	}
	s.Load(st)
	s.logger.Info("game loaded", "slot", slot)
	return s.Snapshot(), nil
}
