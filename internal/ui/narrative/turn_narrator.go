// Package narrative turn_narrator.go turns combat events into log text
package narrative

import (
	"fmt"
	"strings"
)

// TurnEventType represents different types of events that can occur during a turn
type TurnEventType int

const (
	EventAttack TurnEventType = iota
	EventKill
	EventMovement
	EventDefend
	EventWait
	EventRoundStart
	EventEncounter
	EventVictory
	EventDefeat
)

// TurnEvent represents a single event that occurred during a turn
type TurnEvent struct {
	Type        TurnEventType
	Actor       string // Name of the actor
	Target      string // Name of the target (if applicable)
	Value       int    // Damage, round number, enemy count
	IsEnemy     bool   // Whether the actor fights for the enemy side
	Description string // Pre-formatted description (optional override)
}

// TurnNarrator collects the events of one combat and narrates them.
type TurnNarrator struct {
	events []TurnEvent
	prose  *ProseGenerator
}

// NewTurnNarrator creates a narrator. A nil prose generator uses plain
// verbs.
func NewTurnNarrator(prose *ProseGenerator) *TurnNarrator {
	return &TurnNarrator{prose: prose}
}

// Reset forgets every recorded event.
func (tn *TurnNarrator) Reset() {
	tn.events = nil
}

// Record appends an event and returns its narration.
func (tn *TurnNarrator) Record(event TurnEvent) string {
	tn.events = append(tn.events, event)
	return tn.narrateEvent(event)
}

// RecordAttack records an attack and, if the blow was lethal, the kill.
// It returns the narration lines.
func (tn *TurnNarrator) RecordAttack(attacker, target string, damage int, isEnemy, killed bool) []string {
	lines := []string{tn.Record(TurnEvent{Type: EventAttack, Actor: attacker, Target: target, Value: damage, IsEnemy: isEnemy})}
	if killed {
		lines = append(lines, tn.Record(TurnEvent{Type: EventKill, Actor: attacker, Target: target, IsEnemy: isEnemy}))
	}
	return lines
}

// Events returns a copy of the recorded events.
func (tn *TurnNarrator) Events() []TurnEvent {
	return append([]TurnEvent(nil), tn.events...)
}

// Lines narrates every recorded event in order.
func (tn *TurnNarrator) Lines() []string {
	var logs []string
	for _, event := range tn.events {
		if text := tn.narrateEvent(event); text != "" {
			logs = append(logs, text)
		}
	}
	return logs
}

// narrateEvent generates narrative text for a single event
func (tn *TurnNarrator) narrateEvent(event TurnEvent) string {
	if event.Description != "" {
		return event.Description
	}

	switch event.Type {
	case EventAttack:
		return tn.narrateAttack(event)
	case EventKill:
		return tn.narrateKill(event)
	case EventMovement:
		return fmt.Sprintf("%s repositions.", event.Actor)
	case EventDefend:
		return fmt.Sprintf("%s raises a guard.", event.Actor)
	case EventWait:
		return fmt.Sprintf("%s waits.", event.Actor)
	case EventRoundStart:
		return fmt.Sprintf("-- Round %d --", event.Value)
	case EventEncounter:
		return tn.narrateEncounter(event)
	case EventVictory:
		return "The last foe falls. Victory!"
	case EventDefeat:
		return "The party has fallen..."
	default:
		return ""
	}
}

func (tn *TurnNarrator) narrateAttack(event TurnEvent) string {
	if event.Value <= 0 {
		return fmt.Sprintf("%s's attack misses %s.", event.Actor, event.Target)
	}
	verb := "hits"
	if tn.prose != nil {
		verb = tn.prose.AttackVerb(event.Value)
	}
	if event.IsEnemy {
		return fmt.Sprintf("The %s %s %s for %d damage!", event.Actor, verb, event.Target, event.Value)
	}
	return fmt.Sprintf("%s %s the %s for %d damage.", event.Actor, verb, event.Target, event.Value)
}

func (tn *TurnNarrator) narrateKill(event TurnEvent) string {
	if event.IsEnemy {
		return fmt.Sprintf("%s collapses!", event.Target)
	}
	return fmt.Sprintf("The %s falls!", event.Target)
}

func (tn *TurnNarrator) narrateEncounter(event TurnEvent) string {
	if tn.prose != nil {
		return tn.prose.Encounter(strings.Split(event.Target, ","))
	}
	return fmt.Sprintf("%d enemies block the way!", event.Value)
}
