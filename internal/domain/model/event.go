// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// ShirtNumber is a player's shirt number for one match.
type ShirtNumber int

// NoNumber marks a player whose shirt number is unknown.
const NoNumber ShirtNumber = -1

// Known reports whether n is a real shirt number.
func (n ShirtNumber) Known() bool { return n >= 0 }

// Side tells which team a player belonged to in the match.
type Side uint8

const (
	// SideSubject is the team the page is written about (Maccabi).
	SideSubject Side = iota
	// SideOpponent is the opposing team.
	SideOpponent
)

func (s Side) String() string {
	if s == SideSubject {
		return "subject"
	}
	return "opponent"
}

// Segment labels a part of the match (e.g. extra time) when the minute alone is
// ambiguous. The zero value means "no segment", which is distinct from a set but
// empty label.
type Segment struct {
	Label string
	Valid bool
}

// SegmentOf returns a set segment with the given label.
func SegmentOf(label string) Segment {
	return Segment{Label: label, Valid: true}
}

// Event is one occurrence involving one player during one match.
// Events are values: build them with New and never mutate them afterwards.
type Event struct {
	PlayerName string
	Number     ShirtNumber
	Minute     int // whole minutes since kickoff
	Kind       Kind
	Modifier   Modifier // goals only
	Side       Side
	Segment    Segment
}

// Option customizes an Event built by New.
type Option func(*Event)

// WithSegment attaches a match segment label.
func WithSegment(label string) Option {
	return func(e *Event) {
		e.Segment = SegmentOf(label)
	}
}

// New builds an Event from a duration since kickoff, truncated to whole minutes.
func New(name string, number ShirtNumber, sinceKickoff time.Duration, kind Kind, modifier Modifier, side Side, opts ...Option) (Event, error) {
	if sinceKickoff < 0 {
		return Event{}, fmt.Errorf("%w: %s", ErrNegativeMinute, sinceKickoff)
	}
	e := Event{
		PlayerName: name,
		Number:     number,
		Minute:     MinuteOf(sinceKickoff),
		Kind:       kind,
		Modifier:   modifier,
		Side:       side,
	}
	for _, opt := range opts {
		opt(&e)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

// MinuteOf truncates a duration since kickoff down to whole minutes.
func MinuteOf(sinceKickoff time.Duration) int {
	return int(sinceKickoff / time.Minute)
}

// Validate checks the Event invariants.
func (e Event) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, e.Kind)
	}
	if !e.Modifier.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownModifier, e.Modifier)
	}
	if e.Modifier != ModifierNone && e.Kind != KindGoal {
		return fmt.Errorf("%w: %s-%s", ErrModifierNotAllowed, e.Kind, e.Modifier)
	}
	if e.Minute < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeMinute, e.Minute)
	}
	if e.Side != SideSubject && e.Side != SideOpponent {
		return fmt.Errorf("%w: %d", ErrUnknownSide, e.Side)
	}
	return nil
}

// Group returns the display group the event belongs to.
func (e Event) Group() Group { return e.Kind.Group() }

// IsPenaltyGoal reports whether the event is a goal scored from the spot.
func (e Event) IsPenaltyGoal() bool {
	return e.Kind == KindGoal && e.Modifier == ModifierPenalty
}
