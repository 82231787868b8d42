// Package types contains the JSON shapes shared by the API, the workers and the CLI.
package types

import (
	"time"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/codec"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/model"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/normalize"
)

// EventView is the read model of a single event.
type EventView struct {
	Player   string  `json:"player"`
	Number   *int    `json:"number,omitempty"`
	Minute   int     `json:"minute"`
	Kind     string  `json:"kind"`
	Modifier string  `json:"modifier,omitempty"`
	Team     string  `json:"team"`
	Group    string  `json:"group"`
	Segment  *string `json:"segment,omitempty"`
	Record   string  `json:"record"`
}

// NewEventView renders an event together with its stored record line.
func NewEventView(e model.Event) (EventView, error) {
	record, err := codec.Format(e)
	if err != nil {
		return EventView{}, err
	}
	v := EventView{
		Player:   e.PlayerName,
		Minute:   e.Minute,
		Kind:     e.Kind.String(),
		Modifier: e.Modifier.String(),
		Team:     e.Side.String(),
		Group:    e.Group().String(),
		Record:   record,
	}
	if e.Number.Known() {
		n := int(e.Number)
		v.Number = &n
	}
	if e.Segment.Valid {
		s := e.Segment.Label
		v.Segment = &s
	}
	return v, nil
}

// GroupViews renders ordered partitions.
func GroupViews(groups [][]model.Event) ([][]EventView, error) {
	out := make([][]EventView, 0, len(groups))
	for _, g := range groups {
		views := make([]EventView, 0, len(g))
		for _, e := range g {
			v, err := NewEventView(e)
			if err != nil {
				return nil, err
			}
			views = append(views, v)
		}
		out = append(out, views)
	}
	return out, nil
}

// RawEventRequest is one source event posted to the ordering endpoint.
type RawEventRequest struct {
	Player              string `json:"player" yaml:"player"`
	Number              *int   `json:"number,omitempty" yaml:"number"`
	SinceKickoffSeconds int64  `json:"since_kickoff_seconds" yaml:"since_kickoff_seconds"`
	Kind                string `json:"kind" yaml:"kind"`
	GoalType            string `json:"goal_type,omitempty" yaml:"goal_type"`
	Subject             bool   `json:"subject" yaml:"subject"`
	Segment             string `json:"segment,omitempty" yaml:"segment"`
}

// Raw converts the request into the normalizer's tuple.
func (r RawEventRequest) Raw() normalize.RawEvent {
	return normalize.RawEvent{
		Name:         r.Player,
		Number:       r.Number,
		SinceKickoff: time.Duration(r.SinceKickoffSeconds) * time.Second,
		Kind:         r.Kind,
		GoalType:     r.GoalType,
		Subject:      r.Subject,
		Segment:      r.Segment,
	}
}

// Outcome is what happened to one page.
type Outcome string

const (
	OutcomeChanged   Outcome = "changed"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeDryRun    Outcome = "dry_run"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// PageResult reports the processing of one page.
type PageResult struct {
	Title   string  `json:"title"`
	Outcome Outcome `json:"outcome"`
	Events  int     `json:"events"`
	Value   string  `json:"value,omitempty"`
	Diff    string  `json:"diff,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}
