// Package fixtures loads match rosters from YAML or JSON files, so the ordering
// engine can be run without the statistics source.
package fixtures

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/model"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/normalize"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/types"
	"gopkg.in/yaml.v3"
)

// Match is one fixture file.
type Match struct {
	Title  string                  `json:"title" yaml:"title"`
	Teams  []Team                  `json:"teams" yaml:"teams"`
	Events []types.RawEventRequest `json:"events" yaml:"events"`
}

// Team is a roster in a fixture file.
type Team struct {
	Name    string   `json:"name" yaml:"name"`
	Subject bool     `json:"subject" yaml:"subject"`
	Players []Player `json:"players" yaml:"players"`
}

// Player is a roster entry in a fixture file.
type Player struct {
	Name   string  `json:"name" yaml:"name"`
	Number *int    `json:"number,omitempty" yaml:"number"`
	Events []Event `json:"events" yaml:"events"`
}

// Event is one player event in a fixture file.
type Event struct {
	Kind                string `json:"kind" yaml:"kind"`
	GoalType            string `json:"goal_type,omitempty" yaml:"goal_type"`
	SinceKickoffSeconds int64  `json:"since_kickoff_seconds" yaml:"since_kickoff_seconds"`
	Segment             string `json:"segment,omitempty" yaml:"segment"`
}

// Format selects the decoder.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// Decode reads one fixture.
func Decode(r io.Reader, f Format) (Match, error) {
	var m Match
	var err error
	switch f {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&m)
	default:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&m)
	}
	if err != nil {
		return Match{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(m.Teams) == 0 && len(m.Events) == 0 {
		return Match{}, fmt.Errorf("%w: no teams or events", ErrEmpty)
	}
	return m, nil
}

// Load reads a fixture file, picking the decoder from its extension.
func Load(path string) (Match, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Match{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	f := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		f = FormatJSON
	}
	m, err := Decode(bytes.NewReader(data), f)
	if err != nil {
		return Match{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ModelEvents expands the rosters and appends the flat events.
func (m Match) ModelEvents() ([]model.Event, error) {
	teams := make([]normalize.Team, 0, len(m.Teams))
	for _, t := range m.Teams {
		nt := normalize.Team{Name: t.Name, Subject: t.Subject}
		for _, p := range t.Players {
			np := normalize.Player{Name: p.Name, Number: p.Number}
			for _, e := range p.Events {
				np.Events = append(np.Events, normalize.SourceEvent{
					Kind:         e.Kind,
					GoalType:     e.GoalType,
					SinceKickoff: time.Duration(e.SinceKickoffSeconds) * time.Second,
					Segment:      e.Segment,
				})
			}
			nt.Players = append(nt.Players, np)
		}
		teams = append(teams, nt)
	}

	events, err := normalize.BuildMatchEvents(teams...)
	if err != nil {
		return nil, err
	}
	for i, r := range m.Events {
		e, err := normalize.FromRaw(r.Raw())
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, e)
	}
	return events, nil
}
