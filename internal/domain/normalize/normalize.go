// Package normalize maps events reported by the statistics source onto the
// event model.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/model"
	"golang.org/x/text/unicode/norm"
)

// Source vocabulary for event kinds.
var sourceKinds = map[string]model.Kind{
	"LINE_UP":            model.KindLineup,
	"BENCHED":            model.KindBench,
	"CAPTAIN":            model.KindCaptain,
	"GOAL_SCORE":         model.KindGoal,
	"GOAL_ASSIST":        model.KindAssist,
	"SUBSTITUTION_IN":    model.KindSubstitutionIn,
	"SUBSTITUTION_OUT":   model.KindSubstitutionOut,
	"YELLOW_CARD":        model.KindYellowCard,
	"FIRST_YELLOW_CARD":  model.KindFirstYellowCard,
	"SECOND_YELLOW_CARD": model.KindSecondYellowCard,
	"RED_CARD":           model.KindRedCard,
	"PENALTY_MISSED":     model.KindPenaltyMissed,
	"PENALTY_STOPPED":    model.KindPenaltyStopped,
}

// Source vocabulary for goal types. Plain kicks carry no modifier.
var sourceGoalTypes = map[string]model.Modifier{
	"":            model.ModifierNone,
	"NORMAL_KICK": model.ModifierNone,
	"UNKNOWN":     model.ModifierNone,
	"OWN_GOAL":    model.ModifierOwnGoal,
	"PENALTY":     model.ModifierPenalty,
	"HEADER":      model.ModifierHeader,
	"FREE_KICK":   model.ModifierFreeKick,
}

// RawEvent is the flat tuple handed over by the statistics adapter.
type RawEvent struct {
	Name         string
	Number       *int // nil when the source does not know the shirt number
	SinceKickoff time.Duration
	Kind         string
	GoalType     string
	Subject      bool
	Segment      string // empty means no segment
}

// SourceEvent is one event of a player in a roster.
type SourceEvent struct {
	Kind         string
	GoalType     string
	SinceKickoff time.Duration
	Segment      string
}

// Player is one roster entry with everything that happened to the player.
type Player struct {
	Name   string
	Number *int
	Events []SourceEvent
}

// Team is one side of a match.
type Team struct {
	Name    string
	Subject bool
	Players []Player
}

// FromRaw converts a single source tuple. Unknown vocabulary is an error, never a
// silent default.
func FromRaw(r RawEvent) (model.Event, error) {
	kind, ok := sourceKinds[strings.ToUpper(strings.TrimSpace(r.Kind))]
	if !ok {
		return model.Event{}, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}
	modifier, ok := sourceGoalTypes[strings.ToUpper(strings.TrimSpace(r.GoalType))]
	if !ok {
		return model.Event{}, fmt.Errorf("%w: %q", ErrUnknownGoalType, r.GoalType)
	}

	number := model.NoNumber
	if r.Number != nil && *r.Number >= 0 {
		number = model.ShirtNumber(*r.Number)
	}

	side := model.SideOpponent
	if r.Subject {
		side = model.SideSubject
	}

	var opts []model.Option
	if seg := strings.TrimSpace(r.Segment); seg != "" {
		opts = append(opts, model.WithSegment(seg))
	}

	e, err := model.New(PlayerName(r.Name), number, r.SinceKickoff, kind, modifier, side, opts...)
	if err != nil {
		return model.Event{}, fmt.Errorf("player %q: %w", r.Name, err)
	}
	return e, nil
}

// BuildTeamEvents expands a roster. A player without a lineup event did not start
// and is listed with a single bench event at minute 0.
func BuildTeamEvents(team Team) ([]model.Event, error) {
	var events []model.Event
	for _, p := range team.Players {
		started := false
		for _, se := range p.Events {
			e, err := FromRaw(RawEvent{
				Name:         p.Name,
				Number:       p.Number,
				SinceKickoff: se.SinceKickoff,
				Kind:         se.Kind,
				GoalType:     se.GoalType,
				Subject:      team.Subject,
				Segment:      se.Segment,
			})
			if err != nil {
				return nil, fmt.Errorf("team %q: %w", team.Name, err)
			}
			if e.Kind == model.KindLineup {
				started = true
			}
			events = append(events, e)
		}
		if started {
			continue
		}
		bench, err := FromRaw(RawEvent{Name: p.Name, Number: p.Number, Kind: "BENCHED", Subject: team.Subject})
		if err != nil {
			return nil, fmt.Errorf("team %q: %w", team.Name, err)
		}
		events = append(events, bench)
	}
	return events, nil
}

// BuildMatchEvents expands both rosters of a match.
func BuildMatchEvents(teams ...Team) ([]model.Event, error) {
	var events []model.Event
	for _, t := range teams {
		te, err := BuildTeamEvents(t)
		if err != nil {
			return nil, err
		}
		events = append(events, te...)
	}
	return events, nil
}

// PlayerName puts a name into NFC form and collapses inner whitespace, so the
// same player scraped twice renders identically.
func PlayerName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), " ")
}
