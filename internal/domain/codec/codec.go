// Package codec converts player events to and from the text stored in the
// player-events field of a MaccabiPedia game page.
//
// One event is one line:
//
//	name::number::kind[-modifier]::minute::team[::segment]
//
// Lines of the same group are joined with "\n," and adjacent groups with
// "\n\n,", matching what editors see in the wiki's template editor.
package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/model"
)

// Wire tokens.
const (
	FieldSeparator    = "::"
	ModifierSeparator = "-"
	EventSeparator    = ","
	NoNumberText      = "אין-מספר"
	SubjectTeamLabel  = "מכבי"
	OpponentTeamLabel = "יריבה"

	fieldsWithoutSegment = 5
	fieldsWithSegment    = 6
)

var kindLabels = map[model.Kind]string{
	model.KindLineup:           "הרכב",
	model.KindBench:            "ספסל",
	model.KindCaptain:          "קפטן",
	model.KindGoal:             "שער",
	model.KindAssist:           "בישול",
	model.KindSubstitutionIn:   "נכנס",
	model.KindSubstitutionOut:  "הוחלף",
	model.KindYellowCard:       "צהוב",
	model.KindFirstYellowCard:  "צהוב ראשון",
	model.KindSecondYellowCard: "צהוב שני",
	model.KindRedCard:          "אדום",
	model.KindPenaltyMissed:    "החמיץ פנדל",
	model.KindPenaltyStopped:   "עצר פנדל",
}

var modifierLabels = map[model.Modifier]string{
	model.ModifierOwnGoal:  "עצמי",
	model.ModifierPenalty:  "פנדל",
	model.ModifierHeader:   "ראש",
	model.ModifierFreeKick: "בעיטה חופשית",
}

var (
	kindsByLabel     = invert(kindLabels)
	modifiersByLabel = invert(modifierLabels)
)

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// KindLabel returns the wiki vocabulary word for a kind.
func KindLabel(k model.Kind) (string, error) {
	label, ok := kindLabels[k]
	if !ok {
		return "", fmt.Errorf("%w: %s", model.ErrUnknownKind, k)
	}
	return label, nil
}

// Format renders one event as a single line without a trailing newline.
func Format(e model.Event) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	kind, err := KindLabel(e.Kind)
	if err != nil {
		return "", err
	}
	if e.Modifier != model.ModifierNone {
		kind += ModifierSeparator + modifierLabels[e.Modifier]
	}

	number := NoNumberText
	if e.Number.Known() {
		number = strconv.Itoa(int(e.Number))
	}

	team := SubjectTeamLabel
	if e.Side == model.SideOpponent {
		team = OpponentTeamLabel
	}

	if err := checkText("player name", e.PlayerName); err != nil {
		return "", err
	}
	fields := []string{e.PlayerName, number, kind, strconv.Itoa(e.Minute), team}
	if e.Segment.Valid {
		if err := checkText("segment", e.Segment.Label); err != nil {
			return "", err
		}
		fields = append(fields, e.Segment.Label)
	}
	return strings.Join(fields, FieldSeparator), nil
}

// checkText rejects free text that Parse could not read back: wire tokens,
// line breaks, or whitespace Parse would trim.
func checkText(field, s string) error {
	for _, tok := range []string{FieldSeparator, EventSeparator, "\n", "\r"} {
		if strings.Contains(s, tok) {
			return fmt.Errorf("%w: %s %q contains %q", ErrMalformedEventRecord, field, s, tok)
		}
	}
	if strings.TrimSpace(s) != s {
		return fmt.Errorf("%w: %s %q has surrounding whitespace", ErrMalformedEventRecord, field, s)
	}
	return nil
}

// Parse reads one line back into an event. Any deviation from the line format or
// the vocabulary is reported as ErrMalformedEventRecord.
func Parse(line string) (model.Event, error) {
	line = strings.TrimSpace(line)
	fields := strings.Split(line, FieldSeparator)
	if len(fields) != fieldsWithoutSegment && len(fields) != fieldsWithSegment {
		return model.Event{}, malformed(line, "expected %d or %d fields, got %d", fieldsWithoutSegment, fieldsWithSegment, len(fields))
	}

	e := model.Event{PlayerName: strings.TrimSpace(fields[0])}
	if e.PlayerName == "" {
		return model.Event{}, malformed(line, "empty player name")
	}

	number, err := parseNumber(strings.TrimSpace(fields[1]))
	if err != nil {
		return model.Event{}, malformed(line, "%v", err)
	}
	e.Number = number

	if e.Kind, e.Modifier, err = parseKind(strings.TrimSpace(fields[2])); err != nil {
		return model.Event{}, fmt.Errorf("%w: %q: %w", ErrMalformedEventRecord, line, err)
	}

	if e.Minute, err = strconv.Atoi(strings.TrimSpace(fields[3])); err != nil || e.Minute < 0 {
		return model.Event{}, malformed(line, "invalid minute %q", fields[3])
	}

	switch strings.TrimSpace(fields[4]) {
	case SubjectTeamLabel:
		e.Side = model.SideSubject
	case OpponentTeamLabel:
		e.Side = model.SideOpponent
	default:
		return model.Event{}, malformed(line, "unknown team label %q", fields[4])
	}

	if len(fields) == fieldsWithSegment {
		e.Segment = model.SegmentOf(fields[5])
	}

	if err := e.Validate(); err != nil {
		return model.Event{}, fmt.Errorf("%w: %q: %w", ErrMalformedEventRecord, line, err)
	}
	return e, nil
}

func parseNumber(s string) (model.ShirtNumber, error) {
	if s == NoNumberText {
		return model.NoNumber, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return model.NoNumber, fmt.Errorf("invalid shirt number %q", s)
	}
	return model.ShirtNumber(n), nil
}

// parseKind splits "kind" or "kind-modifier". More than one hyphen is rejected
// rather than guessing which hyphen separates the modifier.
func parseKind(s string) (model.Kind, model.Modifier, error) {
	parts := strings.Split(s, ModifierSeparator)
	if len(parts) > 2 {
		return model.KindUnknown, model.ModifierNone, fmt.Errorf("%w: ambiguous kind field %q", ErrAmbiguousKind, s)
	}
	kind, ok := kindsByLabel[parts[0]]
	if !ok {
		return model.KindUnknown, model.ModifierNone, fmt.Errorf("%w: %q", model.ErrUnknownKind, parts[0])
	}
	if len(parts) == 1 {
		return kind, model.ModifierNone, nil
	}
	modifier, ok := modifiersByLabel[parts[1]]
	if !ok {
		return model.KindUnknown, model.ModifierNone, fmt.Errorf("%w: %q", model.ErrUnknownModifier, parts[1])
	}
	return kind, modifier, nil
}

func malformed(line, format string, args ...any) error {
	return fmt.Errorf("%w: %q: %s", ErrMalformedEventRecord, line, fmt.Sprintf(format, args...))
}
