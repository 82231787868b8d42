package model

import "fmt"

// Kind enumerates what happened to a player.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindLineup
	KindBench
	KindCaptain
	KindGoal
	KindAssist
	KindSubstitutionIn
	KindSubstitutionOut
	KindYellowCard
	KindFirstYellowCard
	KindSecondYellowCard
	KindRedCard
	KindPenaltyMissed
	KindPenaltyStopped
)

// Kinds lists every valid kind in declaration order.
var Kinds = []Kind{
	KindLineup, KindBench, KindCaptain, KindGoal, KindAssist,
	KindSubstitutionIn, KindSubstitutionOut,
	KindYellowCard, KindFirstYellowCard, KindSecondYellowCard, KindRedCard,
	KindPenaltyMissed, KindPenaltyStopped,
}

var kindNames = map[Kind]string{
	KindLineup:           "lineup",
	KindBench:            "bench",
	KindCaptain:          "captain",
	KindGoal:             "goal",
	KindAssist:           "assist",
	KindSubstitutionIn:   "substitution-in",
	KindSubstitutionOut:  "substitution-out",
	KindYellowCard:       "yellow-card",
	KindFirstYellowCard:  "first-yellow-card",
	KindSecondYellowCard: "second-yellow-card",
	KindRedCard:          "red-card",
	KindPenaltyMissed:    "penalty-missed",
	KindPenaltyStopped:   "penalty-stopped",
}

// Valid reports whether k is a member of the enumeration.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind resolves the English kind name used by the JSON API.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Modifier sub-classifies goals.
type Modifier uint8

const (
	ModifierNone Modifier = iota
	ModifierOwnGoal
	ModifierPenalty
	ModifierHeader
	ModifierFreeKick
)

var modifierNames = map[Modifier]string{
	ModifierNone:     "",
	ModifierOwnGoal:  "own-goal",
	ModifierPenalty:  "penalty",
	ModifierHeader:   "header",
	ModifierFreeKick: "free-kick",
}

// Valid reports whether m is a member of the enumeration.
func (m Modifier) Valid() bool {
	_, ok := modifierNames[m]
	return ok
}

func (m Modifier) String() string {
	if name, ok := modifierNames[m]; ok {
		return name
	}
	return fmt.Sprintf("modifier(%d)", uint8(m))
}

// ParseModifier resolves the English modifier name used by the JSON API.
// The empty string is ModifierNone.
func ParseModifier(name string) (Modifier, error) {
	for m, n := range modifierNames {
		if n == name {
			return m, nil
		}
	}
	return ModifierNone, fmt.Errorf("%w: %q", ErrUnknownModifier, name)
}

// Group is one of the three disjoint display categories.
type Group uint8

const (
	GroupSquad Group = iota
	GroupCardsAndSubs
	GroupGoalsInvolved
)

func (g Group) String() string {
	switch g {
	case GroupSquad:
		return "squad"
	case GroupCardsAndSubs:
		return "cards-and-subs"
	case GroupGoalsInvolved:
		return "goals-involved"
	}
	return fmt.Sprintf("group(%d)", uint8(g))
}

// Group returns the display group for the kind. Unknown kinds fall into the
// goals group; Validate rejects them before they reach ordering.
func (k Kind) Group() Group {
	switch k {
	case KindLineup, KindBench, KindCaptain:
		return GroupSquad
	case KindYellowCard, KindFirstYellowCard, KindSecondYellowCard, KindRedCard,
		KindSubstitutionIn, KindSubstitutionOut:
		return GroupCardsAndSubs
	default:
		return GroupGoalsInvolved
	}
}
