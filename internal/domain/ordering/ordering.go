// Package ordering puts a match's player events into their canonical display order.
//
// Events are first partitioned by side and group into a fixed macro-sequence:
// subject squad, opponent squad, subject cards and substitutions, opponent cards
// and substitutions, subject goals, opponent goals. Each partition is then sorted
// with its group's comparator. Sorting is stable, so fully tied events keep their
// input order.
package ordering

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/model"
)

// Rank tables, keyed by kind. Lower ranks appear first.
var (
	squadRanks = map[model.Kind]int{
		model.KindLineup:  0,
		model.KindCaptain: 1,
		model.KindBench:   2,
	}

	cardsAndSubsRanks = map[model.Kind]int{
		model.KindSubstitutionOut: 6,
		model.KindSubstitutionIn:  7,
	}

	goalsInvolvedRanks = map[model.Kind]int{
		model.KindAssist:         3,
		model.KindGoal:           4,
		model.KindPenaltyMissed:  7,
		model.KindPenaltyStopped: 8,
	}
)

const (
	defaultSquadRank  = 5
	defaultCardRank   = 5
	defaultGoalRank   = 2
	penaltyGoalRank   = 2
	unnumberedSortKey = math.MaxInt
)

// macroSequence is the fixed order partitions are emitted in.
var macroSequence = []struct {
	side  model.Side
	group model.Group
}{
	{model.SideSubject, model.GroupSquad},
	{model.SideOpponent, model.GroupSquad},
	{model.SideSubject, model.GroupCardsAndSubs},
	{model.SideOpponent, model.GroupCardsAndSubs},
	{model.SideSubject, model.GroupGoalsInvolved},
	{model.SideOpponent, model.GroupGoalsInvolved},
}

// Compare orders two events of the same group: negative when a appears before b,
// positive when after, zero when tied. Comparing events of different groups is a
// caller defect and returns ErrInvalidComparison.
func Compare(a, b model.Event) (int, error) {
	if a.Group() != b.Group() {
		return 0, fmt.Errorf("%w: %s event %q vs %s event %q",
			ErrInvalidComparison, a.Group(), a.Kind, b.Group(), b.Kind)
	}
	return comparatorFor(a.Group())(a, b), nil
}

// Order partitions events into the macro-sequence and sorts every partition.
// Empty partitions are omitted, so every returned slice is non-empty.
func Order(events []model.Event) [][]model.Event {
	buckets := make(map[[2]uint8][]model.Event, len(macroSequence))
	for _, e := range events {
		key := [2]uint8{uint8(e.Side), uint8(e.Group())}
		buckets[key] = append(buckets[key], e)
	}

	groups := make([][]model.Event, 0, len(macroSequence))
	for _, slot := range macroSequence {
		part := buckets[[2]uint8{uint8(slot.side), uint8(slot.group)}]
		if len(part) == 0 {
			continue
		}
		slices.SortStableFunc(part, comparatorFor(slot.group))
		groups = append(groups, part)
	}
	return groups
}

// Flatten concatenates ordered groups into one slice.
func Flatten(groups [][]model.Event) []model.Event {
	var n int
	for _, g := range groups {
		n += len(g)
	}
	out := make([]model.Event, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func comparatorFor(g model.Group) func(a, b model.Event) int {
	switch g {
	case model.GroupSquad:
		return compareSquad
	case model.GroupCardsAndSubs:
		return compareCardsAndSubs
	default:
		return compareGoalsInvolved
	}
}

func compareSquad(a, b model.Event) int {
	if c := cmp.Compare(squadRank(a), squadRank(b)); c != 0 {
		return c
	}
	return cmp.Compare(numberKey(a.Number), numberKey(b.Number))
}

func compareCardsAndSubs(a, b model.Event) int {
	if c := cmp.Compare(a.Minute, b.Minute); c != 0 {
		return c
	}
	return cmp.Compare(rankOr(cardsAndSubsRanks, a.Kind, defaultCardRank), rankOr(cardsAndSubsRanks, b.Kind, defaultCardRank))
}

func compareGoalsInvolved(a, b model.Event) int {
	if c := cmp.Compare(a.Minute, b.Minute); c != 0 {
		return c
	}
	return cmp.Compare(goalRank(a), goalRank(b))
}

func squadRank(e model.Event) int {
	return rankOr(squadRanks, e.Kind, defaultSquadRank)
}

// goalRank treats a penalty goal as the penalty pseudo-kind.
func goalRank(e model.Event) int {
	if e.IsPenaltyGoal() {
		return penaltyGoalRank
	}
	return rankOr(goalsInvolvedRanks, e.Kind, defaultGoalRank)
}

func rankOr(table map[model.Kind]int, k model.Kind, fallback int) int {
	if r, ok := table[k]; ok {
		return r
	}
	return fallback
}

// numberKey sorts players without a shirt number after every numbered player.
func numberKey(n model.ShirtNumber) int {
	if !n.Known() {
		return unnumberedSortKey
	}
	return int(n)
}
