package ordering_test

import (
	"errors"
	"testing"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/model"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/ordering"
	. "github.com/smartystreets/goconvey/convey"
)

func ev(name string, number model.ShirtNumber, minute int, kind model.Kind, side model.Side) model.Event {
	return model.Event{PlayerName: name, Number: number, Minute: minute, Kind: kind, Side: side}
}

func names(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.PlayerName + "/" + e.Kind.String()
	}
	return out
}

func TestCompare(t *testing.T) {
	Convey("Given the comparator", t, func() {
		Convey("When comparing events from different groups", func() {
			pairs := [][2]model.Kind{
				{model.KindLineup, model.KindYellowCard},
				{model.KindBench, model.KindGoal},
				{model.KindSubstitutionIn, model.KindAssist},
				{model.KindCaptain, model.KindPenaltyMissed},
				{model.KindRedCard, model.KindPenaltyStopped},
			}

			Convey("Then every pair fails with ErrInvalidComparison in both directions", func() {
				for _, p := range pairs {
					a := ev("a", 1, 10, p[0], model.SideSubject)
					b := ev("b", 2, 10, p[1], model.SideSubject)
					_, err := ordering.Compare(a, b)
					So(errors.Is(err, ordering.ErrInvalidComparison), ShouldBeTrue)
					_, err = ordering.Compare(b, a)
					So(errors.Is(err, ordering.ErrInvalidComparison), ShouldBeTrue)
				}
			})
		})

		Convey("When comparing events of the same group", func() {
			Convey("Then lineup comes before captain, which comes before bench", func() {
				lineup := ev("a", 20, 0, model.KindLineup, model.SideSubject)
				captain := ev("b", 1, 0, model.KindCaptain, model.SideSubject)
				bench := ev("c", 2, 0, model.KindBench, model.SideSubject)

				c, err := ordering.Compare(lineup, captain)
				So(err, ShouldBeNil)
				So(c, ShouldBeLessThan, 0)
				c, _ = ordering.Compare(captain, bench)
				So(c, ShouldBeLessThan, 0)
			})

			Convey("Then a substitution-out comes before a simultaneous substitution-in", func() {
				out := ev("a", 7, 60, model.KindSubstitutionOut, model.SideSubject)
				in := ev("b", 17, 60, model.KindSubstitutionIn, model.SideSubject)
				c, err := ordering.Compare(in, out)
				So(err, ShouldBeNil)
				So(c, ShouldBeGreaterThan, 0)
			})

			Convey("Then identical events compare equal", func() {
				a := ev("a", 7, 60, model.KindYellowCard, model.SideSubject)
				c, err := ordering.Compare(a, a)
				So(err, ShouldBeNil)
				So(c, ShouldEqual, 0)
			})
		})
	})
}

func TestOrder(t *testing.T) {
	Convey("Given a list of match events", t, func() {
		Convey("When the match has the lineup, goal, assist and card scenario", func() {
			events := []model.Event{
				ev("A", 9, 0, model.KindLineup, model.SideSubject),
				ev("A", 9, 34, model.KindGoal, model.SideSubject),
				ev("B", 11, 34, model.KindAssist, model.SideSubject),
				ev("C", 4, 60, model.KindYellowCard, model.SideOpponent),
			}

			groups := ordering.Order(events)

			Convey("Then empty partitions are skipped and the assist precedes the goal", func() {
				So(len(groups), ShouldEqual, 3)
				So(names(ordering.Flatten(groups)), ShouldResemble, []string{
					"A/lineup", "C/yellow-card", "B/assist", "A/goal",
				})
			})
		})

		Convey("When two timed events arrive out of minute order", func() {
			for _, kinds := range [][2]model.Kind{
				{model.KindYellowCard, model.KindRedCard},
				{model.KindSubstitutionIn, model.KindSubstitutionOut},
				{model.KindGoal, model.KindAssist},
				{model.KindPenaltyStopped, model.KindGoal},
			} {
				a := ev("early", 1, 10, kinds[0], model.SideOpponent)
				b := ev("late", 2, 80, kinds[1], model.SideOpponent)

				So(ordering.Flatten(ordering.Order([]model.Event{b, a})), ShouldResemble, []model.Event{a, b})
			}
		})

		Convey("When a substitution pair shares a minute", func() {
			in := ev("In", 17, 63, model.KindSubstitutionIn, model.SideSubject)
			out := ev("Out", 7, 63, model.KindSubstitutionOut, model.SideSubject)

			Convey("Then the player going off is always listed first", func() {
				So(names(ordering.Flatten(ordering.Order([]model.Event{in, out}))), ShouldResemble, []string{"Out/substitution-out", "In/substitution-in"})
				So(names(ordering.Flatten(ordering.Order([]model.Event{out, in}))), ShouldResemble, []string{"Out/substitution-out", "In/substitution-in"})
			})
		})

		Convey("When goals-involved events share a minute", func() {
			pen := model.Event{PlayerName: "P", Number: 10, Minute: 45, Kind: model.KindGoal, Modifier: model.ModifierPenalty}
			goal := ev("G", 9, 45, model.KindGoal, model.SideSubject)
			assist := ev("A", 8, 45, model.KindAssist, model.SideSubject)
			missed := ev("M", 5, 45, model.KindPenaltyMissed, model.SideSubject)
			stopped := ev("S", 1, 45, model.KindPenaltyStopped, model.SideSubject)

			got := ordering.Flatten(ordering.Order([]model.Event{stopped, missed, goal, assist, pen}))

			Convey("Then penalty goal, assist, goal, missed and stopped follow their ranks", func() {
				So(names(got), ShouldResemble, []string{
					"P/goal", "A/assist", "G/goal", "M/penalty-missed", "S/penalty-stopped",
				})
			})
		})

		Convey("When squad events share a rank", func() {
			unnumbered := ev("NoShirt", model.NoNumber, 0, model.KindBench, model.SideSubject)
			high := ev("High", 99, 0, model.KindBench, model.SideSubject)
			low := ev("Low", 1, 0, model.KindBench, model.SideSubject)

			Convey("Then shirt numbers ascend and unnumbered players go last", func() {
				got := ordering.Flatten(ordering.Order([]model.Event{unnumbered, high, low}))
				So(names(got), ShouldResemble, []string{"Low/bench", "High/bench", "NoShirt/bench"})
			})
		})

		Convey("When events are fully tied", func() {
			first := ev("First", 5, 30, model.KindYellowCard, model.SideSubject)
			second := ev("Second", 6, 30, model.KindYellowCard, model.SideSubject)

			Convey("Then input order is preserved", func() {
				So(names(ordering.Flatten(ordering.Order([]model.Event{first, second}))), ShouldResemble, []string{"First/yellow-card", "Second/yellow-card"})
				So(names(ordering.Flatten(ordering.Order([]model.Event{second, first}))), ShouldResemble, []string{"Second/yellow-card", "First/yellow-card"})
			})
		})

		Convey("When both sides have events in every group", func() {
			events := []model.Event{
				ev("og", 1, 90, model.KindGoal, model.SideOpponent),
				ev("sg", 1, 90, model.KindGoal, model.SideSubject),
				ev("oc", 1, 10, model.KindRedCard, model.SideOpponent),
				ev("sc", 1, 10, model.KindRedCard, model.SideSubject),
				ev("os", 1, 0, model.KindLineup, model.SideOpponent),
				ev("ss", 1, 0, model.KindLineup, model.SideSubject),
			}

			Convey("Then the six partitions follow the macro-sequence", func() {
				groups := ordering.Order(events)
				So(len(groups), ShouldEqual, 6)
				So(names(ordering.Flatten(groups)), ShouldResemble, []string{
					"ss/lineup", "os/lineup", "sc/red-card", "oc/red-card", "sg/goal", "og/goal",
				})
			})
		})

		Convey("When there are no events", func() {
			Convey("Then no partitions are returned", func() {
				So(ordering.Order(nil), ShouldBeEmpty)
				So(ordering.Flatten(nil), ShouldBeEmpty)
			})
		})
	})
}
