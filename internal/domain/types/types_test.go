package types_test

import (
	"testing"
	"time"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/model"
	types "github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEventView(t *testing.T) {
	Convey("Given a model event", t, func() {
		Convey("When it has a number and a segment", func() {
			e := model.Event{PlayerName: "A", Number: 9, Minute: 12, Kind: model.KindGoal, Modifier: model.ModifierPenalty, Segment: model.SegmentOf("הארכה")}
			v, err := types.NewEventView(e)

			Convey("Then every field is rendered", func() {
				So(err, ShouldBeNil)
				So(*v.Number, ShouldEqual, 9)
				So(*v.Segment, ShouldEqual, "הארכה")
				So(v.Kind, ShouldEqual, "goal")
				So(v.Modifier, ShouldEqual, "penalty")
				So(v.Group, ShouldEqual, model.GroupGoalsInvolved.String())
				So(v.Record, ShouldEqual, "A::9::שער-פנדל::12::מכבי::הארכה")
			})
		})

		Convey("When the player has no number", func() {
			v, err := types.NewEventView(model.Event{PlayerName: "B", Number: model.NoNumber, Kind: model.KindBench, Side: model.SideOpponent})
			So(err, ShouldBeNil)
			So(v.Number, ShouldBeNil)
			So(v.Segment, ShouldBeNil)
		})

		Convey("When groups are rendered", func() {
			groups := [][]model.Event{{{PlayerName: "A", Number: 1, Kind: model.KindLineup}}, {{PlayerName: "B", Number: 2, Kind: model.KindRedCard, Minute: 3}}}
			views, err := types.GroupViews(groups)
			So(err, ShouldBeNil)
			So(len(views), ShouldEqual, 2)
			So(views[1][0].Kind, ShouldEqual, "red-card")
		})
	})
}

func TestRawEventRequest(t *testing.T) {
	Convey("Given a posted raw event", t, func() {
		n := 4
		r := types.RawEventRequest{Player: "C", Number: &n, SinceKickoffSeconds: 125, Kind: "GOAL_SCORE", Subject: true}

		Convey("Then it converts to the normalizer tuple", func() {
			raw := r.Raw()
			So(raw.Name, ShouldEqual, "C")
			So(raw.SinceKickoff, ShouldEqual, 125*time.Second)
			So(*raw.Number, ShouldEqual, 4)
			So(raw.Subject, ShouldBeTrue)
		})
	})
}
