package ranking_test

import (
	"errors"
	"testing"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecompute(t *testing.T) {
	Convey("Given teams carrying stale derived fields", t, func() {
		teams := []model.Team{
			{
				ID: "a", Category: model.CategorySecondary,
				QcmScore: model.IntPtr(62), QcmQualified: model.BoolPtr(true),
				InterviewScore: model.Float64Ptr(7), InterviewRank: model.IntPtr(4), Decision: model.DecisionNotSelected,
			},
			{
				ID: "b", Category: model.CategorySecondary,
				QcmScore: model.IntPtr(58), QcmQualified: model.BoolPtr(false),
				InterviewRank: model.IntPtr(1), Decision: model.DecisionSelected,
			},
			{
				ID: "c", Category: model.CategoryHigher,
				QcmScore: model.IntPtr(71), InterviewScore: model.Float64Ptr(5),
			},
		}

		Convey("When the secondary threshold is lowered", func() {
			settings := model.DefaultSettings()
			settings.SecondaryQcmThreshold = 55
			settings.SecondaryTeamSelectionCount = 1
			batch, err := ranking.Recompute(teams, settings)
			So(err, ShouldBeNil)
			So(len(batch.Updates), ShouldEqual, 3)

			byID := map[string]ranking.TeamUpdate{}
			for _, u := range batch.Updates {
				byID[u.ID] = u
			}

			Convey("Then qualification is re-derived", func() {
				So(*byID["a"].QcmQualified, ShouldBeTrue)
				So(*byID["b"].QcmQualified, ShouldBeTrue)
				So(*byID["c"].QcmQualified, ShouldBeTrue)
			})

			Convey("Then stale ranks are cleared for unscored teams", func() {
				So(byID["b"].InterviewRank, ShouldBeNil)
				So(byID["b"].Decision, ShouldEqual, model.DecisionNone)
			})

			Convey("Then interviewed teams are ranked afresh", func() {
				So(*byID["a"].InterviewRank, ShouldEqual, 1)
				So(byID["a"].Decision, ShouldEqual, model.DecisionSelected)
				So(*byID["c"].InterviewRank, ShouldEqual, 1)
			})

			Convey("Then applying the update overwrites and keeps interview scores", func() {
				updB := byID["b"]
				applied := updB.Apply(&teams[1])
				So(applied.InterviewRank, ShouldBeNil)
				So(applied.Decision, ShouldEqual, model.DecisionNone)

				updA := byID["a"]
				kept := updA.Apply(&teams[0])
				So(*kept.InterviewScore, ShouldEqual, 7)
			})

			Convey("Then a second run is identical", func() {
				again, err := ranking.Recompute(teams, settings)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, batch)
			})
		})
	})

	Convey("Given a batch with teams that cannot be evaluated", t, func() {
		teams := []model.Team{
			{ID: "ok", Category: model.CategoryHigher, QcmScore: model.IntPtr(80), InterviewScore: model.Float64Ptr(6)},
			{ID: "nocat", QcmScore: model.IntPtr(80)},
			{ID: "bad-qcm", Category: model.CategoryHigher, QcmScore: model.IntPtr(140)},
			{ID: "bad-interview", Category: model.CategorySecondary, InterviewScore: model.Float64Ptr(12)},
		}

		batch, err := ranking.Recompute(teams, model.DefaultSettings())

		Convey("Then a partial batch failure names each skipped team", func() {
			So(errors.Is(err, model.ErrPartialBatch), ShouldBeTrue)
			var be *ranking.BatchError
			So(errors.As(err, &be), ShouldBeTrue)
			So(len(be.Failures), ShouldEqual, 3)
			So(be.Failures[0].ID, ShouldEqual, "nocat")
			So(errors.Is(be.Failures[0].Err, model.ErrConfiguration), ShouldBeTrue)
			So(errors.Is(be.Failures[1].Err, model.ErrValidation), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "bad-interview")
		})

		Convey("Then the remaining teams are still processed", func() {
			So(len(batch.Updates), ShouldEqual, 1)
			So(batch.Updates[0].ID, ShouldEqual, "ok")
			So(*batch.Updates[0].InterviewRank, ShouldEqual, 1)
			So(len(batch.Rankings), ShouldEqual, 1)
		})
	})

	Convey("Given a failing team that still carries an old rank", t, func() {
		teams := []model.Team{
			{ID: "a", Category: model.CategoryHigher, QcmScore: model.IntPtr(80), InterviewScore: model.Float64Ptr(7)},
			{ID: "b", Category: model.CategoryHigher, QcmScore: model.IntPtr(150), QcmQualified: model.BoolPtr(true),
				InterviewScore: model.Float64Ptr(9), InterviewRank: model.IntPtr(1), Decision: model.DecisionSelected},
		}

		batch, err := ranking.Recompute(teams, model.DefaultSettings())

		Convey("Then it gets a reset that clears rank and decision", func() {
			So(errors.Is(err, model.ErrPartialBatch), ShouldBeTrue)
			So(batch.Resets, ShouldHaveLength, 1)
			r := batch.Resets[0]
			So(r.ID, ShouldEqual, "b")
			So(r.InterviewRank, ShouldBeNil)
			So(r.Decision, ShouldEqual, model.DecisionNone)
			So(*r.QcmQualified, ShouldBeTrue)
			So(batch.All(), ShouldHaveLength, 2)

			cleared := r.Apply(&teams[1])
			So(cleared.InterviewRank, ShouldBeNil)
			So(*cleared.InterviewScore, ShouldEqual, 9)
		})
	})

	Convey("Given invalid settings", t, func() {
		s := model.DefaultSettings()
		s.HigherQcmThreshold = 120
		_, err := ranking.Recompute(nil, s)

		Convey("Then the whole batch fails with a configuration error", func() {
			So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
			So(errors.Is(err, model.ErrPartialBatch), ShouldBeFalse)
		})
	})
}
