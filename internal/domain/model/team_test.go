package model_test

import (
	"errors"
	"testing"

	"github.com/okian/qualify/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCategory(t *testing.T) {
	Convey("Given category names", t, func() {
		c, err := model.ParseCategory(" Higher ")
		So(err, ShouldBeNil)
		So(c, ShouldEqual, model.CategoryHigher)

		_, err = model.ParseCategory("university")
		So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
	})
}

func TestStatus(t *testing.T) {
	Convey("Given status names", t, func() {
		s, err := model.ParseStatus("INTERVIEW_COMPLETED")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, model.StatusInterviewCompleted)

		_, err = model.ParseStatus("archived")
		So(errors.Is(err, model.ErrValidation), ShouldBeTrue)

		So(model.StatusSelected.Terminal(), ShouldBeTrue)
		So(model.StatusNotSelected.Terminal(), ShouldBeTrue)
		So(model.StatusInterviewCompleted.Terminal(), ShouldBeFalse)
	})
}

func TestTeamClone(t *testing.T) {
	Convey("Given a team with optional fields set", t, func() {
		team := model.Team{
			ID:             "a",
			QcmScore:       model.IntPtr(60),
			InterviewScore: model.Float64Ptr(5),
			Members:        []model.Member{{Name: "Ada", Gender: model.GenderFemale}},
		}

		Convey("When the clone is mutated", func() {
			c := team.Clone()
			*c.QcmScore = 10
			*c.InterviewScore = 1
			c.Members[0].Name = "Bob"

			Convey("Then the original is unchanged", func() {
				So(*team.QcmScore, ShouldEqual, 60)
				So(*team.InterviewScore, ShouldEqual, 5)
				So(team.Members[0].Name, ShouldEqual, "Ada")
			})
		})
	})
}

func TestSettings(t *testing.T) {
	Convey("Given the default settings", t, func() {
		s := model.DefaultSettings()
		So(s.Validate(), ShouldBeNil)
		So(s.Thresholds()[model.CategorySecondary], ShouldEqual, 60)
		So(s.Thresholds()[model.CategoryHigher], ShouldEqual, 70)

		q, err := s.Quota(model.CategoryHigher)
		So(err, ShouldBeNil)
		So(q, ShouldEqual, model.DefaultHigherSelection)

		Convey("Then unknown categories have no quota", func() {
			_, err := s.Quota(model.Category("x"))
			So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
		})

		Convey("Then out-of-range thresholds are rejected", func() {
			s.SecondaryQcmThreshold = -5
			So(errors.Is(s.Validate(), model.ErrConfiguration), ShouldBeTrue)
		})
	})
}
