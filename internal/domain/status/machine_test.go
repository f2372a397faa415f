package status_test

import (
	"errors"
	"testing"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/status"
	. "github.com/smartystreets/goconvey/convey"
)

func strPtr(s string) *string { return &s }

func statusPtr(s model.Status) *model.Status { return &s }

func newTeam(c model.Category) *model.Team {
	return &model.Team{ID: "team-1", Name: "Robotix", Category: c, Status: model.StatusRegistered}
}

func TestApply_QcmScore(t *testing.T) {
	Convey("Given a registered secondary team", t, func() {
		m := status.New(model.DefaultSettings().Thresholds())
		team := newTeam(model.CategorySecondary)

		Convey("When a passing QCM score is entered", func() {
			out, err := m.Apply(team, status.Changes{QcmScore: model.IntPtr(65)})

			Convey("Then the team is interview qualified", func() {
				So(err, ShouldBeNil)
				So(out.Status, ShouldEqual, model.StatusInterviewQualified)
				So(out.Team.Status, ShouldEqual, model.StatusInterviewQualified)
				So(*out.Team.QcmQualified, ShouldBeTrue)
				So(out.Changed(), ShouldBeTrue)
				So(out.Rerank, ShouldBeFalse)
			})

			Convey("And the input snapshot is untouched", func() {
				So(team.QcmScore, ShouldBeNil)
				So(team.Status, ShouldEqual, model.StatusRegistered)
			})
		})

		Convey("When a failing QCM score is entered", func() {
			out, err := m.Apply(team, status.Changes{QcmScore: model.IntPtr(59)})

			Convey("Then the team failed the QCM", func() {
				So(err, ShouldBeNil)
				So(out.Status, ShouldEqual, model.StatusQcmFailed)
				So(*out.Team.QcmQualified, ShouldBeFalse)
			})

			Convey("And a later passing re-score qualifies it", func() {
				again, err := m.Apply(&out.Team, status.Changes{QcmScore: model.IntPtr(80)})
				So(err, ShouldBeNil)
				So(again.Status, ShouldEqual, model.StatusInterviewQualified)
				So(*again.Team.QcmQualified, ShouldBeTrue)
			})
		})

		Convey("When the QCM score is out of range", func() {
			_, err := m.Apply(team, status.Changes{QcmScore: model.IntPtr(101)})
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})

		Convey("When the team has an unknown category", func() {
			team.Category = model.Category("primary")
			_, err := m.Apply(team, status.Changes{QcmScore: model.IntPtr(90)})
			So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
		})
	})

	Convey("Given any team with a QCM score", t, func() {
		m := status.New(model.DefaultSettings().Thresholds())

		Convey("Then QcmQualified is always defined after an update", func() {
			for _, c := range model.Categories {
				for s := 0; s <= 100; s += 5 {
					team := newTeam(c)
					team.QcmScore = model.IntPtr(s)
					out, err := m.Apply(team, status.Changes{Notes: strPtr("checked")})
					So(err, ShouldBeNil)
					So(out.Team.QcmQualified, ShouldNotBeNil)
				}
			}
		})
	})
}

func TestApply_Interview(t *testing.T) {
	Convey("Given an interview-qualified higher team", t, func() {
		m := status.New(model.DefaultSettings().Thresholds())
		team := newTeam(model.CategoryHigher)
		team.QcmScore = model.IntPtr(75)
		team.QcmQualified = model.BoolPtr(true)
		team.Status = model.StatusInterviewQualified

		Convey("When the interview is scheduled", func() {
			out, err := m.Apply(team, status.Changes{InterviewDate: strPtr("2026-03-01"), InterviewTime: strPtr("10:30")})

			Convey("Then the status is re-affirmed", func() {
				So(err, ShouldBeNil)
				So(out.Status, ShouldEqual, model.StatusInterviewQualified)
				So(out.Changed(), ShouldBeFalse)
				So(out.Team.InterviewDate, ShouldEqual, "2026-03-01")
			})
		})

		Convey("When only the date is set", func() {
			out, err := m.Apply(team, status.Changes{InterviewDate: strPtr("2026-03-01")})
			So(err, ShouldBeNil)
			So(out.Status, ShouldEqual, model.StatusInterviewQualified)
			So(out.Team.InterviewTime, ShouldEqual, "")
		})

		Convey("When an interview score is entered", func() {
			out, err := m.Apply(team, status.Changes{InterviewScore: model.Float64Ptr(8.5)})

			Convey("Then the interview is completed and rankings are due", func() {
				So(err, ShouldBeNil)
				So(out.Status, ShouldEqual, model.StatusInterviewCompleted)
				So(*out.Team.InterviewScore, ShouldEqual, 8.5)
				So(out.Rerank, ShouldBeTrue)
			})

			Convey("And rescheduling does not regress the status", func() {
				again, err := m.Apply(&out.Team, status.Changes{InterviewDate: strPtr("2026-03-02"), InterviewTime: strPtr("09:00")})
				So(err, ShouldBeNil)
				So(again.Status, ShouldEqual, model.StatusInterviewCompleted)
			})

			Convey("And a passing QCM re-score does not regress the status", func() {
				again, err := m.Apply(&out.Team, status.Changes{QcmScore: model.IntPtr(90)})
				So(err, ShouldBeNil)
				So(again.Status, ShouldEqual, model.StatusInterviewCompleted)
			})

			Convey("And the team can be selected", func() {
				again, err := m.Apply(&out.Team, status.Changes{Status: statusPtr(model.StatusSelected)})
				So(err, ShouldBeNil)
				So(again.Status, ShouldEqual, model.StatusSelected)
			})
		})

		Convey("When the interview score is out of range", func() {
			_, err := m.Apply(team, status.Changes{InterviewScore: model.Float64Ptr(10.5)})
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			_, err = m.Apply(team, status.Changes{InterviewScore: model.Float64Ptr(-0.1)})
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})
	})

	Convey("Given a team that failed the QCM", t, func() {
		m := status.New(model.DefaultSettings().Thresholds())
		team := newTeam(model.CategorySecondary)
		team.QcmScore = model.IntPtr(30)
		team.QcmQualified = model.BoolPtr(false)
		team.Status = model.StatusQcmFailed

		Convey("When an interview is scheduled", func() {
			_, err := m.Apply(team, status.Changes{InterviewDate: strPtr("2026-03-01"), InterviewTime: strPtr("10:30")})

			Convey("Then it is rejected for the missing qualification", func() {
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "QCM score required and must meet threshold")
			})
		})

		Convey("When an interview score is entered", func() {
			_, err := m.Apply(team, status.Changes{InterviewScore: model.Float64Ptr(7)})
			So(errors.Is(err, model.ErrIllegalTransition), ShouldBeTrue)
		})
	})
}

func TestApply_ExplicitStatus(t *testing.T) {
	Convey("Given a registered team", t, func() {
		m := status.New(model.DefaultSettings().Thresholds())
		team := newTeam(model.CategorySecondary)

		Convey("When InterviewQualified is requested without a QCM score", func() {
			_, err := m.Apply(team, status.Changes{Status: statusPtr(model.StatusInterviewQualified)})
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})

		Convey("When InterviewCompleted is requested without an interview score", func() {
			_, err := m.Apply(team, status.Changes{Status: statusPtr(model.StatusInterviewCompleted)})
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})

		Convey("When an unknown status is requested", func() {
			_, err := m.Apply(team, status.Changes{Status: statusPtr(model.Status("archived"))})
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})

		Convey("When QcmSubmitted is requested", func() {
			out, err := m.Apply(team, status.Changes{Status: statusPtr(model.StatusQcmSubmitted)})
			So(err, ShouldBeNil)
			So(out.Status, ShouldEqual, model.StatusQcmSubmitted)
		})

		Convey("When Selected is requested directly", func() {
			_, err := m.Apply(team, status.Changes{Status: statusPtr(model.StatusSelected)})
			So(errors.Is(err, model.ErrIllegalTransition), ShouldBeTrue)
		})

		Convey("When QCM and interview scores arrive together", func() {
			out, err := m.Apply(team, status.Changes{QcmScore: model.IntPtr(70), InterviewScore: model.Float64Ptr(6)})
			So(err, ShouldBeNil)
			So(out.Status, ShouldEqual, model.StatusInterviewCompleted)
		})
	})
}

func TestApply_TerminalLock(t *testing.T) {
	Convey("Given a selected team", t, func() {
		m := status.New(model.DefaultSettings().Thresholds())
		team := newTeam(model.CategoryHigher)
		team.QcmScore = model.IntPtr(90)
		team.QcmQualified = model.BoolPtr(true)
		team.InterviewScore = model.Float64Ptr(9)
		team.Status = model.StatusSelected

		Convey("Then every status-affecting update is rejected", func() {
			for _, ch := range []status.Changes{
				{Status: statusPtr(model.StatusSelected)},
				{Status: statusPtr(model.StatusNotSelected)},
				{Status: statusPtr(model.StatusInterviewCompleted)},
				{Status: statusPtr(model.Status("bogus"))},
				{QcmScore: model.IntPtr(95)},
				{InterviewScore: model.Float64Ptr(3)},
				{InterviewDate: strPtr("2026-04-01")},
				{},
				{QcmScore: model.IntPtr(95), Notes: strPtr("rescored")},
			} {
				_, err := m.Apply(team, ch)
				So(errors.Is(err, model.ErrIllegalTransition), ShouldBeTrue)
			}
		})

		Convey("But notes can still be edited", func() {
			out, err := m.Apply(team, status.Changes{Notes: strPtr("great demo")})
			So(err, ShouldBeNil)
			So(out.Status, ShouldEqual, model.StatusSelected)
			So(out.Team.Notes, ShouldEqual, "great demo")
		})
	})
}

func TestCanTransition(t *testing.T) {
	Convey("Given the status graph", t, func() {
		So(status.CanTransition(model.StatusRegistered, model.StatusQcmSubmitted), ShouldBeTrue)
		So(status.CanTransition(model.StatusQcmSubmitted, model.StatusInterviewQualified), ShouldBeTrue)
		So(status.CanTransition(model.StatusInterviewQualified, model.StatusInterviewCompleted), ShouldBeTrue)
		So(status.CanTransition(model.StatusInterviewCompleted, model.StatusNotSelected), ShouldBeTrue)
		So(status.CanTransition(model.StatusInterviewQualified, model.StatusInterviewQualified), ShouldBeTrue)

		So(status.CanTransition(model.StatusRegistered, model.StatusSelected), ShouldBeFalse)
		So(status.CanTransition(model.StatusQcmFailed, model.StatusInterviewCompleted), ShouldBeFalse)
		So(status.CanTransition(model.StatusSelected, model.StatusSelected), ShouldBeFalse)
		So(status.CanTransition(model.StatusNotSelected, model.StatusSelected), ShouldBeFalse)
		So(status.CanTransition(model.Status("x"), model.Status("x")), ShouldBeFalse)
	})
}
