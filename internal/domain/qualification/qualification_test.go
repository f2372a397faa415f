package qualification_test

import (
	"errors"
	"testing"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/qualification"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEvaluate(t *testing.T) {
	Convey("Given the reference thresholds", t, func() {
		thresholds := model.Thresholds{model.CategorySecondary: 60, model.CategoryHigher: 70}

		Convey("When a secondary team scores exactly the threshold", func() {
			ok, err := qualification.Evaluate(model.CategorySecondary, 60, thresholds)

			Convey("Then it qualifies", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When a secondary team scores one below", func() {
			ok, err := qualification.Evaluate(model.CategorySecondary, 59, thresholds)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("When a higher team scores 65", func() {
			ok, err := qualification.Evaluate(model.CategoryHigher, 65, thresholds)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("Then the result matches score >= threshold for every score", func() {
			for _, c := range model.Categories {
				for s := 0; s <= 100; s++ {
					ok, err := qualification.Evaluate(c, s, thresholds)
					So(err, ShouldBeNil)
					So(ok, ShouldEqual, s >= thresholds[c])
				}
			}
		})

		Convey("When the category is unknown", func() {
			_, err := qualification.Evaluate(model.Category("primary"), 90, thresholds)

			Convey("Then a configuration error is returned", func() {
				So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
			})
		})

		Convey("When the threshold for a category is missing", func() {
			_, err := qualification.Evaluate(model.CategoryHigher, 90, model.Thresholds{model.CategorySecondary: 60})
			So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
		})
	})
}

func TestCheckScore(t *testing.T) {
	Convey("Given QCM score bounds", t, func() {
		So(qualification.CheckScore(0), ShouldBeNil)
		So(qualification.CheckScore(100), ShouldBeNil)
		So(errors.Is(qualification.CheckScore(-1), model.ErrValidation), ShouldBeTrue)
		So(errors.Is(qualification.CheckScore(101), model.ErrValidation), ShouldBeTrue)
	})
}
