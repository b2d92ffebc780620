package scoring_test

import (
	"testing"

	scoring "github.com/CuSO4Deposit/arctrack/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestComputeScore(t *testing.T) {
	Convey("Given the fracture ray chart with 1279 notes", t, func() {
		const note = 1279

		Convey("When all notes are pure with 1277 max pures", func() {
			score, err := scoring.ComputeScore(1279, 1277, 0, note)

			Convey("Then the score lands just above the theoretical maximum", func() {
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 10001277)
			})
		})

		Convey("When one pure slips to a far", func() {
			score, err := scoring.ComputeScore(1278, 1277, 1, note)

			Convey("Then the far counts as half a pure", func() {
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 9997367)
			})
		})

		Convey("When nothing is hit", func() {
			score, err := scoring.ComputeScore(0, 0, 0, note)
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 0)
		})
	})

	Convey("Given a chart with a non-positive note count", t, func() {
		Convey("Then score computation fails", func() {
			_, err := scoring.ComputeScore(10, 10, 0, 0)
			So(err, ShouldWrap, scoring.ErrInvalidChart)

			_, err = scoring.ComputeScore(10, 10, 0, -5)
			So(err, ShouldWrap, scoring.ErrInvalidChart)
		})
	})
}

func TestComputeRating(t *testing.T) {
	Convey("Given a chart with base rating 11.3", t, func() {
		const base = 113

		Convey("When the score exceeds the theoretical maximum", func() {
			So(scoring.ComputeRating(10001277, base), ShouldEqual, 13.3)
		})

		Convey("When the score sits exactly at the maximum", func() {
			// The EX band reaches base+2 at 10,000,000, so the rating is
			// continuous across the branch boundary.
			So(scoring.ComputeRating(10_000_000, base), ShouldEqual, 13.3)
		})

		Convey("When the score sits at the EX threshold", func() {
			So(scoring.ComputeRating(9_800_000, base), ShouldEqual, 12.3)
		})

		Convey("When the score is halfway through the EX band", func() {
			So(scoring.ComputeRating(9_900_000, base), ShouldEqual, 12.8)
		})

		Convey("When the score is below the EX threshold", func() {
			So(scoring.ComputeRating(9_500_000, base), ShouldEqual, 11.3)
			So(scoring.ComputeRating(9_200_000, base), ShouldEqual, 10.3)
		})

		Convey("When the score is low enough to clamp", func() {
			So(scoring.ComputeRating(0, base), ShouldEqual, 0)
		})
	})
}
