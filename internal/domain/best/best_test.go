package best_test

import (
	"fmt"
	"sort"
	"testing"

	best "github.com/CuSO4Deposit/arctrack/internal/domain/best"
	model "github.com/CuSO4Deposit/arctrack/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func play(song string, ptt float64, ts int64) model.PlayRecord {
	return model.PlayRecord{
		User:       "alice",
		Chart:      model.ChartID{SongID: song, RatingClass: 2},
		Time:       ts,
		PlayRating: ptt,
	}
}

// fullSet builds a rating-descending snapshot of 30 distinct charts with
// ratings 12.9 down to 10.0.
func fullSet() []model.PlayRecord {
	set := make([]model.PlayRecord, 0, model.BestListSize)
	for i := 0; i < model.BestListSize; i++ {
		set = append(set, play(fmt.Sprintf("song%02d", i), 12.9-float64(i)*0.1, int64(1000+i)))
	}
	sort.SliceStable(set, func(i, j int) bool { return set[i].PlayRating > set[j].PlayRating })
	return set
}

func TestApplyUnderfull(t *testing.T) {
	Convey("Given a best set below capacity", t, func() {
		set := []model.PlayRecord{
			play("tempestissimo", 12.0, 100),
			play("grievouslady", 11.5, 200),
		}

		Convey("When a new chart arrives", func() {
			d := best.Apply(set, play("fractureray", 9.0, 300))

			Convey("Then it is accepted without eviction", func() {
				So(d.Accepted, ShouldBeTrue)
				So(d.Evicted, ShouldBeNil)
			})
		})

		Convey("When a chart already present arrives with a lower rating", func() {
			d := best.Apply(set, play("tempestissimo", 11.0, 300))

			Convey("Then the existing entry keeps its place", func() {
				So(d.Accepted, ShouldBeFalse)
				So(d.Evicted, ShouldBeNil)
			})
		})

		Convey("When a chart already present arrives with a higher rating", func() {
			d := best.Apply(set, play("grievouslady", 12.5, 300))

			Convey("Then the previous entry for that chart is replaced", func() {
				So(d.Accepted, ShouldBeTrue)
				So(d.Evicted, ShouldNotBeNil)
				So(d.Evicted.Chart.SongID, ShouldEqual, "grievouslady")
				So(d.Evicted.Time, ShouldEqual, 200)
			})
		})

		Convey("When a chart already present arrives with an equal rating", func() {
			d := best.Apply(set, play("grievouslady", 11.5, 300))

			Convey("Then the newer play replaces the old one", func() {
				So(d.Accepted, ShouldBeTrue)
				So(d.Evicted, ShouldNotBeNil)
				So(d.Evicted.Time, ShouldEqual, 200)
			})
		})
	})
}

func TestApplyFull(t *testing.T) {
	Convey("Given a full best set of 30 distinct charts", t, func() {
		set := fullSet()
		lowest := set[len(set)-1]

		Convey("When a new chart rates below the lowest entry", func() {
			d := best.Apply(set, play("newcomer", lowest.PlayRating-0.1, 9999))

			Convey("Then it is rejected", func() {
				So(d.Accepted, ShouldBeFalse)
				So(d.Evicted, ShouldBeNil)
			})
		})

		Convey("When a new chart ties the lowest entry", func() {
			d := best.Apply(set, play("newcomer", lowest.PlayRating, 9999))

			Convey("Then the boundary tie is rejected", func() {
				So(d.Accepted, ShouldBeFalse)
			})
		})

		Convey("When a new chart beats the lowest entry", func() {
			d := best.Apply(set, play("newcomer", lowest.PlayRating+0.05, 9999))

			Convey("Then the lowest-rated entry makes room", func() {
				So(d.Accepted, ShouldBeTrue)
				So(d.Evicted, ShouldNotBeNil)
				So(d.Evicted.Chart, ShouldEqual, lowest.Chart)
			})
		})

		Convey("When a chart already in the set improves", func() {
			target := set[10]
			d := best.Apply(set, play(target.Chart.SongID, target.PlayRating+0.3, 9999))

			Convey("Then its own entry is evicted, not the lowest", func() {
				So(d.Accepted, ShouldBeTrue)
				So(d.Evicted, ShouldNotBeNil)
				So(d.Evicted.Chart, ShouldEqual, target.Chart)
				So(d.Evicted.Chart, ShouldNotEqual, lowest.Chart)
			})
		})
	})
}
