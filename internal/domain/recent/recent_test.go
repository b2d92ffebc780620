package recent_test

import (
	"fmt"
	"math/rand"
	"testing"

	model "github.com/CuSO4Deposit/arctrack/internal/domain/model"
	recent "github.com/CuSO4Deposit/arctrack/internal/domain/recent"
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

func keys(recs []model.PlayRecord) map[int64]bool {
	out := make(map[int64]bool, len(recs))
	for _, r := range recs {
		out[r.Time] = true
	}
	return out
}

func hasChart(recs []model.PlayRecord, song string) bool {
	for _, r := range recs {
		if r.Chart.SongID == song {
			return true
		}
	}
	return false
}

func TestSplitTop10(t *testing.T) {
	Convey("Given a recent set with duplicated charts", t, func() {
		var set []model.PlayRecord
		ts := int64(1)
		// 12 charts, 2-3 copies each, 30 entries total.
		for i := 0; i < 12; i++ {
			copies := 2
			if i < 6 {
				copies = 3
			}
			for j := 0; j < copies; j++ {
				set = append(set, play(fmt.Sprintf("song%02d", i), 9+float64(i)*0.2+float64(j)*0.01, ts))
				ts++
			}
		}

		top10, candidates := recent.SplitTop10(set)

		Convey("Then the split is a partition bounded at ten", func() {
			So(len(top10), ShouldEqual, model.TopOfRecentSize)
			So(len(top10)+len(candidates), ShouldEqual, len(set))
		})

		Convey("Then the top holds at most one entry per chart", func() {
			seen := make(map[model.ChartID]bool)
			for _, r := range top10 {
				So(seen[r.Chart], ShouldBeFalse)
				seen[r.Chart] = true
			}
		})

		Convey("Then the top is rating-descending", func() {
			for i := 1; i < len(top10); i++ {
				So(top10[i].PlayRating, ShouldBeLessThanOrEqualTo, top10[i-1].PlayRating)
			}
		})

		Convey("Then the result is independent of input order", func() {
			rng := rand.New(rand.NewSource(7))
			for trial := 0; trial < 5; trial++ {
				shuffled := make([]model.PlayRecord, len(set))
				copy(shuffled, set)
				rng.Shuffle(len(shuffled), func(i, j int) {
					shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
				})
				shuffledTop, _ := recent.SplitTop10(shuffled)
				So(keys(shuffledTop), ShouldResemble, keys(top10))
			}
		})
	})

	Convey("Given two plays of distinct charts with equal ratings", t, func() {
		set := []model.PlayRecord{
			play("older", 11.0, 100),
			play("newer", 11.0, 200),
		}

		Convey("Then the newer one ranks first", func() {
			top10, _ := recent.SplitTop10(set)
			So(top10[0].Chart.SongID, ShouldEqual, "newer")
		})
	})
}

func TestIsPersonalHighScore(t *testing.T) {
	Convey("Given a chart's score history", t, func() {
		Convey("Then matching the previous high counts", func() {
			So(recent.IsPersonalHighScore(9_000_000, 9_000_000), ShouldBeTrue)
			So(recent.IsPersonalHighScore(9_000_001, 9_000_000), ShouldBeTrue)
			So(recent.IsPersonalHighScore(8_999_999, 9_000_000), ShouldBeFalse)
		})

		Convey("Then any score beats an empty history", func() {
			So(recent.IsPersonalHighScore(0, 0), ShouldBeTrue)
		})
	})
}

func TestApplyUnderfull(t *testing.T) {
	Convey("Given a recent set below capacity", t, func() {
		set := []model.PlayRecord{play("tempestissimo", 12.0, 100)}

		Convey("When any record arrives", func() {
			d := recent.Apply(set, play("grievouslady", 11.0, 200), false)

			Convey("Then nothing is evicted", func() {
				So(d.Evicted, ShouldBeNil)
				So(d.Branch, ShouldEqual, recent.BranchNone)
			})
		})
	})
}

// variedSet builds a full set of 30 entries over many distinct charts:
// song00..song29, timestamps 1..30, modest ratings.
func variedSet() []model.PlayRecord {
	set := make([]model.PlayRecord, 0, model.RecentListSize)
	for i := 0; i < model.RecentListSize; i++ {
		set = append(set, play(fmt.Sprintf("song%02d", i), 10+float64(i%7)*0.1, int64(i+1)))
	}
	return set
}

// thinSet builds a full set over exactly 10 distinct charts so the
// variety-preserving branches engage. Chart "spam" holds timestamps
// 1..21, charts v0..v8 one play each at timestamps 22..30.
func thinSet() []model.PlayRecord {
	var set []model.PlayRecord
	for i := 0; i < 21; i++ {
		set = append(set, play("spam", 10.5, int64(i+1)))
	}
	for i := 0; i < 9; i++ {
		set = append(set, play(fmt.Sprintf("v%d", i), 11.0, int64(22+i)))
	}
	return set
}

func TestApplyNormal(t *testing.T) {
	Convey("Given a full set with more than ten distinct charts", t, func() {
		set := variedSet()

		Convey("When an ordinary play of a present chart arrives", func() {
			d := recent.Apply(set, play("song05", 10.0, 999), false)

			Convey("Then the oldest entry overall is evicted", func() {
				So(d.Branch, ShouldEqual, recent.BranchOldest)
				So(d.Evicted, ShouldNotBeNil)
				So(d.Evicted.Time, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a full set with only ten distinct charts", t, func() {
		set := thinSet()

		Convey("When an ordinary play of the duplicated chart arrives", func() {
			d := recent.Apply(set, play("spam", 10.0, 999), false)

			Convey("Then its own oldest duplicate is evicted", func() {
				So(d.Branch, ShouldEqual, recent.BranchSameChart)
				So(d.Evicted, ShouldNotBeNil)
				So(d.Evicted.Chart.SongID, ShouldEqual, "spam")
				So(d.Evicted.Time, ShouldEqual, 1)
			})
		})

		Convey("When an ordinary play of a single-play chart arrives", func() {
			d := recent.Apply(set, play("v3", 10.0, 999), false)

			Convey("Then that chart's only entry is the same-chart pool", func() {
				So(d.Branch, ShouldEqual, recent.BranchSameChart)
				So(d.Evicted, ShouldNotBeNil)
				So(d.Evicted.Chart.SongID, ShouldEqual, "v3")
			})
		})

		Convey("When an ordinary play of an absent chart arrives", func() {
			d := recent.Apply(set, play("stranger", 10.0, 999), false)

			Convey("Then the oldest entry overall is evicted", func() {
				So(d.Branch, ShouldEqual, recent.BranchOldest)
				So(d.Evicted, ShouldNotBeNil)
				So(d.Evicted.Time, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a full set with tied oldest timestamps", t, func() {
		set := variedSet()
		set[0].Time = 0
		set[4].Time = 0 // snapshot now has two entries at the minimum

		Convey("When the oldest must go", func() {
			d := recent.Apply(set, play("stranger", 10.0, 999), false)

			Convey("Then the first entry in snapshot order wins the tie", func() {
				So(d.Evicted, ShouldNotBeNil)
				So(d.Evicted.Chart, ShouldEqual, set[0].Chart)
			})
		})
	})
}

func TestApplyProtected(t *testing.T) {
	Convey("Given a full set where a chart's only play is the oldest entry and sits in the top ten", t, func() {
		// "solo" at time 1 with the highest rating; five other charts
		// share timestamps 2..30.
		set := []model.PlayRecord{play("solo", 12.5, 1)}
		for i := 0; i < 29; i++ {
			set = append(set, play(fmt.Sprintf("c%d", i%5), 10+float64(i%5)*0.1, int64(i+2)))
		}

		Convey("When an EX-grade play arrives", func() {
			rec := play("c0", 13.0, 999)
			rec.Score = 9_900_000
			d := recent.Apply(set, rec, false)

			Convey("Then the eviction spares the top ten", func() {
				So(d.Branch, ShouldEqual, recent.BranchProtected)
				So(d.Evicted, ShouldNotBeNil)
				So(d.Evicted.Chart.SongID, ShouldNotEqual, "solo")
				So(d.Evicted.Time, ShouldEqual, 2)
			})

			Convey("Then the spared chart stays in the derived top ten", func() {
				next := make([]model.PlayRecord, 0, model.RecentListSize)
				for _, r := range set {
					if !r.SameKey(*d.Evicted) {
						next = append(next, r)
					}
				}
				next = append(next, rec)
				top10, _ := recent.SplitTop10(next)
				So(hasChart(top10, "solo"), ShouldBeTrue)
			})
		})

		Convey("When a sub-EX personal high score arrives", func() {
			rec := play("c0", 13.0, 999)
			rec.Score = 9_000_000
			d := recent.Apply(set, rec, true)

			Convey("Then the same protection applies", func() {
				So(d.Branch, ShouldEqual, recent.BranchProtected)
				So(d.Evicted.Chart.SongID, ShouldNotEqual, "solo")
			})
		})
	})

	Convey("Given a full set of ten charts where one candidate chart has a single surviving copy", t, func() {
		// "thin" keeps its best play in the top ten and one low-rated
		// candidate copy at time 1, the oldest candidate. Every other
		// chart has at least two candidate copies.
		set := []model.PlayRecord{
			play("thin", 12.0, 20),
			play("thin", 5.0, 1),
		}
		ts := int64(30)
		for j := 0; j < 4; j++ {
			set = append(set, play("a", 11+float64(j)*0.01, ts))
			ts++
		}
		for i := 0; i < 8; i++ {
			for j := 0; j < 3; j++ {
				set = append(set, play(fmt.Sprintf("b%d", i), 10+float64(i)*0.1+float64(j)*0.01, ts))
				ts++
			}
		}

		Convey("When an EX play that claims a top slot arrives", func() {
			rec := play("a", 13.0, 999)
			rec.Score = 9_950_000
			d := recent.Apply(set, rec, true)

			Convey("Then the single-copy candidate is spared in favor of a duplicated chart", func() {
				So(d.Branch, ShouldEqual, recent.BranchProtected)
				So(d.Evicted, ShouldNotBeNil)
				So(d.Evicted.Chart.SongID, ShouldNotEqual, "thin")
			})
		})
	})
}
