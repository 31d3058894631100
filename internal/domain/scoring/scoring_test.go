package scoring_test

import (
	"math"
	"testing"

	"github.com/okian/dkp/internal/domain/scoring"
	"github.com/okian/dkp/internal/domain/snapshot"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(id, power string, t4, t5, deads string) snapshot.Record {
	return snapshot.Record{
		ID:    id,
		Name:  "gov-" + id,
		Power: power,
		Kills: [snapshot.Tiers]string{"0", "0", "0", t4, t5},
		Deads: deads,
	}
}

var stockWeights = scoring.Config{T4Mult: 10, T5Mult: 20, DeadsMult: 50, TargetPercent: 300}

func TestCompute(t *testing.T) {
	Convey("Given a governor present in both snapshots", t, func() {
		start := snapshot.Snapshot{rec("100", "10,000,000", "50", "20", "5")}
		end := snapshot.Snapshot{rec("100", "12,000,000", "150", "70", "25")}

		Convey("When computing scores", func() {
			out := scoring.Compute(start, end, stockWeights)

			Convey("Then deltas and scores follow the formula", func() {
				So(len(out), ShouldEqual, 1)
				e := out[0]
				So(e.ID, ShouldEqual, "100")
				So(e.StartPower, ShouldEqual, int64(10_000_000))
				So(e.PowerDelta, ShouldEqual, int64(2_000_000))
				So(e.T4, ShouldEqual, int64(100))
				So(e.T5, ShouldEqual, int64(50))
				So(e.T4T5, ShouldEqual, int64(150))
				So(e.Deads, ShouldEqual, int64(20))
				So(e.KillScore, ShouldEqual, 2000.0)
				So(e.DKP, ShouldEqual, 3000.0)
				So(e.TargetDKP, ShouldEqual, 30_000_000.0)
				So(e.Completion, ShouldAlmostEqual, 0.01, 1e-12)
			})
		})
	})

	Convey("Given a governor missing from the end snapshot", t, func() {
		start := snapshot.Snapshot{rec("200", "5,000,000", "10", "0", "0")}
		end := snapshot.Snapshot{rec("999", "1", "1", "1", "1")}

		Convey("When computing scores", func() {
			out := scoring.Compute(start, end, stockWeights)

			Convey("Then end values are treated as zero", func() {
				So(len(out), ShouldEqual, 1)
				So(out[0].T4, ShouldEqual, int64(0))
				So(out[0].PowerDelta, ShouldEqual, int64(-5_000_000))
				So(out[0].DKP, ShouldEqual, 0.0)
				So(out[0].Name, ShouldEqual, "gov-200")
			})
		})
	})

	Convey("Given counters that went down", t, func() {
		start := snapshot.Snapshot{rec("1", "1,000", "500", "500", "500")}
		end := snapshot.Snapshot{rec("1", "900", "10", "10", "10")}

		Convey("Then kill and death deltas never go negative", func() {
			e := scoring.Compute(start, end, stockWeights)[0]
			So(e.T4, ShouldEqual, int64(0))
			So(e.T5, ShouldEqual, int64(0))
			So(e.Deads, ShouldEqual, int64(0))
			So(e.PowerDelta, ShouldEqual, int64(-100))
		})
	})

	Convey("Given a governor with zero starting power", t, func() {
		start := snapshot.Snapshot{rec("1", "0", "0", "0", "0")}
		end := snapshot.Snapshot{rec("1", "0", "1000", "1000", "1000")}

		Convey("Then completion is zero rather than NaN or Inf", func() {
			e := scoring.Compute(start, end, stockWeights)[0]
			So(e.DKP, ShouldBeGreaterThan, 0)
			So(e.Completion, ShouldEqual, 0.0)
		})
	})

	Convey("Given start records with and without identifiers", t, func() {
		start := snapshot.Snapshot{
			rec("3", "10", "0", "0", "0"),
			rec("", "10", "0", "0", "0"),
			rec("1", "10", "0", "0", "0"),
			rec("2", "10", "0", "0", "0"),
		}

		Convey("Then output keeps start order and drops blank IDs", func() {
			out := scoring.Compute(start, nil, stockWeights)
			So(len(out), ShouldEqual, 3)
			So(out[0].ID, ShouldEqual, "3")
			So(out[1].ID, ShouldEqual, "1")
			So(out[2].ID, ShouldEqual, "2")
		})
	})

	Convey("Given duplicate identifiers in the end snapshot", t, func() {
		start := snapshot.Snapshot{rec("1", "100", "0", "0", "0")}
		end := snapshot.Snapshot{
			rec("1", "100", "10", "0", "0"),
			rec("1", "100", "30", "0", "0"),
		}

		Convey("Then the later row wins", func() {
			So(scoring.Compute(start, end, stockWeights)[0].T4, ShouldEqual, int64(30))
		})
	})

	Convey("Given identical inputs", t, func() {
		start := snapshot.Snapshot{rec("1", "7,777,777", "3", "9", "11"), rec("2", "123", "4", "5", "6")}
		end := snapshot.Snapshot{rec("1", "8,000,000", "33", "99", "111"), rec("2", "1", "40", "50", "60")}
		cfg := scoring.Config{T4Mult: 1.1, T5Mult: 2.3, DeadsMult: 0.7, TargetPercent: 133.3}

		Convey("Then repeated runs produce identical results", func() {
			So(scoring.Compute(start, end, cfg), ShouldResemble, scoring.Compute(start, end, cfg))
		})
	})

	Convey("Given invalid weights", t, func() {
		start := snapshot.Snapshot{rec("1", "100", "0", "0", "0")}
		end := snapshot.Snapshot{rec("1", "100", "10", "10", "10")}
		cfg := scoring.Config{T4Mult: -1, T5Mult: math.NaN(), DeadsMult: math.Inf(1), TargetPercent: 100}

		Convey("Then they are treated as zero", func() {
			e := scoring.Compute(start, end, cfg)[0]
			So(e.DKP, ShouldEqual, 0.0)
			So(e.Completion, ShouldEqual, 0.0)
		})
	})

	Convey("Given counters at the edge of the int64 range", t, func() {
		huge := "99999999999999999999"
		start := snapshot.Snapshot{rec("1", "-"+huge, "-"+huge, "0", "-"+huge)}
		end := snapshot.Snapshot{rec("1", huge, huge, "0", huge)}

		Convey("Then deltas saturate instead of wrapping", func() {
			e := scoring.Compute(start, end, stockWeights)[0]
			So(e.T4, ShouldEqual, int64(math.MaxInt64))
			So(e.Deads, ShouldEqual, int64(math.MaxInt64))
			So(e.T4T5, ShouldEqual, int64(math.MaxInt64))
			So(e.PowerDelta, ShouldEqual, int64(math.MaxInt64))
			So(e.DKP, ShouldBeGreaterThan, 0.0)
		})

		Convey("Then a fall from the top saturates low", func() {
			e := scoring.Compute(end, start, stockWeights)[0]
			So(e.PowerDelta, ShouldEqual, int64(math.MinInt64))
			So(e.T4, ShouldEqual, int64(0))
			So(e.Deads, ShouldEqual, int64(0))
		})
	})

	Convey("Given weights large enough to overflow a float64", t, func() {
		start := snapshot.Snapshot{rec("1", "1000", "0", "0", "0")}
		end := snapshot.Snapshot{rec("1", "1000", "1000", "1000", "1000")}
		cfg := scoring.Config{T4Mult: 1e308, T5Mult: 1e308, DeadsMult: 1e308, TargetPercent: 1e308}

		Convey("Then every score stays finite", func() {
			e := scoring.Compute(start, end, cfg)[0]
			for _, v := range []float64{e.KillScore, e.DKP, e.TargetDKP, e.Completion} {
				So(math.IsInf(v, 0) || math.IsNaN(v), ShouldBeFalse)
			}
		})
	})
}

func TestEntityLowTierKills(t *testing.T) {
	Convey("Given an entity with low tier kills", t, func() {
		e := scoring.Entity{T1: 1, T2: 2, T3: 3, T4: 100}

		Convey("Then T1..T3 are summed", func() {
			So(e.LowTierKills(), ShouldEqual, int64(6))
		})
	})
}

func TestParseWeight(t *testing.T) {
	Convey("Given form input", t, func() {
		Convey("Then plain numbers parse", func() {
			So(scoring.ParseWeight("10"), ShouldEqual, 10.0)
			So(scoring.ParseWeight(" 2.5"), ShouldEqual, 2.5)
			So(scoring.ParseWeight(".5"), ShouldEqual, 0.5)
			So(scoring.ParseWeight("1e2"), ShouldEqual, 100.0)
		})

		Convey("Then trailing garbage is ignored", func() {
			So(scoring.ParseWeight("2.5x"), ShouldEqual, 2.5)
			So(scoring.ParseWeight("300%"), ShouldEqual, 300.0)
			So(scoring.ParseWeight("4e"), ShouldEqual, 4.0)
		})

		Convey("Then unusable input is zero", func() {
			So(scoring.ParseWeight(""), ShouldEqual, 0.0)
			So(scoring.ParseWeight("abc"), ShouldEqual, 0.0)
			So(scoring.ParseWeight("."), ShouldEqual, 0.0)
			So(scoring.ParseWeight("-3"), ShouldEqual, 0.0)
			So(scoring.ParseWeight("1e999"), ShouldEqual, 0.0)
		})
	})

	Convey("Given four text weights", t, func() {
		cfg := scoring.ParseConfig("10", "20", "", "300")

		Convey("Then a config is assembled with blanks as zero", func() {
			So(cfg, ShouldResemble, scoring.Config{T4Mult: 10, T5Mult: 20, DeadsMult: 0, TargetPercent: 300})
		})
	})
}
