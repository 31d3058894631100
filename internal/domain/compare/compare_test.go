package compare_test

import (
	"errors"
	"testing"

	"github.com/okian/dkp/internal/domain/aggregate"
	"github.com/okian/dkp/internal/domain/compare"
	"github.com/okian/dkp/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func row(rows []compare.Row, key string) compare.Row {
	for _, r := range rows {
		if r.Key == key {
			return r
		}
	}
	return compare.Row{}
}

func TestPlayers(t *testing.T) {
	entities := []scoring.Entity{
		{ID: "a", StartPower: 100, Deads: 10, DKP: 500},
		{ID: "b", StartPower: 300, Deads: 30, DKP: 500},
		{ID: "c", StartPower: 200, Deads: 20, DKP: 100},
		{ID: "d"},
	}

	Convey("Given three selected governors", t, func() {
		cmp, err := compare.Players(entities, []string{"c", "a", "b"})

		Convey("Then players keep the requested order", func() {
			So(err, ShouldBeNil)
			So(len(cmp.Players), ShouldEqual, 3)
			So(cmp.Players[0].ID, ShouldEqual, "c")
			So(len(cmp.Rows), ShouldEqual, 10)
		})

		Convey("Then the best and worst values are flagged", func() {
			r := row(cmp.Rows, "start_power")
			So(r.HigherIsBetter, ShouldBeTrue)
			So(r.Cells[2].Best, ShouldBeTrue)
			So(r.Cells[1].Worst, ShouldBeTrue)
			So(r.Cells[0].Best || r.Cells[0].Worst, ShouldBeFalse)
		})

		Convey("Then fewer deaths win", func() {
			r := row(cmp.Rows, "deads")
			So(r.HigherIsBetter, ShouldBeFalse)
			So(r.Cells[1].Best, ShouldBeTrue)
			So(r.Cells[2].Worst, ShouldBeTrue)
		})

		Convey("Then ties share the best flag", func() {
			r := row(cmp.Rows, "dkp")
			So(r.Cells[1].Best, ShouldBeTrue)
			So(r.Cells[2].Best, ShouldBeTrue)
			So(r.Cells[0].Worst, ShouldBeTrue)
		})
	})

	Convey("Given identical values", t, func() {
		cmp, err := compare.Players(entities, []string{"a", "d"})
		So(err, ShouldBeNil)

		Convey("Then nobody is flagged worst when everyone ties", func() {
			r := row(cmp.Rows, "t4t5")
			So(r.Cells[0].Best, ShouldBeTrue)
			So(r.Cells[1].Best, ShouldBeTrue)
			So(r.Cells[0].Worst || r.Cells[1].Worst, ShouldBeFalse)
		})
	})

	Convey("Given invalid selections", t, func() {
		Convey("Then an empty selection fails", func() {
			_, err := compare.Players(entities, []string{" ", ""})
			So(errors.Is(err, compare.ErrNoPlayers), ShouldBeTrue)
		})

		Convey("Then more than three governors fail", func() {
			_, err := compare.Players(entities, []string{"a", "b", "c", "d"})
			So(errors.Is(err, compare.ErrTooManyPlayers), ShouldBeTrue)
		})

		Convey("Then duplicates are collapsed before the cap applies", func() {
			_, err := compare.Players(entities, []string{"a", "a", "b", "c", "c"})
			So(err, ShouldBeNil)
		})

		Convey("Then unknown governors fail", func() {
			_, err := compare.Players(entities, []string{"zzz"})
			So(errors.Is(err, compare.ErrUnknownPlayer), ShouldBeTrue)
		})
	})
}

func TestKingdoms(t *testing.T) {
	Convey("Given two kingdom summaries", t, func() {
		a := aggregate.Summary{Count: 10, Deads: 50, DKP: 1000, MeanCompletion: 12}
		b := aggregate.Summary{Count: 10, Deads: 80, DKP: 2000, MeanCompletion: 8}

		Convey("When comparing", func() {
			cmp := compare.Kingdoms("home", a, "enemy", b)

			Convey("Then each metric has a winner", func() {
				So(cmp.A, ShouldEqual, "home")
				So(cmp.B, ShouldEqual, "enemy")
				winners := map[string]compare.Side{}
				for _, r := range cmp.Rows {
					winners[r.Key] = r.Winner
				}
				So(winners["count"], ShouldEqual, compare.Tie)
				So(winners["deads"], ShouldEqual, compare.SideA)
				So(winners["dkp"], ShouldEqual, compare.SideB)
				So(winners["mean_completion"], ShouldEqual, compare.SideA)
			})
		})
	})
}
