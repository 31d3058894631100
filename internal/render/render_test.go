package render

import (
	"bytes"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/dkp/internal/adapters/worker"
	"github.com/okian/dkp/internal/domain/aggregate"
	"github.com/okian/dkp/internal/domain/compare"
	"github.com/okian/dkp/internal/domain/profile"
	"github.com/okian/dkp/internal/domain/roster"
	"github.com/okian/dkp/internal/domain/scoring"
)

const ansiEscape = "\x1b["

func entities() []scoring.Entity {
	return []scoring.Entity{
		{ID: "1001", Name: "Alpha", StartPower: 50_000_000, PowerDelta: -1_000_000, T4: 1000, T5: 1000, T4T5: 2000, Deads: 500, KillScore: 35000, DKP: 50000, TargetDKP: 150_000_000, Completion: 0.0333},
		{ID: "1002", Name: "Bravo", StartPower: 30_000_000, PowerDelta: 250_000, T4: 100, T4T5: 100, Deads: 200, KillScore: 1000, DKP: 22000, TargetDKP: 90_000_000, Completion: 0.0244},
	}
}

func TestFormatShort(t *testing.T) {
	Convey("Given numbers of every magnitude", t, func() {
		Convey("Then they are abbreviated with B, M and k", func() {
			So(FormatShort(1_234_000_000), ShouldEqual, "1.23B")
			So(FormatShort(4_560_000), ShouldEqual, "4.56M")
			So(FormatShort(7_800), ShouldEqual, "7.8k")
			So(FormatShort(999), ShouldEqual, "999")
			So(FormatShort(0), ShouldEqual, "0")
		})

		Convey("Then negative values keep their sign", func() {
			So(FormatShort(-2_500_000), ShouldEqual, "-2.50M")
			So(FormatShort(-42), ShouldEqual, "-42")
		})
	})
}

func TestFormatNumber(t *testing.T) {
	Convey("Given whole and fractional numbers", t, func() {
		So(FormatNumber(1234567), ShouldEqual, "1,234,567")
		So(FormatNumber(-1000), ShouldEqual, "-1,000")
		So(FormatNumber(1234.5), ShouldEqual, "1,234.5")
		So(FormatInt(76000), ShouldEqual, "76,000")
		So(FormatPercent(33.333), ShouldEqual, "33.3%")
	})

	Convey("Given comparison metric keys", t, func() {
		So(formatMetric("completion", 12.26), ShouldEqual, "12.3%")
		So(formatMetric("start_power", 50_000_000), ShouldEqual, "50.00M")
		So(formatMetric("dkp", 50000), ShouldEqual, "50,000")
	})
}

func TestRendererTables(t *testing.T) {
	Convey("Given a renderer without color", t, func() {
		var buf bytes.Buffer
		r := New(&buf)

		Convey("When rendering entities", func() {
			So(r.Entities("Scores", entities()), ShouldBeNil)
			out := buf.String()

			Convey("Then every governor is listed with formatted values", func() {
				So(out, ShouldContainSubstring, "Scores")
				So(out, ShouldContainSubstring, "Alpha")
				So(out, ShouldContainSubstring, "50.00M")
				So(out, ShouldContainSubstring, "-1.00M")
				So(out, ShouldContainSubstring, "50,000")
				So(out, ShouldContainSubstring, "2 governors")
				So(out, ShouldNotContainSubstring, ansiEscape)
			})
		})

		Convey("When rendering a summary", func() {
			So(r.Summary("Kingdom", aggregate.Summarize(entities())), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "72,000")
			So(buf.String(), ShouldContainSubstring, "Avg Completion")
		})

		Convey("When rendering fighters", func() {
			ranked := []roster.Ranked{{Position: 7, Entity: entities()[0]}}
			So(r.Fighters("Fighters", ranked), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "7")
			So(buf.String(), ShouldContainSubstring, "Alpha")
		})

		Convey("When rendering quadrants", func() {
			classified, means := aggregate.ClassifyWithMeans(entities())
			So(r.Quadrants("Quadrants", classified, means, aggregate.Count(classified)), ShouldBeNil)
			out := buf.String()
			So(out, ShouldContainSubstring, "Hero")
			So(out, ShouldContainSubstring, "Slacker")
			So(out, ShouldContainSubstring, "Means")
		})

		Convey("When rendering quadrants with nobody active", func() {
			So(r.Quadrants("", nil, aggregate.Means{}, aggregate.Count(nil)), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "Means")
			So(buf.String(), ShouldNotContainSubstring, "Name")
		})

		Convey("When rendering profiles and settings", func() {
			infos := []profile.Info{{ID: "abc", Name: "KvK 1", Entities: 2, SavedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}}
			So(r.Profiles(infos), ShouldBeNil)
			So(r.Settings(scoring.DefaultConfig()), ShouldBeNil)
			out := buf.String()
			So(out, ShouldContainSubstring, "KvK 1")
			So(out, ShouldContainSubstring, "300.0%")
		})

		Convey("When rendering a recompute batch", func() {
			results := []worker.Result{
				{Name: "a", Entities: 3},
				{Name: "b", Err: errors.New("boom")},
			}
			So(r.Recompute(results), ShouldBeNil)
			out := buf.String()
			So(out, ShouldContainSubstring, "boom")
			So(out, ShouldContainSubstring, "1 failed")
		})
	})
}

func TestRendererComparisons(t *testing.T) {
	Convey("Given two governors compared side by side", t, func() {
		cmp, err := compare.Players(entities(), []string{"1001", "1002"})
		So(err, ShouldBeNil)

		Convey("When color is disabled", func() {
			var buf bytes.Buffer
			So(New(&buf).Players("Players", cmp), ShouldBeNil)

			Convey("Then both columns are present without escapes", func() {
				So(buf.String(), ShouldContainSubstring, "Alpha (1001)")
				So(buf.String(), ShouldContainSubstring, "Bravo (1002)")
				So(buf.String(), ShouldNotContainSubstring, ansiEscape)
			})
		})

		Convey("When color is enabled", func() {
			var buf bytes.Buffer
			So(New(&buf, WithColor(true)).Players("Players", cmp), ShouldBeNil)

			Convey("Then best and worst values are highlighted", func() {
				So(buf.String(), ShouldContainSubstring, ansiEscape)
			})
		})
	})

	Convey("Given two kingdoms", t, func() {
		a := aggregate.Summarize(entities())
		b := aggregate.Summarize(entities()[:1])
		cmp := compare.Kingdoms("K1", a, "K2", b)

		var buf bytes.Buffer
		So(New(&buf).Kingdoms("Head to head", cmp), ShouldBeNil)
		out := buf.String()

		Convey("Then both names and a tally are shown", func() {
			So(out, ShouldContainSubstring, "K1")
			So(out, ShouldContainSubstring, "K2")
			So(out, ShouldContainSubstring, "Wins")
			So(out, ShouldContainSubstring, "tied")
		})
	})
}
