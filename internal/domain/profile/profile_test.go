package profile_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/dkp/internal/domain/profile"
	"github.com/okian/dkp/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given valid profile input", t, func() {
		now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
		entities := []scoring.Entity{{ID: "1"}, {ID: "2"}}

		Convey("When creating a profile", func() {
			p, err := profile.New("  KvK 3  ", "s", "e", scoring.DefaultConfig(), entities, now)

			Convey("Then the name is trimmed and an ID assigned", func() {
				So(err, ShouldBeNil)
				So(p.Name, ShouldEqual, "KvK 3")
				So(p.ID, ShouldNotBeEmpty)
				So(p.SavedAt.Location(), ShouldEqual, time.UTC)
			})

			Convey("Then the listing view counts entities", func() {
				info := p.Info()
				So(info.Entities, ShouldEqual, 2)
				So(info.Name, ShouldEqual, "KvK 3")
			})
		})

		Convey("When creating two profiles", func() {
			a, _ := profile.New("a", "", "", scoring.Config{}, nil, now)
			b, _ := profile.New("a", "", "", scoring.Config{}, nil, now)

			Convey("Then their IDs differ", func() {
				So(a.ID, ShouldNotEqual, b.ID)
			})
		})
	})

	Convey("Given invalid names", t, func() {
		for _, name := range []string{"", "   ", strings.Repeat("x", profile.MaxNameLength+1), "bad\nname"} {
			_, err := profile.NormalizeName(name)
			So(errors.Is(err, profile.ErrInvalidName), ShouldBeTrue)
		}
	})
}
