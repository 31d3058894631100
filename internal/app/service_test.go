package service_test

import (
	"context"
	"errors"
	"io"
	"runtime"
	"strings"
	"testing"
	"time"

	service "github.com/okian/dkp/internal/app"
	"github.com/okian/dkp/internal/adapters/ingest"
	"github.com/okian/dkp/internal/adapters/repository"
	"github.com/okian/dkp/internal/domain/aggregate"
	"github.com/okian/dkp/internal/domain/compare"
	"github.com/okian/dkp/internal/domain/profile"
	"github.com/okian/dkp/internal/domain/roster"
	"github.com/okian/dkp/internal/domain/scoring"
	"github.com/okian/dkp/pkg/logger"
	"github.com/okian/dkp/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

const header = "Governor ID,Governor Name,Power,Troop Power,T1 Kills,T2 Kills,T3 Kills,T4 Kills,T5 Kills,Deads,Kill Points\n"

const startCSV = header +
	`1,Alpha,"50,000,000",40000000,0,0,0,1000,500,100,10000` + "\n" +
	"2,Bravo,30000000,20000000,0,0,0,0,0,0,0\n" +
	"3,Charlie,10000000,8000000,0,0,0,0,0,0,0\n"

const endCSV = header +
	"1,Alpha,49000000,39000000,0,0,0,3000,1500,300,90000\n" +
	"2,Bravo,30000000,20000000,0,0,0,0,0,500,0\n" +
	"3,Charlie,10000000,8000000,0,0,0,100,0,0,0\n"

func init() {
	// Initialize logging for tests
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func started(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(2), service.WithFighterMinPower(1))

		Convey("When it has not been started", func() {
			_, err := svc.Compute(ctx, startCSV, endCSV, scoring.DefaultConfig())

			Convey("Then work is refused", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When starting and stopping the service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			stats := svc.GetStats()

			Convey("Then stats reflect each state", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["storage"], ShouldEqual, "memory")
				So(stats["profiles"], ShouldEqual, 0)
				So(stats["workerCount"], ShouldEqual, 2)

				svc.Stop()
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_DefaultWorkers(t *testing.T) {
	Convey("Given a service built without a worker count", t, func() {
		svc := service.New()

		Convey("Then the pool is sized at two workers per CPU", func() {
			So(svc.GetStats()["workerCount"], ShouldEqual, runtime.NumCPU()*2)
		})
	})
}

// quadrantAssignments sums every quadrant series in the shared registry.
func quadrantAssignments() float64 {
	families, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	var total float64
	for _, f := range families {
		if !strings.HasSuffix(f.GetName(), "quadrant_assignments_total") {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestService_QuadrantMetrics(t *testing.T) {
	Convey("Given a started service with a saved profile", t, func() {
		ctx := context.Background()
		svc := started(service.WithStore(repository.NewMemoryStore(), "memory"))
		defer svc.Stop()

		_, err := svc.SaveProfile(ctx, "kvk-1", startCSV, endCSV, scoring.DefaultConfig())
		So(err, ShouldBeNil)
		before := quadrantAssignments()

		Convey("When the profile is only read", func() {
			_, err := svc.Quadrants(ctx, "kvk-1")
			So(err, ShouldBeNil)
			p, err := svc.GetProfile(ctx, "kvk-1")
			So(err, ShouldBeNil)
			svc.Analyze(ctx, p.Entities)

			Convey("Then no assignments are counted", func() {
				So(quadrantAssignments(), ShouldEqual, before)
			})
		})

		Convey("When snapshots are scored", func() {
			_, err := svc.Compute(ctx, startCSV, endCSV, scoring.DefaultConfig())
			So(err, ShouldBeNil)

			Convey("Then every active governor is counted once", func() {
				So(quadrantAssignments(), ShouldEqual, before+3)
			})
		})
	})
}

func TestService_Compute(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := started()
		defer svc.Stop()

		Convey("When computing two exports", func() {
			res, err := svc.Compute(ctx, startCSV, endCSV, scoring.DefaultConfig())
			So(err, ShouldBeNil)

			Convey("Then every start governor is scored in order", func() {
				So(len(res.Entities), ShouldEqual, 3)
				alpha := res.Entities[0]
				So(alpha.Name, ShouldEqual, "Alpha")
				So(alpha.PowerDelta, ShouldEqual, int64(-1_000_000))
				So(alpha.T4T5, ShouldEqual, int64(3000))
				So(alpha.KillScore, ShouldEqual, 40000.0)
				So(alpha.DKP, ShouldEqual, 50000.0)
				So(alpha.TargetDKP, ShouldEqual, 150_000_000.0)
				So(alpha.KillPointsDelta, ShouldEqual, int64(80000))
			})

			Convey("Then the summary totals the set", func() {
				So(res.Summary.Count, ShouldEqual, 3)
				So(res.Summary.T4T5, ShouldEqual, int64(3100))
				So(res.Summary.Deads, ShouldEqual, int64(700))
				So(res.Summary.KillScore, ShouldEqual, 41000.0)
				So(res.Summary.DKP, ShouldEqual, 76000.0)
			})

			Convey("Then governors are placed in quadrants", func() {
				q := res.Quadrants
				So(len(q.Entities), ShouldEqual, 3)
				So(q.Entities[0].Quadrant, ShouldEqual, aggregate.Hero)
				So(q.Entities[1].Quadrant, ShouldEqual, aggregate.Feeder)
				So(q.Entities[2].Quadrant, ShouldEqual, aggregate.Slacker)
				So(q.Counts[aggregate.Warrior], ShouldEqual, 0)
			})
		})

		Convey("When an export lacks required columns", func() {
			_, err := svc.Compute(ctx, "Governor ID,Power\n1,5\n", endCSV, scoring.DefaultConfig())

			Convey("Then the ingest error surfaces", func() {
				So(errors.Is(err, ingest.ErrMissingColumns), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "start snapshot")
			})
		})

		Convey("When an export is empty", func() {
			_, err := svc.Compute(ctx, startCSV, "", scoring.DefaultConfig())

			Convey("Then it is rejected", func() {
				So(errors.Is(err, ingest.ErrEmptySnapshot), ShouldBeTrue)
			})
		})
	})
}

func TestService_Profiles(t *testing.T) {
	Convey("Given a started service with a fixed clock", t, func() {
		ctx := context.Background()
		at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		svc := started(
			service.WithStore(repository.NewMemoryStore(), "memory"),
			service.WithClock(func() time.Time { return at }),
		)
		defer svc.Stop()

		saved, err := svc.SaveProfile(ctx, " kvk-1 ", startCSV, endCSV, scoring.DefaultConfig())
		So(err, ShouldBeNil)

		Convey("When a profile is saved", func() {
			Convey("Then it is listed and retrievable", func() {
				So(saved.Name, ShouldEqual, "kvk-1")
				So(saved.SavedAt, ShouldEqual, at)

				list, err := svc.ListProfiles(ctx)
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 1)
				So(list[0].Entities, ShouldEqual, 3)

				got, err := svc.GetProfile(ctx, "kvk-1")
				So(err, ShouldBeNil)
				So(got.StartRaw, ShouldEqual, startCSV)
			})

			Convey("Then views over it are available", func() {
				sum, err := svc.Summary(ctx, "kvk-1")
				So(err, ShouldBeNil)
				So(sum.DKP, ShouldEqual, 76000.0)

				fighters, err := svc.Fighters(ctx, "kvk-1")
				So(err, ShouldBeNil)
				So(len(fighters), ShouldEqual, 1)
				So(fighters[0].Entity.ID, ShouldEqual, "1")
				So(fighters[0].Position, ShouldEqual, 1)

				quads, err := svc.Quadrants(ctx, "kvk-1")
				So(err, ShouldBeNil)
				So(quads.Counts[aggregate.Hero], ShouldEqual, 1)

				rows, err := svc.Entities(ctx, "kvk-1", roster.ColDKP, roster.Asc, "")
				So(err, ShouldBeNil)
				So(rows[0].ID, ShouldEqual, "3")

				found, err := svc.Entities(ctx, "kvk-1", roster.ColName, roster.Asc, "bra")
				So(err, ShouldBeNil)
				So(len(found), ShouldEqual, 1)
				So(found[0].Name, ShouldEqual, "Bravo")
			})

			Convey("Then players can be compared", func() {
				cmp, err := svc.ComparePlayers(ctx, "kvk-1", []string{"1", "2"})
				So(err, ShouldBeNil)
				So(len(cmp.Players), ShouldEqual, 2)

				_, err = svc.ComparePlayers(ctx, "kvk-1", []string{"404"})
				So(errors.Is(err, compare.ErrUnknownPlayer), ShouldBeTrue)
			})
		})

		Convey("When recomputing with new weights", func() {
			cfg := scoring.Config{T4Mult: 1, T5Mult: 1, DeadsMult: 0, TargetPercent: 100}
			p, err := svc.SaveProfile(ctx, "kvk-1", "", "", cfg)

			Convey("Then stored snapshots are rescored and the ID kept", func() {
				So(err, ShouldBeNil)
				So(p.ID, ShouldEqual, saved.ID)
				So(p.Settings, ShouldResemble, cfg)
				So(p.Entities[0].DKP, ShouldEqual, 3000.0)
			})
		})

		Convey("When only one export is supplied", func() {
			_, err := svc.SaveProfile(ctx, "kvk-2", startCSV, "", scoring.DefaultConfig())

			Convey("Then the save is rejected", func() {
				So(errors.Is(err, service.ErrSnapshotsRequired), ShouldBeTrue)
			})
		})

		Convey("When recomputing an unknown profile", func() {
			_, err := svc.SaveProfile(ctx, "nope", "", "", scoring.DefaultConfig())

			Convey("Then the exports are required", func() {
				So(errors.Is(err, service.ErrSnapshotsRequired), ShouldBeTrue)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeFalse)
			})
		})

		Convey("When the name is invalid", func() {
			_, err := svc.SaveProfile(ctx, "   ", startCSV, endCSV, scoring.DefaultConfig())

			Convey("Then it is rejected", func() {
				So(errors.Is(err, profile.ErrInvalidName), ShouldBeTrue)
			})
		})

		Convey("When comparing two kingdoms", func() {
			_, err := svc.SaveProfile(ctx, "kvk-2", endCSV, endCSV, scoring.DefaultConfig())
			So(err, ShouldBeNil)

			cmp, err := svc.CompareKingdoms(ctx, "kvk-1", "kvk-2")

			Convey("Then the summaries are matched metric by metric", func() {
				So(err, ShouldBeNil)
				So(cmp.A, ShouldEqual, "kvk-1")
				So(cmp.B, ShouldEqual, "kvk-2")
				So(len(cmp.Rows), ShouldBeGreaterThan, 0)
			})

			Convey("Then a missing side is reported", func() {
				_, err := svc.CompareKingdoms(ctx, "kvk-1", "ghost")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When recomputing every profile", func() {
			_, err := svc.SaveProfile(ctx, "kvk-2", startCSV, endCSV, scoring.Config{T4Mult: 2})
			So(err, ShouldBeNil)

			override := scoring.Config{T4Mult: 1}
			results, err := svc.RecomputeAll(ctx, &override)
			So(err, ShouldBeNil)

			Convey("Then each profile is rescored with the override", func() {
				So(len(results), ShouldEqual, 2)
				for _, r := range results {
					So(r.Err, ShouldBeNil)
					So(r.Entities, ShouldEqual, 3)
				}
				p, _ := svc.GetProfile(ctx, "kvk-2")
				So(p.Entities[0].DKP, ShouldEqual, 2000.0)
			})

			Convey("Then without an override each keeps its own settings", func() {
				results, err := svc.RecomputeAll(ctx, nil)
				So(err, ShouldBeNil)
				So(len(results), ShouldEqual, 2)
				p, _ := svc.GetProfile(ctx, "kvk-2")
				So(p.Settings.T4Mult, ShouldEqual, 1.0)
			})
		})

		Convey("When deleting the profile", func() {
			So(svc.DeleteProfile(ctx, "kvk-1"), ShouldBeNil)

			Convey("Then it is gone", func() {
				_, err := svc.GetProfile(ctx, "kvk-1")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(svc.DeleteProfile(ctx, "kvk-1"), repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_SQLite(t *testing.T) {
	Convey("Given a service backed by SQLite", t, func() {
		ctx := context.Background()
		store, err := repository.OpenSQLite(ctx, t.TempDir()+"/dkp.db")
		So(err, ShouldBeNil)
		svc := started(service.WithStore(store, "sqlite"))
		defer svc.Stop()

		Convey("When a profile is saved and recomputed", func() {
			_, err := svc.SaveProfile(ctx, "kvk", startCSV, endCSV, scoring.DefaultConfig())
			So(err, ShouldBeNil)
			p, err := svc.RecomputeProfile(ctx, "kvk", scoring.Config{DeadsMult: 1})

			Convey("Then the compressed snapshots round-trip through the store", func() {
				So(err, ShouldBeNil)
				So(p.Entities[1].DKP, ShouldEqual, 500.0)
				So(svc.GetStats()["storage"], ShouldEqual, "sqlite")
			})
		})
	})
}
