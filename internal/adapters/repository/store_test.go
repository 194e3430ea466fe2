package repository_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/okian/studybuddy/internal/adapters/repository"
	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func newProfile(id string) *model.Profile {
	return &model.Profile{
		ID:          id,
		FirstName:   "First " + id,
		LastName:    "Last " + id,
		Email:       id + "@example.edu",
		Department:  "CS",
		CurrentYear: "Junior",
		Classes:     model.NewStringSet("CS101", "CS201"),
		Interests:   model.NewStringSet("chess"),
		Mentor:      id == "b",
	}
}

// profilesGauge reads the exported profile count gauge.
func profilesGauge() float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return -1
	}
	for _, f := range families {
		if f.GetName() == "studybuddy_matcher_profiles_total" && len(f.GetMetric()) > 0 {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return -1
}

func idsOf(ps []*model.Profile) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

// exerciseStore runs the behaviour every Store must share.
func exerciseStore(newStore func() repository.Store) {
	ctx := context.Background()

	Convey("When the store is empty", func() {
		s := newStore()
		defer func() { _ = s.Close() }()

		Convey("Then lookups return ErrNotFound", func() {
			_, err := s.Get(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(errors.Is(s.Delete(ctx, "missing"), repository.ErrNotFound), ShouldBeTrue)
			So(s.Count(ctx), ShouldEqual, 0)
		})

		Convey("And listing returns nothing", func() {
			ps, err := s.ListExcept(ctx, "x")
			So(err, ShouldBeNil)
			So(ps, ShouldBeEmpty)
		})
	})

	Convey("When profiles are stored", func() {
		s := newStore()
		defer func() { _ = s.Close() }()
		for _, id := range []string{"a", "b", "c", "d"} {
			So(s.Put(ctx, newProfile(id)), ShouldBeNil)
		}

		Convey("Then Get round-trips every field", func() {
			p, err := s.Get(ctx, "b")
			So(err, ShouldBeNil)
			So(p.FirstName, ShouldEqual, "First b")
			So(p.Email, ShouldEqual, "b@example.edu")
			So(p.Department, ShouldEqual, "CS")
			So(p.CurrentYear, ShouldEqual, "Junior")
			So(p.Classes.Values(), ShouldResemble, []string{"CS101", "CS201"})
			So(p.Interests.Values(), ShouldResemble, []string{"chess"})
			So(p.Mentor, ShouldBeTrue)
			So(s.Count(ctx), ShouldEqual, 4)
		})

		Convey("And ListExcept drops the requester and keeps insertion order", func() {
			ps, err := s.ListExcept(ctx, "b")
			So(err, ShouldBeNil)
			So(idsOf(ps), ShouldResemble, []string{"a", "c", "d"})
		})

		Convey("And replacing a profile keeps its position", func() {
			p := newProfile("a")
			p.Department = "Math"
			So(s.Put(ctx, p), ShouldBeNil)

			ps, err := s.ListExcept(ctx, "")
			So(err, ShouldBeNil)
			So(idsOf(ps), ShouldResemble, []string{"a", "b", "c", "d"})
			So(ps[0].Department, ShouldEqual, "Math")
			So(s.Count(ctx), ShouldEqual, 4)
		})

		Convey("And deleting removes it from listings", func() {
			So(s.Delete(ctx, "c"), ShouldBeNil)
			ps, err := s.ListExcept(ctx, "")
			So(err, ShouldBeNil)
			So(idsOf(ps), ShouldResemble, []string{"a", "b", "d"})
		})

		Convey("And a profile without id is rejected", func() {
			err := s.Put(ctx, &model.Profile{})
			So(errors.Is(err, model.ErrInvalidProfile), ShouldBeTrue)
		})
	})

	Convey("When creating the same id concurrently", func() {
		s := newStore()
		defer func() { _ = s.Close() }()

		const writers = 16
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				p := newProfile("dup")
				p.FirstName = fmt.Sprintf("writer-%d", i)
				errs <- s.Create(ctx, p)
			}(i)
		}
		wg.Wait()
		close(errs)

		Convey("Then exactly one create wins and the rest see ErrExists", func() {
			created, conflicts := 0, 0
			for err := range errs {
				switch {
				case err == nil:
					created++
				case errors.Is(err, repository.ErrExists):
					conflicts++
				}
			}
			So(created, ShouldEqual, 1)
			So(conflicts, ShouldEqual, writers-1)
			So(s.Count(ctx), ShouldEqual, 1)
		})
	})

	Convey("When creating over an existing profile", func() {
		s := newStore()
		defer func() { _ = s.Close() }()
		So(s.Create(ctx, newProfile("a")), ShouldBeNil)
		p := newProfile("a")
		p.Department = "Math"

		Convey("Then the stored profile is unchanged", func() {
			So(errors.Is(s.Create(ctx, p), repository.ErrExists), ShouldBeTrue)
			got, err := s.Get(ctx, "a")
			So(err, ShouldBeNil)
			So(got.Department, ShouldEqual, "CS")
		})
	})

	Convey("When writing concurrently", func() {
		s := newStore()
		defer func() { _ = s.Close() }()

		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- s.Put(ctx, newProfile(fmt.Sprintf("p%02d", i)))
			}(i)
		}
		wg.Wait()
		close(errs)

		Convey("Then every write lands", func() {
			for err := range errs {
				So(err, ShouldBeNil)
			}
			So(s.Count(ctx), ShouldEqual, 20)
		})
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store", t, func() {
		exerciseStore(func() repository.Store {
			return repository.NewMemoryStore(repository.WithCapacity(8))
		})

		Convey("When a returned profile is modified", func() {
			ctx := context.Background()
			s := repository.NewMemoryStore()
			So(s.Put(ctx, newProfile("a")), ShouldBeNil)

			p, err := s.Get(ctx, "a")
			So(err, ShouldBeNil)
			p.Department = "Changed"
			p.Classes = model.NewStringSet()

			Convey("Then the stored copy is unaffected", func() {
				again, err := s.Get(ctx, "a")
				So(err, ShouldBeNil)
				So(again.Department, ShouldEqual, "CS")
				So(again.Classes.Len(), ShouldEqual, 2)
			})
		})

		Convey("When metrics are disabled", func() {
			ctx := context.Background()
			metrics.UpdateProfilesTotal(777)
			s := repository.NewMemoryStore(repository.WithMetrics(false))
			So(s.Put(ctx, newProfile("a")), ShouldBeNil)
			So(s.Create(ctx, newProfile("b")), ShouldBeNil)

			Convey("Then the profile gauge is left alone", func() {
				So(profilesGauge(), ShouldEqual, 777)
			})
		})

		Convey("When metrics are enabled", func() {
			ctx := context.Background()
			s := repository.NewMemoryStore()
			So(s.Create(ctx, newProfile("a")), ShouldBeNil)

			Convey("Then the profile gauge follows the store", func() {
				So(profilesGauge(), ShouldEqual, 1)
			})
		})

		Convey("When the store is closed", func() {
			ctx := context.Background()
			s := repository.NewMemoryStore()
			So(s.Close(), ShouldBeNil)

			Convey("Then operations fail with ErrClosed", func() {
				_, err := s.Get(ctx, "a")
				So(errors.Is(err, repository.ErrClosed), ShouldBeTrue)
				So(errors.Is(s.Put(ctx, newProfile("a")), repository.ErrClosed), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			s := repository.NewMemoryStore()

			Convey("Then operations return the context error", func() {
				_, err := s.ListExcept(ctx, "a")
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given a sqlite store", t, func() {
		dir := t.TempDir()
		n := 0
		exerciseStore(func() repository.Store {
			n++
			s, err := repository.NewSQLiteStore(context.Background(), filepath.Join(dir, fmt.Sprintf("profiles-%d.db", n)))
			So(err, ShouldBeNil)
			return s
		})

		Convey("When reopening an existing database", func() {
			ctx := context.Background()
			path := filepath.Join(dir, "reopen.db")
			s, err := repository.NewSQLiteStore(ctx, path)
			So(err, ShouldBeNil)
			So(s.Put(ctx, newProfile("a")), ShouldBeNil)
			So(s.Close(), ShouldBeNil)

			s, err = repository.NewSQLiteStore(ctx, path)
			So(err, ShouldBeNil)
			defer func() { _ = s.Close() }()

			Convey("Then stored profiles survive", func() {
				p, err := s.Get(ctx, "a")
				So(err, ShouldBeNil)
				So(p.Interests.Values(), ShouldResemble, []string{"chess"})
			})
		})

		Convey("When the path is empty", func() {
			_, err := repository.NewSQLiteStore(context.Background(), "")

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Given store drivers", t, func() {
		ctx := context.Background()

		Convey("Then memory is the default", func() {
			s, err := repository.Open(ctx, "", "")
			So(err, ShouldBeNil)
			_, ok := s.(*repository.MemoryStore)
			So(ok, ShouldBeTrue)
		})

		Convey("And sqlite opens a file store", func() {
			s, err := repository.Open(ctx, repository.DriverSQLite, filepath.Join(t.TempDir(), "open.db"))
			So(err, ShouldBeNil)
			defer func() { _ = s.Close() }()
			_, ok := s.(*repository.SQLiteStore)
			So(ok, ShouldBeTrue)
		})

		Convey("And unknown drivers are rejected", func() {
			_, err := repository.Open(ctx, "mongo", "")
			So(errors.Is(err, repository.ErrUnknownStore), ShouldBeTrue)
		})
	})
}
