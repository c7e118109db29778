package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lnkd/lnkd/internal/adapters/repository"
	"github.com/lnkd/lnkd/internal/domain/calculation"
	"github.com/lnkd/lnkd/internal/domain/score"
	. "github.com/smartystreets/goconvey/convey"
)

func newCalc(id string) calculation.Calculation {
	return calculation.New(id, score.Inputs{QueensTime: "2"}, time.Now())
}

func TestMemoryStore_BasicOperations(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()

		Convey("Then it holds nothing", func() {
			So(store.Count(ctx), ShouldEqual, 0)
			_, err := store.Get(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When putting a calculation", func() {
			So(store.Put(ctx, newCalc("a")), ShouldBeNil)

			Convey("Then it can be read back", func() {
				got, err := store.Get(ctx, "a")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "a")
				So(got.Phase, ShouldEqual, calculation.PhaseIdle)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("And putting it again replaces it in place", func() {
				c := newCalc("a")
				c.Inputs.TangoTime = "9"
				So(store.Put(ctx, c), ShouldBeNil)
				got, _ := store.Get(ctx, "a")
				So(got.Inputs.TangoTime, ShouldEqual, "9")
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When putting a calculation without id", func() {
			So(errors.Is(store.Put(ctx, newCalc("")), repository.ErrInvalidID), ShouldBeTrue)
		})
	})
}

func TestMemoryStore_Update(t *testing.T) {
	Convey("Given a stored idle calculation", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		So(store.Put(ctx, newCalc("a")), ShouldBeNil)

		Convey("When the update succeeds", func() {
			updated, err := store.Update(ctx, "a", func(c *calculation.Calculation) error {
				return c.Start(time.Now())
			})

			Convey("Then the change is persisted", func() {
				So(err, ShouldBeNil)
				So(updated.Phase, ShouldEqual, calculation.PhaseComputing)
				got, _ := store.Get(ctx, "a")
				So(got.Phase, ShouldEqual, calculation.PhaseComputing)
			})
		})

		Convey("When the update fails", func() {
			_, err := store.Update(ctx, "a", func(c *calculation.Calculation) error {
				c.Inputs.ZipTime = "changed"
				return c.Complete(score.Result{}, time.Now())
			})

			Convey("Then the stored value is untouched", func() {
				So(errors.Is(err, calculation.ErrInvalidTransition), ShouldBeTrue)
				got, _ := store.Get(ctx, "a")
				So(got.Phase, ShouldEqual, calculation.PhaseIdle)
				So(got.Inputs.ZipTime, ShouldEqual, "")
			})
		})

		Convey("When updating an unknown id", func() {
			_, err := store.Update(ctx, "nope", func(*calculation.Calculation) error { return nil })
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestMemoryStore_Delete(t *testing.T) {
	Convey("Given two stored calculations", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithCapacity(2))
		So(store.Put(ctx, newCalc("a")), ShouldBeNil)
		So(store.Put(ctx, newCalc("b")), ShouldBeNil)

		Convey("When one is deleted", func() {
			So(store.Delete(ctx, "a"), ShouldBeNil)

			Convey("Then it is gone and its slot is free", func() {
				_, err := store.Get(ctx, "a")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(store.Put(ctx, newCalc("c")), ShouldBeNil)
				_, err = store.Get(ctx, "b")
				So(err, ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 2)
			})
		})

		Convey("When deleting an unknown id", func() {
			So(store.Delete(ctx, "zzz"), ShouldBeNil)
			So(store.Count(ctx), ShouldEqual, 2)
		})
	})
}

func TestMemoryStore_Eviction(t *testing.T) {
	Convey("Given a store with capacity 2", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithCapacity(2))

		Convey("When a third calculation arrives", func() {
			for _, id := range []string{"a", "b", "c"} {
				So(store.Put(ctx, newCalc(id)), ShouldBeNil)
			}

			Convey("Then the oldest one is evicted", func() {
				So(store.Count(ctx), ShouldEqual, 2)
				_, err := store.Get(ctx, "a")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				_, err = store.Get(ctx, "c")
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestMemoryStore_Concurrent(t *testing.T) {
	Convey("Given concurrent writers", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithCapacity(100))

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("calc-%d", i)
				_ = store.Put(ctx, newCalc(id))
				_, _ = store.Update(ctx, id, func(c *calculation.Calculation) error { return c.Start(time.Now()) })
			}(i)
		}
		wg.Wait()

		Convey("Then every calculation is stored and started", func() {
			So(store.Count(ctx), ShouldEqual, 50)
			got, err := store.Get(ctx, "calc-7")
			So(err, ShouldBeNil)
			So(got.Phase, ShouldEqual, calculation.PhaseComputing)
		})
	})
}
