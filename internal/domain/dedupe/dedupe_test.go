package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/barberbook/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		So(d.Size(), ShouldEqual, 0)

		Convey("When a key is claimed for the first time", func() {
			id, seen := d.Claim(ctx, "k1")

			Convey("Then it is reserved", func() {
				So(seen, ShouldBeFalse)
				So(id, ShouldEqual, "")
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a bound key is claimed again", func() {
			d.Claim(ctx, "k1")
			d.Bind(ctx, "k1", "event-1")
			id, seen := d.Claim(ctx, "k1")

			Convey("Then the stored event id comes back", func() {
				So(seen, ShouldBeTrue)
				So(id, ShouldEqual, "event-1")
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a claim is released", func() {
			d.Claim(ctx, "k1")
			d.Release(ctx, "k1")
			_, seen := d.Claim(ctx, "k1")

			Convey("Then the key can be claimed again", func() {
				So(seen, ShouldBeFalse)
			})
		})

		Convey("When binding or releasing an unknown key", func() {
			d.Bind(ctx, "missing", "x")
			d.Release(ctx, "missing")

			Convey("Then nothing changes", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))

		Convey("When a third key arrives", func() {
			d.Claim(ctx, "a")
			d.Claim(ctx, "b")
			d.Claim(ctx, "c")

			Convey("Then the oldest key is forgotten", func() {
				So(d.Size(), ShouldEqual, 2)
				_, seenB := d.Claim(ctx, "b")
				So(seenB, ShouldBeTrue)
				_, seenA := d.Claim(ctx, "a")
				So(seenA, ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.Claim(ctx, fmt.Sprintf("k%d", i))
		}

		Convey("Then nothing is evicted", func() {
			So(d.Size(), ShouldEqual, 1000)
		})
	})
}

func TestConcurrentClaims(t *testing.T) {
	Convey("Given many goroutines claiming the same key", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			winner int
		)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, seen := d.Claim(context.Background(), "same"); !seen {
					mu.Lock()
					winner++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one claim wins", func() {
			So(winner, ShouldEqual, 1)
		})
	})
}
