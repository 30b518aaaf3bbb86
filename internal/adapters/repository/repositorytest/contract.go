// Package repositorytest checks that a repository.Store honours the store
// contract. Backends call Run from their own tests.
package repositorytest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/barberbook/internal/adapters/repository"
	"github.com/smartystreets/goconvey/convey"
)

// Run exercises open() with a fresh, empty store per scenario.
func Run(t *testing.T, open func(t *testing.T) repository.Store) {
	t.Helper()
	ctx := context.Background()

	convey.Convey("Given an empty store", t, func() {
		s := open(t)
		defer s.Close()

		convey.Convey("When listing an unknown collection", func() {
			recs, err := s.List(ctx, "nothing")

			convey.Convey("Then the result is empty", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(recs), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the collection name is blank", func() {
			_, err := s.Insert(ctx, " ", map[string]any{})

			convey.Convey("Then the write is rejected", func() {
				convey.So(errors.Is(err, repository.ErrInvalidCollection), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When documents are inserted", func() {
			first, err := s.Insert(ctx, "productionResults", map[string]any{
				"barberName": "a@x.com", "price": "25.50", "quantity": 2, "extras": []string{"x", "y"},
			})
			convey.So(err, convey.ShouldBeNil)
			second, err := s.Insert(ctx, "productionResults", map[string]any{"barberName": "b@x.com", "price": 10})
			convey.So(err, convey.ShouldBeNil)
			third, err := s.Insert(ctx, "productionResults", map[string]any{"barberName": "a@x.com"})
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then ids are distinct and listing keeps insertion order", func() {
				convey.So(first, convey.ShouldNotEqual, second)
				recs, err := s.List(ctx, "productionResults")
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(recs), convey.ShouldEqual, 3)
				convey.So(recs[0].ID, convey.ShouldEqual, first)
				convey.So(recs[1].ID, convey.ShouldEqual, second)
				convey.So(recs[2].ID, convey.ShouldEqual, third)
			})

			convey.Convey("Then numbers come back exact and lists as []any", func() {
				rec, err := s.Get(ctx, "productionResults", first)
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.Data["price"], convey.ShouldEqual, "25.50")
				convey.So(rec.Data["quantity"], convey.ShouldEqual, json.Number("2"))
				convey.So(rec.Data["extras"], convey.ShouldResemble, []any{"x", "y"})
			})

			convey.Convey("Then equality filters select matching documents", func() {
				recs, err := s.List(ctx, "productionResults", repository.Eq("barberName", "a@x.com"))
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(recs), convey.ShouldEqual, 2)

				recs, err = s.List(ctx, "productionResults", repository.Eq("price", "10"))
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(recs), convey.ShouldEqual, 0)
			})

			convey.Convey("Then returned maps are private copies", func() {
				rec, _ := s.Get(ctx, "productionResults", first)
				rec.Data["barberName"] = "changed"
				again, _ := s.Get(ctx, "productionResults", first)
				convey.So(again.Data["barberName"], convey.ShouldEqual, "a@x.com")
			})

			convey.Convey("And a document is patched", func() {
				err := s.Update(ctx, "productionResults", first, map[string]any{"price": "30", "quantity": nil})
				convey.So(err, convey.ShouldBeNil)

				convey.Convey("Then fields merge and nil removes", func() {
					rec, _ := s.Get(ctx, "productionResults", first)
					convey.So(rec.Data["price"], convey.ShouldEqual, "30")
					convey.So(rec.Data["barberName"], convey.ShouldEqual, "a@x.com")
					_, has := rec.Data["quantity"]
					convey.So(has, convey.ShouldBeFalse)
				})
			})

			convey.Convey("And a document is deleted", func() {
				convey.So(s.Delete(ctx, "productionResults", second), convey.ShouldBeNil)

				convey.Convey("Then it is gone", func() {
					_, err := s.Get(ctx, "productionResults", second)
					convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
					err = s.Delete(ctx, "productionResults", second)
					convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
				})
			})
		})

		convey.Convey("When a document is put twice under the same id", func() {
			convey.So(s.Put(ctx, "barbers", "b1", map[string]any{"name": "New Barber"}), convey.ShouldBeNil)
			convey.So(s.Put(ctx, "barbers", "b1", map[string]any{"name": "Ana"}), convey.ShouldBeNil)

			convey.Convey("Then the last write wins", func() {
				recs, err := s.List(ctx, "barbers")
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(recs), convey.ShouldEqual, 1)
				convey.So(recs[0].Data["name"], convey.ShouldEqual, "Ana")
			})
		})

		convey.Convey("When updating a missing document", func() {
			err := s.Update(ctx, "barbers", "ghost", map[string]any{"name": "x"})

			convey.Convey("Then ErrNotFound is returned", func() {
				convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
			})
		})
	})
}
