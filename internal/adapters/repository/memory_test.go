package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/okian/barberbook/internal/adapters/repository"
	"github.com/okian/barberbook/internal/adapters/repository/repositorytest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStoreContract(t *testing.T) {
	repositorytest.Run(t, func(*testing.T) repository.Store {
		return repository.NewMemoryStore()
	})
}

func TestMemoryStoreOptions(t *testing.T) {
	Convey("Given a store with a deterministic id source", t, func() {
		n := 0
		s := repository.NewMemoryStore(repository.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}))

		Convey("Then inserts use it", func() {
			id, err := s.Insert(context.Background(), "products", map[string]any{"name": "Pomada"})
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "id-1")
		})
	})

	Convey("Given a cancelled context", t, func() {
		s := repository.NewMemoryStore()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Then operations fail fast", func() {
			_, err := s.List(ctx, "products")
			So(err, ShouldEqual, context.Canceled)
		})
	})
}

func TestMerge(t *testing.T) {
	Convey("Given a nil base", t, func() {
		out := repository.Merge(nil, map[string]any{"a": 1, "b": nil})

		Convey("Then the patch is applied to an empty document", func() {
			So(out, ShouldResemble, map[string]any{"a": 1})
		})
	})
}
