package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/barberbook/internal/adapters/mq/queue"
	worker "github.com/okian/barberbook/internal/adapters/mq/worker"
	logging "github.com/okian/barberbook/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan queue.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	close(mq.jobs)
	return nil
}

func (mq *mockQueue) add(barber string) {
	mq.jobs <- queue.Job{Barber: barber, RequestedAt: time.Now()}
}

type mockRefresher struct {
	mu     sync.Mutex
	calls  map[string]int
	errors map[string]error
}

func newMockRefresher() *mockRefresher {
	return &mockRefresher{calls: map[string]int{}, errors: map[string]error{}}
}

func (m *mockRefresher) PersistAchievements(_ context.Context, barber string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[barber]++
	if err := m.errors[barber]; err != nil {
		return nil, err
	}
	return []string{"Iniciante"}, nil
}

func (m *mockRefresher) count(barber string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[barber]
}

func (m *mockRefresher) fail(barber string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[barber] = err
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker on a mock queue", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		r := newMockRefresher()
		w := worker.NewInMemoryWorker(q, r, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a job arrives", func() {
			q.add("a@x.com")

			convey.Convey("Then the barber's achievements are refreshed", func() {
				convey.So(eventually(func() bool { return r.count("a@x.com") == 1 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a refresh fails", func() {
			r.fail("bad@x.com", errors.New("store down"))
			q.add("bad@x.com")
			q.add("good@x.com")

			convey.Convey("Then the worker keeps going", func() {
				convey.So(eventually(func() bool { return r.count("good@x.com") == 1 }), convey.ShouldBeTrue)
				convey.So(r.count("bad@x.com"), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then Run returns", func() {
				convey.So(err, convey.ShouldBeNil)
				_, open := <-w.Done()
				convey.So(open, convey.ShouldBeFalse)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		r := newMockRefresher()
		pool := worker.NewPool(3, q, r)

		convey.So(pool.Size(), convey.ShouldEqual, 3)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When jobs are enqueued and the pool shuts down", func() {
			for i := 0; i < 20; i++ {
				convey.So(q.Enqueue(ctx, queue.Job{Barber: "a@x.com"}), convey.ShouldBeTrue)
			}
			err := pool.Shutdown(context.Background())

			convey.Convey("Then every pending job is processed first", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(r.count("a@x.com"), convey.ShouldEqual, 20)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, newMockQueue(), newMockRefresher())

		convey.Convey("Then the pool sizes itself from the CPU count", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
