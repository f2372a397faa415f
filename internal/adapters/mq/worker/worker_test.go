package worker_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/okian/qualify/internal/adapters/mq/queue"
	"github.com/okian/qualify/internal/adapters/mq/worker"
	"github.com/okian/qualify/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type recorder struct {
	mu   sync.Mutex
	seen []string
	fail map[string]error
}

func (r *recorder) Handle(_ context.Context, job queue.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, job.ID)
	return r.fail[job.ID]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool draining a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		rec := &recorder{fail: map[string]error{"bad": errors.New("boom")}}
		pool := worker.NewPool(2, q, rec)
		convey.So(pool.Size(), convey.ShouldEqual, 2)
		pool.Start(ctx)

		convey.Convey("When jobs are enqueued, including a failing one", func() {
			for _, id := range []string{"a", "bad", "b"} {
				convey.So(q.Enqueue(ctx, queue.Job{ID: id, Trigger: "test"}), convey.ShouldBeTrue)
			}

			convey.Convey("Then every job is handled and failures do not stop the pool", func() {
				convey.So(waitFor(func() bool { return rec.count() == 3 }), convey.ShouldBeTrue)
				convey.So(q.Enqueue(ctx, queue.Job{ID: "c"}), convey.ShouldBeTrue)
				convey.So(waitFor(func() bool { return rec.count() == 4 }), convey.ShouldBeTrue)
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the queue is closed", func() {
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then the pool shuts down cleanly", func() {
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorker_HandlerFunc(t *testing.T) {
	convey.Convey("Given a single worker with a function handler", t, func() {
		q := queue.NewInMemoryQueue()
		got := make(chan string, 1)
		w := worker.NewWorker(q, worker.HandlerFunc(func(_ context.Context, j queue.Job) error {
			got <- j.ID
			return nil
		}), worker.WithName("solo"), worker.WithLogger(logger.Get()))

		go w.Run(context.Background())
		q.Enqueue(context.Background(), queue.Job{ID: "only"})

		convey.So(<-got, convey.ShouldEqual, "only")
		convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
		convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
	})
}

func TestWorker_ShutdownDrainsQueuedJobs(t *testing.T) {
	convey.Convey("Given a closed queue still holding jobs", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(32))
		for i := 0; i < 20; i++ {
			convey.So(q.Enqueue(context.Background(), queue.Job{ID: "job-" + strconv.Itoa(i)}), convey.ShouldBeTrue)
		}
		convey.So(q.Close(), convey.ShouldBeNil)
		rec := &recorder{}
		w := worker.NewWorker(q, rec)

		convey.Convey("When shutdown is requested before the worker runs", func() {
			errCh := make(chan error, 1)
			go func() { errCh <- w.Shutdown(context.Background()) }()
			time.Sleep(10 * time.Millisecond)
			go w.Run(context.Background())

			convey.Convey("Then every queued job is still handled", func() {
				convey.So(<-errCh, convey.ShouldBeNil)
				convey.So(rec.count(), convey.ShouldEqual, 20)
			})
		})
	})
}
