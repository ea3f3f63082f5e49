package worker_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/legend/internal/adapters/mq/queue"
	"github.com/okian/legend/internal/adapters/mq/worker"
	"github.com/okian/legend/internal/domain/model"
)

type mockRecorder struct {
	mu       sync.Mutex
	recorded []string
	failFor  string
	block    chan struct{}
}

func (m *mockRecorder) Record(ctx context.Context, o model.Outcome) error {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if o.SessionID == m.failFor {
		return errors.New("tally unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, o.SessionID)
	return nil
}

func (m *mockRecorder) ids() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.recorded...)
	sort.Strings(out)
	return out
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over an in-memory queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		rec := &mockRecorder{failFor: "bad"}
		pool := worker.NewPool(q, rec, worker.WithWorkers(3))

		convey.So(pool.Size(), convey.ShouldEqual, 3)

		convey.Convey("When outcomes are queued and the pool shuts down", func() {
			for _, id := range []string{"a", "b", "bad", "c"} {
				convey.So(q.Enqueue(ctx, model.Outcome{SessionID: id}), convey.ShouldBeNil)
			}
			pool.Start(ctx)
			pool.Start(ctx)

			shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			err := pool.Shutdown(shutdownCtx)

			convey.Convey("Then every outcome was handled and failures skipped", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.ids(), convey.ShouldResemble, []string{"a", "b", "c"})
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given workers stuck on a slow recorder", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		rec := &mockRecorder{block: make(chan struct{})}
		defer close(rec.block)

		runCtx, stop := context.WithCancel(context.Background())
		defer stop()
		pool := worker.NewPool(q, rec, worker.WithWorkers(1))
		pool.Start(runCtx)
		convey.So(q.Enqueue(runCtx, model.Outcome{SessionID: "slow"}), convey.ShouldBeNil)

		convey.Convey("When shutdown times out", func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			err := pool.Shutdown(shutdownCtx)

			convey.Convey("Then ErrStopped is returned", func() {
				convey.So(errors.Is(err, worker.ErrStopped), convey.ShouldBeTrue)
			})
		})
	})
}
