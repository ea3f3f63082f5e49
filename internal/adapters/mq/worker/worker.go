// Package worker drains finished-game outcomes into a recorder.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/legend/internal/domain/model"
	"github.com/okian/legend/pkg/logger"
	"github.com/okian/legend/pkg/metrics"
)

const defaultWorkers = 4

// Recorder persists a finished-game outcome.
type Recorder interface {
	Record(ctx context.Context, o model.Outcome) error
}

// Source yields outcomes until closed.
type Source interface {
	Dequeue() <-chan model.Outcome
	Len() int
	Close() error
}

// Pool runs a fixed set of workers reading from one Source.
type Pool struct {
	source   Source
	recorder Recorder
	size     int
	logger   logger.Logger

	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// NewPool creates a worker pool. It does not start any goroutine.
func NewPool(source Source, recorder Recorder, opts ...Option) *Pool {
	p := &Pool{
		source:   source,
		recorder: recorder,
		size:     defaultWorkers,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Start launches the workers. They exit when ctx is cancelled or the
// source is closed and drained. Start is a no-op when already running.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	p.wg.Add(p.size)
	for i := 0; i < p.size; i++ {
		go p.run(ctx, p.logger.Named("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(p.size)
}

func (p *Pool) run(ctx context.Context, log logger.Logger) {
	defer p.wg.Done()
	items := p.source.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case o, ok := <-items:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			metrics.UpdateQueueSize(p.source.Len())
			if err := p.process(ctx, o); err != nil {
				log.Error(ctx, "error recording outcome", logger.String("session", o.SessionID), logger.Error(err))
			}
		}
	}
}

func (p *Pool) process(ctx context.Context, o model.Outcome) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := p.recorder.Record(ctx, o); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "record_error")
		return fmt.Errorf("record outcome %s: %w", o.SessionID, err)
	}
	return nil
}

// Shutdown closes the source, lets the workers drain what is queued and
// waits for them, or for ctx to end.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.source.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		metrics.UpdateWorkerCount(0)
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("pending", p.source.Len()))
		return fmt.Errorf("%w: %w", ErrStopped, ctx.Err())
	}
}
