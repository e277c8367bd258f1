// Package parallel runs stream message handling on a fixed-size worker
// pool with a bounded queue. When every worker is busy and the queue is
// full, AddWork blocks the producing read loop, which is the overload
// policy for this consumer: lean on the relay rather than buffer without
// bound.
package parallel

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/basho-social/basho/firehose"
	"github.com/basho-social/basho/firehose/schedulers"
)

// ErrShutdown is returned by AddWork once Shutdown has begun.
var ErrShutdown = errors.New("scheduler has been shut down")

// Scheduler is a parallel scheduler that will run work on a fixed number of workers
type Scheduler struct {
	maxConcurrency int
	maxQueue       int

	do func(context.Context, *firehose.Message) error

	feeder chan *firehose.Message
	wg     sync.WaitGroup

	// closeMu serializes feeder sends against close(feeder): AddWork
	// holds it shared while sending, Shutdown holds it exclusively
	// while closing
	closeMu sync.RWMutex
	closed  bool

	ident string

	// metrics
	itemsAdded     prometheus.Counter
	itemsProcessed prometheus.Counter
	itemsActive    prometheus.Counter
	workersActive  prometheus.Gauge

	log *slog.Logger
}

func NewScheduler(maxC, maxQ int, ident string, do func(context.Context, *firehose.Message) error) *Scheduler {
	p := &Scheduler{
		maxConcurrency: maxC,
		maxQueue:       maxQ,

		do: do,

		feeder: make(chan *firehose.Message, maxQ),

		ident: ident,

		itemsAdded:     schedulers.WorkItemsAdded.WithLabelValues(ident, "parallel"),
		itemsProcessed: schedulers.WorkItemsProcessed.WithLabelValues(ident, "parallel"),
		itemsActive:    schedulers.WorkItemsActive.WithLabelValues(ident, "parallel"),
		workersActive:  schedulers.WorkersActive.WithLabelValues(ident, "parallel"),

		log: slog.Default().With("system", "parallel-scheduler"),
	}

	p.wg.Add(maxC)
	for i := 0; i < maxC; i++ {
		go p.worker()
	}

	p.workersActive.Set(float64(maxC))

	return p
}

// Shutdown stops accepting work and waits for in-flight messages to
// drain. Concurrent and later AddWork calls fail with ErrShutdown
// rather than racing the feeder close.
func (p *Scheduler) Shutdown() {
	p.log.Info("shutting down parallel scheduler", "ident", p.ident)

	p.closeMu.Lock()
	if !p.closed {
		p.closed = true
		close(p.feeder)
	}
	p.closeMu.Unlock()

	p.wg.Wait()
	p.workersActive.Set(0)

	p.log.Info("parallel scheduler shutdown complete")
}

func (p *Scheduler) AddWork(ctx context.Context, msg *firehose.Message) error {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return ErrShutdown
	}

	p.itemsAdded.Inc()
	select {
	case p.feeder <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Scheduler) worker() {
	defer p.wg.Done()
	for msg := range p.feeder {
		p.itemsActive.Inc()
		if err := p.do(context.TODO(), msg); err != nil {
			p.log.Error("event handler failed", "err", err)
		}
		p.itemsProcessed.Inc()
	}
}
