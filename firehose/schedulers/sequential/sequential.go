// Package sequential runs stream message handling inline on the caller.
// Useful where deterministic ordering matters more than throughput, and
// in tests.
package sequential

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/basho-social/basho/firehose"
	"github.com/basho-social/basho/firehose/schedulers"
)

// Scheduler is a sequential scheduler that will run work on a single worker
type Scheduler struct {
	Do func(context.Context, *firehose.Message) error

	ident string

	// metrics
	itemsAdded     prometheus.Counter
	itemsProcessed prometheus.Counter
	itemsActive    prometheus.Counter
	workersActive  prometheus.Gauge
}

func NewScheduler(ident string, do func(context.Context, *firehose.Message) error) *Scheduler {
	p := &Scheduler{
		Do: do,

		ident: ident,

		itemsAdded:     schedulers.WorkItemsAdded.WithLabelValues(ident, "sequential"),
		itemsProcessed: schedulers.WorkItemsProcessed.WithLabelValues(ident, "sequential"),
		itemsActive:    schedulers.WorkItemsActive.WithLabelValues(ident, "sequential"),
		workersActive:  schedulers.WorkersActive.WithLabelValues(ident, "sequential"),
	}

	p.workersActive.Set(1)

	return p
}

func (p *Scheduler) Shutdown() {
	p.workersActive.Set(0)
}

func (p *Scheduler) AddWork(ctx context.Context, msg *firehose.Message) error {
	p.itemsAdded.Inc()
	p.itemsActive.Inc()
	err := p.Do(ctx, msg)
	p.itemsProcessed.Inc()
	return err
}
