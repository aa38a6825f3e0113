package kernel

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/verdantlabs/agentcore/internal/trace"
)

// DefaultDispatchConcurrency bounds parallel work orders per dispatcher.
const DefaultDispatchConcurrency = 4

// DispatchResult pairs a work order with its run outcome. Failures are
// per-order; one order's failure never cancels another's run.
type DispatchResult struct {
	Order  trace.WorkOrder
	Result *RunResult
	Err    error
}

// Dispatcher runs independent work orders concurrently against one kernel.
// Work orders share nothing but the trace store, which is safe for
// concurrent writers.
type Dispatcher struct {
	kernel *Kernel
	limit  int
}

// NewDispatcher creates a dispatcher with the given concurrency limit
// (DefaultDispatchConcurrency when limit <= 0).
func NewDispatcher(k *Kernel, limit int) *Dispatcher {
	if limit <= 0 {
		limit = DefaultDispatchConcurrency
	}
	return &Dispatcher{kernel: k, limit: limit}
}

// Run executes all orders and returns results index-aligned with the input.
func (d *Dispatcher) Run(ctx context.Context, orders []trace.WorkOrder) []DispatchResult {
	results := make([]DispatchResult, len(orders))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.limit)

	for i, order := range orders {
		g.Go(func() error {
			res, err := d.kernel.Execute(ctx, order)
			results[i] = DispatchResult{Order: order, Result: res, Err: err}
			return nil
		})
	}

	// Goroutines report failures through their slot, never through the
	// group, so Wait cannot fail.
	_ = g.Wait()
	return results
}
