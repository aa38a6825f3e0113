package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/verdantlabs/agentcore/internal/trace"
)

// workOrderMsg is the wire format for submitted work orders.
type workOrderMsg struct {
	Agent string `json:"agent"`
	Goal  string `json:"goal"`
}

// worker runs work orders with bounded concurrency. Orders execute on a
// context detached from the subscription's, so shutdown stops intake and
// drains in-flight work instead of aborting it.
type worker struct {
	g    *errgroup.Group
	exec func(ctx context.Context, wo workOrderMsg)
}

func newWorker(limit int, exec func(ctx context.Context, wo workOrderMsg)) *worker {
	g := new(errgroup.Group)
	g.SetLimit(limit)
	return &worker{g: g, exec: exec}
}

// submit schedules one order.
func (w *worker) submit(ctx context.Context, wo workOrderMsg) {
	runCtx := context.WithoutCancel(ctx)
	w.g.Go(func() error {
		w.exec(runCtx, wo)
		return nil
	})
}

// wait blocks until every submitted order has finished.
func (w *worker) wait() error { return w.g.Wait() }

// Run implements the serve command: a long-running worker that consumes
// work orders from the bus and executes them with bounded concurrency.
// Stops on SIGINT/SIGTERM after draining in-flight orders.
func (c *ServeCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cli.Config)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	if rt.cfg.Roster.Watch {
		go func() {
			if err := rt.fleet.Watch(ctx, rt.logger); err != nil {
				rt.logger.Warn("roster watch stopped", "error", err.Error())
			}
		}()
	}

	conn, err := nats.Connect(rt.cfg.Events.URL, nats.Name("agentcore-worker"))
	if err != nil {
		return fmt.Errorf("connect event bus: %w", err)
	}
	defer conn.Drain()

	w := newWorker(rt.cfg.Kernel.Concurrency, rt.execute)

	sub, err := conn.Subscribe(c.Subject, func(msg *nats.Msg) {
		var wo workOrderMsg
		if err := json.Unmarshal(msg.Data, &wo); err != nil {
			rt.logger.Warn("malformed work order dropped", "error", err.Error())
			return
		}
		w.submit(ctx, wo)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", c.Subject, err)
	}

	rt.logger.Info("worker started",
		"subject", c.Subject,
		"concurrency", rt.cfg.Kernel.Concurrency,
	)

	<-ctx.Done()
	rt.logger.Info("shutting down, draining in-flight orders")
	if err := sub.Unsubscribe(); err != nil {
		rt.logger.Warn("unsubscribe failed", "error", err.Error())
	}
	return w.wait()
}

// execute runs one order end to end. Failures are logged, never fatal to
// the worker.
func (rt *runtime) execute(ctx context.Context, wo workOrderMsg) {
	agent, ok := rt.fleet.Get(wo.Agent)
	if !ok {
		rt.logger.Warn("work order for unknown agent dropped", "agent", wo.Agent)
		return
	}

	k, err := rt.kernelFor(agent)
	if err != nil {
		rt.logger.Error("kernel assembly failed", "agent", agent.ID, "error", err.Error())
		return
	}

	order := trace.NewWorkOrder(agent.ID, wo.Goal)
	res, err := k.Execute(ctx, order)
	if err != nil {
		rt.logger.Error("work order failed",
			"agent", agent.ID,
			"order", order.ID,
			"error", err.Error(),
		)
		return
	}

	rt.logger.Info("work order complete",
		"agent", agent.ID,
		"order", order.ID,
		"trace", res.Trace.ID,
		"method", res.Trace.Method,
		"duration_ms", res.Trace.DurationMs,
	)
}
