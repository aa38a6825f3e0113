package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/verdantlabs/agentcore/internal/trace"
)

// Run implements the run command: one work order, executed synchronously.
func (c *RunCmd) Run(cli *CLI) error {
	ctx := context.Background()

	rt, err := buildRuntime(ctx, cli.Config)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	agent, ok := rt.fleet.Get(c.Agent)
	if !ok {
		return fmt.Errorf("unknown agent %q (see 'agentcore roster')", c.Agent)
	}

	k, err := rt.kernelFor(agent)
	if err != nil {
		return err
	}

	order := trace.NewWorkOrder(agent.ID, c.Goal)
	res, err := k.Execute(ctx, order)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Trace)
	}

	fmt.Println(res.Artifact.Content)
	fmt.Fprintf(os.Stderr, "\ntrace %s method=%s steps=%d duration=%dms\n",
		res.Trace.ID, res.Trace.Method, len(res.Trace.Steps), res.Trace.DurationMs)
	return nil
}
