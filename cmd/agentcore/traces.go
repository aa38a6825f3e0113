package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/verdantlabs/agentcore/internal/trace"
)

// Run implements the traces command.
func (c *TracesCmd) Run(cli *CLI) error {
	ctx := context.Background()

	rt, err := buildRuntime(ctx, cli.Config)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	order := trace.WorkOrder{RequestedBy: c.Agent}
	traces, err := rt.store.FindSimilarTraces(ctx, order, c.Limit)
	if err != nil {
		return err
	}
	if len(traces) == 0 {
		fmt.Printf("no traces for agent %q\n", c.Agent)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TRACE\tMETHOD\tSTEPS\tDURATION\tCOMPLETED\tGOAL")
	for _, t := range traces {
		fmt.Fprintf(w, "%s\t%s\t%d\t%dms\t%s\t%s\n",
			t.ID, t.Method, len(t.Steps), t.DurationMs,
			t.CompletedAt.Format("2006-01-02 15:04:05"), truncate(t.Goal, 60))
	}
	return w.Flush()
}

// Run implements the feedback command.
func (c *FeedbackCmd) Run(cli *CLI) error {
	if c.Score < 0 || c.Score > 1 {
		return fmt.Errorf("score must be between 0 and 1, got %g", c.Score)
	}

	ctx := context.Background()
	rt, err := buildRuntime(ctx, cli.Config)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	if err := rt.store.RecordFeedback(ctx, c.Trace, c.Score); err != nil {
		return err
	}
	fmt.Printf("recorded %.2f on trace %s\n", c.Score, c.Trace)
	return nil
}

// truncate shortens s to at most n runes. Rune-based so multi-byte goal
// text is never split mid-character.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
