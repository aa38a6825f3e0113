package trace

import "context"

// DefaultRecallLimit bounds FindSimilarTraces when the caller passes no limit.
const DefaultRecallLimit = 10

// Store persists traces, partitioned by owning agent.
//
// SaveTrace returns an error the caller is expected to treat as non-fatal:
// memory writes are off the critical path of producing a result, so call
// sites log the failure and continue.
type Store interface {
	// SaveTrace persists an immutable trace record.
	SaveTrace(ctx context.Context, t *Trace) error

	// FindSimilarTraces returns the most recent traces for the work order's
	// agent, newest first, at most limit entries (DefaultRecallLimit when
	// limit <= 0). Similarity ranking beyond recency is the caller's job.
	FindSimilarTraces(ctx context.Context, order WorkOrder, limit int) ([]*Trace, error)

	// RecordFeedback attaches a reinforcement score to a saved trace.
	RecordFeedback(ctx context.Context, traceID string, score float64) error

	// Close releases any held resources.
	Close() error
}
