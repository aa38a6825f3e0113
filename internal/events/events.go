// Package events announces completed traces on the platform message bus.
// Publishing is best-effort under the same policy as trace persistence:
// a bus outage never affects the caller's result.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/verdantlabs/agentcore/internal/trace"
)

// SubjectPrefix is the subject root for runtime events. Completed traces
// go to <prefix>.trace.completed.<agentID>.
const SubjectPrefix = "agentcore"

// TraceEvent is the wire payload for a completed trace.
type TraceEvent struct {
	TraceID     string `json:"traceId"`
	WorkOrderID string `json:"workOrderId"`
	AgentID     string `json:"agentId"`
	Method      string `json:"method"`
	ArtifactID  string `json:"artifactId"`
	DurationMs  int64  `json:"durationMs"`
}

// Publisher announces runtime events over NATS.
type Publisher struct {
	conn    *nats.Conn
	logger  *slog.Logger
	publish func(subject string, data []byte) error
}

// Connect dials the bus and returns a publisher.
func Connect(url string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url, nats.Name("agentcore"))
	if err != nil {
		return nil, fmt.Errorf("events: connect %s: %w", url, err)
	}
	return &Publisher{
		conn:    conn,
		logger:  logger.With("component", "events"),
		publish: conn.Publish,
	}, nil
}

// TraceCompleted implements kernel.Notifier.
func (p *Publisher) TraceCompleted(ctx context.Context, t *trace.Trace) {
	payload, err := json.Marshal(TraceEvent{
		TraceID:     t.ID,
		WorkOrderID: t.WorkOrderID,
		AgentID:     t.AgentID,
		Method:      string(t.Method),
		ArtifactID:  t.OutputArtifactID,
		DurationMs:  t.DurationMs,
	})
	if err != nil {
		p.logger.Warn("event encode failed", "trace", t.ID, "error", err.Error())
		return
	}

	subject := fmt.Sprintf("%s.trace.completed.%s", SubjectPrefix, t.AgentID)
	if err := p.publish(subject, payload); err != nil {
		p.logger.Warn("event publish failed (non-fatal)",
			"subject", subject,
			"trace", t.ID,
			"error", err.Error(),
		)
	}
}

// Close drains and closes the connection.
func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
