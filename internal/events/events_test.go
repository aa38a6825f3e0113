package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/verdantlabs/agentcore/internal/trace"
)

func testTrace() *trace.Trace {
	return &trace.Trace{
		ID:               "tr-1",
		WorkOrderID:      "wo-1",
		AgentID:          "budtender",
		Goal:             "recommend a strain for sleep",
		Method:           trace.MethodPlanning,
		OutputArtifactID: "art-1",
		DurationMs:       420,
		StartedAt:        time.Now().UTC(),
		CompletedAt:      time.Now().UTC(),
	}
}

func TestTraceCompletedSubjectAndPayload(t *testing.T) {
	var gotSubject string
	var gotData []byte
	p := &Publisher{
		logger: slog.New(slog.DiscardHandler),
		publish: func(subject string, data []byte) error {
			gotSubject = subject
			gotData = data
			return nil
		},
	}

	p.TraceCompleted(context.Background(), testTrace())

	want := SubjectPrefix + ".trace.completed.budtender"
	if gotSubject != want {
		t.Fatalf("subject = %q, want %q", gotSubject, want)
	}

	var ev TraceEvent
	if err := json.Unmarshal(gotData, &ev); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if ev.TraceID != "tr-1" || ev.AgentID != "budtender" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Method != string(trace.MethodPlanning) {
		t.Errorf("method = %q, want %q", ev.Method, trace.MethodPlanning)
	}
	if ev.DurationMs != 420 {
		t.Errorf("durationMs = %d, want 420", ev.DurationMs)
	}
}

func TestTraceCompletedPublishFailureIsSwallowed(t *testing.T) {
	var buf strings.Builder
	p := &Publisher{
		logger: slog.New(slog.NewTextHandler(&buf, nil)),
		publish: func(string, []byte) error {
			return errors.New("bus down")
		},
	}

	// Must not panic or surface the error.
	p.TraceCompleted(context.Background(), testTrace())

	if !strings.Contains(buf.String(), "event publish failed") {
		t.Errorf("expected a warning log, got: %s", buf.String())
	}
}
