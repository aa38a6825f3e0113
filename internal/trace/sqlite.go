package trace

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a local SQLite database. Suited to
// single-node deployments where the managed document store isn't available.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed initializes) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("trace: open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS traces (
		id TEXT PRIMARY KEY,
		work_order_id TEXT NOT NULL,
		agent_id TEXT NOT NULL,
		goal TEXT NOT NULL,
		method TEXT NOT NULL,
		steps TEXT NOT NULL,
		output_artifact_id TEXT,
		duration_ms INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		completed_at DATETIME NOT NULL,
		feedback_score REAL
	);
	CREATE INDEX IF NOT EXISTS idx_traces_agent_completed
		ON traces(agent_id, completed_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("trace: create schema: %w", err)
	}
	return nil
}

// SaveTrace implements Store.
func (s *SQLiteStore) SaveTrace(ctx context.Context, t *Trace) error {
	steps, err := json.Marshal(t.Steps)
	if err != nil {
		return fmt.Errorf("trace: encode steps: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO traces (id, work_order_id, agent_id, goal, method, steps,
			output_artifact_id, duration_ms, started_at, completed_at, feedback_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.WorkOrderID, t.AgentID, t.Goal, string(t.Method), string(steps),
		t.OutputArtifactID, t.DurationMs, t.StartedAt.UTC(), t.CompletedAt.UTC(), t.FeedbackScore,
	)
	if err != nil {
		return fmt.Errorf("trace: save: %w", err)
	}
	return nil
}

// FindSimilarTraces implements Store.
func (s *SQLiteStore) FindSimilarTraces(ctx context.Context, order WorkOrder, limit int) ([]*Trace, error) {
	if limit <= 0 {
		limit = DefaultRecallLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, work_order_id, agent_id, goal, method, steps,
			output_artifact_id, duration_ms, started_at, completed_at, feedback_score
		FROM traces
		WHERE agent_id = ?
		ORDER BY completed_at DESC
		LIMIT ?`,
		order.RequestedBy, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("trace: query: %w", err)
	}
	defer rows.Close()

	var out []*Trace
	for rows.Next() {
		var (
			t        Trace
			method   string
			steps    string
			started  time.Time
			complete time.Time
		)
		if err := rows.Scan(&t.ID, &t.WorkOrderID, &t.AgentID, &t.Goal, &method, &steps,
			&t.OutputArtifactID, &t.DurationMs, &started, &complete, &t.FeedbackScore); err != nil {
			return nil, fmt.Errorf("trace: scan: %w", err)
		}
		t.Method = Method(method)
		t.StartedAt = started
		t.CompletedAt = complete
		if err := json.Unmarshal([]byte(steps), &t.Steps); err != nil {
			return nil, fmt.Errorf("trace: decode steps: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// RecordFeedback implements Store.
func (s *SQLiteStore) RecordFeedback(ctx context.Context, traceID string, score float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE traces SET feedback_score = ? WHERE id = ?`, score, traceID)
	if err != nil {
		return fmt.Errorf("trace: record feedback: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("trace: not found: %s", traceID)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error { return s.db.Close() }
