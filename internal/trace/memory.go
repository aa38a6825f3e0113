package trace

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store for tests and ephemeral runs. All data
// is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*Trace
	agents map[string][]*Trace
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]*Trace),
		agents: make(map[string][]*Trace),
	}
}

// SaveTrace implements Store.
func (s *MemoryStore) SaveTrace(ctx context.Context, t *Trace) error {
	if t.ID == "" {
		return fmt.Errorf("trace: missing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *t
	cp.Steps = append([]TraceStep(nil), t.Steps...)
	s.byID[cp.ID] = &cp
	s.agents[cp.AgentID] = append(s.agents[cp.AgentID], &cp)
	return nil
}

// FindSimilarTraces implements Store.
func (s *MemoryStore) FindSimilarTraces(ctx context.Context, order WorkOrder, limit int) ([]*Trace, error) {
	if limit <= 0 {
		limit = DefaultRecallLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := s.agents[order.RequestedBy]
	out := make([]*Trace, len(owned))
	copy(out, owned)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RecordFeedback implements Store.
func (s *MemoryStore) RecordFeedback(ctx context.Context, traceID string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[traceID]
	if !ok {
		return fmt.Errorf("trace: not found: %s", traceID)
	}
	t.FeedbackScore = &score
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
