package trace

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

const traceCollection = "agent_traces"

// FirestoreStore implements Store on the platform's managed document store.
// One logical partition per agent via the agentId field.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a store on an existing Firestore client. The
// client is long-lived and shared; the store does not own its lifecycle.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// SaveTrace implements Store.
func (s *FirestoreStore) SaveTrace(ctx context.Context, t *Trace) error {
	if t.ID == "" {
		return fmt.Errorf("trace: missing id")
	}
	if _, err := s.client.Collection(traceCollection).Doc(t.ID).Set(ctx, t); err != nil {
		return fmt.Errorf("trace: save %s: %w", t.ID, err)
	}
	return nil
}

// FindSimilarTraces implements Store.
func (s *FirestoreStore) FindSimilarTraces(ctx context.Context, order WorkOrder, limit int) ([]*Trace, error) {
	if limit <= 0 {
		limit = DefaultRecallLimit
	}

	iter := s.client.Collection(traceCollection).
		Where("agentId", "==", order.RequestedBy).
		OrderBy("completedAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var out []*Trace
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("trace: query: %w", err)
		}
		var t Trace
		if err := doc.DataTo(&t); err != nil {
			return nil, fmt.Errorf("trace: decode %s: %w", doc.Ref.ID, err)
		}
		out = append(out, &t)
	}
	return out, nil
}

// RecordFeedback implements Store.
func (s *FirestoreStore) RecordFeedback(ctx context.Context, traceID string, score float64) error {
	_, err := s.client.Collection(traceCollection).Doc(traceID).Update(ctx, []firestore.Update{
		{Path: "feedbackScore", Value: score},
	})
	if err != nil {
		return fmt.Errorf("trace: record feedback %s: %w", traceID, err)
	}
	return nil
}

// Close implements Store. The Firestore client is shared, so Close is a no-op.
func (s *FirestoreStore) Close() error { return nil }
