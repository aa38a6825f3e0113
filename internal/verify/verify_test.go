package verify

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// scriptedVerifier returns canned results in order.
type scriptedVerifier struct {
	results []*VerificationResult
	calls   int
}

func (v *scriptedVerifier) Verify(ctx context.Context, candidate string) (*VerificationResult, error) {
	if v.calls >= len(v.results) {
		return &VerificationResult{Passed: true}, nil
	}
	r := v.results[v.calls]
	v.calls++
	return r, nil
}

func TestRunVerified_ShortCircuitsOnFirstPass(t *testing.T) {
	verifier := &scriptedVerifier{results: []*VerificationResult{{Passed: true}}}
	generated := 0
	generate := func(ctx context.Context, stimulus string) (string, error) {
		generated++
		return "candidate", nil
	}

	outcome, err := NewController(nil).RunVerified(context.Background(), "write copy", generate, verifier, 3)
	if err != nil {
		t.Fatalf("RunVerified() error = %v", err)
	}
	if generated != 1 {
		t.Errorf("expected exactly 1 generate call, got %d", generated)
	}
	if !outcome.Passed || outcome.Content != "candidate" {
		t.Errorf("unexpected outcome: %+v", outcome)
	}
	if verifier.calls != 1 {
		t.Errorf("verifier must run even on a single-attempt success, got %d calls", verifier.calls)
	}
}

func TestRunVerified_RetriesWithFeedbackVerbatim(t *testing.T) {
	verifier := &scriptedVerifier{results: []*VerificationResult{
		{Passed: false, Issues: []string{"Too aggressive tone"}, Suggestion: "Soften language"},
		{Passed: true},
	}}

	var stimuli []string
	generate := func(ctx context.Context, stimulus string) (string, error) {
		stimuli = append(stimuli, stimulus)
		return "attempt " + string(rune('0'+len(stimuli))), nil
	}

	outcome, err := NewController(nil).RunVerified(context.Background(), "write copy", generate, verifier, 3)
	if err != nil {
		t.Fatalf("RunVerified() error = %v", err)
	}
	if outcome.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", outcome.Attempts)
	}
	if outcome.Content != "attempt 2" {
		t.Errorf("expected second attempt returned, got %q", outcome.Content)
	}

	second := stimuli[1]
	if !strings.HasPrefix(second, "write copy") {
		t.Error("feedback must be appended to the original stimulus")
	}
	if !strings.Contains(second, "Too aggressive tone") {
		t.Error("second stimulus must contain the verifier's issues verbatim")
	}
	if !strings.Contains(second, "Soften language") {
		t.Error("second stimulus must contain the suggestion")
	}
	if !strings.Contains(second, "--- REVISION FEEDBACK ---") || !strings.Contains(second, "--- END FEEDBACK ---") {
		t.Error("feedback block must be clearly delimited")
	}
}

func TestRunVerified_FeedbackNotCumulative(t *testing.T) {
	verifier := &scriptedVerifier{results: []*VerificationResult{
		{Passed: false, Issues: []string{"first complaint"}},
		{Passed: false, Issues: []string{"second complaint"}},
		{Passed: true},
	}}

	var stimuli []string
	generate := func(ctx context.Context, stimulus string) (string, error) {
		stimuli = append(stimuli, stimulus)
		return "candidate", nil
	}

	_, err := NewController(nil).RunVerified(context.Background(), "write copy", generate, verifier, 3)
	if err != nil {
		t.Fatalf("RunVerified() error = %v", err)
	}

	third := stimuli[2]
	if strings.Contains(third, "first complaint") {
		t.Error("third stimulus must not carry the first attempt's feedback")
	}
	if !strings.Contains(third, "second complaint") {
		t.Error("third stimulus must carry only the latest feedback")
	}
	if strings.Count(third, "--- REVISION FEEDBACK ---") != 1 {
		t.Error("exactly one feedback block expected")
	}
}

func TestRunVerified_ExhaustedReturnsLastCandidate(t *testing.T) {
	verifier := &scriptedVerifier{results: []*VerificationResult{
		{Passed: false, Issues: []string{"never good enough"}},
		{Passed: false, Issues: []string{"never good enough"}},
	}}

	attempt := 0
	generate := func(ctx context.Context, stimulus string) (string, error) {
		attempt++
		return "attempt " + string(rune('0'+attempt)), nil
	}

	outcome, err := NewController(nil).RunVerified(context.Background(), "write copy", generate, verifier, 2)
	if err != nil {
		t.Fatalf("exhausted verification must not error, got %v", err)
	}
	if outcome.Passed {
		t.Error("outcome must report verification failure")
	}
	if outcome.Content != "attempt 2" {
		t.Errorf("expected last candidate, got %q", outcome.Content)
	}
	if outcome.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", outcome.Attempts)
	}
}

func TestRunVerified_GenerateErrorPropagates(t *testing.T) {
	verifier := &scriptedVerifier{}
	generate := func(ctx context.Context, stimulus string) (string, error) {
		return "", errors.New("provider down")
	}

	_, err := NewController(nil).RunVerified(context.Background(), "write copy", generate, verifier, 2)
	if err == nil {
		t.Fatal("expected generation error to propagate")
	}
}
