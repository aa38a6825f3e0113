package main

import (
	"testing"

	"github.com/alecthomas/kong"
)

func TestRunCmd_Args(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}

	_, err = parser.Parse([]string{"run", "budtender", "recommend a strain for sleep"})
	if err != nil {
		t.Fatal(err)
	}

	if cli.Run.Agent != "budtender" {
		t.Errorf("expected agent 'budtender', got %q", cli.Run.Agent)
	}
	if cli.Run.Goal != "recommend a strain for sleep" {
		t.Errorf("unexpected goal %q", cli.Run.Goal)
	}
	if cli.Config != "agentcore.toml" {
		t.Errorf("expected default config path, got %q", cli.Config)
	}
}

func TestRunCmd_MissingGoal(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = parser.Parse([]string{"run", "budtender"}); err == nil {
		t.Error("expected error for missing goal argument")
	}
}

func TestTracesCmd_Defaults(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}

	_, err = parser.Parse([]string{"traces", "budtender"})
	if err != nil {
		t.Fatal(err)
	}

	if cli.Traces.Limit != 10 {
		t.Errorf("expected default limit 10, got %d", cli.Traces.Limit)
	}
}

func TestFeedbackCmd_Args(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}

	_, err = parser.Parse([]string{"feedback", "tr-123", "0.8"})
	if err != nil {
		t.Fatal(err)
	}

	if cli.Feedback.Trace != "tr-123" {
		t.Errorf("expected trace 'tr-123', got %q", cli.Feedback.Trace)
	}
	if cli.Feedback.Score != 0.8 {
		t.Errorf("expected score 0.8, got %g", cli.Feedback.Score)
	}
}

func TestServeCmd_DefaultSubject(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}

	_, err = parser.Parse([]string{"serve"})
	if err != nil {
		t.Fatal(err)
	}

	if cli.Serve.Subject != "agentcore.workorders" {
		t.Errorf("unexpected subject %q", cli.Serve.Subject)
	}
}
