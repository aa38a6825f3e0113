// Package main defines the CLI structure using kong.
package main

import "github.com/alecthomas/kong"

// CLI defines the command-line interface.
type CLI struct {
	Run      RunCmd      `cmd:"" help:"Execute a work order for an agent"`
	Serve    ServeCmd    `cmd:"" help:"Consume work orders from the event bus"`
	Traces   TracesCmd   `cmd:"" help:"List recent traces for an agent"`
	Feedback FeedbackCmd `cmd:"" help:"Record a feedback score on a trace"`
	Roster   RosterCmd   `cmd:"" help:"Validate and print the agent roster"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`

	Config string `help:"Config file path" default:"agentcore.toml"`
}

// RunCmd executes a single work order.
type RunCmd struct {
	Agent string `arg:"" help:"Agent persona id from the roster"`
	Goal  string `arg:"" help:"Natural-language goal"`
	JSON  bool   `help:"Print the full trace as JSON"`
}

// ServeCmd subscribes to the work order subject and executes orders
// concurrently until interrupted.
type ServeCmd struct {
	Subject string `default:"agentcore.workorders" help:"NATS subject to consume"`
}

// TracesCmd lists recent traces for an agent.
type TracesCmd struct {
	Agent string `arg:"" help:"Agent persona id"`
	Limit int    `short:"n" default:"10" help:"Maximum traces to list"`
}

// FeedbackCmd records a feedback score on a persisted trace.
type FeedbackCmd struct {
	Trace string  `arg:"" help:"Trace id"`
	Score float64 `arg:"" help:"Score between 0 and 1"`
}

// RosterCmd validates and prints the roster.
type RosterCmd struct{}

// VersionCmd shows version information.
type VersionCmd struct{}

// kongVars returns variables for kong (version info).
func kongVars() kong.Vars {
	return kong.Vars{
		"version": version,
	}
}
