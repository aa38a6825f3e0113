// Package main is the entry point for the agentcore operator CLI.
package main

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	// .env carries local credentials; absence is not an error.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("agentcore"),
		kong.Description("Dual-process agent execution runtime."),
		kong.UsageOnError(),
		kongVars(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli))
}

// Run implements the version command.
func (c *VersionCmd) Run(cli *CLI) error {
	fmt.Printf("agentcore version %s (commit: %s, built: %s)\n", version, commit, buildTime)
	return nil
}
