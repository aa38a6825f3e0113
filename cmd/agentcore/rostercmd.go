package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/verdantlabs/agentcore/internal/config"
	"github.com/verdantlabs/agentcore/internal/roster"
)

// Run implements the roster command. Loading is the validation: a roster
// that loads is a roster the runtime will accept.
func (c *RosterCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	return printRoster(cfg)
}

func printRoster(cfg *config.Config) error {
	fleet, err := roster.Load(cfg.Roster.Path)
	if err != nil {
		return fmt.Errorf("roster invalid: %w", err)
	}

	agents := fleet.All()
	fmt.Printf("%s: %d agents\n\n", cfg.Roster.Path, len(agents))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLE\tMODEL\tVERIFIED")
	for _, a := range agents {
		model := a.Model
		if model == "" {
			model = "(default)"
		}
		verified := ""
		if a.Verified {
			verified = fmt.Sprintf("yes (%d criteria)", len(a.Criteria))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Role, model, verified)
	}
	return w.Flush()
}
