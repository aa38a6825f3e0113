// Package roster declares the fleet of named agent personas and keeps the
// declaration hot-reloadable at runtime.
package roster

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Agent is one persona in the fleet.
type Agent struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Role         string   `yaml:"role"`
	Model        string   `yaml:"model,omitempty"`
	SystemPrompt string   `yaml:"system_prompt,omitempty"`
	// Verified marks personas whose output must pass the quality gate.
	Verified bool     `yaml:"verified,omitempty"`
	Criteria []string `yaml:"criteria,omitempty"`
}

type rosterFile struct {
	Agents []Agent `yaml:"agents"`
}

// Roster is the loaded fleet. Safe for concurrent readers; Reload swaps the
// whole set atomically.
type Roster struct {
	path string

	mu     sync.RWMutex
	agents map[string]Agent
}

// Load reads and validates the roster at path.
func Load(path string) (*Roster, error) {
	r := &Roster{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the roster file. On failure the previous roster stays in
// effect.
func (r *Roster) Reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("roster: read %s: %w", r.path, err)
	}

	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("roster: parse %s: %w", r.path, err)
	}
	if len(file.Agents) == 0 {
		return fmt.Errorf("roster: %s declares no agents", r.path)
	}

	agents := make(map[string]Agent, len(file.Agents))
	for _, a := range file.Agents {
		if a.ID == "" {
			return fmt.Errorf("roster: agent with empty id in %s", r.path)
		}
		if _, dup := agents[a.ID]; dup {
			return fmt.Errorf("roster: duplicate agent id %q in %s", a.ID, r.path)
		}
		agents[a.ID] = a
	}

	r.mu.Lock()
	r.agents = agents
	r.mu.Unlock()
	return nil
}

// Get returns the persona with the given id.
func (r *Roster) Get(id string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	return a, ok
}

// All returns every persona, sorted by id.
func (r *Roster) All() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
