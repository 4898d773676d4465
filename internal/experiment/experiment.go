// Package experiment assigns the process to named groups of client-side
// trials. Assignment is deterministic for a given entropy source, so a
// client stays in its group across restarts, and registration is idempotent
// within a process.
package experiment

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

type Group struct {
	Name   string
	Weight int
}

type Registry struct {
	mu     sync.Mutex
	trials map[string]string
}

func NewRegistry() *Registry {
	return &Registry{trials: make(map[string]string)}
}

// RegisterOnce registers a trial and returns the assigned group name. A
// repeated call for the same trial name returns the existing assignment
// untouched. Weighted groups claim successive slices of [0, totalProbability);
// the remainder of the space falls to defaultGroup.
func (r *Registry) RegisterOnce(trial, defaultGroup string, totalProbability int, groups []Group, entropy string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if group, ok := r.trials[trial]; ok {
		return group
	}
	group := assign(trial, defaultGroup, totalProbability, groups, entropy)
	r.trials[trial] = group
	return group
}

// ActiveGroup returns the group assigned for trial, or "" if the trial was
// never registered.
func (r *Registry) ActiveGroup(trial string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trials[trial]
}

func assign(trial, defaultGroup string, totalProbability int, groups []Group, entropy string) string {
	if totalProbability <= 0 {
		return defaultGroup
	}
	point := int(xxhash.Sum64String(entropy+":"+trial) % uint64(totalProbability))
	cumulative := 0
	for _, g := range groups {
		cumulative += g.Weight
		if point < cumulative {
			return g.Name
		}
	}
	return defaultGroup
}
