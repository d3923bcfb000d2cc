package core

import (
	"fmt"
	"sort"
	"sync"
)

// SourceInfo contains display information about a registered source.
type SourceInfo struct {
	Key         string `json:"key"`         // Unique identifier: "reference"
	Group       string `json:"group"`       // Origin: "builtin", "postgres"
	Label       string `json:"label"`       // Display name
	Description string `json:"description"` // One-line summary
}

// SourceDefinition pairs display info with a factory for fresh sources.
// New is called once per run so sources never share state across runs.
type SourceDefinition struct {
	Info SourceInfo
	New  func() DataSource
}

var (
	registry   = make(map[string]SourceDefinition)
	registryMu sync.RWMutex
)

// RegisterSource adds a source definition to the registry.
// Panics if a source with the same key is already registered.
func RegisterSource(def SourceDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("source already registered: %s", def.Info.Key))
	}
	if def.New == nil {
		panic(fmt.Sprintf("source %s has no factory", def.Info.Key))
	}

	registry[def.Info.Key] = def
}

// GetSource returns a source definition by key.
// Returns false if not found.
func GetSource(key string) (SourceDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// AllSources returns all registered source definitions.
// Sorted by group then by key for consistent ordering.
func AllSources() []SourceDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]SourceDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Info.Group != result[j].Info.Group {
			return result[i].Info.Group < result[j].Info.Group
		}
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// SourceGroups returns all unique group names.
// Sorted alphabetically.
func SourceGroups() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool)
	for _, def := range registry {
		seen[def.Info.Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}

	sort.Strings(groups)
	return groups
}

// SourceCount returns the number of registered sources.
func SourceCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// ClearSources removes all registered sources.
// Primarily useful for testing.
func ClearSources() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]SourceDefinition)
}
