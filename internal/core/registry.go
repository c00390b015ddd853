package core

import (
	"fmt"
	"sort"
	"sync"
)

// Schema declares the fixed column names a dataset kind is matched on.
type Schema struct {
	Kind          DatasetKind // Dataset this schema describes
	Label         string      // Display name: "Factbook"
	NameColumn    string      // Column holding the brand/company name
	CompanyColumn string      // Column holding the owning company, if any
	SearchColumns []string    // Free-text columns searched by substring
}

var (
	registry   = make(map[DatasetKind]Schema)
	registryMu sync.RWMutex
)

// RegisterSchema adds a dataset schema to the registry.
// Panics if a schema for the same kind is already registered.
func RegisterSchema(s Schema) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[s.Kind]; exists {
		panic(fmt.Sprintf("schema already registered: %s", s.Kind))
	}
	if s.Label == "" {
		s.Label = string(s.Kind)
	}

	registry[s.Kind] = s
}

// SchemaFor returns the schema registered for kind.
// Returns false if not found.
func SchemaFor(kind DatasetKind) (Schema, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	s, ok := registry[kind]
	return s, ok
}

// Schemas returns all registered schemas sorted by kind.
func Schemas() []Schema {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Schema, 0, len(registry))
	for _, s := range registry {
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Kind < result[j].Kind
	})

	return result
}

// ClearSchemas removes all registered schemas.
// Primarily useful for testing.
func ClearSchemas() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[DatasetKind]Schema)
}
