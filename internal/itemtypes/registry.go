// Package itemtypes holds the registry of known item types. Types are
// declared in an embedded YAML file so adding one never requires a schema
// change.
package itemtypes

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry answers item-type questions for the rest of the system.
type Registry struct {
	types map[string]TypeDefinition
	mu    sync.RWMutex
}

// NewRegistry creates a new registry and loads the embedded YAML config
func NewRegistry() (*Registry, error) {
	r := &Registry{
		types: make(map[string]TypeDefinition),
	}
	if err := r.loadFile("itemtypes"); err != nil {
		return nil, fmt.Errorf("failed to load item types: %w", err)
	}
	return r, nil
}

func (r *Registry) loadFile(name string) error {
	filename := fmt.Sprintf("config/%s.yaml", name)
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var file typeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, def := range file.Types {
		def.ID = id
		r.types[id] = def
	}
	return nil
}

// Get returns the definition for a type id
func (r *Registry) Get(typeID string) (*TypeDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.types[typeID]
	if !ok {
		return nil, fmt.Errorf("unknown item type: %s", typeID)
	}
	return &def, nil
}

// Known reports whether typeID is registered
func (r *Registry) Known(typeID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.types[typeID]
	return ok
}

// AllowsChildren reports whether items of the type can contain children.
// Unknown types are treated as leaves.
func (r *Registry) AllowsChildren(typeID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.types[typeID]
	return ok && def.AllowsChildren
}

// RefFields returns the extra keys holding item id references for the type.
func (r *Registry) RefFields(typeID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.types[typeID]
	if !ok {
		return nil
	}
	return def.RefFields
}

// List returns all registered type ids
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.types))
	for id := range r.types {
		ids = append(ids, id)
	}
	return ids
}
