package itemtypes

// TypeDefinition describes one item type and how the core should treat its
// extra payload. The payload itself stays opaque; the registry only knows
// which extra fields hold item id references that a deep copy must remap.
type TypeDefinition struct {
	// Type identifier (set during YAML unmarshaling)
	ID string `yaml:"-" json:"id"`

	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`

	// AllowsChildren controls whether items of this type can be parents.
	AllowsChildren bool `yaml:"allows_children" json:"allows_children"`

	// RefFields names keys inside extra whose values are item ids pointing
	// elsewhere in the tree (e.g. a shortcut's target).
	RefFields []string `yaml:"ref_fields,omitempty" json:"ref_fields,omitempty"`
}

// typeFile is the on-disk shape of the embedded registry config.
type typeFile struct {
	Types map[string]TypeDefinition `yaml:"types"`
}
