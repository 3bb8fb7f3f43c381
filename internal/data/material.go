package data

import "fmt"

// MaterialType is an immutable crafting material definition: a display
// name, a category (used to judge plausible forgeries) and a per-unit
// silver value.
type MaterialType struct {
	ID       int32
	Name     string
	Category string
	Value    int64
}

// Validate checks structural invariants before catalog entry.
func (m *MaterialType) Validate() error {
	if m.ID <= 0 {
		return fmt.Errorf("material id must be positive, got %d", m.ID)
	}
	if m.Name == "" {
		return fmt.Errorf("material %d has no name", m.ID)
	}
	if m.Value < 0 {
		return fmt.Errorf("material %q has negative value %d", m.Name, m.Value)
	}
	return nil
}
