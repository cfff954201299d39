package access

import (
	"maps"
	"slices"
)

// Registry is an immutable mapping from recognition identifier to person name.
type Registry struct {
	names map[int]string
}

// DefaultIdentities returns the household learned on the vision sensor at install time.
func DefaultIdentities() map[int]string {
	return map[int]string{
		1: "Ayah",
		2: "Mama",
		3: "Along",
	}
}

// NewRegistry copies identities into a read-only registry.
// Identifiers below 1 are skipped because 0 means "unrecognized".
func NewRegistry(identities map[int]string) *Registry {
	names := make(map[int]string, len(identities))

	for id, name := range identities {
		if id <= UnrecognizedID || name == "" {
			continue
		}

		names[id] = name
	}

	return &Registry{names: names}
}

// Lookup returns the name registered for id.
func (r *Registry) Lookup(id int) (string, bool) {
	name, ok := r.names[id]

	return name, ok
}

// Resolve walks detections in the order the sensor reported them and returns
// the first one with a registered identifier.
func (r *Registry) Resolve(detections []Detection) (Detection, string, bool) {
	for _, d := range detections {
		if name, ok := r.Lookup(d.ID); ok {
			return d, name, true
		}
	}

	return Detection{}, "", false
}

// IDs returns the registered identifiers in ascending order.
func (r *Registry) IDs() []int {
	return slices.Sorted(maps.Keys(r.names))
}

// Len returns the number of registered people.
func (r *Registry) Len() int {
	return len(r.names)
}
