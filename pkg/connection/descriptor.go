package connection

import "strings"

// Descriptor locates a component by group, type, kind, name and version.
// An empty field or "*" matches any value.
type Descriptor struct {
	Group   string
	Type    string
	Kind    string
	Name    string
	Version string
}

// NewDescriptor creates a Descriptor.
func NewDescriptor(group, typ, kind, name, version string) Descriptor {
	return Descriptor{
		Group:   group,
		Type:    typ,
		Kind:    kind,
		Name:    name,
		Version: version,
	}
}

// Match reports whether d and other agree on every field that neither side
// leaves as a wildcard.
func (d Descriptor) Match(other Descriptor) bool {
	return matchField(d.Group, other.Group) &&
		matchField(d.Type, other.Type) &&
		matchField(d.Kind, other.Kind) &&
		matchField(d.Name, other.Name) &&
		matchField(d.Version, other.Version)
}

// String returns the descriptor as group:type:kind:name:version.
func (d Descriptor) String() string {
	fields := []string{d.Group, d.Type, d.Kind, d.Name, d.Version}
	for i, f := range fields {
		if f == "" {
			fields[i] = "*"
		}
	}

	return strings.Join(fields, ":")
}

func matchField(a, b string) bool {
	if a == "" || a == "*" || b == "" || b == "*" {
		return true
	}

	return a == b
}
