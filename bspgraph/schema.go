package bspgraph

import (
	"golang.org/x/xerrors"
)

// ValueType describes the type of a vertex property.
type ValueType uint8

// The supported vertex property types.
const (
	Double ValueType = iota
	Long
)

func (t ValueType) String() string {
	switch t {
	case Double:
		return "DOUBLE"
	case Long:
		return "LONG"
	default:
		return "UNKNOWN"
	}
}

// Visibility controls whether a property is included in the run result.
type Visibility uint8

// The supported property visibility levels.
const (
	// Public properties are part of the run result.
	Public Visibility = iota

	// Private properties are only visible to the program while it runs.
	Private
)

// Property describes a vertex property declared by a program schema.
type Property struct {
	Name       string
	Type       ValueType
	Visibility Visibility
}

// PropertyKey identifies a declared property. Keys are assigned in
// declaration order starting from 0.
type PropertyKey int

// Schema describes the fixed set of properties owned by every vertex of a
// program. Schema values are immutable once built.
type Schema struct {
	props []Property
	keys  map[string]PropertyKey
}

// SchemaBuilder assembles a Schema.
type SchemaBuilder struct {
	props []Property
}

// NewSchema returns a builder for a new schema.
func NewSchema() *SchemaBuilder {
	return new(SchemaBuilder)
}

// Add declares a new property. The declared property is assigned the next
// available PropertyKey.
func (b *SchemaBuilder) Add(name string, typ ValueType, vis Visibility) *SchemaBuilder {
	b.props = append(b.props, Property{Name: name, Type: typ, Visibility: vis})
	return b
}

// Build validates the declared properties and returns an immutable Schema.
func (b *SchemaBuilder) Build() (*Schema, error) {
	s := &Schema{
		props: append([]Property(nil), b.props...),
		keys:  make(map[string]PropertyKey, len(b.props)),
	}
	for i, p := range s.props {
		if p.Name == "" {
			return nil, xerrors.Errorf("property #%d has an empty name: %w", i, ErrSchemaConflict)
		}
		if p.Type != Double && p.Type != Long {
			return nil, xerrors.Errorf("property %q has unsupported type %d: %w", p.Name, p.Type, ErrSchemaConflict)
		}
		if _, exists := s.keys[p.Name]; exists {
			return nil, xerrors.Errorf("property %q declared more than once: %w", p.Name, ErrSchemaConflict)
		}
		s.keys[p.Name] = PropertyKey(i)
	}
	return s, nil
}

// Key resolves a property name to its key.
func (s *Schema) Key(name string) (PropertyKey, error) {
	key, exists := s.keys[name]
	if !exists {
		return -1, xerrors.Errorf("property %q: %w", name, ErrUnknownProperty)
	}
	return key, nil
}

// Property returns the declaration for key.
func (s *Schema) Property(key PropertyKey) Property { return s.props[key] }

// Properties returns the list of declared properties in declaration order.
func (s *Schema) Properties() []Property {
	return append([]Property(nil), s.props...)
}

// Len returns the number of declared properties.
func (s *Schema) Len() int { return len(s.props) }
