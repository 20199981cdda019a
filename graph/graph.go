package graph

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/xlab/openrank/graph View

// Relationship describes a directed, weighted relationship that terminates
// at Target.
type Relationship struct {
	// The dense ID of the node at the other end of the relationship.
	Target int

	// The value of the requested relationship weight property or 1.0 if
	// no weight property was requested.
	Weight float64
}

// View is implemented by objects that provide read-only access to a
// property graph whose nodes are identified by dense integer IDs in the
// [0, NodeCount()) range.
//
// Implementations must be safe for concurrent use by multiple readers.
type View interface {
	// NodeCount returns the number of nodes in the graph.
	NodeCount() int

	// HasProperty returns true if the specified node property is known
	// to the graph.
	HasProperty(name string) bool

	// NodePropertyValue returns the value of a node property. Nodes that
	// do not carry a value for a known property yield 0.
	NodePropertyValue(id int, name string) float64

	// HasRelationshipProperty returns true if the specified relationship
	// property is known to the graph.
	HasRelationshipProperty(name string) bool

	// OutNeighbors returns the relationships originating at id. Each
	// relationship is annotated with the value of weightProperty or 1.0
	// if weightProperty is empty.
	OutNeighbors(id int, weightProperty string) []Relationship

	// InNeighbors returns the relationships terminating at id. The Target
	// field of each returned relationship refers to its source node.
	InNeighbors(id int, weightProperty string) []Relationship
}
