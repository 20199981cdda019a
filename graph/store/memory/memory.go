package memory

import (
	"sort"
	"sync"

	"github.com/xlab/openrank/graph"
	"golang.org/x/xerrors"
)

// Compile-time check for ensuring Graph implements graph.View.
var _ graph.View = (*Graph)(nil)

type node struct {
	name   string
	labels []string
	props  map[string]float64
}

type relationship struct {
	peer  int
	props map[string]float64
}

// Graph implements an in-memory property graph that can serve as a
// graph.View. Nodes are assigned dense IDs in insertion order.
type Graph struct {
	mu sync.RWMutex

	nodes     []*node
	nameToID  map[string]int
	nodeProps map[string]struct{}
	relProps  map[string]struct{}
	out       [][]relationship
	in        [][]relationship
}

// NewGraph creates a new, empty in-memory graph.
func NewGraph() *Graph {
	return &Graph{
		nameToID:  make(map[string]int),
		nodeProps: make(map[string]struct{}),
		relProps:  make(map[string]struct{}),
	}
}

// AddNode inserts a new node and returns its ID. Node names must be unique.
func (g *Graph) AddNode(name string, labels []string, props map[string]float64) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nameToID[name]; exists {
		return -1, xerrors.Errorf("add node %q: %w", name, graph.ErrDuplicateNode)
	}

	n := &node{
		name:   name,
		labels: append([]string(nil), labels...),
		props:  make(map[string]float64, len(props)),
	}
	for k, v := range props {
		n.props[k] = v
		g.nodeProps[k] = struct{}{}
	}

	id := len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.nameToID[name] = id
	return id, nil
}

// AddRelationship inserts a directed relationship from src to dst.
func (g *Graph) AddRelationship(src, dst int, props map[string]float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addRelationship(src, dst, props)
}

// AddUndirectedRelationship inserts two directed relationships, one in each
// direction, that share the same property values.
func (g *Graph) AddUndirectedRelationship(a, b int, props map[string]float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.addRelationship(a, b, props); err != nil {
		return err
	}
	return g.addRelationship(b, a, props)
}

func (g *Graph) addRelationship(src, dst int, props map[string]float64) error {
	if !g.validID(src) || !g.validID(dst) {
		return xerrors.Errorf("add relationship %d -> %d: %w", src, dst, graph.ErrUnknownNode)
	}

	cloned := make(map[string]float64, len(props))
	for k, v := range props {
		cloned[k] = v
		g.relProps[k] = struct{}{}
	}
	g.out[src] = append(g.out[src], relationship{peer: dst, props: cloned})
	g.in[dst] = append(g.in[dst], relationship{peer: src, props: cloned})
	return nil
}

// NodeID looks up a node by its name.
func (g *Graph) NodeID(name string) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, exists := g.nameToID[name]
	if !exists {
		return -1, xerrors.Errorf("lookup node %q: %w", name, graph.ErrUnknownNode)
	}
	return id, nil
}

// NodeName returns the name of the node with the specified ID.
func (g *Graph) NodeName(id int) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.validID(id) {
		return "", xerrors.Errorf("lookup node %d: %w", id, graph.ErrUnknownNode)
	}
	return g.nodes[id].name, nil
}

// Labels returns the labels of the node with the specified ID.
func (g *Graph) Labels(id int) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.validID(id) {
		return nil, xerrors.Errorf("lookup node %d: %w", id, graph.ErrUnknownNode)
	}
	return append([]string(nil), g.nodes[id].labels...), nil
}

// Names returns the names of all nodes, indexed by node ID.
func (g *Graph) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, len(g.nodes))
	for id, n := range g.nodes {
		names[id] = n.name
	}
	return names
}

// SetNodeProperty sets a node property value. It is typically used for
// writing back the values computed by a graph algorithm.
func (g *Graph) SetNodeProperty(id int, name string, value float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.validID(id) {
		return xerrors.Errorf("set property %q on node %d: %w", name, id, graph.ErrUnknownNode)
	}
	g.nodes[id].props[name] = value
	g.nodeProps[name] = struct{}{}
	return nil
}

// PropertyKeys returns the sorted list of known node property names.
func (g *Graph) PropertyKeys() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := make([]string, 0, len(g.nodeProps))
	for k := range g.nodeProps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NodeCount implements graph.View.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// HasProperty implements graph.View.
func (g *Graph) HasProperty(name string) bool {
	g.mu.RLock()
	_, exists := g.nodeProps[name]
	g.mu.RUnlock()
	return exists
}

// NodePropertyValue implements graph.View.
func (g *Graph) NodePropertyValue(id int, name string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.validID(id) {
		return 0
	}
	return g.nodes[id].props[name]
}

// HasRelationshipProperty implements graph.View.
func (g *Graph) HasRelationshipProperty(name string) bool {
	g.mu.RLock()
	_, exists := g.relProps[name]
	g.mu.RUnlock()
	return exists
}

// OutNeighbors implements graph.View.
func (g *Graph) OutNeighbors(id int, weightProperty string) []graph.Relationship {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.validID(id) {
		return nil
	}
	return project(g.out[id], weightProperty)
}

// InNeighbors implements graph.View.
func (g *Graph) InNeighbors(id int, weightProperty string) []graph.Relationship {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.validID(id) {
		return nil
	}
	return project(g.in[id], weightProperty)
}

func (g *Graph) validID(id int) bool { return id >= 0 && id < len(g.nodes) }

// project converts a list of stored relationships into graph.Relationship
// values annotated with the requested weight property.
func project(rels []relationship, weightProperty string) []graph.Relationship {
	res := make([]graph.Relationship, len(rels))
	for i, r := range rels {
		w := 1.0
		if weightProperty != "" {
			w = r.props[weightProperty]
		}
		res[i] = graph.Relationship{Target: r.peer, Weight: w}
	}
	return res
}
