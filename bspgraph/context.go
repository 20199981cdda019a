package bspgraph

import (
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// vertexContext provides access to the properties of the vertex currently
// being processed by a worker. Each worker reuses a single context instance
// across vertices.
type vertexContext struct {
	g     *Graph
	id    int
	fault error
}

func (c *vertexContext) reset(id int) {
	c.id, c.fault = id, nil
}

func (c *vertexContext) recordFault(err error) error {
	if c.fault == nil {
		c.fault = err
	}
	return err
}

// NodeID returns the ID of the vertex being processed.
func (c *vertexContext) NodeID() int { return c.id }

// Superstep returns the current superstep; 0 refers to the init step.
func (c *vertexContext) Superstep() int { return c.g.superstep }

// Config returns the run configuration.
func (c *vertexContext) Config() *Config { return c.g.cfg }

// Logger returns the run-scoped logger.
func (c *vertexContext) Logger() *logrus.Entry { return c.g.logger }

// OutDegree returns the number of outgoing relationships of the vertex.
func (c *vertexContext) OutDegree() int {
	return c.g.outOffsets[c.id+1] - c.g.outOffsets[c.id]
}

// Aggregator returns the aggregator with the specified name or nil if the
// aggregator does not exist.
func (c *vertexContext) Aggregator(name string) Aggregator { return c.g.aggregators[name] }

// DoubleValue returns the value of a Double property. It panics if key does
// not refer to a Double property.
func (c *vertexContext) DoubleValue(key PropertyKey) float64 {
	return c.g.doubleColumn(key)[c.id]
}

// SetDoubleValue updates the value of a Double property. Attempting to store
// a NaN or infinite value fails the vertex step with ErrNonFiniteValue and
// leaves the property unchanged.
func (c *vertexContext) SetDoubleValue(key PropertyKey, v float64) {
	col := c.g.doubleColumn(key)
	if !isFinite(v) {
		_ = c.recordFault(xerrors.Errorf("write %v to property %q: %w", v, c.g.schema.props[key].Name, ErrNonFiniteValue))
		return
	}
	col[c.id] = v
}

// LongValue returns the value of a Long property. It panics if key does not
// refer to a Long property.
func (c *vertexContext) LongValue(key PropertyKey) int64 {
	return c.g.longColumn(key)[c.id]
}

// SetLongValue updates the value of a Long property.
func (c *vertexContext) SetLongValue(key PropertyKey, v int64) {
	c.g.longColumn(key)[c.id] = v
}

// InitContext is passed to VertexProgram.Init. Besides the vertex
// properties it provides read access to the node properties of the
// underlying graph view.
type InitContext struct {
	vertexContext
}

// HasGraphProperty returns true if the graph view knows about the specified
// node property.
func (c *InitContext) HasGraphProperty(name string) bool {
	return c.g.view.HasProperty(name)
}

// GraphPropertyValue returns the value of the specified node property as
// reported by the graph view.
func (c *InitContext) GraphPropertyValue(name string) float64 {
	return c.g.view.NodePropertyValue(c.id, name)
}

// ComputeContext is passed to VertexProgram.Compute. Messages sent through
// it are delivered to their recipients in the following superstep.
type ComputeContext struct {
	vertexContext
}

// VoteToHalt marks the vertex as inactive. Inactive vertices will not be
// processed in the following supersteps unless they receive a message in
// which case they will be re-activated.
func (c *ComputeContext) VoteToHalt() { c.g.active[c.id] = false }

// SendTo queues a message for the vertex with the specified ID.
func (c *ComputeContext) SendTo(target int, msg float64) error {
	if target < 0 || target >= c.g.nodeCount {
		return c.recordFault(xerrors.Errorf("message cannot be delivered to vertex %d: %w", target, ErrInvalidMessageDestination))
	} else if !isFinite(msg) {
		return c.recordFault(xerrors.Errorf("message %v to vertex %d: %w", msg, target, ErrNonFiniteValue))
	}

	queueIndex := (c.g.superstep + 1) % 2
	return c.g.msgQueue[queueIndex][target].Enqueue(msg)
}

// SendToNeighbors broadcasts a message along each outgoing relationship of
// the vertex. When the run is configured with a relationship weight property
// and the program implements RelationshipWeighter, the message is weighted
// separately for each relationship.
func (c *ComputeContext) SendToNeighbors(msg float64) error {
	g := c.g
	for i := g.outOffsets[c.id]; i < g.outOffsets[c.id+1]; i++ {
		out := msg
		if g.weighter != nil {
			out = g.weighter.ApplyRelationshipWeight(msg, g.outWeights[i])
		}
		if err := c.SendTo(g.outTargets[i], out); err != nil {
			return err
		}
	}
	return nil
}

// MasterContext is passed to MasterComputer.MasterCompute. It provides
// read-only access to the properties of all vertices.
type MasterContext struct {
	g *Graph
}

// Superstep returns the superstep that just completed.
func (c *MasterContext) Superstep() int { return c.g.superstep }

// Config returns the run configuration.
func (c *MasterContext) Config() *Config { return c.g.cfg }

// Logger returns the run-scoped logger.
func (c *MasterContext) Logger() *logrus.Entry { return c.g.logger }

// NodeCount returns the number of vertices in the graph.
func (c *MasterContext) NodeCount() int { return c.g.nodeCount }

// Aggregator returns the aggregator with the specified name or nil if the
// aggregator does not exist.
func (c *MasterContext) Aggregator(name string) Aggregator { return c.g.aggregators[name] }

// DoubleValue returns the value of a Double property for vertex id.
func (c *MasterContext) DoubleValue(id int, key PropertyKey) float64 {
	return c.g.DoubleValue(id, key)
}

// LongValue returns the value of a Long property for vertex id.
func (c *MasterContext) LongValue(id int, key PropertyKey) int64 {
	return c.g.LongValue(id, key)
}

// AllNodes returns true if pred holds for every vertex. Evaluation stops at
// the first vertex for which pred returns false.
func (c *MasterContext) AllNodes(pred func(id int) bool) bool {
	for v := 0; v < c.g.nodeCount; v++ {
		if !pred(v) {
			return false
		}
	}
	return true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
