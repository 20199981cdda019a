package bspgraph

import (
	"time"

	"github.com/xlab/openrank/bspgraph/message"
)

// Aggregator is implemented by types that provide concurrent-safe aggregation
// primitives (e.g. counters, min/max, topN).
type Aggregator interface {
	// Type returns the type of this aggregator.
	Type() string

	// Set the aggregator to the specified value.
	Set(val interface{})

	// Get the current aggregator value.
	Get() interface{}

	// Aggregate updates the aggregator's value based on the provided value.
	Aggregate(val interface{})

	// Delta returns the change in the aggregator's value since the last
	// call to Delta.
	Delta() interface{}
}

// VertexProgram is implemented by graph algorithms that can be executed by
// the engine. The same VertexProgram value may be used by concurrent runs;
// all run-scoped state lives in the per-vertex properties declared by
// Schema and in the immutable Config passed to each method.
type VertexProgram interface {
	// Schema declares the per-vertex properties owned by the program. It
	// is invoked exactly once per run, before any vertex is initialized.
	// Properties are assigned PropertyKey values in declaration order.
	Schema(cfg *Config) (*Schema, error)

	// Init is invoked once for each vertex before the first superstep.
	Init(ctx *InitContext) error

	// Compute is invoked once for each vertex at every superstep >= 1.
	// The message iterator yields the messages sent to the vertex during
	// the previous superstep.
	Compute(ctx *ComputeContext, msgIt message.Iterator) error
}

// MasterComputer is implemented by vertex programs that need to evaluate a
// global halting condition after each superstep. MasterCompute runs on a
// single goroutine once all vertices have completed the superstep and
// returns true if the run should stop.
type MasterComputer interface {
	MasterCompute(ctx *MasterContext) bool
}

// ReducerProvider is implemented by vertex programs that allow the engine
// to combine messages addressed to the same vertex before delivery.
type ReducerProvider interface {
	Reducer() message.Reducer
}

// RelationshipWeighter is implemented by vertex programs that transform the
// messages sent via ComputeContext.SendToNeighbors using the weight of each
// relationship. It is only consulted when the run is configured with a
// relationship weight property.
type RelationshipWeighter interface {
	ApplyRelationshipWeight(value, weight float64) float64
}

// AggregatorProvider is implemented by vertex programs that use
// aggregators. Aggregators must return fresh instances on every call as
// they are scoped to a single run.
type AggregatorProvider interface {
	Aggregators() map[string]Aggregator
}

// Observer is implemented by types that want to be notified about the
// progress of a run (e.g. metrics collectors).
type Observer interface {
	// ObserveSuperstep is invoked after each superstep with the number of
	// vertices that executed the compute function and the time it took
	// to complete the superstep.
	ObserveSuperstep(superstep, activeVertices int, elapsed time.Duration)

	// ObserveRunCompleted is invoked once the run reaches a terminal state.
	ObserveRunCompleted(state State, supersteps int)
}
