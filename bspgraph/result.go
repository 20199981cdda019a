package bspgraph

import (
	"github.com/google/uuid"
	"github.com/xlab/openrank/graph"
	"golang.org/x/xerrors"
)

type resultColumn struct {
	typ     ValueType
	doubles []float64
	longs   []int64
}

// Result holds the public vertex properties of a completed run. Result
// values are immutable and safe for concurrent use.
type Result struct {
	runID      uuid.UUID
	state      State
	supersteps int
	nodeCount  int

	names   []string
	columns map[string]resultColumn
}

// newResult copies the public property columns of g.
func newResult(g *Graph, state State) *Result {
	res := &Result{
		runID:      g.runID,
		state:      state,
		supersteps: g.superstep,
		nodeCount:  g.nodeCount,
		columns:    make(map[string]resultColumn),
	}

	for key, p := range g.schema.props {
		if p.Visibility != Public {
			continue
		}
		col := resultColumn{typ: p.Type}
		switch p.Type {
		case Double:
			col.doubles = append([]float64(nil), g.doubles[key]...)
		case Long:
			col.longs = append([]int64(nil), g.longs[key]...)
		}
		res.names = append(res.names, p.Name)
		res.columns[p.Name] = col
	}
	return res
}

// RunID returns the unique ID assigned to the run.
func (r *Result) RunID() uuid.UUID { return r.runID }

// State returns the terminal state of the run.
func (r *Result) State() State { return r.state }

// DidConverge returns true if the run stopped before reaching the maximum
// number of iterations.
func (r *Result) DidConverge() bool { return r.state == Converged }

// SuperstepCount returns the number of compute supersteps that were
// executed.
func (r *Result) SuperstepCount() int { return r.supersteps }

// NodeCount returns the number of vertices covered by the result.
func (r *Result) NodeCount() int { return r.nodeCount }

// Properties returns the names of the public properties included in the
// result in declaration order.
func (r *Result) Properties() []string {
	return append([]string(nil), r.names...)
}

// NodeValue returns the value of a public Double property for vertex id.
func (r *Result) NodeValue(id int, name string) (float64, error) {
	col, err := r.column(id, name, Double)
	if err != nil {
		return 0, err
	}
	return col.doubles[id], nil
}

// NodeLongValue returns the value of a public Long property for vertex id.
func (r *Result) NodeLongValue(id int, name string) (int64, error) {
	col, err := r.column(id, name, Long)
	if err != nil {
		return 0, err
	}
	return col.longs[id], nil
}

// ForEachNode invokes fn with the value of a public Double property for
// every vertex in ID order. Iteration stops at the first error returned by
// fn.
func (r *Result) ForEachNode(name string, fn func(id int, value float64) error) error {
	col, exists := r.columns[name]
	if !exists || col.typ != Double {
		return xerrors.Errorf("property %q: %w", name, ErrUnknownProperty)
	}
	for id, v := range col.doubles {
		if err := fn(id, v); err != nil {
			return err
		}
	}
	return nil
}

func (r *Result) column(id int, name string, typ ValueType) (resultColumn, error) {
	col, exists := r.columns[name]
	if !exists {
		return col, xerrors.Errorf("property %q: %w", name, ErrUnknownProperty)
	} else if col.typ != typ {
		return col, xerrors.Errorf("property %q is not of type %s: %w", name, typ, ErrUnknownProperty)
	} else if id < 0 || id >= r.nodeCount {
		return col, xerrors.Errorf("vertex %d: %w", id, graph.ErrUnknownNode)
	}
	return col, nil
}
