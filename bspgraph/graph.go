package bspgraph

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xlab/openrank/bspgraph/message"
	"github.com/xlab/openrank/graph"
	"golang.org/x/xerrors"
)

type phase uint8

const (
	phaseInit phase = iota
	phaseCompute
)

// Graph implements a parallel graph processor based on the concepts described
// in the Pregel paper. A Graph holds a read-only snapshot of the topology of
// a graph.View together with the per-vertex properties declared by the
// program schema. It is important for callers to invoke Close() on the
// graph instance when they are done using it.
type Graph struct {
	superstep int
	phase     phase

	cfg     *Config
	view    graph.View
	program VertexProgram
	schema  *Schema
	runID   uuid.UUID
	logger  *logrus.Entry

	// Outgoing relationships in compressed sparse row form. The
	// relationships of vertex v are stored at [outOffsets[v], outOffsets[v+1]).
	nodeCount  int
	outOffsets []int
	outTargets []int
	outWeights []float64
	weighter   RelationshipWeighter

	// Property columns indexed by PropertyKey. Only the column that
	// matches the declared property type is allocated.
	doubles [][]float64
	longs   [][]int64
	active  []bool

	msgQueue    [2][]message.Queue
	aggregators map[string]Aggregator

	wg              sync.WaitGroup
	vertexCh        chan int
	errCh           chan error
	stepCompletedCh chan struct{}
	activeInStep    int64
	pendingInStep   int64
	closed          bool
}

// NewGraph validates cfg, resolves the program schema and creates a new
// Graph instance for running program over view.
func NewGraph(view graph.View, program VertexProgram, cfg Config) (*Graph, error) {
	if err := cfg.validate(view); err != nil {
		return nil, err
	}
	if program == nil {
		return nil, &ConfigError{Err: xerrors.New("vertex program not specified")}
	}

	schema, err := program.Schema(&cfg)
	if err != nil {
		return nil, xerrors.Errorf("resolve program schema: %w", err)
	} else if schema == nil {
		return nil, xerrors.Errorf("program returned a nil schema: %w", ErrSchemaConflict)
	}
	if !cfg.AllowPropertyOverwrite {
		for _, p := range schema.props {
			if p.Visibility == Public && view.HasProperty(p.Name) {
				return nil, xerrors.Errorf("property %q already exists in the graph: %w", p.Name, ErrSchemaConflict)
			}
		}
	}

	g := &Graph{
		cfg:         &cfg,
		view:        view,
		program:     program,
		schema:      schema,
		runID:       uuid.New(),
		nodeCount:   view.NodeCount(),
		aggregators: make(map[string]Aggregator),
	}
	g.logger = cfg.Logger.WithFields(logrus.Fields{
		"run_id": g.runID.String(),
		"nodes":  g.nodeCount,
	})

	if cfg.RelationshipWeightProperty != "" {
		g.weighter, _ = program.(RelationshipWeighter)
	}
	if err = g.loadTopology(); err != nil {
		return nil, err
	}
	g.allocateProperties()

	var reducer message.Reducer
	if rp, ok := program.(ReducerProvider); ok {
		reducer = rp.Reducer()
	}
	for i := 0; i < 2; i++ {
		g.msgQueue[i] = make([]message.Queue, g.nodeCount)
		for v := 0; v < g.nodeCount; v++ {
			g.msgQueue[i][v] = cfg.QueueFactory(reducer)
		}
	}

	if ap, ok := program.(AggregatorProvider); ok {
		for name, aggr := range ap.Aggregators() {
			g.aggregators[name] = aggr
		}
	}

	g.startWorkers(cfg.ComputeWorkers)
	return g, nil
}

// loadTopology snapshots the outgoing relationships of every vertex. Weights
// must be finite and non-negative.
func (g *Graph) loadTopology() error {
	var weightProp string
	if g.weighter != nil {
		weightProp = g.cfg.RelationshipWeightProperty
	}

	g.outOffsets = make([]int, g.nodeCount+1)
	for v := 0; v < g.nodeCount; v++ {
		for _, rel := range g.view.OutNeighbors(v, weightProp) {
			if rel.Target < 0 || rel.Target >= g.nodeCount {
				return xerrors.Errorf("relationship from vertex %d to vertex %d: %w", v, rel.Target, graph.ErrUnknownNode)
			}
			g.outTargets = append(g.outTargets, rel.Target)
			if g.weighter != nil {
				if rel.Weight < 0 || !isFinite(rel.Weight) {
					return xerrors.Errorf("relationship from vertex %d to vertex %d has weight %v: %w", v, rel.Target, rel.Weight, ErrInvalidRelationshipWeight)
				}
				g.outWeights = append(g.outWeights, rel.Weight)
			}
		}
		g.outOffsets[v+1] = len(g.outTargets)
	}
	return nil
}

func (g *Graph) allocateProperties() {
	g.doubles = make([][]float64, len(g.schema.props))
	g.longs = make([][]int64, len(g.schema.props))
	for key, p := range g.schema.props {
		switch p.Type {
		case Double:
			g.doubles[key] = make([]float64, g.nodeCount)
		case Long:
			g.longs[key] = make([]int64, g.nodeCount)
		}
	}

	g.active = make([]bool, g.nodeCount)
	for v := range g.active {
		g.active[v] = true
	}
}

// Close releases any resources associated with the graph.
func (g *Graph) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	close(g.vertexCh)
	g.wg.Wait()

	for i := 0; i < 2; i++ {
		for v, q := range g.msgQueue[i] {
			if err := q.Close(); err != nil {
				return xerrors.Errorf("closing message queue #%d for vertex %d: %w", i, v, err)
			}
		}
	}
	return nil
}

// Superstep returns the current superstep value.
func (g *Graph) Superstep() int { return g.superstep }

// NodeCount returns the number of vertices in the graph.
func (g *Graph) NodeCount() int { return g.nodeCount }

// Config returns the validated configuration for this graph.
func (g *Graph) Config() *Config { return g.cfg }

// Schema returns the resolved program schema.
func (g *Graph) Schema() *Schema { return g.schema }

// RunID returns the unique ID assigned to the run.
func (g *Graph) RunID() uuid.UUID { return g.runID }

// Logger returns the run-scoped logger.
func (g *Graph) Logger() *logrus.Entry { return g.logger }

// Aggregator returns the aggregator with the specified name or nil if the
// aggregator does not exist.
func (g *Graph) Aggregator(name string) Aggregator { return g.aggregators[name] }

// Aggregators returns a map of all registered aggregators where the key is
// the aggregator's name.
func (g *Graph) Aggregators() map[string]Aggregator { return g.aggregators }

// DoubleValue returns the value of a Double property for vertex id. It must
// only be invoked between supersteps.
func (g *Graph) DoubleValue(id int, key PropertyKey) float64 {
	return g.doubleColumn(key)[id]
}

// LongValue returns the value of a Long property for vertex id. It must only
// be invoked between supersteps.
func (g *Graph) LongValue(id int, key PropertyKey) int64 {
	return g.longColumn(key)[id]
}

func (g *Graph) doubleColumn(key PropertyKey) []float64 {
	if col := g.doubles[key]; col != nil {
		return col
	}
	panic(xerrors.Errorf("property %q is not of type %s", g.schema.props[key].Name, Double))
}

func (g *Graph) longColumn(key PropertyKey) []int64 {
	if col := g.longs[key]; col != nil {
		return col
	}
	panic(xerrors.Errorf("property %q is not of type %s", g.schema.props[key].Name, Long))
}

// initialize invokes the program's init function for each vertex.
func (g *Graph) initialize() (int, error) {
	g.superstep = 0
	g.phase = phaseInit
	return g.runPhase()
}

// step executes the next superstep and returns back the number of vertices
// that were processed either because they were still active or because they
// received a message.
func (g *Graph) step() (int, error) {
	g.phase = phaseCompute
	return g.runPhase()
}

func (g *Graph) runPhase() (int, error) {
	g.activeInStep = 0
	g.pendingInStep = int64(g.nodeCount)

	// No work required.
	if g.pendingInStep == 0 {
		return 0, nil
	}

	for v := 0; v < g.nodeCount; v++ {
		g.vertexCh <- v
	}

	// Block until worker pool has finished processing all vertices.
	<-g.stepCompletedCh

	// Dequeue any errors
	var err error
	select {
	case err = <-g.errCh: // dequeued
	default: // no error available
	}

	return int(g.activeInStep), err
}

// startWorkers allocates the required channels and spins up numWorkers to
// execute each superstep.
func (g *Graph) startWorkers(numWorkers int) {
	g.vertexCh = make(chan int)
	g.errCh = make(chan error, 1)
	g.stepCompletedCh = make(chan struct{})

	g.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go g.stepWorker()
	}
}

// stepWorker polls vertexCh for incoming vertices and executes the program's
// init or compute function for each one. The worker automatically exits when
// vertexCh gets closed.
func (g *Graph) stepWorker() {
	initCtx := &InitContext{vertexContext: vertexContext{g: g}}
	computeCtx := &ComputeContext{vertexContext: vertexContext{g: g}}

	for v := range g.vertexCh {
		var err error
		if g.phase == phaseInit {
			err = g.initVertex(initCtx, v)
		} else {
			err = g.computeVertex(computeCtx, v)
		}
		if err != nil {
			tryEmitError(g.errCh, &ComputeError{NodeID: v, Superstep: g.superstep, Err: err})
		}

		if atomic.AddInt64(&g.pendingInStep, -1) == 0 {
			g.stepCompletedCh <- struct{}{}
		}
	}
	g.wg.Done()
}

func (g *Graph) initVertex(ctx *InitContext, v int) error {
	_ = atomic.AddInt64(&g.activeInStep, 1)
	ctx.reset(v)
	if err := g.callInit(ctx); err != nil {
		return err
	}
	return ctx.fault
}

func (g *Graph) computeVertex(ctx *ComputeContext, v int) error {
	buffer := g.superstep % 2
	inbox := g.msgQueue[buffer][v]
	if !g.active[v] && !inbox.PendingMessages() {
		return nil
	}

	_ = atomic.AddInt64(&g.activeInStep, 1)
	g.active[v] = true
	ctx.reset(v)
	if err := g.callCompute(ctx, inbox.Messages()); err != nil {
		return err
	} else if ctx.fault != nil {
		return ctx.fault
	}

	if err := inbox.DiscardMessages(); err != nil {
		return xerrors.Errorf("discarding unprocessed messages: %w", err)
	}
	return nil
}

func (g *Graph) callInit(ctx *InitContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = xerrors.Errorf("recovered from panic: %v", r)
		}
	}()
	return g.program.Init(ctx)
}

func (g *Graph) callCompute(ctx *ComputeContext, msgIt message.Iterator) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = xerrors.Errorf("recovered from panic: %v", r)
		}
	}()
	return g.program.Compute(ctx, msgIt)
}

func tryEmitError(errCh chan<- error, err error) {
	select {
	case errCh <- err: // queued error
	default: // channel already contains another error
	}
}
