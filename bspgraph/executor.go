package bspgraph

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// State describes the lifecycle stage of a run.
type State int32

// The states that an Executor can be in.
const (
	NotStarted State = iota
	Initializing
	Running
	Converged
	MaxIterationsReached
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Initializing:
		return "Initializing"
	case Running:
		return "Running"
	case Converged:
		return "Converged"
	case MaxIterationsReached:
		return "MaxIterationsReached"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal returns true if s is a state that a run cannot leave.
func (s State) Terminal() bool {
	return s == Converged || s == MaxIterationsReached || s == Failed
}

// ExecutorCallbacks encapsulates a series of callbacks that are invoked by an
// Executor instance on a graph. All callbacks are optional and will be ignored
// if not specified.
type ExecutorCallbacks struct {
	// PreStep, if defined, is invoked before running the next superstep.
	// This is a good place to initialize variables, aggregators etc. that
	// will be used for the next superstep.
	PreStep func(ctx context.Context, g *Graph) error

	// PostStep, if defined, is invoked after running a superstep.
	PostStep func(ctx context.Context, g *Graph, activeInStep int) error

	// PostStepKeepRunning, if defined, is invoked after running a superstep
	// to decide whether the stop condition for terminating the run has
	// been met. The number of the active vertices in the last step is
	// passed as the third argument. Returning false marks the run as
	// converged.
	PostStepKeepRunning func(ctx context.Context, g *Graph, activeInStep int) (bool, error)
}

func patchEmptyCallbacks(cb *ExecutorCallbacks) {
	if cb.PreStep == nil {
		cb.PreStep = func(context.Context, *Graph) error { return nil }
	}
	if cb.PostStep == nil {
		cb.PostStep = func(context.Context, *Graph, int) error { return nil }
	}
	if cb.PostStepKeepRunning == nil {
		cb.PostStepKeepRunning = func(context.Context, *Graph, int) (bool, error) { return true, nil }
	}
}

// Executor wraps a Graph instance and provides an orchestration layer for
// executing supersteps until an error occurs or an exit condition is met.
// Users can provide an optional set of callbacks to be executed before and
// after each superstep.
type Executor struct {
	g     *Graph
	cb    ExecutorCallbacks
	state int32
}

// NewExecutor returns an Executor instance for graph g that invokes the
// provided list of callbacks inside each execution loop.
func NewExecutor(g *Graph, cb ExecutorCallbacks) *Executor {
	patchEmptyCallbacks(&cb)
	return &Executor{
		g:  g,
		cb: cb,
	}
}

// Graph returns the graph instance associated with this executor.
func (ex *Executor) Graph() *Graph { return ex.g }

// Superstep returns the current graph superstep.
func (ex *Executor) Superstep() int { return ex.g.Superstep() }

// State returns the current state of the executor. It is safe to call State
// while Run is in progress.
func (ex *Executor) State() State { return State(atomic.LoadInt32(&ex.state)) }

func (ex *Executor) setState(s State) { atomic.StoreInt32(&ex.state, int32(s)) }

// Run initializes every vertex and then keeps executing supersteps until the
// context expires, an error occurs, the PostStepKeepRunning callback returns
// false, no vertex remains active or the configured maximum number of
// iterations is reached. An executor can only be run once.
//
// The context is only checked between supersteps.
func (ex *Executor) Run(ctx context.Context) (*Result, error) {
	if !atomic.CompareAndSwapInt32(&ex.state, int32(NotStarted), int32(Initializing)) {
		return nil, ErrExecutorAlreadyRun
	}

	state, err := ex.run(ctx)
	ex.setState(state)
	if obs := ex.g.cfg.Observer; obs != nil {
		obs.ObserveRunCompleted(state, ex.g.superstep)
	}
	if err != nil {
		ex.g.logger.WithField("superstep", ex.g.superstep).WithError(err).Error("run failed")
		return nil, err
	}

	if ex.g.cfg.EnableDiagnostics {
		ex.g.logger.WithFields(logrus.Fields{
			"superstep": ex.g.superstep,
			"state":     state.String(),
		}).Info("run stopped")
	}
	return newResult(ex.g, state), nil
}

func (ex *Executor) run(ctx context.Context) (State, error) {
	var (
		g           = ex.g
		cfg         = g.cfg
		cb          = ex.cb
		keepRunning bool
	)

	if err := ensureContextNotExpired(ctx); err != nil {
		return Failed, xerrors.Errorf("run aborted before initialization: %w", err)
	} else if _, err = g.initialize(); err != nil {
		return Failed, err
	}
	ex.setState(Running)

	for {
		if err := ensureContextNotExpired(ctx); err != nil {
			return Failed, xerrors.Errorf("run aborted after superstep %d: %w", g.superstep, err)
		}
		g.superstep++

		start := cfg.Clock.Now()
		if err := cb.PreStep(ctx, g); err != nil {
			return Failed, err
		}
		activeInStep, err := g.step()
		if err != nil {
			return Failed, err
		}
		elapsed := cfg.Clock.Now().Sub(start)
		ex.observeStep(activeInStep, elapsed)

		if err = cb.PostStep(ctx, g, activeInStep); err != nil {
			return Failed, err
		} else if keepRunning, err = cb.PostStepKeepRunning(ctx, g, activeInStep); err != nil {
			return Failed, err
		}

		switch {
		case !keepRunning, activeInStep == 0:
			return Converged, nil
		case g.superstep >= cfg.MaxIterations:
			return MaxIterationsReached, nil
		}
	}
}

func (ex *Executor) observeStep(activeInStep int, elapsed time.Duration) {
	g := ex.g
	if obs := g.cfg.Observer; obs != nil {
		obs.ObserveSuperstep(g.superstep, activeInStep, elapsed)
	}
	if !g.cfg.EnableDiagnostics {
		return
	}

	fields := logrus.Fields{
		"superstep":         g.superstep,
		"computed_vertices": activeInStep,
		"duration":          elapsed.String(),
	}
	for name, aggr := range g.aggregators {
		fields[name] = aggr.Delta()
	}
	g.logger.WithFields(fields).Info("superstep completed")
}

func ensureContextNotExpired(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
