package bspgraph

import (
	"context"

	"github.com/xlab/openrank/graph"
	"golang.org/x/xerrors"
)

// Run executes program over view using the provided configuration and
// returns the public vertex properties computed by the program.
//
// If the program implements MasterComputer, it is consulted after every
// superstep and the run stops as soon as it reports that the global halting
// condition has been met.
func Run(ctx context.Context, view graph.View, program VertexProgram, cfg Config) (res *Result, err error) {
	g, err := NewGraph(view, program, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cErr := g.Close(); cErr != nil && err == nil {
			res, err = nil, cErr
		}
	}()

	return NewExecutor(g, MasterCallbacks(g)).Run(ctx)
}

// MasterCallbacks returns a set of executor callbacks that consult the
// graph's vertex program, if it implements MasterComputer, to decide when
// the run should stop.
func MasterCallbacks(g *Graph) ExecutorCallbacks {
	mc, ok := g.program.(MasterComputer)
	if !ok {
		return ExecutorCallbacks{}
	}

	mctx := &MasterContext{g: g}
	return ExecutorCallbacks{
		PostStepKeepRunning: func(_ context.Context, g *Graph, _ int) (bool, error) {
			stop, err := callMaster(mc, mctx)
			if err != nil {
				return false, xerrors.Errorf("running master compute at superstep %d failed: %w", g.superstep, err)
			}
			if stop && g.cfg.EnableDiagnostics {
				g.logger.WithField("superstep", g.superstep).Info("master computer requested the run to stop")
			}
			return !stop, nil
		},
	}
}

func callMaster(mc MasterComputer, ctx *MasterContext) (stop bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = xerrors.Errorf("recovered from panic: %v", r)
		}
	}()
	return mc.MasterCompute(ctx), nil
}
