// Package openrank implements the OpenRank algorithm as a bspgraph vertex
// program.
//
// At every superstep each vertex combines its own initial value with the
// weighted ranks of its in-neighbors:
//
//	rank = retentionFactor * initValue + (1 - retentionFactor) * sum(messages)
//
// A vertex halts once its rank changes by less than the configured tolerance
// and the run stops when every vertex has halted.
package openrank

import (
	"context"
	"math"

	"github.com/xlab/openrank/bspgraph"
	"github.com/xlab/openrank/bspgraph/aggregator"
	"github.com/xlab/openrank/bspgraph/message"
	"github.com/xlab/openrank/graph"
	"golang.org/x/xerrors"
)

// The names of the vertex properties declared by the program.
const (
	RankProperty            = "open_rank"
	InitValueProperty       = "init_value"
	RetentionFactorProperty = "retention_factor"
	VoteToHaltProperty      = "vote_to_halt"
)

// The names of the aggregators registered by the program.
const (
	SumAbsDeltaAggregator = "sum_abs_delta"
	MaxAbsDeltaAggregator = "max_abs_delta"
	HaltedNodesAggregator = "halted_nodes"
)

// ErrInvalidRetentionFactor is returned when a vertex is assigned a retention
// factor outside the [0, 1] range.
var ErrInvalidRetentionFactor = xerrors.New("retention factor must be in the range [0, 1]")

// Keys follow the declaration order in Schema.
const (
	rankKey bspgraph.PropertyKey = iota
	initValueKey
	retentionFactorKey
	voteToHaltKey
)

var (
	_ bspgraph.VertexProgram        = (*Program)(nil)
	_ bspgraph.MasterComputer       = (*Program)(nil)
	_ bspgraph.ReducerProvider      = (*Program)(nil)
	_ bspgraph.RelationshipWeighter = (*Program)(nil)
	_ bspgraph.AggregatorProvider   = (*Program)(nil)
)

// Program implements the OpenRank vertex program. A Program holds no
// run-scoped state and can be used by multiple concurrent runs.
type Program struct {
	cfg Config
}

// New returns a new OpenRank program using the provided config options.
func New(cfg Config) (*Program, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("OpenRank config validation failed: %w", err)
	}
	return &Program{cfg: cfg}, nil
}

// Config returns the validated program configuration.
func (p *Program) Config() Config { return p.cfg }

// OutputProperty returns the name of the property that holds the computed
// ranks for a run configured with cfg.
func OutputProperty(cfg *bspgraph.Config) string {
	return RankProperty + cfg.OutputPropertySuffix
}

// Run executes the program over view and returns the computed ranks.
func (p *Program) Run(ctx context.Context, view graph.View, cfg bspgraph.Config) (*bspgraph.Result, error) {
	return bspgraph.Run(ctx, view, p, cfg)
}

// Schema implements bspgraph.VertexProgram.
func (p *Program) Schema(cfg *bspgraph.Config) (*bspgraph.Schema, error) {
	return bspgraph.NewSchema().
		Add(OutputProperty(cfg), bspgraph.Double, bspgraph.Public).
		Add(InitValueProperty, bspgraph.Double, bspgraph.Private).
		Add(RetentionFactorProperty, bspgraph.Double, bspgraph.Private).
		Add(VoteToHaltProperty, bspgraph.Long, bspgraph.Private).
		Build()
}

// Init implements bspgraph.VertexProgram.
func (p *Program) Init(ctx *bspgraph.InitContext) error {
	cfg := ctx.Config()

	initValue := p.cfg.DefaultInitValue
	if ctx.HasGraphProperty(cfg.InitValueProperty) {
		initValue = ctx.GraphPropertyValue(cfg.InitValueProperty)
	}

	retentionFactor := p.cfg.DefaultRetentionFactor
	if ctx.HasGraphProperty(cfg.RetentionFactorProperty) {
		retentionFactor = ctx.GraphPropertyValue(cfg.RetentionFactorProperty)
	}
	if !(retentionFactor >= 0 && retentionFactor <= 1) {
		return xerrors.Errorf("vertex retention factor %v: %w", retentionFactor, ErrInvalidRetentionFactor)
	}

	ctx.SetDoubleValue(initValueKey, initValue)
	ctx.SetDoubleValue(rankKey, initValue)
	ctx.SetDoubleValue(retentionFactorKey, retentionFactor)
	ctx.SetLongValue(voteToHaltKey, 0)
	return nil
}

// Compute implements bspgraph.VertexProgram.
func (p *Program) Compute(ctx *bspgraph.ComputeContext, msgIt message.Iterator) error {
	oldRank := ctx.DoubleValue(rankKey)
	halted := ctx.LongValue(voteToHaltKey) != 0
	if halted && p.cfg.Variant == VariantFreezeOnHalt {
		ctx.Aggregator(MaxAbsDeltaAggregator).Aggregate(0.0)
		ctx.Aggregator(HaltedNodesAggregator).Aggregate(1)
		return ctx.SendToNeighbors(oldRank)
	}

	sum, _, err := message.Drain(msgIt, message.Sum)
	if err != nil {
		return err
	}

	retentionFactor := ctx.DoubleValue(retentionFactorKey)
	newRank := retentionFactor*ctx.DoubleValue(initValueKey) + (1-retentionFactor)*sum
	ctx.SetDoubleValue(rankKey, newRank)

	absDelta := math.Abs(newRank - oldRank)
	ctx.Aggregator(SumAbsDeltaAggregator).Aggregate(absDelta)
	ctx.Aggregator(MaxAbsDeltaAggregator).Aggregate(absDelta)
	if absDelta < ctx.Config().Tolerance {
		halted = true
		ctx.SetLongValue(voteToHaltKey, 1)
	}
	if halted {
		ctx.Aggregator(HaltedNodesAggregator).Aggregate(1)
	}

	return ctx.SendToNeighbors(newRank)
}

// MasterCompute implements bspgraph.MasterComputer. It requests the run to
// stop once every vertex has halted.
func (p *Program) MasterCompute(ctx *bspgraph.MasterContext) bool {
	return ctx.AllNodes(func(id int) bool {
		return ctx.LongValue(id, voteToHaltKey) != 0
	})
}

// Reducer implements bspgraph.ReducerProvider.
func (p *Program) Reducer() message.Reducer { return message.Sum }

// ApplyRelationshipWeight implements bspgraph.RelationshipWeighter.
func (p *Program) ApplyRelationshipWeight(value, weight float64) float64 {
	return value * weight
}

// Aggregators implements bspgraph.AggregatorProvider.
func (p *Program) Aggregators() map[string]bspgraph.Aggregator {
	return map[string]bspgraph.Aggregator{
		SumAbsDeltaAggregator: new(aggregator.Float64Accumulator),
		MaxAbsDeltaAggregator: new(aggregator.Float64Max),
		HaltedNodesAggregator: new(aggregator.IntAccumulator),
	}
}
