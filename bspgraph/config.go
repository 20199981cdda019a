package bspgraph

import (
	"io/ioutil"
	"math"
	"runtime"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"github.com/xlab/openrank/bspgraph/message"
	"github.com/xlab/openrank/graph"
	"golang.org/x/xerrors"
)

const (
	// DefaultInitValueProperty is the graph property consulted for vertex
	// initial values when Config.InitValueProperty is not specified.
	DefaultInitValueProperty = "INIT_VALUE"

	// DefaultRetentionFactorProperty is the graph property consulted for
	// vertex retention factors when Config.RetentionFactorProperty is not
	// specified.
	DefaultRetentionFactorProperty = "RETENTION_FACTOR"
)

// Config encapsulates the configuration options for a single run. A Config
// is validated once when the run starts and is treated as immutable from
// that point on; the engine passes a pointer to its private copy to every
// program callback.
type Config struct {
	// The maximum number of supersteps to execute. Must be positive.
	MaxIterations int

	// Programs that track convergence consider a vertex converged when its
	// value changes by less than Tolerance between supersteps. Must not be
	// negative.
	Tolerance float64

	// EnableDiagnostics enables per-superstep progress logging.
	EnableDiagnostics bool

	// A suffix appended to the names of the public properties declared by
	// programs so that independent runs can coexist on the same graph.
	OutputPropertySuffix string

	// The graph property that provides per-vertex initial values. If not
	// specified, DefaultInitValueProperty is used instead.
	InitValueProperty string

	// The graph property that provides per-vertex retention factors. If
	// not specified, DefaultRetentionFactorProperty is used instead.
	RetentionFactorProperty string

	// The relationship property to use as relationship weight. If empty,
	// relationships are unweighted. Otherwise, the property must be known
	// to the graph.
	RelationshipWeightProperty string

	// AllowPropertyOverwrite permits public program properties whose names
	// collide with existing graph properties.
	AllowPropertyOverwrite bool

	// The number of workers to use for invoking the program's init and
	// compute functions. If not specified, runtime.NumCPU() workers will
	// be used.
	ComputeWorkers int

	// QueueFactory is used to create the message queues for each vertex.
	// If not specified, the default in-memory queue will be used.
	QueueFactory message.QueueFactory

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry

	// A clock instance for measuring superstep durations. If not
	// specified, the default wall-clock will be used instead.
	Clock clock.Clock

	// An optional observer for run progress.
	Observer Observer
}

// validate checks whether the run configuration is valid for the provided
// graph view and sets the default values where required.
func (cfg *Config) validate(view graph.View) error {
	var err error
	if view == nil {
		err = multierror.Append(err, xerrors.New("graph view not specified"))
	} else if cfg.RelationshipWeightProperty != "" && !view.HasRelationshipProperty(cfg.RelationshipWeightProperty) {
		err = multierror.Append(err, xerrors.Errorf("relationship weight property %q: %w", cfg.RelationshipWeightProperty, graph.ErrUnknownProperty))
	}
	if cfg.MaxIterations <= 0 {
		err = multierror.Append(err, xerrors.Errorf("max iterations must be positive; got %d", cfg.MaxIterations))
	}
	if cfg.Tolerance < 0 || math.IsNaN(cfg.Tolerance) || math.IsInf(cfg.Tolerance, 0) {
		err = multierror.Append(err, xerrors.Errorf("tolerance must be a finite, non-negative value; got %v", cfg.Tolerance))
	}
	if cfg.ComputeWorkers < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for compute workers: %d", cfg.ComputeWorkers))
	} else if cfg.ComputeWorkers == 0 {
		cfg.ComputeWorkers = runtime.NumCPU()
	}
	if cfg.InitValueProperty == "" {
		cfg.InitValueProperty = DefaultInitValueProperty
	}
	if cfg.RetentionFactorProperty == "" {
		cfg.RetentionFactorProperty = DefaultRetentionFactorProperty
	}
	if cfg.QueueFactory == nil {
		cfg.QueueFactory = message.NewInMemoryQueue
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}

	if err != nil {
		return &ConfigError{Err: err}
	}
	return nil
}
