package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/xlab/openrank/bspgraph"
	"github.com/xlab/openrank/bspgraph/message"
	"github.com/xlab/openrank/bspgraph/metrics"
	"github.com/xlab/openrank/graph/store/cdb"
	"github.com/xlab/openrank/graph/store/file"
	"github.com/xlab/openrank/graph/store/memory"
	"github.com/xlab/openrank/openrank"
	"golang.org/x/xerrors"
)

var (
	appName = "openrank"
	appSha  = "populated-at-link-time"
	logger  *logrus.Entry
)

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	rootLogger.SetFormatter(new(logrus.JSONFormatter))
	logger = rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSha,
		"host": host,
	})

	if err := makeApp().Run(os.Args); err != nil {
		logger.WithField("err", err).Error("shutting down due to error")
		_ = os.Stderr.Sync()
		os.Exit(1)
	}
}

func makeApp() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Version = appSha
	app.Usage = "Compute OpenRank scores for a property graph"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "graph",
			EnvVar: "GRAPH_FILE",
			Usage:  "The path to a YAML graph document",
		},
		cli.StringFlag{
			Name:   "cdb-dsn",
			EnvVar: "OPENRANK_CDB_DSN",
			Usage:  "The URI for connecting to a CockroachDB/PostgreSQL graph store",
		},
		cli.IntFlag{
			Name:   "max-iterations",
			Value:  30,
			EnvVar: "MAX_ITERATIONS",
			Usage:  "The maximum number of supersteps to execute",
		},
		cli.Float64Flag{
			Name:   "tolerance",
			Value:  0.001,
			EnvVar: "TOLERANCE",
			Usage:  "Vertices halt once their rank changes by less than this value",
		},
		cli.StringFlag{
			Name:   "suffix",
			EnvVar: "OUTPUT_SUFFIX",
			Usage:  "A suffix for the name of the output property",
		},
		cli.StringFlag{
			Name:   "init-value-property",
			Value:  bspgraph.DefaultInitValueProperty,
			EnvVar: "INIT_VALUE_PROPERTY",
			Usage:  "The node property that holds the initial value of each node",
		},
		cli.StringFlag{
			Name:   "retention-factor-property",
			Value:  bspgraph.DefaultRetentionFactorProperty,
			EnvVar: "RETENTION_FACTOR_PROPERTY",
			Usage:  "The node property that holds the retention factor of each node",
		},
		cli.StringFlag{
			Name:   "weight-property",
			EnvVar: "WEIGHT_PROPERTY",
			Usage:  "The relationship property to use as relationship weight",
		},
		cli.StringFlag{
			Name:   "variant",
			Value:  openrank.VariantRecompute.String(),
			EnvVar: "VARIANT",
			Usage:  "The behavior of halted nodes. Supported values are 'recompute' and 'freeze'",
		},
		cli.Float64Flag{
			Name:   "default-retention-factor",
			Value:  0.85,
			EnvVar: "DEFAULT_RETENTION_FACTOR",
			Usage:  "The retention factor for nodes without a retention factor property",
		},
		cli.IntFlag{
			Name:   "num-workers",
			Value:  runtime.NumCPU(),
			EnvVar: "NUM_WORKERS",
			Usage:  "The number of workers to use for calculating OpenRank scores",
		},
		cli.BoolFlag{
			Name:   "atomic-queues",
			EnvVar: "ATOMIC_QUEUES",
			Usage:  "Use lock-free message queues; results may vary in the least significant bits between runs",
		},
		cli.BoolFlag{
			Name:   "diagnostics",
			EnvVar: "DIAGNOSTICS",
			Usage:  "Log progress information after each superstep",
		},
		cli.StringFlag{
			Name:   "mode",
			Value:  "stream",
			EnvVar: "MODE",
			Usage:  "The output mode. Supported values are 'stream' and 'write'",
		},
		cli.BoolFlag{
			Name:   "overwrite",
			EnvVar: "OVERWRITE_PROPERTY",
			Usage:  "Allow write mode to replace an existing node property with the same name as the output property",
		},
		cli.IntFlag{
			Name:   "metrics-port",
			EnvVar: "METRICS_PORT",
			Usage:  "The port for exposing prometheus metrics; 0 disables the metrics endpoint",
		},
	}
	app.Action = runMain
	return app
}

func runMain(appCtx *cli.Context) error {
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	// Start signal watcher
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGHUP)
		defer signal.Stop(sigCh)
		select {
		case s := <-sigCh:
			logger.WithField("signal", s.String()).Infof("shutting down due to signal")
			cancelFn()
		case <-ctx.Done():
		}
	}()

	mode := appCtx.String("mode")
	if mode != "stream" && mode != "write" {
		return xerrors.Errorf("unsupported output mode: %q", mode)
	}

	prog, err := makeProgram(appCtx)
	if err != nil {
		return err
	}
	cfg := makeRunConfig(appCtx)

	if port := appCtx.Int("metrics-port"); port > 0 {
		reg := prometheus.NewRegistry()
		cfg.Observer = metrics.NewCollector(reg)

		metricsListener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			return err
		}
		defer func() { _ = metricsListener.Close() }()

		go func() {
			logger.WithField("port", port).Info("listening for metrics requests")
			srv := &http.Server{Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
			_ = srv.Serve(metricsListener)
		}()
	}

	store, g, err := loadGraph(ctx, appCtx.String("graph"), appCtx.String("cdb-dsn"))
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	res, err := prog.Run(ctx, g, cfg)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"run_id":     res.RunID().String(),
		"state":      res.State().String(),
		"supersteps": res.SuperstepCount(),
	}).Info("OpenRank calculation completed")

	outProp := openrank.OutputProperty(&cfg)
	if mode == "write" {
		if err = writeRanks(ctx, store, g, res, outProp); err != nil {
			return err
		}
		if store != nil {
			return nil
		}
	}
	return streamRanks(appCtx.App.Writer, g, res, outProp)
}

func makeProgram(appCtx *cli.Context) (*openrank.Program, error) {
	variant, err := openrank.ParseVariant(appCtx.String("variant"))
	if err != nil {
		return nil, err
	}

	cfg := openrank.Default()
	cfg.Variant = variant
	cfg.DefaultRetentionFactor = appCtx.Float64("default-retention-factor")
	return openrank.New(cfg)
}

func makeRunConfig(appCtx *cli.Context) bspgraph.Config {
	cfg := bspgraph.Config{
		MaxIterations:              appCtx.Int("max-iterations"),
		Tolerance:                  appCtx.Float64("tolerance"),
		EnableDiagnostics:          appCtx.Bool("diagnostics"),
		OutputPropertySuffix:       appCtx.String("suffix"),
		InitValueProperty:          appCtx.String("init-value-property"),
		RetentionFactorProperty:    appCtx.String("retention-factor-property"),
		RelationshipWeightProperty: appCtx.String("weight-property"),
		AllowPropertyOverwrite:     appCtx.Bool("overwrite"),
		ComputeWorkers:             appCtx.Int("num-workers"),
		Logger:                     logger,
	}
	if appCtx.Bool("atomic-queues") {
		cfg.QueueFactory = message.NewAtomicQueue
	}
	return cfg
}

// loadGraph materializes the input graph either from a YAML document or from
// a CockroachDB store. The returned store is nil when the graph is loaded
// from a file.
func loadGraph(ctx context.Context, graphFile, dsn string) (*cdb.CockroachDBGraph, *memory.Graph, error) {
	switch {
	case graphFile != "" && dsn != "":
		return nil, nil, xerrors.Errorf("only one of --graph and --cdb-dsn may be specified")
	case graphFile != "":
		g, err := file.LoadFile(graphFile)
		return nil, g, err
	case dsn != "":
		store, err := cdb.NewCockroachDBGraph(dsn)
		if err != nil {
			return nil, nil, err
		}
		g, err := store.Load(ctx)
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, g, nil
	default:
		return nil, nil, xerrors.Errorf("graph source must be specified with --graph or --cdb-dsn")
	}
}

// writeRanks persists the computed ranks as a node property. Ranks are
// written to the store if one is provided and to g otherwise.
func writeRanks(ctx context.Context, store *cdb.CockroachDBGraph, g *memory.Graph, res *bspgraph.Result, property string) error {
	names := g.Names()
	values := make(map[string]float64, len(names))
	err := res.ForEachNode(property, func(id int, rank float64) error {
		if store == nil {
			return g.SetNodeProperty(id, property, rank)
		}
		values[names[id]] = rank
		return nil
	})
	if err != nil || store == nil {
		return err
	}

	if err = store.WriteNodeProperty(ctx, property, values); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"property": property,
		"nodes":    len(values),
	}).Info("persisted OpenRank scores")
	return nil
}

// streamRanks writes one "name<TAB>rank" line per node ordered by node name.
func streamRanks(w io.Writer, g *memory.Graph, res *bspgraph.Result, property string) error {
	type entry struct {
		name string
		rank float64
	}

	names := g.Names()
	entries := make([]entry, 0, len(names))
	err := res.ForEachNode(property, func(id int, rank float64) error {
		entries = append(entries, entry{name: names[id], rank: rank})
		return nil
	})
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%.6f\n", e.name, e.rank); err != nil {
			return err
		}
	}
	return nil
}
