package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/neuronbridge/adapter"
	"github.com/sarchlab/neuronbridge/chunk"
	"github.com/sarchlab/neuronbridge/config"
	"github.com/sarchlab/neuronbridge/datarecording"
	"github.com/sarchlab/neuronbridge/engine"
	"github.com/sarchlab/neuronbridge/monitoring"
	"github.com/sarchlab/neuronbridge/result"
	"github.com/sarchlab/neuronbridge/simulation"
	"github.com/sarchlab/neuronbridge/storage"
	"github.com/sarchlab/neuronbridge/storage/sqlitestore"
	"github.com/sarchlab/neuronbridge/tracing"
)

type runOptions struct {
	workers     int
	record      string
	monitor     bool
	port        int
	openMonitor bool
}

var runCmd = &cobra.Command{
	Use:   "run [simulation...]",
	Short: "Simulate the configured simulations on parallel engine ranks.",
	Long: "`run` prepares the named simulations, all of them when none is " +
		"named, on every rank of an in-process engine and runs them together.",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions{
			workers: cfg.Workers,
			record:  cfg.Record,
			monitor: cfg.Monitor.Enabled,
			port:    cfg.Monitor.Port,
		}

		flags := cmd.Flags()
		if flags.Changed("workers") {
			opts.workers, _ = flags.GetInt("workers")
		}

		if flags.Changed("record") {
			opts.record, _ = flags.GetString("record")
		}

		if flags.Changed("port") {
			opts.port, _ = flags.GetInt("port")
		}

		opts.openMonitor, _ = flags.GetBool("open-monitor")
		if monitor, _ := flags.GetBool("monitor"); monitor || opts.openMonitor {
			opts.monitor = true
		}

		if opts.workers < 1 {
			return fmt.Errorf("workers must be positive, got %d", opts.workers)
		}

		return run(cmd.Context(), args, opts)
	},
}

func init() {
	runCmd.Flags().IntP("workers", "w", 1, "number of engine ranks")
	runCmd.Flags().String("record", "",
		"record the run into this file, with the .sqlite3 extension added")
	runCmd.Flags().Bool("monitor", false, "serve the monitoring API")
	runCmd.Flags().Int("port", 0, "port of the monitoring API")
	runCmd.Flags().Bool("open-monitor", false,
		"serve the monitoring API and open it in a browser")
	rootCmd.AddCommand(runCmd)
}

func selectSimulations(names []string) ([]*config.SimulationConfig, error) {
	if len(names) == 0 {
		if len(cfg.Simulations) == 0 {
			return nil, errors.New("no simulation configured")
		}

		selected := make([]*config.SimulationConfig, len(cfg.Simulations))
		for i := range cfg.Simulations {
			selected[i] = &cfg.Simulations[i]
		}

		return selected, nil
	}

	selected := make([]*config.SimulationConfig, 0, len(names))
	for _, name := range names {
		sc, ok := cfg.Simulation(name)
		if !ok {
			return nil, fmt.Errorf("simulation %q is not configured", name)
		}

		selected = append(selected, sc)
	}

	return selected, nil
}

func buildSimulations(names []string, st storage.Storage) ([]*simulation.Simulation, error) {
	selected, err := selectSimulations(names)
	if err != nil {
		return nil, err
	}

	sims := make([]*simulation.Simulation, len(selected))
	for i, sc := range selected {
		sims[i] = sc.Build(st)
	}

	return sims, nil
}

func newAdapters(world *engine.World) []*adapter.NeuronAdapter {
	adapters := make([]*adapter.NeuronAdapter, world.Size())
	for rank := range adapters {
		adapters[rank] = adapter.MakeBuilder().
			WithEngine(world.Context(rank)).
			Build()
	}

	return adapters
}

func run(ctx context.Context, names []string, opts runOptions) error {
	store, err := sqlitestore.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	sims, err := buildSimulations(names, store)
	if err != nil {
		return err
	}

	if err := reportBalance(ctx, store, opts.workers); err != nil {
		return err
	}

	world := engine.NewWorld(opts.workers)
	adapters := newAdapters(world)
	runID := xid.New().String()

	clock := tracing.NewWallClock()
	prepareTime := tracing.NewTotalTimeTracer(clock, tracing.KindFilter("prepare"))
	for _, a := range adapters {
		tracing.CollectTrace(a, prepareTime)
	}

	var (
		recorder datarecording.DataRecorder
		runLog   *datarecording.RunLog
	)

	if opts.record != "" {
		recorder = datarecording.New(opts.record)
		defer recorder.Close()

		hook := datarecording.NewAllocationRecorder(recorder, runID)
		tracer := tracing.NewDBTracer(clock, recorder)
		for _, a := range adapters {
			a.AcceptHook(hook)
			tracing.CollectTrace(a, tracer)
		}

		runLog = datarecording.NewRunLog(recorder, runID)
		runLog.Start()
		runLog.Set("Network", cfg.DB)
		runLog.Set("Workers", strconv.Itoa(opts.workers))
		runLog.Set("Simulations", simulationNames(sims))
	}

	if opts.monitor {
		if err := startMonitor(adapters, opts); err != nil {
			return err
		}
	}

	results := make([][]*result.Result, len(adapters))

	g, gctx := errgroup.WithContext(ctx)
	for rank, a := range adapters {
		g.Go(func() error {
			r, err := a.Simulate(gctx, sims...)
			results[rank] = r

			return err
		})
	}

	err = g.Wait()

	if recorder != nil {
		if err == nil {
			for rank, r := range results {
				datarecording.RecordResults(recorder, runID, rank, r)
			}
		} else {
			runLog.Set("Error", err.Error())
		}

		runLog.End()
	}

	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"preparations": prepareTime.Count(),
		"seconds":      prepareTime.TotalTime(),
	}).Info("Preparation time summed over the ranks")

	reportResults(results)

	return nil
}

func startMonitor(adapters []*adapter.NeuronAdapter, opts runOptions) error {
	m := monitoring.NewMonitor().WithPortNumber(opts.port)
	for _, a := range adapters {
		m.RegisterAdapter(a)
	}

	url, err := m.StartServer()
	if err != nil {
		return fmt.Errorf("starting monitor: %w", err)
	}

	if opts.openMonitor {
		if err := browser.OpenURL(url + "/api/simulations"); err != nil {
			logrus.WithError(err).Warn("Cannot open the monitor")
		}
	}

	return nil
}

func reportBalance(ctx context.Context, st storage.Storage, workers int) error {
	stats, err := st.ChunkStats(ctx)
	if err != nil {
		return err
	}

	report := chunk.NewAllocation(stats, workers).Balance(stats)

	logrus.WithFields(logrus.Fields{
		"per_rank":  report.PerNode,
		"mean":      report.Mean,
		"stddev":    report.StdDev,
		"imbalance": report.Imbalance,
	}).Info("Outgoing connections per rank")

	return nil
}

func reportResults(results [][]*result.Result) {
	for rank, rs := range results {
		for _, r := range rs {
			samples := 0
			for _, s := range r.Signals() {
				samples += len(s.Values)
			}

			logrus.WithFields(logrus.Fields{
				"simulation": r.Simulation,
				"rank":       rank,
				"signals":    len(r.Signals()),
				"samples":    samples,
			}).Info("Simulation completed")
		}
	}
}

func simulationNames(sims []*simulation.Simulation) string {
	names := make([]string, len(sims))
	for i, s := range sims {
		names[i] = s.Name()
	}

	return strings.Join(names, ",")
}
