package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/signalsfoundry/cellular-simulator/internal/config"
	"github.com/signalsfoundry/cellular-simulator/internal/logging"
	"github.com/signalsfoundry/cellular-simulator/internal/observability"
	"github.com/signalsfoundry/cellular-simulator/internal/sim"
	"github.com/signalsfoundry/cellular-simulator/model"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.close(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Fatal Error: %v\n", err)
		return 1
	}
	return 0
}

// app carries the state shared by every subcommand.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath  string
	overhead    int
	logLevel    string
	logFormat   string
	metricsFile string
	metricsAddr string

	cfg       *config.Config
	log       logging.Logger
	collector *observability.SimulationCollector

	shutdownTracing func(context.Context) error
	metricsSrv      *http.Server
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "cellsim",
		Short: "Cellular generation capacity simulator",
		Long: `cellsim models 2G, 3G, 4G and 5G cell towers as capacity arithmetic.

Each tower derives its channel count from fixed bandwidth constants, fills
every channel slot with synthetic users, and reports how many cellular cores
would be needed to carry their messages.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	flags.IntVar(&a.overhead, "overhead", 0, "core overhead in extra messages per 100 messages")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the command")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus /metrics on this address while the command runs")

	root.AddCommand(
		newRunCmd(a),
		newTowerCmd(a),
		newCompareCmd(a),
		newMenuCmd(a),
		newProfilesCmd(a),
	)
	return root
}

// setup loads configuration, applies flag overrides and wires logging,
// metrics and tracing.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("overhead") {
		cfg.Simulation.OverheadPercent = a.overhead
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = a.logFormat
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.Textfile = a.metricsFile
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = a.metricsAddr
	}
	cfg.Tracing = observability.TracingConfigFromEnv(cfg.Tracing)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log = logging.New(logging.ConfigFromEnv(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Backend: cfg.Logging.Backend,
		Output:  a.stderr,
	}))

	ctx := cmd.Context()
	a.collector, err = observability.NewSimulationCollector(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("failed to initialise metrics collector: %w", err)
	}
	if cfg.Metrics.Addr != "" {
		a.metricsSrv = serveMetrics(ctx, cfg.Metrics.Addr, a.collector, a.log)
	}

	tracingCfg := cfg.Tracing
	tracingCfg.Writer = a.stderr
	a.shutdownTracing, err = observability.InitTracing(ctx, tracingCfg, a.log)
	if err != nil {
		return fmt.Errorf("failed to initialise tracing: %w", err)
	}
	return nil
}

// close flushes metrics and traces. It is safe to call when setup never ran.
func (a *app) close(ctx context.Context) {
	if a.log == nil {
		return
	}
	if a.cfg != nil && a.cfg.Metrics.Textfile != "" {
		if err := a.collector.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			a.log.Warn(ctx, "failed to write metrics textfile", logging.Err(err))
		}
	}
	observability.ShutdownWithTimeout(context.WithoutCancel(ctx), a.shutdownTracing, a.log)

	if a.metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = a.metricsSrv.Shutdown(shutdownCtx)
	}
	_ = logging.Sync(a.log)
}

// simulator builds a Simulator from the effective config.
func (a *app) simulator(extra ...sim.Option) (*sim.Simulator, error) {
	profiles, err := a.cfg.TowerProfiles()
	if err != nil {
		return nil, err
	}
	opts := []sim.Option{
		sim.WithProfiles(profiles),
		sim.WithOverhead(a.cfg.Simulation.OverheadPercent),
		sim.WithPrompter(a.configuredAntennas()),
		sim.WithOutput(a.stdout),
		sim.WithErrorOutput(a.stderr),
		sim.WithLogger(a.log),
		sim.WithMetrics(a.collector),
	}
	return sim.New(append(opts, extra...)...), nil
}

func (a *app) configuredAntennas() sim.FixedAntennas {
	fixed := sim.FixedAntennas{}
	for _, gen := range model.Generations() {
		if n := a.cfg.Antennas(gen); n != 0 {
			fixed[gen] = n
		}
	}
	return fixed
}

func serveMetrics(ctx context.Context, addr string, collector *observability.SimulationCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(ctx, "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(ctx, "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
