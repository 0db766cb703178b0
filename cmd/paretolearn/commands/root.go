// Package commands implements the paretolearn subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/paretolearn/pkg/config"
	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/learn"
	"github.com/Sumatoshi-tech/paretolearn/pkg/observability"
	"github.com/Sumatoshi-tech/paretolearn/pkg/oracle"
	"github.com/Sumatoshi-tech/paretolearn/pkg/version"
)

const (
	metricsPath           = "/metrics"
	metricsReadTimeout    = 5 * time.Second
	metricsShutdownPeriod = 2 * time.Second
)

// flagKeys maps command flags to the config keys they override. A flag is
// bound only on the command that defines it.
var flagKeys = map[string]string{
	"log-level":     "observability.log_level",
	"log-json":      "observability.log_json",
	"metrics-addr":  "observability.metrics_addr",
	"otlp-endpoint": "observability.otlp_endpoint",
	"precision":     "geometry.precision",
	"epsilon":       "learner.epsilon",
	"delta":         "learner.delta",
	"max-steps":     "learner.max_steps",
	"opt-level":     "learner.opt_level",
	"parallel":      "learner.parallel",
	"workers":       "learner.workers",
	"simplify":      "learner.simplify",
	"logging":       "learner.logging",
	"log-dir":       "learner.log_dir",
	"query-cache":   "learner.query_cache",
	"compression":   "output.compression",
	"p0":            "mining.p0",
	"alpha":         "mining.alpha",
	"num-cells":     "mining.num_cells",
	"success-ratio": "mining.success_ratio",
	"adaptive":      "mining.adaptive",
	"seed":          "mining.seed",
}

// app is the state shared by the subcommands of one invocation.
type app struct {
	viper     *viper.Viper
	cfgPath   string
	cfg       *config.Config
	providers observability.Providers
	metrics   *http.Server
}

// NewRootCommand builds the paretolearn command tree.
func NewRootCommand() *cobra.Command {
	a := &app{viper: viper.New()}

	root := &cobra.Command{
		Use:   "paretolearn",
		Short: "Learn the boundary of monotone predicates over boxes",
		Long: `paretolearn partitions an n-dimensional box into the region where a
monotone predicate holds, the region where it fails, and an undecided
border of width epsilon around the Pareto front.

Commands:
  search     learn the upward closure of a point set
  intersect  learn where an upward and a downward predicate both hold
  mine       classify grid cells by sampling
  summary    report the volumes of result bundles
  champion   compare result bundles`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "config file (default is ./.paretolearn.yaml or $HOME/.paretolearn.yaml)")
	flags.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn or error")
	flags.Bool("log-json", config.DefaultLogJSON, "write logs as JSON")
	flags.String("metrics-addr", config.DefaultMetricsAddr, "serve Prometheus metrics on this address")
	flags.String("otlp-endpoint", config.DefaultOTLPEndpoint, "OTLP gRPC collector address")
	flags.Int("precision", config.DefaultPrecision, "decimal digits kept by point arithmetic (negative for full precision)")

	root.AddCommand(
		a.searchCommand(),
		a.intersectCommand(),
		a.mineCommand(),
		a.summaryCommand(),
		a.championCommand(),
		versionCommand(),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var bindErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			bindErr = errors.Join(bindErr, a.viper.BindPFlag(key, f))
		}
	})

	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	cfg, err := config.LoadWith(a.viper, a.cfgPath)
	if err != nil {
		return err
	}

	a.cfg = cfg
	geom.SetPrecision(cfg.Geometry.Precision)

	telemetry := cfg.Telemetry(version.Version)
	telemetry.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))

	providers, err := observability.InitWithWriter(telemetry, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	a.providers = providers

	if cfg.Observability.MetricsAddr != "" && providers.MetricsHandler != nil {
		return a.serveMetrics(cfg.Observability.MetricsAddr)
	}

	return nil
}

func (a *app) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, a.providers.MetricsHandler)

	a.metrics = &http.Server{Handler: mux, ReadHeaderTimeout: metricsReadTimeout}

	go func() {
		serveErr := a.metrics.Serve(ln)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			a.providers.Logger.Error("metrics server failed", "error", serveErr)
		}
	}()

	a.providers.Logger.Info("serving metrics", "addr", ln.Addr().String(), "path", metricsPath)

	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownPeriod)
	defer cancel()

	var errs []error

	if a.metrics != nil {
		errs = append(errs, a.metrics.Shutdown(ctx))
	}

	if a.providers.Shutdown != nil {
		errs = append(errs, a.providers.Shutdown(ctx))
	}

	return errors.Join(errs...)
}

// learnOptions returns the configured learner options wired to the
// observability providers.
func (a *app) learnOptions() learn.Options {
	opts := a.cfg.LearnOptions()
	a.instrument(&opts)

	return opts
}

func (a *app) mineOptions() learn.MineOptions {
	opts := a.cfg.MineOptions()
	a.instrument(&opts.Options)

	return opts
}

// cached wraps o with the configured query cache.
func (a *app) cached(o oracle.Oracle) oracle.Oracle {
	return oracle.NewCached(o, a.cfg.Learner.QueryCache)
}

func (a *app) instrument(opts *learn.Options) {
	opts.Logger = a.providers.Logger
	opts.Tracer = a.providers.Tracer
	opts.Metrics = a.providers.Metrics
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "paretolearn %s\n", version.String())
		},
	}
}
