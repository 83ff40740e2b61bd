// Package commands implements the dbkit CLI commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/satishbabariya/dbkit/database"
	"github.com/satishbabariya/dbkit/internal/config"
	"github.com/satishbabariya/dbkit/internal/debug"
	"github.com/satishbabariya/dbkit/internal/ui"
	"github.com/satishbabariya/dbkit/monitor"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath  string
	askPassword bool
	debug       bool
	logLevel    string

	metricsFile   string
	traceEndpoint string

	registry *prometheus.Registry
	tracer   *sdktrace.TracerProvider
}

// NewRootCommand creates the dbkit command tree.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:           "dbkit",
		Short:         "Database toolkit for MySQL, PostgreSQL and SQLite",
		Long:          "dbkit runs SQL scripts against MySQL, PostgreSQL and SQLite, inspects tables and exports or imports schemas and data.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.Out = cmd.OutOrStdout()
			ui.Err = cmd.ErrOrStderr()
			debug.InitWriter(cmd.ErrOrStderr(), g.debug, false)
			if g.logLevel != "" {
				debug.SetLevelFromString(g.logLevel)
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "config file (default .dbkit.yaml)")
	flags.String("driver", "", "database driver ("+fmt.Sprint(database.Drivers())+")")
	flags.String("host", "", "server host, host:port or unix:/path")
	flags.String("user", "", "user name")
	flags.String("database", "", "database name or SQLite file")
	flags.String("prefix", "", "table prefix replacing #__")
	flags.BoolVar(&g.askPassword, "ask-password", false, "prompt for the password")
	flags.BoolVar(&g.debug, "debug", false, "log every statement")
	flags.StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&g.metricsFile, "metrics", "", "write statement metrics to FILE in Prometheus text format on exit")
	flags.StringVar(&g.traceEndpoint, "trace-endpoint", "", "export statement spans to an OTLP/HTTP collector at host:port")

	cmd.AddCommand(
		newSplitCommand(),
		newPrefixCommand(g),
		newExecCommand(g),
		newTablesCommand(g),
		newColumnsCommand(g),
		newDescribeCommand(g),
		newExportCommand(g),
		newImportCommand(g),
		newDriversCommand(),
		newConfigCommand(g),
		newVersionCommand(g),
	)
	return cmd
}

// options loads the configuration with the command line flags applied.
func (g *globals) options(cmd *cobra.Command) (database.Options, error) {
	cfg, err := config.Load(g.configPath, cmd.Flags())
	if err != nil {
		return database.Options{}, err
	}
	if cfg.File != "" {
		debug.Debug("Loaded config", "file", cfg.File)
	}

	opts := cfg.Options
	if g.askPassword && opts.Driver == "sqlite" {
		debug.Warn("SQLite takes no password, ignoring --ask-password")
	} else if g.askPassword {
		prompt := &survey.Password{Message: fmt.Sprintf("Password for %s@%s:", opts.User, opts.Host)}
		if err := survey.AskOne(prompt, &opts.Password); err != nil {
			return database.Options{}, err
		}
	}
	return opts, nil
}

// connect opens a driver for the configured database. The caller closes it.
func (g *globals) connect(ctx context.Context, cmd *cobra.Command) (*database.Driver, error) {
	opts, err := g.options(cmd)
	if err != nil {
		return nil, err
	}

	log := debug.With("driver", opts.Driver)
	mon, err := g.monitor(ctx, log, opts.Driver)
	if err != nil {
		return nil, err
	}
	db, err := database.New(opts,
		database.WithLogger(log),
		database.WithMonitor(mon),
	)
	if err != nil {
		return nil, err
	}
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// monitor chains the statement log with the metrics and tracing monitors
// the flags ask for.
func (g *globals) monitor(ctx context.Context, log *slog.Logger, system string) (database.QueryMonitor, error) {
	monitors := []database.QueryMonitor{monitor.NewLoggingMonitor(log)}

	if g.metricsFile != "" {
		g.registry = prometheus.NewRegistry()
		m, err := monitor.NewPrometheusMonitor(g.registry, "dbkit")
		if err != nil {
			return nil, err
		}
		monitors = append(monitors, m)
	}

	if g.traceEndpoint != "" {
		tp, err := monitor.NewOTLPTracerProvider(ctx, g.traceEndpoint, "dbkit")
		if err != nil {
			return nil, err
		}
		g.tracer = tp
		monitors = append(monitors, monitor.NewTracingMonitor(tp, system))
	}
	return monitor.Chain(monitors...), nil
}

// flush writes the metrics file and sends the buffered spans.
func (g *globals) flush(ctx context.Context) error {
	var errs []error
	if g.registry != nil {
		f, err := os.Create(g.metricsFile)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		} else {
			errs = append(errs, monitor.WriteMetrics(f, g.registry), f.Close())
			debug.Debug("Wrote metrics", "file", g.metricsFile)
		}
	}
	if g.tracer != nil {
		errs = append(errs, g.tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// withDriver runs fn against a connected driver and closes it afterwards.
func (g *globals) withDriver(cmd *cobra.Command, fn func(ctx context.Context, db *database.Driver) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := g.connect(ctx, cmd)
	if err != nil {
		return errors.Join(err, g.flush(ctx))
	}
	defer func() {
		_ = db.Close()
		err = errors.Join(err, g.flush(context.WithoutCancel(ctx)))
	}()
	return fn(ctx, db)
}
