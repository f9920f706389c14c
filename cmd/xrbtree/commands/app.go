package commands

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"

	"github.com/benz9527/xrbtree/internal/config"
	"github.com/benz9527/xrbtree/lib/xlog"
	"github.com/benz9527/xrbtree/observability"
)

type configPath string

// appEnv is what the subcommands pull out of the fx container.
type appEnv struct {
	cfg     *config.Config
	logger  xlog.XLogger
	metrics *observability.Metrics
	stop    func(ctx context.Context) error
}

// startApp wires the config, logger and metrics, then runs the start hooks.
// The caller must invoke env.stop to flush the metrics and the logger.
func startApp(ctx context.Context, path string) (*appEnv, error) {
	env := &appEnv{}
	app := fx.New(
		fx.Supply(configPath(path)),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideMetrics,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(syncLoggerOnStop),
		fx.Populate(&env.cfg, &env.logger, &env.metrics),
	)
	if err := app.Err(); err != nil {
		return nil, err
	}
	if err := app.Start(ctx); err != nil {
		return nil, fmt.Errorf("start xrbtree: %w", err)
	}
	env.stop = app.Stop
	return env, nil
}

func provideConfig(path configPath) (*config.Config, error) {
	return config.LoadConfig(string(path))
}

func provideLogger(cfg *config.Config) xlog.XLogger {
	return xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.ParseLogLevel(cfg.Log.Level)),
		xlog.WithXLoggerEncoder(xlog.ParseLogEncoder(cfg.Log.Encoder)),
		xlog.WithXLoggerWriter(xlog.ParseLogWriter(cfg.Log.Writer)),
	)
}

func syncLoggerOnStop(lc fx.Lifecycle, logger xlog.XLogger) {
	lc.Append(fx.StopHook(func() {
		// Syncing a terminal fails on some platforms, nothing to recover.
		_ = logger.Sync()
	}))
}

func provideMetrics(lc fx.Lifecycle, cfg *config.Config, logger xlog.XLogger) (*observability.Metrics, error) {
	exporter, err := observability.ParseMetricsExporterType(cfg.Metrics.Exporter)
	if err != nil {
		return nil, err
	}
	metrics, err := observability.InitMetrics(exporter,
		observability.WithMetricsInterval(cfg.Metrics.Interval),
	)
	if err != nil {
		return nil, err
	}

	var server *observability.MetricsServer
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if metrics.Exporter() == observability.NoneExporter {
				return nil
			}
			if err := observability.InitAppStats("cli"); err != nil {
				return err
			}
			if handler := metrics.Handler(); handler != nil {
				var serveErr error
				server, serveErr = observability.NewMetricsServer(cfg.Metrics.Addr, handler, logger.Named("Metrics"))
				return serveErr
			}
			return nil
		},
		OnStop: func(ctx context.Context) (err error) {
			if server != nil {
				err = multierr.Append(err, server.Close(ctx))
			}
			return multierr.Append(err, metrics.Shutdown(ctx))
		},
	})
	return metrics, nil
}
