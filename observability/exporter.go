package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type ObservabilityErr string

func (err ObservabilityErr) Error() string {
	return string(err)
}

const (
	ErrUnknownMetricsExporter ObservabilityErr = "[observability] unknown metrics exporter"
	ErrNilMetricsHandler      ObservabilityErr = "[observability] nil metrics handler"
)

type MetricsExporterType string

const (
	NoneExporter       MetricsExporterType = "none"
	ConsoleExporter    MetricsExporterType = "console"
	PrometheusExporter MetricsExporterType = "prometheus"
)

func ParseMetricsExporterType(exporter string) (MetricsExporterType, error) {
	switch typ := MetricsExporterType(strings.ToLower(strings.TrimSpace(exporter))); typ {
	case "":
		return NoneExporter, nil
	case NoneExporter, ConsoleExporter, PrometheusExporter:
		return typ, nil
	default:
	}
	return NoneExporter, fmt.Errorf("%w: %q", ErrUnknownMetricsExporter, exporter)
}

// Metrics owns the global meter provider installed by InitMetrics.
type Metrics struct {
	exporter MetricsExporterType
	handler  http.Handler
	shutdown func(ctx context.Context) error
}

func (m *Metrics) Exporter() MetricsExporterType {
	if m == nil {
		return NoneExporter
	}
	return m.exporter
}

// Handler serves the scrape endpoint, nil unless the exporter is prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return nil
	}
	return m.handler
}

// Shutdown flushes the pending metrics.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.shutdown == nil {
		return nil
	}
	return m.shutdown(ctx)
}

type metricsCfg struct {
	interval time.Duration
	timeout  time.Duration
	writer   io.Writer
}

type MetricsOpt func(*metricsCfg)

func WithMetricsInterval(interval time.Duration) MetricsOpt {
	return func(cfg *metricsCfg) {
		if interval > 0 {
			cfg.interval = interval
		}
	}
}

func WithMetricsTimeout(timeout time.Duration) MetricsOpt {
	return func(cfg *metricsCfg) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithMetricsWriter redirects the console exporter output, stderr by default.
func WithMetricsWriter(w io.Writer) MetricsOpt {
	return func(cfg *metricsCfg) {
		if w != nil {
			cfg.writer = w
		}
	}
}

// InitMetrics installs the global otel meter provider backed by the exporter.
func InitMetrics(exporter MetricsExporterType, opts ...MetricsOpt) (*Metrics, error) {
	cfg := &metricsCfg{
		interval: 10 * time.Second,
		timeout:  5 * time.Second,
		writer:   os.Stderr,
	}
	for _, o := range opts {
		o(cfg)
	}

	m := &Metrics{exporter: exporter}
	switch exporter {
	case NoneExporter:
		return m, nil
	case ConsoleExporter:
		shutdown, err := newConsoleMetricsExporter(cfg.interval, cfg.timeout,
			stdoutmetric.WithWriter(cfg.writer),
		)
		if err != nil {
			return nil, fmt.Errorf("create console exporter: %w", err)
		}
		m.shutdown = shutdown
	case PrometheusExporter:
		handler, shutdown, err := newPrometheusMetricsExporter()
		if err != nil {
			return nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		m.handler, m.shutdown = handler, shutdown
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetricsExporter, exporter)
	}
	return m, nil
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (func(ctx context.Context) error, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	callback := mp.Shutdown
	otel.SetMeterProvider(mp)
	return callback, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
// Each call owns an independent registry, so it is safe to call repeatedly.
func newPrometheusMetricsExporter() (http.Handler, func(ctx context.Context) error, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	callback := mp.Shutdown
	otel.SetMeterProvider(mp)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), callback, nil
}
