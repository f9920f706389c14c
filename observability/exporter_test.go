package observability

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/benz9527/xrbtree/lib/xlog"
)

func TestParseMetricsExporterType(t *testing.T) {
	type testcase struct {
		name     string
		input    string
		expected MetricsExporterType
		err      error
	}
	testcases := []testcase{
		{name: "empty", input: "", expected: NoneExporter},
		{name: "none", input: "none", expected: NoneExporter},
		{name: "console upper", input: " CONSOLE ", expected: ConsoleExporter},
		{name: "prometheus", input: "prometheus", expected: PrometheusExporter},
		{name: "unknown", input: "statsd", expected: NoneExporter, err: ErrUnknownMetricsExporter},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			typ, err := ParseMetricsExporterType(tc.input)
			if tc.err != nil {
				require.ErrorIs(tt, err, tc.err)
			} else {
				require.NoError(tt, err)
			}
			require.Equal(tt, tc.expected, typ)
		})
	}
}

func TestInitMetrics_None(t *testing.T) {
	m, err := InitMetrics(NoneExporter)
	require.NoError(t, err)
	require.Nil(t, m.Handler())
	require.NoError(t, m.Shutdown(context.Background()))

	var nilMetrics *Metrics
	require.Equal(t, NoneExporter, nilMetrics.Exporter())
	require.NoError(t, nilMetrics.Shutdown(context.Background()))

	_, err = InitMetrics("statsd")
	require.ErrorIs(t, err, ErrUnknownMetricsExporter)
}

func TestInitMetrics_Console(t *testing.T) {
	buf := &bytes.Buffer{}
	m, err := InitMetrics(ConsoleExporter, WithMetricsWriter(buf))
	require.NoError(t, err)
	require.Equal(t, ConsoleExporter, m.Exporter())

	counter, err := otel.Meter("xrbtree/test").Int64Counter("test.console.count")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	// Shutdown flushes the periodic reader.
	require.NoError(t, m.Shutdown(context.Background()))
	require.Contains(t, buf.String(), "test.console.count")
}

func TestInitMetrics_Prometheus(t *testing.T) {
	m, err := InitMetrics(PrometheusExporter)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.Shutdown(context.Background())
	})
	require.NotNil(t, m.Handler())

	counter, err := otel.Meter("xrbtree/test").Int64Counter("test.prometheus.count")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	body := rec.Body.String()
	require.Contains(t, body, "target_info")
	require.Contains(t, body, "test_prometheus_count")
}

func TestMetricsServer(t *testing.T) {
	m, err := InitMetrics(PrometheusExporter)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.Shutdown(context.Background())
	})

	logger := xlog.NewXLogger(xlog.WithXLoggerWriter(xlog.StdErr), xlog.WithXLoggerLevel(xlog.LogLevelError))
	srv, err := NewMetricsServer("127.0.0.1:0", m.Handler(), logger)
	require.NoError(t, err)

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "target_info")

	require.NoError(t, srv.Close(context.Background()))

	_, err = NewMetricsServer("127.0.0.1:0", nil, logger)
	require.ErrorIs(t, err, ErrNilMetricsHandler)
}

func TestInitAppStats(t *testing.T) {
	m, err := InitMetrics(PrometheusExporter)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.Shutdown(context.Background())
	})

	require.NoError(t, InitAppStats("test"))
	require.NotNil(t, appStats)
	// Only the first call registers.
	require.NoError(t, InitAppStats("again"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Contains(t, rec.Body.String(), "app_core_goroutines")
}
