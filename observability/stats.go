package observability

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	AppStatsName = "xrbtree/app"
)

var (
	once     sync.Once
	appStats *runtimeStats
)

type runtimeStats struct {
	goroutines metric.Int64ObservableUpDownCounter
	processes  metric.Int64ObservableUpDownCounter
}

// InitAppStats registers the process runtime stats on the global meter
// provider once. Call it after InitMetrics.
func InitAppStats(name string) (err error) {
	once.Do(func() {
		builder := &strings.Builder{}
		builder.WriteString(AppStatsName)
		builder.WriteString("/")
		if len(strings.TrimSpace(name)) > 0 {
			builder.WriteString(name)
		} else {
			builder.WriteString("default")
		}
		meter := otel.Meter(
			builder.String(),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		appStats = &runtimeStats{
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.
				Int64ObservableUpDownCounter(
					"app.core.goroutines",
					metric.WithDescription(`The application goroutines' info.`),
					metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
						ob.Observe(int64(runtime.NumGoroutine()))
						return nil
					}),
				),
			),
			processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.
				Int64ObservableUpDownCounter(
					"app.core.processes",
					metric.WithDescription(`The application processes' info.`),
					metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
						ob.Observe(int64(runtime.GOMAXPROCS(0)))
						return nil
					}),
				),
			),
		}
		err = otelruntime.Start(otelruntime.WithMinimumReadMemStatsInterval(time.Second))
	})
	return err
}
