package tree

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	RBTreeStatsName = "xrbtree/rbtree"
)

type fixupCase string

const (
	insertFixupUncleRed      fixupCase = "uncle-red"
	insertFixupInnerChild    fixupCase = "inner-grandchild"
	insertFixupOuterChild    fixupCase = "outer-grandchild"
	removeFixupSiblingRed    fixupCase = "sibling-red"
	removeFixupNephewsBlack  fixupCase = "nephews-black"
	removeFixupNearNephewRed fixupCase = "near-nephew-red"
	removeFixupFarNephewRed  fixupCase = "far-nephew-red"
)

var (
	rotateLeftAttrs  = metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.rotate.direction", Left.String())))
	rotateRightAttrs = metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.rotate.direction", Right.String())))
)

// All methods are nil safe, a tree without stats holds a nil pointer.
type rbTreeStats struct {
	mutationCounter atomic.Int64
	rotationCounter atomic.Int64
	size            metric.Int64UpDownCounter
	rotations       metric.Int64Counter
	insertFixups    metric.Int64Counter
	removeFixups    metric.Int64Counter
	duplicates      metric.Int64Counter
	misses          metric.Int64Counter
	rotationRatio   metric.Float64ObservableGauge
}

func (stats *rbTreeStats) RecordSize(delta int64) {
	if stats == nil {
		return
	}
	stats.size.Add(context.Background(), delta)
	stats.mutationCounter.Add(1)
}

// RecordRelease drops the released nodes from the size only, a teardown
// is not a mutation.
func (stats *rbTreeStats) RecordRelease(size int64) {
	if stats == nil || size == 0 {
		return
	}
	stats.size.Add(context.Background(), -size)
}

func (stats *rbTreeStats) IncreaseRotation(dir RBDirection) {
	if stats == nil {
		return
	}
	as := rotateLeftAttrs
	if dir == Right {
		as = rotateRightAttrs
	}
	stats.rotations.Add(context.Background(), 1, as)
	stats.rotationCounter.Add(1)
}

func (stats *rbTreeStats) IncreaseInsertFixup(c fixupCase) {
	if stats == nil {
		return
	}
	stats.insertFixups.Add(context.Background(), 1, fixupAttrs(c))
}

func (stats *rbTreeStats) IncreaseRemoveFixup(c fixupCase) {
	if stats == nil {
		return
	}
	stats.removeFixups.Add(context.Background(), 1, fixupAttrs(c))
}

func (stats *rbTreeStats) IncreaseDuplicate() {
	if stats == nil {
		return
	}
	stats.duplicates.Add(context.Background(), 1)
}

func (stats *rbTreeStats) IncreaseMiss() {
	if stats == nil {
		return
	}
	stats.misses.Add(context.Background(), 1)
}

func fixupAttrs(c fixupCase) metric.MeasurementOption {
	return metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.fixup.case", string(c))))
}

func rbTreeMeter(name string) metric.Meter {
	meterName := RBTreeStatsName
	if len(name) > 0 {
		meterName = fmt.Sprintf("%s/%s", RBTreeStatsName, name)
	}
	return otel.Meter(meterName)
}

func newRBTreeStats(meter metric.Meter) *rbTreeStats {
	stats := &rbTreeStats{
		size: lo.Must[metric.Int64UpDownCounter](meter.
			Int64UpDownCounter(
				"rbtree.size",
				metric.WithDescription("The number of keys in the rbtree."),
			),
		),
		rotations: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"rbtree.rotations",
				metric.WithDescription("The number of rotations by direction."),
			),
		),
		insertFixups: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"rbtree.insert.fixups",
				metric.WithDescription("The number of insert rebalance steps by case."),
			),
		),
		removeFixups: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"rbtree.remove.fixups",
				metric.WithDescription("The number of remove rebalance steps by case."),
			),
		),
		duplicates: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"rbtree.insert.duplicates",
				metric.WithDescription("The number of rejected duplicate inserts."),
			),
		),
		misses: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"rbtree.remove.misses",
				metric.WithDescription("The number of removes of absent keys."),
			),
		),
	}
	stats.rotationRatio = lo.Must[metric.Float64ObservableGauge](meter.
		Float64ObservableGauge(
			"rbtree.rotations.per.mutation",
			metric.WithDescription("The average rotations of each insert or remove."),
			metric.WithFloat64Callback(func(ctx context.Context, ob metric.Float64Observer) error {
				ratio := 0.0
				if mutations := stats.mutationCounter.Load(); mutations > 0 {
					ratio = float64(stats.rotationCounter.Load()) / float64(mutations)
				}
				ob.Observe(ratio)
				return nil
			}),
		),
	)
	return stats
}
