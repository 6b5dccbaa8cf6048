package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricOpsTotal         = "bstset.ops.total"
	metricRoundDuration    = "bstset.round.duration.seconds"
	metricRoundsInflight   = "bstset.rounds.inflight"
	metricCheckpointsTotal = "bstset.checkpoints.total"
	metricArenaSlots       = "bstset.arena.slots"

	attrBackend = "backend"
	attrStatus  = "status"

	// StatusOK labels a consistent checkpoint.
	StatusOK = "ok"
	// StatusMismatch labels a failed checkpoint.
	StatusMismatch = "mismatch"
)

// roundBucketBoundaries covers 100us to 60s, the range of one replay of a
// workload between a few hundred and a few million ops.
var roundBucketBoundaries = []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// HarnessMetrics holds the OTel instruments recorded by the bench and
// cross-check harnesses.
type HarnessMetrics struct {
	opsTotal         metric.Int64Counter
	roundDuration    metric.Float64Histogram
	roundsInflight   metric.Int64UpDownCounter
	checkpointsTotal metric.Int64Counter
	arenaSlots       metric.Int64Gauge
}

// NewHarnessMetrics creates harness instruments from the given meter.
func NewHarnessMetrics(mt metric.Meter) (*HarnessMetrics, error) {
	var (
		hm   HarnessMetrics
		errs [5]error
	)

	hm.opsTotal, errs[0] = mt.Int64Counter(metricOpsTotal,
		metric.WithDescription("Set operations replayed by the bench harness"), metric.WithUnit("{op}"))
	hm.roundDuration, errs[1] = mt.Float64Histogram(metricRoundDuration,
		metric.WithDescription("Wall time of one workload replay"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(roundBucketBoundaries...))
	hm.roundsInflight, errs[2] = mt.Int64UpDownCounter(metricRoundsInflight,
		metric.WithDescription("Replays in progress"), metric.WithUnit("{round}"))
	hm.checkpointsTotal, errs[3] = mt.Int64Counter(metricCheckpointsTotal,
		metric.WithDescription("Cross-check checkpoints by outcome"), metric.WithUnit("{checkpoint}"))
	hm.arenaSlots, errs[4] = mt.Int64Gauge(metricArenaSlots,
		metric.WithDescription("Slots held by an arena allocator after a replay"), metric.WithUnit("{slot}"))

	err := errors.Join(errs[:]...)
	if err != nil {
		return nil, fmt.Errorf("create harness instruments: %w", err)
	}

	return &hm, nil
}

// RecordRound records one completed replay of ops operations against backend.
func (hm *HarnessMetrics) RecordRound(ctx context.Context, backend string, ops int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrBackend, backend))

	hm.opsTotal.Add(ctx, int64(ops), attrs)
	hm.roundDuration.Record(ctx, duration.Seconds(), attrs)
}

// TrackRound increments the in-flight gauge and returns a function to decrement it.
func (hm *HarnessMetrics) TrackRound(ctx context.Context, backend string) func() {
	attrs := metric.WithAttributes(attribute.String(attrBackend, backend))
	hm.roundsInflight.Add(ctx, 1, attrs)

	return func() {
		hm.roundsInflight.Add(ctx, -1, attrs)
	}
}

// RecordCheckpoint counts one cross-check checkpoint with its outcome.
func (hm *HarnessMetrics) RecordCheckpoint(ctx context.Context, status string) {
	hm.checkpointsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
}

// RecordArenaSlots records the slot count of the arena behind backend.
func (hm *HarnessMetrics) RecordArenaSlots(ctx context.Context, backend string, slots int) {
	hm.arenaSlots.Record(ctx, int64(slots), metric.WithAttributes(attribute.String(attrBackend, backend)))
}
