// Package harness replays workloads against ordered-set backends, either to
// time them or to check that they stay consistent with each other.
package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/bstset/internal/engines"
	"github.com/Sumatoshi-tech/bstset/internal/observability"
	"github.com/Sumatoshi-tech/bstset/internal/workload"
	"github.com/Sumatoshi-tech/bstset/pkg/arena"
	"github.com/Sumatoshi-tech/bstset/pkg/orderedset"
)

const tracerName = "github.com/Sumatoshi-tech/bstset/internal/harness"

// ErrNoRounds is returned when a bench is asked for fewer than one round.
var ErrNoRounds = errors.New("at least one round is required")

// arenaBacked is implemented by sets whose nodes live in an arena.
type arenaBacked interface {
	Allocator() *arena.Allocator[int32]
}

// Replay applies ops to set and discards the results. Checkpoints are ignored.
func Replay(set orderedset.Set[int32], ops []workload.Op) {
	for _, op := range ops {
		switch op.Kind {
		case workload.KindInsert:
			set.Insert(op.Elem)
		case workload.KindRemove:
			set.Remove(op.Elem)
		case workload.KindContains:
			set.Contains(op.Elem)
		case workload.KindCheckpoint:
		}
	}
}

// Time replays ops against a fresh set and returns the elapsed wall time.
func Time(factory orderedset.Factory[int32], ops []workload.Op) time.Duration {
	elapsed, _ := timeRound(factory, ops)

	return elapsed
}

func timeRound(factory orderedset.Factory[int32], ops []workload.Op) (time.Duration, orderedset.Set[int32]) {
	start := time.Now()
	set := factory()
	Replay(set, ops)

	return time.Since(start), set
}

// Result summarizes the rounds of one backend.
type Result struct {
	Backend    string
	Ops        int
	Rounds     int
	Min        time.Duration
	Mean       time.Duration
	Len        int
	ArenaSlots int
}

// OpsPerSecond is the throughput of the fastest round.
func (r Result) OpsPerSecond() float64 {
	if r.Min <= 0 {
		return 0
	}

	return float64(r.Ops) / r.Min.Seconds()
}

// BenchOptions tunes Bench.
type BenchOptions struct {
	Rounds  int
	Metrics *observability.HarnessMetrics
	Logger  *slog.Logger
}

// Bench times every backend over opts.Rounds fresh replays of ops.
func Bench(ctx context.Context, backends []engines.Backend, ops []workload.Op, opts BenchOptions) ([]Result, error) {
	if opts.Rounds < 1 {
		return nil, ErrNoRounds
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := otel.Tracer(tracerName)
	results := make([]Result, 0, len(backends))

	for _, backend := range backends {
		result, err := benchBackend(ctx, tracer, backend, ops, opts)
		if err != nil {
			return results, err
		}

		logger.InfoContext(ctx, "bench backend done",
			"backend", backend.Name,
			"rounds", result.Rounds,
			"min", result.Min,
			"mean", result.Mean,
		)

		results = append(results, result)
	}

	return results, nil
}

func benchBackend(
	ctx context.Context, tracer trace.Tracer, backend engines.Backend, ops []workload.Op, opts BenchOptions,
) (Result, error) {
	ctx, span := tracer.Start(ctx, "harness.bench",
		trace.WithAttributes(
			attribute.String("backend", backend.Name),
			attribute.Int("ops", len(ops)),
			attribute.Int("rounds", opts.Rounds),
		))
	defer span.End()

	result := Result{Backend: backend.Name, Ops: len(ops), Rounds: opts.Rounds}

	var total time.Duration

	for round := range opts.Rounds {
		err := ctx.Err()
		if err != nil {
			return result, fmt.Errorf("bench %s round %d: %w", backend.Name, round, err)
		}

		var done func()
		if opts.Metrics != nil {
			done = opts.Metrics.TrackRound(ctx, backend.Name)
		}

		elapsed, set := timeRound(backend.New, ops)

		if done != nil {
			done()
			opts.Metrics.RecordRound(ctx, backend.Name, len(ops), elapsed)
		}

		total += elapsed
		if round == 0 || elapsed < result.Min {
			result.Min = elapsed
		}

		if sizer, ok := set.(orderedset.Sizer); ok {
			result.Len = sizer.Len()
		}

		if backed, ok := set.(arenaBacked); ok {
			result.ArenaSlots = backed.Allocator().Size()
		}
	}

	result.Mean = total / time.Duration(opts.Rounds)

	if opts.Metrics != nil && result.ArenaSlots > 0 {
		opts.Metrics.RecordArenaSlots(ctx, backend.Name, result.ArenaSlots)
	}

	return result, nil
}
