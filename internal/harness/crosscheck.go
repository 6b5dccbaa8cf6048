package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/sergi/go-diff/diffmatchpatch"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/bstset/internal/observability"
	"github.com/Sumatoshi-tech/bstset/internal/workload"
	"github.com/Sumatoshi-tech/bstset/pkg/orderedset"
)

// cancelCheckInterval is how many ops run between context checks.
const cancelCheckInterval = 1024

// ErrTooFewSets is returned when fewer than two sets are cross-checked.
var ErrTooFewSets = errors.New("cross-check needs at least two sets")

// Named is a set instance labelled with its backend name.
type Named struct {
	Name string
	Set  orderedset.Set[int32]
}

// hibernator is implemented by sets that can compress their storage.
type hibernator interface {
	Hibernate() error
	Boot() error
}

// CrossCheckOptions tunes CrossCheck.
type CrossCheckOptions struct {
	// HibernateArena round-trips every hibernating set through Hibernate and
	// Boot after each consistent checkpoint.
	HibernateArena bool
	Metrics        *observability.HarnessMetrics
	Logger         *slog.Logger
}

// Stats summarizes a successful cross-check.
type Stats struct {
	Ops          int
	Checkpoints  int
	Hibernations int
	FinalLen     int
}

// MismatchError describes the first disagreement found by CrossCheck.
type MismatchError struct {
	Index     int
	Op        workload.Op
	Backend   string
	Reference string
	Reason    string
	Len       int
	RefLen    int
	SeqDiff   string
	DumpDiff  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("op %d (%s): %s disagrees with %s: %s", e.Index, e.Op, e.Backend, e.Reference, e.Reason)
}

// Details renders the sizes and diffs carried by the error.
func (e *MismatchError) Details() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "sizes: %s=%d %s=%d\n", e.Reference, e.RefLen, e.Backend, e.Len)

	if e.SeqDiff != "" {
		fmt.Fprintf(&sb, "iterated sequence (-%s +%s):\n%s\n", e.Reference, e.Backend, e.SeqDiff)
	}

	if e.DumpDiff != "" {
		fmt.Fprintf(&sb, "tree shape:\n%s\n", e.DumpDiff)
	}

	return sb.String()
}

// CrossCheck applies every op to every set. Insert, Remove and Contains must
// return the same answer from all sets. At each checkpoint every set must
// iterate in strictly ascending order, every iterated element must be
// contained in all sets, and all sets must hold the same number of elements,
// matching Len where a set reports one. The first set is the reference.
func CrossCheck(ctx context.Context, sets []Named, ops []workload.Op, opts CrossCheckOptions) (Stats, error) {
	if len(sets) < 2 {
		return Stats{}, ErrTooFewSets
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "harness.crosscheck",
		trace.WithAttributes(
			attribute.Int("ops", len(ops)),
			attribute.Int("sets", len(sets)),
			attribute.Bool("hibernate", opts.HibernateArena),
		))
	defer span.End()

	chk := &checker{sets: sets, opts: opts, logger: logger}

	stats, err := chk.run(ctx, ops)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cross-check failed")
	}

	return stats, err
}

type checker struct {
	sets   []Named
	opts   CrossCheckOptions
	logger *slog.Logger
	stats  Stats
}

func (chk *checker) run(ctx context.Context, ops []workload.Op) (Stats, error) {
	for idx, op := range ops {
		if idx%cancelCheckInterval == 0 {
			err := ctx.Err()
			if err != nil {
				return chk.stats, fmt.Errorf("cross-check at op %d: %w", idx, err)
			}
		}

		var err error
		if op.Kind == workload.KindCheckpoint {
			err = chk.checkpoint(ctx, idx, op)
		} else {
			err = chk.apply(idx, op)
		}

		if err != nil {
			return chk.stats, err
		}

		chk.stats.Ops++
	}

	chk.stats.FinalLen = countAll(chk.sets[0].Set)

	return chk.stats, nil
}

func applyOne(set orderedset.Set[int32], op workload.Op) bool {
	switch op.Kind {
	case workload.KindInsert:
		return set.Insert(op.Elem)
	case workload.KindRemove:
		return set.Remove(op.Elem)
	case workload.KindContains:
		return set.Contains(op.Elem)
	case workload.KindCheckpoint:
	}

	return false
}

func (chk *checker) apply(idx int, op workload.Op) error {
	ref := chk.sets[0]
	want := applyOne(ref.Set, op)

	for _, named := range chk.sets[1:] {
		got := applyOne(named.Set, op)
		if got != want {
			return chk.mismatch(idx, op, named, fmt.Sprintf("%s returned %t, reference returned %t", op.Kind, got, want))
		}
	}

	return nil
}

func (chk *checker) checkpoint(ctx context.Context, idx int, op workload.Op) error {
	err := chk.verify(idx, op)

	if chk.opts.Metrics != nil {
		status := observability.StatusOK
		if err != nil {
			status = observability.StatusMismatch
		}

		chk.opts.Metrics.RecordCheckpoint(ctx, status)
	}

	if err != nil {
		return err
	}

	chk.stats.Checkpoints++
	chk.logger.DebugContext(ctx, "checkpoint consistent", "op", idx, "len", countAll(chk.sets[0].Set))

	if chk.opts.HibernateArena {
		return chk.roundTrip(idx, op)
	}

	return nil
}

func (chk *checker) verify(idx int, op workload.Op) error {
	refCount := -1

	for _, named := range chk.sets {
		count := 0

		var prev int32

		for elem := range named.Set.All() {
			if count > 0 && elem <= prev {
				return chk.mismatch(idx, op, named, fmt.Sprintf("iteration not strictly ascending: %d after %d", elem, prev))
			}

			for _, other := range chk.sets {
				if !other.Set.Contains(elem) {
					return chk.mismatch(idx, op, other, fmt.Sprintf("%d iterated by %s is not contained", elem, named.Name))
				}
			}

			prev = elem
			count++
		}

		if sizer, ok := named.Set.(orderedset.Sizer); ok && sizer.Len() != count {
			return chk.mismatch(idx, op, named, fmt.Sprintf("Len reports %d, iteration yields %d", sizer.Len(), count))
		}

		if refCount < 0 {
			refCount = count
		} else if count != refCount {
			return chk.mismatch(idx, op, named, fmt.Sprintf("iterates %d elements, reference %d", count, refCount))
		}
	}

	return nil
}

func (chk *checker) roundTrip(idx int, op workload.Op) error {
	for _, named := range chk.sets {
		hib, ok := named.Set.(hibernator)
		if !ok {
			continue
		}

		before := dumpOf(named.Set)

		err := hib.Hibernate()
		if err != nil {
			return fmt.Errorf("hibernate %s at op %d: %w", named.Name, idx, err)
		}

		err = hib.Boot()
		if err != nil {
			return fmt.Errorf("boot %s at op %d: %w", named.Name, idx, err)
		}

		chk.stats.Hibernations++

		after := dumpOf(named.Set)
		if before != after {
			mismatch := chk.mismatch(idx, op, named, "tree shape changed across hibernation")
			mismatch.DumpDiff = prettyDiff(before, after)

			return mismatch
		}
	}

	return nil
}

func (chk *checker) mismatch(idx int, op workload.Op, named Named, reason string) *MismatchError {
	ref := chk.sets[0]
	if named.Name == ref.Name && len(chk.sets) > 1 {
		ref = chk.sets[1]
	}

	refElems := orderedset.Collect(ref.Set)
	elems := orderedset.Collect(named.Set)

	err := &MismatchError{
		Index:     idx,
		Op:        op,
		Backend:   named.Name,
		Reference: ref.Name,
		Reason:    reason,
		Len:       len(elems),
		RefLen:    len(refElems),
		SeqDiff:   cmp.Diff(refElems, elems),
	}

	if other, ok := chk.dumpPeer(named); ok {
		err.DumpDiff = prettyDiff(dumpOf(other.Set), dumpOf(named.Set))
	}

	chk.logger.Error("cross-check mismatch",
		"op", idx,
		"kind", string(op.Kind),
		"elem", op.Elem,
		"backend", named.Name,
		"reference", ref.Name,
		"reason", reason,
	)

	return err
}

// dumpPeer finds another set that can render its shape.
func (chk *checker) dumpPeer(named Named) (Named, bool) {
	if _, ok := named.Set.(orderedset.Dumper); !ok {
		return Named{}, false
	}

	for _, other := range chk.sets {
		if other.Name == named.Name {
			continue
		}

		if _, ok := other.Set.(orderedset.Dumper); ok {
			return other, true
		}
	}

	return Named{}, false
}

func dumpOf(set orderedset.Set[int32]) string {
	dumper, ok := set.(orderedset.Dumper)
	if !ok {
		return ""
	}

	return dumper.Dump()
}

func prettyDiff(before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)

	return dmp.DiffPrettyText(dmp.DiffCleanupSemantic(diffs))
}

func countAll(set orderedset.Set[int32]) int {
	if sizer, ok := set.(orderedset.Sizer); ok {
		return sizer.Len()
	}

	count := 0
	for range set.All() {
		count++
	}

	return count
}
