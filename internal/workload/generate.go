package workload

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/btree"
)

// shadowDegree is the degree of the B-tree that mirrors generated contents.
const shadowDegree = 16

// Mix validation errors.
var (
	ErrNegativeWeight = errors.New("mix weight must not be negative")
	ErrEmptyMix       = errors.New("mix weights sum to zero")
	ErrNegativeOps    = errors.New("op count must not be negative")
)

// Mix holds the relative weight of each generated category. "Existing"
// categories target the largest tracked element strictly below a random
// pivot and are skipped when there is none.
type Mix struct {
	InsertRandom     int `mapstructure:"insert_random"     yaml:"insert_random"`
	RemoveRandom     int `mapstructure:"remove_random"     yaml:"remove_random"`
	ContainsRandom   int `mapstructure:"contains_random"   yaml:"contains_random"`
	InsertExisting   int `mapstructure:"insert_existing"   yaml:"insert_existing"`
	RemoveExisting   int `mapstructure:"remove_existing"   yaml:"remove_existing"`
	ContainsExisting int `mapstructure:"contains_existing" yaml:"contains_existing"`
	Checkpoint       int `mapstructure:"checkpoint"        yaml:"checkpoint"`
}

// BenchMix is the default mix for timing runs.
func BenchMix() Mix {
	return Mix{
		InsertRandom:     2,
		RemoveRandom:     1,
		ContainsRandom:   1,
		InsertExisting:   1,
		RemoveExisting:   1,
		ContainsExisting: 1,
	}
}

// CrossCheckMix is the default mix for consistency runs.
func CrossCheckMix() Mix {
	return Mix{
		InsertRandom: 2,
		RemoveRandom: 1,
		Checkpoint:   1,
	}
}

type category int

const (
	insertRandom category = iota
	removeRandom
	containsRandom
	insertExisting
	removeExisting
	containsExisting
	checkpoint
	numCategories
)

func (m Mix) weights() [numCategories]int {
	return [numCategories]int{
		m.InsertRandom, m.RemoveRandom, m.ContainsRandom,
		m.InsertExisting, m.RemoveExisting, m.ContainsExisting,
		m.Checkpoint,
	}
}

// Validate checks that every weight is non-negative and at least one is set.
func (m Mix) Validate() error {
	total := 0

	for cat, weight := range m.weights() {
		if weight < 0 {
			return fmt.Errorf("%w: category %d has weight %d", ErrNegativeWeight, cat, weight)
		}

		total += weight
	}

	if total == 0 {
		return ErrEmptyMix
	}

	return nil
}

// Generate draws n categories from mix and returns the resulting ops. The
// result depends only on n, seed and mix. Draws of an "existing" category
// that find no target emit nothing, so len(result) may be less than n.
func Generate(n int, seed uint64, mix Mix) ([]Op, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeOps, n)
	}

	err := mix.Validate()
	if err != nil {
		return nil, err
	}

	gen := newGenerator(seed, mix)
	ops := make([]Op, 0, n)

	for range n {
		ops = gen.step(ops)
	}

	return ops, nil
}

type generator struct {
	rng     *rand.Rand
	weights [numCategories]int
	total   int
	shadow  *btree.BTreeG[int32]
}

func newGenerator(seed uint64, mix Mix) *generator {
	gen := &generator{
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // reproducible workloads.
		weights: mix.weights(),
		shadow:  btree.NewOrderedG[int32](shadowDegree),
	}

	for _, weight := range gen.weights {
		gen.total += weight
	}

	return gen
}

func (gen *generator) pick() category {
	roll := gen.rng.IntN(gen.total)

	for cat, weight := range gen.weights {
		if roll < weight {
			return category(cat)
		}

		roll -= weight
	}

	return checkpoint
}

func (gen *generator) randomElem() int32 {
	return int32(gen.rng.Uint32()) //nolint:gosec // full int32 range is intended.
}

// existing returns the largest tracked element strictly below a random pivot.
func (gen *generator) existing() (int32, bool) {
	if gen.shadow.Len() == 0 {
		return 0, false
	}

	pivot := gen.randomElem()

	var (
		found int32
		ok    bool
	)

	gen.shadow.DescendLessOrEqual(pivot, func(item int32) bool {
		if item == pivot {
			return true
		}

		found, ok = item, true

		return false
	})

	return found, ok
}

func (gen *generator) step(ops []Op) []Op {
	switch gen.pick() {
	case insertRandom:
		elem := gen.randomElem()
		gen.shadow.ReplaceOrInsert(elem)

		return append(ops, Insert(elem))
	case removeRandom:
		elem := gen.randomElem()
		gen.shadow.Delete(elem)

		return append(ops, Remove(elem))
	case containsRandom:
		return append(ops, Contains(gen.randomElem()))
	case insertExisting:
		if elem, ok := gen.existing(); ok {
			return append(ops, Insert(elem))
		}
	case removeExisting:
		if elem, ok := gen.existing(); ok {
			gen.shadow.Delete(elem)

			return append(ops, Remove(elem))
		}
	case containsExisting:
		if elem, ok := gen.existing(); ok {
			return append(ops, Contains(elem))
		}
	case checkpoint, numCategories:
		return append(ops, Checkpoint())
	}

	return ops
}
