// Package settest provides a conformance suite every orderedset.Set backend
// must pass.
package settest

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bstset/pkg/orderedset"
)

// randomOps is the length of the randomized sequences.
const randomOps = 5000

// randomDomain bounds random elements so that removals and duplicates hit often.
const randomDomain = 600

// Run executes the whole suite against sets produced by newSet.
func Run(t *testing.T, newSet orderedset.Factory[int]) {
	t.Helper()

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()
		testEmpty(t, newSet())
	})
	t.Run("InsertIdempotent", func(t *testing.T) {
		t.Parallel()
		testInsertIdempotent(t, newSet())
	})
	t.Run("RemoveThenContains", func(t *testing.T) {
		t.Parallel()
		testRemoveThenContains(t, newSet())
	})
	t.Run("TwoChildDeletion", func(t *testing.T) {
		t.Parallel()
		testTwoChildDeletion(t, newSet())
	})
	t.Run("DegenerateShapes", func(t *testing.T) {
		t.Parallel()
		testDegenerateShapes(t, newSet)
	})
	t.Run("RandomAgainstMap", func(t *testing.T) {
		t.Parallel()
		testRandomAgainstMap(t, newSet())
	})
	t.Run("DrainToEmpty", func(t *testing.T) {
		t.Parallel()
		testDrainToEmpty(t, newSet())
	})
	t.Run("EarlyBreak", func(t *testing.T) {
		t.Parallel()
		testEarlyBreak(t, newSet())
	})
	t.Run("InterleavedIteration", func(t *testing.T) {
		t.Parallel()
		testInterleavedIteration(t, newSet())
	})
}

// Insert adds every element of elems to set.
func Insert(set orderedset.Set[int], elems ...int) {
	for _, elem := range elems {
		set.Insert(elem)
	}
}

func testEmpty(t *testing.T, set orderedset.Set[int]) {
	t.Helper()

	assert.False(t, set.Contains(0))
	assert.False(t, set.Remove(0))
	assert.Empty(t, orderedset.Collect(set))
}

func testInsertIdempotent(t *testing.T, set orderedset.Set[int]) {
	t.Helper()

	Insert(set, 10, 5, 15)

	assert.True(t, set.Insert(7))
	once := orderedset.Collect(set)

	assert.False(t, set.Insert(7))
	assert.Equal(t, once, orderedset.Collect(set))
	assert.Equal(t, []int{5, 7, 10, 15}, once)
}

func testRemoveThenContains(t *testing.T, set orderedset.Set[int]) {
	t.Helper()

	elems := []int{50, 20, 80, 10, 30, 70, 90, 25, 35, 75}
	Insert(set, elems...)

	for _, elem := range elems {
		require.True(t, set.Remove(elem), "remove %d", elem)
		assert.False(t, set.Contains(elem), "contains %d after remove", elem)
		assert.False(t, set.Remove(elem), "second remove %d", elem)
	}

	assert.Empty(t, orderedset.Collect(set))
}

func testTwoChildDeletion(t *testing.T, set orderedset.Set[int]) {
	t.Helper()

	Insert(set, 5, 3, 8, 1, 4, 7, 9)

	require.True(t, set.Remove(5))
	assert.Equal(t, []int{1, 3, 4, 7, 8, 9}, orderedset.Collect(set))

	if dumper, ok := set.(orderedset.Dumper); ok {
		assert.Equal(t, "(7 (3 1 4) (8 _ 9))", dumper.Dump())
	}
}

func testDegenerateShapes(t *testing.T, newSet orderedset.Factory[int]) {
	t.Helper()

	const depth = 2000

	ascending := newSet()
	descending := newSet()
	zigzag := newSet()

	want := make([]int, 0, depth)

	for idx := range depth {
		ascending.Insert(idx)
		descending.Insert(depth - 1 - idx)
		want = append(want, idx)
	}

	// Right-only chains interleaved with left-only chains.
	for idx := range depth / 2 {
		zigzag.Insert(idx)
		zigzag.Insert(depth - 1 - idx)
	}

	assert.Equal(t, want, orderedset.Collect(ascending))
	assert.Equal(t, want, orderedset.Collect(descending))
	assert.Equal(t, want, orderedset.Collect(zigzag))

	for idx := range depth {
		require.True(t, ascending.Remove(idx))
		require.True(t, descending.Remove(idx))
	}

	assert.Empty(t, orderedset.Collect(ascending))
	assert.Empty(t, orderedset.Collect(descending))
}

func testRandomAgainstMap(t *testing.T, set orderedset.Set[int]) {
	t.Helper()

	rng := rand.New(rand.NewPCG(1, 2)) //nolint:gosec // deterministic test data.
	shadow := map[int]struct{}{}

	for step := range randomOps {
		elem := rng.IntN(randomDomain)

		switch rng.IntN(3) {
		case 0:
			_, had := shadow[elem]
			shadow[elem] = struct{}{}

			require.Equal(t, !had, set.Insert(elem), "step %d insert %d", step, elem)
		case 1:
			_, had := shadow[elem]
			delete(shadow, elem)

			require.Equal(t, had, set.Remove(elem), "step %d remove %d", step, elem)
		default:
			_, had := shadow[elem]

			require.Equal(t, had, set.Contains(elem), "step %d contains %d", step, elem)
		}

		if step%250 == 0 {
			checkAgainst(t, set, shadow)
		}
	}

	checkAgainst(t, set, shadow)
}

func checkAgainst(t *testing.T, set orderedset.Set[int], shadow map[int]struct{}) {
	t.Helper()

	got := orderedset.Collect(set)

	for idx := 1; idx < len(got); idx++ {
		require.Less(t, got[idx-1], got[idx], "iteration not strictly ascending at %d", idx)
	}

	var want []int

	for elem := range shadow {
		want = append(want, elem)
	}

	slices.Sort(want)

	require.Equal(t, want, got)

	if sizer, ok := set.(orderedset.Sizer); ok {
		require.Equal(t, len(shadow), sizer.Len())
	}
}

func testDrainToEmpty(t *testing.T, set orderedset.Set[int]) {
	t.Helper()

	shadow := map[int]struct{}{}
	checkAgainst(t, set, shadow)

	for _, elem := range []int{8, 4, 12, 2, 6} {
		set.Insert(elem)
		shadow[elem] = struct{}{}
	}

	checkAgainst(t, set, shadow)

	for elem := range shadow {
		require.True(t, set.Remove(elem))
		delete(shadow, elem)
		checkAgainst(t, set, shadow)
	}
}

func testEarlyBreak(t *testing.T, set orderedset.Set[int]) {
	t.Helper()

	Insert(set, 4, 2, 6, 1, 3, 5, 7)

	var seen []int

	for elem := range set.All() {
		seen = append(seen, elem)
		if len(seen) == 3 {
			break
		}
	}

	assert.Equal(t, []int{1, 2, 3}, seen)

	// The abandoned sequence must not keep the set from being mutated.
	assert.True(t, set.Remove(2))
	assert.True(t, set.Insert(8))
	assert.Equal(t, []int{1, 3, 4, 5, 6, 7, 8}, orderedset.Collect(set))
}

func testInterleavedIteration(t *testing.T, set orderedset.Set[int]) {
	t.Helper()

	Insert(set, 20, 10, 30, 5, 15, 25, 35)

	pairs := 0

	for outer := range set.All() {
		for inner := range set.All() {
			assert.True(t, set.Contains(outer))
			assert.True(t, set.Contains(inner))

			pairs++
		}
	}

	assert.Equal(t, 49, pairs)
}
