package ownedbst //nolint:testpackage // tests inspect the node structure.

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bstset/pkg/orderedset"
	"github.com/Sumatoshi-tech/bstset/pkg/orderedset/settest"
)

func TestConformance(t *testing.T) {
	t.Parallel()

	settest.Run(t, func() orderedset.Set[int] { return New[int]() })
}

func TestRemove_TwoChildren_SuccessorBecomesRoot(t *testing.T) {
	t.Parallel()

	set := New[int]()
	settest.Insert(set, 5, 3, 8, 1, 4, 7, 9)

	oldLeft := set.root.children[left]

	require.True(t, set.Remove(5))
	require.NotNil(t, set.root)
	assert.Equal(t, 7, set.root.elem)
	assert.Same(t, oldLeft, set.root.children[left], "left subtree must be moved, not copied")
	assert.Equal(t, 6, set.Len())
}

func TestRemove_SuccessorWithRightChild_IsPromoted(t *testing.T) {
	t.Parallel()

	set := New[int]()
	settest.Insert(set, 10, 5, 20, 15, 30, 17)

	require.True(t, set.Remove(10))
	assert.Equal(t, "(15 5 (20 17 30))", set.Dump())
}

func TestRemove_OneChild_ChildIsPromoted(t *testing.T) {
	t.Parallel()

	set := New[int]()
	settest.Insert(set, 10, 5, 3, 20, 25)

	require.True(t, set.Remove(5))
	assert.Equal(t, "(10 3 (20 _ 25))", set.Dump())

	require.True(t, set.Remove(20))
	assert.Equal(t, "(10 3 25)", set.Dump())
}

func TestRemove_Missing_KeepsShape(t *testing.T) {
	t.Parallel()

	set := New[int]()
	settest.Insert(set, 2, 1, 3)

	assert.False(t, set.Remove(4))
	assert.False(t, set.Remove(0))
	assert.Equal(t, "(2 1 3)", set.Dump())
	assert.Equal(t, 3, set.Len())
}

func TestIterator_Resumable(t *testing.T) {
	t.Parallel()

	set := New[int]()
	settest.Insert(set, 4, 2, 6, 1, 3, 5, 7)

	it := set.Iter()

	first, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, 1, first)

	second := set.Iter()

	for want := 1; want <= 7; want++ {
		got, ok := second.Next()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok = second.Next()
	assert.False(t, ok)

	next, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, 2, next)

	it.Close()

	_, ok = it.Next()
	assert.False(t, ok)
}

func TestNewFunc_CustomOrder(t *testing.T) {
	t.Parallel()

	set := NewFunc(func(a, b string) int { return cmp.Compare(b, a) })
	for _, word := range []string{"pear", "apple", "fig", "kiwi"} {
		set.Insert(word)
	}

	assert.Equal(t, []string{"pear", "kiwi", "fig", "apple"}, orderedset.Collect[string](set))
}

func TestClear(t *testing.T) {
	t.Parallel()

	set := New[int]()
	settest.Insert(set, 3, 1, 2)
	set.Clear()

	assert.Equal(t, 0, set.Len())
	assert.Equal(t, "()", set.Dump())
	assert.True(t, set.Insert(1))
}
