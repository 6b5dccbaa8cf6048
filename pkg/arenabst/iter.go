package arenabst

import "github.com/Sumatoshi-tech/bstset/pkg/arena"

// Iterator walks a Set in ascending order by moving a traverser through the
// arena. While it is open it holds read guards on the path from the root to
// its position, so any attempt to mutate that path panics instead of
// corrupting the walk. Call Close when abandoning an iterator early.
type Iterator[T any] struct {
	trav *arena.Traverser[T]
}

// Iter returns an iterator positioned before the smallest element.
func (set *Set[T]) Iter() *Iterator[T] {
	trav, ok := set.tree.Traverse()
	if !ok {
		return &Iterator[T]{}
	}

	it := &Iterator[T]{trav: trav}
	it.seekLeftmost()

	return it
}

func (it *Iterator[T]) seekLeftmost() {
	for it.trav.SeekChild(left) {
	}
}

// Next returns the next element, or false once the iterator is exhausted.
func (it *Iterator[T]) Next() (T, bool) {
	if it.trav == nil {
		var zero T

		return zero, false
	}

	curr := it.trav.Elem()

	if it.trav.SeekChild(right) {
		it.seekLeftmost()

		return curr, true
	}

	// Climb until leaving a left child; that parent is the next element.
	for {
		branch, ok := it.trav.BranchIndex()
		if !ok {
			it.Close()

			return curr, true
		}

		it.trav.SeekParent()

		if branch == left {
			return curr, true
		}
	}
}

// Close releases the iterator's read guards.
func (it *Iterator[T]) Close() {
	if it.trav == nil {
		return
	}

	it.trav.Close()
	it.trav = nil
}
